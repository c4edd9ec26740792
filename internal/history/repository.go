package history

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/meshnum/internal/finalize"
)

// RunRepository persists and retrieves per-rank run summaries.
type RunRepository interface {
	// SaveRun records rank's finalized result for runID.
	SaveRun(ctx context.Context, runID string, rank, worldSize int, result finalize.Result, checkpointKey string, fatalFindings int) error

	// GetRun retrieves the record for runID and rank.
	GetRun(ctx context.Context, runID string, rank int) (*RunRecord, error)

	// ListRuns retrieves every rank's record for runID, ordered by rank.
	ListRuns(ctx context.Context, runID string) ([]*RunRecord, error)

	// SaveSharerEdges records the sharer relationships observed for a
	// rank during a run.
	SaveSharerEdges(ctx context.Context, runID string, ownerRank int, edges map[int]int32) error

	// ListSharerEdges retrieves every sharer edge recorded for runID.
	ListSharerEdges(ctx context.Context, runID string) ([]*SharerEdgeRecord, error)
}

// GormRunRepository implements RunRepository using GORM.
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository.
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// SaveRun implements RunRepository.
func (r *GormRunRepository) SaveRun(ctx context.Context, runID string, rank, worldSize int, result finalize.Result, checkpointKey string, fatalFindings int) error {
	nonlocal, err := EncodeInt64Slice(result.NonLocalToGlobal)
	if err != nil {
		return fmt.Errorf("failed to encode nonlocal table: %w", err)
	}

	var globalOffset int64
	if local, ok := result.Sharers[finalize.LocalRankKey]; ok {
		globalOffset = int64(local.OwnedOffset)
	}

	record := &RunRecord{
		RunID:            runID,
		Rank:             rank,
		WorldSize:        worldSize,
		NumOwned:         result.NumOwned,
		NumLocalNodes:    int32(len(result.NonLocalToGlobal)) + result.NumOwned,
		GlobalOffset:     globalOffset,
		NonLocalToGlobal: nonlocal,
		CheckpointKey:    checkpointKey,
		FatalFindings:    fatalFindings,
	}

	err = r.db.WithContext(ctx).
		Where("run_id = ? AND rank = ?", runID, rank).
		Assign(record).
		FirstOrCreate(record).Error
	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}
	return nil
}

// GetRun implements RunRepository.
func (r *GormRunRepository) GetRun(ctx context.Context, runID string, rank int) (*RunRecord, error) {
	var record RunRecord

	err := r.db.WithContext(ctx).Where("run_id = ? AND rank = ?", runID, rank).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("run record not found: %s rank %d", runID, rank)
		}
		return nil, fmt.Errorf("failed to get run record: %w", err)
	}

	return &record, nil
}

// ListRuns implements RunRepository.
func (r *GormRunRepository) ListRuns(ctx context.Context, runID string) ([]*RunRecord, error) {
	var records []*RunRecord

	err := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("rank ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list run records: %w", err)
	}

	return records, nil
}

// SaveSharerEdges implements RunRepository.
func (r *GormRunRepository) SaveSharerEdges(ctx context.Context, runID string, ownerRank int, edges map[int]int32) error {
	if len(edges) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for peerRank, count := range edges {
			record := &SharerEdgeRecord{
				RunID:      runID,
				OwnerRank:  ownerRank,
				PeerRank:   peerRank,
				SharedMine: count,
			}
			if err := tx.Create(record).Error; err != nil {
				return fmt.Errorf("failed to insert sharer edge: %w", err)
			}
		}
		return nil
	})
}

// ListSharerEdges implements RunRepository.
func (r *GormRunRepository) ListSharerEdges(ctx context.Context, runID string) ([]*SharerEdgeRecord, error) {
	var records []*SharerEdgeRecord

	err := r.db.WithContext(ctx).Where("run_id = ?", runID).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sharer edges: %w", err)
	}

	return records, nil
}
