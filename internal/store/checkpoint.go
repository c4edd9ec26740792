package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/meshnum/internal/finalize"
	"github.com/meshnum/pkg/compression"
)

// Checkpoint is the per-rank JSON document persisted after a successful
// run: enough of finalize.Result to audit or replay validation without
// rerunning the exchange.
type Checkpoint struct {
	Rank             int                        `json:"rank"`
	NumOwned         int32                      `json:"num_owned"`
	NonLocalToGlobal []int64                    `json:"nonlocal_to_global"`
	Sharers          map[string]SharerSummary   `json:"sharers"`
}

// SharerSummary is the JSON-friendly projection of a finalize.SharerRecord.
type SharerSummary struct {
	OwnedOffset      int32   `json:"owned_offset"`
	OwnedCount       int32   `json:"owned_count"`
	SharedMineOffset int32   `json:"shared_mine_offset"`
	SharedMineCount  int32   `json:"shared_mine_count"`
	LocalIndices     []int32 `json:"local_indices"`
}

// CheckpointKey returns the store key a run's checkpoint for rank and runID
// is written to.
func CheckpointKey(runID string, rank int) string {
	return fmt.Sprintf("runs/%s/rank-%d.json", runID, rank)
}

// NewCheckpoint projects a finalize.Result into its persisted form.
func NewCheckpoint(rank int, result finalize.Result) Checkpoint {
	sharers := make(map[string]SharerSummary, len(result.Sharers))
	for peerRank, s := range result.Sharers {
		key := fmt.Sprintf("%d", peerRank)
		if peerRank == finalize.LocalRankKey {
			key = "local"
		}
		sharers[key] = SharerSummary{
			OwnedOffset:      s.OwnedOffset,
			OwnedCount:       s.OwnedCount,
			SharedMineOffset: s.SharedMineOffset,
			SharedMineCount:  s.SharedMineCount,
			LocalIndices:     s.LocalIndices,
		}
	}

	return Checkpoint{
		Rank:             rank,
		NumOwned:         result.NumOwned,
		NonLocalToGlobal: result.NonLocalToGlobal,
		Sharers:          sharers,
	}
}

// Save marshals cp as JSON, compresses it with the default compressor, and
// uploads it to key in s. Checkpoints are write-once audit artifacts, not
// hot-path traffic, so the stronger zstd ratio is worth paying for over gzip.
func Save(ctx context.Context, s Store, key string, cp Checkpoint) error {
	buf, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	comp := compression.Default()
	defer compression.Close(comp)

	packed, err := comp.Compress(buf)
	if err != nil {
		return fmt.Errorf("failed to compress checkpoint: %w", err)
	}
	return s.Upload(ctx, key, bytes.NewReader(packed))
}

// Load downloads the checkpoint at key, auto-detects its compression from
// its magic bytes, and decodes the decompressed JSON.
func Load(ctx context.Context, s Store, key string) (Checkpoint, error) {
	r, err := s.Download(ctx, key)
	if err != nil {
		return Checkpoint{}, err
	}
	defer r.Close()

	packed, err := io.ReadAll(r)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	buf, err := compression.AutoDecompress(packed)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("failed to decompress checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(buf, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	return cp, nil
}
