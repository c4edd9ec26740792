package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/meshnum/internal/finalize"
	"github.com/meshnum/internal/history"
	meshmock "github.com/meshnum/internal/mock"
	"github.com/meshnum/internal/scheduler"
)

func sampleResults() []scheduler.RankResult {
	return []scheduler.RankResult{
		{
			Rank: 0,
			Finalize: finalize.Result{
				NumOwned:         3,
				NonLocalToGlobal: []int64{7},
				Sharers: map[int]*finalize.SharerRecord{
					finalize.LocalRankKey: {Rank: finalize.LocalRankKey, OwnedCount: 3},
					1:                     {Rank: 1, SharedMineCount: 1},
				},
			},
		},
	}
}

func TestPersistCheckpoints_UploadsEveryRank(t *testing.T) {
	s := &meshmock.MockStore{}
	s.On("Upload", mock.Anything, "runs/run-1/rank-0.json", mock.Anything).Return(nil)

	err := persistCheckpoints(context.Background(), s, "run-1", sampleResults())

	require.NoError(t, err)
	s.AssertExpectations(t)
}

func TestPersistCheckpoints_PropagatesUploadError(t *testing.T) {
	s := &meshmock.MockStore{}
	s.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	err := persistCheckpoints(context.Background(), s, "run-1", sampleResults())

	assert.Error(t, err)
}

func TestRecordHistory_SavesRunAndSharerEdges(t *testing.T) {
	repo := &meshmock.MockRunRepository{}
	repo.On("SaveRun", mock.Anything, "run-1", 0, 1, mock.Anything, "runs/run-1/rank-0.json", 0).Return(nil)
	repo.On("SaveSharerEdges", mock.Anything, "run-1", 0, map[int]int32{1: 1}).Return(nil)

	err := recordHistory(context.Background(), repo, "run-1", sampleResults())

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRecordHistory_SkipsSharerEdgesWhenNoneShared(t *testing.T) {
	results := []scheduler.RankResult{
		{
			Rank: 0,
			Finalize: finalize.Result{
				NumOwned: 2,
				Sharers: map[int]*finalize.SharerRecord{
					finalize.LocalRankKey: {Rank: finalize.LocalRankKey, OwnedCount: 2},
				},
			},
		},
	}

	repo := &meshmock.MockRunRepository{}
	repo.On("SaveRun", mock.Anything, "run-1", 0, 1, mock.Anything, mock.Anything, 0).Return(nil)

	err := recordHistory(context.Background(), repo, "run-1", results)

	require.NoError(t, err)
	repo.AssertNotCalled(t, "SaveSharerEdges", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

var _ history.RunRepository = (*meshmock.MockRunRepository)(nil)
