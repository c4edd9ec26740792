package store

import (
	"context"
	"testing"

	"github.com/meshnum/internal/finalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpoint_SaveLoadRoundTrip(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	result := finalize.Result{
		NumOwned:         3,
		NonLocalToGlobal: []int64{5, 9},
		Sharers: map[int]*finalize.SharerRecord{
			1:                    {Rank: 1, SharedMineOffset: 3, SharedMineCount: 2},
			finalize.LocalRankKey: {Rank: finalize.LocalRankKey, OwnedCount: 3},
		},
	}

	cp := NewCheckpoint(0, result)
	key := CheckpointKey("run-1", 0)

	require.NoError(t, Save(context.Background(), s, key, cp))

	loaded, err := Load(context.Background(), s, key)
	require.NoError(t, err)

	assert.Equal(t, cp.NumOwned, loaded.NumOwned)
	assert.Equal(t, cp.NonLocalToGlobal, loaded.NonLocalToGlobal)
	assert.Equal(t, int32(2), loaded.Sharers["1"].SharedMineCount)
	assert.Equal(t, int32(3), loaded.Sharers["local"].OwnedCount)
}
