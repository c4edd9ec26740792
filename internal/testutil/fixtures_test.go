package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/meshnum/internal/mesh"
	"github.com/meshnum/internal/scheduler"
	"github.com/meshnum/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain silences per-rank timer summaries during the fixture suite; a
// real run still gets them via the default logger cmd/meshnum/cmd sets up.
func TestMain(m *testing.M) {
	utils.SetGlobalLogger(&utils.NullLogger{})
	os.Exit(m.Run())
}

func run(t *testing.T, inputs []scheduler.RankInput) []scheduler.RankResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := scheduler.Run(ctx, inputs, scheduler.Options{Validate: true})
	require.NoError(t, err)
	return results
}

func assertInvariants(t *testing.T, results []scheduler.RankResult) {
	t.Helper()

	var totalOwned int64
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Finalize.NumOwned, int32(0))
		totalOwned += int64(r.Finalize.NumOwned)

		var prev int64 = -1
		for _, g := range r.Finalize.NonLocalToGlobal {
			assert.Greater(t, g, prev, "nonlocal-to-global table must be strictly monotonic")
			prev = g
		}

		for _, f := range r.Findings {
			assert.NotEqual(t, "fatal", string(f.Level), "rank %d: %s: %s", r.Rank, f.Rule, f.Message)
		}
	}

	require.NotEmpty(t, results)
	offsets := results[0].GlobalOffsets
	require.Len(t, offsets, len(results))
	assert.Equal(t, int64(0), offsets[0])
	for i := 1; i < len(offsets); i++ {
		assert.GreaterOrEqual(t, offsets[i], offsets[i-1])
	}
}

func TestSingleElement_FullStyle(t *testing.T) {
	results := run(t, []scheduler.RankInput{
		{Rank: 0, Forest: SingleElement(), FullStyle: true, WithFaces: false},
	})
	require.Len(t, results, 1)
	assert.Equal(t, int32(5), results[0].Finalize.NumOwned)
	assert.Equal(t, 17, results[0].Elements[0].Configuration.Code())
	assertInvariants(t, results)
}

func TestSingleElement_HalfStyle(t *testing.T) {
	results := run(t, []scheduler.RankInput{
		{Rank: 0, Forest: SingleElement(), FullStyle: false, WithFaces: false},
	})
	require.Len(t, results, 1)
	assert.Equal(t, int32(4), results[0].Finalize.NumOwned)
	assert.Equal(t, 0, results[0].Elements[0].Configuration.Code())
	assertInvariants(t, results)
}

func TestUniformRefinement2x2(t *testing.T) {
	results := run(t, []scheduler.RankInput{
		{Rank: 0, Forest: UniformRefinement2x2(), FullStyle: false, WithFaces: false},
	})
	require.Len(t, results, 1)
	assert.Equal(t, int32(9), results[0].Finalize.NumOwned)

	centerSplits := 0
	for _, st := range results[0].Elements {
		if st.Configuration&(1<<4) != 0 {
			centerSplits++
		}
	}
	assert.Equal(t, 2, centerSplits)
	assertInvariants(t, results)
}

func TestLShapeHanging(t *testing.T) {
	results := run(t, []scheduler.RankInput{
		{Rank: 0, Forest: LShapeHanging(), FullStyle: false, WithFaces: false},
	})
	require.Len(t, results, 1)

	coarse := results[0].Elements[0]
	assert.True(t, coarse.Configuration.FullStyle())
	assert.True(t, coarse.Configuration.FaceSplit(1))
	assertInvariants(t, results)
}

func TestTwoRankStrip(t *testing.T) {
	forests := TwoRankStrip()
	results := run(t, []scheduler.RankInput{
		{Rank: 0, Forest: forests[0], FullStyle: false, WithFaces: false},
		{Rank: 1, Forest: forests[1], FullStyle: false, WithFaces: false},
	})
	require.Len(t, results, 2)
	assertInvariants(t, results)

	totalShared := len(results[0].Finalize.NonLocalToGlobal) + len(results[1].Finalize.NonLocalToGlobal)
	assert.Equal(t, 2, totalShared)
}

func TestTwoRankHanging(t *testing.T) {
	forests := TwoRankHanging()
	results := run(t, []scheduler.RankInput{
		{Rank: 0, Forest: forests[0], FullStyle: false, WithFaces: false},
		{Rank: 1, Forest: forests[1], FullStyle: false, WithFaces: false},
	})
	require.Len(t, results, 2)
	assertInvariants(t, results)
}

func TestEmptyPartition(t *testing.T) {
	results := run(t, []scheduler.RankInput{
		{Rank: 0, Forest: EmptyPartition(0), FullStyle: false, WithFaces: false},
	})
	require.Len(t, results, 1)
	assert.Equal(t, int32(0), results[0].Finalize.NumOwned)
	assert.Empty(t, results[0].Elements)
}

var _ mesh.ForestHandle = (*Forest)(nil)
