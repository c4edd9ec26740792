package finalize

import (
	"context"
	"testing"

	"github.com/meshnum/internal/exchange"
	"github.com/meshnum/internal/mesh"
	"github.com/meshnum/internal/numbering"
	"github.com/meshnum/internal/ownership"
	"github.com/meshnum/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalize_OwnedAndSharedInLocalIndices(t *testing.T) {
	reg := registry.New()

	owned := reg.NewCandidate(mesh.CodimCorner)
	reg.AddContributor(owned, registry.Contributor{Rank: 1, LocalElement: 0, Position: 0})

	sharedID := reg.NewCandidate(mesh.CodimFace)
	reg.AddContributor(sharedID, registry.Contributor{Rank: 0, LocalElement: 0, Position: 4})
	reg.AddContributor(sharedID, registry.Contributor{Rank: 1, LocalElement: 0, Position: 1})

	reg.Prune(1)
	elect := ownership.Elect(reg, 1)
	require.Equal(t, []registry.ID{owned}, elect.Owned)
	require.Equal(t, []registry.ID{sharedID}, elect.SharedIn[0])

	ctx := context.Background()
	transport := exchange.NewChannelTransport([]int{0, 1}, 4)
	defer transport.Close()

	initiator := exchange.NewPeer(1, 0)
	initiator.SharedIn = []registry.ID{sharedID}
	initiator.QueryPayload = []int32{4}

	responder := exchange.NewPeer(0, 1)
	responder.Resolve = func(position int32) (int32, error) {
		require.Equal(t, int32(4), position)
		return 3, nil
	}

	require.NoError(t, initiator.Advance(ctx, transport)) // idle -> query-sent (query posted)
	require.NoError(t, responder.Advance(ctx, transport)) // idle -> waiting-recv-query
	require.NoError(t, responder.Advance(ctx, transport)) // receives query, posts reply
	require.NoError(t, responder.Advance(ctx, transport)) // sending-reply -> done
	require.NoError(t, initiator.Advance(ctx, transport))  // query-sent -> waiting-recv-reply
	require.NoError(t, initiator.Advance(ctx, transport))  // receives reply -> done
	require.True(t, initiator.Done())
	require.Equal(t, []int32{3}, initiator.RunIDs)

	elements := make([]numbering.ElementState, 1)
	for i := range elements[0].Slots {
		elements[0].Slots[i] = mesh.SentinelNode
	}
	elements[0].Slots[0] = owned
	elements[0].Slots[1] = sharedID

	globalOffsets := []int64{0, 10}
	result, err := Finalize(reg, 1, elect, []*exchange.Peer{initiator}, globalOffsets, elements)
	require.NoError(t, err)

	assert.Equal(t, int32(1), result.NumOwned)
	assert.Equal(t, int32(0), elements[0].Slots[0]) // owned, runid 0
	assert.Equal(t, int32(1), elements[0].Slots[1]) // num_owned(1) + cumulative(0) + i(0)
	require.Len(t, result.NonLocalToGlobal, 1)
	assert.Equal(t, int64(3), result.NonLocalToGlobal[0]) // globalOffsets[0] + ownerRunID(3)

	require.Contains(t, result.Sharers, 0)
	assert.Equal(t, int32(1), result.Sharers[0].SharedMineCount)
	assert.Equal(t, int32(1), result.Sharers[0].SharedMineOffset)

	local := result.Sharers[LocalRankKey]
	require.NotNil(t, local)
	assert.Equal(t, int32(1), local.OwnedCount)
}

func TestFinalize_ErrorsIfPeerNotDone(t *testing.T) {
	reg := registry.New()
	elect := ownership.Result{RunID: map[registry.ID]int32{}}
	peer := exchange.NewPeer(0, 1)

	_, err := Finalize(reg, 0, elect, []*exchange.Peer{peer}, nil, nil)
	assert.Error(t, err)
}
