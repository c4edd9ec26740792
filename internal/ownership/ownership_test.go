package ownership

import (
	"testing"

	"github.com/meshnum/internal/mesh"
	"github.com/meshnum/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElect_OwnedCandidatesSortedByLocalPosition(t *testing.T) {
	reg := registry.New()

	idLate := reg.NewCandidate(mesh.CodimCorner)
	reg.AddContributor(idLate, registry.Contributor{Rank: 0, LocalElement: 5, Position: 0})

	idEarly := reg.NewCandidate(mesh.CodimCorner)
	reg.AddContributor(idEarly, registry.Contributor{Rank: 0, LocalElement: 1, Position: 2})

	reg.Prune(0)
	res := Elect(reg, 0)

	require.Equal(t, []registry.ID{idEarly, idLate}, res.Owned)
	assert.Equal(t, int32(0), res.RunID[idEarly])
	assert.Equal(t, int32(1), res.RunID[idLate])
	assert.Equal(t, int32(2), res.NumOwned())
}

func TestElect_SharedInGroupsByOwnerRank(t *testing.T) {
	reg := registry.New()

	id := reg.NewCandidate(mesh.CodimFace)
	reg.AddContributor(id, registry.Contributor{Rank: 0, LocalElement: 0, Position: 0})
	reg.AddContributor(id, registry.Contributor{Rank: 1, LocalElement: 0, Position: 0})

	reg.Prune(1)
	res := Elect(reg, 1)

	assert.Empty(t, res.Owned)
	assert.Equal(t, []registry.ID{id}, res.SharedIn[0])
	assert.Equal(t, []int{0}, res.PeerRanks())
}

func TestElect_SkipsInactiveCandidates(t *testing.T) {
	reg := registry.New()

	visible := reg.NewCandidate(mesh.CodimCorner)
	reg.AddContributor(visible, registry.Contributor{Rank: 0, LocalElement: 0, Position: 0})

	invisible := reg.NewCandidate(mesh.CodimCorner)
	reg.AddContributor(invisible, registry.Contributor{Rank: 1, LocalElement: 0, Position: 0})

	reg.Prune(0)
	res := Elect(reg, 0)

	assert.Equal(t, []registry.ID{visible}, res.Owned)
}

func TestElect_SkipsCandidatesWithNoLocalContributor(t *testing.T) {
	reg := registry.New()
	id := reg.NewCandidate(mesh.CodimCorner)
	reg.AddContributor(id, registry.Contributor{Rank: 2, LocalElement: 0, Position: 0})

	res := Elect(reg, 0)

	assert.Empty(t, res.Owned)
	assert.Empty(t, res.SharedIn)
}
