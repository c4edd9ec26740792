package registry

import (
	"testing"

	"github.com/meshnum/internal/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_NewCandidate(t *testing.T) {
	r := New()
	id := r.NewCandidate(mesh.CodimCorner)
	assert.Equal(t, int32(0), id)
	assert.Equal(t, int32(1), r.Len())
	assert.Equal(t, mesh.CodimCorner, r.Get(id).Codim)
}

func TestRegistry_AddContributor_OwnerIsSmallestRank(t *testing.T) {
	r := New()
	id := r.NewCandidate(mesh.CodimCorner)

	r.AddContributor(id, Contributor{Rank: 2, LocalElement: 0, Position: 0})
	r.AddContributor(id, Contributor{Rank: 0, LocalElement: 1, Position: 3})
	r.AddContributor(id, Contributor{Rank: 1, LocalElement: 2, Position: 1})

	cand := r.Get(id)
	require.Len(t, cand.Contributors, 3)
	assert.Equal(t, 0, cand.OwnerRank())
}

func TestRegistry_AddContributor_DuplicateSuppression(t *testing.T) {
	r := New()
	id := r.NewCandidate(mesh.CodimFace)

	r.AddContributor(id, Contributor{Rank: 0, LocalElement: 5, Position: 2})
	r.AddContributor(id, Contributor{Rank: 0, LocalElement: 2, Position: 1}) // smaller (le,pos), same rank
	r.AddContributor(id, Contributor{Rank: 0, LocalElement: 9, Position: 0}) // larger le, ignored

	cand := r.Get(id)
	require.Len(t, cand.Contributors, 1)
	assert.Equal(t, int32(2), cand.Contributors[0].LocalElement)
}

func TestRegistry_AddContributor_AppendUniqueByRank(t *testing.T) {
	r := New()
	id := r.NewCandidate(mesh.CodimCorner)

	r.AddContributor(id, Contributor{Rank: 1, LocalElement: 0, Position: 0})
	r.AddContributor(id, Contributor{Rank: 1, LocalElement: 0, Position: 1})
	r.AddContributor(id, Contributor{Rank: 2, LocalElement: 0, Position: 0})

	assert.Len(t, r.Get(id).Contributors, 2)
}

func TestRegistry_HasLocalContributor(t *testing.T) {
	r := New()
	id := r.NewCandidate(mesh.CodimCorner)
	r.AddContributor(id, Contributor{Rank: 3, LocalElement: 0, Position: 0})

	assert.True(t, r.Get(id).HasLocalContributor(3))
	assert.False(t, r.Get(id).HasLocalContributor(0))
}

func TestRegistry_Prune(t *testing.T) {
	r := New()
	visible := r.NewCandidate(mesh.CodimCorner)
	r.AddContributor(visible, Contributor{Rank: 0, LocalElement: 0, Position: 0})

	invisible := r.NewCandidate(mesh.CodimCorner)
	r.AddContributor(invisible, Contributor{Rank: 1, LocalElement: 0, Position: 0})

	r.Prune(0)

	assert.True(t, r.Get(visible).Active)
	assert.False(t, r.Get(invisible).Active)
}

func TestRegistry_Recode(t *testing.T) {
	r := New()
	id := r.NewCandidate(mesh.CodimFace)
	r.Recode(id, mesh.CodimCorner)
	assert.Equal(t, mesh.CodimCorner, r.Get(id).Codim)
}

func TestRegistry_AddContributor_OwnerIdxUpdatesAfterSuppression(t *testing.T) {
	r := New()
	id := r.NewCandidate(mesh.CodimCorner)

	r.AddContributor(id, Contributor{Rank: 0, LocalElement: 9, Position: 0})
	require.Equal(t, 0, r.Get(id).OwnerRank())

	// A smaller (le,pos) pair from the same owning rank replaces the kept
	// representative; the owner index must still point at it.
	r.AddContributor(id, Contributor{Rank: 0, LocalElement: 1, Position: 0})
	cand := r.Get(id)
	assert.Equal(t, int32(1), cand.Contributors[cand.OwnerIdx].LocalElement)
}
