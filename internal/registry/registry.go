// Package registry implements the grow-only candidate-node table of
// spec §2 item 3 and §9's "global candidate table" design note: one flat
// arena of candidates, each a 32-bit index away from any element slot, with
// no pointers and no cycles.
package registry

import (
	"sort"

	"github.com/meshnum/internal/mesh"
)

// ID identifies a Candidate within a Registry. mesh.SentinelNode (-1) means
// "no candidate".
type ID = int32

// Contributor is a (rank, local-element, position) triple: one element's
// claim to reference a given candidate node at a given position (§3).
type Contributor struct {
	Rank         int
	LocalElement int32
	Position     int8
}

// less orders contributors by (le, pos), the tie-break §3 specifies as
// unique per rank for a given candidate.
func (c Contributor) less(o Contributor) bool {
	if c.LocalElement != o.LocalElement {
		return c.LocalElement < o.LocalElement
	}
	return c.Position < o.Position
}

// Candidate is an in-construction node: a boundary codimension and an
// ordered, rank-unique contributor list. OwnerIdx is an index into
// Contributors, not a pointer (§9: "store the owner as an index into the
// contributor list"), recomputed whenever an append could change the
// minimum-rank contributor.
type Candidate struct {
	Codim        mesh.Codim
	Contributors []Contributor
	OwnerIdx     int
	// Active is cleared when a candidate turns out to have no local
	// contributor after traversal completes (§4.3: "dropped").
	Active bool
}

// OwnerRank returns the rank of the contributor with the smallest rank.
func (c *Candidate) OwnerRank() int {
	return c.Contributors[c.OwnerIdx].Rank
}

// OwnerContributor returns the owning contributor itself.
func (c *Candidate) OwnerContributor() Contributor {
	return c.Contributors[c.OwnerIdx]
}

// HasLocalContributor reports whether any contributor belongs to rank me.
func (c *Candidate) HasLocalContributor(me int) bool {
	for _, ctr := range c.Contributors {
		if ctr.Rank == me {
			return true
		}
	}
	return false
}

// Registry is the grow-only candidate arena.
type Registry struct {
	candidates []Candidate
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{}
}

// NewCandidate appends a fresh candidate with no contributors yet and
// returns its ID.
func (r *Registry) NewCandidate(codim mesh.Codim) ID {
	r.candidates = append(r.candidates, Candidate{
		Codim:    codim,
		OwnerIdx: -1,
		Active:   true,
	})
	return ID(len(r.candidates) - 1)
}

// Get returns a pointer to the candidate identified by id. The pointer is
// invalidated by any subsequent NewCandidate call that triggers a slice
// reallocation; callers needing stability across growth should re-resolve
// through id.
func (r *Registry) Get(id ID) *Candidate {
	return &r.candidates[id]
}

// Len returns the number of candidates registered so far.
func (r *Registry) Len() int32 {
	return int32(len(r.candidates))
}

// Recode re-tags a candidate's codimension in place — the half-to-full
// promotion of §9: "locate the existing candidate through the element's
// slot-4 entry and update its codimension in place", preserving its
// contributor list.
func (r *Registry) Recode(id ID, codim mesh.Codim) {
	r.candidates[id].Codim = codim
}

// AddContributor appends contributor c to candidate id, applying the §4.1
// duplicate-suppression rule: within a single candidate, repeated
// contributions from the same rank keep only the smallest (element,
// position) pair; across ranks the list is append-unique by rank. The
// owner index is maintained incrementally so it never needs recomputation
// except when duplicate suppression changes the kept representative.
func (r *Registry) AddContributor(id ID, c Contributor) {
	cand := &r.candidates[id]

	for i, existing := range cand.Contributors {
		if existing.Rank != c.Rank {
			continue
		}
		if c.less(existing) {
			cand.Contributors[i] = c
			r.recomputeOwner(cand)
		}
		return
	}

	cand.Contributors = append(cand.Contributors, c)
	if cand.OwnerIdx < 0 || c.Rank < cand.Contributors[cand.OwnerIdx].Rank {
		cand.OwnerIdx = len(cand.Contributors) - 1
	}
}

func (r *Registry) recomputeOwner(cand *Candidate) {
	best := 0
	for i, c := range cand.Contributors {
		if c.Rank < cand.Contributors[best].Rank {
			best = i
		}
	}
	cand.OwnerIdx = best
}

// Prune deactivates every candidate with no contributor from rank me,
// implementing §3's "a candidate with no local contributor is pruned (set
// inactive) because it is not visible to us" and §4.3's echo of the same
// rule ahead of ownership election.
func (r *Registry) Prune(me int) {
	for i := range r.candidates {
		if !r.candidates[i].HasLocalContributor(me) {
			r.candidates[i].Active = false
		}
	}
}

// SortContributors normalizes each candidate's contributor list by rank,
// then by (le, pos) within a rank. This is a validation/debugging aid, not
// required for correctness since OwnerIdx already tracks the minimum; kept
// because §3 describes the contributor list itself as sorted.
func (r *Registry) SortContributors(id ID) {
	cand := &r.candidates[id]
	owner := cand.Contributors[cand.OwnerIdx]
	sort.SliceStable(cand.Contributors, func(i, j int) bool {
		a, b := cand.Contributors[i], cand.Contributors[j]
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.less(b)
	})
	for i, c := range cand.Contributors {
		if c == owner {
			cand.OwnerIdx = i
			return
		}
	}
}
