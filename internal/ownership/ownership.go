// Package ownership implements owner election and the canonical local sort
// (spec §4.3): for every active candidate, determine whether this rank owns
// it, assign owned candidates a dense run-local index, and group the
// candidates this rank merely shares in by the remote owner rank that must
// be queried during exchange.
package ownership

import (
	"sort"

	"github.com/meshnum/internal/registry"
)

// Result is the outcome of local election: which candidates this rank owns,
// their run-local numbering, and which remote ranks must be queried for the
// candidates this rank shares in but does not own.
type Result struct {
	// Owned lists this rank's owned candidate IDs in canonical order: sorted
	// by the owning contributor's (local-element, position) pair, which is
	// this rank's own (le, pos) since it is the owner.
	Owned []registry.ID
	// RunID maps an owned candidate ID to its index within Owned — the
	// dense, zero-based local numbering §4.3 assigns before any global
	// offset is known.
	RunID map[registry.ID]int32
	// SharedIn groups candidates this rank has a local contributor for, but
	// does not own, by the owning rank. Each of these must be resolved via
	// a query to that owner during exchange (§4.5).
	SharedIn map[int][]registry.ID
}

// Elect scans every active candidate in reg and classifies it relative to
// rank me. Pruning (dropping candidates with no local contributor) must
// already have been applied via reg.Prune before calling this.
func Elect(reg *registry.Registry, me int) Result {
	res := Result{
		RunID:    make(map[registry.ID]int32),
		SharedIn: make(map[int][]registry.ID),
	}

	type ownedEntry struct {
		id  registry.ID
		le  int32
		pos int8
	}
	var owned []ownedEntry

	for id := registry.ID(0); id < reg.Len(); id++ {
		cand := reg.Get(id)
		if !cand.Active {
			continue
		}
		if !cand.HasLocalContributor(me) {
			continue
		}

		owner := cand.OwnerRank()
		if owner == me {
			oc := cand.OwnerContributor()
			owned = append(owned, ownedEntry{id: id, le: oc.LocalElement, pos: oc.Position})
			continue
		}
		res.SharedIn[owner] = append(res.SharedIn[owner], id)
	}

	sort.SliceStable(owned, func(i, j int) bool {
		if owned[i].le != owned[j].le {
			return owned[i].le < owned[j].le
		}
		return owned[i].pos < owned[j].pos
	})

	res.Owned = make([]registry.ID, len(owned))
	for i, e := range owned {
		res.Owned[i] = e.id
		res.RunID[e.id] = int32(i)
	}

	return res
}

// NumOwned returns the number of candidates this rank owns.
func (r Result) NumOwned() int32 {
	return int32(len(r.Owned))
}

// PeerRanks returns the sorted list of remote ranks this rank must query
// during exchange, i.e. the keys of SharedIn.
func (r Result) PeerRanks() []int {
	ranks := make([]int, 0, len(r.SharedIn))
	for rank := range r.SharedIn {
		ranks = append(ranks, rank)
	}
	sort.Ints(ranks)
	return ranks
}
