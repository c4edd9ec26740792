// Package finalize implements §4.6: rewriting each element's candidate
// slots into final local node indices, building the nonlocal-to-global
// table, and populating per-peer sharer records.
package finalize

import (
	"sort"

	"github.com/meshnum/internal/exchange"
	"github.com/meshnum/internal/mesh"
	"github.com/meshnum/internal/numbering"
	"github.com/meshnum/internal/ownership"
	"github.com/meshnum/internal/registry"
	"github.com/meshnum/pkg/errors"
)

// SharerRecord is one peer rank's view of which local node indices are
// visible to it (§4.6 "Sharer population"), plus the local rank's own
// record at key -1.
type SharerRecord struct {
	Rank             int
	OwnedOffset      int32
	OwnedCount       int32
	SharedMineOffset int32
	SharedMineCount  int32
	// LocalIndices collects, for validation, every local index visible to
	// Rank: owned nodes with more than one contributor that Rank also
	// touches, plus shared-in nodes contributed by Rank.
	LocalIndices []int32
}

// LocalRankKey is the SharerRecord map key for the local rank's own record.
const LocalRankKey = -1

// Result is the output of finalization: the rewritten element slot tables,
// the nonlocal-to-global lookup, and the per-rank sharer records (§6
// "Outputs").
type Result struct {
	NumOwned        int32
	NonLocalToGlobal []int64
	Sharers         map[int]*SharerRecord
}

// Finalize consumes the output of ownership election and a completed
// exchange drain (every peer in peers must be Done) and produces the final
// local numbering, rewriting elements' slot tables in place.
func Finalize(reg *registry.Registry, me int, elect ownership.Result, peers []*exchange.Peer, globalOffsets []int64, elements []numbering.ElementState) (Result, error) {
	sortedPeers := append([]*exchange.Peer(nil), peers...)
	sort.Slice(sortedPeers, func(i, j int) bool { return sortedPeers[i].Rank < sortedPeers[j].Rank })

	localIndex := make(map[registry.ID]int32, reg.Len())
	for id, runid := range elect.RunID {
		localIndex[id] = runid
	}

	numOwned := elect.NumOwned()
	var cumulative int32
	var nonLocalToGlobal []int64
	peerRange := make(map[int][2]int32, len(sortedPeers)) // rank -> [offset, count] within the shared range

	for _, p := range sortedPeers {
		if !p.Done() {
			return Result{}, errors.New(errors.CodeInternalConsistency, "finalize called before peer exchange completed")
		}
		if p.IsResponder() {
			continue // this peer only answered queries; it contributes no shared-in range
		}
		offset := cumulative
		for i, id := range p.SharedIn {
			localIndex[id] = numOwned + cumulative + int32(i)
			ownerRunID := int64(p.RunIDs[i])
			global := globalOffsets[p.Rank] + ownerRunID
			if len(nonLocalToGlobal) > 0 && global <= nonLocalToGlobal[len(nonLocalToGlobal)-1] {
				return Result{}, errors.New(errors.CodeInternalConsistency, "nonlocal-to-global table is not strictly monotonic")
			}
			nonLocalToGlobal = append(nonLocalToGlobal, global)
		}
		peerRange[p.Rank] = [2]int32{offset, int32(len(p.SharedIn))}
		cumulative += int32(len(p.SharedIn))
	}

	for i := range elements {
		st := &elements[i]
		for pos, id := range st.Slots {
			if id == mesh.SentinelNode {
				continue
			}
			final, ok := localIndex[id]
			if !ok {
				return Result{}, errors.New(errors.CodeInternalConsistency, "candidate slot has no final local index")
			}
			st.Slots[pos] = final
		}
	}

	sharers := buildSharers(reg, me, elect, sortedPeers, localIndex, peerRange, numOwned)

	return Result{
		NumOwned:        numOwned,
		NonLocalToGlobal: nonLocalToGlobal,
		Sharers:         sharers,
	}, nil
}

func buildSharers(reg *registry.Registry, me int, elect ownership.Result, peers []*exchange.Peer, localIndex map[registry.ID]int32, peerRange map[int][2]int32, numOwned int32) map[int]*SharerRecord {
	sharers := make(map[int]*SharerRecord)
	get := func(rank int) *SharerRecord {
		s, ok := sharers[rank]
		if !ok {
			s = &SharerRecord{Rank: rank}
			sharers[rank] = s
		}
		return s
	}

	// Owned nodes with more than one contributor: append to every
	// contributor's sharer record.
	for _, id := range elect.Owned {
		cand := reg.Get(id)
		if len(cand.Contributors) <= 1 {
			continue
		}
		local := localIndex[id]
		for _, c := range cand.Contributors {
			if c.Rank == me {
				continue
			}
			get(c.Rank).LocalIndices = append(get(c.Rank).LocalIndices, local)
		}
	}

	// Shared-in nodes in canonical (per-peer, owner-runid) order: append to
	// each contributor's sharer record, including passive shares (§9: a
	// node me sees that is owned by rank and also shared with c.Rank gets a
	// sharer entry for c.Rank with no message from me to c.Rank).
	for _, p := range peers {
		if p.IsResponder() {
			continue
		}
		for _, id := range p.SharedIn {
			cand := reg.Get(id)
			local := localIndex[id]
			for _, c := range cand.Contributors {
				if c.Rank == me || c.Rank == p.Rank {
					continue
				}
				get(c.Rank).LocalIndices = append(get(c.Rank).LocalIndices, local)
			}
		}
	}

	for rank, rng := range peerRange {
		s := get(rank)
		s.SharedMineOffset = rng[0] + numOwned
		s.SharedMineCount = rng[1]
	}

	local := get(LocalRankKey)
	local.OwnedOffset = 0
	local.OwnedCount = numOwned

	return sharers
}
