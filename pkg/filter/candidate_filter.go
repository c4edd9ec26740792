// Package filter provides unified candidate filtering logic for node
// numbering. This package consolidates the codim and owner-rank predicates
// used to build a peer's query buffer one codim class at a time, plus a
// slot-position range check that depends on whether faces are included.
package filter

import (
	"sync"

	"github.com/meshnum/internal/mesh"
	"github.com/meshnum/internal/registry"
)

// SlotClass represents the position-schema class of a candidate.
type SlotClass int

const (
	// SlotClassUnknown indicates the class could not be determined.
	SlotClassUnknown SlotClass = iota
	// SlotClassCorner indicates a true mesh corner.
	SlotClassCorner
	// SlotClassFace indicates a face-interior node (including a half-style
	// element's unpromoted center).
	SlotClassFace
)

// String returns the string representation of the class.
func (s SlotClass) String() string {
	switch s {
	case SlotClassCorner:
		return "corner"
	case SlotClassFace:
		return "face"
	default:
		return "unknown"
	}
}

// ClassifyCodim maps a mesh.Codim to its SlotClass.
func ClassifyCodim(codim mesh.Codim) SlotClass {
	switch codim {
	case mesh.CodimCorner:
		return SlotClassCorner
	case mesh.CodimFace:
		return SlotClassFace
	default:
		return SlotClassUnknown
	}
}

// CandidateFilter provides unified candidate filtering logic: selection by
// codim class, by owner-rank range, and by with_faces position range. It is
// safe for concurrent use.
type CandidateFilter struct {
	mu sync.RWMutex

	// withFaces restricts PositionInRange to the 9-entry no-face schema when
	// false.
	withFaces bool

	// selectedCodim, when selectActive is true, is the single codim class
	// Keep restricts to (used when building a peer's query buffer one codim
	// class at a time).
	selectedCodim mesh.Codim
	selectActive  bool

	// ownerRankRanges are [min, max] rank pairs; a candidate passes the
	// owner-rank check if its owner falls in any of them, or if the list is
	// empty.
	ownerRankRanges [][2]int

	// Cache for frequently queried candidates.
	keepCache     map[registry.ID]bool
	keepCacheSize int
}

// NewCandidateFilter creates a new CandidateFilter. withFaces selects the
// 25-entry position schema when true, the 9-entry schema otherwise.
func NewCandidateFilter(withFaces bool) *CandidateFilter {
	return &CandidateFilter{
		withFaces:     withFaces,
		keepCache:     make(map[registry.ID]bool),
		keepCacheSize: 10000,
	}
}

// PositionInRange reports whether pos is a valid slot index under this
// filter's with_faces setting.
func (f *CandidateFilter) PositionInRange(pos int8) bool {
	if f.withFaces {
		return pos >= 0 && int(pos) < mesh.VFaces
	}
	return pos >= 0 && int(pos) < mesh.VNoFaces
}

// SelectCodim restricts Keep to a single codim class. Clears the cache since
// classification may change.
func (f *CandidateFilter) SelectCodim(codim mesh.Codim) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.selectedCodim = codim
	f.selectActive = true
	f.keepCache = make(map[registry.ID]bool)
}

// ClearCodimSelect removes any codim restriction set by SelectCodim.
func (f *CandidateFilter) ClearCodimSelect() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.selectActive = false
	f.keepCache = make(map[registry.ID]bool)
}

// AddOwnerRankRange restricts Keep to candidates whose owner rank falls
// within [min, max] (inclusive), in addition to any ranges already added.
func (f *CandidateFilter) AddOwnerRankRange(min, max int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ownerRankRanges = append(f.ownerRankRanges, [2]int{min, max})
	f.keepCache = make(map[registry.ID]bool)
}

// ClearOwnerRankRanges removes every owner-rank range added so far.
func (f *CandidateFilter) ClearOwnerRankRanges() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ownerRankRanges = nil
	f.keepCache = make(map[registry.ID]bool)
}

// ownerRankInRange reports whether rank falls within any configured range,
// or true if no range has been configured.
func (f *CandidateFilter) ownerRankInRange(rank int) bool {
	f.mu.RLock()
	ranges := f.ownerRankRanges
	f.mu.RUnlock()

	if len(ranges) == 0 {
		return true
	}
	for _, r := range ranges {
		if rank >= r[0] && rank <= r[1] {
			return true
		}
	}
	return false
}

// codimSelected reports whether codim matches the active SelectCodim
// restriction, or true if none is active.
func (f *CandidateFilter) codimSelected(codim mesh.Codim) bool {
	f.mu.RLock()
	active, selected := f.selectActive, f.selectedCodim
	f.mu.RUnlock()

	if !active {
		return true
	}
	return codim == selected
}

// Keep reports whether cand passes this filter's active codim and
// owner-rank restrictions.
func (f *CandidateFilter) Keep(id registry.ID, cand *registry.Candidate) bool {
	f.mu.RLock()
	if kept, ok := f.keepCache[id]; ok {
		f.mu.RUnlock()
		return kept
	}
	f.mu.RUnlock()

	kept := f.codimSelected(cand.Codim) && f.ownerRankInRange(cand.OwnerRank())

	f.mu.Lock()
	if len(f.keepCache) < f.keepCacheSize {
		f.keepCache[id] = kept
	}
	f.mu.Unlock()

	return kept
}

// FilterIDs returns the subset of ids that pass Keep, in their original
// order, looking each candidate up in reg.
func (f *CandidateFilter) FilterIDs(ids []registry.ID, reg *registry.Registry) []registry.ID {
	kept := make([]registry.ID, 0, len(ids))
	for _, id := range ids {
		if f.Keep(id, reg.Get(id)) {
			kept = append(kept, id)
		}
	}
	return kept
}

// ClearCache clears the Keep cache.
func (f *CandidateFilter) ClearCache() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.keepCache = make(map[registry.ID]bool)
}

// CacheStats returns cache statistics.
func (f *CandidateFilter) CacheStats() (size int, maxSize int) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.keepCache), f.keepCacheSize
}

// SetCacheSize sets the maximum cache size.
func (f *CandidateFilter) SetCacheSize(size int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.keepCacheSize = size
	if len(f.keepCache) > size {
		f.keepCache = make(map[registry.ID]bool)
	}
}
