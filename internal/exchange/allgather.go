package exchange

import "sync"

// GlobalOffsets implements §4.4's global offset exchange: every rank
// contributes its own-count; the result is the exclusive prefix sum,
// indexed by rank, so rank r's global offset is GlobalOffsets(counts)[r].
// It is collective in the MPI sense but expressed here as a plain function
// over a complete vector: the scheduler, which already knows every
// simulated rank's local owned count before drain begins, supplies counts
// directly rather than this package performing any cross-goroutine
// coordination (§5: "only phases 4-5 are concurrent in the message-passing
// sense" — the all-gather itself is a barrier, not a point-to-point
// exchange).
func GlobalOffsets(ownedCounts []int32) []int64 {
	offsets := make([]int64, len(ownedCounts))
	var running int64
	for i, c := range ownedCounts {
		offsets[i] = running
		running += int64(c)
	}
	return offsets
}

// Barrier is a reusable rendezvous point for n participants, used by the
// scheduler to implement §5's "before (i) [the all-gather] every rank must
// have finished traversal and ownership election" suspension point when
// ranks run as concurrent goroutines.
type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	n       int
	arrived int
	gen     int
}

// NewBarrier creates a Barrier for n participants.
func NewBarrier(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all n participants have called Wait for the current
// generation, then releases them all together.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.gen
	b.arrived++
	if b.arrived == b.n {
		b.arrived = 0
		b.gen++
		b.cond.Broadcast()
		return
	}
	for gen == b.gen {
		b.cond.Wait()
	}
}
