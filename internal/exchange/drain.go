package exchange

import (
	"context"
	"runtime"

	"github.com/meshnum/pkg/errors"
)

// Drain runs every peer's state machine to completion, simulating the
// wait-any/wait-some primitive of §4.5 "Progress": each round every
// non-done peer is offered one nonblocking Advance; the loop terminates
// once all peers reach done. A round that makes no progress yields the
// goroutine rather than failing — a peer waiting on its remote's query or
// reply is normal, not a deadlock, since that remote is typically running
// concurrently in its own goroutine against the same Transport. Any
// transport error aborts the whole drain (§4.5 "Failure semantics": any
// transport error is fatal).
func Drain(ctx context.Context, t Transport, peers []*Peer) error {
	for {
		allDone := true
		progressed := false

		for _, p := range peers {
			if p.Done() {
				continue
			}
			allDone = false

			before := p.State()
			if err := p.Advance(ctx, t); err != nil {
				return err
			}
			if p.State() != before {
				progressed = true
			}
		}

		if allDone {
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(errors.CodeTimeout, "exchange canceled", ctx.Err())
		default:
		}

		if !progressed {
			runtime.Gosched()
		}
	}
}
