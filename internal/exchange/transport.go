// Package exchange implements the peer query/reply protocol of spec §4.5:
// a reliable, ordered, non-lossy point-to-point Transport, a per-peer state
// machine driving one query and one reply across it, and the collective
// all-gather of owned counts that precedes it.
package exchange

import (
	"context"
	"fmt"
	"sync"

	"github.com/meshnum/pkg/errors"
)

// Message is one query or reply exchanged between two ranks during
// numbering. Kind distinguishes the two; CandidateIDs carries a query's
// position-encoded entries (owner_le*V + owner_position), RunIDs a reply's
// owner-local runids in the query's order.
type Message struct {
	Kind       MessageKind
	FromRank   int
	ToRank     int
	CandidateIDs []int32
	RunIDs       []int32
}

// MessageKind distinguishes a query from a reply.
type MessageKind int

const (
	MessageQuery MessageKind = iota
	MessageReply
)

// Transport is the reliable, ordered, non-lossy point-to-point channel
// abstraction spec §9 calls for ("point-to-point, not collective, for the
// query/reply phase"). ChannelTransport is the in-process simulation used
// throughout this module in place of an MPI binding.
type Transport interface {
	// Send delivers msg to msg.ToRank. Send does not block on the peer
	// having called Recv.
	Send(ctx context.Context, msg Message) error
	// TryRecv is the nonblocking receive §4.5's state machine polls: it
	// returns immediately, ok=false, if no message addressed to rank me is
	// available yet.
	TryRecv(me int) (msg Message, ok bool, err error)
	// Close releases the transport's resources. Safe to call once all
	// ranks are done communicating.
	Close() error
}

// ChannelTransport simulates a multi-rank reliable transport with one
// buffered Go channel per destination rank (grounded on the teacher's
// channel-based TaskSource.Tasks() pattern: a per-consumer inbound channel
// fed by possibly many producers).
type ChannelTransport struct {
	mu      sync.RWMutex
	inboxes map[int]chan Message
	closed  bool
}

// NewChannelTransport creates a ChannelTransport with one inbox of the given
// buffer size per rank in ranks.
func NewChannelTransport(ranks []int, bufferSize int) *ChannelTransport {
	t := &ChannelTransport{inboxes: make(map[int]chan Message, len(ranks))}
	for _, r := range ranks {
		t.inboxes[r] = make(chan Message, bufferSize)
	}
	return t
}

// Send implements Transport.
func (t *ChannelTransport) Send(ctx context.Context, msg Message) error {
	t.mu.RLock()
	inbox, ok := t.inboxes[msg.ToRank]
	t.mu.RUnlock()
	if !ok {
		return errors.New(errors.CodeTransportFault, fmt.Sprintf("no such peer rank %d", msg.ToRank))
	}

	select {
	case inbox <- msg:
		return nil
	case <-ctx.Done():
		return errors.Wrap(errors.CodeTimeout, "send canceled", ctx.Err())
	}
}

// TryRecv implements Transport.
func (t *ChannelTransport) TryRecv(me int) (Message, bool, error) {
	t.mu.RLock()
	inbox, ok := t.inboxes[me]
	t.mu.RUnlock()
	if !ok {
		return Message{}, false, errors.New(errors.CodeTransportFault, fmt.Sprintf("no inbox for rank %d", me))
	}

	select {
	case msg, open := <-inbox:
		if !open {
			return Message{}, false, errors.New(errors.CodeTransportFault, "inbox closed")
		}
		return msg, true, nil
	default:
		return Message{}, false, nil
	}
}

// Close implements Transport.
func (t *ChannelTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	for _, inbox := range t.inboxes {
		close(inbox)
	}
	return nil
}
