package exchange

import (
	"context"
	"sort"

	"github.com/meshnum/internal/registry"
	"github.com/meshnum/pkg/errors"
)

// PeerState is the tagged variant of §4.5's state machine — modeled
// explicitly rather than as an overloaded integer code, per §9.
type PeerState int

const (
	PeerIdle PeerState = iota
	PeerWaitingRecvQuery
	PeerSendingReply
	PeerQuerySent
	PeerWaitingRecvReply
	PeerDone
)

func (s PeerState) String() string {
	switch s {
	case PeerIdle:
		return "idle"
	case PeerWaitingRecvQuery:
		return "waiting-recv-query"
	case PeerSendingReply:
		return "sending-reply"
	case PeerQuerySent:
		return "query-sent"
	case PeerWaitingRecvReply:
		return "waiting-recv-reply"
	case PeerDone:
		return "done"
	default:
		return "unknown"
	}
}

// Peer drives one query/reply exchange with a single remote rank, per the
// state table of §4.5: the lower-ranked side of any pair is always the
// responder, the higher-ranked side always the initiator, which makes the
// protocol deadlock-free by construction (§4.5 "Progress").
type Peer struct {
	Me   int
	Rank int

	// Resolve answers one entry of Rank's query: position is an
	// owner_le*V+owner_position encoding (§4.5 "Message design") naming a
	// node through Me's own element table; Resolve returns Me's
	// owner-local runid for it. Populated by the caller when Me is the
	// responder (Rank > Me). Called once per entry of the received query,
	// in the query's own order, so the reply aligns with it regardless of
	// what order the initiator chose (§4.5 "Ordering guarantees").
	Resolve func(position int32) (int32, error)

	// SharedIn are candidate IDs Rank owns that Me shares in. Populated
	// when Me is the initiator (Rank < Me).
	SharedIn []registry.ID
	// QueryPayload is the position-encoded query body (owner_le*V +
	// owner_position) for each entry in SharedIn, in the same order,
	// computed by the caller from the owner-side contributor (§4.5
	// "Message design").
	QueryPayload []int32

	// RunIDs is populated once the reply arrives: the owner-local runid of
	// each entry in SharedIn, in SharedIn's order.
	RunIDs []int32

	state PeerState
}

// NewPeer creates a Peer in its initial idle state.
func NewPeer(me, rank int) *Peer {
	return &Peer{Me: me, Rank: rank, state: PeerIdle}
}

// State returns the peer's current state.
func (p *Peer) State() PeerState { return p.state }

// IsResponder reports whether Me replies to Rank's query (Rank > Me).
func (p *Peer) IsResponder() bool { return p.Rank > p.Me }

// Done reports whether the peer has finished its exchange.
func (p *Peer) Done() bool { return p.state == PeerDone }

// Advance drives the peer one step using t. Each call performs at most one
// state transition (none while the awaited message has not arrived); Drain
// calls it repeatedly until Done.
func (p *Peer) Advance(ctx context.Context, t Transport) error {
	switch p.state {
	case PeerIdle:
		return p.advanceIdle(ctx, t)
	case PeerWaitingRecvQuery:
		return p.advanceWaitingRecvQuery(ctx, t)
	case PeerSendingReply:
		p.state = PeerDone
		return nil
	case PeerQuerySent:
		p.state = PeerWaitingRecvReply
		return nil
	case PeerWaitingRecvReply:
		return p.advanceWaitingRecvReply(ctx, t)
	default:
		return nil
	}
}

func (p *Peer) advanceIdle(ctx context.Context, t Transport) error {
	if p.IsResponder() {
		p.state = PeerWaitingRecvQuery
		return nil
	}

	msg := Message{Kind: MessageQuery, FromRank: p.Me, ToRank: p.Rank, CandidateIDs: p.QueryPayload}
	if err := t.Send(ctx, msg); err != nil {
		return errors.Wrap(errors.CodeTransportFault, "posting query", err)
	}
	p.state = PeerQuerySent
	return nil
}

func (p *Peer) advanceWaitingRecvQuery(ctx context.Context, t Transport) error {
	msg, ok, err := t.TryRecv(p.Me)
	if err != nil {
		return errors.Wrap(errors.CodeTransportFault, "receiving query", err)
	}
	if !ok {
		return nil
	}
	if msg.Kind != MessageQuery || msg.FromRank != p.Rank {
		return errors.New(errors.CodeTransportFault, "unexpected message while waiting for query")
	}

	reply := make([]int32, len(msg.CandidateIDs))
	for i, position := range msg.CandidateIDs {
		runid, err := p.Resolve(position)
		if err != nil {
			return errors.Wrap(errors.CodeInternalConsistency, "resolving query position", err)
		}
		reply[i] = runid
	}

	if err := t.Send(ctx, Message{Kind: MessageReply, FromRank: p.Me, ToRank: p.Rank, RunIDs: reply}); err != nil {
		return errors.Wrap(errors.CodeTransportFault, "posting reply", err)
	}
	p.state = PeerSendingReply
	return nil
}

func (p *Peer) advanceWaitingRecvReply(ctx context.Context, t Transport) error {
	msg, ok, err := t.TryRecv(p.Me)
	if err != nil {
		return errors.Wrap(errors.CodeTransportFault, "receiving reply", err)
	}
	if !ok {
		return nil
	}
	if msg.Kind != MessageReply || msg.FromRank != p.Rank {
		return errors.New(errors.CodeTransportFault, "unexpected message while waiting for reply")
	}
	if len(msg.RunIDs) != len(p.SharedIn) {
		return errors.New(errors.CodeInternalConsistency, "reply length mismatch with query")
	}
	p.RunIDs = msg.RunIDs
	p.sortSharedInByRunID()
	p.state = PeerDone
	return nil
}

// sortSharedInByRunID reorders SharedIn (and RunIDs in lockstep) by
// ascending owner-local runid, per §4.6: "sort peer's shared list by
// runid" ahead of assigning this rank's local indices.
func (p *Peer) sortSharedInByRunID() {
	idx := make([]int, len(p.SharedIn))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return p.RunIDs[idx[i]] < p.RunIDs[idx[j]]
	})

	sharedIn := make([]registry.ID, len(p.SharedIn))
	runIDs := make([]int32, len(p.RunIDs))
	for newPos, oldPos := range idx {
		sharedIn[newPos] = p.SharedIn[oldPos]
		runIDs[newPos] = p.RunIDs[oldPos]
	}
	p.SharedIn = sharedIn
	p.RunIDs = runIDs
}
