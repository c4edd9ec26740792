// Package scheduler orchestrates one numbering run across every
// simulated rank, driving each rank's traverse, elect, allgather,
// peer-exchange, drain, and finalize phases (spec §4) and wiring the
// results through optional per-rank validation. Grounded on the
// teacher's worker-pool idiom in pkg/parallel for running ranks
// concurrently.
package scheduler

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	otrace "go.opentelemetry.io/otel/trace"

	"github.com/meshnum/internal/exchange"
	"github.com/meshnum/internal/finalize"
	"github.com/meshnum/internal/mesh"
	"github.com/meshnum/internal/numbering"
	"github.com/meshnum/internal/ownership"
	"github.com/meshnum/internal/registry"
	"github.com/meshnum/internal/validate"
	"github.com/meshnum/pkg/collections"
	"github.com/meshnum/pkg/errors"
	"github.com/meshnum/pkg/filter"
	"github.com/meshnum/pkg/parallel"
	"github.com/meshnum/pkg/telemetry"
	"github.com/meshnum/pkg/utils"
)

// RankInput is one simulated rank's forest handle and numbering options.
type RankInput struct {
	Rank      int
	Forest    mesh.ForestHandle
	FullStyle bool
	WithFaces bool
}

// RankResult is one rank's complete output.
type RankResult struct {
	Rank          int
	Elements      []numbering.ElementState
	GlobalOffsets []int64
	Finalize      finalize.Result
	Findings      []validate.Finding
}

// Options configures a Run.
type Options struct {
	// Validate runs the per-rank Validator against each result.
	Validate bool
	// TransportBuffer sizes each rank's inbox in the simulated transport.
	TransportBuffer int
	// Pool overrides the worker pool configuration. Its MaxWorkers is
	// always raised to at least len(inputs): every rank must be able to
	// make progress concurrently, or the peer-exchange drain phase and
	// the allgather barrier never complete.
	Pool parallel.PoolConfig
}

// Run executes the six-phase algorithm for every rank in inputs and
// returns each rank's result, ordered by rank.
func Run(ctx context.Context, inputs []RankInput, opts Options) ([]RankResult, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	ctx, runSpan := telemetry.Tracer().Start(ctx, "numbering.run", otrace.WithAttributes(
		attribute.Int("world_size", len(inputs)),
	))
	defer runSpan.End()

	worldSize := len(inputs)
	ranks := make([]int, worldSize)
	for i, in := range inputs {
		ranks[i] = in.Rank
	}

	transport := exchange.NewChannelTransport(ranks, transportBuffer(opts))
	defer transport.Close()

	barrier := exchange.NewBarrier(worldSize)
	ownedCounts := make([]int32, worldSize)

	pool := opts.Pool
	if pool.MaxWorkers < worldSize {
		pool = pool.WithWorkers(worldSize)
	}
	workerPool := parallel.NewWorkerPool[RankInput, *RankResult](pool)

	logger := utils.GetGlobalLogger().WithFields(map[string]interface{}{"world_size": worldSize})

	taskResults := workerPool.ExecuteFunc(ctx, inputs, func(ctx context.Context, in RankInput) (*RankResult, error) {
		idx := rankIndex(ranks, in.Rank)
		return runRank(ctx, in, idx, transport, barrier, ownedCounts, opts)
	})

	results := make([]RankResult, 0, worldSize)
	for _, tr := range taskResults {
		if tr.Error != nil {
			return nil, fmt.Errorf("rank %d: %w", tr.Input.Rank, tr.Error)
		}
		if tr.Result == nil {
			return nil, fmt.Errorf("rank %d: %w", tr.Input.Rank, ctx.Err())
		}
		results = append(results, *tr.Result)
		logger.Debug("rank %d finalized: %d owned, %d shared-in", tr.Input.Rank, tr.Result.Finalize.NumOwned, len(tr.Result.Finalize.NonLocalToGlobal))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Rank < results[j].Rank })
	return results, nil
}

func transportBuffer(opts Options) int {
	if opts.TransportBuffer > 0 {
		return opts.TransportBuffer
	}
	return 64
}

func rankIndex(ranks []int, rank int) int {
	for i, r := range ranks {
		if r == rank {
			return i
		}
	}
	return -1
}

func runRank(ctx context.Context, in RankInput, idx int, transport *exchange.ChannelTransport, barrier *exchange.Barrier, ownedCounts []int32, opts Options) (*RankResult, error) {
	me := in.Rank

	ctx, rankSpan := telemetry.Tracer().Start(ctx, "numbering.rank", otrace.WithAttributes(
		attribute.Int("rank", me),
	))
	defer rankSpan.End()

	rankLogger := utils.GetGlobalLogger().WithField("rank", me)
	timer := utils.NewTimer(fmt.Sprintf("rank-%d", me), utils.WithLogger(rankLogger))

	reg := registry.New()
	numLocal := len(in.Forest.LocalElements())
	builder := numbering.NewBuilder(reg, me, in.FullStyle, in.WithFaces, numLocal)

	pt := timer.Start("traverse")
	in.Forest.Iterate(builder)
	pt.Stop()

	pt = timer.Start("elect")
	reg.Prune(me)
	elect := ownership.Elect(reg, me)
	pt.Stop()

	if idx < 0 || idx >= len(ownedCounts) {
		rankSpan.RecordError(errors.New(errors.CodeInternalConsistency, "rank not present in world"))
		return nil, errors.New(errors.CodeInternalConsistency, "rank not present in world")
	}
	ownedCounts[idx] = elect.NumOwned()

	pt = timer.Start("allgather")
	barrier.Wait()
	globalOffsets := exchange.GlobalOffsets(ownedCounts)
	pt.Stop()

	elements := builder.Elements()

	pt = timer.Start("exchange")
	peers := buildPeers(reg, me, elect, elements, in.WithFaces)
	if err := exchange.Drain(ctx, transport, peers); err != nil {
		pt.Stop()
		wrapped := errors.Wrap(errors.CodeTransportFault, "draining peer exchange", err)
		rankSpan.RecordError(wrapped)
		return nil, wrapped
	}
	pt.Stop()

	pt = timer.Start("finalize")
	result, err := finalize.Finalize(reg, me, elect, peers, globalOffsets, elements)
	pt.Stop()
	if err != nil {
		rankSpan.RecordError(err)
		return nil, err
	}

	var findings []validate.Finding
	if opts.Validate {
		v := validate.NewValidator()
		findings = v.Validate(&validate.Context{
			Me:            me,
			NumOwned:      elect.NumOwned(),
			NumLocalNodes: int32(numLocal * mesh.VFaces),
			GlobalOffsets: globalOffsets,
			Elements:      elements,
			Result:        result,
		})
	}

	rankSpan.SetAttributes(
		attribute.Int("owned_count", int(elect.NumOwned())),
		attribute.Int("shared_in_count", len(result.NonLocalToGlobal)),
	)
	timer.PrintSummary()

	return &RankResult{
		Rank:          me,
		Elements:      elements,
		GlobalOffsets: globalOffsets,
		Finalize:      result,
		Findings:      findings,
	}, nil
}

// buildPeers constructs every exchange.Peer this rank participates in:
// one responder per rank > me that contributes to a candidate me owns,
// and one initiator per rank < me that owns a candidate me shares in
// (§4.5).
func buildPeers(reg *registry.Registry, me int, elect ownership.Result, elements []numbering.ElementState, withFaces bool) []*exchange.Peer {
	peers := make([]*exchange.Peer, 0, len(elect.SharedIn))

	responderRanks := collections.NewBitset(me + 1)
	for _, id := range elect.Owned {
		cand := reg.Get(id)
		for _, c := range cand.Contributors {
			if c.Rank > me {
				responderRanks.Set(c.Rank)
			}
		}
	}

	resolve := func(position int32) (int32, error) {
		le := position / mesh.VFaces
		pos := position % mesh.VFaces
		if int(le) < 0 || int(le) >= len(elements) {
			return 0, errors.New(errors.CodeInternalConsistency, "query position references unknown local element")
		}
		id := elements[le].Slots[pos]
		if id == mesh.SentinelNode {
			return 0, errors.New(errors.CodeInternalConsistency, "query position references empty slot")
		}
		runid, ok := elect.RunID[id]
		if !ok {
			return 0, errors.New(errors.CodeInternalConsistency, "query position resolves to a candidate we do not own")
		}
		return runid, nil
	}

	responderRanks.Iterate(func(rank int) bool {
		p := exchange.NewPeer(me, rank)
		p.Resolve = resolve
		peers = append(peers, p)
		return true
	})

	codimFilter := filter.NewCandidateFilter(withFaces)

	for ownerRank, ids := range elect.SharedIn {
		// Build the query buffer one codim class at a time (face nodes
		// before corner nodes) so the responder's reply groups naturally by
		// class; the pairing with SharedIn only needs matching order, not
		// any particular one, so this grouping costs nothing (§4.5
		// "Ordering guarantees").
		codimFilter.SelectCodim(mesh.CodimFace)
		ordered := codimFilter.FilterIDs(ids, reg)
		codimFilter.SelectCodim(mesh.CodimCorner)
		ordered = append(ordered, codimFilter.FilterIDs(ids, reg)...)

		p := exchange.NewPeer(me, ownerRank)
		p.SharedIn = ordered
		p.QueryPayload = make([]int32, len(ordered))
		for i, id := range ordered {
			owner := reg.Get(id).OwnerContributor()
			p.QueryPayload[i] = owner.LocalElement*mesh.VFaces + int32(owner.Position)
		}
		peers = append(peers, p)
	}

	return peers
}
