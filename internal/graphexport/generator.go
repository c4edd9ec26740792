package graphexport

import "github.com/meshnum/internal/finalize"

// GeneratorOptions configures Generate.
type GeneratorOptions struct {
	// MinWeightPct drops edges below this percentage of the owning
	// rank's owned-node count.
	MinWeightPct float64
}

// DefaultGeneratorOptions returns the default generator options.
func DefaultGeneratorOptions() *GeneratorOptions {
	return &GeneratorOptions{MinWeightPct: 0}
}

// Generator builds a sharer Graph from a collection of ranks' finalize
// results.
type Generator struct {
	opts *GeneratorOptions
}

// NewGenerator creates a Generator with opts, or the defaults if nil.
func NewGenerator(opts *GeneratorOptions) *Generator {
	if opts == nil {
		opts = DefaultGeneratorOptions()
	}
	return &Generator{opts: opts}
}

// Generate builds the sharer graph across every rank's result, keyed by
// rank in results.
func (g *Generator) Generate(name string, results map[int]finalize.Result) *Graph {
	graph := New(name)

	for rank, result := range results {
		graph.AddRank(rank, result.NumOwned)
	}

	for rank, result := range results {
		for peerRank, sharer := range result.Sharers {
			if peerRank == finalize.LocalRankKey || peerRank == rank {
				continue
			}
			if sharer.SharedMineCount == 0 {
				continue
			}
			graph.AddSharerEdge(rank, peerRank, sharer.SharedMineCount)
		}
	}

	graph.CalculateWeights()

	if g.opts.MinWeightPct > 0 {
		filtered := make([]*SharerEdge, 0, len(graph.Edges))
		for _, edge := range graph.Edges {
			if edge.Weight >= g.opts.MinWeightPct {
				filtered = append(filtered, edge)
			}
		}
		graph.Edges = filtered
	}

	graph.SortEdges()
	graph.Cleanup()

	return graph
}
