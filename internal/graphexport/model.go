// Package graphexport renders a run's per-rank sharer relationships as a
// graph, grounded on the teacher's internal/callgraph package.
package graphexport

import (
	"sort"
	"strconv"
)

// RankNode represents one rank in the sharer graph.
type RankNode struct {
	ID       string `json:"id"`
	Rank     int    `json:"rank"`
	Label    string `json:"label,omitempty"`
	NumOwned int32  `json:"numOwned"`
}

// SharerEdge represents rank Owner sharing SharedMine nodes with rank Peer.
type SharerEdge struct {
	ID         string  `json:"id"`
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	SharedMine int32   `json:"sharedMine"`
	Weight     float64 `json:"weight"`
}

// Graph is the complete sharer-relationship graph for a run.
type Graph struct {
	Name  string        `json:"name,omitempty"`
	Nodes []*RankNode   `json:"nodes"`
	Edges []*SharerEdge `json:"edges"`

	nodeMap map[string]*RankNode   `json:"-"`
	edgeMap map[string]*SharerEdge `json:"-"`
}

// New creates an empty sharer graph.
func New(name string) *Graph {
	return &Graph{
		Name:    name,
		Nodes:   make([]*RankNode, 0),
		Edges:   make([]*SharerEdge, 0),
		nodeMap: make(map[string]*RankNode),
		edgeMap: make(map[string]*SharerEdge),
	}
}

// AddRank adds or updates the node for rank with its owned-node count.
func (g *Graph) AddRank(rank int, numOwned int32) *RankNode {
	id := rankNodeID(rank)

	if node, exists := g.nodeMap[id]; exists {
		node.NumOwned = numOwned
		return node
	}

	node := &RankNode{ID: id, Rank: rank, Label: id, NumOwned: numOwned}
	g.nodeMap[id] = node
	g.Nodes = append(g.Nodes, node)
	return node
}

// AddSharerEdge adds or accumulates the sharing relationship where owner
// shares sharedMine of its owned nodes with peer.
func (g *Graph) AddSharerEdge(owner, peer int, sharedMine int32) *SharerEdge {
	sourceID := rankNodeID(owner)
	targetID := rankNodeID(peer)
	edgeID := sourceID + "->" + targetID

	if edge, exists := g.edgeMap[edgeID]; exists {
		edge.SharedMine += sharedMine
		return edge
	}

	edge := &SharerEdge{ID: edgeID, Source: sourceID, Target: targetID, SharedMine: sharedMine}
	g.edgeMap[edgeID] = edge
	g.Edges = append(g.Edges, edge)
	return edge
}

// GetRank returns the node for rank, or nil if it has not been added.
func (g *Graph) GetRank(rank int) *RankNode {
	return g.nodeMap[rankNodeID(rank)]
}

// CalculateWeights sets each edge's weight to its share of the owning
// rank's total owned-node count.
func (g *Graph) CalculateWeights() {
	for _, edge := range g.Edges {
		owner := g.nodeMap[edge.Source]
		if owner == nil || owner.NumOwned == 0 {
			continue
		}
		edge.Weight = float64(edge.SharedMine) / float64(owner.NumOwned) * 100
	}
}

// SortEdges orders edges by (source, target) for deterministic output.
func (g *Graph) SortEdges() {
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].Source != g.Edges[j].Source {
			return g.Edges[i].Source < g.Edges[j].Source
		}
		return g.Edges[i].Target < g.Edges[j].Target
	})
}

// Cleanup drops the internal lookup maps once the graph is finished
// being built, mirroring the teacher's pre-serialization cleanup step.
func (g *Graph) Cleanup() {
	g.nodeMap = nil
	g.edgeMap = nil
}

func rankNodeID(rank int) string {
	return "rank-" + strconv.Itoa(rank)
}
