// Package graphir holds the dense integer-index representation of a flow
// graph used internally by the Flow Compiler and Orthogonal Router. Nodes
// and edges are addressed by dense indices, with id<->index tables kept
// only at ingress/egress, so occupancy maps and adjacency scans stay
// array-backed instead of hash-order dependent.
package graphir

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
)

// Arena is the compiler's working graph: a node/edge index space plus
// sorted adjacency, built once during the base-parse and graph-build
// phases and read-only afterward.
type Arena struct {
	NodeIDs []string // index -> id, sorted by id for stability
	nodeIdx map[string]int

	EdgeIDs  []string // index -> id, declaration order
	EdgeFrom []int    // edge index -> source node index
	EdgeTo   []int    // edge index -> dest node index

	// Next/Prev are sorted-unique adjacency by node index, built by Build().
	Next [][]int
	Prev [][]int

	// OutEdges/InEdges list edge indices touching a node, sorted by the
	// adjacent node's id (mirrors Next/Prev ordering) then by edge id.
	OutEdges [][]int
	InEdges  [][]int
}

// NewArena allocates an Arena for a known set of node ids. Node indices are
// assigned in sorted order so that index order already matches identifier
// order wherever that matters.
func NewArena(nodeIDs []string) *Arena {
	sorted := append([]string(nil), nodeIDs...)
	sort.Strings(sorted)
	idx := make(map[string]int, len(sorted))
	for i, id := range sorted {
		idx[id] = i
	}
	return &Arena{
		NodeIDs:  sorted,
		nodeIdx:  idx,
		Next:     make([][]int, len(sorted)),
		Prev:     make([][]int, len(sorted)),
		OutEdges: make([][]int, len(sorted)),
		InEdges:  make([][]int, len(sorted)),
	}
}

// Index returns the dense index for a node id.
func (a *Arena) Index(id string) (int, bool) {
	i, ok := a.nodeIdx[id]
	return i, ok
}

// AddEdge registers an edge in declaration order and returns its index.
func (a *Arena) AddEdge(id, from, to string) int {
	fi := a.nodeIdx[from]
	ti := a.nodeIdx[to]
	ei := len(a.EdgeIDs)
	a.EdgeIDs = append(a.EdgeIDs, id)
	a.EdgeFrom = append(a.EdgeFrom, fi)
	a.EdgeTo = append(a.EdgeTo, ti)
	a.OutEdges[fi] = append(a.OutEdges[fi], ei)
	a.InEdges[ti] = append(a.InEdges[ti], ei)
	return ei
}

// Build sorts all adjacency lists into duplicate-free, lexicographically
// ordered sequences, keeping OutEdges/InEdges
// aligned to the same order.
func (a *Arena) Build() {
	for i := range a.NodeIDs {
		a.Next[i] = sortUniqueByTarget(a.OutEdges[i], a.EdgeTo, a.NodeIDs)
		a.Prev[i] = sortUniqueByTarget(a.InEdges[i], a.EdgeFrom, a.NodeIDs)
		a.OutEdges[i] = sortEdgesByPeerID(a.OutEdges[i], a.EdgeTo, a.EdgeIDs, a.NodeIDs)
		a.InEdges[i] = sortEdgesByPeerID(a.InEdges[i], a.EdgeFrom, a.EdgeIDs, a.NodeIDs)
	}
}

func sortUniqueByTarget(edgeIdxs []int, peerOf []int, nodeIDs []string) []int {
	seen := make(map[int]bool, len(edgeIdxs))
	var peers []int
	for _, ei := range edgeIdxs {
		p := peerOf[ei]
		if !seen[p] {
			seen[p] = true
			peers = append(peers, p)
		}
	}
	sort.Slice(peers, func(i, j int) bool { return nodeIDs[peers[i]] < nodeIDs[peers[j]] })
	return peers
}

func sortEdgesByPeerID(edgeIdxs []int, peerOf []int, edgeIDs []string, nodeIDs []string) []int {
	out := append([]int(nil), edgeIdxs...)
	sort.Slice(out, func(i, j int) bool {
		pi, pj := nodeIDs[peerOf[out[i]]], nodeIDs[peerOf[out[j]]]
		if pi != pj {
			return pi < pj
		}
		return edgeIDs[out[i]] < edgeIDs[out[j]]
	})
	return out
}

// ToGonum builds a gonum simple.DirectedGraph with node IDs equal to this
// arena's dense indices, so SCC/topological results map straight back via
// NodeIDs[n.ID()].
func (a *Arena) ToGonum() *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for i := range a.NodeIDs {
		g.AddNode(simple.Node(int64(i)))
	}
	for ei := range a.EdgeIDs {
		f, t := a.EdgeFrom[ei], a.EdgeTo[ei]
		if g.HasEdgeFromTo(int64(f), int64(t)) {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(int64(f)), T: simple.Node(int64(t))})
	}
	return g
}
