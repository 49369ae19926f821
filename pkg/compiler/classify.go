package compiler

import (
	"github.com/flowlane/sff/internal/graphir"
	"github.com/flowlane/sff/pkg/model"
)

// classifyEdges applies the classification priority cascade: the first
// matching rule wins.
func classifyEdges(arena *graphir.Arena, nodes map[string]*workingNode, edges map[string]*workingEdge, mainEdgeSet map[string]bool) {
	indeg := make(map[string]int, len(nodes))
	for id, n := range nodes {
		indeg[id] = len(n.links.PrevNodes)
	}

	for _, id := range arena.EdgeIDs {
		e := edges[id]
		fromN, toN := nodes[e.from], nodes[e.to]

		switch {
		case toN.rank.Global <= fromN.rank.Global:
			e.class = model.EdgeClassification{Kind: model.EdgeReturn, IsReturn: true}
			e.prio = 40
			if toN.lane != fromN.lane {
				e.class.IsCrossLane = true
			}
		case indeg[e.to] > 1:
			e.class = model.EdgeClassification{Kind: model.EdgeJoin, IsJoin: true}
			e.prio = 30
		case mainEdgeSet[e.id]:
			e.class = model.EdgeClassification{Kind: model.EdgeMainPath}
			e.prio = 100
		case e.branch != "":
			e.class = model.EdgeClassification{Kind: model.EdgeBranch}
			e.prio = 80
		case toN.lane != fromN.lane:
			e.class = model.EdgeClassification{Kind: model.EdgeCrossLane, IsCrossLane: true}
			e.prio = 60
		default:
			e.class = model.EdgeClassification{Kind: model.EdgeMainPath}
			e.prio = 100
		}
	}
}
