package compiler

import "github.com/flowlane/sff/pkg/model"

// computeStats aggregates the final stats block.
func computeStats(
	nodes map[string]*workingNode,
	edges map[string]*workingEdge,
	lanes map[string]*model.Lane,
	maxDepth, cyclesTotal, maxCycleDepth int,
) model.Stats {
	decisionNodes := 0
	maxBranchDepth := 0
	for _, n := range nodes {
		if n.kind == model.NodeDecision {
			decisionNodes++
		}
		if n.rank.BranchDepth > maxBranchDepth {
			maxBranchDepth = n.rank.BranchDepth
		}
	}

	branchEdges, joins := 0, 0
	branchByRank := map[int]int{}
	for _, e := range edges {
		switch e.class.Kind {
		case model.EdgeBranch:
			branchEdges++
			branchByRank[nodes[e.from].rank.Global]++
		case model.EdgeJoin:
			joins++
		}
	}
	maxBranchesPerRank := 0
	for _, c := range branchByRank {
		if c > maxBranchesPerRank {
			maxBranchesPerRank = c
		}
	}

	maxTracksPerLane := 0
	for _, l := range lanes {
		if l.TracksTotal > maxTracksPerLane {
			maxTracksPerLane = l.TracksTotal
		}
	}

	return model.Stats{
		NodesTotal:         len(nodes),
		EdgesTotal:         len(edges),
		LanesTotal:         len(lanes),
		DecisionNodes:      decisionNodes,
		BranchEdges:        branchEdges,
		Joins:              joins,
		MaxDepth:           maxDepth,
		MaxBranchDepth:     maxBranchDepth,
		CyclesTotal:        cyclesTotal,
		MaxCycleDepth:      maxCycleDepth,
		MaxBranchesPerRank: maxBranchesPerRank,
		MaxTracksPerLane:   maxTracksPerLane,
	}
}
