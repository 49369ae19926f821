package compiler

import (
	"sort"

	"github.com/flowlane/sff/internal/graphir"
	"github.com/flowlane/sff/pkg/model"
)

// computeFutureMetrics runs a forward BFS from every node, skipping
// return-classified edges, and records reachability counts plus a
// two-rank lookahead for the dominant next lane.
func computeFutureMetrics(arena *graphir.Arena, nodes map[string]*workingNode, edges map[string]*workingEdge) {
	n := len(arena.NodeIDs)

	fwd := make([][]int, n) // edge indices, excluding return edges
	for ei, id := range arena.EdgeIDs {
		if edges[id].class.Kind == model.EdgeReturn {
			continue
		}
		fi := arena.EdgeFrom[ei]
		fwd[fi] = append(fwd[fi], ei)
	}
	for i := range fwd {
		sort.Slice(fwd[i], func(a, b int) bool { return arena.EdgeIDs[fwd[i][a]] < arena.EdgeIDs[fwd[i][b]] })
	}

	for startIdx, startID := range arena.NodeIDs {
		startNode := nodes[startID]
		visited := make([]bool, n)
		visited[startIdx] = true
		queue := []int{startIdx}

		steps, decisions, crossLane := 0, 0, 0
		laneFreq := map[string]int{}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]

			for _, ei := range fwd[cur] {
				eid := arena.EdgeIDs[ei]
				if edges[eid].class.Kind == model.EdgeCrossLane {
					crossLane++
				}
				tj := arena.EdgeTo[ei]
				if visited[tj] {
					continue
				}
				visited[tj] = true
				steps++
				tNode := nodes[arena.NodeIDs[tj]]
				if tNode.kind == model.NodeDecision {
					decisions++
				}
				if d := tNode.rank.Global - startNode.rank.Global; (d == 1 || d == 2) && tNode.lane != startNode.lane {
					laneFreq[tNode.lane]++
				}
				queue = append(queue, tj)
			}
		}

		var laneKeys []string
		for l := range laneFreq {
			laneKeys = append(laneKeys, l)
		}
		sort.Strings(laneKeys)
		bestLane, bestCount := "", -1
		for _, l := range laneKeys {
			if laneFreq[l] > bestCount {
				bestCount = laneFreq[l]
				bestLane = l
			}
		}

		startNode.future = model.FutureMetrics{
			FutureSteps:     steps,
			FutureDecisions: decisions,
			CrossLaneAhead:  crossLane,
			NextLaneTarget:  bestLane,
		}
	}
}
