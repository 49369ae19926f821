package compiler

import (
	"sort"

	"github.com/flowlane/sff/internal/graphir"
	"github.com/flowlane/sff/pkg/model"
)

// walkMainPath deterministically walks from the entry node until it would
// repeat a node or runs out of outgoing edges, returning the traversed
// node ids and edge ids in walk order.
func walkMainPath(doc *model.Document, nodes map[string]*workingNode, edges map[string]*workingEdge, arena *graphir.Arena) ([]string, []string) {
	visited := map[string]bool{}
	var nodePath, edgePath []string
	cur := doc.Entry.Start

	for {
		if visited[cur] {
			break
		}
		visited[cur] = true
		nodePath = append(nodePath, cur)

		idx, ok := arena.Index(cur)
		if !ok {
			break
		}
		var candidateIDs []string
		for _, ei := range arena.OutEdges[idx] {
			candidateIDs = append(candidateIDs, arena.EdgeIDs[ei])
		}
		if len(candidateIDs) == 0 {
			break
		}
		sort.Strings(candidateIDs)

		n := nodes[cur]
		var chosen string
		if n.kind == model.NodeDecision {
			for _, id := range candidateIDs {
				if normalizeBranchLabel(edges[id].branch) == "true" {
					chosen = id
					break
				}
			}
			if chosen == "" {
				for _, id := range candidateIDs {
					if edges[id].branch != "" {
						chosen = id
						break
					}
				}
			}
			if chosen == "" {
				chosen = candidateIDs[0]
			}
		} else {
			for _, id := range candidateIDs {
				if edges[id].branch == "" {
					chosen = id
					break
				}
			}
			if chosen == "" {
				chosen = candidateIDs[0]
			}
		}

		edgePath = append(edgePath, chosen)
		cur = edges[chosen].to
	}

	return nodePath, edgePath
}
