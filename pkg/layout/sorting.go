package layout

import (
	"sort"

	"github.com/flowlane/sff/pkg/model"
)

func edgeGroup(k model.EdgeKind) int {
	switch k {
	case model.EdgeMainPath:
		return 0
	case model.EdgeBranch:
		return 1
	case model.EdgeCrossLane:
		return 3
	case model.EdgeReturn:
		return 4
	case model.EdgeJoin:
		return 5
	default:
		return 6
	}
}

// sortEdgesForRouting orders edges group-then-priority: branch edges break
// ties by descending source future_steps, all other groups by descending
// priority, both falling back to id.
func sortEdgesForRouting(edges []model.Edge, nodeByID map[string]model.Node) []model.Edge {
	out := append([]model.Edge(nil), edges...)
	sort.SliceStable(out, func(i, j int) bool {
		gi, gj := edgeGroup(out[i].Classification.Kind), edgeGroup(out[j].Classification.Kind)
		if gi != gj {
			return gi < gj
		}
		if gi == 1 {
			fi := nodeByID[out[i].From].FutureMetrics.FutureSteps
			fj := nodeByID[out[j].From].FutureMetrics.FutureSteps
			if fi != fj {
				return fi > fj
			}
			return out[i].ID < out[j].ID
		}
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}
