package layout

import (
	"sort"

	"github.com/flowlane/sff/pkg/model"
	"github.com/flowlane/sff/pkg/router"
)

// Fixed node footprints. Delay is sized between process and decision
// since it represents a bounded wait, not a branch.
const (
	processW, processH   = 180.0, 50.0
	decisionW, decisionH = 60.0, 60.0
	termW, termH         = 40.0, 40.0
	delayW, delayH       = 80.0, 50.0
)

func nodeSize(kind model.NodeKind) (float64, float64) {
	switch kind {
	case model.NodeProcess:
		return processW, processH
	case model.NodeDecision:
		return decisionW, decisionH
	case model.NodeDelay:
		return delayW, delayH
	default: // start, end
		return termW, termH
	}
}

// laneBoundsFor assigns each lane a contiguous laneWidth-wide band along
// the cross-flow axis, ordered by lane.Order.
func laneBoundsFor(lanes []model.Lane, laneWidth float64) map[string]router.LaneBounds {
	ordered := append([]model.Lane(nil), lanes...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Order != ordered[j].Order {
			return ordered[i].Order < ordered[j].Order
		}
		return ordered[i].ID < ordered[j].ID
	})

	out := make(map[string]router.LaneBounds, len(ordered))
	cursor := 0.0
	for _, l := range ordered {
		start := cursor
		end := start + laneWidth
		out[l.ID] = router.LaneBounds{
			ID:     l.ID,
			Order:  l.Order,
			Start:  start,
			End:    end,
			Center: (start + end) / 2,
		}
		cursor = end
	}
	return out
}

// positionNodes computes each node's center coordinates: primary axis is
// the lane center (track offset is always 0, since nodes sit at
// center_track); secondary axis is rank.global * rank_gap.
func positionNodes(nodes []model.Node, lanes map[string]router.LaneBounds, direction model.Direction, rankGap float64) map[string]router.NodeBox {
	out := make(map[string]router.NodeBox, len(nodes))
	for _, n := range nodes {
		w, h := nodeSize(n.Kind)
		lb := lanes[n.Lane]
		primary := lb.Center
		secondary := float64(n.Rank.Global) * rankGap
		box := router.NodeBox{ID: n.ID, Lane: n.Lane, W: w, H: h}
		if direction == model.DirectionTB {
			box.X, box.Y = primary, secondary
		} else {
			box.X, box.Y = secondary, primary
		}
		out[n.ID] = box
	}
	return out
}
