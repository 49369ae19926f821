// Package router implements the Orthogonal Router: one edge
// at a time, producing strictly orthogonal polylines with exactly four
// points for normal and bridge-corridor edges, five for loops.
package router

import (
	"github.com/flowlane/sff/pkg/cpferr"
	"github.com/flowlane/sff/pkg/model"
	"github.com/flowlane/sff/pkg/track"
)

// NodeBox is a node's positioned bounding box, center-anchored.
type NodeBox struct {
	ID   string
	Lane string
	X, Y float64
	W, H float64
}

func (b NodeBox) left() float64   { return b.X - b.W/2 }
func (b NodeBox) right() float64  { return b.X + b.W/2 }
func (b NodeBox) top() float64    { return b.Y - b.H/2 }
func (b NodeBox) bottom() float64 { return b.Y + b.H/2 }

// LaneBounds is a lane's extent along the cross-flow axis (x for TB, y for
// LR), plus the declared order used to decide left/right (TB) or top/bottom
// (LR) adjacency for bridge corridors.
type LaneBounds struct {
	ID     string
	Order  int
	Start  float64
	End    float64
	Center float64
}

// channelKey groups edges that may reuse the same routed track, per the
// Channel glossary entry: (lane, rank-band, edge-kind, role, direction).
type channelKey struct {
	lane      string
	rankBand  int
	kind      model.EdgeKind
	role      string
	direction model.Direction
}

// Router holds the per-attempt routing state: node/lane geometry, the Track
// System for every lane, and the channel map used for track reuse. A fresh
// Router is built for each Layout Engine attempt.
type Router struct {
	Direction model.Direction

	Nodes  map[string]NodeBox
	Lanes  map[string]LaneBounds
	Tracks map[string]*track.LaneTracks

	channels map[channelKey]int

	// OuterExtent is the outermost cross-axis coordinate across all lanes
	// (max x_end for TB, min y_start for LR) that the external backbone
	// corridor is offset from.
	OuterExtent float64

	// Bridges and Backbones record corridor usage for the bridge_dump.json
	// / layout debug dumps; appended to as edges route successfully.
	Bridges   []BridgeUse
	Backbones []BackboneUse
}

// BridgeUse records one cross-lane bridge-corridor routing for debug dumps.
type BridgeUse struct {
	EdgeID string  `json:"edge_id"`
	SpineX float64 `json:"spine,omitempty"`
	LaneA  string  `json:"lane_a"`
	LaneB  string  `json:"lane_b"`
}

// BackboneUse records one external-backbone loop routing for debug dumps.
type BackboneUse struct {
	EdgeID     string  `json:"edge_id"`
	Corridor   float64 `json:"corridor"`
	CycleLevel int     `json:"cycle_level"`
}

const (
	loopBaseOffset = 80.0
	loopSpacing    = 80.0
	loopVOffset    = 20.0
)

// New constructs a Router for one layout attempt.
func New(direction model.Direction, nodes map[string]NodeBox, lanes map[string]LaneBounds, tracks map[string]*track.LaneTracks) *Router {
	outer := 0.0
	first := true
	for _, lb := range lanes {
		if direction == model.DirectionTB {
			if first || lb.End > outer {
				outer = lb.End
				first = false
			}
		} else {
			if first || lb.Start < outer {
				outer = lb.Start
				first = false
			}
		}
	}
	return &Router{
		Direction:   direction,
		Nodes:       nodes,
		Lanes:       lanes,
		Tracks:      tracks,
		channels:    map[channelKey]int{},
		OuterExtent: outer,
	}
}

// Route dispatches an edge to the matching routing strategy and returns its
// polyline plus the lane track index its middle segment runs on (0 if the
// strategy uses no lane track, as with bridges and loops; a straight TB run
// reports its track without reserving it), or a
// *cpferr.RoutingImpossibleError if no configuration clears node-bbox and
// track-conflict checks.
func (r *Router) Route(e *model.Edge, rankGlobal, cycleLevel int) ([]model.Point, int, error) {
	src, ok := r.Nodes[e.From]
	if !ok {
		return nil, 0, &cpferr.LayoutImpossibleError{Reason: "missing node geometry for " + e.From}
	}
	dst, ok := r.Nodes[e.To]
	if !ok {
		return nil, 0, &cpferr.LayoutImpossibleError{Reason: "missing node geometry for " + e.To}
	}

	if e.Classification.IsReturn {
		pts, err := r.routeLoop(e, src, dst, cycleLevel)
		return pts, 0, err
	}
	if e.Classification.IsCrossLane {
		pts, err := r.routeBridge(e, src, dst)
		return pts, 0, err
	}
	if r.Direction == model.DirectionTB {
		return r.routeNormalTB(e, src, dst, rankGlobal)
	}
	return r.routeNormalLR(e, src, dst, rankGlobal)
}

func role(e *model.Edge) string {
	switch {
	case e.Classification.Kind == model.EdgeBranch:
		return "branch"
	case e.Classification.Kind == model.EdgeJoin:
		return "join"
	default:
		return "mid"
	}
}
