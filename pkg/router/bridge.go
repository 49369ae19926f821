package router

import "github.com/flowlane/sff/pkg/model"

// routeBridge implements the bridge-corridor construction for forward
// cross-lane edges, symmetric for LR: the polyline runs along a spine
// midway between the two lanes.
// Bridge corridors are not tracked in the lane's occupancy maps: the spine
// sits in the gap between lanes, outside any lane's track range.
func (r *Router) routeBridge(e *model.Edge, src, dst NodeBox) ([]model.Point, error) {
	srcLane := r.Lanes[src.Lane]
	dstLane := r.Lanes[dst.Lane]
	left, right := srcLane, dstLane
	if right.Start < left.Start {
		left, right = right, left
	}
	spine := (left.End + right.Start) / 2

	r.Bridges = append(r.Bridges, BridgeUse{EdgeID: e.ID, SpineX: spine, LaneA: src.Lane, LaneB: dst.Lane})

	if r.Direction == model.DirectionTB {
		return []model.Point{
			{X: src.X, Y: src.Y},
			{X: spine, Y: src.Y},
			{X: spine, Y: dst.Y},
			{X: dst.X, Y: dst.Y},
		}, nil
	}
	return []model.Point{
		{X: src.X, Y: src.Y},
		{X: src.X, Y: spine},
		{X: dst.X, Y: spine},
		{X: dst.X, Y: dst.Y},
	}, nil
}
