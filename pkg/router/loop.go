package router

import "github.com/flowlane/sff/pkg/model"

// routeLoop implements the external-backbone construction for return
// (loop) edges: a five-point polyline
// running through a lateral corridor outside every lane, offset further out
// for each nested cycle level.
func (r *Router) routeLoop(e *model.Edge, src, dst NodeBox, cycleLevel int) ([]model.Point, error) {
	if cycleLevel < 1 {
		cycleLevel = 1
	}
	corridor := r.OuterExtent
	offset := loopBaseOffset + float64(cycleLevel-1)*loopSpacing

	r.Backbones = append(r.Backbones, BackboneUse{EdgeID: e.ID, CycleLevel: cycleLevel})

	if r.Direction == model.DirectionTB {
		corridor += offset
		r.Backbones[len(r.Backbones)-1].Corridor = corridor

		x1 := src.X + src.W/2
		x5 := dst.X + dst.W/2
		vSign := 1.0
		if dst.Y < src.Y {
			vSign = -1.0
		}
		sameY := src.Y + vSign*loopVOffset

		return []model.Point{
			{X: x1, Y: src.Y},
			{X: x1, Y: sameY},
			{X: corridor, Y: sameY},
			{X: corridor, Y: dst.Y},
			{X: x5, Y: dst.Y},
		}, nil
	}

	corridor -= offset
	r.Backbones[len(r.Backbones)-1].Corridor = corridor

	y1 := src.Y - src.H/2
	y5 := dst.Y - dst.H/2
	hSign := 1.0
	if dst.X < src.X {
		hSign = -1.0
	}
	sameX := src.X + hSign*loopVOffset

	return []model.Point{
		{X: src.X, Y: y1},
		{X: sameX, Y: y1},
		{X: sameX, Y: corridor},
		{X: dst.X, Y: corridor},
		{X: dst.X, Y: y5},
	}, nil
}
