package router

import (
	"github.com/flowlane/sff/pkg/cpferr"
	"github.com/flowlane/sff/pkg/model"
)

// candidateOrder returns the lane's symmetric track order with any already
// reserved channel track moved to the front so similar edges regroup.
func candidateOrder(order []int, preferred int, havePreferred bool) []int {
	if !havePreferred {
		return order
	}
	out := make([]int, 0, len(order))
	out = append(out, preferred)
	for _, t := range order {
		if t != preferred {
			out = append(out, t)
		}
	}
	return out
}

// routeNormalTB implements the V-H-V construction for same-lane TB edges.
func (r *Router) routeNormalTB(e *model.Edge, src, dst NodeBox, rankGlobal int) ([]model.Point, int, error) {
	lt := r.Tracks[src.Lane]
	if lt == nil {
		return nil, 0, &cpferr.LayoutImpossibleError{Reason: "no track system for lane " + src.Lane}
	}

	goingDown := dst.Y >= src.Y
	var sPort, dPort float64
	if goingDown {
		sPort = src.Y + src.H/2
		dPort = dst.Y - dst.H/2
	} else {
		sPort = src.Y - src.H/2
		dPort = dst.Y + dst.H/2
	}
	baseMidY := (sPort + dPort) / 2

	key := channelKey{lane: src.Lane, rankBand: rankGlobal / 2, kind: e.Classification.Kind, role: role(e), direction: r.Direction}
	pref, havePref := r.channels[key]
	order := candidateOrder(lt.SymmetricTrackOrder(), pref, havePref)

	minSep := e.RoutingConstraints.MinSeparation
	lo, hi := sPort, dPort
	if lo > hi {
		lo, hi = hi, lo
	}

	// A straight run (src.X == dst.X) has a zero-length horizontal segment
	// with no horizontal extent, so it neither checks nor reserves track
	// occupancy.
	straight := src.X == dst.X

	reason := "no horizontal track available"
	for _, t := range order {
		midY := baseMidY + lt.GetTrackOffset(t)
		if midY < lo+lt.TrackGap || midY > hi-lt.TrackGap {
			continue
		}
		if !r.hSegmentClear(src.X, dst.X, midY, src.ID, dst.ID) {
			reason = "horizontal from source hits node"
			continue
		}
		if !straight && lt.CheckHConflict(t, src.X, dst.X, minSep) {
			continue
		}
		if !r.vSegmentClear(sPort, midY, src.X, src.ID, dst.ID) || !r.vSegmentClear(midY, dPort, dst.X, src.ID, dst.ID) {
			reason = "vertical from source hits node"
			continue
		}

		if !straight {
			lt.OccupyHSegment(t, src.X, dst.X, e.ID)
		}
		r.channels[key] = t
		return []model.Point{
			{X: src.X, Y: sPort},
			{X: src.X, Y: midY},
			{X: dst.X, Y: midY},
			{X: dst.X, Y: dPort},
		}, t, nil
	}
	return nil, 0, &cpferr.RoutingImpossibleError{EdgeID: e.ID, Reason: reason}
}

// routeNormalLR implements the H-V-H construction for same-lane LR edges.
func (r *Router) routeNormalLR(e *model.Edge, src, dst NodeBox, rankGlobal int) ([]model.Point, int, error) {
	lt := r.Tracks[src.Lane]
	if lt == nil {
		return nil, 0, &cpferr.LayoutImpossibleError{Reason: "no track system for lane " + src.Lane}
	}

	goingRight := dst.X >= src.X
	var sPort, dPort float64
	if goingRight {
		sPort = src.X + src.W/2
		dPort = dst.X - dst.W/2
	} else {
		sPort = src.X - src.W/2
		dPort = dst.X + dst.W/2
	}
	baseMidX := (sPort + dPort) / 2

	key := channelKey{lane: src.Lane, rankBand: rankGlobal / 2, kind: e.Classification.Kind, role: role(e), direction: r.Direction}
	pref, havePref := r.channels[key]
	order := candidateOrder(lt.SymmetricTrackOrder(), pref, havePref)

	minSep := e.RoutingConstraints.MinSeparation
	lo, hi := sPort, dPort
	if lo > hi {
		lo, hi = hi, lo
	}

	reason := "no vertical track available"
	for _, t := range order {
		midX := baseMidX + lt.GetTrackOffset(t)
		if midX < lo+lt.TrackGap || midX > hi-lt.TrackGap {
			continue
		}
		if !r.vSegmentClear(src.Y, dst.Y, midX, src.ID, dst.ID) {
			reason = "vertical from source hits node"
			continue
		}
		if lt.CheckVConflict(t, src.Y, dst.Y, minSep) {
			continue
		}
		if !r.hSegmentClear(sPort, midX, src.Y, src.ID, dst.ID) || !r.hSegmentClear(midX, dPort, dst.Y, src.ID, dst.ID) {
			reason = "horizontal from source hits node"
			continue
		}

		lt.OccupyVSegment(t, src.Y, dst.Y, e.ID)
		r.channels[key] = t
		return []model.Point{
			{X: sPort, Y: src.Y},
			{X: midX, Y: src.Y},
			{X: midX, Y: dst.Y},
			{X: dPort, Y: dst.Y},
		}, t, nil
	}
	return nil, 0, &cpferr.RoutingImpossibleError{EdgeID: e.ID, Reason: reason}
}
