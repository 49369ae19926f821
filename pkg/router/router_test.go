package router

import (
	"testing"

	"github.com/flowlane/sff/pkg/model"
	"github.com/flowlane/sff/pkg/track"
)

func TestRouteNormalTB_FourPoints(t *testing.T) {
	lanes := map[string]LaneBounds{"l1": {ID: "l1", Order: 1, Start: 0, End: 300, Center: 150}}
	nodes := map[string]NodeBox{
		"s": {ID: "s", Lane: "l1", X: 150, Y: 160, W: 40, H: 40},
		"p": {ID: "p", Lane: "l1", X: 150, Y: 320, W: 180, H: 50},
	}
	tracks := map[string]*track.LaneTracks{"l1": track.NewLaneTracks("l1", 13, 7, 24)}
	r := New(model.DirectionTB, nodes, lanes, tracks)

	e := &model.Edge{ID: "e1", From: "s", To: "p", Classification: model.EdgeClassification{Kind: model.EdgeMainPath}, RoutingConstraints: model.RoutingConstraints{MinSeparation: 24}}
	pts, _, err := r.Route(e, 1, 0)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(pts) != 4 {
		t.Fatalf("len(pts) = %d, want 4", len(pts))
	}
	if pts[0].X != 150 || pts[3].X != 150 {
		t.Errorf("endpoints should sit at node center x: %+v", pts)
	}
}

func TestRouteLoop_FivePoints(t *testing.T) {
	lanes := map[string]LaneBounds{"l1": {ID: "l1", Order: 1, Start: 0, End: 300, Center: 150}}
	nodes := map[string]NodeBox{
		"d": {ID: "d", Lane: "l1", X: 150, Y: 480, W: 60, H: 60},
		"p": {ID: "p", Lane: "l1", X: 150, Y: 320, W: 180, H: 50},
	}
	tracks := map[string]*track.LaneTracks{"l1": track.NewLaneTracks("l1", 13, 7, 24)}
	r := New(model.DirectionTB, nodes, lanes, tracks)

	e := &model.Edge{ID: "e1", From: "d", To: "p", Classification: model.EdgeClassification{Kind: model.EdgeReturn, IsReturn: true}}
	pts, _, err := r.Route(e, 3, 1)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(pts) != 5 {
		t.Fatalf("len(pts) = %d, want 5", len(pts))
	}
	if pts[2].X <= lanes["l1"].End {
		t.Errorf("corridor x = %.1f, want beyond lane end %.1f", pts[2].X, lanes["l1"].End)
	}
}
