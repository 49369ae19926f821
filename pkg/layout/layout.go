// Package layout implements the Layout Engine: the
// orchestrator that drives lane initialization, node positioning, edge
// routing through the Track System and Orthogonal Router, and the
// Congestion Manager's retry-with-expansion loop.
package layout

import (
	"github.com/flowlane/sff/pkg/congestion"
	"github.com/flowlane/sff/pkg/cpferr"
	"github.com/flowlane/sff/pkg/debug"
	"github.com/flowlane/sff/pkg/model"
	"github.com/flowlane/sff/pkg/router"
	"github.com/flowlane/sff/pkg/track"
)

const (
	laneWidth   = 300.0
	baseRankGap = 160.0
)

// Options carries the Layout Engine's tunable defaults, normally sourced
// from pkg/config. A LaneWidth or BaseRankGap that is not positive falls
// back to the built-in default, as does a MaxGlobalExpansions that is not
// positive.
type Options struct {
	LaneWidth           float64
	BaseRankGap         float64
	MaxGlobalExpansions int
}

// DefaultOptions returns the Layout Engine's built-in defaults.
func DefaultOptions() Options {
	return Options{LaneWidth: laneWidth, BaseRankGap: baseRankGap, MaxGlobalExpansions: 3}
}

// Compute runs the Layout Engine to completion using the built-in default
// options, returning the geometric layout or a fatal error.
func Compute(cr *model.CompileResult) (*model.GeometricLayout, error) {
	return ComputeWithOptions(cr, DefaultOptions())
}

// ComputeWithOptions runs the Layout Engine to completion with
// caller-supplied tunables.
func ComputeWithOptions(cr *model.CompileResult, opts Options) (*model.GeometricLayout, error) {
	defer debug.LogEnterExit("layout.Compute")()

	if opts.LaneWidth <= 0 {
		opts.LaneWidth = laneWidth
	}
	if opts.BaseRankGap <= 0 {
		opts.BaseRankGap = baseRankGap
	}

	lanesMap := make(map[string]*model.Lane, len(cr.Lanes))
	for i := range cr.Lanes {
		l := cr.Lanes[i]
		lanesMap[l.ID] = &l
	}
	nodeByID := make(map[string]model.Node, len(cr.Nodes))
	for _, n := range cr.Nodes {
		nodeByID[n.ID] = n
	}
	cycleLevelByNode := make(map[string]int, len(cr.Nodes))
	for _, n := range cr.Nodes {
		if n.CycleContext != nil {
			cycleLevelByNode[n.ID] = n.CycleContext.CycleLevel
		}
	}

	mgr := congestion.NewManagerWithCap(opts.MaxGlobalExpansions)
	rankGap := opts.BaseRankGap

	edgesPerLane := map[string]int{}
	for _, e := range cr.Edges {
		edgesPerLane[nodeByID[e.From].Lane]++
		if nodeByID[e.To].Lane != nodeByID[e.From].Lane {
			edgesPerLane[nodeByID[e.To].Lane]++
		}
	}
	debug.Log("layout: pre-routing projection over %d lanes", len(lanesMap))
	if mgr.AnalyzePrerouting(lanesMap, edgesPerLane) {
		debug.Log("layout: pre-routing projection triggered an initial expansion")
		gap, err := mgr.ApplyGlobalExpansion(lanesMap, opts.BaseRankGap)
		if err != nil {
			return nil, err
		}
		rankGap = gap
	}

	var failures []attemptFailure
	attempts := mgr.MaxGlobalExpansions + 1
	for attempt := 0; attempt < attempts; attempt++ {
		debug.Log("layout: attempt %d (rank_gap=%.1f)", attempt+1, rankGap)
		result, trace, err := tryLayout(cr, lanesMap, nodeByID, cycleLevelByNode, rankGap, opts.LaneWidth)
		if err == nil {
			if debug.Enabled() {
				writeDumps(result, trace)
			}
			return result, nil
		}
		failures = append(failures, attemptFailure{Attempt: attempt + 1, Err: err.Error()})
		if !cpferr.Recoverable(err) {
			return nil, err
		}
		debug.Log("layout: attempt %d recoverable failure: %v", attempt+1, err)
		gap, expErr := mgr.ApplyGlobalExpansion(lanesMap, opts.BaseRankGap)
		if expErr != nil {
			writeFailureDump(failures)
			return nil, expErr
		}
		rankGap = gap
	}
	writeFailureDump(failures)
	return nil, &cpferr.UnscalableStructureError{Expansions: mgr.GlobalExpansionCount}
}

// engineTrace carries the per-attempt routing state needed for debug dumps.
type engineTrace struct {
	tracks map[string]*track.LaneTracks
	r      *router.Router
}

type attemptFailure struct {
	Attempt int    `json:"attempt"`
	Err     string `json:"error"`
}

// tryLayout performs one full attempt: lane geometry, node placement,
// edge sort, routing with congestion sampling.
func tryLayout(cr *model.CompileResult, lanes map[string]*model.Lane, nodeByID map[string]model.Node, cycleLevelByNode map[string]int, rankGap float64, laneWidthOpt float64) (*model.GeometricLayout, *engineTrace, error) {
	direction := cr.CPFF.LayoutContext.Direction

	tracks := make(map[string]*track.LaneTracks, len(lanes))
	for id, l := range lanes {
		tracks[id] = track.NewLaneTracks(id, l.TracksTotal, l.CenterTrack, l.TrackGap)
	}

	laneBounds := laneBoundsFor(cr.Lanes, laneWidthOpt)

	nodeBoxes := positionNodes(cr.Nodes, laneBounds, direction, rankGap)
	rt := router.New(direction, nodeBoxes, laneBounds, tracks)

	sortedEdges := sortEdgesForRouting(cr.Edges, nodeByID)

	maxRank := 0
	for _, n := range cr.Nodes {
		if n.Rank.Global > maxRank {
			maxRank = n.Rank.Global
		}
	}

	edgesRoutedInLaneRank := map[string]map[int]int{}
	mainPathTracks := map[string]map[int]bool{}

	edgeGeoms := make([]model.EdgeGeometry, 0, len(sortedEdges))
	for _, e := range sortedEdges {
		fromNode := nodeByID[e.From]
		pts, trackIdx, err := rt.Route(&e, fromNode.Rank.Global, cycleLevelByNode[e.From])
		if err != nil {
			return nil, nil, err
		}
		edgeGeoms = append(edgeGeoms, model.EdgeGeometry{ID: e.ID, Points: pts})

		lane := fromNode.Lane
		if edgesRoutedInLaneRank[lane] == nil {
			edgesRoutedInLaneRank[lane] = map[int]int{}
		}
		edgesRoutedInLaneRank[lane][fromNode.Rank.Global]++
		if e.Classification.Kind == model.EdgeMainPath && trackIdx != 0 {
			if mainPathTracks[lane] == nil {
				mainPathTracks[lane] = map[int]bool{}
			}
			mainPathTracks[lane][trackIdx] = true
		}

		laneModel := lanes[lane]
		_, congErr := congestion.UpdateAfterEdge(lane, laneModel, tracks[lane], edgesRoutedInLaneRank[lane][fromNode.Rank.Global], laneWidthOpt, len(mainPathTracks[lane]))
		if congErr != nil {
			return nil, nil, congErr
		}
	}

	nodeGeoms := make([]model.NodeGeometry, 0, len(cr.Nodes))
	for _, n := range cr.Nodes {
		box := nodeBoxes[n.ID]
		nodeGeoms = append(nodeGeoms, model.NodeGeometry{ID: n.ID, X: box.X, Y: box.Y, Width: box.W, Height: box.H})
	}

	laneGeoms := make([]model.LaneGeometry, 0, len(cr.Lanes))
	for _, l := range cr.Lanes {
		lb := laneBounds[l.ID]
		laneGeoms = append(laneGeoms, model.LaneGeometry{ID: l.ID, Start: lb.Start, End: lb.End, TracksTotal: lanes[l.ID].TracksTotal})
	}

	layoutResult := &model.GeometricLayout{
		EngineVersion: model.CurrentEngineVersion,
		Direction:     direction,
		Nodes:         nodeGeoms,
		Edges:         edgeGeoms,
		Lanes:         laneGeoms,
	}
	layoutResult.Complexity = computeComplexity(cr, laneGeoms, maxRank, rankGap)

	return layoutResult, &engineTrace{tracks: tracks, r: rt}, nil
}
