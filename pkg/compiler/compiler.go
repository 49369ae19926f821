// Package compiler implements the Flow Compiler: a single
// deterministic eight-phase pass turning a raw sff declaration into the
// enriched cpff intermediate representation.
package compiler

import (
	"sort"
	"strings"

	"github.com/flowlane/sff/internal/graphir"
	"github.com/flowlane/sff/pkg/cpferr"
	"github.com/flowlane/sff/pkg/debug"
	"github.com/flowlane/sff/pkg/model"
)

const (
	defaultTracksTotal     = 13
	defaultExpansionFactor = 1.2
	defaultTrackGap        = 24.0
)

// StructureValidator and LogicValidator match the external validator
// contract: each returns an ordered list of error strings.
type StructureValidator func(*model.Document) []string
type LogicValidator func(*model.Document) []string

// Compiler drives the eight-phase compilation pass. Its two validator hooks
// have no default: New stores whatever the caller passes, so any
// implementation satisfying the same contract can be plugged in.
type Compiler struct {
	ValidateStructure StructureValidator
	ValidateLogic     LogicValidator
}

// New constructs a Compiler. Validators must be supplied by the caller
// (typically pkg/validate.Structure / pkg/validate.Logic) to keep this
// package decoupled from any one validator implementation.
func New(structure StructureValidator, logic LogicValidator) *Compiler {
	return &Compiler{ValidateStructure: structure, ValidateLogic: logic}
}

// workingNode accumulates per-phase fields in a side table keyed by node
// id, materialized into an immutable model.Node only once compilation
// completes.
type workingNode struct {
	id    string
	kind  model.NodeKind
	lane  string
	label string
	rank  model.RankBlock
	links model.NodeLinks

	branchCtx *model.BranchContext
	cycleCtx  *model.CycleContext
	future    model.FutureMetrics
	hints     model.LayoutHints
}

type workingEdge struct {
	id     string
	from   string
	to     string
	branch string
	class  model.EdgeClassification
	prio   int
	constr model.RoutingConstraints
	hints  model.RoutingHints
}

// Compile runs all eight phases and returns the frozen, enriched IR.
func (c *Compiler) Compile(doc *model.Document) (*model.CompileResult, error) {
	if errs := c.ValidateStructure(doc); len(errs) > 0 {
		return nil, &cpferr.StructuralError{Reasons: errs}
	}
	if errs := c.ValidateLogic(doc); len(errs) > 0 {
		return nil, &cpferr.LogicError{Reasons: errs}
	}

	direction, _ := model.ParseDirection(doc.SFF.Direction)

	defer debug.LogEnterExit("compiler.Compile")()

	// --- Phase 1: base parse -------------------------------------------
	debug.Log("phase 1: base parse")
	lanes, nodes, edgeOrder, err := baseParse(doc)
	if err != nil {
		return nil, err
	}

	nodeIDs := make([]string, 0, len(nodes))
	for id := range nodes {
		nodeIDs = append(nodeIDs, id)
	}
	arena := graphir.NewArena(nodeIDs)

	edges := make(map[string]*workingEdge, len(edgeOrder))
	for _, e := range edgeOrder {
		edges[e.id] = e
		arena.AddEdge(e.id, e.from, e.to)
	}

	// --- Phase 2: graph build -------------------------------------------
	debug.Log("phase 2: graph build")
	arena.Build()
	for i, id := range arena.NodeIDs {
		n := nodes[id]
		for _, pj := range arena.Prev[i] {
			n.links.PrevNodes = append(n.links.PrevNodes, arena.NodeIDs[pj])
		}
		for _, nj := range arena.Next[i] {
			n.links.NextNodes = append(n.links.NextNodes, arena.NodeIDs[nj])
		}
		for _, ei := range arena.InEdges[i] {
			n.links.InEdges = append(n.links.InEdges, arena.EdgeIDs[ei])
		}
		for _, ei := range arena.OutEdges[i] {
			n.links.OutEdges = append(n.links.OutEdges, arena.EdgeIDs[ei])
		}
	}
	graphPrev := make(map[string][]string, len(arena.NodeIDs))
	graphNext := make(map[string][]string, len(arena.NodeIDs))
	for _, id := range arena.NodeIDs {
		graphPrev[id] = append([]string(nil), nodes[id].links.PrevNodes...)
		graphNext[id] = append([]string(nil), nodes[id].links.NextNodes...)
	}

	// --- Phase 3: ranks ---------------------------------------------------
	debug.Log("phase 3: ranks")
	entryIdx, ok := arena.Index(doc.Entry.Start)
	if !ok {
		return nil, &cpferr.LayoutImpossibleError{Reason: "entry.start not found in arena"}
	}
	maxDepth := computeRanks(arena, nodes, entryIdx)

	// Per-lane rank.lane assignment: sort nodes per lane by (global, id).
	byLane := map[string][]string{}
	for _, id := range arena.NodeIDs {
		byLane[nodes[id].lane] = append(byLane[nodes[id].lane], id)
	}
	for lane, ids := range byLane {
		sort.Slice(ids, func(i, j int) bool {
			ni, nj := nodes[ids[i]], nodes[ids[j]]
			if ni.rank.Global != nj.rank.Global {
				return ni.rank.Global < nj.rank.Global
			}
			return ids[i] < ids[j]
		})
		for k, id := range ids {
			nodes[id].rank.Lane = k + 1
		}
		byLane[lane] = ids
	}

	// --- Phase 4: cycle detection -----------------------------------------
	debug.Log("phase 4: cycle detection")
	infos, _, err := detectCycles(arena)
	if err != nil {
		return nil, err
	}
	cyclesTotal := 0
	maxCycleDepth := 0
	for _, inf := range infos {
		if !inf.cyclic {
			continue
		}
		cyclesTotal++
		if inf.cycleLvl > maxCycleDepth {
			maxCycleDepth = inf.cycleLvl
		}
		exitIDs := make([]string, len(inf.exitNodes))
		for i, ni := range inf.exitNodes {
			exitIDs[i] = arena.NodeIDs[ni]
		}
		root := cycleRoot(arena, nodes, inf.nodeIdx)
		for _, ni := range inf.nodeIdx {
			id := arena.NodeIDs[ni]
			nodes[id].rank.CycleDepth = inf.cycleLvl
			nodes[id].cycleCtx = &model.CycleContext{
				CycleID:        inf.cycleID,
				CycleLevel:     inf.cycleLvl,
				CycleRoot:      root,
				CycleExitNodes: exitIDs,
			}
		}
	}

	// --- Phase 5: main path -------------------------------------------
	debug.Log("phase 5: main path")
	mainPathNodes, mainPathEdges := walkMainPath(doc, nodes, edges, arena)
	mainEdgeSet := make(map[string]bool, len(mainPathEdges))
	for _, id := range mainPathEdges {
		mainEdgeSet[id] = true
	}
	mainNodeSet := make(map[string]bool, len(mainPathNodes))
	for _, id := range mainPathNodes {
		mainNodeSet[id] = true
	}

	// --- Phase 6: edge classification -----------------------------------
	debug.Log("phase 6: edge classification")
	classifyEdges(arena, nodes, edges, mainEdgeSet)
	for _, id := range arena.NodeIDs {
		n := nodes[id]
		n.hints.IsMainPath = mainNodeSet[id]
		if n.hints.IsMainPath {
			n.hints.RoutingPriority = 100
		} else {
			n.hints.RoutingPriority = 60
		}
		if direction == model.DirectionTB {
			n.hints.PreferredEntrySide = "top"
			n.hints.PreferredExitSide = "bottom"
		} else {
			n.hints.PreferredEntrySide = "left"
			n.hints.PreferredExitSide = "right"
		}
	}

	// --- Phase 7: future metrics -----------------------------------------
	debug.Log("phase 7: future metrics")
	computeFutureMetrics(arena, nodes, edges)

	// --- Phase 8: stats & normalization -----------------------------------
	debug.Log("phase 8: stats & normalization")
	normalizeBranchDepth(arena, nodes)

	stats := computeStats(nodes, edges, lanes, maxDepth, cyclesTotal, maxCycleDepth)

	return freeze(doc, direction, lanes, nodes, edges, arena, graphPrev, graphNext, stats, edgeOrder), nil
}

func cycleRoot(a *graphir.Arena, nodes map[string]*workingNode, idxs []int) string {
	best := -1
	for _, ni := range idxs {
		if best == -1 {
			best = ni
			continue
		}
		bi, ci := nodes[a.NodeIDs[best]], nodes[a.NodeIDs[ni]]
		if ci.rank.Global < bi.rank.Global || (ci.rank.Global == bi.rank.Global && a.NodeIDs[ni] < a.NodeIDs[best]) {
			best = ni
		}
	}
	return a.NodeIDs[best]
}

func baseParse(doc *model.Document) (map[string]*model.Lane, map[string]*workingNode, []*workingEdge, error) {
	lanes := make(map[string]*model.Lane, len(doc.Lanes))
	for id, li := range doc.Lanes {
		tracksTotal := defaultTracksTotal
		if li.TracksTotal != nil {
			tracksTotal = *li.TracksTotal
		}
		expansion := defaultExpansionFactor
		if li.ExpansionFactor != nil {
			expansion = *li.ExpansionFactor
		}
		gap := defaultTrackGap
		if li.TrackGap != nil {
			gap = *li.TrackGap
		}
		lanes[id] = &model.Lane{
			ID:              id,
			Title:           li.Title,
			Order:           li.Order,
			TracksTotal:     tracksTotal,
			CenterTrack:     (tracksTotal + 1) / 2,
			TrackGap:        gap,
			ExpansionFactor: expansion,
		}
	}

	nodes := make(map[string]*workingNode, len(doc.Nodes))
	for id, ni := range doc.Nodes {
		nodes[id] = &workingNode{
			id:    id,
			kind:  model.NodeKind(ni.Type),
			lane:  ni.Lane,
			label: ni.Label,
		}
	}

	edges := make([]*workingEdge, 0, len(doc.Edges))
	for i, ei := range doc.Edges {
		if ei.From == ei.To {
			id := ei.ID
			if id == "" {
				id = "e" + itoa(i+1)
			}
			return nil, nil, nil, &cpferr.SelfLoopError{EdgeID: id}
		}
		id := ei.ID
		if id == "" {
			id = "e" + itoa(i+1)
		}
		edges = append(edges, &workingEdge{
			id:     id,
			from:   ei.From,
			to:     ei.To,
			branch: ei.Branch,
			constr: model.RoutingConstraints{NoOverlap: true, NoCross: true},
		})
	}
	// min_separation is filled in once each lane's track_gap is known, at
	// freeze time (an edge's source lane determines its separation).
	return lanes, nodes, edges, nil
}

func computeRanks(a *graphir.Arena, nodes map[string]*workingNode, entryIdx int) int {
	visited := make([]bool, len(a.NodeIDs))
	type item struct {
		idx   int
		depth int
	}
	queue := []item{{entryIdx, 0}}
	visited[entryIdx] = true
	maxDepth := 0

	root := nodes[a.NodeIDs[entryIdx]]
	root.rank.Depth = 0
	root.rank.Global = 1
	root.branchCtx = nil

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curID := a.NodeIDs[cur.idx]
		curNode := nodes[curID]
		if cur.depth+1 > maxDepth {
			maxDepth = cur.depth + 1
		}

		children := append([]int(nil), a.Next[cur.idx]...)
		sort.Slice(children, func(i, j int) bool { return a.NodeIDs[children[i]] < a.NodeIDs[children[j]] })

		for _, cj := range children {
			if visited[cj] {
				continue
			}
			visited[cj] = true
			childID := a.NodeIDs[cj]
			child := nodes[childID]
			child.rank.Depth = cur.depth + 1
			child.rank.Global = child.rank.Depth + 1

			if curNode.kind == model.NodeDecision {
				child.rank.BranchDepth = curNode.rank.BranchDepth + 1
				child.branchCtx = &model.BranchContext{RootDecision: curID}
			} else {
				child.rank.BranchDepth = curNode.rank.BranchDepth
				if curNode.branchCtx != nil {
					cp := *curNode.branchCtx
					child.branchCtx = &cp
				}
			}
			queue = append(queue, item{cj, cur.depth + 1})
		}
	}
	return maxDepth
}

func normalizeBranchDepth(a *graphir.Arena, nodes map[string]*workingNode) {
	order := append([]string(nil), a.NodeIDs...)
	sort.Slice(order, func(i, j int) bool {
		ni, nj := nodes[order[i]], nodes[order[j]]
		if ni.rank.Global != nj.rank.Global {
			return ni.rank.Global < nj.rank.Global
		}
		return order[i] < order[j]
	})

	for _, id := range order {
		n := nodes[id]
		if len(n.links.PrevNodes) == 0 {
			continue
		}
		min := -1
		for _, p := range n.links.PrevNodes {
			bd := nodes[p].rank.BranchDepth
			if min == -1 || bd < min {
				min = bd
			}
		}
		n.rank.BranchDepth = min
		if min == 0 {
			n.branchCtx = nil
		}
	}
}

// freeze materializes the working tables into the immutable CompileResult.
func freeze(
	doc *model.Document,
	direction model.Direction,
	lanes map[string]*model.Lane,
	nodes map[string]*workingNode,
	edges map[string]*workingEdge,
	arena *graphir.Arena,
	graphPrev, graphNext map[string][]string,
	stats model.Stats,
	edgeOrder []*workingEdge,
) *model.CompileResult {
	laneSlice := make([]model.Lane, 0, len(lanes))
	for _, l := range lanes {
		laneSlice = append(laneSlice, *l)
	}
	sort.Slice(laneSlice, func(i, j int) bool {
		if laneSlice[i].Order != laneSlice[j].Order {
			return laneSlice[i].Order < laneSlice[j].Order
		}
		return laneSlice[i].ID < laneSlice[j].ID
	})

	nodeIDs := append([]string(nil), arena.NodeIDs...)
	nodeSlice := make([]model.Node, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		n := nodes[id]
		nodeSlice = append(nodeSlice, model.Node{
			ID:            n.id,
			Kind:          n.kind,
			Lane:          n.lane,
			Label:         n.label,
			Rank:          n.rank,
			Links:         n.links,
			BranchContext: n.branchCtx,
			CycleContext:  n.cycleCtx,
			FutureMetrics: n.future,
			LayoutHints:   n.hints,
		})
	}

	edgeSlice := make([]model.Edge, 0, len(edgeOrder))
	for _, e := range edgeOrder {
		gap := defaultTrackGap
		if lane, ok := lanes[nodes[e.from].lane]; ok {
			gap = lane.TrackGap
		}
		e.constr.MinSeparation = gap
		edgeSlice = append(edgeSlice, model.Edge{
			ID:                 e.id,
			From:               e.from,
			To:                 e.to,
			Branch:             e.branch,
			Classification:     e.class,
			Priority:           e.prio,
			RoutingConstraints: e.constr,
			RoutingHints:       e.hints,
		})
	}

	return &model.CompileResult{
		SFFSource: doc,
		CPFF: model.CPFF{
			Version: model.CurrentCPFFVersion,
			Stats:   stats,
			Graph:   model.GraphAdjacency{Prev: graphPrev, Next: graphNext},
			LayoutContext: model.LayoutContext{
				Direction: direction,
			},
			Subflows: nil,
		},
		Lanes: laneSlice,
		Nodes: nodeSlice,
		Edges: edgeSlice,
	}
}

// normalizeBranchLabel matches the case-insensitive {true,yes,sim} /
// {false,no,não} synonyms used by main-path selection and decision ports.
func normalizeBranchLabel(b string) string {
	switch strings.ToLower(b) {
	case "true", "yes", "sim":
		return "true"
	case "false", "no", "não", "nao":
		return "false"
	default:
		return strings.ToLower(b)
	}
}
