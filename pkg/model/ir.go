package model

// NodeKind is a closed enumeration of node types. The runtime string form
// (as used in source documents and JSON) only appears at the ingress/egress
// boundary; internally the compiler and router switch on this type.
type NodeKind string

const (
	NodeStart    NodeKind = "start"
	NodeEnd      NodeKind = "end"
	NodeProcess  NodeKind = "process"
	NodeDecision NodeKind = "decision"
	NodeDelay    NodeKind = "delay"
)

// EdgeKind is a closed enumeration of edge classifications, assigned by the
// Flow Compiler's edge-classification phase.
type EdgeKind string

const (
	EdgeMainPath  EdgeKind = "main_path"
	EdgeBranch    EdgeKind = "branch"
	EdgeCrossLane EdgeKind = "cross_lane"
	EdgeReturn    EdgeKind = "return"
	EdgeJoin      EdgeKind = "join"
)

// Lane is a horizontal (TB) or vertical (LR) band grouping nodes. tracks_total
// may only grow, by +2, at each global expansion; center_track never moves.
type Lane struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Order           int     `json:"order"`
	TracksTotal     int     `json:"tracks_total"`
	CenterTrack     int     `json:"center_track"`
	TrackGap        float64 `json:"track_gap"`
	ExpansionFactor float64 `json:"expansion_factor"`
}

// RankBlock is a node's position in the compiled ranking.
type RankBlock struct {
	Global      int `json:"global"`
	Lane        int `json:"lane"`
	Depth       int `json:"depth"`
	BranchDepth int `json:"branch_depth"`
	CycleDepth  int `json:"cycle_depth"`
}

// NodeLinks holds a node's adjacency, each a duplicate-free sequence.
// PrevNodes and NextNodes are sorted by node id; InEdges and OutEdges are
// ordered by the peer node's id, then by edge id, not by their own id.
type NodeLinks struct {
	PrevNodes []string `json:"prev_nodes"`
	NextNodes []string `json:"next_nodes"`
	InEdges   []string `json:"in_edges"`
	OutEdges  []string `json:"out_edges"`
}

// BranchContext records which decision a node descends from. It is cleared
// (nil) once a node's branch_depth settles at 0 after post-join
// normalization.
type BranchContext struct {
	RootDecision   string `json:"root_decision"`
	BranchLabel    string `json:"branch_label"`
	TerminatesSoon bool   `json:"terminates_soon"`
}

// CycleContext is present only on nodes that belong to a cyclic strongly
// connected component.
type CycleContext struct {
	CycleID        string   `json:"cycle_id"`
	CycleLevel     int      `json:"cycle_level"`
	CycleRoot      string   `json:"cycle_root"`
	CycleExitNodes []string `json:"cycle_exit_nodes"`
}

// FutureMetrics summarizes forward reachability from a node, skipping
// `return`-classified edges to bound the traversal.
type FutureMetrics struct {
	FutureSteps     int    `json:"future_steps"`
	FutureDecisions int    `json:"future_decisions"`
	CrossLaneAhead  int    `json:"cross_lane_ahead"`
	NextLaneTarget  string `json:"next_lane_target,omitempty"`
}

// LayoutHints carries routing-relevant metadata computed by the compiler
// and consumed by the layout engine and router.
type LayoutHints struct {
	IsMainPath         bool   `json:"is_main_path"`
	RoutingPriority    int    `json:"routing_priority"`
	PreferredEntrySide string `json:"preferred_entry_side"`
	PreferredExitSide  string `json:"preferred_exit_side"`
}

// Node is fully enriched and frozen after compilation.
type Node struct {
	ID            string         `json:"id"`
	Kind          NodeKind       `json:"type"`
	Lane          string         `json:"lane"`
	Label         string         `json:"label"`
	Rank          RankBlock      `json:"rank"`
	Links         NodeLinks      `json:"links"`
	BranchContext *BranchContext `json:"branch_context,omitempty"`
	CycleContext  *CycleContext  `json:"cycle_context,omitempty"`
	FutureMetrics FutureMetrics  `json:"future_metrics"`
	LayoutHints   LayoutHints    `json:"layout_hints"`
}

// RoutingConstraints are fixed per-edge geometric requirements.
type RoutingConstraints struct {
	NoOverlap     bool    `json:"no_overlap"`
	NoCross       bool    `json:"no_cross"`
	MinSeparation float64 `json:"min_separation"`
}

// RoutingHints are router-facing suggestions (backbone lane for loops,
// channel reuse, last-mile flag). Neither the compiler nor the router fills
// them, so they serialize empty.
type RoutingHints struct {
	BackboneLane     string `json:"backbone_lane,omitempty"`
	LastMile         bool   `json:"last_mile,omitempty"`
	PreferredChannel string `json:"preferred_channel,omitempty"`
}

// EdgeClassification is the result of the compiler's priority-cascade
// classification. Kind is a closed enumeration; exactly one of
// {main_path, branch, cross_lane, return, join} per edge.
type EdgeClassification struct {
	Kind        EdgeKind `json:"kind"`
	IsCrossLane bool     `json:"is_cross_lane"`
	IsReturn    bool     `json:"is_return"`
	IsJoin      bool     `json:"is_join"`
}

// Edge is fully enriched and frozen after compilation. Self-loops
// (From == To) are rejected during compilation.
type Edge struct {
	ID                 string             `json:"id"`
	From               string             `json:"from"`
	To                 string             `json:"to"`
	Branch             string             `json:"branch,omitempty"`
	Classification     EdgeClassification `json:"classification"`
	Priority           int                `json:"priority"`
	RoutingConstraints RoutingConstraints `json:"routing_constraints"`
	RoutingHints       RoutingHints       `json:"routing_hints"`
}
