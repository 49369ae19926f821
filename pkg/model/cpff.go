package model

// Stats are the aggregate counters computed in the Flow Compiler's final
// phase.
type Stats struct {
	NodesTotal         int `json:"nodes_total"`
	EdgesTotal         int `json:"edges_total"`
	LanesTotal         int `json:"lanes_total"`
	DecisionNodes      int `json:"decision_nodes"`
	BranchEdges        int `json:"branch_edges"`
	Joins              int `json:"joins"`
	MaxDepth           int `json:"max_depth"`
	MaxBranchDepth     int `json:"max_branch_depth"`
	CyclesTotal        int `json:"cycles_total"`
	MaxCycleDepth      int `json:"max_cycle_depth"`
	MaxBranchesPerRank int `json:"max_branches_per_rank"`
	MaxTracksPerLane   int `json:"max_tracks_per_lane"`
}

// GraphAdjacency publishes sorted-unique predecessor/successor maps,
// mirroring each node's Links but keyed for whole-graph consumers
// (exporters, external tooling) without re-deriving it from Nodes.
type GraphAdjacency struct {
	Prev map[string][]string `json:"prev"`
	Next map[string][]string `json:"next"`
}

// LayoutContext is the subset of layout configuration that travels with the
// compiled IR (as opposed to engine-local layout parameters).
type LayoutContext struct {
	Direction Direction `json:"direction"`
}

// CPFF is the compiled intermediate representation.
type CPFF struct {
	Version       string         `json:"version"`
	Stats         Stats          `json:"stats"`
	Graph         GraphAdjacency `json:"graph"`
	LayoutContext LayoutContext  `json:"layout_context"`
	// Subflows is reserved and not written by v1; always nil.
	Subflows []any `json:"subflows"`
}

// CurrentCPFFVersion is embedded in every compiled IR.
const CurrentCPFFVersion = "1.0"

// CompileResult is the full compiled-output mapping: the verbatim source
// alongside the enriched, frozen IR.
type CompileResult struct {
	SFFSource *Document `json:"sff_source"`
	CPFF      CPFF      `json:"cpff"`
	Lanes     []Lane    `json:"lanes"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
}
