package model

// Point is a single coordinate in the geometric output.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeGeometry is a node's computed bounding box.
type NodeGeometry struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// EdgeGeometry is an edge's routed polyline: 4 points for normal and
// bridge-corridor edges, 5 points for external-backbone loop edges.
type EdgeGeometry struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
}

// LaneGeometry is a lane's extent along the cross-flow axis
// ({x_start,x_end} for TB, {y_start,y_end} for LR) plus its final track
// count after any expansions.
type LaneGeometry struct {
	ID          string  `json:"id"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	TracksTotal int     `json:"tracks_total"`
}

// Complexity summarizes the shape of the laid-out graph for downstream
// consumers (e.g. choosing a canvas size before rendering).
type Complexity struct {
	N               int     `json:"n"`
	E               int     `json:"e"`
	L               int     `json:"l"`
	TMax            int     `json:"t_max"`
	DMax            int     `json:"d_max"`
	BMax            int     `json:"b_max"`
	CyclesTotal     int     `json:"cycles_total"`
	MaxCycleDepth   int     `json:"max_cycle_depth"`
	EstimatedWidth  float64 `json:"estimated_width"`
	EstimatedHeight float64 `json:"estimated_height"`
}

// GeometricLayout is the complete output of the Layout Engine.
type GeometricLayout struct {
	EngineVersion string          `json:"engine_version"`
	Direction     Direction       `json:"direction"`
	Nodes         []NodeGeometry  `json:"nodes"`
	Edges         []EdgeGeometry  `json:"edges"`
	Lanes         []LaneGeometry  `json:"lanes"`
	Complexity    Complexity      `json:"complexity"`
}

// CurrentEngineVersion is embedded in every geometric layout.
const CurrentEngineVersion = "1.0"
