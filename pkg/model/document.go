// Package model defines the sff input schema and the enriched cpff
// intermediate representation shared between the compiler, the layout
// engine, and the exporters.
package model

import "fmt"

// Document is the raw sff declaration as read from disk: a swimlane flow
// description of lanes, nodes, typed edges, and a designated entry node.
// It is deliberately permissive — structural and logical validation is an
// external collaborator's job (see pkg/validate), not the loader's.
type Document struct {
	SFF   SFFBlock             `yaml:"sff" json:"sff"`
	Entry EntryBlock           `yaml:"entry" json:"entry"`
	Lanes map[string]LaneInput `yaml:"lanes" json:"lanes"`
	Nodes map[string]NodeInput `yaml:"nodes" json:"nodes"`
	Edges []EdgeInput          `yaml:"edges" json:"edges"`
}

// SFFBlock carries the single top-level layout direction setting.
type SFFBlock struct {
	Direction string `yaml:"direction" json:"direction"`
}

// EntryBlock names the single start node and the set of accepted end nodes.
type EntryBlock struct {
	Start string   `yaml:"start" json:"start"`
	Ends  []string `yaml:"ends" json:"ends"`
}

// LaneInput is a swimlane as declared in source, before defaults are
// applied by the compiler's base-parse phase.
// TracksTotal, if given, must be odd; center_track is always derived from
// it as (tracks_total+1)/2 — it is never independently configurable, to
// preserve the lane invariant that center_track never moves logically.
type LaneInput struct {
	Title           string   `yaml:"title" json:"title"`
	Order           int      `yaml:"order" json:"order"`
	TracksTotal     *int     `yaml:"tracks_total,omitempty" json:"tracks_total,omitempty"`
	ExpansionFactor *float64 `yaml:"expansion_factor,omitempty" json:"expansion_factor,omitempty"`
	TrackGap        *float64 `yaml:"track_gap,omitempty" json:"track_gap,omitempty"`
}

// NodeInput is a node as declared in source.
type NodeInput struct {
	Type     string   `yaml:"type" json:"type"`
	Lane     string   `yaml:"lane" json:"lane"`
	Label    string   `yaml:"label" json:"label"`
	Branches []string `yaml:"branches,omitempty" json:"branches,omitempty"`
}

// EdgeInput is an edge as declared in source, in declaration order.
type EdgeInput struct {
	ID     string `yaml:"id,omitempty" json:"id,omitempty"`
	From   string `yaml:"from" json:"from"`
	To     string `yaml:"to" json:"to"`
	Branch string `yaml:"branch,omitempty" json:"branch,omitempty"`
	Label  string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Direction is the layout's primary flow axis.
type Direction string

const (
	DirectionTB Direction = "TB"
	DirectionLR Direction = "LR"
)

// ParseDirection validates and normalizes a direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionTB, DirectionLR:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown direction %q (want TB or LR)", s)
	}
}
