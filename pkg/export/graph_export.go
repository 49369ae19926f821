package export

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/flowlane/sff/pkg/model"
)

// Format specifies the textual export format for a compiled flow.
type Format string

const (
	FormatJSON    Format = "json"
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
)

// Config configures graph export behavior.
type Config struct {
	Format    Format
	LanesOnly bool // when true, omit node/edge detail and emit lane boundaries only
}

// Result contains the exported graph and metadata. The explanation block
// tells downstream tooling (including AI agents) how to render the export
// further.
type Result struct {
	Format      string      `json:"format"`
	Graph       string      `json:"graph,omitempty"`
	Nodes       int         `json:"nodes"`
	Edges       int         `json:"edges"`
	Explanation Explanation `json:"explanation"`
	Adjacency   *Adjacency  `json:"adjacency,omitempty"`
}

// Explanation provides context for AI agents consuming the export.
type Explanation struct {
	What        string `json:"what"`
	HowToRender string `json:"how_to_render,omitempty"`
	WhenToUse   string `json:"when_to_use"`
}

// Adjacency is the JSON adjacency-list representation of a compiled flow.
type Adjacency struct {
	Nodes []AdjacencyNode `json:"nodes"`
	Edges []AdjacencyEdge `json:"edges"`
}

// AdjacencyNode represents a node in the adjacency graph.
type AdjacencyNode struct {
	ID    string        `json:"id"`
	Label string        `json:"label"`
	Kind  model.NodeKind `json:"type"`
	Lane  string        `json:"lane"`
	Rank  int           `json:"rank_global"`
}

// AdjacencyEdge represents an edge in the adjacency graph.
type AdjacencyEdge struct {
	From string        `json:"from"`
	To   string        `json:"to"`
	Kind model.EdgeKind `json:"kind"`
}

// ExportGraph renders a compiled flow in the requested textual format.
func ExportGraph(cr *model.CompileResult, cfg Config) (*Result, error) {
	if cr == nil {
		return nil, fmt.Errorf("export: nil compile result")
	}

	if cfg.LanesOnly {
		return exportLanesOnly(cr, cfg), nil
	}

	result := &Result{
		Format: string(cfg.Format),
		Nodes:  len(cr.Nodes),
		Edges:  len(cr.Edges),
	}

	switch cfg.Format {
	case FormatDOT:
		result.Graph = GenerateDOT(cr)
		result.Explanation = Explanation{
			What:        "Flow graph in Graphviz DOT format",
			HowToRender: "Save to file.dot, run: dot -Tpng file.dot -o graph.png",
			WhenToUse:   "When you need a visual overview of lane assignment and classification for documentation or debugging",
		}
	case FormatMermaid:
		result.Graph = GenerateMermaidGraph(cr)
		result.Explanation = Explanation{
			What:        "Flow graph in Mermaid diagram format",
			HowToRender: "Paste into any Markdown renderer that supports Mermaid, or use mermaid.live",
			WhenToUse:   "When you need an embeddable diagram for documentation or a PR description",
		}
	case FormatJSON:
		fallthrough
	default:
		result.Format = "json"
		result.Adjacency = generateAdjacency(cr)
		result.Explanation = Explanation{
			What:      "Compiled flow as a JSON adjacency list",
			WhenToUse: "When you need programmatic access to the classified graph structure",
		}
	}

	return result, nil
}

func exportLanesOnly(cr *model.CompileResult, cfg Config) *Result {
	sortedLanes := make([]model.Lane, len(cr.Lanes))
	copy(sortedLanes, cr.Lanes)
	sort.Slice(sortedLanes, func(i, j int) bool { return sortedLanes[i].Order < sortedLanes[j].Order })

	switch cfg.Format {
	case FormatDOT:
		var sb strings.Builder
		sb.WriteString("digraph Lanes {\n    rankdir=TB;\n")
		for _, l := range sortedLanes {
			sb.WriteString(fmt.Sprintf("    %q [label=%q, shape=box];\n", l.ID, fmt.Sprintf("%s (order %d)", l.Title, l.Order)))
		}
		sb.WriteString("}\n")
		return &Result{Format: string(cfg.Format), Graph: sb.String(), Nodes: 0, Edges: 0,
			Explanation: Explanation{What: "Lane boundaries only, no node/edge detail", WhenToUse: "--lanes-only export"}}
	default:
		data := make([]map[string]any, 0, len(sortedLanes))
		for _, l := range sortedLanes {
			data = append(data, map[string]any{"id": l.ID, "title": l.Title, "order": l.Order, "tracks_total": l.TracksTotal})
		}
		raw, _ := json.Marshal(data)
		return &Result{Format: "json", Graph: string(raw),
			Explanation: Explanation{What: "Lane boundaries only, no node/edge detail", WhenToUse: "--lanes-only export"}}
	}
}

// GenerateDOT renders a compiled flow as a Graphviz DOT digraph, coloring
// nodes by lane and edges by classification.
func GenerateDOT(cr *model.CompileResult) string {
	var sb strings.Builder

	sb.WriteString("digraph G {\n")
	sb.WriteString(fmt.Sprintf("    rankdir=%s;\n", dotRankdir(cr.CPFF.LayoutContext.Direction)))
	sb.WriteString("    node [shape=box, fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=8];\n\n")

	nodes := make([]model.Node, len(cr.Nodes))
	copy(nodes, cr.Nodes)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	laneColor := map[string]string{}
	lanes := make([]model.Lane, len(cr.Lanes))
	copy(lanes, cr.Lanes)
	sort.Slice(lanes, func(i, j int) bool { return lanes[i].Order < lanes[j].Order })
	palette := []string{"#C8E6C9", "#BBDEFB", "#FFE0B2", "#D1C4E9", "#FFCDD2", "#B2DFDB"}
	for i, l := range lanes {
		laneColor[l.ID] = palette[i%len(palette)]
	}

	for _, n := range nodes {
		label := fmt.Sprintf("%s\\n%s\\nrank %d", escapeDOTString(n.ID), escapeDOTString(truncateRunes(n.Label, 30)), n.Rank.Global)
		sb.WriteString(fmt.Sprintf("    %q [label=%q, fillcolor=%q, style=filled];\n", n.ID, label, laneColor[n.Lane]))
	}
	sb.WriteString("\n")

	edges := make([]model.Edge, len(cr.Edges))
	copy(edges, cr.Edges)
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	for _, e := range edges {
		style, color := dotEdgeStyle(e.Classification.Kind)
		sb.WriteString(fmt.Sprintf("    %q -> %q [style=%s, color=%q, label=%q];\n", e.From, e.To, style, color, string(e.Classification.Kind)))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func dotRankdir(d model.Direction) string {
	if d == model.DirectionLR {
		return "LR"
	}
	return "TB"
}

func dotEdgeStyle(kind model.EdgeKind) (style, color string) {
	switch kind {
	case model.EdgeMainPath:
		return "bold", "#E53935"
	case model.EdgeBranch:
		return "solid", "#1E88E5"
	case model.EdgeCrossLane:
		return "dashed", "#8E24AA"
	case model.EdgeReturn:
		return "dotted", "#FB8C00"
	case model.EdgeJoin:
		return "solid", "#43A047"
	default:
		return "solid", "#999999"
	}
}

func escapeDOTString(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"\"", "\\\"",
		"\n", " ",
		"\r", " ",
	)
	return replacer.Replace(s)
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// generateAdjacency creates a JSON adjacency list representation.
func generateAdjacency(cr *model.CompileResult) *Adjacency {
	nodes := make([]model.Node, len(cr.Nodes))
	copy(nodes, cr.Nodes)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	adjNodes := make([]AdjacencyNode, 0, len(nodes))
	for _, n := range nodes {
		adjNodes = append(adjNodes, AdjacencyNode{ID: n.ID, Label: n.Label, Kind: n.Kind, Lane: n.Lane, Rank: n.Rank.Global})
	}

	edges := make([]model.Edge, len(cr.Edges))
	copy(edges, cr.Edges)
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	adjEdges := make([]AdjacencyEdge, 0, len(edges))
	for _, e := range edges {
		adjEdges = append(adjEdges, AdjacencyEdge{From: e.From, To: e.To, Kind: e.Classification.Kind})
	}

	return &Adjacency{Nodes: adjNodes, Edges: adjEdges}
}

// stableSuffix derives a short, deterministic disambiguation suffix for an
// identifier colliding with another after sanitization.
func stableSuffix(s string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%x", h.Sum32())
}

// JSON returns the result as indented JSON bytes.
func (r *Result) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
