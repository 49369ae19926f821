package export

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/flowlane/sff/pkg/model"
)

// nodeShape returns the Mermaid bracket pair used to draw a node of kind k.
func nodeShape(k model.NodeKind) (open, close string) {
	switch k {
	case model.NodeStart, model.NodeEnd:
		return "([", "])"
	case model.NodeDecision:
		return "{", "}"
	case model.NodeDelay:
		return "((", "))"
	default:
		return "[", "]"
	}
}

// nodeClass maps a node kind to its Mermaid class name. "end" is a Mermaid
// keyword (closes a subgraph), so end nodes use "stop" instead.
func nodeClass(k model.NodeKind) string {
	if k == model.NodeEnd {
		return "stop"
	}
	return string(k)
}

func edgeArrow(kind model.EdgeKind) string {
	switch kind {
	case model.EdgeMainPath:
		return "==>"
	case model.EdgeReturn:
		return "-.->"
	default:
		return "-->"
	}
}

// GenerateMermaidGraph renders a compiled flow as a Mermaid flowchart,
// grouping nodes into subgraphs per lane and styling edges by
// classification kind.
func GenerateMermaidGraph(cr *model.CompileResult) string {
	var sb strings.Builder

	direction := "TD"
	if cr.CPFF.LayoutContext.Direction == model.DirectionLR {
		direction = "LR"
	}
	sb.WriteString(fmt.Sprintf("graph %s\n", direction))

	sb.WriteString("    classDef start fill:#50FA7B,stroke:#333,color:#000\n")
	sb.WriteString("    classDef stop fill:#6272A4,stroke:#333,color:#fff\n")
	sb.WriteString("    classDef process fill:#C8E6C9,stroke:#333,color:#000\n")
	sb.WriteString("    classDef decision fill:#8BE9FD,stroke:#333,color:#000\n")
	sb.WriteString("    classDef delay fill:#F1FA8C,stroke:#333,color:#000\n\n")

	nodesByLane := map[string][]model.Node{}
	for _, n := range cr.Nodes {
		nodesByLane[n.Lane] = append(nodesByLane[n.Lane], n)
	}

	lanes := make([]model.Lane, len(cr.Lanes))
	copy(lanes, cr.Lanes)
	sort.Slice(lanes, func(i, j int) bool { return lanes[i].Order < lanes[j].Order })

	safeIDMap := make(map[string]string)
	usedSafe := make(map[string]bool)
	getSafeID := func(orig string) string {
		if safe, ok := safeIDMap[orig]; ok {
			return safe
		}
		base := sanitizeMermaidID(orig)
		if base == "" {
			base = "node"
		}
		safe := base
		if usedSafe[safe] {
			safe = fmt.Sprintf("%s_%s", base, stableSuffix(orig))
		}
		usedSafe[safe] = true
		safeIDMap[orig] = safe
		return safe
	}

	for _, lane := range lanes {
		nodes := nodesByLane[lane.ID]
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].Rank.Global < nodes[j].Rank.Global })

		sb.WriteString(fmt.Sprintf("    subgraph %s[\"%s\"]\n", getSafeID("lane_"+lane.ID), sanitizeMermaidText(lane.Title)))
		for _, n := range nodes {
			safeID := getSafeID(n.ID)
			open, closeB := nodeShape(n.Kind)
			label := sanitizeMermaidText(n.Label)
			if label == "" {
				label = sanitizeMermaidText(n.ID)
			}
			sb.WriteString(fmt.Sprintf("        %s%s\"%s\"%s\n", safeID, open, label, closeB))
			sb.WriteString(fmt.Sprintf("        class %s %s\n", safeID, nodeClass(n.Kind)))
		}
		sb.WriteString("    end\n\n")
	}

	edges := make([]model.Edge, len(cr.Edges))
	copy(edges, cr.Edges)
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	for _, e := range edges {
		fromID := getSafeID(e.From)
		toID := getSafeID(e.To)
		arrow := edgeArrow(e.Classification.Kind)
		label := string(e.Classification.Kind)
		sb.WriteString(fmt.Sprintf("    %s %s|%s| %s\n", fromID, arrow, label, toID))
	}

	return sb.String()
}

// sanitizeMermaidID produces an identifier safe for use as an unquoted
// Mermaid node id: letters, digits and underscores only, never starting
// with a digit.
func sanitizeMermaidID(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	out := sb.String()
	if out != "" && unicode.IsDigit(rune(out[0])) {
		out = "n" + out
	}
	return out
}

// sanitizeMermaidText escapes characters that would otherwise break a
// quoted Mermaid label.
func sanitizeMermaidText(s string) string {
	replacer := strings.NewReplacer(
		"\"", "&quot;",
		"\n", " ",
		"\r", " ",
	)
	return replacer.Replace(s)
}
