package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flowlane/sff/pkg/compiler"
	"github.com/flowlane/sff/pkg/layout"
	"github.com/flowlane/sff/pkg/model"
)

func noValidation(*model.Document) []string { return nil }

// fixture builds the same start->decision->process->end, two-lane flow,
// with the decision's false branch looping back to start, for every
// exporter test so each format can be compared against the
// same compiled+laid-out graph.
func fixture(t *testing.T, direction string) (*model.CompileResult, *model.GeometricLayout) {
	t.Helper()
	doc := &model.Document{
		SFF:   model.SFFBlock{Direction: direction},
		Entry: model.EntryBlock{Start: "s", Ends: []string{"e"}},
		Lanes: map[string]model.LaneInput{
			"l1": {Title: "Intake", Order: 1},
			"l2": {Title: "Fulfillment", Order: 2},
		},
		Nodes: map[string]model.NodeInput{
			"s": {Type: "start", Lane: "l1"},
			"d": {Type: "decision", Lane: "l1"},
			"p": {Type: "process", Lane: "l2"},
			"e": {Type: "end", Lane: "l2"},
		},
		Edges: []model.EdgeInput{
			{ID: "e1", From: "s", To: "d"},
			{ID: "e2", From: "d", To: "p", Branch: "true"},
			{ID: "e3", From: "d", To: "s", Branch: "false"},
			{ID: "e4", From: "p", To: "e"},
		},
	}

	c := compiler.New(noValidation, noValidation)
	cr, err := c.Compile(doc)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	geo, err := layout.Compute(cr)
	if err != nil {
		t.Fatalf("layout.Compute: %v", err)
	}
	return cr, geo
}

func TestExportGraph_JSON(t *testing.T) {
	cr, _ := fixture(t, "TB")
	res, err := ExportGraph(cr, Config{Format: FormatJSON})
	if err != nil {
		t.Fatalf("ExportGraph: %v", err)
	}
	if res.Nodes != 4 || res.Edges != 4 {
		t.Fatalf("Nodes/Edges = %d/%d, want 4/4", res.Nodes, res.Edges)
	}
	if res.Adjacency == nil || len(res.Adjacency.Nodes) != 4 || len(res.Adjacency.Edges) != 4 {
		t.Fatalf("adjacency = %+v, want 4 nodes and 4 edges", res.Adjacency)
	}
	raw, err := res.JSON()
	if err != nil {
		t.Fatalf("Result.JSON: %v", err)
	}
	var roundTrip map[string]any
	if err := json.Unmarshal(raw, &roundTrip); err != nil {
		t.Fatalf("JSON output does not parse: %v", err)
	}
}

func TestExportGraph_DOT(t *testing.T) {
	cr, _ := fixture(t, "TB")
	res, err := ExportGraph(cr, Config{Format: FormatDOT})
	if err != nil {
		t.Fatalf("ExportGraph: %v", err)
	}
	if !strings.HasPrefix(res.Graph, "digraph G {") {
		t.Fatalf("DOT output missing digraph header: %q", res.Graph)
	}
	if !strings.Contains(res.Graph, `"s" -> "d"`) {
		t.Fatalf("DOT output missing s->d edge: %q", res.Graph)
	}
	if !strings.Contains(res.Graph, "rankdir=TB") {
		t.Fatalf("DOT output missing TB rankdir: %q", res.Graph)
	}
}

func TestExportGraph_DOT_LRDirection(t *testing.T) {
	cr, _ := fixture(t, "LR")
	res, err := ExportGraph(cr, Config{Format: FormatDOT})
	if err != nil {
		t.Fatalf("ExportGraph: %v", err)
	}
	if !strings.Contains(res.Graph, "rankdir=LR") {
		t.Fatalf("DOT output missing LR rankdir: %q", res.Graph)
	}
}

func TestExportGraph_Mermaid(t *testing.T) {
	cr, _ := fixture(t, "TB")
	res, err := ExportGraph(cr, Config{Format: FormatMermaid})
	if err != nil {
		t.Fatalf("ExportGraph: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(res.Graph), "graph TD") {
		t.Fatalf("mermaid output missing TD graph header: %q", res.Graph)
	}
	if !strings.Contains(res.Graph, "subgraph") {
		t.Fatalf("mermaid output missing a lane subgraph: %q", res.Graph)
	}
	// The return-classified branch edge must render distinctly from the
	// main path's arrow.
	if !strings.Contains(res.Graph, "-.->") {
		t.Fatalf("mermaid output missing a dotted return-edge arrow: %q", res.Graph)
	}
}

func TestExportGraph_LanesOnly(t *testing.T) {
	cr, _ := fixture(t, "TB")
	res, err := ExportGraph(cr, Config{Format: FormatJSON, LanesOnly: true})
	if err != nil {
		t.Fatalf("ExportGraph: %v", err)
	}
	if res.Adjacency != nil {
		t.Fatal("lanes-only export must not include adjacency detail")
	}
	var lanes []map[string]any
	if err := json.Unmarshal([]byte(res.Graph), &lanes); err != nil {
		t.Fatalf("lanes-only JSON does not parse: %v", err)
	}
	if len(lanes) != 2 {
		t.Fatalf("len(lanes) = %d, want 2", len(lanes))
	}
}

func TestSaveSnapshot_SVG(t *testing.T) {
	cr, geo := fixture(t, "TB")
	path := filepath.Join(t.TempDir(), "flow.svg")
	if err := SaveSnapshot(cr, geo, SnapshotOptions{Path: path, Title: "test flow"}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Fatalf("snapshot does not look like SVG: %q", data)
	}
}

func TestSaveSnapshot_PNG(t *testing.T) {
	cr, geo := fixture(t, "LR")
	path := filepath.Join(t.TempDir(), "flow.png")
	if err := SaveSnapshot(cr, geo, SnapshotOptions{Path: path}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat snapshot: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("PNG snapshot is empty")
	}
}

