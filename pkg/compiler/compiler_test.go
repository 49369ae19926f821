package compiler

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/flowlane/sff/pkg/cpferr"
	"github.com/flowlane/sff/pkg/model"
)

func noValidation(*model.Document) []string { return nil }

func mustCompile(t *testing.T, doc *model.Document) *model.CompileResult {
	t.Helper()
	c := New(noValidation, noValidation)
	res, err := c.Compile(doc)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return res
}

func findNode(nodes []model.Node, id string) model.Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
	}
	return model.Node{}
}

func findEdge(edges []model.Edge, id string) model.Edge {
	for _, e := range edges {
		if e.ID == id {
			return e
		}
	}
	return model.Edge{}
}

// start -> process -> end, single lane.
func TestCompile_LinearFlow(t *testing.T) {
	doc := &model.Document{
		SFF:   model.SFFBlock{Direction: "TB"},
		Entry: model.EntryBlock{Start: "s", Ends: []string{"e"}},
		Lanes: map[string]model.LaneInput{"l1": {Title: "Lane 1", Order: 1}},
		Nodes: map[string]model.NodeInput{
			"s": {Type: "start", Lane: "l1"},
			"p": {Type: "process", Lane: "l1"},
			"e": {Type: "end", Lane: "l1"},
		},
		Edges: []model.EdgeInput{
			{ID: "e1", From: "s", To: "p"},
			{ID: "e2", From: "p", To: "e"},
		},
	}

	res := mustCompile(t, doc)

	if g := findNode(res.Nodes, "s").Rank.Global; g != 1 {
		t.Errorf("s.rank.global = %d, want 1", g)
	}
	if g := findNode(res.Nodes, "p").Rank.Global; g != 2 {
		t.Errorf("p.rank.global = %d, want 2", g)
	}
	if g := findNode(res.Nodes, "e").Rank.Global; g != 3 {
		t.Errorf("e.rank.global = %d, want 3", g)
	}

	for _, id := range []string{"e1", "e2"} {
		if k := findEdge(res.Edges, id).Classification.Kind; k != model.EdgeMainPath {
			t.Errorf("%s.kind = %s, want main_path", id, k)
		}
	}
	if res.CPFF.Stats.CyclesTotal != 0 {
		t.Errorf("cycles_total = %d, want 0", res.CPFF.Stats.CyclesTotal)
	}
}

// start -> end with one edge: max_depth is max(rank.global), not
// max(rank.depth), so it lands at 2.
func TestCompile_StartEndBoundary_MaxDepth(t *testing.T) {
	doc := &model.Document{
		SFF:   model.SFFBlock{Direction: "TB"},
		Entry: model.EntryBlock{Start: "s", Ends: []string{"e"}},
		Lanes: map[string]model.LaneInput{"l1": {Title: "Lane 1", Order: 1}},
		Nodes: map[string]model.NodeInput{
			"s": {Type: "start", Lane: "l1"},
			"e": {Type: "end", Lane: "l1"},
		},
		Edges: []model.EdgeInput{
			{ID: "e1", From: "s", To: "e"},
		},
	}

	res := mustCompile(t, doc)

	if d := res.CPFF.Stats.MaxDepth; d != 2 {
		t.Errorf("stats.max_depth = %d, want 2", d)
	}
	if res.CPFF.Stats.CyclesTotal != 0 {
		t.Errorf("cycles_total = %d, want 0", res.CPFF.Stats.CyclesTotal)
	}
	if k := findEdge(res.Edges, "e1").Classification.Kind; k != model.EdgeMainPath {
		t.Errorf("e1.kind = %s, want main_path", k)
	}
}

// A decision introduces a back-edge cycle.
func TestCompile_DecisionBackEdge(t *testing.T) {
	doc := &model.Document{
		SFF:   model.SFFBlock{Direction: "TB"},
		Entry: model.EntryBlock{Start: "s", Ends: []string{"e"}},
		Lanes: map[string]model.LaneInput{"l1": {Title: "Lane 1", Order: 1}},
		Nodes: map[string]model.NodeInput{
			"s": {Type: "start", Lane: "l1"},
			"p": {Type: "process", Lane: "l1"},
			"d": {Type: "decision", Lane: "l1"},
			"e": {Type: "end", Lane: "l1"},
		},
		Edges: []model.EdgeInput{
			{ID: "e1", From: "s", To: "p"},
			{ID: "e2", From: "p", To: "d"},
			{ID: "e3", From: "d", To: "e", Branch: "true"},
			{ID: "e4", From: "d", To: "p", Branch: "false"},
		},
	}

	res := mustCompile(t, doc)

	back := findEdge(res.Edges, "e4")
	if back.Classification.Kind != model.EdgeReturn {
		t.Errorf("e4.kind = %s, want return", back.Classification.Kind)
	}
	if back.Priority != 40 {
		t.Errorf("e4.priority = %d, want 40", back.Priority)
	}

	pNode := findNode(res.Nodes, "p")
	if pNode.CycleContext == nil {
		t.Fatal("p.cycle_context is nil, want a cycle_1 membership")
	}
	if pNode.CycleContext.CycleID != "cycle_1" {
		t.Errorf("p.cycle_context.cycle_id = %s, want cycle_1", pNode.CycleContext.CycleID)
	}
	if pNode.CycleContext.CycleLevel != 1 {
		t.Errorf("p.cycle_context.cycle_level = %d, want 1", pNode.CycleContext.CycleLevel)
	}
}

// A forward edge crossing lanes classifies against the full cascade.
func TestCompile_CrossLaneEdge(t *testing.T) {
	doc := &model.Document{
		SFF:   model.SFFBlock{Direction: "TB"},
		Entry: model.EntryBlock{Start: "p1", Ends: []string{"p2"}},
		Lanes: map[string]model.LaneInput{
			"l1": {Title: "Lane 1", Order: 1},
			"l2": {Title: "Lane 2", Order: 2},
		},
		Nodes: map[string]model.NodeInput{
			"p1": {Type: "start", Lane: "l1"},
			"p2": {Type: "end", Lane: "l2"},
		},
		Edges: []model.EdgeInput{
			{ID: "e1", From: "p1", To: "p2"},
		},
	}

	res := mustCompile(t, doc)

	edge := findEdge(res.Edges, "e1")
	if edge.Classification.Kind != model.EdgeMainPath {
		// Only one path exists, so e1 is on the main path and the main-path
		// rule (3) wins even across lanes; cross_lane classification only
		// applies to edges that are neither on the main path nor
		// branch-labeled.
		t.Fatalf("e1.kind = %s, want main_path (sole path from entry)", edge.Classification.Kind)
	}
}

// An SCC without an exit edge is fatal.
func TestCompile_CycleWithoutExit(t *testing.T) {
	doc := &model.Document{
		SFF:   model.SFFBlock{Direction: "TB"},
		Entry: model.EntryBlock{Start: "a", Ends: []string{"a"}},
		Lanes: map[string]model.LaneInput{"l1": {Title: "Lane 1", Order: 1}},
		Nodes: map[string]model.NodeInput{
			"a": {Type: "start", Lane: "l1"},
			"b": {Type: "process", Lane: "l1"},
		},
		Edges: []model.EdgeInput{
			{ID: "e1", From: "a", To: "b"},
			{ID: "e2", From: "b", To: "a"},
		},
	}

	_, err := New(noValidation, noValidation).Compile(doc)
	if err == nil {
		t.Fatal("Compile succeeded, want CYCLE_WITHOUT_EXIT")
	}
	var cycleErr *cpferr.CycleWithoutExitError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("Compile error = %v, want *cpferr.CycleWithoutExitError", err)
	}
}

// A decision branching to two distinct end nodes.
// The true branch wins the main-path walk; the false branch classifies as
// branch with priority 80.
func TestCompile_DecisionTwoEnds(t *testing.T) {
	doc := &model.Document{
		SFF:   model.SFFBlock{Direction: "TB"},
		Entry: model.EntryBlock{Start: "s", Ends: []string{"e1", "e2"}},
		Lanes: map[string]model.LaneInput{"l1": {Title: "Lane 1", Order: 1}},
		Nodes: map[string]model.NodeInput{
			"s":  {Type: "start", Lane: "l1"},
			"d":  {Type: "decision", Lane: "l1", Branches: []string{"true", "false"}},
			"e1": {Type: "end", Lane: "l1"},
			"e2": {Type: "end", Lane: "l1"},
		},
		Edges: []model.EdgeInput{
			{ID: "a", From: "s", To: "d"},
			{ID: "b", From: "d", To: "e1", Branch: "true"},
			{ID: "c", From: "d", To: "e2", Branch: "false"},
		},
	}

	res := mustCompile(t, doc)

	if k := findEdge(res.Edges, "b").Classification.Kind; k != model.EdgeMainPath {
		t.Errorf("b.kind = %s, want main_path (true branch wins the walk)", k)
	}
	falseEdge := findEdge(res.Edges, "c")
	if falseEdge.Classification.Kind != model.EdgeBranch {
		t.Errorf("c.kind = %s, want branch", falseEdge.Classification.Kind)
	}
	if falseEdge.Priority != 80 {
		t.Errorf("c.priority = %d, want 80", falseEdge.Priority)
	}
	if !findNode(res.Nodes, "e1").LayoutHints.IsMainPath {
		t.Error("e1 should be on the main path")
	}
	if findNode(res.Nodes, "e2").LayoutHints.IsMainPath {
		t.Error("e2 should not be on the main path")
	}
}

// Compiling the same input twice yields
// byte-identical enriched IR, and re-compiling the compiled IR's sff_source
// reproduces the same IR.
func TestCompile_Idempotence(t *testing.T) {
	doc := &model.Document{
		SFF:   model.SFFBlock{Direction: "TB"},
		Entry: model.EntryBlock{Start: "s", Ends: []string{"e"}},
		Lanes: map[string]model.LaneInput{
			"l1": {Title: "Triagem", Order: 1},
			"l2": {Title: "Execução", Order: 2},
		},
		Nodes: map[string]model.NodeInput{
			"s": {Type: "start", Lane: "l1"},
			"d": {Type: "decision", Lane: "l1", Label: "Aprovação?"},
			"p": {Type: "process", Lane: "l2"},
			"w": {Type: "delay", Lane: "l2"},
			"e": {Type: "end", Lane: "l2"},
		},
		Edges: []model.EdgeInput{
			{ID: "e1", From: "s", To: "d"},
			{ID: "e2", From: "d", To: "p", Branch: "sim"},
			{ID: "e3", From: "d", To: "w", Branch: "não"},
			{ID: "e4", From: "w", To: "p"},
			{ID: "e5", From: "p", To: "e"},
		},
	}

	first := mustCompile(t, doc)
	second := mustCompile(t, doc)

	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal first: %v", err)
	}
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal second: %v", err)
	}
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Error("two compilations of the same input differ")
	}

	recompiled := mustCompile(t, first.SFFSource)
	recompiledJSON, err := json.Marshal(recompiled)
	if err != nil {
		t.Fatalf("marshal recompiled: %v", err)
	}
	if !bytes.Equal(firstJSON, recompiledJSON) {
		t.Error("re-compiling sff_source does not reproduce the same IR")
	}
}

// Structural invariants over generated decision-free flows: a
// chained backbone start -> p0 -> ... -> end plus random extra forward
// edges. Every compile must leave adjacency sorted and duplicate-free,
// every edge with exactly one classification kind, and the stats totals
// matching the input.
func TestCompile_UniversalInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.IntRange(1, 9).Draw(rt, "chain")
		ids := make([]string, k)
		nodes := map[string]model.NodeInput{
			"s": {Type: "start", Lane: "l1"},
			"z": {Type: "end", Lane: "l1"},
		}
		var edges []model.EdgeInput
		prev := "s"
		for i := 0; i < k; i++ {
			ids[i] = "p" + string(rune('a'+i))
			nodes[ids[i]] = model.NodeInput{Type: "process", Lane: "l1"}
			edges = append(edges, model.EdgeInput{From: prev, To: ids[i]})
			prev = ids[i]
		}
		edges = append(edges, model.EdgeInput{From: prev, To: "z"})

		extra := rapid.IntRange(0, 6).Draw(rt, "extra")
		for x := 0; x < extra && k > 1; x++ {
			i := rapid.IntRange(0, k-2).Draw(rt, "from")
			j := rapid.IntRange(i+1, k-1).Draw(rt, "to")
			edges = append(edges, model.EdgeInput{From: ids[i], To: ids[j]})
		}

		doc := &model.Document{
			SFF:   model.SFFBlock{Direction: "TB"},
			Entry: model.EntryBlock{Start: "s", Ends: []string{"z"}},
			Lanes: map[string]model.LaneInput{"l1": {Title: "Lane 1", Order: 1}},
			Nodes: nodes,
			Edges: edges,
		}

		res, err := New(noValidation, noValidation).Compile(doc)
		if err != nil {
			rt.Fatalf("Compile: %v", err)
		}

		if res.CPFF.Stats.NodesTotal != len(nodes) {
			rt.Fatalf("stats.nodes_total = %d, want %d", res.CPFF.Stats.NodesTotal, len(nodes))
		}
		if res.CPFF.Stats.EdgesTotal != len(edges) {
			rt.Fatalf("stats.edges_total = %d, want %d", res.CPFF.Stats.EdgesTotal, len(edges))
		}

		validKinds := map[model.EdgeKind]bool{
			model.EdgeMainPath: true, model.EdgeBranch: true, model.EdgeCrossLane: true,
			model.EdgeReturn: true, model.EdgeJoin: true,
		}
		for _, e := range res.Edges {
			if !validKinds[e.Classification.Kind] {
				rt.Fatalf("edge %s has kind %q", e.ID, e.Classification.Kind)
			}
		}

		for _, n := range res.Nodes {
			assertSortedUnique(rt, n.ID+".prev_nodes", n.Links.PrevNodes)
			assertSortedUnique(rt, n.ID+".next_nodes", n.Links.NextNodes)
			// Decision-free flow: every branch depth must normalize to 0.
			if n.Rank.BranchDepth != 0 {
				rt.Fatalf("node %s branch_depth = %d, want 0", n.ID, n.Rank.BranchDepth)
			}
		}
		if !findNode(res.Nodes, "s").LayoutHints.IsMainPath {
			rt.Fatal("entry node must be on the main path")
		}
	})
}

func assertSortedUnique(rt *rapid.T, name string, xs []string) {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			rt.Fatalf("%s not sorted-unique: %v", name, xs)
		}
	}
}

// future_metrics.next_lane_target must report the
// dominant lane among the two-rank lookahead window's *cross-lane* targets
// only; same-lane targets in that window must never win even when they
// outnumber the cross-lane ones.
func TestCompile_FutureMetrics_NextLaneTargetExcludesOwnLane(t *testing.T) {
	doc := &model.Document{
		SFF:   model.SFFBlock{Direction: "TB"},
		Entry: model.EntryBlock{Start: "s", Ends: []string{"e"}},
		Lanes: map[string]model.LaneInput{
			"l1": {Title: "Lane 1", Order: 1},
			"l2": {Title: "Lane 2", Order: 2},
		},
		Nodes: map[string]model.NodeInput{
			"s":  {Type: "start", Lane: "l1"},
			"p":  {Type: "process", Lane: "l1"},
			"a1": {Type: "process", Lane: "l1"},
			"a2": {Type: "process", Lane: "l1"},
			"a3": {Type: "process", Lane: "l1"},
			"b1": {Type: "process", Lane: "l2"},
			"e":  {Type: "end", Lane: "l1"},
		},
		Edges: []model.EdgeInput{
			{ID: "e1", From: "s", To: "p"},
			{ID: "e2", From: "p", To: "a1"},
			{ID: "e3", From: "p", To: "a2"},
			{ID: "e4", From: "p", To: "a3"},
			{ID: "e5", From: "p", To: "b1"},
			{ID: "e6", From: "a1", To: "e"},
			{ID: "e7", From: "a2", To: "e"},
			{ID: "e8", From: "a3", To: "e"},
			{ID: "e9", From: "b1", To: "e"},
		},
	}

	res := mustCompile(t, doc)

	if l := findNode(res.Nodes, "p").FutureMetrics.NextLaneTarget; l != "l2" {
		t.Errorf("p.future_metrics.next_lane_target = %q, want %q (own-lane targets must not count)", l, "l2")
	}
}
