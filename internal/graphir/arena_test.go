package graphir

import "testing"

func TestArena_BuildSortsAdjacency(t *testing.T) {
	// Declare nodes and edges out of identifier order; Build must leave
	// every adjacency list sorted by peer id and duplicate-free.
	a := NewArena([]string{"c", "a", "b"})
	a.AddEdge("e2", "a", "c")
	a.AddEdge("e1", "a", "b")
	a.AddEdge("e3", "a", "c") // parallel edge: Next dedupes, OutEdges keeps both
	a.Build()

	ai, ok := a.Index("a")
	if !ok {
		t.Fatal("Index(a) not found")
	}

	next := a.Next[ai]
	if len(next) != 2 || a.NodeIDs[next[0]] != "b" || a.NodeIDs[next[1]] != "c" {
		ids := make([]string, len(next))
		for i, n := range next {
			ids[i] = a.NodeIDs[n]
		}
		t.Fatalf("Next(a) = %v, want [b c]", ids)
	}

	out := a.OutEdges[ai]
	if len(out) != 3 {
		t.Fatalf("len(OutEdges(a)) = %d, want 3", len(out))
	}
	// Sorted by peer id then edge id: e1 (->b), then e2, e3 (->c).
	want := []string{"e1", "e2", "e3"}
	for i, ei := range out {
		if a.EdgeIDs[ei] != want[i] {
			t.Fatalf("OutEdges(a)[%d] = %s, want %s", i, a.EdgeIDs[ei], want[i])
		}
	}
}

func TestArena_ToGonumMapsDenseIndices(t *testing.T) {
	a := NewArena([]string{"x", "y"})
	a.AddEdge("e1", "x", "y")
	a.Build()

	g := a.ToGonum()
	xi, _ := a.Index("x")
	yi, _ := a.Index("y")
	if !g.HasEdgeFromTo(int64(xi), int64(yi)) {
		t.Fatal("gonum projection lost the x->y edge")
	}
	if g.HasEdgeFromTo(int64(yi), int64(xi)) {
		t.Fatal("gonum projection invented a reverse edge")
	}
}
