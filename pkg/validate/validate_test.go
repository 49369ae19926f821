package validate

import (
	"strings"
	"testing"

	"github.com/flowlane/sff/pkg/model"
)

func validDoc() *model.Document {
	return &model.Document{
		SFF:   model.SFFBlock{Direction: "TB"},
		Entry: model.EntryBlock{Start: "s", Ends: []string{"e"}},
		Lanes: map[string]model.LaneInput{"l1": {Title: "Lane 1", Order: 1}},
		Nodes: map[string]model.NodeInput{
			"s": {Type: "start", Lane: "l1"},
			"p": {Type: "process", Lane: "l1"},
			"e": {Type: "end", Lane: "l1"},
		},
		Edges: []model.EdgeInput{
			{From: "s", To: "p"},
			{From: "p", To: "e"},
		},
	}
}

func TestStructure_ValidDocument(t *testing.T) {
	if errs := Structure(validDoc()); len(errs) != 0 {
		t.Fatalf("Structure = %v, want no errors", errs)
	}
}

func TestStructure_MissingDirection(t *testing.T) {
	doc := validDoc()
	doc.SFF.Direction = ""
	errs := Structure(doc)
	if len(errs) == 0 {
		t.Fatal("Structure accepted a document without a direction")
	}
}

func TestStructure_UnknownDirection(t *testing.T) {
	doc := validDoc()
	doc.SFF.Direction = "BT"
	errs := Structure(doc)
	if len(errs) == 0 {
		t.Fatal("Structure accepted an unknown direction")
	}
}

func TestStructure_UnknownLaneReference(t *testing.T) {
	doc := validDoc()
	n := doc.Nodes["p"]
	n.Lane = "missing"
	doc.Nodes["p"] = n
	errs := Structure(doc)
	if len(errs) == 0 {
		t.Fatal("Structure accepted a node referencing an unknown lane")
	}
	found := false
	for _, e := range errs {
		if strings.Contains(e, "unknown lane") {
			found = true
		}
	}
	if !found {
		t.Fatalf("Structure = %v, want an unknown-lane error", errs)
	}
}

func TestStructure_EdgeToUnknownNode(t *testing.T) {
	doc := validDoc()
	doc.Edges = append(doc.Edges, model.EdgeInput{From: "p", To: "ghost"})
	if errs := Structure(doc); len(errs) == 0 {
		t.Fatal("Structure accepted an edge to an undeclared node")
	}
}

func TestLogic_ValidDocument(t *testing.T) {
	if errs := Logic(validDoc()); len(errs) != 0 {
		t.Fatalf("Logic = %v, want no errors", errs)
	}
}

func TestLogic_TwoStarts(t *testing.T) {
	doc := validDoc()
	doc.Nodes["s2"] = model.NodeInput{Type: "start", Lane: "l1"}
	doc.Edges = append(doc.Edges, model.EdgeInput{From: "s2", To: "p"})
	if errs := Logic(doc); len(errs) == 0 {
		t.Fatal("Logic accepted two start nodes")
	}
}

func TestLogic_StartWithInEdge(t *testing.T) {
	doc := validDoc()
	doc.Edges = append(doc.Edges, model.EdgeInput{From: "p", To: "s"})
	if errs := Logic(doc); len(errs) == 0 {
		t.Fatal("Logic accepted an in-edge on the start node")
	}
}

func TestLogic_IsolatedAndUnreachableNodes(t *testing.T) {
	doc := validDoc()
	doc.Nodes["island"] = model.NodeInput{Type: "process", Lane: "l1"}
	doc.Nodes["orphan"] = model.NodeInput{Type: "process", Lane: "l1"}
	doc.Edges = append(doc.Edges, model.EdgeInput{From: "orphan", To: "e"})

	errs := Logic(doc)
	var isolated, unreachable bool
	for _, e := range errs {
		if strings.Contains(e, "island is isolated") {
			isolated = true
		}
		if strings.Contains(e, "orphan is unreachable") {
			unreachable = true
		}
	}
	if !isolated {
		t.Errorf("Logic = %v, want an isolated-node error for island", errs)
	}
	if !unreachable {
		t.Errorf("Logic = %v, want an unreachable error for orphan", errs)
	}
}

func TestLogic_DecisionMissingFalseBranch(t *testing.T) {
	doc := validDoc()
	doc.Nodes["d"] = model.NodeInput{Type: "decision", Lane: "l1", Branches: []string{"true", "false"}}
	doc.Edges = []model.EdgeInput{
		{From: "s", To: "d"},
		{From: "d", To: "p", Branch: "true"},
		{From: "p", To: "e"},
	}
	errs := Logic(doc)
	found := false
	for _, e := range errs {
		if strings.Contains(e, "no edge branched false") {
			found = true
		}
	}
	if !found {
		t.Fatalf("Logic = %v, want a missing-false-branch error", errs)
	}
}

func TestLogic_BranchSynonymsAccepted(t *testing.T) {
	doc := validDoc()
	doc.Nodes["d"] = model.NodeInput{Type: "decision", Lane: "l1", Branches: []string{"sim", "não"}}
	doc.Edges = []model.EdgeInput{
		{From: "s", To: "d"},
		{From: "d", To: "p", Branch: "sim"},
		{From: "d", To: "e", Branch: "não"},
		{From: "p", To: "e"},
	}
	if errs := Logic(doc); len(errs) != 0 {
		t.Fatalf("Logic = %v, want sim/não accepted as true/false synonyms", errs)
	}
}
