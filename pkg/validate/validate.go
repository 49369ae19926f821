// Package validate is the default, concrete implementation of the
// validator contract: structural and logical checks each returning an
// ordered list of error strings. The Flow
// Compiler depends only on its StructureValidator and LogicValidator
// function types (see pkg/compiler), so callers may substitute a different implementation; this one exists so
// the pipeline is runnable end to end.
package validate

import (
	"fmt"
	"sort"

	"github.com/flowlane/sff/pkg/model"
)

var validNodeKinds = map[string]bool{
	string(model.NodeStart):    true,
	string(model.NodeEnd):      true,
	string(model.NodeProcess):  true,
	string(model.NodeDecision): true,
	string(model.NodeDelay):    true,
}

// Structure checks the top-level shape of the document: required blocks
// present, referenced lanes/nodes exist, enum fields are valid. Any
// non-empty result aborts compilation before logical validation runs.
func Structure(doc *model.Document) []string {
	var errs []string
	if doc == nil {
		return []string{"document is nil"}
	}
	if doc.SFF.Direction == "" {
		errs = append(errs, "sff.direction is required")
	} else if _, err := model.ParseDirection(doc.SFF.Direction); err != nil {
		errs = append(errs, err.Error())
	}
	if doc.Entry.Start == "" {
		errs = append(errs, "entry.start is required")
	}
	if len(doc.Entry.Ends) == 0 {
		errs = append(errs, "entry.ends must name at least one node")
	}
	if len(doc.Lanes) == 0 {
		errs = append(errs, "lanes must declare at least one lane")
	}
	if len(doc.Nodes) == 0 {
		errs = append(errs, "nodes must declare at least one node")
	}

	for id, n := range doc.Nodes {
		if n.Type == "" {
			errs = append(errs, fmt.Sprintf("node %s: type is required", id))
		} else if !validNodeKinds[n.Type] {
			errs = append(errs, fmt.Sprintf("node %s: unknown type %q", id, n.Type))
		}
		if n.Lane == "" {
			errs = append(errs, fmt.Sprintf("node %s: lane is required", id))
		} else if _, ok := doc.Lanes[n.Lane]; !ok {
			errs = append(errs, fmt.Sprintf("node %s: references unknown lane %q", id, n.Lane))
		}
	}

	ids := make(map[string]bool, len(doc.Nodes))
	for id := range doc.Nodes {
		ids[id] = true
	}
	for i, e := range doc.Edges {
		if e.From == "" || e.To == "" {
			errs = append(errs, fmt.Sprintf("edges[%d]: from and to are required", i))
			continue
		}
		if !ids[e.From] {
			errs = append(errs, fmt.Sprintf("edges[%d]: unknown source node %q", i, e.From))
		}
		if !ids[e.To] {
			errs = append(errs, fmt.Sprintf("edges[%d]: unknown destination node %q", i, e.To))
		}
	}

	if doc.Entry.Start != "" && !ids[doc.Entry.Start] {
		errs = append(errs, fmt.Sprintf("entry.start references unknown node %q", doc.Entry.Start))
	}
	for _, end := range doc.Entry.Ends {
		if !ids[end] {
			errs = append(errs, fmt.Sprintf("entry.ends references unknown node %q", end))
		}
	}

	sort.Strings(errs)
	return errs
}

// Logic checks cross-node invariants that require the whole graph in view:
// a unique, in-edge-free start; at least one out-edge-free end; full
// reachability from start; no isolated nodes; decision nodes carrying both
// a true and a false branch with matching edges. Logical errors abort
// compilation but not the read.
func Logic(doc *model.Document) []string {
	var errs []string
	if doc == nil || len(doc.Nodes) == 0 {
		return errs
	}

	starts := 0
	ends := 0
	for id, n := range doc.Nodes {
		switch model.NodeKind(n.Type) {
		case model.NodeStart:
			starts++
			if id != doc.Entry.Start {
				errs = append(errs, fmt.Sprintf("node %s is kind start but entry.start is %q", id, doc.Entry.Start))
			}
		case model.NodeEnd:
			ends++
		}
	}
	if starts != 1 {
		errs = append(errs, fmt.Sprintf("exactly one start node is required, found %d", starts))
	}
	if ends == 0 {
		errs = append(errs, "at least one end node is required")
	}

	outEdges := make(map[string][]model.EdgeInput)
	inCount := make(map[string]int)
	for _, e := range doc.Edges {
		outEdges[e.From] = append(outEdges[e.From], e)
		inCount[e.To]++
	}

	if n, ok := doc.Nodes[doc.Entry.Start]; ok && n.Type == string(model.NodeStart) {
		if inCount[doc.Entry.Start] != 0 {
			errs = append(errs, fmt.Sprintf("start node %s must have zero in-edges", doc.Entry.Start))
		}
	}
	for id, n := range doc.Nodes {
		if n.Type == string(model.NodeEnd) && len(outEdges[id]) != 0 {
			errs = append(errs, fmt.Sprintf("end node %s must have zero out-edges", id))
		}
	}

	// Reachability + isolated-node check via BFS from entry.start.
	reachable := map[string]bool{}
	if doc.Entry.Start != "" {
		queue := []string{doc.Entry.Start}
		reachable[doc.Entry.Start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, e := range outEdges[cur] {
				if !reachable[e.To] {
					reachable[e.To] = true
					queue = append(queue, e.To)
				}
			}
		}
	}
	var unreachable []string
	for id := range doc.Nodes {
		if !reachable[id] {
			unreachable = append(unreachable, id)
		}
	}
	sort.Strings(unreachable)
	for _, id := range unreachable {
		if len(outEdges[id]) == 0 && inCount[id] == 0 {
			errs = append(errs, fmt.Sprintf("node %s is isolated", id))
		} else {
			errs = append(errs, fmt.Sprintf("node %s is unreachable from start", id))
		}
	}

	// Decision branch/edge consistency: both true and false present among
	// outgoing branch labels, matching edges.
	for id, n := range doc.Nodes {
		if n.Type != string(model.NodeDecision) {
			continue
		}
		labels := map[string]bool{}
		for _, e := range outEdges[id] {
			if e.Branch != "" {
				labels[normalizeBranch(e.Branch)] = true
			}
		}
		if !labels["true"] {
			errs = append(errs, fmt.Sprintf("decision %s has no edge branched true", id))
		}
		if !labels["false"] {
			errs = append(errs, fmt.Sprintf("decision %s has no edge branched false", id))
		}
	}

	sort.Strings(errs)
	return errs
}

func normalizeBranch(b string) string {
	switch b {
	case "true", "yes", "sim", "True", "Yes", "Sim", "TRUE", "YES", "SIM":
		return "true"
	case "false", "no", "não", "nao", "False", "No", "Não", "FALSE", "NO":
		return "false"
	default:
		return b
	}
}
