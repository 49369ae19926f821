package loader

import (
	"os"
	"path/filepath"
	"testing"
)

const yamlSource = `sff:
  direction: TB
entry:
  start: s
  ends: [e]
lanes:
  l1:
    title: Triagem
    order: 1
nodes:
  s:
    type: start
    lane: l1
    label: Início
  e:
    type: end
    lane: l1
    label: Fim
edges:
  - from: s
    to: e
`

const jsonSource = `{
  "sff": {"direction": "LR"},
  "entry": {"start": "s", "ends": ["e"]},
  "lanes": {"l1": {"title": "Lane 1", "order": 1}},
  "nodes": {
    "s": {"type": "start", "lane": "l1"},
    "e": {"type": "end", "lane": "l1"}
  },
  "edges": [{"id": "e1", "from": "s", "to": "e"}]
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadDocument_YAML(t *testing.T) {
	doc, err := LoadDocument(writeTemp(t, "flow.yaml", yamlSource))
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if doc.SFF.Direction != "TB" {
		t.Errorf("direction = %q, want TB", doc.SFF.Direction)
	}
	if doc.Entry.Start != "s" {
		t.Errorf("entry.start = %q, want s", doc.Entry.Start)
	}
	if doc.Nodes["s"].Label != "Início" {
		t.Errorf("s.label = %q, want non-ASCII label preserved", doc.Nodes["s"].Label)
	}
	if len(doc.Edges) != 1 || doc.Edges[0].From != "s" || doc.Edges[0].To != "e" {
		t.Errorf("edges = %+v, want one s->e edge", doc.Edges)
	}
}

func TestLoadDocument_JSONByExtension(t *testing.T) {
	doc, err := LoadDocument(writeTemp(t, "flow.json", jsonSource))
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if doc.SFF.Direction != "LR" {
		t.Errorf("direction = %q, want LR", doc.SFF.Direction)
	}
	if doc.Edges[0].ID != "e1" {
		t.Errorf("edges[0].id = %q, want e1", doc.Edges[0].ID)
	}
}

func TestLoadDocument_StripsBOM(t *testing.T) {
	doc, err := LoadDocument(writeTemp(t, "flow.yaml", "\xEF\xBB\xBF"+yamlSource))
	if err != nil {
		t.Fatalf("LoadDocument with BOM: %v", err)
	}
	if doc.Entry.Start != "s" {
		t.Errorf("entry.start = %q, want s", doc.Entry.Start)
	}
}

func TestLoadDocument_MissingFile(t *testing.T) {
	if _, err := LoadDocument(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadDocument succeeded on a missing file")
	}
}
