package migration

import "testing"

func TestGraphReferencingFunctions(t *testing.T) {
	g := NewGraph()
	g.AddReference(0x80000000, 0x80020000)
	g.AddReference(0x80000100, 0x80020000)

	fns := g.ReferencingFunctions(0x80020000)
	if len(fns) != 2 {
		t.Fatalf("expected 2 referencing functions, got %d", len(fns))
	}

	if len(g.ReferencingFunctions(0x80020008)) != 0 {
		t.Errorf("expected no referencing functions for an untouched vram")
	}
}

func TestGraphIsReferencedByDataOrRodata(t *testing.T) {
	g := NewGraph()
	if g.IsReferencedByDataOrRodata(0x80020000) {
		t.Errorf("expected false before any mark")
	}
	g.MarkReferencedByDataOrRodata(0x80020000)
	if !g.IsReferencedByDataOrRodata(0x80020000) {
		t.Errorf("expected true after mark")
	}
}

// interface compliance check.
var _ ReferenceGraph = (*Graph)(nil)
