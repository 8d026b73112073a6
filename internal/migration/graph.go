package migration

import "github.com/Decompollaborate/spimdisasm/internal/address"

// Graph is the concrete ReferenceGraph the migration planner consults,
// grounded directly on the teacher's DependencyGraph (dependency_graph.go):
// the same "map of maps keyed by node" adjacency shape, repurposed from
// call-graph reachability (AddCall/GetReachable) to rodata reference-count
// bookkeeping (AddReference/ReferencingFunctions).
type Graph struct {
	// referencedBy maps a rodata vram to the set of function vrams that
	// reference it, mirroring DependencyGraph.graph's caller->callee
	// adjacency but inverted to callee->callers, since migration asks "who
	// references me", not "who do I call".
	referencedBy map[address.Vram]map[address.Vram]bool
	// referencedByOther marks a rodata vram referenced by some data or
	// other-rodata symbol, disqualifying it from migration regardless of
	// function reference count (spec §4.5 binding rule clause 2).
	referencedByOther map[address.Vram]bool
}

// NewGraph returns an empty reference graph.
func NewGraph() *Graph {
	return &Graph{
		referencedBy:      make(map[address.Vram]map[address.Vram]bool),
		referencedByOther: make(map[address.Vram]bool),
	}
}

// AddReference records that fromFunc references toRodata.
func (g *Graph) AddReference(fromFunc, toRodata address.Vram) {
	if g.referencedBy[toRodata] == nil {
		g.referencedBy[toRodata] = make(map[address.Vram]bool)
	}
	g.referencedBy[toRodata][fromFunc] = true
}

// MarkReferencedByDataOrRodata records that some data or other-rodata
// symbol (not a function) references vram.
func (g *Graph) MarkReferencedByDataOrRodata(vram address.Vram) {
	g.referencedByOther[vram] = true
}

// ReferencingFunctions returns every function vram known to reference vram,
// in no particular order (the caller only ever counts or membership-tests
// the result).
func (g *Graph) ReferencingFunctions(vram address.Vram) []address.Vram {
	set := g.referencedBy[vram]
	out := make([]address.Vram, 0, len(set))
	for fn := range set {
		out = append(out, fn)
	}
	return out
}

// IsReferencedByDataOrRodata reports whether vram is referenced by some
// non-function symbol.
func (g *Graph) IsReferencedByDataOrRodata(vram address.Vram) bool {
	return g.referencedByOther[vram]
}
