// Package migration implements spec §4.5: deciding which rodata symbol
// belongs to which function, and producing the explicit emission plan spec
// §9 asks for ("Rodata/text interleaving... compute an explicit emission
// plan (EmitItem = Function(f) | Rodata(r) | Padding(n)) up front; emitter
// is then a pure traversal") instead of reordering output after the fact.
// The binding/ordering walk itself is grounded on the teacher's
// DependencyGraph (dependency_graph.go): a reference graph keyed by address
// is consulted in reachability order rather than mutated in place.
package migration

import (
	"sort"

	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/config"
	"github.com/Decompollaborate/spimdisasm/internal/symbols"
)

// ItemKind tags one entry of an emission plan.
type ItemKind int

const (
	ItemFunction ItemKind = iota
	ItemRodata
	ItemPadding
)

// EmitItem is one step of the plan the emitter walks (spec §9).
type EmitItem struct {
	Kind     ItemKind
	Function *symbols.Symbol // set when Kind == ItemFunction
	Rodata   *symbols.Symbol // set when Kind == ItemRodata
	PadBytes uint32          // set when Kind == ItemPadding
}

// ReferenceGraph is the minimal reference-lookup contract migration needs:
// which functions reference a rodata symbol, and which rodata/data symbols
// reference it (spec §4.5 binding rule clause 2).
type ReferenceGraph interface {
	ReferencingFunctions(vram address.Vram) []address.Vram
	IsReferencedByDataOrRodata(vram address.Vram) bool
}

// Plan computes the emission plan for one text section's functions against
// one rodata section's symbols, applying the binding rule of spec §4.5:
//
//  1. an explicit FunctionOwnerForMigration override always wins;
//  2. otherwise R migrates to F iff F references R, no data/other-rodata
//     symbol references R, and either no other function references R, or
//     the active profile permits single-function-among-many migration
//     (IDO-style PIC).
//
// Within a function's group, rodata appears in ascending vram order;
// unreferenced rodata between two migrated symbols rides along with the
// owning function. Migration stops at the first rodata symbol that fails
// to bind for the current function; the remainder is left for the next
// function (or unmigrated).
func Plan(cfg *config.GlobalConfig, functions []*symbols.Symbol, rodata []*symbols.Symbol, graph ReferenceGraph) []EmitItem {
	funcsSorted := append([]*symbols.Symbol(nil), functions...)
	sort.Slice(funcsSorted, func(i, j int) bool { return funcsSorted[i].Vram < funcsSorted[j].Vram })

	rodataSorted := append([]*symbols.Symbol(nil), rodata...)
	sort.Slice(rodataSorted, func(i, j int) bool { return rodataSorted[i].Vram < rodataSorted[j].Vram })

	migrated := make(map[address.Vram]bool, len(rodataSorted))
	var plan []EmitItem

	for _, fn := range funcsSorted {
		plan = append(plan, EmitItem{Kind: ItemFunction, Function: fn})

		for _, r := range rodataSorted {
			if migrated[r.Vram] || !r.IsMigratable() {
				continue
			}
			if !bindsTo(cfg, fn, r, graph) {
				// An explicit owner pointing elsewhere always blocks this
				// function from claiming r; a plain unreferenced symbol is
				// allowed to ride along only while still contiguous with
				// symbols already bound to fn, which the ascending-vram
				// walk plus "stop on first failure" rule below enforces.
				if r.HasMigrationOwner() || isReferencedByOtherFunction(r, fn, graph) {
					break
				}
				if graph.IsReferencedByDataOrRodata(r.Vram) {
					break
				}
				// Unreferenced symbol with no disqualifying reference:
				// carried along with fn per spec §4.5 "Ordering".
			}
			plan = append(plan, EmitItem{Kind: ItemRodata, Rodata: r})
			migrated[r.Vram] = true
		}
	}

	for _, r := range rodataSorted {
		if !migrated[r.Vram] && r.IsMigratable() {
			plan = append(plan, EmitItem{Kind: ItemRodata, Rodata: r})
		}
	}

	return plan
}

// bindsTo implements spec §4.5 binding rule clause 1/2 for one (fn, r) pair.
func bindsTo(cfg *config.GlobalConfig, fn *symbols.Symbol, r *symbols.Symbol, graph ReferenceGraph) bool {
	if r.HasMigrationOwner() {
		return r.FunctionOwnerForMigration == fn.Vram
	}

	referencers := graph.ReferencingFunctions(r.Vram)
	referencedByFn := false
	otherCount := 0
	for _, f := range referencers {
		if f == fn.Vram {
			referencedByFn = true
		} else {
			otherCount++
		}
	}
	if !referencedByFn {
		return false
	}
	if graph.IsReferencedByDataOrRodata(r.Vram) {
		return false
	}
	if otherCount == 0 {
		return true
	}
	// Single-function-among-many migration is an IDO-profile PIC allowance
	// (spec §4.5 clause 2(ii)).
	return cfg.Profile == config.ProfileIDO
}

func isReferencedByOtherFunction(r *symbols.Symbol, fn *symbols.Symbol, graph ReferenceGraph) bool {
	for _, f := range graph.ReferencingFunctions(r.Vram) {
		if f != fn.Vram {
			return true
		}
	}
	return false
}
