package analyzer

import (
	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/mipsinsn"
)

// JumpTable is one detected jump table: its base address and the labels its
// entries point to, all of which must lie inside the owning function
// (spec §3 invariant, §4.3 Phase E).
type JumpTable struct {
	Base    address.Vram
	Entries []address.Vram // table-entry addresses, in table order
}

// DetectJumpTables recognizes the `lui -> addu/addiu -> lw -> jr` pattern
// described in spec §4.3 Phase E for every function, reading candidate
// table entries out of rodata via readWord.
//
// readWord returns the word at addr and true, or false if addr is outside
// any section DetectJumpTables was given to read (so detection can refuse
// to synthesize entries from unmapped memory).
func DetectJumpTables(insns []mipsinsn.Instruction, fn FunctionBounds, readWord func(address.Vram) (uint32, bool), isSymbolAt func(address.Vram) bool) []JumpTable {
	var tables []JumpTable

	ls := NewLatticeState()
	for idx, in := range insns {
		stepPair(&pairState{}, ls, in)

		if in.Op != mipsinsn.OpJR || in.IsFunctionEndCandidate {
			continue
		}
		// jr on a register other than $ra is the jump-table dispatch.
		base, ok := jumpTableBaseFor(insns, idx, in.Rs)
		if !ok {
			continue
		}

		table := JumpTable{Base: base}
		entryAddr := base
		for {
			word, ok := readWord(entryAddr)
			if !ok {
				break
			}
			entry := address.Vram(word)
			if uint32(entry)%4 != 0 {
				break
			}
			if entry < fn.Start || entry >= fn.End {
				break
			}
			if isSymbolAt != nil && isSymbolAt(entry) && entry != base {
				break
			}
			table.Entries = append(table.Entries, entry)
			entryAddr += 4
		}
		if len(table.Entries) > 0 {
			tables = append(tables, table)
		}
	}
	return tables
}

// jumpTableBaseFor looks backward from a `jr rY` at index jrIdx for the
// `lui -> addu/addiu (table base + scaled index) -> lw [base+rX]` pattern
// feeding rY, returning the resolved table base address (spec §4.3 Phase E).
func jumpTableBaseFor(insns []mipsinsn.Instruction, jrIdx int, targetReg int) (address.Vram, bool) {
	// Walk backward a small, bounded window looking for the lw that loaded
	// targetReg from a hi/lo-paired base.
	const window = 8
	start := jrIdx - window
	if start < 0 {
		start = 0
	}

	ls := NewLatticeState()
	for i := start; i < jrIdx; i++ {
		in := insns[i]
		if in.Op == mipsinsn.OpLW && in.Rt == targetReg {
			upper := ls.Get(in.Rs)
			if upper.Kind == ValueUpper {
				base := address.Vram((uint32(upper.Imm16) << 16) + uint32(int32(in.Imm)))
				return base, true
			}
			if upper.Kind == ValueAddr {
				return upper.SymVram, true
			}
		}
		stepPair(&pairState{}, ls, in)
	}
	return 0, false
}
