// Package analyzer implements the instruction-stream analyzer of spec §4.3:
// function boundary discovery, register-value tracking, %hi/%lo pairing,
// jump-table detection, $gp handling, and branch look-ahead.
package analyzer

import "github.com/Decompollaborate/spimdisasm/internal/address"

// ValueKind is the tag of one lattice element (spec §4.3 Phase B).
type ValueKind int

const (
	ValueUnknown ValueKind = iota
	ValueConstant
	ValueUpper  // holds a LUI immediate, waiting for its lo half
	ValueAddr   // resolved symbol + addend
	ValueGpBase // $gp holding _gp_disp (PIC preamble)
)

// Value is the full abstract value carried by one register: which lattice
// element it holds, plus the data relevant to that element.
type Value struct {
	Kind ValueKind

	Imm16        uint16       // ValueUpper: the lui immediate
	Const        int64        // ValueConstant
	SymVram      address.Vram // ValueAddr: referenced symbol's vram
	Addend       int32        // ValueAddr: addend from symbol base
	ProducingPC  address.Vram
}

// LatticeState is the per-register abstract value lattice for one function,
// a direct repurposing of the teacher's RegisterTracker (register_tracker.go):
// same "array of register slots + Clone()" shape, but tracking symbolic
// values instead of liveness, so that Phase D's branch fork
// (spec §4.3) can snapshot and later merge register state cheaply.
type LatticeState struct {
	regs [32]Value
}

// NewLatticeState returns a lattice with every register Unknown, except
// $zero which is always the constant 0.
func NewLatticeState() *LatticeState {
	ls := &LatticeState{}
	ls.regs[0] = Value{Kind: ValueConstant, Const: 0}
	return ls
}

// Get returns the current abstract value of register r.
func (ls *LatticeState) Get(r int) Value {
	if r < 0 || r > 31 {
		return Value{Kind: ValueUnknown}
	}
	return ls.regs[r]
}

// Set overwrites register r's abstract value, clobbering whatever it held.
// $zero is pinned and silently ignored, matching real MIPS semantics.
func (ls *LatticeState) Set(r int, v Value) {
	if r <= 0 || r > 31 {
		return
	}
	ls.regs[r] = v
}

// Clobber marks register r Unknown, used for writes whose produced value
// the analyzer does not track (most ALU ops) and for caller-saved
// invalidation across jal/jalr (spec §4.3 Phase B).
func (ls *LatticeState) Clobber(r int) {
	ls.Set(r, Value{Kind: ValueUnknown})
}

// ClobberCallerSaved invalidates the registers a `jal`/`jalr` call may
// clobber under the o32 ABI: $at, $v0-$v1, $a0-$a3, $t0-$t9, $ra.
func (ls *LatticeState) ClobberCallerSaved() {
	for _, r := range []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 24, 25, 31} {
		ls.Clobber(r)
	}
}

// Clone returns an independent copy of the lattice, the exact operation
// spec §4.3 Phase D needs to fork state at a conditional branch before
// following the taken and fall-through paths separately.
func (ls *LatticeState) Clone() *LatticeState {
	clone := &LatticeState{}
	clone.regs = ls.regs
	return clone
}
