package analyzer

import (
	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/mipsinsn"
)

// PairOperator names which reloc operator a resolved pair should be printed
// with by the emitter (spec §4.3 Phase F, §6).
type PairOperator int

const (
	OpHiLo PairOperator = iota // %hi / %lo
	OpGot                      // %got
	OpCall16                   // %call16
	OpGotHi16                  // %got_hi16
	OpGotLo16                  // %got_lo16
	OpCallHi16                 // %call_hi16
	OpCallLo16                 // %call_lo16
	OpGpRel                    // %gp_rel
)

// Pair binds one `lui` (hi) instruction to one consuming (lo) instruction
// and the target vram they jointly materialize (spec §4.3 Phase C).
type Pair struct {
	HiPC      address.Vram
	LoPC      address.Vram
	Target    address.Vram
	Operator  PairOperator
	Access    mipsinsn.Instruction // the lo instruction, for access-type bookkeeping
}

// pairState collects the pairs found for one function. Reuse of a hi is
// governed by the LatticeState, not by pairState: a hi stays available
// until stepPair overwrites the register slot holding its upper value.
type pairState struct {
	pairs []Pair
}

// ResolvePairs walks a function's instructions against its lattice,
// producing every %hi/%lo pair site per spec §4.3 Phases B/C. latticeAt, if
// non-nil, supplies a pre-seeded lattice; otherwise a fresh one is used.
func ResolvePairs(insns []mipsinsn.Instruction, latticeAt *LatticeState) []Pair {
	ls := latticeAt
	if ls == nil {
		ls = NewLatticeState()
	}
	ps := &pairState{}

	for _, in := range insns {
		stepPair(ps, ls, in)
	}
	return ps.pairs
}

// stepPair applies one instruction's effect on the lattice and emits a pair
// when a lo-consuming instruction reads an upper(imm16) value (spec §4.3
// Phase B bullet list).
func stepPair(ps *pairState, ls *LatticeState, in mipsinsn.Instruction) {
	switch in.Op {
	case mipsinsn.OpLUI:
		ls.Set(in.Rt, Value{Kind: ValueUpper, Imm16: in.ImmU, ProducingPC: in.Vram})
		return

	case mipsinsn.OpADDIU, mipsinsn.OpADDI, mipsinsn.OpORI:
		upper := ls.Get(in.Rs)
		if upper.Kind == ValueUpper {
			target := address.Vram((uint32(upper.Imm16) << 16) + uint32(int32(in.Imm)))
			ps.pairs = append(ps.pairs, Pair{HiPC: upper.ProducingPC, LoPC: in.Vram, Target: target, Operator: OpHiLo, Access: in})
			ls.Set(in.Rt, Value{Kind: ValueAddr, SymVram: target, ProducingPC: in.Vram})
			return
		}
		ls.Clobber(in.Rt)
		return

	case mipsinsn.OpLW, mipsinsn.OpLH, mipsinsn.OpLHU, mipsinsn.OpLB, mipsinsn.OpLBU, mipsinsn.OpLD:
		upper := ls.Get(in.Rs)
		if upper.Kind == ValueUpper {
			target := address.Vram((uint32(upper.Imm16) << 16) + uint32(int32(in.Imm)))
			ps.pairs = append(ps.pairs, Pair{HiPC: upper.ProducingPC, LoPC: in.Vram, Target: target, Operator: OpHiLo, Access: in})
		}
		ls.Clobber(in.Rt)
		return

	case mipsinsn.OpSW, mipsinsn.OpSH, mipsinsn.OpSB:
		upper := ls.Get(in.Rs)
		if upper.Kind == ValueUpper {
			target := address.Vram((uint32(upper.Imm16) << 16) + uint32(int32(in.Imm)))
			ps.pairs = append(ps.pairs, Pair{HiPC: upper.ProducingPC, LoPC: in.Vram, Target: target, Operator: OpHiLo, Access: in})
		}
		return

	case mipsinsn.OpOR, mipsinsn.OpMOVE:
		// Copy propagation: or/move acting as a register copy propagates
		// the source's lattice value (spec §4.3 Phase B).
		if in.Op == mipsinsn.OpMOVE {
			ls.Set(in.Rd, ls.Get(in.Rs))
		} else if in.Rt == mipsinsn.RegZero {
			ls.Set(in.Rd, ls.Get(in.Rs))
		} else {
			ls.Clobber(in.Rd)
		}
		return

	case mipsinsn.OpADDU:
		// Jump-table idiom (spec §4.3 Phase E): `addu` combining a table
		// base still held as an upper(imm16) with a scaled index keeps
		// enough of the base visible for the following `lw ...(%lo(tbl))`
		// to still pair. A plain addu between two otherwise-tracked values
		// clobbers, as an ordinary arithmetic result would.
		if up := ls.Get(in.Rs); up.Kind == ValueUpper {
			ls.Set(in.Rd, up)
		} else if up := ls.Get(in.Rt); up.Kind == ValueUpper {
			ls.Set(in.Rd, up)
		} else {
			ls.Clobber(in.Rd)
		}
		return

	case mipsinsn.OpJAL, mipsinsn.OpJALR:
		ls.ClobberCallerSaved()
		return

	default:
		// Every other opcode leaves the lattice unchanged, including ones
		// that write a register: the minimal decoder in internal/mipsinsn
		// only distinguishes the opcodes above, so unrecognized
		// instructions are treated as not writing a GPR the analyzer tracks.
		return
	}
}
