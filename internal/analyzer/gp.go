package analyzer

import (
	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/mipsinsn"
)

// GpAccess records one resolved $gp-relative or GOT access (spec §4.3
// Phase F).
type GpAccess struct {
	PC       address.Vram
	Target   address.Vram
	Operator PairOperator
	IsGpRel  bool
	GotIndex int // -1 unless Operator is one of the GOT variants
}

// GpRelThreshold is the default "-G" size threshold: symbols no larger than
// this many bytes are eligible for %gp_rel addressing under the small-data
// convention referenced in spec §4.3 Phase F.
const GpRelThreshold = 8

// ClassifyGpAccess decides whether a resolved pair addressed via $gp is a
// %gp_rel access or a GOT access, and if GOT, whether it indexes the global
// or local GOT, per spec §4.3 Phase F:
//
//   - an explicit reloc operator on the instruction always wins (handled by
//     the caller before this function is consulted; this function implements
//     the *inferred* path);
//   - non-negative offsets from $gp index the global GOT;
//   - negative offsets index the local GOT;
//   - a reference small enough (<= GpRelThreshold) to the small-data region
//     is %gp_rel instead of GOT, when the symbol is known to live there.
func ClassifyGpAccess(pc address.Vram, target address.Vram, gpOffset int32, symbolSize uint32, inSmallData bool) GpAccess {
	if inSmallData && symbolSize <= GpRelThreshold {
		return GpAccess{PC: pc, Target: target, Operator: OpGpRel, IsGpRel: true, GotIndex: -1}
	}
	if gpOffset >= 0 {
		return GpAccess{PC: pc, Target: target, Operator: OpGot, GotIndex: int(gpOffset / 4)}
	}
	return GpAccess{PC: pc, Target: target, Operator: OpCall16, GotIndex: int(gpOffset / 4)}
}

// IsCpload reports whether insns starting at index i matches the `.cpload`
// preamble recognized in PIC mode (lui $gp,%hi(_gp_disp); addiu
// $gp,$gp,%lo(_gp_disp); addu $gp,$gp,$t9), per spec §4.3 Phase F.
func IsCpload(insns []mipsinsn.Instruction, i int) bool {
	if i+2 >= len(insns) {
		return false
	}
	a, b, c := insns[i], insns[i+1], insns[i+2]
	return a.Op == mipsinsn.OpLUI && a.Rt == mipsinsn.RegGP &&
		b.Op == mipsinsn.OpADDIU && b.Rt == mipsinsn.RegGP && b.Rs == mipsinsn.RegGP &&
		c.Op == mipsinsn.OpADDU && c.Rd == mipsinsn.RegGP
}
