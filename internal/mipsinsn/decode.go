package mipsinsn

import "github.com/Decompollaborate/spimdisasm/internal/address"

// Decode decodes a single big-endian-encoded MIPS word at vram into an
// Instruction. This is a minimal MIPS I/II decoder: enough opcodes to drive
// the analyzer's boundary/pairing/jump-table/branch phases and their tests
// (spec §8 seed scenarios). It is explicitly the "external decoder" stand-in
// described in spec §1/§4.3, not a production disassembler front end.
func Decode(word uint32, vram address.Vram) Instruction {
	ins := Instruction{Vram: vram, Raw: word, Op: OpOther}

	op := (word >> 26) & 0x3F
	rs := int((word >> 21) & 0x1F)
	rt := int((word >> 16) & 0x1F)
	rd := int((word >> 11) & 0x1F)
	imm := int16(word & 0xFFFF)
	immU := uint16(word & 0xFFFF)
	target := (word & 0x03FFFFFF) << 2

	ins.Rs, ins.Rt, ins.Rd = rs, rt, rd
	ins.Imm, ins.ImmU = imm, immU

	switch op {
	case 0x00: // SPECIAL
		funct := word & 0x3F
		switch funct {
		case 0x00: // SLL
			if word == 0 {
				ins.Op = OpNOP
			}
		case 0x08: // JR
			ins.Op = OpJR
			ins.IsJump = true
			if rs == RegRA {
				ins.IsFunctionEndCandidate = true
			}
		case 0x09: // JALR
			ins.Op = OpJALR
			ins.IsJump = true
			ins.JumpIsLink = true
		case 0x21: // ADDU
			ins.Op = OpADDU
		case 0x25: // OR
			if rt == RegZero {
				ins.Op = OpMOVE
			} else {
				ins.Op = OpOR
			}
		default:
			ins.Op = OpOther
		}
		return ins
	case 0x02: // J
		ins.Op = OpJ
		ins.IsJump = true
		ins.IsUnconditionalBranch = true
		ins.Target = jumpTarget(vram, target)
		return ins
	case 0x03: // JAL
		ins.Op = OpJAL
		ins.IsJump = true
		ins.JumpIsLink = true
		ins.Target = jumpTarget(vram, target)
		return ins
	case 0x04: // BEQ
		ins.Op = OpBEQ
		ins.IsBranch = true
		ins.Target = branchTarget(vram, imm)
		return ins
	case 0x05: // BNE
		ins.Op = OpBNE
		ins.IsBranch = true
		ins.Target = branchTarget(vram, imm)
		return ins
	case 0x06: // BLEZ
		ins.Op = OpBLEZ
		ins.IsBranch = true
		ins.Target = branchTarget(vram, imm)
		return ins
	case 0x07: // BGTZ
		ins.Op = OpBGTZ
		ins.IsBranch = true
		ins.Target = branchTarget(vram, imm)
		return ins
	case 0x08: // ADDI
		ins.Op = OpADDI
		return ins
	case 0x09: // ADDIU
		ins.Op = OpADDIU
		return ins
	case 0x0D: // ORI
		ins.Op = OpORI
		return ins
	case 0x0F: // LUI
		ins.Op = OpLUI
		return ins
	case 0x14: // BEQL
		ins.Op = OpBEQL
		ins.IsBranch = true
		ins.Target = branchTarget(vram, imm)
		return ins
	case 0x15: // BNEL
		ins.Op = OpBNEL
		ins.IsBranch = true
		ins.Target = branchTarget(vram, imm)
		return ins
	case 0x20: // LB
		ins.Op = OpLB
		ins.IsLoad, ins.AccessWidth, ins.AccessSigned = true, 1, true
		return ins
	case 0x21: // LH
		ins.Op = OpLH
		ins.IsLoad, ins.AccessWidth, ins.AccessSigned = true, 2, true
		return ins
	case 0x23: // LW
		ins.Op = OpLW
		ins.IsLoad, ins.AccessWidth, ins.AccessSigned = true, 4, true
		return ins
	case 0x24: // LBU
		ins.Op = OpLBU
		ins.IsLoad, ins.AccessWidth, ins.AccessSigned = true, 1, false
		return ins
	case 0x25: // LHU
		ins.Op = OpLHU
		ins.IsLoad, ins.AccessWidth, ins.AccessSigned = true, 2, false
		return ins
	case 0x27: // LD (rare in o32, kept for N64 libultra doubles via two LW normally)
		ins.Op = OpLD
		ins.IsLoad, ins.AccessWidth, ins.AccessSigned = true, 8, true
		return ins
	case 0x28: // SB
		ins.Op = OpSB
		ins.IsStore, ins.AccessWidth = true, 1
		return ins
	case 0x29: // SH
		ins.Op = OpSH
		ins.IsStore, ins.AccessWidth = true, 2
		return ins
	case 0x2B: // SW
		ins.Op = OpSW
		ins.IsStore, ins.AccessWidth = true, 4
		return ins
	case 0x01: // REGIMM: BLTZ/BGEZ
		ins.IsBranch = true
		ins.Target = branchTarget(vram, imm)
		if rt == 0 {
			ins.Op = OpBLTZ
		} else if rt == 1 {
			ins.Op = OpBGEZ
		}
		return ins
	}

	return ins
}

func branchTarget(pc address.Vram, imm int16) address.Vram {
	return address.Vram(int64(pc) + 4 + int64(imm)*4)
}

func jumpTarget(pc address.Vram, target uint32) address.Vram {
	return address.Vram((uint32(pc+4) & 0xF0000000) | target)
}

// DecodeWords decodes a contiguous big-endian word stream starting at
// baseVram into a slice of Instructions, one per word.
func DecodeWords(words []uint32, baseVram address.Vram) []Instruction {
	out := make([]Instruction, len(words))
	for i, w := range words {
		out[i] = Decode(w, baseVram+address.Vram(i*4))
	}
	return out
}
