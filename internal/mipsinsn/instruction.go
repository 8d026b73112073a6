// Package mipsinsn stands in for the external raw MIPS instruction decoder
// named in spec §1 ("out of scope... treated as external collaborators").
// It defines the minimal contract the analyzer consumes (mnemonic, operand
// fields, branch/jump targets, load/store metadata) plus a small concrete
// decoder sufficient to drive the analyzer end to end in tests. A real
// deployment swaps this package for a full decoder without touching the
// analyzer, since the analyzer only depends on the Instruction struct
// below.
package mipsinsn

import "github.com/Decompollaborate/spimdisasm/internal/address"

// Op names the handful of opcodes the analyzer's phases reason about
// explicitly (spec §4.3). Anything else decodes as OpOther and is opaque
// to the analyzer beyond its category flags.
type Op int

const (
	OpOther Op = iota
	OpLUI
	OpADDIU
	OpADDI
	OpORI
	OpLW
	OpLD
	OpLH
	OpLHU
	OpLB
	OpLBU
	OpSW
	OpSH
	OpSB
	OpOR
	OpADDU
	OpMOVE // pseudo: or rd, rs, $zero
	OpJ
	OpJAL
	OpJR
	OpJALR
	OpBEQ
	OpBNE
	OpBEQL
	OpBNEL
	OpBLEZ
	OpBGTZ
	OpBLTZ
	OpBGEZ
	OpNOP
	OpInvalid
)

// Instruction is one decoded instruction plus the metadata the analyzer
// needs; it is what an external decoder is expected to hand the analyzer
// one-by-one for a text section (spec §4.3 preamble).
type Instruction struct {
	Vram address.Vram
	Raw  uint32
	Op   Op

	Rs, Rt, Rd int
	Imm        int16 // sign-extended 16-bit immediate, when applicable
	ImmU       uint16

	// Branch/jump metadata.
	IsBranch             bool
	IsUnconditionalBranch bool
	IsJump               bool
	JumpIsLink           bool // jal/jalr
	Target               address.Vram // valid when IsBranch or IsJump and not register-indirect

	// Load/store metadata.
	IsLoad       bool
	IsStore      bool
	AccessWidth  int // bytes
	AccessSigned bool

	IsFunctionEndCandidate bool // jr $ra
}

// String returns the assembler mnemonic for op, the text the emitter prints
// verbatim as an instruction line's opcode field (spec §4.6).
func (op Op) String() string {
	switch op {
	case OpLUI:
		return "lui"
	case OpADDIU:
		return "addiu"
	case OpADDI:
		return "addi"
	case OpORI:
		return "ori"
	case OpLW:
		return "lw"
	case OpLD:
		return "ld"
	case OpLH:
		return "lh"
	case OpLHU:
		return "lhu"
	case OpLB:
		return "lb"
	case OpLBU:
		return "lbu"
	case OpSW:
		return "sw"
	case OpSH:
		return "sh"
	case OpSB:
		return "sb"
	case OpOR:
		return "or"
	case OpADDU:
		return "addu"
	case OpMOVE:
		return "move"
	case OpJ:
		return "j"
	case OpJAL:
		return "jal"
	case OpJR:
		return "jr"
	case OpJALR:
		return "jalr"
	case OpBEQ:
		return "beq"
	case OpBNE:
		return "bne"
	case OpBEQL:
		return "beql"
	case OpBNEL:
		return "bnel"
	case OpBLEZ:
		return "blez"
	case OpBGTZ:
		return "bgtz"
	case OpBLTZ:
		return "bltz"
	case OpBGEZ:
		return "bgez"
	case OpNOP:
		return "nop"
	default:
		return "<unknown>"
	}
}

// RegName returns the canonical MIPS o32 ABI name for register index r.
func RegName(r int) string {
	if r >= 0 && r < len(abiNames) {
		return abiNames[r]
	}
	return "?"
}

var abiNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

const (
	RegZero = 0
	RegAT   = 1
	RegGP   = 28
	RegSP   = 29
	RegRA   = 31
)
