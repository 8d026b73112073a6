package engine

import (
	"fmt"

	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/analyzer"
	"github.com/Decompollaborate/spimdisasm/internal/context"
	"github.com/Decompollaborate/spimdisasm/internal/emitter"
	"github.com/Decompollaborate/spimdisasm/internal/mipsinsn"
	"github.com/Decompollaborate/spimdisasm/internal/reloc"
	"github.com/Decompollaborate/spimdisasm/internal/symbols"
)

// FuncAsm carries one function's decoded instructions plus the analyzer
// facts (spec §4.3's Pairs/JumpTables/Labels) needed to render it as real
// assembly instead of a raw `.word` dump (spec §4.6).
type FuncAsm struct {
	Bounds     analyzer.FunctionBounds
	Insns      []mipsinsn.Instruction
	PairByHiPC map[address.Vram]analyzer.Pair
	PairByLoPC map[address.Vram]analyzer.Pair
	JumpTables []analyzer.JumpTable
	Labels     map[address.Vram]string
}

// Artifacts bundles the per-function and per-jump-table analyzer output that
// Run discovers and Emit needs later, keyed by the vram Emit's plan already
// carries (the function symbol's vram, the jump-table symbol's vram).
type Artifacts struct {
	Funcs      map[address.Vram]*FuncAsm
	JumpTables map[address.Vram]analyzer.JumpTable
}

func newArtifacts() *Artifacts {
	return &Artifacts{
		Funcs:      make(map[address.Vram]*FuncAsm),
		JumpTables: make(map[address.Vram]analyzer.JumpTable),
	}
}

// newFuncAsm indexes result's pairs by both instruction sites they bind
// (the `lui` and its consuming load/store/addiu) and assigns every
// in-function label (branch targets and jump-table entries) a deterministic
// name, so emitFunctionBody never has to recompute analyzer facts.
func newFuncAsm(fb analyzer.FunctionBounds, insns []mipsinsn.Instruction, result analyzer.FunctionResult) *FuncAsm {
	fa := &FuncAsm{
		Bounds:     fb,
		Insns:      insns,
		PairByHiPC: make(map[address.Vram]analyzer.Pair, len(result.Pairs)),
		PairByLoPC: make(map[address.Vram]analyzer.Pair, len(result.Pairs)),
		JumpTables: result.JumpTables,
		Labels:     make(map[address.Vram]string, len(result.Labels)),
	}
	for _, p := range result.Pairs {
		fa.PairByHiPC[p.HiPC] = p
		fa.PairByLoPC[p.LoPC] = p
	}

	jtEntries := make(map[address.Vram]bool)
	for _, jt := range result.JumpTables {
		for _, e := range jt.Entries {
			jtEntries[e] = true
		}
	}
	for _, target := range result.Labels {
		kind := symbols.KindBranchLabel
		if jtEntries[target] {
			kind = symbols.KindJumpTableLabel
		}
		fa.Labels[target] = labelName(target, kind)
	}
	return fa
}

// labelName generates a deterministic function-internal label name without
// ever registering vram in the Context: a real symbol there would trigger
// Context.AddSymbol's containment-split, which shrinks whatever owning
// function or data symbol already spans vram (spec §3 "Lifecycles"). A
// transient, unregistered *symbols.Symbol carrying only Vram/SectionType/
// AutodetectedType is enough to drive symbols.AutoName's naming table.
func labelName(vram address.Vram, kind symbols.Kind) string {
	transient := symbols.New(vram, 0, symbols.SectionText)
	transient.AutodetectedType = kind
	return symbols.AutoName(transient)
}

// emitFunctionBody writes one function's instructions as real assembly
// lines (spec §4.6), emitting a branch/jump-table label line immediately
// before any instruction a label targets.
func emitFunctionBody(p *emitter.Printer, ctx *context.Context, fa *FuncAsm) error {
	for _, in := range fa.Insns {
		if label, ok := fa.Labels[in.Vram]; ok {
			if err := p.WriteLabel(emitter.LabelBranch, label); err != nil {
				return err
			}
		}
		mnemonic, operands, comment := renderInstruction(ctx, fa, in)
		if mnemonic == "" {
			if err := p.WriteRaw(emitter.WordLine(0, in.Raw, true)); err != nil {
				return err
			}
			continue
		}
		if err := p.WriteInstruction(mnemonic, operands, comment); err != nil {
			return err
		}
	}
	return nil
}

// renderInstruction formats one instruction's mnemonic/operands/comment
// triple, substituting a %hi/%lo operand wherever the analyzer resolved a
// pair for this instruction site (spec §4.3 Phase C, §4.6) and a label
// reference wherever a branch/jump targets another instruction in the same
// function. Opcodes outside the minimal decoder's modeled set (OpOther) and
// undecodable words (OpInvalid) fall back to a raw commented `.word` line,
// signaled to the caller by an empty mnemonic.
func renderInstruction(ctx *context.Context, fa *FuncAsm, in mipsinsn.Instruction) (mnemonic, operands, comment string) {
	reg := mipsinsn.RegName

	switch in.Op {
	case mipsinsn.OpLUI:
		if pair, ok := fa.PairByHiPC[in.Vram]; ok {
			sym, addend := resolveOperandSymbol(ctx, pair.Target)
			return in.Op.String(), fmt.Sprintf("$%s, %s", reg(in.Rt), emitter.OperandFor(reloc.OperatorHi, sym, addend)), ""
		}
		return in.Op.String(), fmt.Sprintf("$%s, 0x%04X", reg(in.Rt), in.ImmU), ""

	case mipsinsn.OpADDIU, mipsinsn.OpADDI:
		if pair, ok := fa.PairByLoPC[in.Vram]; ok {
			sym, addend := resolveOperandSymbol(ctx, pair.Target)
			return in.Op.String(), fmt.Sprintf("$%s, $%s, %s", reg(in.Rt), reg(in.Rs), emitter.OperandFor(reloc.OperatorLo, sym, addend)), ""
		}
		return in.Op.String(), fmt.Sprintf("$%s, $%s, %d", reg(in.Rt), reg(in.Rs), in.Imm), ""

	case mipsinsn.OpORI:
		if pair, ok := fa.PairByLoPC[in.Vram]; ok {
			sym, addend := resolveOperandSymbol(ctx, pair.Target)
			return in.Op.String(), fmt.Sprintf("$%s, $%s, %s", reg(in.Rt), reg(in.Rs), emitter.OperandFor(reloc.OperatorLo, sym, addend)), ""
		}
		return in.Op.String(), fmt.Sprintf("$%s, $%s, 0x%04X", reg(in.Rt), reg(in.Rs), in.ImmU), ""

	case mipsinsn.OpLW, mipsinsn.OpLD, mipsinsn.OpLH, mipsinsn.OpLHU, mipsinsn.OpLB, mipsinsn.OpLBU,
		mipsinsn.OpSW, mipsinsn.OpSH, mipsinsn.OpSB:
		if pair, ok := fa.PairByLoPC[in.Vram]; ok {
			sym, addend := resolveOperandSymbol(ctx, pair.Target)
			return in.Op.String(), fmt.Sprintf("$%s, %s($%s)", reg(in.Rt), emitter.OperandFor(reloc.OperatorLo, sym, addend), reg(in.Rs)), ""
		}
		return in.Op.String(), fmt.Sprintf("$%s, %d($%s)", reg(in.Rt), in.Imm, reg(in.Rs)), ""

	case mipsinsn.OpOR, mipsinsn.OpADDU:
		return in.Op.String(), fmt.Sprintf("$%s, $%s, $%s", reg(in.Rd), reg(in.Rs), reg(in.Rt)), ""

	case mipsinsn.OpMOVE:
		return in.Op.String(), fmt.Sprintf("$%s, $%s", reg(in.Rd), reg(in.Rs)), ""

	case mipsinsn.OpJ, mipsinsn.OpJAL:
		return in.Op.String(), targetOperand(ctx, fa, in.Target), ""

	case mipsinsn.OpJR, mipsinsn.OpJALR:
		return in.Op.String(), fmt.Sprintf("$%s", reg(in.Rs)), ""

	case mipsinsn.OpBEQ, mipsinsn.OpBNE, mipsinsn.OpBEQL, mipsinsn.OpBNEL:
		return in.Op.String(), fmt.Sprintf("$%s, $%s, %s", reg(in.Rs), reg(in.Rt), targetOperand(ctx, fa, in.Target)), ""

	case mipsinsn.OpBLEZ, mipsinsn.OpBGTZ, mipsinsn.OpBLTZ, mipsinsn.OpBGEZ:
		return in.Op.String(), fmt.Sprintf("$%s, %s", reg(in.Rs), targetOperand(ctx, fa, in.Target)), ""

	case mipsinsn.OpNOP:
		return in.Op.String(), "", ""

	default:
		return "", "", ""
	}
}

// resolveOperandSymbol looks up target in ctx, honoring an addend when the
// reference lands inside a symbol's span rather than exactly on it (spec
// §4.1 overflow-adjustment window); an unresolved target prints as a raw
// hex address rather than stalling emission.
func resolveOperandSymbol(ctx *context.Context, target address.Vram) (string, int32) {
	if sym, addend, ok := ctx.GetSymbol(context.GlobalCategory, 0, target, true); ok {
		return sym.QuotedName(), addend
	}
	return fmt.Sprintf("0x%08X", uint32(target)), 0
}

// targetOperand resolves a branch/jump target to the label or symbol name
// the emitter should print: an in-function label if fa already named one
// (it always will have, for targets DetectJumpTables/AnalyzeFunction found,
// spec §4.3 Phase E), an on-the-fly label for any other in-bounds target,
// or a Context symbol name/raw address for a call leaving the function.
func targetOperand(ctx *context.Context, fa *FuncAsm, target address.Vram) string {
	if label, ok := fa.Labels[target]; ok {
		return label
	}
	if target >= fa.Bounds.Start && target < fa.Bounds.End {
		return labelName(target, symbols.KindBranchLabel)
	}
	name, _ := resolveOperandSymbol(ctx, target)
	return name
}
