// Package emitter implements spec §4.6: the textual assembly printer.
// Writing is gated through a single Printer type wrapping an io.Writer,
// following the teacher's BufferWrapper convention (emit.go) of small
// Write*-style helpers around one buffer rather than a template engine.
package emitter

import (
	"fmt"
	"io"
	"strings"

	"github.com/Decompollaborate/spimdisasm/internal/config"
	"github.com/Decompollaborate/spimdisasm/internal/reloc"
)

// Printer writes assembly text to out, honoring cfg's indentation and
// emission toggles (spec §4.6, §9: the emitter is a pure traversal over an
// already-computed plan, never recomputing migration or analysis facts).
type Printer struct {
	out io.Writer
	cfg *config.GlobalConfig
}

// NewPrinter builds a Printer writing to out under cfg.
func NewPrinter(out io.Writer, cfg *config.GlobalConfig) *Printer {
	return &Printer{out: out, cfg: cfg}
}

func (p *Printer) indent() string {
	return strings.Repeat(" ", p.cfg.AsmIndentation)
}

func (p *Printer) labelIndent() string {
	return strings.Repeat(" ", p.cfg.AsmIndentationLabels)
}

// WriteInstruction prints one instruction line:
// <indent><mnemonic> <operands>[ <inline-reloc>][ <comment>] (spec §4.6).
func (p *Printer) WriteInstruction(mnemonic, operands, comment string) error {
	line := p.indent() + mnemonic
	if operands != "" {
		line += " " + operands
	}
	if comment != "" {
		line += " # " + comment
	}
	_, err := fmt.Fprintln(p.out, line)
	return err
}

// LabelKind selects which label macro WriteLabel emits (spec §4.6).
type LabelKind int

const (
	LabelFunction LabelKind = iota
	LabelJumpTable
	LabelData
	LabelBranch
	LabelEHTable
)

// labelMacro returns the configurable macro name for non-branch label
// kinds (spec §4.6: "jlabel"/"dlabel"/"ehlabel" defaults).
func labelMacro(kind LabelKind) string {
	switch kind {
	case LabelFunction:
		return "glabel"
	case LabelJumpTable:
		return "jlabel"
	case LabelData:
		return "dlabel"
	case LabelEHTable:
		return "ehlabel"
	default:
		return "dlabel"
	}
}

// WriteLabel prints one label line. Branch labels print as a bare
// `name:` (they are already formatted `.L<hex>` or `.L_<fn>_<n>` by the
// caller); the others go through their configurable macro.
func (p *Printer) WriteLabel(kind LabelKind, name string) error {
	if kind == LabelBranch {
		_, err := fmt.Fprintf(p.out, "%s%s:\n", p.labelIndent(), name)
		return err
	}
	_, err := fmt.Fprintf(p.out, "%s%s %s\n", p.labelIndent(), labelMacro(kind), name)
	return err
}

// WriteSize prints a .size directive, when enabled (spec §4.6,
// --asm-emit-size-directive).
func (p *Printer) WriteSize(name string, size uint32) error {
	if !p.cfg.AsmEmitSizeDirective {
		return nil
	}
	_, err := fmt.Fprintf(p.out, "%s.size %s, 0x%X\n", p.indent(), name, size)
	return err
}

// WriteAlign prints a .align directive for the given power-of-two shift.
func (p *Printer) WriteAlign(shift int) error {
	_, err := fmt.Fprintf(p.out, "%s.align %d\n", p.indent(), shift)
	return err
}

// WriteRaw prints line verbatim followed by a newline, for callers (such as
// the literal-line helpers in literals.go/gprelhack.go) that have already
// built a complete, pre-indented line.
func (p *Printer) WriteRaw(line string) error {
	_, err := fmt.Fprintln(p.out, line)
	return err
}

// OperandFor renders a %hi/%lo/%got/... operand for symbol, with addend
// when non-zero (spec §4.6: "%lo(sym[+addend])").
func OperandFor(op reloc.Operator, symbol string, addend int32) string {
	if addend == 0 {
		return fmt.Sprintf("%s(%s)", op, symbol)
	}
	if addend > 0 {
		return fmt.Sprintf("%s(%s+0x%X)", op, symbol, addend)
	}
	return fmt.Sprintf("%s(%s-0x%X)", op, symbol, -addend)
}
