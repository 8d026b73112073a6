package emitter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Decompollaborate/spimdisasm/internal/config"
	"github.com/Decompollaborate/spimdisasm/internal/reloc"
)

// TestGpRelHack is spec §8 seed scenario S6.
func TestGpRelHack(t *testing.T) {
	// Default emission: lw $v0, %gp_rel(sym)($gp)
	def := GpRelLine(4, "lw", "v0", "sym", "gp")
	want := "    lw $v0, %gp_rel(sym)($gp)"
	if def != want {
		t.Errorf("expected %q, got %q", want, def)
	}

	// gpRelHack: lw $v0, sym plus a prepended .extern sym, 4
	instr, extern := GpRelHackExpand(4, "lw", "v0", "sym", 4)
	if instr != "    lw $v0, sym" {
		t.Errorf("unexpected hacked instruction line: %q", instr)
	}
	if extern != ".extern sym, 4" {
		t.Errorf("unexpected extern line: %q", extern)
	}
}

func TestWriteInstruction(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	p := NewPrinter(&buf, cfg)

	if err := p.WriteInstruction("addiu", "$at, $at, 0x2340", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := buf.String()
	want := strings.Repeat(" ", cfg.AsmIndentation) + "addiu $at, $at, 0x2340\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestWriteLabelKinds(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	p := NewPrinter(&buf, cfg)

	if err := p.WriteLabel(LabelFunction, "func_80000000"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.WriteLabel(LabelJumpTable, "jtbl_80010000"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.WriteLabel(LabelBranch, ".L80000010"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := buf.String()
	for _, want := range []string{"glabel func_80000000", "jlabel jtbl_80010000", ".L80000010:"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
}

func TestOperandForWithAddend(t *testing.T) {
	cases := []struct {
		op      reloc.Operator
		symbol  string
		addend  int32
		want    string
	}{
		{reloc.OperatorHi, "sym", 0, "%hi(sym)"},
		{reloc.OperatorLo, "sym", 0x10, "%lo(sym+0x10)"},
		{reloc.OperatorLo, "sym", -0x4, "%lo(sym-0x4)"},
	}
	for _, c := range cases {
		got := OperandFor(c.op, c.symbol, c.addend)
		if got != c.want {
			t.Errorf("OperandFor(%s, %s, %d): expected %q, got %q", c.op, c.symbol, c.addend, c.want, got)
		}
	}
}

func TestDoubleLine(t *testing.T) {
	got := DoubleLine(4, 3.14)
	if !strings.HasPrefix(got, "    .double 3.14") {
		t.Errorf("unexpected double line: %q", got)
	}
}

func TestAscizLine(t *testing.T) {
	got := AscizLine(4, "Hello")
	want := `    .asciz "Hello"`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
