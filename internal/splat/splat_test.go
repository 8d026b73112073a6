package splat

import (
	"strings"
	"testing"

	"github.com/Decompollaborate/spimdisasm/internal/symbols"
)

func TestParseSplitCSV(t *testing.T) {
	in := "0x1000,0x80000000,text,main_text\n0x2000,0x80001000,rodata,main_rodata\n"
	rows, err := ParseSplitCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Vram != 0x80000000 || rows[0].Type != "text" || rows[0].Name != "main_text" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Offset != 0x2000 {
		t.Errorf("unexpected second row offset: %s", rows[1].Offset)
	}
}

func TestParseSymbolCSVOptionalColumns(t *testing.T) {
	in := "func_80000000,0x80000000,0x40,func\nunsized_sym,0x80000100,-\nbare_sym,0x80000200\n"
	rows, err := ParseSymbolCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Size != 0x40 || rows[0].Kind != symbols.KindFunction {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Size != 0 {
		t.Errorf("expected '-' to mean unknown size, got %d", rows[1].Size)
	}
	if rows[2].Size != 0 || rows[2].Kind != symbols.KindNone {
		t.Errorf("expected bare row to default to unknown size/kind: %+v", rows[2])
	}
}

func TestParseSymbolAddrs(t *testing.T) {
	in := `// a comment line
func_80000000 = 0x80000000; // type:func size:0x40
jtbl_80010000 = 0x80010000; // type:jtbl

unsized = 0x80020000;
`
	rows, err := ParseSymbolAddrs(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Name != "func_80000000" || rows[0].Vram != 0x80000000 || rows[0].Size != 0x40 || rows[0].Kind != symbols.KindFunction {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Kind != symbols.KindJumpTable {
		t.Errorf("unexpected second row kind: %v", rows[1].Kind)
	}
	if rows[2].Name != "unsized" || rows[2].Size != 0 {
		t.Errorf("unexpected third row: %+v", rows[2])
	}
}
