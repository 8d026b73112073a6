package engine

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/config"
	"github.com/Decompollaborate/spimdisasm/internal/diag"
	"github.com/Decompollaborate/spimdisasm/internal/emitter"
	"github.com/Decompollaborate/spimdisasm/internal/symbols"
)

func wordsBE(words ...uint32) []byte {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		binary.BigEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

// TestRunSimpleTextAndRodata exercises the end-to-end pipeline over a tiny
// synthetic image: one function that jr $ra's immediately, and one rodata
// word the function references via %hi/%lo.
func TestRunSimpleTextAndRodata(t *testing.T) {
	cfg := config.Default()
	cfg.Endianness = config.BigEndian

	text := wordsBE(
		0x3C018001, // lui $at, 0x8001
		0x24212340, // addiu $at, $at, 0x2340 -> pairs to 0x80012340
		0x03E00008, // jr $ra
		0x00000000, // nop (delay slot)
	)
	rodata := wordsBE(0xDEADBEEF)

	img := Image{
		VromRange: address.Range{Start: 0, End: 0x01000000},
		VramRange: address.Range{Start: 0x80000000, End: 0x80100000},
		Sections: []InputSection{
			{Name: ".text", Kind: symbols.SectionText, Vram: 0x80000000, Vrom: 0, Data: text},
			{Name: ".rodata", Kind: symbols.SectionRodata, Vram: 0x80012340, Vrom: 0x12340, Data: rodata},
		},
	}

	rep := diag.NewReporter(nil)
	ctx, plan, art, err := Run(cfg, img, rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx == nil {
		t.Fatalf("expected a non-nil context")
	}
	if len(plan) == 0 {
		t.Fatalf("expected a non-empty emission plan")
	}

	var buf bytes.Buffer
	p := emitter.NewPrinter(&buf, cfg)
	if err := Emit(p, ctx, art, plan, img.Sections, cfg); err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if buf.Len() == 0 {
		t.Errorf("expected non-empty emitted output")
	}
	if !bytes.Contains(buf.Bytes(), []byte("lui $at, %hi")) {
		t.Errorf("expected a real lui/%%hi instruction line, got:\n%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("addiu $at, $at, %lo")) {
		t.Errorf("expected a real addiu/%%lo instruction line, got:\n%s", buf.String())
	}
}
