package section

import (
	"encoding/binary"
	"testing"

	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/config"
	"github.com/Decompollaborate/spimdisasm/internal/context"
	"github.com/Decompollaborate/spimdisasm/internal/symbols"
)

func newTestContext() *context.Context {
	cfg := config.Default()
	return context.New(cfg, address.Range{Start: 0, End: 0x01000000}, address.Range{Start: 0x80000000, End: 0x80100000})
}

func TestAnalyzeDataLikeInSectionPointers(t *testing.T) {
	ctx := newTestContext()
	cfg := config.Default()

	// A 4-word rodata pointer table where entry 0 points at entry 2.
	base := address.Vram(0x80010000)
	words := []uint32{0x80010008, 0x11111111, 0x22222222, 0x33333333}

	syms, err := AnalyzeDataLike(ctx, context.GlobalCategory, cfg, base, 0x10000, words, symbols.SectionRodata, binary.BigEndian)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, s := range syms {
		if s.Vram == 0x80010008 {
			found = true
			if s.ReferenceCounter != 1 {
				t.Errorf("expected 1 reference on the pointed-to symbol, got %d", s.ReferenceCounter)
			}
		}
	}
	if !found {
		t.Errorf("expected an autogenerated symbol at 0x80010008 from the in-section pointer")
	}
}

func TestAnalyzeDataLikeGuessesStringAndFloat(t *testing.T) {
	ctx := newTestContext()
	cfg := config.Default()

	// Two back-to-back rodata symbols: a NUL-terminated string padded to a
	// word boundary, then a plausible float32 literal. AnalyzeDataLike only
	// discovers a new symbol boundary via an in-section pointer or a
	// forward reference, so the second symbol is pre-registered here the
	// way the text analyzer's on-demand rodata forward-declaration would.
	base := address.Vram(0x80010100)
	words := []uint32{
		0x68690000, // "hi\0\0"
		0x40490FDB, // ~3.14159f, no zero bytes so it can't also pass as a string
	}

	if _, err := ctx.AddSymbol(context.GlobalCategory, 0x10104, base+4, symbols.SectionRodata); err != nil {
		t.Fatalf("unexpected error pre-registering the second symbol: %v", err)
	}

	syms, err := AnalyzeDataLike(ctx, context.GlobalCategory, cfg, base, 0x10100, words, symbols.SectionRodata, binary.BigEndian)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(syms) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(syms))
	}
	if syms[0].AutodetectedType != symbols.KindAsciz {
		t.Errorf("expected the first symbol to be guessed as a string, got %s", syms[0].AutodetectedType)
	}
	if syms[1].AutodetectedType != symbols.KindFloat32 {
		t.Errorf("expected the second symbol to be guessed as a float32, got %s", syms[1].AutodetectedType)
	}
}

func TestAnalyzeDataLikeSkipsUserTypedSymbols(t *testing.T) {
	ctx := newTestContext()
	cfg := config.Default()

	base := address.Vram(0x80010200)
	words := []uint32{0x68690000}

	sym, err := ctx.AddSymbol(context.GlobalCategory, 0x10200, base, symbols.SectionRodata)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym.SetUserType(symbols.KindWord)
	sym.SetUserSize(4)

	syms, err := AnalyzeDataLike(ctx, context.GlobalCategory, cfg, base, 0x10200, words, symbols.SectionRodata, binary.BigEndian)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(syms) != 1 {
		t.Fatalf("expected 1 symbol, got %d", len(syms))
	}
	if syms[0].AutodetectedType != symbols.KindNone {
		t.Errorf("expected a user-typed symbol to be left untouched by the guessers, got %s", syms[0].AutodetectedType)
	}
}

func TestAnalyzeBssPadding(t *testing.T) {
	ctx := newTestContext()

	bssRange := address.Range{Start: 0x80020000, End: 0x80020020}
	declaredSizes := map[address.Vram]uint32{0x80020000: 0x10}

	syms, err := AnalyzeBss(ctx, context.GlobalCategory, 0, bssRange, nil, declaredSizes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(syms) != 2 {
		t.Fatalf("expected a declared symbol plus one pad, got %d", len(syms))
	}
	if syms[0].GetSize() != 0x10 {
		t.Errorf("expected declared size 0x10, got 0x%x", syms[0].GetSize())
	}
	pad := syms[1]
	if !pad.IsAutogeneratedPad {
		t.Errorf("expected the trailing symbol to be an autogenerated pad")
	}
	if pad.Vram != 0x80020010 || pad.GetSize() != 0x10 {
		t.Errorf("unexpected pad: vram=%s size=0x%x", pad.Vram, pad.GetSize())
	}
}
