// Package section implements the four section analyzers of spec §4.4:
// text, data, rodata, and bss. Rather than a class hierarchy per kind (spec
// §9 design note: "Polymorphism over section kind... use a tagged variant
// with a small capability set; do not model via deep class hierarchies"),
// a single Kind enum and Capabilities lookup describe what each kind
// supports, and data/rodata share one walk implementation.
package section

import (
	"encoding/binary"
	"sort"

	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/config"
	"github.com/Decompollaborate/spimdisasm/internal/context"
	"github.com/Decompollaborate/spimdisasm/internal/symbols"
)

// Kind is which of the four section variants is being analyzed.
type Kind int

const (
	KindText Kind = iota
	KindData
	KindRodata
	KindBss
)

// Capabilities is the small capability set spec §9 asks for in place of a
// class hierarchy.
type Capabilities struct {
	Analyze      bool
	Emit         bool
	GuessStrings bool
	GuessFloats  bool
}

// CapabilitiesFor returns the capability set for a section kind.
func CapabilitiesFor(k Kind) Capabilities {
	switch k {
	case KindText:
		return Capabilities{Analyze: true, Emit: true}
	case KindData, KindRodata:
		return Capabilities{Analyze: true, Emit: true, GuessStrings: true, GuessFloats: true}
	case KindBss:
		return Capabilities{Analyze: true, Emit: true}
	default:
		return Capabilities{}
	}
}

// AnalyzeDataLike implements the shared data/rodata walk skeleton of spec
// §4.4 steps 1-4:
//
//  1. materialize an initial symbol at the section's first vram;
//  2. walk words, registering a reference on an already-known symbol
//     whenever a word's value is its address, and creating a new symbol
//     only when the value is a word-aligned vram inside this section's own
//     span; a pointer into another section creates no symbol;
//  3. split happens implicitly through ctx.AddSymbol, which splits an
//     owning symbol when a new one is discovered strictly inside it;
//  4. assign autodetectedSize from next-symbol distance.
//
// Once every symbol's size is known, each symbol that still carries no
// user-declared or autodetected type is run through the string, Pascal
// string, and float/double guessers of spec §4.4, in that order, falling
// back to a plain `.word` run only when none of them accept it.
//
// It returns the section's own symbols (not symbols it merely referenced
// elsewhere), in ascending vram order.
func AnalyzeDataLike(ctx *context.Context, cat context.Category, cfg *config.GlobalConfig, baseVram address.Vram, vromStart address.Vrom, words []uint32, sectionType symbols.SectionType, order binary.ByteOrder) ([]*symbols.Symbol, error) {
	if len(words) == 0 {
		return nil, nil
	}

	if _, err := ctx.AddSymbol(cat, vromStart, baseVram, sectionType); err != nil {
		return nil, err
	}

	sectionEnd := baseVram + address.Vram(len(words)*4)

	for i, w := range words {
		vram := baseVram + address.Vram(i*4)
		vrom := vromStart + address.Vrom(i*4)
		target := address.Vram(w)

		if cfg.IsBanned(w) || w == 0 {
			continue
		}

		if sym, _, ok := ctx.GetSymbol(cat, vrom, target, false); ok {
			sym.RecordReference(vram, 0, symbols.AccessType{WidthBytes: 4})
			continue
		}

		// In-section pointer table: a word whose value is itself a vram
		// inside this same section's span is treated as a reference to an
		// as-yet-unseen symbol within it (spec §4.4 step 2). Cross-section
		// pointers are left for that section's own analysis pass or for the
		// text analyzer's on-demand symbol creation.
		if w%4 == 0 && target >= baseVram && target < sectionEnd {
			targetVrom := vromStart + address.Vrom(uint32(target)-uint32(baseVram))
			if sym, err := ctx.AddSymbol(cat, targetVrom, target, sectionType); err == nil {
				sym.RecordReference(vram, 0, symbols.AccessType{WidthBytes: 4})
			}
		}
	}

	secSyms := symbolsWithin(ctx.IterByVram(cat), baseVram, sectionEnd)
	for idx, sym := range secSyms {
		if sym.GetSize() != 0 {
			continue
		}
		var end uint32
		if idx+1 < len(secSyms) {
			end = uint32(secSyms[idx+1].Vram)
		} else {
			end = uint32(sectionEnd)
		}
		sym.AutodetectedSize = end - uint32(sym.Vram)
	}

	raw := wordsToBytes(words, order)
	for _, sym := range secSyms {
		guessType(cfg, sym, sectionType, baseVram, raw)
	}
	return secSyms, nil
}

// wordsToBytes re-serializes words back into the section's original byte
// order, so the string/float guessers can inspect a symbol's raw body
// (spec §4.4) instead of the word-granularity view the pointer walk above
// uses.
func wordsToBytes(words []uint32, order binary.ByteOrder) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		order.PutUint32(out[i*4:], w)
	}
	return out
}

// guessType applies the string, Pascal-string, and float/double guessers of
// spec §4.4 to sym's body, in that priority order, skipping any symbol that
// already carries a user-declared or autodetected type (a user type always
// forecloses guessing; an autodetected type here means an earlier pass, such
// as the in-section pointer walk or the text analyzer's jump-table/hi-lo
// forward declarations, already classified it).
func guessType(cfg *config.GlobalConfig, sym *symbols.Symbol, sectionType symbols.SectionType, baseVram address.Vram, raw []byte) {
	if sym.HasUserType() || sym.AutodetectedType != symbols.KindNone {
		return
	}
	size := sym.GetSize()
	if size == 0 {
		return
	}
	off := uint32(sym.Vram) - uint32(baseVram)
	if off+size > uint32(len(raw)) {
		return
	}
	body := raw[off : off+size]

	stringLevel := cfg.DataStringGuesserLevel
	if sectionType == symbols.SectionRodata {
		stringLevel = cfg.RodataStringGuesserLevel
	}
	cand := Candidate{HasInferredType: false, ReferenceCount: sym.ReferenceCounter, Body: body}

	if _, ok := GuessString(stringLevel, cand); ok {
		sym.AutodetectedType = symbols.KindAsciz
		return
	}
	if _, ok := GuessPascalString(cfg.PascalStringGuesserLevel, cand); ok {
		sym.AutodetectedType = symbols.KindAsciz
		return
	}

	switch size {
	case 4:
		bits := order32(body, cfg)
		if _, ok := GuessFloat32(bits); ok {
			sym.AutodetectedType = symbols.KindFloat32
		}
	case 8:
		first := order32(body[0:4], cfg)
		second := order32(body[4:8], cfg)
		bits := DecodeDoubleWords(first, second, cfg.Endianness == config.LittleEndian)
		if _, ok := GuessFloat64(bits); ok {
			sym.AutodetectedType = symbols.KindFloat64
		}
	}
}

func order32(b []byte, cfg *config.GlobalConfig) uint32 {
	if cfg.Endianness == config.LittleEndian {
		return binary.LittleEndian.Uint32(b)
	}
	return binary.BigEndian.Uint32(b)
}

// AnalyzeBss materializes bss symbols between declared boundaries (spec
// §4.4 "Bss"): unreferenced regions become one symbol per declared split,
// with autogenerated pads where a declared size falls short of the span to
// the next boundary.
func AnalyzeBss(ctx *context.Context, cat context.Category, vrom address.Vrom, bssRange address.Range, declaredStarts []address.Vram, declaredSizes map[address.Vram]uint32) ([]*symbols.Symbol, error) {
	starts := make([]address.Vram, 0, len(declaredStarts)+1)
	starts = append(starts, declaredStarts...)
	if len(starts) == 0 || starts[0] != address.Vram(bssRange.Start) {
		starts = append([]address.Vram{address.Vram(bssRange.Start)}, starts...)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	var out []*symbols.Symbol
	for i, start := range starts {
		sym, err := ctx.AddSymbol(cat, vrom, start, symbols.SectionBss)
		if err != nil {
			return out, err
		}

		var spanEnd uint32
		if i+1 < len(starts) {
			spanEnd = uint32(starts[i+1])
		} else {
			spanEnd = bssRange.End
		}
		span := spanEnd - uint32(start)

		if declSize, ok := declaredSizes[start]; ok && declSize > 0 && declSize < span {
			sym.SetUserSize(declSize)
			padVram := address.Vram(uint32(start) + declSize)
			pad, err := ctx.AddSymbol(cat, vrom, padVram, symbols.SectionBss)
			if err != nil {
				return out, err
			}
			pad.IsAutogenerated = true
			pad.IsAutogeneratedPad = true
			pad.AutodetectedSize = spanEnd - uint32(padVram)
			out = append(out, sym, pad)
			continue
		}

		sym.AutodetectedSize = span
		out = append(out, sym)
	}
	return out, nil
}

func symbolsWithin(all []*symbols.Symbol, start, end address.Vram) []*symbols.Symbol {
	out := make([]*symbols.Symbol, 0, len(all))
	for _, sym := range all {
		if sym.Vram >= start && sym.Vram < end {
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Vram < out[j].Vram })
	return out
}
