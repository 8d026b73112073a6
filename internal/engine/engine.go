// Package engine is the single-threaded orchestration pipeline from spec
// §5: it sequences Configuration -> Context -> instruction-stream analyzer
// -> section analyzers -> migration -> emitter over one input image, the
// way the teacher's own top-level driver sequences
// lex -> parse -> typecheck -> codegen -> emit. There is no concurrency
// here by design (spec §5: "single-threaded, deterministic, ordered
// text->rodata->data->bss").
package engine

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/analyzer"
	"github.com/Decompollaborate/spimdisasm/internal/config"
	"github.com/Decompollaborate/spimdisasm/internal/context"
	"github.com/Decompollaborate/spimdisasm/internal/diag"
	"github.com/Decompollaborate/spimdisasm/internal/emitter"
	"github.com/Decompollaborate/spimdisasm/internal/migration"
	"github.com/Decompollaborate/spimdisasm/internal/mipsinsn"
	"github.com/Decompollaborate/spimdisasm/internal/section"
	"github.com/Decompollaborate/spimdisasm/internal/symbols"
)

// InputSection is one raw section of the image under analysis, as produced
// by either the split-CSV adapter or the ELF adapter (spec §6).
type InputSection struct {
	Name string
	Kind symbols.SectionType
	Vram address.Vram
	Vrom address.Vrom
	Data []byte
}

// DeclaredSymbol is one user-supplied symbol, from CSV or symbol_addrs.txt
// (spec §6), before it becomes a *symbols.Symbol in the Context.
type DeclaredSymbol struct {
	Name string
	Vram address.Vram
	Size uint32
	Kind symbols.Kind
}

// Image is everything one analysis run needs: the raw bytes of every
// section, the segment's vram/vrom extents, and any pre-supplied symbols.
type Image struct {
	VromRange address.Range
	VramRange address.Range
	Sections  []InputSection
	Declared  []DeclaredSymbol
}

// Run executes the full pipeline over img and returns the ordered emission
// plan, the Context it populated, and the per-function/per-jump-table
// analyzer facts Emit needs to render real assembly instead of raw `.word`
// dumps (spec §4/§5). The caller (cmd/spimdisasm) is responsible for
// turning the plan into files.
func Run(cfg *config.GlobalConfig, img Image, rep *diag.Reporter) (*context.Context, []migration.EmitItem, *Artifacts, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := context.New(cfg, img.VromRange, img.VramRange)
	byteOrder := endianOf(cfg)

	for _, decl := range img.Declared {
		sym, err := ctx.AddSymbol(context.GlobalCategory, 0, decl.Vram, symbols.SectionText)
		if err != nil {
			rep.Report(diag.CodeInputRange, "declared symbol %q: %v", decl.Name, err)
			continue
		}
		sym.Name = decl.Name
		sym.IsUserDeclared = true
		if decl.Size != 0 {
			sym.SetUserSize(decl.Size)
		}
		if decl.Kind != symbols.KindNone {
			sym.SetUserType(decl.Kind)
		}
	}

	graph := migration.NewGraph()
	art := newArtifacts()
	var textSyms, rodataSyms []*symbols.Symbol

	sectionsByKind := indexByKind(img.Sections)

	readWord := wordReaderFor(img.Sections, byteOrder)
	isSymbolAt := func(addr address.Vram) bool {
		_, _, ok := ctx.GetSymbol(context.GlobalCategory, 0, addr, false)
		return ok
	}

	for _, sec := range sectionsByKind[symbols.SectionText] {
		syms, err := analyzeText(ctx, cfg, sec, readWord, isSymbolAt, graph, art)
		if err != nil {
			return nil, nil, nil, err
		}
		textSyms = append(textSyms, syms...)
	}

	for _, sec := range sectionsByKind[symbols.SectionRodata] {
		words, err := wordsOf(sec, byteOrder)
		if err != nil {
			rep.Report(diag.CodeSizeMismatch, "%s: %v", sec.Name, err)
			continue
		}
		syms, err := section.AnalyzeDataLike(ctx, context.GlobalCategory, cfg, sec.Vram, sec.Vrom, words, symbols.SectionRodata, byteOrder)
		if err != nil {
			return nil, nil, nil, err
		}
		rodataSyms = append(rodataSyms, syms...)
	}

	for _, sec := range sectionsByKind[symbols.SectionData] {
		words, err := wordsOf(sec, byteOrder)
		if err != nil {
			rep.Report(diag.CodeSizeMismatch, "%s: %v", sec.Name, err)
			continue
		}
		syms, err := section.AnalyzeDataLike(ctx, context.GlobalCategory, cfg, sec.Vram, sec.Vrom, words, symbols.SectionData, byteOrder)
		if err != nil {
			return nil, nil, nil, err
		}
		for _, s := range syms {
			graph.MarkReferencedByDataOrRodata(s.Vram)
		}
	}

	for _, sec := range sectionsByKind[symbols.SectionBss] {
		bssRange := address.Range{Start: uint32(sec.Vram), End: uint32(sec.Vram) + uint32(len(sec.Data))}
		if _, err := section.AnalyzeBss(ctx, context.GlobalCategory, sec.Vrom, bssRange, nil, nil); err != nil {
			return nil, nil, nil, err
		}
	}

	plan := migration.Plan(cfg, textSyms, rodataSyms, graph)
	return ctx, plan, art, nil
}

func endianOf(cfg *config.GlobalConfig) binary.ByteOrder {
	if cfg.Endianness == config.LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func indexByKind(secs []InputSection) map[symbols.SectionType][]InputSection {
	out := make(map[symbols.SectionType][]InputSection)
	for _, s := range secs {
		out[s.Kind] = append(out[s.Kind], s)
	}
	return out
}

func wordsOf(sec InputSection, order binary.ByteOrder) ([]uint32, error) {
	if len(sec.Data)%4 != 0 {
		return nil, fmt.Errorf("section %q length %d is not word-aligned", sec.Name, len(sec.Data))
	}
	words := make([]uint32, len(sec.Data)/4)
	for i := range words {
		words[i] = order.Uint32(sec.Data[i*4:])
	}
	return words, nil
}

// wordReaderFor builds the readWord callback the analyzer needs to resolve
// jump-table entries and %lo targets against any section of the image, not
// just the one currently being analyzed.
func wordReaderFor(secs []InputSection, order binary.ByteOrder) func(address.Vram) (uint32, bool) {
	return func(addr address.Vram) (uint32, bool) {
		for _, sec := range secs {
			end := sec.Vram + address.Vram(len(sec.Data))
			if addr < sec.Vram || addr >= end {
				continue
			}
			off := uint32(addr - sec.Vram)
			if off+4 > uint32(len(sec.Data)) {
				return 0, false
			}
			return order.Uint32(sec.Data[off : off+4]), true
		}
		return 0, false
	}
}

// analyzeText decodes one text section's instruction stream, runs the
// analyzer over every discovered function, materializes function symbols in
// the Context, feeds every resolved hi/lo target into the migration graph
// (spec §4.5: "reference-count based binding"), and records each function's
// FuncAsm/jump tables into art so Emit can render real instructions instead
// of a raw `.word` dump.
func analyzeText(ctx *context.Context, cfg *config.GlobalConfig, sec InputSection, readWord func(address.Vram) (uint32, bool), isSymbolAt func(address.Vram) bool, graph *migration.Graph, art *Artifacts) ([]*symbols.Symbol, error) {
	order := endianOf(cfg)
	if len(sec.Data)%4 != 0 {
		return nil, fmt.Errorf("text section %q length %d is not word-aligned", sec.Name, len(sec.Data))
	}

	insns := make([]mipsinsn.Instruction, len(sec.Data)/4)
	for i := range insns {
		word := order.Uint32(sec.Data[i*4:])
		insns[i] = mipsinsn.Decode(word, sec.Vram+address.Vram(i*4))
	}

	bounds := analyzer.FindFunctionBoundaries(insns, cfg, nil)

	var out []*symbols.Symbol
	for _, fb := range bounds {
		startIdx := int((fb.Start - sec.Vram) / 4)
		endIdx := int((fb.End - sec.Vram) / 4)
		if startIdx < 0 || endIdx > len(insns) || startIdx >= endIdx {
			continue
		}
		fnInsns := insns[startIdx:endIdx]

		fnVrom := sec.Vrom + address.Vrom(uint32(fb.Start-sec.Vram))
		fnSym, err := ctx.AddSymbol(context.GlobalCategory, fnVrom, fb.Start, symbols.SectionText)
		if err != nil {
			return nil, err
		}
		fnSym.AutodetectedType = symbols.KindFunction
		fnSym.AutodetectedSize = uint32(fb.End - fb.Start)
		out = append(out, fnSym)

		result := analyzer.AnalyzeFunction(fb, fnInsns, cfg, readWord, isSymbolAt)
		art.Funcs[fb.Start] = newFuncAsm(fb, fnInsns, result)
		for _, pair := range result.Pairs {
			target, _, ok := ctx.GetSymbol(context.GlobalCategory, 0, pair.Target, true)
			if !ok {
				// Not seen yet: rodata/data sections analyze after text
				// (spec §5 ordering), so the reference is resolved by
				// forward-declaring the symbol now; a rodata/data section's
				// AnalyzeDataLike pass later finds this same symbol already
				// present and fills in its size and guessed type. AnalyzeBss
				// sizes only the symbols at its declared starts, so a
				// forward-declared bss target keeps size 0 (spec
				// §3 "Lifecycles": "created... on-the-fly during analysis
				// when a reference is discovered").
				var err error
				target, err = ctx.AddSymbol(context.GlobalCategory, 0, pair.Target, symbols.SectionRodata)
				if err != nil {
					continue
				}
			}
			target.RecordReference(pair.LoPC, fb.Start, symbols.AccessType{})
			graph.AddReference(fb.Start, target.Vram)
		}
		for _, jt := range result.JumpTables {
			jtVrom := sec.Vrom + address.Vrom(uint32(jt.Base-sec.Vram))
			jtSym, err := ctx.AddSymbol(context.GlobalCategory, jtVrom, jt.Base, symbols.SectionRodata)
			if err == nil {
				jtSym.AutodetectedType = symbols.KindJumpTable
				jtSym.AutodetectedSize = uint32(len(jt.Entries) * 4)
				graph.AddReference(fb.Start, jtSym.Vram)
				art.JumpTables[jtSym.Vram] = jt
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Vram < out[j].Vram })
	return out, nil
}

// Emit writes every item of plan to out using p, one line per instruction/
// literal/label, per spec §4.6. Functions render through emitFunctionBody
// (WriteInstruction/OperandFor against the analyzer's resolved pairs) and
// jump tables render each entry as a reference to its owning function's
// label, falling back to a raw `.word` dump only for a function or jump
// table art has no analyzer facts for (e.g. a purely user-declared symbol
// the text analyzer never walked).
func Emit(p *emitter.Printer, ctx *context.Context, art *Artifacts, plan []migration.EmitItem, sections []InputSection, cfg *config.GlobalConfig) error {
	byteOrder := endianOf(cfg)
	read := wordReaderFor(sections, byteOrder)

	for _, item := range plan {
		switch item.Kind {
		case migration.ItemFunction:
			if item.Function == nil {
				continue
			}
			if err := p.WriteLabel(emitter.LabelFunction, item.Function.GetName()); err != nil {
				return err
			}
			if fa, ok := art.Funcs[item.Function.Vram]; ok {
				if err := emitFunctionBody(p, ctx, fa); err != nil {
					return err
				}
			} else if err := emitWords(p, read, item.Function.Vram, item.Function.GetSize()); err != nil {
				return err
			}
			if err := p.WriteSize(item.Function.GetName(), item.Function.GetSize()); err != nil {
				return err
			}
		case migration.ItemRodata:
			if item.Rodata == nil {
				continue
			}
			kind := emitter.LabelData
			if item.Rodata.IsJumpTable() {
				kind = emitter.LabelJumpTable
			}
			if err := p.WriteLabel(kind, item.Rodata.GetName()); err != nil {
				return err
			}
			if jt, ok := art.JumpTables[item.Rodata.Vram]; ok && item.Rodata.IsJumpTable() {
				if err := emitJumpTableEntries(p, jt, cfg); err != nil {
					return err
				}
			} else if err := emitWords(p, read, item.Rodata.Vram, item.Rodata.GetSize()); err != nil {
				return err
			}
			if err := p.WriteSize(item.Rodata.GetName(), item.Rodata.GetSize()); err != nil {
				return err
			}
		case migration.ItemPadding:
			if err := p.WriteRaw(emitter.WordLine(cfg.AsmIndentation, 0, false)); err != nil {
				return err
			}
		}
	}
	return nil
}

// emitJumpTableEntries prints each of jt's entries as a reference to its
// owning function-internal label (spec §4.3 Phase E / §4.6), rather than the
// raw address a `.word` dump would show.
func emitJumpTableEntries(p *emitter.Printer, jt analyzer.JumpTable, cfg *config.GlobalConfig) error {
	for _, entry := range jt.Entries {
		label := labelName(entry, symbols.KindJumpTableLabel)
		if err := p.WriteRaw(emitter.WordRefLine(cfg.AsmIndentation, label)); err != nil {
			return err
		}
	}
	return nil
}

func emitWords(p *emitter.Printer, read func(address.Vram) (uint32, bool), start address.Vram, size uint32) error {
	for off := uint32(0); off < size; off += 4 {
		word, ok := read(start + address.Vram(off))
		if !ok {
			break
		}
		if err := p.WriteRaw(emitter.WordLine(0, word, false)); err != nil {
			return err
		}
	}
	return nil
}
