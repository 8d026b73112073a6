// Package cli implements the CLI front end named in SPEC_FULL.md §2
// component 9 (cmd/spimdisasm): it pins the flag/env/exit-code semantics of
// spec §6 onto an actual binary, giving internal/engine one reference
// caller. The command tree is built with github.com/spf13/cobra and an
// optional config file with github.com/spf13/viper, following the
// retrieval pack's Manu343726-cucaracha repo (cmd/root.go), since the
// teacher itself hand-rolls its flag parsing in cli.go and this module's
// flag surface (spec §6) is large enough to warrant a real flag library.
package cli

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/Decompollaborate/spimdisasm/internal/config"
	"github.com/Decompollaborate/spimdisasm/internal/context"
	"github.com/Decompollaborate/spimdisasm/internal/diag"
	"github.com/Decompollaborate/spimdisasm/internal/emitter"
	"github.com/Decompollaborate/spimdisasm/internal/engine"
	"github.com/Decompollaborate/spimdisasm/internal/migration"
	"github.com/Decompollaborate/spimdisasm/internal/section"
	"github.com/Decompollaborate/spimdisasm/internal/symbols"
	"github.com/Decompollaborate/spimdisasm/internal/watch"
)

// RunConfig is everything one disassembly invocation needs: the resolved
// input spec, the resolved options, and an output directory.
type RunConfig struct {
	Input   InputSpec
	Options Options
	OutDir  string
	Watch   bool
}

// Run executes one (or, under --watch, a repeating) full analysis+emission
// pass and returns a *CodedError-wrapped error on failure, per SPEC_FULL.md
// §6 exit-code semantics. Stdout/stderr are used for progress and
// diagnostics only; all generated assembly goes to files under rc.OutDir.
func Run(rc RunConfig, stderr io.Writer) error {
	if rc.Watch {
		return runWatch(rc, stderr)
	}
	return runOnce(rc, stderr)
}

func runOnce(rc RunConfig, stderr io.Writer) error {
	cfg, err := rc.Options.ToGlobalConfig()
	if err != nil {
		return err
	}

	rep := diag.NewReporter(stderr)
	if cfg.PanicRangeCheck {
		rep.Upgrade(diag.CodeInputRange, diag.LevelFatal)
		rep.Upgrade(diag.CodeSizeMismatch, diag.LevelFatal)
	}

	img, err := BuildImage(rc.Input, rep)
	if err != nil {
		return err
	}

	ctx, plan, art, err := engine.Run(cfg, img, rep)
	if err != nil {
		return analysisFailError(err)
	}
	if rep.HasFatal() {
		return analysisFailError(fmt.Errorf("analysis reported a fatal condition, see diagnostics above"))
	}

	if err := os.MkdirAll(rc.OutDir, 0o755); err != nil {
		return inputError(fmt.Errorf("creating output directory: %w", err))
	}

	if err := writeOutputs(rc.OutDir, ctx, art, plan, img, cfg); err != nil {
		return analysisFailError(err)
	}

	warnCount := 0
	for _, f := range rep.Findings() {
		if f.Level == diag.LevelWarn {
			warnCount++
		}
	}
	if warnCount > 0 {
		fmt.Fprintf(stderr, "%s %d warning(s) emitted\n", color.YellowString("spimdisasm:"), warnCount)
	}
	return nil
}

func runWatch(rc RunConfig, stderr io.Writer) error {
	fmt.Fprintf(stderr, "%s watching for changes (ctrl-c to stop)\n", color.CyanString("spimdisasm:"))

	run := func() {
		if err := runOnce(rc, stderr); err != nil {
			fmt.Fprintf(stderr, "%s %v\n", color.RedString("spimdisasm:"), err)
		} else {
			fmt.Fprintf(stderr, "%s re-disassembled\n", color.GreenString("spimdisasm:"))
		}
	}
	run()

	w, err := watch.New(func(string) { run() })
	if err != nil {
		return analysisFailError(fmt.Errorf("starting watcher: %w", err))
	}
	defer w.Close()

	for _, p := range []string{rc.Input.ROM, rc.Input.SplitCSV, rc.Input.ELF, rc.Input.SymbolCSV, rc.Input.SymbolAddrs} {
		if p == "" {
			continue
		}
		if err := w.AddFile(p); err != nil {
			return analysisFailError(err)
		}
	}
	w.Watch()
	return nil
}

// writeOutputs renders the text (function+migrated-rodata) plan to one
// file and any unmigrated data/bss symbols to their own files, matching
// spec §6 ("Assembly source files, one per section or one per sub-split").
func writeOutputs(outDir string, ctx *context.Context, art *engine.Artifacts, plan []migration.EmitItem, img engine.Image, cfg *config.GlobalConfig) error {
	textPath := filepath.Join(outDir, "text.s")
	if err := writeFile(textPath, func(w io.Writer) error {
		writeHeader(w, "text")
		p := emitter.NewPrinter(w, cfg)
		return engine.Emit(p, ctx, art, plan, img.Sections, cfg)
	}); err != nil {
		return err
	}

	migrated := make(map[uint32]bool, len(plan))
	for _, item := range plan {
		if item.Kind == migration.ItemRodata && item.Rodata != nil {
			migrated[uint32(item.Rodata.Vram)] = true
		}
	}

	dataPath := filepath.Join(outDir, "data.s")
	if err := writeFile(dataPath, func(w io.Writer) error {
		writeHeader(w, "data")
		p := emitter.NewPrinter(w, cfg)
		return emitSymbolsOfKind(p, ctx, img, cfg, symbols.SectionData, nil)
	}); err != nil {
		return err
	}

	rodataPath := filepath.Join(outDir, "rodata.s")
	if err := writeFile(rodataPath, func(w io.Writer) error {
		writeHeader(w, "rodata (unmigrated)")
		p := emitter.NewPrinter(w, cfg)
		return emitSymbolsOfKind(p, ctx, img, cfg, symbols.SectionRodata, migrated)
	}); err != nil {
		return err
	}

	bssPath := filepath.Join(outDir, "bss.s")
	return writeFile(bssPath, func(w io.Writer) error {
		writeHeader(w, "bss")
		p := emitter.NewPrinter(w, cfg)
		return emitBssSymbols(p, ctx)
	})
}

// emitSymbolsOfKind walks every Context symbol of the given section kind
// (skipping anything already present in the migrated set) and prints it
// per its resolved type (spec §4.4/§4.6): a `.asciz`/`.float`/`.double`
// line for anything the string/float guessers in internal/section
// classified, falling back to a labeled `.word` run for everything else
// (words, jump tables, and any symbol the guessers declined).
func emitSymbolsOfKind(p *emitter.Printer, ctx *context.Context, img engine.Image, cfg *config.GlobalConfig, kind symbols.SectionType, skip map[uint32]bool) error {
	read := wordReader(img.Sections, cfg)
	order := byteOrderOf(cfg)

	for _, sym := range ctx.IterByVram("") {
		if sym.SectionType != kind {
			continue
		}
		if skip != nil && skip[uint32(sym.Vram)] {
			continue
		}

		labelKind := emitter.LabelData
		if sym.IsJumpTable() {
			labelKind = emitter.LabelJumpTable
		}
		if err := p.WriteLabel(labelKind, sym.GetName()); err != nil {
			return err
		}

		size := sym.GetSize()
		switch sym.GetType() {
		case symbols.KindAsciz:
			if err := p.WriteRaw(emitter.AscizLine(cfg.AsmIndentation, ascizContent(read, order, uint32(sym.Vram), size))); err != nil {
				return err
			}
		case symbols.KindFloat32:
			word, _ := read(uint32(sym.Vram))
			f, _ := section.GuessFloat32(word)
			if err := p.WriteRaw(emitter.FloatLine(cfg.AsmIndentation, f)); err != nil {
				return err
			}
		case symbols.KindFloat64:
			first, _ := read(uint32(sym.Vram))
			second, _ := read(uint32(sym.Vram) + 4)
			bits := section.DecodeDoubleWords(first, second, cfg.Endianness == config.LittleEndian)
			f, _ := section.GuessFloat64(bits)
			if err := p.WriteRaw(emitter.DoubleLine(cfg.AsmIndentation, f)); err != nil {
				return err
			}
		default:
			for off := uint32(0); off < size; off += 4 {
				word, ok := read(uint32(sym.Vram) + off)
				if !ok {
					break
				}
				if err := p.WriteRaw(emitter.WordLine(cfg.AsmIndentation, word, false)); err != nil {
					return err
				}
			}
		}
		if err := p.WriteSize(sym.GetName(), size); err != nil {
			return err
		}
	}
	return nil
}

// ascizContent reconstructs a string symbol's raw bytes (in the section's
// original byte order) from the word-granular reader, and trims it at the
// first NUL the guesser already confirmed is there.
func ascizContent(read func(uint32) (uint32, bool), order binary.ByteOrder, start, size uint32) string {
	buf := make([]byte, 0, size)
	for off := uint32(0); off < size; off += 4 {
		word, ok := read(start + off)
		if !ok {
			break
		}
		var tmp [4]byte
		order.PutUint32(tmp[:], word)
		buf = append(buf, tmp[:]...)
	}
	if idx := bytes.IndexByte(buf, 0); idx >= 0 {
		buf = buf[:idx]
	}
	return string(buf)
}

// emitBssSymbols prints every bss symbol as a `.space` reservation; bss has
// no backing bytes to read back (spec §4.4 "Bss materializes symbols
// between user-declared boundaries").
func emitBssSymbols(p *emitter.Printer, ctx *context.Context) error {
	for _, sym := range ctx.IterByVram("") {
		if sym.SectionType != symbols.SectionBss {
			continue
		}
		if err := p.WriteLabel(emitter.LabelData, sym.GetName()); err != nil {
			return err
		}
		if err := p.WriteRaw(fmt.Sprintf("    .space 0x%X", sym.GetSize())); err != nil {
			return err
		}
	}
	return nil
}

// byteOrderOf mirrors internal/engine's own endianOf, kept as a small local
// copy since this package only ever needs it to re-serialize already-decoded
// words back into a symbol's original byte order (for string rendering).
func byteOrderOf(cfg *config.GlobalConfig) binary.ByteOrder {
	if cfg.Endianness == config.LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func wordReader(sections []engine.InputSection, cfg *config.GlobalConfig) func(uint32) (uint32, bool) {
	order := func() func([]byte) uint32 {
		if cfg.Endianness == config.LittleEndian {
			return func(b []byte) uint32 {
				return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
			}
		}
		return func(b []byte) uint32 {
			return uint32(b[3]) | uint32(b[2])<<8 | uint32(b[1])<<16 | uint32(b[0])<<24
		}
	}()

	return func(addr uint32) (uint32, bool) {
		for _, sec := range sections {
			start := uint32(sec.Vram)
			end := start + uint32(len(sec.Data))
			if addr < start || addr >= end {
				continue
			}
			off := addr - start
			if off+4 > uint32(len(sec.Data)) {
				return 0, false
			}
			return order(sec.Data[off : off+4]), true
		}
		return 0, false
	}
}

func writeFile(path string, body func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return body(f)
}

func writeHeader(w io.Writer, section string) {
	fmt.Fprintf(w, "# generated by spimdisasm v%s -- section %s\n\n", Version, section)
}
