package cli

import (
	"fmt"
	"os"

	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/diag"
	"github.com/Decompollaborate/spimdisasm/internal/elfreader"
	"github.com/Decompollaborate/spimdisasm/internal/engine"
	"github.com/Decompollaborate/spimdisasm/internal/splat"
	"github.com/Decompollaborate/spimdisasm/internal/symbols"
)

// InputSpec names every source file an invocation may supply, matching the
// "Input artifacts" of SPEC_FULL.md §6.
type InputSpec struct {
	ROM         string // raw binary blob
	SplitCSV    string // offset,vram,type,name rows
	SymbolCSV   string // name,vram,size?,type?
	SymbolAddrs string // splat symbol_addrs.txt
	ELF         string // ELF object, mutually exclusive with ROM+SplitCSV
}

// BuildImage turns spec into the engine.Image the core pipeline consumes,
// dispatching to the ELF adapter or the raw-ROM+split-CSV adapter
// (SPEC_FULL.md §2 component 8, "Input adapters").
func BuildImage(spec InputSpec, rep *diag.Reporter) (engine.Image, error) {
	if spec.ELF != "" {
		return buildFromELF(spec, rep)
	}
	return buildFromSplit(spec, rep)
}

func buildFromSplit(spec InputSpec, rep *diag.Reporter) (engine.Image, error) {
	if spec.ROM == "" || spec.SplitCSV == "" {
		return engine.Image{}, inputError(fmt.Errorf("--rom and --splits are both required without --elf"))
	}

	romBytes, err := os.ReadFile(spec.ROM)
	if err != nil {
		return engine.Image{}, inputError(fmt.Errorf("reading ROM: %w", err))
	}

	splitFile, err := os.Open(spec.SplitCSV)
	if err != nil {
		return engine.Image{}, inputError(fmt.Errorf("opening split table: %w", err))
	}
	defer splitFile.Close()

	rows, err := splat.ParseSplitCSV(splitFile)
	if err != nil {
		return engine.Image{}, inputError(err)
	}
	if len(rows) == 0 {
		return engine.Image{}, inputError(fmt.Errorf("split table %q has no rows", spec.SplitCSV))
	}

	img := engine.Image{}
	vromMin, vromMax := ^uint32(0), uint32(0)
	vramMin, vramMax := ^uint32(0), uint32(0)

	for i, row := range rows {
		kind, ok := sectionKindFromSplatType(row.Type)
		if !ok {
			rep.Report(diag.CodeInputRange, "split row %d: unknown section type %q skipped", i, row.Type)
			continue
		}

		end := uint32(len(romBytes))
		if i+1 < len(rows) {
			end = uint32(rows[i+1].Offset)
		}
		start := uint32(row.Offset)
		if start > uint32(len(romBytes)) || end > uint32(len(romBytes)) || start > end {
			rep.Report(diag.CodeInputRange, "split row %d (%s): offsets out of ROM bounds", i, row.Name)
			continue
		}

		data := romBytes[start:end]
		img.Sections = append(img.Sections, engine.InputSection{
			Name: row.Name,
			Kind: kind,
			Vram: row.Vram,
			Vrom: row.Offset,
			Data: data,
		})

		if start < vromMin {
			vromMin = start
		}
		if end > vromMax {
			vromMax = end
		}
		vramStart := uint32(row.Vram)
		vramEnd := vramStart + uint32(len(data))
		if vramStart < vramMin {
			vramMin = vramStart
		}
		if vramEnd > vramMax {
			vramMax = vramEnd
		}
	}

	img.VromRange = address.Range{Start: vromMin, End: vromMax}
	img.VramRange = address.Range{Start: vramMin, End: vramMax}

	declared, err := loadDeclaredSymbols(spec)
	if err != nil {
		return engine.Image{}, err
	}
	img.Declared = declared
	return img, nil
}

func buildFromELF(spec InputSpec, rep *diag.Reporter) (engine.Image, error) {
	res, err := elfreader.Read(spec.ELF, rep)
	if err != nil {
		return engine.Image{}, inputError(err)
	}

	img := engine.Image{}
	vromMin, vromMax := ^uint32(0), uint32(0)
	vramMin, vramMax := ^uint32(0), uint32(0)

	for _, sec := range res.Sections {
		img.Sections = append(img.Sections, engine.InputSection{
			Name: sec.Name,
			Kind: sec.Kind,
			Vram: sec.Vram,
			Vrom: sec.Vrom,
			Data: sec.Data,
		})
		start := uint32(sec.Vrom)
		end := start + uint32(len(sec.Data))
		if start < vromMin {
			vromMin = start
		}
		if end > vromMax {
			vromMax = end
		}
		vramStart := uint32(sec.Vram)
		vramEnd := vramStart + uint32(len(sec.Data))
		if vramStart < vramMin {
			vramMin = vramStart
		}
		if vramEnd > vramMax {
			vramMax = vramEnd
		}
	}
	img.VromRange = address.Range{Start: vromMin, End: vromMax}
	img.VramRange = address.Range{Start: vramMin, End: vramMax}

	for _, sym := range res.Symbols {
		kind := symbols.KindNone
		if sym.IsFunc {
			kind = symbols.KindFunction
		}
		img.Declared = append(img.Declared, engine.DeclaredSymbol{
			Name: sym.Name,
			Vram: sym.Vram,
			Size: sym.Size,
			Kind: kind,
		})
	}

	declared, err := loadDeclaredSymbols(spec)
	if err != nil {
		return engine.Image{}, err
	}
	img.Declared = append(img.Declared, declared...)
	return img, nil
}

func loadDeclaredSymbols(spec InputSpec) ([]engine.DeclaredSymbol, error) {
	var rows []splat.SymbolRow

	if spec.SymbolCSV != "" {
		f, err := os.Open(spec.SymbolCSV)
		if err != nil {
			return nil, inputError(fmt.Errorf("opening symbol CSV: %w", err))
		}
		defer f.Close()
		parsed, err := splat.ParseSymbolCSV(f)
		if err != nil {
			return nil, inputError(err)
		}
		rows = append(rows, parsed...)
	}

	if spec.SymbolAddrs != "" {
		f, err := os.Open(spec.SymbolAddrs)
		if err != nil {
			return nil, inputError(fmt.Errorf("opening symbol_addrs.txt: %w", err))
		}
		defer f.Close()
		parsed, err := splat.ParseSymbolAddrs(f)
		if err != nil {
			return nil, inputError(err)
		}
		rows = append(rows, parsed...)
	}

	out := make([]engine.DeclaredSymbol, len(rows))
	for i, r := range rows {
		out[i] = engine.DeclaredSymbol{Name: r.Name, Vram: r.Vram, Size: r.Size, Kind: r.Kind}
	}
	return out, nil
}

func sectionKindFromSplatType(t string) (symbols.SectionType, bool) {
	switch t {
	case "text":
		return symbols.SectionText, true
	case "data":
		return symbols.SectionData, true
	case "rodata":
		return symbols.SectionRodata, true
	case "bss":
		return symbols.SectionBss, true
	case "reloc":
		return symbols.SectionReloc, true
	case "dummy":
		return symbols.SectionText, false // dummy rows carry no bytes to analyze
	default:
		return symbols.SectionText, false
	}
}
