// Package splat parses three user-supplied input formats: the split CSV
// (one row per section), the symbol CSV, and splat's own symbol_addrs.txt
// symbol-table format. CSV parsing leans on stdlib encoding/csv (both are
// plain CSV, so no ecosystem CSV library adds value);
// symbol_addrs.txt gets a small hand-rolled line scanner, grounded on the
// teacher's own text-processing style in dependencies.go/cli.go (manual
// tokenizing, no parser generator).
package splat

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/symbols"
)

// SplitRow is one row of the split CSV: "offset,vram,type,name" (spec §6).
type SplitRow struct {
	Offset address.Vrom
	Vram   address.Vram
	Type   string // one of text,data,rodata,bss,reloc,dummy
	Name   string
}

// ParseSplitCSV reads the split table described in spec §6: CSV rows
// "offset,vram,type,name".
func ParseSplitCSV(r io.Reader) ([]SplitRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	var rows []SplitRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("split csv: %w", err)
		}

		offset, err := parseHexOrDec(rec[0])
		if err != nil {
			return nil, fmt.Errorf("split csv: bad offset %q: %w", rec[0], err)
		}
		vram, err := parseHexOrDec(rec[1])
		if err != nil {
			return nil, fmt.Errorf("split csv: bad vram %q: %w", rec[1], err)
		}
		rows = append(rows, SplitRow{
			Offset: address.Vrom(offset),
			Vram:   address.Vram(vram),
			Type:   strings.ToLower(strings.TrimSpace(rec[2])),
			Name:   strings.TrimSpace(rec[3]),
		})
	}
	return rows, nil
}

// SymbolRow is one declared symbol read from either input format.
type SymbolRow struct {
	Name string
	Vram address.Vram
	Size uint32 // 0 means unknown, per spec §6 ("0, -, or empty mean unknown")
	Kind symbols.Kind
}

// ParseSymbolCSV reads the symbol CSV format from spec §6:
// "name,vram,size?,type?".
func ParseSymbolCSV(r io.Reader) ([]SymbolRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // size/type columns are optional
	cr.TrimLeadingSpace = true

	var rows []SymbolRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("symbol csv: %w", err)
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("symbol csv: row %v needs at least name,vram", rec)
		}

		vram, err := parseHexOrDec(rec[1])
		if err != nil {
			return nil, fmt.Errorf("symbol csv: bad vram %q: %w", rec[1], err)
		}

		row := SymbolRow{Name: strings.TrimSpace(rec[0]), Vram: address.Vram(vram)}
		if len(rec) >= 3 {
			row.Size = parseOptionalSize(rec[2])
		}
		if len(rec) >= 4 {
			row.Kind = kindFromString(rec[3])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseSymbolAddrs reads splat's symbol_addrs.txt format: one declaration
// per line shaped "name = 0xADDR; // type:T size:S", trailing comment
// optional, blank lines and lines starting with "//" ignored.
func ParseSymbolAddrs(r io.Reader) ([]SymbolRow, error) {
	var rows []SymbolRow
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		row, err := parseSymbolAddrLine(line)
		if err != nil {
			return nil, fmt.Errorf("symbol_addrs.txt:%d: %w", lineNo, err)
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("symbol_addrs.txt: %w", err)
	}
	return rows, nil
}

func parseSymbolAddrLine(line string) (SymbolRow, error) {
	// Split off a trailing "// ..." comment, if any, before the "name = addr;" part.
	code := line
	comment := ""
	if idx := strings.Index(line, "//"); idx >= 0 {
		code = line[:idx]
		comment = line[idx+2:]
	}

	code = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(code), ";"))
	eq := strings.Index(code, "=")
	if eq < 0 {
		return SymbolRow{}, fmt.Errorf("missing '=' in declaration %q", line)
	}
	name := strings.TrimSpace(code[:eq])
	addrStr := strings.TrimSpace(code[eq+1:])
	vram, err := parseHexOrDec(addrStr)
	if err != nil {
		return SymbolRow{}, fmt.Errorf("bad address %q: %w", addrStr, err)
	}

	row := SymbolRow{Name: name, Vram: address.Vram(vram)}
	for _, tok := range strings.Fields(comment) {
		switch {
		case strings.HasPrefix(tok, "type:"):
			row.Kind = kindFromString(strings.TrimPrefix(tok, "type:"))
		case strings.HasPrefix(tok, "size:"):
			row.Size = parseOptionalSize(strings.TrimPrefix(tok, "size:"))
		}
	}
	return row, nil
}

func parseOptionalSize(s string) uint32 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}
	v, err := parseHexOrDec(s)
	if err != nil {
		return 0
	}
	return uint32(v)
}

func parseHexOrDec(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 32)
	}
	return strconv.ParseUint(s, 10, 32)
}

func kindFromString(s string) symbols.Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "func", "function":
		return symbols.KindFunction
	case "jtbl", "jumptable":
		return symbols.KindJumpTable
	case "asciz", "string":
		return symbols.KindAsciz
	case "f32", "float", "float32":
		return symbols.KindFloat32
	case "f64", "double", "float64":
		return symbols.KindFloat64
	case "word":
		return symbols.KindWord
	default:
		return symbols.KindNone
	}
}
