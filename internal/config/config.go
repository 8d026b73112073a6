// Package config holds the single, explicit GlobalConfig record threaded
// through the analyzer, section analyzers, migration, and emitter. There is
// intentionally no package-global mutable configuration (spec §9):
// everything is resolved once at startup (Default, then LoadFromEnvironment,
// then the CLI layer in internal/cli) and passed by value/pointer from
// there on.
//
// Resolution order for every setting is CLI > environment > code default,
// per spec §6. Environment overrides are read with
// github.com/xyproto/env/v2, the same module the teacher already declared
// (and, unlike the teacher, actually imports here).
package config

import (
	"fmt"

	env "github.com/xyproto/env/v2"
)

// Endianness is the byte order of the input ROM/ELF.
type Endianness int

const (
	BigEndian Endianness = iota
	LittleEndian
)

// ABI selects the MIPS calling convention / register set in effect.
type ABI int

const (
	ABI_O32 ABI = iota
	ABI_N32
	ABI_N64
)

// InstrCategory is the decoder's instruction set profile.
type InstrCategory int

const (
	CategoryCPU InstrCategory = iota
	CategoryRSP
	CategoryR3000GTE
	CategoryR4000ALLEGREX
	CategoryR5900EE
)

// CompilerProfile selects compiler-specific quirks (§4.3 Phase A j-is-tail-call
// rule, §4.5 late-rodata and single-function-among-many migration, §4.6
// alignment choices).
type CompilerProfile int

const (
	ProfileIDO CompilerProfile = iota
	ProfileGCC
	ProfileSN
	ProfilePSYQ
	ProfileModernGAS
)

func (p CompilerProfile) String() string {
	switch p {
	case ProfileIDO:
		return "ido"
	case ProfileGCC:
		return "gcc"
	case ProfileSN:
		return "sn"
	case ProfilePSYQ:
		return "psyq"
	case ProfileModernGAS:
		return "modern-gas"
	default:
		return "unknown"
	}
}

// StringEncoding is the default character encoding used by the string
// guesser for a given section kind (§4.4).
type StringEncoding int

const (
	EncodingASCII StringEncoding = iota
	EncodingEUCJP
)

// BannedRange is an address range that may never host a symbol (§4.1).
type BannedRange struct {
	Start uint32
	End   uint32 // exclusive
}

// GlobalConfig is the full set of process-wide knobs named across spec §1–9.
type GlobalConfig struct {
	Endianness Endianness
	ABI        ABI
	Category   InstrCategory
	Profile    CompilerProfile

	// String guesser levels (0-4), independently configurable per section
	// per spec §4.4.
	RodataStringGuesserLevel int
	DataStringGuesserLevel   int
	PascalStringGuesserLevel int

	// Naming
	CustomSuffix               string
	SequentialLabelNames       bool
	NameVarsByType             bool
	NameVarsByFile             bool
	NameVarsBySection          bool
	LegacySymAddrZeroPadding   bool
	DetectRedundantFunctionEnd bool

	// Emission
	AsmEmitSizeDirective bool
	NoEmitCpload         bool
	AsmIndentation       int
	AsmIndentationLabels int
	GpRelHack            bool

	// Failure model
	PanicRangeCheck bool

	// Banned address ranges, always includes the defaults from §4.1.
	BannedRanges []BannedRange
}

// Default returns the code-default configuration, before any CLI or
// environment override is applied.
func Default() *GlobalConfig {
	return &GlobalConfig{
		Endianness:                 BigEndian,
		ABI:                        ABI_O32,
		Category:                   CategoryCPU,
		Profile:                    ProfileIDO,
		RodataStringGuesserLevel:   2,
		DataStringGuesserLevel:     1,
		PascalStringGuesserLevel:   0,
		AsmIndentation:             4,
		AsmIndentationLabels:       0,
		DetectRedundantFunctionEnd: true,
		AsmEmitSizeDirective:       true,
		BannedRanges: []BannedRange{
			{Start: 0x0, End: 0x1},
			{Start: 0x7FFFFFFF, End: 0x80000000},
		},
	}
}

// StringEncodingFor returns the default string encoding for section,
// honoring the "EUC-JP for N64 IDO, ASCII elsewhere" rule of §4.4.
func (c *GlobalConfig) StringEncodingFor(sectionIsRodata bool) StringEncoding {
	if sectionIsRodata && c.Profile == ProfileIDO {
		return EncodingEUCJP
	}
	return EncodingASCII
}

// LoadFromEnvironment overlays environment variable values onto cfg for
// every setting that supports an override, per spec §6. CLI flags are
// applied by the caller afterward so they win over the environment.
func LoadFromEnvironment(cfg *GlobalConfig) *GlobalConfig {
	if env.Has("SPIMDISASM_RODATA_STRING_GUESSER") {
		cfg.RodataStringGuesserLevel = env.Int("SPIMDISASM_RODATA_STRING_GUESSER", cfg.RodataStringGuesserLevel)
	}
	if env.Has("SPIMDISASM_DATA_STRING_GUESSER") {
		cfg.DataStringGuesserLevel = env.Int("SPIMDISASM_DATA_STRING_GUESSER", cfg.DataStringGuesserLevel)
	}
	if env.Has("SPIMDISASM_PASCAL_STRING_GUESSER") {
		cfg.PascalStringGuesserLevel = env.Int("SPIMDISASM_PASCAL_STRING_GUESSER", cfg.PascalStringGuesserLevel)
	}
	if env.Has("SPIMDISASM_CUSTOM_SUFFIX") {
		cfg.CustomSuffix = env.Str("SPIMDISASM_CUSTOM_SUFFIX", cfg.CustomSuffix)
	}
	if env.Has("SPIMDISASM_SEQUENTIAL_LABEL_NAMES") {
		cfg.SequentialLabelNames = env.Bool("SPIMDISASM_SEQUENTIAL_LABEL_NAMES")
	}
	if env.Has("SPIMDISASM_NAME_VARS_BY_TYPE") {
		cfg.NameVarsByType = env.Bool("SPIMDISASM_NAME_VARS_BY_TYPE")
	}
	if env.Has("SPIMDISASM_NAME_VARS_BY_FILE") {
		cfg.NameVarsByFile = env.Bool("SPIMDISASM_NAME_VARS_BY_FILE")
	}
	if env.Has("SPIMDISASM_NAME_VARS_BY_SECTION") {
		cfg.NameVarsBySection = env.Bool("SPIMDISASM_NAME_VARS_BY_SECTION")
	}
	if env.Has("SPIMDISASM_LEGACY_SYM_ADDR_ZERO_PADDING") {
		cfg.LegacySymAddrZeroPadding = env.Bool("SPIMDISASM_LEGACY_SYM_ADDR_ZERO_PADDING")
	}
	if env.Has("SPIMDISASM_DETECT_REDUNDANT_FUNCTION_END") {
		cfg.DetectRedundantFunctionEnd = env.Bool("SPIMDISASM_DETECT_REDUNDANT_FUNCTION_END")
	}
	if env.Has("SPIMDISASM_ASM_EMIT_SIZE_DIRECTIVE") {
		cfg.AsmEmitSizeDirective = env.Bool("SPIMDISASM_ASM_EMIT_SIZE_DIRECTIVE")
	}
	if env.Has("SPIMDISASM_NO_EMIT_CPLOAD") {
		cfg.NoEmitCpload = env.Bool("SPIMDISASM_NO_EMIT_CPLOAD")
	}
	if env.Has("SPIMDISASM_ASM_INDENTATION") {
		cfg.AsmIndentation = env.Int("SPIMDISASM_ASM_INDENTATION", cfg.AsmIndentation)
	}
	if env.Has("SPIMDISASM_ASM_INDENTATION_LABELS") {
		cfg.AsmIndentationLabels = env.Int("SPIMDISASM_ASM_INDENTATION_LABELS", cfg.AsmIndentationLabels)
	}
	if env.Has("SPIMDISASM_PANIC_RANGE_CHECK") {
		cfg.PanicRangeCheck = env.Bool("SPIMDISASM_PANIC_RANGE_CHECK")
	}
	return cfg
}

// Validate reports a descriptive error for settings that are structurally
// impossible, rather than letting the analyzer fail confusingly later.
func (c *GlobalConfig) Validate() error {
	for _, lvl := range []int{c.RodataStringGuesserLevel, c.DataStringGuesserLevel, c.PascalStringGuesserLevel} {
		if lvl < 0 || lvl > 4 {
			return fmt.Errorf("string guesser level out of range [0,4]: %d", lvl)
		}
	}
	if c.AsmIndentation < 0 || c.AsmIndentationLabels < 0 {
		return fmt.Errorf("indentation settings must be non-negative")
	}
	return nil
}

// IsBanned reports whether addr falls within any configured banned range.
func (c *GlobalConfig) IsBanned(addr uint32) bool {
	for _, r := range c.BannedRanges {
		if addr >= r.Start && addr < r.End {
			return true
		}
	}
	return false
}
