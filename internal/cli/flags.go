package cli

import (
	"fmt"
	"strings"

	"github.com/Decompollaborate/spimdisasm/internal/config"
)

// Options is the flat set of CLI-visible knobs from SPEC_FULL.md §6, before
// they are folded onto a config.GlobalConfig. Every field here corresponds
// to one named flag; cobra/viper populate this struct, and ToGlobalConfig
// below is the single place that turns it into the engine's config record
// (spec §9: "an explicit configuration record threaded into the analyzer
// and emitter; avoid process-global mutable state").
type Options struct {
	Endianness string
	ABI        string
	Category   string
	Profile    string

	RodataStringGuesser int
	DataStringGuesser   int
	PascalStringGuesser int

	CustomSuffix               string
	SequentialLabelNames       bool
	NameVarsByType             bool
	NameVarsByFile             bool
	NameVarsBySection          bool
	LegacySymAddrZeroPadding   bool
	DetectRedundantFunctionEnd bool

	AsmEmitSizeDirective bool
	NoEmitCpload         bool
	AsmIndentation       int
	AsmIndentationLabels int
	GpRelHack            bool

	PanicRangeCheck bool
}

// DefaultOptions mirrors config.Default() at the flag layer, so cobra's
// flag defaults and the code defaults never drift apart.
func DefaultOptions() Options {
	d := config.Default()
	return Options{
		Endianness:                 "big",
		ABI:                        "o32",
		Category:                   "cpu",
		Profile:                    "ido",
		RodataStringGuesser:        d.RodataStringGuesserLevel,
		DataStringGuesser:          d.DataStringGuesserLevel,
		PascalStringGuesser:        d.PascalStringGuesserLevel,
		DetectRedundantFunctionEnd: d.DetectRedundantFunctionEnd,
		AsmEmitSizeDirective:       d.AsmEmitSizeDirective,
		AsmIndentation:             d.AsmIndentation,
		AsmIndentationLabels:       d.AsmIndentationLabels,
	}
}

// ToGlobalConfig resolves o onto a fresh config.GlobalConfig, applying the
// environment-override layer first and letting o (the CLI layer) win,
// exactly the "CLI overrides environment overrides code defaults"
// precedence of spec §6.
func (o Options) ToGlobalConfig() (*config.GlobalConfig, error) {
	cfg := config.LoadFromEnvironment(config.Default())

	var err error
	if cfg.Endianness, err = parseEndianness(o.Endianness); err != nil {
		return nil, usageError(err)
	}
	if cfg.ABI, err = parseABI(o.ABI); err != nil {
		return nil, usageError(err)
	}
	if cfg.Category, err = parseCategory(o.Category); err != nil {
		return nil, usageError(err)
	}
	if cfg.Profile, err = parseProfile(o.Profile); err != nil {
		return nil, usageError(err)
	}

	cfg.RodataStringGuesserLevel = o.RodataStringGuesser
	cfg.DataStringGuesserLevel = o.DataStringGuesser
	cfg.PascalStringGuesserLevel = o.PascalStringGuesser
	cfg.CustomSuffix = o.CustomSuffix
	cfg.SequentialLabelNames = o.SequentialLabelNames
	cfg.NameVarsByType = o.NameVarsByType
	cfg.NameVarsByFile = o.NameVarsByFile
	cfg.NameVarsBySection = o.NameVarsBySection
	cfg.LegacySymAddrZeroPadding = o.LegacySymAddrZeroPadding
	cfg.DetectRedundantFunctionEnd = o.DetectRedundantFunctionEnd
	cfg.AsmEmitSizeDirective = o.AsmEmitSizeDirective
	cfg.NoEmitCpload = o.NoEmitCpload
	cfg.AsmIndentation = o.AsmIndentation
	cfg.AsmIndentationLabels = o.AsmIndentationLabels
	cfg.GpRelHack = o.GpRelHack
	cfg.PanicRangeCheck = o.PanicRangeCheck

	if err := cfg.Validate(); err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

func parseEndianness(s string) (config.Endianness, error) {
	switch strings.ToLower(s) {
	case "big", "be", "":
		return config.BigEndian, nil
	case "little", "le":
		return config.LittleEndian, nil
	default:
		return 0, fmt.Errorf("unknown endianness %q (want big|little)", s)
	}
}

func parseABI(s string) (config.ABI, error) {
	switch strings.ToLower(s) {
	case "o32", "":
		return config.ABI_O32, nil
	case "n32":
		return config.ABI_N32, nil
	case "n64":
		return config.ABI_N64, nil
	default:
		return 0, fmt.Errorf("unknown ABI %q (want o32|n32|n64)", s)
	}
}

func parseCategory(s string) (config.InstrCategory, error) {
	switch strings.ToLower(s) {
	case "cpu", "":
		return config.CategoryCPU, nil
	case "rsp":
		return config.CategoryRSP, nil
	case "r3000gte":
		return config.CategoryR3000GTE, nil
	case "r4000allegrex":
		return config.CategoryR4000ALLEGREX, nil
	case "r5900ee":
		return config.CategoryR5900EE, nil
	default:
		return 0, fmt.Errorf("unknown instruction category %q", s)
	}
}

func parseProfile(s string) (config.CompilerProfile, error) {
	switch strings.ToLower(s) {
	case "ido", "":
		return config.ProfileIDO, nil
	case "gcc":
		return config.ProfileGCC, nil
	case "sn":
		return config.ProfileSN, nil
	case "psyq":
		return config.ProfilePSYQ, nil
	case "modern-gas", "moderngas":
		return config.ProfileModernGAS, nil
	default:
		return 0, fmt.Errorf("unknown compiler profile %q", s)
	}
}
