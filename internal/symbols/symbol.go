// Package symbols implements ContextSymbol, the per-address record
// described in spec §3/§4.2. Its Kind enum follows the same "small tagged
// struct with a Kind field" shape as the teacher's Vibe67Type (types.go),
// repurposed from the source language's type system to a symbol's
// declared/inferred assembly type.
package symbols

import (
	"fmt"
	"strings"

	"github.com/Decompollaborate/spimdisasm/internal/address"
)

// Kind is the declared or autodetected type of a symbol's contents.
type Kind int

const (
	KindNone Kind = iota
	KindFunction
	KindJumpTable
	KindJumpTableLabel
	KindBranchLabel
	KindAsciz
	KindFloat32
	KindFloat64
	KindWord
	KindGccExceptTable
	KindGccExceptTableLabel
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "func"
	case KindJumpTable:
		return "jtbl"
	case KindJumpTableLabel:
		return "jlabel"
	case KindBranchLabel:
		return "label"
	case KindAsciz:
		return "asciz"
	case KindFloat32:
		return "f32"
	case KindFloat64:
		return "f64"
	case KindWord:
		return "word"
	case KindGccExceptTable:
		return "@gccexcepttable"
	case KindGccExceptTableLabel:
		return "gccexcepttable_label"
	default:
		return "none"
	}
}

// SectionType is the owning section kind, mirroring spec §3.
type SectionType int

const (
	SectionText SectionType = iota
	SectionData
	SectionRodata
	SectionBss
	SectionReloc
	SectionGccExceptTable
)

// Visibility mirrors global/local/weak ELF-style binding.
type Visibility int

const (
	VisibilityGlobal Visibility = iota
	VisibilityLocal
	VisibilityWeak
)

// AccessType records one (width, signedness) observation from an
// instruction that referenced this symbol.
type AccessType struct {
	WidthBytes int
	Signed     bool
	IsFloat    bool
}

// Reference records who (by vram) read or wrote this symbol.
type Reference struct {
	FromVram address.Vram
	IsWrite  bool
}

// Symbol is the per-address record from spec §3/§4.2.
type Symbol struct {
	Vram address.Vram
	Vrom address.Vrom

	Name    string
	NameEnd string

	UserDeclaredType Kind
	AutodetectedType Kind
	UserDeclaredSize uint32
	AutodetectedSize uint32
	hasUserSize      bool
	hasUserType      bool

	AccessTypes        []AccessType
	ReferenceCounter   int
	ReferenceFunctions map[address.Vram]bool
	ReferenceSymbols   map[address.Vram]bool

	IsDefined          bool
	IsUserDeclared     bool
	IsAutogenerated    bool
	IsAutogeneratedPad bool

	Visibility  Visibility
	SectionType SectionType

	AllowedToReferenceSymbols bool
	AllowedToBeReferenced     bool

	GotIndex int // -1 when not in the GOT
	IsGpRel  bool

	FunctionOwnerForMigration address.Vram
	hasMigrationOwner         bool
}

// New creates a fresh, not-yet-defined symbol at the given address.
func New(vram address.Vram, vrom address.Vrom, section SectionType) *Symbol {
	return &Symbol{
		Vram:                      vram,
		Vrom:                      vrom,
		SectionType:               section,
		ReferenceFunctions:        make(map[address.Vram]bool),
		ReferenceSymbols:          make(map[address.Vram]bool),
		GotIndex:                  -1,
		AllowedToReferenceSymbols: true,
		AllowedToBeReferenced:     true,
		Visibility:                VisibilityGlobal,
	}
}

// SetUserType records a user-declared type (CSV/symbol_addrs), which always
// wins over anything autodetected later.
func (s *Symbol) SetUserType(k Kind) {
	s.UserDeclaredType = k
	s.hasUserType = true
}

// SetUserSize records a user-declared size, which always wins over anything
// autodetected later.
func (s *Symbol) SetUserSize(size uint32) {
	s.UserDeclaredSize = size
	s.hasUserSize = true
}

// SetMigrationOwner records an explicit rodata->function migration binding.
func (s *Symbol) SetMigrationOwner(fn address.Vram) {
	s.FunctionOwnerForMigration = fn
	s.hasMigrationOwner = true
}

// HasMigrationOwner reports whether an explicit migration override exists.
func (s *Symbol) HasMigrationOwner() bool {
	return s.hasMigrationOwner
}

// HasUserType reports whether a user-declared type (CSV/symbol_addrs) was
// ever set, so callers like the string/float guessers (spec §4.4) can tell a
// genuine absence of type information from a user override they must not
// second-guess.
func (s *Symbol) HasUserType() bool {
	return s.hasUserType
}

// GetType returns UserDeclaredType if present, else AutodetectedType, else
// a section-kind fallback (spec §4.2).
func (s *Symbol) GetType() Kind {
	if s.hasUserType {
		return s.UserDeclaredType
	}
	if s.AutodetectedType != KindNone {
		return s.AutodetectedType
	}
	switch s.SectionType {
	case SectionText:
		return KindFunction
	case SectionGccExceptTable:
		return KindGccExceptTable
	default:
		return KindWord
	}
}

// GetSize returns UserDeclaredSize if present, else AutodetectedSize.
func (s *Symbol) GetSize() uint32 {
	if s.hasUserSize {
		return s.UserDeclaredSize
	}
	return s.AutodetectedSize
}

func (s *Symbol) IsString() bool    { return s.GetType() == KindAsciz }
func (s *Symbol) IsJumpTable() bool { return s.GetType() == KindJumpTable }
func (s *Symbol) IsFunction() bool  { return s.GetType() == KindFunction }

// IsMigratable reports whether this symbol is a candidate for rodata/text
// migration (spec §4.5): it must live in rodata and not be a jump-table
// label or branch label (those migrate implicitly with their owner).
func (s *Symbol) IsMigratable() bool {
	return s.SectionType == SectionRodata &&
		s.GetType() != KindJumpTableLabel &&
		s.GetType() != KindBranchLabel
}

// RecordReference registers that fromVram (inside fromFunc when the
// reference originates in text) read or wrote this symbol, updating the
// access-type multiset and reference bookkeeping from spec §4.2.
func (s *Symbol) RecordReference(fromVram address.Vram, fromFunc address.Vram, access AccessType) {
	s.ReferenceCounter++
	s.AccessTypes = append(s.AccessTypes, access)
	if fromFunc != 0 {
		s.ReferenceFunctions[fromFunc] = true
	}
	s.ReferenceSymbols[fromVram] = true
}

// needsQuoting reports whether name contains a character the assembler
// would choke on unquoted (spec §4.2 special-character guard).
func needsQuoting(name string) bool {
	return strings.ContainsAny(name, "@<\\-+")
}

// QuotedName returns the symbol's name, quoted if it contains a character
// from the special-character guard.
func (s *Symbol) QuotedName() string {
	n := s.GetName()
	if needsQuoting(n) {
		return fmt.Sprintf("%q", n)
	}
	return n
}

// GetName returns the user/autogenerated name, computing the autogenerated
// form deterministically if none was ever set (spec §4.2).
func (s *Symbol) GetName() string {
	if s.Name != "" {
		return s.Name
	}
	return AutoName(s)
}
