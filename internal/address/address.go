// Package address defines the strongly typed address kinds used throughout
// spimdisasm, so that a vram, a vrom offset, and a plain byte count can
// never be silently swapped for one another.
package address

import "fmt"

// Vram is a virtual address as seen by executing code.
type Vram uint32

// Vrom is a byte offset within the raw ROM/file image.
type Vrom uint32

// String renders the address zero-padded to 8 hex digits.
func (v Vram) String() string {
	return fmt.Sprintf("0x%08X", uint32(v))
}

// String renders the offset zero-padded to 8 hex digits.
func (v Vrom) String() string {
	return fmt.Sprintf("0x%08X", uint32(v))
}

// LegacyString renders the address zero-padded to 6 hex digits. No caller
// selects it from the --legacy-sym-addr-zero-padding setting.
func (v Vram) LegacyString() string {
	return fmt.Sprintf("0x%06X", uint32(v))
}

// Range is a half-open [Start, End) interval shared by both vram and vrom
// spans; Len panics if the range is inverted.
type Range struct {
	Start uint32
	End   uint32
}

// Contains reports whether addr lies in [r.Start, r.End).
func (r Range) Contains(addr uint32) bool {
	return addr >= r.Start && addr < r.End
}

// Len returns the size of the range in bytes.
func (r Range) Len() uint32 {
	if r.End < r.Start {
		panic(fmt.Sprintf("inverted range [0x%X, 0x%X)", r.Start, r.End))
	}
	return r.End - r.Start
}

// VramRange and VromRange give Range a typed flavor at the call site.
type VramRange = Range
type VromRange = Range
