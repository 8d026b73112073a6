package context

import (
	"fmt"

	"github.com/Decompollaborate/spimdisasm/internal/address"
)

// Category is a user-defined tag distinguishing overlays that share a vram
// range but live at different file offsets (spec §3).
type Category string

// GlobalCategory is the distinguished category of the one global segment.
const GlobalCategory Category = "__global__"

// Segment is a half-open [VromStart, VromEnd) paired with a
// [VramStart, VramEnd), tagged with a category (spec §3).
type Segment struct {
	Name     string
	Category Category
	Vrom     address.Range
	Vram     address.Range
}

// newSegment builds an empty segment descriptor with the given bounds.
func newSegment(name string, category Category, vrom, vram address.Range) *Segment {
	if vrom.End < vrom.Start {
		panic(fmt.Sprintf("segment %q: vromStart > vromEnd", name))
	}
	return &Segment{Name: name, Category: category, Vrom: vrom, Vram: vram}
}

// ContainsVram reports whether addr lies within this segment's vram range.
func (seg *Segment) ContainsVram(addr address.Vram) bool {
	return seg.Vram.Contains(uint32(addr))
}

// VromForVram converts a vram inside this segment to the corresponding vrom
// offset, adapted from the teacher's AddressSpace vram<->file-offset
// translation (address_types.go).
func (seg *Segment) VromForVram(addr address.Vram) address.Vrom {
	delta := uint32(addr) - seg.Vram.Start
	return address.Vrom(seg.Vrom.Start + delta)
}
