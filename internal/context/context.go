// Package context implements the Context and Segment types from spec §3/
// §4.1: the global, keyed store of every known symbol, partitioned into
// overlay segments addressed by (category, vrom-range, vram-range).
package context

import (
	"fmt"
	"sort"

	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/config"
	"github.com/Decompollaborate/spimdisasm/internal/symbols"
)

const globalSegmentName = "global"

// overlaySet keys an overlay segment by (category, vrom-start), since two
// overlays in the same category never overlap in vrom even when they share
// a vram range (spec §3 glossary "overlay").
type overlaySet struct {
	seg     *Segment
	symbols map[address.Vram]*symbols.Symbol
}

// Context is the single mutable shared resource described in spec §5: the
// global symbol store. Any concurrent caller must serialize writes to it;
// this implementation assumes the single-threaded, ordered pipeline of §5
// and does no internal locking.
type Context struct {
	cfg *config.GlobalConfig

	global        *Segment
	globalSymbols map[address.Vram]*symbols.Symbol

	overlays map[Category][]*overlaySet
}

// New creates a Context over the given global segment bounds.
func New(cfg *config.GlobalConfig, globalVrom, globalVram address.Range) *Context {
	return &Context{
		cfg:           cfg,
		global:        newSegment(globalSegmentName, GlobalCategory, globalVrom, globalVram),
		globalSymbols: make(map[address.Vram]*symbols.Symbol),
		overlays:      make(map[Category][]*overlaySet),
	}
}

// AddOverlaySegment registers a new overlay segment under category.
func (c *Context) AddOverlaySegment(name string, category Category, vrom, vram address.Range) *Segment {
	seg := newSegment(name, category, vrom, vram)
	c.overlays[category] = append(c.overlays[category], &overlaySet{seg: seg, symbols: make(map[address.Vram]*symbols.Symbol)})
	return seg
}

func (c *Context) findOverlay(category Category, vrom address.Vrom) *overlaySet {
	for _, ov := range c.overlays[category] {
		if uint32(vrom) >= ov.seg.Vrom.Start && uint32(vrom) < ov.seg.Vrom.End {
			return ov
		}
	}
	return nil
}

// GlobalSegment returns the distinguished global segment.
func (c *Context) GlobalSegment() *Segment {
	return c.global
}

// AddSymbol creates (or returns the existing) symbol at vram within the
// segment identified by category/vrom, attaching it to the Context. If
// vram lies inside an already-defined symbol of the same segment, the
// existing symbol is split and a pad child is generated for the trailing
// bytes (spec §3 "Lifecycles").
func (c *Context) AddSymbol(category Category, vrom address.Vrom, vram address.Vram, section symbols.SectionType) (*symbols.Symbol, error) {
	if c.cfg.IsBanned(uint32(vram)) {
		return nil, fmt.Errorf("address %s is banned", vram)
	}

	bucket, ok := c.bucketFor(category, vrom, vram)
	if !ok {
		return nil, fmt.Errorf("address %s (vrom %s) is not mapped by any segment", vram, vrom)
	}

	if existing, ok := bucket[vram]; ok {
		return existing, nil
	}

	// Containment check: does vram fall strictly inside an existing symbol?
	if owner := c.findOwnerLocked(bucket, vram); owner != nil {
		return c.splitSymbol(bucket, owner, vram, section)
	}

	sym := symbols.New(vram, vrom, section)
	bucket[vram] = sym
	return sym, nil
}

// bucketFor resolves which symbol map a (category, vrom, vram) triple
// belongs to: global segment first, then the caller's overlay (spec §4.1).
func (c *Context) bucketFor(category Category, vrom address.Vrom, vram address.Vram) (map[address.Vram]*symbols.Symbol, bool) {
	if c.global.ContainsVram(vram) {
		return c.globalSymbols, true
	}
	ov := c.findOverlay(category, vrom)
	if ov == nil || !ov.seg.ContainsVram(vram) {
		return nil, false
	}
	return ov.symbols, true
}

func (c *Context) findOwnerLocked(bucket map[address.Vram]*symbols.Symbol, vram address.Vram) *symbols.Symbol {
	var best *symbols.Symbol
	for _, sym := range bucket {
		if sym.Vram >= vram {
			continue
		}
		size := sym.GetSize()
		if size == 0 {
			continue
		}
		if uint32(vram) < uint32(sym.Vram)+size {
			if best == nil || sym.Vram > best.Vram {
				best = sym
			}
		}
	}
	return best
}

// splitSymbol generates a pad symbol for the trailing bytes of owner once a
// new symbol is discovered strictly inside it (spec §3 "Lifecycles").
func (c *Context) splitSymbol(bucket map[address.Vram]*symbols.Symbol, owner *symbols.Symbol, vram address.Vram, section symbols.SectionType) (*symbols.Symbol, error) {
	oldEnd := uint32(owner.Vram) + owner.GetSize()
	owner.AutodetectedSize = uint32(vram) - uint32(owner.Vram)

	sym := symbols.New(vram, owner.Vrom+address.Vrom(uint32(vram)-uint32(owner.Vram)), section)
	sym.IsAutogenerated = true
	sym.AutodetectedSize = oldEnd - uint32(vram)
	bucket[vram] = sym
	return sym, nil
}

// GetSymbol looks up the symbol at exactly vram, or (if tryAddend is set) the
// largest symbol whose [vram, vram+size) contains the target, returning the
// resulting addend. The addend must fit a signed 16-bit quantity, with the
// overflow window described in spec §4.1.
func (c *Context) GetSymbol(category Category, vrom address.Vrom, target address.Vram, tryAddend bool) (*symbols.Symbol, int32, bool) {
	bucket, ok := c.bucketFor(category, vrom, target)
	if !ok {
		return nil, 0, false
	}
	if sym, ok := bucket[target]; ok {
		return sym, 0, true
	}
	if !tryAddend {
		return nil, 0, false
	}

	const windowLimit = 0x8000 + 0x7FFF // overflow-adjustment window, spec §3 invariant
	var best *symbols.Symbol
	for _, sym := range bucket {
		if sym.Vram > target {
			continue
		}
		size := sym.GetSize()
		limit := size
		if limit == 0 || limit > windowLimit {
			limit = windowLimit
		}
		if uint32(target) >= uint32(sym.Vram)+limit {
			continue
		}
		if best == nil || sym.Vram > best.Vram {
			best = sym
		}
	}
	if best == nil {
		return nil, 0, false
	}
	addend := int64(target) - int64(best.Vram)
	if addend < -0x8000 || addend > 0x7FFF+0x10 {
		// Outside even the documented overflow window: refuse the addend
		// guess rather than synthesize a nonsensical reference.
		return nil, 0, false
	}
	return best, int32(addend), true
}

// BanAddress adds a banned range; existing symbols are left intact (bans
// only prevent *future* creation), matching spec §4.1.
func (c *Context) BanAddress(r address.Range) {
	c.cfg.BannedRanges = append(c.cfg.BannedRanges, config.BannedRange{Start: r.Start, End: r.End})
}

// IterByVram returns every symbol of the global segment plus, when category
// is non-empty, its overlays, in ascending vram order (spec §4.1).
func (c *Context) IterByVram(category Category) []*symbols.Symbol {
	out := make([]*symbols.Symbol, 0, len(c.globalSymbols))
	for _, sym := range c.globalSymbols {
		out = append(out, sym)
	}
	if category != "" {
		for _, ov := range c.overlays[category] {
			for _, sym := range ov.symbols {
				out = append(out, sym)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Vram < out[j].Vram })
	return out
}
