package analyzer

import "github.com/Decompollaborate/spimdisasm/internal/address"

// MaxSignedLoImmediate and MinSignedLoImmediate bound the ordinary %lo
// addend window (spec §3 invariant: addend in [-0x8000, 0x7FFF]).
const (
	MinSignedLoImmediate = -0x8000
	MaxSignedLoImmediate = 0x7FFF
)

// modernGasOverflowWindow is the extra slack tolerated for assemblers that
// emit addends slightly outside the signed-16-bit band (spec §3 invariant
// note, §9 open question: "the precise threshold may vary by assembler
// version and is not part of this spec" -- kept as a small, named
// constant rather than baked into call sites so the policy is visible and
// adjustable in one place).
const modernGasOverflowWindow = 0x10

// NormalizedRef is the result of spec §4.3 Phase G for a resolved reference
// to (symbolVram, addend): the addend, and whether it needs a compensating
// pair (too large to fit %lo). Normalize and RebaseIntoInnerSymbol build it.
type NormalizedRef struct {
	SymbolVram address.Vram
	Addend     int32
	NeedsCompensation bool
}

// Normalize computes target's addend from symbolVram (symbolSize is not
// consulted), and flags
// whether |addend| exceeds the ordinary window and needs the emitter's
// compensating-pair treatment (spec §7 "addend-overflow").
func Normalize(symbolVram address.Vram, symbolSize uint32, target address.Vram) NormalizedRef {
	addend := int64(target) - int64(symbolVram)
	needsCompensation := addend < MinSignedLoImmediate || addend > MaxSignedLoImmediate

	return NormalizedRef{
		SymbolVram:        symbolVram,
		Addend:            int32(addend),
		NeedsCompensation: needsCompensation,
	}
}

// RebaseIntoInnerSymbol re-targets a reference at an inner symbol once one
// is found strictly between symbolVram and target, per spec §4.3 Phase G
// ("If the addend lands inside another symbol's body ... the reference is
// rebased to that inner symbol with a smaller addend").
func RebaseIntoInnerSymbol(innerVram address.Vram, target address.Vram) NormalizedRef {
	addend := int64(target) - int64(innerVram)
	return NormalizedRef{
		SymbolVram:        innerVram,
		Addend:            int32(addend),
		NeedsCompensation: addend < MinSignedLoImmediate || addend > MaxSignedLoImmediate,
	}
}

// WithinOverflowWindow reports whether an out-of-band addend is still
// within the documented modern-GAS tolerance window, as opposed to being a
// genuine decode error.
func WithinOverflowWindow(addend int32) bool {
	return addend >= MinSignedLoImmediate-modernGasOverflowWindow && addend <= MaxSignedLoImmediate+modernGasOverflowWindow
}
