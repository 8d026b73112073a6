package analyzer

import (
	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/config"
	"github.com/Decompollaborate/spimdisasm/internal/mipsinsn"
)

// FunctionBounds is one discovered function's [Start, End) span, found by
// Phase A (spec §4.3).
type FunctionBounds struct {
	Start address.Vram
	End   address.Vram // exclusive
}

// FindFunctionBoundaries walks instructions linearly and returns every
// function span in the section, per spec §4.3 Phase A:
//
//   - a function begins at the section start and after any confirmed
//     function end;
//   - a confirmed end is `jr $ra` + its delay slot, or an unconditional `j`
//     whose target lies outside the function's known extent (see
//     jIsTailCall), or a user-declared boundary;
//   - leading nops before any instruction belong to inter-function padding,
//     not to the next function;
//   - invalid opcodes are skipped while scanning for a boundary, but
//     terminate a function when found mid-body.
func FindFunctionBoundaries(insns []mipsinsn.Instruction, cfg *config.GlobalConfig, userBoundaries []address.Vram) []FunctionBounds {
	if len(insns) == 0 {
		return nil
	}
	userSet := make(map[address.Vram]bool, len(userBoundaries))
	for _, v := range userBoundaries {
		userSet[v] = true
	}

	var bounds []FunctionBounds
	i := 0
	n := len(insns)

	for i < n {
		// Skip inter-function nop padding and invalid opcodes while
		// scanning for the next function's start.
		for i < n && (insns[i].Op == mipsinsn.OpNOP || insns[i].Op == mipsinsn.OpInvalid || (insns[i].Op == mipsinsn.OpOther && insns[i].Raw == 0)) {
			i++
		}
		if i >= n {
			break
		}
		start := insns[i].Vram
		end, next := scanOneFunction(insns, i, cfg, userSet)
		bounds = append(bounds, FunctionBounds{Start: start, End: end})
		i = next
	}
	return bounds
}

// scanOneFunction advances from index i (the function's first instruction)
// until a confirmed end, returning the function's exclusive end vram and
// the index to resume scanning from.
func scanOneFunction(insns []mipsinsn.Instruction, i int, cfg *config.GlobalConfig, userBoundaries map[address.Vram]bool) (address.Vram, int) {
	n := len(insns)
	funcStart := insns[i].Vram

	for j := i; j < n; j++ {
		in := insns[j]

		// A user-declared boundary at the *next* instruction always wins.
		if j+1 < n && userBoundaries[insns[j+1].Vram] {
			return insns[j+1].Vram, j + 1
		}

		if in.Op == mipsinsn.OpJR && in.IsFunctionEndCandidate {
			// jr $ra plus its delay slot is a confirmed end.
			endIdx := j + 2
			if endIdx > n {
				endIdx = n
			}
			endVram := funcStart
			if endIdx < n {
				endVram = insns[endIdx].Vram
			} else if n > 0 {
				endVram = insns[n-1].Vram + 4
			}
			return endVram, endIdx
		}

		if in.Op == mipsinsn.OpJ && in.IsUnconditionalBranch {
			if jIsTailCall(in, funcStart, insns[i:j+1], cfg) {
				endIdx := j + 2
				if endIdx > n {
					endIdx = n
				}
				endVram := funcStart
				if endIdx < n {
					endVram = insns[endIdx].Vram
				} else if n > 0 {
					endVram = insns[n-1].Vram + 4
				}
				return endVram, endIdx
			}
			// Else: intra-function branch idiom (spec §4.3 Phase D
			// workaround) -- keep scanning this function.
		}

		// Invalid opcode mid-function terminates it (spec §4.3 Phase A).
		if in.Op == mipsinsn.OpInvalid {
			return in.Vram, j
		}
	}

	// Ran off the end of the section: the function's extent is everything
	// remaining.
	if n > 0 {
		return insns[n-1].Vram + 4, n
	}
	return funcStart, n
}

// jIsTailCall reports whether an unconditional `j` is a genuine tail call
// (confirmed function end) as opposed to an intra-function branch (spec
// §4.3 Phase A, Phase D workaround: "j inside a function to a target inside
// the function is treated as a branch, not a tail call"). The same rule
// applies under every compiler profile: cfg is not consulted.
func jIsTailCall(in mipsinsn.Instruction, funcStart address.Vram, seenSoFar []mipsinsn.Instruction, cfg *config.GlobalConfig) bool {
	if len(seenSoFar) == 0 {
		return true
	}
	lastVram := seenSoFar[len(seenSoFar)-1].Vram
	// Target inside [funcStart, lastVram+4] (the portion of the function seen
	// so far, through the j's delay slot) is an intra-function branch, never
	// a tail call.
	if in.Target >= funcStart && in.Target <= lastVram+4 {
		return false
	}
	return true
}
