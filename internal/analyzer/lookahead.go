package analyzer

import (
	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/mipsinsn"
)

// lookaheadDepthCap bounds how many branch forks the look-ahead will follow
// before giving up on a path, per spec §4.3 Phase D "recursion depth cap".
const lookaheadDepthCap = 64

// workItem is one pending (pc, state) to scan, replacing recursion with an
// explicit stack per spec §9's design note ("implement as explicit stack of
// (pc, state) work items, not as recursion").
type workItem struct {
	index int
	state *LatticeState
	depth int
}

// indexByVram builds a vram->index lookup for a function's instruction
// slice, used to follow branch targets that land back inside the function.
func indexByVram(insns []mipsinsn.Instruction) map[address.Vram]int {
	m := make(map[address.Vram]int, len(insns))
	for i, in := range insns {
		m[in.Vram] = i
	}
	return m
}

// RunLookahead performs Phase D: at every conditional branch, fork the
// abstract state and scan forward along both the taken and fall-through
// paths until an unconditional branch, a jr, or the depth cap is reached.
// Pairs discovered on branch paths are merged back on a first-seen-wins
// basis keyed by the lo instruction's pc (spec §4.3 Phase D).
//
// The `lui`-in-delay-slot workaround falls out naturally here: the delay
// slot is stepped against the pre-fork state before the fork happens, so a
// `lui` placed there is visible to both the taken and fall-through
// continuations exactly as if it preceded the branch.
func RunLookahead(insns []mipsinsn.Instruction) []Pair {
	byVram := indexByVram(insns)
	seen := make(map[address.Vram]bool) // keyed by lo-instruction pc
	var merged []Pair

	visitedAt := make(map[int]bool)
	stack := []workItem{{index: 0, state: NewLatticeState(), depth: 0}}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if item.depth > lookaheadDepthCap || item.index >= len(insns) || visitedAt[item.index] {
			continue
		}
		visitedAt[item.index] = true

		ls := item.state
		ps := &pairState{}
		i := item.index

		for i < len(insns) {
			in := insns[i]
			stepPair(ps, ls, in)

			if in.IsBranch && !in.IsUnconditionalBranch {
				delaySlotIdx := i + 1
				fallState := ls.Clone()
				takenState := ls.Clone()
				if delaySlotIdx < len(insns) {
					delayIn := insns[delaySlotIdx]
					stepPair(ps, fallState, delayIn)
					stepPair(ps, takenState, delayIn)
				}

				fallIdx := delaySlotIdx + 1
				stack = append(stack, workItem{index: fallIdx, state: fallState, depth: item.depth + 1})
				if takenIdx, ok := byVram[in.Target]; ok {
					stack = append(stack, workItem{index: takenIdx, state: takenState, depth: item.depth + 1})
				}
				break
			}

			if in.IsUnconditionalBranch || in.Op == mipsinsn.OpJR {
				break
			}
			i++
		}

		for _, p := range ps.pairs {
			if !seen[p.LoPC] {
				seen[p.LoPC] = true
				merged = append(merged, p)
			}
		}
	}

	return merged
}
