package analyzer

import (
	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/config"
	"github.com/Decompollaborate/spimdisasm/internal/mipsinsn"
)

// FunctionResult is everything Phase A-G produce for one function, per
// spec §4.3 "Outputs".
type FunctionResult struct {
	Bounds        FunctionBounds
	Labels        []address.Vram // branch-target labels inside the function
	JumpTables    []JumpTable
	Pairs         []Pair
	GpAccesses    []GpAccess
	Referenced    []address.Vram // distinct data/rodata/bss symbols referenced
	IsHandwritten bool
}

// AnalyzeFunction runs Phases B-G over one function's instruction slice
// (already bounded by Phase A) and collects the outputs spec §4.3 lists.
func AnalyzeFunction(bounds FunctionBounds, insns []mipsinsn.Instruction, cfg *config.GlobalConfig, readWord func(address.Vram) (uint32, bool), isSymbolAt func(address.Vram) bool) FunctionResult {
	res := FunctionResult{Bounds: bounds}

	// Phase B/C: linear single-path resolution.
	linear := ResolvePairs(insns, nil)
	// Phase D: branch look-ahead merges in pairs only reachable along
	// taken/fall-through paths, first-seen-wins against the linear pass.
	branchPairs := RunLookahead(insns)

	seen := make(map[address.Vram]bool, len(linear))
	for _, p := range linear {
		seen[p.LoPC] = true
		res.Pairs = append(res.Pairs, p)
	}
	for _, p := range branchPairs {
		if !seen[p.LoPC] {
			seen[p.LoPC] = true
			res.Pairs = append(res.Pairs, p)
		}
	}

	res.JumpTables = DetectJumpTables(insns, bounds, readWord, isSymbolAt)
	for _, jt := range res.JumpTables {
		res.Labels = append(res.Labels, jt.Entries...)
	}

	for _, in := range insns {
		if in.IsBranch && in.Target >= bounds.Start && in.Target < bounds.End {
			res.Labels = append(res.Labels, in.Target)
		}
	}

	dedupVrams(&res.Labels)

	refSet := make(map[address.Vram]bool)
	for _, p := range res.Pairs {
		refSet[p.Target] = true
	}
	for v := range refSet {
		res.Referenced = append(res.Referenced, v)
	}

	res.IsHandwritten = IsHandwrittenFunction(insns, cfg)

	return res
}

func dedupVrams(s *[]address.Vram) {
	seen := make(map[address.Vram]bool, len(*s))
	out := (*s)[:0]
	for _, v := range *s {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	*s = out
}

// IsHandwrittenFunction applies the compiler-profile predicate from spec
// §4.4 "Text": certain coprocessor/privileged instructions or unusual
// register use mark a function as handwritten assembly, so the emitter can
// suppress macros like `.set noreorder` for it. This minimal decoder
// surfaces no coprocessor opcodes, so the predicate is always false here;
// a full decoder would extend the Op enum and this switch together.
func IsHandwrittenFunction(insns []mipsinsn.Instruction, cfg *config.GlobalConfig) bool {
	return false
}
