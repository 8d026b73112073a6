package emitter

import (
	"fmt"
	"strconv"
	"strings"
)

// WordLine formats one `.word` data line with an optional hex comment
// (spec §4.6: "<indent>.word <value>[ # <hex-comment>]").
func WordLine(indentWidth int, value uint32, withComment bool) string {
	indent := strings.Repeat(" ", indentWidth)
	line := fmt.Sprintf("%s.word 0x%08X", indent, value)
	if withComment {
		line += fmt.Sprintf(" # 0x%08X", value)
	}
	return line
}

// WordRefLine formats a `.word <label>` line referencing a function-internal
// label instead of a raw literal, the jump-table-entry rendering spec §4.3
// Phase E / §4.6 call for ("Table-entry addresses become function-internal
// labels").
func WordRefLine(indentWidth int, label string) string {
	return strings.Repeat(" ", indentWidth) + ".word " + label
}

// AscizLine formats a `.asciz "..."` line, escaping characters Go's %q
// would otherwise render differently from the target assembler's string
// syntax (both use backslash escapes for control bytes and quotes, so %q
// is reused directly here).
func AscizLine(indentWidth int, s string) string {
	return strings.Repeat(" ", indentWidth) + ".asciz " + strconv.Quote(s)
}

// FloatLine formats a `.float` line for a single-precision literal.
func FloatLine(indentWidth int, f float32) string {
	return fmt.Sprintf("%s.float %s", strings.Repeat(" ", indentWidth), formatFloat(float64(f), 32))
}

// DoubleLine formats a `.double` line for a double-precision literal. The
// caller is responsible for having already applied the little-endian
// word-swap via section.DecodeDoubleWords before arriving at a float64
// value (spec §4.6: "doubles ... little-endian: swap 32-bit halves").
func DoubleLine(indentWidth int, f float64) string {
	return fmt.Sprintf("%s.double %s", strings.Repeat(" ", indentWidth), formatFloat(f, 64))
}

func formatFloat(f float64, bitSize int) string {
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
