package emitter

import (
	"fmt"
	"strings"
)

// GpRelLine formats the default %gp_rel emission for an instruction that
// addresses a small-data symbol via $gp (spec §8 scenario S6 default form:
// "lw $v0, %gp_rel(sym)($gp)").
func GpRelLine(indentWidth int, mnemonic, rt, symbol, gpReg string) string {
	return fmt.Sprintf("%s%s $%s, %%gp_rel(%s)($%s)", strings.Repeat(" ", indentWidth), mnemonic, rt, symbol, gpReg)
}

// GpRelHackExpand implements the "gpRelHack" mode of spec §4.6: any
// instruction with a %gp_rel operand is rewritten into the form the
// assembler would pick directly (no $gp-relative addressing left for it to
// resolve), and the emitter must prepend a dummy `.extern sym, size`
// declaration for every referenced %gp_rel symbol. Returns the rewritten
// instruction line and the extern declaration line to prepend ahead of it.
func GpRelHackExpand(indentWidth int, mnemonic, rt, symbol string, size uint32) (instrLine string, externLine string) {
	instrLine = fmt.Sprintf("%s%s $%s, %s", strings.Repeat(" ", indentWidth), mnemonic, rt, symbol)
	externLine = fmt.Sprintf(".extern %s, %d", symbol, size)
	return instrLine, externLine
}
