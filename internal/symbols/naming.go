package symbols

import "fmt"

// prefixFor returns the default autogeneration prefix for a symbol's kind
// and section, per the table in spec §4.2.
func prefixFor(s *Symbol) string {
	switch s.GetType() {
	case KindFunction:
		return "func_"
	case KindJumpTable:
		return "jtbl_"
	case KindJumpTableLabel, KindBranchLabel:
		return ".L"
	case KindAsciz:
		return "STR_"
	case KindFloat32:
		return "FLT_"
	case KindFloat64:
		return "DBL_"
	case KindGccExceptTable:
		return "ehtbl_"
	case KindGccExceptTableLabel:
		return "$LEH_"
	}
	switch s.SectionType {
	case SectionRodata:
		return "RO_"
	case SectionBss:
		return "B_"
	case SectionData:
		return "D_"
	}
	return "SYM_"
}

// AutoName deterministically generates a name for a symbol that has no
// user/previously-assigned name: <prefix><8-hex-digit-address>. It appends
// no suffix.
func AutoName(s *Symbol) string {
	prefix := prefixFor(s)
	addr := fmt.Sprintf("%08X", uint32(s.Vram))
	return prefix + addr
}

// AutoNameLegacy is the 6-hex-digit legacy variant of AutoName. GetName
// never selects it; the --legacy-sym-addr-zero-padding setting does not
// reach it.
func AutoNameLegacy(s *Symbol) string {
	prefix := prefixFor(s)
	addr := fmt.Sprintf("%06X", uint32(s.Vram)&0xFFFFFF)
	return prefix + addr
}

// WithSuffix appends a custom suffix to a name. GetName does not call it,
// so the --custom-suffix setting never reaches autogenerated names.
func WithSuffix(name, suffix string) string {
	if suffix == "" {
		return name
	}
	return name + "_" + suffix
}
