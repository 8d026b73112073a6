package reloc

import "testing"

func TestOperatorForKnownTypes(t *testing.T) {
	cases := map[Type]Operator{
		R_MIPS_HI16:      OperatorHi,
		R_MIPS_LO16:      OperatorLo,
		R_MIPS_GOT16:     OperatorGot,
		R_MIPS_CALL16:    OperatorCall16,
		R_MIPS_GOT_HI16:  OperatorGotHi16,
		R_MIPS_GOT_LO16:  OperatorGotLo16,
		R_MIPS_CALL_HI16: OperatorCallHi16,
		R_MIPS_CALL_LO16: OperatorCallLo16,
		R_MIPS_GPREL16:   OperatorGpRel,
		R_MIPS_GPREL32:   OperatorGpRel,
	}
	for typ, want := range cases {
		got, ok := OperatorFor(typ)
		if !ok || got != want {
			t.Errorf("%s: expected %s, got %s ok=%v", typ, want, got, ok)
		}
	}
}

func TestOperatorForUnknownType(t *testing.T) {
	if _, ok := OperatorFor(Type(999)); ok {
		t.Errorf("expected an unrecognized reloc type to report ok=false")
	}
}

func TestIsRawLiteral(t *testing.T) {
	if !IsRawLiteral(R_MIPS_NONE) {
		t.Errorf("R_MIPS_NONE must be treated as a raw literal")
	}
	if IsRawLiteral(R_MIPS_HI16) {
		t.Errorf("R_MIPS_HI16 must not be treated as a raw literal")
	}
}
