package section

import (
	"math"
	"testing"
)

// TestDoubleLittleEndianSwap is spec §8 seed scenario S5.
func TestDoubleLittleEndianSwap(t *testing.T) {
	want := 3.14
	bits := math.Float64bits(want)
	hi := uint32(bits >> 32)
	lo := uint32(bits)

	// Little-endian storage reverses the two 32-bit halves in memory; the
	// words as read off disk arrive as (lo, hi) instead of (hi, lo).
	combined := DecodeDoubleWords(lo, hi, true)
	got, ok := GuessFloat64(combined)
	if !ok {
		t.Fatalf("expected a valid double to be accepted")
	}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFloat32RejectsNaNAndDenormal(t *testing.T) {
	nanBits := uint32(0x7FC00000)
	if _, ok := GuessFloat32(nanBits); ok {
		t.Errorf("expected NaN to be rejected")
	}

	denormalBits := uint32(0x00000001)
	if _, ok := GuessFloat32(denormalBits); ok {
		t.Errorf("expected a denormal to be rejected")
	}

	normalBits := math.Float32bits(1.5)
	f, ok := GuessFloat32(normalBits)
	if !ok || f != 1.5 {
		t.Errorf("expected 1.5 to be accepted, got %v ok=%v", f, ok)
	}
}

func TestFloat64RejectsImplausibleMagnitude(t *testing.T) {
	tiny := math.Float64bits(1e-320) // subnormal-range magnitude
	if _, ok := GuessFloat64(tiny); ok {
		t.Errorf("expected an implausibly tiny magnitude to be rejected")
	}
}
