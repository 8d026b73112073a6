package section

import "testing"

// TestStringGuessL1 is spec §8 seed scenario S3.
func TestStringGuessL1(t *testing.T) {
	body := []byte("Hello\x00\x00\x00\x00")

	s, ok := GuessString(1, Candidate{ReferenceCount: 1, Body: body})
	if !ok {
		t.Fatalf("expected L1 to accept a singly-referenced, NUL-padded string")
	}
	if s != "Hello" {
		t.Errorf("expected %q, got %q", "Hello", s)
	}

	// A second reference disqualifies it at L1...
	if _, ok := GuessString(1, Candidate{ReferenceCount: 2, Body: body}); ok {
		t.Errorf("L1 must reject a string referenced more than once")
	}
	// ...but L2 drops that requirement.
	s, ok = GuessString(2, Candidate{ReferenceCount: 2, Body: body})
	if !ok || s != "Hello" {
		t.Errorf("L2 should still recognize %q with multiple references, got %q ok=%v", "Hello", s, ok)
	}
}

func TestStringGuessMonotonicity(t *testing.T) {
	// Spec §8 testable property 6: the set of strings recognized at level k
	// is a subset of the set recognized at level k+1.
	cases := []Candidate{
		{ReferenceCount: 1, Body: []byte("hi\x00\x00")},
		{ReferenceCount: 3, Body: []byte("hi\x00\x00")},
		{ReferenceCount: 1, Body: []byte("\x00\x00\x00\x00")},
		{ReferenceCount: 1, HasInferredType: true, Body: []byte("hi\x00\x00")},
	}
	for _, c := range cases {
		accepted := -1
		for level := 0; level <= 4; level++ {
			_, ok := GuessString(level, c)
			if ok && accepted == -1 {
				accepted = level
			}
			if !ok && accepted != -1 {
				t.Errorf("candidate %+v: accepted at level %d but rejected at level %d", c, accepted, level)
			}
		}
	}
}

func TestStringGuessRejectsBellCharacter(t *testing.T) {
	body := []byte("bad\x07string\x00\x00\x00")
	if _, ok := GuessString(4, Candidate{Body: body}); ok {
		t.Errorf("expected a bell character to disqualify the candidate at every level")
	}
}

func TestPascalStringGuess(t *testing.T) {
	body := append([]byte{5}, []byte("Hello\x00\x00")...)
	s, ok := GuessPascalString(1, Candidate{ReferenceCount: 1, Body: body})
	if !ok || s != "Hello" {
		t.Errorf("expected pascal string %q, got %q ok=%v", "Hello", s, ok)
	}
}
