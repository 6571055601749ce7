package dimer

import (
	"math"
	"testing"

	"primerqc/core/seq"
)

func TestLongestRun3(t *testing.T) {
	cases := []struct {
		in   string
		want [4]int
	}{
		{"ACGT", [4]int{4, 3, 0, 0}},
		{"AAAAAAAA", [4]int{0, 0, 0, 0}},
		{"TTTTTTTTGAATTC", [4]int{6, 5, 4, 3}},
		{"CAGTAAAAAAAAACTGAA", [4]int{0, 0, 4, 3}},
	}
	for _, tc := range cases {
		s := seq.LinearOf(tc.in)
		for o := 0; o < 4; o++ {
			if got := LongestRun3(s, o); got != tc.want[o] {
				t.Fatalf("%s offset %d: got %d want %d", tc.in, o, got, tc.want[o])
			}
		}
	}
}

func TestSelfDimerRisk(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"AAAAAAAA", 0},
		{"GGGGGGGGGG", 0},
		{"GAATTCAAAAAAA", 0},   // palindrome at the 5' end is harmless
		{"TTTTTTTTGAATTC", 36}, // EcoRI site at the 3' end
		{"ACGT", 16},
		{"GTAAAACGACGGCCAGT", 4},
		{"CAGTAAAAAAAAACTGAA", 6.4},
	}
	for _, tc := range cases {
		got := SelfDimerRisk(seq.LinearOf(tc.in))
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s: risk=%g want %g", tc.in, got, tc.want)
		}
	}
}

// The terminus is weighted most: the same 4-nt palindrome scores higher at
// the 3' end than two bases in.
func TestSelfDimerRisk_ProximityWeighting(t *testing.T) {
	atEnd := SelfDimerRisk(seq.LinearOf("AAAAAAAAGCGC"))
	inset := SelfDimerRisk(seq.LinearOf("AAAAAAGCGCAA"))
	if !(atEnd > inset) {
		t.Fatalf("3'-terminal palindrome %g should outrank inset %g", atEnd, inset)
	}
}
