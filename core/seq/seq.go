// core/seq/seq.go
// Canonical A/C/G/T sequence with topology.
//
// A Sequence is immutable and always well formed: Parse rejects anything that
// is not A, C, G or T, so analyzers downstream never re-check the alphabet.
package seq

import (
	"strings"
	"unicode"

	"primerqc/core/qcerr"
)

// Nucleotide is one of 'A', 'C', 'G', 'T'.
type Nucleotide byte

const (
	A Nucleotide = 'A'
	C Nucleotide = 'C'
	G Nucleotide = 'G'
	T Nucleotide = 'T'
)

// Complement returns the Watson–Crick partner.
func (n Nucleotide) Complement() Nucleotide { return Nucleotide(complement[n]) }

// IsGC reports whether n is G or C.
func (n Nucleotide) IsGC() bool { return n == G || n == C }

// Topology is linear or circular (plasmid).
type Topology int

const (
	Linear Topology = iota
	Circular
)

func (t Topology) String() string {
	if t == Circular {
		return "circular"
	}
	return "linear"
}

// Sequence is a non-empty 5'→3' run of nucleotides.
type Sequence struct {
	s    string
	topo Topology
}

var complement [256]byte

func init() {
	complement['A'] = 'T'
	complement['C'] = 'G'
	complement['G'] = 'C'
	complement['T'] = 'A'
}

// Normalize removes whitespace/quotes and uppercases bases.
func Normalize(raw string) string {
	out := make([]rune, 0, len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) || r == '\'' || r == '"' {
			continue
		}
		out = append(out, unicode.ToUpper(r))
	}
	return string(out)
}

// Parse validates raw and returns a Sequence with the given topology.
func Parse(raw string, topo Topology) (Sequence, error) {
	s := Normalize(raw)
	if s == "" {
		return Sequence{}, qcerr.New(qcerr.SequenceTooShort, "empty sequence")
	}
	for i := 0; i < len(s); i++ {
		if complement[s[i]] == 0 {
			return Sequence{}, qcerr.New(qcerr.InvalidNucleotide, "invalid base %q at %d; allowed: A C G T", s[i], i+1)
		}
	}
	return Sequence{s: s, topo: topo}, nil
}

// MustParse is Parse for literals in tests and tables; it panics on error.
func MustParse(raw string, topo Topology) Sequence {
	s, err := Parse(raw, topo)
	if err != nil {
		panic(err)
	}
	return s
}

// LinearOf returns a linear Sequence from raw, panicking on invalid input.
func LinearOf(raw string) Sequence { return MustParse(raw, Linear) }

func (s Sequence) String() string     { return s.s }
func (s Sequence) Len() int           { return len(s.s) }
func (s Sequence) Topology() Topology { return s.topo }
func (s Sequence) IsCircular() bool   { return s.topo == Circular }
func (s Sequence) IsZero() bool       { return s.s == "" }

// At returns the nucleotide at i (0-based from the 5' end).
func (s Sequence) At(i int) Nucleotide { return Nucleotide(s.s[i]) }

// WithTopology returns a copy tagged with topo.
func (s Sequence) WithTopology(topo Topology) Sequence { return Sequence{s: s.s, topo: topo} }

// Complement returns the per-position complement (no reversal); read it 3'→5'.
func (s Sequence) Complement() Sequence {
	return Sequence{s: ComplementString(s.s), topo: s.topo}
}

// RevComp returns the reverse complement (5'→3' of the other strand).
func (s Sequence) RevComp() Sequence {
	return Sequence{s: RevCompString(s.s), topo: s.topo}
}

// Slice returns s[i:j] as a linear Sequence. Bounds follow Go slicing.
func (s Sequence) Slice(i, j int) Sequence {
	return Sequence{s: s.s[i:j], topo: Linear}
}

// Window extracts n bases starting at start. Circular sequences wrap around
// the origin (start is taken modulo Len); linear ones must stay in bounds.
// The result is linear. ok is false for out-of-range linear windows, n < 1,
// or n > Len on a circular sequence.
func (s Sequence) Window(start, n int) (Sequence, bool) {
	L := len(s.s)
	if n < 1 || L == 0 {
		return Sequence{}, false
	}
	if s.topo == Circular {
		if n > L {
			return Sequence{}, false
		}
		start = mod(start, L)
		if start+n <= L {
			return Sequence{s: s.s[start : start+n]}, true
		}
		return Sequence{s: s.s[start:] + s.s[:start+n-L]}, true
	}
	if start < 0 || start+n > L {
		return Sequence{}, false
	}
	return Sequence{s: s.s[start : start+n]}, true
}

// Rotate returns s[k:] + s[:k] (k taken modulo Len), keeping topology.
func (s Sequence) Rotate(k int) Sequence {
	if len(s.s) == 0 {
		return s
	}
	k = mod(k, len(s.s))
	return Sequence{s: s.s[k:] + s.s[:k], topo: s.topo}
}

// Concat joins sequences 5'→3' into one linear Sequence.
func Concat(parts ...Sequence) Sequence {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.s)
	}
	return Sequence{s: b.String()}
}

// EqualRotation reports whether a and b are the same circular molecule, i.e.
// equal up to rotation of the origin.
func (s Sequence) EqualRotation(o Sequence) bool {
	if len(s.s) != len(o.s) {
		return false
	}
	return strings.Contains(s.s+s.s, o.s)
}

// GCPercent returns the G+C content in [0,100].
func (s Sequence) GCPercent() float64 { return GCPercent(s.s) }

// GCPercent for a raw upper-case string; 0 for the empty string.
func GCPercent(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == 'G' || s[i] == 'C' {
			n++
		}
	}
	return 100 * float64(n) / float64(len(s))
}

// ---------- string helpers ----------

// ComplementString complements an upper-case A/C/G/T string per position.
func ComplementString(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = complement[s[i]]
	}
	return string(out)
}

// RevCompString reverse-complements an upper-case A/C/G/T string.
func RevCompString(s string) string {
	n := len(s)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = complement[s[n-1-i]]
	}
	return string(out)
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
