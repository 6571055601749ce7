// core/primer/match.go
package primer

import (
	"strings"

	"primerqc/core/seq"
)

/* ----------------------- types --------------------- */

type Match struct {
	Pos        int
	Mismatches int
	Length     int
}

// Hit is the best placement of a probe on either strand of a reference.
type Hit struct {
	Found  bool
	Strand Strand
	Pos    int // leftmost reference index of the site
	MM     int
}

/* --------------------------- FindMatches (cap) -------------------------- */

// FindMatches scans text for pattern with up to maxMM mismatches.
// capHits == 0  ➜ unlimited
// terminalWindow: N bases at the pattern 3' end where mismatches are disallowed (0=allow)
func FindMatches(text, pattern string, maxMM, capHits, terminalWindow int) []Match {
	pl := len(pattern)
	if pl == 0 || len(text) < pl {
		return nil
	}

	// Exact-match fast path.
	if maxMM == 0 {
		out := make([]Match, 0, 8)
		for i := 0; ; {
			j := strings.Index(text[i:], pattern)
			if j < 0 {
				break
			}
			pos := i + j
			out = append(out, Match{Pos: pos, Length: pl})
			if capHits > 0 && len(out) >= capHits {
				break
			}
			i = pos + 1
		}
		return out
	}

	// cutoff index: any mismatch with j >= cutoff is disallowed
	cutoff := pl + 1
	if terminalWindow > 0 {
		cutoff = max(pl-terminalWindow, 0)
	}

	out := make([]Match, 0, 8)
window:
	for pos := 0; pos+pl <= len(text); pos++ {
		mm := 0
		for j := 0; j < pl; j++ {
			if text[pos+j] == pattern[j] {
				continue
			}
			if j >= cutoff {
				continue window
			}
			mm++
			if mm > maxMM {
				continue window
			}
		}
		out = append(out, Match{Pos: pos, Mismatches: mm, Length: pl})
		if capHits > 0 && len(out) >= capHits {
			break // early stop to cap memory
		}
	}
	return out
}

// BestHit returns the best (fewest mismatches, then leftmost, then forward)
// hit of probe on either strand of ref, allowing up to maxMM mismatches.
// Circular references are searched across the origin; Pos is then reduced
// modulo ref.Len().
func BestHit(ref, probe seq.Sequence, maxMM int) Hit {
	text := searchText(ref, probe.Len())
	fwd := probe.String()
	rev := seq.RevCompString(fwd)

	best := Hit{}
	consider := func(ms []Match, strand Strand) {
		for _, m := range ms {
			pos := m.Pos
			if ref.IsCircular() {
				pos %= ref.Len()
			}
			c := Hit{Found: true, Strand: strand, Pos: pos, MM: m.Mismatches}
			if !best.Found || c.MM < best.MM || (c.MM == best.MM && c.Pos < best.Pos) {
				best = c
			}
		}
	}
	consider(FindMatches(text, fwd, maxMM, 0, 0), Forward)
	if rev != fwd {
		consider(FindMatches(text, rev, maxMM, 0, 0), Reverse)
	}
	return best
}

// searchText returns the string to scan for a pattern of length pl: the
// reference itself, or for circular references the reference followed by
// its first pl−1 bases.
func searchText(ref seq.Sequence, pl int) string {
	s := ref.String()
	if !ref.IsCircular() || pl <= 1 {
		return s
	}
	if pl-1 > len(s) {
		pl = len(s) + 1
	}
	return s + s[:pl-1]
}
