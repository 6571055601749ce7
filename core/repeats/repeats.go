// core/repeats/repeats.go
// Low-complexity detectors used by the quality scorer.
//
// Three categories are reported:
//
//	mono-run  a single base repeated ≥ 4 times (maximal run)
//	di-run    a two-base unit (distinct bases) repeated ≥ 4 times, i.e. a
//	          maximal period-2 stretch of ≥ 8 nt
//	k-mer     a 3-mer that occurs again later in the sequence; overlapping
//	          occurrences count. Each later copy is reported once, at its
//	          start, extended right as far as it keeps matching the earlier
//	          copy. A segment present c times yields c−1 occurrences.
//
// Inputs are primer-scale (< ~100 nt); the k-mer pass is O(n²).
package repeats

import (
	"sort"

	"primerqc/core/seq"
)

// Category of a repeat occurrence.
type Category int

const (
	MonoRun Category = iota
	DiRun
	KmerRepeat
)

func (c Category) String() string {
	switch c {
	case MonoRun:
		return "mono-run"
	case DiRun:
		return "di-run"
	case KmerRepeat:
		return "k-mer-repeat"
	default:
		return "unknown"
	}
}

const (
	MinMonoRun = 4
	MinDiRun   = 8
	KmerLen    = 3
)

// Occurrence is one detected repeat.
type Occurrence struct {
	Category Category
	Start    int // 0-based offset from the 5' end
	Length   int
}

// Find returns every repeat in s ordered by start, then category, then length.
func Find(s seq.Sequence) []Occurrence {
	p := s.String()
	var out []Occurrence
	out = append(out, monoRuns(p)...)
	out = append(out, diRuns(p)...)
	out = append(out, kmers(p)...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Length < b.Length
	})
	return out
}

// Count is len(Find(s)).
func Count(s seq.Sequence) int { return len(Find(s)) }

// ---------- detectors ----------

func monoRuns(p string) []Occurrence {
	var out []Occurrence
	for i := 0; i < len(p); {
		j := i + 1
		for j < len(p) && p[j] == p[i] {
			j++
		}
		if j-i >= MinMonoRun {
			out = append(out, Occurrence{Category: MonoRun, Start: i, Length: j - i})
		}
		i = j
	}
	return out
}

func diRuns(p string) []Occurrence {
	var out []Occurrence
	n := len(p)
	for i := 0; i+2 < n; {
		if p[i] != p[i+2] {
			i++
			continue
		}
		j := i
		for j+2 < n && p[j] == p[j+2] {
			j++
		}
		// p[i..j+1] is period-2; j is the first index that breaks it.
		if l := j + 2 - i; l >= MinDiRun && p[i] != p[i+1] {
			out = append(out, Occurrence{Category: DiRun, Start: i, Length: l})
		}
		i = j + 1
	}
	return out
}

func kmers(p string) []Occurrence {
	var out []Occurrence
	n := len(p)
	for j := 1; j+KmerLen <= n; j++ {
		best := 0
		for i := 0; i < j; i++ {
			if p[i:i+KmerLen] != p[j:j+KmerLen] {
				continue
			}
			// Left-maximal pairs only; the rest are tails of a longer match.
			if i > 0 && p[i-1] == p[j-1] {
				continue
			}
			l := KmerLen
			for j+l < n && p[i+l] == p[j+l] {
				l++
			}
			if l > best {
				best = l
			}
		}
		if best > 0 {
			out = append(out, Occurrence{Category: KmerRepeat, Start: j, Length: best})
		}
	}
	return out
}
