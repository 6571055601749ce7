// core/dimer/dimer.go
// 3'-end self-complementarity.
//
// Two copies of a primer can anneal antiparallel; the dangerous case is a
// complementary stretch that ends at (or a few bases short of) the 3' end,
// because the polymerase can extend it. For each 3' offset o in 0..3 we find
// the longest stretch p[n−o−r : n−o] whose reverse complement occurs anywhere
// in p, and weight r² by proximity to the terminus.
package dimer

import (
	"strings"

	"primerqc/core/seq"
)

// MinRun is the shortest complementary stretch that counts.
const MinRun = 3

// offsetWeights[o] scales a run ending o bases before the 3' terminus.
var offsetWeights = [...]float64{1.0, 0.6, 0.4, 0.25}

// LongestRun3 returns the longest r ≥ MinRun such that the reverse complement
// of the r bases ending offset nt before the 3' end occurs in s, or 0.
func LongestRun3(s seq.Sequence, offset int) int {
	p := s.String()
	end := len(p) - offset
	best := 0
	for r := MinRun; r <= end; r++ {
		rc := seq.RevCompString(p[end-r : end])
		if !strings.Contains(p, rc) {
			// Longer windows extend this one; none of them can match either.
			break
		}
		best = r
	}
	return best
}

// SelfDimerRisk is max over offsets o of w(o)·r², w = 1, 0.6, 0.4, 0.25.
// Zero means no complementary stretch of MinRun or more near the 3' end;
// higher is worse.
func SelfDimerRisk(s seq.Sequence) float64 {
	risk := 0.0
	for o, w := range offsetWeights {
		r := LongestRun3(s, o)
		if r == 0 {
			continue
		}
		if v := w * float64(r*r); v > risk {
			risk = v
		}
	}
	return risk
}
