// core/quality/quality.go
// Fuzzy primer quality score.
//
// Each metric is mapped to a sub-score in [0,1]; the aggregate is the
// weighted mean scaled to [0,100]. Every function here is pure: callers
// re-invoke on each edit instead of caching.
package quality

import (
	"math"

	"primerqc/core/dimer"
	"primerqc/core/primer"
	"primerqc/core/qcerr"
	"primerqc/core/repeats"
	"primerqc/core/seq"
	"primerqc/core/thermo"
)

// StabilityWindow is the number of 3'-terminal bases used for 3' stability.
const StabilityWindow = 5

// Metrics is the full breakdown for one primer sequence.
type Metrics struct {
	Seq         string
	Length      int
	AnchorIndex int // bases 5' of the junction anchor, or -1

	TmC          float64
	GCPercent    float64
	GCClamp      int     // G/C among the last StabilityWindow bases
	ThreePrimeDG float64 // ΔG37 of the 3' pentamer stacks, kcal/mol
	Repeats      []repeats.Occurrence
	DimerRisk    float64

	TmScore        float64
	GCScore        float64
	LengthScore    float64
	StabilityScore float64
	RepeatScore    float64
	DimerScore     float64

	Score float64 // aggregate in [0,100]
}

// Sub returns the sub-score for k.
func (m Metrics) Sub(k MetricKind) float64 {
	switch k {
	case MetricTm:
		return m.TmScore
	case MetricGC:
		return m.GCScore
	case MetricLength:
		return m.LengthScore
	case MetricStability:
		return m.StabilityScore
	case MetricRepeats:
		return m.RepeatScore
	case MetricDimer:
		return m.DimerScore
	default:
		return 0
	}
}

// Score resolves p on ref and evaluates the primer sequence.
func Score(p primer.Primer, ref seq.Sequence, ions thermo.Ions, cfg Config) (Metrics, error) {
	pl, err := p.Resolve(ref)
	if err != nil {
		return Metrics{}, err
	}
	return Evaluate(pl.Seq(), pl.AnchorIndex(), ions, cfg)
}

// Evaluate scores a primer sequence (5'→3'). anchorIndex marks a junction
// primer whose first anchorIndex bases are a homology arm and must lie in
// (0, len); pass -1 otherwise.
func Evaluate(s seq.Sequence, anchorIndex int, ions thermo.Ions, cfg Config) (Metrics, error) {
	tm, err := thermo.MeltingTemperature(s, ions)
	if err != nil {
		return Metrics{}, err
	}
	n := s.Len()
	junction := anchorIndex >= 0
	if junction && (anchorIndex == 0 || anchorIndex >= n) {
		return Metrics{}, qcerr.New(qcerr.AnchorOutOfRange, "anchor %d not strictly inside primer of %d nt", anchorIndex, n)
	}
	if !junction {
		anchorIndex = -1
	}

	m := Metrics{
		Seq:         s.String(),
		Length:      n,
		AnchorIndex: anchorIndex,
		TmC:         tm,
		GCPercent:   s.GCPercent(),
		Repeats:     repeats.Find(s),
		DimerRisk:   dimer.SelfDimerRisk(s),
	}
	tail := s.Slice(max(0, n-StabilityWindow), n)
	for i := 0; i < tail.Len(); i++ {
		if tail.At(i).IsGC() {
			m.GCClamp++
		}
	}
	m.ThreePrimeDG = thermo.StackDeltaG(tail, 37)

	m.TmScore = cfg.Tm.ramp(tm, cfg.TmFalloff, cfg.TmFalloff)
	m.GCScore = cfg.GC.ramp(m.GCPercent, cfg.GC.Lo, 100-cfg.GC.Hi)
	m.LengthScore = cfg.lengthScore(n, anchorIndex)
	if cfg.StabilityC > 0 {
		m.StabilityScore = clamp01(-m.ThreePrimeDG / cfg.StabilityC)
	}
	count := float64(len(m.Repeats))
	if junction {
		count /= 2
	}
	m.RepeatScore = clamp01(1 - cfg.RepeatStep*count)
	if cfg.DimerRiskCap > 0 {
		m.DimerScore = clamp01(1 - m.DimerRisk/cfg.DimerRiskCap)
	} else if m.DimerRisk == 0 {
		m.DimerScore = 1
	}

	m.Score = Aggregate(m, cfg.Weights)
	return m, nil
}

// Aggregate is 100·Σ(w·s)/Σw over AllMetrics, clamped to [0,100].
func Aggregate(m Metrics, w Weights) float64 {
	num, den := 0.0, 0.0
	for _, k := range AllMetrics() {
		wk := w.Of(k)
		if wk <= 0 || math.IsNaN(wk) || math.IsInf(wk, 0) {
			continue
		}
		num += wk * clamp01(m.Sub(k))
		den += wk
	}
	if den == 0 {
		return 0
	}
	return math.Max(0, math.Min(100, 100*num/den))
}

// lengthScore averages the two halves of a junction primer, the 5' half
// against Arm and the 3' half against Length.
func (cfg Config) lengthScore(n, anchorIndex int) float64 {
	if anchorIndex < 0 {
		return cfg.Length.ramp(float64(n), cfg.ShortFall, cfg.LongFall)
	}
	arm := cfg.Arm.ramp(float64(anchorIndex), cfg.ShortFall, cfg.LongFall)
	anneal := cfg.Length.ramp(float64(n-anchorIndex), cfg.ShortFall, cfg.LongFall)
	return (arm + anneal) / 2
}

// IdealDistance is how far a primer's length (or each junction half's) is
// from its ideal band; the tuner uses it to break score ties.
func (cfg Config) IdealDistance(n, anchorIndex int) float64 {
	if anchorIndex < 0 {
		return cfg.Length.Distance(float64(n))
	}
	return cfg.Arm.Distance(float64(anchorIndex)) + cfg.Length.Distance(float64(n-anchorIndex))
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
