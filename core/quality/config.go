// core/quality/config.go
package quality

import (
	"fmt"
	"math"
)

// MetricKind enumerates the sub-scores that make up the aggregate.
type MetricKind int

const (
	MetricTm MetricKind = iota
	MetricGC
	MetricLength
	MetricStability
	MetricRepeats
	MetricDimer
)

// AllMetrics lists every kind in aggregation order.
func AllMetrics() []MetricKind {
	return []MetricKind{MetricTm, MetricGC, MetricLength, MetricStability, MetricRepeats, MetricDimer}
}

func (k MetricKind) String() string {
	switch k {
	case MetricTm:
		return "tm"
	case MetricGC:
		return "gc"
	case MetricLength:
		return "length"
	case MetricStability:
		return "stability"
	case MetricRepeats:
		return "repeats"
	case MetricDimer:
		return "dimer"
	default:
		return fmt.Sprintf("metric(%d)", int(k))
	}
}

// Weights pairs each MetricKind with its weight in the aggregate.
// Negative weights count as zero.
type Weights struct {
	Tm        float64 `json:"tm" yaml:"tm"`
	GC        float64 `json:"gc" yaml:"gc"`
	Length    float64 `json:"length" yaml:"length"`
	Stability float64 `json:"stability" yaml:"stability"`
	Repeats   float64 `json:"repeats" yaml:"repeats"`
	Dimer     float64 `json:"dimer" yaml:"dimer"`
}

// Of returns the weight for k.
func (w Weights) Of(k MetricKind) float64 {
	switch k {
	case MetricTm:
		return w.Tm
	case MetricGC:
		return w.GC
	case MetricLength:
		return w.Length
	case MetricStability:
		return w.Stability
	case MetricRepeats:
		return w.Repeats
	case MetricDimer:
		return w.Dimer
	default:
		return 0
	}
}

// DefaultWeights: length counts 1.5, repeats 0.5, everything else 1.
func DefaultWeights() Weights {
	return Weights{Tm: 1, GC: 1, Length: 1.5, Stability: 1, Repeats: 0.5, Dimer: 1}
}

// Band is a closed interval [Lo, Hi] in which a sub-score is 1.
type Band struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// Contains reports Lo <= x <= Hi.
func (b Band) Contains(x float64) bool { return x >= b.Lo && x <= b.Hi }

// Distance from x to the band (0 inside).
func (b Band) Distance(x float64) float64 {
	switch {
	case x < b.Lo:
		return b.Lo - x
	case x > b.Hi:
		return x - b.Hi
	default:
		return 0
	}
}

// ramp is 1 inside b and falls linearly to 0 over below/above outside it.
// A non-positive falloff makes that side a step.
func (b Band) ramp(x, below, above float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < b.Lo:
		if below <= 0 {
			return 0
		}
		return clamp01(1 - (b.Lo-x)/below)
	case x > b.Hi:
		if above <= 0 {
			return 0
		}
		return clamp01(1 - (x-b.Hi)/above)
	default:
		return 1
	}
}

// Config holds every scoring knob. It is a value supplied per call.
type Config struct {
	Tm        Band    // °C
	TmFalloff float64 // °C outside Tm at which the Tm score reaches 0
	GC        Band    // percent; the score reaches 0 at 0% and 100%

	Length     Band    // ideal primer length (nt)
	ShortFall  float64 // nt below Length.Lo at which the length score reaches 0
	LongFall   float64 // nt above Length.Hi at which the length score reaches 0
	Arm        Band    // ideal 5' half of a junction primer (nt)
	StabilityC float64 // −ΔG37 (kcal/mol) of the 3' pentamer at which stability saturates

	RepeatStep   float64 // score lost per repeat
	DimerRiskCap float64 // risk at which the dimer score reaches 0

	Weights Weights
}

// DefaultConfig is a caller convenience; nothing in the engine reads it
// implicitly.
func DefaultConfig() Config {
	return Config{
		Tm:           Band{56, 62},
		TmFalloff:    15,
		GC:           Band{40, 60},
		Length:       Band{18, 24},
		ShortFall:    8,
		LongFall:     16,
		Arm:          Band{18, 24},
		StabilityC:   6.5,
		RepeatStep:   0.2,
		DimerRiskCap: 36,
		Weights:      DefaultWeights(),
	}
}
