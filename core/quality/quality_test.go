package quality

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"primerqc/core/primer"
	"primerqc/core/qcerr"
	"primerqc/core/seq"
	"primerqc/core/thermo"
)

func pcrIons() thermo.Ions {
	return thermo.Ions{Na: 0.05, Mg: 0.0015, DNTP: 0.0002, Primer: 25e-9}
}

func randSeq(rng *rand.Rand, n int) seq.Sequence {
	const bases = "ACGT"
	b := make([]byte, n)
	for i := range b {
		b[i] = bases[rng.Intn(4)]
	}
	return seq.LinearOf(string(b))
}

func TestBandRamp(t *testing.T) {
	b := Band{18, 24}
	cases := []struct {
		x, want float64
	}{
		{18, 1}, {21, 1}, {24, 1},
		{14, 0.5}, {10, 0}, {2, 0},
		{32, 0.5}, {40, 0}, {60, 0},
	}
	for _, tc := range cases {
		if got := b.ramp(tc.x, 8, 16); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("ramp(%g)=%g want %g", tc.x, got, tc.want)
		}
	}
	if b.ramp(math.NaN(), 8, 16) != 0 {
		t.Fatal("NaN must score 0")
	}
	if b.ramp(17, 0, 0) != 0 || b.ramp(20, 0, 0) != 1 {
		t.Fatal("zero falloff is a step")
	}
}

func TestEvaluate_GCExtremes(t *testing.T) {
	cfg := DefaultConfig()
	at, err := Evaluate(seq.LinearOf("ATTATAATTAATATTATAAT"), -1, pcrIons(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if at.GCPercent != 0 || at.GCScore != 0 || at.GCClamp != 0 {
		t.Fatalf("A/T primer: gc=%g score=%g clamp=%d", at.GCPercent, at.GCScore, at.GCClamp)
	}
	gc, err := Evaluate(seq.LinearOf("GCCGGCGCCGCGGCCGCGGC"), -1, pcrIons(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if gc.GCPercent != 100 || gc.GCScore != 0 || gc.GCClamp != 5 {
		t.Fatalf("G/C primer: gc=%g score=%g clamp=%d", gc.GCPercent, gc.GCScore, gc.GCClamp)
	}
}

func TestEvaluate_M13Breakdown(t *testing.T) {
	m, err := Evaluate(seq.LinearOf("GTAAAACGACGGCCAGT"), -1, pcrIons(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	// Tm 54.09 °C is 1.91 below the band: 1 − 1.91/15.
	if math.Abs(m.TmScore-(1-(56-m.TmC)/15)) > 1e-12 || math.Abs(m.TmC-54.086) > 0.01 {
		t.Fatalf("Tm=%g score=%g", m.TmC, m.TmScore)
	}
	if m.LengthScore != 1-1.0/8 {
		t.Fatalf("17 nt length score=%g", m.LengthScore)
	}
	if len(m.Repeats) != 3 || math.Abs(m.RepeatScore-0.4) > 1e-12 {
		t.Fatalf("repeats=%d score=%g", len(m.Repeats), m.RepeatScore)
	}
	if m.DimerRisk != 4 || math.Abs(m.DimerScore-(1-4.0/36)) > 1e-12 {
		t.Fatalf("dimer risk=%g score=%g", m.DimerRisk, m.DimerScore)
	}
	if m.GCClamp != 3 {
		t.Fatalf("CCAGT clamp=%d want 3", m.GCClamp)
	}
	if m.StabilityScore != clamp01(-m.ThreePrimeDG/6.5) || m.ThreePrimeDG >= 0 {
		t.Fatalf("stability ΔG=%g score=%g", m.ThreePrimeDG, m.StabilityScore)
	}
	want := Aggregate(m, DefaultWeights())
	if m.Score != want {
		t.Fatalf("Score=%g Aggregate=%g", m.Score, want)
	}
}

func TestAggregate(t *testing.T) {
	m := Metrics{TmScore: 1, GCScore: 0, LengthScore: 1, StabilityScore: 1, RepeatScore: 0, DimerScore: 1}
	// (1 + 0 + 1.5 + 1 + 0 + 1) / 6 = 0.75
	if got := Aggregate(m, DefaultWeights()); math.Abs(got-75) > 1e-9 {
		t.Fatalf("Aggregate=%g want 75", got)
	}
	only := Weights{GC: 2}
	if got := Aggregate(m, only); got != 0 {
		t.Fatalf("GC-only weight: %g", got)
	}
	if got := Aggregate(m, Weights{}); got != 0 {
		t.Fatalf("zero weights: %g", got)
	}
	if got := Aggregate(m, Weights{Tm: -5, Length: 1}); got != 100 {
		t.Fatalf("negative weight should be ignored: %g", got)
	}
	for _, k := range AllMetrics() {
		if DefaultWeights().Of(k) <= 0 {
			t.Fatalf("default weight for %s must be positive", k)
		}
	}
}

func TestEvaluate_JunctionHalves(t *testing.T) {
	cfg := DefaultConfig()
	s := randSeq(rand.New(rand.NewSource(3)), 42)
	m, err := Evaluate(s, 20, pcrIons(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if m.AnchorIndex != 20 || m.LengthScore != 1 {
		t.Fatalf("20+22 junction should score 1 on length, got %g", m.LengthScore)
	}
	plain, err := Evaluate(s, -1, pcrIons(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if plain.LengthScore >= 1 {
		t.Fatalf("42 nt plain primer should be penalized, got %g", plain.LengthScore)
	}
	if cfg.IdealDistance(42, 20) != 0 || cfg.IdealDistance(42, -1) != 18 {
		t.Fatal("IdealDistance")
	}
	// Repeat penalty is halved on junction primers.
	if len(m.Repeats) > 0 && m.RepeatScore < plain.RepeatScore {
		t.Fatalf("junction repeat score %g < plain %g", m.RepeatScore, plain.RepeatScore)
	}
}

func TestEvaluate_AnchorOutOfRange(t *testing.T) {
	s := randSeq(rand.New(rand.NewSource(3)), 42)
	for _, a := range []int{0, 42, 50} {
		_, err := Evaluate(s, a, pcrIons(), DefaultConfig())
		if !errors.Is(err, qcerr.ErrAnchorOutOfRange) {
			t.Fatalf("anchor %d: want AnchorOutOfRange, got %v", a, err)
		}
	}
	if _, err := Evaluate(s, 41, pcrIons(), DefaultConfig()); err != nil {
		t.Fatalf("anchor 41: %v", err)
	}
}

func TestScore_ResolvesPrimer(t *testing.T) {
	ref := seq.LinearOf("TTGACCATGGCTAGCAAGGAGGAACTGTTCACCGGG")
	p := primer.Primer{Loc: primer.FixedRange{Start: 6, End: 26}}
	m, err := Score(p, ref, pcrIons(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if m.Seq != "ATGGCTAGCAAGGAGGAACT" {
		t.Fatalf("seq=%s", m.Seq)
	}
	_, err = Score(p, ref, thermo.Ions{Na: -1, Primer: 1e-9}, DefaultConfig())
	if !errors.Is(err, qcerr.ErrInvalidIonConcentration) {
		t.Fatalf("want InvalidIonConcentration, got %v", err)
	}
}

// Aggregate stays in [0,100] for arbitrary valid sequences, solutions and
// scoring configurations.
func TestEvaluate_ScoreBoundsProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(20240611))
	for i := 0; i < 2000; i++ {
		n := 2 + rng.Intn(70)
		s := randSeq(rng, n)
		ions := thermo.Ions{
			Na:     rng.Float64() * 1.0,
			K:      rng.Float64() * 0.1,
			Mg:     rng.Float64() * 0.01,
			DNTP:   rng.Float64() * 0.002,
			Primer: 1e-10 + rng.Float64()*1e-5,
		}
		if ions.EffectiveMonovalent() <= 0 {
			continue
		}
		cfg := DefaultConfig()
		cfg.TmFalloff = rng.Float64() * 30
		cfg.StabilityC = rng.Float64() * 10
		cfg.DimerRiskCap = rng.Float64() * 60
		cfg.RepeatStep = rng.Float64()
		cfg.Weights = Weights{
			Tm: rng.Float64() * 3, GC: rng.Float64() * 3, Length: rng.Float64() * 3,
			Stability: rng.Float64() * 3, Repeats: rng.Float64() * 3, Dimer: rng.Float64()*3 - 1,
		}
		anchor := -1
		if rng.Intn(2) == 0 {
			anchor = 1 + rng.Intn(n-1)
		}
		m, err := Evaluate(s, anchor, ions, cfg)
		if err != nil {
			t.Fatalf("case %d (%s): %v", i, s, err)
		}
		if m.Score < 0 || m.Score > 100 || math.IsNaN(m.Score) {
			t.Fatalf("case %d (%s): score %g out of range", i, s, m.Score)
		}
		for _, k := range AllMetrics() {
			if v := m.Sub(k); v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("case %d: %s sub-score %g out of [0,1]", i, k, v)
			}
		}
	}
}
