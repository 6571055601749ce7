// core/cloning/cloning.go
// Primer design for overlap cloning (SLIC / FastCloning).
//
// The insert I goes into the circular vector V at insertion point p. All four
// primers are laid out on the predicted product P = V[:p] + I + V[p:], which
// has two seams: J1 = p (vector → insert) and J2 = p+len(I) (insert → vector).
//
//	vector-fwd  forward from J2 into the vector, 3' end tunable
//	vector-rev  reverse ending at J1, 3' end tunable
//	insert-fwd  forward across J1, anchor J1: 5' arm = vector, 3' = insert
//	insert-rev  reverse across J2, anchor J2: 5' arm = vector, 3' = insert
//
// The vector pair linearizes V at p; the insert pair adds vector homology
// arms to I. The two products share the arms as terminal overlaps and join
// into P.
package cloning

import (
	"primerqc/core/pcr"
	"primerqc/core/primer"
	"primerqc/core/qcerr"
	"primerqc/core/quality"
	"primerqc/core/seq"
	"primerqc/core/thermo"
	"primerqc/core/tune"
)

const (
	DefaultArmSlack  = 5
	DefaultAnnealMin = 18
	DefaultAnnealMax = 30
)

// Options controls primer geometry and scoring.
type Options struct {
	ArmSlack  int // arm length may vary by ±ArmSlack around the overlap target
	AnnealMin int // shortest template-annealing portion
	AnnealMax int // longest template-annealing portion
	Quality   quality.Config
	Tune      tune.Options
}

// DefaultOptions returns the stock geometry with quality.DefaultConfig.
func DefaultOptions() Options {
	return Options{
		ArmSlack:  DefaultArmSlack,
		AnnealMin: DefaultAnnealMin,
		AnnealMax: DefaultAnnealMax,
		Quality:   quality.DefaultConfig(),
	}
}

// Pair is the generated primer set. Every Result's primer is a FixedRange
// on Product.
type Pair struct {
	VectorFwd tune.Result
	VectorRev tune.Result
	InsertFwd tune.Result
	InsertRev tune.Result

	Product        seq.Sequence // circular
	InsertionPoint int
	InsertLen      int
}

// Primers returns the four results in a fixed order.
func (p Pair) Primers() []tune.Result {
	return []tune.Result{p.VectorFwd, p.VectorRev, p.InsertFwd, p.InsertRev}
}

// GeneratePair designs the four cloning primers for inserting insert into
// vector at insertionPoint, tuning homology arms toward overlapTarget nt.
// The vector is treated as circular and the insert as linear regardless of
// their declared topology.
func GeneratePair(vector, insert seq.Sequence, insertionPoint, overlapTarget int, ions thermo.Ions, opt Options) (Pair, error) {
	if err := ions.Validate(); err != nil {
		return Pair{}, err
	}
	Lv, m := vector.Len(), insert.Len()
	if insertionPoint < 0 || insertionPoint > Lv {
		return Pair{}, qcerr.New(qcerr.AnchorOutOfRange, "insertion point %d outside vector [0,%d]", insertionPoint, Lv)
	}
	if overlapTarget < 1 {
		return Pair{}, qcerr.New(qcerr.TunableRangeEmpty, "overlap target %d < 1", overlapTarget)
	}
	if opt.ArmSlack < 0 || opt.AnnealMin < 1 || opt.AnnealMax < opt.AnnealMin {
		return Pair{}, qcerr.New(qcerr.TunableRangeEmpty,
			"arm slack %d, anneal [%d,%d]", opt.ArmSlack, opt.AnnealMin, opt.AnnealMax)
	}
	armMin := max(1, overlapTarget-opt.ArmSlack)
	armMax := overlapTarget + opt.ArmSlack
	if m < opt.AnnealMin {
		return Pair{}, qcerr.New(qcerr.SequenceTooShort, "insert of %d nt shorter than %d nt anneal", m, opt.AnnealMin)
	}
	if need := max(opt.AnnealMax, armMax); Lv < need {
		return Pair{}, qcerr.New(qcerr.SequenceTooShort, "vector of %d nt shorter than %d nt", Lv, need)
	}

	v := vector.WithTopology(seq.Linear)
	p := insertionPoint
	product := seq.Concat(v.Slice(0, p), insert.WithTopology(seq.Linear), v.Slice(p, Lv)).WithTopology(seq.Circular)
	Lp := product.Len()
	j1, j2 := p, p+m

	aMin := opt.AnnealMin
	vecExt := opt.AnnealMax - aMin
	insExt := min(opt.AnnealMax, m) - aMin
	armExt := armMax - armMin

	vecCfg := opt.Quality
	armCfg := opt.Quality
	armCfg.Arm = quality.Band{Lo: float64(overlapTarget), Hi: float64(overlapTarget)}

	specs := [4]struct {
		p   primer.Primer
		cfg quality.Config
	}{
		{primer.Primer{
			Name:      "vector-fwd",
			Loc:       primer.FixedRange{Start: j2 % Lp, End: (j2 + aMin) % Lp, Strand: primer.Forward},
			End3:      primer.End{Tunable: true, MaxExtension: vecExt},
			MinLength: aMin,
			MaxLength: opt.AnnealMax,
		}, vecCfg},
		{primer.Primer{
			Name:      "vector-rev",
			Loc:       primer.FixedRange{Start: mod(j1-aMin, Lp), End: j1, Strand: primer.Reverse},
			End3:      primer.End{Tunable: true, MaxExtension: vecExt},
			MinLength: aMin,
			MaxLength: opt.AnnealMax,
		}, vecCfg},
		{primer.Primer{
			Name:      "insert-fwd",
			Loc:       primer.FixedRange{Start: mod(j1-armMin, Lp), End: j1 + aMin, Strand: primer.Forward, Anchor: j1},
			End5:      primer.End{Tunable: true, MaxExtension: armExt},
			End3:      primer.End{Tunable: true, MaxExtension: insExt},
			Anchored:  true,
			MinLength: armMin + aMin,
		}, armCfg},
		{primer.Primer{
			Name:      "insert-rev",
			Loc:       primer.FixedRange{Start: j2 - aMin, End: mod(j2+armMin, Lp), Strand: primer.Reverse, Anchor: j2 % Lp},
			End5:      primer.End{Tunable: true, MaxExtension: armExt},
			End3:      primer.End{Tunable: true, MaxExtension: insExt},
			Anchored:  true,
			MinLength: armMin + aMin,
		}, armCfg},
	}
	var res [4]tune.Result
	for i, sp := range specs {
		r, err := tune.Tune(sp.p, product, ions, sp.cfg, opt.Tune)
		if err != nil {
			return Pair{}, err
		}
		res[i] = r
	}
	return Pair{
		VectorFwd:      res[0],
		VectorRev:      res[1],
		InsertFwd:      res[2],
		InsertRev:      res[3],
		Product:        product,
		InsertionPoint: p,
		InsertLen:      m,
	}, nil
}

// AmplificationPair tunes a plain forward/reverse pair that amplifies the
// whole of template, anchored at its two ends with the 3' ends tunable.
func AmplificationPair(template seq.Sequence, ions thermo.Ions, opt Options) (fwd, rev tune.Result, err error) {
	if err := ions.Validate(); err != nil {
		return tune.Result{}, tune.Result{}, err
	}
	t := template.WithTopology(seq.Linear)
	n := t.Len()
	if opt.AnnealMin < 1 || opt.AnnealMax < opt.AnnealMin {
		return tune.Result{}, tune.Result{}, qcerr.New(qcerr.TunableRangeEmpty, "anneal [%d,%d]", opt.AnnealMin, opt.AnnealMax)
	}
	if n < opt.AnnealMin {
		return tune.Result{}, tune.Result{}, qcerr.New(qcerr.SequenceTooShort,
			"template of %d nt shorter than %d nt anneal", n, opt.AnnealMin)
	}
	base := primer.Primer{
		End3:      primer.End{Tunable: true, MaxExtension: min(opt.AnnealMax, n) - opt.AnnealMin},
		MinLength: opt.AnnealMin,
		MaxLength: opt.AnnealMax,
	}
	f, r := base, base
	f.Name, f.Loc = "amp-fwd", primer.FixedRange{Start: 0, End: opt.AnnealMin}
	r.Name, r.Loc = "amp-rev", primer.FixedRange{Start: n - opt.AnnealMin, End: n, Strand: primer.Reverse}
	if fwd, err = tune.Tune(f, t, ions, opt.Quality, opt.Tune); err != nil {
		return tune.Result{}, tune.Result{}, err
	}
	if rev, err = tune.Tune(r, t, ions, opt.Quality, opt.Tune); err != nil {
		return tune.Result{}, tune.Result{}, err
	}
	return fwd, rev, nil
}

// Verify simulates both PCRs of a generated pair against their templates,
// joins the two products through their overlaps and checks the result
// against the predicted product. It returns the assembled molecule.
func Verify(pair Pair, vector, insert seq.Sequence, cfg pcr.Config) (seq.Sequence, error) {
	vec, err := pcr.Amplify(vector.WithTopology(seq.Circular),
		pair.VectorFwd.Placement.Seq(), pair.VectorRev.Placement.Seq(), cfg)
	if err != nil {
		return seq.Sequence{}, err
	}
	ins, err := pcr.Amplify(insert.WithTopology(seq.Linear),
		pair.InsertFwd.Placement.Seq(), pair.InsertRev.Placement.Seq(), cfg)
	if err != nil {
		return seq.Sequence{}, err
	}
	overlap := min(pair.InsertFwd.Metrics.AnchorIndex, pair.InsertRev.Metrics.AnchorIndex)
	got, err := Assemble([]seq.Sequence{ins.Seq, vec.Seq}, overlap)
	if err != nil {
		return seq.Sequence{}, err
	}
	if !got.EqualRotation(pair.Product) {
		return got, qcerr.New(qcerr.NoProduct, "assembled %d nt does not match predicted %d nt", got.Len(), pair.Product.Len())
	}
	return got, nil
}

// Assemble joins linear fragments end to end through terminal overlaps of at
// least minOverlap nt (longest overlap wins) and closes the last fragment
// onto the first. The result is circular.
func Assemble(fragments []seq.Sequence, minOverlap int) (seq.Sequence, error) {
	if len(fragments) == 0 {
		return seq.Sequence{}, qcerr.New(qcerr.NoProduct, "no fragments")
	}
	minOverlap = max(minOverlap, 1)
	acc := fragments[0].String()
	for i, f := range fragments[1:] {
		fs := f.String()
		k := overlap(acc, fs, minOverlap, len(fs))
		if k == 0 {
			return seq.Sequence{}, qcerr.New(qcerr.NoProduct, "fragment %d does not overlap fragment %d", i+1, i)
		}
		acc += fs[k:]
	}
	k := overlap(acc, acc, minOverlap, len(acc)-1)
	if k == 0 {
		return seq.Sequence{}, qcerr.New(qcerr.NoProduct, "ends do not overlap; molecule cannot close")
	}
	return seq.Parse(acc[:len(acc)-k], seq.Circular)
}

// overlap is the longest k in [lo, hi] with a[len(a)-k:] == b[:k], or 0.
func overlap(a, b string, lo, hi int) int {
	for k := min(hi, len(a), len(b)); k >= lo; k-- {
		if a[len(a)-k:] == b[:k] {
			return k
		}
	}
	return 0
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
