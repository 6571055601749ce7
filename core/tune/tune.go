// core/tune/tune.go
// Exhaustive end-length optimisation for primers with tunable ends.
//
// The resolved placement is the nominal (shortest) primer. Each tunable end
// may grow outward by 0..MaxExtension bases, limited by the flanking
// sequence actually present on the reference. One tunable end gives a 1-D
// search over total length; two give a 2-D search over (5' ext, 3' ext) with
// the anchor fixed in reference coordinates. Every candidate is scored on the
// whole assembled primer and the winner is picked by a deterministic reduce:
//
//	higher score → closer to the ideal length(s) → shorter → less 5' growth
//
// Candidates are scored concurrently into an index-addressed slice, so the
// result never depends on evaluation order.
package tune

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"primerqc/core/primer"
	"primerqc/core/qcerr"
	"primerqc/core/quality"
	"primerqc/core/seq"
	"primerqc/core/thermo"
)

// DefaultExtensionLimit caps MaxExtension per end to bound search cost.
const DefaultExtensionLimit = 60

// Options controls the search, not its outcome.
type Options struct {
	Workers        int // parallel scorers; <= 0 means GOMAXPROCS
	ExtensionLimit int // per-end cap; <= 0 means DefaultExtensionLimit
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) limit() int {
	if o.ExtensionLimit > 0 {
		return o.ExtensionLimit
	}
	return DefaultExtensionLimit
}

// Result is the tuned primer plus what it took to find it.
type Result struct {
	// Primer is a FixedRange primer on the reference. Its ends carry the
	// extension still unused, so tuning it again is a no-op.
	Primer    primer.Primer
	Placement primer.Placement
	Metrics   quality.Metrics
	Ext5      int // bases added at the 5' end
	Ext3      int // bases added at the 3' end
	Evaluated int // candidates scored
}

// candidate is an extension on the reference-left and reference-right side.
type candidate struct{ left, right int }

// space is the validated search domain for one primer.
type space struct {
	p                 primer.Primer
	nominal           primer.Placement
	maxLeft, maxRight int
	lo, hi            int // total length bounds
}

// Tune searches every admissible end position of p on ref and returns the
// best-scoring primer.
func Tune(p primer.Primer, ref seq.Sequence, ions thermo.Ions, cfg quality.Config, opt Options) (Result, error) {
	if err := ions.Validate(); err != nil {
		return Result{}, err
	}
	sp, err := newSpace(p, ref, opt)
	if err != nil {
		return Result{}, err
	}
	cands := sp.enumerate()

	type scored struct {
		pl primer.Placement
		m  quality.Metrics
	}
	results := make([]scored, len(cands))
	var g errgroup.Group
	g.SetLimit(opt.workers())
	for i, c := range cands {
		g.Go(func() error {
			pl := sp.place(c)
			m, err := quality.Evaluate(pl.Seq(), pl.AnchorIndex(), ions, cfg)
			if err != nil {
				return err
			}
			results[i] = scored{pl: pl, m: m}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	best := 0
	for i := 1; i < len(results); i++ {
		a, b := results[i], results[best]
		if better(cfg, a.m, b.m, sp.ext5(cands[i]), sp.ext5(cands[best])) {
			best = i
		}
	}

	win := results[best]
	e5, e3 := sp.ext5(cands[best]), sp.ext3(cands[best])
	out := p
	out.Loc = win.pl.Range()
	out.End5.MaxExtension = remaining(p.End5, e5)
	out.End3.MaxExtension = remaining(p.End3, e3)
	return Result{
		Primer:    out,
		Placement: win.pl,
		Metrics:   win.m,
		Ext5:      e5,
		Ext3:      e3,
		Evaluated: len(cands),
	}, nil
}

// Candidates lists every placement Tune would score, in evaluation order.
func Candidates(p primer.Primer, ref seq.Sequence, opt Options) ([]primer.Placement, error) {
	sp, err := newSpace(p, ref, opt)
	if err != nil {
		return nil, err
	}
	cands := sp.enumerate()
	out := make([]primer.Placement, len(cands))
	for i, c := range cands {
		out[i] = sp.place(c)
	}
	return out, nil
}

// better orders candidates: score, then ideal-length distance, then total
// length, then 5' extension. It is a strict total order over distinct
// candidates of one search.
func better(cfg quality.Config, a, b quality.Metrics, a5, b5 int) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	da, db := cfg.IdealDistance(a.Length, a.AnchorIndex), cfg.IdealDistance(b.Length, b.AnchorIndex)
	if da != db {
		return da < db
	}
	if a.Length != b.Length {
		return a.Length < b.Length
	}
	return a5 < b5
}

func newSpace(p primer.Primer, ref seq.Sequence, opt Options) (space, error) {
	limit := opt.limit()
	for _, e := range []struct {
		name string
		end  primer.End
	}{{"5'", p.End5}, {"3'", p.End3}} {
		if !e.end.Tunable {
			continue
		}
		if e.end.MaxExtension < 0 {
			return space{}, qcerr.New(qcerr.TunableRangeEmpty, "%s extension %d is negative", e.name, e.end.MaxExtension)
		}
		if e.end.MaxExtension > limit {
			return space{}, qcerr.New(qcerr.ExtensionLimitExceeded,
				"%s extension %d exceeds limit %d", e.name, e.end.MaxExtension, limit)
		}
	}
	if p.MaxLength > 0 && p.MaxLength < p.MinLength {
		return space{}, qcerr.New(qcerr.TunableRangeEmpty, "max length %d < min length %d", p.MaxLength, p.MinLength)
	}

	pl, err := p.Resolve(ref)
	if err != nil {
		return space{}, err
	}
	n := pl.Length
	L := ref.Len()

	ext5, ext3 := extension(p.End5), extension(p.End3)
	extLeft, extRight := ext5, ext3
	if pl.Strand == primer.Reverse {
		extLeft, extRight = ext3, ext5
	}
	flankLeft, flankRight := pl.Start, L-pl.End()
	if ref.IsCircular() {
		flankLeft, flankRight = L-n, L-n
	}
	sp := space{
		p:        p,
		nominal:  pl,
		maxLeft:  min(extLeft, flankLeft),
		maxRight: min(extRight, flankRight),
	}
	avail := sp.maxLeft + sp.maxRight
	if ref.IsCircular() {
		avail = min(avail, L-n)
	}

	if n+avail < p.MinLength {
		return space{}, qcerr.New(qcerr.InsufficientFlankingSequence,
			"%d nt + %d nt of usable flank cannot reach min length %d", n, avail, p.MinLength)
	}
	if p.MaxLength > 0 && p.MaxLength < n {
		return space{}, qcerr.New(qcerr.TunableRangeEmpty, "max length %d < nominal length %d", p.MaxLength, n)
	}
	sp.lo = max(p.MinLength, n)
	sp.hi = n + avail
	if p.MaxLength > 0 {
		sp.hi = min(sp.hi, p.MaxLength)
	}
	return sp, nil
}

// enumerate lists candidates in (left, right) order; the result is never
// empty once newSpace succeeded.
func (sp space) enumerate() []candidate {
	n := sp.nominal.Length
	L := sp.nominal.Ref.Len()
	var out []candidate
	for l := 0; l <= sp.maxLeft; l++ {
		for r := 0; r <= sp.maxRight; r++ {
			total := n + l + r
			if total < sp.lo || total > sp.hi || total > L {
				continue
			}
			out = append(out, candidate{left: l, right: r})
		}
	}
	return out
}

// place applies a candidate to the nominal placement.
func (sp space) place(c candidate) primer.Placement {
	pl := sp.nominal
	pl.Start -= c.left
	pl.Length += c.left + c.right
	if pl.Start < 0 {
		// Only reachable on circular references.
		L := pl.Ref.Len()
		pl.Start += L
		if pl.Anchor >= 0 {
			pl.Anchor += L
		}
	}
	return pl
}

func (sp space) ext5(c candidate) int {
	if sp.nominal.Strand == primer.Reverse {
		return c.right
	}
	return c.left
}

func (sp space) ext3(c candidate) int {
	if sp.nominal.Strand == primer.Reverse {
		return c.left
	}
	return c.right
}

func extension(e primer.End) int {
	if !e.IsTunable() {
		return 0
	}
	return e.MaxExtension
}

func remaining(e primer.End, used int) int {
	if !e.Tunable {
		return e.MaxExtension
	}
	return e.MaxExtension - used
}
