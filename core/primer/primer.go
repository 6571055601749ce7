// core/primer/primer.go
// Primer descriptors and their resolution against a reference.
//
// A primer is located either by an explicit range on the reference
// (FixedRange) or by its own sequence, found wherever it binds best
// (FloatingMatch). Both resolve to a Placement, which is the only thing the
// analyzers and the tuner look at.
package primer

import (
	"primerqc/core/qcerr"
	"primerqc/core/seq"
)

// Strand the primer anneals to. Forward primers read the reference
// left→right; reverse primers are the reverse complement of their site.
type Strand int

const (
	Forward Strand = iota
	Reverse
)

func (s Strand) String() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// End describes one primer terminus.
type End struct {
	Tunable      bool
	MaxExtension int // nt available beyond the nominal boundary
}

// IsTunable reports whether the end can move; an end flagged tunable with
// no extension cannot.
func (e End) IsTunable() bool { return e.Tunable && e.MaxExtension > 0 }

// Locator is FixedRange or FloatingMatch.
type Locator interface {
	isLocator()
}

// FixedRange is a site on the reference: [Start, End) with End exclusive. On
// a circular reference End <= Start wraps through the origin. Anchor is a
// reference index read only for anchored primers; it marks the seam between
// bases Anchor−1 and Anchor.
type FixedRange struct {
	Start, End int
	Strand     Strand
	Anchor     int
}

// FloatingMatch is located by sequence. AnchorOffset counts bases from the
// primer's 5' end and is read only for anchored primers.
type FloatingMatch struct {
	Seq           seq.Sequence
	MaxMismatches int
	AnchorOffset  int
}

func (FixedRange) isLocator()    {}
func (FloatingMatch) isLocator() {}

// Primer is an immutable descriptor. MinLength/MaxLength of 0 mean
// unconstrained. Anchored marks a junction (glue) primer: both ends must be
// flagged tunable and the locator's anchor is required.
type Primer struct {
	Name      string
	Loc       Locator
	End5      End
	End3      End
	Anchored  bool
	MinLength int
	MaxLength int
}

// Junction reports whether p is an anchored glue primer. It does not depend
// on the extension left on either end, so a tuned junction primer keeps
// scoring per half.
func (p Primer) Junction() bool { return p.Anchored }

// Placement is a primer resolved on a reference.
type Placement struct {
	Ref    seq.Sequence
	Strand Strand
	Start  int // 0 <= Start < Ref.Len()
	Length int
	// Anchor is the seam in unwrapped reference coordinates,
	// Start < Anchor < Start+Length, or -1.
	Anchor int
}

// End returns Start+Length; it may exceed Ref.Len() on circular references.
func (pl Placement) End() int { return pl.Start + pl.Length }

// Seq returns the primer sequence 5'→3'.
func (pl Placement) Seq() seq.Sequence {
	w, _ := pl.Ref.Window(pl.Start, pl.Length)
	if pl.Strand == Reverse {
		return w.RevComp()
	}
	return w
}

// AnchorIndex is the number of primer bases 5' of the anchor, or -1.
func (pl Placement) AnchorIndex() int {
	if pl.Anchor < 0 {
		return -1
	}
	if pl.Strand == Reverse {
		return pl.End() - pl.Anchor
	}
	return pl.Anchor - pl.Start
}

// Range converts the placement back to a FixedRange on its reference.
func (pl Placement) Range() FixedRange {
	end := pl.End()
	if end > pl.Ref.Len() {
		end -= pl.Ref.Len()
	}
	a := pl.Anchor
	if a >= 0 {
		a %= pl.Ref.Len()
	}
	return FixedRange{Start: pl.Start, End: end, Strand: pl.Strand, Anchor: a}
}

// Resolve locates p on ref.
func (p Primer) Resolve(ref seq.Sequence) (Placement, error) {
	if p.Anchored && !(p.End5.Tunable && p.End3.Tunable) {
		return Placement{}, qcerr.New(qcerr.AnchorOutOfRange, "primer %q is anchored but not tunable at both ends", p.Name)
	}
	switch loc := p.Loc.(type) {
	case FixedRange:
		return p.resolveFixed(ref, loc)
	case FloatingMatch:
		return p.resolveFloating(ref, loc)
	default:
		return Placement{}, qcerr.New(qcerr.NoMatch, "primer %q has no locator", p.Name)
	}
}

func (p Primer) resolveFixed(ref seq.Sequence, r FixedRange) (Placement, error) {
	L := ref.Len()
	if r.Start < 0 || r.Start >= L || r.End < 0 || r.End > L {
		return Placement{}, qcerr.New(qcerr.SequenceTooShort,
			"range [%d,%d) outside reference of %d nt", r.Start, r.End, L)
	}
	n := r.End - r.Start
	if n <= 0 {
		if !ref.IsCircular() {
			return Placement{}, qcerr.New(qcerr.SequenceTooShort, "empty range [%d,%d)", r.Start, r.End)
		}
		n += L
	}
	pl := Placement{Ref: ref, Strand: r.Strand, Start: r.Start, Length: n, Anchor: -1}
	if p.Junction() {
		a := r.Anchor
		if ref.IsCircular() && a < r.Start {
			a += L
		}
		if a <= pl.Start || a >= pl.End() {
			return Placement{}, qcerr.New(qcerr.AnchorOutOfRange,
				"anchor %d not strictly inside [%d,%d)", r.Anchor, r.Start, r.End)
		}
		pl.Anchor = a
	}
	return pl, nil
}

func (p Primer) resolveFloating(ref seq.Sequence, f FloatingMatch) (Placement, error) {
	if f.Seq.Len() > ref.Len() {
		return Placement{}, qcerr.New(qcerr.SequenceTooShort,
			"primer of %d nt longer than reference of %d nt", f.Seq.Len(), ref.Len())
	}
	h := BestHit(ref, f.Seq, f.MaxMismatches)
	if !h.Found {
		return Placement{}, qcerr.New(qcerr.NoMatch, "primer %q does not bind the reference", p.Name)
	}
	n := f.Seq.Len()
	pl := Placement{Ref: ref, Strand: h.Strand, Start: h.Pos, Length: n, Anchor: -1}
	if p.Junction() {
		if f.AnchorOffset <= 0 || f.AnchorOffset >= n {
			return Placement{}, qcerr.New(qcerr.AnchorOutOfRange,
				"anchor offset %d not strictly inside primer of %d nt", f.AnchorOffset, n)
		}
		if h.Strand == Reverse {
			pl.Anchor = pl.End() - f.AnchorOffset
		} else {
			pl.Anchor = pl.Start + f.AnchorOffset
		}
	}
	return pl, nil
}
