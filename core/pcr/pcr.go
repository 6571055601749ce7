// core/pcr/pcr.go
// In-silico amplification with tailed primers.
//
// A primer binds where its longest exactly matching 3' portion (at least
// MinAnneal nt) occurs on the template; bases 5' of that portion are a tail
// and end up in the product verbatim. Forward primers bind the top strand,
// reverse primers the bottom strand. Circular templates are searched across
// the origin, and a pair whose reverse site ends at or before the forward
// site wraps through the origin.
package pcr

import (
	"sort"

	"primerqc/core/primer"
	"primerqc/core/qcerr"
	"primerqc/core/seq"
)

// DefaultMinAnneal is the shortest 3' portion counted as binding.
const DefaultMinAnneal = 12

// Config holds amplification parameters.
type Config struct {
	MinAnneal  int // <= 0 means DefaultMinAnneal
	MaxProduct int // 0 = unbounded
}

func (c Config) minAnneal() int {
	if c.MinAnneal > 0 {
		return c.MinAnneal
	}
	return DefaultMinAnneal
}

// Site is where the annealed 3' portion of a primer sits on the template,
// always in top-strand coordinates: [Pos, Pos+Anneal), possibly wrapping on
// a circular template.
type Site struct {
	Pos    int
	Anneal int
}

// Product is one amplicon.
type Product struct {
	Seq    seq.Sequence // top strand 5'→3', tails included
	Start  int          // template span [Start, End) copied into Seq
	End    int          // End <= Start means the span wraps the origin
	Length int
	Fwd    Site
	Rev    Site
	Wraps  bool
}

// Bind returns the sites of the longest exactly matching 3' portion of p on
// the given strand of template, ordered by position. It returns nil when no
// portion of at least minAnneal nt matches.
func Bind(template, p seq.Sequence, strand primer.Strand, minAnneal int) []Site {
	ps := p.String()
	L := template.Len()
	for k := min(len(ps), L); k >= max(minAnneal, 1); k-- {
		pat := ps[len(ps)-k:]
		if strand == primer.Reverse {
			pat = seq.RevCompString(pat)
		}
		ms := primer.FindMatches(searchText(template, k), pat, 0, 0, 0)
		if len(ms) == 0 {
			continue
		}
		out := make([]Site, 0, len(ms))
		for _, m := range ms {
			if m.Pos < L {
				out = append(out, Site{Pos: m.Pos, Anneal: k})
			}
		}
		return out
	}
	return nil
}

// Amplify simulates PCR of template with fwd and rev (both 5'→3') and
// returns the shortest product. When several pairings give the same length
// the leftmost forward site wins.
func Amplify(template, fwd, rev seq.Sequence, cfg Config) (Product, error) {
	k := cfg.minAnneal()
	if template.Len() < k {
		return Product{}, qcerr.New(qcerr.SequenceTooShort, "template of %d nt shorter than %d nt anneal", template.Len(), k)
	}
	for _, p := range []struct {
		name string
		s    seq.Sequence
	}{{"forward", fwd}, {"reverse", rev}} {
		if p.s.Len() < k {
			return Product{}, qcerr.New(qcerr.SequenceTooShort, "%s primer of %d nt shorter than %d nt anneal", p.name, p.s.Len(), k)
		}
	}

	fs := Bind(template, fwd, primer.Forward, k)
	if len(fs) == 0 {
		return Product{}, qcerr.New(qcerr.NoMatch, "forward primer %s does not bind", fwd)
	}
	rs := Bind(template, rev, primer.Reverse, k)
	if len(rs) == 0 {
		return Product{}, qcerr.New(qcerr.NoMatch, "reverse primer %s does not bind", rev)
	}

	cands := pairUp(template, fs, rs)
	if cfg.MaxProduct > 0 {
		tails := fwd.Len() - fs[0].Anneal + rev.Len() - rs[0].Anneal
		cands = filter(cands, func(c span) bool { return c.length+tails <= cfg.MaxProduct })
	}
	if len(cands) == 0 {
		return Product{}, qcerr.New(qcerr.NoProduct, "primers bind but do not face each other")
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].length != cands[j].length {
			return cands[i].length < cands[j].length
		}
		return cands[i].f.Pos < cands[j].f.Pos
	})
	return build(template, fwd, rev, cands[0]), nil
}

// span is a forward site paired with a downstream reverse site.
type span struct {
	f, r   Site
	length int // template bases copied
}

func pairUp(template seq.Sequence, fs, rs []Site) []span {
	L := template.Len()
	var out []span
	for _, f := range fs {
		for _, r := range rs {
			end := r.Pos + r.Anneal
			n := end - f.Pos
			if template.IsCircular() {
				n = ((n % L) + L) % L
				if n == 0 {
					n = L
				}
			}
			if n < max(f.Anneal, r.Anneal) {
				continue
			}
			out = append(out, span{f: f, r: r, length: n})
		}
	}
	return out
}

func build(template, fwd, rev seq.Sequence, c span) Product {
	body, _ := template.Window(c.f.Pos, c.length)
	fs, rs := fwd.String(), seq.RevCompString(rev.String())
	out := seq.LinearOf(fs[:len(fs)-c.f.Anneal] + body.String() + rs[c.r.Anneal:])
	L := template.Len()
	end := c.f.Pos + c.length
	if end > L {
		end -= L
	}
	return Product{
		Seq:    out,
		Start:  c.f.Pos,
		End:    end,
		Length: out.Len(),
		Fwd:    c.f,
		Rev:    c.r,
		Wraps:  c.f.Pos+c.length > L,
	}
}

func filter(in []span, keep func(span) bool) []span {
	out := in[:0]
	for _, c := range in {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// searchText is the template, extended by its first k−1 bases when circular
// so sites across the origin are found once.
func searchText(template seq.Sequence, k int) string {
	s := template.String()
	if !template.IsCircular() || k <= 1 {
		return s
	}
	return s + s[:min(k-1, len(s))]
}
