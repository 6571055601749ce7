// Package pretty renders wire records as annotated ASCII blocks for a
// terminal. Every line starts with "# " so the output stays comment-safe
// when mixed into other text.
package pretty

import (
	"fmt"
	"math"
	"strings"

	"primerqc/pkg/api"
)

// Options control the rendering.
type Options struct {
	BarWidth int // sub-score bar width; <= 0 means 20

	// Glyphs
	ArmGlyph    string // homology arm of a junction primer, default "~"
	AnchorGlyph string // the seam itself, default "|"
	ExtGlyph    string // bases added by tuning, default "+"
	RepeatGlyph string // repeat spans, default "^"
	BarGlyph    string // default "#"
	DotGlyph    string // default "."
}

// DefaultOptions is the look used by the "pretty" output format.
var DefaultOptions = Options{
	BarWidth:    20,
	ArmGlyph:    "~",
	AnchorGlyph: "|",
	ExtGlyph:    "+",
	RepeatGlyph: "^",
	BarGlyph:    "#",
	DotGlyph:    ".",
}

const (
	linePrefix = "# "
	prefix5    = "5'-"
	suffix3    = "-3'"
)

func (o Options) withDefaults() Options {
	d := DefaultOptions
	if o.BarWidth > 0 {
		d.BarWidth = o.BarWidth
	}
	for _, g := range []struct{ src, dst *string }{
		{&o.ArmGlyph, &d.ArmGlyph}, {&o.AnchorGlyph, &d.AnchorGlyph}, {&o.ExtGlyph, &d.ExtGlyph},
		{&o.RepeatGlyph, &d.RepeatGlyph}, {&o.BarGlyph, &d.BarGlyph}, {&o.DotGlyph, &d.DotGlyph},
	} {
		if *g.src != "" {
			*g.dst = *g.src
		}
	}
	return d
}

// Render dispatches on the record type.
func Render(v any, opt Options) (string, error) {
	switch r := v.(type) {
	case api.MetricsV1:
		return Metrics(r, opt), nil
	case api.TuneResultV1:
		return Tune(r, opt), nil
	case api.CloningPairV1:
		return CloningPair(r, opt), nil
	case api.TmV1:
		return Tm(r), nil
	case api.RepeatReportV1:
		return Repeats(r, opt), nil
	default:
		return "", fmt.Errorf("no pretty layout for %T", v)
	}
}

// Metrics prints the primer, its headline numbers and one bar per
// sub-score.
func Metrics(m api.MetricsV1, opt Options) string {
	opt = opt.withDefaults()
	var b strings.Builder
	if m.Error != "" {
		fmt.Fprintf(&b, "%s%s  error: %s\n#\n", linePrefix, m.Name, m.Error)
		return b.String()
	}
	fmt.Fprintf(&b, "%s%s  %d nt  score %.2f\n", linePrefix, m.Name, m.Length, m.Score)
	writeSeq(&b, m.Seq)
	if m.ArmLength > 0 {
		writeTrack(&b, armTrack(len(m.Seq), m.ArmLength, opt))
	}
	metricsBody(&b, m, opt)
	b.WriteString("#\n")
	return b.String()
}

func metricsBody(b *strings.Builder, m api.MetricsV1, opt Options) {
	fmt.Fprintf(b, "%sTm %.2f  GC %.1f%%  clamp %d  3'dG %.2f  dimer %.3f  repeats %d\n",
		linePrefix, m.TmC, m.GCPercent, m.GCClamp, m.ThreePrimeDG, m.DimerRisk, len(m.Repeats))
	for _, s := range []struct {
		name string
		v    float64
	}{
		{"tm", m.Scores.Tm}, {"gc", m.Scores.GC}, {"length", m.Scores.Length},
		{"stability", m.Scores.Stability}, {"repeats", m.Scores.Repeats}, {"dimer", m.Scores.Dimer},
	} {
		fmt.Fprintf(b, "%s  %-9s %s %.3f\n", linePrefix, s.name, bar(s.v, opt), s.v)
	}
}

// Tune prints a tuned primer with its placement and the bases tuning added.
func Tune(r api.TuneResultV1, opt Options) string {
	opt = opt.withDefaults()
	m := r.Metrics
	var b strings.Builder
	if m.Error != "" {
		fmt.Fprintf(&b, "%s%s  error: %s\n#\n", linePrefix, r.Name, m.Error)
		return b.String()
	}
	pl := r.Placement
	if pl.Strand == "" {
		// not tuned; nothing to place
		fmt.Fprintf(&b, "%s%s  %d nt  score %.2f  (fixed)\n", linePrefix, r.Name, m.Length, m.Score)
	} else {
		fmt.Fprintf(&b, "%s%s  (%s) %d..%d  %d nt  score %.2f  evaluated %d\n",
			linePrefix, r.Name, pl.Strand, pl.Start, pl.End, m.Length, m.Score, r.Evaluated)
	}
	writeSeq(&b, m.Seq)
	if m.ArmLength > 0 {
		writeTrack(&b, armTrack(len(m.Seq), m.ArmLength, opt))
	}
	if r.Ext5 > 0 || r.Ext3 > 0 {
		t := []byte(strings.Repeat(" ", len(m.Seq)))
		for i := 0; i < r.Ext5 && i < len(t); i++ {
			t[i] = opt.ExtGlyph[0]
		}
		for i := max(0, len(t)-r.Ext3); i < len(t); i++ {
			t[i] = opt.ExtGlyph[0]
		}
		writeTrack(&b, fmt.Sprintf("%s  (5' +%d, 3' +%d)", strings.TrimRight(string(t), " "), r.Ext5, r.Ext3))
	}
	metricsBody(&b, m, opt)
	b.WriteString("#\n")
	return b.String()
}

// CloningPair prints the design summary followed by the four primers.
func CloningPair(p api.CloningPairV1, opt Options) string {
	var b strings.Builder
	verified := "no"
	if p.Verified {
		verified = "yes"
	}
	fmt.Fprintf(&b, "%sinsert %d nt at %d  overlap %d  product %d nt (circular)  verified %s\n",
		linePrefix, p.InsertLength, p.InsertionPoint, p.OverlapTarget, p.ProductLength, verified)
	if p.RunID != "" {
		fmt.Fprintf(&b, "%srun %s\n", linePrefix, p.RunID)
	}
	b.WriteString("#\n")
	for _, r := range p.Primers {
		b.WriteString(Tune(r, opt))
	}
	return b.String()
}

// Tm prints a melting-temperature report on two lines.
func Tm(t api.TmV1) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s  Tm %.2f °C  dH %.2f kcal/mol  dS %.2f cal/(mol·K)  [Mon] %.2f mM\n",
		linePrefix, t.Name, t.TmC, t.DeltaH, t.DeltaS, t.MonovalentMM)
	writeSeq(&b, t.Seq)
	b.WriteString("#\n")
	return b.String()
}

// Repeats underlines each repeat below the sequence, one track per repeat.
func Repeats(r api.RepeatReportV1, opt Options) string {
	opt = opt.withDefaults()
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s  %d repeats\n", linePrefix, r.Name, r.Count)
	writeSeq(&b, r.Seq)
	for _, o := range r.Repeats {
		t := strings.Repeat(" ", o.Start) + strings.Repeat(opt.RepeatGlyph, o.Length)
		writeTrack(&b, fmt.Sprintf("%s  %s", t, o.Kind))
	}
	b.WriteString("#\n")
	return b.String()
}

func writeSeq(b *strings.Builder, s string) {
	fmt.Fprintf(b, "%s%s%s%s\n", linePrefix, prefix5, s, suffix3)
}

// writeTrack prints t aligned under the bases of the sequence line.
func writeTrack(b *strings.Builder, t string) {
	fmt.Fprintf(b, "%s%s%s\n", linePrefix, strings.Repeat(" ", len(prefix5)), t)
}

// armTrack marks the arm [0, arm) and the seam between arm and body.
func armTrack(n, arm int, opt Options) string {
	arm = min(arm, n)
	return strings.Repeat(opt.ArmGlyph, arm) + opt.AnchorGlyph + fmt.Sprintf(" arm %d", arm)
}

func bar(v float64, opt Options) string {
	v = math.Max(0, math.Min(1, v))
	full := int(math.Round(v * float64(opt.BarWidth)))
	return strings.Repeat(opt.BarGlyph, full) + strings.Repeat(opt.DotGlyph, opt.BarWidth-full)
}
