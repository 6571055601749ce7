// internal/output/api.go
package output

import (
	"primerqc/core/cloning"
	"primerqc/core/primer"
	"primerqc/core/quality"
	"primerqc/core/repeats"
	"primerqc/core/thermo"
	"primerqc/core/tune"
	"primerqc/pkg/api"
)

// ToMetricsV1 converts scorer output to the stable wire type.
func ToMetricsV1(name string, m quality.Metrics) api.MetricsV1 {
	out := api.MetricsV1{
		Name:         name,
		Seq:          m.Seq,
		Length:       m.Length,
		TmC:          m.TmC,
		GCPercent:    m.GCPercent,
		GCClamp:      m.GCClamp,
		ThreePrimeDG: m.ThreePrimeDG,
		DimerRisk:    m.DimerRisk,
		Scores: api.ScoresV1{
			Tm:        m.TmScore,
			GC:        m.GCScore,
			Length:    m.LengthScore,
			Stability: m.StabilityScore,
			Repeats:   m.RepeatScore,
			Dimer:     m.DimerScore,
		},
		Score: m.Score,
	}
	if m.AnchorIndex > 0 {
		out.ArmLength = m.AnchorIndex
	}
	out.Repeats = toRepeatsV1(m.Repeats)
	return out
}

// ToRepeatReportV1 converts a repeat scan of s.
func ToRepeatReportV1(name, s string, occ []repeats.Occurrence) api.RepeatReportV1 {
	rs := toRepeatsV1(occ)
	if rs == nil {
		rs = []api.RepeatV1{}
	}
	return api.RepeatReportV1{Name: name, Seq: s, Count: len(occ), Repeats: rs}
}

func toRepeatsV1(occ []repeats.Occurrence) []api.RepeatV1 {
	var out []api.RepeatV1
	for _, r := range occ {
		out = append(out, api.RepeatV1{Kind: r.Category.String(), Start: r.Start, Length: r.Length})
	}
	return out
}

// ToPlacementV1 reports pl with End wrapped back onto the reference.
func ToPlacementV1(pl primer.Placement) api.PlacementV1 {
	r := pl.Range()
	out := api.PlacementV1{Strand: r.Strand.String(), Start: r.Start, End: r.End, Length: pl.Length}
	if r.Anchor >= 0 {
		a := r.Anchor
		out.Anchor = &a
	}
	return out
}

// ToTuneResultV1 converts a tuned primer.
func ToTuneResultV1(r tune.Result) api.TuneResultV1 {
	return api.TuneResultV1{
		Name:       r.Primer.Name,
		Placement:  ToPlacementV1(r.Placement),
		Ext5:       r.Ext5,
		Ext3:       r.Ext3,
		Remaining5: r.Primer.End5.MaxExtension,
		Remaining3: r.Primer.End3.MaxExtension,
		Evaluated:  r.Evaluated,
		Metrics:    ToMetricsV1(r.Primer.Name, r.Metrics),
	}
}

// ToCloningPairV1 converts a generated primer set. The product sequence is
// included only when withProduct is set; plasmids are long.
func ToCloningPairV1(p cloning.Pair, overlapTarget int, verified, withProduct bool) api.CloningPairV1 {
	out := api.CloningPairV1{
		InsertionPoint: p.InsertionPoint,
		OverlapTarget:  overlapTarget,
		InsertLength:   p.InsertLen,
		ProductLength:  p.Product.Len(),
		Verified:       verified,
	}
	if withProduct {
		out.Product = p.Product.String()
	}
	for _, r := range p.Primers() {
		out.Primers = append(out.Primers, ToTuneResultV1(r))
	}
	return out
}

// ToTmV1 converts a duplex calculation.
func ToTmV1(name, s string, r thermo.Result) api.TmV1 {
	return api.TmV1{
		Name:              name,
		Seq:               s,
		TmC:               r.TmC,
		DeltaH:            r.DH_kcal,
		DeltaS:            r.DS_cal,
		MonovalentMM:      r.MonovalentM * 1e3,
		SelfComplementary: r.SelfComplementary,
	}
}
