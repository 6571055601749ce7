// internal/output/tsv.go
package output

import (
	"fmt"
	"strconv"
	"strings"

	"primerqc/pkg/api"
)

// Canonical TSV headers, one per record type. Keep these stable; scripts
// parse them.
const (
	MetricsHeader = "name\tseq\tlength\tarm_length\ttm_c\tgc_percent\tgc_clamp\tthree_prime_dg\trepeats\tdimer_risk\ttm_score\tgc_score\tlength_score\tstability_score\trepeat_score\tdimer_score\tscore\terror"
	TuneHeader    = "name\tstrand\tstart\tend\tlength\tanchor\text_5p\text_3p\tevaluated\tseq\ttm_c\tgc_percent\tscore"
	TmHeader      = "name\tseq\ttm_c\tdh_kcal\tds_cal\tmonovalent_mm"
	RepeatsHeader = "name\tkind\tstart\tlength"
)

// TSV renders one wire record as its header and data lines (no trailing
// newlines). A cloning pair renders as one tune line per primer; a repeat
// report as one line per repeat.
func TSV(v any) (header string, rows []string, err error) {
	switch r := v.(type) {
	case api.MetricsV1:
		return MetricsHeader, []string{metricsRow(r)}, nil
	case api.TuneResultV1:
		return TuneHeader, []string{tuneRow(r)}, nil
	case api.CloningPairV1:
		for _, p := range r.Primers {
			rows = append(rows, tuneRow(p))
		}
		return TuneHeader, rows, nil
	case api.TmV1:
		return TmHeader, []string{join(r.Name, r.Seq, f2(r.TmC), f2(r.DeltaH), f2(r.DeltaS), f2(r.MonovalentMM))}, nil
	case api.RepeatReportV1:
		for _, o := range r.Repeats {
			rows = append(rows, join(r.Name, o.Kind, strconv.Itoa(o.Start), strconv.Itoa(o.Length)))
		}
		return RepeatsHeader, rows, nil
	default:
		return "", nil, fmt.Errorf("no TSV layout for %T", v)
	}
}

func metricsRow(m api.MetricsV1) string {
	return join(
		m.Name, m.Seq, strconv.Itoa(m.Length), strconv.Itoa(m.ArmLength),
		f2(m.TmC), f2(m.GCPercent), strconv.Itoa(m.GCClamp), f2(m.ThreePrimeDG),
		strconv.Itoa(len(m.Repeats)), f3(m.DimerRisk),
		f3(m.Scores.Tm), f3(m.Scores.GC), f3(m.Scores.Length),
		f3(m.Scores.Stability), f3(m.Scores.Repeats), f3(m.Scores.Dimer),
		f2(m.Score), m.Error,
	)
}

func tuneRow(r api.TuneResultV1) string {
	anchor := ""
	if r.Placement.Anchor != nil {
		anchor = strconv.Itoa(*r.Placement.Anchor)
	}
	return join(
		r.Name, r.Placement.Strand,
		strconv.Itoa(r.Placement.Start), strconv.Itoa(r.Placement.End), strconv.Itoa(r.Placement.Length),
		anchor, strconv.Itoa(r.Ext5), strconv.Itoa(r.Ext3), strconv.Itoa(r.Evaluated),
		r.Metrics.Seq, f2(r.Metrics.TmC), f2(r.Metrics.GCPercent), f2(r.Metrics.Score),
	)
}

func join(cols ...string) string { return strings.Join(cols, "\t") }

func f2(x float64) string { return strconv.FormatFloat(x, 'f', 2, 64) }
func f3(x float64) string { return strconv.FormatFloat(x, 'f', 3, 64) }
