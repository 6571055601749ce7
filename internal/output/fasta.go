package output

import (
	"fmt"

	"primerqc/pkg/api"
)

// FASTA renders the primer or product sequences of a wire record as FASTA
// text. Records without a sequence render as "".
func FASTA(v any) (string, error) {
	switch r := v.(type) {
	case api.MetricsV1:
		return record(r.Name, fmt.Sprintf("len=%d score=%.2f", r.Length, r.Score), r.Seq), nil
	case api.TuneResultV1:
		return tuneRecord(r), nil
	case api.CloningPairV1:
		var s string
		for _, p := range r.Primers {
			s += tuneRecord(p)
		}
		if r.Product != "" {
			s += record("product", fmt.Sprintf("len=%d topology=circular", r.ProductLength), r.Product)
		}
		return s, nil
	case api.TmV1:
		return record(r.Name, fmt.Sprintf("tm=%.2f", r.TmC), r.Seq), nil
	default:
		return "", fmt.Errorf("no FASTA layout for %T", v)
	}
}

func tuneRecord(r api.TuneResultV1) string {
	desc := fmt.Sprintf("strand=%s start=%d end=%d len=%d score=%.2f",
		r.Placement.Strand, r.Placement.Start, r.Placement.End, r.Placement.Length, r.Metrics.Score)
	return record(r.Name, desc, r.Metrics.Seq)
}

func record(id, desc, s string) string {
	if s == "" {
		return ""
	}
	if id == "" {
		id = "seq"
	}
	return ">" + id + " " + desc + "\n" + s + "\n"
}
