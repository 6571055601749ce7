// internal/server/dto.go
package server

import (
	"strconv"

	"primerqc/core/seq"
	"primerqc/internal/config"
	"primerqc/internal/panel"
	"primerqc/pkg/api"
)

// IonsDTO overrides the server's default solution, field by field, in mM
// (nM for primer).
type IonsDTO struct {
	Na       *float64 `json:"na_mm" validate:"omitempty,gte=0"`
	K        *float64 `json:"k_mm" validate:"omitempty,gte=0"`
	Mg       *float64 `json:"mg_mm" validate:"omitempty,gte=0"`
	DNTP     *float64 `json:"dntp_mm" validate:"omitempty,gte=0"`
	PrimerNM *float64 `json:"primer_nm" validate:"omitempty,gt=0"`
}

func (d *IonsDTO) apply(base config.Ions) config.Ions {
	if d == nil {
		return base
	}
	for _, f := range []struct {
		src *float64
		dst *float64
	}{
		{d.Na, &base.Na}, {d.K, &base.K}, {d.Mg, &base.Mg}, {d.DNTP, &base.DNTP}, {d.PrimerNM, &base.PrimerNM},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	return base
}

type PrimerDTO struct {
	Name         string `json:"name"`
	Seq          string `json:"seq" validate:"required"`
	Ext5         int    `json:"ext_5p" validate:"gte=0"`
	Ext3         int    `json:"ext_3p" validate:"gte=0"`
	AnchorOffset int    `json:"anchor_offset" validate:"gte=0"`
}

type TemplateDTO struct {
	Seq      string `json:"seq" validate:"required"`
	Circular bool   `json:"circular"`
}

func (t TemplateDTO) parse() (seq.Sequence, error) {
	topo := seq.Linear
	if t.Circular {
		topo = seq.Circular
	}
	return seq.Parse(t.Seq, topo)
}

type TmRequest struct {
	Primers []PrimerDTO `json:"primers" validate:"required,min=1,dive"`
	Ions    *IonsDTO    `json:"ions"`
}

// ScoreRequest scores primers as given. Without a template each primer is
// scored on its own sequence.
type ScoreRequest struct {
	Primers       []PrimerDTO  `json:"primers" validate:"required,min=1,dive"`
	Template      *TemplateDTO `json:"template"`
	MaxMismatches int          `json:"max_mismatches" validate:"gte=0,lte=5"`
	Ions          *IonsDTO     `json:"ions"`
}

type TuneRequest struct {
	Primers       []PrimerDTO `json:"primers" validate:"required,min=1,dive"`
	Template      TemplateDTO `json:"template"`
	MaxMismatches int         `json:"max_mismatches" validate:"gte=0,lte=5"`
	Ions          *IonsDTO    `json:"ions"`
}

type CloneRequest struct {
	Vector         string   `json:"vector" validate:"required"`
	Insert         string   `json:"insert" validate:"required"`
	InsertionPoint *int     `json:"insertion_point" validate:"required,gte=0"`
	OverlapTarget  int      `json:"overlap_target" validate:"omitempty,gte=1"`
	Verify         bool     `json:"verify"`
	IncludeProduct bool     `json:"include_product"`
	Ions           *IonsDTO `json:"ions"`
}

type ScoreResponse struct {
	RequestID string          `json:"request_id"`
	Results   []api.MetricsV1 `json:"results"`
}

type TuneResponse struct {
	RequestID string             `json:"request_id"`
	Results   []api.TuneResultV1 `json:"results"`
}

type TmResponse struct {
	RequestID string     `json:"request_id"`
	Results   []api.TmV1 `json:"results"`
}

type RepeatsResponse struct {
	RequestID string               `json:"request_id"`
	Results   []api.RepeatReportV1 `json:"results"`
}

// entries turns DTOs into panel entries; every primer must be valid DNA.
func entries(ps []PrimerDTO) ([]panel.Entry, error) {
	out := make([]panel.Entry, 0, len(ps))
	for i, p := range ps {
		s, err := seq.Parse(p.Seq, seq.Linear)
		if err != nil {
			return nil, err
		}
		name := p.Name
		if name == "" {
			name = "primer" + strconv.Itoa(i+1)
		}
		out = append(out, panel.Entry{
			Line: i + 1, Name: name, Seq: s, Template: panel.AnyTemplate,
			Ext5: p.Ext5, Ext3: p.Ext3, AnchorOffset: p.AnchorOffset,
		})
	}
	return out, nil
}
