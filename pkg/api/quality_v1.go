// pkg/api/quality_v1.go
package api

// Stable JSON/JSONL/YAML schema (v1). Keep fields, names, and types stable.
// Add new fields only with ",omitempty".

// RepeatV1 is one repeat occurrence inside a primer.
type RepeatV1 struct {
	Kind   string `json:"kind" yaml:"kind"` // "mono-run" | "di-run" | "k-mer-repeat"
	Start  int    `json:"start" yaml:"start"`
	Length int    `json:"length" yaml:"length"`
}

// ScoresV1 holds the per-metric sub-scores in [0,1].
type ScoresV1 struct {
	Tm        float64 `json:"tm" yaml:"tm"`
	GC        float64 `json:"gc" yaml:"gc"`
	Length    float64 `json:"length" yaml:"length"`
	Stability float64 `json:"stability" yaml:"stability"`
	Repeats   float64 `json:"repeats" yaml:"repeats"`
	Dimer     float64 `json:"dimer" yaml:"dimer"`
}

// MetricsV1 is the quality breakdown of one primer.
type MetricsV1 struct {
	Name         string     `json:"name,omitempty" yaml:"name,omitempty"`
	Seq          string     `json:"seq" yaml:"seq"`
	Length       int        `json:"length" yaml:"length"`
	ArmLength    int        `json:"arm_length,omitempty" yaml:"arm_length,omitempty"` // junction primers only
	TmC          float64    `json:"tm_c" yaml:"tm_c"`
	GCPercent    float64    `json:"gc_percent" yaml:"gc_percent"`
	GCClamp      int        `json:"gc_clamp" yaml:"gc_clamp"`
	ThreePrimeDG float64    `json:"three_prime_dg" yaml:"three_prime_dg"`
	Repeats      []RepeatV1 `json:"repeats,omitempty" yaml:"repeats,omitempty"`
	DimerRisk    float64    `json:"dimer_risk" yaml:"dimer_risk"`
	Scores       ScoresV1   `json:"scores" yaml:"scores"`
	Score        float64    `json:"score" yaml:"score"`
	Error        string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// PlacementV1 locates a primer on its reference. End is exclusive and may be
// smaller than Start on circular references.
type PlacementV1 struct {
	Strand string `json:"strand" yaml:"strand"` // "+" | "-"
	Start  int    `json:"start" yaml:"start"`
	End    int    `json:"end" yaml:"end"`
	Length int    `json:"length" yaml:"length"`
	Anchor *int   `json:"anchor,omitempty" yaml:"anchor,omitempty"`
}

// TuneResultV1 is a tuned primer.
type TuneResultV1 struct {
	Name       string      `json:"name,omitempty" yaml:"name,omitempty"`
	Placement  PlacementV1 `json:"placement" yaml:"placement"`
	Ext5       int         `json:"ext_5p" yaml:"ext_5p"`
	Ext3       int         `json:"ext_3p" yaml:"ext_3p"`
	Remaining5 int         `json:"remaining_5p" yaml:"remaining_5p"`
	Remaining3 int         `json:"remaining_3p" yaml:"remaining_3p"`
	Evaluated  int         `json:"evaluated" yaml:"evaluated"`
	Metrics    MetricsV1   `json:"metrics" yaml:"metrics"`
}

// CloningPairV1 is a full overlap-cloning design.
type CloningPairV1 struct {
	RunID          string         `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	InsertionPoint int            `json:"insertion_point" yaml:"insertion_point"`
	OverlapTarget  int            `json:"overlap_target" yaml:"overlap_target"`
	InsertLength   int            `json:"insert_length" yaml:"insert_length"`
	ProductLength  int            `json:"product_length" yaml:"product_length"`
	Product        string         `json:"product,omitempty" yaml:"product,omitempty"`
	Primers        []TuneResultV1 `json:"primers" yaml:"primers"`
	Verified       bool           `json:"verified" yaml:"verified"`
}

// TmV1 is a melting-temperature report.
type TmV1 struct {
	Name              string  `json:"name,omitempty" yaml:"name,omitempty"`
	Seq               string  `json:"seq" yaml:"seq"`
	TmC               float64 `json:"tm_c" yaml:"tm_c"`
	DeltaH            float64 `json:"dh_kcal" yaml:"dh_kcal"`
	DeltaS            float64 `json:"ds_cal" yaml:"ds_cal"`
	MonovalentMM      float64 `json:"monovalent_mm" yaml:"monovalent_mm"`
	SelfComplementary bool    `json:"self_complementary,omitempty" yaml:"self_complementary,omitempty"`
}

// ErrorV1 is the body of every non-2xx HTTP response.
type ErrorV1 struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// RepeatReportV1 lists the repeats found in one sequence.
type RepeatReportV1 struct {
	Name    string     `json:"name,omitempty" yaml:"name,omitempty"`
	Seq     string     `json:"seq" yaml:"seq"`
	Count   int        `json:"count" yaml:"count"`
	Repeats []RepeatV1 `json:"repeats" yaml:"repeats"`
}
