package output

// Output formats understood by internal/writers.
const (
	FormatJSON   = "json"
	FormatJSONL  = "jsonl"
	FormatYAML   = "yaml"
	FormatTSV    = "tsv"
	FormatFASTA  = "fasta"
	FormatPretty = "pretty"
)

// Formats lists every format in help-text order.
func Formats() []string {
	return []string{FormatTSV, FormatJSON, FormatJSONL, FormatYAML, FormatFASTA, FormatPretty}
}
