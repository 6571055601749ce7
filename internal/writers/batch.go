// internal/writers/batch.go
package writers

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"primerqc/internal/output"
)

func init() {
	Register(output.FormatJSON, writeJSON)
	Register(output.FormatYAML, writeYAML)
}

func collect(in <-chan any) []any {
	list := []any{}
	for v := range in {
		list = append(list, v)
	}
	return list
}

// writeJSON emits one indented array; an empty run is "[]".
func writeJSON(w io.Writer, in <-chan any, _ Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(collect(in))
}

// writeYAML emits one YAML sequence document.
func writeYAML(w io.Writer, in <-chan any, _ Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(collect(in)); err != nil {
		return err
	}
	return enc.Close()
}
