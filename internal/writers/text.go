// internal/writers/text.go
package writers

import (
	"bufio"
	"io"

	"primerqc/internal/output"
	"primerqc/internal/pretty"
)

func init() {
	Register(output.FormatTSV, streamTSV)
	Register(output.FormatFASTA, streamFASTA)
	Register(output.FormatPretty, streamPretty)
}

// streamTSV writes the header of the first record's layout (when asked)
// followed by one or more lines per record.
func streamTSV(w io.Writer, in <-chan any, opt Options) error {
	bw := bufio.NewWriter(w)
	wroteHeader := !opt.Header
	for v := range in {
		header, rows, err := output.TSV(v)
		if err != nil {
			return err
		}
		if !wroteHeader {
			if _, err := bw.WriteString(header + "\n"); err != nil {
				return err
			}
			wroteHeader = true
		}
		for _, r := range rows {
			if _, err := bw.WriteString(r + "\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func streamFASTA(w io.Writer, in <-chan any, _ Options) error {
	bw := bufio.NewWriter(w)
	for v := range in {
		s, err := output.FASTA(v)
		if err != nil {
			return err
		}
		if _, err := bw.WriteString(s); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func streamPretty(w io.Writer, in <-chan any, _ Options) error {
	bw := bufio.NewWriter(w)
	for v := range in {
		s, err := pretty.Render(v, pretty.DefaultOptions)
		if err != nil {
			return err
		}
		if _, err := bw.WriteString(s); err != nil {
			return err
		}
	}
	return bw.Flush()
}
