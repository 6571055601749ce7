// internal/writers/jsonl.go
package writers

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"

	"primerqc/internal/output"
)

// Reuse a 64 KiB buffered writer across runs; the encoder is bound per run.
var bwPool = sync.Pool{
	New: func() any {
		return bufio.NewWriterSize(io.Discard, 64<<10)
	},
}

func init() { Register(output.FormatJSONL, streamJSONL) }

// streamJSONL writes one compact JSON document per line.
func streamJSONL(w io.Writer, in <-chan any, _ Options) error {
	bw := bwPool.Get().(*bufio.Writer)
	bw.Reset(w)
	defer func() {
		bw.Reset(io.Discard)
		bwPool.Put(bw)
	}()

	enc := json.NewEncoder(bw)
	for v := range in {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return bw.Flush()
}
