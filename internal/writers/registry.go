// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"
)

// Options tune a writer run.
type Options struct {
	Header  bool // tsv: emit the header line before the first record
	BufSize int  // channel buffer for Start; <= 0 means 64
}

// Streamer drains in and writes every record to w.
type Streamer func(w io.Writer, in <-chan any, opt Options) error

var registry = map[string]Streamer{}

// Register adds or replaces the writer for format (last wins).
func Register(format string, fn Streamer) { registry[format] = fn }

// Registered lists known formats, sorted.
func Registered() []string {
	out := make([]string, 0, len(registry))
	for f := range registry {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func lookup(format string) (Streamer, error) {
	fn, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (no writer registered)", format)
	}
	return fn, nil
}

// Start spins up a writer goroutine for format. Close the returned channel
// when done and read the error channel exactly once. An unknown format
// drains the channel and reports the error.
func Start(out io.Writer, format string, opt Options) (chan<- any, <-chan error) {
	size := opt.BufSize
	if size <= 0 {
		size = 64
	}
	in := make(chan any, size)
	done := make(chan error, 1)

	go func() {
		fn, err := lookup(format)
		if err != nil {
			for range in {
			}
			done <- err
			return
		}
		err = fn(out, in, opt)
		for range in {
			// keep producers unblocked after a write error
		}
		done <- err
	}()
	return in, done
}

// Write serializes a finished batch.
func Write(format string, w io.Writer, list []any, opt Options) error {
	fn, err := lookup(format)
	if err != nil {
		return err
	}
	in := make(chan any, len(list))
	for _, v := range list {
		in <- v
	}
	close(in)
	return fn(w, in, opt)
}
