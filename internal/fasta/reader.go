// internal/fasta/reader.go
package fasta

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"primerqc/core/seq"
)

// Record is one FASTA entry. Desc is the header text after the ID.
type Record struct {
	ID   string
	Desc string
	Seq  []byte
}

// Topology is Circular when the header carries a "circular" or
// "topology=circular" token, Linear otherwise.
func (r Record) Topology() seq.Topology {
	for _, f := range strings.Fields(strings.ToLower(r.Desc)) {
		if f == "circular" || f == "topology=circular" {
			return seq.Circular
		}
	}
	return seq.Linear
}

// Sequence validates the record into a core sequence.
func (r Record) Sequence() (seq.Sequence, error) {
	s, err := seq.Parse(string(r.Seq), r.Topology())
	if err != nil {
		return seq.Sequence{}, fmt.Errorf("record %s: %w", r.ID, err)
	}
	return s, nil
}

// Read parses every record from rd. Sequence lines before the first header
// form a record with ID "seq", so a bare sequence file also works.
func Read(rd io.Reader) ([]Record, error) {
	r := bufio.NewReader(rd)
	var (
		out []Record
		cur *Record
	)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		eof := err == io.EOF
		line = bytes.TrimRight(line, "\r\n")
		switch {
		case len(line) > 0 && line[0] == '>':
			out = append(out, header(string(line[1:])))
			cur = &out[len(out)-1]
		case len(bytes.TrimSpace(line)) > 0 && line[0] != ';':
			if cur == nil {
				out = append(out, Record{ID: "seq"})
				cur = &out[len(out)-1]
			}
			for _, f := range bytes.Fields(line) {
				cur.Seq = append(cur.Seq, bytes.ToUpper(f)...)
			}
		}
		if eof {
			break
		}
	}
	return out, nil
}

func header(h string) Record {
	h = strings.TrimSpace(h)
	id, desc, _ := strings.Cut(h, " ")
	if id == "" {
		id = "seq"
	}
	return Record{ID: id, Desc: strings.TrimSpace(desc)}
}

// ReadFile reads path; "-" is stdin and a .gz suffix is decompressed.
func ReadFile(path string) ([]Record, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	recs, err := Read(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// ErrEmpty is returned by ReadOne for input without sequence.
var ErrEmpty = errors.New("no FASTA records")

// ReadOne returns the first record of path.
func ReadOne(path string) (Record, error) {
	recs, err := ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return recs[0], nil
}

func openReader(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		return struct {
			io.Reader
			io.Closer
		}{Reader: gr, Closer: fh}, nil
	}
	return fh, nil
}
