// internal/fasta/reader_test.go
package fasta

import (
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"primerqc/core/qcerr"
	"primerqc/core/seq"
)

const plain = `>pUC19 circular cloning vector
acgtACGT
TTGG
>insert
GGCC
`

func writeGz(t *testing.T, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "test.fa.gz")
	fh, err := os.Create(p)
	if err != nil {
		t.Fatalf("tmp: %v", err)
	}
	gw := gzip.NewWriter(fh)
	if _, err := gw.Write([]byte(data)); err != nil {
		t.Fatalf("write gz: %v", err)
	}
	gw.Close()
	fh.Close()
	return p
}

func TestRead(t *testing.T) {
	recs, err := Read(strings.NewReader(plain))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].ID != "pUC19" || recs[1].ID != "insert" {
		t.Fatalf("records %+v", recs)
	}
	if string(recs[0].Seq) != "ACGTACGTTTGG" || recs[0].Desc != "circular cloning vector" {
		t.Fatalf("first record %+v", recs[0])
	}
	if recs[0].Topology() != seq.Circular || recs[1].Topology() != seq.Linear {
		t.Fatal("topology from header")
	}
	s, err := recs[0].Sequence()
	if err != nil || !s.IsCircular() || s.Len() != 12 {
		t.Fatalf("sequence %v %v", s, err)
	}
}

func TestRead_Bare(t *testing.T) {
	recs, err := Read(strings.NewReader("ACGT\nACGT")) // no trailing newline
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].ID != "seq" || string(recs[0].Seq) != "ACGTACGT" {
		t.Fatalf("records %+v", recs)
	}
}

func TestSequence_Invalid(t *testing.T) {
	recs, _ := Read(strings.NewReader(">bad\nACGTNNAC\n"))
	_, err := recs[0].Sequence()
	if !errors.Is(err, qcerr.ErrInvalidNucleotide) || !strings.Contains(err.Error(), "bad") {
		t.Fatalf("want InvalidNucleotide naming the record, got %v", err)
	}
}

func TestReadFile_Gzip(t *testing.T) {
	recs, err := ReadFile(writeGz(t, plain))
	if err != nil {
		t.Fatalf("read gz: %v", err)
	}
	if len(recs) != 2 || recs[1].ID != "insert" {
		t.Fatalf("gzip parse failed: %+v", recs)
	}
}

func TestReadOne_Stdin(t *testing.T) {
	orig := os.Stdin
	r, w, _ := os.Pipe()
	os.Stdin = r
	defer func() { os.Stdin = orig }()
	go func() { io.WriteString(w, plain); w.Close() }()

	rec, err := ReadOne("-")
	if err != nil {
		t.Fatalf("stdin: %v", err)
	}
	if rec.ID != "pUC19" {
		t.Fatalf("got %+v", rec)
	}
}

func TestReadOne_Empty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "empty.fa")
	os.WriteFile(p, []byte("\n\n"), 0o644)
	if _, err := ReadOne(p); !errors.Is(err, ErrEmpty) {
		t.Fatalf("want ErrEmpty, got %v", err)
	}
	if _, err := ReadOne(filepath.Join(t.TempDir(), "missing.fa")); err == nil {
		t.Fatal("want error for missing file")
	}
}
