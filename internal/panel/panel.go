// Package panel reads primer panels: whitespace-separated lines of
//
//	name  seq  [template  [ext5  ext3  [anchor]]]
//
// template names a FASTA record ("-" or "*" means the first one). ext5 and
// ext3 are the extra bases each end may grow by during tuning; anchor counts
// bases from the 5' end to the seam of a junction primer. Blank lines and
// lines starting with '#' are skipped.
package panel

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"primerqc/core/primer"
	"primerqc/core/seq"
)

// AnyTemplate is the template column value meaning "the first record".
const AnyTemplate = "*"

// Entry is one panel line.
type Entry struct {
	Line         int
	Name         string
	Seq          seq.Sequence
	Template     string
	Ext5, Ext3   int
	AnchorOffset int
}

// Tunable reports whether either end may move.
func (e Entry) Tunable() bool { return e.Ext5 > 0 || e.Ext3 > 0 }

// Primer builds the floating primer descriptor for the entry. A non-zero
// anchor makes it an anchored junction primer with both ends flagged tunable.
func (e Entry) Primer(maxMismatches int) primer.Primer {
	junction := e.AnchorOffset > 0
	return primer.Primer{
		Name:     e.Name,
		Loc:      primer.FloatingMatch{Seq: e.Seq, MaxMismatches: maxMismatches, AnchorOffset: e.AnchorOffset},
		End5:     primer.End{Tunable: junction || e.Ext5 > 0, MaxExtension: e.Ext5},
		End3:     primer.End{Tunable: junction || e.Ext3 > 0, MaxExtension: e.Ext3},
		Anchored: junction,
	}
}

// LoadTSV reads a panel file.
func LoadTSV(path string) ([]Entry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Parse(fh, path)
}

// Parse reads a panel from r; src names it in errors.
func Parse(r io.Reader, src string) ([]Entry, error) {
	var list []Entry
	seen := map[string]int{}
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Fields(line)
		if len(f) < 2 || len(f) == 4 || len(f) > 6 {
			return nil, fmt.Errorf("%s:%d bad field count %d", src, ln, len(f))
		}
		s, err := seq.Parse(f[1], seq.Linear)
		if err != nil {
			return nil, fmt.Errorf("%s:%d primer %s: %w", src, ln, f[0], err)
		}
		if prev, dup := seen[f[0]]; dup {
			return nil, fmt.Errorf("%s:%d duplicate primer name %q (first on line %d)", src, ln, f[0], prev)
		}
		seen[f[0]] = ln

		e := Entry{Line: ln, Name: f[0], Seq: s, Template: AnyTemplate}
		if len(f) >= 3 && f[2] != "-" {
			e.Template = f[2]
		}
		ints := []*int{&e.Ext5, &e.Ext3, &e.AnchorOffset}
		for i, raw := range f[min(len(f), 3):] {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%s:%d field %d: want a non-negative integer, got %q", src, ln, i+4, raw)
			}
			*ints[i] = n
		}
		list = append(list, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
