package repeats

import (
	"reflect"
	"testing"

	"primerqc/core/seq"
)

func has(occ []Occurrence, c Category) bool {
	for _, o := range occ {
		if o.Category == c {
			return true
		}
	}
	return false
}

func TestFind_Flags(t *testing.T) {
	cases := []struct {
		in   string
		want Category
	}{
		{"AAAA", MonoRun},
		{"GCTTTTTGC", MonoRun},
		{"ATATATAT", DiRun},
		{"GGCACACACAGG", DiRun},
		{"CGTAACGT", KmerRepeat},
		{"CGTTTACCCGT", KmerRepeat},
	}
	for _, tc := range cases {
		if got := Find(seq.LinearOf(tc.in)); !has(got, tc.want) {
			t.Fatalf("%s: expected %v in %+v", tc.in, tc.want, got)
		}
	}
}

func TestFind_Exact(t *testing.T) {
	cases := []struct {
		in   string
		want []Occurrence
	}{
		{"AAAA", []Occurrence{
			{MonoRun, 0, 4},
			{KmerRepeat, 1, 3},
		}},
		{"ATATATAT", []Occurrence{
			{DiRun, 0, 8},
			{KmerRepeat, 2, 6},
			{KmerRepeat, 4, 4},
		}},
		{"CGTAACGT", []Occurrence{{KmerRepeat, 5, 3}}},
		// Extended repeat reported once, not once per shifted 3-mer.
		{"ACGTACGTAC", []Occurrence{{KmerRepeat, 4, 6}}},
		{"GCTAGCTAGCTA", []Occurrence{
			{KmerRepeat, 4, 8},
			{KmerRepeat, 8, 4},
		}},
		{"GTAAAACGACGGCCAGT", []Occurrence{
			{MonoRun, 2, 4},
			{KmerRepeat, 3, 3},
			{KmerRepeat, 8, 3},
		}},
		{"AAAAATATATATAT", []Occurrence{
			{MonoRun, 0, 5},
			{KmerRepeat, 1, 4},
			{KmerRepeat, 2, 3},
			{DiRun, 4, 10},
			{KmerRepeat, 6, 8},
			{KmerRepeat, 8, 6},
			{KmerRepeat, 10, 4},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := Find(seq.LinearOf(tc.in))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Find(%s)\n got  %+v\n want %+v", tc.in, got, tc.want)
			}
			if Count(seq.LinearOf(tc.in)) != len(tc.want) {
				t.Fatal("Count disagrees with Find")
			}
		})
	}
}

func TestFind_Clean(t *testing.T) {
	for _, s := range []string{"ACGATCGT", "TTGCA", "AC", "A"} {
		if got := Find(seq.LinearOf(s)); len(got) != 0 {
			t.Fatalf("%s: expected no repeats, got %+v", s, got)
		}
	}
}

func TestFind_HomopolymerIsNotDiRun(t *testing.T) {
	got := Find(seq.LinearOf("GGGGGGGGGG"))
	if has(got, DiRun) {
		t.Fatalf("homopolymer reported as di-run: %+v", got)
	}
	if !has(got, MonoRun) {
		t.Fatal("homopolymer should be a mono-run")
	}
}

func TestCategoryString(t *testing.T) {
	if MonoRun.String() != "mono-run" || DiRun.String() != "di-run" || KmerRepeat.String() != "k-mer-repeat" {
		t.Fatal("category names")
	}
}
