package common

import (
	"errors"
	"testing"

	"primerqc/core/quality"
	"primerqc/internal/pipeline"
)

func TestSortResultsByScore(t *testing.T) {
	rs := []pipeline.Result{
		{Index: 0, Metrics: quality.Metrics{Score: 10}},
		{Index: 1, Err: errors.New("no match")},
		{Index: 2, Metrics: quality.Metrics{Score: 80}},
		{Index: 3, Metrics: quality.Metrics{Score: 80}}, // tie → panel order
	}
	SortResults(rs)
	var got []int
	for _, r := range rs {
		got = append(got, r.Index)
	}
	want := []int{2, 3, 0, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order %v, want %v", got, want)
		}
	}
}
