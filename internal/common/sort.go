// internal/common/sort.go
package common

import (
	"sort"

	"primerqc/internal/pipeline"
)

// LessResult orders batch results for --sort: successes before failures,
// higher score first, then panel order.
func LessResult(a, b pipeline.Result) bool {
	if (a.Err == nil) != (b.Err == nil) {
		return a.Err == nil
	}
	if a.Metrics.Score != b.Metrics.Score {
		return a.Metrics.Score > b.Metrics.Score
	}
	return a.Index < b.Index
}

func SortResults(rs []pipeline.Result) {
	sort.SliceStable(rs, func(i, j int) bool { return LessResult(rs[i], rs[j]) })
}
