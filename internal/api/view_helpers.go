package api

import (
	"fmt"
	"sort"
	"strings"
)

var verdictOrder = []string{"false", "partially_true", "unverifiable", "true"}

// VerdictCounts tallies claims per verdict.
func VerdictCounts(r Result) map[string]int {
	counts := make(map[string]int, len(verdictOrder))
	for _, c := range r.Claims {
		counts[c.Verdict]++
	}
	return counts
}

// VerdictSummary renders counts such as "1 false, 2 true", most severe first.
func VerdictSummary(r Result) string {
	if len(r.Claims) == 0 {
		if r.Raw != "" {
			return "unparsed reply"
		}
		return "no claims"
	}
	counts := VerdictCounts(r)
	parts := make([]string, 0, len(counts))
	for _, verdict := range verdictOrder {
		if n := counts[verdict]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ReplaceAll(verdict, "_", " ")))
		}
	}
	return strings.Join(parts, ", ")
}

// SortResultsByTimestamp orders results by playback position, breaking ties
// by check time.
func SortResultsByTimestamp(results []Result) []Result {
	if len(results) == 0 {
		return nil
	}
	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp == sorted[j].Timestamp {
			return ParseTime(sorted[i].CheckedAt).Before(ParseTime(sorted[j].CheckedAt))
		}
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}
