package reporting

import (
	"sort"

	"github.com/capsaicin/pathfuzz/internal/scanner"
)

// SortResults orders results by URL, then status.
func SortResults(results []scanner.Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].URL != results[j].URL {
			return results[i].URL < results[j].URL
		}
		return results[i].StatusCode < results[j].StatusCode
	})
}

func CountByStatus(results []scanner.Result) map[string]int {
	counts := map[string]int{
		"2xx": 0,
		"3xx": 0,
		"4xx": 0,
		"5xx": 0,
		"waf": 0,
	}

	for _, r := range results {
		switch {
		case r.StatusCode >= 200 && r.StatusCode < 300:
			counts["2xx"]++
		case r.StatusCode >= 300 && r.StatusCode < 400:
			counts["3xx"]++
		case r.StatusCode >= 400 && r.StatusCode < 500:
			counts["4xx"]++
		case r.StatusCode >= 500:
			counts["5xx"]++
		}
		if r.WAFDetected != "" {
			counts["waf"]++
		}
	}

	return counts
}

// MaxDepth returns the deepest level at which anything was reported.
func MaxDepth(results []scanner.Result) int {
	depth := 0
	for _, r := range results {
		if r.Depth > depth {
			depth = r.Depth
		}
	}
	return depth
}
