package ui

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/capsaicin/pathfuzz/internal/config"
	"github.com/capsaicin/pathfuzz/internal/reporting"
	"github.com/capsaicin/pathfuzz/internal/scanner"
)

const Version = "1.0.0"

var (
	bold    = color.New(color.Bold)
	dim     = color.New(color.Faint)
	red     = color.New(color.FgRed, color.Bold)
	green   = color.New(color.FgGreen, color.Bold)
	yellow  = color.New(color.FgYellow, color.Bold)
	cyan    = color.New(color.FgCyan, color.Bold)
	white   = color.New(color.FgWhite)
	divider = strings.Repeat("─", 35)
)

func PrintBanner(w io.Writer) {
	fmt.Fprintln(w)
	red.Fprintln(w, "   ┌───────────────────────────────────┐")
	red.Fprint(w, "   │   ")
	bold.Fprint(w, "PATHFUZZ")
	red.Fprintf(w, "  v%-21s│\n", Version)
	red.Fprintln(w, "   │   Recursive Content Discovery     │")
	red.Fprintln(w, "   └───────────────────────────────────┘")
	fmt.Fprintln(w)
}

func row(w io.Writer, label, value string) {
	dim.Fprintf(w, "  %-12s", label)
	white.Fprintln(w, value)
}

func PrintConfig(w io.Writer, cfg *config.Config) {
	cyan.Fprintln(w, " Scan Configuration")
	dim.Fprintln(w, divider)
	row(w, "Target", cfg.Target)
	row(w, "Wordlist", cfg.Wordlist)
	row(w, "Threads", strconv.Itoa(cfg.Threads))
	row(w, "Timeout", fmt.Sprintf("%ds", cfg.Timeout))
	if cfg.MaxDepth > 1 {
		row(w, "Max Depth", strconv.Itoa(cfg.MaxDepth))
	}
	if len(cfg.Extensions) > 0 {
		row(w, "Extensions", strings.Join(cfg.Extensions, ", "))
	}
	if len(cfg.ExcludeCodes) > 0 {
		row(w, "Hide Codes", joinInts(cfg.ExcludeCodes))
	}
	if len(cfg.ExcludeLengths) > 0 {
		row(w, "Hide Sizes", joinInts(cfg.ExcludeLengths))
	}
	if cfg.Jitter > 0 {
		row(w, "Jitter", cfg.Jitter.String())
	}
	if cfg.RateLimit > 0 {
		row(w, "Rate Limit", fmt.Sprintf("%d req/s", cfg.RateLimit))
	}
	if cfg.SmartFilter {
		row(w, "Smart", "on")
	}
	fmt.Fprintln(w)
}

func joinInts[K int | int64](set map[K]struct{}) string {
	keys := make([]K, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strconv.FormatInt(int64(k), 10)
	}
	return strings.Join(parts, ",")
}

func PrintSummary(w io.Writer, stats *scanner.Stats, results []scanner.Result) {
	elapsed := time.Since(stats.StartTime)
	counts := reporting.CountByStatus(results)

	fmt.Fprintln(w)
	green.Fprintln(w, " Scan Complete")
	dim.Fprintln(w, divider)

	row(w, "Requests", strconv.FormatInt(stats.GetProcessed(), 10))
	dim.Fprintf(w, "  %-12s", "Findings")
	green.Fprintln(w, stats.GetFound())
	row(w, "By Status", fmt.Sprintf("2xx %d  3xx %d  4xx %d  5xx %d", counts["2xx"], counts["3xx"], counts["4xx"], counts["5xx"]))
	row(w, "Passes", strconv.FormatInt(stats.GetPasses(), 10))
	if depth := reporting.MaxDepth(results); depth > 1 {
		row(w, "Deepest", strconv.Itoa(depth))
	}
	if stats.GetWAFHits() > 0 {
		dim.Fprintf(w, "  %-12s", "WAF Hits")
		yellow.Fprintln(w, stats.GetWAFHits())
	}
	if stats.GetErrors() > 0 {
		dim.Fprintf(w, "  %-12s", "Errors")
		red.Fprintln(w, stats.GetErrors())
	}

	row(w, "Latency", stats.Latency().Round(time.Millisecond).String())
	row(w, "Duration", elapsed.Round(time.Millisecond).String())
	row(w, "Speed", fmt.Sprintf("%.0f req/s", stats.Rate()))
	fmt.Fprintln(w)
}
