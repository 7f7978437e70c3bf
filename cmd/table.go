package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/rggbconv/internal/store"
)

// printReport writes a run's results as a table, one row per strategy
// and tier.
func printReport(out io.Writer, report *store.Report) {
	fmt.Fprintf(out, "Run %s (%s, %s)\n", report.RunID, report.Config.Group, report.Env.CPU)
	fmt.Fprintf(out, "%s/%s %s, fill 0x%02x, %d samples, baseline %s\n\n",
		report.Env.GOOS, report.Env.GOARCH, report.Env.GoVersion,
		report.Config.Fill, report.Config.SampleSize, report.Config.Baseline)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tPIXELS\tMEDIAN\tCI\tMB/S\tVS BASE\tP")
	fmt.Fprintln(w, "--------\t------\t------\t--\t----\t-------\t-")

	for _, res := range report.Results {
		vsBase, p := "-", "-"
		if res.Delta != "" {
			vsBase = res.Delta
			p = fmt.Sprintf("%.3f", res.P)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%.1f\t%s\t%s\n",
			res.Strategy,
			res.Pixels,
			formatNs(res.MedianNs),
			formatInterval(res),
			res.MBps,
			vsBase,
			p,
		)
	}
	w.Flush()

	for _, res := range report.Results {
		for _, warning := range res.Warnings {
			fmt.Fprintf(out, "warning: %s/%d: %s\n", res.Strategy, res.Pixels, warning)
		}
	}
}

// formatInterval renders the confidence interval as a percentage of the
// median, or "n/a" when the sample was too small to bound it.
func formatInterval(res store.Result) string {
	if res.LoNs == 0 || res.HiNs == 0 || res.MedianNs == 0 {
		return "n/a"
	}
	lo := (res.MedianNs - res.LoNs) / res.MedianNs * 100
	hi := (res.HiNs - res.MedianNs) / res.MedianNs * 100
	return fmt.Sprintf("-%.1f%% +%.1f%%", lo, hi)
}

func formatNs(ns float64) string {
	switch {
	case ns >= 1e9:
		return fmt.Sprintf("%.3fs", ns/1e9)
	case ns >= 1e6:
		return fmt.Sprintf("%.3fms", ns/1e6)
	case ns >= 1e3:
		return fmt.Sprintf("%.3fµs", ns/1e3)
	default:
		return fmt.Sprintf("%.1fns", ns)
	}
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// shortID truncates a run ID for display.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}
