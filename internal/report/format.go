// Package report renders a statistics record into the textual report
// printed after a measured call. Formatting is pure; colorization happens
// only at write time and only for terminals.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/stintio/stint/stats"
)

// Meta is the call metadata shown alongside the statistics.
type Meta struct {
	// Name is the short function name, Symbol the full import-qualified one.
	Name   string
	Symbol string
	Args   []any
}

// Format renders the report for one outer call.
//
// Non-verbose output is a single line naming the function and its elapsed
// time (the whole run for a single run, the mean otherwise). Verbose output
// lists every field of the record plus the captured arguments. The record is
// never mutated.
func Format(meta Meta, rec stats.Record, verbose bool) string {
	var b strings.Builder

	if verbose {
		fmt.Fprintf(&b, "***** stint data for function %s: *****\n", meta.Name)
		fmt.Fprintf(&b, "Function name: %s\n", meta.Name)
		fmt.Fprintf(&b, "\tFunction object: %s\n", meta.Symbol)
		fmt.Fprintf(&b, "\tArgs: %v\n", meta.Args)
		if rec.Count == 1 {
			fmt.Fprintf(&b, "\tTime: %s.\n", FormatDuration(rec.Mean))
		} else {
			fmt.Fprintf(&b, "\tRun times: %d\n", rec.Count)
			fmt.Fprintf(&b, "\tMean: %s\n", FormatDuration(rec.Mean))
			fmt.Fprintf(&b, "\tMedian: %s\n", FormatDuration(rec.Median))
			fmt.Fprintf(&b, "\tMin: %s\n", FormatDuration(rec.Min))
			fmt.Fprintf(&b, "\tMax: %s\n", FormatDuration(rec.Max))
			fmt.Fprintf(&b, "\tStandard deviation: %s\n", FormatDuration(rec.StdDev))
			fmt.Fprintf(&b, "\tP90: %s\n", FormatDuration(rec.P90))
			fmt.Fprintf(&b, "\tP95: %s\n", FormatDuration(rec.P95))
			fmt.Fprintf(&b, "\tP99: %s\n", FormatDuration(rec.P99))
			fmt.Fprintf(&b, "\tSum time: %s\n", FormatDuration(rec.Sum))
			fmt.Fprintf(&b, "\tReal time: %s\n", FormatDuration(rec.Real))
		}
		b.WriteString("***** End of stint data. *****\n")
		return b.String()
	}

	if rec.Count == 1 {
		fmt.Fprintf(&b, "Function %s took %s.\n", meta.Name, FormatDuration(rec.Mean))
	} else {
		fmt.Fprintf(&b, "Function %s took an avg of %s.\n", meta.Name, FormatDuration(rec.Mean))
	}
	return b.String()
}

// FormatDuration renders a duration in the largest unit that keeps the
// magnitude readable, from microseconds up to days. Durations under a
// microsecond still render in microseconds, the smallest unit.
func FormatDuration(d time.Duration) string {
	sec := d.Seconds()
	switch {
	case sec < 0.001:
		return fmt.Sprintf("%.4fµs", sec*1e6)
	case sec < 0.1:
		return fmt.Sprintf("%.4fms", sec*1e3)
	case sec < 1:
		return fmt.Sprintf("%.3fs", sec)
	case sec < 60:
		return fmt.Sprintf("%.2fs", sec)
	case sec < 3600:
		m := int(sec) / 60
		s := sec - float64(m)*60
		return fmt.Sprintf("%02dm:%02.0fs.%.0fms", m, s, fracMillis(s))
	case sec < 86400:
		h := int(sec) / 3600
		rem := sec - float64(h)*3600
		m := int(rem) / 60
		s := rem - float64(m)*60
		return fmt.Sprintf("%02dh:%02dm:%02.0fs.%.0fms", h, m, s, fracMillis(s))
	default:
		days := int(sec) / 86400
		rem := sec - float64(days)*86400
		h := int(rem) / 3600
		rem -= float64(h) * 3600
		m := int(rem) / 60
		s := rem - float64(m)*60
		return fmt.Sprintf("%dd:%02dh:%02dm:%02.0fs.%.0fms", days, h, m, s, fracMillis(s))
	}
}

func fracMillis(s float64) float64 {
	return (s - float64(int(s))) * 1000
}
