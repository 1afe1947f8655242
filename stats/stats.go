package stats

import (
	"math"
	"sort"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// histogram recording range: 1 microsecond to 1 hour, 3 significant figures.
const (
	histMin     = 1
	histMax     = 3600000000
	histSigFigs = 3
)

// Record is the aggregate of all measured runs for one outer call.
//
// Real is the wall-clock span from the first run's start to the last run's
// end. Under concurrent execution Real is expected to be smaller than Sum;
// under sequential execution the two match within timer resolution.
type Record struct {
	Count  int           `json:"count"`
	Mean   time.Duration `json:"mean"`
	Median time.Duration `json:"median"`
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
	StdDev time.Duration `json:"stdDev"`
	Sum    time.Duration `json:"sum"`
	Real   time.Duration `json:"real"`

	// Percentiles from the HDR histogram. Only meaningful for Count > 1.
	P90 time.Duration `json:"p90"`
	P95 time.Duration `json:"p95"`
	P99 time.Duration `json:"p99"`
}

// Aggregate reduces a batch of per-run durations into a Record.
//
// It is a pure function: the input slice is not modified. A zero duration is
// a valid observation, not an error. The standard deviation is the population
// standard deviation (divide by count): the batch is the whole population
// being described, not a sample of a larger one. A single run has a standard
// deviation of zero by definition.
func Aggregate(durations []time.Duration, real time.Duration) Record {
	n := len(durations)
	if n == 0 {
		return Record{}
	}

	sorted := make([]time.Duration, n)
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	hist := hdrhistogram.New(histMin, histMax, histSigFigs)

	var sum time.Duration
	for _, d := range durations {
		sum += d
		micros := d.Microseconds()
		if micros < histMin {
			micros = histMin
		}
		if micros > histMax {
			micros = histMax
		}
		// Recording cannot fail after clamping to the histogram range.
		_ = hist.RecordValue(micros)
	}

	mean := sum / time.Duration(n)

	var variance float64
	meanNs := float64(sum.Nanoseconds()) / float64(n)
	for _, d := range durations {
		diff := float64(d.Nanoseconds()) - meanNs
		variance += diff * diff
	}
	variance /= float64(n)
	stdDev := time.Duration(math.Sqrt(variance))

	return Record{
		Count:  n,
		Mean:   mean,
		Median: median(sorted),
		Min:    sorted[0],
		Max:    sorted[n-1],
		StdDev: stdDev,
		Sum:    sum,
		Real:   real,
		P90:    time.Duration(hist.ValueAtQuantile(90)) * time.Microsecond,
		P95:    time.Duration(hist.ValueAtQuantile(95)) * time.Microsecond,
		P99:    time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond,
	}
}

// median returns the middle value of an already sorted slice, averaging the
// two central values for even lengths.
func median(sorted []time.Duration) time.Duration {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
