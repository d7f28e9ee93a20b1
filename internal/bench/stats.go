package bench

import (
	"math"
	"sort"
	"time"
)

// Stats summarizes timed rounds in seconds.
type Stats struct {
	Rounds int     `json:"rounds"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Median float64 `json:"median"`
	IQR    float64 `json:"iqr"`
	OPS    float64 `json:"ops"`
}

// ComputeStats derives summary statistics from samples. StdDev is the
// sample standard deviation (0 for a single round); quartiles use method 1
// for an even count and method 3 for an odd count.
func ComputeStats(samples []time.Duration) Stats {
	n := len(samples)
	if n == 0 {
		return Stats{}
	}
	data := make([]float64, n)
	for i, s := range samples {
		data[i] = s.Seconds()
	}
	sort.Float64s(data)

	var sum float64
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(n)

	var stddev float64
	if n > 1 {
		var ss float64
		for _, v := range data {
			ss += (v - mean) * (v - mean)
		}
		stddev = math.Sqrt(ss / float64(n-1))
	}

	st := Stats{
		Rounds: n,
		Min:    data[0],
		Max:    data[n-1],
		Mean:   mean,
		StdDev: stddev,
		Median: median(data),
		IQR:    q3(data) - q1(data),
	}
	if mean > 0 {
		st.OPS = 1 / mean
	}
	return st
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func q1(sorted []float64) float64 {
	n := len(sorted)
	switch {
	case n == 1:
		return sorted[0]
	case n%2 == 1:
		k, r := n/4, n%4
		if r == 1 {
			return 0.25*sorted[k-1] + 0.75*sorted[k]
		}
		return 0.75*sorted[k] + 0.25*sorted[k+1]
	default:
		return median(sorted[:n/2])
	}
}

func q3(sorted []float64) float64 {
	n := len(sorted)
	switch {
	case n == 1:
		return sorted[0]
	case n%2 == 1:
		k, r := n/4, n%4
		if r == 1 {
			return 0.75*sorted[3*k] + 0.25*sorted[3*k+1]
		}
		return 0.25*sorted[3*k+1] + 0.75*sorted[3*k+2]
	default:
		return median(sorted[n/2:])
	}
}
