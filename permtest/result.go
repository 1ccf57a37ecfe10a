// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package permtest

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/statviz/statviz"
	"github.com/statviz/statviz/dist"
	"github.com/statviz/statviz/unit"
)

// DefaultBins is the number of histogram bins used when the caller
// has no preference.
const DefaultBins = 10

// Result is a fitted null distribution together with the observed
// statistic it should be compared against.
type Result struct {
	name1, name2 string
	metric       Metric
	observed     float64

	draws  []float64          // in draw order
	sorted *dist.Distribution // draws, ascending
}

// SampleSize returns the number of draws in r.
func (r *Result) SampleSize() int { return len(r.draws) }

// Observed returns the observed statistic of the fitted Test.
func (r *Result) Observed() float64 { return r.observed }

// Distribution returns a copy of the null distribution in draw order.
func (r *Result) Distribution() []float64 {
	return append([]float64(nil), r.draws...)
}

// ConfidenceIntervals returns the given percentiles of the null
// distribution. With no percentiles, it uses dist.DefaultPercentiles.
func (r *Result) ConfidenceIntervals(pcts ...float64) (dist.Intervals, error) {
	return r.sorted.Intervals(pcts)
}

// PValue returns the two-sided empirical p-value of the observed
// statistic: the fraction of draws at least as far from zero as the
// observed statistic.
func (r *Result) PValue() float64 {
	obs := math.Abs(r.observed)
	extreme := 0
	for _, d := range r.draws {
		if math.Abs(d) >= obs {
			extreme++
		}
	}
	return float64(extreme) / float64(len(r.draws))
}

// Summary describes the spread of a null distribution.
type Summary struct {
	Mean, StdDev float64
	Min, Max     float64
}

// Summary returns the moments and range of the null distribution.
// StdDev is the sample standard deviation and is NaN for a single
// draw.
func (r *Result) Summary() Summary {
	mean, std := stat.MeanStdDev(r.draws, nil)
	return Summary{
		Mean:   mean,
		StdDev: std,
		Min:    r.sorted.Min(),
		Max:    r.sorted.Max(),
	}
}

// Histogram is a binned null distribution.
type Histogram struct {
	// Edges holds len(Counts)+1 equally spaced bin boundaries.
	// Bin i covers [Edges[i], Edges[i+1]); the last bin also
	// includes its upper edge.
	Edges []float64
	// Counts holds the number of draws in each bin.
	Counts []float64
}

// Histogram bins the null distribution into bins equal-width bins
// spanning its range. If every draw has the same value v, the range
// is [v-0.5, v+0.5]. Distributions with NaN or infinite draws cannot
// be binned.
func (r *Result) Histogram(bins int) (*Histogram, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("%w: %d histogram bins", statviz.ErrInvalidArgument, bins)
	}
	lo, hi := r.sorted.Min(), r.sorted.Max()
	if !isFinite(lo) || !isFinite(hi) {
		return nil, fmt.Errorf("%w: cannot bin draws in [%v, %v]", statviz.ErrInvalidArgument, lo, hi)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	edges[bins] = hi

	// stat.Histogram bins are half-open, so nudge the top divider
	// to keep the maximum in the last bin.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, r.sorted.Values, nil)
	return &Histogram{Edges: edges, Counts: counts}, nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Title returns a label for plots of r.
func (r *Result) Title() string {
	return fmt.Sprintf("%s vs %s permuted %s differences", r.name1, r.name2, r.metric)
}

// Format returns a one-line summary of r: the observed statistic, the
// p-value and the default confidence intervals, with values of the
// given unit scaled for reading.
func (r *Result) Format(u string) string {
	obs, tidied := unit.FormatAll([]float64{r.observed}, u)
	iv, err := r.ConfidenceIntervals()
	if err != nil {
		// Results always hold at least one draw.
		panic(err)
	}
	if tidied != "" {
		tidied = " " + tidied
	}
	return fmt.Sprintf("%s vs %s: Δ%s=%s%s p=%.3g n=%d [%s]",
		r.name1, r.name2, r.metric, obs[0], tidied, r.PValue(), len(r.draws), iv.Format(u))
}
