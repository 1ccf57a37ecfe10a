// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package permtest

import (
	"fmt"
	"math"
	"strings"

	"github.com/aclements/go-moremath/stats"
	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"github.com/statviz/statviz"
)

// Metric is the reduction a Test compares between its two samples.
type Metric int

const (
	// Mean compares arithmetic means.
	Mean Metric = iota
	// Sum compares totals.
	Sum
	// Median compares medians. Even-sized samples use the mean of
	// the two middle values.
	Median

	numMetrics
)

var metricNames = [numMetrics]string{
	Mean:   "mean",
	Sum:    "sum",
	Median: "median",
}

func (m Metric) String() string {
	if m.valid() {
		return metricNames[m]
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

func (m Metric) valid() bool {
	return 0 <= m && m < numMetrics
}

// validMetrics lists the accepted metric names for error messages.
func validMetrics() string {
	return strings.Join(metricNames[:], ", ")
}

// ParseMetric returns the Metric called name, which must be one of
// "mean", "sum" or "median".
func ParseMetric(name string) (Metric, error) {
	for m, n := range metricNames {
		if n == name {
			return Metric(m), nil
		}
	}
	return 0, fmt.Errorf("%w: metric %q not one of %s", statviz.ErrInvalidArgument, name, validMetrics())
}

// Of applies m to xs. It returns NaN for an empty xs, except that the
// Sum of nothing is 0.
func (m Metric) Of(xs []float64) float64 {
	switch m {
	case Mean:
		return stats.Mean(xs)
	case Sum:
		return floats.Sum(xs)
	case Median:
		med, err := mstats.Median(xs)
		if err != nil {
			return math.NaN()
		}
		return med
	}
	panic(fmt.Sprintf("bad metric %v", m))
}
