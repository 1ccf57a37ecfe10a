// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dist summarizes samples by their order statistics.
//
// A Distribution is a sorted copy of a sample. Percentiles use linear
// interpolation between closest ranks, so percentile 0 is the
// minimum, 100 is the maximum and 50 is the median. Confidence
// intervals are computed with the percentile method: each requested
// percentile of the distribution becomes one bound.
package dist

import (
	"math"

	"github.com/aclements/go-moremath/stats"
)

// Distribution is a sorted sample.
type Distribution struct {
	// Values holds the sample in ascending order.
	Values []float64
	// Center is the median of Values.
	Center float64
}

// NewDistribution returns the Distribution of values. values is
// copied and not modified.
func NewDistribution(values []float64) *Distribution {
	samp := stats.Sample{Xs: append([]float64(nil), values...)}
	samp.Sort()
	d := &Distribution{Values: samp.Xs}
	d.Center = d.Percentile(50)
	return d
}

// Percentile returns the p'th percentile of d, for p in [0, 100].
// Values of p outside that range are clamped. It returns NaN if d is
// empty.
func (d *Distribution) Percentile(p float64) float64 {
	xs := d.Values
	if len(xs) == 0 || math.IsNaN(p) {
		return math.NaN()
	}
	if p <= 0 {
		return xs[0]
	}
	if p >= 100 {
		return xs[len(xs)-1]
	}
	h := float64(len(xs)-1) * (p / 100)
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(xs) {
		return xs[len(xs)-1]
	}
	return xs[i] + (h-lo)*(xs[i+1]-xs[i])
}

// Min returns the smallest value in d, or NaN if d is empty.
func (d *Distribution) Min() float64 { return d.Percentile(0) }

// Max returns the largest value in d, or NaN if d is empty.
func (d *Distribution) Max() float64 { return d.Percentile(100) }
