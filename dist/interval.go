// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dist

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/statviz/statviz"
	"github.com/statviz/statviz/unit"
)

// DefaultPercentiles are the bounds of the 99% and 95% intervals.
var DefaultPercentiles = []float64{0.5, 2.5, 97.5, 99.5}

// Intervals maps a percentile in [0, 100] to the value of the
// distribution at that percentile.
type Intervals map[float64]float64

// ConfidenceIntervals returns the given percentiles of values. If no
// percentiles are given, it uses DefaultPercentiles.
func ConfidenceIntervals(values []float64, pcts ...float64) (Intervals, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: confidence intervals of an empty sample", statviz.ErrInvalidArgument)
	}
	return NewDistribution(values).Intervals(pcts)
}

// Intervals returns the given percentiles of d. If pcts is empty, it
// uses DefaultPercentiles.
func (d *Distribution) Intervals(pcts []float64) (Intervals, error) {
	if len(d.Values) == 0 {
		return nil, fmt.Errorf("%w: confidence intervals of an empty distribution", statviz.ErrInvalidArgument)
	}
	if len(pcts) == 0 {
		pcts = DefaultPercentiles
	}
	iv := make(Intervals, len(pcts))
	for _, p := range pcts {
		if math.IsNaN(p) || p < 0 || p > 100 {
			return nil, fmt.Errorf("%w: percentile %v not in [0, 100]", statviz.ErrInvalidArgument, p)
		}
		iv[p] = d.Percentile(p)
	}
	return iv, nil
}

// Percentiles returns the percentiles of iv in ascending order.
func (iv Intervals) Percentiles() []float64 {
	ps := make([]float64, 0, len(iv))
	for p := range iv {
		ps = append(ps, p)
	}
	sort.Float64s(ps)
	return ps
}

// Format returns iv as space-separated "p%:value" pairs in ascending
// percentile order, with values of the given unit scaled to a common
// prefix. The tidied unit follows the last value.
func (iv Intervals) Format(u string) string {
	ps := iv.Percentiles()
	vals := make([]float64, len(ps))
	for i, p := range ps {
		vals[i] = iv[p]
	}
	strs, tidied := unit.FormatAll(vals, u)

	var b strings.Builder
	for i, p := range ps {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
		b.WriteString("%:")
		b.WriteString(strs[i])
	}
	if tidied != "" && len(ps) > 0 {
		b.WriteByte(' ')
		b.WriteString(tidied)
	}
	return b.String()
}
