// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ecdf computes empirical cumulative distribution functions
// of named samples.
//
// For a sample of n values sorted ascending as x[0..n), the ECDF
// assigns x[i] the cumulative probability (i+1)/n. Samples are
// independent of each other.
package ecdf

import (
	"fmt"
	"sort"

	"github.com/aclements/go-moremath/stats"

	"github.com/statviz/statviz"
)

// Sample is the ECDF of one named sample.
type Sample struct {
	// X is the sample in ascending order.
	X []float64
	// Y[i] is the fraction of the sample at rank i or below, (i+1)/N.
	Y []float64
	// N is the number of values in the sample.
	N int
}

func newSample(values []float64) *Sample {
	samp := stats.Sample{Xs: append([]float64(nil), values...)}
	samp.Sort()
	n := len(samp.Xs)
	y := make([]float64, n)
	for i := range y {
		y[i] = float64(i+1) / float64(n)
	}
	return &Sample{X: samp.Xs, Y: y, N: n}
}

// At returns the fraction of s that is <= x. It returns 0 for an
// empty sample.
func (s *Sample) At(x float64) float64 {
	// Number of values <= x.
	i := sort.Search(len(s.X), func(i int) bool { return s.X[i] > x })
	if i == 0 {
		return 0
	}
	return s.Y[i-1]
}

// ECDF holds the ECDFs of a set of named samples.
type ECDF struct {
	samples map[string]*Sample
}

// New computes the ECDF of each sample in data, keyed by sample name.
// data must be non-nil. The input slices are copied.
func New(data map[string][]float64) (*ECDF, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: ECDF data must map sample names to samples", statviz.ErrInvalidArgument)
	}
	e := &ECDF{samples: make(map[string]*Sample, len(data))}
	for name, values := range data {
		e.samples[name] = newSample(values)
	}
	return e, nil
}

// Get returns the ECDF of the sample called name.
func (e *ECDF) Get(name string) (*Sample, error) {
	s, ok := e.samples[name]
	if !ok {
		return nil, fmt.Errorf("%w: sample %q", statviz.ErrNotFound, name)
	}
	return s, nil
}

// Names returns the sample names in e, sorted.
func (e *ECDF) Names() []string {
	names := make([]string, 0, len(e.samples))
	for name := range e.samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
