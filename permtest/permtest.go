// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package permtest implements two-sample permutation tests.
//
// A Test compares a Metric of two samples. The observed statistic is
// Metric(sample1) - Metric(sample2). Fitting the test estimates the
// distribution of that statistic under the null hypothesis that both
// samples come from the same population: each draw pools the two
// samples, shuffles the pool, splits it back into pieces of the
// original sizes and records the difference of the metric of the
// pieces.
//
// A Test starts out unfit. Fit computes a Result and makes it the
// Test's current result; fitting again replaces it. Results are
// immutable and may be shared between goroutines.
package permtest

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/statviz/statviz"
	"github.com/statviz/statviz/dist"
)

// DefaultSampleSize is the conventional number of draws for a fit.
const DefaultSampleSize = 1000

// ctxCheckInterval is how many draws run between cancellation checks.
const ctxCheckInterval = 64

// Options configures a Test. The zero value compares means with a
// randomly seeded source on a single goroutine.
type Options struct {
	// Metric is the statistic to compare.
	Metric Metric

	// EqualizeMeans re-centers each sample on the pooled metric
	// before anything else is computed: every value x of a sample s
	// becomes x - Metric(s) + Metric(pooled). This removes the
	// location difference between the samples but keeps their
	// shapes.
	EqualizeMeans bool

	// Rand is the source of randomness for fits. If nil, a PCG
	// source with a random seed is used. A Test takes ownership of
	// Rand.
	Rand *rand.Rand

	// Workers is the number of goroutines a fit uses. Values below
	// 2 fit on the calling goroutine. Results for a given Rand seed
	// depend on Workers but not on scheduling.
	Workers int

	// Logger receives debug logs about fits. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

// Test is a two-sample permutation test.
//
// Fit methods must not be called concurrently with each other or with
// the accessors of the current result.
type Test struct {
	name1, name2 string
	x1, x2       []float64
	metric       Metric
	observed     float64

	rng     *rand.Rand
	workers int
	logger  *slog.Logger

	// result is nil until the first successful fit.
	result *Result
}

// New returns a Test comparing sample1 against sample2. The names are
// carried along for labeling. Both samples must be non-empty. The
// samples are copied.
func New(sample1, sample2 []float64, name1, name2 string, opts Options) (*Test, error) {
	if !opts.Metric.valid() {
		return nil, fmt.Errorf("%w: %v not one of %s", statviz.ErrInvalidArgument, opts.Metric, validMetrics())
	}
	if len(sample1) == 0 || len(sample2) == 0 {
		return nil, fmt.Errorf("%w: samples %q (%d values) and %q (%d values) must be non-empty",
			statviz.ErrInvalidArgument, name1, len(sample1), name2, len(sample2))
	}

	t := &Test{
		name1:   name1,
		name2:   name2,
		x1:      append([]float64(nil), sample1...),
		x2:      append([]float64(nil), sample2...),
		metric:  opts.Metric,
		rng:     opts.Rand,
		workers: max(opts.Workers, 1),
		logger:  opts.Logger,
	}
	if t.rng == nil {
		t.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}

	if opts.EqualizeMeans {
		pooled := t.metric.Of(append(append([]float64(nil), t.x1...), t.x2...))
		recenter(t.x1, t.metric.Of(t.x1), pooled)
		recenter(t.x2, t.metric.Of(t.x2), pooled)
	}
	t.observed = t.metric.Of(t.x1) - t.metric.Of(t.x2)
	return t, nil
}

func recenter(xs []float64, from, to float64) {
	for i := range xs {
		xs[i] = xs[i] - from + to
	}
}

// Observed returns Metric(sample1) - Metric(sample2), after
// re-centering if EqualizeMeans was set.
func (t *Test) Observed() float64 { return t.observed }

// Metric returns the statistic t compares.
func (t *Test) Metric() Metric { return t.metric }

// Names returns the labels of the two samples.
func (t *Test) Names() (name1, name2 string) { return t.name1, t.name2 }

// Fit draws sampleSize permutations and returns the resulting null
// distribution. On success the Result also becomes t's current
// result.
func (t *Test) Fit(sampleSize int) (*Result, error) {
	return t.FitContext(context.Background(), sampleSize)
}

// FitContext is like Fit but stops early if ctx is done. A fit that
// fails, including by cancellation, leaves t's current result
// unchanged.
func (t *Test) FitContext(ctx context.Context, sampleSize int) (*Result, error) {
	if sampleSize <= 0 {
		return nil, fmt.Errorf("%w: sample size %d must be positive", statviz.ErrInvalidArgument, sampleSize)
	}

	start := time.Now()
	draws := make([]float64, sampleSize)
	workers := min(t.workers, sampleSize)
	if workers == 1 {
		if err := t.draw(ctx, t.rng, draws); err != nil {
			return nil, err
		}
	} else {
		// Each worker owns a contiguous block of draws and a
		// source seeded from t.rng, so the output depends only on
		// the seed and the number of workers.
		g, gctx := errgroup.WithContext(ctx)
		block := (sampleSize + workers - 1) / workers
		for lo := 0; lo < sampleSize; lo += block {
			out := draws[lo:min(lo+block, sampleSize)]
			rng := rand.New(rand.NewPCG(t.rng.Uint64(), t.rng.Uint64()))
			g.Go(func() error {
				return t.draw(gctx, rng, out)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	res := &Result{
		name1:    t.name1,
		name2:    t.name2,
		metric:   t.metric,
		observed: t.observed,
		draws:    draws,
		sorted:   dist.NewDistribution(draws),
	}
	t.result = res
	t.logger.DebugContext(ctx, "permtest: fit",
		"sample1", t.name1,
		"sample2", t.name2,
		"metric", t.metric.String(),
		"sample_size", sampleSize,
		"workers", workers,
		"elapsed", time.Since(start),
	)
	return res, nil
}

// draw fills out with permutation statistics using rng.
func (t *Test) draw(ctx context.Context, rng *rand.Rand, out []float64) error {
	pool := make([]float64, len(t.x1)+len(t.x2))
	for i := range out {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		p1, p2 := permute(rng, t.x1, t.x2, pool)
		out[i] = t.metric.Of(p1) - t.metric.Of(p2)
	}
	return nil
}

// permute copies x1 followed by x2 into pool, shuffles pool uniformly
// and splits it into pieces of len(x1) and len(x2). The pieces alias
// pool.
func permute(rng *rand.Rand, x1, x2, pool []float64) (p1, p2 []float64) {
	n1 := copy(pool, x1)
	copy(pool[n1:], x2)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:n1], pool[n1:]
}

// Result returns the result of the latest successful fit.
func (t *Test) Result() (*Result, error) {
	if t.result == nil {
		return nil, fmt.Errorf("%w: call Fit first", statviz.ErrNotFitted)
	}
	return t.result, nil
}

// Distribution returns a copy of the null distribution from the
// latest fit, in draw order.
func (t *Test) Distribution() ([]float64, error) {
	r, err := t.Result()
	if err != nil {
		return nil, err
	}
	return r.Distribution(), nil
}

// ConfidenceIntervals returns the given percentiles of the null
// distribution from the latest fit. With no percentiles, it uses
// dist.DefaultPercentiles.
func (t *Test) ConfidenceIntervals(pcts ...float64) (dist.Intervals, error) {
	r, err := t.Result()
	if err != nil {
		return nil, err
	}
	return r.ConfidenceIntervals(pcts...)
}
