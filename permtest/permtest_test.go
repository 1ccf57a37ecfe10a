// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package permtest

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statviz/statviz"
	"github.com/statviz/statviz/dist"
)

var (
	lower = []float64{1, 2, 3, 4, 5}
	upper = []float64{2, 3, 4, 5, 6}
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func newTest(t *testing.T, x1, x2 []float64, opts Options) *Test {
	t.Helper()
	if opts.Rand == nil {
		opts.Rand = seeded(1)
	}
	pt, err := New(x1, x2, "a", "b", opts)
	require.NoError(t, err)
	return pt
}

func TestObserved(t *testing.T) {
	test := func(m Metric, want float64) {
		t.Helper()
		pt := newTest(t, lower, upper, Options{Metric: m})
		if got := pt.Observed(); got != want {
			t.Errorf("%v: got observed %v, want %v", m, got, want)
		}
		if got := m.Of(lower) - m.Of(upper); got != pt.Observed() {
			t.Errorf("%v: observed %v != metric difference %v", m, pt.Observed(), got)
		}
	}
	test(Mean, -1)
	test(Sum, -5)
	test(Median, -1)
}

func TestNewErrors(t *testing.T) {
	_, err := New(lower, upper, "a", "b", Options{Metric: Metric(-1)})
	require.ErrorIs(t, err, statviz.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "mean, sum, median")

	_, err = New(nil, upper, "a", "b", Options{})
	assert.ErrorIs(t, err, statviz.ErrInvalidArgument)
	_, err = New(lower, []float64{}, "a", "b", Options{})
	assert.ErrorIs(t, err, statviz.ErrInvalidArgument)
}

func TestNewCopiesSamples(t *testing.T) {
	x1 := []float64{1, 2, 3}
	pt := newTest(t, x1, []float64{10, 20}, Options{EqualizeMeans: true})
	assert.Equal(t, []float64{1, 2, 3}, x1)
	x1[0] = 100
	assert.InDelta(t, 0, pt.Observed(), 1e-12)
	name1, name2 := pt.Names()
	assert.Equal(t, "a", name1)
	assert.Equal(t, "b", name2)
	assert.Equal(t, Mean, pt.Metric())
}

func TestEqualizeMeans(t *testing.T) {
	x1 := []float64{1, 2, 3, 10}
	x2 := []float64{20, 22, 27}
	for _, m := range []Metric{Mean, Sum, Median} {
		pt := newTest(t, x1, x2, Options{Metric: m, EqualizeMeans: true})

		// Each sample moves by pooled - own metric, so shapes
		// survive.
		pooled := m.Of(append(append([]float64(nil), x1...), x2...))
		for i, x := range x1 {
			assert.InDelta(t, x-m.Of(x1)+pooled, pt.x1[i], 1e-9, "%v x1[%d]", m, i)
		}
		for i, x := range x2 {
			assert.InDelta(t, x-m.Of(x2)+pooled, pt.x2[i], 1e-9, "%v x2[%d]", m, i)
		}
		assert.InDelta(t, 9, pt.x1[3]-pt.x1[0], 1e-9, "%v", m)
		assert.InDelta(t, 7, pt.x2[2]-pt.x2[0], 1e-9, "%v", m)
		assert.Equal(t, m.Of(pt.x1)-m.Of(pt.x2), pt.Observed(), "%v", m)

		if m != Sum {
			// Location metrics line up on the pooled value.
			assert.InDelta(t, 0, pt.Observed(), 1e-12, "%v", m)
			assert.InDelta(t, pooled, m.Of(pt.x1), 1e-12, "%v", m)
			assert.InDelta(t, pooled, m.Of(pt.x2), 1e-12, "%v", m)
		}
	}
}

func TestNotFitted(t *testing.T) {
	pt := newTest(t, lower, upper, Options{})

	_, err := pt.Distribution()
	assert.ErrorIs(t, err, statviz.ErrNotFitted)
	_, err = pt.ConfidenceIntervals()
	assert.ErrorIs(t, err, statviz.ErrNotFitted)
	_, err = pt.Result()
	assert.ErrorIs(t, err, statviz.ErrNotFitted)
}

func TestFitSampleSize(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 8} {
		for _, n := range []int{1, 2, 7, 64, 65, DefaultSampleSize} {
			pt := newTest(t, lower, upper, Options{Workers: workers})
			res, err := pt.Fit(n)
			require.NoError(t, err)
			assert.Equal(t, n, res.SampleSize(), "workers=%d", workers)

			d, err := pt.Distribution()
			require.NoError(t, err)
			assert.Len(t, d, n, "workers=%d", workers)
		}
	}
}

func TestFitInvalidSampleSize(t *testing.T) {
	pt := newTest(t, lower, upper, Options{})
	for _, n := range []int{0, -1} {
		_, err := pt.Fit(n)
		assert.ErrorIs(t, err, statviz.ErrInvalidArgument, "n=%d", n)
	}
	_, err := pt.Result()
	assert.ErrorIs(t, err, statviz.ErrNotFitted)

	first, err := pt.Fit(10)
	require.NoError(t, err)
	_, err = pt.Fit(0)
	require.Error(t, err)
	cur, err := pt.Result()
	require.NoError(t, err)
	assert.Same(t, first, cur)
}

func TestRefit(t *testing.T) {
	pt := newTest(t, lower, upper, Options{})
	first, err := pt.Fit(10)
	require.NoError(t, err)
	firstDraws := first.Distribution()

	second, err := pt.Fit(20)
	require.NoError(t, err)

	d, err := pt.Distribution()
	require.NoError(t, err)
	assert.Len(t, d, 20)
	assert.Equal(t, second.Distribution(), d)

	// Earlier results are not disturbed by later fits.
	assert.Equal(t, 10, first.SampleSize())
	assert.Equal(t, firstDraws, first.Distribution())
}

func TestFitDeterministic(t *testing.T) {
	for _, workers := range []int{1, 4} {
		fit := func() []float64 {
			pt := newTest(t, lower, upper, Options{Rand: seeded(42), Workers: workers})
			res, err := pt.Fit(500)
			require.NoError(t, err)
			return res.Distribution()
		}
		assert.Equal(t, fit(), fit(), "workers=%d", workers)
	}

	// Different seeds give different draws.
	a := newTest(t, lower, upper, Options{Rand: seeded(1)})
	b := newTest(t, lower, upper, Options{Rand: seeded(2)})
	ra, err := a.Fit(200)
	require.NoError(t, err)
	rb, err := b.Fit(200)
	require.NoError(t, err)
	assert.NotEqual(t, ra.Distribution(), rb.Distribution())
}

func TestPermutePreservesPool(t *testing.T) {
	x1 := []float64{1, 1, 2, 3, 5, 8}
	x2 := []float64{-1, 0, 13, 21}
	want := slices.Concat(x1, x2)
	slices.Sort(want)

	rng := seeded(7)
	pool := make([]float64, len(x1)+len(x2))
	for i := 0; i < 100; i++ {
		p1, p2 := permute(rng, x1, x2, pool)
		require.Len(t, p1, len(x1))
		require.Len(t, p2, len(x2))
		got := slices.Concat(p1, p2)
		slices.Sort(got)
		require.Equal(t, want, got)
	}
	assert.Equal(t, []float64{1, 1, 2, 3, 5, 8}, x1)
	assert.Equal(t, []float64{-1, 0, 13, 21}, x2)
}

func TestDrawsComeFromPermutations(t *testing.T) {
	// With Sum, every draw is sum(piece1) - sum(piece2) where the
	// pieces partition the pool, so draw = 2*sum(piece1) - total.
	possible := map[float64]bool{}
	pool := []float64{1, 2, 4, 8, 16}
	for i := range pool {
		for j := i + 1; j < len(pool); j++ {
			possible[2*(pool[i]+pool[j])-31] = true
		}
	}

	for _, workers := range []int{1, 3} {
		pt := newTest(t, []float64{1, 2}, []float64{4, 8, 16}, Options{Metric: Sum, Workers: workers})
		res, err := pt.Fit(300)
		require.NoError(t, err)
		require.Equal(t, 300, res.SampleSize())

		for _, d := range res.Distribution() {
			if !possible[d] {
				t.Fatalf("workers=%d: draw %v is not a difference of a split of %v", workers, d, pool)
			}
		}
	}
}

func TestFitContextCanceled(t *testing.T) {
	for _, workers := range []int{1, 4} {
		pt := newTest(t, lower, upper, Options{Workers: workers})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := pt.FitContext(ctx, 1000)
		assert.ErrorIs(t, err, context.Canceled, "workers=%d", workers)
		_, err = pt.Result()
		assert.ErrorIs(t, err, statviz.ErrNotFitted, "workers=%d", workers)
	}
}

func TestConfidenceIntervals(t *testing.T) {
	pt := newTest(t, lower, upper, Options{})
	_, err := pt.Fit(DefaultSampleSize)
	require.NoError(t, err)

	iv, err := pt.ConfidenceIntervals()
	require.NoError(t, err)
	assert.Equal(t, dist.DefaultPercentiles, iv.Percentiles())
	assert.LessOrEqual(t, iv[0.5], iv[2.5])
	assert.LessOrEqual(t, iv[2.5], iv[97.5])
	assert.LessOrEqual(t, iv[97.5], iv[99.5])

	d, err := pt.Distribution()
	require.NoError(t, err)
	iv, err = pt.ConfidenceIntervals(0, 100)
	require.NoError(t, err)
	assert.Equal(t, slices.Min(d), iv[0])
	assert.Equal(t, slices.Max(d), iv[100])

	_, err = pt.ConfidenceIntervals(101)
	assert.ErrorIs(t, err, statviz.ErrInvalidArgument)
}

func TestFitLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	pt := newTest(t, lower, upper, Options{Logger: logger, Metric: Median})
	_, err := pt.Fit(50)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "permtest: fit")
	assert.Contains(t, out, "sample_size=50")
	assert.Contains(t, out, "metric=median")
}
