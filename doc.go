// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package statviz holds the error values shared by the statviz
// packages.
//
// The statistics themselves live in subpackages:
//
//	dist     - sorted distributions, percentiles and confidence intervals
//	ecdf     - empirical cumulative distribution functions
//	permtest - two-sample permutation tests
//	unit     - unit-aware number formatting
//
// All errors returned by these packages wrap one of the values
// below, so callers should test for them with errors.Is.
package statviz
