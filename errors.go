// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package statviz

import "errors"

var (
	// ErrInvalidArgument indicates a caller passed a value outside
	// the accepted domain, such as an unknown metric or an empty
	// sample.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFitted indicates an operation needs a fitted
	// permutation distribution and none has been computed yet.
	ErrNotFitted = errors.New("permutation distribution not fitted")

	// ErrNotFound indicates a lookup by name found nothing.
	ErrNotFound = errors.New("not found")
)
