// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package unit

import (
	"fmt"
	"math"
	"strconv"
)

// Scaler formats numbers with a fixed prefix and precision.
type Scaler struct {
	Prec   int     // Digits after the decimal point
	Factor float64 // Value of one unit of Prefix (1 k => 1000)
	Prefix string
}

// Format formats val according to s and appends the prefix.
func (s Scaler) Format(val float64) string {
	buf := make([]byte, 0, 20)
	buf = strconv.AppendFloat(buf, val/s.Factor, 'f', s.Prec, 64)
	return string(append(buf, s.Prefix...))
}

// Exact formats numbers with as many digits as needed to round trip
// and no prefix. Use it for machine-readable output.
var Exact = Scaler{-1, 1, ""}

// prefix is one scaling step. t100, t10 and t1 are the smallest
// values that print as 100, 10.0 and 1.00 with this prefix.
type prefix struct {
	factor        float64
	name          string
	t100, t10, t1 float64
}

var (
	siPrefixes  = mkPrefixes(SI, 12, []string{"T", "G", "M", "k", "", "m", "µ", "n"})
	iecPrefixes = mkPrefixes(IEC, 40, []string{"Ti", "Gi", "Mi", "Ki", "", "/Ki", "/Mi", "/Gi", "/Ti"})
)

// mkPrefixes builds the prefix table for cls, starting at exponent
// exp and going down one step per name.
func mkPrefixes(cls Class, exp int, names []string) []prefix {
	ps := make([]prefix, 0, len(names))
	for _, name := range names {
		var p prefix
		p.name = name
		switch cls {
		case SI:
			// Thresholds come from parsing the printed form so
			// they round exactly like Format does.
			p.factor = math.Pow(10, float64(exp))
			p.t100, _ = strconv.ParseFloat(fmt.Sprintf("99.95e%d", exp), 64)
			p.t10, _ = strconv.ParseFloat(fmt.Sprintf("9.995e%d", exp), 64)
			p.t1, _ = strconv.ParseFloat(fmt.Sprintf(".9995e%d", exp), 64)
			exp -= 3
		case IEC:
			// Scaling by a power of two is exact.
			p.factor = math.Ldexp(1, exp)
			p.t100 = math.Ldexp(99.95, exp)
			p.t10 = math.Ldexp(9.995, exp)
			p.t1 = math.Ldexp(.9995, exp)
			exp -= 10
		}
		ps = append(ps, p)
	}
	return ps
}

// Scale formats val in class cls with at least three significant
// digits.
func Scale(val float64, cls Class) string {
	return CommonScale([]float64{val}, cls).Format(val)
}

// CommonScale returns a Scaler that shows every value in vals with at
// least three significant digits. The scale is chosen by the non-zero
// value closest to zero; NaNs and infinities are ignored.
func CommonScale(vals []float64, cls Class) Scaler {
	var min float64
	for _, v := range vals {
		v = math.Abs(v)
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if min == 0 || v < min {
			min = v
		}
	}
	if min == 0 {
		return Scaler{2, 1, ""}
	}

	var ps []prefix
	switch cls {
	case SI:
		ps = siPrefixes
	case IEC:
		ps = iecPrefixes
	default:
		panic(fmt.Sprintf("bad unit class %v", cls))
	}

	for i, p := range ps {
		switch {
		case min >= p.t100:
			return Scaler{0, p.factor, p.name}
		case min >= p.t10:
			return Scaler{1, p.factor, p.name}
		case min >= p.t1 || i == len(ps)-1:
			return Scaler{2, p.factor, p.name}
		}
	}
	panic("not reachable")
}

// FormatAll tidies unit, scales vals to a common prefix and returns
// the formatted values along with the tidied unit.
func FormatAll(vals []float64, unit string) ([]string, string) {
	tidied, factor := Tidy(unit)
	scaled := make([]float64, len(vals))
	for i, v := range vals {
		scaled[i] = v * factor
	}
	s := CommonScale(scaled, ClassOf(tidied))
	out := make([]string, len(scaled))
	for i, v := range scaled {
		out[i] = s.Format(v)
	}
	return out, tidied
}
