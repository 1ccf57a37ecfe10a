// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package unit formats statistics in the unit of the underlying
// measurements.
//
// A unit is a string like "sec/op" or "B/s". Its class decides
// whether values are scaled by powers of 1000 (SI prefixes) or 1024
// (binary prefixes), and Tidy rewrites pre-scaled units such as "ns"
// into base units so that prefixes never stack.
package unit

import (
	"fmt"
	"strings"
	"unicode"
)

// Class distinguishes units that should be scaled differently.
type Class int

const (
	// SI scales by powers of 1000 using SI prefixes.
	SI Class = iota
	// IEC scales by powers of 1024 using binary prefixes.
	IEC
)

func (c Class) String() string {
	switch c {
	case SI:
		return "SI"
	case IEC:
		return "IEC"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// ClassOf returns IEC if unit measures bytes in its numerator and SI
// otherwise. The empty unit is SI.
func ClassOf(unit string) Class {
	for _, tok := range tokens(unit) {
		if tok.denom {
			continue
		}
		switch tok.text {
		case "B", "MB", "bytes":
			return IEC
		}
	}
	return SI
}

// token is one factor of a unit string.
type token struct {
	text  string
	pos   int  // byte offset in the unit
	denom bool // follows a '/'
}

// tokens splits unit into factors. '*' and '/' switch between the
// numerator and the denominator; '-' and spaces only separate.
func tokens(unit string) []token {
	var toks []token
	denom := false
	start := -1
	flush := func(end int) {
		if start >= 0 {
			toks = append(toks, token{unit[start:end], start, denom})
			start = -1
		}
	}
	for i, r := range unit {
		switch {
		case r == '*':
			flush(i)
			denom = false
		case r == '/':
			flush(i)
			denom = true
		case r == '-' || unicode.IsSpace(r):
			flush(i)
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(unit))
	return toks
}

// Tidy returns unit rewritten to base units and the factor that
// converts a value in unit to a value in the tidied unit. Only "ns"
// and "MB" in the numerator are rewritten.
func Tidy(unit string) (tidied string, factor float64) {
	switch unit {
	case "ns/op":
		return "sec/op", 1e-9
	case "MB/s":
		return "B/s", 1e6
	}
	if !strings.Contains(unit, "ns") && !strings.Contains(unit, "MB") {
		return unit, 1
	}

	factor = 1
	var b strings.Builder
	last := 0
	for _, tok := range tokens(unit) {
		if tok.denom {
			continue
		}
		var repl string
		switch tok.text {
		case "ns":
			repl = "sec"
			factor /= 1e9
		case "MB":
			repl = "B"
			factor *= 1e6
		default:
			continue
		}
		b.WriteString(unit[last:tok.pos])
		b.WriteString(repl)
		last = tok.pos + len(tok.text)
	}
	b.WriteString(unit[last:])
	return b.String(), factor
}
