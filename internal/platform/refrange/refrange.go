// Package refrange parses reference-range expressions found on lab results
// (e.g. "70-100", "< 150", "> 40") and classifies observed values against
// the extracted bounds.
package refrange

import (
	"regexp"
	"strconv"
	"strings"
)

// Classification is the verdict of a value against a reference range.
type Classification int

const (
	Unclassifiable Classification = iota
	InRange
	OutOfRange
)

func (c Classification) String() string {
	switch c {
	case InRange:
		return "in_range"
	case OutOfRange:
		return "out_of_range"
	default:
		return "unclassifiable"
	}
}

// Bounds is a numeric interval parsed from a reference-range expression.
// Either side may be open (nil).
type Bounds struct {
	Lower *float64
	Upper *float64
}

// Defined reports whether at least one side of the interval is known.
func (b Bounds) Defined() bool {
	return b.Lower != nil || b.Upper != nil
}

var (
	intervalRe    = regexp.MustCompile(`([\d.]+)\s*-\s*([\d.]+)`)
	lessThanRe    = regexp.MustCompile(`<\s*([\d.]+)`)
	greaterThanRe = regexp.MustCompile(`>\s*([\d.]+)`)
)

// ParseBounds extracts numeric bounds from common reference-range string
// patterns. Thousands separators are stripped first. Patterns are tried in
// priority order: two-number interval, then "< B", then "> A". When nothing
// matches, both sides stay open.
func ParseBounds(expr string) Bounds {
	expr = strings.TrimSpace(strings.ReplaceAll(expr, ",", ""))
	if expr == "" {
		return Bounds{}
	}

	if m := intervalRe.FindStringSubmatch(expr); m != nil {
		lo, errLo := strconv.ParseFloat(m[1], 64)
		hi, errHi := strconv.ParseFloat(m[2], 64)
		if errLo == nil && errHi == nil {
			return Bounds{Lower: &lo, Upper: &hi}
		}
	}

	if m := lessThanRe.FindStringSubmatch(expr); m != nil {
		if hi, err := strconv.ParseFloat(m[1], 64); err == nil {
			return Bounds{Upper: &hi}
		}
	}

	if m := greaterThanRe.FindStringSubmatch(expr); m != nil {
		if lo, err := strconv.ParseFloat(m[1], 64); err == nil {
			return Bounds{Lower: &lo}
		}
	}

	return Bounds{}
}

// Classify checks a raw observation value against the bounds. Values that do
// not parse as numbers, and bounds with no defined side, are Unclassifiable.
func Classify(value string, b Bounds) Classification {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return Unclassifiable
	}
	return ClassifyNumeric(v, b)
}

// ClassifyNumeric checks an already-parsed value against the bounds.
func ClassifyNumeric(v float64, b Bounds) Classification {
	switch {
	case b.Lower != nil && b.Upper != nil:
		if *b.Lower <= v && v <= *b.Upper {
			return InRange
		}
		return OutOfRange
	case b.Upper != nil:
		if v <= *b.Upper {
			return InRange
		}
		return OutOfRange
	case b.Lower != nil:
		if v >= *b.Lower {
			return InRange
		}
		return OutOfRange
	default:
		return Unclassifiable
	}
}

// Band computes the background interval drawn behind a chart series to
// visualize the healthy range. With both bounds it is exactly [lower, upper].
// With only an upper bound the floor is 0 unless the series dips below 0, in
// which case the observed minimum is used. With only a lower bound the
// ceiling is 1.1x the observed maximum. No band exists without bounds, and a
// half-open band needs at least one observed value.
func Band(b Bounds, values []float64) (lo, hi float64, ok bool) {
	switch {
	case b.Lower != nil && b.Upper != nil:
		return *b.Lower, *b.Upper, true
	case b.Upper != nil:
		if len(values) == 0 {
			return 0, 0, false
		}
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}
		floor := 0.0
		if min < 0 {
			floor = min
		}
		return floor, *b.Upper, true
	case b.Lower != nil:
		if len(values) == 0 {
			return 0, 0, false
		}
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		return *b.Lower, max * 1.1, true
	default:
		return 0, 0, false
	}
}
