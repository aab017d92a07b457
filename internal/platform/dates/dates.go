// Package dates parses the loosely formatted date strings that appear in
// imported patient records. A set of common layouts is tried first, then a
// strict slash-separated fallback.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformed is returned when a date string matches neither the flexible
// layouts nor the strict fallback format.
var ErrMalformed = errors.New("unrecognized date format")

// flexibleLayouts are tried in order before the strict fallback. Layouts
// with more specificity come first so timestamps are not truncated.
var flexibleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02.01.2006",
	"01/02/2006",
}

// strictFallback mirrors the final format attempted by the importer.
const strictFallback = "2006/01/02"

// Parse converts a raw date string to a time.Time. The error wraps
// ErrMalformed when no known layout matches; callers that can tolerate a bad
// date should fall back to displaying the raw string.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string: %w", ErrMalformed)
	}

	for _, layout := range flexibleLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(strictFallback, s); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("parse date %q: %w", s, ErrMalformed)
}
