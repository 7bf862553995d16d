// Package dateutil normalizes applicant-submitted date strings. Forms arrive
// from several frontends with inconsistent formats; everything is reduced to
// a canonical YYYY-MM-DD (optionally with HH:MM:SS) before storage.
package dateutil

import (
	"strings"
	"time"
)

// Layouts accepted from form input, tried in order. time.Parse rejects
// impossible calendar dates such as 31-02-2024.
var inputLayouts = []struct {
	layout  string
	hasTime bool
}{
	{"2006-01-02 15:04:05", true},
	{"2006-01-02T15:04", true},
	{"02-01-2006 03:04 PM", true},
	{"02-01-2006 15:04", true},
	{"2006-01-02", false},
	{"02-01-2006", false},
	{"02/01/2006", false},
}

const (
	dateOnly     = "2006-01-02"
	dateWithTime = "2006-01-02 15:04:05"
)

// Normalize reduces a raw date string to canonical YYYY-MM-DD form. When
// includeTime is true and the input carried a time component, the result is
// YYYY-MM-DD HH:MM:SS. Returns ok=false for empty, unparseable, or
// calendar-invalid input; callers are expected to store null rather than
// fail the surrounding operation.
func Normalize(raw string, includeTime bool) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	for _, candidate := range inputLayouts {
		parsed, err := time.Parse(candidate.layout, raw)
		if err != nil {
			continue
		}
		if includeTime && candidate.hasTime {
			return parsed.Format(dateWithTime), true
		}
		return parsed.Format(dateOnly), true
	}
	return "", false
}

// NormalizePtr is Normalize for optional fields: nil on unparseable input.
func NormalizePtr(raw string, includeTime bool) *string {
	normalized, ok := Normalize(raw, includeTime)
	if !ok {
		return nil
	}
	return &normalized
}
