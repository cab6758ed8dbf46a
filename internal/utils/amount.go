// Package utils contains small pure helpers shared across services. This file
// deals with user-typed price strings: parsing them into numbers for totals
// and formatting numbers back for display.
package utils

import (
	"strconv"
	"strings"
)

// ParseAmount converts a user-typed price string into a float64. It tolerates
// thousands separators, currency prefixes, and surrounding whitespace
// ("1,500", "NGN 250", "₦3000.50"). Unparseable or empty input yields 0,
// matching the pipeline rule that non-numeric prices contribute nothing to
// the subtotal.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

// FormatAmount renders a float for user-facing messages: no trailing zeros
// for whole amounts, two decimals otherwise.
func FormatAmount(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// SplitList splits a user-typed list into trimmed, non-empty tokens. Items
// and prices may be separated by commas or newlines.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := strings.TrimSpace(f); t != "" {
			out = append(out, t)
		}
	}
	return out
}
