// Package validate holds the input checks run before every mutation.
package validate

import (
	"regexp"
	"strconv"
	"strings"
)

// NoVIN is the sentinel shown for vehicles registered without a VIN.
const NoVIN = "No VIN provided"

var (
	phonePattern = regexp.MustCompile(`^[0-9\s\-\+\(\)]{7,15}$`)
	vinPattern   = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]*$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// Phone reports whether s is an acceptable phone number: 7 to 15
// characters of digits, spaces, dashes, plus signs or parentheses.
func Phone(s string) bool {
	return phonePattern.MatchString(s)
}

// NormalizeVIN strips all whitespace and upper-cases a VIN.
func NormalizeVIN(s string) string {
	return strings.ToUpper(spacePattern.ReplaceAllString(s, ""))
}

// VIN reports whether s is a valid VIN. Empty input and the NoVIN
// sentinel are valid since a vehicle may be registered without one.
// Otherwise the normalized VIN must be 7, 13 or 17 characters from
// the VIN alphabet (letters I, O and Q excluded).
func VIN(s string) bool {
	if s == "" || s == NoVIN {
		return true
	}
	clean := NormalizeVIN(s)
	switch len(clean) {
	case 0, 7, 13, 17:
	default:
		return false
	}
	return vinPattern.MatchString(clean)
}

// Numeric reports whether v parses as a number within [min, max].
// Pass nil to leave a bound open.
func Numeric(v string, min, max *float64) bool {
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return false
	}
	if min != nil && n < *min {
		return false
	}
	if max != nil && n > *max {
		return false
	}
	return true
}

// Min is a convenience for Numeric lower bounds.
func Min(v float64) *float64 { return &v }

// Email reports whether s looks like an email address.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// Sanitize trims surrounding whitespace.
func Sanitize(s string) string {
	return strings.TrimSpace(s)
}
