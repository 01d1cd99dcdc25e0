// Package normalize canonicalizes identifiers and numeric fields coming out
// of spreadsheet imports so the rest of the system can compare them directly.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Plate canonicalizes a license plate: uppercase, trimmed, internal
// whitespace and hyphens stripped. Two plate strings name the same vehicle
// iff their canonical forms are equal.
func Plate(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Header normalizes a spreadsheet column header: BOM and non-breaking spaces
// removed, whitespace runs collapsed to a single space, trimmed.
func Header(s string) string {
	s = strings.ReplaceAll(s, "\uFEFF", "")
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}

// stripAccents removes combining marks after NFD decomposition.
func stripAccents(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HeaderEquals reports whether two headers match after normalization,
// accent stripping and case folding. Empty headers never match.
func HeaderEquals(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	na := strings.ToLower(stripAccents(Header(a)))
	nb := strings.ToLower(stripAccents(Header(b)))
	return na == nb
}

// ParseKm parses a locale-formatted odometer value into an integer km count.
// If the string carries both '.' and ',', '.' is the thousands separator and
// ',' the decimal one. A lone ',' is a decimal separator. Anything that is
// not a digit or the decimal point is dropped before parsing, and the result
// is floored. Returns nil for empty or unparseable input; zero is a
// legitimate reading and is never used as a fallback.
func ParseKm(val string) *int {
	s := strings.TrimSpace(val)
	if s == "" {
		return nil
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		s = strings.Replace(s, ",", ".", 1)
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '.' {
			b.WriteRune(r)
		}
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	km := int(math.Floor(f))
	return &km
}
