// Package money turns loosely formatted, localized price text into numbers.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnparseable is returned by Require when the text does not normalize to a finite number.
var ErrUnparseable = errors.New("money: text is not a number")

// Value is the outcome of normalizing one piece of price text.
type Value struct {
	// Amount is NaN when the text could not be parsed.
	Amount float64
	// Canonical is the string handed to the number parser.
	Canonical string
	// Ambiguous reports that a separator could have been read either way,
	// e.g. "1.234" (one thousand two hundred thirty-four, or 1.234).
	Ambiguous bool
}

// Valid reports whether the text produced a finite number.
func (v Value) Valid() bool {
	return !math.IsNaN(v.Amount)
}

// Normalize parses price text such as "€1,234.56" or "29,30 €".
// It returns NaN for malformed input, never zero.
func Normalize(text string) float64 {
	return Parse(text).Amount
}

// Require is Normalize for call sites that cannot continue without a number.
func Require(text string) (float64, error) {
	v := Parse(text)
	if !v.Valid() {
		return v.Amount, fmt.Errorf("%w: %q", ErrUnparseable, strings.TrimSpace(text))
	}
	return v.Amount, nil
}

// Parse applies the normalization steps in order:
//  1. keep only digits, dots, commas and minus signs
//  2. drop dots followed by exactly three digits at a token boundary
//  3. turn the remaining comma into the decimal point, unless a dot survives
//     after it, in which case the comma groups thousands
//  4. parse, mapping failures and non-finite results to NaN
func Parse(text string) Value {
	kept := keepNumeric(text)
	dropped, removed := dropThousandDots(kept)

	canonical := dropped
	ambiguous := false
	comma := strings.LastIndexByte(dropped, ',')
	dot := strings.LastIndexByte(dropped, '.')
	switch {
	case comma >= 0 && dot > comma:
		canonical = strings.ReplaceAll(dropped, ",", "")
	case comma >= 0:
		canonical = strings.Replace(dropped, ",", ".", 1)
		ambiguous = !removed && threeDigitsAfter(dropped, comma)
	default:
		ambiguous = removed
	}

	return Value{
		Amount:    parseFinite(canonical),
		Canonical: canonical,
		Ambiguous: ambiguous,
	}
}

// Format renders v in the canonical form Parse accepts back unchanged.
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Sum adds values, propagating NaN.
func Sum(values ...float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Cents rounds v to minor units.
func Cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// Equal compares two amounts at minor-unit precision. NaN equals nothing.
func Equal(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return Cents(a) == Cents(b)
}

func keepNumeric(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if isDigit(c) || c == '.' || c == ',' || c == '-' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func dropThousandDots(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s))
	removed := false
	for i := 0; i < len(s); i++ {
		if s[i] == '.' && threeDigitsAfter(s, i) {
			removed = true
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String(), removed
}

// threeDigitsAfter reports whether s[i] is followed by exactly three digits
// and then a non-digit or the end of s.
func threeDigitsAfter(s string, i int) bool {
	if i+4 > len(s) {
		return false
	}
	for j := i + 1; j <= i+3; j++ {
		if !isDigit(s[j]) {
			return false
		}
	}
	return i+4 == len(s) || !isDigit(s[i+4])
}

func parseFinite(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
