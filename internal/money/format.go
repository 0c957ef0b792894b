package money

import (
	"strconv"
	"strings"
)

// Style selects how FormatMinor lays out an amount.
type Style int

const (
	// SymbolFirst renders "€1,234.56".
	SymbolFirst Style = iota
	// SymbolLast renders "1.234,56 €".
	SymbolLast
)

// FormatMinor renders an amount given in minor units (cents) in the given style.
func FormatMinor(minor int64, style Style) string {
	neg := minor < 0
	if neg {
		minor = -minor
	}
	whole := strconv.FormatInt(minor/100, 10)
	frac := minor % 100

	group, decimal := ",", "."
	if style == SymbolLast {
		group, decimal = ".", ","
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if style == SymbolFirst {
		b.WriteString("€")
	}
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(group)
		}
		b.WriteRune(c)
	}
	b.WriteString(decimal)
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	if style == SymbolLast {
		b.WriteString(" €")
	}
	return b.String()
}

// FormatEUR renders minor units the way the current storefront theme shows them.
func FormatEUR(minor int64) string {
	return FormatMinor(minor, SymbolFirst)
}
