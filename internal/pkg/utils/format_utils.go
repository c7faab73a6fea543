package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Placeholder is rendered for values the market API did not provide.
const Placeholder = "N/A"

// FormatUSD renders a price with thousands separators, or Placeholder when v is nil.
func FormatUSD(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return "$" + formatThousands(*v, priceDecimals(*v))
}

// FormatUSDValue is FormatUSD for a value that is always present.
func FormatUSDValue(v float64) string {
	return FormatUSD(&v)
}

// FormatCompactUSD renders large amounts as $1.2T / $34.5B / $6.7M.
func FormatCompactUSD(v *float64) string {
	if v == nil {
		return Placeholder
	}
	abs := math.Abs(*v)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("$%.1fT", *v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("$%.1fB", *v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.1fM", *v/1e6)
	default:
		return FormatUSD(v)
	}
}

// FormatPercent renders a signed percentage with an arrow, or Placeholder.
func FormatPercent(v *float64) string {
	if v == nil {
		return Placeholder
	}
	arrow := "↑"
	if *v < 0 {
		arrow = "↓"
	}
	return fmt.Sprintf("%s %.2f%%", arrow, math.Abs(*v))
}

// FormatInt renders an optional count, or Placeholder.
func FormatInt(v *int) string {
	if v == nil {
		return Placeholder
	}
	return formatThousands(float64(*v), 0)
}

// FirstSentence returns the text up to and including the first ". ".
func FirstSentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return Placeholder
	}
	if i := strings.Index(text, ". "); i >= 0 {
		return text[:i+1]
	}
	return text
}

func priceDecimals(v float64) int {
	abs := math.Abs(v)
	switch {
	case abs == 0 || abs >= 1:
		return 2
	case abs >= 0.01:
		return 4
	default:
		return 6
	}
}

func formatThousands(v float64, decimals int) string {
	s := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
