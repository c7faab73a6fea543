package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, Placeholder, FormatUSD(nil))
	assert.Equal(t, "$60,000.00", FormatUSD(ptr(60000.0)))
	assert.Equal(t, "$1,234,567.89", FormatUSD(ptr(1234567.891)))
	assert.Equal(t, "$0.0523", FormatUSD(ptr(0.0523)))
	assert.Equal(t, "$0.000012", FormatUSD(ptr(0.000012)))
	assert.Equal(t, "$0.00", FormatUSDValue(0))
}

func TestFormatCompactUSD(t *testing.T) {
	assert.Equal(t, Placeholder, FormatCompactUSD(nil))
	assert.Equal(t, "$2.4T", FormatCompactUSD(ptr(2.41e12)))
	assert.Equal(t, "$85.3B", FormatCompactUSD(ptr(85.3e9)))
	assert.Equal(t, "$7.0M", FormatCompactUSD(ptr(7e6)))
	assert.Equal(t, "$999.00", FormatCompactUSD(ptr(999.0)))
}

func TestFormatPercentAndInt(t *testing.T) {
	assert.Equal(t, Placeholder, FormatPercent(nil))
	assert.Equal(t, "↑ 1.50%", FormatPercent(ptr(1.5)))
	assert.Equal(t, "↓ 2.25%", FormatPercent(ptr(-2.25)))
	assert.Equal(t, Placeholder, FormatInt(nil))
	assert.Equal(t, "12,345", FormatInt(ptr(12345)))
}

func TestFirstSentence(t *testing.T) {
	assert.Equal(t, "Bitcoin is a currency.", FirstSentence("Bitcoin is a currency. It was created in 2009."))
	assert.Equal(t, "No period here", FirstSentence("No period here"))
	assert.Equal(t, Placeholder, FirstSentence("   "))
}

func TestFilter(t *testing.T) {
	even := Filter([]int{1, 2, 3, 4}, func(n int) bool { return n%2 == 0 })
	assert.Equal(t, []int{2, 4}, even)
	assert.Empty(t, Filter([]int(nil), func(int) bool { return true }))
}
