package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMarketsQueryEncode(t *testing.T) {
	q := DefaultMarketsQuery()
	assert.Equal(t,
		"order=market_cap_desc&page=1&per_page=50&price_change_percentage=24h&sparkline=false&vs_currency=usd",
		q.Encode(),
	)
}

func TestWithOverrides(t *testing.T) {
	base := DefaultMarketsQuery()

	q, err := base.WithOverrides(map[string]string{
		QueryPerPage:    "10",
		QueryVsCurrency: "EUR",
		QuerySparkline:  "true",
		QueryOrder:      "",
		"category":      "layer-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 10, q.PerPage)
	assert.Equal(t, "eur", q.VsCurrency)
	assert.True(t, q.Sparkline)
	assert.Equal(t, "market_cap_desc", q.Order, "empty override keeps the default")
	assert.Equal(t, "layer-1", q.Values().Get("category"))
	assert.Nil(t, base.Extra, "base query must not be modified")
}

func TestWithOverridesRejectsMalformedValues(t *testing.T) {
	base := DefaultMarketsQuery()
	for key, value := range map[string]string{
		QueryPerPage:   "0",
		QueryPage:      "-3",
		QuerySparkline: "maybe",
	} {
		_, err := base.WithOverrides(map[string]string{key: value})
		assert.ErrorIs(t, err, ErrInvalidQuery, key)
	}
	_, err := base.WithOverrides(map[string]string{QueryPerPage: "251"})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestEncodeIdentifiesQuery(t *testing.T) {
	a, err := DefaultMarketsQuery().WithOverrides(map[string]string{QueryPerPage: "50"})
	require.NoError(t, err)
	assert.Equal(t, DefaultMarketsQuery().Encode(), a.Encode())

	b, err := DefaultMarketsQuery().WithOverrides(map[string]string{QueryPage: "2"})
	require.NoError(t, err)
	assert.NotEqual(t, a.Encode(), b.Encode())
}

func TestParseTimeRange(t *testing.T) {
	cases := map[string]TimeRange{
		"":     DefaultTimeRange,
		"1":    Range1D,
		"7d":   Range7D,
		" 30 ": Range30D,
		"365D": Range365D,
	}
	for in, want := range cases {
		got, err := ParseTimeRange(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"14", "0", "max", "-7"} {
		_, err := ParseTimeRange(in)
		assert.ErrorIs(t, err, ErrInvalidTimeRange, in)
	}
	assert.True(t, Range1D.Intraday())
	assert.False(t, Range7D.Intraday())
}

func TestHoldingValueAndSnapshotItem(t *testing.T) {
	h := HoldingEntry{CurrentPrice: 100, Quantity: 2.5}
	assert.Equal(t, 250.0, h.Value())

	price := 42.0
	item := CoinDetail{ID: "x", Name: "X", CurrentPrice: &price}.SnapshotItem()
	assert.Equal(t, "x", item.ID)
	assert.Equal(t, 42.0, item.CurrentPrice)
	assert.Zero(t, CoinDetail{ID: "y"}.SnapshotItem().CurrentPrice)
}
