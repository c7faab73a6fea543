package entity

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Recognized markets query keys.
const (
	QueryVsCurrency            = "vs_currency"
	QueryOrder                 = "order"
	QueryPerPage               = "per_page"
	QueryPage                  = "page"
	QuerySparkline             = "sparkline"
	QueryPriceChangePercentage = "price_change_percentage"
)

// MarketsQuery describes one list-markets request.
type MarketsQuery struct {
	VsCurrency            string
	Order                 string
	PerPage               int
	Page                  int
	Sparkline             bool
	PriceChangePercentage string
	// Extra holds unrecognized parameters, sent verbatim.
	Extra map[string]string
}

// DefaultMarketsQuery returns the list query used when the caller overrides nothing.
func DefaultMarketsQuery() MarketsQuery {
	return MarketsQuery{
		VsCurrency:            "usd",
		Order:                 "market_cap_desc",
		PerPage:               50,
		Page:                  1,
		Sparkline:             false,
		PriceChangePercentage: "24h",
	}
}

// WithOverrides returns a copy of q where every key present in overrides replaces the default.
// Empty values are ignored.
func (q MarketsQuery) WithOverrides(overrides map[string]string) (MarketsQuery, error) {
	out := q
	out.Extra = make(map[string]string, len(q.Extra))
	for k, v := range q.Extra {
		out.Extra[k] = v
	}

	for key, raw := range overrides {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		switch key {
		case QueryVsCurrency:
			out.VsCurrency = strings.ToLower(value)
		case QueryOrder:
			out.Order = value
		case QueryPerPage:
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 || n > 250 {
				return q, fmt.Errorf("%w: per_page must be between 1 and 250, got %q", ErrInvalidQuery, raw)
			}
			out.PerPage = n
		case QueryPage:
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return q, fmt.Errorf("%w: page must be a positive integer, got %q", ErrInvalidQuery, raw)
			}
			out.Page = n
		case QuerySparkline:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return q, fmt.Errorf("%w: sparkline must be a boolean, got %q", ErrInvalidQuery, raw)
			}
			out.Sparkline = b
		case QueryPriceChangePercentage:
			out.PriceChangePercentage = value
		default:
			out.Extra[key] = value
		}
	}
	if len(out.Extra) == 0 {
		out.Extra = nil
	}
	return out, nil
}

// Values returns the query as URL parameters.
func (q MarketsQuery) Values() url.Values {
	v := url.Values{}
	for k, val := range q.Extra {
		v.Set(k, val)
	}
	v.Set(QueryVsCurrency, q.VsCurrency)
	v.Set(QueryOrder, q.Order)
	v.Set(QueryPerPage, strconv.Itoa(q.PerPage))
	v.Set(QueryPage, strconv.Itoa(q.Page))
	v.Set(QuerySparkline, strconv.FormatBool(q.Sparkline))
	if q.PriceChangePercentage != "" {
		v.Set(QueryPriceChangePercentage, q.PriceChangePercentage)
	}
	return v
}

// Encode returns a deterministic query string. It also identifies the query.
func (q MarketsQuery) Encode() string {
	return q.Values().Encode()
}
