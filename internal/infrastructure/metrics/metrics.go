package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cryptodash"

var (
	// PollCycles counts finished poll cycles by poller name and outcome (success, error, discarded).
	PollCycles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_cycles_total",
		Help:      "Finished market data poll cycles.",
	}, []string{"poller", "outcome"})

	// PollDuration observes the duration of poll cycles.
	PollDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "poll_duration_seconds",
		Help:      "Duration of market data poll cycles.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"poller"})

	// ActivePollers is the number of running pollers.
	ActivePollers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_pollers",
		Help:      "Market data pollers currently running.",
	})

	// PortfolioHoldings is the number of holdings in the portfolio.
	PortfolioHoldings = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "portfolio_holdings",
		Help:      "Number of holdings in the portfolio.",
	})

	// PortfolioValueUSD is the total portfolio value at the last known prices.
	PortfolioValueUSD = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "portfolio_value_usd",
		Help:      "Total portfolio value in USD at the last known prices.",
	})

	// CoinGeckoRequests counts upstream requests by endpoint and HTTP status ("error" for transport failures).
	CoinGeckoRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "coingecko_requests_total",
		Help:      "Requests sent to the CoinGecko API.",
	}, []string{"endpoint", "status"})
)

var registerOnce sync.Once

// MustRegister registers all collectors with reg. Subsequent calls are no-ops.
func MustRegister(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			PollCycles,
			PollDuration,
			ActivePollers,
			PortfolioHoldings,
			PortfolioValueUSD,
			CoinGeckoRequests,
		)
	})
}
