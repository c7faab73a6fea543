package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crypto_dashboard/internal/app/port"
	"crypto_dashboard/internal/domain/entity"
	"crypto_dashboard/internal/infrastructure/configloader"
	"crypto_dashboard/internal/infrastructure/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	demoAPIKeyHeader = "x-cg-demo-api-key"
	proAPIKeyHeader  = "x-cg-pro-api-key"
)

// coinGeckoClientImpl implements port.MarketDataClient against the CoinGecko v3 API.
type coinGeckoClientImpl struct {
	client       *fasthttp.Client
	baseURL      string
	apiKey       string
	apiKeyHeader string
	vsCurrency   string
	timeout      time.Duration
	limiter      *rate.Limiter
	logger       *zap.Logger
}

// NewCoinGeckoClient creates a CoinGecko client from its configuration section.
func NewCoinGeckoClient(cfg configloader.CoinGeckoConfig, logger *zap.Logger) port.MarketDataClient {
	header := demoAPIKeyHeader
	if cfg.APIPlan == "pro" {
		header = proAPIKeyHeader
	}

	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	timeout := time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	vsCurrency := strings.ToLower(cfg.VsCurrency)
	if vsCurrency == "" {
		vsCurrency = "usd"
	}

	return &coinGeckoClientImpl{
		client: &fasthttp.Client{
			Name:                "cryptodash",
			MaxIdleConnDuration: time.Minute,
		},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		apiKeyHeader: header,
		vsCurrency:   vsCurrency,
		timeout:      timeout,
		limiter:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		logger:       logger.Named("CoinGeckoClient"),
	}
}

// ListMarkets implements port.MarketDataClient.
func (c *coinGeckoClientImpl) ListMarkets(ctx context.Context, query entity.MarketsQuery) ([]entity.MarketSnapshotItem, error) {
	var items []marketItemDTO
	if err := c.get(ctx, "markets", "/coins/markets", query.Values(), &items); err != nil {
		return nil, err
	}

	result := make([]entity.MarketSnapshotItem, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			c.logger.Debug("Skipping market item without id", zap.String("symbol", it.Symbol))
			continue
		}
		result = append(result, it.toEntity())
	}
	return result, nil
}

// GetCoin implements port.MarketDataClient.
func (c *coinGeckoClientImpl) GetCoin(ctx context.Context, id string) (entity.CoinDetail, error) {
	if strings.TrimSpace(id) == "" {
		return entity.CoinDetail{}, fmt.Errorf("coin id cannot be empty")
	}
	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")

	var dto coinDTO
	if err := c.get(ctx, "coin", "/coins/"+url.PathEscape(id), params, &dto); err != nil {
		return entity.CoinDetail{}, err
	}
	return dto.toEntity(c.vsCurrency), nil
}

// GetMarketChart implements port.MarketDataClient.
func (c *coinGeckoClientImpl) GetMarketChart(ctx context.Context, id string, vsCurrency string, timeRange entity.TimeRange) (entity.PriceSeries, error) {
	if strings.TrimSpace(id) == "" {
		return entity.PriceSeries{}, fmt.Errorf("coin id cannot be empty")
	}
	if vsCurrency == "" {
		vsCurrency = c.vsCurrency
	}
	params := url.Values{}
	params.Set("vs_currency", vsCurrency)
	params.Set("days", string(timeRange))

	var dto marketChartDTO
	if err := c.get(ctx, "market_chart", "/coins/"+url.PathEscape(id)+"/market_chart", params, &dto); err != nil {
		return entity.PriceSeries{}, err
	}
	return dto.toEntity(id, vsCurrency, timeRange), nil
}

// GetGlobal implements port.MarketDataClient.
func (c *coinGeckoClientImpl) GetGlobal(ctx context.Context) (entity.GlobalStats, error) {
	var dto globalDTO
	if err := c.get(ctx, "global", "/global", nil, &dto); err != nil {
		return entity.GlobalStats{}, err
	}
	return dto.toEntity(c.vsCurrency), nil
}

// get issues one GET request and decodes the JSON body into out.
func (c *coinGeckoClientImpl) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", requestURL, err)
	}

	c.logger.Debug("Requesting CoinGecko", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(c.apiKeyHeader, c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		metrics.CoinGeckoRequests.WithLabelValues(endpoint, "error").Inc()
		c.logger.Error("Failed to execute request to CoinGecko", zap.String("url", requestURL), zap.Error(err))
		return fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	status := resp.StatusCode()
	metrics.CoinGeckoRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()

	body := resp.Body()
	if status < 200 || status > 299 {
		c.logger.Error("CoinGecko API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", status),
			zap.ByteString("responseBody", body),
		)
		return &APIError{StatusCode: status, URL: requestURL, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("Failed to unmarshal CoinGecko response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", body),
			zap.Error(err),
		)
		return fmt.Errorf("failed to unmarshal response from %s: %w", requestURL, err)
	}
	return nil
}
