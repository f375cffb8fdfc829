package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"candlerank/internal/errors"
	"candlerank/internal/models"
	"candlerank/pkg/utils"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches OHLCV series from the Yahoo Finance chart API.
type YahooProvider struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
	Retry     utils.RetryConfig
	Breaker   *Breaker
}

// NewYahooProvider creates a provider with sane timeouts, retry, and a
// circuit breaker. Unknown-symbol and empty-data answers are treated
// as authoritative and never trip the breaker.
func NewYahooProvider() *YahooProvider {
	cfg := DefaultBreakerConfig()
	cfg.Benign = func(err error) bool {
		return errors.Is(err, errors.ErrSymbolNotFound) || errors.Is(err, errors.ErrDataNotFound)
	}
	return &YahooProvider{
		Client:    &http.Client{Timeout: 30 * time.Second},
		BaseURL:   defaultYahooBaseURL,
		UserAgent: "Mozilla/5.0",
		Retry:     utils.DefaultRetryConfig(),
		Breaker:   NewBreaker(cfg),
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

// yahooChart is the response structure from the chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func toVolume(v interface{}) int64 {
	return int64(toFloat(v))
}

// Fetch retrieves the chart for symbol at the given native interval and
// range, sorted chronologically. Null bars (holidays) are skipped.
// Transport failures are retried with capped exponential backoff; a
// streak of exhausted retries opens the circuit breaker and later
// fetches fail fast until the cooldown passes.
func (p *YahooProvider) Fetch(ctx context.Context, symbol, interval, rng string) ([]models.Candle, error) {
	fetch := func() ([]models.Candle, error) {
		return utils.RetryWithResult(ctx, p.Retry, func() ([]models.Candle, error) {
			return p.fetchChart(ctx, symbol, interval, rng)
		})
	}
	if p.Breaker == nil {
		return fetch()
	}
	return breakerDo(p.Breaker, fetch)
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol, interval, rng string) ([]models.Candle, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		p.BaseURL, url.PathEscape(symbol), url.QueryEscape(interval), url.QueryEscape(rng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, errors.NewDataError(p.Name(), symbol, "fetch failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewDataError(p.Name(), symbol, "read body failed", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NewDataError(p.Name(), symbol, "symbol not found", errors.ErrSymbolNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.NewDataError(p.Name(), symbol, "rate limited", errors.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.NewDataError(p.Name(), symbol,
			fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(body, 200)), nil)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, errors.NewDataError(p.Name(), symbol, "decode failed", err)
	}
	if chart.Chart.Error != nil {
		return nil, errors.NewDataError(p.Name(), symbol, chart.Chart.Error.Description, errors.ErrDataNotFound)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, errors.NewDataError(p.Name(), symbol, "no data returned", errors.ErrDataNotFound)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, errors.NewDataError(p.Name(), symbol, "no quote data", errors.ErrDataNotFound)
	}
	quote := result.Indicators.Quote[0]

	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // null bars on holidays
		}
		var v int64
		if i < len(quote.Volume) {
			v = toVolume(quote.Volume[i])
		}
		candles = append(candles, models.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    v,
		})
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return candles, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
