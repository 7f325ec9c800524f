package collector

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"RSIWatch/internal/model"
)

// DataSource supplies a normalized price series per symbol.
type DataSource interface {
	// FetchSeries returns up to lookback candles for symbol in ascending time order.
	FetchSeries(ctx context.Context, symbol string, lookback int) (model.PriceSeries, error)
	Name() string
}

const defaultTimeout = 30 * time.Second

// newRESTClient builds the resty client shared by the HTTP providers. Retries are
// left to the collector's policy.
func newRESTClient(timeout time.Duration, proxyURL string) *resty.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "rsiwatch/1.0")
	if proxyURL != "" {
		c.SetProxy(proxyURL)
	}
	return c
}
