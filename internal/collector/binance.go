package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"

	"RSIWatch/internal/model"
)

// BinanceSource reads spot kline closes for symbol+quote pairs.
type BinanceSource struct {
	client   *binance.Client
	quote    string
	interval string
}

// NewBinanceSource creates a source. An empty baseURL keeps the library default.
func NewBinanceSource(apiKey, secretKey, baseURL, quote, interval, proxyURL string, timeout time.Duration) *BinanceSource {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if quote == "" {
		quote = "USDT"
	}
	if interval == "" {
		interval = "1d"
	}

	client := binance.NewClient(apiKey, secretKey)
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client.HTTPClient = &http.Client{Timeout: timeout, Transport: transport}
	if baseURL != "" {
		client.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &BinanceSource{client: client, quote: strings.ToUpper(quote), interval: interval}
}

func (s *BinanceSource) Name() string { return "binance" }

// FetchSeries requests the latest lookback klines. Each point is keyed by the kline open time.
func (s *BinanceSource) FetchSeries(ctx context.Context, symbol string, lookback int) (model.PriceSeries, error) {
	pair := strings.ToUpper(symbol) + s.quote
	klines, err := s.client.NewKlinesService().
		Symbol(pair).
		Interval(s.interval).
		Limit(lookback).
		Do(ctx)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("binance klines %s: %w", pair, err)
	}
	if len(klines) == 0 {
		return model.PriceSeries{}, fmt.Errorf("binance: no klines returned for %s", pair)
	}

	series := model.PriceSeries{Symbol: symbol, Points: make([]model.PricePoint, 0, len(klines))}
	for _, k := range klines {
		closePrice, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return model.PriceSeries{}, fmt.Errorf("binance: parse close %q: %w", k.Close, err)
		}
		series.Points = append(series.Points, model.PricePoint{
			Time:  time.UnixMilli(k.OpenTime).UTC(),
			Price: closePrice,
		})
	}
	return series, nil
}
