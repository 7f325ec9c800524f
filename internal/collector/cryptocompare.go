package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"RSIWatch/internal/model"
)

const DefaultCryptoCompareURL = "https://min-api.cryptocompare.com"

// CryptoCompareSource reads aggregated hourly or daily closes from the CryptoCompare
// histo endpoints.
type CryptoCompareSource struct {
	client    *resty.Client
	baseURL   string
	apiKey    string
	quote     string
	path      string
	aggregate int
}

// histoEndpoint maps a candle interval onto an endpoint and aggregation factor.
func histoEndpoint(interval string) (string, int, error) {
	switch strings.ToLower(interval) {
	case "1h":
		return "histohour", 1, nil
	case "4h":
		return "histohour", 4, nil
	case "1d", "":
		return "histoday", 1, nil
	default:
		return "", 0, fmt.Errorf("cryptocompare: unsupported interval %q", interval)
	}
}

// NewCryptoCompareSource creates a source for interval ("1h", "4h" or "1d") quoted in quote.
func NewCryptoCompareSource(baseURL, apiKey, quote, interval, proxyURL string, timeout time.Duration) (*CryptoCompareSource, error) {
	path, aggregate, err := histoEndpoint(interval)
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = DefaultCryptoCompareURL
	}
	if quote == "" {
		quote = "USD"
	}
	return &CryptoCompareSource{
		client:    newRESTClient(timeout, proxyURL),
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		quote:     strings.ToUpper(quote),
		path:      path,
		aggregate: aggregate,
	}, nil
}

func (s *CryptoCompareSource) Name() string { return "cryptocompare" }

type histoResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     struct {
		Data []struct {
			Time  int64   `json:"time"`
			Close float64 `json:"close"`
		} `json:"Data"`
	} `json:"Data"`
}

// FetchSeries requests lookback aggregated candles.
func (s *CryptoCompareSource) FetchSeries(ctx context.Context, symbol string, lookback int) (model.PriceSeries, error) {
	req := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fsym":      strings.ToUpper(symbol),
			"tsym":      s.quote,
			"limit":     strconv.Itoa(lookback),
			"aggregate": strconv.Itoa(s.aggregate),
		})
	if s.apiKey != "" {
		req.SetHeader("authorization", "Apikey "+s.apiKey)
	}

	resp, err := req.Get(fmt.Sprintf("%s/data/v2/%s", s.baseURL, s.path))
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("cryptocompare request: %w", err)
	}
	if resp.IsError() {
		return model.PriceSeries{}, fmt.Errorf("cryptocompare: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	var histo histoResponse
	if err := json.Unmarshal(resp.Body(), &histo); err != nil {
		return model.PriceSeries{}, fmt.Errorf("cryptocompare decode: %w", err)
	}
	if histo.Response == "Error" {
		return model.PriceSeries{}, fmt.Errorf("cryptocompare api error: %s", histo.Message)
	}
	if len(histo.Data.Data) == 0 {
		return model.PriceSeries{}, fmt.Errorf("cryptocompare: no data returned for %s", symbol)
	}

	series := model.PriceSeries{Symbol: symbol, Points: make([]model.PricePoint, 0, len(histo.Data.Data))}
	for _, c := range histo.Data.Data {
		series.Points = append(series.Points, model.PricePoint{
			Time:  time.Unix(c.Time, 0).UTC(),
			Price: c.Close,
		})
	}
	return series, nil
}
