package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"RSIWatch/internal/model"
)

const DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// DefaultCoinGeckoIDs maps the tracked tickers to CoinGecko coin ids.
var DefaultCoinGeckoIDs = map[string]string{
	"BTC":    "bitcoin",
	"ETH":    "ethereum",
	"BNB":    "binancecoin",
	"SOL":    "solana",
	"JLP":    "jupiter-perpetuals-liquidity-provider-token",
	"PENDLE": "pendle",
	"PENPIE": "penpie",
	"EQB":    "equilibria-finance",
	"SUI":    "sui",
	"APT":    "aptos",
	"DEEP":   "deep",
	"WAL":    "walrus-2",
	"BGB":    "bitget-token",
	"MNT":    "mantle",
	"SPK":    "spark-2",
	"WLD":    "worldcoin-wld",
	"ENA":    "ethena",
}

// CoinGeckoSource reads daily closes from the CoinGecko market_chart API.
type CoinGeckoSource struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	ids     map[string]string
}

// NewCoinGeckoSource creates a source. ids overrides entries of DefaultCoinGeckoIDs.
func NewCoinGeckoSource(baseURL, apiKey, proxyURL string, timeout time.Duration, ids map[string]string) *CoinGeckoSource {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	merged := make(map[string]string, len(DefaultCoinGeckoIDs)+len(ids))
	for k, v := range DefaultCoinGeckoIDs {
		merged[k] = v
	}
	for k, v := range ids {
		merged[strings.ToUpper(k)] = v
	}
	return &CoinGeckoSource{
		client:  newRESTClient(timeout, proxyURL),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		ids:     merged,
	}
}

func (s *CoinGeckoSource) Name() string { return "coingecko" }

// coinID falls back to the lowercased ticker for symbols missing from the table.
func (s *CoinGeckoSource) coinID(symbol string) string {
	if id, ok := s.ids[strings.ToUpper(symbol)]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

type marketChart struct {
	Prices [][]float64 `json:"prices"`
	Error  string      `json:"error"`
	Status *struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

// FetchSeries requests lookback days of daily prices.
func (s *CoinGeckoSource) FetchSeries(ctx context.Context, symbol string, lookback int) (model.PriceSeries, error) {
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart", s.baseURL, url.PathEscape(s.coinID(symbol)))

	req := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"vs_currency": "usd",
			"days":        strconv.Itoa(lookback),
			"interval":    "daily",
		})
	if s.apiKey != "" {
		req.SetHeader("x-cg-demo-api-key", s.apiKey)
	}

	resp, err := req.Get(endpoint)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("coingecko request: %w", err)
	}
	if resp.IsError() {
		return model.PriceSeries{}, fmt.Errorf("coingecko: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	var chart marketChart
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		return model.PriceSeries{}, fmt.Errorf("coingecko decode: %w", err)
	}
	if chart.Error != "" {
		return model.PriceSeries{}, fmt.Errorf("coingecko api error: %s", chart.Error)
	}
	if chart.Status != nil && chart.Status.ErrorCode != 0 {
		return model.PriceSeries{}, fmt.Errorf("coingecko api error %d: %s", chart.Status.ErrorCode, chart.Status.ErrorMessage)
	}
	if len(chart.Prices) == 0 {
		return model.PriceSeries{}, fmt.Errorf("coingecko: no data returned for %s", symbol)
	}

	series := model.PriceSeries{Symbol: symbol, Points: make([]model.PricePoint, 0, len(chart.Prices))}
	for i, pair := range chart.Prices {
		if len(pair) < 2 {
			return model.PriceSeries{}, fmt.Errorf("coingecko: price entry %d has %d fields", i, len(pair))
		}
		series.Points = append(series.Points, model.PricePoint{
			Time:  time.UnixMilli(int64(pair[0])).UTC(),
			Price: pair[1],
		})
	}
	return series, nil
}
