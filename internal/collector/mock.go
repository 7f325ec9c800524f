package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"RSIWatch/internal/model"
)

var mockEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Prices map[string][]float64 // explicit closes per symbol, one per day from mockEpoch
	Errors map[string]error
	Base   float64 // when > 0, symbols without explicit prices get a generated oscillating series
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) FetchSeries(ctx context.Context, symbol string, lookback int) (model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return model.PriceSeries{}, err
	}
	if err, ok := m.Errors[symbol]; ok {
		return model.PriceSeries{}, err
	}
	prices, ok := m.Prices[symbol]
	if !ok {
		if m.Base <= 0 {
			return model.PriceSeries{}, fmt.Errorf("mock: no data for %s", symbol)
		}
		prices = generateMockPrices(m.Base, lookback)
	}
	return seriesFromCloses(symbol, prices), nil
}

func generateMockPrices(base float64, count int) []float64 {
	prices := make([]float64, count)
	for i := range prices {
		prices[i] = base * (1 + 0.05*math.Sin(float64(i)*0.7))
	}
	return prices
}

func seriesFromCloses(symbol string, closes []float64) model.PriceSeries {
	points := make([]model.PricePoint, len(closes))
	for i, p := range closes {
		points[i] = model.PricePoint{Time: mockEpoch.AddDate(0, 0, i), Price: p}
	}
	return model.PriceSeries{Symbol: symbol, Points: points}
}
