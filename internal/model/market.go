package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedSeries is returned when a price series violates its ordering contract.
var ErrMalformedSeries = errors.New("malformed price series")

// PricePoint is a single observation of a symbol's price.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// PriceSeries holds the normalized, ascending-time price history of one symbol.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

// Validate checks that the series is non-empty and strictly increasing in time.
// It never reorders or de-duplicates points.
func (s PriceSeries) Validate() error {
	if len(s.Points) == 0 {
		return fmt.Errorf("%w: %s has no points", ErrMalformedSeries, s.Symbol)
	}
	for i := 1; i < len(s.Points); i++ {
		prev, cur := s.Points[i-1].Time, s.Points[i].Time
		if !cur.After(prev) {
			return fmt.Errorf("%w: %s point %d at %s does not follow %s",
				ErrMalformedSeries, s.Symbol, i, cur.Format(time.RFC3339), prev.Format(time.RFC3339))
		}
	}
	return nil
}

// Prices returns the price column in series order.
func (s PriceSeries) Prices() []float64 {
	prices := make([]float64, len(s.Points))
	for i, p := range s.Points {
		prices[i] = p.Price
	}
	return prices
}

// Last returns the most recent point. The series must not be empty.
func (s PriceSeries) Last() PricePoint {
	return s.Points[len(s.Points)-1]
}
