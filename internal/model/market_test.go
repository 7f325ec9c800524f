package model

import (
	"errors"
	"testing"
	"time"
)

func seriesAt(symbol string, offsets ...int) PriceSeries {
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	s := PriceSeries{Symbol: symbol}
	for i, off := range offsets {
		s.Points = append(s.Points, PricePoint{Time: base.Add(time.Duration(off) * time.Hour), Price: float64(100 + i)})
	}
	return s
}

func TestPriceSeries_Validate(t *testing.T) {
	tests := []struct {
		name    string
		series  PriceSeries
		wantErr bool
	}{
		{"single point", seriesAt("BTC", 0), false},
		{"ascending", seriesAt("BTC", 0, 4, 8, 12), false},
		{"empty", PriceSeries{Symbol: "BTC"}, true},
		{"duplicate timestamp", seriesAt("BTC", 0, 4, 4, 8), true},
		{"descending", seriesAt("BTC", 8, 4, 0), true},
	}
	for _, tt := range tests {
		err := tt.series.Validate()
		if tt.wantErr {
			if !errors.Is(err, ErrMalformedSeries) {
				t.Errorf("%s: expected ErrMalformedSeries, got %v", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}
}

func TestPriceSeries_ValidateDoesNotReorder(t *testing.T) {
	s := seriesAt("ETH", 8, 4, 0)
	before := append([]PricePoint(nil), s.Points...)
	_ = s.Validate()
	for i := range before {
		if !s.Points[i].Time.Equal(before[i].Time) {
			t.Fatalf("point %d was moved", i)
		}
	}
}

func TestSymbolRSI_ResultMissingPeriod(t *testing.T) {
	row := SymbolRSI{Symbol: "BTC", Results: map[int]RSIResult{14: NewRSIValue(50, 1)}}
	if got := row.Result(6).Status; got != RSIInsufficientData {
		t.Errorf("expected insufficient data for missing period, got %s", got)
	}
	if got := row.Result(14).Status; got != RSIValue {
		t.Errorf("expected value for period 14, got %s", got)
	}
}
