package calculator

import (
	"errors"

	"RSIWatch/internal/model"
)

var (
	ErrInvalidPeriod    = errors.New("period must be positive")
	ErrInsufficientData = errors.New("not enough data for RSI calculation")
)

// neutralRSI is reported when both smoothed gain and smoothed loss are zero.
const neutralRSI = 50.0

// CalculateRSI computes the Wilder-smoothed RSI trajectory of prices.
// Requires at least period+1 prices and returns one value per price change (len(prices)-1).
// Smoothing uses alpha = 1/period seeded directly by the first change.
func CalculateRSI(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(prices) < period+1 {
		return nil, ErrInsufficientData
	}

	alpha := 1.0 / float64(period)
	out := make([]float64, 0, len(prices)-1)

	var avgGain, avgLoss float64
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		if i == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}
		out = append(out, rsiFromAverages(avgGain, avgLoss))
	}
	return out, nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return neutralRSI
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// EvaluateRSI returns the latest RSI of series paired with its latest price,
// or InsufficientData when the series is too short.
func EvaluateRSI(series model.PriceSeries, period int) model.RSIResult {
	values, err := CalculateRSI(series.Prices(), period)
	if err != nil {
		return model.InsufficientData()
	}
	return model.NewRSIValue(values[len(values)-1], series.Last().Price)
}
