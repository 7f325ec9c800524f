package strategy

import "RSIWatch/internal/model"

// classify maps a single RSI reading onto a direction. Both cutoffs are inclusive.
func classify(rsi float64, t model.PeriodThreshold) (model.Direction, bool) {
	switch {
	case rsi >= t.Overbought:
		return model.Overbought, true
	case rsi <= t.Oversold:
		return model.Oversold, true
	default:
		return "", false
	}
}

// Detect scans every symbol's RSI results and returns the extreme events in
// symbol-then-period order. Symbols flagged as failed contribute nothing, and only
// Value results are classified.
func Detect(rows []model.SymbolRSI, thresholds model.ThresholdConfig) []model.ExtremeEvent {
	var events []model.ExtremeEvent
	for _, row := range rows {
		if row.FetchFailed {
			continue
		}
		for _, t := range thresholds.Periods {
			res := row.Result(t.Period)
			if res.Status != model.RSIValue {
				continue
			}
			dir, ok := classify(res.Value, t)
			if !ok {
				continue
			}
			price := res.Price
			events = append(events, model.ExtremeEvent{
				Symbol:         row.Symbol,
				PeriodLabel:    t.Label(),
				Direction:      dir,
				RSIValue:       res.Value,
				ReferencePrice: &price,
			})
		}
	}
	return events
}
