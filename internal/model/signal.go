package model

import "fmt"

// Direction indicates which side of the neutral band an RSI reading fell on.
type Direction string

const (
	Overbought Direction = "OVERBOUGHT"
	Oversold   Direction = "OVERSOLD"
)

// Label returns the Chinese label used in alert text.
func (d Direction) Label() string {
	switch d {
	case Overbought:
		return "超买"
	case Oversold:
		return "超卖"
	default:
		return string(d)
	}
}

// PeriodThreshold holds the cutoffs for one RSI period.
type PeriodThreshold struct {
	Period     int
	Overbought float64
	Oversold   float64
}

// Label returns the period label, e.g. "RSI-14".
func (p PeriodThreshold) Label() string {
	return PeriodLabel(p.Period)
}

// PeriodLabel formats an RSI period as "RSI-<n>".
func PeriodLabel(period int) string {
	return fmt.Sprintf("RSI-%d", period)
}

// ThresholdConfig lists the periods to evaluate, in evaluation order.
// It is built once per run and never mutated.
type ThresholdConfig struct {
	Periods []PeriodThreshold
}

// DefaultThresholds returns RSI-14 at 65/35 followed by RSI-6 at 70/30.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{Periods: []PeriodThreshold{
		{Period: 14, Overbought: 65, Oversold: 35},
		{Period: 6, Overbought: 70, Oversold: 30},
	}}
}

// PeriodList returns the configured periods in order.
func (c ThresholdConfig) PeriodList() []int {
	out := make([]int, len(c.Periods))
	for i, p := range c.Periods {
		out[i] = p.Period
	}
	return out
}

// ExtremeEvent is a symbol/period whose RSI crossed a threshold in the current run.
type ExtremeEvent struct {
	Symbol         string
	PeriodLabel    string
	Direction      Direction
	RSIValue       float64
	ReferencePrice *float64
}

// AlertMessage is the rendered form of an event list. Both fields are empty when
// there is nothing to notify.
type AlertMessage struct {
	Title string
	Body  string
}

// IsEmpty reports whether the message should be suppressed.
func (m AlertMessage) IsEmpty() bool {
	return m.Title == "" && m.Body == ""
}
