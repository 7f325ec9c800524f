package strategy

import (
	"testing"

	"RSIWatch/internal/model"
)

func row(symbol string, rsi14, rsi6 model.RSIResult) model.SymbolRSI {
	return model.SymbolRSI{
		Symbol:  symbol,
		Results: map[int]model.RSIResult{14: rsi14, 6: rsi6},
	}
}

func TestDetect_SingleOverbought(t *testing.T) {
	rows := []model.SymbolRSI{
		row("BTC", model.NewRSIValue(72.50, 63123.45), model.NewRSIValue(55, 63123.45)),
	}
	events := Detect(rows, model.DefaultThresholds())
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Symbol != "BTC" || ev.PeriodLabel != "RSI-14" || ev.Direction != model.Overbought {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.RSIValue != 72.50 {
		t.Errorf("expected RSI 72.50, got %.2f", ev.RSIValue)
	}
	if ev.ReferencePrice == nil || *ev.ReferencePrice != 63123.45 {
		t.Errorf("expected reference price 63123.45, got %v", ev.ReferencePrice)
	}
}

func TestDetect_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		rsi14 float64
		rsi6  float64
		want  []model.Direction
	}{
		{"both at overbought cutoff", 65, 70, []model.Direction{model.Overbought, model.Overbought}},
		{"both at oversold cutoff", 35, 30, []model.Direction{model.Oversold, model.Oversold}},
		{"just inside neutral band", 64.99, 30.01, nil},
		{"mixed", 20, 80, []model.Direction{model.Oversold, model.Overbought}},
		{"neutral", 50, 50, nil},
	}
	for _, tt := range tests {
		rows := []model.SymbolRSI{row("ETH", model.NewRSIValue(tt.rsi14, 1), model.NewRSIValue(tt.rsi6, 1))}
		events := Detect(rows, model.DefaultThresholds())
		if len(events) != len(tt.want) {
			t.Errorf("%s: expected %d events, got %d", tt.name, len(tt.want), len(events))
			continue
		}
		for i, ev := range events {
			if ev.Direction != tt.want[i] {
				t.Errorf("%s: event %d expected %s, got %s", tt.name, i, tt.want[i], ev.Direction)
			}
		}
	}
}

func TestDetect_SkipsFailedAndDegenerate(t *testing.T) {
	failed := model.SymbolRSI{
		Symbol:      "ETH",
		Results:     map[int]model.RSIResult{14: model.FetchError("timeout"), 6: model.FetchError("timeout")},
		FetchFailed: true,
	}
	rows := []model.SymbolRSI{
		row("BTC", model.NewRSIValue(50, 1), model.NewRSIValue(50, 1)),
		failed,
		row("SOL", model.InsufficientData(), model.InsufficientData()),
		{Symbol: "APT"},
	}
	if events := Detect(rows, model.DefaultThresholds()); len(events) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}
}

func TestDetect_FailedFlagWinsOverValues(t *testing.T) {
	r := row("BNB", model.NewRSIValue(90, 1), model.NewRSIValue(90, 1))
	r.FetchFailed = true
	if events := Detect([]model.SymbolRSI{r}, model.DefaultThresholds()); len(events) != 0 {
		t.Errorf("expected failed symbol to be skipped, got %d events", len(events))
	}
}

func TestDetect_PreservesSymbolThenPeriodOrder(t *testing.T) {
	rows := []model.SymbolRSI{
		row("SOL", model.NewRSIValue(20, 150), model.NewRSIValue(85, 150)),
		row("BTC", model.NewRSIValue(66, 60000), model.NewRSIValue(50, 60000)),
		row("APT", model.NewRSIValue(50, 9.8), model.NewRSIValue(25, 9.8)),
	}
	events := Detect(rows, model.DefaultThresholds())
	want := []struct {
		symbol, label string
	}{
		{"SOL", "RSI-14"}, {"SOL", "RSI-6"}, {"BTC", "RSI-14"}, {"APT", "RSI-6"},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, w := range want {
		if events[i].Symbol != w.symbol || events[i].PeriodLabel != w.label {
			t.Errorf("event %d: expected %s %s, got %s %s", i, w.symbol, w.label, events[i].Symbol, events[i].PeriodLabel)
		}
	}
}

func TestDetect_CustomThresholdOrder(t *testing.T) {
	thresholds := model.ThresholdConfig{Periods: []model.PeriodThreshold{
		{Period: 6, Overbought: 80, Oversold: 20},
		{Period: 14, Overbought: 70, Oversold: 30},
	}}
	rows := []model.SymbolRSI{row("BTC", model.NewRSIValue(71, 1), model.NewRSIValue(81, 1))}
	events := Detect(rows, thresholds)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].PeriodLabel != "RSI-6" || events[1].PeriodLabel != "RSI-14" {
		t.Errorf("expected threshold order RSI-6, RSI-14, got %s, %s", events[0].PeriodLabel, events[1].PeriodLabel)
	}
}
