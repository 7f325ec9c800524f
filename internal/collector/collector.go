package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"RSIWatch/internal/backoff"
	"RSIWatch/internal/calculator"
	"RSIWatch/internal/model"
	"RSIWatch/internal/recorder"
)

// Options tune how the collector walks its symbols.
type Options struct {
	Symbols  []string
	Lookback int           // candles requested per symbol
	Delay    time.Duration // minimum spacing between provider requests
	Retry    backoff.Policy
}

// Collector fetches every configured symbol and computes its RSI for each period.
type Collector struct {
	source     DataSource
	thresholds model.ThresholdConfig
	opts       Options
	limiter    *rate.Limiter
	recorder   recorder.Recorder
	logger     *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(source DataSource, thresholds model.ThresholdConfig, opts Options, rec recorder.Recorder, logger *zap.Logger) *Collector {
	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		source:     source,
		thresholds: thresholds,
		opts:       opts,
		limiter:    rate.NewLimiter(limit, 1),
		recorder:   rec,
		logger:     logger.With(zap.String("source", source.Name())),
	}
}

// Symbols returns the configured symbols in processing order.
func (c *Collector) Symbols() []string { return c.opts.Symbols }

// Collect walks the symbols sequentially. A failing symbol is reported in its row and never
// stops the others; only context cancellation ends the walk early, returning the rows so far.
func (c *Collector) Collect(ctx context.Context) ([]model.SymbolRSI, error) {
	rows := make([]model.SymbolRSI, 0, len(c.opts.Symbols))
	for i, symbol := range c.opts.Symbols {
		if err := c.limiter.Wait(ctx); err != nil {
			return rows, fmt.Errorf("wait for rate limiter: %w", err)
		}
		c.logger.Info("fetching symbol",
			zap.String("symbol", symbol),
			zap.Int("index", i+1),
			zap.Int("total", len(c.opts.Symbols)),
		)
		row := c.CollectSymbol(ctx, symbol)
		if errors.Is(row.Err, context.Canceled) || errors.Is(row.Err, context.DeadlineExceeded) {
			return rows, row.Err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CollectSymbol fetches one symbol with retries, validates the series and evaluates
// every configured period.
func (c *Collector) CollectSymbol(ctx context.Context, symbol string) model.SymbolRSI {
	row := model.SymbolRSI{Symbol: symbol, Results: make(map[int]model.RSIResult, len(c.thresholds.Periods))}

	retry := c.opts.Retry
	retry.OnRetry = func(attempt int, wait time.Duration, err error) {
		c.logger.Warn("fetch failed, retrying",
			zap.String("symbol", symbol),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	var series model.PriceSeries
	err := retry.Do(ctx, func(ctx context.Context) error {
		var fetchErr error
		series, fetchErr = c.source.FetchSeries(ctx, symbol, c.opts.Lookback)
		return fetchErr
	})
	if err == nil {
		err = series.Validate()
	}
	c.recorder.RecordFetch(symbol, err)
	if err != nil {
		c.logger.Error("symbol unavailable", zap.String("symbol", symbol), zap.Error(err))
		return c.failed(row, err)
	}

	for _, t := range c.thresholds.Periods {
		result := calculator.EvaluateRSI(series, t.Period)
		row.Results[t.Period] = result
		c.recorder.RecordRSI(symbol, t.Period, result)
		if result.Status == model.RSIValue {
			c.logger.Debug("rsi computed",
				zap.String("symbol", symbol),
				zap.String("period", t.Label()),
				zap.Float64("rsi", result.Value),
				zap.Float64("price", result.Price),
			)
		} else {
			c.logger.Warn("insufficient data",
				zap.String("symbol", symbol),
				zap.String("period", t.Label()),
				zap.Int("points", len(series.Points)),
			)
		}
	}
	return row
}

func (c *Collector) failed(row model.SymbolRSI, err error) model.SymbolRSI {
	row.FetchFailed = true
	row.Err = err
	for _, t := range c.thresholds.Periods {
		row.Results[t.Period] = model.FetchError(err.Error())
	}
	return row
}
