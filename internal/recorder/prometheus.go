package recorder

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"RSIWatch/internal/model"
)

const namespace = "rsiwatch"

// PrometheusRecorder exposes run outcomes on its own registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	fetches    *prometheus.CounterVec
	lastRSI    *prometheus.GaugeVec
	events     *prometheus.CounterVec
	deliveries *prometheus.CounterVec
	runs       *prometheus.CounterVec
	runTime    prometheus.Histogram
	lastRun    prometheus.Gauge
}

// NewPrometheusRecorder creates a recorder backed by a fresh registry, so several
// instances can coexist in one process.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "symbol_fetches_total",
				Help:      "Price series fetches per symbol and outcome",
			},
			[]string{"symbol", "outcome"},
		),
		lastRSI: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_rsi",
				Help:      "Most recent RSI value per symbol and period",
			},
			[]string{"symbol", "period"},
		),
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extreme_events_total",
				Help:      "Extreme RSI events detected",
			},
			[]string{"period", "direction"},
		),
		deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Notification deliveries per endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Completed analysis runs",
			},
			[]string{"outcome"},
		),
		runTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of analysis runs in seconds",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		lastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time of the last completed run",
			},
		),
	}
}

// Registry returns the underlying registry.
func (r *PrometheusRecorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *PrometheusRecorder) RecordFetch(symbol string, err error) {
	r.fetches.WithLabelValues(symbol, outcome(err == nil)).Inc()
}

// RecordRSI only tracks computed values; statuses without a number leave the gauge untouched.
func (r *PrometheusRecorder) RecordRSI(symbol string, period int, result model.RSIResult) {
	if result.Status != model.RSIValue {
		return
	}
	r.lastRSI.WithLabelValues(symbol, strconv.Itoa(period)).Set(result.Value)
}

func (r *PrometheusRecorder) RecordEvents(events []model.ExtremeEvent) {
	for _, ev := range events {
		r.events.WithLabelValues(ev.PeriodLabel, string(ev.Direction)).Inc()
	}
}

func (r *PrometheusRecorder) RecordDelivery(endpoint string, ok bool) {
	r.deliveries.WithLabelValues(endpoint, outcome(ok)).Inc()
}

func (r *PrometheusRecorder) RecordRun(duration time.Duration, err error) {
	r.runs.WithLabelValues(outcome(err == nil)).Inc()
	r.runTime.Observe(duration.Seconds())
	r.lastRun.SetToCurrentTime()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
