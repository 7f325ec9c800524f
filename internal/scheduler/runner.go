package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"RSIWatch/internal/collector"
	"RSIWatch/internal/model"
	"RSIWatch/internal/notifier"
	"RSIWatch/internal/recorder"
	"RSIWatch/internal/strategy"
)

// ErrDeliveryFailed is returned when an alert was due but no endpoint accepted it.
var ErrDeliveryFailed = errors.New("alert not delivered to any endpoint")

// RunReport summarizes one analysis cycle.
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	Duration   time.Duration
	Rows       []model.SymbolRSI
	Events     []model.ExtremeEvent
	Message    model.AlertMessage
	Deliveries map[string]bool
}

// Delivered reports whether at least one endpoint accepted the alert.
func (r *RunReport) Delivered() bool { return notifier.Succeeded(r.Deliveries) }

// RunnerOptions are the per-deployment knobs of a Runner.
type RunnerOptions struct {
	TimeframeLabel string
	DryRun         bool
	Output         io.Writer // console summary; nil discards it
}

// Runner executes the fetch, compute, detect, compose and deliver cycle.
type Runner struct {
	collector  *collector.Collector
	thresholds model.ThresholdConfig
	composer   *notifier.Composer
	notifier   *notifier.Notifier
	recorder   recorder.Recorder
	logger     *zap.Logger
	opts       RunnerOptions
	now        func() time.Time

	mu sync.Mutex
	bg sync.WaitGroup
}

// NewRunner creates a Runner.
func NewRunner(col *collector.Collector, thresholds model.ThresholdConfig, composer *notifier.Composer,
	n *notifier.Notifier, rec recorder.Recorder, logger *zap.Logger, opts RunnerOptions) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	return &Runner{
		collector:  col,
		thresholds: thresholds,
		composer:   composer,
		notifier:   n,
		recorder:   rec,
		logger:     logger,
		opts:       opts,
		now:        time.Now,
	}
}

// RunOnce performs one full cycle. Runs never overlap.
func (r *Runner) RunOnce(ctx context.Context) (*RunReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := &RunReport{RunID: uuid.NewString(), StartedAt: r.now()}
	logger := r.logger.With(zap.String("run_id", report.RunID))
	logger.Info("starting rsi analysis",
		zap.Int("symbols", len(r.collector.Symbols())),
		zap.Ints("periods", r.thresholds.PeriodList()),
	)

	err := r.run(ctx, logger, report)
	report.Duration = r.now().Sub(report.StartedAt)
	r.recorder.RecordRun(report.Duration, err)
	if err != nil {
		logger.Error("rsi analysis failed", zap.Error(err), zap.Duration("duration", report.Duration))
		return report, err
	}
	logger.Info("rsi analysis finished",
		zap.Int("events", len(report.Events)),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// RunInBackground starts RunOnce in its own goroutine. Wait blocks until it returns.
func (r *Runner) RunInBackground(ctx context.Context) {
	r.bg.Add(1)
	go func() {
		defer r.bg.Done()
		_, _ = r.RunOnce(ctx)
	}()
}

// Wait blocks until every run started with RunInBackground has returned.
func (r *Runner) Wait() { r.bg.Wait() }

func (r *Runner) run(ctx context.Context, logger *zap.Logger, report *RunReport) error {
	rows, err := r.collector.Collect(ctx)
	report.Rows = rows
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	fmt.Fprint(r.opts.Output, notifier.FormatSummary(rows, r.thresholds.PeriodList()))

	report.Events = strategy.Detect(rows, r.thresholds)
	r.recorder.RecordEvents(report.Events)
	report.Message = r.composer.Compose(report.Events, r.opts.TimeframeLabel, report.StartedAt)
	fmt.Fprint(r.opts.Output, notifier.FormatOutcome(report.Message))

	if report.Message.IsEmpty() {
		logger.Info("no extreme rsi values, nothing to send")
		return nil
	}
	if r.opts.DryRun {
		logger.Info("dry run, skipping delivery", zap.String("title", report.Message.Title))
		return nil
	}
	if len(r.notifier.EndpointNames()) == 0 {
		logger.Warn("no notification endpoints configured")
		return nil
	}

	report.Deliveries = r.notifier.Deliver(ctx, report.Message.Title, report.Message.Body)
	if !report.Delivered() {
		return ErrDeliveryFailed
	}
	return nil
}

// HandleCommand processes a chat command and returns a reply.
func (r *Runner) HandleCommand(ctx context.Context, command string) string {
	switch command {
	case "/rsi", "立即分析":
		report, err := r.RunOnce(ctx)
		if err != nil {
			return fmt.Sprintf("❌ 分析失败: %v", err)
		}
		if report.Message.IsEmpty() {
			return "没有发现极端RSI值，无需发送提醒。"
		}
		if report.Deliveries == nil {
			return report.Message.Title + "\n\n" + report.Message.Body
		}
		return deliveryAck(report)
	case "/config", "查看配置":
		return notifier.FormatConfig(r.thresholds, r.notifier.Describe())
	default:
		return "可用命令:\n• /rsi 立即分析\n• /config 查看配置"
	}
}

// deliveryAck confirms a /rsi run whose alert went out through the endpoints.
func deliveryAck(report *RunReport) string {
	var failed []string
	for name, ok := range report.Deliveries {
		if !ok {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)

	var b strings.Builder
	fmt.Fprintf(&b, "✅ 分析完成: %s\n推送结果: %d/%d 个接口成功",
		report.Message.Title, len(report.Deliveries)-len(failed), len(report.Deliveries))
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\n失败: %s", strings.Join(failed, ", "))
	}
	return b.String()
}
