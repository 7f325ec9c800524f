package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"RSIWatch/internal/collector"
	"RSIWatch/internal/config"
	"RSIWatch/internal/logging"
	"RSIWatch/internal/notifier"
	"RSIWatch/internal/recorder"
	"RSIWatch/internal/scheduler"
)

func main() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	cfgPath := pflag.StringP("config", "c", defaultPath, "path to the YAML config file")
	daemon := pflag.BoolP("daemon", "d", false, "run on the cron schedule instead of once")
	dryRun := pflag.Bool("dry-run", false, "analyse and print the alert without delivering it")
	pflag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger, *daemon, *dryRun); err != nil {
		logger.Error("rsiwatch exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger, daemon, dryRun bool) error {
	logger.Info("rsiwatch starting",
		zap.String("provider", cfg.Provider),
		zap.String("interval", cfg.Interval),
		zap.Strings("symbols", cfg.Symbols),
		zap.Bool("daemon", daemon),
		zap.Bool("dry_run", dryRun),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := buildSource(cfg)
	if err != nil {
		return err
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	var prom *recorder.PrometheusRecorder
	if daemon && cfg.Metrics.Listen != "" {
		prom = recorder.NewPrometheusRecorder()
		rec = prom
	}

	endpoints, telegram, err := buildEndpoints(cfg, logger)
	if err != nil {
		return err
	}
	notify := notifier.NewNotifier(endpoints, cfg.Notify.Retry.Policy(), rec, logger.Named("notifier"))
	defer notify.Close()

	thresholds := cfg.ThresholdConfig()
	col := collector.NewCollector(source, thresholds, collector.Options{
		Symbols:  cfg.Symbols,
		Lookback: cfg.Lookback,
		Delay:    cfg.RequestDelay,
		Retry:    cfg.Retry.Policy(),
	}, rec, logger.Named("collector"))

	runner := scheduler.NewRunner(col, thresholds, notifier.NewComposer(thresholds, cfg.AnalysisLabel), notify, rec,
		logger, scheduler.RunnerOptions{
			TimeframeLabel: cfg.TimeframeLabel,
			DryRun:         dryRun,
			Output:         os.Stdout,
		})

	if !daemon {
		// Run failures are logged by the runner and do not change the exit status.
		_, _ = runner.RunOnce(ctx)
		return nil
	}

	sched := scheduler.NewScheduler(ctx, runner, logger.Named("scheduler"))
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()
	defer runner.Wait()

	if prom != nil {
		srv := recorder.NewServer(cfg.Metrics.Listen, prom, logger.Named("status"))
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Error("status server failed", zap.Error(err))
			}
		}()
	}

	if cfg.Notify.Commands && telegram != nil {
		go telegram.Poll(ctx, runner.HandleCommand)
	}

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, running analysis now")
		runner.RunInBackground(ctx)
	}

	logger.Info("rsiwatch is running, press Ctrl+C to stop")
	<-ctx.Done()
	logger.Info("shutdown signal received, stopping")
	return nil
}

func buildSource(cfg *config.Config) (collector.DataSource, error) {
	switch cfg.Provider {
	case "coingecko":
		return collector.NewCoinGeckoSource(cfg.CoinGecko.BaseURL, cfg.CoinGecko.APIKey, cfg.Proxy, cfg.HTTPTimeout, cfg.CoinGecko.IDs), nil
	case "cryptocompare":
		return collector.NewCryptoCompareSource(cfg.CryptoCompare.BaseURL, cfg.CryptoCompare.APIKey,
			cfg.CryptoCompare.Quote, cfg.Interval, cfg.Proxy, cfg.HTTPTimeout)
	case "binance":
		return collector.NewBinanceSource(cfg.Binance.APIKey, cfg.Binance.SecretKey, cfg.Binance.BaseURL,
			cfg.Binance.Quote, cfg.Interval, cfg.Proxy, cfg.HTTPTimeout), nil
	case "mock":
		return &collector.MockSource{Base: 100}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// buildEndpoints also returns the first telegram endpoint, which serves chat commands.
func buildEndpoints(cfg *config.Config, logger *zap.Logger) ([]notifier.Endpoint, *notifier.TelegramEndpoint, error) {
	var (
		endpoints []notifier.Endpoint
		telegram  *notifier.TelegramEndpoint
	)
	for _, ep := range cfg.Notify.Endpoints {
		epLogger := logger.Named("endpoint").With(zap.String("endpoint", ep.Name))
		switch ep.Type {
		case config.EndpointURL:
			endpoints = append(endpoints, notifier.NewURLEndpoint(ep.Name, ep.URL, cfg.Proxy, cfg.HTTPTimeout, epLogger))
		case config.EndpointTelegram:
			tg := notifier.NewTelegramEndpoint(ep.Name, ep.APIBase, ep.BotToken, ep.ChatID, ep.ParseMode, cfg.Proxy, cfg.HTTPTimeout, epLogger)
			if telegram == nil {
				telegram = tg
			}
			endpoints = append(endpoints, tg)
		case config.EndpointKafka:
			k, err := notifier.NewKafkaEndpoint(ep.Name, ep.Brokers, ep.Topic, cfg.HTTPTimeout)
			if err != nil {
				return nil, nil, err
			}
			endpoints = append(endpoints, k)
		}
	}
	return endpoints, telegram, nil
}
