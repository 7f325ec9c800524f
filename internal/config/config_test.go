package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"RSI_SYMBOLS", "DATA_PROVIDER", "CC_API_KEY", "COINGECKO_API_KEY", "BINANCE_API_KEY",
	"BINANCE_SECRET_KEY", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HTTPS_PROXY",
	"CRON_SCHEDULE", "METRICS_LISTEN", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "coingecko" || cfg.Interval != "1d" || cfg.Lookback != 30 {
		t.Errorf("unexpected provider defaults %s/%s/%d", cfg.Provider, cfg.Interval, cfg.Lookback)
	}
	if cfg.RequestDelay != 20*time.Second {
		t.Errorf("expected 20s delay, got %v", cfg.RequestDelay)
	}
	if cfg.Retry.Attempts != 3 || cfg.Retry.BaseDelay != time.Second {
		t.Errorf("unexpected retry defaults %+v", cfg.Retry)
	}
	if len(cfg.Symbols) != len(DefaultSymbols) || cfg.Symbols[0] != "BTC" {
		t.Errorf("unexpected default symbols %v", cfg.Symbols)
	}

	th := cfg.ThresholdConfig()
	if len(th.Periods) != 2 || th.Periods[0].Period != 14 || th.Periods[1].Period != 6 {
		t.Fatalf("unexpected default thresholds %+v", th)
	}
	if th.Periods[0].Overbought != 65 || th.Periods[1].Oversold != 30 {
		t.Errorf("unexpected cutoffs %+v", th)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
provider: cryptocompare
interval: 4h
lookback: 100
request_delay: 5s
timeframe_label: 4h
symbols: [btc, " eth "]
thresholds:
  - {period: 6, overbought: 75, oversold: 25}
notify:
  endpoints:
    - name: ft07
      type: url
      url: "https://push.example.com/send/KEY?title={title}&desp={body}"
    - name: tg
      type: telegram
`)
	t.Setenv("CC_API_KEY", "cc-secret")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "cryptocompare" || cfg.Interval != "4h" || cfg.Lookback != 100 {
		t.Errorf("yaml values lost: %+v", cfg)
	}
	if cfg.RequestDelay != 5*time.Second {
		t.Errorf("expected 5s delay, got %v", cfg.RequestDelay)
	}
	if strings.Join(cfg.Symbols, ",") != "BTC,ETH" {
		t.Errorf("expected normalized symbols, got %v", cfg.Symbols)
	}
	if cfg.CryptoCompare.APIKey != "cc-secret" || cfg.CryptoCompare.Quote != "USD" {
		t.Errorf("unexpected cryptocompare settings %+v", cfg.CryptoCompare)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Log.Level)
	}
	tg := cfg.TelegramEndpoint()
	if tg == nil || tg.BotToken != "token" || tg.ChatID != "42" {
		t.Fatalf("telegram env override not applied: %+v", tg)
	}
	if th := cfg.ThresholdConfig(); len(th.Periods) != 1 || th.Periods[0].Overbought != 75 {
		t.Errorf("unexpected thresholds %+v", th)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config: %v", err)
	}
}

func TestLoad_TelegramFromEnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("RSI_SYMBOLS", "sol, apt")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Notify.Endpoints) != 1 || cfg.Notify.Endpoints[0].Type != EndpointTelegram {
		t.Fatalf("expected an implicit telegram endpoint, got %+v", cfg.Notify.Endpoints)
	}
	if strings.Join(cfg.Symbols, ",") != "SOL,APT" {
		t.Errorf("unexpected symbols %v", cfg.Symbols)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	if _, err := Load(writeConfig(t, "provider: [unterminated")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"unknown provider", func(c *Config) { c.Provider = "yahoo" }, "Provider"},
		{"bad interval", func(c *Config) { c.Interval = "15m" }, "Interval"},
		{"coingecko intraday", func(c *Config) {
			c.Provider = "coingecko"
			c.Interval = "4h"
		}, "not supported by coingecko"},
		{"inverted thresholds", func(c *Config) { c.Thresholds[0].Oversold = 70 }, "must be below"},
		{"duplicate period", func(c *Config) { c.Thresholds[1].Period = 14 }, "listed twice"},
		{"short lookback", func(c *Config) { c.Lookback = 10 }, "too short"},
		{"url without placeholders", func(c *Config) {
			c.Notify.Endpoints = []Endpoint{{Name: "push", Type: EndpointURL, URL: "https://example.com/send"}}
		}, "{title}"},
		{"kafka without topic", func(c *Config) {
			c.Notify.Endpoints = []Endpoint{{Name: "bus", Type: EndpointKafka, Brokers: []string{"localhost:9092"}}}
		}, "topic"},
		{"duplicate endpoint", func(c *Config) {
			ep := Endpoint{Name: "push", Type: EndpointURL, URL: "https://x/{title}/{body}"}
			c.Notify.Endpoints = []Endpoint{ep, ep}
		}, "used twice"},
		{"commands without telegram", func(c *Config) { c.Notify.Commands = true }, "telegram"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("expected error containing %q, got %v", tt.errSub, err)
			}
		})
	}
}
