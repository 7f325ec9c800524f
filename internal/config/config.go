package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"RSIWatch/internal/backoff"
	"RSIWatch/internal/model"
)

// Endpoint types.
const (
	EndpointURL      = "url"
	EndpointTelegram = "telegram"
	EndpointKafka    = "kafka"
)

// DefaultSymbols are the tickers analysed when none are configured.
var DefaultSymbols = []string{
	"BTC", "ETH", "BNB", "SOL", "JLP", "PENDLE", "PENPIE", "EQB", "SUI",
	"APT", "DEEP", "WAL", "BGB", "MNT", "SPK", "WLD", "ENA",
}

// Config holds all application configuration.
type Config struct {
	Provider       string        `yaml:"provider" default:"coingecko" validate:"oneof=coingecko cryptocompare binance mock"`
	Interval       string        `yaml:"interval" default:"1d" validate:"oneof=1h 4h 1d"`
	Symbols        []string      `yaml:"symbols" validate:"dive,required"`
	Lookback       int           `yaml:"lookback" default:"30" validate:"gt=0"`
	RequestDelay   time.Duration `yaml:"request_delay" default:"20s" validate:"gte=0"`
	HTTPTimeout    time.Duration `yaml:"http_timeout" default:"30s" validate:"gt=0"`
	TimeframeLabel string        `yaml:"timeframe_label"`
	AnalysisLabel  string        `yaml:"analysis_label"`
	Proxy          string        `yaml:"proxy"`

	Thresholds []Threshold `yaml:"thresholds" validate:"dive"`
	Retry      Retry       `yaml:"retry"`

	CoinGecko struct {
		BaseURL string            `yaml:"base_url"`
		APIKey  string            `yaml:"api_key"`
		IDs     map[string]string `yaml:"ids"`
	} `yaml:"coingecko"`
	CryptoCompare struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Quote   string `yaml:"quote" default:"USD"`
	} `yaml:"cryptocompare"`
	Binance struct {
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"api_key"`
		SecretKey string `yaml:"secret_key"`
		Quote     string `yaml:"quote" default:"USDT"`
	} `yaml:"binance"`

	Notify struct {
		Retry     Retry      `yaml:"retry"`
		Endpoints []Endpoint `yaml:"endpoints" validate:"dive"`
		Commands  bool       `yaml:"commands"`
	} `yaml:"notify"`

	Schedule struct {
		Cron string `yaml:"cron" default:"0 0 8 * * *"`
	} `yaml:"schedule"`
	Metrics struct {
		Listen string `yaml:"listen"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`
}

// Threshold is one period's overbought and oversold cutoffs.
type Threshold struct {
	Period     int     `yaml:"period" validate:"gt=0"`
	Overbought float64 `yaml:"overbought" validate:"gte=0,lte=100"`
	Oversold   float64 `yaml:"oversold" validate:"gte=0,lte=100"`
}

// Retry configures a bounded exponential backoff.
type Retry struct {
	Attempts  int           `yaml:"attempts" default:"3" validate:"gte=1,lte=10"`
	BaseDelay time.Duration `yaml:"base_delay" default:"1s" validate:"gte=0"`
}

// Policy converts the settings into a backoff policy.
func (r Retry) Policy() backoff.Policy {
	return backoff.New(r.Attempts, r.BaseDelay)
}

// Endpoint describes one notification target.
type Endpoint struct {
	Name string `yaml:"name" validate:"required"`
	Type string `yaml:"type" validate:"oneof=url telegram kafka"`

	URL string `yaml:"url"` // url: template with {title} and {body}

	BotToken  string `yaml:"bot_token"` // telegram
	ChatID    string `yaml:"chat_id"`
	APIBase   string `yaml:"api_base"`
	ParseMode string `yaml:"parse_mode"`

	Brokers []string `yaml:"brokers"` // kafka
	Topic   string   `yaml:"topic"`
}

// Load reads config from a YAML file, then applies .env, environment overrides and defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = append([]string(nil), DefaultSymbols...)
	}
	if len(cfg.Thresholds) == 0 {
		for _, t := range model.DefaultThresholds().Periods {
			cfg.Thresholds = append(cfg.Thresholds, Threshold{Period: t.Period, Overbought: t.Overbought, Oversold: t.Oversold})
		}
	}
	for i := range cfg.Symbols {
		cfg.Symbols[i] = strings.ToUpper(strings.TrimSpace(cfg.Symbols[i]))
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RSI_SYMBOLS"); v != "" {
		cfg.Symbols = splitList(v)
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("CC_API_KEY"); v != "" {
		cfg.CryptoCompare.APIKey = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.CoinGecko.APIKey = v
	}
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		cfg.Binance.APIKey = v
	}
	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		cfg.Binance.SecretKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("METRICS_LISTEN"); v != "" {
		cfg.Metrics.Listen = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}

	token, chat := os.Getenv("TELEGRAM_BOT_TOKEN"), os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" && chat == "" {
		return
	}
	found := false
	for i := range cfg.Notify.Endpoints {
		ep := &cfg.Notify.Endpoints[i]
		if ep.Type != EndpointTelegram {
			continue
		}
		found = true
		if token != "" {
			ep.BotToken = token
		}
		if chat != "" {
			ep.ChatID = chat
		}
	}
	if !found && token != "" && chat != "" {
		cfg.Notify.Endpoints = append(cfg.Notify.Endpoints, Endpoint{
			Name: EndpointTelegram, Type: EndpointTelegram, BotToken: token, ChatID: chat,
		})
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var validate = validator.New()

// Validate checks struct constraints and the rules that span several fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("%s: failed %q constraint", e.Namespace(), e.Tag())
		}
		return err
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	// market_chart with days=N is daily granularity only
	if c.Provider == "coingecko" && c.Interval != "1d" {
		return fmt.Errorf("interval %s is not supported by coingecko, use 1d", c.Interval)
	}

	periods := make(map[int]bool, len(c.Thresholds))
	maxPeriod := 0
	for _, t := range c.Thresholds {
		if periods[t.Period] {
			return fmt.Errorf("thresholds: period %d listed twice", t.Period)
		}
		periods[t.Period] = true
		if t.Oversold >= t.Overbought {
			return fmt.Errorf("thresholds: period %d oversold %.2f must be below overbought %.2f", t.Period, t.Oversold, t.Overbought)
		}
		if t.Period > maxPeriod {
			maxPeriod = t.Period
		}
	}
	if c.Lookback < maxPeriod+1 {
		return fmt.Errorf("lookback %d is too short for period %d", c.Lookback, maxPeriod)
	}

	names := make(map[string]bool, len(c.Notify.Endpoints))
	for _, ep := range c.Notify.Endpoints {
		if names[ep.Name] {
			return fmt.Errorf("notify.endpoints: name %q used twice", ep.Name)
		}
		names[ep.Name] = true
		if err := ep.validate(); err != nil {
			return fmt.Errorf("notify.endpoints[%s]: %w", ep.Name, err)
		}
	}
	if c.Notify.Commands && c.TelegramEndpoint() == nil {
		return fmt.Errorf("notify.commands requires a telegram endpoint")
	}
	return nil
}

func (e Endpoint) validate() error {
	switch e.Type {
	case EndpointURL:
		if !strings.Contains(e.URL, "{title}") || !strings.Contains(e.URL, "{body}") {
			return fmt.Errorf("url must contain {title} and {body}")
		}
	case EndpointTelegram:
		if e.BotToken == "" || e.ChatID == "" {
			return fmt.Errorf("bot_token and chat_id are required")
		}
	case EndpointKafka:
		if len(e.Brokers) == 0 || e.Topic == "" {
			return fmt.Errorf("brokers and topic are required")
		}
	}
	return nil
}

// ThresholdConfig returns the thresholds in evaluation order.
func (c *Config) ThresholdConfig() model.ThresholdConfig {
	periods := make([]model.PeriodThreshold, len(c.Thresholds))
	for i, t := range c.Thresholds {
		periods[i] = model.PeriodThreshold{Period: t.Period, Overbought: t.Overbought, Oversold: t.Oversold}
	}
	return model.ThresholdConfig{Periods: periods}
}

// TelegramEndpoint returns the first telegram endpoint, or nil.
func (c *Config) TelegramEndpoint() *Endpoint {
	for i := range c.Notify.Endpoints {
		if c.Notify.Endpoints[i].Type == EndpointTelegram {
			return &c.Notify.Endpoints[i]
		}
	}
	return nil
}
