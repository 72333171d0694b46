// Package config loads the transport half of config.yaml: how the bot talks
// to Telegram, how it logs, and how aggressively it rate-limits users. The
// shop-specific settings live with the application config.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig carries the bot token and the update delivery mode.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds tunes the long poller; 0 uses the default.
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig is only consulted when run_mode is "webhook".
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig selects output format, level, sampling, and the optional
// file sink.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile names the environment, e.g. "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook delivery of Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long polling.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback names callback button presses in rate-limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage names plain messages in rate-limit exclusions.
	UpdateMessage = "message"
	// UpdatePreCheckout names payment pre-checkout queries; these must never
	// be throttled or the invoice times out.
	UpdatePreCheckout = "pre_checkout"
)

// RateLimitConfig throttles per-user update processing. ExcludeUpdates lists
// update kinds that bypass the limiter (callback, message, pre_checkout).
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the reusable transport configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load reads the YAML file, applies env overrides, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and canonicalizes enumerations.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if err := normalizeRunMode(cfg); err != nil {
		return err
	}
	return normalizeRateLimit(&cfg.RateLimit)
}

func normalizeRunMode(cfg *Config) error {
	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	switch rm {
	case "", "polling":
		rm = RunModeLongpoll
	}

	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm
	return nil
}

func normalizeRateLimit(rl *RateLimitConfig) error {
	for i, v := range rl.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		switch key {
		case UpdateCallback, UpdateMessage, UpdatePreCheckout:
			rl.ExcludeUpdates[i] = key
		default:
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message, pre_checkout", v)
		}
	}
	return nil
}
