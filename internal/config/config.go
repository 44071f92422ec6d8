package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	ShutdownTimeout time.Duration
	LogLevel        string

	ShopID            string
	SecretKey         string
	GatewayURL        string
	ReturnURL         string
	BotUsername       string
	VATCode           int
	TaxSystemCode     int
	DefaultEmail      string
	PollInterval      time.Duration
	PollMaxAttempts   int
	ReconcileInterval time.Duration
	SweepWorkers      int
	WebhookPath       string
	BotToken          string
	TelegramAPIURL    string
	AdminIDs          []int64
	APIKeyHash        string
	AuthSecret        string
}

const (
	defaultRunAddress        = ":8080"
	defaultShutdownTimeout   = 10 * time.Second
	defaultLogLevel          = "info"
	defaultGatewayURL        = "https://api.yookassa.ru/v3"
	defaultBotUsername       = "YOUR_BOT_USERNAME"
	defaultVATCode           = 1
	defaultTaxSystemCode     = 1
	defaultPollInterval      = 5 * time.Second
	defaultPollMaxAttempts   = 120
	defaultReconcileInterval = 20 * time.Second
	minReconcileInterval     = 5 * time.Second
	defaultSweepWorkers      = 4
	defaultWebhookPath       = "/yookassa/webhook"
	defaultTelegramAPIURL    = "https://api.telegram.org"
	defaultAuthSecret        = "change-me-in-production"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:          getString(lookup, "LOG_LEVEL", defaultLogLevel),
		ShopID:            getString(lookup, "YOOKASSA_SHOP_ID", ""),
		SecretKey:         getString(lookup, "YOOKASSA_SECRET_KEY", ""),
		GatewayURL:        getString(lookup, "YOOKASSA_API_URL", defaultGatewayURL),
		ReturnURL:         getString(lookup, "YOOKASSA_RETURN_URL", ""),
		BotUsername:       getString(lookup, "BOT_USERNAME", defaultBotUsername),
		VATCode:           getInt(lookup, "YOOKASSA_VAT_CODE", defaultVATCode),
		TaxSystemCode:     getInt(lookup, "YOOKASSA_TAX_SYSTEM_CODE", defaultTaxSystemCode),
		DefaultEmail:      getString(lookup, "YOOKASSA_DEFAULT_EMAIL", ""),
		PollInterval:      getDuration(lookup, "YOOKASSA_POLL_INTERVAL", defaultPollInterval),
		PollMaxAttempts:   getInt(lookup, "YOOKASSA_POLL_MAX", defaultPollMaxAttempts),
		ReconcileInterval: getDuration(lookup, "YOOKASSA_RECONCILE_INTERVAL", defaultReconcileInterval),
		SweepWorkers:      getInt(lookup, "SWEEP_WORKERS", defaultSweepWorkers),
		WebhookPath:       getString(lookup, "WEBHOOK_PATH", defaultWebhookPath),
		BotToken:          getString(lookup, "TOKEN", ""),
		TelegramAPIURL:    getString(lookup, "TELEGRAM_API_URL", defaultTelegramAPIURL),
		APIKeyHash:        getString(lookup, "API_KEY_HASH", ""),
		AuthSecret:        getString(lookup, "AUTH_SECRET", defaultAuthSecret),
	}

	admins := getString(lookup, "ADMIN_IDS", "")

	fs := flag.NewFlagSet("storebot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr      = cfg.PollInterval.String()
		reconcileIntervalStr = cfg.ReconcileInterval.String()
		shutdownTimeoutStr   = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between per-order payment polls")
	fs.IntVar(&cfg.PollMaxAttempts, "poll-max", cfg.PollMaxAttempts, "Per-order poll attempt budget")
	fs.StringVar(&reconcileIntervalStr, "reconcile-interval", reconcileIntervalStr, "Interval between pending payment sweeps")
	fs.IntVar(&cfg.SweepWorkers, "sweep-workers", cfg.SweepWorkers, "Number of concurrent sweep workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.WebhookPath, "webhook-path", cfg.WebhookPath, "Payment webhook route")
	fs.StringVar(&admins, "admins", admins, "Comma separated admin chat ids")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.PollInterval, err = parseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ReconcileInterval, err = parseDuration(reconcileIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = parseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.AdminIDs, err = parseIDs(admins); err != nil {
		return nil, fmt.Errorf("invalid admin ids: %w", err)
	}

	if secretFile, ok := lookup("YOOKASSA_SECRET_KEY_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read gateway secret file: %w", err)
		}
		cfg.SecretKey = strings.TrimSpace(string(content))
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	if cfg.PollMaxAttempts <= 0 {
		cfg.PollMaxAttempts = defaultPollMaxAttempts
	}

	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = defaultReconcileInterval
	}
	if cfg.ReconcileInterval < minReconcileInterval {
		cfg.ReconcileInterval = minReconcileInterval
	}

	if cfg.SweepWorkers <= 0 {
		cfg.SweepWorkers = defaultSweepWorkers
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.ReturnURL == "" {
		cfg.ReturnURL = "https://t.me/" + cfg.BotUsername
	}

	if !strings.HasPrefix(cfg.WebhookPath, "/") {
		cfg.WebhookPath = "/" + cfg.WebhookPath
	}

	return cfg, nil
}

// GatewayConfigured reports whether payment gateway credentials are present.
func (c *Config) GatewayConfigured() bool {
	return c.ShopID != "" && c.SecretKey != ""
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := parseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// parseDuration accepts Go duration syntax or a bare number of seconds.
func parseDuration(v string) (time.Duration, error) {
	if seconds, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}

func parseIDs(v string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
