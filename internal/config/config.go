// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes bot behavior knobs
// (paywall limits, admin identities, render targets) together with server,
// logging, rate limiting, and observability settings.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-receipt-bot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// PaywallConfig holds the usage-gating knobs. FreeTrialLimit counts receipts
// per account; FreeEditLimit counts edits per receipt.
type PaywallConfig struct {
	FreeTrialLimit    int     // FREE_TRIAL_LIMIT
	FreeEditLimit     int     // FREE_EDIT_LIMIT
	SubscriptionPrice float64 // SUBSCRIPTION_PRICE
	SubscriptionDays  int     // SUBSCRIPTION_DAYS
	Currency          string  // CURRENCY (display label, e.g. "NGN")
}

// RenderConfig addresses the headless-rendering collaborator.
type RenderConfig struct {
	BaseURL         string        // RENDER_BASE_URL: templated receipt page root
	Timeout         time.Duration // RENDER_TIMEOUT
	DefaultTemplate int           // RENDER_DEFAULT_TEMPLATE
}

// BotConfig holds chat-side identity settings.
type BotConfig struct {
	AdminIDs        []string // ADMIN_IDS: comma-separated channel identities
	SignupAllowlist []string // SIGNUP_ALLOWLIST: identities allowed to onboard while registrations are closed
}

// Config holds all configuration values for the application.
type Config struct {
	// Server (ops/webhook surface)
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool

	// App
	DBPath string // SQLite path

	Bot     BotConfig
	Paywall PaywallConfig
	Render  RenderConfig

	// Rate limiting (webhook surface)
	RateRPS   float64
	RateBurst int

	CORS CORSConfig
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from the environment (after best-effort loading of
// a local .env file), applies defaults, normalizes values, and validates the
// result.
func Load() (Config, error) {
	_ = godotenv.Load() // optional; absence is fine

	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// App
		DBPath: getenv("DB_PATH", "bot.db"),

		Bot: BotConfig{
			AdminIDs:        splitCSV(getenv("ADMIN_IDS", "")),
			SignupAllowlist: splitCSV(getenv("SIGNUP_ALLOWLIST", "")),
		},
		Paywall: PaywallConfig{
			FreeTrialLimit:    getint("FREE_TRIAL_LIMIT", 5),
			FreeEditLimit:     getint("FREE_EDIT_LIMIT", 2),
			SubscriptionPrice: getfloat("SUBSCRIPTION_PRICE", 1500),
			SubscriptionDays:  getint("SUBSCRIPTION_DAYS", 30),
			Currency:          getenv("CURRENCY", "NGN"),
		},
		Render: RenderConfig{
			BaseURL:         getenv("RENDER_BASE_URL", "http://localhost:3000/receipt"),
			Timeout:         getdur("RENDER_TIMEOUT", 30*time.Second),
			DefaultTemplate: getint("RENDER_DEFAULT_TEMPLATE", 1),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-receipt-bot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.Paywall.FreeTrialLimit < 0 {
		return cfg, errors.New("FREE_TRIAL_LIMIT must be >= 0")
	}
	if cfg.Paywall.FreeEditLimit < 0 {
		return cfg, errors.New("FREE_EDIT_LIMIT must be >= 0")
	}
	if cfg.Paywall.SubscriptionPrice <= 0 {
		return cfg, errors.New("SUBSCRIPTION_PRICE must be > 0")
	}
	if cfg.Paywall.SubscriptionDays < 1 {
		return cfg, errors.New("SUBSCRIPTION_DAYS must be >= 1")
	}
	if strings.TrimSpace(cfg.Render.BaseURL) == "" {
		return cfg, errors.New("RENDER_BASE_URL must not be empty")
	}
	if cfg.Render.Timeout <= 0 {
		return cfg, errors.New("RENDER_TIMEOUT must be > 0")
	}
	if cfg.Render.DefaultTemplate < 1 {
		return cfg, errors.New("RENDER_DEFAULT_TEMPLATE must be >= 1")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
