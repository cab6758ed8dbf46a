package config

import (
	"reflect"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Server (valid overrides)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")

	// App
	t.Setenv("DB_PATH", "bot.sqlite")

	// Bot identities
	t.Setenv("ADMIN_IDS", " 234801 , ,234802 ")
	t.Setenv("SIGNUP_ALLOWLIST", "234803")

	// Paywall
	t.Setenv("FREE_TRIAL_LIMIT", "3")
	t.Setenv("FREE_EDIT_LIMIT", "1")
	t.Setenv("SUBSCRIPTION_PRICE", "2000")
	t.Setenv("SUBSCRIPTION_DAYS", "14")
	t.Setenv("CURRENCY", "GHS")

	// Render
	t.Setenv("RENDER_BASE_URL", "http://render:3000/receipt")
	t.Setenv("RENDER_TIMEOUT", "10s")
	t.Setenv("RENDER_DEFAULT_TEMPLATE", "2")

	// Rate limiting (invalids fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8088" || cfg.GinMode != "release" {
		t.Fatalf("server fields: %+v", cfg)
	}
	if cfg.ReadTimeout != 2*time.Second || cfg.WriteTimeout != 3*time.Second {
		t.Fatalf("timeouts: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty {
		t.Fatalf("logging fields: level=%q pretty=%v", cfg.LogLevel, cfg.LogPretty)
	}
	if cfg.DBPath != "bot.sqlite" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if !reflect.DeepEqual(cfg.Bot.AdminIDs, []string{"234801", "234802"}) {
		t.Fatalf("AdminIDs = %#v", cfg.Bot.AdminIDs)
	}
	if !reflect.DeepEqual(cfg.Bot.SignupAllowlist, []string{"234803"}) {
		t.Fatalf("SignupAllowlist = %#v", cfg.Bot.SignupAllowlist)
	}
	if cfg.Paywall.FreeTrialLimit != 3 || cfg.Paywall.FreeEditLimit != 1 {
		t.Fatalf("paywall limits: %+v", cfg.Paywall)
	}
	if cfg.Paywall.SubscriptionPrice != 2000 || cfg.Paywall.SubscriptionDays != 14 || cfg.Paywall.Currency != "GHS" {
		t.Fatalf("subscription fields: %+v", cfg.Paywall)
	}
	if cfg.Render.BaseURL != "http://render:3000/receipt" || cfg.Render.Timeout != 10*time.Second || cfg.Render.DefaultTemplate != 2 {
		t.Fatalf("render fields: %+v", cfg.Render)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate fields: rps=%v burst=%d", cfg.RateRPS, cfg.RateBurst)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("CORS origins = %#v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with empty env: %v", err)
	}
	if cfg.Port != "8080" || cfg.LogLevel != "info" || cfg.GinMode != "release" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.Paywall.FreeTrialLimit != 5 || cfg.Paywall.FreeEditLimit != 2 {
		t.Fatalf("paywall defaults: %+v", cfg.Paywall)
	}
	if cfg.Paywall.SubscriptionPrice != 1500 || cfg.Paywall.SubscriptionDays != 30 || cfg.Paywall.Currency != "NGN" {
		t.Fatalf("subscription defaults: %+v", cfg.Paywall)
	}
	if cfg.Render.DefaultTemplate != 1 {
		t.Fatalf("render default template = %d", cfg.Render.DefaultTemplate)
	}
	if cfg.OTEL.Enabled || cfg.OTEL.ServiceName != "go-receipt-bot" || cfg.OTEL.SampleRatio != 1.0 {
		t.Fatalf("otel defaults: %+v", cfg.OTEL)
	}
}

// --- Validation errors ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"negative trial limit", map[string]string{"FREE_TRIAL_LIMIT": "-1"}},
		{"negative edit limit", map[string]string{"FREE_EDIT_LIMIT": "-2"}},
		{"zero subscription price", map[string]string{"SUBSCRIPTION_PRICE": "-1"}},
		{"zero subscription days", map[string]string{"SUBSCRIPTION_DAYS": "0"}},
		{"zero template", map[string]string{"RENDER_DEFAULT_TEMPLATE": "0"}},
		{"negative rps", map[string]string{"RATE_RPS": "-1"}},
		{"zero burst", map[string]string{"RATE_BURST": "0"}},
		{"sample ratio out of range", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
