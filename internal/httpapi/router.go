// Package httpapi wires the ops/webhook HTTP surface (Gin): health, metrics,
// and the payment-gateway confirmation webhook. Chat traffic does not enter
// here; it reaches the engine through the channel adapter. This surface only
// carries the cross-cutting plumbing (tracing, correlation IDs, logging,
// recovery, compression, metrics, rate limiting, CORS) plus the one inbound
// integration point the gateway needs.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Rate limiter (per IP)
//  9. CORS
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-receipt-bot/internal/config"
	"github.com/tbourn/go-receipt-bot/internal/httpapi/middleware"
	"github.com/tbourn/go-receipt-bot/internal/services"
)

// RegisterRoutes attaches all middleware and endpoints to the given Gin
// engine. All dependencies are injected; nothing global beyond the Prometheus
// default registry.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (256 KiB; webhook bodies are tiny)
	r.Use(limitBody(256 << 10))

	// 6) Response compression
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per IP
	r.Use(middleware.RateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP))

	// 9) CORS posture (allow all if none configured; credentials stay off)
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	// Liveness/health
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	confirmer := &services.PaymentConfirmer{
		DB:               db,
		SubscriptionDays: cfg.Paywall.SubscriptionDays,
	}
	r.POST("/webhooks/payment", PaymentWebhook(confirmer))
}

// limitBody caps the request body size using http.MaxBytesReader. Requests
// exceeding the cap cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
