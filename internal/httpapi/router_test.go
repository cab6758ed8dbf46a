package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-receipt-bot/internal/config"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := config.Config{
		RateRPS:   0, // limiter off for routing tests
		RateBurst: 0,
	}
	cfg.OTEL.ServiceName = "receipt-bot-test"
	cfg.Paywall.SubscriptionDays = 30
	RegisterRoutes(r, newWebhookDB(t), cfg)
	return r
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_Healthz(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ok") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestRegisterRoutes_Metrics(t *testing.T) {
	r := newTestRouter(t)
	if w := doRequest(r, http.MethodGet, "/metrics"); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestRegisterRoutes_NoRouteAndNoMethod(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/nope")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "route not found") {
		t.Fatalf("no-route: status=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(r, http.MethodDelete, "/healthz")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("no-method: status = %d, want 405", w.Code)
	}
}

func TestRegisterRoutes_RequestIDExposed(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/healthz")
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID header")
	}
}
