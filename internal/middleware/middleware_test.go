package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stock-dashboard-backend/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if ip != "" {
		req.RemoteAddr = ip + ":1234"
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterPerClient(t *testing.T) {
	r := gin.New()
	r.GET("/x", NewRateLimiter(60, 2).Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := serve(r, http.MethodGet, "/x", "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
	w := serve(r, http.MethodGet, "/x", "10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	if w := serve(r, http.MethodGet, "/x", "10.0.0.2"); w.Code != http.StatusOK {
		t.Fatalf("other client status = %d", w.Code)
	}
}

func TestRateLimiterRetryAfterRoundsUp(t *testing.T) {
	r := gin.New()
	r.GET("/x", NewRateLimiter(7, 1).Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/x", "10.0.0.1")
	w := serve(r, http.MethodGet, "/x", "10.0.0.1")
	if got := w.Header().Get("Retry-After"); got != "9" {
		t.Errorf("Retry-After = %q, want 9", got)
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/boom", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "internal server error") {
		t.Errorf("body = %s", w.Body.String())
	}
	if !strings.Contains(buf.String(), "PANIC_RECOVERED") {
		t.Errorf("log = %s", buf.String())
	}
}

func TestLoggerSkipsHealth(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	r := gin.New()
	r.Use(Logger())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	fail := func(c *gin.Context) { c.Status(http.StatusInternalServerError) }
	r.GET("/api/health", ok)
	r.GET("/api/stocks", ok)
	r.GET("/api/fail", fail)

	serve(r, http.MethodGet, "/api/health", "")
	if buf.Len() != 0 {
		t.Fatalf("health check logged: %s", buf.String())
	}

	serve(r, http.MethodGet, "/api/stocks?keyword=a", "")
	line := buf.String()
	if !strings.Contains(line, `"path":"/api/stocks"`) || !strings.Contains(line, `"query":"keyword=a"`) {
		t.Fatalf("log line = %s", line)
	}
	if !strings.Contains(line, `"level":"info"`) {
		t.Errorf("expected info level: %s", line)
	}

	buf.Reset()
	serve(r, http.MethodGet, "/api/fail", "")
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Errorf("expected error level: %s", buf.String())
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/stocks/:symbol", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/api/stocks/AAPL", "")
	serve(r, http.MethodGet, "/api/stocks/MSFT", "")
	serve(r, http.MethodGet, "/nope", "")

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/stocks/:symbol", "200")); got != 2 {
		t.Errorf("matched route count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched count = %v, want 1", got)
	}
}
