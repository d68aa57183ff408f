package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(e *gin.Engine, remote string) int {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if remote != "" {
		req.RemoteAddr = remote
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitPerIP(t *testing.T) {
	e := gin.New()
	e.Use(RateLimitPerIP(0.001, 1))
	e.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	if serve(e, "10.0.0.1:1000") != http.StatusOK {
		t.Fatal("first request from ip1 must pass")
	}
	if got := serve(e, "10.0.0.1:1001"); got != http.StatusTooManyRequests {
		t.Fatalf("second from ip1: %d", got)
	}
	if serve(e, "10.0.0.2:1000") != http.StatusOK {
		t.Fatal("other ip must have its own bucket")
	}
}

func TestRateLimitPerIP_Concurrent(t *testing.T) {
	e := gin.New()
	e.Use(RateLimitPerIP(1000, 1000))
	e.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = serve(e, "10.0.0.9:1")
		}()
	}
	wg.Wait()
}

func TestConcurrencyLimit_Rejects(t *testing.T) {
	e := gin.New()
	e.Use(Timeout(50*time.Millisecond), ConcurrencyLimit(1))
	release := make(chan struct{})
	entered := make(chan struct{})
	e.GET("/x", func(c *gin.Context) {
		select {
		case entered <- struct{}{}:
			<-release
		default:
		}
		c.String(http.StatusOK, "ok")
	})

	done := make(chan int)
	go func() { done <- serve(e, "") }()
	<-entered

	if got := serve(e, ""); got != http.StatusServiceUnavailable {
		t.Fatalf("want 503 while slot is taken, got %d", got)
	}
	close(release)
	if got := <-done; got != http.StatusOK {
		t.Fatalf("first request: %d", got)
	}
}

func TestTimeout_504(t *testing.T) {
	e := gin.New()
	e.Use(Timeout(10 * time.Millisecond))
	e.GET("/x", func(c *gin.Context) { <-c.Request.Context().Done() })
	if got := serve(e, ""); got != http.StatusGatewayTimeout {
		t.Fatalf("want 504, got %d", got)
	}
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	e := gin.New()
	e.Use(RequestID(), Recovery(zap.New(core)))
	e.GET("/x", func(c *gin.Context) { panic("boom") })

	if got := serve(e, ""); got != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", got)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Fatal("panic not logged")
	}
}

func TestAccessLog_MasksSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := gin.New()
	e.Use(RequestID(), AccessLog(zap.New(core)))
	e.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	req := httptest.NewRequest(http.MethodGet, "/x?password=hunter2&q=1", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("HTTP").All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("status = %v", fields["status"])
	}
	if fields["rid"] == "" {
		t.Error("missing request id")
	}
	q := fields["query"].(map[string][]string)
	if q["password"][0] != "****" || q["q"][0] != "1" {
		t.Errorf("query = %v", q)
	}
}

func TestRequestID(t *testing.T) {
	e := gin.New()
	e.Use(RequestID())
	e.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	cases := []struct {
		name, in string
		keep     bool
	}{
		{"passthrough", "abc-123", true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
		{"control chars", "abc\ninjected", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.in != "" {
				req.Header.Set(KeyRequestID, tc.in)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, req)

			got := w.Header().Get(KeyRequestID)
			if got == "" || got != w.Body.String() {
				t.Fatalf("header %q, context %q", got, w.Body.String())
			}
			if (got == tc.in) != tc.keep {
				t.Errorf("in %q, got %q", tc.in, got)
			}
		})
	}
}

func TestMetrics_RouteLabel(t *testing.T) {
	e := gin.New()
	e.Use(Metrics())
	e.GET("/m/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	hit := httpReqTotal.WithLabelValues("/m/:id", http.MethodGet, "204")
	miss := httpReqTotal.WithLabelValues(unmatchedRoute, http.MethodGet, "404")
	hitBefore, missBefore := testutil.ToFloat64(hit), testutil.ToFloat64(miss)

	for _, p := range []string{"/m/1", "/m/2", "/nope"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	if got := testutil.ToFloat64(hit) - hitBefore; got != 2 {
		t.Errorf("route counter delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(miss) - missBefore; got != 1 {
		t.Errorf("unmatched counter delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(httpInFlight); got != 0 {
		t.Errorf("in flight = %v after requests finished", got)
	}
}
