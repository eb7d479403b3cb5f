package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/contactly/contacthub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterAllowWithinLimit(t *testing.T) {
	rl := middlewares.NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _, err := rl.Allow(context.Background(), "1.2.3.4")
		if err != nil {
			t.Fatalf("allow error: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, retryAfter, err := rl.Allow(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("allow error: %v", err)
	}
	if ok {
		t.Fatalf("fourth request should be limited")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %v", retryAfter)
	}

	// different key is unaffected
	ok, _, _ = rl.Allow(context.Background(), "5.6.7.8")
	if !ok {
		t.Fatalf("other client should not be limited")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	rl := middlewares.NewRateLimiter(1, time.Minute)

	r := gin.New()
	r.Use(middlewares.RateLimit(rl, middlewares.KeyByIP))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w1.Code != http.StatusOK {
		t.Fatalf("first request got %d", w1.Code)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request got %d, want 429", w2.Code)
	}

	if w2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}
