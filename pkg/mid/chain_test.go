package mid

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/WessleyAI/installbom/pkg/resilience"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestChainOrder(t *testing.T) {
	var order []int
	mw := func(n int) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, n)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, 0)
	}), mw(1), mw(2), mw(3))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if len(order) != 4 || order[0] != 1 || order[1] != 2 || order[2] != 3 || order[3] != 0 {
		t.Fatalf("expected [1,2,3,0], got %v", order)
	}
}

func TestLoggerCapturesStatus(t *testing.T) {
	tests := []struct {
		name   string
		h      http.HandlerFunc
		status int
		level  string
	}{
		{"explicit", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) }, 201, "INFO"},
		{"implicit", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("x")) }, 200, "INFO"},
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) }, 502, "WARN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewTextHandler(&buf, nil))
			rec := httptest.NewRecorder()
			Chain(tt.h, RequestID(), Logger(log)).ServeHTTP(rec, httptest.NewRequest("GET", "/api/summary", nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			out := buf.String()
			if !strings.Contains(out, "level="+tt.level) || !strings.Contains(out, "path=/api/summary") {
				t.Fatalf("log line = %q", out)
			}
			if !strings.Contains(out, "request_id="+rec.Header().Get(RequestIDHeader)) {
				t.Fatalf("request id missing from %q", out)
			}
		})
	}
}

func TestRequestIDReusesInbound(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("seen=%q header=%q", seen, rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestIDGenerated(t *testing.T) {
	rec := httptest.NewRecorder()
	RequestID()(http.HandlerFunc(ok)).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if len(rec.Header().Get(RequestIDHeader)) != 36 {
		t.Fatalf("generated id = %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestRecoverCatchesPanic(t *testing.T) {
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		method string
		want   int
	}{
		{"OPTIONS", http.StatusNoContent},
		{"GET", http.StatusOK},
		{"POST", http.StatusOK},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		CORS("https://example.com")(http.HandlerFunc(ok)).ServeHTTP(rec, httptest.NewRequest(tt.method, "/", nil))
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.method, rec.Code, tt.want)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "https://example.com" {
			t.Errorf("%s: missing CORS origin header", tt.method)
		}
	}
}

func TestRateLimit(t *testing.T) {
	l := resilience.NewLimiter(resilience.LimiterOpts{Rate: 0.001, Burst: 2})
	h := RateLimit(l)(http.HandlerFunc(ok))

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/summary", nil))
		codes[i] = rec.Code
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestRateLimitNil(t *testing.T) {
	rec := httptest.NewRecorder()
	RateLimit(nil)(http.HandlerFunc(ok)).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
