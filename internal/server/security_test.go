package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthMiddleware(t *testing.T) {
	const apiKey = "secret-key"
	detector := NewSuspiciousActivityDetector(0, 0)
	h := AuthMiddleware(apiKey, nil, detector)(okHandler)

	tests := []struct {
		name       string
		key        string
		path       string
		wantStatus int
	}{
		{"valid key", apiKey, "/api/v1/matches", http.StatusOK},
		{"wrong key", "wrong-key", "/api/v1/matches", http.StatusUnauthorized},
		{"missing key", "", "/api/v1/matches", http.StatusUnauthorized},
		{"healthz is public", "", "/healthz", http.StatusOK},
		{"readyz is public", "", "/readyz", http.StatusOK},
		{"metrics is public", "", "/metrics", http.StatusOK},
		{"swagger is public", "", "/swagger/index.html", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.key != "" {
				req.Header.Set(HeaderAPIKey, tt.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	assert.Equal(t, 2, detector.FailedAuthCount("192.0.2.1"), "httptest requests come from 192.0.2.1")
}

func TestAdminMiddleware(t *testing.T) {
	detector := NewSuspiciousActivityDetector(0, 0)

	t.Run("Admin key required under admin prefix", func(t *testing.T) {
		h := AdminMiddleware("admin-secret", nil, detector)(okHandler)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/pause", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/pause", nil)
		req.Header.Set(HeaderAdminKey, "admin-secret")
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Other paths unaffected", func(t *testing.T) {
		h := AdminMiddleware("admin-secret", nil, detector)(okHandler)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Empty admin key disables the check", func(t *testing.T) {
		h := AdminMiddleware("", nil, detector)(okHandler)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/pause", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSuspiciousActivityDetector_Allow(t *testing.T) {
	detector := NewSuspiciousActivityDetector(1, 3)
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.True(t, detector.AllowAt("10.0.0.1", now), "request %d", i)
	}
	assert.False(t, detector.AllowAt("10.0.0.1", now))
	assert.True(t, detector.AllowAt("10.0.0.2", now), "budgets are per client")
	assert.True(t, detector.AllowAt("10.0.0.1", now.Add(time.Second)), "one token refills per second")
}

func TestRateLimitMiddleware(t *testing.T) {
	detector := NewSuspiciousActivityDetector(0.001, 2)
	h := RateLimitMiddleware(nil, detector)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/markets", nil)
	req.RemoteAddr = "192.168.1.100:1234"

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name      string
		remote    string
		forwarded string
		trusted   []string
		want      string
	}{
		{"direct", "203.0.113.5:5555", "", nil, "203.0.113.5"},
		{"untrusted proxy header ignored", "203.0.113.5:5555", "1.2.3.4", nil, "203.0.113.5"},
		{"trusted proxy uses rightmost hop", "10.0.0.1:80", "1.2.3.4, 5.6.7.8", []string{"10.0.0.1"}, "5.6.7.8"},
		{"trusted proxy without header", "10.0.0.1:80", "", []string{"10.0.0.1"}, "10.0.0.1"},
		{"unparseable remote", "garbage", "", nil, "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set(HeaderForwardedFor, tt.forwarded)
			}
			assert.Equal(t, tt.want, extractIP(req, tt.trusted))
		})
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeadersMiddleware()(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, HeaderValueNoSniff, rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, HeaderValueSameOrigin, rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, HeaderValueXSSBlock, rec.Header().Get("X-XSS-Protection"))
	assert.Equal(t, HeaderValueReferrerStrictOrigin, rec.Header().Get("Referrer-Policy"))
}
