package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"aerosafety/rbo/internal/auth"
	"aerosafety/rbo/internal/common"
	"aerosafety/rbo/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "rbo_session"

func whoAmI(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	_, _ = w.Write([]byte(claims.Source() + ":" + claims.Username()))
}

func newSessions() *common.SessionService {
	return common.NewSessionService(common.NewMemorySessionStore(time.Minute), time.Hour, nil)
}

func TestSessionAuth(t *testing.T) {
	sessions := newSessions()
	h := SessionAuth(sessions, cookieName, "/login")(http.HandlerFunc(whoAmI))

	t.Run("no cookie redirects", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("stale cookie redirects", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: "gone"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})

	t.Run("live session passes", func(t *testing.T) {
		session, err := sessions.CreateSession(context.Background(), "inspector")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: session.SessionID})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "SESSION:inspector", rec.Body.String())
	})
}

func TestAPIAuth(t *testing.T) {
	sessions := newSessions()
	tokens := common.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	h := APIAuth(sessions, tokens, cookieName)(http.HandlerFunc(whoAmI))

	t.Run("anonymous is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/operators", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"error"`)
	})

	t.Run("bad bearer is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/operators", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		token, _, err := tokens.IssueToken("api-user")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/operators", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "JWT:api-user", rec.Body.String())
	})

	t.Run("session cookie", func(t *testing.T) {
		session, err := sessions.CreateSession(context.Background(), "browser-user")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/operators", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: session.SessionID})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "SESSION:browser-user", rec.Body.String())
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, []string{"127.0.0.1"})
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("198.51.100.1"))
	assert.Equal(t, http.StatusOK, do("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("198.51.100.1"))

	// buckets are per IP
	assert.Equal(t, http.StatusOK, do("198.51.100.2"))

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, do("127.0.0.1"))
	}
}

func TestRateLimiter_ForwardedHeadersDoNotPickBucket(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, nil)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	admitted := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "198.51.100.9:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			admitted++
		}
	}
	assert.Equal(t, 1, admitted)
}

func TestTrustedRealIP(t *testing.T) {
	trusted := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.1/32"),
	}

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"untrusted peer keeps its address", "198.51.100.9:4000", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "198.51.100.9"},
		{"trusted peer, single hop", "10.1.2.3:4000", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "203.0.113.5"},
		{"spoofed leftmost hop is skipped", "10.1.2.3:4000", map[string]string{"X-Forwarded-For": "1.1.1.1, 203.0.113.5, 10.9.9.9"}, "203.0.113.5"},
		{"all hops trusted uses leftmost", "10.1.2.3:4000", map[string]string{"X-Forwarded-For": "10.4.4.4, 192.168.1.1"}, "10.4.4.4"},
		{"malformed header ignored", "10.1.2.3:4000", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.1.2.3"},
		{"x-real-ip from trusted peer", "192.168.1.1:80", map[string]string{"X-Real-IP": "203.0.113.7"}, "203.0.113.7"},
		{"no headers", "10.1.2.3:4000", nil, "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = common.ClientIP(r)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrustedRealIP_NoProxiesConfigured(t *testing.T) {
	var got string
	h := TrustedRealIP(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = common.ClientIP(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:4000"
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "10.1.2.3", got)
}

func TestRequestIDAndMetrics(t *testing.T) {
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(MetricsMiddleware(reg))
	r.Get("/operators/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, auth.GetRequestID(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/operators/7", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("/operators/{id}", "GET", "418")))

	req := httptest.NewRequest(http.MethodGet, "/operators/7", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "/operators/{id}/edit", NormalizeEndpoint("/operators/42/edit"))
	assert.Equal(t, "/sessions/{id}", NormalizeEndpoint("/sessions/123e4567-e89b-12d3-a456-426614174000"))
	assert.Equal(t, "/api/v1/operators", NormalizeEndpoint("/api/v1/operators"))
}
