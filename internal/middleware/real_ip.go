package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"aerosafety/rbo/internal/common"
)

// TrustedRealIP rewrites r.RemoteAddr to the caller reported by a trusted
// proxy. Requests from any other peer keep their connection address.
func TrustedRealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := forwardedClientIP(r, trusted); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

// forwardedClientIP walks X-Forwarded-For right to left past trusted hops,
// falling back to X-Real-IP. Returns "" when the peer is untrusted or the
// headers are unusable.
func forwardedClientIP(r *http.Request, trusted []netip.Prefix) string {
	if !isTrusted(common.ClientIP(r), trusted) {
		return ""
	}

	if fwd := r.Header.Values("X-Forwarded-For"); len(fwd) > 0 {
		hops := strings.Split(strings.Join(fwd, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if _, err := netip.ParseAddr(hop); err != nil {
				return ""
			}
			if !isTrusted(hop, trusted) {
				return hop
			}
		}
		return strings.TrimSpace(hops[0])
	}

	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		if _, err := netip.ParseAddr(real); err == nil {
			return real
		}
	}
	return ""
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
