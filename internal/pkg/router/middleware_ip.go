package router

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/xceltrack/xceltrack-api/internal/pkg/config"
)

// middlewareIP rewrites RemoteAddr to the client IP. Forwarding headers are
// honored only when the direct peer is listed in app.server.trusted_proxies,
// otherwise any caller could pick its own rate-limit key.
func middlewareIP(cfg config.Config) Middleware {
	var trusted trustedProxies
	if cfg != nil {
		trusted = parseTrustedProxies(cfg.GetArray("app.server.trusted_proxies"))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := trusted.clientIP(r); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

type trustedProxies []*net.IPNet

func parseTrustedProxies(entries []string) trustedProxies {
	out := make(trustedProxies, 0, len(entries))
	for _, e := range entries {
		if !strings.Contains(e, "/") {
			if ip := net.ParseIP(e); ip != nil && ip.To4() != nil {
				e += "/32"
			} else {
				e += "/128"
			}
		}

		_, n, err := net.ParseCIDR(e)
		if err != nil {
			slog.Warn("ignoring invalid trusted proxy", "entry", e, "error", err)
			continue
		}
		out = append(out, n)
	}
	return out
}

func (t trustedProxies) contains(ip net.IP) bool {
	for _, n := range t {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func peerIP(r *http.Request) net.IP {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}

func (t trustedProxies) clientIP(r *http.Request) string {
	peer := peerIP(r)
	if peer == nil {
		return ""
	}
	if !t.contains(peer) {
		return peer.String()
	}

	// walk X-Forwarded-For from the nearest hop and stop at the first
	// address that is not one of our proxies
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil {
				break
			}
			if !t.contains(ip) || i == 0 {
				return ip.String()
			}
		}
	}

	for _, h := range []string{"True-Client-IP", "X-Real-IP"} {
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get(h))); ip != nil {
			return ip.String()
		}
	}

	return peer.String()
}
