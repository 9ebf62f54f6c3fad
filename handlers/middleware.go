package handlers

import (
	"net"
	"net/http"
	"strings"
)

// RequireAuth gates admin endpoints behind a valid session cookie.
func RequireAuth(authSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessionValid(r, authSecret) {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the originating client address, preferring proxy
// headers in trust order before falling back to the socket peer.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if flyIP := r.Header.Get("Fly-Client-IP"); flyIP != "" {
		return flyIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
