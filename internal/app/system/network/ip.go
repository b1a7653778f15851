// Package network provides network-related utilities.
package network

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP extracts the client IP address from the request, honoring
// X-Forwarded-For and X-Real-IP. Use it for logging; anything that enforces
// limits should call ClientIP with the deployment's proxy setting instead,
// since those headers are client-controlled without a proxy in front.
func GetClientIP(r *http.Request) string {
	return ClientIP(r, true)
}

// ClientIP returns the client IP. With trustProxy set, the first address in
// X-Forwarded-For wins, then X-Real-IP; otherwise only RemoteAddr is used.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}
	return hostOnly(r.RemoteAddr)
}

// hostOnly strips the port from addr. Bare addresses pass through.
func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.Trim(addr, "[]")
}
