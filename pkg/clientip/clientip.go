// Package clientip resolves the peer address the rate limiters key on.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the request's peer IP. Proxy headers like
// X-Forwarded-For are ignored, since the limiters must key on an address the
// client cannot choose; this assumes clients reach the app directly.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
