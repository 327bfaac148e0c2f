package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/csvdata/internal/core"
)

// clientIP returns the request's client address without the port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// withRequestMetadata carries the client address into the check run logs.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClientIP(ctx, clientIP(r))
}
