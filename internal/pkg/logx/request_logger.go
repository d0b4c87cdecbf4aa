/*
Package logx provides a structured logging wrapper based on zerolog.

This file holds the HTTP middleware that logs each request's route, status and latency,
with the client address anonymized.
*/
package logx

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// AnonymizeIP zeroes the host part of an address: the last octet for IPv4,
// the lower 64 bits for IPv6. Loopback addresses are reported as 127.0.0.1.
func AnonymizeIP(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}

	ip := net.ParseIP(addr)
	switch {
	case ip == nil:
		return "unknown_ip"
	case ip.IsLoopback():
		return "127.0.0.1"
	}

	if v4 := ip.To4(); v4 != nil {
		return net.IPv4(v4[0], v4[1], v4[2], 0).String()
	}

	masked := ip.Mask(net.CIDRMask(64, 128))
	return masked.String()
}

// RequestLogger returns middleware that stores a request-scoped logger in the
// context and logs one line when the handler returns.
func RequestLogger() func(next http.Handler) http.Handler {
	base := Component("http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("remote_ip", AnonymizeIP(r.RemoteAddr)).
				Str("method", r.Method).
				Str("uri", r.RequestURI).
				Logger()

			r = r.WithContext(logger.WithContext(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			event := logger.Info()
			switch {
			case status >= 500:
				event = logger.Error()
			case status >= 400:
				event = logger.Warn()
			}

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}

			event.
				Str("route", route).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(start)).
				Msg("Request completed")
		})
	}
}
