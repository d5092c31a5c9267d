package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/observability"
)

// Logger emits a structured log line per request and scopes the context logger with the
// request id. Mount it after Session so the visitor is known.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid := chiMid.GetReqID(r.Context())
		base := observability.FromContext(r.Context())
		if rid != "" {
			base = observability.WithRequestFields(base, zap.String("request_id", rid))
			r = r.WithContext(observability.WithLogger(r.Context(), base))
		}

		rw := NewResponseRecorder(w)
		next.ServeHTTP(rw, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		creds := Credentials(r)
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes", rw.BytesWritten()),
			zap.String("remote_ip", clientIP(r)),
			zap.Bool("htmx", strings.EqualFold(r.Header.Get("HX-Request"), "true")),
			zap.String("visitor", creds.Mode().String()),
		}
		if uid := creds.Subject(); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		if tid := observability.TraceID(r.Context()); tid != "" {
			fields = append(fields, zap.String("trace_id", tid))
		}

		switch {
		case rw.Status() >= http.StatusInternalServerError:
			base.Error("request", fields...)
		case rw.Status() >= http.StatusBadRequest:
			base.Warn("request", fields...)
		default:
			base.Info("request", fields...)
		}
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		p := strings.Split(xff, ",")
		return strings.TrimSpace(p[len(p)-1])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		return host[:i]
	}
	return host
}
