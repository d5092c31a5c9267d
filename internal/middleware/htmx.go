package middleware

import (
	"context"
	"net/http"
	"strings"
)

// HTMXInfo captures request metadata from HX-* headers.
type HTMXInfo struct {
	IsHTMX         bool
	IsBoosted      bool
	CurrentURL     string
	Target         string
	TriggerID      string
	HistoryRestore bool
}

// Partial reports whether the response should be a fragment rather than a full page.
func (i HTMXInfo) Partial() bool {
	return i.IsHTMX && !i.IsBoosted && !i.HistoryRestore
}

// HTMX marks requests coming from htmx so handlers/middlewares can adapt responses
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := HTMXInfo{
			IsHTMX:         strings.EqualFold(r.Header.Get("HX-Request"), "true"),
			IsBoosted:      strings.EqualFold(r.Header.Get("HX-Boosted"), "true"),
			CurrentURL:     r.Header.Get("HX-Current-URL"),
			Target:         r.Header.Get("HX-Target"),
			TriggerID:      r.Header.Get("HX-Trigger"),
			HistoryRestore: strings.EqualFold(r.Header.Get("HX-History-Restore-Request"), "true"),
		}
		w.Header().Add("Vary", "HX-Request")
		ctx := WithHTMX(r.Context(), info.IsHTMX)
		ctx = context.WithValue(ctx, ctxKeyHTMX, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HTMXFromContext returns the parsed HX-* headers.
func HTMXFromContext(ctx context.Context) HTMXInfo {
	info, _ := ctx.Value(ctxKeyHTMX).(HTMXInfo)
	return info
}
