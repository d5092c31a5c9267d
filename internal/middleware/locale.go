package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/i18n"
)

const localeCookieName = "hl"

// VaryLocale sets Vary header for Accept-Language on dynamic responses
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r)
	})
}

// Locale resolves the preferred language from ?hl=, the session, the hl cookie or
// Accept-Language, in that order, and stores it in the session and request context.
// Unsupported values fall through to the next source.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, hasSession := SessionFromContext(r.Context())
			lang := ""
			if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("hl"))); q != "" && bundle.IsSupported(q) {
				lang = q
				http.SetCookie(w, &http.Cookie{Name: localeCookieName, Value: q, Path: "/", SameSite: http.SameSiteLaxMode})
			}
			if lang == "" && hasSession && bundle.IsSupported(sess.Locale()) {
				lang = sess.Locale()
			}
			if lang == "" {
				if c, err := r.Cookie(localeCookieName); err == nil && bundle.IsSupported(strings.ToLower(c.Value)) {
					lang = strings.ToLower(c.Value)
				}
			}
			if lang == "" {
				lang = bundle.Resolve(r.Header.Get("Accept-Language"))
			}
			if hasSession {
				sess.SetLocale(lang)
			}
			w.Header().Set("Content-Language", lang)
			ctx := context.WithValue(r.Context(), ctxKeyLang, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Lang returns the language resolved for the request, or "en".
func Lang(r *http.Request) string {
	return LangFromContext(r.Context())
}

// LangFromContext is Lang for code that only holds a context.
func LangFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyLang).(string); ok && v != "" {
		return v
	}
	return "en"
}
