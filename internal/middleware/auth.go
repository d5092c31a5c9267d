package middleware

import (
	"net/http"
	"net/url"
)

// LoginPath is where visitors without any token are sent.
const LoginPath = "/login/"

// RequireVisitor lets a request through only when the visitor holds an access or guest token.
// Anyone else is redirected to the login page with the original path in ?next=.
func RequireVisitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Credentials(r).HasSession() {
			next.ServeHTTP(w, r)
			return
		}
		target := LoginPath
		if r.Method == http.MethodGet && r.URL.Path != "" {
			target += "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
		}
		Redirect(w, r, target)
	})
}

// SafeNext returns next when it is a local path, otherwise fallback.
func SafeNext(next, fallback string) string {
	if next == "" || next[0] != '/' || (len(next) > 1 && (next[1] == '/' || next[1] == '\\')) {
		return fallback
	}
	return next
}
