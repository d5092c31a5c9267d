package middleware

import (
	"context"
	"net/http"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/session"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyIsHTMX  ctxKey = "is_htmx"
	ctxKeyHTMX    ctxKey = "htmx_info"
	ctxKeySession ctxKey = "session"
	ctxKeyCSRF    ctxKey = "csrf"
	ctxKeyLang    ctxKey = "lang"
)

// WithHTMX marks request as HTMX
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// WithSession attaches sess to ctx.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, sess)
}

// SessionFromContext retrieves the session attached to this request.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(ctxKeySession).(*session.Session)
	return sess, ok && sess != nil
}

// CSRFToken returns the token issued for the current request.
func CSRFToken(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyCSRF).(string); ok {
		return v
	}
	if sess, ok := SessionFromContext(ctx); ok {
		return sess.CSRFToken()
	}
	return ""
}

// Credentials resolves the visitor's tokens stored in the request session.
func Credentials(r *http.Request) auth.Credentials {
	return CredentialsFromContext(r.Context())
}

// CredentialsFromContext is Credentials for code that only holds a context.
func CredentialsFromContext(ctx context.Context) auth.Credentials {
	sess, ok := SessionFromContext(ctx)
	if !ok {
		return auth.Credentials{}
	}
	return auth.Resolve(sess.AccessToken(), sess.GuestToken(), CSRFToken(ctx))
}
