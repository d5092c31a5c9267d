package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/observability"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/session"
)

// SessionStore abstracts the session manager for middleware integration.
type SessionStore interface {
	Load(*http.Request) (*session.Session, error)
	New() *session.Session
	Save(http.ResponseWriter, *session.Session) error
	Destroy(http.ResponseWriter)
}

// Session attaches the decoded session to the request context and persists changes back to
// the client cookie just before the response header is written.
func Session(store SessionStore) func(http.Handler) http.Handler {
	if store == nil {
		panic("session store is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())
			sess, err := store.Load(r)
			if errors.Is(err, session.ErrExpired) {
				logger.Info("session expired: resetting")
				sess = store.New()
			} else if err != nil || sess == nil {
				if err != nil {
					logger.Warn("session load failed", zap.Error(err))
				}
				sess = store.New()
			}

			rw := NewResponseRecorder(w)
			rw.SetBeforeWrite(func(w http.ResponseWriter) {
				if err := store.Save(w, sess); err != nil {
					logger.Error("session save failed", zap.Error(err))
				}
			})

			next.ServeHTTP(rw, r.WithContext(WithSession(r.Context(), sess)))

			// HEAD and empty handlers never write
			if !rw.Wrote() {
				rw.WriteHeader(http.StatusOK)
			}
		})
	}
}
