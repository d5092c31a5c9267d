package middleware

import (
	"net/http"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/notifications"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/session"
)

// Notifications attaches a toast queue to the request. Flashes left by the previous response
// are restored into the queue; toasts the renderer did not drain (redirects, error bodies) are
// stored back as flashes before the header is written. Requires Session.
func Notifications(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, queue := notifications.WithQueue(r.Context())
		sess, ok := SessionFromContext(ctx)
		if ok {
			for _, f := range sess.TakeFlashes() {
				queue.Push(notifications.Restore(f.Kind, f.Title, f.Message, f.Duration))
			}
		}

		rw := NewResponseRecorder(w)
		if ok {
			rw.SetBeforeWrite(func(http.ResponseWriter) {
				stash(sess, queue)
			})
		}
		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}

func stash(sess *session.Session, queue *notifications.Queue) {
	for _, t := range queue.Peek() {
		// confirm panels are bound to the page that raised them
		if t.Kind == notifications.KindConfirm {
			continue
		}
		sess.AddFlash(session.Flash{
			Kind:     string(t.Kind),
			Title:    t.Title,
			Message:  t.Message,
			Duration: int(t.DurationMs()),
		})
	}
}
