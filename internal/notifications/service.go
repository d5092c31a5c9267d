// Package notifications queues toast and confirm panels for the current response.
//
// Handlers never render toasts themselves: they push them onto the request's queue through a
// Service, and the layout (or an htmx out-of-band swap) renders whatever is pending. Toasts
// that are not rendered before a redirect are carried over in the visitor session.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/observability"
)

// Default display times.
const (
	DefaultDuration = 4 * time.Second
	ErrorDuration   = 5 * time.Second
)

// Kind selects the toast style and title.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
	KindConfirm Kind = "confirm"
)

// ParseKind maps free text to a kind, defaulting to info.
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindSuccess:
		return KindSuccess
	case KindError, "danger":
		return KindError
	case KindWarning, "warn":
		return KindWarning
	case KindConfirm:
		return KindConfirm
	default:
		return KindInfo
	}
}

// Title is the heading shown above the message.
func (k Kind) Title() string {
	switch k {
	case KindSuccess:
		return "Success"
	case KindError:
		return "Error"
	case KindWarning:
		return "Warning"
	case KindConfirm:
		return "Confirmation"
	default:
		return "Information"
	}
}

// Icon is the Font Awesome icon name for the kind.
func (k Kind) Icon() string {
	switch k {
	case KindSuccess:
		return "fa-check-circle"
	case KindError:
		return "fa-exclamation-circle"
	case KindWarning:
		return "fa-exclamation-triangle"
	case KindConfirm:
		return "fa-question-circle"
	default:
		return "fa-info-circle"
	}
}

// Service is injected into handlers to report outcomes to the visitor.
type Service interface {
	Show(ctx context.Context, message string, kind Kind, duration time.Duration)
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
	Warning(ctx context.Context, message string)
	Info(ctx context.Context, message string)
	Confirm(ctx context.Context, prompt Prompt)
}

// Prompt is a confirm panel. Confirm posts to Action with the extra form values; Cancel only
// dismisses the panel.
type Prompt struct {
	Message      string
	Action       string
	Target       string
	Values       map[string]string
	ConfirmLabel string
	CancelLabel  string
}

// ErrNoQueue is reported when a toast is pushed outside a request that carries a queue.
var ErrNoQueue = errors.New("notifications: no queue in context")

// Manager is the default Service. It sanitizes messages to plain text and appends toasts to
// the queue attached to the context.
type Manager struct {
	policy *bluemonday.Policy
	now    func() time.Time
}

// NewManager constructs a Manager.
func NewManager() *Manager {
	return &Manager{policy: bluemonday.StrictPolicy(), now: time.Now}
}

// Show implements Service. A zero duration selects the kind's default.
func (m *Manager) Show(ctx context.Context, message string, kind Kind, duration time.Duration) {
	message = m.clean(message)
	if message == "" {
		return
	}
	if duration <= 0 {
		duration = DefaultDuration
		if kind == KindError {
			duration = ErrorDuration
		}
	}
	m.push(ctx, newToast(kind, message, duration))
}

// Success implements Service.
func (m *Manager) Success(ctx context.Context, message string) {
	m.Show(ctx, message, KindSuccess, DefaultDuration)
}

// Error implements Service.
func (m *Manager) Error(ctx context.Context, message string) {
	m.Show(ctx, message, KindError, ErrorDuration)
}

// Warning implements Service.
func (m *Manager) Warning(ctx context.Context, message string) {
	m.Show(ctx, message, KindWarning, DefaultDuration)
}

// Info implements Service.
func (m *Manager) Info(ctx context.Context, message string) {
	m.Show(ctx, message, KindInfo, DefaultDuration)
}

// Confirm implements Service. Confirm panels have no timer.
func (m *Manager) Confirm(ctx context.Context, prompt Prompt) {
	prompt.Message = m.clean(prompt.Message)
	if prompt.Message == "" {
		return
	}
	if prompt.ConfirmLabel == "" {
		prompt.ConfirmLabel = "Confirm"
	}
	if prompt.CancelLabel == "" {
		prompt.CancelLabel = "Cancel"
	}
	t := newToast(KindConfirm, prompt.Message, 0)
	t.Prompt = &prompt
	m.push(ctx, t)
}

// clean strips markup; entities are decoded again because templates escape on output.
func (m *Manager) clean(message string) string {
	return strings.TrimSpace(html.UnescapeString(m.policy.Sanitize(message)))
}

func (m *Manager) push(ctx context.Context, t *Toast) {
	q := FromContext(ctx)
	if q == nil {
		observability.FromContext(ctx).Debug("toast dropped",
			zap.Error(ErrNoQueue),
			zap.String("kind", string(t.Kind)),
			zap.String("message", t.Message),
		)
		return
	}
	q.Push(t)
}

// Queue collects the toasts of one request.
type Queue struct {
	mu     sync.Mutex
	toasts []*Toast
}

// Push appends a toast in the created state.
func (q *Queue) Push(t *Toast) {
	if q == nil || t == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.toasts = append(q.toasts, t)
}

// Len reports how many toasts are pending.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.toasts)
}

// Drain removes and returns pending toasts, advancing each to animating-in as it is handed to
// the renderer.
func (q *Queue) Drain() []*Toast {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	out := q.toasts
	q.toasts = nil
	q.mu.Unlock()
	for _, t := range out {
		_ = t.Advance(EventMount)
	}
	return out
}

// Peek returns the pending toasts without draining them.
func (q *Queue) Peek() []*Toast {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*Toast(nil), q.toasts...)
}

type queueKey struct{}

// WithQueue attaches a fresh queue to ctx.
func WithQueue(ctx context.Context) (context.Context, *Queue) {
	q := &Queue{}
	return context.WithValue(ctx, queueKey{}, q), q
}

// FromContext returns the request's queue or nil.
func FromContext(ctx context.Context) *Queue {
	if ctx == nil {
		return nil
	}
	q, _ := ctx.Value(queueKey{}).(*Queue)
	return q
}

func newToast(kind Kind, message string, duration time.Duration) *Toast {
	return &Toast{
		ID:       "toast-" + uuid.NewString(),
		Kind:     kind,
		Title:    kind.Title(),
		Message:  message,
		Duration: duration,
		State:    StateCreated,
	}
}

// Restore rebuilds a toast carried over from a previous response.
func Restore(kind, title, message string, durationMs int) *Toast {
	k := ParseKind(kind)
	t := newToast(k, message, time.Duration(durationMs)*time.Millisecond)
	if title != "" {
		t.Title = title
	}
	if t.Duration <= 0 && k != KindConfirm {
		t.Duration = DefaultDuration
	}
	return t
}

// String implements fmt.Stringer for log output.
func (t *Toast) String() string {
	return fmt.Sprintf("%s[%s] %s", t.Kind, t.State, t.Message)
}
