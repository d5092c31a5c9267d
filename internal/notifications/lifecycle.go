package notifications

import (
	"errors"
	"fmt"
	"time"
)

// State is a toast's position in its lifecycle.
type State string

const (
	StateCreated      State = "created"
	StateAnimatingIn  State = "animating-in"
	StateVisible      State = "visible"
	StateAnimatingOut State = "animating-out"
	StateRemoved      State = "removed"
)

// Event moves a toast between states.
type Event string

const (
	// EventMount hands the toast to the renderer.
	EventMount Event = "mount"
	// EventShown fires when the entry animation completes.
	EventShown Event = "shown"
	// EventExpire fires when the display timer runs out.
	EventExpire Event = "expire"
	// EventClose fires on the close button.
	EventClose Event = "close"
	// EventConfirm fires on a confirm panel's Confirm button.
	EventConfirm Event = "confirm"
	// EventCancel fires on a confirm panel's Cancel button.
	EventCancel Event = "cancel"
	// EventFinish fires when the exit animation completes.
	EventFinish Event = "finish"
)

// ErrInvalidTransition is returned for an event the current state does not accept.
var ErrInvalidTransition = errors.New("notifications: invalid transition")

var transitions = map[State]map[Event]State{
	StateCreated:     {EventMount: StateAnimatingIn},
	StateAnimatingIn: {EventShown: StateVisible},
	StateVisible: {
		EventExpire:  StateAnimatingOut,
		EventClose:   StateAnimatingOut,
		EventConfirm: StateAnimatingOut,
		EventCancel:  StateAnimatingOut,
	},
	StateAnimatingOut: {EventFinish: StateRemoved},
}

// Toast is a queued notification.
type Toast struct {
	ID       string
	Kind     Kind
	Title    string
	Message  string
	Duration time.Duration
	State    State
	Prompt   *Prompt
	// Outcome records the event that ended the visible phase.
	Outcome Event
}

// Advance applies an event. Removed toasts accept nothing; expiry does not apply to confirm
// panels, and confirm/cancel only to them.
func (t *Toast) Advance(ev Event) error {
	next, ok := transitions[t.State][ev]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, t.State)
	}
	switch ev {
	case EventExpire:
		if t.Kind == KindConfirm || t.Duration <= 0 {
			return fmt.Errorf("%w: confirm panels do not expire", ErrInvalidTransition)
		}
	case EventConfirm, EventCancel:
		if t.Kind != KindConfirm {
			return fmt.Errorf("%w: %s on a %s toast", ErrInvalidTransition, ev, t.Kind)
		}
	}
	if t.State == StateVisible {
		t.Outcome = ev
	}
	t.State = next
	return nil
}

// DurationMs is the display time in milliseconds for the client-side timer; zero means the
// toast stays until dismissed.
func (t *Toast) DurationMs() int64 {
	if t.Kind == KindConfirm {
		return 0
	}
	return t.Duration.Milliseconds()
}

// IsConfirm reports whether the toast is a confirm panel.
func (t *Toast) IsConfirm() bool {
	return t.Kind == KindConfirm && t.Prompt != nil
}
