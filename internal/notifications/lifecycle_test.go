package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestToastLifecycle(t *testing.T) {
	toast := newToast(KindSuccess, "Item removed from cart", DefaultDuration)
	require.Equal(t, StateCreated, toast.State)

	require.NoError(t, toast.Advance(EventMount))
	require.NoError(t, toast.Advance(EventShown))
	require.NoError(t, toast.Advance(EventExpire))
	require.Equal(t, EventExpire, toast.Outcome)
	require.NoError(t, toast.Advance(EventFinish))
	require.Equal(t, StateRemoved, toast.State)

	for _, ev := range []Event{EventMount, EventShown, EventClose, EventFinish} {
		require.ErrorIs(t, toast.Advance(ev), ErrInvalidTransition, ev)
	}
}

func TestToastRejectsSkippedStates(t *testing.T) {
	toast := newToast(KindInfo, "hello", time.Second)
	require.ErrorIs(t, toast.Advance(EventClose), ErrInvalidTransition)
	require.ErrorIs(t, toast.Advance(EventFinish), ErrInvalidTransition)
	require.NoError(t, toast.Advance(EventMount))
	require.ErrorIs(t, toast.Advance(EventExpire), ErrInvalidTransition)
}

func TestConfirmTransitions(t *testing.T) {
	panel := newToast(KindConfirm, "Are you sure?", 0)
	require.NoError(t, panel.Advance(EventMount))
	require.NoError(t, panel.Advance(EventShown))
	require.ErrorIs(t, panel.Advance(EventExpire), ErrInvalidTransition)
	require.NoError(t, panel.Advance(EventCancel))
	require.Equal(t, EventCancel, panel.Outcome)
	require.NoError(t, panel.Advance(EventFinish))

	plain := newToast(KindInfo, "hi", time.Second)
	require.NoError(t, plain.Advance(EventMount))
	require.NoError(t, plain.Advance(EventShown))
	require.ErrorIs(t, plain.Advance(EventConfirm), ErrInvalidTransition)
	require.NoError(t, plain.Advance(EventClose))
}
