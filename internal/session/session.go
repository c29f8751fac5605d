package session

import (
	"context"
	"errors"
)

// ErrUnavailable marks failures that mean "we currently cannot send anything":
// the session could not be established or queried. The dispatcher aborts the
// whole cycle on these instead of failing individual messages.
var ErrUnavailable = errors.New("session unavailable")

// Session is the capability set the dispatcher requires from the automation
// backend that drives the remote messaging web client. The dispatcher never
// inspects session internals, so the backend is swappable.
type Session interface {
	// EnsureReady establishes or reuses the long-lived automation session.
	// Idempotent; a failure is retried on the next cycle.
	EnsureReady(ctx context.Context) error

	// IsAuthenticated is a cheap, side-effect-free check of the session's
	// current login state.
	IsAuthenticated(ctx context.Context) (bool, error)

	// Deliver navigates to the target conversation, injects text into the
	// composer, and submits it. An error covers exactly one message.
	Deliver(ctx context.Context, threadTarget, text string) error
}
