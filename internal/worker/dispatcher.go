package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/mfeher/webdispatch/internal/model"
	"github.com/mfeher/webdispatch/internal/session"
	"github.com/mfeher/webdispatch/internal/store"
)

// Dispatcher drains the queued subset of the store through the remote
// session, serially, in insertion order. One RunCycle per scheduler tick.
type Dispatcher struct {
	store   store.Store
	session session.Session

	// onSent is invoked after a successful queued->sent transition is
	// persisted. Best effort; its error never affects the message.
	onSent func(ctx context.Context, m model.Message)
}

func NewDispatcher(st store.Store, s session.Session) *Dispatcher {
	return &Dispatcher{store: st, session: s}
}

func (d *Dispatcher) WithSentHook(fn func(ctx context.Context, m model.Message)) *Dispatcher {
	d.onSent = fn
	return d
}

// RunCycle executes one dispatch cycle. Session-level failures abort the
// cycle without touching any message; per-message delivery failures are
// recorded on that message and the cycle continues. Errors never escape.
func (d *Dispatcher) RunCycle(ctx context.Context) {
	st, err := d.store.Load()
	if err != nil {
		slog.Error("dispatch cycle: load queue", "error", err)
		return
	}

	var queued []model.Message
	for _, m := range st.Messages {
		if m.Status == model.Queued {
			queued = append(queued, m)
		}
	}
	if len(queued) == 0 {
		// Nothing to send; don't touch the session at all.
		return
	}

	if err := d.session.EnsureReady(ctx); err != nil {
		slog.Warn("dispatch cycle: session not ready, retrying next cycle", "error", err)
		return
	}

	authed, err := d.session.IsAuthenticated(ctx)
	if err != nil {
		slog.Warn("dispatch cycle: auth check failed, retrying next cycle", "error", err)
		return
	}
	if !authed {
		slog.Warn("dispatch cycle: session not authenticated, skipping", "queued", len(queued))
		return
	}

	for _, m := range queued {
		if ctx.Err() != nil {
			return
		}

		if err := d.session.Deliver(ctx, m.ThreadTarget, m.Text); err != nil {
			d.markFailed(m, err.Error())
			continue
		}
		d.markSent(ctx, m)
	}
}

func (d *Dispatcher) markSent(ctx context.Context, m model.Message) {
	now := time.Now().UTC()

	var updated model.Message
	found, err := d.store.UpdateMessage(m.ID, func(rec *model.Message) {
		if rec.Status != model.Queued {
			return
		}
		rec.Status = model.Sent
		rec.SentAt = &now
		updated = *rec
	})
	if err != nil {
		slog.Error("dispatch cycle: persist sent status", "id", m.ID, "error", err)
		return
	}
	if !found {
		// Cleared mid-cycle by the request surface; nothing to record.
		slog.Debug("dispatch cycle: message vanished before write-back", "id", m.ID)
		return
	}

	slog.Info("message sent", "id", m.ID, "threadTarget", m.ThreadTarget)

	if d.onSent != nil && updated.Status == model.Sent {
		d.onSent(ctx, updated)
	}
}

func (d *Dispatcher) markFailed(m model.Message, reason string) {
	now := time.Now().UTC()

	found, err := d.store.UpdateMessage(m.ID, func(rec *model.Message) {
		if rec.Status != model.Queued {
			return
		}
		rec.Status = model.Failed
		rec.AttemptedAt = &now
		rec.LastError = &reason
	})
	if err != nil {
		slog.Error("dispatch cycle: persist failed status", "id", m.ID, "error", err)
		return
	}
	if !found {
		slog.Debug("dispatch cycle: message vanished before write-back", "id", m.ID)
		return
	}

	slog.Warn("message delivery failed", "id", m.ID, "threadTarget", m.ThreadTarget, "reason", reason)
}
