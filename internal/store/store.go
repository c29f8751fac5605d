package store

import (
	"time"

	"github.com/mfeher/webdispatch/internal/model"
)

// Store is the single source of truth for queue state. Every operation is
// load-mutate-save over the full persisted image; there is no partial-update
// API. Callers must not hold a record across an operation boundary.
type Store interface {
	Load() (model.QueueState, error)
	Save(state model.QueueState) error

	AppendMessage(m model.Message) error

	// UpdateMessage re-reads current state, applies mutate to the record with
	// the given id if it is still present, and persists. Returns false when
	// the record no longer exists (e.g. the queue was cleared mid-flight).
	UpdateMessage(id string, mutate func(*model.Message)) (bool, error)

	// ClearMessages discards every message regardless of status and returns
	// how many were removed. Pairings are untouched.
	ClearMessages() (int, error)

	AddPairing(code string, createdAt time.Time) error
}
