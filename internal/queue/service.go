package queue

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mfeher/webdispatch/internal/model"
	"github.com/mfeher/webdispatch/internal/store"
)

// ValidationError rejects a malformed submission before it enters the queue.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must not be empty", e.Field)
}

// Service is the request surface over the queue store: submissions, listing,
// pairing codes, and bulk clear. Delivery is the dispatcher's job; records
// created here always start out queued.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Submit validates and enqueues a new outbound message, returning its id.
func (s *Service) Submit(threadTarget, text, senderName string) (string, error) {
	if threadTarget == "" {
		return "", &ValidationError{Field: "threadTarget"}
	}
	if text == "" {
		return "", &ValidationError{Field: "text"}
	}

	m := model.Message{
		ID:           uuid.NewString(),
		ThreadTarget: threadTarget,
		Text:         text,
		SenderName:   senderName,
		Status:       model.Queued,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.AppendMessage(m); err != nil {
		return "", fmt.Errorf("enqueue message: %w", err)
	}
	return m.ID, nil
}

// ListAll returns a snapshot of every message in insertion order.
func (s *Service) ListAll() ([]model.Message, error) {
	st, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return st.Messages, nil
}

// ClearAll discards every message regardless of status; pairings survive.
func (s *Service) ClearAll() (int, error) {
	return s.store.ClearMessages()
}

// NewPairingCode issues and records a fresh opaque pairing code. Collisions
// are not guarded against, just improbable.
func (s *Service) NewPairingCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate pairing code: %w", err)
	}
	code := hex.EncodeToString(buf)

	if err := s.store.AddPairing(code, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("record pairing code: %w", err)
	}
	return code, nil
}
