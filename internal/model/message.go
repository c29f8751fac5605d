package model

import "time"

type Status string

const (
	Queued Status = "queued"
	Sent   Status = "sent"
	Failed Status = "failed"
)

// Message is one outbound text destined for a remote conversation thread.
// Exactly one of SentAt/AttemptedAt is set once Status leaves Queued.
type Message struct {
	ID           string     `json:"id"`
	ThreadTarget string     `json:"threadTarget"`
	Text         string     `json:"text"`
	SenderName   string     `json:"senderName,omitempty"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	SentAt       *time.Time `json:"sentAt,omitempty"`
	AttemptedAt  *time.Time `json:"attemptedAt,omitempty"`
	LastError    *string    `json:"lastError,omitempty"`
}

// Pairing is a write-once record of an issued pairing code.
type Pairing struct {
	CreatedAt time.Time `json:"createdAt"`
}

// QueueState is the full persisted image: every message plus every pairing,
// keyed by code.
type QueueState struct {
	Messages []Message          `json:"messages"`
	Pairings map[string]Pairing `json:"pairings"`
}

func EmptyState() QueueState {
	return QueueState{
		Messages: []Message{},
		Pairings: map[string]Pairing{},
	}
}
