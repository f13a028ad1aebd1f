package events

import (
	"context"
	"time"
)

// EntryRecorded is emitted after a ledger mutation commits. Read-side
// projections (dashboards, exports) consume this feed; they never write
// back.
type EntryRecorded struct {
	EntryID    string    `json:"entry_id"`
	AccountID  string    `json:"account_id"`
	Kind       string    `json:"kind"`
	Amount     string    `json:"amount"`
	Category   string    `json:"category"`
	Mode       string    `json:"mode"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event EntryRecorded) error
	Close() error
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(ctx context.Context, event EntryRecorded) error { return nil }

func (Noop) Close() error { return nil }
