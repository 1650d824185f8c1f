package port

import (
	"context"

	"docqa/internal/domain"
)

// ChatLog records question/answer pairs, best effort. A failed Record
// must never fail the user-facing answer.
type ChatLog interface {
	Record(ctx context.Context, entry domain.LogEntry) error

	// History returns the most recent entries, newest first.
	History(ctx context.Context, limit int) ([]domain.LogEntry, error)

	// Available reports whether the backing database connected.
	Available() bool

	Close(ctx context.Context) error
}
