package chatlog

import (
	"context"

	"docqa/internal/domain"
)

// NopLog is used when the database is unreachable at startup.
// Answers still flow; history is simply not kept.
type NopLog struct{}

func (NopLog) Record(context.Context, domain.LogEntry) error { return nil }

func (NopLog) History(context.Context, int) ([]domain.LogEntry, error) { return nil, nil }

func (NopLog) Available() bool { return false }

func (NopLog) Close(context.Context) error { return nil }
