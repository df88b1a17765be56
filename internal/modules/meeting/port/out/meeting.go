package out

import (
	"context"

	"meetnote/internal/modules/meeting/domain"
)

// MutateFunc derives the next version of a meeting. Returning an error
// leaves the store untouched.
type MutateFunc func(domain.Meeting) (domain.Meeting, error)

type MeetingStore interface {
	AddActive(ctx context.Context, meeting domain.Meeting) error
	GetActive(ctx context.Context, id string) (domain.Meeting, error)
	UpdateActive(ctx context.Context, id string, fn MutateFunc) (domain.Meeting, error)
	// Finish removes the meeting from the active set and files the terminal
	// result in history (completed) or the cancelled list in one step.
	Finish(ctx context.Context, id string, fn MutateFunc) (domain.Meeting, error)
	Get(ctx context.Context, id string) (domain.Meeting, error)
	ListActive(ctx context.Context) []domain.Meeting
	ListHistory(ctx context.Context) []domain.Meeting
	ListCancelled(ctx context.Context) []domain.Meeting
}

// HistorySink receives every completed meeting. It returns where the
// meeting was written, if anywhere.
type HistorySink interface {
	Archive(ctx context.Context, meeting domain.Meeting) (string, error)
}

type HistoryIndex interface {
	HistorySink
	ListArchived(ctx context.Context, limit int) ([]domain.Meeting, error)
}
