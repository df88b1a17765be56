package out

import (
	"context"
	"time"

	"meetnote/internal/modules/connector/domain"
)

// ConnectionStore is the connected-platform set. AddConnected and
// RemoveConnected report whether the set changed.
type ConnectionStore interface {
	IsConnected(ctx context.Context, name string) bool
	AddConnected(ctx context.Context, name string, at time.Time) bool
	RemoveConnected(ctx context.Context, name string) bool
	Connected(ctx context.Context) []domain.Platform
}
