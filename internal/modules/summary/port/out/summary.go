package out

import (
	"context"

	"meetnote/internal/modules/summary/domain"
)

// Provider produces a summary for a meeting held on platform.
type Provider interface {
	Name() string
	Generate(ctx context.Context, platform string) (domain.Summary, error)
}
