package in

import (
	"context"

	"meetnote/internal/modules/summary/dto"
)

type Usecase interface {
	Generate(ctx context.Context, input dto.GenerateInput) (dto.SummaryOutput, error)
	Preview(ctx context.Context, input dto.PreviewInput) (dto.PreviewOutput, error)
}
