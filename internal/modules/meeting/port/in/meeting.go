package in

import (
	"context"

	"meetnote/internal/modules/meeting/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StartOutput, error)
	End(ctx context.Context, input dto.EndInput) (dto.EndOutput, error)
	Cancel(ctx context.Context, input dto.CancelInput) (dto.MeetingOutput, error)
	Get(ctx context.Context, id string) (dto.MeetingOutput, error)
	ListActive(ctx context.Context) ([]dto.MeetingOutput, error)
	ListHistory(ctx context.Context) ([]dto.MeetingOutput, error)
	ListCancelled(ctx context.Context) ([]dto.MeetingOutput, error)
	Stats(ctx context.Context) (dto.StatsOutput, error)
	ListArchived(ctx context.Context, limit int) ([]dto.MeetingOutput, error)
}
