package in

import (
	"context"

	meetingdto "meetnote/internal/modules/meeting/dto"
	meetingin "meetnote/internal/modules/meeting/port/in"
)

type CLIHandler struct {
	usecase meetingin.Usecase
}

func NewCLIHandler(usecase meetingin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, platform string) (meetingdto.StartOutput, error) {
	return h.usecase.Start(ctx, meetingdto.StartInput{Platform: platform})
}

func (h CLIHandler) End(ctx context.Context, meetingID string) (meetingdto.EndOutput, error) {
	return h.usecase.End(ctx, meetingdto.EndInput{MeetingID: meetingID})
}

func (h CLIHandler) Cancel(ctx context.Context, meetingID string) (meetingdto.MeetingOutput, error) {
	return h.usecase.Cancel(ctx, meetingdto.CancelInput{MeetingID: meetingID})
}

func (h CLIHandler) Get(ctx context.Context, meetingID string) (meetingdto.MeetingOutput, error) {
	return h.usecase.Get(ctx, meetingID)
}

func (h CLIHandler) Active(ctx context.Context) ([]meetingdto.MeetingOutput, error) {
	return h.usecase.ListActive(ctx)
}

func (h CLIHandler) History(ctx context.Context) ([]meetingdto.MeetingOutput, error) {
	return h.usecase.ListHistory(ctx)
}

func (h CLIHandler) Cancelled(ctx context.Context) ([]meetingdto.MeetingOutput, error) {
	return h.usecase.ListCancelled(ctx)
}

func (h CLIHandler) Stats(ctx context.Context) (meetingdto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}

func (h CLIHandler) Archived(ctx context.Context, limit int) ([]meetingdto.MeetingOutput, error) {
	return h.usecase.ListArchived(ctx, limit)
}
