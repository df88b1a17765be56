package in

import (
	"context"

	summarydto "meetnote/internal/modules/summary/dto"
	summaryin "meetnote/internal/modules/summary/port/in"
)

type CLIHandler struct {
	usecase summaryin.Usecase
}

func NewCLIHandler(usecase summaryin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Generate(ctx context.Context, platform string) (summarydto.SummaryOutput, error) {
	return h.usecase.Generate(ctx, summarydto.GenerateInput{Platform: platform})
}

func (h CLIHandler) Preview(ctx context.Context, title string) (summarydto.PreviewOutput, error) {
	return h.usecase.Preview(ctx, summarydto.PreviewInput{Title: title})
}
