package in

import (
	"context"

	connectordto "meetnote/internal/modules/connector/dto"
	connectorin "meetnote/internal/modules/connector/port/in"
)

type CLIHandler struct {
	usecase connectorin.Usecase
}

func NewCLIHandler(usecase connectorin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Connect(ctx context.Context, platform string) (connectordto.ConnectOutput, error) {
	return h.usecase.Connect(ctx, connectordto.ConnectInput{Platform: platform})
}

func (h CLIHandler) Disconnect(ctx context.Context, platform string) error {
	return h.usecase.Disconnect(ctx, connectordto.DisconnectInput{Platform: platform})
}

func (h CLIHandler) SeedDemo(ctx context.Context) error {
	return h.usecase.SeedDemo(ctx)
}

func (h CLIHandler) Platforms(ctx context.Context) ([]connectordto.PlatformOutput, error) {
	return h.usecase.List(ctx)
}
