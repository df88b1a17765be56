package in

import (
	"context"

	"meetnote/internal/modules/connector/dto"
)

type Usecase interface {
	Connect(ctx context.Context, input dto.ConnectInput) (dto.ConnectOutput, error)
	Disconnect(ctx context.Context, input dto.DisconnectInput) error
	SeedDemo(ctx context.Context) error
	IsConnected(ctx context.Context, platform string) (bool, error)
	List(ctx context.Context) ([]dto.PlatformOutput, error)
}
