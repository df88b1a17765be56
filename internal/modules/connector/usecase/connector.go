package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"meetnote/internal/modules/connector/domain"
	connectordto "meetnote/internal/modules/connector/dto"
	connectorin "meetnote/internal/modules/connector/port/in"
	"meetnote/internal/modules/connector/service"
	"meetnote/internal/platform/clock"
	apperrors "meetnote/internal/platform/errors"
	"meetnote/internal/platform/notify"
)

type Timings struct {
	Connect time.Duration
	Seed    time.Duration
}

type Interactor struct {
	svc       *service.ConnectorService
	scheduler clock.Scheduler
	notifier  notify.Notifier
	logger    hclog.Logger
	timings   Timings
	seed      []string
}

func NewInteractor(svc *service.ConnectorService, scheduler clock.Scheduler, notifier notify.Notifier, logger hclog.Logger, timings Timings, seed []string) connectorin.Usecase {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Interactor{
		svc:       svc,
		scheduler: scheduler,
		notifier:  notifier,
		logger:    logger,
		timings:   timings,
		seed:      append([]string(nil), seed...),
	}
}

func (i *Interactor) Connect(ctx context.Context, input connectordto.ConnectInput) (connectordto.ConnectOutput, error) {
	name, err := i.svc.Begin(ctx, input.Platform)
	switch {
	case errors.Is(err, apperrors.ErrAlreadyConnected):
		i.emit(ctx, notify.LevelInfo, "platform.already_connected", name, fmt.Sprintf("%s is already connected", name))
		return connectordto.ConnectOutput{Platform: name, Status: string(domain.StatusConnected)}, err
	case errors.Is(err, apperrors.ErrConnectionPending):
		i.emit(ctx, notify.LevelInfo, "platform.pending", name, fmt.Sprintf("Still connecting to %s...", name))
		return connectordto.ConnectOutput{Platform: name, Status: string(domain.StatusPending)}, err
	case err != nil:
		return connectordto.ConnectOutput{}, err
	}

	i.logger.Debug("connecting platform", "platform", name, "delay", i.timings.Connect)
	i.emit(ctx, notify.LevelLoading, "platform.connecting", name, fmt.Sprintf("Connecting to %s...", name))
	readyAt := i.scheduler.Now().Add(i.timings.Connect)
	ctx = context.WithoutCancel(ctx)
	i.scheduler.AfterFunc(i.timings.Connect, func() {
		if !i.svc.Complete(ctx, name) {
			i.emit(ctx, notify.LevelInfo, "platform.already_connected", name, fmt.Sprintf("%s is already connected", name))
			return
		}
		i.logger.Info("platform connected", "platform", name, "connected", len(i.svc.Connected(ctx)))
		i.emit(ctx, notify.LevelSuccess, "platform.connected", name, fmt.Sprintf("%s connected successfully!", name))
	})
	return connectordto.ConnectOutput{Platform: name, Status: string(domain.StatusPending), ReadyAt: readyAt}, nil
}

func (i *Interactor) Disconnect(ctx context.Context, input connectordto.DisconnectInput) error {
	if err := i.svc.Disconnect(ctx, input.Platform); err != nil {
		return err
	}
	name := strings.TrimSpace(input.Platform)
	i.emit(ctx, notify.LevelInfo, "platform.disconnected", name, fmt.Sprintf("%s disconnected", name))
	return nil
}

// SeedDemo connects the configured demo platforms after the seed delay.
func (i *Interactor) SeedDemo(ctx context.Context) error {
	if len(i.seed) == 0 {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	i.scheduler.AfterFunc(i.timings.Seed, func() {
		added := i.svc.Seed(ctx, i.seed)
		i.logger.Info("demo platforms initialized", "added", strings.Join(added, ","))
		for _, name := range added {
			i.emit(ctx, notify.LevelSuccess, "platform.connected", name, fmt.Sprintf("%s connected successfully!", name))
		}
	})
	return nil
}

func (i *Interactor) IsConnected(ctx context.Context, platform string) (bool, error) {
	if strings.TrimSpace(platform) == "" {
		return false, fmt.Errorf("%w: platform name is required", apperrors.ErrInvalidInput)
	}
	return i.svc.Status(ctx, platform) == domain.StatusConnected, nil
}

func (i *Interactor) List(ctx context.Context) ([]connectordto.PlatformOutput, error) {
	platforms := i.svc.Connected(ctx)
	out := make([]connectordto.PlatformOutput, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, connectordto.PlatformOutput{Name: p.Name, Status: string(domain.StatusConnected), ConnectedAt: p.ConnectedAt})
	}
	return out, nil
}

func (i *Interactor) emit(ctx context.Context, level notify.Level, topic, platform, message string) {
	i.notifier.Notify(ctx, notify.Event{
		Level:    level,
		Topic:    topic,
		Message:  message,
		Platform: platform,
		At:       i.scheduler.Now(),
	})
}
