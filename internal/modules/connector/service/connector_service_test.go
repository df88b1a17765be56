package service_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"meetnote/internal/modules/connector/domain"
	"meetnote/internal/modules/connector/service"
	"meetnote/internal/platform/clock"
	apperrors "meetnote/internal/platform/errors"
	"meetnote/internal/state"
)

func newService() *service.ConnectorService {
	return service.NewConnectorService(clock.NewVirtual(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)), state.New(state.DefaultPreferences()))
}

func TestBeginCompleteStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newService()

	name, err := svc.Begin(ctx, "  Zoom ")
	if err != nil || name != "Zoom" {
		t.Fatalf("begin: %q %v", name, err)
	}
	if svc.Status(ctx, "Zoom") != domain.StatusPending {
		t.Fatalf("expected pending")
	}
	if _, err := svc.Begin(ctx, "Zoom"); !errors.Is(err, apperrors.ErrConnectionPending) {
		t.Fatalf("expected pending error, got %v", err)
	}
	if !svc.Complete(ctx, "Zoom") {
		t.Fatalf("complete must add Zoom")
	}
	if svc.Status(ctx, "Zoom") != domain.StatusConnected {
		t.Fatalf("expected connected")
	}
	if _, err := svc.Begin(ctx, "Zoom"); !errors.Is(err, apperrors.ErrAlreadyConnected) || !apperrors.IsSoft(err) {
		t.Fatalf("expected soft already connected, got %v", err)
	}
	if _, err := svc.Begin(ctx, " "); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestDisconnect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newService()
	if err := svc.Disconnect(ctx, "Zoom"); !errors.Is(err, apperrors.ErrNotConnected) {
		t.Fatalf("expected not connected, got %v", err)
	}
	_, _ = svc.Begin(ctx, "Zoom")
	svc.Complete(ctx, "Zoom")
	if err := svc.Disconnect(ctx, "Zoom"); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if svc.Status(ctx, "Zoom") != domain.StatusDisconnected {
		t.Fatalf("expected disconnected")
	}
}

func TestSeedMergesAndClearsPending(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newService()
	_, _ = svc.Begin(ctx, "Google Meet")
	svc.Complete(ctx, "Google Meet")
	_, _ = svc.Begin(ctx, "Zoom")

	added := svc.Seed(ctx, []string{"Zoom", "Microsoft Teams", "Google Meet", ""})
	if !slices.Equal(added, []string{"Zoom", "Microsoft Teams"}) {
		t.Fatalf("unexpected seeded platforms %v", added)
	}
	var names []string
	for _, p := range svc.Connected(ctx) {
		names = append(names, p.Name)
	}
	if !slices.Equal(names, []string{"Google Meet", "Zoom", "Microsoft Teams"}) {
		t.Fatalf("unexpected connected order %v", names)
	}
	if svc.Complete(ctx, "Zoom") {
		t.Fatalf("late completion of a seeded platform must not duplicate it")
	}
}
