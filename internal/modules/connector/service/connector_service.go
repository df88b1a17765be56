package service

import (
	"context"
	"fmt"
	"sync"

	"meetnote/internal/modules/connector/domain"
	connectorout "meetnote/internal/modules/connector/port/out"
	"meetnote/internal/platform/clock"
	apperrors "meetnote/internal/platform/errors"
)

// ConnectorService tracks in-flight connections on top of the connected set.
type ConnectorService struct {
	clock clock.Clock
	store connectorout.ConnectionStore

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewConnectorService(clock clock.Clock, store connectorout.ConnectionStore) *ConnectorService {
	return &ConnectorService{clock: clock, store: store, pending: map[string]struct{}{}}
}

// Begin validates name and marks it pending. It returns the normalized name.
func (s *ConnectorService) Begin(ctx context.Context, name string) (string, error) {
	name = domain.NormalizeName(name)
	if name == "" {
		return "", fmt.Errorf("%w: platform name is required", apperrors.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store.IsConnected(ctx, name) {
		return name, fmt.Errorf("%w: %s", apperrors.ErrAlreadyConnected, name)
	}
	if _, ok := s.pending[name]; ok {
		return name, fmt.Errorf("%w: %s", apperrors.ErrConnectionPending, name)
	}
	s.pending[name] = struct{}{}
	return name, nil
}

// Complete clears the pending mark and adds name to the connected set.
func (s *ConnectorService) Complete(ctx context.Context, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, name)
	return s.store.AddConnected(ctx, name, s.clock.Now())
}

func (s *ConnectorService) Disconnect(ctx context.Context, name string) error {
	name = domain.NormalizeName(name)
	if name == "" {
		return fmt.Errorf("%w: platform name is required", apperrors.ErrInvalidInput)
	}
	if !s.store.RemoveConnected(ctx, name) {
		return apperrors.ErrNotConnected
	}
	return nil
}

func (s *ConnectorService) Status(ctx context.Context, name string) domain.Status {
	name = domain.NormalizeName(name)
	if s.store.IsConnected(ctx, name) {
		return domain.StatusConnected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[name]; ok {
		return domain.StatusPending
	}
	return domain.StatusDisconnected
}

func (s *ConnectorService) Connected(ctx context.Context) []domain.Platform {
	return s.store.Connected(ctx)
}

// Seed adds names directly, skipping the ones already connected.
func (s *ConnectorService) Seed(ctx context.Context, names []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := make([]string, 0, len(names))
	for _, name := range names {
		name = domain.NormalizeName(name)
		if name == "" {
			continue
		}
		delete(s.pending, name)
		if s.store.AddConnected(ctx, name, s.clock.Now()) {
			added = append(added, name)
		}
	}
	return added
}
