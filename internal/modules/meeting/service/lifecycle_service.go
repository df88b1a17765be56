package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meetnote/internal/modules/meeting/domain"
	meetingout "meetnote/internal/modules/meeting/port/out"
	"meetnote/internal/platform/clock"
	apperrors "meetnote/internal/platform/errors"
	"meetnote/internal/platform/id"
	"meetnote/internal/platform/random"
)

const (
	MinDurationMin   = 15
	durationSpan     = 60
	MinParticipants  = 2
	participantsSpan = 10
)

// errAlreadyEnding aborts MarkEnding without touching the store.
var errAlreadyEnding = errors.New("meeting end already scheduled")

type LifecycleService struct {
	clock clock.Clock
	idGen id.Generator
	rng   random.Source
	store meetingout.MeetingStore
}

func NewLifecycleService(clock clock.Clock, idGen id.Generator, rng random.Source, store meetingout.MeetingStore) *LifecycleService {
	return &LifecycleService{clock: clock, idGen: idGen, rng: rng, store: store}
}

// Create adds a new starting meeting to the active set.
func (s *LifecycleService) Create(ctx context.Context, platform string) (domain.Meeting, error) {
	platform = strings.TrimSpace(platform)
	if platform == "" {
		return domain.Meeting{}, fmt.Errorf("%w: platform name is required", apperrors.ErrInvalidInput)
	}
	meeting := domain.New(s.idGen.New(), platform, s.clock.Now())
	if err := s.store.AddActive(ctx, meeting); err != nil {
		return domain.Meeting{}, err
	}
	return meeting, nil
}

func (s *LifecycleService) BeginRecording(ctx context.Context, id string) (domain.Meeting, error) {
	return s.store.UpdateActive(ctx, id, func(m domain.Meeting) (domain.Meeting, error) {
		return m.StartRecording()
	})
}

// MarkEnding flags an active meeting as ending. The bool is false when the
// meeting is unknown or its end was already scheduled.
func (s *LifecycleService) MarkEnding(ctx context.Context, id string) (domain.Meeting, bool, error) {
	m, err := s.store.UpdateActive(ctx, id, func(m domain.Meeting) (domain.Meeting, error) {
		if m.Ending {
			return domain.Meeting{}, errAlreadyEnding
		}
		m.Ending = true
		return m, nil
	})
	switch {
	case errors.Is(err, errAlreadyEnding), errors.Is(err, apperrors.ErrNotFound):
		return domain.Meeting{}, false, nil
	case err != nil:
		return domain.Meeting{}, false, err
	}
	return m, true, nil
}

// ReleaseEnding clears the ending flag so a later End schedules completion
// again.
func (s *LifecycleService) ReleaseEnding(ctx context.Context, id string) (domain.Meeting, error) {
	return s.store.UpdateActive(ctx, id, func(m domain.Meeting) (domain.Meeting, error) {
		m.Ending = false
		return m, nil
	})
}

// Complete attaches summary and random statistics and moves the meeting to
// history. A meeting still starting passes through recording first.
func (s *LifecycleService) Complete(ctx context.Context, id string, summary domain.Summary) (domain.Meeting, error) {
	return s.store.Finish(ctx, id, func(m domain.Meeting) (domain.Meeting, error) {
		if m.Status == domain.StatusStarting {
			var err error
			if m, err = m.StartRecording(); err != nil {
				return domain.Meeting{}, err
			}
		}
		return m.Complete(s.clock.Now(), summary, s.Duration(), s.Participants())
	})
}

// Cancel moves an active meeting to the cancelled list. Meetings that
// already finished report ErrInvalidTransition.
func (s *LifecycleService) Cancel(ctx context.Context, id string) (domain.Meeting, error) {
	id = strings.TrimSpace(id)
	m, err := s.store.Finish(ctx, id, func(m domain.Meeting) (domain.Meeting, error) {
		return m.Cancel(s.clock.Now())
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		if done, getErr := s.store.Get(ctx, id); getErr == nil {
			return domain.Meeting{}, fmt.Errorf("%w: meeting %s is %s", domain.ErrInvalidTransition, id, done.Status)
		}
	}
	return m, err
}

// Duration returns a meeting length in minutes within [15, 74].
func (s *LifecycleService) Duration() int {
	return int(s.rng.Float64()*durationSpan) + MinDurationMin
}

// Participants returns a head count within [2, 11].
func (s *LifecycleService) Participants() int {
	return int(s.rng.Float64()*participantsSpan) + MinParticipants
}
