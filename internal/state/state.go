// Package state holds the volatile application state: connected platforms,
// active meetings, history and user preferences. A Store is owned by its
// caller; independent stores never share data.
package state

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	connectordomain "meetnote/internal/modules/connector/domain"
	connectorout "meetnote/internal/modules/connector/port/out"
	meetingdomain "meetnote/internal/modules/meeting/domain"
	meetingout "meetnote/internal/modules/meeting/port/out"
	apperrors "meetnote/internal/platform/errors"
)

type Preferences struct {
	AutoStart     bool   `json:"auto_start"`
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
}

func DefaultPreferences() Preferences {
	return Preferences{AutoStart: true, Language: "en", Notifications: true}
}

type Store struct {
	mu        sync.RWMutex
	connected []connectordomain.Platform
	active    []meetingdomain.Meeting
	history   []meetingdomain.Meeting
	cancelled []meetingdomain.Meeting
	prefs     Preferences
}

func New(prefs Preferences) *Store {
	return &Store{prefs: prefs}
}

var (
	_ connectorout.ConnectionStore = (*Store)(nil)
	_ meetingout.MeetingStore      = (*Store)(nil)
)

// ─── preferences ─────────────────────────────────────────────────────────────

func (s *Store) Preferences() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

func (s *Store) SetPreferences(prefs Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = prefs
}

// ─── platforms ───────────────────────────────────────────────────────────────

func (s *Store) IsConnected(_ context.Context, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexPlatform(name) >= 0
}

func (s *Store) AddConnected(_ context.Context, name string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexPlatform(name) >= 0 {
		return false
	}
	s.connected = append(s.connected, connectordomain.Platform{Name: name, ConnectedAt: at})
	return true
}

func (s *Store) RemoveConnected(_ context.Context, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexPlatform(name)
	if idx < 0 {
		return false
	}
	s.connected = slices.Delete(s.connected, idx, idx+1)
	return true
}

func (s *Store) Connected(_ context.Context) []connectordomain.Platform {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.connected)
}

func (s *Store) indexPlatform(name string) int {
	return slices.IndexFunc(s.connected, func(p connectordomain.Platform) bool { return p.Name == name })
}

// ─── meetings ────────────────────────────────────────────────────────────────

func (s *Store) AddActive(_ context.Context, meeting meetingdomain.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if meeting.ID == "" {
		return fmt.Errorf("%w: meeting id is required", apperrors.ErrInvalidInput)
	}
	if !meeting.Status.Active() {
		return fmt.Errorf("%w: meeting %s is %s", apperrors.ErrInvalidInput, meeting.ID, meeting.Status)
	}
	if s.locate(meeting.ID) != nil {
		return fmt.Errorf("%w: duplicate meeting id %s", apperrors.ErrInvalidInput, meeting.ID)
	}
	s.active = append(s.active, meeting)
	return nil
}

func (s *Store) GetActive(_ context.Context, id string) (meetingdomain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexMeeting(s.active, id)
	if idx < 0 {
		return meetingdomain.Meeting{}, apperrors.ErrNotFound
	}
	return s.active[idx], nil
}

func (s *Store) UpdateActive(_ context.Context, id string, fn meetingout.MutateFunc) (meetingdomain.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexMeeting(s.active, id)
	if idx < 0 {
		return meetingdomain.Meeting{}, apperrors.ErrNotFound
	}
	next, err := fn(s.active[idx])
	if err != nil {
		return meetingdomain.Meeting{}, err
	}
	if next.ID != id || !next.Status.Active() {
		return meetingdomain.Meeting{}, fmt.Errorf("%w: update must keep meeting %s active", apperrors.ErrInvalidInput, id)
	}
	s.active[idx] = next
	return next, nil
}

func (s *Store) Finish(_ context.Context, id string, fn meetingout.MutateFunc) (meetingdomain.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexMeeting(s.active, id)
	if idx < 0 {
		return meetingdomain.Meeting{}, apperrors.ErrNotFound
	}
	next, err := fn(s.active[idx])
	if err != nil {
		return meetingdomain.Meeting{}, err
	}
	if next.ID != id {
		return meetingdomain.Meeting{}, fmt.Errorf("%w: finish must keep meeting id %s", apperrors.ErrInvalidInput, id)
	}
	switch next.Status {
	case meetingdomain.StatusCompleted:
		s.history = slices.Insert(s.history, 0, next)
	case meetingdomain.StatusCancelled:
		s.cancelled = slices.Insert(s.cancelled, 0, next)
	default:
		return meetingdomain.Meeting{}, fmt.Errorf("%w: meeting %s is not terminal (%s)", apperrors.ErrInvalidInput, id, next.Status)
	}
	s.active = slices.Delete(s.active, idx, idx+1)
	return next, nil
}

func (s *Store) Get(_ context.Context, id string) (meetingdomain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m := s.locate(id); m != nil {
		return *m, nil
	}
	return meetingdomain.Meeting{}, apperrors.ErrNotFound
}

func (s *Store) ListActive(_ context.Context) []meetingdomain.Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.active)
}

// ListHistory returns completed meetings, most recent first.
func (s *Store) ListHistory(_ context.Context) []meetingdomain.Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

func (s *Store) ListCancelled(_ context.Context) []meetingdomain.Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cancelled)
}

func (s *Store) locate(id string) *meetingdomain.Meeting {
	for _, list := range [][]meetingdomain.Meeting{s.active, s.history, s.cancelled} {
		if idx := indexMeeting(list, id); idx >= 0 {
			return &list[idx]
		}
	}
	return nil
}

func indexMeeting(list []meetingdomain.Meeting, id string) int {
	return slices.IndexFunc(list, func(m meetingdomain.Meeting) bool { return m.ID == id })
}
