package domain

import (
	"errors"
	"fmt"
	"time"
)

const SchemaVersion = 1

var ErrInvalidTransition = errors.New("invalid meeting transition")

type Status string

const (
	StatusStarting  Status = "starting"
	StatusRecording Status = "recording"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Active reports whether a meeting in this status belongs to the active set.
func (s Status) Active() bool {
	return s == StatusStarting || s == StatusRecording
}

func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusStarting:
		return to == StatusRecording || to == StatusCancelled
	case StatusRecording:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

type ActionItem struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee"`
	DueDate  string `json:"due_date"`
}

type Summary struct {
	Title             string       `json:"title"`
	KeyPoints         []string     `json:"key_points"`
	ActionItems       []ActionItem `json:"action_items"`
	Decisions         []string     `json:"decisions"`
	Sentiment         string       `json:"sentiment"`
	ConfidencePercent float64      `json:"confidence_percent"`
	Provider          string       `json:"provider,omitempty"`
}

func (s Summary) Confidence() string {
	return fmt.Sprintf("%.1f%%", s.ConfidencePercent)
}

type Meeting struct {
	ID               string    `json:"id"`
	Platform         string    `json:"platform"`
	StartTime        time.Time `json:"start_time"`
	Status           Status    `json:"status"`
	EndTime          time.Time `json:"end_time,omitempty"`
	Summary          *Summary  `json:"summary,omitempty"`
	DurationMin      int       `json:"duration_minutes,omitempty"`
	ParticipantCount int       `json:"participant_count,omitempty"`
	// Ending is set once an end has been scheduled so a second End is a no-op.
	Ending bool `json:"ending,omitempty"`
}

func New(id, platform string, at time.Time) Meeting {
	return Meeting{ID: id, Platform: platform, StartTime: at, Status: StatusStarting}
}

func (m Meeting) transition(to Status) (Meeting, error) {
	if !m.Status.CanTransition(to) {
		return Meeting{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Status, to)
	}
	m.Status = to
	return m, nil
}

// StartRecording moves a starting meeting to recording.
func (m Meeting) StartRecording() (Meeting, error) {
	return m.transition(StatusRecording)
}

// Complete attaches the summary and the randomly assigned statistics.
func (m Meeting) Complete(at time.Time, summary Summary, durationMin, participants int) (Meeting, error) {
	next, err := m.transition(StatusCompleted)
	if err != nil {
		return Meeting{}, err
	}
	next.EndTime = at
	next.Summary = &summary
	next.DurationMin = durationMin
	next.ParticipantCount = participants
	next.Ending = false
	return next, nil
}

func (m Meeting) Cancel(at time.Time) (Meeting, error) {
	next, err := m.transition(StatusCancelled)
	if err != nil {
		return Meeting{}, err
	}
	next.EndTime = at
	next.Ending = false
	return next, nil
}
