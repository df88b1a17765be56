package domain_test

import (
	"errors"
	"testing"
	"time"

	"meetnote/internal/modules/meeting/domain"
)

func TestLinearLifecycle(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	m := domain.New("meeting_1", "Zoom", start)
	if m.Status != domain.StatusStarting || !m.Status.Active() {
		t.Fatalf("new meeting must be starting and active, got %s", m.Status)
	}
	rec, err := m.StartRecording()
	if err != nil {
		t.Fatalf("start recording: %v", err)
	}
	done, err := rec.Complete(start.Add(time.Minute), domain.Summary{Title: "Team Meeting", ConfidencePercent: 90}, 30, 4)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != domain.StatusCompleted || done.Status.Active() || done.Summary == nil || done.DurationMin != 30 || done.ParticipantCount != 4 {
		t.Fatalf("unexpected completed meeting: %+v", done)
	}
	if done.Summary.Confidence() != "90.0%" {
		t.Fatalf("unexpected confidence %q", done.Summary.Confidence())
	}
}

func TestRejectedTransitions(t *testing.T) {
	t.Parallel()
	m := domain.New("meeting_1", "Zoom", time.Now())
	if _, err := m.Complete(time.Now(), domain.Summary{}, 1, 1); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("starting -> completed must be rejected, got %v", err)
	}
	cancelled, err := m.Cancel(time.Now())
	if err != nil {
		t.Fatalf("cancel starting meeting: %v", err)
	}
	if _, err := cancelled.StartRecording(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("cancelled is terminal, got %v", err)
	}
	if _, err := cancelled.Cancel(time.Now()); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("double cancel must be rejected, got %v", err)
	}
}
