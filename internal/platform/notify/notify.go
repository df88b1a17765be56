package notify

import (
	"context"
	"sync"
	"time"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelLoading Level = "loading"
)

// Event is a user-facing status message. It carries no state of its own;
// consumers render it and drop it.
type Event struct {
	Level     Level     `json:"level"`
	Topic     string    `json:"topic"`
	Message   string    `json:"message"`
	Platform  string    `json:"platform,omitempty"`
	MeetingID string    `json:"meeting_id,omitempty"`
	At        time.Time `json:"at"`
}

type Notifier interface {
	Notify(ctx context.Context, event Event)
}

type Func func(ctx context.Context, event Event)

func (f Func) Notify(ctx context.Context, event Event) { f(ctx, event) }

type Discard struct{}

func (Discard) Notify(context.Context, Event) {}

// Multi fans an event out to every non-nil notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	out := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return multi(out)
}

type multi []Notifier

func (m multi) Notify(ctx context.Context, event Event) {
	for _, n := range m {
		n.Notify(ctx, event)
	}
}

// Gate forwards events only while enabled reports true. Errors always pass.
func Gate(next Notifier, enabled func() bool) Notifier {
	return Func(func(ctx context.Context, event Event) {
		if event.Level == LevelError || enabled == nil || enabled() {
			next.Notify(ctx, event)
		}
	})
}

// Recorder keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Topics lists recorded topics in arrival order.
func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Topic)
	}
	return out
}
