package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	hclog "github.com/hashicorp/go-hclog"
)

// Console prints one status line per event.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(_ context.Context, event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.w, "%s %s\n", icon(event.Level), event.Message)
}

func icon(level Level) string {
	switch level {
	case LevelSuccess:
		return "✅"
	case LevelError:
		return "❌"
	case LevelLoading:
		return "⏳"
	default:
		return "ℹ️ "
	}
}

// Log writes events to an hclog logger at a level matching the event.
type Log struct {
	logger hclog.Logger
}

func NewLog(logger hclog.Logger) Log {
	return Log{logger: logger}
}

func (l Log) Notify(_ context.Context, event Event) {
	args := []any{"topic", event.Topic}
	if event.Platform != "" {
		args = append(args, "platform", event.Platform)
	}
	if event.MeetingID != "" {
		args = append(args, "meeting_id", event.MeetingID)
	}
	switch event.Level {
	case LevelError:
		l.logger.Warn(event.Message, args...)
	case LevelLoading:
		l.logger.Debug(event.Message, args...)
	default:
		l.logger.Info(event.Message, args...)
	}
}
