package notify_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"meetnote/internal/platform/notify"
)

func TestMultiSkipsNilAndFansOut(t *testing.T) {
	t.Parallel()
	a, b := &notify.Recorder{}, &notify.Recorder{}
	n := notify.Multi(a, nil, b)
	n.Notify(context.Background(), notify.Event{Topic: "platform.connected"})
	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Fatalf("expected both recorders to receive the event")
	}
}

func TestGateSuppressesAllButErrors(t *testing.T) {
	t.Parallel()
	rec := &notify.Recorder{}
	enabled := false
	n := notify.Gate(rec, func() bool { return enabled })
	n.Notify(context.Background(), notify.Event{Level: notify.LevelInfo, Topic: "a"})
	n.Notify(context.Background(), notify.Event{Level: notify.LevelError, Topic: "b"})
	enabled = true
	n.Notify(context.Background(), notify.Event{Level: notify.LevelSuccess, Topic: "c"})

	topics := rec.Topics()
	if strings.Join(topics, ",") != "b,c" {
		t.Fatalf("unexpected topics through gate: %v", topics)
	}
}

func TestConsolePrintsIconAndMessage(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	notify.NewConsole(buf).Notify(context.Background(), notify.Event{Level: notify.LevelSuccess, Message: "Zoom connected successfully!"})
	if got := buf.String(); got != "✅ Zoom connected successfully!\n" {
		t.Fatalf("unexpected console line %q", got)
	}
}
