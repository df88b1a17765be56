package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	connectordto "meetnote/internal/modules/connector/dto"
	connectorin "meetnote/internal/modules/connector/port/in"
	connectorservice "meetnote/internal/modules/connector/service"
	connectorusecase "meetnote/internal/modules/connector/usecase"
	"meetnote/internal/modules/meeting/domain"
	meetingdto "meetnote/internal/modules/meeting/dto"
	meetingin "meetnote/internal/modules/meeting/port/in"
	meetingout "meetnote/internal/modules/meeting/port/out"
	"meetnote/internal/modules/meeting/service"
	"meetnote/internal/modules/meeting/usecase"
	summarydto "meetnote/internal/modules/summary/dto"
	summaryin "meetnote/internal/modules/summary/port/in"
	summaryservice "meetnote/internal/modules/summary/service"
	summaryusecase "meetnote/internal/modules/summary/usecase"
	"meetnote/internal/platform/clock"
	apperrors "meetnote/internal/platform/errors"
	"meetnote/internal/platform/notify"
	"meetnote/internal/platform/random"
	"meetnote/internal/platform/tx"
	"meetnote/internal/state"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

var timings = usecase.Timings{Start: 2500 * time.Millisecond, Recording: 5 * time.Second, Processing: 3 * time.Second}

type seqIDs struct{ n int }

func (s *seqIDs) New() string {
	s.n++
	return fmt.Sprintf("meeting_%d", s.n)
}

type recordingSink struct {
	archived []domain.Meeting
	err      error
}

func (s *recordingSink) Archive(_ context.Context, m domain.Meeting) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.archived = append(s.archived, m)
	return "mem://" + m.ID, nil
}

func (s *recordingSink) ListArchived(_ context.Context, limit int) ([]domain.Meeting, error) {
	out := slices.Clone(s.archived)
	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// flakySummaries fails the first failures Generate calls.
type flakySummaries struct {
	summaryin.Usecase
	failures int
}

func (f *flakySummaries) Generate(ctx context.Context, input summarydto.GenerateInput) (summarydto.SummaryOutput, error) {
	if f.failures > 0 {
		f.failures--
		return summarydto.SummaryOutput{}, errors.New("summarizer unavailable")
	}
	return f.Usecase.Generate(ctx, input)
}

type countingTx struct{ calls int }

func (c *countingTx) manager() tx.Manager {
	return tx.Func(func(ctx context.Context, fn func(context.Context) error) error {
		c.calls++
		return fn(ctx)
	})
}

type harness struct {
	ctx       context.Context
	clock     *clock.Virtual
	store     *state.Store
	connector connectorin.Usecase
	meetings  meetingin.Usecase
	events    *notify.Recorder
	sink      *recordingSink
	tx        *countingTx
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, func(s summaryin.Usecase) summaryin.Usecase { return s })
}

// newHarnessWith lets a test wrap the summary usecase the lifecycle calls.
func newHarnessWith(t *testing.T, wrap func(summaryin.Usecase) summaryin.Usecase) *harness {
	t.Helper()
	h := &harness{
		ctx:    context.Background(),
		clock:  clock.NewVirtual(epoch),
		store:  state.New(state.DefaultPreferences()),
		events: &notify.Recorder{},
		sink:   &recordingSink{},
		tx:     &countingTx{},
	}
	h.connector = connectorusecase.NewInteractor(
		connectorservice.NewConnectorService(h.clock, h.store),
		h.clock, h.events, nil,
		connectorusecase.Timings{Connect: 2 * time.Second, Seed: time.Second},
		[]string{"Zoom", "Microsoft Teams"},
	)
	summaries := summaryusecase.NewInteractor(summaryservice.NewGenerator(random.New(7)), nil, h.clock, 1500*time.Millisecond, nil)
	h.meetings = usecase.NewInteractor(usecase.Deps{
		Service:   service.NewLifecycleService(h.clock, &seqIDs{}, random.New(11), h.store),
		Store:     h.store,
		Connector: h.connector,
		Summaries: wrap(summaries),
		Scheduler: h.clock,
		Notifier:  h.events,
		Timings:   timings,
		Sinks:     []meetingout.HistorySink{h.sink},
		Index:     h.sink,
		Tx:        h.tx.manager(),
	})
	return h
}

func (h *harness) connect(t *testing.T, name string) {
	t.Helper()
	if _, err := h.connector.Connect(h.ctx, connectordto.ConnectInput{Platform: name}); err != nil {
		t.Fatalf("connect %s: %v", name, err)
	}
	h.clock.Advance(2 * time.Second)
}

func TestZoomScenarioRunsFullLifecycle(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.connect(t, "Zoom")

	started, err := h.meetings.Start(h.ctx, meetingdto.StartInput{Platform: "Zoom"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != string(domain.StatusStarting) || !started.RecordingAt.Equal(h.clock.Now().Add(timings.Start)) {
		t.Fatalf("unexpected start output %+v", started)
	}

	h.clock.Advance(timings.Start)
	got, _ := h.meetings.Get(h.ctx, started.MeetingID)
	if got.Status != string(domain.StatusRecording) {
		t.Fatalf("expected recording after start delay, got %s", got.Status)
	}

	h.clock.Advance(timings.Recording)
	got, _ = h.meetings.Get(h.ctx, started.MeetingID)
	if got.Status != string(domain.StatusRecording) || !got.Ending {
		t.Fatalf("expected end scheduled after recording, got %+v", got)
	}

	h.clock.Advance(timings.Processing)
	active, _ := h.meetings.ListActive(h.ctx)
	history, _ := h.meetings.ListHistory(h.ctx)
	if len(active) != 0 || len(history) != 1 {
		t.Fatalf("expected meeting moved to history, active=%d history=%d", len(active), len(history))
	}
	done := history[0]
	if done.Platform != "Zoom" || done.Status != string(domain.StatusCompleted) || done.Summary == nil || done.EndTime == nil {
		t.Fatalf("unexpected history entry %+v", done)
	}
	if done.DurationMin < 15 || done.DurationMin > 74 || done.ParticipantCount < 2 || done.ParticipantCount > 11 {
		t.Fatalf("statistics out of range %+v", done)
	}
	if done.Summary.ConfidencePercent < 80 || done.Summary.ConfidencePercent > 100 || len(done.Summary.ActionItems) != 2 {
		t.Fatalf("unexpected summary %+v", done.Summary)
	}
	if len(h.sink.archived) != 1 || h.tx.calls != 1 {
		t.Fatalf("completed meeting must be archived once inside a tx, archived=%d tx=%d", len(h.sink.archived), h.tx.calls)
	}
	if h.clock.Pending() != 0 {
		t.Fatalf("no timers may remain, got %d", h.clock.Pending())
	}

	want := []string{"meeting.starting", "meeting.recording", "meeting.processing", "meeting.completed"}
	var lifecycle []string
	for _, e := range h.events.Events() {
		if e.MeetingID == started.MeetingID {
			lifecycle = append(lifecycle, e.Topic)
		}
	}
	if !slices.Equal(lifecycle, want) {
		t.Fatalf("unexpected lifecycle topics %v", lifecycle)
	}
}

func TestStartRequiresConnectedPlatform(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	_, err := h.meetings.Start(h.ctx, meetingdto.StartInput{Platform: "Zoom"})
	if !errors.Is(err, apperrors.ErrNotConnected) {
		t.Fatalf("expected not connected, got %v", err)
	}
	active, _ := h.meetings.ListActive(h.ctx)
	if len(active) != 0 || h.clock.Pending() != 0 {
		t.Fatalf("rejected start must not change state")
	}
	events := h.events.Events()
	if len(events) != 1 || events[0].Level != notify.LevelError || events[0].Message != "Please connect Zoom first" {
		t.Fatalf("unexpected events %+v", events)
	}

	// Pending connections do not count.
	_, _ = h.connector.Connect(h.ctx, connectordto.ConnectInput{Platform: "Zoom"})
	if _, err := h.meetings.Start(h.ctx, meetingdto.StartInput{Platform: "Zoom"}); !errors.Is(err, apperrors.ErrNotConnected) {
		t.Fatalf("expected not connected while pending, got %v", err)
	}
}

func TestEveryMeetingEndsInHistoryMostRecentFirst(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.connect(t, "Zoom")
	h.connect(t, "Microsoft Teams")

	var ids []string
	for n := range 6 {
		platform := "Zoom"
		if n%2 == 1 {
			platform = "Microsoft Teams"
		}
		out, err := h.meetings.Start(h.ctx, meetingdto.StartInput{Platform: platform})
		if err != nil {
			t.Fatalf("start %d: %v", n, err)
		}
		ids = append(ids, out.MeetingID)
		h.clock.Advance(time.Second)
	}
	h.clock.RunUntilIdle()

	history, _ := h.meetings.ListHistory(h.ctx)
	if len(history) != len(ids) {
		t.Fatalf("expected %d history entries, got %d", len(ids), len(history))
	}
	for n, m := range history {
		if m.ID != ids[len(ids)-1-n] {
			t.Fatalf("history must be most recent first: position %d has %s", n, m.ID)
		}
	}
	active, _ := h.meetings.ListActive(h.ctx)
	if len(active) != 0 {
		t.Fatalf("active must be empty, got %d", len(active))
	}
}

func TestManualEndSkipsRemainingRecording(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.connect(t, "Zoom")
	started, _ := h.meetings.Start(h.ctx, meetingdto.StartInput{Platform: "Zoom"})
	h.clock.Advance(timings.Start)

	first, err := h.meetings.End(h.ctx, meetingdto.EndInput{MeetingID: started.MeetingID})
	if err != nil || !first.Scheduled {
		t.Fatalf("first end must schedule: %+v %v", first, err)
	}
	second, err := h.meetings.End(h.ctx, meetingdto.EndInput{MeetingID: started.MeetingID})
	if err != nil || second.Scheduled {
		t.Fatalf("second end must be a no-op: %+v %v", second, err)
	}
	h.clock.Advance(timings.Processing)

	history, _ := h.meetings.ListHistory(h.ctx)
	if len(history) != 1 {
		t.Fatalf("expected exactly one history entry, got %d", len(history))
	}
	if h.clock.Pending() != 0 {
		t.Fatalf("automatic end timer must be stopped, pending=%d", h.clock.Pending())
	}
	unknown, err := h.meetings.End(h.ctx, meetingdto.EndInput{MeetingID: "meeting_missing"})
	if err != nil || unknown.Scheduled {
		t.Fatalf("unknown end must be a no-op: %+v %v", unknown, err)
	}
}

func TestEndWhileStartingStillCompletes(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.connect(t, "Zoom")
	started, _ := h.meetings.Start(h.ctx, meetingdto.StartInput{Platform: "Zoom"})
	if out, _ := h.meetings.End(h.ctx, meetingdto.EndInput{MeetingID: started.MeetingID}); !out.Scheduled {
		t.Fatalf("end must schedule while starting")
	}
	h.clock.RunUntilIdle()
	history, _ := h.meetings.ListHistory(h.ctx)
	if len(history) != 1 || history[0].Status != string(domain.StatusCompleted) {
		t.Fatalf("expected one completed meeting, got %+v", history)
	}
}

func TestCancelStopsLifecycle(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.connect(t, "Zoom")
	started, _ := h.meetings.Start(h.ctx, meetingdto.StartInput{Platform: "Zoom"})
	h.clock.Advance(timings.Start)

	out, err := h.meetings.Cancel(h.ctx, meetingdto.CancelInput{MeetingID: started.MeetingID})
	if err != nil || out.Status != string(domain.StatusCancelled) {
		t.Fatalf("cancel: %+v %v", out, err)
	}
	h.clock.RunUntilIdle()

	history, _ := h.meetings.ListHistory(h.ctx)
	cancelled, _ := h.meetings.ListCancelled(h.ctx)
	active, _ := h.meetings.ListActive(h.ctx)
	if len(history) != 0 || len(cancelled) != 1 || len(active) != 0 {
		t.Fatalf("cancelled meeting must only be in the cancelled list: history=%d cancelled=%d active=%d", len(history), len(cancelled), len(active))
	}
	if len(h.sink.archived) != 0 {
		t.Fatalf("cancelled meetings are not archived")
	}
	if _, err := h.meetings.Cancel(h.ctx, meetingdto.CancelInput{MeetingID: started.MeetingID}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("second cancel must be an invalid transition, got %v", err)
	}
	if _, err := h.meetings.Cancel(h.ctx, meetingdto.CancelInput{MeetingID: "meeting_missing"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCancelDuringProcessingDropsCompletion(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.connect(t, "Zoom")
	started, _ := h.meetings.Start(h.ctx, meetingdto.StartInput{Platform: "Zoom"})
	h.clock.Advance(timings.Start + timings.Recording)
	if _, err := h.meetings.Cancel(h.ctx, meetingdto.CancelInput{MeetingID: started.MeetingID}); err != nil {
		t.Fatalf("cancel while processing: %v", err)
	}
	h.clock.RunUntilIdle()
	history, _ := h.meetings.ListHistory(h.ctx)
	if len(history) != 0 {
		t.Fatalf("cancelled meeting must not reach history")
	}
}

func TestDisconnectKeepsActiveMeetingRunning(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.connect(t, "Zoom")
	_, _ = h.meetings.Start(h.ctx, meetingdto.StartInput{Platform: "Zoom"})
	if err := h.connector.Disconnect(h.ctx, connectordto.DisconnectInput{Platform: "Zoom"}); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	h.clock.RunUntilIdle()
	history, _ := h.meetings.ListHistory(h.ctx)
	if len(history) != 1 {
		t.Fatalf("meeting must complete after disconnect")
	}
}

func TestStatsAccumulateHistory(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	stats, err := h.meetings.Stats(h.ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats != (meetingdto.StatsOutput{MeetingsRecorded: 12, MinutesSaved: 540, ActionItems: 47}) {
		t.Fatalf("unexpected baseline stats %+v", stats)
	}

	h.connect(t, "Zoom")
	_, _ = h.meetings.Start(h.ctx, meetingdto.StartInput{Platform: "Zoom"})
	h.clock.RunUntilIdle()
	history, _ := h.meetings.ListHistory(h.ctx)

	stats, _ = h.meetings.Stats(h.ctx)
	want := meetingdto.StatsOutput{
		ConnectedPlatforms: 1,
		MeetingsRecorded:   13,
		MinutesSaved:       540 + history[0].DurationMin,
		ActionItems:        49,
	}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestArchiveFailureDoesNotFailLifecycle(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.sink.err = errors.New("disk full")
	h.connect(t, "Zoom")
	_, _ = h.meetings.Start(h.ctx, meetingdto.StartInput{Platform: "Zoom"})
	h.clock.RunUntilIdle()
	history, _ := h.meetings.ListHistory(h.ctx)
	if len(history) != 1 {
		t.Fatalf("meeting must reach history even when archiving fails")
	}
}

func TestListArchivedRequiresIndex(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.connect(t, "Zoom")
	_, _ = h.meetings.Start(h.ctx, meetingdto.StartInput{Platform: "Zoom"})
	h.clock.RunUntilIdle()
	archived, err := h.meetings.ListArchived(h.ctx, 0)
	if err != nil || len(archived) != 1 {
		t.Fatalf("list archived: %d %v", len(archived), err)
	}

	bare := usecase.NewInteractor(usecase.Deps{Store: h.store, Connector: h.connector, Scheduler: h.clock})
	if _, err := bare.ListArchived(h.ctx, 5); !errors.Is(err, apperrors.ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
}

func TestFailedSummaryLetsEndRetry(t *testing.T) {
	t.Parallel()
	h := newHarnessWith(t, func(s summaryin.Usecase) summaryin.Usecase {
		return &flakySummaries{Usecase: s, failures: 1}
	})
	h.connect(t, "Zoom")
	started, _ := h.meetings.Start(h.ctx, meetingdto.StartInput{Platform: "Zoom"})
	h.clock.Advance(timings.Start)

	if out, _ := h.meetings.End(h.ctx, meetingdto.EndInput{MeetingID: started.MeetingID}); !out.Scheduled {
		t.Fatalf("first end must schedule")
	}
	h.clock.Advance(timings.Processing)

	got, err := h.meetings.Get(h.ctx, started.MeetingID)
	if err != nil || got.Status != string(domain.StatusRecording) || got.Ending {
		t.Fatalf("meeting must stay recording and not ending after a failed summary: %+v %v", got, err)
	}
	if topics := h.events.Topics(); topics[len(topics)-1] != "meeting.failed" {
		t.Fatalf("expected failure event, got %v", topics)
	}

	retry, err := h.meetings.End(h.ctx, meetingdto.EndInput{MeetingID: started.MeetingID})
	if err != nil || !retry.Scheduled {
		t.Fatalf("end after a failed summary must schedule again: %+v %v", retry, err)
	}
	h.clock.RunUntilIdle()

	history, _ := h.meetings.ListHistory(h.ctx)
	if len(history) != 1 || history[0].ID != started.MeetingID {
		t.Fatalf("meeting must reach history after the retry, got %+v", history)
	}
	if h.clock.Pending() != 0 {
		t.Fatalf("no timers may remain, pending=%d", h.clock.Pending())
	}
}
