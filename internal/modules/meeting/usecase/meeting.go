package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	connectorin "meetnote/internal/modules/connector/port/in"
	"meetnote/internal/modules/meeting/domain"
	meetingdto "meetnote/internal/modules/meeting/dto"
	meetingin "meetnote/internal/modules/meeting/port/in"
	meetingout "meetnote/internal/modules/meeting/port/out"
	"meetnote/internal/modules/meeting/service"
	summarydto "meetnote/internal/modules/summary/dto"
	summaryin "meetnote/internal/modules/summary/port/in"
	"meetnote/internal/platform/clock"
	apperrors "meetnote/internal/platform/errors"
	"meetnote/internal/platform/notify"
	"meetnote/internal/platform/tx"
)

// Dashboard baselines the statistics start from.
const (
	BaseMeetingsRecorded = 12
	BaseMinutesSaved     = 540
	BaseActionItems      = 47

	fallbackDurationMin = 45
	fallbackActionItems = 2

	DefaultArchiveLimit = 20
)

type Timings struct {
	Start      time.Duration
	Recording  time.Duration
	Processing time.Duration
}

type Deps struct {
	Service   *service.LifecycleService
	Store     meetingout.MeetingStore
	Connector connectorin.Usecase
	Summaries summaryin.Usecase
	Scheduler clock.Scheduler
	Notifier  notify.Notifier
	Logger    hclog.Logger
	Timings   Timings
	// Sinks receive completed meetings inside one Tx boundary.
	Sinks []meetingout.HistorySink
	Index meetingout.HistoryIndex
	Tx    tx.Manager
}

type Interactor struct {
	Deps

	mu     sync.Mutex
	timers map[string][]clock.Timer
}

func NewInteractor(deps Deps) meetingin.Usecase {
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard{}
	}
	if deps.Logger == nil {
		deps.Logger = hclog.NewNullLogger()
	}
	if deps.Tx == nil {
		deps.Tx = tx.NoopManager{}
	}
	return &Interactor{Deps: deps, timers: map[string][]clock.Timer{}}
}

func (i *Interactor) Start(ctx context.Context, input meetingdto.StartInput) (meetingdto.StartOutput, error) {
	platform := strings.TrimSpace(input.Platform)
	if platform == "" {
		return meetingdto.StartOutput{}, fmt.Errorf("%w: platform name is required", apperrors.ErrInvalidInput)
	}
	connected, err := i.Connector.IsConnected(ctx, platform)
	if err != nil {
		return meetingdto.StartOutput{}, err
	}
	if !connected {
		i.emit(ctx, notify.LevelError, "meeting.rejected", platform, "", fmt.Sprintf("Please connect %s first", platform))
		return meetingdto.StartOutput{}, fmt.Errorf("%w: %s", apperrors.ErrNotConnected, platform)
	}

	meeting, err := i.Service.Create(ctx, platform)
	if err != nil {
		return meetingdto.StartOutput{}, err
	}
	i.Logger.Info("meeting starting", "meeting", meeting.ID, "platform", platform)
	i.emit(ctx, notify.LevelLoading, "meeting.starting", platform, meeting.ID, fmt.Sprintf("Preparing %s meeting", platform))

	ctx = context.WithoutCancel(ctx)
	i.schedule(meeting.ID, i.Timings.Start, func() { i.beginRecording(ctx, meeting.ID) })
	return meetingdto.StartOutput{
		MeetingID:   meeting.ID,
		Platform:    meeting.Platform,
		Status:      string(meeting.Status),
		StartTime:   meeting.StartTime,
		RecordingAt: meeting.StartTime.Add(i.Timings.Start),
	}, nil
}

func (i *Interactor) beginRecording(ctx context.Context, id string) {
	meeting, err := i.Service.BeginRecording(ctx, id)
	if err != nil {
		i.Logger.Debug("recording transition skipped", "meeting", id, "error", err)
		i.forgetInactive(ctx, id)
		return
	}
	i.Logger.Info("meeting recording", "meeting", id, "platform", meeting.Platform)
	i.emit(ctx, notify.LevelSuccess, "meeting.recording", meeting.Platform, id,
		fmt.Sprintf("%s meeting started! AI is listening and analyzing...", meeting.Platform))
	i.schedule(id, i.Timings.Recording, func() {
		if _, err := i.End(ctx, meetingdto.EndInput{MeetingID: id}); err != nil {
			i.Logger.Warn("automatic end failed", "meeting", id, "error", err)
		}
	})
}

// End schedules completion of an active meeting. Unknown ids and meetings
// already ending are ignored.
func (i *Interactor) End(ctx context.Context, input meetingdto.EndInput) (meetingdto.EndOutput, error) {
	id := strings.TrimSpace(input.MeetingID)
	meeting, scheduled, err := i.Service.MarkEnding(ctx, id)
	if err != nil {
		return meetingdto.EndOutput{}, err
	}
	if !scheduled {
		i.Logger.Debug("end ignored", "meeting", id)
		return meetingdto.EndOutput{MeetingID: id}, nil
	}
	i.emit(ctx, notify.LevelLoading, "meeting.processing", meeting.Platform, id, fmt.Sprintf("AI processing for %s...", meeting.Platform))
	completesAt := i.Scheduler.Now().Add(i.Timings.Processing)
	ctx = context.WithoutCancel(ctx)
	i.schedule(id, i.Timings.Processing, func() { i.complete(ctx, id) })
	return meetingdto.EndOutput{MeetingID: id, Scheduled: true, CompletesAt: completesAt}, nil
}

func (i *Interactor) complete(ctx context.Context, id string) {
	active, err := i.Store.GetActive(ctx, id)
	if err != nil {
		i.Logger.Debug("completion skipped", "meeting", id, "error", err)
		i.forget(id)
		return
	}
	generated, err := i.Summaries.Generate(ctx, summarydto.GenerateInput{Platform: active.Platform})
	if err != nil {
		i.Logger.Error("summary generation failed", "meeting", id, "error", err)
		// The meeting stays active and a later End retries completion.
		if _, err := i.Service.ReleaseEnding(ctx, id); err != nil {
			i.Logger.Debug("release ending failed", "meeting", id, "error", err)
		}
		i.emit(ctx, notify.LevelError, "meeting.failed", active.Platform, id, fmt.Sprintf("Summary generation failed for %s meeting", active.Platform))
		return
	}
	meeting, err := i.Service.Complete(ctx, id, toDomainSummary(generated))
	if err != nil {
		i.Logger.Debug("completion skipped", "meeting", id, "error", err)
		i.forgetInactive(ctx, id)
		return
	}
	i.forget(id)
	i.Logger.Info("meeting completed", "meeting", id, "platform", meeting.Platform,
		"duration_min", meeting.DurationMin, "participants", meeting.ParticipantCount, "provider", meeting.Summary.Provider)
	i.emit(ctx, notify.LevelSuccess, "meeting.completed", meeting.Platform, id, fmt.Sprintf("AI summary generated for %s meeting!", meeting.Platform))
	i.archive(ctx, meeting)
}

func (i *Interactor) archive(ctx context.Context, meeting domain.Meeting) {
	if len(i.Sinks) == 0 {
		return
	}
	err := i.Tx.Within(ctx, func(ctx context.Context) error {
		for _, sink := range i.Sinks {
			location, err := sink.Archive(ctx, meeting)
			if err != nil {
				return err
			}
			if location != "" {
				i.Logger.Debug("meeting archived", "meeting", meeting.ID, "location", location)
			}
		}
		return nil
	})
	if err != nil {
		i.Logger.Warn("archive meeting failed", "meeting", meeting.ID, "error", err)
	}
}

func (i *Interactor) Cancel(ctx context.Context, input meetingdto.CancelInput) (meetingdto.MeetingOutput, error) {
	meeting, err := i.Service.Cancel(ctx, input.MeetingID)
	if err != nil {
		return meetingdto.MeetingOutput{}, err
	}
	i.forget(meeting.ID)
	i.Logger.Info("meeting cancelled", "meeting", meeting.ID, "platform", meeting.Platform)
	i.emit(ctx, notify.LevelInfo, "meeting.cancelled", meeting.Platform, meeting.ID, fmt.Sprintf("%s meeting cancelled", meeting.Platform))
	return toOutput(meeting), nil
}

func (i *Interactor) Get(ctx context.Context, id string) (meetingdto.MeetingOutput, error) {
	meeting, err := i.Store.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return meetingdto.MeetingOutput{}, err
	}
	return toOutput(meeting), nil
}

func (i *Interactor) ListActive(ctx context.Context) ([]meetingdto.MeetingOutput, error) {
	return toOutputs(i.Store.ListActive(ctx)), nil
}

func (i *Interactor) ListHistory(ctx context.Context) ([]meetingdto.MeetingOutput, error) {
	return toOutputs(i.Store.ListHistory(ctx)), nil
}

func (i *Interactor) ListCancelled(ctx context.Context) ([]meetingdto.MeetingOutput, error) {
	return toOutputs(i.Store.ListCancelled(ctx)), nil
}

func (i *Interactor) Stats(ctx context.Context) (meetingdto.StatsOutput, error) {
	platforms, err := i.Connector.List(ctx)
	if err != nil {
		return meetingdto.StatsOutput{}, err
	}
	history := i.Store.ListHistory(ctx)
	stats := meetingdto.StatsOutput{
		ConnectedPlatforms: len(platforms),
		MeetingsRecorded:   BaseMeetingsRecorded + len(history),
		MinutesSaved:       BaseMinutesSaved,
		ActionItems:        BaseActionItems,
	}
	for _, m := range history {
		if m.DurationMin > 0 {
			stats.MinutesSaved += m.DurationMin
		} else {
			stats.MinutesSaved += fallbackDurationMin
		}
		if m.Summary != nil {
			stats.ActionItems += len(m.Summary.ActionItems)
		} else {
			stats.ActionItems += fallbackActionItems
		}
	}
	return stats, nil
}

func (i *Interactor) ListArchived(ctx context.Context, limit int) ([]meetingdto.MeetingOutput, error) {
	if i.Index == nil {
		return nil, fmt.Errorf("%w: history index requires a vault", apperrors.ErrNotConfigured)
	}
	if limit <= 0 {
		limit = DefaultArchiveLimit
	}
	meetings, err := i.Index.ListArchived(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list archived meetings: %w", err)
	}
	return toOutputs(meetings), nil
}

func (i *Interactor) schedule(id string, d time.Duration, fn func()) {
	timer := i.Scheduler.AfterFunc(d, fn)
	i.mu.Lock()
	defer i.mu.Unlock()
	i.timers[id] = append(i.timers[id], timer)
}

// forget stops every pending timer of a finished meeting.
func (i *Interactor) forget(id string) {
	i.mu.Lock()
	timers := i.timers[id]
	delete(i.timers, id)
	i.mu.Unlock()
	for _, t := range timers {
		t.Stop()
	}
}

// forgetInactive drops the timers of a meeting that is no longer active.
// Timers scheduled after a concurrent Cancel are released here.
func (i *Interactor) forgetInactive(ctx context.Context, id string) {
	if _, err := i.Store.GetActive(ctx, id); err != nil {
		i.forget(id)
	}
}

func (i *Interactor) emit(ctx context.Context, level notify.Level, topic, platform, meetingID, message string) {
	i.Notifier.Notify(ctx, notify.Event{
		Level:     level,
		Topic:     topic,
		Message:   message,
		Platform:  platform,
		MeetingID: meetingID,
		At:        i.Scheduler.Now(),
	})
}

func toDomainSummary(s summarydto.SummaryOutput) domain.Summary {
	actions := make([]domain.ActionItem, 0, len(s.ActionItems))
	for _, a := range s.ActionItems {
		actions = append(actions, domain.ActionItem{Task: a.Task, Assignee: a.Assignee, DueDate: a.DueDate})
	}
	return domain.Summary{
		Title:             s.Title,
		KeyPoints:         append([]string(nil), s.KeyPoints...),
		ActionItems:       actions,
		Decisions:         append([]string(nil), s.Decisions...),
		Sentiment:         s.Sentiment,
		ConfidencePercent: s.ConfidencePercent,
		Provider:          s.Provider,
	}
}

func toOutputs(meetings []domain.Meeting) []meetingdto.MeetingOutput {
	out := make([]meetingdto.MeetingOutput, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, toOutput(m))
	}
	return out
}

func toOutput(m domain.Meeting) meetingdto.MeetingOutput {
	out := meetingdto.MeetingOutput{
		ID:               m.ID,
		Platform:         m.Platform,
		Status:           string(m.Status),
		StartTime:        m.StartTime,
		DurationMin:      m.DurationMin,
		ParticipantCount: m.ParticipantCount,
		Ending:           m.Ending,
	}
	if !m.EndTime.IsZero() {
		end := m.EndTime
		out.EndTime = &end
	}
	if m.Summary != nil {
		actions := make([]meetingdto.ActionItem, 0, len(m.Summary.ActionItems))
		for _, a := range m.Summary.ActionItems {
			actions = append(actions, meetingdto.ActionItem{Task: a.Task, Assignee: a.Assignee, DueDate: a.DueDate})
		}
		out.Summary = &meetingdto.SummaryOutput{
			Title:             m.Summary.Title,
			KeyPoints:         append([]string(nil), m.Summary.KeyPoints...),
			ActionItems:       actions,
			Decisions:         append([]string(nil), m.Summary.Decisions...),
			Sentiment:         m.Summary.Sentiment,
			ConfidencePercent: m.Summary.ConfidencePercent,
			Confidence:        m.Summary.Confidence(),
			Provider:          m.Summary.Provider,
		}
	}
	return out
}
