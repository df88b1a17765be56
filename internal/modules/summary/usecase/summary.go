package usecase

import (
	"context"
	"strings"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"meetnote/internal/modules/summary/domain"
	summarydto "meetnote/internal/modules/summary/dto"
	summaryin "meetnote/internal/modules/summary/port/in"
	summaryout "meetnote/internal/modules/summary/port/out"
	"meetnote/internal/modules/summary/service"
	"meetnote/internal/platform/clock"
)

// PreviewPlatform is the platform label used for summaries previewed
// outside a recorded meeting.
const PreviewPlatform = "General"

type Interactor struct {
	builtin      *service.Generator
	plugin       summaryout.Provider
	scheduler    clock.Scheduler
	previewDelay time.Duration
	logger       hclog.Logger
}

// NewInteractor wires the built-in generator. plugin may be nil.
func NewInteractor(builtin *service.Generator, plugin summaryout.Provider, scheduler clock.Scheduler, previewDelay time.Duration, logger hclog.Logger) summaryin.Usecase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Interactor{
		builtin:      builtin,
		plugin:       plugin,
		scheduler:    scheduler,
		previewDelay: previewDelay,
		logger:       logger,
	}
}

func (i *Interactor) Generate(ctx context.Context, input summarydto.GenerateInput) (summarydto.SummaryOutput, error) {
	platform := strings.TrimSpace(input.Platform)
	if i.plugin != nil {
		summary, err := i.plugin.Generate(ctx, platform)
		if err == nil {
			err = summary.Validate()
		}
		if err == nil {
			return toOutput(summary, i.plugin.Name()), nil
		}
		i.logger.Warn("summarizer plugin failed, using builtin generator", "plugin", i.plugin.Name(), "platform", platform, "error", err)
	}
	return toOutput(i.builtin.Summary(), i.builtin.Name()), nil
}

// Preview returns a summary after the preview delay, or ctx's error if it
// is cancelled first.
func (i *Interactor) Preview(ctx context.Context, input summarydto.PreviewInput) (summarydto.PreviewOutput, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = PreviewPlatform + " meeting"
	}
	ready := make(chan summarydto.PreviewOutput, 1)
	timer := i.scheduler.AfterFunc(i.previewDelay, func() {
		summary, _ := i.Generate(ctx, summarydto.GenerateInput{Platform: PreviewPlatform})
		ready <- summarydto.PreviewOutput{
			MeetingTitle: title,
			Summary:      summary,
			ReadyAt:      i.scheduler.Now(),
		}
	})
	select {
	case out := <-ready:
		return out, nil
	case <-ctx.Done():
		timer.Stop()
		return summarydto.PreviewOutput{}, ctx.Err()
	}
}

func toOutput(s domain.Summary, provider string) summarydto.SummaryOutput {
	actions := make([]summarydto.ActionItem, 0, len(s.ActionItems))
	for _, a := range s.ActionItems {
		actions = append(actions, summarydto.ActionItem{Task: a.Task, Assignee: a.Assignee, DueDate: a.DueDate})
	}
	return summarydto.SummaryOutput{
		Title:             s.Title,
		KeyPoints:         append([]string(nil), s.KeyPoints...),
		ActionItems:       actions,
		Decisions:         append([]string(nil), s.Decisions...),
		Sentiment:         s.Sentiment,
		ConfidencePercent: s.ConfidencePercent,
		Confidence:        s.Confidence(),
		Provider:          provider,
	}
}
