package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"meetnote/internal/modules/meeting/domain"
	meetingout "meetnote/internal/modules/meeting/port/out"
	"meetnote/internal/platform/markdown"
	"meetnote/internal/platform/slug"
)

type noteMeta struct {
	SchemaVersion    int      `yaml:"schema_version"`
	ID               string   `yaml:"id"`
	Platform         string   `yaml:"platform"`
	Status           string   `yaml:"status"`
	StartTime        string   `yaml:"start_time"`
	EndTime          string   `yaml:"end_time"`
	DurationMin      int      `yaml:"duration_minutes"`
	ParticipantCount int      `yaml:"participant_count"`
	Title            string   `yaml:"title"`
	Sentiment        string   `yaml:"sentiment"`
	Confidence       string   `yaml:"confidence"`
	Provider         string   `yaml:"provider,omitempty"`
	Tags             []string `yaml:"tags"`
}

// VaultMeetingStore writes one markdown note per completed meeting under
// <vault>/meetings/YYYY/MM/DD. Rewrites only touch the managed block.
type VaultMeetingStore struct {
	vaultPath string
}

var _ meetingout.HistorySink = (*VaultMeetingStore)(nil)

func NewVaultMeetingStore(vaultPath string) *VaultMeetingStore {
	return &VaultMeetingStore{vaultPath: vaultPath}
}

func (s *VaultMeetingStore) NotePath(meeting domain.Meeting) string {
	date := meeting.StartTime.UTC()
	dir := filepath.Join(s.vaultPath, "meetings", date.Format("2006"), date.Format("01"), date.Format("02"))
	name := fmt.Sprintf("%s-%s-%s.md", date.Format("150405"), slug.Make(meeting.Platform), shortID(meeting.ID))
	return filepath.Join(dir, name)
}

func (s *VaultMeetingStore) Archive(_ context.Context, meeting domain.Meeting) (string, error) {
	path := s.NotePath(meeting)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create meeting dir: %w", err)
	}

	summary := domain.Summary{}
	if meeting.Summary != nil {
		summary = *meeting.Summary
	}
	meta := noteMeta{
		SchemaVersion:    domain.SchemaVersion,
		ID:               meeting.ID,
		Platform:         meeting.Platform,
		Status:           string(meeting.Status),
		StartTime:        meeting.StartTime.UTC().Format(time.RFC3339),
		EndTime:          meeting.EndTime.UTC().Format(time.RFC3339),
		DurationMin:      meeting.DurationMin,
		ParticipantCount: meeting.ParticipantCount,
		Title:            summary.Title,
		Sentiment:        summary.Sentiment,
		Confidence:       summary.Confidence(),
		Provider:         summary.Provider,
		Tags:             []string{"meeting", slug.Make(meeting.Platform)},
	}

	body := fmt.Sprintf("# %s\n\n- Platform: %s\n- Started: %s\n\n## Notes\n\n", titleOf(meeting, summary), meeting.Platform, meta.StartTime)
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		prev := noteMeta{}
		if body, err = markdown.SplitFrontmatter(string(existing), &prev); err != nil {
			return "", fmt.Errorf("read meeting note %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("read meeting note: %w", err)
	}
	body = markdown.ReplaceManagedBlock(body, renderSummary(meeting))

	rendered, err := markdown.RenderFrontmatter(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write meeting note: %w", err)
	}
	return path, nil
}

// renderSummary formats a completed meeting's summary as markdown.
func renderSummary(meeting domain.Meeting) string {
	b := strings.Builder{}
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Duration: %d minutes\n- Participants: %d\n", meeting.DurationMin, meeting.ParticipantCount)
	if meeting.Summary == nil {
		return b.String()
	}
	s := meeting.Summary
	fmt.Fprintf(&b, "- Sentiment: %s\n- Confidence: %s\n", s.Sentiment, s.Confidence())
	b.WriteString("\n### Key Points\n\n")
	for _, p := range s.KeyPoints {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	b.WriteString("\n### Action Items\n\n")
	for _, a := range s.ActionItems {
		fmt.Fprintf(&b, "- [ ] %s (%s, due %s)\n", a.Task, a.Assignee, a.DueDate)
	}
	b.WriteString("\n### Decisions\n\n")
	for _, d := range s.Decisions {
		fmt.Fprintf(&b, "- %s\n", d)
	}
	return b.String()
}

func titleOf(meeting domain.Meeting, summary domain.Summary) string {
	if summary.Title != "" {
		return fmt.Sprintf("%s (%s)", summary.Title, meeting.Platform)
	}
	return meeting.Platform + " meeting"
}

func shortID(id string) string {
	id = strings.TrimPrefix(id, "meeting_")
	if len(id) > 8 {
		id = id[:8]
	}
	return slug.Make(id)
}
