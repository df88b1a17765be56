package out_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	meetingout "meetnote/internal/modules/meeting/adapter/out"
	"meetnote/internal/modules/meeting/domain"
	"meetnote/internal/platform/markdown"
)

var t0 = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func completedMeeting(t *testing.T, id string, endOffset time.Duration) domain.Meeting {
	t.Helper()
	rec, err := domain.New(id, "Microsoft Teams", t0).StartRecording()
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	done, err := rec.Complete(t0.Add(endOffset), domain.Summary{
		Title:     "Sprint Planning",
		KeyPoints: []string{"Discussed project timeline"},
		ActionItems: []domain.ActionItem{
			{Task: "Update documentation", Assignee: "John D.", DueDate: "2024-01-15"},
			{Task: "Schedule follow-up", Assignee: "Sarah M.", DueDate: "2024-01-20"},
		},
		Decisions:         []string{"Approved budget increase"},
		Sentiment:         "positive",
		ConfidencePercent: 91.4,
		Provider:          "builtin",
	}, 42, 6)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	return done
}

func TestSQLiteHistoryIndexRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	idx, err := meetingout.NewSQLiteHistoryIndex(filepath.Join(t.TempDir(), ".meetnote", "meetnote.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer idx.Close()

	first := completedMeeting(t, "meeting_a", time.Minute)
	second := completedMeeting(t, "meeting_b", 2*time.Minute)
	for _, m := range []domain.Meeting{first, second, first} {
		if _, err := idx.Archive(ctx, m); err != nil {
			t.Fatalf("archive %s: %v", m.ID, err)
		}
	}

	got, err := idx.ListArchived(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "meeting_b" || got[1].ID != "meeting_a" {
		t.Fatalf("unexpected archive order: %+v", got)
	}
	m := got[1]
	if m.Platform != "Microsoft Teams" || m.Status != domain.StatusCompleted || m.DurationMin != 42 || m.ParticipantCount != 6 {
		t.Fatalf("meeting fields lost: %+v", m)
	}
	if !m.EndTime.Equal(first.EndTime) || !m.StartTime.Equal(t0) {
		t.Fatalf("times lost: %v %v", m.StartTime, m.EndTime)
	}
	if m.Summary == nil || len(m.Summary.ActionItems) != 2 || m.Summary.ActionItems[1].Assignee != "Sarah M." || m.Summary.Confidence() != "91.4%" {
		t.Fatalf("summary lost: %+v", m.Summary)
	}

	limited, err := idx.ListArchived(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit not applied: %d %v", len(limited), err)
	}
}

func TestSQLiteHistoryIndexOrdersSubSecondEndTimes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	idx, err := meetingout.NewSQLiteHistoryIndex(filepath.Join(t.TempDir(), "meetnote.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer idx.Close()

	// Fractions of different lengths, plus a whole second.
	ends := map[string]time.Duration{
		"meeting_whole": time.Minute,
		"meeting_tenth": time.Minute + 100*time.Millisecond,
		"meeting_late":  time.Minute + 120*time.Millisecond,
		"meeting_last":  time.Minute + 500*time.Millisecond,
	}
	for _, id := range []string{"meeting_last", "meeting_whole", "meeting_late", "meeting_tenth"} {
		if _, err := idx.Archive(ctx, completedMeeting(t, id, ends[id])); err != nil {
			t.Fatalf("archive %s: %v", id, err)
		}
	}

	got, err := idx.ListArchived(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"meeting_last", "meeting_late", "meeting_tenth", "meeting_whole"}
	if len(got) != len(want) {
		t.Fatalf("got %d meetings, want %d", len(got), len(want))
	}
	for n, id := range want {
		if got[n].ID != id {
			t.Fatalf("position %d = %s (%s), want %s", n, got[n].ID, got[n].EndTime.Format(time.RFC3339Nano), id)
		}
		if !got[n].EndTime.Equal(t0.Add(ends[id])) {
			t.Fatalf("end time of %s = %v, want %v", id, got[n].EndTime, t0.Add(ends[id]))
		}
	}
}

func TestVaultMeetingStorePreservesUserNotes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	vault := t.TempDir()
	store := meetingout.NewVaultMeetingStore(vault)
	m := completedMeeting(t, "meeting_0123456789", time.Minute)

	path, err := store.Archive(ctx, m)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	want := filepath.Join(vault, "meetings", "2026", "03", "02", "093000-microsoft-teams-01234567.md")
	if path != want {
		t.Fatalf("path = %s, want %s", path, want)
	}

	raw, _ := os.ReadFile(path)
	edited := strings.Replace(string(raw), "## Notes\n\n", "## Notes\n\nfollow up with finance\n", 1)
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatalf("edit note: %v", err)
	}

	m.Summary.Title = "Q4 Goals"
	if _, err := store.Archive(ctx, m); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	raw, _ = os.ReadFile(path)
	meta := struct {
		ID         string   `yaml:"id"`
		Title      string   `yaml:"title"`
		Confidence string   `yaml:"confidence"`
		Tags       []string `yaml:"tags"`
	}{}
	body, err := markdown.SplitFrontmatter(string(raw), &meta)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if meta.ID != m.ID || meta.Title != "Q4 Goals" || meta.Confidence != "91.4%" || len(meta.Tags) != 2 {
		t.Fatalf("unexpected frontmatter %+v", meta)
	}
	if !strings.Contains(body, "follow up with finance") {
		t.Fatalf("user notes lost:\n%s", body)
	}
	block, ok := markdown.ManagedBlock(body)
	if !ok || !strings.Contains(block, "- [ ] Update documentation (John D., due 2024-01-15)") {
		t.Fatalf("unexpected managed block:\n%s", block)
	}
}
