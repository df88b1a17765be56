package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"meetnote/internal/modules/meeting/domain"
	meetingout "meetnote/internal/modules/meeting/port/out"

	_ "modernc.org/sqlite"
)

// storedTime keeps every fraction digit so TEXT order matches time order.
const storedTime = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteHistoryIndex struct {
	db *sql.DB
}

var _ meetingout.HistoryIndex = (*SQLiteHistoryIndex)(nil)

func NewSQLiteHistoryIndex(dbPath string) (*SQLiteHistoryIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	idx := &SQLiteHistoryIndex{db: db}
	if err := idx.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

func (s *SQLiteHistoryIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteHistoryIndex) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS meetings (
  id TEXT PRIMARY KEY,
  platform TEXT NOT NULL,
  status TEXT NOT NULL,
  start_time TEXT NOT NULL,
  end_time TEXT NOT NULL,
  duration_minutes INTEGER NOT NULL,
  participant_count INTEGER NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  sentiment TEXT NOT NULL DEFAULT '',
  confidence REAL NOT NULL DEFAULT 0,
  provider TEXT NOT NULL DEFAULT '',
  key_points TEXT NOT NULL DEFAULT '[]',
  decisions TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS action_items (
  meeting_id TEXT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  task TEXT NOT NULL,
  assignee TEXT NOT NULL,
  due_date TEXT NOT NULL,
  PRIMARY KEY (meeting_id, position)
);
CREATE INDEX IF NOT EXISTS idx_meetings_end_time ON meetings(end_time DESC);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create history tables: %w", err)
	}
	return nil
}

// Archive upserts a completed meeting and replaces its action items.
func (s *SQLiteHistoryIndex) Archive(ctx context.Context, meeting domain.Meeting) (string, error) {
	summary := domain.Summary{}
	if meeting.Summary != nil {
		summary = *meeting.Summary
	}
	keyPoints, err := json.Marshal(nonNil(summary.KeyPoints))
	if err != nil {
		return "", fmt.Errorf("encode key points: %w", err)
	}
	decisions, err := json.Marshal(nonNil(summary.Decisions))
	if err != nil {
		return "", fmt.Errorf("encode decisions: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin archive: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `
INSERT INTO meetings (id, platform, status, start_time, end_time, duration_minutes, participant_count, title, sentiment, confidence, provider, key_points, decisions)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  platform = excluded.platform,
  status = excluded.status,
  start_time = excluded.start_time,
  end_time = excluded.end_time,
  duration_minutes = excluded.duration_minutes,
  participant_count = excluded.participant_count,
  title = excluded.title,
  sentiment = excluded.sentiment,
  confidence = excluded.confidence,
  provider = excluded.provider,
  key_points = excluded.key_points,
  decisions = excluded.decisions;
`
	if _, err := tx.ExecContext(ctx, upsert,
		meeting.ID, meeting.Platform, string(meeting.Status),
		meeting.StartTime.UTC().Format(storedTime), meeting.EndTime.UTC().Format(storedTime),
		meeting.DurationMin, meeting.ParticipantCount,
		summary.Title, summary.Sentiment, summary.ConfidencePercent, summary.Provider,
		string(keyPoints), string(decisions),
	); err != nil {
		return "", fmt.Errorf("upsert meeting: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM action_items WHERE meeting_id = ?;`, meeting.ID); err != nil {
		return "", fmt.Errorf("clear action items: %w", err)
	}
	for pos, item := range summary.ActionItems {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO action_items (meeting_id, position, task, assignee, due_date) VALUES (?, ?, ?, ?, ?);`,
			meeting.ID, pos, item.Task, item.Assignee, item.DueDate,
		); err != nil {
			return "", fmt.Errorf("insert action item: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit archive: %w", err)
	}
	return "sqlite:" + meeting.ID, nil
}

// ListArchived returns archived meetings, most recently ended first.
func (s *SQLiteHistoryIndex) ListArchived(ctx context.Context, limit int) ([]domain.Meeting, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, platform, status, start_time, end_time, duration_minutes, participant_count,
       title, sentiment, confidence, provider, key_points, decisions
FROM meetings
ORDER BY end_time DESC, id ASC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list archived meetings: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Meeting, 0, limit)
	for rows.Next() {
		var (
			m                    domain.Meeting
			summary              domain.Summary
			status, start, end   string
			keyPoints, decisions string
		)
		if err := rows.Scan(&m.ID, &m.Platform, &status, &start, &end, &m.DurationMin, &m.ParticipantCount,
			&summary.Title, &summary.Sentiment, &summary.ConfidencePercent, &summary.Provider, &keyPoints, &decisions); err != nil {
			return nil, fmt.Errorf("scan archived meeting: %w", err)
		}
		m.Status = domain.Status(status)
		if m.StartTime, err = time.Parse(time.RFC3339Nano, start); err != nil {
			return nil, fmt.Errorf("parse start time of %s: %w", m.ID, err)
		}
		if m.EndTime, err = time.Parse(time.RFC3339Nano, end); err != nil {
			return nil, fmt.Errorf("parse end time of %s: %w", m.ID, err)
		}
		if err := json.Unmarshal([]byte(keyPoints), &summary.KeyPoints); err != nil {
			return nil, fmt.Errorf("decode key points of %s: %w", m.ID, err)
		}
		if err := json.Unmarshal([]byte(decisions), &summary.Decisions); err != nil {
			return nil, fmt.Errorf("decode decisions of %s: %w", m.ID, err)
		}
		m.Summary = &summary
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archived meetings: %w", err)
	}
	for idx := range out {
		items, err := s.actionItems(ctx, out[idx].ID)
		if err != nil {
			return nil, err
		}
		out[idx].Summary.ActionItems = items
	}
	return out, nil
}

func (s *SQLiteHistoryIndex) actionItems(ctx context.Context, meetingID string) ([]domain.ActionItem, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT task, assignee, due_date FROM action_items WHERE meeting_id = ? ORDER BY position ASC;
`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list action items: %w", err)
	}
	defer rows.Close()
	items := []domain.ActionItem{}
	for rows.Next() {
		var item domain.ActionItem
		if err := rows.Scan(&item.Task, &item.Assignee, &item.DueDate); err != nil {
			return nil, fmt.Errorf("scan action item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action items: %w", err)
	}
	return items, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
