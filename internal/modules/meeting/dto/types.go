package dto

import "time"

type StartInput struct {
	Platform string
}

type StartOutput struct {
	MeetingID   string
	Platform    string
	Status      string
	StartTime   time.Time
	RecordingAt time.Time
}

type EndInput struct {
	MeetingID string
}

// EndOutput reports whether this call scheduled the end. Scheduled is false
// when the meeting is unknown or already ending.
type EndOutput struct {
	MeetingID   string
	Scheduled   bool
	CompletesAt time.Time
}

type CancelInput struct {
	MeetingID string
}

type ActionItem struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee"`
	DueDate  string `json:"due_date"`
}

type SummaryOutput struct {
	Title             string       `json:"title"`
	KeyPoints         []string     `json:"key_points"`
	ActionItems       []ActionItem `json:"action_items"`
	Decisions         []string     `json:"decisions"`
	Sentiment         string       `json:"sentiment"`
	ConfidencePercent float64      `json:"confidence_percent"`
	Confidence        string       `json:"confidence"`
	Provider          string       `json:"provider,omitempty"`
}

type MeetingOutput struct {
	ID               string         `json:"id"`
	Platform         string         `json:"platform"`
	Status           string         `json:"status"`
	StartTime        time.Time      `json:"start_time"`
	EndTime          *time.Time     `json:"end_time,omitempty"`
	DurationMin      int            `json:"duration_minutes,omitempty"`
	ParticipantCount int            `json:"participant_count,omitempty"`
	Ending           bool           `json:"ending,omitempty"`
	Summary          *SummaryOutput `json:"summary,omitempty"`
}

type StatsOutput struct {
	ConnectedPlatforms int `json:"connected_platforms"`
	MeetingsRecorded   int `json:"meetings_recorded"`
	MinutesSaved       int `json:"minutes_saved"`
	ActionItems        int `json:"action_items"`
}
