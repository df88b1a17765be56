package domain

import (
	"errors"
	"fmt"
	"math"
)

const (
	MinConfidence = 80.0
	MaxConfidence = 100.0

	SentimentPositive = "positive"
)

var ErrConfidenceOutOfRange = errors.New("confidence out of range")

var (
	Topics = []string{
		"Project Review",
		"Strategic Planning",
		"Problem Solving",
		"Client Presentation",
		"Team Meeting",
	}

	Tasks = []string{
		"Prepare final report",
		"Contact client",
		"Review budget",
		"Schedule next meeting",
		"Update documentation",
	}

	Decisions = []string{
		"Approve new budget",
		"Validate deadlines",
		"Adopt new strategy",
		"Confirm resources",
	}

	KeyPoints = []string{
		"Project is on track overall",
		"Budget constraints discussed",
		"Team collaboration is effective",
		"Client satisfaction is high",
	}

	// Assignments pairs every generated action item with an owner and due date.
	Assignments = []Assignment{
		{Assignee: "John D.", DueDate: "2024-01-15"},
		{Assignee: "Sarah M.", DueDate: "2024-01-20"},
	}
)

type Assignment struct {
	Assignee string
	DueDate  string
}

type ActionItem struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee"`
	DueDate  string `json:"due_date"`
}

type Summary struct {
	Title             string       `json:"title"`
	KeyPoints         []string     `json:"key_points"`
	ActionItems       []ActionItem `json:"action_items"`
	Decisions         []string     `json:"decisions"`
	Sentiment         string       `json:"sentiment"`
	ConfidencePercent float64      `json:"confidence_percent"`
}

// Confidence renders the score the way it is shown to users, e.g. "93.4%".
func (s Summary) Confidence() string {
	return fmt.Sprintf("%.1f%%", s.ConfidencePercent)
}

func (s Summary) Validate() error {
	if s.ConfidencePercent < MinConfidence || s.ConfidencePercent > MaxConfidence || math.IsNaN(s.ConfidencePercent) {
		return fmt.Errorf("%w: %.1f", ErrConfidenceOutOfRange, s.ConfidencePercent)
	}
	if s.Title == "" {
		return fmt.Errorf("summary title is required")
	}
	return nil
}

// RoundConfidence maps a unit sample in [0, 1) onto [80.0, 100.0] with one decimal.
func RoundConfidence(sample float64) float64 {
	v := MinConfidence + sample*(MaxConfidence-MinConfidence)
	v = math.Round(v*10) / 10
	return math.Min(math.Max(v, MinConfidence), MaxConfidence)
}
