package dto

import "time"

type GenerateInput struct {
	Platform string
}

type PreviewInput struct {
	Title string
}

type ActionItem struct {
	Task     string
	Assignee string
	DueDate  string
}

type SummaryOutput struct {
	Title             string
	KeyPoints         []string
	ActionItems       []ActionItem
	Decisions         []string
	Sentiment         string
	ConfidencePercent float64
	Confidence        string
	Provider          string
}

type PreviewOutput struct {
	MeetingTitle string
	Summary      SummaryOutput
	ReadyAt      time.Time
}
