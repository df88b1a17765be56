package service_test

import (
	"reflect"
	"slices"
	"testing"

	"meetnote/internal/modules/summary/domain"
	"meetnote/internal/modules/summary/service"
	"meetnote/internal/platform/random"
)

func TestConfidenceStaysInRangeOverManySamples(t *testing.T) {
	t.Parallel()
	gen := service.NewGenerator(random.New(7))
	for i := 0; i < 1000; i++ {
		s := gen.Summary()
		if s.ConfidencePercent < 80.0 || s.ConfidencePercent > 100.0 {
			t.Fatalf("sample %d out of range: %.3f", i, s.ConfidencePercent)
		}
		if err := s.Validate(); err != nil {
			t.Fatalf("sample %d invalid: %v", i, err)
		}
	}
}

func TestSummaryShapeComesFromFixedCatalogs(t *testing.T) {
	t.Parallel()
	s := service.NewGenerator(random.New(42)).Summary()

	if !slices.Contains(domain.Topics, s.Title) {
		t.Fatalf("title %q not from topic set", s.Title)
	}
	if !reflect.DeepEqual(s.KeyPoints, domain.KeyPoints) {
		t.Fatalf("key points must be the fixed four, got %v", s.KeyPoints)
	}
	if len(s.ActionItems) != 2 {
		t.Fatalf("expected two action items, got %d", len(s.ActionItems))
	}
	if s.ActionItems[0].Assignee != "John D." || s.ActionItems[0].DueDate != "2024-01-15" ||
		s.ActionItems[1].Assignee != "Sarah M." || s.ActionItems[1].DueDate != "2024-01-20" {
		t.Fatalf("unexpected assignments: %+v", s.ActionItems)
	}
	for _, a := range s.ActionItems {
		if !slices.Contains(domain.Tasks, a.Task) {
			t.Fatalf("task %q not from task set", a.Task)
		}
	}
	if len(s.Decisions) != 2 {
		t.Fatalf("expected two decisions, got %v", s.Decisions)
	}
	for _, d := range s.Decisions {
		if !slices.Contains(domain.Decisions, d) {
			t.Fatalf("decision %q not from decision set", d)
		}
	}
	if s.Sentiment != "positive" {
		t.Fatalf("unexpected sentiment %q", s.Sentiment)
	}
}

func TestSameSeedSameSummary(t *testing.T) {
	t.Parallel()
	a := service.NewGenerator(random.New(99)).Summary()
	b := service.NewGenerator(random.New(99)).Summary()
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("seeded generators diverged:\n%+v\n%+v", a, b)
	}
}

func TestKeyPointsAreCopied(t *testing.T) {
	t.Parallel()
	s := service.NewGenerator(random.New(1)).Summary()
	s.KeyPoints[0] = "mutated"
	if domain.KeyPoints[0] == "mutated" {
		t.Fatalf("summary must not alias the catalog")
	}
}
