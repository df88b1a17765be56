package service

import (
	"context"

	"meetnote/internal/modules/summary/domain"
	summaryout "meetnote/internal/modules/summary/port/out"
	"meetnote/internal/platform/random"
)

const BuiltinProvider = "builtin"

// Generator is the built-in summary provider. Its output depends only on
// the random source.
type Generator struct {
	rng random.Source
}

func NewGenerator(rng random.Source) *Generator {
	return &Generator{rng: rng}
}

var _ summaryout.Provider = (*Generator)(nil)

func (g *Generator) Name() string { return BuiltinProvider }

func (g *Generator) Generate(_ context.Context, _ string) (domain.Summary, error) {
	return g.Summary(), nil
}

// Summary builds one synthetic summary. It never fails.
func (g *Generator) Summary() domain.Summary {
	actions := make([]domain.ActionItem, 0, len(domain.Assignments))
	for _, a := range domain.Assignments {
		actions = append(actions, domain.ActionItem{
			Task:     g.pick(domain.Tasks),
			Assignee: a.Assignee,
			DueDate:  a.DueDate,
		})
	}
	return domain.Summary{
		Title:             g.pick(domain.Topics),
		KeyPoints:         append([]string(nil), domain.KeyPoints...),
		ActionItems:       actions,
		Decisions:         []string{g.pick(domain.Decisions), g.pick(domain.Decisions)},
		Sentiment:         domain.SentimentPositive,
		ConfidencePercent: domain.RoundConfidence(g.rng.Float64()),
	}
}

func (g *Generator) pick(values []string) string {
	return values[g.rng.IntN(len(values))]
}
