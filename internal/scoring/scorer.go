// Package scoring resolves per-answer point values against the catalog and
// aggregates them into a total.
package scoring

import (
	"strings"

	"go.uber.org/zap"

	"github.com/clearsight-health/riskscore/internal/catalog"
	"github.com/clearsight-health/riskscore/internal/model"
)

// Result is the aggregate before advice resolution.
type Result struct {
	Total   int
	Factors []model.ContributingFactor
}

// Scorer resolves scores for normalized answers.
type Scorer struct {
	heuristics []HeuristicRule
}

// NewScorer creates a Scorer with the default heuristic policy.
func NewScorer() *Scorer {
	return &Scorer{heuristics: DefaultHeuristics()}
}

// WithHeuristics replaces the heuristic policy table. Passing nil disables
// heuristic scoring entirely.
func (s *Scorer) WithHeuristics(rules []HeuristicRule) *Scorer {
	s.heuristics = rules
	return s
}

// Score resolves every answered question against the catalog and sums the
// points. Iteration follows catalog order, which fixes the contributing
// factor ordering deterministically regardless of answer map iteration.
// Answers for questions absent from the catalog contribute nothing.
func (s *Scorer) Score(cat []model.Question, answers model.AnswerSet) Result {
	var res Result

	for _, q := range cat {
		answer, ok := answers[q.ID]
		if !ok || strings.TrimSpace(answer) == "" {
			continue
		}

		points, resolved := s.resolve(q, answer)
		if !resolved {
			continue
		}

		res.Total += points
		if points > 0 {
			res.Factors = append(res.Factors, model.ContributingFactor{
				Question: q.Text,
				Answer:   answer,
				Score:    points,
			})
		}
	}

	return res
}

// resolve looks up the configured option score for the answer, falling back
// to the heuristic policy when no option matches.
func (s *Scorer) resolve(q model.Question, answer string) (int, bool) {
	folded := catalog.NormalizeText(answer)
	for _, o := range q.Options {
		if catalog.NormalizeText(o.Value) == folded {
			if o.Score == nil {
				return 0, true
			}
			return *o.Score, true
		}
	}

	for _, rule := range s.heuristics {
		if rule.Matches(q.Text, answer) {
			zap.L().Debug("scoring: heuristic rule applied",
				zap.String("rule", rule.Name),
				zap.String("question", q.Text),
			)
			return rule.Points, true
		}
	}

	return 0, false
}
