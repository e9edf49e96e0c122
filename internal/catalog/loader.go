// Package catalog assembles the deduplicated, ordered view of the active
// questionnaire from the configuration store.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/clearsight-health/riskscore/internal/model"
	"github.com/clearsight-health/riskscore/internal/resilience"
	"github.com/clearsight-health/riskscore/internal/store"
)

// Loader resolves the current catalog through an ordered fallback chain:
// the store's joined query, the store's plain scan, an optional secondary
// source, and finally the embedded baseline questionnaire.
type Loader struct {
	chain *resilience.Chain[[]model.Question]
}

// NewLoader builds a catalog loader over the primary reader. secondary may be
// nil. Store-backed strategies are retried on transient errors and guarded by
// a per-source circuit breaker.
func NewLoader(primary store.Reader, secondary store.Reader) *Loader {
	retry := resilience.DefaultRetryConfig()
	primaryCB := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		ShouldTrip: resilience.IsTransient,
	})

	strategies := []resilience.Strategy[[]model.Question]{
		resilience.WithBreaker(resilience.WithRetry(resilience.Strategy[[]model.Question]{
			Name: "store-join",
			Fetch: func(ctx context.Context) ([]model.Question, error) {
				raw, err := primary.ListCatalog(ctx)
				if err != nil {
					return nil, err
				}
				return Assemble(raw), nil
			},
		}, retry), primaryCB),
		resilience.WithBreaker(resilience.WithRetry(resilience.Strategy[[]model.Question]{
			Name:  "store-scan",
			Fetch: scanStrategy(primary),
		}, retry), primaryCB),
	}

	if secondary != nil {
		strategies = append(strategies, resilience.WithRetry(resilience.Strategy[[]model.Question]{
			Name:  "secondary-scan",
			Fetch: scanStrategy(secondary),
		}, retry))
	}

	strategies = append(strategies, resilience.Strategy[[]model.Question]{
		Name:     "baseline",
		Fallback: true,
		Fetch: func(ctx context.Context) ([]model.Question, error) {
			return Assemble(Baseline()), nil
		},
	})

	return &Loader{chain: resilience.NewChain("catalog", strategies...)}
}

// Load returns the current catalog. The boolean reports whether the result
// came from the baseline fallback, in which case callers must not cache it.
func (l *Loader) Load(ctx context.Context) ([]model.Question, bool, error) {
	return l.chain.Resolve(ctx)
}

// scanStrategy lists active questions and their options in two reads, then
// assembles the catalog.
func scanStrategy(r store.Reader) func(ctx context.Context) ([]model.Question, error) {
	return func(ctx context.Context) ([]model.Question, error) {
		questions, err := r.ListActiveQuestions(ctx)
		if err != nil {
			return nil, err
		}

		catalog := Assemble(questions)

		ids := make([]string, 0, len(catalog))
		for _, q := range catalog {
			if q.Type == model.TypeSingleSelect {
				ids = append(ids, q.ID)
			}
		}

		options, err := r.ListOptions(ctx, ids)
		if err != nil {
			return nil, err
		}

		byQuestion := make(map[string][]model.Option)
		for _, o := range options {
			byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
		}
		for i := range catalog {
			if catalog[i].Type == model.TypeSingleSelect {
				catalog[i].Options = byQuestion[catalog[i].ID]
			}
		}

		return Assemble(catalog), nil
	}
}

// Assemble applies the catalog pipeline to raw question rows: it silently
// drops rows with malformed identifiers, coerces identity-capture questions
// to free text, deduplicates by normalized display text, orders the
// survivors, and keeps options only on single-select questions, sorted by
// display order.
func Assemble(raw []model.Question) []model.Question {
	questions := make([]model.Question, 0, len(raw))
	for _, q := range raw {
		if _, err := uuid.Parse(q.ID); err != nil {
			zap.L().Debug("catalog: dropping question with malformed id",
				zap.String("id", q.ID),
				zap.String("text", q.Text),
			)
			continue
		}
		// Identity fields must never render as selects, whatever their
		// stored type says.
		if isIdentityField(q.Text) {
			q.Type = model.TypeFreeText
		}
		if q.Type != model.TypeSingleSelect {
			q.Options = nil
		}
		questions = append(questions, q)
	}

	questions = dedupe(questions)

	sort.SliceStable(questions, func(i, j int) bool {
		a, b := questions[i], questions[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	for i := range questions {
		opts := questions[i].Options
		sort.SliceStable(opts, func(a, b int) bool {
			return opts[a].DisplayOrder < opts[b].DisplayOrder
		})
	}

	return questions
}

// dedupe keeps exactly one question per normalized display text. An
// administrator-authored entry beats one without; on a tie the most recently
// created wins; otherwise the first encountered stays.
func dedupe(questions []model.Question) []model.Question {
	kept := make(map[string]int)
	var out []model.Question

	for _, q := range questions {
		key := NormalizeText(q.Text)
		i, seen := kept[key]
		if !seen {
			out = append(out, q)
			kept[key] = len(out) - 1
			continue
		}

		cur := out[i]
		if betterDuplicate(q, cur) {
			zap.L().Debug("catalog: replacing duplicate question",
				zap.String("text", q.Text),
				zap.String("dropped_id", cur.ID),
				zap.String("kept_id", q.ID),
			)
			out[i] = q
		}
	}

	return out
}

func betterDuplicate(candidate, current model.Question) bool {
	if candidate.AdminAuthored != current.AdminAuthored {
		return candidate.AdminAuthored
	}
	return candidate.CreatedAt.After(current.CreatedAt)
}

// NormalizeText canonicalizes question display text for duplicate detection:
// whitespace runs collapse to single spaces and case is folded.
func NormalizeText(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(collapsed)
}

var identityFragments = []string{"first name", "last name", "full name", "surname"}

func isIdentityField(text string) bool {
	folded := NormalizeText(text)
	for _, f := range identityFragments {
		if strings.Contains(folded, f) {
			return true
		}
	}
	return false
}
