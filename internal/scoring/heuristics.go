package scoring

import (
	"strings"

	"github.com/clearsight-health/riskscore/internal/catalog"
)

// HeuristicRule awards a fixed point value when a (question, answer) pair has
// no configured option score. Rules are matched in order, first match wins.
// Question fragments gate the rule to questions whose normalized text
// contains any fragment; an empty fragment list matches any question. Answer
// matching is exact against AnswerEquals tokens, substring against
// AnswerFragments; affirmative rules use exact tokens so an answer like
// "eyes" never satisfies a "yes" rule.
type HeuristicRule struct {
	Name              string
	QuestionFragments []string
	AnswerEquals      []string
	AnswerFragments   []string
	Points            int
}

// Matches reports whether the rule applies to the given question text and
// answer value.
func (r HeuristicRule) Matches(questionText, answer string) bool {
	ans := catalog.NormalizeText(answer)
	if !equalsAny(ans, r.AnswerEquals) && !containsAny(ans, r.AnswerFragments) {
		return false
	}
	if len(r.QuestionFragments) == 0 {
		return true
	}
	return containsAny(catalog.NormalizeText(questionText), r.QuestionFragments)
}

func equalsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if s == t {
			return true
		}
	}
	return false
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

// DefaultHeuristics is the legacy scoring policy applied when an
// administrator has not yet configured per-option scores for a question. It
// is one flat, ordered table on purpose: the full set of hardcoded point
// awards must stay readable in a single place. Point values follow the most
// complete legacy variant and are subject to clinical review.
func DefaultHeuristics() []HeuristicRule {
	return []HeuristicRule{
		{
			Name:              "family-history-affirmative",
			QuestionFragments: []string{"family history"},
			AnswerEquals:      []string{"yes"},
			Points:            2,
		},
		{
			Name:              "steroid-use-affirmative",
			QuestionFragments: []string{"steroid"},
			AnswerEquals:      []string{"yes"},
			Points:            2,
		},
		{
			Name:              "race-elevated",
			QuestionFragments: []string{"race", "ethnic"},
			AnswerFragments:   []string{"black", "african"},
			Points:            2,
		},
		{
			Name:              "race-moderate",
			QuestionFragments: []string{"race", "ethnic"},
			AnswerFragments:   []string{"hispanic", "latino"},
			Points:            1,
		},
		{
			Name:              "intraocular-pressure-elevated",
			QuestionFragments: []string{"intraocular", "eye pressure", "iop"},
			AnswerFragments:   []string{"22 and above", "above 22", "over 22", "22+"},
			Points:            2,
		},
		{
			Name:              "age-elevated",
			QuestionFragments: []string{"age"},
			AnswerFragments:   []string{"60 and above", "above 60", "over 60", "60+"},
			Points:            2,
		},
		{
			Name:              "diabetes-affirmative",
			QuestionFragments: []string{"diabetes"},
			AnswerEquals:      []string{"yes"},
			Points:            1,
		},
	}
}
