package catalog

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/clearsight-health/riskscore/internal/model"
)

// legacyAnswerKeys maps the well-known semantic answer keys still sent by
// older clients to question-text fragments. A raw key is canonicalized
// (lowercased, separators stripped) and looked up here; the first catalog
// question whose normalized text contains one of the fragments receives the
// answer. The table is fixed and centrally defined so the key translation
// surface stays auditable.
var legacyAnswerKeys = map[string][]string{
	"age":           {"age"},
	"race":          {"race", "ethnic"},
	"ethnicity":     {"race", "ethnic"},
	"familyhistory": {"family history"},
	"steroids":      {"steroid"},
	"steroiduse":    {"steroid"},
	"diabetes":      {"diabetes"},
	"iop":           {"intraocular", "eye pressure"},
	"eyepressure":   {"intraocular", "eye pressure"},
	"myopia":        {"myopia", "nearsight"},
	"eyeinjury":     {"eye injury", "eye surgery"},
}

// NormalizeAnswers maps raw form input onto catalog question IDs. Keys that
// already are catalog IDs pass through; legacy semantic keys are resolved via
// the fragment table; anything else is dropped silently since an unmatched
// answer can never contribute to scoring. Values receive scalar coercion
// appropriate to the target question's type.
func NormalizeAnswers(raw map[string]string, catalog []model.Question) model.AnswerSet {
	byID := make(map[string]model.Question, len(catalog))
	for _, q := range catalog {
		byID[q.ID] = q
	}

	// Sorted key iteration keeps the first-match-wins rule deterministic
	// when two raw keys resolve to the same question.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	answers := make(model.AnswerSet, len(raw))
	for _, k := range keys {
		q, direct := byID[k]
		if !direct {
			id, ok := matchLegacyKey(k, catalog)
			if !ok {
				zap.L().Debug("catalog: dropping unmatched answer key",
					zap.String("key", k),
				)
				continue
			}
			q = byID[id]
		}

		value := CoerceScalar(raw[k], q.Type)
		if value == "" {
			continue
		}
		if _, exists := answers[q.ID]; !exists {
			answers[q.ID] = value
		}
	}

	return answers
}

func matchLegacyKey(key string, catalog []model.Question) (string, bool) {
	fragments, ok := legacyAnswerKeys[canonicalKey(key)]
	if !ok {
		return "", false
	}

	for _, q := range catalog {
		text := NormalizeText(q.Text)
		for _, f := range fragments {
			if strings.Contains(text, f) {
				return q.ID, true
			}
		}
	}
	return "", false
}

// canonicalKey lowercases a raw answer key and strips the separators legacy
// clients disagree on ("family_history", "family-history", "familyHistory").
func canonicalKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(key)) {
		switch r {
		case ' ', '_', '-', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CoerceScalar trims a raw answer value and, for non-numeric questions,
// collapses boolean-like tokens to the canonical "yes"/"no" pair. Numeric
// answers pass through trimmed so "1" keeps meaning the number one.
func CoerceScalar(v string, t model.QuestionType) string {
	trimmed := strings.TrimSpace(v)
	if t == model.TypeNumeric {
		return trimmed
	}
	switch strings.ToLower(trimmed) {
	case "true", "yes", "y", "1":
		return "yes"
	case "false", "no", "n", "0":
		return "no"
	}
	return trimmed
}
