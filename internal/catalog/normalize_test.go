package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearsight-health/riskscore/internal/model"
)

func testCatalog() []model.Question {
	return []model.Question{
		{ID: idA, Text: "Family history of glaucoma", Type: model.TypeSingleSelect},
		{ID: idB, Text: "Most recent intraocular pressure reading", Type: model.TypeSingleSelect},
		{ID: idC, Text: "Age", Type: model.TypeNumeric},
	}
}

func TestNormalizeAnswersDirectIDPassthrough(t *testing.T) {
	answers := NormalizeAnswers(map[string]string{idA: "yes"}, testCatalog())

	require.Len(t, answers, 1)
	assert.Equal(t, "yes", answers[idA])
}

func TestNormalizeAnswersLegacyKeys(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		wantID string
	}{
		{"snake case", "family_history", idA},
		{"kebab case", "family-history", idA},
		{"camel case", "familyHistory", idA},
		{"spaced", "Family History", idA},
		{"iop", "iop", idB},
		{"eye pressure alias", "eye_pressure", idB},
		{"age", "age", idC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := NormalizeAnswers(map[string]string{tt.key: "7"}, testCatalog())

			require.Len(t, answers, 1)
			assert.Contains(t, answers, tt.wantID)
		})
	}
}

func TestNormalizeAnswersDropsUnmatchedKeys(t *testing.T) {
	answers := NormalizeAnswers(map[string]string{
		"favorite_color": "blue",
		idA:              "yes",
	}, testCatalog())

	require.Len(t, answers, 1)
	assert.Contains(t, answers, idA)
}

func TestNormalizeAnswersFirstMatchWins(t *testing.T) {
	// Both keys resolve to the family history question. Sorted iteration
	// makes "familyHistory" the winner deterministically.
	answers := NormalizeAnswers(map[string]string{
		"family_history": "no",
		"familyHistory":  "yes",
	}, testCatalog())

	require.Len(t, answers, 1)
	assert.Equal(t, "yes", answers[idA])
}

func TestNormalizeAnswersDropsEmptyValues(t *testing.T) {
	answers := NormalizeAnswers(map[string]string{idA: "   "}, testCatalog())

	assert.Empty(t, answers)
}

func TestCoerceScalar(t *testing.T) {
	tests := []struct {
		in   string
		qt   model.QuestionType
		want string
	}{
		{"true", model.TypeSingleSelect, "yes"},
		{"YES", model.TypeSingleSelect, "yes"},
		{"y", model.TypeSingleSelect, "yes"},
		{"1", model.TypeSingleSelect, "yes"},
		{"false", model.TypeSingleSelect, "no"},
		{"No", model.TypeSingleSelect, "no"},
		{"0", model.TypeFreeText, "no"},
		{"  maybe ", model.TypeFreeText, "maybe"},
		{"1", model.TypeNumeric, "1"},
		{" 23 ", model.TypeNumeric, "23"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CoerceScalar(tt.in, tt.qt), "CoerceScalar(%q, %s)", tt.in, tt.qt)
	}
}
