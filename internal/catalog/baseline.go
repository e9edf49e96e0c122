package catalog

import (
	"time"

	"github.com/clearsight-health/riskscore/internal/model"
)

// Baseline is the embedded default questionnaire, used as the last strategy
// in the catalog chain when every configuration source is unreachable. It has
// no external dependency, so catalog resolution can never fail outright.

var baselineCreatedAt = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

// Baseline returns a fresh copy of the built-in questionnaire.
func Baseline() []model.Question {
	qs := []model.Question{
		{
			ID:           "7b8a1f9c-0d2e-4c3b-9a6f-1e5d8c7b4a21",
			Text:         "Age",
			Type:         model.TypeSingleSelect,
			Category:     "demographics",
			DisplayOrder: 1,
			Options: []model.Option{
				{Value: "under 40", Label: "Under 40", Score: intPtr(0), DisplayOrder: 1},
				{Value: "40 to 59", Label: "40 to 59", Score: intPtr(1), DisplayOrder: 2},
				{Value: "60 and above", Label: "60 and above", Score: intPtr(2), DisplayOrder: 3},
			},
		},
		{
			ID:           "3f2c6e8d-5a1b-4f7e-8c9d-2b4a6e1f0d35",
			Text:         "Race",
			Type:         model.TypeSingleSelect,
			Category:     "demographics",
			DisplayOrder: 2,
			HelpText:     "Some ancestries carry a higher baseline risk of glaucoma.",
			Options: []model.Option{
				{Value: "black", Label: "Black / African descent", Score: intPtr(2), DisplayOrder: 1},
				{Value: "hispanic", Label: "Hispanic / Latino", Score: intPtr(1), DisplayOrder: 2},
				{Value: "asian", Label: "Asian", Score: intPtr(0), DisplayOrder: 3},
				{Value: "white", Label: "White", Score: intPtr(0), DisplayOrder: 4},
				{Value: "other", Label: "Other", Score: intPtr(0), DisplayOrder: 5},
			},
		},
		{
			ID:           "9d4b2a7e-6c3f-4e1a-b8d5-7f0c9e2a5b48",
			Text:         "Family history of glaucoma",
			Type:         model.TypeSingleSelect,
			Category:     "history",
			DisplayOrder: 1,
			Options: []model.Option{
				{Value: "yes", Label: "Yes", Score: intPtr(2), DisplayOrder: 1},
				{Value: "no", Label: "No", Score: intPtr(0), DisplayOrder: 2},
			},
		},
		{
			ID:           "1e6f4c2b-8d7a-4b9e-a3c1-5d2f8b6e0a74",
			Text:         "Systemic steroid use",
			Type:         model.TypeSingleSelect,
			Category:     "history",
			DisplayOrder: 2,
			HelpText:     "Long-term corticosteroid treatment in any form.",
			Options: []model.Option{
				{Value: "yes", Label: "Yes", Score: intPtr(2), DisplayOrder: 1},
				{Value: "no", Label: "No", Score: intPtr(0), DisplayOrder: 2},
			},
		},
		{
			ID:           "5c8e0a3d-2f6b-4d7c-9e4a-8b1d5f3c7e92",
			Text:         "Diabetes",
			Type:         model.TypeSingleSelect,
			Category:     "history",
			DisplayOrder: 3,
			Options: []model.Option{
				{Value: "yes", Label: "Yes", Score: intPtr(1), DisplayOrder: 1},
				{Value: "no", Label: "No", Score: intPtr(0), DisplayOrder: 2},
			},
		},
		{
			ID:           "8a5d3f1c-4e9b-4a2d-8f6c-3b7e1d9a4c56",
			Text:         "Most recent intraocular pressure reading",
			Type:         model.TypeSingleSelect,
			Category:     "clinical",
			DisplayOrder: 1,
			HelpText:     "If measured at a previous eye examination.",
			Options: []model.Option{
				{Value: "below 22", Label: "Below 22 mmHg", Score: intPtr(0), DisplayOrder: 1},
				{Value: "22 and above", Label: "22 mmHg and above", Score: intPtr(2), DisplayOrder: 2},
				{Value: "not measured", Label: "Not measured", DisplayOrder: 3},
			},
		},
		{
			ID:           "2d7c5b9e-0f4a-4c8b-b1e6-9a3f7d5c2e80",
			Text:         "Severe nearsightedness (myopia)",
			Type:         model.TypeSingleSelect,
			Category:     "clinical",
			DisplayOrder: 2,
			Options: []model.Option{
				{Value: "yes", Label: "Yes", Score: intPtr(1), DisplayOrder: 1},
				{Value: "no", Label: "No", Score: intPtr(0), DisplayOrder: 2},
			},
		},
		{
			ID:           "6f1a8e4b-3c5d-4f0a-a7b9-4e2c8d6f1a38",
			Text:         "Previous eye injury or eye surgery",
			Type:         model.TypeSingleSelect,
			Category:     "clinical",
			DisplayOrder: 3,
			Options: []model.Option{
				{Value: "yes", Label: "Yes", Score: intPtr(1), DisplayOrder: 1},
				{Value: "no", Label: "No", Score: intPtr(0), DisplayOrder: 2},
			},
		},
	}

	for i := range qs {
		qs[i].Active = true
		qs[i].AdminAuthored = true
		qs[i].CreatedAt = baselineCreatedAt
		for j := range qs[i].Options {
			qs[i].Options[j].QuestionID = qs[i].ID
		}
	}
	return qs
}
