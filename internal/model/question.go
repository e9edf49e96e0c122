package model

import "time"

// QuestionType tags how a question is answered.
type QuestionType string

const (
	TypeFreeText     QuestionType = "free_text"
	TypeNumeric      QuestionType = "numeric"
	TypeSingleSelect QuestionType = "single_select"
)

// Question is one entry in the clinician-configurable questionnaire catalog.
// Questions are soft-retired via the Active flag; the engine only ever sees
// active ones.
type Question struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Category      string       `json:"category"`
	DisplayOrder  int          `json:"display_order"`
	Active        bool         `json:"active"`
	HelpText      string       `json:"help_text,omitempty"`
	ParentID      string       `json:"parent_id,omitempty"`
	ParentAnswer  string       `json:"parent_answer,omitempty"`
	AdminAuthored bool         `json:"admin_authored"`
	CreatedAt     time.Time    `json:"created_at"`
	Options       []Option     `json:"options,omitempty"`
}

// Option is one selectable answer for a single-select question. A nil Score
// means the option carries no points.
type Option struct {
	ID           string `json:"id"`
	QuestionID   string `json:"question_id"`
	Value        string `json:"value"`
	Label        string `json:"label"`
	Score        *int   `json:"score,omitempty"`
	DisplayOrder int    `json:"display_order"`
}

// AnswerSet maps catalog question IDs to a single scalar answer value. It is
// built per submission and never persisted by the engine.
type AnswerSet map[string]string
