package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearsight-health/riskscore/internal/model"
)

// fakeNotionClient serves canned pages per database ID, one page of results.
type fakeNotionClient struct {
	pages map[string][]notionapi.Page
	err   error
}

func (f *fakeNotionClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &notionapi.DatabaseQueryResponse{Results: f.pages[dbID]}, nil
}

func titleProp(text string) *notionapi.TitleProperty {
	return &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: text}}}
}

func richTextProp(text string) *notionapi.RichTextProperty {
	return &notionapi.RichTextProperty{RichText: []notionapi.RichText{{PlainText: text}}}
}

func selectProp(name string) *notionapi.SelectProperty {
	return &notionapi.SelectProperty{Select: notionapi.Option{Name: name}}
}

func numberProp(n float64) *notionapi.NumberProperty {
	return &notionapi.NumberProperty{Number: n}
}

func questionPage(id, text string) notionapi.Page {
	return notionapi.Page{
		ID:          notionapi.ObjectID(id),
		CreatedTime: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Properties: notionapi.Properties{
			"Text":     titleProp(text),
			"Type":     selectProp("single_select"),
			"Category": selectProp("history"),
			"Order":    numberProp(1),
			"Help":     richTextProp("Parents or siblings."),
			"Admin":    &notionapi.CheckboxProperty{Checkbox: true},
		},
	}
}

const testDBID = "db-questions"

func newTestNotionReader(pages map[string][]notionapi.Page) *NotionReader {
	return NewNotionReader(&fakeNotionClient{pages: pages}, NotionDatabases{
		Questions: testDBID,
		Options:   "db-options",
		Bands:     "db-bands",
	})
}

func TestNotionListCatalogUnsupported(t *testing.T) {
	r := newTestNotionReader(nil)

	_, err := r.ListCatalog(context.Background())

	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestNotionListActiveQuestions(t *testing.T) {
	r := newTestNotionReader(map[string][]notionapi.Page{
		testDBID: {questionPage("page-1", "Family history of glaucoma")},
	})

	questions, err := r.ListActiveQuestions(context.Background())

	require.NoError(t, err)
	require.Len(t, questions, 1)
	q := questions[0]
	assert.Equal(t, "page-1", q.ID)
	assert.Equal(t, "Family history of glaucoma", q.Text)
	assert.Equal(t, model.TypeSingleSelect, q.Type)
	assert.Equal(t, "history", q.Category)
	assert.Equal(t, 1, q.DisplayOrder)
	assert.Equal(t, "Parents or siblings.", q.HelpText)
	assert.True(t, q.AdminAuthored)
	assert.True(t, q.Active)
	assert.Equal(t, 2025, q.CreatedAt.Year())
}

func TestNotionSkipsMalformedQuestionPages(t *testing.T) {
	missingText := notionapi.Page{
		ID:         "page-bad",
		Properties: notionapi.Properties{"Type": selectProp("free_text")},
	}
	r := newTestNotionReader(map[string][]notionapi.Page{
		testDBID: {missingText, questionPage("page-ok", "Diabetes")},
	})

	questions, err := r.ListActiveQuestions(context.Background())

	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "page-ok", questions[0].ID)
}

func TestNotionQuestionTypeDefaultsToFreeText(t *testing.T) {
	page := notionapi.Page{
		ID:         "page-1",
		Properties: notionapi.Properties{"Text": titleProp("Notes")},
	}
	r := newTestNotionReader(map[string][]notionapi.Page{testDBID: {page}})

	questions, err := r.ListActiveQuestions(context.Background())

	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, model.TypeFreeText, questions[0].Type)
}

func TestNotionListOptionsFiltersByQuestion(t *testing.T) {
	optionPage := func(id, questionID, value string, score *float64) notionapi.Page {
		props := notionapi.Properties{
			"Question": &notionapi.RelationProperty{Relation: []notionapi.Relation{{ID: notionapi.PageID(questionID)}}},
			"Value":    titleProp(value),
			"Label":    richTextProp(value),
			"Order":    numberProp(1),
		}
		if score != nil {
			props["Score"] = numberProp(*score)
		}
		return notionapi.Page{ID: notionapi.ObjectID(id), Properties: props}
	}

	two := 2.0
	r := newTestNotionReader(map[string][]notionapi.Page{
		"db-options": {
			optionPage("o1", "q1", "yes", &two),
			optionPage("o2", "q1", "no", nil),
			optionPage("o3", "other-question", "yes", &two),
		},
	})

	options, err := r.ListOptions(context.Background(), []string{"q1"})

	require.NoError(t, err)
	require.Len(t, options, 2)
	require.NotNil(t, options[0].Score)
	assert.Equal(t, 2, *options[0].Score)
	assert.Nil(t, options[1].Score, "absent Score property stays nil")
}

func TestNotionListOptionsEmptyInput(t *testing.T) {
	r := newTestNotionReader(nil)

	options, err := r.ListOptions(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, options)
}

func TestNotionListAdviceBands(t *testing.T) {
	bandPage := notionapi.Page{
		ID: "b1",
		Properties: notionapi.Properties{
			"Tier":   titleProp("High"),
			"Min":    numberProp(6),
			"Max":    numberProp(100),
			"Advice": richTextProp("Urgent examination."),
		},
	}
	malformed := notionapi.Page{ID: "b2", Properties: notionapi.Properties{"Min": numberProp(0)}}

	r := newTestNotionReader(map[string][]notionapi.Page{
		"db-bands": {bandPage, malformed},
	})

	bands, err := r.ListAdviceBands(context.Background())

	require.NoError(t, err)
	require.Len(t, bands, 1)
	assert.Equal(t, "High", bands[0].Tier)
	assert.Equal(t, 6, bands[0].MinScore)
	assert.Equal(t, 100, bands[0].MaxScore)
	assert.Equal(t, "Urgent examination.", bands[0].Advice)
}

func TestNotionQueryErrorSurfaces(t *testing.T) {
	r := NewNotionReader(&fakeNotionClient{err: errors.New("503")}, NotionDatabases{Questions: testDBID})

	_, err := r.ListActiveQuestions(context.Background())

	require.Error(t, err)
}
