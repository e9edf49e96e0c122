package store

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/clearsight-health/riskscore/internal/model"
	"github.com/clearsight-health/riskscore/pkg/notion"
)

// NotionDatabases holds the IDs of the three Notion databases clinic
// administrators edit.
type NotionDatabases struct {
	Questions string
	Options   string
	Bands     string
}

// NotionReader is a read-only configuration source backed by Notion
// databases. It implements Reader; the joined catalog path is unsupported, so
// the resilience chain always takes the scan path through it.
type NotionReader struct {
	client notion.Client
	dbs    NotionDatabases
}

// NewNotionReader creates a NotionReader over the given client and databases.
func NewNotionReader(client notion.Client, dbs NotionDatabases) *NotionReader {
	return &NotionReader{client: client, dbs: dbs}
}

func (r *NotionReader) ListCatalog(ctx context.Context) ([]model.Question, error) {
	return nil, ErrUnsupported
}

func (r *NotionReader) ListActiveQuestions(ctx context.Context) ([]model.Question, error) {
	filter := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Status",
			Status:   &notionapi.StatusFilterCondition{Equals: "Active"},
		},
	}

	pages, err := notion.QueryAll(ctx, r.client, r.dbs.Questions, filter)
	if err != nil {
		return nil, eris.Wrap(err, "notion: list active questions")
	}

	var questions []model.Question
	for _, p := range pages {
		q, err := parseQuestionPage(p)
		if err != nil {
			zap.L().Warn("notion: skipping malformed question page",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (r *NotionReader) ListOptions(ctx context.Context, questionIDs []string) ([]model.Option, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}

	pages, err := notion.QueryAll(ctx, r.client, r.dbs.Options, nil)
	if err != nil {
		return nil, eris.Wrap(err, "notion: list options")
	}

	wanted := make(map[string]bool, len(questionIDs))
	for _, id := range questionIDs {
		wanted[id] = true
	}

	var options []model.Option
	for _, p := range pages {
		o, err := parseOptionPage(p)
		if err != nil {
			zap.L().Warn("notion: skipping malformed option page",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		if wanted[o.QuestionID] {
			options = append(options, o)
		}
	}
	return options, nil
}

func (r *NotionReader) ListAdviceBands(ctx context.Context) ([]model.AdviceBand, error) {
	pages, err := notion.QueryAll(ctx, r.client, r.dbs.Bands, nil)
	if err != nil {
		return nil, eris.Wrap(err, "notion: list advice bands")
	}

	var bands []model.AdviceBand
	for _, p := range pages {
		b, err := parseBandPage(p)
		if err != nil {
			zap.L().Warn("notion: skipping malformed advice band page",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		bands = append(bands, b)
	}
	return bands, nil
}

func parseQuestionPage(p notionapi.Page) (model.Question, error) {
	q := model.Question{
		ID:        string(p.ID),
		Active:    true,
		CreatedAt: p.CreatedTime,
	}

	if tp, ok := p.Properties["Text"].(*notionapi.TitleProperty); ok {
		q.Text = plainText(tp.Title)
	}
	if sp, ok := p.Properties["Type"].(*notionapi.SelectProperty); ok {
		q.Type = model.QuestionType(sp.Select.Name)
	}
	if sp, ok := p.Properties["Category"].(*notionapi.SelectProperty); ok {
		q.Category = sp.Select.Name
	}
	if np, ok := p.Properties["Order"].(*notionapi.NumberProperty); ok {
		q.DisplayOrder = int(np.Number)
	}
	if rtp, ok := p.Properties["Help"].(*notionapi.RichTextProperty); ok {
		q.HelpText = plainText(rtp.RichText)
	}
	if cp, ok := p.Properties["Admin"].(*notionapi.CheckboxProperty); ok {
		q.AdminAuthored = cp.Checkbox
	}

	if q.Text == "" {
		return q, eris.New("missing Text property")
	}
	if q.Type == "" {
		q.Type = model.TypeFreeText
	}
	return q, nil
}

func parseOptionPage(p notionapi.Page) (model.Option, error) {
	o := model.Option{ID: string(p.ID)}

	if rp, ok := p.Properties["Question"].(*notionapi.RelationProperty); ok && len(rp.Relation) > 0 {
		o.QuestionID = string(rp.Relation[0].ID)
	}
	if tp, ok := p.Properties["Value"].(*notionapi.TitleProperty); ok {
		o.Value = plainText(tp.Title)
	}
	if rtp, ok := p.Properties["Label"].(*notionapi.RichTextProperty); ok {
		o.Label = plainText(rtp.RichText)
	}
	if np, ok := p.Properties["Score"].(*notionapi.NumberProperty); ok {
		score := int(np.Number)
		o.Score = &score
	}
	if np, ok := p.Properties["Order"].(*notionapi.NumberProperty); ok {
		o.DisplayOrder = int(np.Number)
	}

	if o.QuestionID == "" {
		return o, eris.New("missing Question relation")
	}
	if o.Value == "" {
		return o, eris.New("missing Value property")
	}
	return o, nil
}

func parseBandPage(p notionapi.Page) (model.AdviceBand, error) {
	var b model.AdviceBand

	if tp, ok := p.Properties["Tier"].(*notionapi.TitleProperty); ok {
		b.Tier = plainText(tp.Title)
	}
	if np, ok := p.Properties["Min"].(*notionapi.NumberProperty); ok {
		b.MinScore = int(np.Number)
	}
	if np, ok := p.Properties["Max"].(*notionapi.NumberProperty); ok {
		b.MaxScore = int(np.Number)
	}
	if rtp, ok := p.Properties["Advice"].(*notionapi.RichTextProperty); ok {
		b.Advice = plainText(rtp.RichText)
	}

	if b.Tier == "" {
		return b, eris.New("missing Tier property")
	}
	return b, nil
}

// plainText concatenates the plain_text values from a slice of RichText.
func plainText(rts []notionapi.RichText) string {
	var s string
	for _, rt := range rts {
		s += rt.PlainText
	}
	return s
}
