package store

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/clearsight-health/riskscore/internal/model"
)

// SeedFile is a YAML questionnaire definition used to populate a store.
type SeedFile struct {
	Questions []SeedQuestion `yaml:"questions"`
	Bands     []SeedBand     `yaml:"advice_bands"`
}

// SeedQuestion defines one question and its options.
type SeedQuestion struct {
	ID           string       `yaml:"id"`
	Text         string       `yaml:"text"`
	Type         string       `yaml:"type"`
	Category     string       `yaml:"category"`
	Order        int          `yaml:"order"`
	Help         string       `yaml:"help"`
	ParentID     string       `yaml:"parent_id"`
	ParentAnswer string       `yaml:"parent_answer"`
	Admin        bool         `yaml:"admin"`
	Options      []SeedOption `yaml:"options"`
}

// SeedOption defines one selectable option. Score is nullable; absent means
// the option carries no points.
type SeedOption struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
	Score *int   `yaml:"score"`
	Order int    `yaml:"order"`
}

// SeedBand defines one advice band.
type SeedBand struct {
	Tier   string `yaml:"tier"`
	Min    int    `yaml:"min"`
	Max    int    `yaml:"max"`
	Advice string `yaml:"advice"`
}

// LoadSeedFile reads a questionnaire seed definition from a YAML file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: read seed file %s", path)
	}

	var sf SeedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, eris.Wrap(err, "store: parse seed file")
	}

	for i, q := range sf.Questions {
		if q.Text == "" {
			return nil, eris.Errorf("store: seed question %d has no text", i)
		}
	}
	return &sf, nil
}

// Apply upserts the seed definition into the store. Returns the number of
// questions, options, and bands written.
func (sf *SeedFile) Apply(ctx context.Context, s Store) (questions, options, bands int, err error) {
	for _, sq := range sf.Questions {
		if sq.ID == "" {
			// Options below need the parent ID, so assign it here
			// rather than letting the store generate one.
			sq.ID = uuid.New().String()
		}
		q := model.Question{
			ID:            sq.ID,
			Text:          sq.Text,
			Type:          model.QuestionType(sq.Type),
			Category:      sq.Category,
			DisplayOrder:  sq.Order,
			Active:        true,
			HelpText:      sq.Help,
			ParentID:      sq.ParentID,
			ParentAnswer:  sq.ParentAnswer,
			AdminAuthored: sq.Admin,
		}
		if q.Type == "" {
			if len(sq.Options) > 0 {
				q.Type = model.TypeSingleSelect
			} else {
				q.Type = model.TypeFreeText
			}
		}
		if err := s.UpsertQuestion(ctx, q); err != nil {
			return questions, options, bands, err
		}
		questions++

		for i, so := range sq.Options {
			order := so.Order
			if order == 0 {
				order = i + 1
			}
			o := model.Option{
				QuestionID:   q.ID,
				Value:        so.Value,
				Label:        so.Label,
				Score:        so.Score,
				DisplayOrder: order,
			}
			if err := s.UpsertOption(ctx, o); err != nil {
				return questions, options, bands, err
			}
			options++
		}
	}

	for _, sb := range sf.Bands {
		b := model.AdviceBand{
			Tier:     sb.Tier,
			MinScore: sb.Min,
			MaxScore: sb.Max,
			Advice:   sb.Advice,
		}
		if err := s.UpsertAdviceBand(ctx, b); err != nil {
			return questions, options, bands, err
		}
		bands++
	}

	zap.L().Info("store: seed applied",
		zap.Int("questions", questions),
		zap.Int("options", options),
		zap.Int("bands", bands),
	)
	return questions, options, bands, nil
}
