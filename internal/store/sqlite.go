package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/clearsight-health/riskscore/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS questions (
	id             TEXT PRIMARY KEY,
	text           TEXT NOT NULL,
	type           TEXT NOT NULL DEFAULT 'free_text',
	category       TEXT NOT NULL DEFAULT '',
	display_order  INTEGER NOT NULL DEFAULT 0,
	active         INTEGER NOT NULL DEFAULT 1,
	help_text      TEXT NOT NULL DEFAULT '',
	parent_id      TEXT NOT NULL DEFAULT '',
	parent_answer  TEXT NOT NULL DEFAULT '',
	admin_authored INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS question_options (
	id            TEXT PRIMARY KEY,
	question_id   TEXT NOT NULL REFERENCES questions(id),
	value         TEXT NOT NULL,
	label         TEXT NOT NULL DEFAULT '',
	score         INTEGER,
	display_order INTEGER NOT NULL DEFAULT 0,
	UNIQUE (question_id, value)
);

CREATE TABLE IF NOT EXISTS advice_bands (
	tier_key  TEXT PRIMARY KEY,
	tier      TEXT NOT NULL,
	min_score INTEGER NOT NULL,
	max_score INTEGER NOT NULL,
	advice    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_questions_active ON questions(active);
CREATE INDEX IF NOT EXISTS idx_options_question_id ON question_options(question_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListCatalog(ctx context.Context) ([]model.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT q.id, q.text, q.type, q.category, q.display_order, q.help_text,
		       q.parent_id, q.parent_answer, q.admin_authored, q.created_at,
		       o.id, o.value, o.label, o.score, o.display_order
		FROM questions q
		LEFT JOIN question_options o ON o.question_id = q.id
		WHERE q.active = 1
		ORDER BY q.id, o.display_order`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list catalog")
	}
	defer rows.Close()

	var questions []model.Question
	index := make(map[string]int)
	for rows.Next() {
		var q model.Question
		var optID, optValue, optLabel sql.NullString
		var optScore, optOrder sql.NullInt64
		err := rows.Scan(
			&q.ID, &q.Text, &q.Type, &q.Category, &q.DisplayOrder, &q.HelpText,
			&q.ParentID, &q.ParentAnswer, &q.AdminAuthored, &q.CreatedAt,
			&optID, &optValue, &optLabel, &optScore, &optOrder,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan catalog row")
		}
		q.Active = true

		i, seen := index[q.ID]
		if !seen {
			questions = append(questions, q)
			i = len(questions) - 1
			index[q.ID] = i
		}
		if optID.Valid {
			opt := model.Option{
				ID:           optID.String,
				QuestionID:   q.ID,
				Value:        optValue.String,
				Label:        optLabel.String,
				DisplayOrder: int(optOrder.Int64),
			}
			if optScore.Valid {
				score := int(optScore.Int64)
				opt.Score = &score
			}
			questions[i].Options = append(questions[i].Options, opt)
		}
	}
	return questions, eris.Wrap(rows.Err(), "sqlite: list catalog iterate")
}

func (s *SQLiteStore) ListActiveQuestions(ctx context.Context) ([]model.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, type, category, display_order, help_text,
		       parent_id, parent_answer, admin_authored, created_at
		FROM questions
		WHERE active = 1`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list active questions")
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		err := rows.Scan(
			&q.ID, &q.Text, &q.Type, &q.Category, &q.DisplayOrder, &q.HelpText,
			&q.ParentID, &q.ParentAnswer, &q.AdminAuthored, &q.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan question")
		}
		q.Active = true
		questions = append(questions, q)
	}
	return questions, eris.Wrap(rows.Err(), "sqlite: list questions iterate")
}

func (s *SQLiteStore) ListOptions(ctx context.Context, questionIDs []string) ([]model.Option, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(questionIDs)), ",")
	args := make([]any, len(questionIDs))
	for i, id := range questionIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, value, label, score, display_order
		FROM question_options
		WHERE question_id IN (`+placeholders+`)
		ORDER BY question_id, display_order`, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list options")
	}
	defer rows.Close()

	var options []model.Option
	for rows.Next() {
		var o model.Option
		var score sql.NullInt64
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Value, &o.Label, &score, &o.DisplayOrder); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan option")
		}
		if score.Valid {
			v := int(score.Int64)
			o.Score = &v
		}
		options = append(options, o)
	}
	return options, eris.Wrap(rows.Err(), "sqlite: list options iterate")
}

func (s *SQLiteStore) ListAdviceBands(ctx context.Context) ([]model.AdviceBand, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tier, min_score, max_score, advice
		FROM advice_bands
		ORDER BY min_score`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list advice bands")
	}
	defer rows.Close()

	var bands []model.AdviceBand
	for rows.Next() {
		var b model.AdviceBand
		if err := rows.Scan(&b.Tier, &b.MinScore, &b.MaxScore, &b.Advice); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan advice band")
		}
		bands = append(bands, b)
	}
	return bands, eris.Wrap(rows.Err(), "sqlite: list bands iterate")
}

func (s *SQLiteStore) UpsertQuestion(ctx context.Context, q model.Question) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO questions
			(id, text, type, category, display_order, active, help_text,
			 parent_id, parent_answer, admin_authored, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			type = excluded.type,
			category = excluded.category,
			display_order = excluded.display_order,
			active = excluded.active,
			help_text = excluded.help_text,
			parent_id = excluded.parent_id,
			parent_answer = excluded.parent_answer,
			admin_authored = excluded.admin_authored`,
		q.ID, q.Text, string(q.Type), q.Category, q.DisplayOrder, q.Active,
		q.HelpText, q.ParentID, q.ParentAnswer, q.AdminAuthored, q.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: upsert question %s", q.ID)
}

func (s *SQLiteStore) UpsertOption(ctx context.Context, o model.Option) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}

	var score any
	if o.Score != nil {
		score = *o.Score
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO question_options
			(id, question_id, value, label, score, display_order)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(question_id, value) DO UPDATE SET
			label = excluded.label,
			score = excluded.score,
			display_order = excluded.display_order`,
		o.ID, o.QuestionID, o.Value, o.Label, score, o.DisplayOrder,
	)
	return eris.Wrapf(err, "sqlite: upsert option %s", o.Value)
}

func (s *SQLiteStore) UpsertAdviceBand(ctx context.Context, b model.AdviceBand) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO advice_bands (tier_key, tier, min_score, max_score, advice)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(tier_key) DO UPDATE SET
			tier = excluded.tier,
			min_score = excluded.min_score,
			max_score = excluded.max_score,
			advice = excluded.advice`,
		strings.ToLower(strings.TrimSpace(b.Tier)), b.Tier, b.MinScore, b.MaxScore, b.Advice,
	)
	return eris.Wrapf(err, "sqlite: upsert advice band %s", b.Tier)
}
