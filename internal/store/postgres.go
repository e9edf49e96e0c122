package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/clearsight-health/riskscore/internal/model"
)

// Pool is the subset of pgxpool.Pool used by the store. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS questions (
	id             TEXT PRIMARY KEY,
	text           TEXT NOT NULL,
	type           TEXT NOT NULL DEFAULT 'free_text',
	category       TEXT NOT NULL DEFAULT '',
	display_order  INTEGER NOT NULL DEFAULT 0,
	active         BOOLEAN NOT NULL DEFAULT TRUE,
	help_text      TEXT NOT NULL DEFAULT '',
	parent_id      TEXT NOT NULL DEFAULT '',
	parent_answer  TEXT NOT NULL DEFAULT '',
	admin_authored BOOLEAN NOT NULL DEFAULT FALSE,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
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

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ListCatalog(ctx context.Context) ([]model.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT q.id, q.text, q.type, q.category, q.display_order, q.help_text,
		       q.parent_id, q.parent_answer, q.admin_authored, q.created_at,
		       o.id, o.value, o.label, o.score, o.display_order
		FROM questions q
		LEFT JOIN question_options o ON o.question_id = q.id
		WHERE q.active
		ORDER BY q.id, o.display_order`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list catalog")
	}
	defer rows.Close()

	var questions []model.Question
	index := make(map[string]int)
	for rows.Next() {
		var q model.Question
		var qType string
		var optID, optValue, optLabel *string
		var optScore, optOrder *int
		err := rows.Scan(
			&q.ID, &q.Text, &qType, &q.Category, &q.DisplayOrder, &q.HelpText,
			&q.ParentID, &q.ParentAnswer, &q.AdminAuthored, &q.CreatedAt,
			&optID, &optValue, &optLabel, &optScore, &optOrder,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan catalog row")
		}
		q.Type = model.QuestionType(qType)
		q.Active = true

		i, seen := index[q.ID]
		if !seen {
			questions = append(questions, q)
			i = len(questions) - 1
			index[q.ID] = i
		}
		if optID != nil {
			opt := model.Option{
				ID:         *optID,
				QuestionID: q.ID,
				Score:      optScore,
			}
			if optValue != nil {
				opt.Value = *optValue
			}
			if optLabel != nil {
				opt.Label = *optLabel
			}
			if optOrder != nil {
				opt.DisplayOrder = *optOrder
			}
			questions[i].Options = append(questions[i].Options, opt)
		}
	}
	return questions, eris.Wrap(rows.Err(), "postgres: list catalog iterate")
}

func (s *PostgresStore) ListActiveQuestions(ctx context.Context) ([]model.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, text, type, category, display_order, help_text,
		       parent_id, parent_answer, admin_authored, created_at
		FROM questions
		WHERE active`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list active questions")
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		var qType string
		err := rows.Scan(
			&q.ID, &q.Text, &qType, &q.Category, &q.DisplayOrder, &q.HelpText,
			&q.ParentID, &q.ParentAnswer, &q.AdminAuthored, &q.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan question")
		}
		q.Type = model.QuestionType(qType)
		q.Active = true
		questions = append(questions, q)
	}
	return questions, eris.Wrap(rows.Err(), "postgres: list questions iterate")
}

func (s *PostgresStore) ListOptions(ctx context.Context, questionIDs []string) ([]model.Option, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, question_id, value, label, score, display_order
		FROM question_options
		WHERE question_id = ANY($1)
		ORDER BY question_id, display_order`, questionIDs)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list options")
	}
	defer rows.Close()

	var options []model.Option
	for rows.Next() {
		var o model.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Value, &o.Label, &o.Score, &o.DisplayOrder); err != nil {
			return nil, eris.Wrap(err, "postgres: scan option")
		}
		options = append(options, o)
	}
	return options, eris.Wrap(rows.Err(), "postgres: list options iterate")
}

func (s *PostgresStore) ListAdviceBands(ctx context.Context) ([]model.AdviceBand, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT tier, min_score, max_score, advice
		FROM advice_bands
		ORDER BY min_score`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list advice bands")
	}
	defer rows.Close()

	var bands []model.AdviceBand
	for rows.Next() {
		var b model.AdviceBand
		if err := rows.Scan(&b.Tier, &b.MinScore, &b.MaxScore, &b.Advice); err != nil {
			return nil, eris.Wrap(err, "postgres: scan advice band")
		}
		bands = append(bands, b)
	}
	return bands, eris.Wrap(rows.Err(), "postgres: list bands iterate")
}

func (s *PostgresStore) UpsertQuestion(ctx context.Context, q model.Question) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO questions
			(id, text, type, category, display_order, active, help_text,
			 parent_id, parent_answer, admin_authored, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			type = EXCLUDED.type,
			category = EXCLUDED.category,
			display_order = EXCLUDED.display_order,
			active = EXCLUDED.active,
			help_text = EXCLUDED.help_text,
			parent_id = EXCLUDED.parent_id,
			parent_answer = EXCLUDED.parent_answer,
			admin_authored = EXCLUDED.admin_authored`,
		q.ID, q.Text, string(q.Type), q.Category, q.DisplayOrder, q.Active,
		q.HelpText, q.ParentID, q.ParentAnswer, q.AdminAuthored, q.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: upsert question %s", q.ID)
}

func (s *PostgresStore) UpsertOption(ctx context.Context, o model.Option) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO question_options
			(id, question_id, value, label, score, display_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (question_id, value) DO UPDATE SET
			label = EXCLUDED.label,
			score = EXCLUDED.score,
			display_order = EXCLUDED.display_order`,
		o.ID, o.QuestionID, o.Value, o.Label, o.Score, o.DisplayOrder,
	)
	return eris.Wrapf(err, "postgres: upsert option %s", o.Value)
}

func (s *PostgresStore) UpsertAdviceBand(ctx context.Context, b model.AdviceBand) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO advice_bands (tier_key, tier, min_score, max_score, advice)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tier_key) DO UPDATE SET
			tier = EXCLUDED.tier,
			min_score = EXCLUDED.min_score,
			max_score = EXCLUDED.max_score,
			advice = EXCLUDED.advice`,
		strings.ToLower(strings.TrimSpace(b.Tier)), b.Tier, b.MinScore, b.MaxScore, b.Advice,
	)
	return eris.Wrapf(err, "postgres: upsert advice band %s", b.Tier)
}
