package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/clearsight-health/riskscore/internal/advice"
	"github.com/clearsight-health/riskscore/internal/catalog"
	"github.com/clearsight-health/riskscore/internal/engine"
	"github.com/clearsight-health/riskscore/internal/scoring"
	"github.com/clearsight-health/riskscore/internal/store"
	"github.com/clearsight-health/riskscore/pkg/notion"
)

// openStore constructs the configured store backend and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		s   store.Store
		err error
	)

	switch cfg.Store.Driver {
	case "sqlite", "":
		s, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		s, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// secondaryReader returns the Notion-backed reader when fully configured,
// otherwise nil.
func secondaryReader() store.Reader {
	if !cfg.Notion.Enabled() {
		return nil
	}
	client := notion.NewClient(cfg.Notion.Token, notion.WithRateLimit(cfg.Notion.RateLimitRPS))
	return store.NewNotionReader(client, store.NotionDatabases{
		Questions: cfg.Notion.QuestionDB,
		Options:   cfg.Notion.OptionDB,
		Bands:     cfg.Notion.BandDB,
	})
}

// buildEngine wires the scoring engine over the configured store. The caller
// owns closing the returned store.
func buildEngine(ctx context.Context) (*engine.Engine, store.Store, error) {
	s, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	secondary := secondaryReader()
	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = engine.DefaultCacheTTL
	}

	scorer := scoring.NewScorer()
	if !cfg.Scoring.Heuristics {
		scorer.WithHeuristics(nil)
	}

	eng := engine.New(
		catalog.NewLoader(s, secondary),
		scorer,
		advice.NewResolver(s, secondary),
		ttl,
	)
	return eng, s, nil
}
