// Package engine ties catalog loading, answer normalization, scoring, and
// advice resolution together behind the one public entry point.
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/clearsight-health/riskscore/internal/advice"
	"github.com/clearsight-health/riskscore/internal/cache"
	"github.com/clearsight-health/riskscore/internal/catalog"
	"github.com/clearsight-health/riskscore/internal/model"
	"github.com/clearsight-health/riskscore/internal/scoring"
)

// DefaultCacheTTL keeps configuration stable across the pages of a single
// questionnaire session while still picking up administrator edits within
// minutes.
const DefaultCacheTTL = 5 * time.Minute

// Engine computes risk scores from raw questionnaire answers. It holds the
// only process-wide state: one cache slot for the catalog and one for the
// advice bands. Safe for concurrent use.
type Engine struct {
	loader *catalog.Loader
	scorer *scoring.Scorer
	bands  *advice.Resolver

	catalogSlot *cache.Slot[[]model.Question]
	bandsSlot   *cache.Slot[[]model.AdviceBand]
}

// New creates an Engine. A non-positive ttl disables configuration caching.
func New(loader *catalog.Loader, scorer *scoring.Scorer, bands *advice.Resolver, ttl time.Duration) *Engine {
	return &Engine{
		loader:      loader,
		scorer:      scorer,
		bands:       bands,
		catalogSlot: cache.NewSlot[[]model.Question](ttl),
		bandsSlot:   cache.NewSlot[[]model.AdviceBand](ttl),
	}
}

// WithNow sets the clock used for cache TTL checks. Test hook.
func (e *Engine) WithNow(fn func() time.Time) *Engine {
	e.catalogSlot.WithNow(fn)
	e.bandsSlot.WithNow(fn)
	return e
}

// CalculateRiskScore scores one answer submission. It never returns an
// error: configuration-source failures degrade through the fallback chains,
// and an internal panic (which should never happen) yields the Unknown tier
// with generic advice.
func (e *Engine) CalculateRiskScore(ctx context.Context, rawAnswers map[string]string) (result model.ScoreResult) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("engine: panic during score calculation",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			result = model.ScoreResult{
				RiskTier: model.TierUnknown,
				Advice:   advice.GenericAdvice,
			}
		}
	}()

	cat, err := e.catalogSlot.GetOrLoad(ctx, e.loader.Load)
	if err != nil {
		// The catalog chain ends in the embedded baseline, so this only
		// happens on context cancellation.
		zap.L().Error("engine: catalog resolution failed", zap.Error(err))
	}

	answers := catalog.NormalizeAnswers(rawAnswers, cat)
	scored := e.scorer.Score(cat, answers)

	bands, err := e.bandsSlot.GetOrLoad(ctx, e.bands.LoadBands)
	if err != nil {
		zap.L().Error("engine: advice band resolution failed", zap.Error(err))
	}

	tier, text := advice.Resolve(scored.Total, bands)

	return model.ScoreResult{
		TotalScore:          scored.Total,
		ContributingFactors: scored.Factors,
		RiskTier:            tier,
		Advice:              text,
	}
}

// Catalog returns the current resolved catalog, going through the cache.
func (e *Engine) Catalog(ctx context.Context) ([]model.Question, error) {
	return e.catalogSlot.GetOrLoad(ctx, e.loader.Load)
}

// AdviceBands returns the current advice bands, going through the cache.
func (e *Engine) AdviceBands(ctx context.Context) ([]model.AdviceBand, error) {
	return e.bandsSlot.GetOrLoad(ctx, e.bands.LoadBands)
}
