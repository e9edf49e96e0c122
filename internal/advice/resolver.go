// Package advice maps a total score to a risk tier and recommendation text
// using administrator-configured score bands.
package advice

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/clearsight-health/riskscore/internal/model"
	"github.com/clearsight-health/riskscore/internal/resilience"
	"github.com/clearsight-health/riskscore/internal/store"
)

// GenericAdvice is returned when no configured recommendation is available.
const GenericAdvice = "Please consult an eye care professional to discuss your individual risk factors."

var fallbackAdvice = map[model.RiskTier]string{
	model.TierLow:      "Your risk appears low. Keep up routine eye examinations every one to two years.",
	model.TierModerate: "Your risk appears moderate. Schedule a comprehensive eye examination within the next few months.",
	model.TierHigh:     "Your risk appears high. Please arrange a comprehensive eye examination as soon as possible.",
	model.TierUnknown:  GenericAdvice,
}

// TierForScore is the fixed threshold rule used when no configured band
// covers the score.
func TierForScore(total int) model.RiskTier {
	switch {
	case total <= 2:
		return model.TierLow
	case total <= 5:
		return model.TierModerate
	default:
		return model.TierHigh
	}
}

// FallbackBands is the hardcoded band table used when the advice
// configuration source is entirely unreachable.
func FallbackBands() []model.AdviceBand {
	return []model.AdviceBand{
		{Tier: string(model.TierLow), MinScore: 0, MaxScore: 2, Advice: fallbackAdvice[model.TierLow]},
		{Tier: string(model.TierModerate), MinScore: 3, MaxScore: 5, Advice: fallbackAdvice[model.TierModerate]},
		{Tier: string(model.TierHigh), MinScore: 6, MaxScore: math.MaxInt32, Advice: fallbackAdvice[model.TierHigh]},
	}
}

// Resolve maps a total score onto the configured bands. The first band
// containing the score wins, bounds inclusive. A gap in the configured
// bands, or an empty band set, falls back to the threshold rule with generic
// tier advice. A matched band whose label cannot be canonicalized keeps its
// advice text but takes the threshold-computed tier.
func Resolve(total int, bands []model.AdviceBand) (model.RiskTier, string) {
	for _, b := range bands {
		if !b.Contains(total) {
			continue
		}

		tier, ok := model.ParseTier(b.Tier)
		if !ok {
			tier = TierForScore(total)
			zap.L().Warn("advice: band label failed to normalize",
				zap.String("label", b.Tier),
				zap.String("computed_tier", string(tier)),
			)
		}

		text := b.Advice
		if text == "" {
			text = fallbackAdvice[tier]
		}
		return tier, text
	}

	tier := TierForScore(total)
	return tier, fallbackAdvice[tier]
}

// Resolver loads advice bands through a fallback chain ending in the
// hardcoded table, so band resolution can never fail outright.
type Resolver struct {
	chain *resilience.Chain[[]model.AdviceBand]
}

// NewResolver builds a band resolver over the primary reader. secondary may
// be nil.
func NewResolver(primary store.Reader, secondary store.Reader) *Resolver {
	retry := resilience.DefaultRetryConfig()
	primaryCB := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		ShouldTrip: resilience.IsTransient,
	})

	strategies := []resilience.Strategy[[]model.AdviceBand]{
		resilience.WithBreaker(resilience.WithRetry(resilience.Strategy[[]model.AdviceBand]{
			Name:  "store-bands",
			Fetch: primary.ListAdviceBands,
		}, retry), primaryCB),
	}

	if secondary != nil {
		strategies = append(strategies, resilience.WithRetry(resilience.Strategy[[]model.AdviceBand]{
			Name:  "secondary-bands",
			Fetch: secondary.ListAdviceBands,
		}, retry))
	}

	strategies = append(strategies, resilience.Strategy[[]model.AdviceBand]{
		Name:     "static-bands",
		Fallback: true,
		Fetch: func(ctx context.Context) ([]model.AdviceBand, error) {
			return FallbackBands(), nil
		},
	})

	return &Resolver{chain: resilience.NewChain("advice-bands", strategies...)}
}

// LoadBands returns the configured bands. The boolean reports whether the
// result came from the static fallback, in which case callers must not cache
// it.
func (r *Resolver) LoadBands(ctx context.Context) ([]model.AdviceBand, bool, error) {
	return r.chain.Resolve(ctx)
}
