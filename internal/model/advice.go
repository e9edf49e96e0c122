package model

import "strings"

// RiskTier is the canonical risk classification vocabulary.
type RiskTier string

const (
	TierLow      RiskTier = "Low"
	TierModerate RiskTier = "Moderate"
	TierHigh     RiskTier = "High"
	TierUnknown  RiskTier = "Unknown"
)

// ParseTier canonicalizes an administrator-entered tier label by
// case-insensitive substring match. The second return is false when the label
// does not map to any canonical tier.
func ParseTier(label string) (RiskTier, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(l, "low"):
		return TierLow, true
	case strings.Contains(l, "mod"), strings.Contains(l, "med"):
		return TierModerate, true
	case strings.Contains(l, "high"):
		return TierHigh, true
	}
	return TierUnknown, false
}

// AdviceBand maps an inclusive score range to a risk tier and advice text.
// Bands are administrator-managed and upserted idempotently by tier label;
// the resolver tolerates gaps and overlaps between them.
type AdviceBand struct {
	Tier     string `json:"tier"`
	MinScore int    `json:"min_score"`
	MaxScore int    `json:"max_score"`
	Advice   string `json:"advice"`
}

// Contains reports whether score falls inside the band, bounds inclusive.
func (b AdviceBand) Contains(score int) bool {
	return score >= b.MinScore && score <= b.MaxScore
}
