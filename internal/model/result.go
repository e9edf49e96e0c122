package model

// ContributingFactor records one answer that added points to the total.
// Factors are emitted in catalog iteration order, not score order.
type ContributingFactor struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Score    int    `json:"score"`
}

// ScoreResult is the engine's output for one assessment.
type ScoreResult struct {
	TotalScore          int                  `json:"total_score"`
	ContributingFactors []ContributingFactor `json:"contributing_factors"`
	RiskTier            RiskTier             `json:"risk_tier"`
	Advice              string               `json:"advice"`
}
