package analytics

import (
	"math"

	"UpgradeRisk/internal/domain/models"
	domsvc "UpgradeRisk/internal/domain/service"
)

// Factor weights of the risk score. They sum to 1.0.
const (
	WeightVolatility = 0.30
	WeightLiquidity  = 0.25
	WeightGovernance = 0.25
	WeightTechnical  = 0.20
)

// WeightedRiskScorer combines market and governance factors into a bounded score.
// Inputs are never validated; only the weighted sum is clamped.
type WeightedRiskScorer struct{}

func NewRiskScorer() *WeightedRiskScorer { return &WeightedRiskScorer{} }

func (WeightedRiskScorer) Score(f models.RiskFactors) int {
	normalizedVolatility := math.Min(f.Volatility*10, 100)
	liquidityScore := (1 - f.LiquidityRatio) * 100
	governanceScore := (1 - f.GovernanceParticipation) * 100
	technicalScore := f.TechnicalComplexity

	sum := normalizedVolatility*WeightVolatility +
		liquidityScore*WeightLiquidity +
		governanceScore*WeightGovernance +
		technicalScore*WeightTechnical

	return int(roundHalfUp(clamp(sum, 0, 100)))
}

// RiskLevel labels a 0-100 risk score.
func RiskLevel(score int) string {
	switch {
	case score > 80:
		return "High"
	case score > 60:
		return "Medium"
	default:
		return "Low"
	}
}

// RiskAdvice is the one-line allocation advice shown next to a score.
func RiskAdvice(score int) string {
	switch {
	case score > 80:
		return "HIGH RISK - Consider reducing exposure"
	case score > 60:
		return "MEDIUM RISK - Monitor closely"
	default:
		return "LOW RISK - Safe for current allocation"
	}
}

var _ domsvc.RiskScorer = (*WeightedRiskScorer)(nil)
