package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"UpgradeRisk/internal/domain/models"
)

func TestRiskWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, WeightVolatility+WeightLiquidity+WeightGovernance+WeightTechnical, 1e-12)
}

func TestRiskScore(t *testing.T) {
	s := NewRiskScorer()
	cases := []struct {
		name string
		in   models.RiskFactors
		want int
	}{
		{"no risk", models.RiskFactors{Volatility: 0, LiquidityRatio: 1, GovernanceParticipation: 1, TechnicalComplexity: 0}, 0},
		{"saturated", models.RiskFactors{Volatility: 10, LiquidityRatio: 0, GovernanceParticipation: 0, TechnicalComplexity: 100}, 100},
		{"volatility saturates above 10", models.RiskFactors{Volatility: 50, LiquidityRatio: 1, GovernanceParticipation: 1}, 30},
		{"mixed", models.RiskFactors{Volatility: 5, LiquidityRatio: 0.6, GovernanceParticipation: 0.2, TechnicalComplexity: 40}, 53},
		{"negative sum clamps to zero", models.RiskFactors{Volatility: -50, LiquidityRatio: 2, GovernanceParticipation: 2, TechnicalComplexity: -100}, 0},
		{"large sum clamps to hundred", models.RiskFactors{Volatility: 1000, LiquidityRatio: -1, GovernanceParticipation: -1, TechnicalComplexity: 500}, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.Score(tc.in))
		})
	}
}

func TestRiskScoreAlwaysInRange(t *testing.T) {
	s := NewRiskScorer()
	for v := -5.0; v <= 20; v += 2.5 {
		for r := -0.5; r <= 1.5; r += 0.25 {
			for tc := -50.0; tc <= 150; tc += 50 {
				got := s.Score(models.RiskFactors{Volatility: v, LiquidityRatio: r, GovernanceParticipation: 1 - r, TechnicalComplexity: tc})
				assert.GreaterOrEqual(t, got, 0)
				assert.LessOrEqual(t, got, 100)
			}
		}
	}
}

func TestRiskLevelBoundaries(t *testing.T) {
	assert.Equal(t, "Low", RiskLevel(60))
	assert.Equal(t, "Medium", RiskLevel(61))
	assert.Equal(t, "Medium", RiskLevel(80))
	assert.Equal(t, "High", RiskLevel(81))

	assert.Equal(t, "LOW RISK - Safe for current allocation", RiskAdvice(60))
	assert.Equal(t, "MEDIUM RISK - Monitor closely", RiskAdvice(80))
	assert.Equal(t, "HIGH RISK - Consider reducing exposure", RiskAdvice(81))
}

func TestScoreNaNFactorStaysInRange(t *testing.T) {
	got := NewRiskScorer().Score(models.RiskFactors{Volatility: math.NaN()})
	assert.Equal(t, 0, got)
}
