package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"UpgradeRisk/internal/domain/models"
)

func TestPortfolioConcentrated(t *testing.T) {
	upgrade := models.UpgradeMetadata{Type: models.UpgradeImplementation, RiskScore: 80, VolatilityImpact: 20, LiquidityShift: -15}
	positions := []models.PortfolioPosition{
		{Protocol: "Aave", Weight: 0.3},
		{Protocol: "Uniswap", Weight: 0.2},
		{Protocol: "Curve", Weight: 0.2},
		{Protocol: "Lido", Weight: 0.1},
		{Protocol: "Maker", Weight: 0.1},
		{Protocol: "GMX", Weight: 0.1},
	}
	got := NewPortfolioAnalyzer().Analyze(upgrade, "Aave", positions)

	assert.InDelta(t, 24.0, got.CorrelationRisk, 1e-9)
	assert.Equal(t, 40.0, got.DiversificationScore)
	assert.Equal(t, []string{
		"Consider reducing exposure to Aave",
		"Implement volatility-based stop losses",
		"Monitor liquidity pools closely",
		"Increase portfolio diversification",
	}, got.RecommendedActions)
	assert.Equal(t, []string{
		"Short-term put options on protocol token",
		"VIX-based hedging strategies",
		"Diversify across multiple DEXs",
	}, got.HedgingStrategies)
}

func TestPortfolioDefaults(t *testing.T) {
	a := NewPortfolioAnalyzer()
	upgrade := models.UpgradeMetadata{RiskScore: 33.333}

	none := a.Analyze(upgrade, "Aave", nil)
	assert.Equal(t, 3.33, none.CorrelationRisk)
	assert.Equal(t, 70.0, none.DiversificationScore)
	assert.NotNil(t, none.RecommendedActions)
	assert.Empty(t, none.RecommendedActions)
	assert.Empty(t, none.HedgingStrategies)

	empty := a.Analyze(upgrade, "Aave", []models.PortfolioPosition{})
	assert.Equal(t, 100.0, empty.DiversificationScore)

	many := make([]models.PortfolioPosition, 12)
	assert.Equal(t, 20.0, a.Analyze(upgrade, "Aave", many).DiversificationScore)
}

func TestPortfolioZeroWeightFallsBackToDefault(t *testing.T) {
	upgrade := models.UpgradeMetadata{RiskScore: 60}
	got := NewPortfolioAnalyzer().Analyze(upgrade, "Aave", []models.PortfolioPosition{{Protocol: "Aave", Weight: 0}})
	assert.Equal(t, 6.0, got.CorrelationRisk)
}
