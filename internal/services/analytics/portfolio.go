package analytics

import (
	"math"

	"UpgradeRisk/internal/domain/models"
	domsvc "UpgradeRisk/internal/domain/service"
)

const defaultProtocolWeight = 0.1

// PositionPortfolioAnalyzer estimates how concentrated a portfolio is in an upgrading protocol.
type PositionPortfolioAnalyzer struct{}

func NewPortfolioAnalyzer() *PositionPortfolioAnalyzer { return &PositionPortfolioAnalyzer{} }

// Analyze falls back to a 10% weight when the protocol is not among the
// positions or its position carries no weight.
func (PositionPortfolioAnalyzer) Analyze(upgrade models.UpgradeMetadata, protocol string, positions []models.PortfolioPosition) models.PortfolioImpact {
	weight := defaultProtocolWeight
	for _, p := range positions {
		if p.Protocol == protocol {
			if p.Weight != 0 {
				weight = p.Weight
			}
			break
		}
	}

	diversification := 70.0
	if positions != nil {
		diversification = math.Max(20, 100-float64(len(positions))*10)
	}

	impact := models.PortfolioImpact{
		CorrelationRisk:      round2(upgrade.RiskScore * weight),
		DiversificationScore: diversification,
		RecommendedActions:   []string{},
		HedgingStrategies:    []string{},
	}

	if impact.CorrelationRisk > 15 {
		impact.RecommendedActions = append(impact.RecommendedActions, "Consider reducing exposure to "+protocol)
		impact.HedgingStrategies = append(impact.HedgingStrategies, "Short-term put options on protocol token")
	}
	if upgrade.VolatilityImpact > 15 {
		impact.RecommendedActions = append(impact.RecommendedActions, "Implement volatility-based stop losses")
		impact.HedgingStrategies = append(impact.HedgingStrategies, "VIX-based hedging strategies")
	}
	if upgrade.LiquidityShift < -10 {
		impact.RecommendedActions = append(impact.RecommendedActions, "Monitor liquidity pools closely")
		impact.HedgingStrategies = append(impact.HedgingStrategies, "Diversify across multiple DEXs")
	}
	if diversification < 50 {
		impact.RecommendedActions = append(impact.RecommendedActions, "Increase portfolio diversification")
	}
	return impact
}

var _ domsvc.PortfolioAnalyzer = (*PositionPortfolioAnalyzer)(nil)
