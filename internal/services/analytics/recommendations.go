package analytics

import (
	"fmt"
	"math"
	"strconv"

	"UpgradeRisk/internal/domain/models"
	domsvc "UpgradeRisk/internal/domain/service"
)

const (
	HedgeProtectivePuts = "Consider protective puts"
	HedgeDiversifyDEXs  = "Diversify across DEXs"
	HedgeTrailingStops  = "Implement trailing stops"
)

// RuleRecommendationComposer maps a risk profile to guidance with a fixed rule table.
// Every comparison is strict.
type RuleRecommendationComposer struct{}

func NewRecommendationComposer() *RuleRecommendationComposer { return &RuleRecommendationComposer{} }

func (RuleRecommendationComposer) Compose(riskScore, volatilityImpact, liquidityShift float64) models.Recommendations {
	riskScore = clamp(riskScore, 0, 100)
	absShift := math.Abs(liquidityShift)

	timing := models.Timing{
		Optimal:    "post-upgrade stabilization",
		Avoid:      "high volatility periods",
		Confidence: math.Max(60, 100-riskScore/2),
	}
	switch {
	case riskScore > 80:
		timing.Optimal = "pre-upgrade window"
	case riskScore > 60:
		timing.Optimal = "during voting period"
	}
	if riskScore > 70 {
		timing.Avoid = "first 24h after upgrade"
	}

	sizing := models.PositionSizing{
		Recommended:        "maintain",
		MaxExposurePercent: math.Max(5, 25-riskScore/4),
		Reasoning: fmt.Sprintf("Based on %s risk score and %s%% volatility impact",
			strconv.FormatFloat(riskScore, 'f', -1, 64),
			strconv.FormatFloat(math.Abs(volatilityImpact), 'f', -1, 64)),
	}
	switch {
	case riskScore > 80:
		sizing.Recommended = "reduce 30-50%"
	case riskScore > 60:
		sizing.Recommended = "reduce 10-20%"
	}

	hedges := []string{}
	if riskScore > 70 {
		hedges = append(hedges, HedgeProtectivePuts)
	}
	if absShift > 10 {
		hedges = append(hedges, HedgeDiversifyDEXs)
	}
	if volatilityImpact > 15 {
		hedges = append(hedges, HedgeTrailingStops)
	}

	level := "Moderate"
	switch {
	case riskScore > 80:
		level = "Critical"
	case riskScore > 60:
		level = "High"
	}

	return models.Recommendations{
		Timing:            timing,
		PositionSizing:    sizing,
		HedgingStrategies: hedges,
		AlertThresholds: models.AlertThresholds{
			PriceChangePercent:     math.Max(5, riskScore/5),
			VolumeChangePercent:    math.Max(20, riskScore/2),
			LiquidityChangePercent: math.Max(10, absShift*2),
		},
		RiskLevel: level,
	}
}

var _ domsvc.RecommendationComposer = (*RuleRecommendationComposer)(nil)
