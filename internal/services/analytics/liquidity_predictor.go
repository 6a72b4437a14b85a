package analytics

import (
	"math"

	"UpgradeRisk/internal/domain/models"
	domsvc "UpgradeRisk/internal/domain/service"
)

const liquidityWindow = 7

// TrendLiquidityPredictor projects the TVL shift of an upgrade from the recent TVL trend.
type TrendLiquidityPredictor struct{}

func NewLiquidityPredictor() *TrendLiquidityPredictor { return &TrendLiquidityPredictor{} }

func (TrendLiquidityPredictor) Predict(tvl []float64, t models.UpgradeType, riskScore float64) models.LiquidityPrediction {
	if len(tvl) == 0 {
		return models.LiquidityPrediction{ExpectedShiftPercent: 0, Confidence: 0, Timeframe: "1-7 days"}
	}
	riskScore = clamp(riskScore, 0, 100)

	start := len(tvl) - liquidityWindow
	if start < 0 {
		start = 0
	}
	recent := tvl[start:]

	trend := 0.0
	if first := recent[0]; first > 0 {
		trend = (recent[len(recent)-1] - first) / first
	}

	base := trend * riskMultiplier(t) * (1 + riskScore/100)
	base += typeAdjustment(t, riskScore)

	confidence := math.Max(0.3, 1-meanAbsRelativeChange(recent))

	timeframe := "3-7 days"
	if riskScore > 70 {
		timeframe = "1-3 days"
	}

	return models.LiquidityPrediction{
		ExpectedShiftPercent: roundHalfUp(base*10000) / 100,
		Confidence:           int(roundHalfUp(100 * confidence)),
		Timeframe:            timeframe,
	}
}

func riskMultiplier(t models.UpgradeType) float64 {
	switch t {
	case models.UpgradeImplementation:
		return 1.5
	case models.UpgradeGovernance:
		return 1.2
	default:
		return 1.0
	}
}

func typeAdjustment(t models.UpgradeType, riskScore float64) float64 {
	switch t {
	case models.UpgradeImplementation:
		switch {
		case riskScore > 80:
			return -0.15
		case riskScore > 60:
			return -0.05
		default:
			return 0.02
		}
	case models.UpgradeGovernance:
		if riskScore > 70 {
			return -0.08
		}
		return 0.01
	default:
		return 0
	}
}

// meanAbsRelativeChange is 1.0 for fewer than two points.
// Steps whose previous value is not positive contribute nothing.
func meanAbsRelativeChange(series []float64) float64 {
	if len(series) < 2 {
		return 1.0
	}
	sum := 0.0
	for i := 1; i < len(series); i++ {
		prev := series[i-1]
		if prev <= 0 {
			continue
		}
		sum += math.Abs((series[i] - prev) / prev)
	}
	return sum / float64(len(series)-1)
}

var _ domsvc.LiquidityPredictor = (*TrendLiquidityPredictor)(nil)
