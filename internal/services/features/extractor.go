package features

import (
	"math"

	"UpgradeRisk/internal/domain/models"
)

// TradingDaysPerYear annualizes daily volatility.
const TradingDaysPerYear = 252

// LogReturns computes r_t = ln(p_t / p_{t-1}).
// It returns a slice of length len(prices)-1, or nil if insufficient data.
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		cur := prices[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// AnnualizedVolatility is the population standard deviation of daily log returns scaled by sqrt(252).
func AnnualizedVolatility(prices []float64) float64 {
	returns := LogReturns(prices)
	if len(returns) == 0 {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for _, r := range returns {
		sum += r
		sum2 += r * r
	}
	n := float64(len(returns))
	mean := sum / n
	variance := sum2/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * TradingDaysPerYear)
}

// Prices projects observations onto their USD price, oldest first.
func Prices(obs []models.MarketObservation) []float64 {
	out := make([]float64, 0, len(obs))
	for _, o := range obs {
		out = append(out, o.PriceUSD)
	}
	return out
}

// TVL projects observations onto their total value locked, oldest first.
func TVL(obs []models.MarketObservation) []float64 {
	out := make([]float64, 0, len(obs))
	for _, o := range obs {
		out = append(out, o.TVLUSD)
	}
	return out
}

// RiskFactorsFromHistory derives scorer inputs from stored history.
// Volatility is the annualized fraction; liquidity ratio is the latest volume/TVL capped at 1.
func RiskFactorsFromHistory(obs []models.MarketObservation, governanceParticipation, technicalComplexity float64) models.RiskFactors {
	prices := Prices(obs)
	liquidityRatio := 0.0
	if n := len(obs); n > 0 && obs[n-1].TVLUSD > 0 {
		liquidityRatio = math.Min(obs[n-1].Volume24h/obs[n-1].TVLUSD, 1)
	}
	return models.RiskFactors{
		Volatility:              AnnualizedVolatility(prices),
		LiquidityRatio:          liquidityRatio,
		GovernanceParticipation: governanceParticipation,
		TechnicalComplexity:     technicalComplexity,
	}
}
