package analytics

import (
	"math"

	"UpgradeRisk/internal/domain/models"
	domsvc "UpgradeRisk/internal/domain/service"
)

// GARCH(1,1) parameters. Fixed, not fitted.
const (
	GarchAlpha = 0.10
	GarchBeta  = 0.85
	GarchOmega = 1e-6
)

// forecastConfidence is reported for every summary; the model is not fitted so it never changes.
const forecastConfidence = 75

// GarchForecaster projects a volatility path from a return series.
//
// Step h feeds returns[n-1-h] back as the shock instead of the expected future
// squared return, so the path walks backwards through history. Once the index
// goes negative the shock is zero and the variance decays towards omega/(1-beta).
type GarchForecaster struct{}

func NewGarchForecaster() *GarchForecaster { return &GarchForecaster{} }

// Forecast returns horizon volatility values (not annualized).
// Fewer than two returns yields [0] whatever the horizon; horizon < 1 is treated as 1.
func (GarchForecaster) Forecast(returns []float64, horizon int) []float64 {
	n := len(returns)
	if n < 2 {
		return []float64{0}
	}
	if horizon < 1 {
		horizon = 1
	}

	variance := populationVariance(returns)
	out := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		shock := 0.0
		if idx := n - 1 - h; idx >= 0 {
			shock = returns[idx]
		}
		variance = GarchOmega + GarchAlpha*shock*shock + GarchBeta*variance
		out[h] = math.Sqrt(variance)
	}
	return out
}

func populationVariance(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	v := 0.0
	for _, x := range xs {
		d := x - mean
		v += d * d
	}
	return v / float64(len(xs))
}

// Summarize turns a raw forecast path into dashboard figures in percent.
func Summarize(forecast []float64) models.VolatilityForecast {
	avg := 0.0
	if len(forecast) > 0 {
		for _, v := range forecast {
			avg += v
		}
		avg /= float64(len(forecast))
	}

	category := "Low"
	switch {
	case avg > 0.05:
		category = "High"
	case avg > 0.03:
		category = "Medium"
	}

	points := make([]models.ForecastPoint, 0, 7)
	for i, v := range forecast {
		if i == 7 {
			break
		}
		points = append(points, models.ForecastPoint{Day: i + 1, Volatility: round2(v * 100)})
	}

	return models.VolatilityForecast{
		AnnualizedVolatility: round2(avg * math.Sqrt(252) * 100),
		DailyVolatility:      round2(avg * 100),
		Confidence:           forecastConfidence,
		RiskCategory:         category,
		Forecast:             points,
	}
}

// HorizonDays maps a dashboard time horizon onto forecast steps.
func HorizonDays(timeHorizon string) int {
	switch timeHorizon {
	case "short-term":
		return 7
	case "medium-term":
		return 30
	default:
		return 90
	}
}

var _ domsvc.VolatilityForecaster = (*GarchForecaster)(nil)
