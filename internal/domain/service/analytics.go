package service

import (
	"time"

	"UpgradeRisk/internal/domain/models"
)

// RiskScorer turns raw risk factors into a 0-100 score.
type RiskScorer interface {
	Score(f models.RiskFactors) int
}

// VolatilityForecaster projects conditional volatility over a number of steps.
type VolatilityForecaster interface {
	Forecast(returns []float64, horizon int) []float64
}

// LiquidityPredictor estimates the TVL shift an upgrade will cause.
type LiquidityPredictor interface {
	Predict(tvl []float64, t models.UpgradeType, riskScore float64) models.LiquidityPrediction
}

// SentimentScorer scores single texts and aggregates sample sets.
type SentimentScorer interface {
	Analyze(text string) models.SentimentAnalysis
	Aggregate(samples []models.SentimentSample, now time.Time) models.SocialSentiment
}

// RecommendationComposer maps an upgrade's risk profile to execution guidance.
type RecommendationComposer interface {
	Compose(riskScore, volatilityImpact, liquidityShift float64) models.Recommendations
}

// PortfolioAnalyzer estimates an upgrade's effect on a set of positions.
type PortfolioAnalyzer interface {
	Analyze(upgrade models.UpgradeMetadata, protocol string, positions []models.PortfolioPosition) models.PortfolioImpact
}
