package models

import "time"

// UpgradeType classifies a protocol upgrade proposal.
type UpgradeType string

const (
	UpgradeGovernance     UpgradeType = "governance"
	UpgradeImplementation UpgradeType = "implementation"
	UpgradeParameter      UpgradeType = "parameter"
)

// RiskFactors are the inputs of the weighted risk score.
type RiskFactors struct {
	Volatility              float64 `json:"volatility"`
	LiquidityRatio          float64 `json:"liquidityRatio"`
	GovernanceParticipation float64 `json:"governanceParticipation"`
	TechnicalComplexity     float64 `json:"technicalComplexity"`
}

// UpgradeMetadata is the impact profile of a single upgrade.
type UpgradeMetadata struct {
	Type             UpgradeType `json:"type"`
	RiskScore        float64     `json:"riskScore"`
	VolatilityImpact float64     `json:"volatilityImpact"`
	LiquidityShift   float64     `json:"liquidityShift"`
}

// SentimentSample is one piece of social text with its engagement.
type SentimentSample struct {
	Text       string    `json:"text"`
	Engagement int       `json:"engagement" validate:"gte=0"` // likes + shares + replies
	Timestamp  time.Time `json:"timestamp"`
}

type RiskAssessment struct {
	Protocol       string      `json:"protocol,omitempty"`
	RiskScore      int         `json:"riskScore"`
	RiskLevel      string      `json:"riskLevel"` // "High" | "Medium" | "Low"
	Factors        RiskFactors `json:"factors"`
	Recommendation string      `json:"recommendation"`
}

type ForecastPoint struct {
	Day        int     `json:"day"`
	Volatility float64 `json:"volatility"` // percent
}

type VolatilityForecast struct {
	AnnualizedVolatility float64         `json:"annualizedVolatility"` // percent
	DailyVolatility      float64         `json:"dailyVolatility"`      // percent
	Confidence           int             `json:"confidence"`
	RiskCategory         string          `json:"riskCategory"` // "High" | "Medium" | "Low"
	Forecast             []ForecastPoint `json:"forecast"`
}

type LiquidityPrediction struct {
	ExpectedShiftPercent float64 `json:"expectedShiftPercent"`
	Confidence           int     `json:"confidence"`
	Timeframe            string  `json:"timeframe"`
}

// SentimentAnalysis is the lexicon score of a single text.
type SentimentAnalysis struct {
	Score      float64 `json:"score"`
	Sentiment  string  `json:"sentiment"` // "positive" | "neutral" | "negative"
	Confidence float64 `json:"confidence"`
}

// SocialSentiment is the engagement-weighted view over many samples.
type SocialSentiment struct {
	OverallSentiment float64 `json:"overallSentiment"`
	Trend            string  `json:"trend"` // "improving" | "declining" | "stable" | "neutral"
	InfluenceScore   float64 `json:"influenceScore"`
	VolumeScore      float64 `json:"volumeScore"`
}

type Timing struct {
	Optimal    string  `json:"optimal"`
	Avoid      string  `json:"avoid"`
	Confidence float64 `json:"confidence"`
}

type PositionSizing struct {
	Recommended        string  `json:"recommended"`
	MaxExposurePercent float64 `json:"maxExposurePercent"`
	Reasoning          string  `json:"reasoning"`
}

type AlertThresholds struct {
	PriceChangePercent     float64 `json:"priceChangePercent"`
	VolumeChangePercent    float64 `json:"volumeChangePercent"`
	LiquidityChangePercent float64 `json:"liquidityChangePercent"`
}

// Recommendations is the execution guidance derived from an upgrade's risk profile.
type Recommendations struct {
	Timing            Timing          `json:"timing"`
	PositionSizing    PositionSizing  `json:"positionSizing"`
	HedgingStrategies []string        `json:"hedgingStrategies"`
	AlertThresholds   AlertThresholds `json:"alertThresholds"`
	RiskLevel         string          `json:"riskLevel"` // "Critical" | "High" | "Moderate"
}

type PortfolioPosition struct {
	Protocol string  `json:"protocol" validate:"required"`
	Weight   float64 `json:"weight" validate:"gte=0,lte=1"`
}

type PortfolioImpact struct {
	CorrelationRisk      float64  `json:"correlationRisk"`
	DiversificationScore float64  `json:"diversificationScore"`
	RecommendedActions   []string `json:"recommendedActions"`
	HedgingStrategies    []string `json:"hedgingStrategies"`
}
