package models

import "time"

// Requests for scoring HTTP endpoints. Defined in domain for consistency and reuse.

// UpgradeInput carries upgrade metadata as sent by dashboards; zero values fall back to defaults.
type UpgradeInput struct {
	Type             UpgradeType `json:"type" default:"governance"`
	RiskScore        float64     `json:"riskScore" default:"50"`
	VolatilityImpact float64     `json:"volatilityImpact"`
	LiquidityShift   float64     `json:"liquidityShift"`
}

func (u UpgradeInput) Metadata() UpgradeMetadata {
	return UpgradeMetadata{
		Type:             u.Type,
		RiskScore:        u.RiskScore,
		VolatilityImpact: u.VolatilityImpact,
		LiquidityShift:   u.LiquidityShift,
	}
}

type RiskPredictorRequest struct {
	Action        string              `json:"action" validate:"required,oneof=predict_volatility predict_liquidity analyze_portfolio_impact generate_recommendations"`
	Protocol      string              `json:"protocol"`
	UpgradeData   *UpgradeInput       `json:"upgradeData"`
	PortfolioData []PortfolioPosition `json:"portfolioData" validate:"omitempty,dive"`
	TimeHorizon   string              `json:"timeHorizon" default:"short-term"`
	Returns       []float64           `json:"returns"`
	TVLSeries     []float64           `json:"tvlSeries"`
}

type SentimentAnalysisRequest struct {
	Action   string       `json:"action" validate:"required,oneof=analyze_protocol_sentiment analyze_text"`
	Protocol string       `json:"protocol" validate:"required_if=Action analyze_protocol_sentiment"`
	Query    string       `json:"query" validate:"required_if=Action analyze_text"`
	Posts    []SocialPost `json:"posts" validate:"dive"`
}

type BlockchainMonitorRequest struct {
	Action   string       `json:"action" validate:"required,oneof=assess_risk fetch_governance monitor_networks"`
	Address  string       `json:"address"`
	Factors  *RiskFactors `json:"factors"`
	Prices   []float64    `json:"prices"`
	Protocol string       `json:"protocol"`
	Limit    int          `json:"limit" default:"20" validate:"gte=1,lte=200"`
}

type RiskScoreRequest struct {
	Protocol string `json:"protocol"`
	RiskFactors
}

type VolatilityForecastRequest struct {
	Protocol string    `json:"protocol"`
	Returns  []float64 `json:"returns"`
	Horizon  int       `json:"horizon" default:"1" validate:"gte=1,lte=365"`
}

type LiquidityPredictRequest struct {
	Protocol  string      `json:"protocol"`
	TVLSeries []float64   `json:"tvlSeries"`
	Type      UpgradeType `json:"type" default:"governance" validate:"oneof=governance implementation parameter"`
	RiskScore float64     `json:"riskScore"`
}

type SentimentTextRequest struct {
	Text string `json:"text"`
}

type SentimentAggregateRequest struct {
	Samples []SentimentSample `json:"samples" validate:"dive"`
	// Now anchors the 24h recency window; server time when omitted.
	Now *time.Time `json:"now"`
}

type RecommendationRequest struct {
	RiskScore        float64 `json:"riskScore"`
	VolatilityImpact float64 `json:"volatilityImpact"`
	LiquidityShift   float64 `json:"liquidityShift"`
}

type UpgradeReportRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

type ListProtocolsRequest struct {
	Network string `query:"network"`
	Limit   int    `query:"limit" default:"50" validate:"gte=1,lte=500"`
}
