package models

import (
	"time"

	"github.com/google/uuid"
)

// ProtocolSentiment wraps the aggregate with the dashboard-facing labels.
// Note: no transport (json/http) concerns beyond field names here.
type ProtocolSentiment struct {
	Protocol      string          `json:"protocol"`
	Sentiment     SocialSentiment `json:"sentiment"`
	Posts         int             `json:"posts"`
	MarketMood    string          `json:"marketMood"`
	RiskIndicator string          `json:"riskIndicator"`
	Confidence    float64         `json:"confidence"`
}

type LiquidityOutlook struct {
	Protocol     string              `json:"protocol"`
	Prediction   LiquidityPrediction `json:"liquidityPrediction"`
	CurrentTVL   float64             `json:"currentTVL"`
	ProjectedTVL float64             `json:"projectedTVL"`
}

// UpgradeReport is a consolidated view of all scores for one upgrade.
type UpgradeReport struct {
	AssessmentID    uuid.UUID            `json:"assessmentId"`
	Upgrade         ProtocolUpgrade      `json:"upgrade"`
	Timestamp       time.Time            `json:"timestamp"`
	Volatility      *VolatilityForecast  `json:"volatility,omitempty"`
	Liquidity       *LiquidityPrediction `json:"liquidity,omitempty"`
	Sentiment       *SocialSentiment     `json:"sentiment,omitempty"`
	Recommendations *Recommendations     `json:"recommendations,omitempty"`
	Errors          map[string]string    `json:"errors,omitempty"`
}

// AssessmentEvent is published whenever an upgrade report is produced.
type AssessmentEvent struct {
	ID          uuid.UUID `json:"id"`
	UpgradeID   uuid.UUID `json:"upgradeId"`
	ProposalID  string    `json:"proposalId"`
	Protocol    string    `json:"protocol"`
	RiskScore   float64   `json:"riskScore"`
	RiskLevel   string    `json:"riskLevel"`
	Sentiment   float64   `json:"sentiment"`
	ShiftPct    float64   `json:"expectedShiftPercent"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// GovernanceProposal is the dashboard view of an upgrade that is being voted on.
type GovernanceProposal struct {
	ID               string      `json:"id"`
	UpgradeID        uuid.UUID   `json:"upgradeId"`
	Title            string      `json:"title"`
	Protocol         string      `json:"protocol"`
	Type             UpgradeType `json:"type"`
	Status           string      `json:"status"`
	VotingProgress   int         `json:"votingProgress"`
	TimeRemaining    string      `json:"timeRemaining"`
	RiskScore        float64     `json:"riskScore"`
	VolatilityImpact float64     `json:"volatilityImpact"`
	LiquidityShift   float64     `json:"liquidityShift"`
}
