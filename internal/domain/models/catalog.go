package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Network struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	Name               string          `db:"name" json:"name"`
	ChainID            int64           `db:"chain_id" json:"chainId"`
	Status             string          `db:"status" json:"status"` // "active" | "warning" | "critical"
	CurrentBlockHeight *int64          `db:"current_block_height" json:"currentBlockHeight,omitempty"`
	GasPrice           *float64        `db:"gas_price" json:"gasPrice,omitempty"`
	TVLUSD             decimal.Decimal `db:"tvl_usd" json:"tvlUsd"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updatedAt"`
}

type Protocol struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	NetworkID       uuid.UUID       `db:"network_id" json:"networkId"`
	NetworkName     string          `db:"network_name" json:"networkName"`
	Name            string          `db:"name" json:"name"`
	ContractAddress string          `db:"contract_address" json:"contractAddress"`
	ProtocolType    string          `db:"protocol_type" json:"protocolType"`
	TVLUSD          decimal.Decimal `db:"tvl_usd" json:"tvlUsd"`
	RiskScore       int             `db:"risk_score" json:"riskScore"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// ProtocolUpgrade is a governance proposal or code upgrade tracked for a protocol.
type ProtocolUpgrade struct {
	ID               uuid.UUID   `db:"id" json:"id"`
	ProtocolID       uuid.UUID   `db:"protocol_id" json:"protocolId"`
	ProtocolName     string      `db:"protocol_name" json:"protocol"`
	ProposalID       string      `db:"proposal_id" json:"proposalId"`
	Title            string      `db:"title" json:"title"`
	Description      string      `db:"description" json:"description"`
	UpgradeType      UpgradeType `db:"upgrade_type" json:"type"`
	Status           string      `db:"status" json:"status"`
	VotingStartsAt   *time.Time  `db:"voting_starts_at" json:"votingStartsAt,omitempty"`
	VotingEndsAt     *time.Time  `db:"voting_ends_at" json:"votingEndsAt,omitempty"`
	ExecutionETA     *time.Time  `db:"execution_eta" json:"executionEta,omitempty"`
	RiskScore        float64     `db:"risk_score" json:"riskScore"`
	VolatilityImpact float64     `db:"volatility_impact" json:"volatilityImpact"`
	LiquidityShift   float64     `db:"liquidity_shift" json:"liquidityShift"`
	VotingProgress   int         `db:"voting_progress" json:"votingProgress"`
}

// Metadata projects the upgrade onto the scorer inputs.
func (u ProtocolUpgrade) Metadata() UpgradeMetadata {
	return UpgradeMetadata{
		Type:             u.UpgradeType,
		RiskScore:        u.RiskScore,
		VolatilityImpact: u.VolatilityImpact,
		LiquidityShift:   u.LiquidityShift,
	}
}

type RiskAssessmentRecord struct {
	ID              uuid.UUID `db:"id" json:"id"`
	UpgradeID       uuid.UUID `db:"upgrade_id" json:"upgradeId"`
	TechnicalRisk   int       `db:"technical_risk" json:"technicalRisk"`
	GovernanceRisk  int       `db:"governance_risk" json:"governanceRisk"`
	MarketRisk      int       `db:"market_risk" json:"marketRisk"`
	LiquidityRisk   int       `db:"liquidity_risk" json:"liquidityRisk"`
	OverallRisk     int       `db:"overall_risk" json:"overallRisk"`
	ConfidenceScore float64   `db:"confidence_score" json:"confidenceScore"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// MarketObservation is one point of a protocol's market history.
type MarketObservation struct {
	ProtocolID string    `json:"protocolId"`
	Timestamp  time.Time `json:"ts"`
	PriceUSD   float64   `json:"priceUsd"`
	TVLUSD     float64   `json:"tvlUsd"`
	Volume24h  float64   `json:"volume24h"`
}

type SocialPost struct {
	Protocol  string    `json:"protocol"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Likes     int       `json:"likes" validate:"gte=0"`
	Shares    int       `json:"shares" validate:"gte=0"`
	Replies   int       `json:"replies" validate:"gte=0"`
}

// Sample converts the post into a sentiment scorer input.
func (p SocialPost) Sample() SentimentSample {
	return SentimentSample{
		Text:       p.Text,
		Engagement: p.Likes + p.Shares + p.Replies,
		Timestamp:  p.Timestamp,
	}
}
