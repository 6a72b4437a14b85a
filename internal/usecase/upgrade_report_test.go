package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"UpgradeRisk/internal/domain/models"
)

func aaveUpgrade() models.ProtocolUpgrade {
	return models.ProtocolUpgrade{
		ID:               uuid.New(),
		ProtocolName:     "Aave V2",
		ProposalID:       "AIP-89",
		Title:            "Collateral factor adjustments",
		UpgradeType:      models.UpgradeParameter,
		Status:           "active",
		RiskScore:        45,
		VolatilityImpact: 6.8,
		LiquidityShift:   3.2,
		VotingProgress:   89,
	}
}

func TestUpgradeReportFullFanOut(t *testing.T) {
	upgrade := aaveUpgrade()
	catalog := &fakeCatalog{upgrades: []models.ProtocolUpgrade{upgrade}}
	series := newFakeSeries()
	ctx := context.Background()
	require.NoError(t, series.StoreObservations(ctx, marketSeries("aave v2", testNow,
		[]float64{100, 101, 99, 102, 100, 103, 101, 104},
		[]float64{1000, 1010, 1005, 1020, 1030, 1025, 1040, 1050})))
	require.NoError(t, series.StorePosts(ctx, []models.SocialPost{
		{Protocol: "aave v2", Timestamp: testNow.Add(-time.Hour), Text: "solid growth", Likes: 10},
	}))

	scoring := NewScoringUseCase(DefaultScorers(), WithSeriesStore(series), WithClock(func() time.Time { return testNow }))
	pub := &fakePublisher{}
	hub := &fakeBroadcaster{}
	uc := NewUpgradeReportUseCase(catalog, scoring, pub, hub, nil)

	rep, err := uc.Report(ctx, upgrade.ID)
	require.NoError(t, err)
	assert.Nil(t, rep.Errors)
	require.NotNil(t, rep.Volatility)
	require.NotNil(t, rep.Liquidity)
	require.NotNil(t, rep.Sentiment)
	require.NotNil(t, rep.Recommendations)
	assert.Equal(t, 1.0, rep.Sentiment.OverallSentiment)
	assert.Equal(t, "post-upgrade stabilization", rep.Recommendations.Timing.Optimal)

	require.Len(t, catalog.assessments, 1)
	rec := catalog.assessments[0]
	assert.Equal(t, rep.AssessmentID, rec.ID)
	assert.Equal(t, upgrade.ID, rec.UpgradeID)
	assert.Equal(t, 45, rec.TechnicalRisk)
	assert.Equal(t, 11, rec.GovernanceRisk)
	assert.Equal(t, 75, rep.Volatility.Confidence)
	assert.Greater(t, rec.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, rec.ConfidenceScore, 1.0)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, rep.AssessmentID, ev.ID)
	assert.Equal(t, "AIP-89", ev.ProposalID)
	assert.Equal(t, float64(rec.OverallRisk), ev.RiskScore)
	assert.Equal(t, rep.Liquidity.ExpectedShiftPercent, ev.ShiftPct)
	require.Len(t, hub.msgs, 1)
	assert.Equal(t, ev, hub.msgs[0])
}

func TestUpgradeReportCollectsPartErrors(t *testing.T) {
	upgrade := aaveUpgrade()
	catalog := &fakeCatalog{upgrades: []models.ProtocolUpgrade{upgrade}, saveErr: errBoom}
	pub := &fakePublisher{err: errBoom}
	uc := NewUpgradeReportUseCase(catalog, NewScoringUseCase(DefaultScorers()), pub, nil, nil)

	rep, err := uc.Report(context.Background(), upgrade.ID)
	require.NoError(t, err)

	assert.Contains(t, rep.Errors, "volatility")
	assert.Contains(t, rep.Errors, "liquidity")
	assert.Contains(t, rep.Errors, "sentiment")
	assert.NotContains(t, rep.Errors, "recommendations")
	assert.Equal(t, "boom", rep.Errors["persist"])
	assert.Equal(t, "boom", rep.Errors["publish"])
	assert.Nil(t, rep.Volatility)
	require.NotNil(t, rep.Recommendations)
}

func TestUpgradeReportRecordWithoutSeries(t *testing.T) {
	upgrade := aaveUpgrade()
	catalog := &fakeCatalog{upgrades: []models.ProtocolUpgrade{upgrade}}
	uc := NewUpgradeReportUseCase(catalog, NewScoringUseCase(DefaultScorers()), nil, nil, nil)

	_, err := uc.Report(context.Background(), upgrade.ID)
	require.NoError(t, err)
	require.Len(t, catalog.assessments, 1)
	rec := catalog.assessments[0]
	assert.Equal(t, 0, rec.MarketRisk)
	// falls back to the upgrade's own liquidity shift
	assert.Equal(t, 6, rec.LiquidityRisk)
	assert.Equal(t, 0.0, rec.ConfidenceScore)
}

func TestUpgradeReportNotFound(t *testing.T) {
	uc := NewUpgradeReportUseCase(&fakeCatalog{}, NewScoringUseCase(DefaultScorers()), nil, nil, nil)
	_, err := uc.Report(context.Background(), uuid.New())
	requireStatus(t, err, http.StatusNotFound)

	noCatalog := NewUpgradeReportUseCase(nil, NewScoringUseCase(DefaultScorers()), nil, nil, nil)
	_, err = noCatalog.Report(context.Background(), uuid.New())
	requireStatus(t, err, http.StatusServiceUnavailable)
}
