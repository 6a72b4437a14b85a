package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"UpgradeRisk/internal/domain/models"
)

func TestPredictEmptySeries(t *testing.T) {
	p := NewLiquidityPredictor()
	want := models.LiquidityPrediction{ExpectedShiftPercent: 0, Confidence: 0, Timeframe: "1-7 days"}
	assert.Equal(t, want, p.Predict(nil, models.UpgradeImplementation, 95))
	assert.Equal(t, want, p.Predict([]float64{}, models.UpgradeParameter, 0))
}

func TestPredictGovernanceTrend(t *testing.T) {
	got := NewLiquidityPredictor().Predict([]float64{100, 110}, models.UpgradeGovernance, 50)
	// 0.1 * 1.2 * 1.5 + 0.01
	assert.InDelta(t, 19.0, got.ExpectedShiftPercent, 1e-9)
	assert.Equal(t, 90, got.Confidence)
	assert.Equal(t, "3-7 days", got.Timeframe)
}

func TestPredictImplementationHighRisk(t *testing.T) {
	got := NewLiquidityPredictor().Predict([]float64{100, 90}, models.UpgradeImplementation, 90)
	// -0.1 * 1.5 * 1.9 - 0.15
	assert.InDelta(t, -43.5, got.ExpectedShiftPercent, 1e-9)
	assert.Equal(t, "1-3 days", got.Timeframe)
}

func TestPredictUsesRecentWindow(t *testing.T) {
	series := []float64{1, 1, 1, 100, 100, 100, 100, 100, 100, 100}
	got := NewLiquidityPredictor().Predict(series, models.UpgradeParameter, 0)
	assert.InDelta(t, 0.0, got.ExpectedShiftPercent, 1e-9)
	assert.Equal(t, 100, got.Confidence)
}

func TestPredictConfidenceBounds(t *testing.T) {
	p := NewLiquidityPredictor()
	series := [][]float64{
		{100},
		{1, 100, 1, 100, 1, 100},
		{100, 101, 99, 100},
		{0, 10, 20},
		{50, 50, 50, 50},
	}
	for _, s := range series {
		for _, typ := range []models.UpgradeType{models.UpgradeGovernance, models.UpgradeImplementation, models.UpgradeParameter} {
			got := p.Predict(s, typ, 65)
			assert.GreaterOrEqual(t, got.Confidence, 30)
			assert.LessOrEqual(t, got.Confidence, 100)
		}
	}
	assert.Equal(t, 30, p.Predict([]float64{100}, models.UpgradeParameter, 0).Confidence)
	assert.Equal(t, 30, p.Predict([]float64{1, 100, 1, 100}, models.UpgradeParameter, 0).Confidence)
}

func TestPredictTimeframeBoundary(t *testing.T) {
	p := NewLiquidityPredictor()
	s := []float64{100, 101}
	assert.Equal(t, "3-7 days", p.Predict(s, models.UpgradeGovernance, 70).Timeframe)
	assert.Equal(t, "1-3 days", p.Predict(s, models.UpgradeGovernance, 70.01).Timeframe)
}

func TestPredictTypeAdjustmentBoundaries(t *testing.T) {
	p := NewLiquidityPredictor()
	flat := []float64{100, 100}
	assert.InDelta(t, 2.0, p.Predict(flat, models.UpgradeImplementation, 60).ExpectedShiftPercent, 1e-9)
	assert.InDelta(t, -5.0, p.Predict(flat, models.UpgradeImplementation, 80).ExpectedShiftPercent, 1e-9)
	assert.InDelta(t, -15.0, p.Predict(flat, models.UpgradeImplementation, 81).ExpectedShiftPercent, 1e-9)
	assert.InDelta(t, 1.0, p.Predict(flat, models.UpgradeGovernance, 70).ExpectedShiftPercent, 1e-9)
	assert.InDelta(t, -8.0, p.Predict(flat, models.UpgradeGovernance, 71).ExpectedShiftPercent, 1e-9)
	assert.InDelta(t, 0.0, p.Predict(flat, models.UpgradeParameter, 99).ExpectedShiftPercent, 1e-9)
}

func TestPredictClampsRiskScore(t *testing.T) {
	p := NewLiquidityPredictor()
	s := []float64{100, 110}
	assert.Equal(t, p.Predict(s, models.UpgradeGovernance, 100), p.Predict(s, models.UpgradeGovernance, 150))
	assert.Equal(t, p.Predict(s, models.UpgradeGovernance, 0), p.Predict(s, models.UpgradeGovernance, -20))
}

func TestPredictUnknownTypeActsAsParameter(t *testing.T) {
	p := NewLiquidityPredictor()
	s := []float64{100, 104, 108}
	assert.Equal(t, p.Predict(s, models.UpgradeParameter, 40), p.Predict(s, models.UpgradeType("oracle"), 40))
}

func TestPredictNonPositiveStart(t *testing.T) {
	got := NewLiquidityPredictor().Predict([]float64{0, 50}, models.UpgradeParameter, 10)
	assert.InDelta(t, 0.0, got.ExpectedShiftPercent, 1e-9)
}
