package analytics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"UpgradeRisk/internal/domain/models"
)

func TestAnalyze(t *testing.T) {
	s := NewSentimentScorer()

	assert.Equal(t, models.SentimentAnalysis{Score: 0, Sentiment: "neutral", Confidence: 0}, s.Analyze(""))
	assert.Equal(t, models.SentimentAnalysis{Score: 0, Sentiment: "neutral", Confidence: 0}, s.Analyze("the vote passed today"))

	got := s.Analyze("great great bad")
	assert.InDelta(t, 1.0/3.0, got.Score, 1e-12)
	assert.Equal(t, "positive", got.Sentiment)
	assert.InDelta(t, 1.0, got.Confidence, 1e-12)

	got = s.Analyze("Terrible CRASH incoming")
	assert.InDelta(t, -1.0, got.Score, 1e-12)
	assert.Equal(t, "negative", got.Sentiment)
	assert.InDelta(t, 2.0/3.0, got.Confidence, 1e-12)
}

func TestAnalyzeLabelBoundary(t *testing.T) {
	// 2 positive, 3 negative: score is exactly -0.2
	got := NewSentimentScorer().Analyze("bullish upgrade but crash risk warning")
	assert.InDelta(t, -0.2, got.Score, 1e-12)
	assert.Equal(t, "neutral", got.Sentiment)
	assert.InDelta(t, 5.0/6.0, got.Confidence, 1e-12)
}

func TestAnalyzeExactMembership(t *testing.T) {
	s := NewSentimentScorer()
	assert.Equal(t, "neutral", s.Analyze("great!").Sentiment)
	assert.Equal(t, "neutral", s.Analyze("upgraded riskless").Sentiment)
}

func TestAggregateEmpty(t *testing.T) {
	got := NewSentimentScorer().Aggregate(nil, time.Now())
	assert.Equal(t, models.SocialSentiment{Trend: "neutral"}, got)
}

func TestAggregateWeightsAndTrend(t *testing.T) {
	s := NewSentimentScorer()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	improving := s.Aggregate([]models.SentimentSample{
		{Text: "great", Engagement: 300, Timestamp: now.Add(-time.Hour)},
		{Text: "terrible", Engagement: 100, Timestamp: now.Add(-48 * time.Hour)},
	}, now)
	assert.InDelta(t, 0.5, improving.OverallSentiment, 1e-12)
	assert.Equal(t, "improving", improving.Trend)
	assert.InDelta(t, 0.4, improving.InfluenceScore, 1e-12)
	assert.InDelta(t, 4.0, improving.VolumeScore, 1e-12)

	declining := s.Aggregate([]models.SentimentSample{
		{Text: "great", Engagement: 300, Timestamp: now.Add(-48 * time.Hour)},
		{Text: "terrible", Engagement: 100, Timestamp: now.Add(-time.Hour)},
	}, now)
	assert.Equal(t, "declining", declining.Trend)
}

func TestAggregateZeroEngagementUsesEqualWeights(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got := NewSentimentScorer().Aggregate([]models.SentimentSample{
		{Text: "good", Timestamp: now},
		{Text: "good", Timestamp: now},
		{Text: "bad", Timestamp: now},
		{Text: "bad", Timestamp: now.Add(time.Hour)},
	}, now)
	assert.InDelta(t, 0.0, got.OverallSentiment, 1e-12)
	assert.Equal(t, "stable", got.Trend)
	assert.InDelta(t, 0.0, got.InfluenceScore, 1e-12)
}

func TestAggregateRoundsOverall(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got := NewSentimentScorer().Aggregate([]models.SentimentSample{
		{Text: "good good bad", Engagement: 1, Timestamp: now},
	}, now)
	assert.Equal(t, 0.33, got.OverallSentiment)
	assert.Equal(t, "stable", got.Trend)
}

func TestAggregateCaps(t *testing.T) {
	now := time.Now()
	samples := make([]models.SentimentSample, 60)
	for i := range samples {
		samples[i] = models.SentimentSample{Text: strings.Repeat("solid ", i%3+1), Engagement: 5000, Timestamp: now}
	}
	got := NewSentimentScorer().Aggregate(samples, now)
	assert.Equal(t, 100.0, got.VolumeScore)
	assert.Equal(t, 100.0, got.InfluenceScore)
	assert.LessOrEqual(t, got.OverallSentiment, 1.0)
	assert.GreaterOrEqual(t, got.OverallSentiment, -1.0)
}

func TestMoodAndRiskIndicator(t *testing.T) {
	assert.Equal(t, "Optimistic", Mood(0.31))
	assert.Equal(t, "Neutral", Mood(0.3))
	assert.Equal(t, "Neutral", Mood(-0.3))
	assert.Equal(t, "Pessimistic", Mood(-0.31))

	assert.Equal(t, "Increasing", RiskIndicator("declining"))
	assert.Equal(t, "Decreasing", RiskIndicator("improving"))
	assert.Equal(t, "Stable", RiskIndicator("stable"))
	assert.Equal(t, "Stable", RiskIndicator("neutral"))
}

func TestAggregateIgnoresNegativeEngagement(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewSentimentScorer()

	got := s.Aggregate([]models.SentimentSample{
		{Text: "great", Engagement: 3, Timestamp: now.Add(-48 * time.Hour)},
		{Text: "terrible", Engagement: -1, Timestamp: now.Add(-48 * time.Hour)},
	}, now)
	assert.Equal(t, 1.0, got.OverallSentiment)
	assert.InDelta(t, 0.003, got.InfluenceScore, 1e-12)

	got = s.Aggregate([]models.SentimentSample{
		{Text: "great", Engagement: 2, Timestamp: now},
		{Text: "terrible", Engagement: -3, Timestamp: now},
	}, now)
	assert.GreaterOrEqual(t, got.OverallSentiment, -1.0)
	assert.LessOrEqual(t, got.OverallSentiment, 1.0)
	assert.GreaterOrEqual(t, got.InfluenceScore, 0.0)
	assert.InDelta(t, 0.002, got.InfluenceScore, 1e-12)
}
