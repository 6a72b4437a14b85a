package analytics

import (
	"math"
	"strings"
	"time"

	"UpgradeRisk/internal/domain/models"
	domsvc "UpgradeRisk/internal/domain/service"
)

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "amazing": {}, "fantastic": {},
	"positive": {}, "bullish": {}, "optimistic": {}, "strong": {}, "solid": {},
	"profitable": {}, "growth": {}, "innovation": {}, "upgrade": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "negative": {}, "bearish": {},
	"pessimistic": {}, "weak": {}, "poor": {}, "loss": {}, "decline": {},
	"crash": {}, "dump": {}, "risk": {}, "warning": {}, "critical": {},
}

const (
	sentimentLabelThreshold = 0.2
	trendThreshold          = 0.1
	recentWindow            = 24 * time.Hour
)

// LexiconSentimentScorer scores text by exact word membership in fixed lexicons.
type LexiconSentimentScorer struct{}

func NewSentimentScorer() *LexiconSentimentScorer { return &LexiconSentimentScorer{} }

func (LexiconSentimentScorer) Analyze(text string) models.SentimentAnalysis {
	words := strings.Fields(strings.ToLower(text))
	pos, neg := 0, 0
	for _, w := range words {
		if _, ok := positiveWords[w]; ok {
			pos++
		} else if _, ok := negativeWords[w]; ok {
			neg++
		}
	}
	matched := pos + neg
	if matched == 0 {
		return models.SentimentAnalysis{Score: 0, Sentiment: "neutral", Confidence: 0}
	}

	score := float64(pos-neg) / float64(matched)
	label := "neutral"
	switch {
	case score > sentimentLabelThreshold:
		label = "positive"
	case score < -sentimentLabelThreshold:
		label = "negative"
	}
	return models.SentimentAnalysis{
		Score:      score,
		Sentiment:  label,
		Confidence: float64(matched) / float64(len(words)),
	}
}

// Aggregate weights each sample by its share of total engagement.
// Samples with now-ts under 24h (including future timestamps) count as recent.
func (s LexiconSentimentScorer) Aggregate(samples []models.SentimentSample, now time.Time) models.SocialSentiment {
	if len(samples) == 0 {
		return models.SocialSentiment{Trend: "neutral"}
	}

	totalEngagement := 0
	for _, sm := range samples {
		totalEngagement += engagementOf(sm)
	}

	var overall, recentSum float64
	recentCount := 0
	for _, sm := range samples {
		score := s.Analyze(sm.Text).Score
		weight := 1 / float64(len(samples))
		if totalEngagement > 0 {
			weight = float64(engagementOf(sm)) / float64(totalEngagement)
		}
		overall += score * weight
		if now.Sub(sm.Timestamp) < recentWindow {
			recentSum += score
			recentCount++
		}
	}

	recent := 0.0
	if recentCount > 0 {
		recent = recentSum / float64(recentCount)
	}

	trend := "stable"
	switch {
	case recent > overall+trendThreshold:
		trend = "improving"
	case recent < overall-trendThreshold:
		trend = "declining"
	}

	return models.SocialSentiment{
		OverallSentiment: round2(overall),
		Trend:            trend,
		InfluenceScore:   math.Min(float64(totalEngagement)/1000, 100),
		VolumeScore:      math.Min(float64(len(samples)*2), 100),
	}
}

// Mood labels an overall sentiment for dashboards.
func Mood(overall float64) string {
	switch {
	case overall > 0.3:
		return "Optimistic"
	case overall < -0.3:
		return "Pessimistic"
	default:
		return "Neutral"
	}
}

// RiskIndicator reads a sentiment trend as a risk direction.
func RiskIndicator(trend string) string {
	switch trend {
	case "declining":
		return "Increasing"
	case "improving":
		return "Decreasing"
	default:
		return "Stable"
	}
}

var _ domsvc.SentimentScorer = (*LexiconSentimentScorer)(nil)

// engagementOf floors engagement at zero so weights stay in [0,1].
func engagementOf(sm models.SentimentSample) int {
	if sm.Engagement < 0 {
		return 0
	}
	return sm.Engagement
}
