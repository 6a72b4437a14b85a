package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"UpgradeRisk/internal/domain/models"
	domrepo "UpgradeRisk/internal/domain/repository"
	domsvc "UpgradeRisk/internal/domain/service"
	"UpgradeRisk/internal/services/analytics"
	"UpgradeRisk/internal/services/features"
	"UpgradeRisk/pkg/cache"
	xhttp "UpgradeRisk/pkg/http"
	applogger "UpgradeRisk/pkg/logger"
)

// Midpoints of the ranges dashboards assume when a protocol has no governance
// or audit data of its own.
const (
	DefaultLiquidityRatio          = 0.55
	DefaultGovernanceParticipation = 0.6
	DefaultTechnicalComplexity     = 50
)

// Scorers bundles the pure scoring components.
type Scorers struct {
	Risk            domsvc.RiskScorer
	Volatility      domsvc.VolatilityForecaster
	Liquidity       domsvc.LiquidityPredictor
	Sentiment       domsvc.SentimentScorer
	Recommendations domsvc.RecommendationComposer
	Portfolio       domsvc.PortfolioAnalyzer
}

// DefaultScorers wires the built-in analytics implementations.
func DefaultScorers() Scorers {
	return Scorers{
		Risk:            analytics.NewRiskScorer(),
		Volatility:      analytics.NewGarchForecaster(),
		Liquidity:       analytics.NewLiquidityPredictor(),
		Sentiment:       analytics.NewSentimentScorer(),
		Recommendations: analytics.NewRecommendationComposer(),
		Portfolio:       analytics.NewPortfolioAnalyzer(),
	}
}

type ScoringOption func(*ScoringUseCase)

// WithSeriesStore lets the use case load series the caller did not send.
func WithSeriesStore(s domrepo.SeriesStore) ScoringOption {
	return func(uc *ScoringUseCase) { uc.series = s }
}

// WithCatalog enables address lookups for risk assessments.
func WithCatalog(c domrepo.CatalogStore) ScoringOption {
	return func(uc *ScoringUseCase) { uc.catalog = c }
}

// WithCache caches results derived from stored series for ttl.
func WithCache(c cache.Service, ttl time.Duration) ScoringOption {
	return func(uc *ScoringUseCase) {
		uc.cache = c
		uc.cacheTTL = ttl
	}
}

func WithMetrics(m domrepo.Metrics) ScoringOption {
	return func(uc *ScoringUseCase) { uc.metrics = m }
}

func WithLogger(l *applogger.Logger) ScoringOption {
	return func(uc *ScoringUseCase) { uc.l = l }
}

// WithHistory sets how many stored points and how far back posts are loaded.
func WithHistory(points int, postsWindow time.Duration) ScoringOption {
	return func(uc *ScoringUseCase) {
		if points > 0 {
			uc.historyPoints = points
		}
		if postsWindow > 0 {
			uc.postsWindow = postsWindow
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ScoringOption {
	return func(uc *ScoringUseCase) { uc.now = now }
}

// ScoringUseCase runs the scorers over request data or stored history.
type ScoringUseCase struct {
	scorers Scorers

	series  domrepo.SeriesStore
	catalog domrepo.CatalogStore
	cache   cache.Service
	metrics domrepo.Metrics
	l       *applogger.Logger

	cacheTTL      time.Duration
	historyPoints int
	postsWindow   time.Duration
	postsLimit    int
	now           func() time.Time
}

func NewScoringUseCase(scorers Scorers, opts ...ScoringOption) *ScoringUseCase {
	uc := &ScoringUseCase{
		scorers:       scorers,
		l:             applogger.NewNop(),
		cacheTTL:      30 * time.Second,
		historyPoints: 90,
		postsWindow:   7 * 24 * time.Hour,
		postsLimit:    500,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// AssessRiskParams selects the factor source: explicit factors, a price
// history, or the stored history of the protocol at Address.
type AssessRiskParams struct {
	Address string
	Factors *models.RiskFactors
	Prices  []float64
}

// ScoreRisk scores explicit factors.
func (uc *ScoringUseCase) ScoreRisk(protocol string, f models.RiskFactors) models.RiskAssessment {
	start := time.Now()
	score := uc.scorers.Risk.Score(f)
	uc.observe("risk", float64(score), start)
	return models.RiskAssessment{
		Protocol:       protocol,
		RiskScore:      score,
		RiskLevel:      analytics.RiskLevel(score),
		Factors:        f,
		Recommendation: analytics.RiskAdvice(score),
	}
}

func (uc *ScoringUseCase) AssessRisk(ctx context.Context, p AssessRiskParams) (models.RiskAssessment, error) {
	if p.Factors != nil {
		return uc.ScoreRisk("", *p.Factors), nil
	}
	if len(p.Prices) > 0 {
		f := models.RiskFactors{
			Volatility:              features.AnnualizedVolatility(p.Prices),
			LiquidityRatio:          DefaultLiquidityRatio,
			GovernanceParticipation: DefaultGovernanceParticipation,
			TechnicalComplexity:     DefaultTechnicalComplexity,
		}
		return uc.ScoreRisk("", roundFactors(f)), nil
	}
	if p.Address == "" || uc.catalog == nil || uc.series == nil {
		return models.RiskAssessment{}, xhttp.BadRequestError("factors, prices or a known protocol address are required")
	}

	protocol, err := uc.catalog.GetProtocolByAddress(ctx, p.Address)
	if errors.Is(err, domrepo.ErrNotFound) {
		return models.RiskAssessment{}, xhttp.NotFoundError("Protocol not found")
	}
	if err != nil {
		uc.fail("risk")
		return models.RiskAssessment{}, xhttp.InternalError("protocol lookup failed").WithError(err)
	}

	obs, err := uc.series.RecentObservations(ctx, protocol.Name, uc.historyPoints)
	if err != nil {
		uc.fail("risk")
		return models.RiskAssessment{}, xhttp.InternalError("load market history failed").WithError(err)
	}
	f := features.RiskFactorsFromHistory(obs, DefaultGovernanceParticipation, DefaultTechnicalComplexity)
	return uc.ScoreRisk(protocol.Name, roundFactors(f)), nil
}

// roundFactors keeps two decimals on ratios and a whole number for complexity, as dashboards display them.
func roundFactors(f models.RiskFactors) models.RiskFactors {
	r2 := func(x float64) float64 { return math.Floor(x*100+0.5) / 100 }
	return models.RiskFactors{
		Volatility:              r2(f.Volatility),
		LiquidityRatio:          r2(f.LiquidityRatio),
		GovernanceParticipation: r2(f.GovernanceParticipation),
		TechnicalComplexity:     math.Floor(f.TechnicalComplexity + 0.5),
	}
}

// ForecastVolatility runs the raw forecaster; returns missing from the request come from the series store.
func (uc *ScoringUseCase) ForecastVolatility(ctx context.Context, protocol string, returns []float64, horizon int) ([]float64, error) {
	if len(returns) == 0 {
		loaded, err := uc.loadReturns(ctx, protocol)
		if err != nil {
			return nil, err
		}
		returns = loaded
	}
	start := time.Now()
	path := uc.scorers.Volatility.Forecast(returns, horizon)
	uc.observe("volatility", path[0], start)
	return path, nil
}

// PredictVolatility forecasts HorizonDays(timeHorizon) steps and summarizes them.
func (uc *ScoringUseCase) PredictVolatility(ctx context.Context, protocol string, returns []float64, timeHorizon string) (models.VolatilityForecast, error) {
	var res models.VolatilityForecast
	fromStore := len(returns) == 0
	key := cache.Key("vol", protocol, timeHorizon)
	if fromStore && uc.cacheGet(ctx, key, &res) {
		return res, nil
	}

	path, err := uc.ForecastVolatility(ctx, protocol, returns, analytics.HorizonDays(timeHorizon))
	if err != nil {
		return res, err
	}
	res = analytics.Summarize(path)
	if fromStore {
		uc.cacheSet(ctx, key, res)
	}
	return res, nil
}

// PredictLiquidity projects the TVL shift and applies it to the latest TVL.
func (uc *ScoringUseCase) PredictLiquidity(ctx context.Context, protocol string, tvl []float64, upgrade models.UpgradeMetadata) (models.LiquidityOutlook, error) {
	if len(tvl) == 0 {
		obs, err := uc.loadObservations(ctx, protocol)
		if err != nil {
			return models.LiquidityOutlook{}, err
		}
		tvl = features.TVL(obs)
	}

	start := time.Now()
	pred := uc.scorers.Liquidity.Predict(tvl, upgrade.Type, upgrade.RiskScore)
	uc.observe("liquidity", pred.ExpectedShiftPercent, start)

	out := models.LiquidityOutlook{Protocol: protocol, Prediction: pred}
	if n := len(tvl); n > 0 {
		out.CurrentTVL = tvl[n-1]
		out.ProjectedTVL = tvl[n-1] * (1 + pred.ExpectedShiftPercent/100)
	}
	return out, nil
}

func (uc *ScoringUseCase) GenerateRecommendations(upgrade models.UpgradeMetadata) models.Recommendations {
	start := time.Now()
	rec := uc.scorers.Recommendations.Compose(upgrade.RiskScore, upgrade.VolatilityImpact, upgrade.LiquidityShift)
	uc.observe("recommendations", rec.Timing.Confidence, start)
	return rec
}

func (uc *ScoringUseCase) AnalyzePortfolioImpact(upgrade models.UpgradeMetadata, protocol string, positions []models.PortfolioPosition) models.PortfolioImpact {
	start := time.Now()
	impact := uc.scorers.Portfolio.Analyze(upgrade, protocol, positions)
	uc.observe("portfolio", impact.CorrelationRisk, start)
	return impact
}

func (uc *ScoringUseCase) AnalyzeText(text string) models.SentimentAnalysis {
	start := time.Now()
	res := uc.scorers.Sentiment.Analyze(text)
	uc.observe("sentiment", res.Score, start)
	return res
}

// AggregateSentiment anchors the recency window at now, or the use case clock when now is nil.
func (uc *ScoringUseCase) AggregateSentiment(samples []models.SentimentSample, now *time.Time) models.SocialSentiment {
	at := uc.now()
	if now != nil {
		at = *now
	}
	start := time.Now()
	res := uc.scorers.Sentiment.Aggregate(samples, at)
	uc.observe("sentiment_aggregate", res.OverallSentiment, start)
	return res
}

// AnalyzeProtocolSentiment aggregates the given posts, or the protocol's stored posts when none are given.
func (uc *ScoringUseCase) AnalyzeProtocolSentiment(ctx context.Context, protocol string, posts []models.SocialPost) (models.ProtocolSentiment, error) {
	if len(posts) == 0 {
		if uc.series == nil {
			return models.ProtocolSentiment{}, xhttp.BadRequestError("posts are required when no series store is configured").WithField("posts")
		}
		loaded, err := uc.series.PostsSince(ctx, protocol, uc.now().Add(-uc.postsWindow), uc.postsLimit)
		if err != nil {
			uc.fail("sentiment_aggregate")
			return models.ProtocolSentiment{}, xhttp.InternalError("load posts failed").WithError(err)
		}
		posts = loaded
	}

	samples := make([]models.SentimentSample, 0, len(posts))
	for _, p := range posts {
		samples = append(samples, p.Sample())
	}
	agg := uc.AggregateSentiment(samples, nil)

	return models.ProtocolSentiment{
		Protocol:      protocol,
		Sentiment:     agg,
		Posts:         len(posts),
		MarketMood:    analytics.Mood(agg.OverallSentiment),
		RiskIndicator: analytics.RiskIndicator(agg.Trend),
		Confidence:    math.Min(agg.InfluenceScore+agg.VolumeScore, 100),
	}, nil
}

func (uc *ScoringUseCase) loadObservations(ctx context.Context, protocol string) ([]models.MarketObservation, error) {
	if uc.series == nil {
		return nil, xhttp.BadRequestError("series data is required when no series store is configured")
	}
	if protocol == "" {
		return nil, xhttp.BadRequestError("protocol is required to load stored series").WithField("protocol")
	}
	obs, err := uc.series.RecentObservations(ctx, protocol, uc.historyPoints)
	if err != nil {
		uc.fail("series")
		return nil, xhttp.InternalError("load market history failed").WithError(err)
	}
	return obs, nil
}

func (uc *ScoringUseCase) loadReturns(ctx context.Context, protocol string) ([]float64, error) {
	obs, err := uc.loadObservations(ctx, protocol)
	if err != nil {
		return nil, err
	}
	return features.LogReturns(features.Prices(obs)), nil
}

func (uc *ScoringUseCase) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if uc.cache == nil {
		return false
	}
	if err := uc.cache.Get(ctx, key, dest); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			uc.l.Warn("scoring cache_get_error", applogger.String("key", key), applogger.Error(err))
		}
		return false
	}
	uc.l.Debug("scoring cache_hit", applogger.String("key", key))
	return true
}

func (uc *ScoringUseCase) cacheSet(ctx context.Context, key string, v interface{}) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Set(ctx, key, v, uc.cacheTTL); err != nil {
		uc.l.Warn("scoring cache_set_error", applogger.String("key", key), applogger.Error(err))
	}
}

func (uc *ScoringUseCase) observe(kind string, value float64, start time.Time) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.RecordScore(kind, value)
	uc.metrics.RecordLatency(kind, time.Since(start).Seconds())
}

func (uc *ScoringUseCase) fail(kind string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(kind)
	}
}
