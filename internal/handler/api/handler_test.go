package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"UpgradeRisk/internal/domain/models"
	domrepo "UpgradeRisk/internal/domain/repository"
	"UpgradeRisk/internal/usecase"
)

type stubCatalog struct {
	networks []models.Network
	upgrades []models.ProtocolUpgrade
	saved    int
}

func (s *stubCatalog) ListNetworks(context.Context) ([]models.Network, error) { return s.networks, nil }
func (s *stubCatalog) ListProtocols(context.Context, string, int) ([]models.Protocol, error) {
	return []models.Protocol{{Name: "Aave V3", NetworkName: "Ethereum"}}, nil
}
func (s *stubCatalog) GetProtocolByAddress(context.Context, string) (models.Protocol, error) {
	return models.Protocol{}, domrepo.ErrNotFound
}
func (s *stubCatalog) ListUpgrades(context.Context, string, int) ([]models.ProtocolUpgrade, error) {
	return s.upgrades, nil
}
func (s *stubCatalog) GetUpgrade(_ context.Context, id uuid.UUID) (models.ProtocolUpgrade, error) {
	for _, u := range s.upgrades {
		if u.ID == id {
			return u, nil
		}
	}
	return models.ProtocolUpgrade{}, domrepo.ErrNotFound
}
func (s *stubCatalog) SaveAssessment(context.Context, models.RiskAssessmentRecord) error {
	s.saved++
	return nil
}
func (s *stubCatalog) UpsertNetwork(context.Context, *models.Network) error         { return nil }
func (s *stubCatalog) UpsertProtocol(context.Context, *models.Protocol) error       { return nil }
func (s *stubCatalog) UpsertUpgrade(context.Context, *models.ProtocolUpgrade) error { return nil }
func (s *stubCatalog) Health(context.Context) error                                 { return nil }
func (s *stubCatalog) Close() error                                                 { return nil }

var upgradeID = uuid.MustParse("6f1c2d6e-8f4b-4c59-9a51-2b7c6f0e9a11")

func newTestEcho(t *testing.T, checks HealthChecks) (*echo.Echo, *stubCatalog) {
	t.Helper()
	cat := &stubCatalog{
		networks: []models.Network{{Name: "Ethereum", ChainID: 1, Status: "active"}},
		upgrades: []models.ProtocolUpgrade{{
			ID:           upgradeID,
			ProtocolName: "Uniswap V3",
			ProposalID:   "UNI-042",
			Title:        "Fee tier adjustment",
			UpgradeType:  models.UpgradeGovernance,
			Status:       "active",
			RiskScore:    85,
		}},
	}
	scoring := usecase.NewScoringUseCase(usecase.DefaultScorers(), usecase.WithCatalog(cat))
	catalogUC := usecase.NewCatalogUseCase(cat)
	reports := usecase.NewUpgradeReportUseCase(cat, scoring, nil, nil, nil)

	e := echo.New()
	NewRouter(
		NewFunctionsHandler(nil, scoring, catalogUC),
		NewScoringHandler(nil, scoring),
		NewCatalogHandler(nil, catalogUC, reports, nil, checks),
	).RegisterRoutes(e)
	return e, cat
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, e *echo.Echo, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestRiskPredictorInvalidAction(t *testing.T) {
	e, _ := newTestEcho(t, nil)
	code, env := call(t, e, http.MethodPost, "/functions/risk-predictor", `{"action":"explode"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, http.StatusBadRequest, env.Status)
	assert.Contains(t, string(env.Data), "ERR_ONEOF")
}

func TestRiskPredictorVolatilityFromReturns(t *testing.T) {
	e, _ := newTestEcho(t, nil)
	code, env := call(t, e, http.MethodPost, "/functions/risk-predictor",
		`{"action":"predict_volatility","protocol":"Aave V3","timeHorizon":"short-term","returns":[0.01,-0.02,0.015,-0.005,0.02]}`)
	require.Equal(t, http.StatusOK, code)

	var got volatilityResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Aave V3", got.Protocol)
	assert.Len(t, got.VolatilityForecast.Forecast, 7)
	assert.Equal(t, 75, got.VolatilityForecast.Confidence)
}

func TestRiskPredictorVolatilityWithoutSeries(t *testing.T) {
	e, _ := newTestEcho(t, nil)
	code, _ := call(t, e, http.MethodPost, "/functions/risk-predictor", `{"action":"predict_volatility","protocol":"Aave V3"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRiskPredictorPortfolioNeedsUpgradeData(t *testing.T) {
	e, _ := newTestEcho(t, nil)
	code, _ := call(t, e, http.MethodPost, "/functions/risk-predictor", `{"action":"analyze_portfolio_impact","protocol":"Aave V3"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := call(t, e, http.MethodPost, "/functions/risk-predictor",
		`{"action":"analyze_portfolio_impact","protocol":"Aave V3","upgradeData":{"type":"implementation","riskScore":90,"volatilityImpact":20,"liquidityShift":-12},"portfolioData":[{"protocol":"Aave V3","weight":0.5}]}`)
	require.Equal(t, http.StatusOK, code)
	var got portfolioResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 45.0, got.ImpactAnalysis.CorrelationRisk)
	assert.Equal(t, 90.0, got.ImpactAnalysis.DiversificationScore)
}

func TestRiskPredictorRecommendationsDefaults(t *testing.T) {
	e, _ := newTestEcho(t, nil)
	code, env := call(t, e, http.MethodPost, "/functions/risk-predictor", `{"action":"generate_recommendations"}`)
	require.Equal(t, http.StatusOK, code)
	var got recommendationsResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	// riskScore falls back to 50
	assert.Equal(t, 75.0, got.Metadata.Confidence)
	assert.Equal(t, "Moderate", got.Metadata.RiskLevel)
	assert.Equal(t, "maintain", got.Recommendations.PositionSizing.Recommended)
}

func TestSentimentAnalysisText(t *testing.T) {
	e, _ := newTestEcho(t, nil)
	code, env := call(t, e, http.MethodPost, "/functions/sentiment-analysis", `{"action":"analyze_text","query":"bullish growth crash"}`)
	require.Equal(t, http.StatusOK, code)
	var got models.SentimentAnalysis
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "positive", got.Sentiment)

	code, _ = call(t, e, http.MethodPost, "/functions/sentiment-analysis", `{"action":"analyze_text"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestBlockchainMonitor(t *testing.T) {
	e, _ := newTestEcho(t, nil)

	code, env := call(t, e, http.MethodPost, "/functions/blockchain-monitor",
		`{"action":"assess_risk","factors":{"volatility":15,"liquidityRatio":0.1,"governanceParticipation":0.1,"technicalComplexity":90}}`)
	require.Equal(t, http.StatusOK, code)
	var risk models.RiskAssessment
	require.NoError(t, json.Unmarshal(env.Data, &risk))
	assert.Equal(t, 93, risk.RiskScore)
	assert.Equal(t, "High", risk.RiskLevel)

	code, _ = call(t, e, http.MethodPost, "/functions/blockchain-monitor", `{"action":"assess_risk","address":"0xdead"}`)
	assert.Equal(t, http.StatusBadRequest, code, "no series store configured")

	code, env = call(t, e, http.MethodPost, "/functions/blockchain-monitor", `{"action":"fetch_governance"}`)
	require.Equal(t, http.StatusOK, code)
	var proposals proposalsResponse
	require.NoError(t, json.Unmarshal(env.Data, &proposals))
	require.Len(t, proposals.Proposals, 1)
	assert.Equal(t, "UNI-042", proposals.Proposals[0].ID)

	code, env = call(t, e, http.MethodPost, "/functions/blockchain-monitor", `{"action":"monitor_networks"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Ethereum")
}

func TestScoringEndpoints(t *testing.T) {
	e, _ := newTestEcho(t, nil)

	code, env := call(t, e, http.MethodPost, "/api/risk/score",
		`{"volatility":0,"liquidityRatio":1,"governanceParticipation":1,"technicalComplexity":0}`)
	require.Equal(t, http.StatusOK, code)
	var risk models.RiskAssessment
	require.NoError(t, json.Unmarshal(env.Data, &risk))
	assert.Equal(t, 0, risk.RiskScore)

	code, env = call(t, e, http.MethodPost, "/api/volatility/forecast", `{"returns":[0.01],"horizon":5}`)
	require.Equal(t, http.StatusOK, code)
	var fc forecastResponse
	require.NoError(t, json.Unmarshal(env.Data, &fc))
	assert.Equal(t, []float64{0}, fc.Forecast)

	code, _ = call(t, e, http.MethodPost, "/api/volatility/forecast", `{"returns":[0.01,0.02],"horizon":1000}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = call(t, e, http.MethodPost, "/api/liquidity/predict", `{"tvlSeries":[100,110],"type":"governance","riskScore":50}`)
	require.Equal(t, http.StatusOK, code)
	var out models.LiquidityOutlook
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 19.0, out.Prediction.ExpectedShiftPercent)

	code, _ = call(t, e, http.MethodPost, "/api/liquidity/predict", `{"tvlSeries":[100],"type":"hardfork"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = call(t, e, http.MethodPost, "/api/sentiment/aggregate", `{"samples":[]}`)
	require.Equal(t, http.StatusOK, code)
	var agg models.SocialSentiment
	require.NoError(t, json.Unmarshal(env.Data, &agg))
	assert.Equal(t, "neutral", agg.Trend)

	code, env = call(t, e, http.MethodPost, "/api/recommendations", `{"riskScore":90,"volatilityImpact":20,"liquidityShift":-15}`)
	require.Equal(t, http.StatusOK, code)
	var rec models.Recommendations
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "Critical", rec.RiskLevel)
	assert.Len(t, rec.HedgingStrategies, 3)
}

func TestUpgradeReportEndpoint(t *testing.T) {
	e, cat := newTestEcho(t, nil)

	code, env := call(t, e, http.MethodGet, "/api/upgrades/"+upgradeID.String()+"/report", "")
	require.Equal(t, http.StatusOK, code)
	var rep models.UpgradeReport
	require.NoError(t, json.Unmarshal(env.Data, &rep))
	assert.Equal(t, "UNI-042", rep.Upgrade.ProposalID)
	require.NotNil(t, rep.Recommendations)
	assert.Contains(t, rep.Errors, "volatility")
	assert.Equal(t, 1, cat.saved)

	code, _ = call(t, e, http.MethodGet, "/api/upgrades/"+uuid.NewString()+"/report", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, e, http.MethodGet, "/api/upgrades/not-a-uuid/report", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCatalogListings(t *testing.T) {
	e, _ := newTestEcho(t, nil)

	code, env := call(t, e, http.MethodGet, "/api/networks", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"total":1`)

	code, env = call(t, e, http.MethodGet, "/api/protocols?network=ethereum&limit=10", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Aave V3")

	code, _ = call(t, e, http.MethodGet, "/api/protocols?limit=0", "")
	assert.Equal(t, http.StatusOK, code, "zero limit takes the default")

	code, _ = call(t, e, http.MethodGet, "/api/protocols?limit=1000", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealth(t *testing.T) {
	e, _ := newTestEcho(t, HealthChecks{
		"postgres": func(context.Context) error { return nil },
	})
	code, env := call(t, e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"status":"ok"`)

	e, _ = newTestEcho(t, HealthChecks{
		"clickhouse": func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	code, env = call(t, e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, string(env.Data), "refused")
}

func TestSentimentRejectsNegativeEngagement(t *testing.T) {
	e, _ := newTestEcho(t, nil)

	code, env := call(t, e, http.MethodPost, "/api/sentiment/aggregate",
		`{"samples":[{"text":"great","engagement":3},{"text":"terrible","engagement":-1}]}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Data), "ERR_GTE")
	assert.Contains(t, string(env.Data), "samples[1].engagement")

	code, env = call(t, e, http.MethodPost, "/functions/sentiment-analysis",
		`{"action":"analyze_protocol_sentiment","protocol":"Aave V3","posts":[{"text":"great","likes":-5}]}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Data), "posts[0].likes")
}
