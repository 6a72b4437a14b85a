package api

import (
	"UpgradeRisk/internal/domain/models"
	"UpgradeRisk/internal/usecase"
	xhttp "UpgradeRisk/pkg/http"
	xlogger "UpgradeRisk/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScoringHandler exposes each scorer as a plain REST endpoint.
type ScoringHandler struct {
	logger  *xlogger.Logger
	scoring *usecase.ScoringUseCase
}

func NewScoringHandler(logger *xlogger.Logger, scoring *usecase.ScoringUseCase) *ScoringHandler {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &ScoringHandler{logger: logger, scoring: scoring}
}

func (h *ScoringHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/risk/score", h.RiskScore)
	g.POST("/volatility/forecast", h.VolatilityForecast)
	g.POST("/liquidity/predict", h.LiquidityPredict)
	g.POST("/sentiment/analyze", h.SentimentAnalyze)
	g.POST("/sentiment/aggregate", h.SentimentAggregate)
	g.POST("/recommendations", h.Recommendations)
}

type forecastResponse struct {
	Protocol string    `json:"protocol,omitempty"`
	Horizon  int       `json:"horizon"`
	Forecast []float64 `json:"forecast"`
}

func (h *ScoringHandler) RiskScore(c echo.Context) error {
	req := &models.RiskScoreRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.scoring.ScoreRisk(req.Protocol, req.RiskFactors))
}

func (h *ScoringHandler) VolatilityForecast(c echo.Context) error {
	req := &models.VolatilityForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	path, err := h.scoring.ForecastVolatility(c.Request().Context(), req.Protocol, req.Returns, req.Horizon)
	if err != nil {
		h.logger.Error("volatility forecast failed", xlogger.String("protocol", req.Protocol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, forecastResponse{Protocol: req.Protocol, Horizon: req.Horizon, Forecast: path})
}

func (h *ScoringHandler) LiquidityPredict(c echo.Context) error {
	req := &models.LiquidityPredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	meta := models.UpgradeMetadata{Type: req.Type, RiskScore: req.RiskScore}
	res, err := h.scoring.PredictLiquidity(c.Request().Context(), req.Protocol, req.TVLSeries, meta)
	if err != nil {
		h.logger.Error("liquidity predict failed", xlogger.String("protocol", req.Protocol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ScoringHandler) SentimentAnalyze(c echo.Context) error {
	req := &models.SentimentTextRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.scoring.AnalyzeText(req.Text))
}

func (h *ScoringHandler) SentimentAggregate(c echo.Context) error {
	req := &models.SentimentAggregateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.scoring.AggregateSentiment(req.Samples, req.Now))
}

func (h *ScoringHandler) Recommendations(c echo.Context) error {
	req := &models.RecommendationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.scoring.GenerateRecommendations(models.UpgradeMetadata{
		RiskScore:        req.RiskScore,
		VolatilityImpact: req.VolatilityImpact,
		LiquidityShift:   req.LiquidityShift,
	}))
}
