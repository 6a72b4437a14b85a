package api

import (
	"time"

	"UpgradeRisk/internal/domain/models"
	"UpgradeRisk/internal/usecase"
	xhttp "UpgradeRisk/pkg/http"
	xlogger "UpgradeRisk/pkg/logger"

	"github.com/labstack/echo/v4"
)

// FunctionsHandler serves the action-dispatch endpoints used by the dashboard.
type FunctionsHandler struct {
	logger  *xlogger.Logger
	scoring *usecase.ScoringUseCase
	catalog *usecase.CatalogUseCase
}

func NewFunctionsHandler(logger *xlogger.Logger, scoring *usecase.ScoringUseCase, catalog *usecase.CatalogUseCase) *FunctionsHandler {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &FunctionsHandler{logger: logger, scoring: scoring, catalog: catalog}
}

func (h *FunctionsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/functions")
	g.POST("/risk-predictor", h.RiskPredictor)
	g.POST("/sentiment-analysis", h.SentimentAnalysis)
	g.POST("/blockchain-monitor", h.BlockchainMonitor)
}

type volatilityResponse struct {
	Protocol           string                    `json:"protocol"`
	VolatilityForecast models.VolatilityForecast `json:"volatilityForecast"`
}

type portfolioResponse struct {
	ImpactAnalysis models.PortfolioImpact `json:"impactAnalysis"`
	UpgradeData    models.UpgradeMetadata `json:"upgradeData"`
}

type recommendationsMetadata struct {
	AnalysisTime time.Time `json:"analysisTime"`
	Confidence   float64   `json:"confidence"`
	RiskLevel    string    `json:"riskLevel"`
}

type recommendationsResponse struct {
	Recommendations models.Recommendations  `json:"recommendations"`
	Metadata        recommendationsMetadata `json:"metadata"`
}

type proposalsResponse struct {
	Proposals []models.GovernanceProposal `json:"proposals"`
}

type networksResponse struct {
	Networks []models.Network `json:"networks"`
}

func (h *FunctionsHandler) RiskPredictor(c echo.Context) error {
	req := &models.RiskPredictorRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	switch req.Action {
	case "predict_volatility":
		res, err := h.scoring.PredictVolatility(ctx, req.Protocol, req.Returns, req.TimeHorizon)
		if err != nil {
			h.logger.Error("predict volatility failed", xlogger.String("protocol", req.Protocol), xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.SuccessResponse(c, volatilityResponse{Protocol: req.Protocol, VolatilityForecast: res})

	case "predict_liquidity":
		res, err := h.scoring.PredictLiquidity(ctx, req.Protocol, req.TVLSeries, upgradeMetadata(req.UpgradeData))
		if err != nil {
			h.logger.Error("predict liquidity failed", xlogger.String("protocol", req.Protocol), xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.SuccessResponse(c, res)

	case "analyze_portfolio_impact":
		if req.UpgradeData == nil {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("Upgrade data required").WithField("upgradeData"))
		}
		meta := upgradeMetadata(req.UpgradeData)
		return xhttp.SuccessResponse(c, portfolioResponse{
			ImpactAnalysis: h.scoring.AnalyzePortfolioImpact(meta, req.Protocol, req.PortfolioData),
			UpgradeData:    meta,
		})

	default: // generate_recommendations
		meta := upgradeMetadata(req.UpgradeData)
		rec := h.scoring.GenerateRecommendations(meta)
		return xhttp.SuccessResponse(c, recommendationsResponse{
			Recommendations: rec,
			Metadata: recommendationsMetadata{
				AnalysisTime: time.Now().UTC(),
				Confidence:   rec.Timing.Confidence,
				RiskLevel:    rec.RiskLevel,
			},
		})
	}
}

func (h *FunctionsHandler) SentimentAnalysis(c echo.Context) error {
	req := &models.SentimentAnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if req.Action == "analyze_text" {
		return xhttp.SuccessResponse(c, h.scoring.AnalyzeText(req.Query))
	}

	res, err := h.scoring.AnalyzeProtocolSentiment(c.Request().Context(), req.Protocol, req.Posts)
	if err != nil {
		h.logger.Error("protocol sentiment failed", xlogger.String("protocol", req.Protocol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *FunctionsHandler) BlockchainMonitor(c echo.Context) error {
	req := &models.BlockchainMonitorRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	switch req.Action {
	case "assess_risk":
		res, err := h.scoring.AssessRisk(ctx, usecase.AssessRiskParams{
			Address: req.Address,
			Factors: req.Factors,
			Prices:  req.Prices,
		})
		if err != nil {
			h.logger.Error("assess risk failed", xlogger.String("address", req.Address), xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.SuccessResponse(c, res)

	case "fetch_governance":
		res, err := h.catalog.GovernanceProposals(ctx, req.Protocol, req.Limit)
		if err != nil {
			h.logger.Error("fetch governance failed", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.SuccessResponse(c, proposalsResponse{Proposals: res})

	default: // monitor_networks
		res, err := h.catalog.Networks(ctx)
		if err != nil {
			h.logger.Error("monitor networks failed", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.SuccessResponse(c, networksResponse{Networks: res})
	}
}

// upgradeMetadata fills the dashboard defaults: governance type and a neutral risk of 50.
func upgradeMetadata(in *models.UpgradeInput) models.UpgradeMetadata {
	if in == nil {
		return models.UpgradeMetadata{Type: models.UpgradeGovernance, RiskScore: 50}
	}
	m := in.Metadata()
	if m.Type == "" {
		m.Type = models.UpgradeGovernance
	}
	if m.RiskScore == 0 {
		m.RiskScore = 50
	}
	return m
}
