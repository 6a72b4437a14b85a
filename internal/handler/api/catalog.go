package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"UpgradeRisk/internal/domain/models"
	"UpgradeRisk/internal/usecase"
	xhttp "UpgradeRisk/pkg/http"
	xlogger "UpgradeRisk/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HealthCheck pings one backing store.
type HealthCheck func(ctx context.Context) error

// HealthChecks maps a store name to its ping.
type HealthChecks map[string]HealthCheck

// CatalogHandler serves catalog reads, upgrade reports, the live stream and health.
type CatalogHandler struct {
	logger  *xlogger.Logger
	catalog *usecase.CatalogUseCase
	reports *usecase.UpgradeReportUseCase
	stream  echo.HandlerFunc
	checks  HealthChecks
}

func NewCatalogHandler(logger *xlogger.Logger, catalog *usecase.CatalogUseCase, reports *usecase.UpgradeReportUseCase, stream echo.HandlerFunc, checks HealthChecks) *CatalogHandler {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &CatalogHandler{logger: logger, catalog: catalog, reports: reports, stream: stream, checks: checks}
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/networks", h.Networks)
	g.GET("/protocols", h.Protocols)
	g.GET("/upgrades/:id/report", h.UpgradeReport)
	if h.stream != nil {
		e.GET("/ws/assessments", h.stream)
	}
	e.GET("/healthz", h.Health)
}

func (h *CatalogHandler) Networks(c echo.Context) error {
	res, err := h.catalog.Networks(c.Request().Context())
	if err != nil {
		h.logger.Error("networks usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.ListResponse(c, res, int64(len(res)))
}

func (h *CatalogHandler) Protocols(c echo.Context) error {
	req := &models.ListProtocolsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.catalog.Protocols(c.Request().Context(), req.Network, req.Limit)
	if err != nil {
		h.logger.Error("protocols usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.ListResponse(c, res, int64(len(res)))
}

func (h *CatalogHandler) UpgradeReport(c echo.Context) error {
	req := &models.UpgradeReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("invalid upgrade id").WithField("id"))
	}
	res, err := h.reports.Report(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("upgrade report error", xlogger.String("upgrade_id", req.ID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health reports "ok" when every configured store answers within 2s.
func (h *CatalogHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	res := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("health check failed", xlogger.String("check", name), xlogger.Error(err))
			res.Status = "degraded"
			res.Checks[name] = err.Error()
			continue
		}
		res.Checks[name] = "ok"
	}
	if res.Status != "ok" {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, res)
	}
	return xhttp.SuccessResponse(c, res)
}
