package api

import (
	xhttp "UpgradeRisk/pkg/http"

	"github.com/labstack/echo/v4"
)

// Router registers every API handler on one echo instance.
type Router struct {
	handlers []xhttp.Handler
}

func NewRouter(functions *FunctionsHandler, scoring *ScoringHandler, catalog *CatalogHandler) *Router {
	return &Router{handlers: []xhttp.Handler{functions, scoring, catalog}}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	for _, h := range r.handlers {
		h.RegisterRoutes(e)
	}
}
