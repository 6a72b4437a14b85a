package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probeRequest struct {
	Action string `json:"action" validate:"required,oneof=score forecast"`
	Limit  int    `json:"limit" default:"5" validate:"gte=1,lte=10"`
}

type probeHandler struct{}

func (probeHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/probe", func(c echo.Context) error {
		var req probeRequest
		if errs := ReadAndValidateRequest(c, &req); errs != nil {
			return BadRequestResponse(c, errs)
		}
		return SuccessResponse(c, req)
	})
	e.GET("/missing", func(c echo.Context) error {
		return NotFoundErrorf("upgrade %s not found", "abc")
	})
	e.GET("/boom", func(c echo.Context) error {
		panic("scorer exploded")
	})
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func newProbeServer(opts ...ServerOption) *Server {
	opts = append([]ServerOption{WithMetricsPath("", 0)}, opts...)
	return NewServer(probeHandler{}, opts...)
}

func TestValidationErrorsUseWireNames(t *testing.T) {
	s := newProbeServer()

	rec, env := serve(t, s, http.MethodPost, "/probe", `{"action":"hedge"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.StatusBadRequest, env.Status)

	var errs []ValidationError
	require.NoError(t, json.Unmarshal(env.Data, &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_ONEOF", errs[0].Code)
	assert.Equal(t, "action", errs[0].Field)
	assert.Equal(t, "action must be one of: score, forecast", errs[0].Message)

	_, env = serve(t, s, http.MethodPost, "/probe", `{}`)
	require.NoError(t, json.Unmarshal(env.Data, &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_REQUIRED", errs[0].Code)
	assert.Equal(t, "action is required", errs[0].Message)

	_, env = serve(t, s, http.MethodPost, "/probe", `{"action":"score","limit":50}`)
	require.NoError(t, json.Unmarshal(env.Data, &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_LTE", errs[0].Code)
	assert.Equal(t, "limit", errs[0].Field)
}

func TestDefaultsAppliedBeforeValidation(t *testing.T) {
	rec, env := serve(t, newProbeServer(), http.MethodPost, "/probe", `{"action":"score"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got probeRequest
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 5, got.Limit)
}

func TestMalformedBody(t *testing.T) {
	rec, env := serve(t, newProbeServer(), http.MethodPost, "/probe", `{"action":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errs []ValidationError
	require.NoError(t, json.Unmarshal(env.Data, &errs))
	require.NotEmpty(t, errs)
	assert.Equal(t, "ERR_MALFORMED", errs[0].Code)
}

func TestErrorHandlerRendersEnvelope(t *testing.T) {
	s := newProbeServer()

	rec, env := serve(t, s, http.MethodGet, "/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	var appErrs []AppError
	require.NoError(t, json.Unmarshal(env.Data, &appErrs))
	require.Len(t, appErrs, 1)
	assert.Equal(t, CodeNotFound, appErrs[0].Code)
	assert.Equal(t, "upgrade abc not found", appErrs[0].Message)

	rec, env = serve(t, s, http.MethodGet, "/no-such-route", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", env.Message)
}

func TestBodyLimit(t *testing.T) {
	s := newProbeServer(WithBodyLimit(16))
	rec, env := serve(t, s, http.MethodPost, "/probe", `{"action":"score","limit":3}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, env.Status)
}

func TestPanicRecoveredAs500(t *testing.T) {
	s := newProbeServer()

	rec, env := serve(t, s, http.MethodGet, "/boom", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, http.StatusInternalServerError, env.Status)
	assert.JSONEq(t, `"Something went wrong"`, string(env.Data))
}
