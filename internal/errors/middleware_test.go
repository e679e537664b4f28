package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newErrorCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_http_errors_total"}, []string{"type"})
}

func serveCounted(t *testing.T, counter *prometheus.CounterVec, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Middleware(counter)(handler)(c)
	require.NoError(t, err)
	return rec
}

func serve(t *testing.T, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	return serveCounted(t, nil, handler)
}

func TestMiddlewareWithStructuredError(t *testing.T) {
	errorsTotal := newErrorCounter()

	rec := serveCounted(t, errorsTotal, func(c echo.Context) error {
		return UnauthorizedError("Incorrect email or password")
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Incorrect email or password", resp.Message)
	assert.Equal(t, TypeUnauthorized, resp.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(errorsTotal.WithLabelValues("unauthorized")))
}

func TestMiddlewareWithStandardError(t *testing.T) {
	errorsTotal := newErrorCounter()

	rec := serveCounted(t, errorsTotal, func(c echo.Context) error {
		return fmt.Errorf("standard error")
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(errorsTotal.WithLabelValues("internal")))
}

func TestMiddlewareWithEchoHTTPError(t *testing.T) {
	errorsTotal := newErrorCounter()

	rec := serveCounted(t, errorsTotal, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rate limit exceeded", resp.Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(errorsTotal.WithLabelValues("validation")))
}

func TestMiddlewareWithNoError(t *testing.T) {
	errorsTotal := newErrorCounter()

	rec := serveCounted(t, errorsTotal, func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", rec.Body.String())
	assert.Equal(t, 0.0, testutil.ToFloat64(errorsTotal.WithLabelValues("validation")))
}

func TestMiddlewareBodyDecodesAsResponseBody(t *testing.T) {
	rec := serve(t, func(c echo.Context) error {
		return ConflictError("Email already registered").WithDetails("try logging in instead")
	})

	var body ResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Email already registered", body.Message)
	assert.Equal(t, "try logging in instead", body.Details)
	assert.Equal(t, "conflict", body.Code)
}

func TestWrapHTTPError(t *testing.T) {
	tests := []struct {
		code     int
		wantType ErrorType
	}{
		{http.StatusBadRequest, TypeValidation},
		{http.StatusUnauthorized, TypeUnauthorized},
		{http.StatusNotFound, TypeNotFound},
		{http.StatusConflict, TypeConflict},
		{http.StatusServiceUnavailable, TypeExternal},
		{http.StatusGatewayTimeout, TypeExternal},
		{http.StatusTeapot, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			wrapped := WrapHTTPError(echo.NewHTTPError(tt.code))
			assert.Equal(t, tt.wantType, wrapped.Type)
			assert.Equal(t, http.StatusText(tt.code), wrapped.Message)
		})
	}
}

func TestMiddlewareKeepsEchoStatus(t *testing.T) {
	rec := serve(t, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusMethodNotAllowed)
	})

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, TypeNotFound, resp.Code)
	assert.Equal(t, "Method Not Allowed", resp.Message)
}
