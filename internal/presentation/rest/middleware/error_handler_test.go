package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"checkout-server/internal/application/checkout"
	otelinfra "checkout-server/internal/infrastructure/observability/otel"
)

func TestErrorHandlerMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "ページが見つからない",
			err:        checkout.ErrPageNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "page_not_found",
		},
		{
			name:       "ラップされたページ未検出",
			err:        fmt.Errorf("lookup: %w", checkout.ErrPageNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  "page_not_found",
		},
		{
			name:       "完了画面の表示前",
			err:        checkout.ErrPageNotReady,
			wantStatus: http.StatusConflict,
			wantError:  "page_not_ready",
		},
		{
			name:       "EchoのHTTPエラー",
			err:        echo.NewHTTPError(http.StatusBadRequest, "invalid request body"),
			wantStatus: http.StatusBadRequest,
			wantError:  "Bad Request",
		},
		{
			name:       "ルートが存在しない",
			err:        echo.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "Not Found",
		},
		{
			name:       "予期しないエラー",
			err:        errors.New("unexpected"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal_server_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"))

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/success/page-1", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := ErrorHandlerMiddleware(logger)(func(c echo.Context) error {
				return tt.err
			})

			require.NoError(t, handler(c))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantError, resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestErrorHandlerMiddleware_NoError(t *testing.T) {
	logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlerMiddleware(logger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorHandlerMiddleware_InternalMessageHidden(t *testing.T) {
	logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlerMiddleware(logger)(func(c echo.Context) error {
		return errors.New("dial tcp 10.0.0.1:8000: connection refused")
	})

	require.NoError(t, handler(c))
	assert.NotContains(t, rec.Body.String(), "10.0.0.1")
}
