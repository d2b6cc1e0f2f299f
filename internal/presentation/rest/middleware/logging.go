package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	otelinfra "checkout-server/internal/infrastructure/observability/otel"
)

// LoggingMiddleware ログミドルウェア
// クエリ文字列（paymentKey等）はログに残さない
func LoggingMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			logger.Debug(req.Context(), "HTTP request started", map[string]interface{}{
				"method":      req.Method,
				"path":        req.URL.Path,
				"remote_addr": c.RealIP(),
				"user_agent":  req.UserAgent(),
			})

			err := next(c)

			fields := map[string]interface{}{
				"method":      req.Method,
				"path":        req.URL.Path,
				"route":       c.Path(),
				"status_code": c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				fields["request_id"] = id
			}
			if userID := UserID(c); userID != "" {
				fields["user_id"] = userID
			}

			// 認証後のリクエストコンテキスト（トレース含む）で記録する
			ctx := c.Request().Context()
			if err != nil {
				logger.Error(ctx, "HTTP request failed", err, fields)
			} else {
				logger.Info(ctx, "HTTP request completed", fields)
			}

			return err
		}
	}
}
