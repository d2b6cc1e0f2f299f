package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityHeadersMiddleware セキュリティヘッダーを設定するミドルウェア
func SecurityHeadersMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			// クリックジャッキング保護
			h.Set("X-Frame-Options", "DENY")

			// MIMEタイプスニッフィング保護
			h.Set("X-Content-Type-Options", "nosniff")

			path := c.Request().URL.Path
			var csp string
			if isDocsPath(path) {
				// Swagger UI / ReDoc用: 外部CDNを許可
				csp = "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com https://cdn.jsdelivr.net; style-src 'self' 'unsafe-inline' https://unpkg.com https://fonts.googleapis.com; font-src 'self' https://fonts.gstatic.com; img-src 'self' data: https:;"
			} else {
				// 完了ページはインラインのlocation.replaceとスタイルのみ許可
				csp = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'"
			}
			h.Set("Content-Security-Policy", csp)

			// ページ状態と決済パラメータはキャッシュさせない
			if isSuccessPagePath(path) {
				h.Set(echo.HeaderCacheControl, "no-store")
			}

			if c.Scheme() == "https" {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			// クエリ（paymentKey）を外部へ送らない
			h.Set("Referrer-Policy", "same-origin")

			return next(c)
		}
	}
}

// isDocsPath APIドキュメント関連のパスかどうかを判定
func isDocsPath(path string) bool {
	return path == "/redoc" || path == "/openapi.yaml" || path == "/swagger" || strings.HasPrefix(path, "/swagger/")
}

// isSuccessPagePath 決済完了ページのパスかどうかを判定
func isSuccessPagePath(path string) bool {
	return path == "/success" ||
		strings.HasPrefix(path, "/success/") ||
		strings.HasPrefix(path, "/api/v1/success-pages")
}
