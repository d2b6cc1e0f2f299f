package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	// CSRFContextKey トークンを格納するコンテキストキー
	CSRFContextKey = "csrf"
	// CSRFFormField フォームのトークン項目名
	CSRFFormField = "_csrf"
	// CSRFCookieName トークンを保存するCookie名
	CSRFCookieName = "_csrf"
)

// CSRFMiddleware 決済完了ページのフォーム送信をダブルサブミットCookieで検証するミドルウェア
// secureはHTTPS配信時にtrueにする
func CSRFMiddleware(secure bool) echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + CSRFFormField,
		ContextKey:     CSRFContextKey,
		CookieName:     CSRFCookieName,
		CookiePath:     "/success",
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: http.SameSiteLaxMode,
	})
}

// CSRFToken フォームに埋め込むトークンを返す
func CSRFToken(c echo.Context) string {
	token, _ := c.Get(CSRFContextKey).(string)
	return token
}
