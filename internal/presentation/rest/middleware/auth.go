package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"checkout-server/internal/infrastructure/api"
	"checkout-server/internal/infrastructure/config"
	otelinfra "checkout-server/internal/infrastructure/observability/otel"
)

// UserIDKey echo.Contextに設定するユーザーIDのキー
const UserIDKey = "user_id"

var (
	errMissingToken = errors.New("missing access token")
	errInvalidToken = errors.New("invalid or expired token")
)

// AuthMiddleware JWT認証ミドルウェア
// アクセストークンはAuthorizationヘッダー、なければセッションCookieから取得する
func AuthMiddleware(cfg *config.JWTConfig, session *config.SessionConfig, logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			tokenString, err := extractToken(c, session.CookieName)
			if err != nil {
				logger.Warn(ctx, "Missing access token", nil)
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: err.Error(),
				})
			}

			userID, err := parseUserID(tokenString, cfg)
			if err != nil {
				logger.Warn(ctx, "Invalid token", map[string]interface{}{
					"error": err.Error(),
				})
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: errInvalidToken.Error(),
				})
			}

			// ユーザーIDをリクエストコンテキストに設定
			c.Set(UserIDKey, userID)

			// バックエンドAPI呼び出しで同じトークンを転送する
			ctx = api.WithCredentials(ctx, api.Credentials{
				UserID:      userID,
				AccessToken: tokenString,
			})
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// extractToken リクエストからアクセストークンを取り出す
func extractToken(c echo.Context, cookieName string) (string, error) {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", errors.New("invalid authorization header format")
		}
		return parts[1], nil
	}

	cookie, err := c.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return "", errMissingToken
	}
	return cookie.Value, nil
}

// parseUserID トークンを検証してユーザーIDを返す
func parseUserID(tokenString string, cfg *config.JWTConfig) (string, error) {
	var opts []jwt.ParserOption
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 署名アルゴリズムの確認
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	// user_idがなければsubを使う
	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		return userID, nil
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	return "", errors.New("missing user_id in token")
}

// UserID echo.Contextから認証済みユーザーIDを取得
func UserID(c echo.Context) string {
	userID, _ := c.Get(UserIDKey).(string)
	return userID
}
