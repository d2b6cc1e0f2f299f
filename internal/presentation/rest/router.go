package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"checkout-server/internal/application/checkout"
	"checkout-server/internal/infrastructure/config"
	otelinfra "checkout-server/internal/infrastructure/observability/otel"
	"checkout-server/internal/presentation/rest/handler"
	restmiddleware "checkout-server/internal/presentation/rest/middleware"
	"checkout-server/internal/presentation/rest/view"
)

// Router REST API / 決済完了ページのルーター
type Router struct {
	echo               *echo.Echo
	successPageHandler *handler.SuccessPageHandler
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	checkoutService *checkout.CheckoutApplicationService,
) (*Router, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Echoのデフォルトエラーハンドラーを無効化（ErrorHandlerMiddlewareで処理する）
	e.HTTPErrorHandler = func(err error, c echo.Context) {}

	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	setupMiddleware(e, logger, metrics)

	successPageHandler := handler.NewSuccessPageHandler(checkoutService, cfg.Page.PollInterval)

	setupRoutes(e, cfg, logger, successPageHandler)

	// Swagger UI / ReDoc統合
	SetupSwagger(e)

	return &Router{
		echo:               e,
		successPageHandler: successPageHandler,
	}, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	// リカバリーミドルウェア
	e.Use(middleware.Recover())

	// CORS設定
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"}, // 本番環境では適切に設定
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// リクエストIDの設定
	e.Use(middleware.RequestID())

	// セキュリティヘッダー
	e.Use(restmiddleware.SecurityHeadersMiddleware())

	// トレーシングミドルウェア
	e.Use(restmiddleware.TracingMiddleware())

	// ログミドルウェア
	e.Use(restmiddleware.LoggingMiddleware(logger))

	// メトリクスミドルウェア（エラーハンドラーが書き込んだステータスで集計）
	e.Use(restmiddleware.MetricsMiddleware(metrics))

	// エラーハンドリングミドルウェア
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func setupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	logger *otelinfra.Logger,
	successPageHandler *handler.SuccessPageHandler,
) {
	auth := restmiddleware.AuthMiddleware(&cfg.JWT, &cfg.Session, logger)

	// 決済代行会社のリダイレクト先（HTML）。閉じるフォームはCSRFトークンで検証
	csrf := restmiddleware.CSRFMiddleware(cfg.Environment == "production")
	pages := e.Group("/success", auth, csrf)
	pages.GET("", successPageHandler.Open)
	pages.GET("/:page_id", successPageHandler.Show)
	pages.POST("/:page_id/close", successPageHandler.Close)

	// API v1グループ
	api := e.Group("/api/v1", auth)
	api.POST("/success-pages", successPageHandler.CreatePage)
	api.GET("/success-pages/:page_id", successPageHandler.GetPage)
	api.POST("/success-pages/:page_id/close", successPageHandler.ClosePage)

	// ヘルスチェックエンドポイント（認証不要）
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// ServeHTTP http.Handler実装
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.echo.ServeHTTP(w, req)
}

// Start サーバーを起動（Shutdownによる停止はエラーとしない）
func (r *Router) Start(address string) error {
	if err := r.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 処理中のリクエストを待ってサーバーを停止
func (r *Router) Shutdown(ctx context.Context) error {
	return r.echo.Shutdown(ctx)
}
