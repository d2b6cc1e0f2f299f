package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"checkout-server/internal/application/checkout"
	"checkout-server/internal/infrastructure/api"
	"checkout-server/internal/infrastructure/config"
	otelinfra "checkout-server/internal/infrastructure/observability/otel"
	"checkout-server/internal/infrastructure/query"
	grpcserver "checkout-server/internal/presentation/grpc"
	"checkout-server/internal/presentation/rest"
)

// shutdownTimeout グレースフルシャットダウンの待ち時間
const shutdownTimeout = 10 * time.Second

func main() {
	app := &cli.App{
		Name:  "checkout-server",
		Usage: "Payment success page server (confirms payments and verifies prices)",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "Load environment variables from file (default: .env if present)",
				EnvVars: []string{"CHECKOUT_ENV_FILE"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start REST and gRPC health servers",
				Action: serveCommand,
			},
		},
		// サブコマンド省略時はserve
		Action: serveCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("checkout-server: %v", err)
	}
}

func serveCommand(c *cli.Context) error {
	cfg, err := config.Load(c.StringSlice("env-file")...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg)
}

func serve(ctx context.Context, cfg *config.Config) error {
	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize meter: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	// ロガーとメトリクスの初期化
	tracer := otelinfra.Tracer("checkout-server")
	logger := otelinfra.NewLogger(tracer)
	metrics, err := otelinfra.NewMetrics("checkout-server")
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	// バックエンドAPIクライアントと注文クエリの初期化
	apiClient := api.NewClient(&cfg.API, &cfg.Session, logger)
	orderQuery := checkout.NewCachedOrderQuery(query.NewClient(cfg.Page.OrderStaleTime, cfg.API.Timeout), apiClient, metrics)

	// アプリケーションサービスの初期化
	checkoutService := checkout.NewCheckoutApplicationService(
		orderQuery,
		apiClient,
		cfg.Page.TTL,
		logger,
		metrics,
	)

	// REST APIルーターの初期化
	router, err := rest.NewRouter(cfg, logger, metrics, checkoutService)
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}

	// gRPCサーバーの初期化
	grpcSrv, err := grpcserver.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	// REST APIサーバー
	g.Go(func() error {
		logger.Info(gctx, "REST API server starting", map[string]interface{}{
			"address":     cfg.Server.Address(),
			"environment": cfg.Environment,
		})
		if err := router.Start(cfg.Server.Address()); err != nil {
			return fmt.Errorf("rest server: %w", err)
		}
		return nil
	})

	// gRPCヘルスチェックサーバー
	g.Go(func() error {
		return grpcSrv.Start()
	})

	// 期限切れページの掃除
	g.Go(func() error {
		checkoutService.Run(gctx, cfg.Page.SweepInterval)
		return nil
	})

	// シグナルまたはいずれかのサーバー停止でシャットダウン
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "Shutting down servers", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := grpcSrv.Stop(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "Error shutting down gRPC server", err, nil)
		}
		if err := router.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "Error shutting down REST API server", err, nil)
		}

		// 実行中の確認リクエストを中断してページを破棄
		checkoutService.Shutdown(shutdownCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info(context.Background(), "Servers stopped", nil)
	return nil
}
