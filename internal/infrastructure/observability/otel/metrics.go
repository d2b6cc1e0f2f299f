package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ConfirmationResult 決済確認の結果ラベル
const (
	ConfirmationResultSucceeded = "succeeded"
	ConfirmationResultFailed    = "failed"
)

// Metrics メトリクス定義
type Metrics struct {
	// 決済確認リクエスト数（結果別）
	ConfirmationCount metric.Int64Counter

	// 金額不一致の検出件数
	PriceMismatchCount metric.Int64Counter

	// 注文照会数（キャッシュヒット含む）
	OrderLookupCount metric.Int64Counter

	// 生存中のページ数
	ActivePages metric.Int64UpDownCounter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	confirmationCount, err := meter.Int64Counter(
		"payment_confirmations_total",
		metric.WithDescription("Total number of payment confirmation requests"),
	)
	if err != nil {
		return nil, err
	}

	priceMismatchCount, err := meter.Int64Counter(
		"price_mismatches_total",
		metric.WithDescription("Total number of redirect amounts that did not match the order price"),
	)
	if err != nil {
		return nil, err
	}

	orderLookupCount, err := meter.Int64Counter(
		"order_lookups_total",
		metric.WithDescription("Total number of order lookups"),
	)
	if err != nil {
		return nil, err
	}

	activePages, err := meter.Int64UpDownCounter(
		"success_pages_active",
		metric.WithDescription("Number of live payment success page instances"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ConfirmationCount:  confirmationCount,
		PriceMismatchCount: priceMismatchCount,
		OrderLookupCount:   orderLookupCount,
		ActivePages:        activePages,
		RequestCount:       requestCount,
		ResponseTime:       responseTime,
		ErrorCount:         errorCount,
	}, nil
}

// RecordConfirmation 決済確認の結果を記録
func (m *Metrics) RecordConfirmation(ctx context.Context, result string) {
	m.ConfirmationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("result", result),
		),
	)
}

// RecordPriceMismatch 金額不一致を記録
func (m *Metrics) RecordPriceMismatch(ctx context.Context) {
	m.PriceMismatchCount.Add(ctx, 1)
}

// RecordOrderLookup 注文照会を記録
func (m *Metrics) RecordOrderLookup(ctx context.Context, cached bool, failed bool) {
	m.OrderLookupCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.Bool("cached", cached),
			attribute.Bool("failed", failed),
		),
	)
}

// RecordPageOpened ページの生成を記録
func (m *Metrics) RecordPageOpened(ctx context.Context) {
	m.ActivePages.Add(ctx, 1)
}

// RecordPageDisposed ページの破棄を記録
func (m *Metrics) RecordPageDisposed(ctx context.Context) {
	m.ActivePages.Add(ctx, -1)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
