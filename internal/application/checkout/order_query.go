package checkout

import (
	"context"

	"checkout-server/internal/domain/order"
	"checkout-server/internal/infrastructure/api"
	otelinfra "checkout-server/internal/infrastructure/observability/otel"
	"checkout-server/internal/infrastructure/query"
)

// orderQueryKey 注文クエリのキー ["order", orderId, userId]
// 照会はバックエンドが利用者ごとに認可するため、結果も利用者ごとに分ける
const orderQueryKey = "order"

// OrderQuery キャッシュ付きの注文クエリ
type OrderQuery interface {
	Order(ctx context.Context, orderID string) (*order.Order, error)
	Invalidate(orderID string)
}

// CachedOrderQuery query.Clientで注文照会結果をキャッシュする
type CachedOrderQuery struct {
	client  *query.Client
	reader  order.OrderReader
	metrics *otelinfra.Metrics
}

// NewCachedOrderQuery 新しいCachedOrderQueryを作成
func NewCachedOrderQuery(client *query.Client, reader order.OrderReader, metrics *otelinfra.Metrics) *CachedOrderQuery {
	return &CachedOrderQuery{
		client:  client,
		reader:  reader,
		metrics: metrics,
	}
}

// Order 注文を取得（キャッシュが新しければ照会しない）
func (q *CachedOrderQuery) Order(ctx context.Context, orderID string) (*order.Order, error) {
	o, res, err := query.Fetch(ctx, q.client, []string{orderQueryKey, orderID, viewer(ctx)},
		func(ctx context.Context) (*order.Order, error) {
			return q.reader.FetchOrderWithoutStatus(ctx, orderID)
		},
	)
	q.metrics.RecordOrderLookup(ctx, res.Cached, err != nil)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Invalidate 注文のキャッシュを全利用者分破棄
func (q *CachedOrderQuery) Invalidate(orderID string) {
	q.client.Invalidate(orderQueryKey, orderID)
}

// viewer 照会を行う利用者のID（認証情報がなければ空）
func viewer(ctx context.Context) string {
	if creds, ok := api.CredentialsFromContext(ctx); ok {
		return creds.UserID
	}
	return ""
}
