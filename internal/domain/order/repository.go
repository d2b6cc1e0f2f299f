package order

import (
	"context"
)

// OrderReader 注文照会インターフェース
type OrderReader interface {
	// FetchOrderWithoutStatus ステータスによる絞り込みなしで注文を取得
	FetchOrderWithoutStatus(ctx context.Context, orderID string) (*Order, error)
}
