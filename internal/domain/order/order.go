package order

import (
	"github.com/shopspring/decimal"
)

// Order 注文エンティティ（バックエンドが所有し、ここでは読み取り専用）
type Order struct {
	id                 string
	productsPriceTotal decimal.Decimal
	deliveryFee        decimal.Decimal
	status             OrderStatus
}

// NewOrder 新しいOrderエンティティを作成
func NewOrder(id string, productsPriceTotal, deliveryFee decimal.Decimal, status OrderStatus) (*Order, error) {
	if id == "" {
		return nil, ErrInvalidOrderID
	}
	return &Order{
		id:                 id,
		productsPriceTotal: productsPriceTotal,
		deliveryFee:        deliveryFee,
		status:             status,
	}, nil
}

// ID 注文IDを返す
func (o *Order) ID() string {
	return o.id
}

// ProductsPriceTotal 商品合計金額を返す
func (o *Order) ProductsPriceTotal() decimal.Decimal {
	return o.productsPriceTotal
}

// DeliveryFee 配送料を返す
func (o *Order) DeliveryFee() decimal.Decimal {
	return o.deliveryFee
}

// Status ステータスを返す
func (o *Order) Status() OrderStatus {
	return o.status
}

// TotalPrice 支払うべき総額（商品合計 + 配送料）を返す
func (o *Order) TotalPrice() decimal.Decimal {
	return o.productsPriceTotal.Add(o.deliveryFee)
}

// TotalPriceString 総額の文字列表現を返す（指数表記なし、末尾の0なし）
func (o *Order) TotalPriceString() string {
	return o.TotalPrice().String()
}
