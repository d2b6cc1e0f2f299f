package api

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"checkout-server/internal/domain/order"
)

// orderResponse 注文照会レスポンス
type orderResponse struct {
	ID                 flexibleID      `json:"id"`
	ProductsPriceTotal decimal.Decimal `json:"productsPriceTotal"`
	DeliveryFee        decimal.Decimal `json:"deliveryFee"`
	Status             string          `json:"status"`
}

// toDomain ドメインの注文エンティティへ変換
func (r *orderResponse) toDomain() (*order.Order, error) {
	return order.NewOrder(string(r.ID), r.ProductsPriceTotal, r.DeliveryFee, order.OrderStatus(r.Status))
}

// errorResponse エラーレスポンス
type errorResponse struct {
	Message string `json:"message"`
}

// flexibleID 文字列・数値どちらのIDも受け付ける
type flexibleID string

// UnmarshalJSON 文字列ならそのまま、数値なら表記どおりに取り込む
func (id *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexibleID(n.String())
	return nil
}
