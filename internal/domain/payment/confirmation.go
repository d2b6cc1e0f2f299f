package payment

import (
	"context"

	"checkout-server/internal/domain/order"
)

// RedirectParams 決済代行会社のリダイレクトで渡されるパラメータ
// いずれも省略可能（空文字列は未指定を表す）
type RedirectParams struct {
	OrderID    string
	Amount     string
	PaymentKey string
}

// HasOrderID 注文IDが指定されているかを返す
func (p RedirectParams) HasOrderID() bool {
	return p.OrderID != ""
}

// ConfirmRequest 決済確認リクエストのペイロード
type ConfirmRequest struct {
	OrderID    string `json:"orderId,omitempty"`
	Amount     string `json:"amount,omitempty"`
	PaymentKey string `json:"paymentKey,omitempty"`
}

// NewConfirmRequest リダイレクトパラメータから確認リクエストを作成
func NewConfirmRequest(p RedirectParams) ConfirmRequest {
	return ConfirmRequest{
		OrderID:    p.OrderID,
		Amount:     p.Amount,
		PaymentKey: p.PaymentKey,
	}
}

// VerifyAmount 注文の総額（文字列化）とリダイレクトの金額を比較する（改ざん防止）
func VerifyAmount(o *order.Order, amount string) error {
	if o.TotalPriceString() != amount {
		return ErrPriceMismatch
	}
	return nil
}

// Confirmer 決済確認インターフェース
type Confirmer interface {
	// ConfirmPayment 認証付きで決済確認を送信
	ConfirmPayment(ctx context.Context, req ConfirmRequest) error
}
