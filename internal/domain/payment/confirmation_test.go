package payment

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkout-server/internal/domain/order"
)

func TestVerifyAmount(t *testing.T) {
	o, err := order.NewOrder("order-1", decimal.NewFromInt(47000), decimal.NewFromInt(3000), order.OrderStatusApproved)
	require.NoError(t, err)

	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{
			name:    "正常系: 金額が一致",
			amount:  "50000",
			wantErr: nil,
		},
		{
			name:    "異常系: 金額が異なる",
			amount:  "49000",
			wantErr: ErrPriceMismatch,
		},
		{
			name:    "異常系: 金額が未指定",
			amount:  "",
			wantErr: ErrPriceMismatch,
		},
		{
			name:    "異常系: 表記が異なる（文字列として比較する）",
			amount:  "50000.00",
			wantErr: ErrPriceMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyAmount(o, tt.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewConfirmRequest(t *testing.T) {
	req := NewConfirmRequest(RedirectParams{OrderID: "order-1", Amount: "50000", PaymentKey: "pk_1"})

	body, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"orderId":"order-1","amount":"50000","paymentKey":"pk_1"}`, string(body))
}

func TestNewConfirmRequest_OmitsAbsentValues(t *testing.T) {
	req := NewConfirmRequest(RedirectParams{OrderID: "order-1", Amount: "50000"})

	body, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"orderId":"order-1","amount":"50000"}`, string(body))
}

func TestRedirectParams_HasOrderID(t *testing.T) {
	assert.True(t, RedirectParams{OrderID: "order-1"}.HasOrderID())
	assert.False(t, RedirectParams{}.HasOrderID())
}
