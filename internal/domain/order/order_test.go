package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{
			name:    "正常系: 注文を作成",
			id:      "order-1",
			wantErr: nil,
		},
		{
			name:    "異常系: 注文IDが空",
			id:      "",
			wantErr: ErrInvalidOrderID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOrder(tt.id, decimal.NewFromInt(1000), decimal.NewFromInt(3000), OrderStatusApproved)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, o)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, o.ID())
			assert.Equal(t, OrderStatusApproved, o.Status())
		})
	}
}

func TestOrder_TotalPriceString(t *testing.T) {
	tests := []struct {
		name     string
		products decimal.Decimal
		fee      decimal.Decimal
		want     string
	}{
		{
			name:     "整数の合計",
			products: decimal.NewFromInt(47000),
			fee:      decimal.NewFromInt(3000),
			want:     "50000",
		},
		{
			name:     "配送料なし",
			products: decimal.NewFromInt(12000),
			fee:      decimal.Zero,
			want:     "12000",
		},
		{
			name:     "小数を含む合計",
			products: decimal.RequireFromString("0.1"),
			fee:      decimal.RequireFromString("0.2"),
			want:     "0.3",
		},
		{
			name:     "末尾の0は付かない",
			products: decimal.RequireFromString("1000.50"),
			fee:      decimal.RequireFromString("0.50"),
			want:     "1001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOrder("order-1", tt.products, tt.fee, OrderStatusApproved)
			require.NoError(t, err)
			assert.Equal(t, tt.want, o.TotalPriceString())
		})
	}
}

func TestOrderStatus(t *testing.T) {
	assert.True(t, OrderStatusApproved.IsApproved())
	assert.False(t, OrderStatusApproved.IsInstantApproved())
	assert.True(t, OrderStatusInstantApproved.IsInstantApproved())
	assert.False(t, OrderStatus("CANCELED").IsApproved())
	assert.Equal(t, "CANCELED", OrderStatus("CANCELED").String())
}
