package order

// OrderStatus 注文ステータスを表す値オブジェクト
// バックエンドが返す値をそのまま保持する（未知の値も捨てない）
type OrderStatus string

const (
	OrderStatusApproved        OrderStatus = "APPROVED"         // 通常承認（注文管理へ遷移）
	OrderStatusInstantApproved OrderStatus = "INSTANT_APPROVED" // 即時購入の承認（注文完了ページへ遷移）
)

// String 文字列表現を返す
func (s OrderStatus) String() string {
	return string(s)
}

// IsApproved 通常承認かどうかを返す
func (s OrderStatus) IsApproved() bool {
	return s == OrderStatusApproved
}

// IsInstantApproved 即時購入の承認かどうかを返す
func (s OrderStatus) IsInstantApproved() bool {
	return s == OrderStatusInstantApproved
}
