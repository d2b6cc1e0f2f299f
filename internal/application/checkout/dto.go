package checkout

import (
	"time"

	"checkout-server/internal/domain/navigation"
)

// View 表示する画面
type View string

const (
	ViewLoading View = "loading" // ローディング
	ViewSuccess View = "success" // 決済完了
)

// QueryStatus 注文クエリの状態
type QueryStatus string

const (
	QueryStatusPending QueryStatus = "pending"
	QueryStatusSuccess QueryStatus = "success"
	QueryStatusError   QueryStatus = "error"
)

// PageState ページ状態のスナップショット
type PageState struct {
	PageID      string
	View        View
	QueryStatus QueryStatus
	OrderID     string
	OrderStatus string
	Confirmed   bool
	Navigation  *navigation.Navigation
	OpenedAt    time.Time
}
