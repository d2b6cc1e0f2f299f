package navigation

import (
	"net/url"
	"strconv"
)

const (
	// FailRoute 決済失敗ページ
	FailRoute = "/fail"
	// OrderManagePath 注文管理ページ
	OrderManagePath = "/order-manage"
	// orderConfirmedPrefix 注文完了ページのプレフィックス
	orderConfirmedPrefix = "/cart/order-confirmed/"
)

// FailPath 失敗ページへのパスを組み立てる（message, codeの順）
func FailPath(message string, code int) string {
	return FailRoute + "?message=" + url.QueryEscape(message) + "&code=" + strconv.Itoa(code)
}

// OrderConfirmedPath 注文ごとの完了ページへのパスを返す
func OrderConfirmedPath(orderID string) string {
	return orderConfirmedPrefix + url.PathEscape(orderID)
}
