package order

import "errors"

var (
	// ErrOrderNotFound 注文が見つからないエラー
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidOrderID 無効な注文IDエラー
	ErrInvalidOrderID = errors.New("invalid order id")
)
