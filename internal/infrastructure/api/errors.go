package api

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials 認証情報がコンテキストにないエラー
var ErrMissingCredentials = errors.New("missing credentials")

// APIError バックエンドAPIが返したエラー
type APIError struct {
	StatusCode int
	Message    string
}

// Error エラーメッセージを返す
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api request failed with status %d", e.StatusCode)
}

// UserMessage 利用者へ表示できるメッセージを返す（バックエンドが返したもののみ）
func (e *APIError) UserMessage() string {
	return e.Message
}
