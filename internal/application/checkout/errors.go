package checkout

import "errors"

var (
	// ErrPageNotFound ページが存在しない（期限切れ・他人のページ）エラー
	ErrPageNotFound = errors.New("success page not found")
	// ErrPageNotReady 完了画面が表示される前の操作エラー
	ErrPageNotReady = errors.New("success page is not ready")
)
