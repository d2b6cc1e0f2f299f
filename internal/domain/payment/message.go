package payment

import "errors"

// userMessager 利用者へ表示できるメッセージを持つエラー
type userMessager interface {
	UserMessage() string
}

// FailureMessage 確認失敗のエラーから表示用メッセージを取り出す
// 取り出せない場合は既定メッセージを返す（内部エラーの文言は表示しない）
func FailureMessage(err error) string {
	var m userMessager
	if errors.As(err, &m) {
		if msg := m.UserMessage(); msg != "" {
			return msg
		}
	}
	return DefaultConfirmFailureMessage
}
