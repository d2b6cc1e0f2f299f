package payment

import "errors"

// ErrPriceMismatch リダイレクトの金額と注文金額が一致しないエラー
var ErrPriceMismatch = errors.New("price information does not match")

const (
	// PriceMismatchMessage 金額不一致時に失敗ページへ渡すメッセージ
	PriceMismatchMessage = "가격 정보가 일치하지 않습니다."
	// DefaultConfirmFailureMessage 確認失敗時にメッセージを取り出せない場合の既定メッセージ
	DefaultConfirmFailureMessage = "결제 확인 중 오류가 발생했습니다"

	// PriceMismatchCode 金額不一致時のコード
	PriceMismatchCode = 400
	// ConfirmFailureCode 確認失敗時のコード
	ConfirmFailureCode = 500
)
