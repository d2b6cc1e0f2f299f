package handler

import (
	"time"

	"checkout-server/internal/application/checkout"
	"checkout-server/internal/domain/navigation"
)

// CreateSuccessPageRequest 決済完了ページ作成リクエスト
// @Description 決済代行会社のリダイレクトパラメータ（いずれも省略可能）
type CreateSuccessPageRequest struct {
	OrderID    string `json:"orderId" example:"1024"`
	Amount     string `json:"amount" example:"18000"`
	PaymentKey string `json:"paymentKey" example:"tgen_20240101000000abcd"`
}

// NavigationResponse 遷移の指示
// @Description 遷移の指示
type NavigationResponse struct {
	Path string `json:"path" example:"/order-manage"`
	Mode string `json:"mode" example:"push" enums:"push,replace"`
}

// SuccessPageResponse 決済完了ページの状態
// @Description 決済完了ページの状態
type SuccessPageResponse struct {
	PageID      string              `json:"page_id" example:"3f8c2a52-1c1e-4a53-9a2f-2b5d0b3a9e10"`
	View        string              `json:"view" example:"loading" enums:"loading,success"`
	QueryStatus string              `json:"query_status" example:"success" enums:"pending,success,error"`
	OrderID     string              `json:"order_id,omitempty" example:"1024"`
	OrderStatus string              `json:"order_status,omitempty" example:"APPROVED"`
	Confirmed   bool                `json:"confirmed" example:"true"`
	Navigation  *NavigationResponse `json:"navigation,omitempty"`
	OpenedAt    time.Time           `json:"opened_at"`
}

// CloseSuccessPageResponse 閉じるボタン操作のレスポンス
// @Description 閉じるボタン操作のレスポンス
type CloseSuccessPageResponse struct {
	Navigated bool                `json:"navigated" example:"true"`
	Page      SuccessPageResponse `json:"page"`
}

// ErrorResponse エラーレスポンス
// @Description エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error" example:"page_not_found"`
	Message string `json:"message" example:"success page not found"`
}

// toSuccessPageResponse ページ状態をレスポンスに変換
func toSuccessPageResponse(state checkout.PageState) SuccessPageResponse {
	resp := SuccessPageResponse{
		PageID:      state.PageID,
		View:        string(state.View),
		QueryStatus: string(state.QueryStatus),
		OrderID:     state.OrderID,
		OrderStatus: state.OrderStatus,
		Confirmed:   state.Confirmed,
		OpenedAt:    state.OpenedAt,
	}
	if state.Navigation != nil {
		resp.Navigation = toNavigationResponse(*state.Navigation)
	}
	return resp
}

func toNavigationResponse(nav navigation.Navigation) *NavigationResponse {
	return &NavigationResponse{
		Path: nav.Path,
		Mode: string(nav.Mode),
	}
}
