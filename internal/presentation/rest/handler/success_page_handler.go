package handler

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"checkout-server/internal/application/checkout"
	"checkout-server/internal/domain/navigation"
	"checkout-server/internal/domain/payment"
	restmiddleware "checkout-server/internal/presentation/rest/middleware"
	"checkout-server/internal/presentation/rest/view"
)

// SuccessPageHandler 決済完了ページハンドラー
type SuccessPageHandler struct {
	checkoutService *checkout.CheckoutApplicationService
	pollInterval    time.Duration
}

// NewSuccessPageHandler 新しいSuccessPageHandlerを作成
func NewSuccessPageHandler(checkoutService *checkout.CheckoutApplicationService, pollInterval time.Duration) *SuccessPageHandler {
	return &SuccessPageHandler{
		checkoutService: checkoutService,
		pollInterval:    pollInterval,
	}
}

// userID トークンからuser_idを取得
func userID(c echo.Context) (string, error) {
	id, ok := c.Get("user_id").(string)
	if !ok || id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}
	return id, nil
}

// Open 決済代行会社からのリダイレクトを受けてページを開き、ページのURLへリダイレクトする
// 再読み込みで新しいページ（確認の再送）が作られないようにする
func (h *SuccessPageHandler) Open(c echo.Context) error {
	owner, err := userID(c)
	if err != nil {
		return err
	}

	params := payment.RedirectParams{
		OrderID:    c.QueryParam("orderId"),
		Amount:     c.QueryParam("amount"),
		PaymentKey: c.QueryParam("paymentKey"),
	}

	inst := h.checkoutService.Open(c.Request().Context(), params, owner)
	return c.Redirect(http.StatusSeeOther, pagePath(inst.ID()))
}

// Show ページを再評価して表示する
func (h *SuccessPageHandler) Show(c echo.Context) error {
	owner, err := userID(c)
	if err != nil {
		return err
	}

	inst, err := h.checkoutService.Get(c.Param("page_id"), owner)
	if err != nil {
		return err
	}
	return h.render(c, inst)
}

// Close 閉じるボタン。遷移先がなければページへ戻す
func (h *SuccessPageHandler) Close(c echo.Context) error {
	owner, err := userID(c)
	if err != nil {
		return err
	}

	inst, navigated, err := h.checkoutService.Close(c.Param("page_id"), owner)
	if errors.Is(err, checkout.ErrPageNotReady) {
		// 完了画面の表示前はページへ戻す
		return c.Redirect(http.StatusSeeOther, pagePath(inst.ID()))
	}
	if err != nil {
		return err
	}
	if navigated {
		if nav, ok := inst.Navigation(); ok {
			return c.Redirect(http.StatusSeeOther, nav.Path)
		}
	}
	return c.Redirect(http.StatusSeeOther, pagePath(inst.ID()))
}

// render ページの状態に応じて遷移または画面を返す
func (h *SuccessPageHandler) render(c echo.Context, inst *checkout.Instance) error {
	if nav, ok := inst.Navigation(); ok {
		if nav.Mode == navigation.ModeReplace {
			return c.Render(http.StatusOK, view.NavigateTemplate, view.NavigateData{Path: nav.Path})
		}
		return c.Redirect(http.StatusSeeOther, nav.Path)
	}

	if inst.View() == checkout.ViewSuccess {
		return c.Render(http.StatusOK, view.SuccessTemplate, view.SuccessData{
			CloseURL:  pagePath(inst.ID()) + "/close",
			CSRFField: restmiddleware.CSRFFormField,
			CSRFToken: restmiddleware.CSRFToken(c),
		})
	}

	return c.Render(http.StatusOK, view.LoadingTemplate, view.LoadingData{
		RefreshURL:     pagePath(inst.ID()),
		RefreshSeconds: h.refreshSeconds(),
	})
}

// refreshSeconds ポーリング間隔（秒、最低1秒）
func (h *SuccessPageHandler) refreshSeconds() int {
	secs := int(math.Ceil(h.pollInterval.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

func pagePath(pageID string) string {
	return "/success/" + pageID
}

// CreatePage 決済完了ページ作成ハンドラー
// @Summary 決済完了ページを開く
// @Description リダイレクトパラメータでページを開き、注文照会と決済確認を開始します
// @Tags success-pages
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CreateSuccessPageRequest true "リダイレクトパラメータ"
// @Success 201 {object} SuccessPageResponse "作成成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /success-pages [post]
func (h *SuccessPageHandler) CreatePage(c echo.Context) error {
	owner, err := userID(c)
	if err != nil {
		return err
	}

	var req CreateSuccessPageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	inst := h.checkoutService.Open(c.Request().Context(), payment.RedirectParams{
		OrderID:    req.OrderID,
		Amount:     req.Amount,
		PaymentKey: req.PaymentKey,
	}, owner)

	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/success-pages/"+inst.ID())
	return c.JSON(http.StatusCreated, toSuccessPageResponse(inst.State()))
}

// GetPage 決済完了ページ取得ハンドラー
// @Summary 決済完了ページの状態を取得
// @Description ページを再評価し、表示画面と遷移の指示を返します
// @Tags success-pages
// @Produce json
// @Security Bearer
// @Param page_id path string true "ページID"
// @Success 200 {object} SuccessPageResponse "取得成功"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 404 {object} ErrorResponse "ページが存在しない"
// @Router /success-pages/{page_id} [get]
func (h *SuccessPageHandler) GetPage(c echo.Context) error {
	owner, err := userID(c)
	if err != nil {
		return err
	}

	inst, err := h.checkoutService.Get(c.Param("page_id"), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSuccessPageResponse(inst.State()))
}

// ClosePage 閉じるボタン操作ハンドラー
// @Summary 閉じるボタンを押す
// @Description 注文ステータスに応じた遷移先を返します
// @Tags success-pages
// @Produce json
// @Security Bearer
// @Param page_id path string true "ページID"
// @Success 200 {object} CloseSuccessPageResponse "操作成功"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 404 {object} ErrorResponse "ページが存在しない"
// @Failure 409 {object} ErrorResponse "完了画面の表示前"
// @Router /success-pages/{page_id}/close [post]
func (h *SuccessPageHandler) ClosePage(c echo.Context) error {
	owner, err := userID(c)
	if err != nil {
		return err
	}

	inst, navigated, err := h.checkoutService.Close(c.Param("page_id"), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, CloseSuccessPageResponse{
		Navigated: navigated,
		Page:      toSuccessPageResponse(inst.State()),
	})
}
