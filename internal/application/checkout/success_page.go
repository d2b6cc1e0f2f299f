package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"checkout-server/internal/domain/navigation"
	"checkout-server/internal/domain/order"
	"checkout-server/internal/domain/payment"
	otelinfra "checkout-server/internal/infrastructure/observability/otel"
)

// PageDeps ページが利用する外部コラボレーター
type PageDeps struct {
	Orders    OrderQuery
	Confirmer payment.Confirmer
	Navigator navigation.Navigator
	Logger    *otelinfra.Logger
	Metrics   *otelinfra.Metrics
	// Now 開いた時刻の取得元（nilならtime.Now）
	Now func() time.Time
}

// SuccessPage 決済完了ページの1インスタンス
//
// 注文を照会し、金額を検証したうえで決済確認をインスタンスごとに最大1回だけ送信する。
// Syncは何度呼ばれてもよい（注文が変わったときだけ評価し、確認送信はガードで1回に限る）。
type SuccessPage struct {
	id     string
	params payment.RedirectParams
	deps   PageDeps
	tracer trace.Tracer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// confirmed 確認リクエストを開始したら立てる（送信前に立てる）
	confirmed atomic.Bool

	mu          sync.Mutex
	started     bool
	disposed    bool
	queryStatus QueryStatus
	order       *order.Order
	lastSynced  *order.Order
	success     bool
	openedAt    time.Time
}

// NewSuccessPage 新しいSuccessPageを作成
// ctxの値（認証情報・トレース）は引き継ぐが、キャンセルはDisposeでのみ行う
func NewSuccessPage(ctx context.Context, id string, params payment.RedirectParams, deps PageDeps) *SuccessPage {
	pageCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &SuccessPage{
		id:          id,
		params:      params,
		deps:        deps,
		tracer:      otel.Tracer("checkout-service"),
		ctx:         pageCtx,
		cancel:      cancel,
		queryStatus: QueryStatusPending,
		openedAt:    now(),
	}
}

// ID ページIDを返す
func (p *SuccessPage) ID() string {
	return p.id
}

// Params リダイレクトパラメータを返す
func (p *SuccessPage) Params() payment.RedirectParams {
	return p.params
}

// OpenedAt ページを開いた時刻を返す
func (p *SuccessPage) OpenedAt() time.Time {
	return p.openedAt
}

// Start 注文照会を開始する（注文IDがない場合は照会しない）
func (p *SuccessPage) Start() {
	p.mu.Lock()
	if p.started || p.disposed {
		p.mu.Unlock()
		return
	}
	p.started = true
	if !p.params.HasOrderID() {
		// 照会は無効のまま。ページはローディングを表示し続ける
		p.mu.Unlock()
		p.deps.Logger.Warn(p.ctx, "Order lookup disabled: orderId is missing", map[string]interface{}{
			"page_id": p.id,
		})
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.load()
	}()
}

// load 注文を照会し、結果が届いたらSyncする
func (p *SuccessPage) load() {
	o, err := p.deps.Orders.Order(p.ctx, p.params.OrderID)
	if err != nil {
		if p.ctx.Err() != nil {
			return
		}
		p.mu.Lock()
		p.queryStatus = QueryStatusError
		p.mu.Unlock()
		p.deps.Logger.Error(p.ctx, "Failed to fetch order", err, map[string]interface{}{
			"page_id":  p.id,
			"order_id": p.params.OrderID,
		})
		return
	}

	p.mu.Lock()
	p.queryStatus = QueryStatusSuccess
	p.order = o
	p.mu.Unlock()

	p.Sync()
}

// Sync 依存値（注文データ）が前回評価時から変わっていれば、検証と確認送信を行う
func (p *SuccessPage) Sync() {
	// 既に確認リクエストを送ったかどうか
	if p.confirmed.Load() {
		return
	}

	p.mu.Lock()
	o := p.order
	if o == nil || o == p.lastSynced || p.disposed {
		p.mu.Unlock()
		return
	}
	p.lastSynced = o
	p.mu.Unlock()

	// リダイレクトの金額とDBの金額を比較（改ざん防止）
	if err := payment.VerifyAmount(o, p.params.Amount); err != nil {
		p.deps.Logger.Warn(p.ctx, "Redirect amount does not match order price", map[string]interface{}{
			"page_id":     p.id,
			"order_id":    o.ID(),
			"amount":      p.params.Amount,
			"total_price": o.TotalPriceString(),
		})
		p.deps.Metrics.RecordPriceMismatch(p.ctx)
		p.deps.Navigator.Push(navigation.FailPath(payment.PriceMismatchMessage, payment.PriceMismatchCode))
		return
	}

	// 送信前にガードを立てる（同時に評価されても1回だけ通す）
	if !p.confirmed.CompareAndSwap(false, true) {
		return
	}

	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.confirm()
	}()
}

// confirm 決済確認を送信する
func (p *SuccessPage) confirm() {
	ctx, span := p.tracer.Start(p.ctx, "SuccessPage.confirm")
	defer span.End()

	span.SetAttributes(
		attribute.String("page_id", p.id),
		attribute.String("order_id", p.params.OrderID),
	)

	p.deps.Logger.Info(ctx, "Confirming payment", map[string]interface{}{
		"page_id":  p.id,
		"order_id": p.params.OrderID,
		"amount":   p.params.Amount,
	})

	err := p.deps.Confirmer.ConfirmPayment(ctx, payment.NewConfirmRequest(p.params))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())

		// ページ破棄による中断は結果を捨てる
		if errors.Is(err, context.Canceled) && p.ctx.Err() != nil {
			return
		}

		p.deps.Logger.Error(ctx, "Failed to confirm payment", err, map[string]interface{}{
			"page_id":  p.id,
			"order_id": p.params.OrderID,
		})
		p.deps.Metrics.RecordConfirmation(ctx, otelinfra.ConfirmationResultFailed)
		p.deps.Navigator.Replace(navigation.FailPath(payment.FailureMessage(err), payment.ConfirmFailureCode))
		return
	}

	p.mu.Lock()
	p.success = true
	p.mu.Unlock()

	p.deps.Metrics.RecordConfirmation(ctx, otelinfra.ConfirmationResultSucceeded)
	p.deps.Orders.Invalidate(p.params.OrderID)
	p.deps.Logger.Info(ctx, "Payment confirmed", map[string]interface{}{
		"page_id":  p.id,
		"order_id": p.params.OrderID,
	})
}

// View 表示する画面を返す
func (p *SuccessPage) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

func (p *SuccessPage) viewLocked() View {
	if p.queryStatus == QueryStatusPending || !p.success {
		return ViewLoading
	}
	return ViewSuccess
}

// Close 完了画面のボタン操作。注文ステータスに応じて遷移する
// 遷移した場合はtrueを返す（APPROVED / INSTANT_APPROVED以外は遷移しない）
func (p *SuccessPage) Close() (bool, error) {
	p.mu.Lock()
	if p.viewLocked() != ViewSuccess {
		p.mu.Unlock()
		return false, ErrPageNotReady
	}
	o := p.order
	p.mu.Unlock()

	switch {
	case o.Status().IsApproved():
		p.deps.Navigator.Push(navigation.OrderManagePath)
		return true, nil
	case o.Status().IsInstantApproved():
		p.deps.Navigator.Push(navigation.OrderConfirmedPath(o.ID()))
		return true, nil
	}
	return false, nil
}

// Snapshot 現在の状態を返す
func (p *SuccessPage) Snapshot() PageState {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := PageState{
		PageID:      p.id,
		View:        p.viewLocked(),
		QueryStatus: p.queryStatus,
		OrderID:     p.params.OrderID,
		Confirmed:   p.confirmed.Load(),
		OpenedAt:    p.openedAt,
	}
	if p.order != nil {
		state.OrderStatus = p.order.Status().String()
	}
	return state
}

// Wait 実行中の照会・確認が終わるまで待つ
func (p *SuccessPage) Wait() {
	p.wg.Wait()
}

// Dispose ページを破棄する。実行中の処理はキャンセルし、その結果は反映しない
func (p *SuccessPage) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}
