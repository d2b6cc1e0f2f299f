package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"checkout-server/internal/domain/navigation"
	"checkout-server/internal/domain/payment"
	otelinfra "checkout-server/internal/infrastructure/observability/otel"
)

// Instance 生存中のページと、そのページの遷移記録
type Instance struct {
	*SuccessPage
	owner    string
	recorder *navigation.Recorder
}

// Owner ページを開いた利用者のIDを返す
func (i *Instance) Owner() string {
	return i.owner
}

// Navigation 最後に指示された遷移を返す
func (i *Instance) Navigation() (navigation.Navigation, bool) {
	return i.recorder.Last()
}

// State 遷移を含めた状態を返す
func (i *Instance) State() PageState {
	state := i.Snapshot()
	if nav, ok := i.recorder.Last(); ok {
		state.Navigation = &nav
	}
	return state
}

// CheckoutApplicationService 決済完了ページのライフサイクルを管理するアプリケーションサービス
type CheckoutApplicationService struct {
	orders    OrderQuery
	confirmer payment.Confirmer
	logger    *otelinfra.Logger
	metrics   *otelinfra.Metrics
	tracer    trace.Tracer
	ttl       time.Duration

	mu    sync.Mutex
	pages map[string]*Instance
	now   func() time.Time
	newID func() string
}

// NewCheckoutApplicationService 新しいCheckoutApplicationServiceを作成
func NewCheckoutApplicationService(
	orders OrderQuery,
	confirmer payment.Confirmer,
	ttl time.Duration,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *CheckoutApplicationService {
	return &CheckoutApplicationService{
		orders:    orders,
		confirmer: confirmer,
		logger:    logger,
		metrics:   metrics,
		tracer:    otel.Tracer("checkout-service"),
		ttl:       ttl,
		pages:     make(map[string]*Instance),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Open 新しいページを開き、注文照会を開始する
func (s *CheckoutApplicationService) Open(ctx context.Context, params payment.RedirectParams, owner string) *Instance {
	ctx, span := s.tracer.Start(ctx, "CheckoutApplicationService.Open")
	defer span.End()

	id := s.newID()
	span.SetAttributes(
		attribute.String("page_id", id),
		attribute.String("order_id", params.OrderID),
		attribute.String("user_id", owner),
	)

	recorder := navigation.NewRecorder()
	page := NewSuccessPage(ctx, id, params, PageDeps{
		Orders:    s.orders,
		Confirmer: s.confirmer,
		Navigator: recorder,
		Logger:    s.logger,
		Metrics:   s.metrics,
		Now:       s.now,
	})
	inst := &Instance{
		SuccessPage: page,
		owner:       owner,
		recorder:    recorder,
	}

	s.mu.Lock()
	s.pages[id] = inst
	s.mu.Unlock()

	s.metrics.RecordPageOpened(ctx)
	s.logger.Info(ctx, "Success page opened", map[string]interface{}{
		"page_id":  id,
		"order_id": params.OrderID,
		"user_id":  owner,
	})

	page.Start()
	return inst
}

// Get 利用者のページを取得し、再評価する
func (s *CheckoutApplicationService) Get(id, owner string) (*Instance, error) {
	s.mu.Lock()
	inst, ok := s.pages[id]
	s.mu.Unlock()

	// 他人のページは存在しないものとして扱う
	if !ok || inst.owner != owner {
		return nil, ErrPageNotFound
	}

	inst.Sync()
	return inst, nil
}

// Close 完了画面のボタン操作を行う
func (s *CheckoutApplicationService) Close(id, owner string) (*Instance, bool, error) {
	inst, err := s.Get(id, owner)
	if err != nil {
		return nil, false, err
	}
	navigated, err := inst.SuccessPage.Close()
	if err != nil {
		return inst, false, err
	}
	return inst, navigated, nil
}

// Sweep 期限切れのページを破棄し、破棄した数を返す
func (s *CheckoutApplicationService) Sweep(ctx context.Context) int {
	now := s.now()

	s.mu.Lock()
	var expired []*Instance
	for id, inst := range s.pages {
		if now.Sub(inst.OpenedAt()) >= s.ttl {
			expired = append(expired, inst)
			delete(s.pages, id)
		}
	}
	s.mu.Unlock()

	for _, inst := range expired {
		inst.Dispose()
		s.metrics.RecordPageDisposed(ctx)
	}

	if len(expired) > 0 {
		s.logger.Debug(ctx, "Expired success pages disposed", map[string]interface{}{
			"count": len(expired),
		})
	}
	return len(expired)
}

// Run ctxが終了するまで一定間隔でSweepする
func (s *CheckoutApplicationService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Shutdown 全ページを破棄する
func (s *CheckoutApplicationService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	pages := s.pages
	s.pages = make(map[string]*Instance)
	s.mu.Unlock()

	for _, inst := range pages {
		inst.Dispose()
		s.metrics.RecordPageDisposed(ctx)
	}
}

// Len 生存中のページ数を返す
func (s *CheckoutApplicationService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}
