package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"checkout-server/internal/domain/order"
	"checkout-server/internal/domain/payment"
	"checkout-server/internal/infrastructure/config"
	otelinfra "checkout-server/internal/infrastructure/observability/otel"
)

const (
	ordersPath         = "/orders/"
	confirmPaymentPath = "/payments/confirm"

	// maxErrorBodySize エラーレスポンスから読み取る最大バイト数
	maxErrorBodySize = 64 << 10
)

// Client バックエンドREST APIクライアント
type Client struct {
	baseURL    string
	cookieName string
	httpClient *http.Client
	logger     *otelinfra.Logger
	tracer     trace.Tracer
	newKey     func(paymentKey string) string
}

// NewClient 新しいClientを作成
func NewClient(cfg *config.APIConfig, session *config.SessionConfig, logger *otelinfra.Logger) *Client {
	return NewClientWithHTTPClient(cfg, session, logger, &http.Client{Timeout: cfg.Timeout})
}

// NewClientWithHTTPClient HTTPクライアントを指定してClientを作成（テスト用）
func NewClientWithHTTPClient(cfg *config.APIConfig, session *config.SessionConfig, logger *otelinfra.Logger, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		cookieName: session.CookieName,
		httpClient: httpClient,
		logger:     logger,
		tracer:     otel.Tracer("api-client"),
		newKey:     idempotencyKey,
	}
}

// idempotencyKey 同じ決済キーには同じキーを返す
func idempotencyKey(paymentKey string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(paymentKey)).String()
}

// FetchOrderWithoutStatus 注文をステータスの絞り込みなしで取得
func (c *Client) FetchOrderWithoutStatus(ctx context.Context, orderID string) (*order.Order, error) {
	ctx, span := c.tracer.Start(ctx, "api.FetchOrderWithoutStatus", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	req, err := c.newRequest(ctx, http.MethodGet, ordersPath+url.PathEscape(orderID), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	var body orderResponse
	if err := c.do(req, &body); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", order.ErrOrderNotFound, orderID)
		}
		return nil, err
	}

	o, err := body.toDomain()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	return o, nil
}

// ConfirmPayment 認証付きで決済確認を送信
func (c *Client) ConfirmPayment(ctx context.Context, confirmReq payment.ConfirmRequest) error {
	ctx, span := c.tracer.Start(ctx, "api.ConfirmPayment", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(attribute.String("order_id", confirmReq.OrderID))

	payload, err := json.Marshal(confirmReq)
	if err != nil {
		return fmt.Errorf("failed to marshal confirm request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, confirmPaymentPath, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}
	req.Header.Set("Idempotency-Key", c.newKey(confirmReq.PaymentKey))

	if err := c.do(req, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}
	return nil
}

// newRequest 認証情報とトレースコンテキストを付与したリクエストを作成
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// 利用者のセッションをそのまま転送する
	if creds, ok := CredentialsFromContext(ctx); ok && creds.AccessToken != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: creds.AccessToken})
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	} else if method != http.MethodGet {
		return nil, ErrMissingCredentials
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, nil
}

// do リクエストを送信し、2xx以外はAPIErrorとして返す
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn(req.Context(), "Backend API request failed", map[string]interface{}{
			"method": req.Method,
			"path":   req.URL.Path,
			"error":  err.Error(),
		})
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body errorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBodySize)).Decode(&body); err == nil {
			apiErr.Message = body.Message
		}
		c.logger.Warn(req.Context(), "Backend API returned error", map[string]interface{}{
			"method":      req.Method,
			"path":        req.URL.Path,
			"status_code": resp.StatusCode,
			"message":     apiErr.Message,
		})
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
