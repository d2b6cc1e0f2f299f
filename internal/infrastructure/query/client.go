package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Client クエリキー単位で取得結果をキャッシュするクライアント
// 同一キーへの同時取得は1回にまとめる。エラーはキャッシュしない。
type Client struct {
	staleTime    time.Duration
	fetchTimeout time.Duration
	group     singleflight.Group
	mu        sync.Mutex
	entries   map[string]entry
	now       func() time.Time
}

type entry struct {
	value     interface{}
	fetchedAt time.Time
}

// Result 取得結果のメタ情報
type Result struct {
	// Cached キャッシュから返したかどうか
	Cached bool
	// Shared 他の呼び出しと取得を共有したかどうか
	Shared bool
}

// NewClient 新しいClientを作成
// fetchTimeoutは共有された取得1回あたりの上限（0なら上限なし）
func NewClient(staleTime, fetchTimeout time.Duration) *Client {
	return &Client{
		staleTime:    staleTime,
		fetchTimeout: fetchTimeout,
		entries:      make(map[string]entry),
		now:          time.Now,
	}
}

// Key クエリキーを文字列化する（例: ["order","123"]）
func Key(parts ...string) string {
	b, err := json.Marshal(parts)
	if err != nil {
		// []stringのMarshalは失敗しない
		panic(fmt.Sprintf("query: failed to marshal key: %v", err))
	}
	return string(b)
}

// Fetch キャッシュが新しければそれを返し、古ければfnで取得する
func Fetch[T any](ctx context.Context, c *Client, key []string, fn func(context.Context) (T, error)) (T, Result, error) {
	var zero T
	k := Key(key...)

	if v, ok := c.lookup(k); ok {
		return v.(T), Result{Cached: true}, nil
	}

	ch := c.group.DoChan(k, func() (interface{}, error) {
		// 取得は待機中の全呼び出しで共有する。最初の呼び出し元のキャンセルを引き継がない
		fetchCtx, cancel := c.fetchContext(ctx)
		defer cancel()
		v, err := fn(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.store(k, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, Result{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, Result{Shared: res.Shared}, res.Err
		}
		return res.Val.(T), Result{Shared: res.Shared}, nil
	}
}

// Invalidate プレフィックスに一致するキーのキャッシュを破棄する
// 例: Invalidate("order", "1") は ["order","1"] と ["order","1",...] を破棄する
func (c *Client) Invalidate(prefix ...string) {
	k := Key(prefix...)
	// 閉じ括弧を外して、後続要素を持つキーと比較する
	open := strings.TrimSuffix(k, "]") + ","
	if len(prefix) == 0 {
		open = "["
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key == k || strings.HasPrefix(key, open) {
			delete(c.entries, key)
		}
	}
}

// Len キャッシュ済みエントリ数を返す
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Client) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if c.fetchTimeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, c.fetchTimeout)
}

func (c *Client) lookup(k string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.staleTime {
		delete(c.entries, k)
		return nil, false
	}
	return e.value, true
}

func (c *Client) store(k string, v interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = entry{value: v, fetchedAt: c.now()}
}
