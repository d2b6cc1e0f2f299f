package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, `["order","123"]`, Key("order", "123"))
	assert.Equal(t, `["order",""]`, Key("order", ""))
}

func TestFetch_CachesWithinStaleTime(t *testing.T) {
	c := NewClient(time.Minute, 0)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	var calls int32
	fn := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "value", nil
	}

	v, res, err := Fetch(context.Background(), c, []string{"order", "1"}, fn)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.False(t, res.Cached)

	v, res, err = Fetch(context.Background(), c, []string{"order", "1"}, fn)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.True(t, res.Cached)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// 期限切れ後は再取得する
	now = now.Add(time.Minute)
	_, res, err = Fetch(context.Background(), c, []string{"order", "1"}, fn)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	c := NewClient(time.Minute, 0)

	_, _, err := Fetch(context.Background(), c, []string{"order", "1"}, func(context.Context) (int, error) {
		return 0, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, c.Len())

	v, _, err := Fetch(context.Background(), c, []string{"order", "1"}, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFetch_CollapsesConcurrentCalls(t *testing.T) {
	c := NewClient(time.Minute, 0)

	var calls int32
	release := make(chan struct{})
	fn := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "value", nil
	}

	var wg sync.WaitGroup
	started := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started <- struct{}{}
			v, _, err := Fetch(context.Background(), c, []string{"order", "1"}, fn)
			assert.NoError(t, err)
			assert.Equal(t, "value", v)
		}()
	}
	for i := 0; i < 10; i++ {
		<-started
	}
	// 全ゴルーチンが待機に入るまで少し待つ
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(10))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
	assert.Equal(t, 1, c.Len())
}

func TestFetch_ContextCanceled(t *testing.T) {
	c := NewClient(time.Minute, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	defer close(block)
	_, _, err := Fetch(ctx, c, []string{"order", "1"}, func(context.Context) (string, error) {
		<-block
		return "", errors.New("unreachable")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetch_SharedFetchSurvivesFirstCallerCancel(t *testing.T) {
	c := NewClient(time.Minute, 0)

	started := make(chan struct{})
	release := make(chan struct{})
	fn := func(ctx context.Context) (string, error) {
		close(started)
		select {
		case <-release:
			return "value", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, _, err := Fetch(ctxA, c, []string{"order", "1"}, fn)
		errA <- err
	}()
	<-started

	type result struct {
		v   string
		err error
	}
	resB := make(chan result, 1)
	go func() {
		v, _, err := Fetch(context.Background(), c, []string{"order", "1"}, fn)
		resB <- result{v, err}
	}()
	// Bが共有待ちに入るまで少し待つ
	time.Sleep(20 * time.Millisecond)

	// 最初の呼び出し元だけをキャンセルする
	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	got := <-resB
	require.NoError(t, got.err)
	assert.Equal(t, "value", got.v)
	assert.Equal(t, 1, c.Len())
}

func TestFetch_FetchTimeout(t *testing.T) {
	c := NewClient(time.Minute, 10*time.Millisecond)

	_, _, err := Fetch(context.Background(), c, []string{"order", "1"}, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, c.Len())
}

func TestInvalidate(t *testing.T) {
	fill := func(t *testing.T, c *Client, keys ...[]string) {
		t.Helper()
		for _, key := range keys {
			_, _, err := Fetch(context.Background(), c, key, func(context.Context) (string, error) {
				return "v", nil
			})
			require.NoError(t, err)
		}
	}

	tests := []struct {
		name    string
		prefix  []string
		wantLen int
	}{
		{
			name:    "正常系: 完全一致のキーを破棄",
			prefix:  []string{"order", "1", "user-a"},
			wantLen: 3,
		},
		{
			name:    "正常系: プレフィックスに一致するキーをすべて破棄",
			prefix:  []string{"order", "1"},
			wantLen: 2,
		},
		{
			name:    "正常系: 要素の途中までは一致しない",
			prefix:  []string{"order", "1-"},
			wantLen: 4,
		},
		{
			name:    "正常系: 空のプレフィックスは全件破棄",
			prefix:  nil,
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(time.Minute, 0)
			fill(t, c,
				[]string{"order", "1", "user-a"},
				[]string{"order", "1", "user-b"},
				[]string{"order", "10", "user-a"},
				[]string{"product", "1"},
			)
			require.Equal(t, 4, c.Len())

			c.Invalidate(tt.prefix...)
			assert.Equal(t, tt.wantLen, c.Len())
		})
	}
}
