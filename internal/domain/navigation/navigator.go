package navigation

import "sync"

// Mode 遷移方法
type Mode string

const (
	// ModePush 履歴に追加して遷移
	ModePush Mode = "push"
	// ModeReplace 現在の履歴を置き換えて遷移（戻るボタンで戻らない）
	ModeReplace Mode = "replace"
)

// Navigation 遷移の指示
type Navigation struct {
	Path string `json:"path"`
	Mode Mode   `json:"mode"`
}

// Navigator ルーターインターフェース
type Navigator interface {
	Push(path string)
	Replace(path string)
}

// Recorder 最後の遷移を記録するNavigator
// 配信はプレゼンテーション層が行う
type Recorder struct {
	mu   sync.Mutex
	last *Navigation
	n    int
}

// NewRecorder 新しいRecorderを作成
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Push 履歴に追加する遷移を記録
func (r *Recorder) Push(path string) {
	r.record(Navigation{Path: path, Mode: ModePush})
}

// Replace 履歴を置き換える遷移を記録
func (r *Recorder) Replace(path string) {
	r.record(Navigation{Path: path, Mode: ModeReplace})
}

func (r *Recorder) record(nav Navigation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &nav
	r.n++
}

// Last 最後に記録された遷移を返す
func (r *Recorder) Last() (Navigation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Navigation{}, false
	}
	return *r.last, true
}

// Count 記録された遷移の回数を返す
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}
