package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

// テンプレート名
const (
	LoadingTemplate  = "loading.html"
	SuccessTemplate  = "success.html"
	NavigateTemplate = "navigate.html"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadingData ローディング画面の表示データ
type LoadingData struct {
	// RefreshURL 状態を再取得するURL
	RefreshURL string
	// RefreshSeconds 再取得までの秒数
	RefreshSeconds int
}

// SuccessData 決済完了画面の表示データ
type SuccessData struct {
	// CloseURL 閉じるボタンの送信先
	CloseURL string
	// CSRFField / CSRFToken フォームに埋め込むCSRFトークン
	CSRFField string
	CSRFToken string
}

// NavigateData 履歴を置き換える遷移の表示データ
type NavigateData struct {
	Path string
}

// Renderer echo.Renderer実装（埋め込みテンプレートを使用）
type Renderer struct {
	templates *template.Template
}

// NewRenderer 新しいRendererを作成
func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// Render テンプレートを描画する
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
