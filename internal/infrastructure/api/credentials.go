package api

import "context"

type credentialsKey struct{}

// Credentials バックエンドAPIへ転送する利用者の認証情報
type Credentials struct {
	UserID      string
	AccessToken string
}

// WithCredentials 認証情報をコンテキストに設定
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// CredentialsFromContext コンテキストから認証情報を取得
func CredentialsFromContext(ctx context.Context) (Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey{}).(Credentials)
	return creds, ok
}
