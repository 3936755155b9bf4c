package auth

import (
	"context"

	"txhistory-server/internal/domain/transaction"
)

type principalKey struct{}

// WithPrincipal 認証済みの呼び出し元をコンテキストに設定
func WithPrincipal(ctx context.Context, account transaction.AccountID) context.Context {
	return context.WithValue(ctx, principalKey{}, account)
}

// PrincipalFrom コンテキストから認証済みの呼び出し元を取得
func PrincipalFrom(ctx context.Context) (transaction.AccountID, bool) {
	account, ok := ctx.Value(principalKey{}).(transaction.AccountID)
	if !ok || account == "" {
		return "", false
	}
	return account, true
}
