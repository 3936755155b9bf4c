package auth

import (
	"context"
	"fmt"

	"txhistory-server/internal/domain/transaction"
)

// ContextAuthorizer コンテキスト上の認証済み呼び出し元と照合するAuthorizer実装
type ContextAuthorizer struct{}

// NewContextAuthorizer 新しいContextAuthorizerを作成
func NewContextAuthorizer() *ContextAuthorizer {
	return &ContextAuthorizer{}
}

// RequireAuthorized 呼び出し元がprincipal本人であることを確認
func (a *ContextAuthorizer) RequireAuthorized(ctx context.Context, principal transaction.AccountID) error {
	caller, ok := PrincipalFrom(ctx)
	if !ok {
		return fmt.Errorf("%w: no authenticated caller", transaction.ErrUnauthorized)
	}
	if caller != principal {
		return fmt.Errorf("%w: caller %s cannot act as %s", transaction.ErrUnauthorized, caller, principal)
	}
	return nil
}
