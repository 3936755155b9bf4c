package transaction

import (
	"context"
)

// TransactionManager ストレージトランザクション管理インターフェース
type TransactionManager interface {
	// WithTransaction 単一のストレージトランザクション内で関数を実行
	// fnがエラーを返した場合、storeへの書き込みは一切反映されない。
	WithTransaction(ctx context.Context, fn func(store KeyValueStore) error) error
}
