package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"txhistory-server/internal/domain/transaction"
)

const (
	// errDeadlock ER_LOCK_DEADLOCK
	errDeadlock = 1213
	// maxDeadlockRetries デッドロック時の再試行回数
	maxDeadlockRetries = 3
)

// txOptions 書き込みトランザクションの分離レベル
// 未作成のTX_COUNT行へのFOR UPDATEはギャップロックに依存するため、
// サーバーの既定値に関わらずREPEATABLE READで実行する。
var txOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead}

// TransactionManager トランザクション管理を提供
type TransactionManager struct {
	db     *DB
	store  *KVStore
	tracer trace.Tracer
}

// NewTransactionManager 新しいトランザクションマネージャーを作成
func NewTransactionManager(db *DB, store *KVStore) *TransactionManager {
	return &TransactionManager{
		db:     db,
		store:  store,
		tracer: otel.Tracer("transaction-manager"),
	}
}

// WithTransaction トランザクション内で関数を実行
// 初回書き込みが競合した場合のInnoDBデッドロックは再試行する。
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(store transaction.KeyValueStore) error) error {
	ctx, span := tm.tracer.Start(ctx, "TransactionManager.WithTransaction")
	defer span.End()

	var err error
	for attempt := 1; attempt <= maxDeadlockRetries; attempt++ {
		span.SetAttributes(attribute.Int("db.attempt", attempt))

		err = tm.run(ctx, fn)
		if err == nil || !isDeadlock(err) {
			break
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}
	span.SetStatus(otelcodes.Ok, "committed")
	return nil
}

func (tm *TransactionManager) run(ctx context.Context, fn func(store transaction.KeyValueStore) error) (err error) {
	tx, err := tm.db.BeginTx(ctx, txOptions)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cerr)
		}
	}()

	err = fn(tm.store.inTx(tx))
	return err
}

func isDeadlock(err error) bool {
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == errDeadlock
}
