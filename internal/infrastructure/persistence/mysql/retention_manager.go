package mysql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"txhistory-server/internal/domain/transaction"
)

// RetentionManager 保持期限の延長と期限切れデータの削除
type RetentionManager struct {
	db     *DB
	tracer trace.Tracer
	now    func() time.Time
}

// NewRetentionManager 新しいRetentionManagerを作成
func NewRetentionManager(db *DB) *RetentionManager {
	return &RetentionManager{
		db:     db,
		tracer: otel.Tracer("retention-manager"),
		now:    time.Now,
	}
}

// ExtendTTL 残り保持期間がminRemaining未満のキーをextendToまで延長
func (r *RetentionManager) ExtendTTL(ctx context.Context, keys []transaction.Key, minRemaining, extendTo time.Duration) error {
	if len(keys) == 0 {
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "RetentionManager.ExtendTTL")
	defer span.End()

	now := r.now()
	target := now.Add(extendTo)
	cutoff := now.Add(minRemaining)
	// 延長によって期限が短くならないようにする
	if target.Before(cutoff) {
		cutoff = target
	}

	span.SetAttributes(
		attribute.Int("db.keys", len(keys)),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "kv_entries"),
	)

	args := make([]any, 0, len(keys)+2)
	args = append(args, target)
	for _, key := range keys {
		args = append(args, string(key))
	}
	args = append(args, cutoff)

	query := fmt.Sprintf(`
		UPDATE kv_entries
		SET expires_at = ?
		WHERE k IN (%s) AND expires_at < ?
	`, placeholders(len(keys)))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to extend retention: %w", err)
	}

	if rowsAffected, err := result.RowsAffected(); err == nil {
		span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	}
	span.SetStatus(otelcodes.Ok, "retention extended")
	return nil
}

// SweepExpired 保持期限切れのアカウント履歴を削除し、削除件数を返す
// 1件の履歴は送信者と受信者の両方のシーケンスに載るため、すべてのシーケンスが
// 期限切れになった時点でまとめて削除する。カウンターは期限に関わらず削除しない（ID再利用の防止）。
func (r *RetentionManager) SweepExpired(ctx context.Context) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "RetentionManager.SweepExpired")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.table", "kv_entries"),
	)

	fail := func(err error) (int64, error) {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, err
	}

	pattern := transaction.SequenceKeyPrefix + "%"

	tx, err := r.db.BeginTx(ctx, txOptions)
	if err != nil {
		return fail(fmt.Errorf("failed to begin sweep: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	// 書き込みと競合しないよう、判定対象の行をロックする
	var alive int64
	query := `SELECT COUNT(*) FROM kv_entries WHERE k LIKE ? AND expires_at >= ? FOR UPDATE`
	if err := tx.QueryRowContext(ctx, query, pattern, r.now()).Scan(&alive); err != nil {
		return fail(fmt.Errorf("failed to check live sequences: %w", err))
	}
	if alive > 0 {
		if err := tx.Commit(); err != nil {
			return fail(fmt.Errorf("failed to commit sweep: %w", err))
		}
		span.SetAttributes(attribute.Int64("db.live_sequences", alive), attribute.Int64("db.rows_affected", 0))
		span.SetStatus(otelcodes.Ok, "history region still live")
		return 0, nil
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM kv_entries WHERE k LIKE ?`, pattern)
	if err != nil {
		return fail(fmt.Errorf("failed to sweep expired entries: %w", err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fail(fmt.Errorf("failed to get rows affected: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return fail(fmt.Errorf("failed to commit sweep: %w", err))
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	span.SetStatus(otelcodes.Ok, "expired entries swept")
	return rowsAffected, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
