package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"txhistory-server/internal/domain/transaction"
)

// querier *sql.DBと*sql.Txの共通部分
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// KVStore MySQL実装のKeyValueStore
// トランザクション内で作成されたものはロック付き読み取り（SELECT ... FOR UPDATE）を行う。
type KVStore struct {
	q          querier
	locking    bool
	tracer     trace.Tracer
	now        func() time.Time
	defaultTTL time.Duration
}

// NewKVStore 新しいKVStoreを作成
func NewKVStore(db *DB, defaultTTL time.Duration) *KVStore {
	return &KVStore{
		q:          db,
		tracer:     otel.Tracer("kv-store"),
		now:        time.Now,
		defaultTTL: defaultTTL,
	}
}

// inTx トランザクションに束縛されたKVStoreを返す
func (s *KVStore) inTx(tx *sql.Tx) *KVStore {
	return &KVStore{
		q:          tx,
		locking:    true,
		tracer:     s.tracer,
		now:        s.now,
		defaultTTL: s.defaultTTL,
	}
}

// Get キーの値を取得
func (s *KVStore) Get(ctx context.Context, key transaction.Key) ([]byte, bool, error) {
	ctx, span := s.tracer.Start(ctx, "KVStore.Get")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.key", string(key)),
		attribute.Bool("db.locking", s.locking),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "kv_entries"),
	)

	query := `SELECT v FROM kv_entries WHERE k = ?`
	if s.locking {
		query += ` FOR UPDATE`
	}

	var value []byte
	err := s.q.QueryRowContext(ctx, query, string(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "key not found")
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	span.SetAttributes(attribute.Int("db.value_size", len(value)))
	span.SetStatus(otelcodes.Ok, "key found")
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

// Set キーに値を保存（新規キーのみ既定の保持期限を設定）
func (s *KVStore) Set(ctx context.Context, key transaction.Key, value []byte) error {
	ctx, span := s.tracer.Start(ctx, "KVStore.Set")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.key", string(key)),
		attribute.Int("db.value_size", len(value)),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "kv_entries"),
	)

	if value == nil {
		value = []byte{}
	}

	query := `
		INSERT INTO kv_entries (k, v, expires_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			v = VALUES(v),
			updated_at = CURRENT_TIMESTAMP(6)
	`

	_, err := s.q.ExecContext(ctx, query, string(key), value, s.now().Add(s.defaultTTL))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	span.SetStatus(otelcodes.Ok, "key saved")
	return nil
}
