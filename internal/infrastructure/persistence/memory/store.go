package memory

import (
	"context"
	"sync"
	"time"

	"txhistory-server/internal/domain/transaction"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store プロセス内メモリのキー付きストア
// 書き込みトランザクションは直列化され、fnが成功した場合のみ変更をまとめて反映する。
type Store struct {
	mu         sync.RWMutex
	txMu       sync.Mutex
	entries    map[transaction.Key]entry
	now        func() time.Time
	defaultTTL time.Duration
}

// Option Storeの設定オプション
type Option func(*Store)

// WithNow 現在時刻の取得関数を差し替える
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore 新しいStoreを作成
func NewStore(defaultTTL time.Duration, opts ...Option) *Store {
	s := &Store{
		entries:    make(map[transaction.Key]entry),
		now:        time.Now,
		defaultTTL: defaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get キーの値を取得
func (s *Store) Get(ctx context.Context, key transaction.Key) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(e.value), true, nil
}

// Set キーに値を保存（トランザクション外の単発書き込み）
func (s *Store) Set(ctx context.Context, key transaction.Key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, value)
	return nil
}

// WithTransaction 書き込みを直列化し、fnが成功した場合のみ変更を反映
func (s *Store) WithTransaction(ctx context.Context, fn func(store transaction.KeyValueStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &stagedTx{parent: s, writes: make(map[transaction.Key][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range tx.order {
		s.put(key, tx.writes[key])
	}
	return nil
}

// ExtendTTL 残り保持期間がminRemaining未満のキーをextendToまで延長
func (s *Store) ExtendTTL(ctx context.Context, keys []transaction.Key, minRemaining, extendTo time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	threshold := now.Add(minRemaining)
	target := now.Add(extendTo)
	for _, key := range keys {
		e, ok := s.entries[key]
		if !ok {
			continue
		}
		if e.expiresAt.Before(threshold) && e.expiresAt.Before(target) {
			e.expiresAt = target
			s.entries[key] = e
		}
	}
	return nil
}

// SweepExpired 保持期限切れのアカウント履歴を削除し、削除件数を返す
// 1件の履歴は送信者と受信者の両方に載るため、すべてのシーケンスが期限切れになったときだけまとめて削除する。
// カウンターは削除しない。
func (s *Store) SweepExpired(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var expired []transaction.Key
	for key, e := range s.entries {
		if !transaction.IsSequenceKey(key) {
			continue
		}
		if !e.expiresAt.Before(now) {
			return 0, nil
		}
		expired = append(expired, key)
	}

	for _, key := range expired {
		delete(s.entries, key)
	}
	return int64(len(expired)), nil
}

// ExpiresAt キーの保持期限を返す
func (s *Store) ExpiresAt(key transaction.Key) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	return e.expiresAt, ok
}

// HealthCheck コンテキストが有効であれば成功する
func (s *Store) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

// put 値を保存する。既存キーの保持期限は維持する（呼び出し側でmuを保持すること）
func (s *Store) put(key transaction.Key, value []byte) {
	e, ok := s.entries[key]
	if !ok {
		e.expiresAt = s.now().Add(s.defaultTTL)
	}
	e.value = cloneBytes(value)
	s.entries[key] = e
}

// stagedTx トランザクション中の書き込みを保持するビュー
type stagedTx struct {
	parent *Store
	writes map[transaction.Key][]byte
	order  []transaction.Key
}

func (t *stagedTx) Get(ctx context.Context, key transaction.Key) ([]byte, bool, error) {
	if v, ok := t.writes[key]; ok {
		return cloneBytes(v), true, nil
	}
	return t.parent.Get(ctx, key)
}

func (t *stagedTx) Set(ctx context.Context, key transaction.Key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.writes[key]; !ok {
		t.order = append(t.order, key)
	}
	t.writes[key] = cloneBytes(value)
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
