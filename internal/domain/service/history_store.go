package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"txhistory-server/internal/domain/transaction"
)

// Logger 書き込み結果を通知するログ出力先
type Logger interface {
	Info(ctx context.Context, message string, fields map[string]interface{})
	Warn(ctx context.Context, message string, fields map[string]interface{})
}

// RetentionPolicy 書き込み時に要求する保持期間
type RetentionPolicy struct {
	MinRemaining time.Duration
	ExtendTo     time.Duration
}

// HistoryStore トランザクション履歴ストアのドメインサービス
// ID採番、送信者・受信者への二重索引書き込み、履歴の参照を担う。
type HistoryStore struct {
	reader     transaction.KeyValueStore
	txManager  transaction.TransactionManager
	retention  transaction.RetentionExtender
	codec      transaction.Codec
	clock      transaction.Clock
	authorizer transaction.Authorizer
	logger     Logger
	policy     RetentionPolicy
}

// NewHistoryStore 新しいHistoryStoreを作成
func NewHistoryStore(
	reader transaction.KeyValueStore,
	txManager transaction.TransactionManager,
	retention transaction.RetentionExtender,
	codec transaction.Codec,
	clock transaction.Clock,
	authorizer transaction.Authorizer,
	logger Logger,
	policy RetentionPolicy,
) *HistoryStore {
	return &HistoryStore{
		reader:     reader,
		txManager:  txManager,
		retention:  retention,
		codec:      codec,
		clock:      clock,
		authorizer: authorizer,
		logger:     logger,
		policy:     policy,
	}
}

// NextID カウンターを1進めて新しいトランザクションIDを返す
// 同じストレージトランザクション内でレコードの追記と一緒にコミットすること。
func (s *HistoryStore) NextID(ctx context.Context, store transaction.KeyValueStore) (uint64, error) {
	current, err := s.loadCounter(ctx, store)
	if err != nil {
		return 0, err
	}
	if current == math.MaxUint64 {
		return 0, transaction.ErrCounterOverflow
	}

	next := current + 1
	if err := store.Set(ctx, transaction.CounterKey, s.codec.EncodeCounter(next)); err != nil {
		return 0, fmt.Errorf("failed to save transaction counter: %w", err)
	}
	return next, nil
}

// Record トランザクションを記録し、送信者と受信者の両方の履歴に追記する
func (s *HistoryStore) Record(
	ctx context.Context,
	sender transaction.AccountID,
	receiver transaction.AccountID,
	amount transaction.Amount,
	category transaction.Category,
	note string,
) (*transaction.Transaction, error) {
	if err := s.authorizer.RequireAuthorized(ctx, sender); err != nil {
		return nil, err
	}

	now := s.clock.CurrentTime()

	var recorded *transaction.Transaction
	err := s.txManager.WithTransaction(ctx, func(store transaction.KeyValueStore) error {
		id, err := s.NextID(ctx, store)
		if err != nil {
			return err
		}

		txn, err := transaction.NewTransaction(id, sender, receiver, amount, now, category, note)
		if err != nil {
			return err
		}

		if err := s.appendToSequence(ctx, store, sender, txn); err != nil {
			return err
		}
		// 自分自身への送金の場合は同じ履歴に2回追記される
		if err := s.appendToSequence(ctx, store, receiver, txn); err != nil {
			return err
		}

		recorded = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.extendRetention(ctx, sender, receiver)

	s.logger.Info(ctx, "Transaction recorded", map[string]interface{}{
		"tx_id": recorded.ID(),
	})

	return recorded, nil
}

// GetHistory アカウントの全履歴を追記順に返す（履歴がない場合は空）
func (s *HistoryStore) GetHistory(ctx context.Context, account transaction.AccountID) ([]*transaction.Transaction, error) {
	return s.loadSequence(ctx, s.reader, account)
}

// GetHistoryByCategory カテゴリが完全一致する履歴だけを順序を保って返す
func (s *HistoryStore) GetHistoryByCategory(
	ctx context.Context,
	account transaction.AccountID,
	category transaction.Category,
) ([]*transaction.Transaction, error) {
	all, err := s.GetHistory(ctx, account)
	if err != nil {
		return nil, err
	}

	filtered := make([]*transaction.Transaction, 0, len(all))
	for _, txn := range all {
		if txn.Category() == category {
			filtered = append(filtered, txn)
		}
	}
	return filtered, nil
}

// TotalCount 全体で記録されたトランザクション数を返す
func (s *HistoryStore) TotalCount(ctx context.Context) (uint64, error) {
	return s.loadCounter(ctx, s.reader)
}

// loadCounter カウンターを読み込む（存在しない場合は0）
func (s *HistoryStore) loadCounter(ctx context.Context, store transaction.KeyValueStore) (uint64, error) {
	data, ok, err := store.Get(ctx, transaction.CounterKey)
	if err != nil {
		return 0, fmt.Errorf("failed to load transaction counter: %w", err)
	}
	if !ok {
		return 0, nil
	}

	value, err := s.codec.DecodeCounter(data)
	if err != nil {
		return 0, fmt.Errorf("failed to decode transaction counter: %w", err)
	}
	return value, nil
}

// loadSequence アカウント履歴を読み込む（存在しない場合は空）
func (s *HistoryStore) loadSequence(
	ctx context.Context,
	store transaction.KeyValueStore,
	account transaction.AccountID,
) ([]*transaction.Transaction, error) {
	data, ok, err := store.Get(ctx, transaction.SequenceKey(account))
	if err != nil {
		return nil, fmt.Errorf("failed to load history of %s: %w", account, err)
	}
	if !ok {
		return []*transaction.Transaction{}, nil
	}

	sequence, err := s.codec.DecodeSequence(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode history of %s: %w", account, err)
	}
	return sequence, nil
}

// appendToSequence アカウント履歴の末尾にトランザクションを追記して保存
func (s *HistoryStore) appendToSequence(
	ctx context.Context,
	store transaction.KeyValueStore,
	account transaction.AccountID,
	txn *transaction.Transaction,
) error {
	sequence, err := s.loadSequence(ctx, store, account)
	if err != nil {
		return err
	}

	data, err := s.codec.EncodeSequence(append(sequence, txn))
	if err != nil {
		return fmt.Errorf("failed to encode history of %s: %w", account, err)
	}

	if err := store.Set(ctx, transaction.SequenceKey(account), data); err != nil {
		return fmt.Errorf("failed to save history of %s: %w", account, err)
	}
	return nil
}

// extendRetention 書き込んだキーの保持期間延長を要求する（失敗しても書き込みは成功扱い）
func (s *HistoryStore) extendRetention(ctx context.Context, sender, receiver transaction.AccountID) {
	keys := []transaction.Key{transaction.CounterKey, transaction.SequenceKey(sender)}
	if receiver != sender {
		keys = append(keys, transaction.SequenceKey(receiver))
	}

	if err := s.retention.ExtendTTL(ctx, keys, s.policy.MinRemaining, s.policy.ExtendTo); err != nil {
		s.logger.Warn(ctx, "Failed to extend retention", map[string]interface{}{
			"error": err.Error(),
			"keys":  len(keys),
		})
	}
}
