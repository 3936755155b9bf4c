package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"txhistory-server/internal/domain/transaction"
	"txhistory-server/internal/infrastructure/persistence/codec"
	"txhistory-server/internal/infrastructure/persistence/memory"
)

// fixedClock 固定時刻を返すClock
type fixedClock struct {
	now uint64
}

func (c fixedClock) CurrentTime() uint64 {
	return c.now
}

// MockAuthorizer モック認可
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) RequireAuthorized(ctx context.Context, principal transaction.AccountID) error {
	args := m.Called(ctx, principal)
	return args.Error(0)
}

// MockRetentionExtender モック保持期間延長
type MockRetentionExtender struct {
	mock.Mock
}

func (m *MockRetentionExtender) ExtendTTL(ctx context.Context, keys []transaction.Key, minRemaining, extendTo time.Duration) error {
	args := m.Called(ctx, keys, minRemaining, extendTo)
	return args.Error(0)
}

// recordingLogger 出力されたログを記録するLogger
type recordingLogger struct {
	mu    sync.Mutex
	infos []map[string]interface{}
	warns []string
}

func (l *recordingLogger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := map[string]interface{}{"message": message}
	for k, v := range fields {
		entry[k] = v
	}
	l.infos = append(l.infos, entry)
}

func (l *recordingLogger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, message)
}

// allowSender 送信者本人であれば許可する認可
type allowSender struct {
	caller transaction.AccountID
}

func (a allowSender) RequireAuthorized(ctx context.Context, principal transaction.AccountID) error {
	if principal != a.caller {
		return transaction.ErrUnauthorized
	}
	return nil
}

type noopRetention struct{}

func (noopRetention) ExtendTTL(context.Context, []transaction.Key, time.Duration, time.Duration) error {
	return nil
}

var testPolicy = RetentionPolicy{MinRemaining: time.Hour, ExtendTo: 2 * time.Hour}

func newTestHistoryStore(authorizer transaction.Authorizer, retention transaction.RetentionExtender, logger Logger) (*HistoryStore, *memory.Store) {
	store := memory.NewStore(time.Hour)
	return NewHistoryStore(
		store,
		store,
		retention,
		codec.NewProtoCodec(),
		fixedClock{now: 1700000000},
		authorizer,
		logger,
		testPolicy,
	), store
}

// recordAs 呼び出し元をsenderとして記録する
func recordAs(t *testing.T, s *HistoryStore, sender, receiver transaction.AccountID, amount int64, category transaction.Category, note string) *transaction.Transaction {
	t.Helper()
	s.authorizer = allowSender{caller: sender}
	txn, err := s.Record(context.Background(), sender, receiver, transaction.NewAmountFromInt64(amount), category, note)
	require.NoError(t, err)
	return txn
}

func ids(sequence []*transaction.Transaction) []uint64 {
	out := make([]uint64, 0, len(sequence))
	for _, txn := range sequence {
		out = append(out, txn.ID())
	}
	return out
}

func TestHistoryStore_SendAndRefundScenario(t *testing.T) {
	s, _ := newTestHistoryStore(allowSender{}, noopRetention{}, &recordingLogger{})
	ctx := context.Background()

	first := recordAs(t, s, "alice", "bob", 1000, transaction.CategorySend, "pay")
	second := recordAs(t, s, "bob", "alice", 500, transaction.CategorySend, "refund")
	assert.Equal(t, uint64(1), first.ID())
	assert.Equal(t, uint64(2), second.ID())
	assert.Equal(t, uint64(1700000000), first.OccurredAt())

	count, err := s.TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	aliceHistory, err := s.GetHistory(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids(aliceHistory))

	bobHistory, err := s.GetHistory(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids(bobHistory))

	sends, err := s.GetHistoryByCategory(ctx, "alice", transaction.CategorySend)
	require.NoError(t, err)
	assert.Len(t, sends, 2)

	// 送信者本人でない呼び出し
	s.authorizer = allowSender{caller: "mallory"}
	_, err = s.Record(ctx, "alice", "bob", transaction.NewAmountFromInt64(1), transaction.CategorySend, "steal")
	assert.ErrorIs(t, err, transaction.ErrUnauthorized)

	count, err = s.TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestHistoryStore_IDsAreSequential(t *testing.T) {
	s, _ := newTestHistoryStore(allowSender{}, noopRetention{}, &recordingLogger{})
	ctx := context.Background()

	const n = 25
	seen := make(map[uint64]bool, n)
	for i := 0; i < n; i++ {
		txn := recordAs(t, s, "alice", "bob", int64(i), transaction.CategorySend, "")
		assert.False(t, seen[txn.ID()], "duplicate id %d", txn.ID())
		seen[txn.ID()] = true
	}

	for id := uint64(1); id <= n; id++ {
		assert.True(t, seen[id], "missing id %d", id)
	}

	count, err := s.TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(n), count)
}

func TestHistoryStore_ConcurrentRecords(t *testing.T) {
	store := memory.NewStore(time.Hour)
	s := NewHistoryStore(store, store, noopRetention{}, codec.NewProtoCodec(), fixedClock{now: 1},
		allowSender{caller: "alice"}, &recordingLogger{}, testPolicy)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Record(ctx, "alice", "bob", transaction.NewAmountFromInt64(1), transaction.CategorySend, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := s.TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(workers), count)

	history, err := s.GetHistory(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, history, workers)
}

func TestHistoryStore_RecordAppearsOnlyForParticipants(t *testing.T) {
	s, _ := newTestHistoryStore(allowSender{}, noopRetention{}, &recordingLogger{})
	ctx := context.Background()

	txn := recordAs(t, s, "alice", "bob", 10, transaction.CategorySend, "")

	for _, tt := range []struct {
		account transaction.AccountID
		want    int
	}{
		{account: "alice", want: 1},
		{account: "bob", want: 1},
		{account: "carol", want: 0},
	} {
		history, err := s.GetHistory(ctx, tt.account)
		require.NoError(t, err)
		require.Len(t, history, tt.want, "account %s", tt.account)
		if tt.want == 1 {
			assert.Equal(t, txn, history[0])
		}
	}
}

func TestHistoryStore_SelfTransferAppearsTwice(t *testing.T) {
	retention := new(MockRetentionExtender)
	retention.On("ExtendTTL", mock.Anything,
		[]transaction.Key{transaction.CounterKey, transaction.SequenceKey("alice")},
		testPolicy.MinRemaining, testPolicy.ExtendTo,
	).Return(nil).Once()

	s, _ := newTestHistoryStore(allowSender{}, retention, &recordingLogger{})

	txn := recordAs(t, s, "alice", "alice", 7, "self", "")

	history, err := s.GetHistory(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, txn.ID(), history[0].ID())
	assert.Equal(t, txn.ID(), history[1].ID())

	retention.AssertExpectations(t)
}

func TestHistoryStore_GetHistoryByCategory(t *testing.T) {
	s, _ := newTestHistoryStore(allowSender{}, noopRetention{}, &recordingLogger{})
	ctx := context.Background()

	recordAs(t, s, "alice", "bob", 1, transaction.CategorySend, "")
	recordAs(t, s, "bob", "alice", 2, transaction.CategoryReceive, "")
	recordAs(t, s, "alice", "carol", 3, transaction.CategorySend, "")
	recordAs(t, s, "alice", "dex", 4, transaction.CategoryContractCall, "")
	recordAs(t, s, "alice", "bob", 5, "", "untagged")
	longCategory := transaction.Category(strings.Repeat("c", 200))
	recordAs(t, s, "erin", "alice", 6, longCategory, "")

	tests := []struct {
		name     string
		category transaction.Category
		want     []uint64
	}{
		{name: "正常系: send", category: transaction.CategorySend, want: []uint64{1, 3}},
		{name: "正常系: receive", category: transaction.CategoryReceive, want: []uint64{2}},
		{name: "正常系: contract_call", category: transaction.CategoryContractCall, want: []uint64{4}},
		{name: "正常系: 該当なし", category: "unknown", want: []uint64{}},
		{name: "正常系: 大文字小文字は区別する", category: "SEND", want: []uint64{}},
		{name: "正常系: 空のカテゴリで絞り込み", category: "", want: []uint64{5}},
		{name: "正常系: 長いカテゴリ", category: longCategory, want: []uint64{6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.GetHistoryByCategory(ctx, "alice", tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestHistoryStore_EmptyAndIdempotentReads(t *testing.T) {
	s, _ := newTestHistoryStore(allowSender{}, noopRetention{}, &recordingLogger{})
	ctx := context.Background()

	empty, err := s.GetHistory(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	count, err := s.TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	recordAs(t, s, "alice", "bob", 1, transaction.CategorySend, "x")

	first, err := s.GetHistory(ctx, "alice")
	require.NoError(t, err)
	second, err := s.GetHistory(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHistoryStore_Record_Errors(t *testing.T) {
	tests := []struct {
		name     string
		sender   transaction.AccountID
		receiver transaction.AccountID
		category transaction.Category
		setup    func(*MockAuthorizer)
		wantErr  error
	}{
		{
			name:     "異常系: 認可エラー",
			sender:   "alice",
			receiver: "bob",
			category: transaction.CategorySend,
			setup: func(m *MockAuthorizer) {
				m.On("RequireAuthorized", mock.Anything, transaction.AccountID("alice")).Return(transaction.ErrUnauthorized)
			},
			wantErr: transaction.ErrUnauthorized,
		},
		{
			name:     "異常系: 不正な受信者",
			sender:   "alice",
			receiver: "bob/../x",
			category: transaction.CategorySend,
			setup: func(m *MockAuthorizer) {
				m.On("RequireAuthorized", mock.Anything, transaction.AccountID("alice")).Return(nil)
			},
			wantErr: transaction.ErrInvalidAccountID,
		},
		{
			name:     "異常系: 不正なUTF-8のカテゴリ",
			sender:   "alice",
			receiver: "bob",
			category: "\xff\xfe",
			setup: func(m *MockAuthorizer) {
				m.On("RequireAuthorized", mock.Anything, transaction.AccountID("alice")).Return(nil)
			},
			wantErr: transaction.ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authorizer := new(MockAuthorizer)
			tt.setup(authorizer)
			logger := &recordingLogger{}
			s, _ := newTestHistoryStore(authorizer, noopRetention{}, logger)
			ctx := context.Background()

			got, err := s.Record(ctx, tt.sender, tt.receiver, transaction.NewAmountFromInt64(1), tt.category, "")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)

			count, err := s.TotalCount(ctx)
			require.NoError(t, err)
			assert.Equal(t, uint64(0), count)
			assert.Empty(t, logger.infos)

			authorizer.AssertExpectations(t)
		})
	}
}

func TestHistoryStore_NextID_Overflow(t *testing.T) {
	s, store := newTestHistoryStore(allowSender{caller: "alice"}, noopRetention{}, &recordingLogger{})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, transaction.CounterKey, codec.NewProtoCodec().EncodeCounter(^uint64(0))))

	_, err := s.Record(ctx, "alice", "bob", transaction.NewAmountFromInt64(1), transaction.CategorySend, "")
	assert.ErrorIs(t, err, transaction.ErrCounterOverflow)

	history, err := s.GetHistory(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryStore_Record_LogsAndExtendsRetention(t *testing.T) {
	retention := new(MockRetentionExtender)
	retention.On("ExtendTTL", mock.Anything,
		[]transaction.Key{transaction.CounterKey, transaction.SequenceKey("alice"), transaction.SequenceKey("bob")},
		time.Hour, 2*time.Hour,
	).Return(errors.New("storage busy"))

	logger := &recordingLogger{}
	s, _ := newTestHistoryStore(allowSender{caller: "alice"}, retention, logger)

	txn, err := s.Record(context.Background(), "alice", "bob", transaction.NewAmountFromInt64(1), transaction.CategorySend, "")
	require.NoError(t, err, "retention failure must not fail the write")

	require.Len(t, logger.infos, 1)
	assert.Equal(t, "Transaction recorded", logger.infos[0]["message"])
	assert.Equal(t, txn.ID(), logger.infos[0]["tx_id"])
	assert.Equal(t, []string{"Failed to extend retention"}, logger.warns)

	retention.AssertExpectations(t)
}

func TestHistoryStore_CorruptedCounter(t *testing.T) {
	s, store := newTestHistoryStore(allowSender{caller: "alice"}, noopRetention{}, &recordingLogger{})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, transaction.CounterKey, []byte{0x80}))

	_, err := s.TotalCount(ctx)
	assert.ErrorIs(t, err, transaction.ErrCorruptedRecord)
}
