package retention

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	otelinfra "txhistory-server/internal/infrastructure/observability/otel"
)

// MockExpiredSweeper モック削除ストア
type MockExpiredSweeper struct {
	mock.Mock
}

func (m *MockExpiredSweeper) SweepExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type countingSweeper struct {
	calls atomic.Int64
}

func (c *countingSweeper) SweepExpired(context.Context) (int64, error) {
	c.calls.Add(1)
	return 1, nil
}

func newTestDeps(t *testing.T) (*otelinfra.Logger, *otelinfra.Metrics) {
	t.Helper()
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)
	return otelinfra.NewLogger(otelinfra.WithOutput(io.Discard)), metrics
}

func TestSweeper_SweepOnce(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*MockExpiredSweeper)
		want  int64
	}{
		{
			name: "正常系: 期限切れを削除",
			setup: func(m *MockExpiredSweeper) {
				m.On("SweepExpired", mock.Anything).Return(int64(3), nil)
			},
			want: 3,
		},
		{
			name: "正常系: 削除対象なし",
			setup: func(m *MockExpiredSweeper) {
				m.On("SweepExpired", mock.Anything).Return(int64(0), nil)
			},
			want: 0,
		},
		{
			name: "異常系: ストアエラーは0件扱い",
			setup: func(m *MockExpiredSweeper) {
				m.On("SweepExpired", mock.Anything).Return(int64(0), errors.New("db down"))
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockExpiredSweeper)
			tt.setup(store)
			logger, metrics := newTestDeps(t)

			s := NewSweeper(store, time.Minute, logger, metrics)
			assert.Equal(t, tt.want, s.SweepOnce(context.Background()))
			store.AssertExpectations(t)
		})
	}
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	store := &countingSweeper{}
	logger, metrics := newTestDeps(t)
	s := NewSweeper(store, 5*time.Millisecond, logger, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return store.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
