package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txhistory-server/internal/domain/transaction"
	"txhistory-server/internal/infrastructure/config"
)

func TestNewBackend_Memory(t *testing.T) {
	cfg := &config.Config{
		Storage:   config.StorageConfig{Driver: config.StorageDriverMemory},
		Retention: config.RetentionConfig{ExtendTo: time.Hour},
	}

	backend, err := NewBackend(context.Background(), cfg)
	require.NoError(t, err)
	defer backend.Cleanup()

	assert.Equal(t, config.StorageDriverMemory, backend.Driver)
	assert.NoError(t, backend.HealthCheck(context.Background()))

	ctx := context.Background()
	err = backend.TxManager.WithTransaction(ctx, func(store transaction.KeyValueStore) error {
		return store.Set(ctx, transaction.CounterKey, []byte{0x01})
	})
	require.NoError(t, err)

	got, ok, err := backend.Reader.Get(ctx, transaction.CounterKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x01}, got)

	removed, err := backend.Sweeper.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestNewBackend_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "bolt"}}

	_, err := NewBackend(context.Background(), cfg)
	assert.Error(t, err)
}
