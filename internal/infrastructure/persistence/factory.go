package persistence

import (
	"context"
	"fmt"
	"time"

	"txhistory-server/internal/domain/transaction"
	"txhistory-server/internal/infrastructure/config"
	"txhistory-server/internal/infrastructure/persistence/memory"
	"txhistory-server/internal/infrastructure/persistence/mysql"
)

// Backend ストレージドライバーごとの実装一式
type Backend struct {
	Driver    string
	Reader    transaction.KeyValueStore
	TxManager transaction.TransactionManager
	Retention transaction.RetentionExtender
	Sweeper   interface {
		SweepExpired(ctx context.Context) (int64, error)
	}
	HealthCheck func(ctx context.Context) error
	Cleanup     func() error
}

// NewBackend 設定に応じたストレージを初期化
func NewBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	// 新規キーの保持期限は延長後の期間と同じにする
	defaultTTL := cfg.Retention.ExtendTo

	switch cfg.Storage.Driver {
	case config.StorageDriverMySQL:
		return newMySQLBackend(ctx, &cfg.Database, defaultTTL)
	case config.StorageDriverMemory:
		return newMemoryBackend(defaultTTL), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}

func newMySQLBackend(ctx context.Context, cfg *config.DatabaseConfig, defaultTTL time.Duration) (*Backend, error) {
	if cfg.AutoMigrate {
		if err := mysql.RunMigrations(cfg); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	db, err := mysql.NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := mysql.NewKVStore(db, defaultTTL)
	retention := mysql.NewRetentionManager(db)

	return &Backend{
		Driver:      config.StorageDriverMySQL,
		Reader:      store,
		TxManager:   mysql.NewTransactionManager(db, store),
		Retention:   retention,
		Sweeper:     retention,
		HealthCheck: db.HealthCheck,
		Cleanup:     db.Close,
	}, nil
}

func newMemoryBackend(defaultTTL time.Duration) *Backend {
	store := memory.NewStore(defaultTTL)
	return &Backend{
		Driver:      config.StorageDriverMemory,
		Reader:      store,
		TxManager:   store,
		Retention:   store,
		Sweeper:     store,
		HealthCheck: store.HealthCheck,
		Cleanup:     func() error { return nil },
	}
}
