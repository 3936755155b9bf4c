package retention

import (
	"context"
	"time"

	otelinfra "txhistory-server/internal/infrastructure/observability/otel"
)

// ExpiredSweeper 期限切れデータの削除を行うストア
type ExpiredSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Sweeper 期限切れのアカウント履歴を定期的に削除する
type Sweeper struct {
	store    ExpiredSweeper
	interval time.Duration
	logger   *otelinfra.Logger
	metrics  *otelinfra.Metrics
}

// NewSweeper 新しいSweeperを作成
func NewSweeper(store ExpiredSweeper, interval time.Duration, logger *otelinfra.Logger, metrics *otelinfra.Metrics) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run ctxが終了するまでinterval毎に削除を実行
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "Retention sweeper started", map[string]interface{}{
		"interval": s.interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Retention sweeper stopped", nil)
			return nil
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce 削除を1回実行し、削除件数を返す（失敗時は0）
func (s *Sweeper) SweepOnce(ctx context.Context) int64 {
	removed, err := s.store.SweepExpired(ctx)
	if err != nil {
		s.logger.Error(ctx, "Failed to sweep expired histories", err, nil)
		s.metrics.RecordError(ctx, "retention_sweep")
		return 0
	}

	if removed > 0 {
		s.metrics.RecordSweep(ctx, removed)
		s.logger.Info(ctx, "Expired histories removed", map[string]interface{}{
			"removed": removed,
		})
	}
	return removed
}
