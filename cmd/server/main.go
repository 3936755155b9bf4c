package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	authapp "txhistory-server/internal/application/auth"
	historyapp "txhistory-server/internal/application/history"
	"txhistory-server/internal/domain/service"
	authinfra "txhistory-server/internal/infrastructure/auth"
	"txhistory-server/internal/infrastructure/clock"
	"txhistory-server/internal/infrastructure/config"
	"txhistory-server/internal/infrastructure/messaging/amqp"
	otelinfra "txhistory-server/internal/infrastructure/observability/otel"
	"txhistory-server/internal/infrastructure/persistence"
	"txhistory-server/internal/infrastructure/persistence/codec"
	"txhistory-server/internal/infrastructure/retention"
	grpcserver "txhistory-server/internal/presentation/grpc"
	"txhistory-server/internal/presentation/rest"
)

const shutdownTimeout = 10 * time.Second

// eventPublisher 終了処理を持つイベント配信
type eventPublisher interface {
	historyapp.EventPublisher
	Close() error
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func run() error {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(ctx, &cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer shutdownWithTimeout("tracer", tracerShutdown)

	meterShutdown, err := otelinfra.InitMeter(ctx, &cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize meter: %w", err)
	}
	defer shutdownWithTimeout("meter", meterShutdown)

	logger := otelinfra.NewLogger(otelinfra.WithLevel(otelinfra.ParseLogLevel(cfg.LogLevel)))
	metrics, err := otelinfra.NewMetrics(cfg.OpenTelemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	// ストレージの初期化
	backend, err := persistence.NewBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := backend.Cleanup(); err != nil {
			logger.Error(context.Background(), "Failed to close storage", err, nil)
		}
	}()

	historyStore := service.NewHistoryStore(
		backend.Reader,
		backend.TxManager,
		backend.Retention,
		codec.NewProtoCodec(),
		clock.NewSystemClock(),
		authinfra.NewContextAuthorizer(),
		logger,
		service.RetentionPolicy{
			MinRemaining: cfg.Retention.MinRemaining,
			ExtendTo:     cfg.Retention.ExtendTo,
		},
	)

	publisher, err := newEventPublisher(&cfg.AMQP)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error(context.Background(), "Failed to close event publisher", err, nil)
		}
	}()

	historyService := historyapp.NewHistoryApplicationService(historyStore, publisher, logger, metrics)
	authService := authapp.NewAuthApplicationService(&cfg.JWT, logger)

	router := rest.NewRouter(cfg, logger, metrics, historyService, authService, backend.HealthCheck)
	grpcSrv, err := grpcserver.NewServer(cfg, logger, metrics, historyService)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	logger.Info(ctx, "Starting servers", map[string]interface{}{
		"rest_port":      cfg.Server.Port,
		"grpc_port":      cfg.Server.GRPCPort,
		"storage_driver": backend.Driver,
		"amqp_enabled":   cfg.AMQP.Enabled,
		"sweep_enabled":  cfg.Retention.SweepEnabled,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return router.Start(fmt.Sprintf(":%d", cfg.Server.Port))
	})

	g.Go(grpcSrv.Start)

	if cfg.Retention.SweepEnabled {
		sweeper := retention.NewSweeper(backend.Sweeper, cfg.Retention.SweepInterval, logger, metrics)
		g.Go(func() error {
			return sweeper.Run(gctx)
		})
	}

	// シグナル受信またはいずれかのサーバー停止でシャットダウン
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "Shutting down servers", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var firstErr error
		if err := router.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "Error shutting down REST API server", err, nil)
			firstErr = err
		}
		if err := grpcSrv.Stop(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "Error shutting down gRPC server", err, nil)
			if firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info(context.Background(), "Servers stopped", nil)
	return nil
}

// newEventPublisher 設定に応じたイベント配信を作成
func newEventPublisher(cfg *config.AMQPConfig) (eventPublisher, error) {
	if !cfg.Enabled {
		return amqp.NoopPublisher{}, nil
	}
	return amqp.NewPublisher(cfg.URL, cfg.Exchange, cfg.RoutingKey)
}

func shutdownWithTimeout(name string, shutdown otelinfra.ShutdownFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown %s: %v", name, err)
	}
}
