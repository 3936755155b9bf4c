package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	historyapp "txhistory-server/internal/application/history"
	"txhistory-server/internal/infrastructure/config"
	otelinfra "txhistory-server/internal/infrastructure/observability/otel"
	"txhistory-server/internal/presentation/grpc/handler"
	"txhistory-server/internal/presentation/grpc/interceptor"
	"txhistory-server/internal/presentation/grpc/pb"
)

// Server gRPCサーバー
type Server struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	logger   *otelinfra.Logger
}

// NewServer 新しいgRPCサーバーを作成
func NewServer(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	historyService *historyapp.HistoryApplicationService,
) (*Server, error) {
	address := fmt.Sprintf(":%d", cfg.Server.GRPCPort)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	return NewServerWithListener(cfg, logger, metrics, historyService, listener), nil
}

// NewServerWithListener リスナーを指定してgRPCサーバーを作成
func NewServerWithListener(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	historyService *historyapp.HistoryApplicationService,
	listener net.Listener,
) *Server {
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			interceptor.LoggingInterceptor(logger, metrics),
			interceptor.ForMethods(
				interceptor.AuthInterceptor(&cfg.JWT, logger),
				pb.TransactionHistoryService_RecordTransaction_FullMethodName,
				pb.TransactionHistoryService_GetTransactionHistory_FullMethodName,
				pb.TransactionHistoryService_GetTotalCount_FullMethodName,
			),
			interceptor.ForMethods(
				interceptor.APIKeyInterceptor(&cfg.AdminAPI, logger),
				pb.TransactionHistoryService_GetAccountHistory_FullMethodName,
			),
		),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     15 * time.Second,
			MaxConnectionAge:      30 * time.Second,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  5 * time.Second,
			Timeout:               1 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	grpcServer := grpc.NewServer(opts...)
	pb.RegisterTransactionHistoryServiceServer(grpcServer, handler.NewHistoryHandler(historyService))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &Server{
		server:   grpcServer,
		health:   healthServer,
		listener: listener,
		logger:   logger,
	}
}

// Start サーバーを起動（Stopによる停止はnilを返す）
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "gRPC server starting", map[string]interface{}{
		"address": s.listener.Addr().String(),
	})
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop サーバーを停止（ctxの期限を過ぎた場合は強制停止）
func (s *Server) Stop(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info(ctx, "gRPC server stopped", nil)
		return nil
	case <-ctx.Done():
		s.logger.Warn(ctx, "gRPC server shutdown timeout, forcing stop", nil)
		s.server.Stop()
		return ctx.Err()
	}
}

// Addr リスナーのアドレスを返す
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
