package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	authapp "txhistory-server/internal/application/auth"
	historyapp "txhistory-server/internal/application/history"
	"txhistory-server/internal/infrastructure/config"
	otelinfra "txhistory-server/internal/infrastructure/observability/otel"
	"txhistory-server/internal/presentation/rest/handler"
	restmiddleware "txhistory-server/internal/presentation/rest/middleware"
)

// HealthCheckFunc ストレージの疎通確認
type HealthCheckFunc func(ctx context.Context) error

// Router REST APIルーター
type Router struct {
	echo *echo.Echo
	cfg  *config.ServerConfig
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	historyService *historyapp.HistoryApplicationService,
	authService *authapp.AuthApplicationService,
	healthCheck HealthCheckFunc,
) *Router {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// ミドルウェアチェーンの外側で発生したエラー（未登録ルート、BodyLimitなど）
	e.HTTPErrorHandler = restmiddleware.HTTPErrorHandler(logger)

	setupMiddleware(e, cfg, logger, metrics)

	historyHandler := handler.NewHistoryHandler(historyService)
	authHandler := handler.NewAuthHandler(authService)
	setupRoutes(e, cfg, logger, historyHandler, authHandler, healthCheck)

	// Swagger UI / ReDoc統合
	SetupSwagger(e)

	return &Router{
		echo: e,
		cfg:  &cfg.Server,
	}
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, cfg *config.Config, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			restmiddleware.HeaderAPIKey,
		},
	}))

	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit("64K"))
	e.Use(restmiddleware.SecurityHeadersMiddleware())
	e.Use(restmiddleware.TracingMiddleware(cfg.OpenTelemetry.ServiceName))
	e.Use(restmiddleware.LoggingMiddleware(logger))
	e.Use(restmiddleware.MetricsMiddleware(metrics))

	// 最内側でドメインエラーをレスポンスに変換する
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func setupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	logger *otelinfra.Logger,
	historyHandler *handler.HistoryHandler,
	authHandler *handler.AuthHandler,
	healthCheck HealthCheckFunc,
) {
	// ヘルスチェック（認証不要）
	e.GET("/health", func(c echo.Context) error {
		if healthCheck != nil {
			if err := healthCheck(c.Request().Context()); err != nil {
				logger.Error(c.Request().Context(), "Health check failed", err, nil)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// API v1（JWT認証）
	api := e.Group("/api/v1", restmiddleware.AuthMiddleware(&cfg.JWT, logger))
	api.POST("/transactions", historyHandler.RecordTransaction)
	api.GET("/transactions/count", historyHandler.GetTotalCount)
	api.GET("/me/transactions", historyHandler.GetMyTransactions)

	// 管理API（APIキー認証）
	admin := e.Group("/admin", restmiddleware.APIKeyMiddleware(&cfg.AdminAPI, logger))
	admin.GET("/accounts/:account_id/transactions", historyHandler.GetAccountTransactions)
	admin.POST("/accounts/:account_id/token", authHandler.GenerateToken)
}

// ServeHTTP http.Handlerを実装
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.echo.ServeHTTP(w, req)
}

// Start サーバーを起動（Shutdownによる停止はnilを返す）
func (r *Router) Start(address string) error {
	server := &http.Server{
		Addr:         address,
		ReadTimeout:  r.cfg.ReadTimeout,
		WriteTimeout: r.cfg.WriteTimeout,
		IdleTimeout:  r.cfg.IdleTimeout,
	}
	if err := r.echo.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 処理中のリクエストを待ってサーバーを停止
func (r *Router) Shutdown(ctx context.Context) error {
	return r.echo.Shutdown(ctx)
}
