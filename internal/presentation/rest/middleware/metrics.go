package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	otelinfra "txhistory-server/internal/infrastructure/observability/otel"
)

// MetricsMiddleware メトリクス記録ミドルウェア
func MetricsMiddleware(metrics *otelinfra.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			ctx := c.Request().Context()
			method := c.Request().Method

			err := next(c)

			// ルーティング後のパターンで集計する
			route := c.Path()
			metrics.RecordRequest(ctx, method, route)
			metrics.RecordResponseTime(ctx, method, route, time.Since(start).Seconds())

			if status := responseStatus(c, err); status >= 500 {
				metrics.RecordError(ctx, "server_error")
			} else if status >= 400 {
				metrics.RecordError(ctx, "client_error")
			}

			return err
		}
	}
}
