package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authinfra "txhistory-server/internal/infrastructure/auth"
	"txhistory-server/internal/infrastructure/config"
	otelinfra "txhistory-server/internal/infrastructure/observability/otel"
)

// ContextKeyAccountID echo.Contextに設定する認証済みアカウントのキー
const ContextKeyAccountID = "account_id"

// AuthMiddleware JWT認証ミドルウェア
// 検証済みのuser_idを呼び出し元としてリクエストコンテキストに設定する。
func AuthMiddleware(cfg *config.JWTConfig, logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			// Authorizationヘッダーからトークンを取得
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				logger.Warn(ctx, "Missing authorization header", nil)
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthenticated",
					Message: "Missing authorization header",
				})
			}

			// Bearerトークンの形式を確認
			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				logger.Warn(ctx, "Invalid authorization header format", nil)
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthenticated",
					Message: "Invalid authorization header format",
				})
			}

			account, err := authinfra.ParseToken(cfg, tokenString)
			if err != nil {
				logger.Warn(ctx, "Invalid token", map[string]interface{}{
					"error": err.Error(),
				})
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthenticated",
					Message: "Invalid or expired token",
				})
			}

			c.Set(ContextKeyAccountID, account)
			c.SetRequest(c.Request().WithContext(authinfra.WithPrincipal(ctx, account)))

			return next(c)
		}
	}
}
