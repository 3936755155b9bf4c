package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"txhistory-server/internal/domain/transaction"
	otelinfra "txhistory-server/internal/infrastructure/observability/otel"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// domainError ドメインエラーとHTTPステータスの対応
type domainError struct {
	target error
	status int
	code   string
}

var domainErrors = []domainError{
	{target: transaction.ErrUnauthorized, status: http.StatusForbidden, code: "unauthorized"},
	{target: transaction.ErrInvalidAccountID, status: http.StatusBadRequest, code: "invalid_account_id"},
	{target: transaction.ErrInvalidAmount, status: http.StatusBadRequest, code: "invalid_amount"},
	{target: transaction.ErrInvalidCategory, status: http.StatusBadRequest, code: "invalid_category"},
	{target: transaction.ErrCounterOverflow, status: http.StatusConflict, code: "counter_overflow"},
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			return handleError(c, err, logger)
		}
	}
}

// HTTPErrorHandler ミドルウェアチェーンの外側（ルーティング、BodyLimitなど）で発生したエラーを処理
func HTTPErrorHandler(logger *otelinfra.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		_ = handleError(c, err, logger)
	}
}

// StatusForError エラーが変換されるHTTPステータスを返す
func StatusForError(err error) int {
	for _, de := range domainErrors {
		if errors.Is(err, de.target) {
			return de.status
		}
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}

// responseStatus 記録用のレスポンスステータス
// エラーがまだ書き込まれていない場合は変換後のステータスを返す。
func responseStatus(c echo.Context, err error) int {
	if err != nil && !c.Response().Committed {
		return StatusForError(err)
	}
	return c.Response().Status
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	for _, de := range domainErrors {
		if errors.Is(err, de.target) {
			logger.Warn(ctx, "Request rejected", map[string]interface{}{
				"code":  de.code,
				"error": err.Error(),
			})
			return c.JSON(de.status, ErrorResponse{
				Error:   de.code,
				Message: err.Error(),
			})
		}
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message, ok := httpErr.Message.(string)
		if !ok {
			message = http.StatusText(httpErr.Code)
		}
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     message,
		})
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー（ストレージ障害など）
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
