package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	authapp "txhistory-server/internal/application/auth"
)

// AuthHandler 認証関連ハンドラー
type AuthHandler struct {
	authService *authapp.AuthApplicationService
}

// NewAuthHandler 新しいAuthHandlerを作成
func NewAuthHandler(authService *authapp.AuthApplicationService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// GenerateToken トークン生成ハンドラー（管理API用）
// @Summary アカウントの認証トークンを発行
// @Description 指定したアカウントとして操作するためのJWTを発行します
// @Tags admin
// @Produce json
// @Param account_id path string true "アカウントID" example(alice)
// @Param X-API-Key header string true "APIキー"
// @Success 200 {object} GenerateTokenResponse "トークン生成成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /admin/accounts/{account_id}/token [post]
func (h *AuthHandler) GenerateToken(c echo.Context) error {
	accountID := c.Param("account_id")
	if accountID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account_id is required")
	}

	resp, err := h.authService.GenerateToken(c.Request().Context(), &authapp.GenerateTokenRequest{
		AccountID: accountID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, GenerateTokenResponse{
		Token:     resp.Token,
		ExpiresIn: int(resp.ExpiresIn),
		ExpiresAt: resp.ExpiresAt.UTC().Format(time.RFC3339),
		TokenType: resp.TokenType,
	})
}
