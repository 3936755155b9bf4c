package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	historyapp "txhistory-server/internal/application/history"
	authinfra "txhistory-server/internal/infrastructure/auth"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// HistoryHandler 履歴関連ハンドラー
type HistoryHandler struct {
	historyService *historyapp.HistoryApplicationService
}

// NewHistoryHandler 新しいHistoryHandlerを作成
func NewHistoryHandler(historyService *historyapp.HistoryApplicationService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
	}
}

// RecordTransaction トランザクション記録ハンドラー
// @Summary トランザクションを記録
// @Description 送信者本人の認証でトランザクションを記録し、送信者と受信者の履歴に追加します
// @Tags transactions
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body RecordTransactionRequest true "トランザクション記録リクエスト"
// @Success 201 {object} TransactionItem "記録成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 403 {object} ErrorResponse "送信者本人ではない"
// @Failure 409 {object} ErrorResponse "採番上限"
// @Router /transactions [post]
func (h *HistoryHandler) RecordTransaction(c echo.Context) error {
	var body RecordTransactionRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	if body.From == "" {
		principal, ok := authinfra.PrincipalFrom(ctx)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "account not found in token")
		}
		body.From = principal.String()
	}

	resp, err := h.historyService.RecordTransaction(ctx, &historyapp.RecordTransactionRequest{
		Sender:   body.From,
		Receiver: body.To,
		Amount:   body.Amount,
		Category: body.TxType,
		Note:     body.Description,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newTransactionItem(resp.Transaction))
}

// GetMyTransactions トランザクション履歴取得ハンドラー（ユーザーAPI用）
// @Summary 自分のトランザクション履歴を取得
// @Description 自分が送信者または受信者のトランザクションを記録順に返します
// @Tags transactions
// @Produce json
// @Security Bearer
// @Param tx_type query string false "カテゴリで絞り込み（完全一致）" example(send)
// @Param limit query int false "取得件数（デフォルト: 50, 最大: 1000)" default(50)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {object} TransactionHistoryResponse "履歴取得成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /me/transactions [get]
func (h *HistoryHandler) GetMyTransactions(c echo.Context) error {
	principal, ok := authinfra.PrincipalFrom(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "account not found in token")
	}

	return h.getTransactions(c, principal.String())
}

// GetAccountTransactions トランザクション履歴取得ハンドラー（管理API用）
// @Summary 指定アカウントのトランザクション履歴を取得（管理API）
// @Tags admin
// @Produce json
// @Param account_id path string true "アカウントID" example(alice)
// @Param X-API-Key header string true "APIキー"
// @Param tx_type query string false "カテゴリで絞り込み（完全一致）"
// @Param limit query int false "取得件数" default(50)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {object} TransactionHistoryResponse "履歴取得成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /admin/accounts/{account_id}/transactions [get]
func (h *HistoryHandler) GetAccountTransactions(c echo.Context) error {
	accountID := c.Param("account_id")
	if accountID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account_id is required")
	}

	return h.getTransactions(c, accountID)
}

// GetTotalCount 総件数取得ハンドラー
// @Summary 記録済みトランザクションの総数を取得
// @Tags transactions
// @Produce json
// @Security Bearer
// @Success 200 {object} TotalCountResponse "取得成功"
// @Router /transactions/count [get]
func (h *HistoryHandler) GetTotalCount(c echo.Context) error {
	resp, err := h.historyService.GetTotalCount(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, TotalCountResponse{Count: resp.Count})
}

// getTransactions 履歴取得の共通処理
func (h *HistoryHandler) getTransactions(c echo.Context, accountID string) error {
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil || limit < 1 || limit > maxLimit {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid limit parameter")
	}

	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid offset parameter")
	}

	resp, err := h.historyService.GetTransactionHistory(c.Request().Context(), &historyapp.GetTransactionHistoryRequest{
		AccountID: accountID,
		Category:  queryOptional(c, "tx_type"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return err
	}

	items := make([]TransactionItem, len(resp.Transactions))
	for i, txn := range resp.Transactions {
		items[i] = newTransactionItem(txn)
	}

	return c.JSON(http.StatusOK, TransactionHistoryResponse{
		Transactions: items,
		Total:        resp.Total,
		Limit:        resp.Limit,
		Offset:       resp.Offset,
	})
}

// queryOptional クエリパラメータを取得（指定がない場合はnil、"?tx_type="は空文字列）
func queryOptional(c echo.Context, name string) *string {
	values, ok := c.QueryParams()[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// queryInt クエリパラメータを整数として取得
func queryInt(c echo.Context, name string, defaultValue int) (int, error) {
	s := c.QueryParam(name)
	if s == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(s)
}
