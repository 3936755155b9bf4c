package handler

import "txhistory-server/internal/domain/transaction"

// TransactionItem トランザクションアイテム
// @Description トランザクションアイテム
type TransactionItem struct {
	TxID        uint64 `json:"tx_id" example:"1"`
	From        string `json:"from" example:"alice"`
	To          string `json:"to" example:"bob"`
	Amount      string `json:"amount" example:"1000"`
	Timestamp   uint64 `json:"timestamp" example:"1700000000"`
	TxType      string `json:"tx_type" example:"send"`
	Description string `json:"description" example:"pay"`
}

// RecordTransactionRequest トランザクション記録リクエスト
// @Description トランザクション記録リクエスト（fromを省略した場合はトークンのアカウント）
type RecordTransactionRequest struct {
	From        string `json:"from" example:"alice"`
	To          string `json:"to" example:"bob"`
	Amount      string `json:"amount" example:"1000"`
	TxType      string `json:"tx_type" example:"send"`
	Description string `json:"description" example:"pay"`
}

// TransactionHistoryResponse トランザクション履歴レスポンス
// @Description トランザクション履歴レスポンス
type TransactionHistoryResponse struct {
	Transactions []TransactionItem `json:"transactions"`
	Total        int               `json:"total" example:"1"`
	Limit        int               `json:"limit" example:"50"`
	Offset       int               `json:"offset" example:"0"`
}

// TotalCountResponse 総件数レスポンス
// @Description 総件数レスポンス
type TotalCountResponse struct {
	Count uint64 `json:"count" example:"42"`
}

func newTransactionItem(txn *transaction.Transaction) TransactionItem {
	return TransactionItem{
		TxID:        txn.ID(),
		From:        txn.Sender().String(),
		To:          txn.Receiver().String(),
		Amount:      txn.Amount().String(),
		Timestamp:   txn.OccurredAt(),
		TxType:      txn.Category().String(),
		Description: txn.Note(),
	}
}
