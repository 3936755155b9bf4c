// Package pb TransactionHistoryServiceのメッセージとサービス定義
//
// メッセージはJSONコーデック（content-subtype "json"）で送受信する。
package pb

// Transaction 記録済みトランザクション
type Transaction struct {
	TxId        uint64 `json:"tx_id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
	Timestamp   uint64 `json:"timestamp"`
	TxType      string `json:"tx_type"`
	Description string `json:"description,omitempty"`
}

// RecordTransactionRequest トランザクション記録リクエスト
type RecordTransactionRequest struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
	TxType      string `json:"tx_type"`
	Description string `json:"description,omitempty"`
}

// RecordTransactionResponse トランザクション記録レスポンス
type RecordTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

// GetTransactionHistoryRequest 履歴取得リクエスト
// AccountIdは管理用のGetAccountHistoryでのみ使用する。
// TxTypeがnilの場合はフィルタなし、空文字列の場合は空カテゴリで絞り込む。
type GetTransactionHistoryRequest struct {
	AccountId string  `json:"account_id,omitempty"`
	TxType    *string `json:"tx_type,omitempty"`
	Limit     int32  `json:"limit,omitempty"`
	Offset    int32  `json:"offset,omitempty"`
}

// GetTransactionHistoryResponse 履歴取得レスポンス
type GetTransactionHistoryResponse struct {
	Transactions []*Transaction `json:"transactions"`
	Total        uint64         `json:"total"`
	Limit        int32          `json:"limit"`
	Offset       int32          `json:"offset"`
}

// GetTotalCountRequest 総件数取得リクエスト
type GetTotalCountRequest struct{}

// GetTotalCountResponse 総件数取得レスポンス
type GetTotalCountResponse struct {
	Count uint64 `json:"count"`
}
