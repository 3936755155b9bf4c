package history

import "txhistory-server/internal/domain/transaction"

// RecordTransactionRequest トランザクション記録リクエスト
type RecordTransactionRequest struct {
	Sender   string
	Receiver string
	Amount   string // 10進数の符号付き128bit整数
	Category string
	Note     string
}

// RecordTransactionResponse トランザクション記録レスポンス
type RecordTransactionResponse struct {
	Transaction *transaction.Transaction
}

// GetTransactionHistoryRequest トランザクション履歴取得リクエスト
type GetTransactionHistoryRequest struct {
	AccountID string
	Category  *string // nilの場合はフィルタなし（空文字列は空カテゴリで絞り込む）
	Limit     int // 0の場合は全件
	Offset    int
}

// GetTransactionHistoryResponse トランザクション履歴取得レスポンス
type GetTransactionHistoryResponse struct {
	Transactions []*transaction.Transaction
	Total        int
	Limit        int
	Offset       int
}

// GetTotalCountResponse 総件数取得レスポンス
type GetTotalCountResponse struct {
	Count uint64
}
