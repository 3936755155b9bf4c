package transaction

import "errors"

var (
	// ErrUnauthorized 送信者としての権限が証明されていないエラー
	ErrUnauthorized = errors.New("sender not authorized")
	// ErrInvalidTransactionID トランザクションIDが無効
	ErrInvalidTransactionID = errors.New("invalid transaction id")
	// ErrInvalidAccountID アカウントIDが無効
	ErrInvalidAccountID = errors.New("invalid account id")
	// ErrInvalidAmount 金額が無効（128bit符号付き整数として解釈できない）
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidCategory カテゴリが無効
	ErrInvalidCategory = errors.New("invalid category")
	// ErrCounterOverflow トランザクションカウンターが上限に達した
	ErrCounterOverflow = errors.New("transaction counter overflow")
	// ErrCorruptedRecord 保存済みデータを復元できない
	ErrCorruptedRecord = errors.New("corrupted stored record")
)
