package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"txhistory-server/internal/domain/transaction"
)

// 終了コード
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
)

// ExitError 終了コード付きのエラー
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError エラーに終了コードを付与（nilはnilのまま）
func WrapExitError(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// transactionView 出力用のトランザクション表現
type transactionView struct {
	TxID        uint64 `json:"tx_id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
	Timestamp   uint64 `json:"timestamp"`
	TxType      string `json:"tx_type"`
	Description string `json:"description"`
}

func newTransactionView(txn *transaction.Transaction) transactionView {
	return transactionView{
		TxID:        txn.ID(),
		From:        txn.Sender().String(),
		To:          txn.Receiver().String(),
		Amount:      txn.Amount().String(),
		Timestamp:   txn.OccurredAt(),
		TxType:      txn.Category().String(),
		Description: txn.Note(),
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTransactions 履歴を指定形式で出力
func writeTransactions(w io.Writer, format string, txns []*transaction.Transaction) error {
	views := make([]transactionView, 0, len(txns))
	for _, txn := range txns {
		views = append(views, newTransactionView(txn))
	}

	if format == "json" {
		return writeJSON(w, views)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TX_ID\tFROM\tTO\tAMOUNT\tTIMESTAMP\tTX_TYPE\tDESCRIPTION")
	for _, v := range views {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n", v.TxID, v.From, v.To, v.Amount, v.Timestamp, v.TxType, v.Description)
	}
	return tw.Flush()
}
