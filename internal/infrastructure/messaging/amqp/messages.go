package amqp

import (
	"encoding/json"
	"time"

	"txhistory-server/internal/domain/transaction"
)

// EventTypeTransactionRecorded トランザクション記録イベント
const EventTypeTransactionRecorded = "transaction.recorded"

// TransactionRecordedMessage トランザクション記録時に配信するメッセージ
type TransactionRecordedMessage struct {
	EventType   string    `json:"event_type"`
	TxID        uint64    `json:"tx_id"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Amount      string    `json:"amount"`
	Timestamp   uint64    `json:"timestamp"`
	TxType      string    `json:"tx_type"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"published_at"`
}

// NewTransactionRecordedMessage トランザクションからメッセージを作成
func NewTransactionRecordedMessage(txn *transaction.Transaction, publishedAt time.Time) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		EventType:   EventTypeTransactionRecorded,
		TxID:        txn.ID(),
		From:        txn.Sender().String(),
		To:          txn.Receiver().String(),
		Amount:      txn.Amount().String(),
		Timestamp:   txn.OccurredAt(),
		TxType:      txn.Category().String(),
		Description: txn.Note(),
		PublishedAt: publishedAt.UTC(),
	}
}

// ToJSON メッセージをJSONに変換
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRecordedMessageFromJSON JSONからメッセージを復元
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
