package transaction

import (
	"fmt"
	"time"
)

// Transaction 送金イベントの記録エンティティ
// 作成後は変更されない。送信者と受信者それぞれの履歴に同じ値が追記される。
type Transaction struct {
	id         uint64
	sender     AccountID
	receiver   AccountID
	amount     Amount
	occurredAt uint64 // ホストの時計によるUNIX秒
	category   Category
	note       string
}

// NewTransaction 新しいTransactionエンティティを作成
func NewTransaction(
	id uint64,
	sender AccountID,
	receiver AccountID,
	amount Amount,
	occurredAt uint64,
	category Category,
	note string,
) (*Transaction, error) {
	if id == 0 {
		return nil, ErrInvalidTransactionID
	}
	if !sender.Valid() {
		return nil, fmt.Errorf("%w: sender %q", ErrInvalidAccountID, sender)
	}
	if !receiver.Valid() {
		return nil, fmt.Errorf("%w: receiver %q", ErrInvalidAccountID, receiver)
	}
	if _, err := NewCategory(string(category)); err != nil {
		return nil, err
	}

	return &Transaction{
		id:         id,
		sender:     sender,
		receiver:   receiver,
		amount:     amount,
		occurredAt: occurredAt,
		category:   category,
		note:       note,
	}, nil
}

// ID トランザクションIDを返す
func (t *Transaction) ID() uint64 {
	return t.id
}

// Sender 送信者を返す
func (t *Transaction) Sender() AccountID {
	return t.sender
}

// Receiver 受信者を返す
func (t *Transaction) Receiver() AccountID {
	return t.receiver
}

// Amount 金額を返す
func (t *Transaction) Amount() Amount {
	return t.amount
}

// OccurredAt 記録時刻（UNIX秒）を返す
func (t *Transaction) OccurredAt() uint64 {
	return t.occurredAt
}

// OccurredAtTime 記録時刻をtime.Timeで返す
func (t *Transaction) OccurredAtTime() time.Time {
	return time.Unix(int64(t.occurredAt), 0).UTC()
}

// Category カテゴリを返す
func (t *Transaction) Category() Category {
	return t.category
}

// Note メモを返す
func (t *Transaction) Note() string {
	return t.note
}

// Involves 指定アカウントが送信者または受信者かどうかを返す
func (t *Transaction) Involves(account AccountID) bool {
	return t.sender == account || t.receiver == account
}

// IsSelfTransfer 自分自身への送金かどうかを返す
func (t *Transaction) IsSelfTransfer() bool {
	return t.sender == t.receiver
}

// MustNewTransaction テスト用ヘルパー: NewTransactionを呼び出し、エラーが発生した場合はpanicする
func MustNewTransaction(
	id uint64,
	sender AccountID,
	receiver AccountID,
	amount Amount,
	occurredAt uint64,
	category Category,
	note string,
) *Transaction {
	t, err := NewTransaction(id, sender, receiver, amount, occurredAt, category, note)
	if err != nil {
		panic(err)
	}
	return t
}
