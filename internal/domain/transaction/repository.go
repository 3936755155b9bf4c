package transaction

import (
	"context"
	"strings"
	"time"
)

// Key ストレージキー
type Key string

const (
	// CounterKey グローバルカウンターのキー
	CounterKey Key = "TX_COUNT"
	// SequenceKeyPrefix アカウント履歴のキー接頭辞
	SequenceKeyPrefix = "UserTxs/"
)

// SequenceKey アカウント履歴のキーを返す
// AccountIDは'/'を含まないため、CounterKeyと衝突しない。
func SequenceKey(account AccountID) Key {
	return Key(SequenceKeyPrefix + string(account))
}

// IsSequenceKey アカウント履歴のキーかどうかを返す
func IsSequenceKey(key Key) bool {
	return strings.HasPrefix(string(key), SequenceKeyPrefix)
}

// KeyValueStore キー付き永続ストアインターフェース
type KeyValueStore interface {
	// Get キーの値を取得（存在しない場合はfalse）
	Get(ctx context.Context, key Key) ([]byte, bool, error)

	// Set キーに値を保存
	Set(ctx context.Context, key Key, value []byte) error
}

// RetentionExtender 保持期間延長インターフェース
type RetentionExtender interface {
	// ExtendTTL 残り保持期間がminRemaining未満のキーをextendToまで延長（ベストエフォート）
	ExtendTTL(ctx context.Context, keys []Key, minRemaining, extendTo time.Duration) error
}

// Authorizer 認可チェックインターフェース
type Authorizer interface {
	// RequireAuthorized 呼び出し元がprincipalとして行動できることを確認
	RequireAuthorized(ctx context.Context, principal AccountID) error
}

// Clock ホスト時計インターフェース
type Clock interface {
	// CurrentTime 現在時刻（UNIX秒）を返す
	CurrentTime() uint64
}

// Codec カウンターとアカウント履歴の直列化インターフェース
type Codec interface {
	EncodeCounter(value uint64) []byte
	DecodeCounter(data []byte) (uint64, error)
	EncodeSequence(sequence []*Transaction) ([]byte, error)
	DecodeSequence(data []byte) ([]*Transaction, error)
}
