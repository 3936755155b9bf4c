package transaction

import (
	"fmt"
	"regexp"
)

var accountIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@\:]{1,255}$`)

// AccountID アカウント識別子
// ホストのID体系におけるプリンシパルを指す不透明な値。
type AccountID string

// NewAccountID 新しいAccountIDを作成
func NewAccountID(s string) (AccountID, error) {
	if !accountIDRegex.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountID, s)
	}
	return AccountID(s), nil
}

// String 文字列表現を返す
func (a AccountID) String() string {
	return string(a)
}

// Valid 有効なアカウントIDかどうかを返す
func (a AccountID) Valid() bool {
	return accountIDRegex.MatchString(string(a))
}
