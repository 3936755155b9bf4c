package transaction

import (
	"fmt"
	"unicode/utf8"
)

// Category トランザクションのカテゴリタグ
// 列挙型ではなく自由形式の文字列（空文字列も有効）。フィルタリングは大文字小文字を区別する完全一致。
type Category string

// よく使われるカテゴリ（閉じた集合ではない）
const (
	CategorySend         Category = "send"
	CategoryReceive      Category = "receive"
	CategoryContractCall Category = "contract_call"
)

// NewCategory 新しいCategoryを作成
// 保存形式とJSONで表現できないため、不正なUTF-8だけを拒否する。
func NewCategory(s string) (Category, error) {
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: not valid utf-8", ErrInvalidCategory)
	}
	return Category(s), nil
}

// String 文字列表現を返す
func (c Category) String() string {
	return string(c)
}
