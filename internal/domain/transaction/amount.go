package transaction

import (
	"fmt"
	"math/big"
	"strings"
)

var (
	maxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minAmount = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	two128    = new(big.Int).Lsh(big.NewInt(1), 128)
	mask64    = new(big.Int).SetUint64(^uint64(0))
)

// Amount 128bit符号付き整数の金額
// 2の補数表現で上位64bit(hi)と下位64bit(lo)を保持する。符号や通貨単位の意味は呼び出し側が決める。
type Amount struct {
	hi int64
	lo uint64
}

// NewAmountFromInt64 int64からAmountを作成
func NewAmountFromInt64(v int64) Amount {
	return Amount{hi: v >> 63, lo: uint64(v)}
}

// AmountFromParts 上位・下位64bitからAmountを復元
func AmountFromParts(hi int64, lo uint64) Amount {
	return Amount{hi: hi, lo: lo}
}

// ParseAmount 10進数文字列からAmountを作成
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q is not a decimal integer", ErrInvalidAmount, s)
	}
	return AmountFromBigInt(v)
}

// AmountFromBigInt big.IntからAmountを作成（128bit符号付きの範囲外はエラー）
func AmountFromBigInt(v *big.Int) (Amount, error) {
	if v.Cmp(maxAmount) > 0 || v.Cmp(minAmount) < 0 {
		return Amount{}, fmt.Errorf("%w: %s is out of int128 range", ErrInvalidAmount, v.String())
	}
	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		u.Add(u, two128)
	}
	lo := new(big.Int).And(u, mask64).Uint64()
	hi := new(big.Int).Rsh(u, 64).Uint64()
	return Amount{hi: int64(hi), lo: lo}, nil
}

// BigInt big.Intに変換
func (a Amount) BigInt() *big.Int {
	v := big.NewInt(a.hi)
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(a.lo))
}

// Hi 上位64bitを返す
func (a Amount) Hi() int64 {
	return a.hi
}

// Lo 下位64bitを返す
func (a Amount) Lo() uint64 {
	return a.lo
}

// Sign 符号を返す（-1, 0, 1）
func (a Amount) Sign() int {
	switch {
	case a.hi < 0:
		return -1
	case a.hi == 0 && a.lo == 0:
		return 0
	default:
		return 1
	}
}

// Cmp 比較結果を返す（a < b: -1, a == b: 0, a > b: 1）
func (a Amount) Cmp(b Amount) int {
	switch {
	case a.hi < b.hi:
		return -1
	case a.hi > b.hi:
		return 1
	case a.lo < b.lo:
		return -1
	case a.lo > b.lo:
		return 1
	default:
		return 0
	}
}

// String 10進数表現を返す
func (a Amount) String() string {
	if (a.hi == 0 && a.lo < 1<<63) || (a.hi == -1 && a.lo >= 1<<63) {
		// int64に収まる場合はbig.Intを経由しない
		return fmt.Sprintf("%d", int64(a.lo))
	}
	return a.BigInt().String()
}
