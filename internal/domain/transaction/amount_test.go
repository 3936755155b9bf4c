package transaction

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "正常系: 正の値", input: "1000", want: "1000"},
		{name: "正常系: 負の値", input: "-500", want: "-500"},
		{name: "正常系: ゼロ", input: "0", want: "0"},
		{name: "正常系: 前後の空白", input: " 42 ", want: "42"},
		{name: "正常系: int64を超える値", input: "18446744073709551616", want: "18446744073709551616"},
		{name: "正常系: int128の最大値", input: "170141183460469231731687303715884105727", want: "170141183460469231731687303715884105727"},
		{name: "正常系: int128の最小値", input: "-170141183460469231731687303715884105728", want: "-170141183460469231731687303715884105728"},
		{name: "異常系: 最大値を超える", input: "170141183460469231731687303715884105728", wantErr: true},
		{name: "異常系: 最小値を下回る", input: "-170141183460469231731687303715884105729", wantErr: true},
		{name: "異常系: 空文字", input: "", wantErr: true},
		{name: "異常系: 小数", input: "1.5", wantErr: true},
		{name: "異常系: 数字以外", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNewAmountFromInt64(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 1000, -1000, math.MaxInt64, math.MinInt64} {
		a := NewAmountFromInt64(v)
		assert.Equal(t, big.NewInt(v), a.BigInt())
		assert.Equal(t, big.NewInt(v).String(), a.String())
	}
}

func TestAmount_PartsRoundTrip(t *testing.T) {
	a, err := ParseAmount("-12345678901234567890123")
	require.NoError(t, err)

	b := AmountFromParts(a.Hi(), a.Lo())
	assert.Equal(t, 0, a.Cmp(b))
	assert.Equal(t, "-12345678901234567890123", b.String())
}

func TestAmount_Uint64Boundary(t *testing.T) {
	// 下位64bitの最上位ビットが立っている正の値
	a := AmountFromParts(0, 1<<63)
	assert.Equal(t, "9223372036854775808", a.String())
	assert.Equal(t, 1, a.Sign())
}

func TestAmount_SignAndCmp(t *testing.T) {
	neg := NewAmountFromInt64(-1)
	zero := NewAmountFromInt64(0)
	pos, err := ParseAmount("18446744073709551616")
	require.NoError(t, err)

	assert.Equal(t, -1, neg.Sign())
	assert.Equal(t, 0, zero.Sign())
	assert.Equal(t, 1, pos.Sign())

	assert.Equal(t, -1, neg.Cmp(zero))
	assert.Equal(t, 1, pos.Cmp(zero))
	assert.Equal(t, -1, NewAmountFromInt64(math.MaxInt64).Cmp(pos))
	assert.Equal(t, 0, pos.Cmp(pos))
}
