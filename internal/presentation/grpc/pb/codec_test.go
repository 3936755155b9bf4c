package pb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestJSONCodec_Registered(t *testing.T) {
	codec := encoding.GetCodec(CodecName)
	require.NotNil(t, codec)
	assert.Equal(t, CodecName, codec.Name())
}

func TestJSONCodec_WireNames(t *testing.T) {
	codec := JSONCodec{}

	b, err := codec.Marshal(&Transaction{
		TxId: 7, From: "alice", To: "bob", Amount: "-5",
		Timestamp: 1700000000, TxType: "send",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tx_id":7,"from":"alice","to":"bob","amount":"-5","timestamp":1700000000,"tx_type":"send"}`, string(b))

	var req GetTransactionHistoryRequest
	require.NoError(t, codec.Unmarshal([]byte(`{"tx_type":"send","limit":10}`), &req))
	require.NotNil(t, req.TxType)
	assert.Equal(t, "send", *req.TxType)
	assert.Equal(t, int32(10), req.Limit)

	// tx_typeの省略と空文字列は区別する
	var unfiltered, emptyFilter GetTransactionHistoryRequest
	require.NoError(t, codec.Unmarshal([]byte(`{"limit":10}`), &unfiltered))
	assert.Nil(t, unfiltered.TxType)
	require.NoError(t, codec.Unmarshal([]byte(`{"tx_type":""}`), &emptyFilter))
	require.NotNil(t, emptyFilter.TxType)
	assert.Equal(t, "", *emptyFilter.TxType)

	// 空のペイロードはゼロ値
	var empty GetTotalCountRequest
	assert.NoError(t, codec.Unmarshal(nil, &empty))

	assert.Error(t, codec.Unmarshal([]byte(`{`), &req))
}
