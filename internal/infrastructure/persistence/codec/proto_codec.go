package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"txhistory-server/internal/domain/transaction"
)

// ワイヤフォーマット
//
//	message Sequence { repeated Record records = 1; }
//	message Record {
//	  uint64  tx_id       = 1;
//	  string  from        = 2;
//	  string  to          = 3;
//	  sfixed64 amount_hi  = 4;
//	  fixed64 amount_lo   = 5;
//	  uint64  timestamp   = 6;
//	  string  tx_type     = 7;
//	  string  description = 8;
//	}
//
// カウンターはvarint単体で保存する。
const (
	fieldSequenceRecords protowire.Number = 1

	fieldRecordID          protowire.Number = 1
	fieldRecordFrom        protowire.Number = 2
	fieldRecordTo          protowire.Number = 3
	fieldRecordAmountHi    protowire.Number = 4
	fieldRecordAmountLo    protowire.Number = 5
	fieldRecordTimestamp   protowire.Number = 6
	fieldRecordTxType      protowire.Number = 7
	fieldRecordDescription protowire.Number = 8
)

// ProtoCodec protobufワイヤフォーマットによるCodec実装
type ProtoCodec struct{}

// NewProtoCodec 新しいProtoCodecを作成
func NewProtoCodec() *ProtoCodec {
	return &ProtoCodec{}
}

// EncodeCounter カウンターをエンコード
func (c *ProtoCodec) EncodeCounter(value uint64) []byte {
	return protowire.AppendVarint(nil, value)
}

// DecodeCounter カウンターをデコード
func (c *ProtoCodec) DecodeCounter(data []byte) (uint64, error) {
	v, n := protowire.ConsumeVarint(data)
	if n < 0 {
		return 0, fmt.Errorf("%w: counter: %v", transaction.ErrCorruptedRecord, protowire.ParseError(n))
	}
	if n != len(data) {
		return 0, fmt.Errorf("%w: counter has %d trailing bytes", transaction.ErrCorruptedRecord, len(data)-n)
	}
	return v, nil
}

// EncodeSequence アカウント履歴をエンコード
func (c *ProtoCodec) EncodeSequence(sequence []*transaction.Transaction) ([]byte, error) {
	var buf []byte
	for _, txn := range sequence {
		if txn == nil {
			return nil, fmt.Errorf("nil transaction in sequence")
		}
		buf = protowire.AppendTag(buf, fieldSequenceRecords, protowire.BytesType)
		buf = protowire.AppendBytes(buf, encodeRecord(txn))
	}
	return buf, nil
}

// DecodeSequence アカウント履歴をデコード
func (c *ProtoCodec) DecodeSequence(data []byte) ([]*transaction.Transaction, error) {
	sequence := []*transaction.Transaction{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, corrupted(n)
		}
		data = data[n:]

		if num != fieldSequenceRecords || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, corrupted(n)
			}
			data = data[n:]
			continue
		}

		raw, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, corrupted(n)
		}
		data = data[n:]

		txn, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		sequence = append(sequence, txn)
	}
	return sequence, nil
}

func encodeRecord(txn *transaction.Transaction) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldRecordID, protowire.VarintType)
	b = protowire.AppendVarint(b, txn.ID())
	b = protowire.AppendTag(b, fieldRecordFrom, protowire.BytesType)
	b = protowire.AppendString(b, txn.Sender().String())
	b = protowire.AppendTag(b, fieldRecordTo, protowire.BytesType)
	b = protowire.AppendString(b, txn.Receiver().String())
	b = protowire.AppendTag(b, fieldRecordAmountHi, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, uint64(txn.Amount().Hi()))
	b = protowire.AppendTag(b, fieldRecordAmountLo, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, txn.Amount().Lo())
	b = protowire.AppendTag(b, fieldRecordTimestamp, protowire.VarintType)
	b = protowire.AppendVarint(b, txn.OccurredAt())
	b = protowire.AppendTag(b, fieldRecordTxType, protowire.BytesType)
	b = protowire.AppendString(b, txn.Category().String())
	if txn.Note() != "" {
		b = protowire.AppendTag(b, fieldRecordDescription, protowire.BytesType)
		b = protowire.AppendString(b, txn.Note())
	}
	return b
}

func decodeRecord(b []byte) (*transaction.Transaction, error) {
	var (
		id         uint64
		from, to   string
		hi         int64
		lo         uint64
		occurredAt uint64
		txType     string
		note       string
	)

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, corrupted(n)
		}
		b = b[n:]

		switch {
		case num == fieldRecordID && typ == protowire.VarintType:
			id, n = protowire.ConsumeVarint(b)
		case num == fieldRecordFrom && typ == protowire.BytesType:
			from, n = protowire.ConsumeString(b)
		case num == fieldRecordTo && typ == protowire.BytesType:
			to, n = protowire.ConsumeString(b)
		case num == fieldRecordAmountHi && typ == protowire.Fixed64Type:
			var v uint64
			v, n = protowire.ConsumeFixed64(b)
			hi = int64(v)
		case num == fieldRecordAmountLo && typ == protowire.Fixed64Type:
			lo, n = protowire.ConsumeFixed64(b)
		case num == fieldRecordTimestamp && typ == protowire.VarintType:
			occurredAt, n = protowire.ConsumeVarint(b)
		case num == fieldRecordTxType && typ == protowire.BytesType:
			txType, n = protowire.ConsumeString(b)
		case num == fieldRecordDescription && typ == protowire.BytesType:
			note, n = protowire.ConsumeString(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, corrupted(n)
		}
		b = b[n:]
	}

	txn, err := transaction.NewTransaction(
		id,
		transaction.AccountID(from),
		transaction.AccountID(to),
		transaction.AmountFromParts(hi, lo),
		occurredAt,
		transaction.Category(txType),
		note,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transaction.ErrCorruptedRecord, err)
	}
	return txn, nil
}

func corrupted(n int) error {
	return fmt.Errorf("%w: %v", transaction.ErrCorruptedRecord, protowire.ParseError(n))
}
