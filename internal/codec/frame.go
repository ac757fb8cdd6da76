package codec

import (
	"encoding/binary"

	"mdcore/internal/schema"
	"mdcore/pkg/exception"
)

/*
Frame layout

	+--------+------------------------------+
	| 1 byte | N bytes                      |
	+--------+------------------------------+
	| kind   | fixed payload, N set by kind |
	+--------+------------------------------+

Fields are packed without padding in native byte order; producer and consumer share one
process.
*/

const (
	HeaderSize = 1

	AddOrderPayloadSize    = 25
	CancelOrderPayloadSize = 8
	ModifyOrderPayloadSize = 16
	ExecutePayloadSize     = 24
	TradePayloadSize       = 32
	BBOUpdatePayloadSize   = 32

	MaxFrameSize = HeaderSize + TradePayloadSize
)

var order = binary.NativeEndian

var payloadSizes = [schema.KindCount]int{
	schema.KindAddOrder:    AddOrderPayloadSize,
	schema.KindCancelOrder: CancelOrderPayloadSize,
	schema.KindModifyOrder: ModifyOrderPayloadSize,
	schema.KindExecute:     ExecutePayloadSize,
	schema.KindTrade:       TradePayloadSize,
	schema.KindBBOUpdate:   BBOUpdatePayloadSize,
}

// PayloadSize returns the payload width implied by kind.
func PayloadSize(kind schema.Kind) (int, bool) {
	if !kind.IsAvailable() {
		return 0, false
	}
	return payloadSizes[kind], true
}

// Peek validates the frame header and length without decoding the payload.
func Peek(src []byte) (schema.Kind, error) {
	if len(src) < HeaderSize {
		return 0, exception.ErrFrameEmpty
	}
	kind := schema.Kind(src[0])
	size, ok := PayloadSize(kind)
	if !ok {
		return kind, exception.ErrFrameUnknownKind
	}
	if len(src)-HeaderSize < size {
		return kind, exception.ErrFrameTruncated
	}
	return kind, nil
}

// DecodeFrame parses src into msg. A frame that is empty, of unknown kind, or shorter than its
// kind requires is rejected and msg is left untouched. Trailing bytes are ignored.
func DecodeFrame(src []byte, msg *schema.Message) error {
	if msg == nil {
		return exception.ErrFrameNilMessage
	}
	kind, err := Peek(src)
	if err != nil {
		return err
	}
	p := src[HeaderSize:]
	switch kind {
	case schema.KindAddOrder:
		msg.Add = decodeAddOrder(p)
	case schema.KindCancelOrder:
		msg.Cancel = decodeCancelOrder(p)
	case schema.KindModifyOrder:
		msg.Modify = decodeModifyOrder(p)
	case schema.KindExecute:
		msg.Exec = decodeExecute(p)
	case schema.KindTrade:
		msg.Trade = decodeTrade(p)
	case schema.KindBBOUpdate:
		msg.BBO = decodeBBOUpdate(p)
	}
	msg.Kind = kind
	return nil
}

// Encode serializes the active field set of msg into a complete frame.
func Encode(dst []byte, msg *schema.Message) ([]byte, error) {
	if msg == nil {
		return nil, exception.ErrFrameNilMessage
	}
	switch msg.Kind {
	case schema.KindAddOrder:
		return EncodeAddOrder(dst, msg.Add), nil
	case schema.KindCancelOrder:
		return EncodeCancelOrder(dst, msg.Cancel), nil
	case schema.KindModifyOrder:
		return EncodeModifyOrder(dst, msg.Modify), nil
	case schema.KindExecute:
		return EncodeExecute(dst, msg.Exec), nil
	case schema.KindTrade:
		return EncodeTrade(dst, msg.Trade), nil
	case schema.KindBBOUpdate:
		return EncodeBBOUpdate(dst, msg.BBO), nil
	default:
		return nil, exception.ErrFrameUnknownKind
	}
}

func frame(dst []byte, kind schema.Kind, payloadSize int) []byte {
	size := HeaderSize + payloadSize
	if cap(dst) < size {
		dst = make([]byte, size)
	} else {
		dst = dst[:size]
	}
	dst[0] = byte(kind)
	return dst
}
