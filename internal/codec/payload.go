package codec

import (
	"mdcore/internal/schema"
)

// EncodeAddOrder serializes an add-order frame.
func EncodeAddOrder(dst []byte, m schema.AddOrder) []byte {
	dst = frame(dst, schema.KindAddOrder, AddOrderPayloadSize)
	p := dst[HeaderSize:]
	order.PutUint64(p[0:8], uint64(m.OrderID))
	p[8] = byte(m.Side)
	order.PutUint64(p[9:17], uint64(m.Price))
	order.PutUint64(p[17:25], uint64(m.Qty))
	return dst
}

func decodeAddOrder(p []byte) schema.AddOrder {
	return schema.AddOrder{
		OrderID: schema.OrderID(order.Uint64(p[0:8])),
		Side:    schema.Side(p[8]),
		Price:   schema.Price(int64(order.Uint64(p[9:17]))),
		Qty:     schema.Quantity(int64(order.Uint64(p[17:25]))),
	}
}

// EncodeCancelOrder serializes a cancel-order frame.
func EncodeCancelOrder(dst []byte, m schema.CancelOrder) []byte {
	dst = frame(dst, schema.KindCancelOrder, CancelOrderPayloadSize)
	order.PutUint64(dst[1:9], uint64(m.OrderID))
	return dst
}

func decodeCancelOrder(p []byte) schema.CancelOrder {
	return schema.CancelOrder{
		OrderID: schema.OrderID(order.Uint64(p[0:8])),
	}
}

// EncodeModifyOrder serializes a modify-order frame.
func EncodeModifyOrder(dst []byte, m schema.ModifyOrder) []byte {
	dst = frame(dst, schema.KindModifyOrder, ModifyOrderPayloadSize)
	p := dst[HeaderSize:]
	order.PutUint64(p[0:8], uint64(m.OrderID))
	order.PutUint64(p[8:16], uint64(m.NewQty))
	return dst
}

func decodeModifyOrder(p []byte) schema.ModifyOrder {
	return schema.ModifyOrder{
		OrderID: schema.OrderID(order.Uint64(p[0:8])),
		NewQty:  schema.Quantity(int64(order.Uint64(p[8:16]))),
	}
}

// EncodeExecute serializes an execute frame.
func EncodeExecute(dst []byte, m schema.Execute) []byte {
	dst = frame(dst, schema.KindExecute, ExecutePayloadSize)
	p := dst[HeaderSize:]
	order.PutUint64(p[0:8], uint64(m.OrderID))
	order.PutUint64(p[8:16], uint64(m.Qty))
	order.PutUint64(p[16:24], uint64(m.Price))
	return dst
}

func decodeExecute(p []byte) schema.Execute {
	return schema.Execute{
		OrderID: schema.OrderID(order.Uint64(p[0:8])),
		Qty:     schema.Quantity(int64(order.Uint64(p[8:16]))),
		Price:   schema.Price(int64(order.Uint64(p[16:24]))),
	}
}

// EncodeTrade serializes a trade frame.
func EncodeTrade(dst []byte, m schema.Trade) []byte {
	dst = frame(dst, schema.KindTrade, TradePayloadSize)
	p := dst[HeaderSize:]
	order.PutUint64(p[0:8], uint64(m.BuyOrderID))
	order.PutUint64(p[8:16], uint64(m.SellOrderID))
	order.PutUint64(p[16:24], uint64(m.Qty))
	order.PutUint64(p[24:32], uint64(m.Price))
	return dst
}

func decodeTrade(p []byte) schema.Trade {
	return schema.Trade{
		BuyOrderID:  schema.OrderID(order.Uint64(p[0:8])),
		SellOrderID: schema.OrderID(order.Uint64(p[8:16])),
		Qty:         schema.Quantity(int64(order.Uint64(p[16:24]))),
		Price:       schema.Price(int64(order.Uint64(p[24:32]))),
	}
}

// EncodeBBOUpdate serializes a best-bid/offer frame.
func EncodeBBOUpdate(dst []byte, m schema.BBOUpdate) []byte {
	dst = frame(dst, schema.KindBBOUpdate, BBOUpdatePayloadSize)
	p := dst[HeaderSize:]
	order.PutUint64(p[0:8], uint64(m.BestBid))
	order.PutUint64(p[8:16], uint64(m.BestAsk))
	order.PutUint64(p[16:24], uint64(m.BidSize))
	order.PutUint64(p[24:32], uint64(m.AskSize))
	return dst
}

func decodeBBOUpdate(p []byte) schema.BBOUpdate {
	return schema.BBOUpdate{
		BestBid: schema.Price(int64(order.Uint64(p[0:8]))),
		BestAsk: schema.Price(int64(order.Uint64(p[8:16]))),
		BidSize: schema.Quantity(int64(order.Uint64(p[16:24]))),
		AskSize: schema.Quantity(int64(order.Uint64(p[24:32]))),
	}
}
