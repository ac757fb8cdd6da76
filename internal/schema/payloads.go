package schema

// Price is an integer price in ticks. The tick size is defined by configuration.
type Price int64

// Quantity is an integer quantity in lots.
type Quantity int64

// OrderID identifies a live order.
type OrderID uint64

// Side describes order direction. The values are the wire values of the side byte.
type Side uint8

const (
	SideBid Side = iota
	SideAsk
	_side_end
)

func (s Side) IsAvailable() bool {
	return s < _side_end
}

func (s Side) String() string {
	switch s {
	case SideBid:
		return "Bid"
	case SideAsk:
		return "Ask"
	default:
		return "Unknown"
	}
}

// Order is a resting order as held by the book.
type Order struct {
	ID       OrderID
	Side     Side
	Price    Price
	Quantity Quantity
}

// AddOrder is the payload for KindAddOrder.
type AddOrder struct {
	OrderID OrderID
	Side    Side
	Price   Price
	Qty     Quantity
}

// Order converts the payload into a book order.
func (m AddOrder) Order() Order {
	return Order{
		ID:       m.OrderID,
		Side:     m.Side,
		Price:    m.Price,
		Quantity: m.Qty,
	}
}

// CancelOrder is the payload for KindCancelOrder.
type CancelOrder struct {
	OrderID OrderID
}

// ModifyOrder is the payload for KindModifyOrder.
type ModifyOrder struct {
	OrderID OrderID
	NewQty  Quantity
}

// Execute is the payload for KindExecute.
type Execute struct {
	OrderID OrderID
	Qty     Quantity
	Price   Price
}

// Trade is the payload for KindTrade.
type Trade struct {
	BuyOrderID  OrderID
	SellOrderID OrderID
	Qty         Quantity
	Price       Price
}

// BBOUpdate is the payload for KindBBOUpdate.
type BBOUpdate struct {
	BestBid Price
	BestAsk Price
	BidSize Quantity
	AskSize Quantity
}
