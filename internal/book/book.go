package book

import (
	"fmt"
	"math"

	"github.com/yanun0323/errors"

	"mdcore/internal/schema"
	"mdcore/pkg/exception"
)

const (
	StrategyArray  = "array"
	StrategyLadder = "ladder"
)

// Book tracks the live orders of one instrument and the aggregate resting quantity per price.
// Implementations are not safe for concurrent use; one consumer goroutine owns a book.
type Book interface {
	// AddOrder admits a new order. A duplicate id, or a quantity that would overflow the level
	// aggregate, is rejected and the book is unchanged.
	AddOrder(o schema.Order) error
	// CancelOrder removes an order. It reports false for an unknown id.
	CancelOrder(id schema.OrderID) bool
	// ModifyOrder replaces the quantity of an order, keeping its price. A zero quantity
	// cancels. It reports false for an unknown id. An increase that would overflow the level
	// aggregate is rejected and the book is unchanged.
	ModifyOrder(id schema.OrderID, newQty schema.Quantity) (bool, error)
	// ExecuteOrder takes up to execQty from an order, removing it once nothing rests. Excess
	// requested quantity is discarded. It reports false for an unknown id.
	ExecuteOrder(id schema.OrderID, execQty schema.Quantity) bool

	BestBid() (schema.Price, bool)
	BestAsk() (schema.Price, bool)
	// BestPrices returns 0 for an empty side. Prices are always positive, so 0 is never a
	// resting price.
	BestPrices() (bid, ask schema.Price)

	Order(id schema.OrderID) (schema.Order, bool)
	Len() int
	// Depth returns up to limit aggregated levels of one side, best first.
	Depth(side schema.Side, limit int) []Level
	Reset()
}

// Level is the aggregate resting quantity at one price.
type Level struct {
	Price    schema.Price
	Quantity schema.Quantity
}

// New builds a book using the named strategy. The domain only applies to StrategyArray.
func New(strategy string, domain Domain) (Book, error) {
	switch strategy {
	case "", StrategyArray:
		return NewArray(domain)
	case StrategyLadder:
		return NewLadder(), nil
	default:
		return nil, errors.Wrapf(exception.ErrBookUnknownStrategy, "strategy: %q", strategy)
	}
}

func validate(o schema.Order) error {
	if !o.Side.IsAvailable() {
		return exception.ErrBookInvalidSide
	}
	if o.Quantity <= 0 {
		return exception.ErrBookInvalidQuantity
	}
	return nil
}

// fits reports whether delta can be added to level without passing math.MaxInt64.
func fits(level, delta schema.Quantity) bool {
	return delta <= 0 || delta <= math.MaxInt64-level
}

func negativeLevel(price schema.Price, qty schema.Quantity) {
	panic(fmt.Sprintf("book: level %d dropped to negative quantity %d", price, qty))
}
