package book

import (
	"github.com/tidwall/btree"

	"mdcore/internal/schema"
	"mdcore/pkg/exception"
)

type ladderLevel struct {
	price schema.Price
	qty   schema.Quantity
}

type ladderLevels = btree.BTreeG[*ladderLevel]

// Ladder is a book whose sides are price-sorted trees. Mutations cost O(log levels) and the
// best price is always the tree minimum, so there is no bounded price domain and no rescan.
type Ladder struct {
	bids   *ladderLevels
	asks   *ladderLevels
	orders map[schema.OrderID]schema.Order
	probe  ladderLevel
}

// NewLadder allocates an empty ladder book.
func NewLadder() *Ladder {
	return &Ladder{
		// Sorted greatest first.
		bids: btree.NewBTreeG(func(a, b *ladderLevel) bool {
			return a.price > b.price
		}),
		// Sorted least first.
		asks: btree.NewBTreeG(func(a, b *ladderLevel) bool {
			return a.price < b.price
		}),
		orders: make(map[schema.OrderID]schema.Order),
	}
}

func (b *Ladder) side(side schema.Side) *ladderLevels {
	if side == schema.SideBid {
		return b.bids
	}
	return b.asks
}

func (b *Ladder) level(side schema.Side, price schema.Price) (*ladderLevel, bool) {
	b.probe.price = price
	return b.side(side).Get(&b.probe)
}

func (b *Ladder) AddOrder(o schema.Order) error {
	if err := validate(o); err != nil {
		return err
	}
	if o.Price <= 0 {
		return exception.ErrBookPriceOutOfRange
	}
	if _, ok := b.orders[o.ID]; ok {
		return exception.ErrBookDuplicateOrder
	}

	lvl, ok := b.level(o.Side, o.Price)
	if ok && !fits(lvl.qty, o.Quantity) {
		return exception.ErrBookQuantityOverflow
	}

	b.orders[o.ID] = o
	if ok {
		lvl.qty += o.Quantity
		return nil
	}
	b.side(o.Side).Set(&ladderLevel{price: o.Price, qty: o.Quantity})
	return nil
}

func (b *Ladder) CancelOrder(id schema.OrderID) bool {
	o, ok := b.orders[id]
	if !ok {
		return false
	}
	b.adjust(o, -o.Quantity, false)
	delete(b.orders, id)
	return true
}

func (b *Ladder) ModifyOrder(id schema.OrderID, newQty schema.Quantity) (bool, error) {
	o, ok := b.orders[id]
	if !ok {
		return false, nil
	}
	if newQty == 0 {
		return b.CancelOrder(id), nil
	}
	if newQty < 0 {
		negativeLevel(o.Price, newQty)
	}
	delta := newQty - o.Quantity
	if lvl, ok := b.level(o.Side, o.Price); ok && !fits(lvl.qty, delta) {
		return true, exception.ErrBookQuantityOverflow
	}
	b.adjust(o, delta, false)
	o.Quantity = newQty
	b.orders[id] = o
	return true, nil
}

func (b *Ladder) ExecuteOrder(id schema.OrderID, execQty schema.Quantity) bool {
	o, ok := b.orders[id]
	if !ok {
		return false
	}
	traded := max(min(execQty, o.Quantity), 0)
	b.adjust(o, -traded, true)

	o.Quantity -= traded
	if o.Quantity == 0 {
		delete(b.orders, id)
	} else {
		b.orders[id] = o
	}
	return true
}

// adjust applies delta to the level of o, dropping the level once it is empty. With floor set
// the level stops at zero; otherwise going negative is fatal.
func (b *Ladder) adjust(o schema.Order, delta schema.Quantity, floor bool) {
	lvl, ok := b.level(o.Side, o.Price)
	if !ok {
		if delta < 0 && !floor {
			negativeLevel(o.Price, delta)
		}
		return
	}
	lvl.qty += delta
	if lvl.qty < 0 {
		if !floor {
			negativeLevel(o.Price, lvl.qty)
		}
		lvl.qty = 0
	}
	if lvl.qty == 0 {
		b.side(o.Side).Delete(lvl)
	}
}

func (b *Ladder) BestBid() (schema.Price, bool) {
	lvl, ok := b.bids.Min()
	if !ok {
		return 0, false
	}
	return lvl.price, true
}

func (b *Ladder) BestAsk() (schema.Price, bool) {
	lvl, ok := b.asks.Min()
	if !ok {
		return 0, false
	}
	return lvl.price, true
}

func (b *Ladder) BestPrices() (schema.Price, schema.Price) {
	bid, _ := b.BestBid()
	ask, _ := b.BestAsk()
	return bid, ask
}

func (b *Ladder) Order(id schema.OrderID) (schema.Order, bool) {
	o, ok := b.orders[id]
	return o, ok
}

func (b *Ladder) Len() int {
	return len(b.orders)
}

func (b *Ladder) Depth(side schema.Side, limit int) []Level {
	if limit <= 0 || !side.IsAvailable() {
		return nil
	}
	out := make([]Level, 0, limit)
	b.side(side).Scan(func(lvl *ladderLevel) bool {
		out = append(out, Level{Price: lvl.price, Quantity: lvl.qty})
		return len(out) < limit
	})
	return out
}

func (b *Ladder) Reset() {
	b.bids.Clear()
	b.asks.Clear()
	clear(b.orders)
}
