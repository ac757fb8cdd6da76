package book

import (
	"mdcore/internal/schema"
	"mdcore/pkg/exception"
)

// Array is a book over a fixed price domain. Every mutation is O(1) except when the level
// holding a side's best price empties, which costs one pass over the level array.
//
// Prices are stored normalized: bids negated, asks as-is. Within a side the smallest normalized
// price is the best one, and normalized+half is the level index.
type Array struct {
	domain Domain
	half   int64
	mask   int64
	levels []schema.Quantity
	orders map[schema.OrderID]schema.Order

	bestBid int64
	bestAsk int64
	hasBid  bool
	hasAsk  bool
}

// NewArray allocates an array book. A zero domain means DefaultDomain.
func NewArray(domain Domain) (*Array, error) {
	domain = domain.withDefaults()
	if err := domain.Validate(); err != nil {
		return nil, err
	}
	return &Array{
		domain: domain,
		half:   domain.half(),
		mask:   int64(domain.Size - 1),
		levels: make([]schema.Quantity, domain.Size),
		orders: make(map[schema.OrderID]schema.Order),
	}, nil
}

// Domain returns the price domain of the book.
func (b *Array) Domain() Domain {
	return b.domain
}

func (b *Array) normalize(side schema.Side, price schema.Price) int64 {
	if side == schema.SideBid {
		return -int64(price)
	}
	return int64(price)
}

func (b *Array) index(norm int64) int64 {
	return (norm + b.half) & b.mask
}

func (b *Array) AddOrder(o schema.Order) error {
	if err := validate(o); err != nil {
		return err
	}
	if !b.domain.Contains(o.Price) {
		return exception.ErrBookPriceOutOfRange
	}
	if _, ok := b.orders[o.ID]; ok {
		return exception.ErrBookDuplicateOrder
	}

	norm := b.normalize(o.Side, o.Price)
	idx := b.index(norm)
	if !fits(b.levels[idx], o.Quantity) {
		return exception.ErrBookQuantityOverflow
	}

	b.orders[o.ID] = o
	b.levels[idx] += o.Quantity

	if o.Side == schema.SideBid {
		if !b.hasBid || norm < b.bestBid {
			b.bestBid, b.hasBid = norm, true
		}
	} else {
		if !b.hasAsk || norm < b.bestAsk {
			b.bestAsk, b.hasAsk = norm, true
		}
	}
	return nil
}

func (b *Array) CancelOrder(id schema.OrderID) bool {
	o, ok := b.orders[id]
	if !ok {
		return false
	}
	norm := b.normalize(o.Side, o.Price)
	idx := b.index(norm)

	b.levels[idx] -= o.Quantity
	if b.levels[idx] < 0 {
		negativeLevel(o.Price, b.levels[idx])
	}
	delete(b.orders, id)

	b.evictIfBest(o.Side, norm, idx)
	return true
}

func (b *Array) ModifyOrder(id schema.OrderID, newQty schema.Quantity) (bool, error) {
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

	norm := b.normalize(o.Side, o.Price)
	idx := b.index(norm)
	delta := newQty - o.Quantity
	if !fits(b.levels[idx], delta) {
		return true, exception.ErrBookQuantityOverflow
	}

	b.levels[idx] += delta
	if b.levels[idx] < 0 {
		negativeLevel(o.Price, b.levels[idx])
	}
	o.Quantity = newQty
	b.orders[id] = o

	b.evictIfBest(o.Side, norm, idx)
	return true, nil
}

func (b *Array) ExecuteOrder(id schema.OrderID, execQty schema.Quantity) bool {
	o, ok := b.orders[id]
	if !ok {
		return false
	}
	traded := max(min(execQty, o.Quantity), 0)

	norm := b.normalize(o.Side, o.Price)
	idx := b.index(norm)

	if b.levels[idx] <= traded {
		b.levels[idx] = 0
	} else {
		b.levels[idx] -= traded
	}

	o.Quantity -= traded
	if o.Quantity == 0 {
		delete(b.orders, id)
	} else {
		b.orders[id] = o
	}

	b.evictIfBest(o.Side, norm, idx)
	return true
}

// evictIfBest rescans when the level at idx emptied and held the cached best of its side.
func (b *Array) evictIfBest(side schema.Side, norm, idx int64) {
	if b.levels[idx] != 0 {
		return
	}
	if (side == schema.SideBid && b.hasBid && norm == b.bestBid) ||
		(side == schema.SideAsk && b.hasAsk && norm == b.bestAsk) {
		b.rescan()
	}
}

// rescan rebuilds both best prices in one pass. A nonzero level left of the midpoint is a bid.
func (b *Array) rescan() {
	b.hasBid, b.hasAsk = false, false
	for i, qty := range b.levels {
		if qty == 0 {
			continue
		}
		norm := int64(i) - b.half
		if norm < 0 {
			if !b.hasBid || norm < b.bestBid {
				b.bestBid, b.hasBid = norm, true
			}
		} else {
			if !b.hasAsk || norm < b.bestAsk {
				b.bestAsk, b.hasAsk = norm, true
			}
		}
	}
}

func (b *Array) BestBid() (schema.Price, bool) {
	if !b.hasBid {
		return 0, false
	}
	return schema.Price(-b.bestBid), true
}

func (b *Array) BestAsk() (schema.Price, bool) {
	if !b.hasAsk {
		return 0, false
	}
	return schema.Price(b.bestAsk), true
}

func (b *Array) BestPrices() (schema.Price, schema.Price) {
	bid, _ := b.BestBid()
	ask, _ := b.BestAsk()
	return bid, ask
}

func (b *Array) Order(id schema.OrderID) (schema.Order, bool) {
	o, ok := b.orders[id]
	return o, ok
}

func (b *Array) Len() int {
	return len(b.orders)
}

func (b *Array) Depth(side schema.Side, limit int) []Level {
	if limit <= 0 {
		return nil
	}
	var (
		norm int64
		end  int64
	)
	switch {
	case side == schema.SideBid && b.hasBid:
		norm, end = b.bestBid, 0
	case side == schema.SideAsk && b.hasAsk:
		norm, end = b.bestAsk, b.half
	default:
		return nil
	}

	out := make([]Level, 0, limit)
	for ; norm < end && len(out) < limit; norm++ {
		qty := b.levels[b.index(norm)]
		if qty == 0 {
			continue
		}
		price := norm
		if side == schema.SideBid {
			price = -norm
		}
		out = append(out, Level{Price: schema.Price(price), Quantity: qty})
	}
	return out
}

func (b *Array) Reset() {
	clear(b.levels)
	clear(b.orders)
	b.hasBid, b.hasAsk = false, false
	b.bestBid, b.bestAsk = 0, 0
}
