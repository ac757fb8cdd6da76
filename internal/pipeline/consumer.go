package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/yanun0323/logs"
	"gopkg.in/tomb.v2"

	"mdcore/internal/book"
	"mdcore/internal/ingest"
	"mdcore/internal/obs"
	"mdcore/internal/schema"
)

const (
	defaultIdleWait    = 50 * time.Microsecond
	defaultDepthEvery  = 50
	defaultDepthLevels = 5
)

// Config controls the consumer loop.
type Config struct {
	// IdleWait is how long the consumer sleeps when the channel is empty.
	IdleWait time.Duration
	// DepthEvery journals a depth snapshot after every DepthEvery processed messages.
	// Negative disables it.
	DepthEvery  int
	DepthLevels int
}

func (c Config) withDefaults() Config {
	if c.IdleWait <= 0 {
		c.IdleWait = defaultIdleWait
	}
	if c.DepthEvery == 0 {
		c.DepthEvery = defaultDepthEvery
	}
	if c.DepthLevels <= 0 {
		c.DepthLevels = defaultDepthLevels
	}
	return c
}

// Stats is a point-in-time view of the consumer counters.
type Stats struct {
	Processed uint64
	Executed  uint64
	Cancelled uint64
	Rejected  uint64
	BestBid   schema.Price
	BestAsk   schema.Price
}

// Consumer pops messages from the ingest handler and applies them to the book. The book is
// owned by the consumer goroutine; other goroutines only read Stats.
type Consumer struct {
	cfg     Config
	handler *ingest.Handler
	book    book.Book
	log     zerolog.Logger
	metrics *obs.Metrics

	processed atomic.Uint64
	executed  atomic.Uint64
	cancelled atomic.Uint64
	rejected  atomic.Uint64
	bestBid   atomic.Int64
	bestAsk   atomic.Int64
}

// NewConsumer wires a consumer. log receives one journal line per event; pass zerolog.Nop()
// to disable it. metrics may be nil.
func NewConsumer(cfg Config, handler *ingest.Handler, b book.Book, log zerolog.Logger, metrics *obs.Metrics) *Consumer {
	return &Consumer{
		cfg:     cfg.withDefaults(),
		handler: handler,
		book:    b,
		log:     log,
		metrics: metrics,
	}
}

// Run consumes until t starts dying. It then waits for producerDone, if given, so nothing is
// enqueued behind it, and releases every message still queued.
func (c *Consumer) Run(t *tomb.Tomb, producerDone <-chan struct{}) error {
	for {
		select {
		case <-t.Dying():
			if producerDone != nil {
				<-producerDone
			}
			n := c.handler.Drain()
			logs.Infof("consumer stopped, processed: %d, drained: %d", c.processed.Load(), n)
			return nil
		default:
		}

		if !c.Step() {
			time.Sleep(c.cfg.IdleWait)
		}
	}
}

// Step applies at most one queued message. It reports false when the channel was empty.
func (c *Consumer) Step() bool {
	handle, msg, ok := c.handler.Poll()
	if !ok {
		return false
	}
	defer c.handler.ReleaseMessage(handle)

	start := time.Now()
	msg.Visit(c)
	c.metrics.ObserveDispatch(time.Since(start))

	bid, ask := c.book.BestPrices()
	c.bestBid.Store(int64(bid))
	c.bestAsk.Store(int64(ask))
	processed := c.processed.Add(1)

	c.log.Info().
		Int64("bestBid", int64(bid)).
		Int64("bestAsk", int64(ask)).
		Uint64("processed", processed).
		Msg("stats")

	if c.cfg.DepthEvery > 0 && processed%uint64(c.cfg.DepthEvery) == 0 {
		c.logDepth()
	}
	return true
}

// Stats returns the current counters. Safe to call from any goroutine.
func (c *Consumer) Stats() Stats {
	return Stats{
		Processed: c.processed.Load(),
		Executed:  c.executed.Load(),
		Cancelled: c.cancelled.Load(),
		Rejected:  c.rejected.Load(),
		BestBid:   schema.Price(c.bestBid.Load()),
		BestAsk:   schema.Price(c.bestAsk.Load()),
	}
}

func (c *Consumer) OnAddOrder(m schema.AddOrder) {
	ev := c.log.Info().
		Str("event", schema.KindAddOrder.String()).
		Uint64("id", uint64(m.OrderID)).
		Str("side", m.Side.String()).
		Int64("price", int64(m.Price)).
		Int64("qty", int64(m.Qty))

	if err := c.book.AddOrder(m.Order()); err != nil {
		c.rejected.Add(1)
		c.metrics.IncReject()
		ev = ev.Err(err)
	}
	ev.Msg("")
}

func (c *Consumer) OnCancelOrder(m schema.CancelOrder) {
	ok := c.book.CancelOrder(m.OrderID)
	c.cancelled.Add(1)
	if !ok {
		c.metrics.IncMiss(schema.KindCancelOrder)
	}
	c.log.Info().
		Str("event", schema.KindCancelOrder.String()).
		Uint64("id", uint64(m.OrderID)).
		Bool("found", ok).
		Msg("")
}

func (c *Consumer) OnModifyOrder(m schema.ModifyOrder) {
	if m.NewQty < 0 {
		// a negative quantity would corrupt the level aggregate
		c.rejected.Add(1)
		c.metrics.IncReject()
		return
	}
	ok, err := c.book.ModifyOrder(m.OrderID, m.NewQty)
	if !ok {
		c.metrics.IncMiss(schema.KindModifyOrder)
	}
	ev := c.log.Info().
		Str("event", schema.KindModifyOrder.String()).
		Uint64("id", uint64(m.OrderID)).
		Int64("newQty", int64(m.NewQty)).
		Bool("found", ok)
	if err != nil {
		c.rejected.Add(1)
		c.metrics.IncReject()
		ev = ev.Err(err)
	}
	ev.Msg("")
}

func (c *Consumer) OnExecute(m schema.Execute) {
	ok := c.book.ExecuteOrder(m.OrderID, m.Qty)
	c.executed.Add(1)
	if !ok {
		c.metrics.IncMiss(schema.KindExecute)
	}
	c.log.Info().
		Str("event", schema.KindExecute.String()).
		Uint64("id", uint64(m.OrderID)).
		Int64("qty", int64(m.Qty)).
		Bool("found", ok).
		Msg("")
}

// OnTrade is journaled only; trades do not change resting liquidity.
func (c *Consumer) OnTrade(m schema.Trade) {
	c.log.Info().
		Str("event", schema.KindTrade.String()).
		Uint64("buyId", uint64(m.BuyOrderID)).
		Uint64("sellId", uint64(m.SellOrderID)).
		Int64("qty", int64(m.Qty)).
		Int64("price", int64(m.Price)).
		Msg("")
}

// OnBBOUpdate is journaled only; the book derives its own best prices.
func (c *Consumer) OnBBOUpdate(m schema.BBOUpdate) {
	c.log.Info().
		Str("event", schema.KindBBOUpdate.String()).
		Int64("bestBid", int64(m.BestBid)).
		Int64("bestAsk", int64(m.BestAsk)).
		Int64("bidSize", int64(m.BidSize)).
		Int64("askSize", int64(m.AskSize)).
		Msg("")
}

func (c *Consumer) logDepth() {
	arr := zerolog.Arr()
	for _, lvl := range c.book.Depth(schema.SideBid, c.cfg.DepthLevels) {
		arr = arr.Dict(zerolog.Dict().Int64("price", int64(lvl.Price)).Int64("qty", int64(lvl.Quantity)))
	}
	asks := zerolog.Arr()
	for _, lvl := range c.book.Depth(schema.SideAsk, c.cfg.DepthLevels) {
		asks = asks.Dict(zerolog.Dict().Int64("price", int64(lvl.Price)).Int64("qty", int64(lvl.Quantity)))
	}
	c.log.Info().
		Array("bids", arr).
		Array("asks", asks).
		Int("orders", c.book.Len()).
		Msg("depth")
}
