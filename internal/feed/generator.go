package feed

import (
	"math/rand/v2"
	"time"

	"gopkg.in/tomb.v2"

	"mdcore/internal/codec"
	"mdcore/internal/schema"
)

const (
	defaultMeanPrice   = 150
	defaultPriceSigma  = 50
	defaultMaxOrderID  = 1_000_000
	defaultMaxQty      = 100
	defaultMaxActive   = 4096
	defaultMinInterval = 500 * time.Microsecond
	defaultJitter      = time.Millisecond
)

// Config controls the synthetic order flow.
type Config struct {
	Seed        uint64
	MinPrice    schema.Price
	MaxPrice    schema.Price
	MeanPrice   float64
	PriceSigma  float64
	MaxOrderID  uint64
	MaxQty      int64
	MaxActive   int
	MinInterval time.Duration
	Jitter      time.Duration
}

// DefaultConfig returns the baseline flow: prices around 150 clamped to [minPrice, maxPrice].
func DefaultConfig(minPrice, maxPrice schema.Price) Config {
	return Config{
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		MeanPrice:   defaultMeanPrice,
		PriceSigma:  defaultPriceSigma,
		MaxOrderID:  defaultMaxOrderID,
		MaxQty:      defaultMaxQty,
		MaxActive:   defaultMaxActive,
		MinInterval: defaultMinInterval,
		Jitter:      defaultJitter,
	}
}

func (c Config) withDefaults() Config {
	if c.MinPrice <= 0 {
		c.MinPrice = 1
	}
	if c.MaxPrice < c.MinPrice {
		c.MaxPrice = c.MinPrice
	}
	if c.MaxOrderID == 0 {
		c.MaxOrderID = defaultMaxOrderID
	}
	if c.MaxQty <= 0 {
		c.MaxQty = defaultMaxQty
	}
	if c.MaxActive <= 0 {
		c.MaxActive = defaultMaxActive
	}
	if c.Seed == 0 {
		c.Seed = uint64(time.Now().UnixNano())
	}
	return c
}

// Generator emits random but well-formed frames: adds, and cancels, modifies and executions of
// ids it added earlier.
type Generator struct {
	cfg    Config
	rng    *rand.Rand
	sink   func([]byte)
	buf    []byte
	active []schema.OrderID
}

// NewGenerator creates a generator that hands every frame to sink. The frame is only valid
// for the duration of the call.
func NewGenerator(cfg Config, sink func([]byte)) *Generator {
	cfg = cfg.withDefaults()
	return &Generator{
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		sink:   sink,
		buf:    make([]byte, codec.MaxFrameSize),
		active: make([]schema.OrderID, 0, cfg.MaxActive),
	}
}

// Step builds one frame and hands it to the sink.
func (g *Generator) Step() schema.Kind {
	var kind schema.Kind
	action := g.rng.IntN(100)
	switch {
	case action < 50 || len(g.active) == 0:
		kind = schema.KindAddOrder
		m := schema.AddOrder{
			OrderID: schema.OrderID(1 + g.rng.Uint64N(g.cfg.MaxOrderID)),
			Side:    schema.Side(g.rng.IntN(2)),
			Price:   g.price(),
			Qty:     g.qty(),
		}
		g.remember(m.OrderID)
		g.buf = codec.EncodeAddOrder(g.buf, m)
	case action < 70:
		kind = schema.KindCancelOrder
		g.buf = codec.EncodeCancelOrder(g.buf, schema.CancelOrder{OrderID: g.pick()})
	case action < 85:
		kind = schema.KindModifyOrder
		g.buf = codec.EncodeModifyOrder(g.buf, schema.ModifyOrder{OrderID: g.pick(), NewQty: g.qty()})
	default:
		kind = schema.KindExecute
		g.buf = codec.EncodeExecute(g.buf, schema.Execute{OrderID: g.pick(), Qty: g.qty(), Price: g.price()})
	}
	if g.sink != nil {
		g.sink(g.buf)
	}
	return kind
}

// Run emits frames until t starts dying, pausing MinInterval plus a random jitter between them.
func (g *Generator) Run(t *tomb.Tomb) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		select {
		case <-t.Dying():
			return nil
		default:
		}

		g.Step()

		timer.Reset(g.interval())
		select {
		case <-t.Dying():
			return nil
		case <-timer.C:
		}
	}
}

func (g *Generator) interval() time.Duration {
	d := g.cfg.MinInterval
	if g.cfg.Jitter > 0 {
		d += time.Duration(g.rng.Int64N(int64(g.cfg.Jitter)))
	}
	return d
}

func (g *Generator) price() schema.Price {
	p := schema.Price(g.rng.NormFloat64()*g.cfg.PriceSigma + g.cfg.MeanPrice)
	return min(max(p, g.cfg.MinPrice), g.cfg.MaxPrice)
}

func (g *Generator) qty() schema.Quantity {
	return schema.Quantity(1 + g.rng.Int64N(g.cfg.MaxQty))
}

func (g *Generator) pick() schema.OrderID {
	return g.active[g.rng.IntN(len(g.active))]
}

// remember tracks id for later cancels, modifies and executions. Once MaxActive ids are known
// a random one is forgotten.
func (g *Generator) remember(id schema.OrderID) {
	if len(g.active) < g.cfg.MaxActive {
		g.active = append(g.active, id)
		return
	}
	g.active[g.rng.IntN(len(g.active))] = id
}
