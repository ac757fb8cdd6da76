package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gopkg.in/tomb.v2"

	"mdcore/internal/book"
	"mdcore/internal/feed"
	"mdcore/internal/ingest"
	"mdcore/internal/journal"
	"mdcore/internal/obs"
	"mdcore/internal/ops"
	"mdcore/pkg/exception"
)

// Runner wires the synthetic feed, the ingest handler and the book consumer into one
// supervised process: the generator is the only producer, the consumer the only reader.
type Runner struct {
	cfg       ops.Config
	session   uuid.UUID
	metrics   *obs.Metrics
	journal   *journal.Journal
	handler   *ingest.Handler
	generator *feed.Generator
	consumer  *Consumer

	t            *tomb.Tomb
	producerDone chan struct{}
}

// NewRunner builds every component from cfg. Nothing runs until Start.
func NewRunner(cfg ops.Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b, err := book.New(cfg.Strategy, cfg.Domain)
	if err != nil {
		return nil, errors.Wrap(err, "new book")
	}

	r := &Runner{
		cfg:     cfg,
		session: uuid.New(),
		metrics: obs.NewMetrics(),
		journal: journal.New(cfg.JournalCapacity),
	}

	r.handler = ingest.New(cfg.PoolSize, cfg.ChannelSize, r.metrics)
	r.generator = feed.NewGenerator(feed.Config{
		Seed:        cfg.Seed,
		MinPrice:    cfg.Domain.MinPrice(),
		MaxPrice:    cfg.Domain.MaxPrice(),
		MeanPrice:   cfg.MeanPrice,
		PriceSigma:  cfg.PriceSigma,
		MaxOrderID:  cfg.MaxOrderID,
		MaxQty:      cfg.MaxQty,
		MaxActive:   cfg.MaxActive,
		MinInterval: cfg.MinInterval,
		Jitter:      cfg.Jitter,
	}, r.handler.PushRawMessage)

	log := r.journal.Logger().With().Str("session", r.session.String()).Logger()
	r.consumer = NewConsumer(Config{
		IdleWait:    cfg.IdleWait,
		DepthEvery:  cfg.DepthEvery,
		DepthLevels: cfg.DepthLevels,
	}, r.handler, b, log, r.metrics)

	return r, nil
}

// Start launches the producer, the consumer and the stats reporter. They stop when ctx is
// done or Stop is called.
func (r *Runner) Start(ctx context.Context) error {
	if r.t != nil {
		return errors.Wrap(exception.ErrInternal, "runner already started")
	}

	r.t, _ = tomb.WithContext(ctx)
	r.producerDone = make(chan struct{})

	r.t.Go(func() error {
		defer close(r.producerDone)
		return r.generator.Run(r.t)
	})
	r.t.Go(func() error {
		return r.consumer.Run(r.t, r.producerDone)
	})
	r.t.Go(r.report)

	logs.Infof("runner started, session: %s, strategy: %s, domain: %d", r.session, r.cfg.Strategy, r.cfg.Domain.Size)
	return nil
}

// Stop kills the runner and waits for every goroutine to return.
func (r *Runner) Stop() error {
	if r.t == nil {
		return nil
	}
	r.t.Kill(nil)
	return r.t.Wait()
}

func (r *Runner) Session() uuid.UUID {
	return r.session
}

func (r *Runner) Journal() *journal.Journal {
	return r.journal
}

func (r *Runner) Stats() Stats {
	return r.consumer.Stats()
}

func (r *Runner) Metrics() obs.Snapshot {
	return r.metrics.Snapshot()
}

// LogStats writes one summary line through the process logger.
func (r *Runner) LogStats() {
	s := r.consumer.Stats()
	latency := r.metrics.Snapshot().DispatchLatency
	logs.Infof("session: %s, processed: %d, executed: %d, cancelled: %d, rejected: %d, dropped: %d, queued: %d, bid: %s, ask: %s, dispatch avg: %s, max: %s",
		r.session,
		s.Processed, s.Executed, s.Cancelled, s.Rejected,
		r.metrics.Dropped(), r.handler.ApproxQueued(),
		r.cfg.FormatPrice(s.BestBid), r.cfg.FormatPrice(s.BestAsk),
		latency.Avg, latency.Max,
	)
}

func (r *Runner) report() error {
	ticker := time.NewTicker(r.cfg.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.t.Dying():
			return nil
		case <-ticker.C:
			r.LogStats()
		}
	}
}
