package ops

import (
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	ydecimal "github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"

	"mdcore/internal/book"
	"mdcore/internal/ingest"
	"mdcore/internal/journal"
	"mdcore/internal/schema"
	"mdcore/pkg/exception"
)

const (
	defaultIdleWait      = 50 * time.Microsecond
	defaultStatsInterval = time.Second
	defaultDepthEvery    = 50
	defaultDepthLevels   = 5
	defaultMeanPrice     = 150
	defaultPriceSigma    = 50
	defaultMaxOrderID    = 1_000_000
	defaultMaxQty        = 100
	defaultMaxActive     = 4096
	defaultMinInterval   = 500 * time.Microsecond
	defaultJitter        = time.Millisecond
	defaultAppName       = "mdcore.simulator"
)

// FileConfig mirrors the JSON config layout. Durations are Go duration strings ("50us", "1s").
type FileConfig struct {
	Book      BookConfig      `json:"book"`
	Pipeline  PipelineConfig  `json:"pipeline"`
	Feed      FeedConfig      `json:"feed"`
	Journal   JournalConfig   `json:"journal"`
	Stats     StatsConfig     `json:"stats"`
	Profiling ProfilingConfig `json:"profiling"`
}

type BookConfig struct {
	Strategy   string            `json:"strategy"`
	DomainSize int               `json:"domainSize"`
	TickSize   *ydecimal.Decimal `json:"tickSize"`
}

type PipelineConfig struct {
	PoolSize    int    `json:"poolSize"`
	ChannelSize int    `json:"channelSize"`
	IdleWait    string `json:"idleWait"`
}

type FeedConfig struct {
	Seed        uint64  `json:"seed"`
	MeanPrice   float64 `json:"meanPrice"`
	PriceSigma  float64 `json:"priceSigma"`
	MaxOrderID  uint64  `json:"maxOrderId"`
	MaxQty      int64   `json:"maxQty"`
	MaxActive   int     `json:"maxActive"`
	MinInterval string  `json:"minInterval"`
	Jitter      string  `json:"jitter"`
}

type JournalConfig struct {
	Capacity int `json:"capacity"`
}

type StatsConfig struct {
	Interval    string `json:"interval"`
	DepthEvery  int    `json:"depthEvery"`
	DepthLevels int    `json:"depthLevels"`
}

// ProfilingConfig enables the continuous profiler when ServerAddress is set.
type ProfilingConfig struct {
	ServerAddress   string `json:"serverAddress"`
	ApplicationName string `json:"applicationName"`
}

// Config is the resolved configuration ready for use.
type Config struct {
	Strategy string
	Domain   book.Domain
	TickSize decimal.Decimal

	PoolSize    int
	ChannelSize int
	IdleWait    time.Duration

	Seed        uint64
	MeanPrice   float64
	PriceSigma  float64
	MaxOrderID  uint64
	MaxQty      int64
	MaxActive   int
	MinInterval time.Duration
	Jitter      time.Duration

	JournalCapacity int

	StatsInterval time.Duration
	DepthEvery    int
	DepthLevels   int

	Profiling ProfilingConfig
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Strategy:        book.StrategyArray,
		Domain:          book.DefaultDomain(),
		TickSize:        decimal.NewFromInt(1),
		PoolSize:        ingest.DefaultPoolSize,
		ChannelSize:     ingest.DefaultChannelSize,
		IdleWait:        defaultIdleWait,
		MeanPrice:       defaultMeanPrice,
		PriceSigma:      defaultPriceSigma,
		MaxOrderID:      defaultMaxOrderID,
		MaxQty:          defaultMaxQty,
		MaxActive:       defaultMaxActive,
		MinInterval:     defaultMinInterval,
		Jitter:          defaultJitter,
		JournalCapacity: journal.DefaultCapacity,
		StatsInterval:   defaultStatsInterval,
		DepthEvery:      defaultDepthEvery,
		DepthLevels:     defaultDepthLevels,
		Profiling:       ProfilingConfig{ApplicationName: defaultAppName},
	}
}

// Load reads a JSON config file, fills unset fields with defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(exception.ErrConfigRead, "path: %s, err: %+v", path, err)
	}

	var file FileConfig
	if err := sonic.ConfigFastest.Unmarshal(data, &file); err != nil {
		return Config{}, errors.Wrapf(exception.ErrConfigDecode, "path: %s, err: %+v", path, err)
	}

	cfg, err := resolve(file)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func resolve(file FileConfig) (Config, error) {
	cfg := Default()

	if file.Book.Strategy != "" {
		cfg.Strategy = file.Book.Strategy
	}
	if file.Book.DomainSize != 0 {
		cfg.Domain.Size = file.Book.DomainSize
	}
	if file.Book.TickSize != nil {
		tick, err := decimal.NewFromString(file.Book.TickSize.String())
		if err != nil {
			return Config{}, errors.Wrapf(exception.ErrConfigInvalid, "tickSize: %s, err: %+v", file.Book.TickSize, err)
		}
		cfg.TickSize = tick
	}

	if file.Pipeline.PoolSize != 0 {
		cfg.PoolSize = file.Pipeline.PoolSize
	}
	if file.Pipeline.ChannelSize != 0 {
		cfg.ChannelSize = file.Pipeline.ChannelSize
	}

	if file.Feed.Seed != 0 {
		cfg.Seed = file.Feed.Seed
	}
	if file.Feed.MeanPrice != 0 {
		cfg.MeanPrice = file.Feed.MeanPrice
	}
	if file.Feed.PriceSigma != 0 {
		cfg.PriceSigma = file.Feed.PriceSigma
	}
	if file.Feed.MaxOrderID != 0 {
		cfg.MaxOrderID = file.Feed.MaxOrderID
	}
	if file.Feed.MaxQty != 0 {
		cfg.MaxQty = file.Feed.MaxQty
	}
	if file.Feed.MaxActive != 0 {
		cfg.MaxActive = file.Feed.MaxActive
	}

	if file.Journal.Capacity != 0 {
		cfg.JournalCapacity = file.Journal.Capacity
	}
	if file.Stats.DepthEvery != 0 {
		cfg.DepthEvery = file.Stats.DepthEvery
	}
	if file.Stats.DepthLevels != 0 {
		cfg.DepthLevels = file.Stats.DepthLevels
	}

	if file.Profiling.ServerAddress != "" {
		cfg.Profiling.ServerAddress = file.Profiling.ServerAddress
	}
	if file.Profiling.ApplicationName != "" {
		cfg.Profiling.ApplicationName = file.Profiling.ApplicationName
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"pipeline.idleWait", file.Pipeline.IdleWait, &cfg.IdleWait},
		{"feed.minInterval", file.Feed.MinInterval, &cfg.MinInterval},
		{"feed.jitter", file.Feed.Jitter, &cfg.Jitter},
		{"stats.interval", file.Stats.Interval, &cfg.StatsInterval},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return Config{}, errors.Wrapf(exception.ErrConfigInvalid, "%s: %s, err: %+v", d.name, d.raw, err)
		}
		*d.dst = v
	}

	return cfg, nil
}

// Validate reports the first setting the pipeline cannot run with.
func (c Config) Validate() error {
	switch c.Strategy {
	case book.StrategyArray, book.StrategyLadder:
	default:
		return errors.Wrapf(exception.ErrConfigInvalid, "book.strategy: %q", c.Strategy)
	}
	if err := c.Domain.Validate(); err != nil {
		return errors.Wrapf(exception.ErrConfigInvalid, "book.domainSize: %+v", err)
	}
	if !c.TickSize.IsPositive() {
		return errors.Wrapf(exception.ErrConfigInvalid, "book.tickSize: %s", c.TickSize)
	}
	if c.PoolSize <= 0 {
		return errors.Wrapf(exception.ErrConfigInvalid, "pipeline.poolSize: %d", c.PoolSize)
	}
	if c.ChannelSize < 2 {
		return errors.Wrapf(exception.ErrConfigInvalid, "pipeline.channelSize: %d", c.ChannelSize)
	}
	if c.IdleWait <= 0 {
		return errors.Wrapf(exception.ErrConfigInvalid, "pipeline.idleWait: %s", c.IdleWait)
	}
	if c.PriceSigma < 0 {
		return errors.Wrapf(exception.ErrConfigInvalid, "feed.priceSigma: %f", c.PriceSigma)
	}
	if c.MaxQty <= 0 {
		return errors.Wrapf(exception.ErrConfigInvalid, "feed.maxQty: %d", c.MaxQty)
	}
	if c.MinInterval < 0 || c.Jitter < 0 {
		return errors.Wrapf(exception.ErrConfigInvalid, "feed interval: %s, jitter: %s", c.MinInterval, c.Jitter)
	}
	if c.JournalCapacity <= 0 {
		return errors.Wrapf(exception.ErrConfigInvalid, "journal.capacity: %d", c.JournalCapacity)
	}
	if c.StatsInterval <= 0 {
		return errors.Wrapf(exception.ErrConfigInvalid, "stats.interval: %s", c.StatsInterval)
	}
	return nil
}

// FormatPrice renders a price in ticks as a decimal string, e.g. 55 ticks of 0.01 is "0.55".
func (c Config) FormatPrice(p schema.Price) string {
	return decimal.NewFromInt(int64(p)).Mul(c.TickSize).String()
}
