package obs

import (
	"sync/atomic"
	"time"

	"mdcore/internal/schema"
)

// DropReason describes why an inbound frame never reached the consumer.
type DropReason uint8

const (
	DropEmpty DropReason = iota
	DropUnknownKind
	DropTruncated
	DropPoolExhausted
	DropChannelFull
	_drop_reason_end
)

func (r DropReason) String() string {
	switch r {
	case DropEmpty:
		return "empty"
	case DropUnknownKind:
		return "unknown_kind"
	case DropTruncated:
		return "truncated"
	case DropPoolExhausted:
		return "pool_exhausted"
	case DropChannelFull:
		return "channel_full"
	default:
		return "unknown"
	}
}

// Metrics collects lightweight counters and latency stats for the hot path.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	accepted [schema.KindCount]uint64
	drops    [_drop_reason_end]uint64
	misses   [schema.KindCount]uint64
	rejects  uint64

	dispatchLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64 // smallest sample plus one; zero means no sample yet
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	Accepted        map[schema.Kind]uint64
	Drops           map[DropReason]uint64
	Misses          map[schema.Kind]uint64
	Rejects         uint64
	DispatchLatency LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncAccepted records a frame that was decoded and queued.
func (m *Metrics) IncAccepted(kind schema.Kind) {
	if m == nil || !kind.IsAvailable() {
		return
	}
	atomic.AddUint64(&m.accepted[kind], 1)
}

// IncDrop records a dropped frame.
func (m *Metrics) IncDrop(reason DropReason) {
	if m == nil || reason >= _drop_reason_end {
		return
	}
	atomic.AddUint64(&m.drops[reason], 1)
}

// IncMiss records a book mutation that referenced an unknown order id.
func (m *Metrics) IncMiss(kind schema.Kind) {
	if m == nil || !kind.IsAvailable() {
		return
	}
	atomic.AddUint64(&m.misses[kind], 1)
}

// IncReject records an add-order the book refused.
func (m *Metrics) IncReject() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.rejects, 1)
}

// ObserveDispatch measures the time the consumer spent applying one message.
func (m *Metrics) ObserveDispatch(d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchLatency.Observe(d)
}

// Dropped returns the total number of dropped frames.
func (m *Metrics) Dropped() uint64 {
	if m == nil {
		return 0
	}
	var total uint64
	for i := range m.drops {
		total += atomic.LoadUint64(&m.drops[i])
	}
	return total
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	accepted := make(map[schema.Kind]uint64)
	misses := make(map[schema.Kind]uint64)
	for i := range m.accepted {
		if v := atomic.LoadUint64(&m.accepted[i]); v > 0 {
			accepted[schema.Kind(i)] = v
		}
		if v := atomic.LoadUint64(&m.misses[i]); v > 0 {
			misses[schema.Kind(i)] = v
		}
	}
	drops := make(map[DropReason]uint64)
	for i := range m.drops {
		if v := atomic.LoadUint64(&m.drops[i]); v > 0 {
			drops[DropReason(i)] = v
		}
	}
	return Snapshot{
		Accepted:        accepted,
		Drops:           drops,
		Misses:          misses,
		Rejects:         atomic.LoadUint64(&m.rejects),
		DispatchLatency: m.dispatchLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos+1 >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos+1) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	if min > 0 {
		min--
	}
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
