package ingest

import (
	"errors"

	"mdcore/internal/codec"
	"mdcore/internal/obs"
	"mdcore/internal/pool"
	"mdcore/internal/schema"
	"mdcore/internal/spsc"
	"mdcore/pkg/exception"
)

const (
	DefaultPoolSize    = 4096
	DefaultChannelSize = 4096
)

// Handler owns the message pool and the channel between producer and consumer.
//
// PushRawMessage belongs to the producer goroutine. Poll, ReleaseMessage and Drain belong to
// the consumer goroutine.
type Handler struct {
	pool    *pool.Pool[schema.Message]
	ch      *spsc.Ring[pool.Handle]
	metrics *obs.Metrics
}

// New creates a handler. Non-positive sizes fall back to the defaults. metrics may be nil.
func New(poolSize, channelSize int, metrics *obs.Metrics) *Handler {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	if channelSize <= 0 {
		channelSize = DefaultChannelSize
	}
	return &Handler{
		pool:    pool.New[schema.Message](poolSize),
		ch:      spsc.New[pool.Handle](channelSize),
		metrics: metrics,
	}
}

// PushRawMessage decodes buf into a pooled message and enqueues it. Frames that are empty,
// of unknown kind or truncated, and frames that find the pool exhausted or the channel full,
// are dropped.
func (h *Handler) PushRawMessage(buf []byte) {
	kind, err := codec.Peek(buf)
	if err != nil {
		h.metrics.IncDrop(dropReason(err))
		return
	}

	handle, ok := h.pool.Allocate()
	if !ok {
		h.metrics.IncDrop(obs.DropPoolExhausted)
		return
	}

	msg := h.pool.Get(handle)
	if err := codec.DecodeFrame(buf, msg); err != nil {
		h.pool.Recycle(handle)
		h.metrics.IncDrop(dropReason(err))
		return
	}

	if !h.ch.Push(handle) {
		h.pool.Recycle(handle)
		h.metrics.IncDrop(obs.DropChannelFull)
		return
	}
	h.metrics.IncAccepted(kind)
}

// Poll dequeues the next message. The caller owns it until ReleaseMessage.
func (h *Handler) Poll() (pool.Handle, *schema.Message, bool) {
	handle, ok := h.ch.Pop()
	if !ok {
		return 0, nil, false
	}
	return handle, h.pool.Get(handle), true
}

// ReleaseMessage returns a dequeued message to the pool. Call it exactly once per message
// obtained from Poll.
func (h *Handler) ReleaseMessage(handle pool.Handle) {
	h.pool.Release(handle)
}

// Drain releases every queued message and returns how many there were.
func (h *Handler) Drain() int {
	n := 0
	for {
		handle, ok := h.ch.Pop()
		if !ok {
			return n
		}
		h.pool.Release(handle)
		n++
	}
}

// ApproxQueued returns a stale count of queued messages. Monitoring only.
func (h *Handler) ApproxQueued() int {
	return h.ch.ApproxSize()
}

// ApproxFree returns a stale count of free pool slots. Safe from any goroutine.
func (h *Handler) ApproxFree() int {
	return h.pool.ApproxFree()
}

func dropReason(err error) obs.DropReason {
	switch {
	case errors.Is(err, exception.ErrFrameUnknownKind):
		return obs.DropUnknownKind
	case errors.Is(err, exception.ErrFrameTruncated):
		return obs.DropTruncated
	default:
		return obs.DropEmpty
	}
}
