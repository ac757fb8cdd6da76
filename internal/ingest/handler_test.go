package ingest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/pkg/sys"

	"mdcore/internal/codec"
	"mdcore/internal/obs"
	"mdcore/internal/schema"
	"mdcore/pkg/exception"
)

func pushAndPoll(t *testing.T, h *Handler, frame []byte) *schema.Message {
	t.Helper()
	h.PushRawMessage(frame)
	handle, msg, ok := h.Poll()
	require.True(t, ok, "expected a queued message")
	t.Cleanup(func() { h.ReleaseMessage(handle) })
	return msg
}

func TestHandlerDecodesEveryKind(t *testing.T) {
	h := New(8, 8, obs.NewMetrics())

	add := schema.AddOrder{OrderID: 1, Side: schema.SideBid, Price: 1000, Qty: 10}
	msg := pushAndPoll(t, h, codec.EncodeAddOrder(nil, add))
	require.Equal(t, schema.KindAddOrder, msg.Kind)
	assert.Equal(t, add, msg.Add)

	cancel := schema.CancelOrder{OrderID: 1}
	msg = pushAndPoll(t, h, codec.EncodeCancelOrder(nil, cancel))
	require.Equal(t, schema.KindCancelOrder, msg.Kind)
	assert.Equal(t, cancel, msg.Cancel)

	modify := schema.ModifyOrder{OrderID: 1, NewQty: 50}
	msg = pushAndPoll(t, h, codec.EncodeModifyOrder(nil, modify))
	require.Equal(t, schema.KindModifyOrder, msg.Kind)
	assert.Equal(t, modify, msg.Modify)

	exec := schema.Execute{OrderID: 1, Qty: 20, Price: 1020}
	msg = pushAndPoll(t, h, codec.EncodeExecute(nil, exec))
	require.Equal(t, schema.KindExecute, msg.Kind)
	assert.Equal(t, exec, msg.Exec)

	trade := schema.Trade{BuyOrderID: 1, SellOrderID: 2, Qty: 30, Price: 1010}
	msg = pushAndPoll(t, h, codec.EncodeTrade(nil, trade))
	require.Equal(t, schema.KindTrade, msg.Kind)
	assert.Equal(t, trade, msg.Trade)

	bbo := schema.BBOUpdate{BestBid: 1005, BestAsk: 1015, BidSize: 50, AskSize: 60}
	msg = pushAndPoll(t, h, codec.EncodeBBOUpdate(nil, bbo))
	require.Equal(t, schema.KindBBOUpdate, msg.Kind)
	assert.Equal(t, bbo, msg.BBO)
}

func TestHandlerDropsMalformedFrames(t *testing.T) {
	m := obs.NewMetrics()
	h := New(4, 4, m)

	h.PushRawMessage(nil)
	h.PushRawMessage([]byte{byte(schema.KindCount)})
	h.PushRawMessage(codec.EncodeAddOrder(nil, schema.AddOrder{OrderID: 1})[:10])

	_, _, ok := h.Poll()
	require.False(t, ok, "malformed frames must not be queued")

	s := m.Snapshot()
	assert.Equal(t, uint64(1), s.Drops[obs.DropEmpty])
	assert.Equal(t, uint64(1), s.Drops[obs.DropUnknownKind])
	assert.Equal(t, uint64(1), s.Drops[obs.DropTruncated])
	assert.Equal(t, 4, h.ApproxFree(), "rejected frames must not hold pool slots")
}

func TestDropReasonMatchesWrappedErrors(t *testing.T) {
	testCases := []struct {
		err  error
		want obs.DropReason
	}{
		{exception.ErrFrameEmpty, obs.DropEmpty},
		{exception.ErrFrameUnknownKind, obs.DropUnknownKind},
		{exception.ErrFrameTruncated, obs.DropTruncated},
		{fmt.Errorf("frame 7: %w", exception.ErrFrameUnknownKind), obs.DropUnknownKind},
		{fmt.Errorf("frame 8: %w", exception.ErrFrameTruncated), obs.DropTruncated},
	}

	for _, tc := range testCases {
		assert.Equalf(t, tc.want, dropReason(tc.err), "err: %v", tc.err)
	}
}

func TestHandlerChannelFullReleasesSlot(t *testing.T) {
	m := obs.NewMetrics()
	h := New(8, 4, m)
	frame := codec.EncodeCancelOrder(nil, schema.CancelOrder{OrderID: 9})

	for i := 0; i < 4; i++ {
		h.PushRawMessage(frame)
	}

	s := m.Snapshot()
	assert.Equal(t, uint64(3), s.Accepted[schema.KindCancelOrder])
	assert.Equal(t, uint64(1), s.Drops[obs.DropChannelFull])
	assert.Equal(t, 3, h.ApproxQueued())
	assert.Equal(t, 5, h.ApproxFree())
}

func TestHandlerPoolExhausted(t *testing.T) {
	m := obs.NewMetrics()
	h := New(2, 8, m)
	frame := codec.EncodeCancelOrder(nil, schema.CancelOrder{OrderID: 9})

	for i := 0; i < 3; i++ {
		h.PushRawMessage(frame)
	}
	assert.Equal(t, uint64(1), m.Snapshot().Drops[obs.DropPoolExhausted])

	handle, _, ok := h.Poll()
	require.True(t, ok)
	h.ReleaseMessage(handle)

	h.PushRawMessage(frame)
	assert.Equal(t, uint64(3), m.Snapshot().Accepted[schema.KindCancelOrder])
}

func TestHandlerDrain(t *testing.T) {
	h := New(8, 8, nil)
	frame := codec.EncodeCancelOrder(nil, schema.CancelOrder{OrderID: 1})
	for i := 0; i < 5; i++ {
		h.PushRawMessage(frame)
	}

	if n := h.Drain(); n != 5 {
		t.Fatalf("drained %d messages, want 5", n)
	}
	if h.ApproxFree() != 8 {
		t.Fatalf("expected every slot back in the pool, got %d free", h.ApproxFree())
	}
}

func TestHandlerHotPathDoesNotAllocate(t *testing.T) {
	h := New(16, 16, obs.NewMetrics())
	frame := codec.EncodeAddOrder(nil, schema.AddOrder{OrderID: 1, Side: schema.SideAsk, Price: 60, Qty: 8})
	cycle := func() {
		h.PushRawMessage(frame)
		if handle, _, ok := h.Poll(); ok {
			h.ReleaseMessage(handle)
		}
	}

	allocs := testing.AllocsPerRun(1000, cycle)
	require.Zero(t, allocs)

	alloc, bytes := sys.MeasureMem(func() {
		for i := 0; i < 1000; i++ {
			cycle()
		}
	})
	t.Logf("a: %d, b: %d", alloc, bytes)
}

func BenchmarkPushRawMessage(b *testing.B) {
	h := New(DefaultPoolSize, DefaultChannelSize, obs.NewMetrics())
	frame := codec.EncodeAddOrder(nil, schema.AddOrder{OrderID: 1, Side: schema.SideBid, Price: 50, Qty: 10})
	for b.Loop() {
		h.PushRawMessage(frame)
		if handle, _, ok := h.Poll(); ok {
			h.ReleaseMessage(handle)
		}
	}
}
