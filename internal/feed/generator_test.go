package feed

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/tomb.v2"

	"mdcore/internal/codec"
	"mdcore/internal/schema"
)

func TestGeneratorEmitsValidFrames(t *testing.T) {
	cfg := DefaultConfig(1, 127)
	cfg.Seed = 42

	added := make(map[schema.OrderID]struct{})
	counts := make(map[schema.Kind]int)
	gen := NewGenerator(cfg, func(frame []byte) {
		var msg schema.Message
		require.NoError(t, codec.DecodeFrame(frame, &msg))
		counts[msg.Kind]++

		switch msg.Kind {
		case schema.KindAddOrder:
			require.True(t, msg.Add.Side.IsAvailable())
			require.GreaterOrEqual(t, msg.Add.Price, schema.Price(1))
			require.LessOrEqual(t, msg.Add.Price, schema.Price(127))
			require.Positive(t, msg.Add.Qty)
			require.LessOrEqual(t, msg.Add.Qty, schema.Quantity(100))
			added[msg.Add.OrderID] = struct{}{}
		case schema.KindCancelOrder:
			require.Contains(t, added, msg.Cancel.OrderID)
		case schema.KindModifyOrder:
			require.Contains(t, added, msg.Modify.OrderID)
			require.Positive(t, msg.Modify.NewQty)
		case schema.KindExecute:
			require.Contains(t, added, msg.Exec.OrderID)
			require.Positive(t, msg.Exec.Qty)
		default:
			t.Fatalf("unexpected kind %s", msg.Kind)
		}
	})

	for i := 0; i < 5000; i++ {
		gen.Step()
	}

	for _, kind := range []schema.Kind{schema.KindAddOrder, schema.KindCancelOrder, schema.KindModifyOrder, schema.KindExecute} {
		assert.Positivef(t, counts[kind], "no %s frames generated", kind)
	}
	assert.Greater(t, counts[schema.KindAddOrder], counts[schema.KindCancelOrder])
}

func TestGeneratorFirstFrameIsAdd(t *testing.T) {
	gen := NewGenerator(Config{Seed: 1, MinPrice: 1, MaxPrice: 127}, nil)
	assert.Equal(t, schema.KindAddOrder, gen.Step())
}

func TestGeneratorIsDeterministic(t *testing.T) {
	collect := func() [][]byte {
		var out [][]byte
		gen := NewGenerator(Config{Seed: 9, MinPrice: 1, MaxPrice: 127}, func(frame []byte) {
			out = append(out, append([]byte(nil), frame...))
		})
		for i := 0; i < 200; i++ {
			gen.Step()
		}
		return out
	}
	assert.Equal(t, collect(), collect())
}

func TestGeneratorBoundsActiveIDs(t *testing.T) {
	gen := NewGenerator(Config{Seed: 3, MinPrice: 1, MaxPrice: 127, MaxActive: 8}, nil)
	for i := 0; i < 1000; i++ {
		gen.Step()
	}
	assert.LessOrEqual(t, len(gen.active), 8)
}

func TestGeneratorRunStopsWhenDying(t *testing.T) {
	var frames atomic.Int64
	gen := NewGenerator(Config{
		Seed:        5,
		MinPrice:    1,
		MaxPrice:    127,
		MinInterval: 100 * time.Microsecond,
	}, func([]byte) { frames.Add(1) })

	var tb tomb.Tomb
	tb.Go(func() error { return gen.Run(&tb) })
	time.Sleep(20 * time.Millisecond)
	tb.Kill(nil)
	require.NoError(t, tb.Wait())
	assert.Positive(t, frames.Load())
}
