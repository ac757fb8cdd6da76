package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdcore/internal/book"
	"mdcore/pkg/exception"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, book.StrategyArray, cfg.Strategy)
	assert.Equal(t, book.DefaultDomainSize, cfg.Domain.Size)
	assert.Equal(t, 50*time.Microsecond, cfg.IdleWait)
	assert.Empty(t, cfg.Profiling.ServerAddress)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
		"book": {"strategy": "ladder", "domainSize": 1024, "tickSize": "0.01"},
		"pipeline": {"poolSize": 64, "channelSize": 32, "idleWait": "10us"},
		"feed": {"seed": 7, "meanPrice": 300, "maxActive": 16, "minInterval": "1ms", "jitter": "0s"},
		"journal": {"capacity": 100},
		"stats": {"interval": "250ms", "depthEvery": -1},
		"profiling": {"serverAddress": "http://localhost:4040"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, book.StrategyLadder, cfg.Strategy)
	assert.Equal(t, 1024, cfg.Domain.Size)
	assert.True(t, cfg.TickSize.Equal(decimal.RequireFromString("0.01")))
	assert.Equal(t, 64, cfg.PoolSize)
	assert.Equal(t, 32, cfg.ChannelSize)
	assert.Equal(t, 10*time.Microsecond, cfg.IdleWait)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 300.0, cfg.MeanPrice)
	assert.Equal(t, 16, cfg.MaxActive)
	assert.Equal(t, time.Millisecond, cfg.MinInterval)
	assert.Equal(t, time.Duration(0), cfg.Jitter)
	assert.Equal(t, 100, cfg.JournalCapacity)
	assert.Equal(t, 250*time.Millisecond, cfg.StatsInterval)
	assert.Equal(t, -1, cfg.DepthEvery)
	assert.Equal(t, "http://localhost:4040", cfg.Profiling.ServerAddress)
	assert.Equal(t, defaultAppName, cfg.Profiling.ApplicationName)

	// untouched fields keep their defaults
	assert.Equal(t, float64(defaultPriceSigma), cfg.PriceSigma)
	assert.Equal(t, int64(defaultMaxQty), cfg.MaxQty)
}

func TestLoadEmptyObject(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name string
		body string
		err  error
	}{
		{"broken json", `{"book": `, exception.ErrConfigDecode},
		{"bad strategy", `{"book": {"strategy": "heap"}}`, exception.ErrConfigInvalid},
		{"bad domain", `{"book": {"domainSize": 100}}`, exception.ErrConfigInvalid},
		{"bad tick", `{"book": {"tickSize": "abc"}}`, exception.ErrConfigDecode},
		{"zero tick", `{"book": {"tickSize": "0"}}`, exception.ErrConfigInvalid},
		{"bad duration", `{"pipeline": {"idleWait": "soon"}}`, exception.ErrConfigInvalid},
		{"tiny channel", `{"pipeline": {"channelSize": 1}}`, exception.ErrConfigInvalid},
		{"negative pool", `{"pipeline": {"poolSize": -1}}`, exception.ErrConfigInvalid},
		{"negative journal", `{"journal": {"capacity": -5}}`, exception.ErrConfigInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, exception.ErrConfigRead)
}

func TestFormatPrice(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "55", cfg.FormatPrice(55))

	cfg.TickSize = decimal.RequireFromString("0.01")
	assert.Equal(t, "0.55", cfg.FormatPrice(55))
	assert.Equal(t, "1.27", cfg.FormatPrice(127))
}
