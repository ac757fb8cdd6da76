package journal

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalKeepsMostRecentLines(t *testing.T) {
	j := New(3)
	for i := 0; i < 5; i++ {
		_, err := fmt.Fprintf(j, "line %d\n", i)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, j.Len())
	assert.Equal(t, []string{"line 2", "line 3", "line 4"}, j.Lines())
}

func TestJournalPartiallyFilled(t *testing.T) {
	j := New(4)
	_, _ = j.Write([]byte("a\n"))
	_, _ = j.Write([]byte("b"))
	assert.Equal(t, []string{"a", "b"}, j.Lines())
}

func TestJournalLogger(t *testing.T) {
	j := New(10)
	log := j.Logger()
	log.Info().Str("event", "AddOrder").Uint64("id", 1).Msg("")

	lines := j.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"event":"AddOrder"`)
	assert.Contains(t, lines[0], `"id":1`)
	assert.Contains(t, lines[0], `"time":`)
}

func TestJournalWriteTo(t *testing.T) {
	j := New(2)
	_, _ = j.Write([]byte("x\n"))
	_, _ = j.Write([]byte("y\n"))
	_, _ = j.Write([]byte("z\n"))

	var buf bytes.Buffer
	n, err := j.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, "y\nz\n", buf.String())
}

func TestJournalConcurrentWriters(t *testing.T) {
	j := New(64)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				fmt.Fprintf(j, "w%d-%d\n", w, i)
			}
		}(w)
	}
	wg.Wait()

	lines := j.Lines()
	require.Len(t, lines, 64)
	for _, line := range lines {
		if !strings.HasPrefix(line, "w") {
			t.Fatalf("unexpected line %q", line)
		}
	}
}
