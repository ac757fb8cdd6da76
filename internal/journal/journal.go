package journal

import (
	"bytes"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

const DefaultCapacity = 5000

// Journal keeps the most recent log lines in memory, evicting the oldest once full.
// It is safe for concurrent use.
type Journal struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

// New creates a journal holding up to capacity lines. Non-positive capacity means
// DefaultCapacity.
func New(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Journal{lines: make([]string, capacity)}
}

// Write stores p as one line. zerolog calls Write once per event.
func (j *Journal) Write(p []byte) (int, error) {
	line := string(bytes.TrimRight(p, "\n"))

	j.mu.Lock()
	j.lines[j.next] = line
	j.next++
	if j.next == len(j.lines) {
		j.next = 0
		j.full = true
	}
	j.mu.Unlock()

	return len(p), nil
}

// Logger returns a structured logger that writes into the journal.
func (j *Journal) Logger() zerolog.Logger {
	return zerolog.New(j).With().Timestamp().Logger()
}

// Len returns the number of stored lines.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.full {
		return len(j.lines)
	}
	return j.next
}

// Lines returns a copy of the stored lines, oldest first.
func (j *Journal) Lines() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.full {
		out := make([]string, j.next)
		copy(out, j.lines[:j.next])
		return out
	}
	out := make([]string, 0, len(j.lines))
	out = append(out, j.lines[j.next:]...)
	out = append(out, j.lines[:j.next]...)
	return out
}

// WriteTo dumps the stored lines to w, oldest first.
func (j *Journal) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, line := range j.Lines() {
		n, err := io.WriteString(w, line+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
