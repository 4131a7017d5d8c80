// Package eventlog keeps a bounded, newest-first buffer of recent
// operational events for the /api/logs endpoint. It is an explicitly
// constructed sink passed into components, not a process-wide global.
package eventlog

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// DefaultCapacity bounds the buffer to the most recent entries.
const DefaultCapacity = 100

// Log is a concurrency-safe ring of recent event lines.
type Log struct {
	mu       sync.RWMutex
	entries  []string // newest first
	capacity int
	logger   *log.Logger
	now      func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithCapacity overrides the buffer capacity.
func WithCapacity(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

// New creates a Log that also mirrors every entry to logger.
// A nil logger disables mirroring.
func New(logger *log.Logger, opts ...Option) *Log {
	l := &Log{
		capacity: DefaultCapacity,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Printf records a formatted event, newest first, evicting the oldest
// entry once the buffer is full.
func (l *Log) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	entry := fmt.Sprintf("[%s] %s", l.now().UTC().Format(time.RFC3339), msg)

	l.mu.Lock()
	l.entries = append([]string{entry}, l.entries...)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
	l.mu.Unlock()

	if l.logger != nil {
		l.logger.Print(msg)
	}
}

// Recent returns a copy of the buffered entries, newest first.
func (l *Log) Recent() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}
