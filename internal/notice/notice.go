// Package notice collects user-visible notifications raised by the controller.
package notice

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Level string

const (
	Info  Level = "info"
	Error Level = "error"
)

// Notice is a message for the user, e.g. "Failed to delete product".
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

const defaultCapacity = 50

// Feed keeps the most recent notices until the presentation layer drains them.
// Every notice is logged as well.
type Feed struct {
	mu       sync.Mutex
	notices  []Notice
	capacity int
	logger   *slog.Logger
	now      func() time.Time
}

// NewFeed creates a Feed holding at most capacity notices; older ones are dropped first.
// A non-positive capacity selects the default.
func NewFeed(capacity int, logger *slog.Logger) *Feed {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Feed{
		capacity: capacity,
		logger:   logger.With("component", "notice"),
		now:      time.Now,
	}
}

// Notify records n, stamping it with the current time when unset.
func (f *Feed) Notify(ctx context.Context, n Notice) {
	if n.Time.IsZero() {
		n.Time = f.now()
	}
	if n.Level == Error {
		f.logger.WarnContext(ctx, "User notified", "level", n.Level, "message", n.Message)
	} else {
		f.logger.InfoContext(ctx, "User notified", "level", n.Level, "message", n.Message)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.notices) == f.capacity {
		f.notices = append(f.notices[:0], f.notices[1:]...)
	}
	f.notices = append(f.notices, n)
}

// Drain returns pending notices, oldest first, and forgets them.
func (f *Feed) Drain() []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.notices
	f.notices = nil
	if out == nil {
		return []Notice{}
	}
	return out
}
