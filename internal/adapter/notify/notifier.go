// Package notify delivers cart failure messages to the user.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/shop-cart/internal/port"
)

const KindError = "error"

type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Feed keeps the most recent notifications in memory for clients to poll.
type Feed struct {
	mu    sync.RWMutex
	items []Notification
	limit int
}

func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = 1
	}
	return &Feed{limit: limit}
}

func (f *Feed) Error(ctx context.Context, message string) {
	n := Notification{
		ID:        uuid.NewString(),
		Kind:      KindError,
		Message:   message,
		CreatedAt: time.Now(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if len(f.items) > f.limit {
		f.items = f.items[len(f.items)-f.limit:]
	}
}

// List returns notifications oldest first.
func (f *Feed) List() []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Error(ctx context.Context, message string) {
	l.log.Info("notify", zap.String("kind", KindError), zap.String("message", message))
}

// Multi fans a notification out to every notifier.
type Multi []port.Notifier

func (m Multi) Error(ctx context.Context, message string) {
	for _, n := range m {
		n.Error(ctx, message)
	}
}
