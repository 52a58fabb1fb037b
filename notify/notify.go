package notify

import "context"

// Event asks consumers to drop cached views of one record. Delivery is
// best-effort; a lost event means a stale cache, never a wrong mutation.
type Event struct {
	Category string `json:"category"`
	ID       string `json:"id"`
	Op       string `json:"op"`
}

type Notifier interface {
	Invalidate(ctx context.Context, e Event) error
}

// Noop drops every event. Used when no redis is configured and in tests.
type Noop struct{}

func (Noop) Invalidate(_ context.Context, _ Event) error { return nil }
