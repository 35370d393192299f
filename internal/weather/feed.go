package weather

import (
	"context"
	"log/slog"
	"time"
)

// Feed polls a Client and publishes each reading whose kind differs from the
// previous one. The simulation drains C on its own thread.
type Feed struct {
	C <-chan Reading

	client   *Client
	interval time.Duration
	out      chan Reading
}

// NewFeed creates a feed over client. Returns nil when client is nil.
func NewFeed(client *Client, interval time.Duration) *Feed {
	if client == nil {
		return nil
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	out := make(chan Reading, 1)
	return &Feed{C: out, client: client, interval: interval, out: out}
}

// Run polls until ctx is cancelled. A pending unread reading is replaced by
// the newer one.
func (f *Feed) Run(ctx context.Context) {
	last := Clear
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		r, err := f.client.Fetch(ctx)
		if err != nil {
			slog.Warn("real weather unavailable", "error", err)
		} else if r.Kind != last {
			last = r.Kind
			f.publish(r)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (f *Feed) publish(r Reading) {
	select {
	case f.out <- r:
	default:
		select {
		case <-f.out:
		default:
		}
		f.out <- r
	}
}

// Poll returns a published reading without blocking.
func (f *Feed) Poll() (Reading, bool) {
	if f == nil {
		return Reading{}, false
	}
	select {
	case r := <-f.C:
		return r, true
	default:
		return Reading{}, false
	}
}
