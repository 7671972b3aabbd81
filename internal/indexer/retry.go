package indexer

import (
	"context"
	"time"
)

// backoff retries a transient RPC call with exponential delays. Zero
// values fall back to a single retry-free attempt with no base delay.
type backoff struct {
	attempts int
	base     time.Duration
}

func (b backoff) do(ctx context.Context, fn func(context.Context) error) error {
	delay := b.base
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	if b.attempts < 0 {
		b.attempts = 0
	}

	var err error
	for attempt := 0; attempt <= b.attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == b.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
