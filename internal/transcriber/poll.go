package transcriber

import (
	"context"
	"fmt"
	"time"
)

// Defaults for asynchronous job polling. The interval matches the backend's
// recommended status-check cadence; the timeout bounds the whole wait so a
// stuck job fails over to the next provider instead of polling forever.
const (
	DefaultPollInterval = 3 * time.Second
	DefaultPollTimeout  = 10 * time.Minute
)

// pollJob invokes fetch immediately and then at a fixed interval until it
// reports done, the timeout elapses, or ctx is cancelled. Polls are strictly
// sequential and never overlap: the next wait starts only after the previous
// fetch returns.
func pollJob(ctx context.Context, interval, timeout time.Duration, fetch func(ctx context.Context) (done bool, err error)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}

	// short jobs finish on the first check instead of waiting out an interval
	done, err := fetch(ctx)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w after %v", ErrJobTimeout, timeout)
		case <-ticker.C:
			done, err := fetch(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}
