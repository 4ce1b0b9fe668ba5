// Package netx contains helpers for talking to network backends.
package netx

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// ReadyPolicy controls how long WaitReady keeps probing a backend.
type ReadyPolicy struct {
	Attempts uint64
	Base     time.Duration
	Max      time.Duration
}

// DefaultReadyPolicy probes for roughly ten seconds before giving up.
var DefaultReadyPolicy = ReadyPolicy{Attempts: 6, Base: 100 * time.Millisecond, Max: 3 * time.Second}

// WaitReady calls ping with exponential backoff until it succeeds, the
// attempts are exhausted or ctx is done. It is used at startup only; request
// paths never retry.
func WaitReady(ctx context.Context, name string, p ReadyPolicy, ping func(context.Context) error) error {
	b := retry.NewExponential(p.Base)
	if p.Max > 0 {
		b = retry.WithCappedDuration(p.Max, b)
	}
	b = retry.WithMaxRetries(p.Attempts, b)

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s not ready: %w", name, err)
	}
	return nil
}
