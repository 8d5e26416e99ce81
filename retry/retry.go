// Package retry implements the backoff policy shared by every service
// adapter: transient connection and timeout failures are retried with
// exponential backoff, everything else fails on the first attempt.
package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy models the retry behavior as data so all adapters share one
// implementation.
type Policy struct {
	MaxAttempts int
	MinWait     time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultPolicy retries transient errors up to 3 attempts total. The wait is
// a constant 1s between attempts, bounded at 10s.
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	MinWait:     1 * time.Second,
	MaxWait:     10 * time.Second,
	Multiplier:  1,
}

// Do runs op under the policy. Non-transient errors abort immediately and are
// returned unwrapped; transient errors are retried until the attempt budget
// is exhausted, then the last error is returned.
func Do(ctx context.Context, p Policy, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.MinWait
	bo.MaxInterval = p.MaxWait
	bo.Multiplier = p.Multiplier
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	attempts := uint64(0)
	if p.MaxAttempts > 1 {
		attempts = uint64(p.MaxAttempts - 1)
	}
	b := backoff.WithMaxRetries(backoff.WithContext(bo, ctx), attempts)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !Transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}

// Transient reports whether err is a connection or timeout failure worth
// retrying. Context cancellation is never transient.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var oe *net.OpError
	return errors.As(err, &oe)
}
