// File: internal/browser/locator.go
package browser

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ProbeFunc reports whether the element described by d is currently present
// and interactable. A negative result is not an error; errors are reserved
// for conditions that make further probing pointless (lost session, canceled
// context).
type ProbeFunc func(ctx context.Context, d Descriptor) (bool, error)

// Locator resolves element descriptors against a live page, tolerating the
// asynchronous rendering of the remote portal. A single negative probe is
// never conclusive: the page may still be loading, so the locator polls at a
// fixed interval until the element is interactable or the deadline passes.
type Locator struct {
	probe    ProbeFunc
	interval time.Duration
	logger   *zap.Logger
}

// NewLocator creates a locator polling via probe at the given fixed interval.
func NewLocator(probe ProbeFunc, interval time.Duration, logger *zap.Logger) *Locator {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Locator{
		probe:    probe,
		interval: interval,
		logger:   logger.Named("locator"),
	}
}

// Find blocks until the descriptor resolves to an interactable element, the
// timeout elapses, or ctx is canceled. On timeout it returns an
// ElementNotFoundError carrying the descriptor for diagnostics.
func (l *Locator) Find(ctx context.Context, d Descriptor, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		attempts++
		ok, err := l.probe(ctx, d)
		if err != nil {
			return err
		}
		if ok {
			if attempts > 1 {
				l.logger.Debug("Element appeared after polling.",
					zap.Stringer("descriptor", d), zap.Int("attempts", attempts))
			}
			return nil
		}
		if !time.Now().Before(deadline) {
			l.logger.Debug("Element did not appear before deadline.",
				zap.Stringer("descriptor", d), zap.Int("attempts", attempts), zap.Duration("timeout", timeout))
			return &ElementNotFoundError{Descriptor: d, Timeout: timeout}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
