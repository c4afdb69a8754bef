// File: internal/browser/context.go
package browser

import "context"

// CombineContext returns a context canceled as soon as either parent is done.
// Values and deadline are inherited from ctx1; ctx2 only contributes its
// cancellation signal. Used so every browser operation respects both the
// session lifetime and the caller's per-operation deadline.
func CombineContext(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(ctx1)

	go func() {
		select {
		case <-ctx2.Done():
			cancel()
		case <-combinedCtx.Done():
			// Already canceled (from ctx1 or a direct call), nothing to do.
		}
	}()

	return combinedCtx, cancel
}
