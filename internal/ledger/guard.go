package ledger

import (
	"context"
	"fmt"
	"time"
)

// DefaultGuardWait bounds how long a mutating call waits for the ledger.
const DefaultGuardWait = 5 * time.Second

type guardKey struct{ g *guard }

// guard serialises mutating operations on one ledger and rejects re-entry.
// The context handed to the operation is marked; a mutating call that
// arrives with a marked context (a token calling back into the ledger while
// a transfer is in flight) is rejected at once. A callback that drops the
// context cannot be told apart from a queued caller, so every wait is
// bounded and a call that never gets the slot is rejected the same way.
type guard struct {
	slot chan struct{}
	wait time.Duration
}

func newGuard(wait time.Duration) guard {
	if wait <= 0 {
		wait = DefaultGuardWait
	}
	return guard{slot: make(chan struct{}, 1), wait: wait}
}

func (g *guard) enter(ctx context.Context) (context.Context, func(), error) {
	if ctx.Value(guardKey{g}) != nil {
		return nil, nil, ErrReentrancyGuardReentrantCall
	}

	timer := time.NewTimer(g.wait)
	defer timer.Stop()
	select {
	case g.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w: ledger busy for %s", ErrReentrancyGuardReentrantCall, g.wait)
	}

	return context.WithValue(ctx, guardKey{g}, true), func() { <-g.slot }, nil
}
