package swap

import "sync/atomic"

// Guard admits at most one in-flight swap.
type Guard struct {
	busy atomic.Bool
}

// Acquire claims the guard or returns ErrSwapInProgress.
func (g *Guard) Acquire() error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrSwapInProgress
	}
	return nil
}

// Release frees the guard.
func (g *Guard) Release() {
	g.busy.Store(false)
}

// InProgress reports whether a swap holds the guard.
func (g *Guard) InProgress() bool {
	return g.busy.Load()
}
