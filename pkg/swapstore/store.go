// Package swapstore persists finished swaps for auditing and lookup.
package swapstore

import (
	"context"
	"errors"

	"github.com/propellerswap/propeller/pkg/swap"
)

// ErrSwapNotFound is returned when no swap has the requested id.
var ErrSwapNotFound = errors.New("swap not found")

// Store defines swap journal persistence
type Store interface {
	RecordSwap(ctx context.Context, s swap.Snapshot) error
	GetSwap(ctx context.Context, id string) (*swap.Snapshot, error)
	ListSwaps(ctx context.Context, opts ...QueryOption) ([]swap.Snapshot, error)
}

// QueryOptions filters swap listings
type QueryOptions struct {
	State *swap.State
	Limit int
}

// QueryOption is a functional option for listing swaps
type QueryOption func(*QueryOptions)

// WithState restricts results to swaps in state s
func WithState(s swap.State) QueryOption {
	return func(o *QueryOptions) {
		o.State = &s
	}
}

// WithLimit caps the number of returned swaps
func WithLimit(n int) QueryOption {
	return func(o *QueryOptions) {
		o.Limit = n
	}
}
