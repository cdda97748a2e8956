package chain

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/propellerswap/propeller/internal/metrics"
	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/memo"
)

var subscriptionSeq atomic.Uint64

// Subscription is a one-shot memo listener. It fires its callback at most once
// and is released either by firing or by Close, whichever happens first.
type Subscription struct {
	ID    uint64
	Chain asset.ChainID
	Memo  memo.Memo

	ctx     context.Context
	cancel  context.CancelFunc
	onMatch func(txID string)

	mu     sync.Mutex
	fired  bool
	closed bool
}

// NewSubscription derives a cancellable context for the listener goroutine
// from parent. Watchers must exit once Context() is done.
func NewSubscription(parent context.Context, chainID asset.ChainID, m memo.Memo, onMatch func(txID string)) *Subscription {
	ctx, cancel := context.WithCancel(parent)
	metrics.SubscriptionsActive.WithLabelValues(chainID.String()).Inc()
	return &Subscription{
		ID:      subscriptionSeq.Add(1),
		Chain:   chainID,
		Memo:    m,
		ctx:     ctx,
		cancel:  cancel,
		onMatch: onMatch,
	}
}

// Context is cancelled when the subscription is released.
func (s *Subscription) Context() context.Context {
	return s.ctx
}

// Fire delivers txID to the callback if the subscription has neither fired
// nor been closed, then releases it. It reports whether the callback ran.
func (s *Subscription) Fire(txID string) bool {
	s.mu.Lock()
	if s.fired || s.closed {
		s.mu.Unlock()
		return false
	}
	s.fired = true
	s.mu.Unlock()

	if s.onMatch != nil {
		s.onMatch(txID)
	}
	s.Close()
	return true
}

// Fired reports whether the callback ran.
func (s *Subscription) Fired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

// Close releases the listener. Idempotent.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	metrics.SubscriptionsActive.WithLabelValues(s.Chain.String()).Dec()
}

// Closed reports whether the subscription has been released.
func (s *Subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type registration struct {
	adapter Adapter
	sub     *Subscription
}

// Registry tracks the subscriptions installed for one swap so they can all be
// released on any exit path.
type Registry struct {
	mu   sync.Mutex
	subs []registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add records a subscription owned by adapter.
func (r *Registry) Add(adapter Adapter, sub *Subscription) {
	if sub == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, registration{adapter: adapter, sub: sub})
}

// Len returns the number of tracked subscriptions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// ReleaseAll unsubscribes every tracked subscription through its adapter and
// empties the registry.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, reg := range subs {
		if reg.adapter != nil {
			reg.adapter.Unsubscribe(reg.sub)
		}
		reg.sub.Close()
	}
}
