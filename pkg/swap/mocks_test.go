package swap

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/balance"
	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/memo"
)

// callLog records adapter calls across chains in order.
type callLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *callLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func (l *callLog) index(entry string) int {
	for i, e := range l.snapshot() {
		if e == entry {
			return i
		}
	}
	return -1
}

// MockAdapter is a func-field implementation of chain.Adapter.
type MockAdapter struct {
	ID     asset.ChainID
	Fam    asset.Family
	Log    *callLog
	Router string

	OwnerFunc           func() (string, error)
	TargetOwnerFunc     func(ctx context.Context, target asset.ChainAsset) ([32]byte, error)
	ApproveIfNeededFunc func(ctx context.Context, owner, spender string, a asset.ChainAsset, required *big.Int) (string, error)
	SubmitTransferFunc  func(ctx context.Context, p chain.TransferParams) (*chain.TransferResult, error)

	mu           sync.Mutex
	subs         []*chain.Subscription
	unsubscribed int
}

func (m *MockAdapter) ChainID() asset.ChainID { return m.ID }

func (m *MockAdapter) Family() asset.Family { return m.Fam }

func (m *MockAdapter) Owner() (string, error) {
	m.Log.add("%s:owner", m.ID)
	if m.OwnerFunc != nil {
		return m.OwnerFunc()
	}
	return "owner-" + m.ID.String(), nil
}

func (m *MockAdapter) TargetOwner(ctx context.Context, target asset.ChainAsset) ([32]byte, error) {
	if m.TargetOwnerFunc != nil {
		return m.TargetOwnerFunc(ctx, target)
	}
	return [32]byte{31: byte(m.ID)}, nil
}

func (m *MockAdapter) RoutingAddress() string {
	if m.Router != "" {
		return m.Router
	}
	return "routing-" + m.ID.String()
}

func (m *MockAdapter) GasBalance(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (m *MockAdapter) TokenBalance(context.Context, asset.ChainAsset) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (m *MockAdapter) GetAllowance(context.Context, string, string, asset.ChainAsset) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (m *MockAdapter) ApproveIfNeeded(ctx context.Context, owner, spender string, a asset.ChainAsset, required *big.Int) (string, error) {
	m.Log.add("%s:approve:%s", m.ID, required)
	if m.ApproveIfNeededFunc != nil {
		return m.ApproveIfNeededFunc(ctx, owner, spender, a, required)
	}
	return "", nil
}

func (m *MockAdapter) SubmitTransfer(ctx context.Context, p chain.TransferParams) (*chain.TransferResult, error) {
	m.Log.add("%s:submit:%s", m.ID, p.Amount)
	if m.SubmitTransferFunc != nil {
		return m.SubmitTransferFunc(ctx, p)
	}
	return &chain.TransferResult{TxID: "submit-" + m.ID.String()}, nil
}

func (m *MockAdapter) WatchForMemo(ctx context.Context, mm memo.Memo, onMatch func(txID string)) (*chain.Subscription, error) {
	m.Log.add("%s:watch", m.ID)
	sub := chain.NewSubscription(ctx, m.ID, mm, onMatch)
	m.mu.Lock()
	m.subs = append(m.subs, sub)
	m.mu.Unlock()
	return sub, nil
}

func (m *MockAdapter) Unsubscribe(sub *chain.Subscription) {
	m.mu.Lock()
	m.unsubscribed++
	m.mu.Unlock()
	sub.Close()
}

func (m *MockAdapter) Close() {}

// Emit fires every live subscription with txID.
func (m *MockAdapter) Emit(txID string) {
	m.mu.Lock()
	subs := append([]*chain.Subscription(nil), m.subs...)
	m.mu.Unlock()
	for _, s := range subs {
		s.Fire(txID)
	}
}

func (m *MockAdapter) allReleased() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if !s.Closed() {
			return false
		}
	}
	return true
}

func (m *MockAdapter) watchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// MockLedgerAdapter adds liquidity conversion.
type MockLedgerAdapter struct {
	*MockAdapter
	ConvertFunc func(ctx context.Context, req chain.ConversionRequest) (*chain.ConversionResult, error)
}

func (m *MockLedgerAdapter) Convert(ctx context.Context, req chain.ConversionRequest) (*chain.ConversionResult, error) {
	m.Log.add("%s:convert:%s", m.ID, req.Amount)
	if m.ConvertFunc != nil {
		return m.ConvertFunc(ctx, req)
	}
	return &chain.ConversionResult{TxID: "convert", Output: req.Amount}, nil
}

// MockAdapters resolves adapters from a fixed map.
type MockAdapters struct {
	mu       sync.Mutex
	adapters map[asset.ChainID]chain.Adapter
	gets     int
}

func (m *MockAdapters) Get(_ context.Context, id asset.ChainID) (chain.Adapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	a, ok := m.adapters[id]
	if !ok {
		return nil, fmt.Errorf("no adapter for %s", id)
	}
	return a, nil
}

func (m *MockAdapters) getCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

// MockInvalidator records invalidated keys.
type MockInvalidator struct {
	mu    sync.Mutex
	calls [][]balance.Key
}

func (m *MockInvalidator) Invalidate(keys ...balance.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, keys)
}

func (m *MockInvalidator) last() []balance.Key {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

// MockJournal records journaled snapshots.
type MockJournal struct {
	mu        sync.Mutex
	snapshots []Snapshot
}

func (m *MockJournal) RecordSwap(_ context.Context, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, s)
	return nil
}
