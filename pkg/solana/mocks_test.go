package solana

import (
	"context"
	"errors"
	"sync"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
)

// MockRPC is a func-field implementation of RPC.
type MockRPC struct {
	GetBalanceFunc             func(ctx context.Context, account solana.PublicKey) (*rpc.GetBalanceResult, error)
	GetAccountInfoWithOptsFunc func(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetTransactionFunc         func(ctx context.Context, sig solana.Signature) (*rpc.GetTransactionResult, error)
	StatusFunc                 func(sig solana.Signature) *rpc.SignatureStatusesResult

	mu   sync.Mutex
	sent []*solana.Transaction
}

func (m *MockRPC) GetBalance(ctx context.Context, account solana.PublicKey, _ rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	if m.GetBalanceFunc != nil {
		return m.GetBalanceFunc(ctx, account)
	}
	return &rpc.GetBalanceResult{Value: 0}, nil
}

func (m *MockRPC) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, _ *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	if m.GetAccountInfoWithOptsFunc != nil {
		return m.GetAccountInfoWithOptsFunc(ctx, account)
	}
	return nil, rpc.ErrNotFound
}

func (m *MockRPC) GetLatestBlockhash(context.Context, rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{9}}}, nil
}

func (m *MockRPC) SendTransactionWithOpts(_ context.Context, tx *solana.Transaction, _ rpc.TransactionOpts) (solana.Signature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, tx)
	return tx.Signatures[0], nil
}

func (m *MockRPC) GetSignatureStatuses(_ context.Context, _ bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	status := &rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusConfirmed}
	if m.StatusFunc != nil {
		status = m.StatusFunc(sigs[0])
	}
	return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{status}}, nil
}

func (m *MockRPC) GetTransaction(ctx context.Context, sig solana.Signature, _ *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
	if m.GetTransactionFunc != nil {
		return m.GetTransactionFunc(ctx, sig)
	}
	return &rpc.GetTransactionResult{Meta: &rpc.TransactionMeta{}}, nil
}

func (m *MockRPC) Close() error { return nil }

func (m *MockRPC) lastSent() *solana.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	return m.sent[len(m.sent)-1]
}

// MockLogStream replays events pushed onto its channel.
type MockLogStream struct {
	events chan LogEvent
	once   sync.Once
	closed chan struct{}
}

func newMockLogStream() *MockLogStream {
	return &MockLogStream{events: make(chan LogEvent, 8), closed: make(chan struct{})}
}

func (s *MockLogStream) Recv(ctx context.Context) (LogEvent, error) {
	select {
	case ev := <-s.events:
		return ev, nil
	case <-ctx.Done():
		return LogEvent{}, ctx.Err()
	}
}

func (s *MockLogStream) Close() {
	s.once.Do(func() { close(s.closed) })
}

func (s *MockLogStream) dialer() LogDialer {
	return func(context.Context, solana.PublicKey) (LogStream, error) {
		return s, nil
	}
}

// blockingSubscription ignores the context passed to Recv and only returns
// once unsubscribed or a result is queued.
type blockingSubscription struct {
	results      chan *ws.LogResult
	unsubscribed chan struct{}
	once         sync.Once
}

func newBlockingSubscription() *blockingSubscription {
	return &blockingSubscription{results: make(chan *ws.LogResult, 1), unsubscribed: make(chan struct{})}
}

func (b *blockingSubscription) Recv(context.Context) (*ws.LogResult, error) {
	select {
	case res := <-b.results:
		return res, nil
	case <-b.unsubscribed:
		return nil, errors.New("subscription closed")
	}
}

func (b *blockingSubscription) Unsubscribe() {
	b.once.Do(func() { close(b.unsubscribed) })
}
