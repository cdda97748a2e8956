package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/balance"
	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/swap"
	"github.com/propellerswap/propeller/pkg/swapstore"
)

const testCatalog = `
chains:
  - id: 4
    name: bsc
    family: evm
    gas_decimals: 18
    canonical: swimusd
    tokens:
      - project: swimusd
        address: "0x0000000000000000000000000000000000000001"
        decimals: 8
      - project: usdc
        address: "0x0000000000000000000000000000000000000002"
        decimals: 18
        token_number: 1
`

type mockSwapper struct {
	StartFunc func(ctx context.Context, req swap.Request) (swap.Snapshot, error)
	current   *swap.Snapshot
	lastReq   swap.Request
}

func (m *mockSwapper) Start(ctx context.Context, req swap.Request) (swap.Snapshot, error) {
	m.lastReq = req
	if m.StartFunc != nil {
		return m.StartFunc(ctx, req)
	}
	return swap.Snapshot{ID: "swap-1", Route: "evm-to-evm", State: swap.StateInit}, nil
}

func (m *mockSwapper) Current() (swap.Snapshot, bool) {
	if m.current == nil {
		return swap.Snapshot{}, false
	}
	return *m.current, true
}

type mockJournal struct {
	GetSwapFunc func(ctx context.Context, id string) (*swap.Snapshot, error)
}

func (m *mockJournal) GetSwap(ctx context.Context, id string) (*swap.Snapshot, error) {
	return m.GetSwapFunc(ctx, id)
}

type mockBalances map[balance.Key]*big.Int

func (m mockBalances) Get(_ context.Context, key balance.Key) (*big.Int, error) {
	v, ok := m[key]
	if !ok {
		return nil, chain.ErrWalletNotConnected
	}
	return v, nil
}

func newRouter(t *testing.T, swapper Swapper, journal SwapLookup, balances BalanceReader) http.Handler {
	t.Helper()
	catalog, err := asset.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	r := chi.NewRouter()
	RegisterRoutes(r, swapper, journal, balances, catalog, zap.NewNop())
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func TestSubmit_Accepted(t *testing.T) {
	swapper := &mockSwapper{}
	h := newRouter(t, swapper, nil, mockBalances{})

	rec := do(t, h, http.MethodPost, "/api/v1/swaps", `{
		"sourceChain": "bsc", "sourceToken": "usdc",
		"targetChain": "5", "targetToken": "usdt",
		"inputAmount": "12.5", "maxPropellerFee": 0.1, "gasKickstart": true
	}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var snap swap.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Equal(t, "swap-1", snap.ID)

	assert.Equal(t, asset.ChainBSC, swapper.lastReq.SourceChain)
	assert.Equal(t, asset.ChainPolygon, swapper.lastReq.TargetChain)
	assert.Equal(t, "12.5", swapper.lastReq.InputAmount.String())
	assert.Equal(t, "0.1", swapper.lastReq.MaxFee.String())
	assert.True(t, swapper.lastReq.GasKickstart)
}

func TestSubmit_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest},
		{"unknown chain", `{"sourceChain":"mars","targetChain":"bsc"}`, nil, http.StatusBadRequest},
		{"in progress", `{"sourceChain":"bsc","targetChain":"bsc"}`, swap.ErrSwapInProgress, http.StatusConflict},
		{"invalid request", `{"sourceChain":"bsc","targetChain":"bsc"}`, fmt.Errorf("%w: amount", swap.ErrInvalidRequest), http.StatusBadRequest},
		{"unsupported route", `{"sourceChain":"bsc","targetChain":"bsc"}`, swap.ErrUnsupportedRoute, http.StatusBadRequest},
		{"chain failure", `{"sourceChain":"bsc","targetChain":"bsc"}`, errors.New("rpc down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			swapper := &mockSwapper{StartFunc: func(context.Context, swap.Request) (swap.Snapshot, error) {
				return swap.Snapshot{}, tt.err
			}}
			rec := do(t, newRouter(t, swapper, nil, mockBalances{}), http.MethodPost, "/api/v1/swaps", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status, decodeError(t, rec).Code)
		})
	}
}

func TestSubmit_InternalErrorIsNotLeaked(t *testing.T) {
	swapper := &mockSwapper{StartFunc: func(context.Context, swap.Request) (swap.Snapshot, error) {
		return swap.Snapshot{}, errors.New("dial tcp 10.0.0.1: secret detail")
	}}
	rec := do(t, newRouter(t, swapper, nil, mockBalances{}), http.MethodPost, "/api/v1/swaps",
		`{"sourceChain":"bsc","targetChain":"bsc"}`)
	assert.Equal(t, "Internal Server Error", decodeError(t, rec).Error)
}

func TestCurrent(t *testing.T) {
	swapper := &mockSwapper{}
	h := newRouter(t, swapper, nil, mockBalances{})

	rec := do(t, h, http.MethodGet, "/api/v1/swaps/current", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	swapper.current = &swap.Snapshot{ID: "live", State: swap.StateAwaitingTargetEvent}
	rec = do(t, h, http.MethodGet, "/api/v1/swaps/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap swap.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Equal(t, swap.StateAwaitingTargetEvent, snap.State)
}

func TestGetSwap(t *testing.T) {
	swapper := &mockSwapper{current: &swap.Snapshot{ID: "live", State: swap.StateSubmittingTransfer}}
	journal := &mockJournal{GetSwapFunc: func(_ context.Context, id string) (*swap.Snapshot, error) {
		switch id {
		case "old":
			return &swap.Snapshot{ID: "old", State: swap.StateCompleted}, nil
		case "broken":
			return nil, errors.New("connection refused")
		default:
			return nil, swapstore.ErrSwapNotFound
		}
	}}
	h := newRouter(t, swapper, journal, mockBalances{})

	rec := do(t, h, http.MethodGet, "/api/v1/swaps/live", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(swap.StateSubmittingTransfer))

	rec = do(t, h, http.MethodGet, "/api/v1/swaps/old", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(swap.StateCompleted))

	rec = do(t, h, http.MethodGet, "/api/v1/swaps/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/swaps/broken", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetSwap_NoJournal(t *testing.T) {
	rec := do(t, newRouter(t, &mockSwapper{}, nil, mockBalances{}), http.MethodGet, "/api/v1/swaps/any", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBalances(t *testing.T) {
	balances := mockBalances{
		balance.GasKey(asset.ChainBSC):           big.NewInt(1_500_000_000_000_000_000),
		balance.TokenKey(asset.ChainBSC, "usdc"): big.NewInt(2_000_000_000_000_000_000),
	}
	h := newRouter(t, &mockSwapper{}, nil, balances)

	rec := do(t, h, http.MethodGet, "/api/v1/balances/bsc?token=usdc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body balanceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "bsc", body.Chain)
	assert.Equal(t, "1.500000000000000000", body.Gas)
	assert.Equal(t, "usdc", body.Token)
	assert.Equal(t, "2.000000000000000000", body.Amount)

	rec = do(t, h, http.MethodGet, "/api/v1/balances/bsc?token=dai", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/balances/solana", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBalances_WalletNotConnected(t *testing.T) {
	rec := do(t, newRouter(t, &mockSwapper{}, nil, mockBalances{}), http.MethodGet, "/api/v1/balances/bsc", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
