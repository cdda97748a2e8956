package ethereum

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/config"
	"github.com/propellerswap/propeller/pkg/ethereum/contracts"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

// fakeBackend implements the calls the client makes; anything else panics.
type fakeBackend struct {
	Backend
	chainID   int64
	chainErr  error
	nonce     uint64
	gasPrice  int64
	head      int64
	headStep  int64
	chainHits int
	closed    bool

	// contract state
	allowance *big.Int
	reverted  bool
	logs      []types.Log

	mu           sync.Mutex
	calls        []ethereum.CallMsg
	sent         []*types.Transaction
	receiptCalls int
	queries      []ethereum.FilterQuery
}

func (f *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	amount := f.allowance
	if amount == nil {
		amount = new(big.Int)
	}
	return common.LeftPadBytes(amount.Bytes(), 32), nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receiptCalls++
	status := types.ReceiptStatusSuccessful
	if f.reverted {
		status = types.ReceiptStatusFailed
	}
	return &types.Receipt{TxHash: hash, Status: status, GasUsed: 46000, BlockNumber: big.NewInt(f.head)}, nil
}

// FilterLogs returns every configured log regardless of the query, like a
// node whose topic filtering cannot be trusted.
func (f *fakeBackend) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return append([]types.Log(nil), f.logs...), nil
}

func (f *fakeBackend) sentTransactions() []*types.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*types.Transaction(nil), f.sent...)
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	f.chainHits++
	if f.chainErr != nil {
		return nil, f.chainErr
	}
	return big.NewInt(f.chainID), nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(f.gasPrice), nil
}

// HeaderByNumber reports the current head, then advances it by headStep.
func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	head := f.head
	f.head += f.headStep
	return &types.Header{Number: big.NewInt(head)}, nil
}

func (f *fakeBackend) Close() { f.closed = true }

func testChainConfig() *config.EVMChainConfig {
	return &config.EVMChainConfig{
		WormholeChainID: 4,
		ChainID:         56,
		RoutingContract: "0x0000000000000000000000000000000000000aaa",
		WormholeBridge:  "0x0000000000000000000000000000000000000bbb",
		GasLimit:        500000,
		PollingInterval: time.Hour,
	}
}

func newTestClient(t *testing.T, backend *fakeBackend, withWallet bool) *Client {
	t.Helper()
	var w *Wallet
	if withWallet {
		var err error
		w, err = NewWalletFromHex("0x" + testKey)
		require.NoError(t, err)
	}
	c, err := NewClient(testChainConfig(), backend, w, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestAddressToWormhole(t *testing.T) {
	addr := common.HexToAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
	padded := AddressToWormhole(addr)
	assert.Equal(t, make([]byte, 12), padded[:12])
	assert.Equal(t, addr.Bytes(), padded[12:])

	back, err := WormholeToAddress(padded)
	require.NoError(t, err)
	assert.Equal(t, addr, back)

	padded[0] = 1
	_, err = WormholeToAddress(padded)
	require.Error(t, err)
}

func TestWallet_SwitchNetwork(t *testing.T) {
	w, err := NewWalletFromHex(testKey)
	require.NoError(t, err)
	key, _ := crypto.HexToECDSA(testKey)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), w.Address())
	assert.Nil(t, w.Network())

	_, err = w.Transactor(big.NewInt(1))
	require.ErrorIs(t, err, ErrWrongNetwork)

	assert.True(t, w.SwitchNetwork(big.NewInt(56)))
	assert.False(t, w.SwitchNetwork(big.NewInt(56)))
	assert.Equal(t, int64(56), w.Network().Int64())

	auth, err := w.Transactor(big.NewInt(56))
	require.NoError(t, err)
	assert.Equal(t, w.Address(), auth.From)

	_, err = w.Transactor(big.NewInt(1))
	require.ErrorIs(t, err, ErrWrongNetwork)
}

func TestClient_GetTransactor(t *testing.T) {
	backend := &fakeBackend{chainID: 56, nonce: 9, gasPrice: 5}
	c := newTestClient(t, backend, true)

	auth, err := c.GetTransactor(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), auth.Nonce.Uint64())
	assert.Equal(t, uint64(500000), auth.GasLimit)
	assert.Nil(t, auth.GasPrice)
	assert.Equal(t, int64(56), c.wallet.Network().Int64())

	// The chain id check is only made until it succeeds.
	_, err = c.GetTransactor(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.chainHits)

	auth, err = c.GetTransactor(context.Background(), &chain.Overrides{GasLimit: 90000, GasPrice: big.NewInt(3)})
	require.NoError(t, err)
	assert.Equal(t, uint64(90000), auth.GasLimit)
	assert.Equal(t, int64(3), auth.GasPrice.Int64())
}

func TestClient_GetTransactorCapsGasPrice(t *testing.T) {
	backend := &fakeBackend{chainID: 56, gasPrice: 200}
	c := newTestClient(t, backend, true)
	c.config.MaxGasPrice = "100"

	auth, err := c.GetTransactor(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(100), auth.GasPrice.Int64())

	backend.gasPrice = 40
	auth, err = c.GetTransactor(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(40), auth.GasPrice.Int64())
}

func TestClient_ChainMismatch(t *testing.T) {
	backend := &fakeBackend{chainID: 1}
	c := newTestClient(t, backend, true)

	_, err := c.GetTransactor(context.Background(), nil)
	require.ErrorIs(t, err, ErrChainMismatch)
	assert.Nil(t, c.wallet.Network())

	// Transient failures are retried on the next call.
	backend.chainID = 56
	backend.chainErr = errors.New("timeout")
	_, err = c.GetTransactor(context.Background(), nil)
	require.Error(t, err)
	backend.chainErr = nil
	_, err = c.GetTransactor(context.Background(), nil)
	require.NoError(t, err)
}

func TestAdapter_WalletNotConnected(t *testing.T) {
	c := newTestClient(t, &fakeBackend{chainID: 56}, false)
	a := NewAdapter(asset.ChainBSC, c, zap.NewNop())

	_, err := a.Owner()
	require.ErrorIs(t, err, chain.ErrWalletNotConnected)
	_, err = a.TargetOwner(context.Background(), asset.ChainAsset{})
	require.ErrorIs(t, err, chain.ErrWalletNotConnected)
	_, err = c.GetTransactor(context.Background(), nil)
	require.ErrorIs(t, err, chain.ErrWalletNotConnected)

	assert.Equal(t, asset.FamilyEVM, a.Family())
	assert.Equal(t, common.HexToAddress("0xaaa").Hex(), a.RoutingAddress())
}

func TestAdapter_TargetOwner(t *testing.T) {
	c := newTestClient(t, &fakeBackend{chainID: 56}, true)
	a := NewAdapter(asset.ChainBSC, c, zap.NewNop())

	owner, err := a.TargetOwner(context.Background(), asset.ChainAsset{Chain: asset.ChainBSC})
	require.NoError(t, err)
	assert.Equal(t, AddressToWormhole(c.wallet.Address()), owner)
}

func TestAdapter_RejectsForeignAsset(t *testing.T) {
	c := newTestClient(t, &fakeBackend{chainID: 56}, true)
	a := NewAdapter(asset.ChainBSC, c, zap.NewNop())

	_, err := a.TokenBalance(context.Background(), asset.ChainAsset{Chain: asset.ChainEthereum, Address: "0x01"})
	require.ErrorIs(t, err, chain.ErrUnsupportedAsset)

	_, err = a.SubmitTransfer(context.Background(), chain.TransferParams{MaxFee: new(big.Int).Lsh(big.NewInt(1), 64)})
	require.Error(t, err)
}

func TestAdapter_UnsubscribeStopsPoller(t *testing.T) {
	backend := &fakeBackend{chainID: 56, head: 100}
	c := newTestClient(t, backend, true)
	a := NewAdapter(asset.ChainBSC, c, zap.NewNop())

	sub, err := a.WatchForMemo(context.Background(), [16]byte{1}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, a.ActiveSubscriptions())

	a.Unsubscribe(sub)
	assert.True(t, sub.Closed())
	assert.Equal(t, 0, a.ActiveSubscriptions())

	a.Close()
	assert.True(t, backend.closed)
}

func bridgeLog(t *testing.T, bridge common.Address, sequence uint64) *types.Log {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(contracts.WormholeMetaData.ABI))
	require.NoError(t, err)
	ev := parsed.Events["LogMessagePublished"]
	data, err := ev.Inputs.NonIndexed().Pack(sequence, uint32(0), []byte{0x01, 0x02}, uint8(15))
	require.NoError(t, err)
	return &types.Log{
		Address: bridge,
		Topics: []common.Hash{
			LogMessagePublishedTopic,
			common.BytesToHash(common.HexToAddress("0x0000000000000000000000000000000000000ccc").Bytes()),
		},
		Data: data,
	}
}

func TestParseSequenceFromReceipt(t *testing.T) {
	bridge := common.HexToAddress("0x0000000000000000000000000000000000000bbb")
	other := common.HexToAddress("0x0000000000000000000000000000000000000ddd")

	receipt := &types.Receipt{Logs: []*types.Log{
		{Address: other, Topics: []common.Hash{common.HexToHash("0x01")}},
		bridgeLog(t, other, 7),
		bridgeLog(t, bridge, 42),
	}}
	seq, err := ParseSequenceFromReceipt(receipt, bridge)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), seq)

	_, err = ParseSequenceFromReceipt(&types.Receipt{}, bridge)
	require.ErrorIs(t, err, ErrSequenceNotFound)
}

func TestEventTopics(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(contracts.RoutingMetaData.ABI))
	require.NoError(t, err)
	assert.Equal(t, common.Hash(MemoInteractionTopic), parsed.Events["MemoInteraction"].ID)

	parsed, err = abi.JSON(strings.NewReader(contracts.WormholeMetaData.ABI))
	require.NoError(t, err)
	assert.Equal(t, LogMessagePublishedTopic, parsed.Events["LogMessagePublished"].ID)
}
