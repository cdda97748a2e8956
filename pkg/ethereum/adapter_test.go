package ethereum

import (
	"context"
	"math/big"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/ethereum/contracts"
	"github.com/propellerswap/propeller/pkg/memo"
)

var (
	testToken   = asset.ChainAsset{Chain: asset.ChainBSC, Project: "usdc", Address: "0x0000000000000000000000000000000000000ccc", Decimals: 6}
	testSpender = "0x0000000000000000000000000000000000000aaa"
)

func TestAdapter_ApproveIfNeeded_SufficientAllowance(t *testing.T) {
	tests := []struct {
		name      string
		allowance int64
	}{
		{"exact", 500},
		{"above", 10_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{chainID: 56, gasPrice: 1, allowance: big.NewInt(tt.allowance)}
			c := newTestClient(t, backend, true)
			a := NewAdapter(asset.ChainBSC, c, zap.NewNop())
			owner, err := a.Owner()
			require.NoError(t, err)

			txID, err := a.ApproveIfNeeded(context.Background(), owner, testSpender, testToken, big.NewInt(500))
			require.NoError(t, err)
			assert.Empty(t, txID)
			assert.Empty(t, backend.sentTransactions())
			assert.Zero(t, backend.receiptCalls)

			require.Len(t, backend.calls, 1)
			assert.Equal(t, common.HexToAddress(testToken.Address), *backend.calls[0].To)
		})
	}
}

func TestAdapter_ApproveIfNeeded_ShortAllowance(t *testing.T) {
	backend := &fakeBackend{chainID: 56, gasPrice: 1, nonce: 3, allowance: big.NewInt(100)}
	c := newTestClient(t, backend, true)
	a := NewAdapter(asset.ChainBSC, c, zap.NewNop())
	owner, err := a.Owner()
	require.NoError(t, err)

	txID, err := a.ApproveIfNeeded(context.Background(), owner, testSpender, testToken, big.NewInt(500))
	require.NoError(t, err)

	sent := backend.sentTransactions()
	require.Len(t, sent, 1)
	tx := sent[0]
	assert.Equal(t, tx.Hash().Hex(), txID)
	assert.Equal(t, common.HexToAddress(testToken.Address), *tx.To())
	assert.Equal(t, uint64(3), tx.Nonce())
	assert.GreaterOrEqual(t, backend.receiptCalls, 1)

	parsed, err := abi.JSON(strings.NewReader(contracts.ERC20MetaData.ABI))
	require.NoError(t, err)
	method := parsed.Methods["approve"]
	assert.Equal(t, method.ID, tx.Data()[:4])
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSpender), args[0])
	assert.Equal(t, big.NewInt(500), args[1])
}

func TestAdapter_ApproveIfNeeded_Reverted(t *testing.T) {
	backend := &fakeBackend{chainID: 56, gasPrice: 1, reverted: true}
	c := newTestClient(t, backend, true)
	a := NewAdapter(asset.ChainBSC, c, zap.NewNop())
	owner, err := a.Owner()
	require.NoError(t, err)

	txID, err := a.ApproveIfNeeded(context.Background(), owner, testSpender, testToken, big.NewInt(1))
	require.ErrorIs(t, err, chain.ErrTransactionFailed)
	assert.Empty(t, txID)
	assert.Len(t, backend.sentTransactions(), 1)
}

func memoLog(topic0, topic1 common.Hash, tx string, removed bool) types.Log {
	return types.Log{
		Address: common.HexToAddress("0x0000000000000000000000000000000000000aaa"),
		Topics:  []common.Hash{topic0, topic1},
		TxHash:  common.HexToHash(tx),
		Removed: removed,
	}
}

func memoTopics(m memo.Memo) (exact, paddingOff, memoOff common.Hash) {
	exact = common.BytesToHash(m.Padded(memo.EVMTopicLength))
	paddingOff = exact
	paddingOff[31] = 0x01
	memoOff = exact
	memoOff[15] ^= 0x01
	return exact, paddingOff, memoOff
}

func TestClient_FindMemoMatchesExactTopicOnly(t *testing.T) {
	m := memo.Memo{0xde, 0xad, 0xbe, 0xef, 15: 0x42}
	exact, paddingOff, memoOff := memoTopics(m)
	topic0 := common.Hash(MemoInteractionTopic)

	backend := &fakeBackend{chainID: 56, head: 100}
	c := newTestClient(t, backend, true)

	backend.logs = []types.Log{
		memoLog(topic0, exact, "0x01", true),
		memoLog(topic0, paddingOff, "0x02", false),
		memoLog(topic0, memoOff, "0x03", false),
	}
	txHash, found, err := c.findMemo(context.Background(), m, 90, 100)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, txHash)

	backend.logs = append(backend.logs, memoLog(topic0, exact, "0x04", false))
	txHash, found, err = c.findMemo(context.Background(), m, 90, 100)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, common.HexToHash("0x04").Hex(), txHash)

	require.NotEmpty(t, backend.queries)
	q := backend.queries[len(backend.queries)-1]
	assert.Equal(t, big.NewInt(90), q.FromBlock)
	assert.Equal(t, big.NewInt(100), q.ToBlock)
	require.Len(t, q.Topics, 2)
	assert.Equal(t, []common.Hash{topic0}, q.Topics[0])
	assert.Equal(t, []common.Hash{exact}, q.Topics[1])
}

func TestAdapter_WatchForMemoFiresOnce(t *testing.T) {
	m := memo.Memo{0x01, 0x02, 15: 0x03}
	exact, paddingOff, _ := memoTopics(m)
	topic0 := common.Hash(MemoInteractionTopic)

	backend := &fakeBackend{chainID: 56, head: 100, logs: []types.Log{
		memoLog(topic0, paddingOff, "0x0a", false),
		memoLog(topic0, exact, "0x0b", true),
		memoLog(topic0, exact, "0x0c", false),
		memoLog(topic0, exact, "0x0d", false),
	}}
	c := newTestClient(t, backend, true)
	c.config.PollingInterval = 10 * time.Millisecond
	a := NewAdapter(asset.ChainBSC, c, zap.NewNop())
	t.Cleanup(a.Close)

	var fires atomic.Int32
	fired := make(chan string, 4)
	sub, err := a.WatchForMemo(context.Background(), m, func(txID string) {
		fires.Add(1)
		fired <- txID
	})
	require.NoError(t, err)

	select {
	case txID := <-fired:
		assert.Equal(t, common.HexToHash("0x0c").Hex(), txID)
	case <-time.After(2 * time.Second):
		t.Fatal("memo poller did not fire")
	}

	assert.Eventually(t, func() bool { return a.ActiveSubscriptions() == 0 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fires.Load())
	assert.True(t, sub.Fired())
}

func newConfirmingAdapter(t *testing.T, backend *fakeBackend, confirmations uint64) *Adapter {
	t.Helper()
	cfg := testChainConfig()
	cfg.Confirmations = confirmations
	cfg.PollingInterval = 5 * time.Millisecond
	w, err := NewWalletFromHex(testKey)
	require.NoError(t, err)
	c, err := NewClient(cfg, backend, w, zap.NewNop())
	require.NoError(t, err)
	return NewAdapter(asset.ChainBSC, c, zap.NewNop())
}

func TestAdapter_ApproveIfNeeded_WaitsForConfirmations(t *testing.T) {
	backend := &fakeBackend{chainID: 56, gasPrice: 1, head: 50, headStep: 1}
	a := newConfirmingAdapter(t, backend, 3)
	owner, err := a.Owner()
	require.NoError(t, err)

	txID, err := a.ApproveIfNeeded(context.Background(), owner, testSpender, testToken, big.NewInt(500))
	require.NoError(t, err)
	assert.NotEmpty(t, txID)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.GreaterOrEqual(t, backend.head, int64(52))
}

func TestAdapter_ApproveIfNeeded_ConfirmationsRespectContext(t *testing.T) {
	backend := &fakeBackend{chainID: 56, gasPrice: 1, head: 50}
	a := newConfirmingAdapter(t, backend, 3)
	owner, err := a.Owner()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = a.ApproveIfNeeded(ctx, owner, testSpender, testToken, big.NewInt(500))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, backend.sentTransactions(), 1)
}
