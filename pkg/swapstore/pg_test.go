package swapstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/pgutil"
	mghelper "github.com/propellerswap/propeller/pkg/pgutil/migrations"
	"github.com/propellerswap/propeller/pkg/swap"
)

func setupStore(t *testing.T) (context.Context, *pgStore) {
	t.Helper()
	pgutil.RequireDocker(t)

	ctx := context.Background()
	db, cleanup := pgutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	require.NoError(t, mghelper.CreateSchema(ctx, db, &SwapDao{}))
	return ctx, NewStore(db)
}

func newSnapshot(id string, state swap.State, created time.Time) swap.Snapshot {
	return swap.Snapshot{
		ID:          id,
		Route:       "evm-to-ledger",
		State:       state,
		Memo:        "000102030405060708090a0b0c0d0e0f",
		SourceChain: asset.ChainBSC,
		SourceToken: "usdc",
		TargetChain: asset.ChainSolana,
		TargetToken: "usdt",
		InputAmount: "12.5",
		MaxFee:      "0.1",
		CreatedAt:   created.UTC(),
		UpdatedAt:   created.UTC(),
	}
}

func TestRecordSwap_InsertAndGet(t *testing.T) {
	ctx, store := setupStore(t)
	now := time.Now().Truncate(time.Millisecond)

	snap := newSnapshot("swap-1", swap.StateCompleted, now)
	seq := uint64(42)
	snap.Sequence = &seq
	snap.InputAtomic = "12500000"
	snap.Records = swap.TxRecords{
		{Chain: asset.ChainBSC, TxID: "0xsource"},
		{Chain: asset.ChainSolana, TxID: "sig-target"},
	}
	finished := now.Add(time.Minute).UTC()
	snap.FinishedAt = &finished

	require.NoError(t, store.RecordSwap(ctx, snap))

	got, err := store.GetSwap(ctx, "swap-1")
	require.NoError(t, err)
	assert.Equal(t, swap.StateCompleted, got.State)
	assert.Equal(t, asset.ChainSolana, got.TargetChain)
	assert.Equal(t, "12500000", got.InputAtomic)
	require.NotNil(t, got.Sequence)
	assert.Equal(t, uint64(42), *got.Sequence)
	assert.Equal(t, snap.Records, got.Records)
	require.NotNil(t, got.FinishedAt)
	assert.True(t, finished.Equal(*got.FinishedAt))
	assert.Empty(t, got.ConversionTxID)
}

func TestRecordSwap_UpsertUpdatesState(t *testing.T) {
	ctx, store := setupStore(t)
	now := time.Now().Truncate(time.Millisecond)

	require.NoError(t, store.RecordSwap(ctx, newSnapshot("swap-2", swap.StateAwaitingTargetEvent, now)))

	failed := newSnapshot("swap-2", swap.StateFailed, now)
	failed.FailedIn = swap.StateAwaitingTargetEvent
	failed.FailureReason = "target_event_timeout"
	failed.Error = "timed out"
	require.NoError(t, store.RecordSwap(ctx, failed))

	got, err := store.GetSwap(ctx, "swap-2")
	require.NoError(t, err)
	assert.Equal(t, swap.StateFailed, got.State)
	assert.Equal(t, swap.StateAwaitingTargetEvent, got.FailedIn)
	assert.Equal(t, "target_event_timeout", got.FailureReason)
	assert.Empty(t, got.Records)
}

func TestGetSwap_NotFound(t *testing.T) {
	ctx, store := setupStore(t)

	_, err := store.GetSwap(ctx, "missing")
	require.ErrorIs(t, err, ErrSwapNotFound)
}

func TestListSwaps(t *testing.T) {
	ctx, store := setupStore(t)
	base := time.Now().Truncate(time.Millisecond)

	require.NoError(t, store.RecordSwap(ctx, newSnapshot("a", swap.StateCompleted, base)))
	require.NoError(t, store.RecordSwap(ctx, newSnapshot("b", swap.StateFailed, base.Add(time.Second))))
	require.NoError(t, store.RecordSwap(ctx, newSnapshot("c", swap.StateCompleted, base.Add(2*time.Second))))

	all, err := store.ListSwaps(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID, "newest first")

	completed, err := store.ListSwaps(ctx, WithState(swap.StateCompleted), WithLimit(1))
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "c", completed[0].ID)
}
