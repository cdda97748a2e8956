// Package chain defines the capability surface every chain family exposes to
// the swap orchestrator, plus the shared plumbing around it: memo
// subscriptions and the per-chain adapter cache.
package chain

import (
	"context"
	"errors"
	"math/big"

	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/memo"
)

var (
	// ErrWalletNotConnected is returned when no signer is configured for a chain.
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrConversionOutputUnparseable is returned when a liquidity conversion
	// confirmed but its output amount could not be read from the logs.
	ErrConversionOutputUnparseable = errors.New("conversion output unparseable")

	// ErrUnsupportedAsset is returned when an adapter cannot move the given asset.
	ErrUnsupportedAsset = errors.New("unsupported asset")

	// ErrSubscriptionClosed is returned when operating on a released subscription.
	ErrSubscriptionClosed = errors.New("subscription closed")

	// ErrTransactionFailed is returned when a submitted transaction reverted.
	ErrTransactionFailed = errors.New("transaction failed")
)

// Overrides carries caller supplied fee settings for transaction submission.
type Overrides struct {
	GasLimit uint64   `json:"gasLimit,omitempty"`
	GasPrice *big.Int `json:"gasPrice,omitempty"`
}

// TransferParams is everything a routing contract needs to initiate a
// cross-chain transfer of the canonical asset.
type TransferParams struct {
	Source            asset.ChainAsset
	Amount            *big.Int
	TargetChain       asset.ChainID
	TargetOwner       [32]byte
	GasKickstart      bool
	MaxFee            *big.Int
	TargetTokenNumber uint16
	Memo              memo.Memo
	Overrides         *Overrides
}

// TransferResult is the outcome of a confirmed transfer submission.
type TransferResult struct {
	TxID string
	// Sequence is the bridge message sequence, when it could be read back.
	Sequence *uint64
}

// Adapter is the per-chain capability the orchestrator drives. Implementations
// are safe for concurrent use.
type Adapter interface {
	ChainID() asset.ChainID
	Family() asset.Family

	// Owner returns the connected wallet's address.
	Owner() (string, error)
	// TargetOwner encodes the recipient of target asset on this chain as a
	// 32 byte bridge address.
	TargetOwner(ctx context.Context, target asset.ChainAsset) ([32]byte, error)
	// RoutingAddress returns the routing contract or program that spends user funds.
	RoutingAddress() string

	GasBalance(ctx context.Context) (*big.Int, error)
	TokenBalance(ctx context.Context, a asset.ChainAsset) (*big.Int, error)

	GetAllowance(ctx context.Context, owner, spender string, a asset.ChainAsset) (*big.Int, error)
	// ApproveIfNeeded raises the spender's allowance to at least required and
	// waits for confirmation. It returns the approval transaction id, or an
	// empty string when the allowance already sufficed.
	ApproveIfNeeded(ctx context.Context, owner, spender string, a asset.ChainAsset, required *big.Int) (string, error)
	// SubmitTransfer signs, broadcasts and waits for one confirmation.
	SubmitTransfer(ctx context.Context, p TransferParams) (*TransferResult, error)

	// WatchForMemo installs a one-shot listener for routing events carrying m.
	// onMatch is called at most once with the matching transaction id, after
	// which the subscription releases itself.
	WatchForMemo(ctx context.Context, m memo.Memo, onMatch func(txID string)) (*Subscription, error)
	// Unsubscribe releases a subscription. Safe to call after it fired.
	Unsubscribe(sub *Subscription)

	Close()
}

// ConversionRequest asks a chain to turn a pooled asset into its canonical asset.
type ConversionRequest struct {
	Source asset.ChainAsset
	Amount *big.Int
	Memo   memo.Memo
}

// ConversionResult reports the confirmed conversion.
type ConversionResult struct {
	TxID   string
	Output *big.Int
}

// Converter is implemented by adapters whose chain hosts a liquidity pool in
// front of the routing program.
type Converter interface {
	Convert(ctx context.Context, req ConversionRequest) (*ConversionResult, error)
}
