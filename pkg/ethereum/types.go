package ethereum

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrChainMismatch is returned when the RPC endpoint serves a different
	// chain than the one configured.
	ErrChainMismatch = errors.New("rpc chain id does not match configuration")

	// ErrWrongNetwork is returned when signing for a network the wallet is not
	// switched to.
	ErrWrongNetwork = errors.New("wallet is on a different network")

	// ErrSequenceNotFound is returned when a receipt carries no bridge message.
	ErrSequenceNotFound = errors.New("bridge sequence not found in receipt")
)

// Backend is the subset of an RPC client the adapter uses. *ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	Close()
}
