package ethereum

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet is one secp256k1 key shared by every EVM chain. It signs for a
// single network at a time and must be switched before signing elsewhere.
type Wallet struct {
	key     *ecdsa.PrivateKey
	address common.Address

	mu      sync.Mutex
	network *big.Int
}

// NewWallet wraps key.
func NewWallet(key *ecdsa.PrivateKey) *Wallet {
	return &Wallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// NewWalletFromHex loads a hex encoded private key, with or without 0x prefix.
func NewWalletFromHex(hexKey string) (*Wallet, error) {
	if len(hexKey) > 1 && hexKey[:2] == "0x" {
		hexKey = hexKey[2:]
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}
	return NewWallet(key), nil
}

// Address returns the wallet address.
func (w *Wallet) Address() common.Address {
	return w.address
}

// Network returns the chain id the wallet currently signs for, or nil.
func (w *Wallet) Network() *big.Int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.network == nil {
		return nil
	}
	return new(big.Int).Set(w.network)
}

// SwitchNetwork points the wallet at chainID. It reports whether the network changed.
func (w *Wallet) SwitchNetwork(chainID *big.Int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.network != nil && w.network.Cmp(chainID) == 0 {
		return false
	}
	w.network = new(big.Int).Set(chainID)
	return true
}

// Transactor returns signing options for chainID, which must be the current network.
func (w *Wallet) Transactor(chainID *big.Int) (*bind.TransactOpts, error) {
	current := w.Network()
	if current == nil || current.Cmp(chainID) != 0 {
		return nil, fmt.Errorf("%w: want %s, wallet on %v", ErrWrongNetwork, chainID, current)
	}
	auth, err := bind.NewKeyedTransactorWithChainID(w.key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	return auth, nil
}
