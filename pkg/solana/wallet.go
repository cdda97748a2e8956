package solana

import (
	"fmt"

	solana "github.com/gagliardetto/solana-go"

	"github.com/propellerswap/propeller/pkg/config"
	"github.com/propellerswap/propeller/pkg/keys"
)

// LoadWallet returns the ledger signing key described by cfg: a base58
// private key or a key derived from a mnemonic.
func LoadWallet(cfg config.KeyConfig) (*solana.PrivateKey, error) {
	if cfg.PrivateKey != "" {
		key, err := solana.PrivateKeyFromBase58(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ledger private key: %w", err)
		}
		return &key, nil
	}
	derived, err := keys.DeriveEd25519(cfg)
	if err != nil {
		return nil, err
	}
	key := solana.PrivateKey(derived)
	return &key, nil
}
