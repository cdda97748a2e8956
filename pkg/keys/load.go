package keys

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/propellerswap/propeller/pkg/config"
)

// ErrNoKey is returned when a key section carries neither a private key nor a mnemonic.
var ErrNoKey = errors.New("no key configured")

// LoadSecp256k1 returns the EVM signing key described by cfg.
func LoadSecp256k1(cfg config.KeyConfig) (*ecdsa.PrivateKey, error) {
	switch {
	case cfg.PrivateKey != "":
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		return key, nil
	case cfg.Mnemonic != "":
		seed, err := MnemonicToSeed(cfg.Mnemonic, cfg.Passphrase)
		if err != nil {
			return nil, err
		}
		return DeriveSecp256k1(seed, cfg.HDPath)
	default:
		return nil, ErrNoKey
	}
}

// DeriveEd25519 returns the ledger signing key derived from cfg's mnemonic.
// Raw ledger private keys are base58 and decoded by the ledger package.
func DeriveEd25519(cfg config.KeyConfig) (ed25519.PrivateKey, error) {
	if cfg.Mnemonic == "" {
		return nil, ErrNoKey
	}
	seed, err := MnemonicToSeed(cfg.Mnemonic, cfg.Passphrase)
	if err != nil {
		return nil, err
	}
	keySeed, err := DeriveEd25519Seed(seed, cfg.HDPath)
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(keySeed), nil
}
