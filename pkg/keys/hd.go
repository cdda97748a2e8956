package keys

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/anyproto/go-slip10"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
)

func parsePath(path string) (accounts.DerivationPath, error) {
	p, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	return p, nil
}

// DeriveSecp256k1 derives the BIP-32 key at path from a seed.
func DeriveSecp256k1(seed []byte, path string) (*ecdsa.PrivateKey, error) {
	p, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	for _, index := range p {
		if key, err = key.NewChildKey(index); err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", index, err)
		}
	}
	return crypto.ToECDSA(key.Key)
}

// DeriveEd25519Seed derives the SLIP-10 ed25519 private key seed at path.
// ed25519 only defines hardened children.
func DeriveEd25519Seed(seed []byte, path string) ([]byte, error) {
	p, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	for _, index := range p {
		if index < bip32.FirstHardenedChild {
			return nil, fmt.Errorf("%w: ed25519 supports hardened indexes only", ErrInvalidPath)
		}
	}
	node, err := slip10.DeriveForPath(p.String(), seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	_, priv := node.Keypair()
	return priv.Seed(), nil
}
