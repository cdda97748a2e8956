// Package keys derives the swap wallets' signing keys from configuration:
// either a raw private key or a BIP-39 mnemonic with a derivation path.
package keys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

var (
	// ErrInvalidMnemonic is returned for phrases that fail word list or checksum validation.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")

	// ErrInvalidPath is returned for malformed or unsupported derivation paths.
	ErrInvalidPath = errors.New("invalid derivation path")
)

// MnemonicToSeed validates a mnemonic and stretches it with an optional
// passphrase into the 64 byte BIP-39 seed.
func MnemonicToSeed(mnemonic, passphrase string) ([]byte, error) {
	phrase := strings.Join(strings.Fields(mnemonic), " ")
	seed, err := bip39.NewSeedWithErrorChecking(phrase, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	return seed, nil
}
