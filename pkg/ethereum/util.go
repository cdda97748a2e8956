package ethereum

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// AddressToWormhole left-pads an address to the bridge's 32 byte form.
func AddressToWormhole(addr common.Address) [32]byte {
	var out [32]byte
	copy(out[32-common.AddressLength:], addr.Bytes())
	return out
}

// WormholeToAddress reverses AddressToWormhole. The leading 12 bytes must be zero.
func WormholeToAddress(b [32]byte) (common.Address, error) {
	for _, v := range b[:32-common.AddressLength] {
		if v != 0 {
			return common.Address{}, fmt.Errorf("not a left-padded evm address: %x", b)
		}
	}
	return common.BytesToAddress(b[32-common.AddressLength:]), nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}
