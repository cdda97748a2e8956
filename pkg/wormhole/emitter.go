package wormhole

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// EmitterAddressEVM returns the hex emitter id of an EVM token bridge: the
// 20-byte address left-padded to 32 bytes, without 0x prefix.
func EmitterAddressEVM(tokenBridge string) (string, error) {
	if !common.IsHexAddress(tokenBridge) {
		return "", fmt.Errorf("invalid token bridge address %q", tokenBridge)
	}
	padded := common.LeftPadBytes(common.HexToAddress(tokenBridge).Bytes(), 32)
	return hex.EncodeToString(padded), nil
}
