package ethereum

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/propellerswap/propeller/pkg/ethereum/contracts"
)

// LogMessagePublishedTopic is the event id of the bridge's message event.
var LogMessagePublishedTopic = common.HexToHash("0x6eb224fb001ed210e379b335e35efe88672a8ce935d981a6896b27ffdf52a3b2")

// ParseSequenceFromReceipt returns the sequence of the first message the
// bridge at bridge published in receipt.
func ParseSequenceFromReceipt(receipt *types.Receipt, bridge common.Address) (uint64, error) {
	filterer, err := contracts.NewWormholeFilterer(bridge, nil)
	if err != nil {
		return 0, err
	}
	for _, l := range receipt.Logs {
		if l == nil || l.Address != bridge || len(l.Topics) == 0 || l.Topics[0] != LogMessagePublishedTopic {
			continue
		}
		ev, err := filterer.ParseLogMessagePublished(*l)
		if err != nil {
			return 0, fmt.Errorf("failed to decode bridge message: %w", err)
		}
		return ev.Sequence, nil
	}
	return 0, ErrSequenceNotFound
}
