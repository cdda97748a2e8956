package ethereum

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/internal/metrics"
	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/memo"
)

// MemoInteractionTopic is the event id of MemoInteraction(bytes16 indexed memo).
var MemoInteractionTopic = [32]byte{
	0x2c, 0x8d, 0x0a, 0x95, 0x41, 0x78, 0xc2, 0x3a, 0xf3, 0x5e, 0xf7, 0xfa, 0x8e, 0x18, 0x5a, 0x40,
	0x10, 0xdc, 0x44, 0xf2, 0xd5, 0xf1, 0x5a, 0x4e, 0xee, 0x2f, 0xf6, 0x42, 0x17, 0xb2, 0xbe, 0xd7,
}

// watchMemo polls routing contract logs from fromBlock until the subscription
// fires or is released (uses polling for HTTP RPC compatibility).
func (c *Client) watchMemo(sub *chain.Subscription, fromBlock uint64) {
	ctx := sub.Context()
	logger := c.logger.With(zap.String("memo", sub.Memo.Hex()), zap.Uint64("subscription", sub.ID))
	logger.Debug("Starting memo poller", zap.Uint64("from_block", fromBlock))

	next := fromBlock
	ticker := time.NewTicker(c.config.PollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Memo poller stopped")
			return
		case <-ticker.C:
			latest, err := c.GetLatestBlockNumber(ctx)
			if err != nil {
				logger.Warn("Failed to get latest block", zap.Error(err))
				continue
			}
			if latest < next {
				continue
			}

			txHash, found, err := c.findMemo(ctx, sub.Memo, next, latest)
			if err != nil {
				logger.Warn("Failed to filter memo events", zap.Error(err))
				continue
			}
			if found {
				metrics.EventsDetected.WithLabelValues(sub.Chain.String(), "true").Inc()
				sub.Fire(txHash)
				return
			}
			next = latest + 1
		}
	}
}

// findMemo scans [from, to] for a MemoInteraction carrying m.
func (c *Client) findMemo(ctx context.Context, m memo.Memo, from, to uint64) (string, bool, error) {
	opts := &bind.FilterOpts{
		Start:   from,
		End:     &to,
		Context: ctx,
	}
	iter, err := c.routing.FilterMemoInteraction(opts, [][16]byte{m})
	if err != nil {
		return "", false, err
	}
	defer iter.Close()

	for iter.Next() {
		raw := iter.Event.Raw
		if raw.Removed || len(raw.Topics) < 2 || raw.Topics[0] != MemoInteractionTopic {
			continue
		}
		if !m.MatchesPadded(raw.Topics[1].Bytes()) {
			continue
		}
		return raw.TxHash.Hex(), true, nil
	}
	return "", false, iter.Error()
}
