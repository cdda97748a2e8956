package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/config"
	"github.com/propellerswap/propeller/pkg/ethereum/contracts"
)

// Client talks to one EVM chain on behalf of the shared wallet
type Client struct {
	config  *config.EVMChainConfig
	backend Backend
	wallet  *Wallet
	logger  *zap.Logger

	routingAddress common.Address
	routing        *contracts.Routing
	bridgeAddress  common.Address
	wormhole       *contracts.Wormhole

	verifyMu sync.Mutex
	verified bool
}

// Dial connects to the chain's RPC endpoint and creates a client. wallet may be
// nil, in which case read operations work and signing fails.
func Dial(cfg *config.EVMChainConfig, wallet *Wallet, logger *zap.Logger) (*Client, error) {
	backend, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to EVM RPC: %w", err)
	}
	c, err := NewClient(cfg, backend, wallet, logger)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return c, nil
}

// NewClient creates a client over an existing backend
func NewClient(cfg *config.EVMChainConfig, backend Backend, wallet *Wallet, logger *zap.Logger) (*Client, error) {
	routingAddress, err := parseAddress(cfg.RoutingContract)
	if err != nil {
		return nil, fmt.Errorf("routing contract: %w", err)
	}
	routing, err := contracts.NewRouting(routingAddress, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to load routing contract: %w", err)
	}

	c := &Client{
		config:         cfg,
		backend:        backend,
		wallet:         wallet,
		logger:         logger,
		routingAddress: routingAddress,
		routing:        routing,
	}

	if cfg.WormholeBridge != "" {
		c.bridgeAddress, err = parseAddress(cfg.WormholeBridge)
		if err != nil {
			return nil, fmt.Errorf("wormhole bridge: %w", err)
		}
		c.wormhole, err = contracts.NewWormhole(c.bridgeAddress, backend)
		if err != nil {
			return nil, fmt.Errorf("failed to load wormhole contract: %w", err)
		}
	}

	fields := []zap.Field{
		zap.Int64("chain_id", cfg.ChainID),
		zap.Uint16("wormhole_chain_id", cfg.WormholeChainID),
		zap.String("routing_contract", routingAddress.Hex()),
	}
	if wallet != nil {
		fields = append(fields, zap.String("wallet_address", wallet.Address().Hex()))
	}
	logger.Info("Connected to EVM chain", fields...)

	return c, nil
}

// Close closes the RPC client
func (c *Client) Close() {
	if c.backend != nil {
		c.backend.Close()
	}
}

// verifyChain checks that the RPC serves the configured chain. A successful
// check is remembered.
func (c *Client) verifyChain(ctx context.Context) error {
	c.verifyMu.Lock()
	defer c.verifyMu.Unlock()
	if c.verified {
		return nil
	}

	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain id: %w", err)
	}
	if id.Int64() != c.config.ChainID {
		return fmt.Errorf("%w: rpc reports %s, configured %d", ErrChainMismatch, id, c.config.ChainID)
	}
	c.verified = true
	return nil
}

// ensureNetwork switches the shared wallet to this chain.
func (c *Client) ensureNetwork(ctx context.Context) error {
	if c.wallet == nil {
		return chain.ErrWalletNotConnected
	}
	if err := c.verifyChain(ctx); err != nil {
		return err
	}
	if c.wallet.SwitchNetwork(big.NewInt(c.config.ChainID)) {
		c.logger.Info("Switched wallet network", zap.Int64("chain_id", c.config.ChainID))
	}
	return nil
}

// GetTransactor returns a transaction signer for this chain. Overrides take
// precedence over configured gas settings.
func (c *Client) GetTransactor(ctx context.Context, overrides *chain.Overrides) (*bind.TransactOpts, error) {
	if err := c.ensureNetwork(ctx); err != nil {
		return nil, err
	}

	auth, err := c.wallet.Transactor(big.NewInt(c.config.ChainID))
	if err != nil {
		return nil, err
	}
	auth.Context = ctx

	nonce, err := c.backend.PendingNonceAt(ctx, c.wallet.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	auth.Nonce = new(big.Int).SetUint64(nonce)
	auth.GasLimit = c.config.GasLimit

	if overrides != nil && overrides.GasLimit > 0 {
		auth.GasLimit = overrides.GasLimit
	}
	if overrides != nil && overrides.GasPrice != nil {
		auth.GasPrice = new(big.Int).Set(overrides.GasPrice)
		return auth, nil
	}

	// Set gas price if configured
	if c.config.MaxGasPrice != "" {
		maxGasPrice, ok := new(big.Int).SetString(c.config.MaxGasPrice, 10)
		if !ok {
			return nil, fmt.Errorf("invalid max gas price %q", c.config.MaxGasPrice)
		}

		gasPrice, err := c.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}

		if gasPrice.Cmp(maxGasPrice) > 0 {
			c.logger.Warn("Suggested gas price exceeds maximum",
				zap.String("suggested", gasPrice.String()),
				zap.String("max", maxGasPrice.String()))
			auth.GasPrice = maxGasPrice
		} else {
			auth.GasPrice = gasPrice
		}
	}

	return auth, nil
}

// GetLatestBlockNumber gets the latest block number
func (c *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	header, err := c.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// waitMined waits for tx and fails when it reverted.
func (c *Client) waitMined(ctx context.Context, tx *types.Transaction, kind string) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for %s transaction %s: %w", kind, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s transaction %s reverted", chain.ErrTransactionFailed, kind, tx.Hash().Hex())
	}
	if err := c.waitConfirmations(ctx, receipt); err != nil {
		return receipt, fmt.Errorf("failed waiting for %s transaction %s confirmations: %w", kind, tx.Hash().Hex(), err)
	}
	return receipt, nil
}

// waitConfirmations blocks until the receipt's block has the configured depth.
// A depth of one is satisfied by the receipt itself.
func (c *Client) waitConfirmations(ctx context.Context, receipt *types.Receipt) error {
	if c.config.Confirmations <= 1 || receipt.BlockNumber == nil {
		return nil
	}
	target := receipt.BlockNumber.Uint64() + c.config.Confirmations - 1

	ticker := time.NewTicker(c.config.PollingInterval)
	defer ticker.Stop()
	for {
		latest, err := c.GetLatestBlockNumber(ctx)
		if err != nil {
			return err
		}
		if latest >= target {
			return nil
		}
		c.logger.Debug("Waiting for confirmations",
			zap.Uint64("latest", latest),
			zap.Uint64("target", target))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
