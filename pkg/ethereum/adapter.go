package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/internal/metrics"
	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/ethereum/contracts"
	"github.com/propellerswap/propeller/pkg/memo"
)

// Adapter exposes one EVM chain to the swap orchestrator.
type Adapter struct {
	id     asset.ChainID
	client *Client
	logger *zap.Logger

	mu   sync.Mutex
	subs map[uint64]*chain.Subscription
	wg   sync.WaitGroup
}

var _ chain.Adapter = (*Adapter)(nil)

// NewAdapter wraps client as the adapter for chain id.
func NewAdapter(id asset.ChainID, client *Client, logger *zap.Logger) *Adapter {
	return &Adapter{
		id:     id,
		client: client,
		logger: logger.With(zap.String("chain", id.String())),
		subs:   make(map[uint64]*chain.Subscription),
	}
}

func (a *Adapter) ChainID() asset.ChainID { return a.id }

func (a *Adapter) Family() asset.Family { return asset.FamilyEVM }

// Owner returns the shared wallet address.
func (a *Adapter) Owner() (string, error) {
	if a.client.wallet == nil {
		return "", chain.ErrWalletNotConnected
	}
	return a.client.wallet.Address().Hex(), nil
}

// TargetOwner is the wallet address left-padded to 32 bytes. EVM recipients
// receive every token at the same address.
func (a *Adapter) TargetOwner(_ context.Context, _ asset.ChainAsset) ([32]byte, error) {
	if a.client.wallet == nil {
		return [32]byte{}, chain.ErrWalletNotConnected
	}
	return AddressToWormhole(a.client.wallet.Address()), nil
}

func (a *Adapter) RoutingAddress() string {
	return a.client.routingAddress.Hex()
}

// GasBalance returns the wallet's native balance in wei.
func (a *Adapter) GasBalance(ctx context.Context) (*big.Int, error) {
	if a.client.wallet == nil {
		return nil, chain.ErrWalletNotConnected
	}
	bal, err := a.client.backend.BalanceAt(ctx, a.client.wallet.Address(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas balance: %w", err)
	}
	return bal, nil
}

// TokenBalance returns the wallet's balance of an ERC-20 asset.
func (a *Adapter) TokenBalance(ctx context.Context, as asset.ChainAsset) (*big.Int, error) {
	if a.client.wallet == nil {
		return nil, chain.ErrWalletNotConnected
	}
	token, err := a.token(as)
	if err != nil {
		return nil, err
	}
	bal, err := token.BalanceOf(&bind.CallOpts{Context: ctx}, a.client.wallet.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to get %s balance: %w", as, err)
	}
	return bal, nil
}

func (a *Adapter) GetAllowance(ctx context.Context, owner, spender string, as asset.ChainAsset) (*big.Int, error) {
	ownerAddr, err := parseAddress(owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	spenderAddr, err := parseAddress(spender)
	if err != nil {
		return nil, fmt.Errorf("spender: %w", err)
	}
	token, err := a.token(as)
	if err != nil {
		return nil, err
	}
	allowance, err := token.Allowance(&bind.CallOpts{Context: ctx}, ownerAddr, spenderAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s allowance: %w", as, err)
	}
	return allowance, nil
}

// ApproveIfNeeded approves exactly required when the current allowance is short.
func (a *Adapter) ApproveIfNeeded(ctx context.Context, owner, spender string, as asset.ChainAsset, required *big.Int) (string, error) {
	allowance, err := a.GetAllowance(ctx, owner, spender, as)
	if err != nil {
		return "", err
	}
	if allowance.Cmp(required) >= 0 {
		a.logger.Debug("Allowance sufficient",
			zap.String("asset", as.String()),
			zap.String("allowance", allowance.String()),
			zap.String("required", required.String()))
		return "", nil
	}

	token, err := a.token(as)
	if err != nil {
		return "", err
	}
	auth, err := a.client.GetTransactor(ctx, nil)
	if err != nil {
		return "", err
	}

	tx, err := token.Approve(auth, common.HexToAddress(spender), required)
	if err != nil {
		metrics.TransactionsSent.WithLabelValues(a.id.String(), "approve", "error").Inc()
		return "", fmt.Errorf("failed to send approval: %w", err)
	}
	metrics.ApprovalsSent.WithLabelValues(a.id.String()).Inc()
	a.logger.Info("Approval sent",
		zap.String("asset", as.String()),
		zap.String("amount", required.String()),
		zap.String("tx_hash", tx.Hash().Hex()))

	receipt, err := a.client.waitMined(ctx, tx, "approve")
	if err != nil {
		metrics.TransactionsSent.WithLabelValues(a.id.String(), "approve", "error").Inc()
		return "", err
	}
	metrics.TransactionsSent.WithLabelValues(a.id.String(), "approve", "success").Inc()
	metrics.GasUsed.WithLabelValues("approve").Observe(float64(receipt.GasUsed))

	return tx.Hash().Hex(), nil
}

// SubmitTransfer calls propellerInitiate on the routing contract and waits for
// one confirmation. The bridge sequence is read back from the receipt when a
// bridge address is configured.
func (a *Adapter) SubmitTransfer(ctx context.Context, p chain.TransferParams) (*chain.TransferResult, error) {
	if p.MaxFee == nil || !p.MaxFee.IsUint64() {
		return nil, fmt.Errorf("max fee %v does not fit in uint64", p.MaxFee)
	}
	from, err := parseAddress(p.Source.Address)
	if err != nil {
		return nil, fmt.Errorf("source token: %w", err)
	}

	auth, err := a.client.GetTransactor(ctx, p.Overrides)
	if err != nil {
		return nil, err
	}
	if fee := a.messageFee(ctx); fee != nil && fee.Sign() > 0 {
		auth.Value = fee
	}

	tx, err := a.client.routing.PropellerInitiate(auth,
		from,
		p.Amount,
		uint16(p.TargetChain),
		p.TargetOwner,
		p.GasKickstart,
		p.MaxFee.Uint64(),
		p.TargetTokenNumber,
		p.Memo,
	)
	if err != nil {
		metrics.TransactionsSent.WithLabelValues(a.id.String(), "transfer", "error").Inc()
		return nil, fmt.Errorf("failed to send transfer: %w", err)
	}
	a.logger.Info("Transfer sent",
		zap.String("memo", p.Memo.Hex()),
		zap.String("amount", p.Amount.String()),
		zap.Uint16("target_chain", uint16(p.TargetChain)),
		zap.String("tx_hash", tx.Hash().Hex()))

	receipt, err := a.client.waitMined(ctx, tx, "transfer")
	if err != nil {
		metrics.TransactionsSent.WithLabelValues(a.id.String(), "transfer", "error").Inc()
		return nil, err
	}
	metrics.TransactionsSent.WithLabelValues(a.id.String(), "transfer", "success").Inc()
	metrics.GasUsed.WithLabelValues("transfer").Observe(float64(receipt.GasUsed))

	result := &chain.TransferResult{TxID: tx.Hash().Hex()}
	if a.client.wormhole != nil {
		seq, err := ParseSequenceFromReceipt(receipt, a.client.bridgeAddress)
		if err != nil {
			a.logger.Warn("Failed to read bridge sequence", zap.String("tx_hash", result.TxID), zap.Error(err))
		} else {
			result.Sequence = &seq
			a.logger.Info("Bridge sequence", zap.Uint64("sequence", seq))
		}
	}
	return result, nil
}

// messageFee returns the bridge's publishing fee, or nil when unknown.
func (a *Adapter) messageFee(ctx context.Context) *big.Int {
	if a.client.wormhole == nil {
		return nil
	}
	fee, err := a.client.wormhole.MessageFee(&bind.CallOpts{Context: ctx})
	if err != nil {
		a.logger.Warn("Failed to read bridge message fee", zap.Error(err))
		return nil
	}
	return fee
}

// WatchForMemo starts polling routing contract events from the current block.
func (a *Adapter) WatchForMemo(ctx context.Context, m memo.Memo, onMatch func(txID string)) (*chain.Subscription, error) {
	from, err := a.client.GetLatestBlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	sub := chain.NewSubscription(ctx, a.id, m, onMatch)
	a.mu.Lock()
	a.subs[sub.ID] = sub
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.forget(sub)
		a.client.watchMemo(sub, from)
	}()

	return sub, nil
}

func (a *Adapter) Unsubscribe(sub *chain.Subscription) {
	if sub == nil {
		return
	}
	sub.Close()
	a.forget(sub)
}

func (a *Adapter) forget(sub *chain.Subscription) {
	a.mu.Lock()
	delete(a.subs, sub.ID)
	a.mu.Unlock()
}

// ActiveSubscriptions returns the number of live memo pollers.
func (a *Adapter) ActiveSubscriptions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.subs)
}

// Close stops every poller and closes the RPC client.
func (a *Adapter) Close() {
	a.mu.Lock()
	subs := make([]*chain.Subscription, 0, len(a.subs))
	for _, s := range a.subs {
		subs = append(subs, s)
	}
	a.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
	a.wg.Wait()
	a.client.Close()
}

func (a *Adapter) token(as asset.ChainAsset) (*contracts.ERC20, error) {
	if as.Chain != a.id {
		return nil, fmt.Errorf("%w: %s on %s adapter", chain.ErrUnsupportedAsset, as, a.id)
	}
	addr, err := parseAddress(as.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrUnsupportedAsset, err)
	}
	return contracts.NewERC20(addr, a.client.backend)
}
