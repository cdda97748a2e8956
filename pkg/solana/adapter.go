package solana

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/internal/metrics"
	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/config"
	"github.com/propellerswap/propeller/pkg/memo"
)

// AssetSource resolves the ledger chain's canonical and pooled assets.
type AssetSource interface {
	Canonical(chainID asset.ChainID) (asset.ChainAsset, error)
	Pooled(chainID asset.ChainID) []asset.ChainAsset
}

// Adapter exposes the ledger chain's routing program to the swap orchestrator.
type Adapter struct {
	id         asset.ChainID
	client     *Client
	programs   *Programs
	assets     AssetSource
	dial       LogDialer
	markers    []string
	computeCU  uint32
	addMaxFee  uint64
	retryDelay time.Duration
	logger     *zap.Logger

	mu   sync.Mutex
	subs map[uint64]*chain.Subscription
	wg   sync.WaitGroup
}

var (
	_ chain.Adapter   = (*Adapter)(nil)
	_ chain.Converter = (*Adapter)(nil)
)

// NewAdapter creates the ledger adapter.
func NewAdapter(
	id asset.ChainID,
	cfg *config.SolanaConfig,
	client *Client,
	programs *Programs,
	assets AssetSource,
	dial LogDialer,
	logger *zap.Logger,
) *Adapter {
	retry := cfg.PollingInterval
	if retry <= 0 {
		retry = time.Second
	}
	return &Adapter{
		id:         id,
		client:     client,
		programs:   programs,
		assets:     assets,
		dial:       dial,
		markers:    cfg.FinalLogMarkers,
		computeCU:  cfg.ComputeUnitLimit,
		addMaxFee:  cfg.AddMaxFee,
		retryDelay: retry,
		logger:     logger.With(zap.String("chain", id.String())),
		subs:       make(map[uint64]*chain.Subscription),
	}
}

func (a *Adapter) ChainID() asset.ChainID { return a.id }

func (a *Adapter) Family() asset.Family { return asset.FamilyLedger }

func (a *Adapter) Owner() (string, error) {
	pk, err := a.client.PublicKey()
	if err != nil {
		return "", err
	}
	return pk.String(), nil
}

// TargetOwner is the wallet's associated token account for the target mint;
// the routing program pays out to token accounts, not wallets.
func (a *Adapter) TargetOwner(_ context.Context, target asset.ChainAsset) ([32]byte, error) {
	wallet, err := a.client.PublicKey()
	if err != nil {
		return [32]byte{}, err
	}
	mint, err := a.mint(target)
	if err != nil {
		return [32]byte{}, err
	}
	ata, err := AssociatedTokenAccount(wallet, mint)
	if err != nil {
		return [32]byte{}, err
	}
	return ata, nil
}

func (a *Adapter) RoutingAddress() string {
	return a.programs.Routing.String()
}

func (a *Adapter) GasBalance(ctx context.Context) (*big.Int, error) {
	wallet, err := a.client.PublicKey()
	if err != nil {
		return nil, err
	}
	lamports, err := a.client.Lamports(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(lamports), nil
}

// TokenBalance reads the wallet's associated token account; a missing account
// holds nothing.
func (a *Adapter) TokenBalance(ctx context.Context, as asset.ChainAsset) (*big.Int, error) {
	wallet, err := a.client.PublicKey()
	if err != nil {
		return nil, err
	}
	acc, err := a.tokenAccount(ctx, wallet, as)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return new(big.Int), nil
	}
	return new(big.Int).SetUint64(acc.Amount), nil
}

// GetAllowance returns the amount of owner's token account delegated to spender.
func (a *Adapter) GetAllowance(ctx context.Context, owner, spender string, as asset.ChainAsset) (*big.Int, error) {
	ownerKey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	spenderKey, err := solana.PublicKeyFromBase58(spender)
	if err != nil {
		return nil, fmt.Errorf("spender: %w", err)
	}
	acc, err := a.tokenAccount(ctx, ownerKey, as)
	if err != nil {
		return nil, err
	}
	if acc == nil || acc.Delegate == nil || !acc.Delegate.Equals(spenderKey) {
		return new(big.Int), nil
	}
	return new(big.Int).SetUint64(acc.DelegatedAmount), nil
}

// ApproveIfNeeded does nothing: the wallet signs routing transfers as the
// token owner, so no delegation is required.
func (a *Adapter) ApproveIfNeeded(context.Context, string, string, asset.ChainAsset, *big.Int) (string, error) {
	return "", nil
}

// SubmitTransfer sends propeller_transfer_native_with_payload for the
// canonical asset and reads the bridge sequence back from the logs.
func (a *Adapter) SubmitTransfer(ctx context.Context, p chain.TransferParams) (*chain.TransferResult, error) {
	if !p.Source.Canonical {
		return nil, fmt.Errorf("%w: %s is not the canonical asset", chain.ErrUnsupportedAsset, p.Source)
	}
	amount, err := toUint64("amount", p.Amount)
	if err != nil {
		return nil, err
	}
	maxFee, err := toUint64("max fee", p.MaxFee)
	if err != nil {
		return nil, err
	}
	wallet, err := a.client.PublicKey()
	if err != nil {
		return nil, err
	}
	mint, err := a.mint(p.Source)
	if err != nil {
		return nil, err
	}
	userATA, err := AssociatedTokenAccount(wallet, mint)
	if err != nil {
		return nil, err
	}
	bridge, err := DeriveBridgeAccounts(a.programs.WormholeBridge, a.programs.TokenBridge, mint)
	if err != nil {
		return nil, err
	}
	message, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to create message account: %w", err)
	}

	transfer, err := NewTransferInstruction(a.programs.Routing, &TransferAccounts{
		Propeller:      a.programs.RoutingState,
		Payer:          wallet,
		Wormhole:       a.programs.WormholeBridge,
		UserSwimUSDATA: userATA,
		SwimUSDMint:    mint,
		TokenBridge:    a.programs.TokenBridge,
		Message:        message.PublicKey(),
		Bridge:         bridge,
	}, TransferArgs{
		Amount:        amount,
		TargetChain:   uint16(p.TargetChain),
		Owner:         p.TargetOwner,
		GasKickstart:  p.GasKickstart,
		MaxFee:        maxFee,
		TargetTokenID: p.TargetTokenNumber,
		Memo:          p.Memo,
	})
	if err != nil {
		return nil, err
	}

	instructions := []solana.Instruction{
		NewComputeLimitInstruction(a.computeCU),
		transfer,
		NewMemoInstruction(p.Memo),
	}
	sig, err := a.client.Send(ctx, "transfer", instructions, message)
	if err != nil {
		metrics.TransactionsSent.WithLabelValues(a.id.String(), "transfer", "error").Inc()
		return nil, err
	}
	metrics.TransactionsSent.WithLabelValues(a.id.String(), "transfer", "success").Inc()

	result := &chain.TransferResult{TxID: sig.String()}
	logs, err := a.client.TransactionLogs(ctx, sig)
	if err == nil {
		var seq uint64
		if seq, err = ParseSequence(logs); err == nil {
			result.Sequence = &seq
			a.logger.Info("Bridge sequence", zap.Uint64("sequence", seq))
		}
	}
	if err != nil {
		a.logger.Warn("Failed to read bridge sequence", zap.String("signature", result.TxID), zap.Error(err))
	}
	return result, nil
}

// Convert adds a pooled asset to the two-asset pool and returns the canonical
// amount minted in exchange. An ephemeral keypair holds the delegation only
// for the duration of the transaction.
func (a *Adapter) Convert(ctx context.Context, req chain.ConversionRequest) (*chain.ConversionResult, error) {
	if !a.programs.PoolConfigured() {
		return nil, ErrPoolNotConfigured
	}
	if req.Source.PoolIndex == nil || *req.Source.PoolIndex < 0 || *req.Source.PoolIndex > 1 {
		return nil, fmt.Errorf("%w: %s is not a pool asset", chain.ErrUnsupportedAsset, req.Source)
	}
	amount, err := toUint64("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	wallet, err := a.client.PublicKey()
	if err != nil {
		return nil, err
	}

	pooled := a.assets.Pooled(a.id)
	if len(pooled) != 2 {
		return nil, fmt.Errorf("%w: expected 2 pool assets, catalog has %d", ErrPoolNotConfigured, len(pooled))
	}
	var userTokens [2]solana.PublicKey
	for _, pa := range pooled {
		if pa.PoolIndex == nil || *pa.PoolIndex < 0 || *pa.PoolIndex > 1 {
			return nil, fmt.Errorf("%w: %s has pool index out of range", ErrPoolNotConfigured, pa)
		}
		mint, err := a.mint(pa)
		if err != nil {
			return nil, err
		}
		if userTokens[*pa.PoolIndex], err = AssociatedTokenAccount(wallet, mint); err != nil {
			return nil, err
		}
	}
	canonical, err := a.assets.Canonical(a.id)
	if err != nil {
		return nil, err
	}
	lpMint, err := a.mint(canonical)
	if err != nil {
		return nil, err
	}
	userLP, err := AssociatedTokenAccount(wallet, lpMint)
	if err != nil {
		return nil, err
	}

	authority, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer authority: %w", err)
	}

	var amounts [2]uint64
	amounts[*req.Source.PoolIndex] = amount
	source := userTokens[*req.Source.PoolIndex]

	add, err := NewAddInstruction(a.programs.Routing, &AddAccounts{
		Propeller:         a.programs.RoutingState,
		PoolTokens:        a.programs.PoolTokens,
		LPMint:            lpMint,
		GovernanceFee:     a.programs.GovernanceFee,
		TransferAuthority: authority.PublicKey(),
		UserTokens:        userTokens,
		UserLPToken:       userLP,
		TwoPool:           a.programs.TwoPool,
	}, AddArgs{InputAmounts: amounts, MaxFee: a.addMaxFee})
	if err != nil {
		return nil, err
	}

	a.logger.Info("Adding liquidity",
		zap.String("asset", req.Source.String()),
		zap.Uint64("amount", amount),
		zap.String("memo", req.Memo.Hex()))

	instructions := []solana.Instruction{
		NewApproveInstruction(source, authority.PublicKey(), wallet, amount),
		add,
		NewRevokeInstruction(source, wallet),
		NewMemoInstruction(req.Memo),
	}
	sig, err := a.client.Send(ctx, "add", instructions, authority)
	if err != nil {
		metrics.TransactionsSent.WithLabelValues(a.id.String(), "add", "error").Inc()
		return nil, err
	}
	metrics.TransactionsSent.WithLabelValues(a.id.String(), "add", "success").Inc()

	logs, err := a.client.TransactionLogs(ctx, sig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrConversionOutputUnparseable, err)
	}
	output, err := ParseAddOutput(logs)
	if err != nil {
		return nil, fmt.Errorf("add transaction %s: %w", sig, err)
	}
	out, _ := new(big.Float).SetInt(output).Float64()
	metrics.ConversionOutput.WithLabelValues(a.id.String()).Observe(out)

	return &chain.ConversionResult{TxID: sig.String(), Output: output}, nil
}

// WatchForMemo subscribes to routing program logs before returning so no
// notification after the call is missed.
func (a *Adapter) WatchForMemo(ctx context.Context, m memo.Memo, onMatch func(txID string)) (*chain.Subscription, error) {
	stream, err := a.dial(ctx, a.programs.Routing)
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
		a.watchMemo(sub, stream)
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

// ActiveSubscriptions returns the number of live log watchers.
func (a *Adapter) ActiveSubscriptions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.subs)
}

// Close stops every watcher and closes the RPC client.
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

func (a *Adapter) mint(as asset.ChainAsset) (solana.PublicKey, error) {
	if as.Chain != a.id {
		return solana.PublicKey{}, fmt.Errorf("%w: %s on %s adapter", chain.ErrUnsupportedAsset, as, a.id)
	}
	mint, err := solana.PublicKeyFromBase58(as.Address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s mint: %v", chain.ErrUnsupportedAsset, as, err)
	}
	return mint, nil
}

func (a *Adapter) tokenAccount(ctx context.Context, owner solana.PublicKey, as asset.ChainAsset) (*token.Account, error) {
	mint, err := a.mint(as)
	if err != nil {
		return nil, err
	}
	ata, err := AssociatedTokenAccount(owner, mint)
	if err != nil {
		return nil, err
	}
	return a.client.TokenAccount(ctx, ata)
}

func toUint64(name string, v *big.Int) (uint64, error) {
	if v == nil || v.Sign() < 0 || !v.IsUint64() {
		return 0, fmt.Errorf("%s %v does not fit in uint64", name, v)
	}
	return v.Uint64(), nil
}
