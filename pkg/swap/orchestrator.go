// Package swap drives a cross-chain swap from wallet validation to the
// target-side confirmation, correlating both sides through a random memo.
package swap

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/internal/metrics"
	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/balance"
	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/memo"
)

// AdapterSource resolves the adapter for a chain.
type AdapterSource interface {
	Get(ctx context.Context, id asset.ChainID) (chain.Adapter, error)
}

// Catalog resolves assets referenced by a request.
type Catalog interface {
	Chain(id asset.ChainID) (asset.ChainInfo, error)
	Asset(chainID asset.ChainID, project asset.Project) (asset.ChainAsset, error)
	Canonical(chainID asset.ChainID) (asset.ChainAsset, error)
}

// BalanceInvalidator receives the balance keys a finished swap made stale.
type BalanceInvalidator interface {
	Invalidate(keys ...balance.Key)
}

// Journal persists terminal executions.
type Journal interface {
	RecordSwap(ctx context.Context, s Snapshot) error
}

// Orchestrator runs swaps one at a time.
type Orchestrator struct {
	adapters    AdapterSource
	catalog     Catalog
	invalidator BalanceInvalidator
	journal     Journal
	logger      *zap.Logger
	opts        Options
	newMemo     func() (memo.Memo, error)
	now         func() time.Time

	guard   Guard
	mu      sync.RWMutex
	current *Execution
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(
	adapters AdapterSource,
	catalog Catalog,
	invalidator BalanceInvalidator,
	logger *zap.Logger,
	opts ...Option,
) (*Orchestrator, error) {
	o := &Orchestrator{
		adapters:    adapters,
		catalog:     catalog,
		invalidator: invalidator,
		logger:      logger,
		newMemo:     memo.Generate,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	resolved, err := o.opts.withDefaults()
	if err != nil {
		return nil, err
	}
	o.opts = resolved
	return o, nil
}

// InProgress reports whether a swap is running.
func (o *Orchestrator) InProgress() bool {
	return o.guard.InProgress()
}

// Current returns the running or most recent execution, if any.
func (o *Orchestrator) Current() *Execution {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current
}

// SubmitOption configures a single submission.
type SubmitOption func(*Execution)

// OnTxRecord registers a callback for every newly detected transaction.
// It runs on the orchestrator goroutine and must not block.
func OnTxRecord(fn func(Snapshot, TxRecord)) SubmitOption {
	return func(e *Execution) { e.onRecord = fn }
}

// Execute submits req and waits for it to finish.
func (o *Orchestrator) Execute(ctx context.Context, req Request, opts ...SubmitOption) (Snapshot, error) {
	exec, err := o.Submit(ctx, req, opts...)
	if err != nil {
		if exec != nil {
			return exec.Snapshot(), err
		}
		return Snapshot{}, err
	}

	select {
	case <-exec.Done():
	case <-ctx.Done():
		exec.Cancel()
		<-exec.Done()
	}
	return exec.Snapshot(), exec.Err()
}

// Submit starts a swap and returns once it is running. A second call while a
// swap is in flight fails with ErrSwapInProgress before any chain is touched.
// Requests that fail planning return the already failed execution.
func (o *Orchestrator) Submit(ctx context.Context, req Request, opts ...SubmitOption) (*Execution, error) {
	if err := ValidateRequest(req); err != nil {
		metrics.SwapsRejected.WithLabelValues(ReasonInvalidRequest).Inc()
		return nil, err
	}
	if err := o.guard.Acquire(); err != nil {
		metrics.SwapsRejected.WithLabelValues("in_progress").Inc()
		o.logger.Warn("Swap rejected, another swap is in progress")
		return nil, err
	}

	m, err := o.newMemo()
	if err != nil {
		o.guard.Release()
		return nil, fmt.Errorf("failed to generate memo: %w", err)
	}

	exec := newExecution(uuid.NewString(), req, m, o.now())
	for _, opt := range opts {
		opt(exec)
	}

	o.mu.Lock()
	o.current = exec
	o.mu.Unlock()

	logger := o.logger.With(zap.String("swap_id", exec.ID), zap.String("memo", m.Hex()))
	logger.Info("Swap submitted",
		zap.String("source", fmt.Sprintf("%s/%s", req.SourceChain, req.SourceToken)),
		zap.String("target", fmt.Sprintf("%s/%s", req.TargetChain, req.TargetToken)),
		zap.String("amount", req.InputAmount.String()))
	resetStateGauge()
	metrics.SwapState.WithLabelValues(string(StateInit)).Set(1)

	p, err := o.plan(req)
	if err != nil {
		o.finish(exec, nil, logger, err)
		return exec, err
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	exec.update(func(e *Execution) {
		e.Route = p.route
		e.inputAtomic = p.inputAtomic
		e.cancel = cancel
	})
	go o.run(runCtx, exec, p, logger)

	return exec, nil
}

type plan struct {
	route           Route
	source          asset.ChainAsset
	target          asset.ChainAsset
	canonical       asset.ChainAsset
	needsConversion bool
	inputAtomic     *big.Int
	maxFeeAtomic    *big.Int
	targetToken     uint16
}

func (o *Orchestrator) plan(req Request) (*plan, error) {
	if req.SourceChain == req.TargetChain {
		return nil, fmt.Errorf("%w: source and target chain are both %s", ErrUnsupportedRoute, req.SourceChain)
	}

	srcChain, err := o.catalog.Chain(req.SourceChain)
	if err != nil {
		return nil, err
	}
	tgtChain, err := o.catalog.Chain(req.TargetChain)
	if err != nil {
		return nil, err
	}
	route, err := ResolveRoute(srcChain.Family, tgtChain.Family)
	if err != nil {
		return nil, err
	}

	source, err := o.catalog.Asset(req.SourceChain, req.SourceToken)
	if err != nil {
		return nil, err
	}
	target, err := o.catalog.Asset(req.TargetChain, req.TargetToken)
	if err != nil {
		return nil, err
	}
	canonical, err := o.catalog.Canonical(req.SourceChain)
	if err != nil {
		return nil, err
	}
	targetCanonical, err := o.catalog.Canonical(req.TargetChain)
	if err != nil {
		return nil, err
	}

	if !target.HasTokenNumber() {
		return nil, fmt.Errorf("%w: %s has no token number", ErrInvalidToken, target)
	}

	needsConversion := false
	if !source.Canonical {
		switch {
		case route.SupportsConversion:
			if source.PoolIndex == nil {
				return nil, fmt.Errorf("%w: %s is not a pool asset", ErrInvalidToken, source)
			}
			needsConversion = true
		case !source.HasTokenNumber():
			return nil, fmt.Errorf("%w: %s has no token number", ErrInvalidToken, source)
		}
	}

	inputAtomic, err := asset.DecimalToAtomic(req.InputAmount, source.Decimals)
	if err != nil {
		return nil, fmt.Errorf("input amount: %w", err)
	}
	maxFeeAtomic, err := asset.DecimalToAtomic(req.MaxFee, targetCanonical.Decimals)
	if err != nil {
		return nil, fmt.Errorf("max fee: %w", err)
	}

	return &plan{
		route:           route,
		source:          source,
		target:          target,
		canonical:       canonical,
		needsConversion: needsConversion,
		inputAtomic:     inputAtomic,
		maxFeeAtomic:    maxFeeAtomic,
		targetToken:     *target.TokenNumber,
	}, nil
}

type sideEvent struct {
	side  string
	chain asset.ChainID
	txID  string
}

func (o *Orchestrator) run(ctx context.Context, exec *Execution, p *plan, logger *zap.Logger) {
	registry := chain.NewRegistry()
	var err error
	defer func() {
		registry.ReleaseAll()
		logger.Debug("Subscriptions released")
		o.finish(exec, p, logger, err)
	}()
	err = o.drive(ctx, exec, p, registry, logger)
}

func (o *Orchestrator) drive(ctx context.Context, exec *Execution, p *plan, registry *chain.Registry, logger *zap.Logger) error {
	o.transition(exec, StateValidatingWallets, logger)

	source, err := o.adapters.Get(ctx, p.source.Chain)
	if err != nil {
		return err
	}
	target, err := o.adapters.Get(ctx, p.target.Chain)
	if err != nil {
		return err
	}

	owner, err := source.Owner()
	if err != nil {
		return fmt.Errorf("source wallet on %s: %w", p.source.Chain, err)
	}
	if p.route.RequiresTargetWallet {
		if _, err := target.Owner(); err != nil {
			return fmt.Errorf("target wallet on %s: %w", p.target.Chain, err)
		}
	}
	targetOwner, err := target.TargetOwner(ctx, p.target)
	if err != nil {
		return fmt.Errorf("failed to resolve target owner: %w", err)
	}

	transferAsset := p.source
	amount := p.inputAtomic
	if p.needsConversion {
		o.transition(exec, StateAddingLiquidity, logger)
		converter, ok := source.(chain.Converter)
		if !ok {
			return fmt.Errorf("%w: %s cannot convert %s", ErrUnsupportedRoute, p.source.Chain, p.source.Project)
		}
		res, err := converter.Convert(ctx, chain.ConversionRequest{Source: p.source, Amount: amount, Memo: exec.Memo})
		if err != nil {
			return fmt.Errorf("liquidity conversion failed: %w", err)
		}
		logger.Info("Liquidity added",
			zap.String("tx_id", res.TxID),
			zap.String("input", amount.String()),
			zap.String("output", res.Output.String()))
		exec.update(func(e *Execution) { e.conversionTxID = res.TxID })
		transferAsset = p.canonical
		amount = res.Output
	}
	exec.update(func(e *Execution) { e.transferAtomic = new(big.Int).Set(amount) })

	o.transition(exec, StateApprovingAllowance, logger)
	approvalTx, err := source.ApproveIfNeeded(ctx, owner, source.RoutingAddress(), transferAsset, amount)
	if err != nil {
		return fmt.Errorf("failed to approve allowance: %w", err)
	}
	if approvalTx != "" {
		logger.Info("Allowance approved", zap.String("tx_id", approvalTx))
		exec.update(func(e *Execution) { e.approvalTxID = approvalTx })
	}

	events := make(chan sideEvent, 2)
	if p.route.WatchTarget {
		if err := o.watch(ctx, target, exec.Memo, "target", events, registry); err != nil {
			return err
		}
	}
	if p.route.WatchSource {
		if err := o.watch(ctx, source, exec.Memo, "source", events, registry); err != nil {
			return err
		}
	}

	o.transition(exec, StateSubmittingTransfer, logger)
	res, err := source.SubmitTransfer(ctx, chain.TransferParams{
		Source:            transferAsset,
		Amount:            amount,
		TargetChain:       p.target.Chain,
		TargetOwner:       targetOwner,
		GasKickstart:      exec.Request.GasKickstart,
		MaxFee:            p.maxFeeAtomic,
		TargetTokenNumber: p.targetToken,
		Memo:              exec.Memo,
		Overrides:         exec.Request.Overrides,
	})
	if err != nil {
		return fmt.Errorf("failed to submit transfer: %w", err)
	}
	fields := []zap.Field{zap.String("tx_id", res.TxID)}
	if res.Sequence != nil {
		fields = append(fields, zap.Uint64("sequence", *res.Sequence))
		seq := *res.Sequence
		exec.update(func(e *Execution) { e.sequence = &seq })
	}
	logger.Info("Transfer submitted", fields...)
	o.record(exec, TxRecord{Chain: p.source.Chain, TxID: res.TxID}, logger)

	if p.route.WatchSource {
		o.transition(exec, StateAwaitingSourceEvent, logger)
		if err := o.awaitSource(ctx, exec, p, events, logger); err != nil {
			return err
		}
	}

	o.transition(exec, StateAwaitingTargetEvent, logger)
	if exec.hasRecordOn(p.target.Chain) {
		return nil
	}
	return o.awaitTarget(ctx, exec, p, events, logger)
}

func (o *Orchestrator) watch(ctx context.Context, adapter chain.Adapter, m memo.Memo, side string, events chan<- sideEvent, registry *chain.Registry) error {
	chainID := adapter.ChainID()
	sub, err := adapter.WatchForMemo(ctx, m, func(txID string) {
		events <- sideEvent{side: side, chain: chainID, txID: txID}
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s chain %s: %w", side, chainID, err)
	}
	registry.Add(adapter, sub)
	return nil
}

// awaitSource waits for the source chain echo. Running out of time here is
// not fatal because the submission itself already confirmed.
func (o *Orchestrator) awaitSource(ctx context.Context, exec *Execution, p *plan, events <-chan sideEvent, logger *zap.Logger) error {
	timer := time.NewTimer(o.opts.SourceEventTimeout)
	defer timer.Stop()

	for {
		select {
		case ev := <-events:
			o.observe(exec, ev, logger)
			if ev.side == "source" || exec.hasRecordOn(p.target.Chain) {
				return nil
			}
		case <-timer.C:
			logger.Warn("Source event not observed, continuing", zap.Duration("waited", o.opts.SourceEventTimeout))
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (o *Orchestrator) awaitTarget(ctx context.Context, exec *Execution, p *plan, events <-chan sideEvent, logger *zap.Logger) error {
	timer := time.NewTimer(o.opts.TargetTimeout)
	defer timer.Stop()

	for {
		select {
		case ev := <-events:
			o.observe(exec, ev, logger)
			if ev.side == "target" {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("%w after %s", ErrTargetEventTimeout, o.opts.TargetTimeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (o *Orchestrator) observe(exec *Execution, ev sideEvent, logger *zap.Logger) {
	logger.Info("Propeller transaction detected",
		zap.String("side", ev.side),
		zap.String("chain", ev.chain.String()),
		zap.String("tx_id", ev.txID))
	o.record(exec, TxRecord{Chain: ev.chain, TxID: ev.txID}, logger)
}

func (o *Orchestrator) record(exec *Execution, r TxRecord, logger *zap.Logger) {
	if !exec.appendRecord(r, o.now()) {
		logger.Debug("Duplicate transaction ignored", zap.String("tx_id", r.TxID))
	}
}

// resetStateGauge clears the series left by the previous swap.
func resetStateGauge() {
	for _, s := range AllStates {
		metrics.SwapState.WithLabelValues(string(s)).Set(0)
	}
}

func (o *Orchestrator) transition(exec *Execution, s State, logger *zap.Logger) {
	prev := exec.setState(s, o.now())
	metrics.SwapState.WithLabelValues(string(prev)).Set(0)
	metrics.SwapState.WithLabelValues(string(s)).Set(1)
	logger.Info("Swap state changed", zap.String("from", string(prev)), zap.String("to", string(s)))
}

func (o *Orchestrator) finish(exec *Execution, p *plan, logger *zap.Logger, err error) {
	now := o.now()
	final := StateCompleted
	if err != nil {
		final = StateFailed
	}

	var prev State
	exec.update(func(e *Execution) {
		prev = e.state
		if err != nil {
			e.failedIn = e.state
			e.failure = err
		}
		e.state = final
		e.updatedAt = now
		e.finishedAt = now
	})
	metrics.SwapState.WithLabelValues(string(prev)).Set(0)
	metrics.SwapState.WithLabelValues(string(final)).Set(1)

	routeName := exec.Route.Name
	if p != nil {
		routeName = p.route.Name
	}
	if routeName == "" {
		routeName = "unresolved"
	}
	metrics.SwapsTotal.WithLabelValues(routeName, string(final)).Inc()
	metrics.SwapDuration.WithLabelValues(routeName).Observe(now.Sub(exec.CreatedAt).Seconds())

	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("swap", FailureReason(err)).Inc()
		logger.Error("Swap failed",
			zap.String("state", string(prev)),
			zap.String("reason", FailureReason(err)),
			zap.Error(err))
	} else {
		logger.Info("Swap completed", zap.Int("tx_records", len(exec.Records())))
	}

	if o.invalidator != nil {
		o.invalidator.Invalidate(BalanceKeys(exec.Request)...)
	}

	if o.journal != nil {
		jctx, cancel := context.WithTimeout(context.Background(), o.opts.JournalTimeout)
		if jerr := o.journal.RecordSwap(jctx, exec.Snapshot()); jerr != nil {
			logger.Warn("Failed to record swap in journal", zap.Error(jerr))
		}
		cancel()
	}

	o.guard.Release()
	close(exec.done)
}

// BalanceKeys returns the balances a swap touches: gas and token on both chains.
func BalanceKeys(req Request) []balance.Key {
	return []balance.Key{
		balance.GasKey(req.SourceChain),
		balance.TokenKey(req.SourceChain, req.SourceToken),
		balance.GasKey(req.TargetChain),
		balance.TokenKey(req.TargetChain, req.TargetToken),
	}
}
