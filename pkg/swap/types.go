package swap

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/memo"
)

// State is a step of the swap state machine.
type State string

const (
	StateInit                State = "init"
	StateValidatingWallets   State = "validating_wallets"
	StateAddingLiquidity     State = "adding_liquidity"
	StateApprovingAllowance  State = "approving_allowance"
	StateSubmittingTransfer  State = "submitting_transfer"
	StateAwaitingSourceEvent State = "awaiting_source_event"
	StateAwaitingTargetEvent State = "awaiting_target_event"
	StateCompleted           State = "completed"
	StateFailed              State = "failed"
)

// AllStates lists every state in machine order.
var AllStates = []State{
	StateInit,
	StateValidatingWallets,
	StateAddingLiquidity,
	StateApprovingAllowance,
	StateSubmittingTransfer,
	StateAwaitingSourceEvent,
	StateAwaitingTargetEvent,
	StateCompleted,
	StateFailed,
}

// Terminal reports whether no further transitions happen from s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Request is a caller's swap order. Amounts are in human units.
type Request struct {
	SourceChain  asset.ChainID    `json:"sourceChain" validate:"required"`
	SourceToken  asset.Project    `json:"sourceToken" validate:"required"`
	TargetChain  asset.ChainID    `json:"targetChain" validate:"required"`
	TargetToken  asset.Project    `json:"targetToken" validate:"required"`
	InputAmount  decimal.Decimal  `json:"inputAmount" validate:"gt=0"`
	MaxFee       decimal.Decimal  `json:"maxPropellerFee" validate:"gte=0"`
	GasKickstart bool             `json:"gasKickstart"`
	Overrides    *chain.Overrides `json:"overrides,omitempty"`
}

// TxRecord is a transaction observed as part of a swap.
type TxRecord struct {
	Chain asset.ChainID `json:"chain"`
	TxID  string        `json:"txId"`
}

// TxRecords is an ordered list of records, unique by transaction id.
type TxRecords []TxRecord

// Append adds r unless a record with the same transaction id exists.
// It reports whether r was added.
func (rs *TxRecords) Append(r TxRecord) bool {
	for _, existing := range *rs {
		if existing.TxID == r.TxID {
			return false
		}
	}
	*rs = append(*rs, r)
	return true
}

// Has reports whether a record exists for chainID.
func (rs TxRecords) Has(chainID asset.ChainID) bool {
	for _, r := range rs {
		if r.Chain == chainID {
			return true
		}
	}
	return false
}

// Execution is one in-flight or finished swap. Only the orchestrator
// mutates it; callers read through Snapshot.
type Execution struct {
	ID        string
	Request   Request
	Route     Route
	Memo      memo.Memo
	CreatedAt time.Time

	mu             sync.RWMutex
	state          State
	failedIn       State
	records        TxRecords
	inputAtomic    *big.Int
	transferAtomic *big.Int
	conversionTxID string
	approvalTxID   string
	sequence       *uint64
	failure        error
	updatedAt      time.Time
	finishedAt     time.Time

	cancel   context.CancelFunc
	done     chan struct{}
	onRecord func(Snapshot, TxRecord)
}

func newExecution(id string, req Request, m memo.Memo, now time.Time) *Execution {
	return &Execution{
		ID:        id,
		Request:   req,
		Memo:      m,
		CreatedAt: now,
		state:     StateInit,
		updatedAt: now,
		cancel:    func() {},
		done:      make(chan struct{}),
	}
}

// State returns the current state.
func (e *Execution) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Records returns a copy of the detected transactions.
func (e *Execution) Records() TxRecords {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append(TxRecords(nil), e.records...)
}

// Err returns the failure cause of a failed execution.
func (e *Execution) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.failure
}

// Done is closed once the execution reached a terminal state.
func (e *Execution) Done() <-chan struct{} {
	return e.done
}

// Cancel aborts the execution. Subscriptions are released and the swap ends
// in StateFailed unless it already finished.
func (e *Execution) Cancel() {
	e.mu.RLock()
	cancel := e.cancel
	e.mu.RUnlock()
	cancel()
}

// Wait blocks until the execution finishes or ctx is done.
func (e *Execution) Wait(ctx context.Context) (Snapshot, error) {
	select {
	case <-e.done:
		return e.Snapshot(), e.Err()
	case <-ctx.Done():
		return e.Snapshot(), ctx.Err()
	}
}

func (e *Execution) setState(s State, now time.Time) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.state
	e.state = s
	e.updatedAt = now
	return prev
}

func (e *Execution) appendRecord(r TxRecord, now time.Time) bool {
	e.mu.Lock()
	added := e.records.Append(r)
	if added {
		e.updatedAt = now
	}
	e.mu.Unlock()

	if added && e.onRecord != nil {
		e.onRecord(e.Snapshot(), r)
	}
	return added
}

func (e *Execution) hasRecordOn(chainID asset.ChainID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.records.Has(chainID)
}

func (e *Execution) update(fn func(e *Execution)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e)
}

// Snapshot is an immutable copy of an execution.
type Snapshot struct {
	ID             string        `json:"id"`
	Route          string        `json:"route"`
	State          State         `json:"state"`
	Memo           string        `json:"memo"`
	SourceChain    asset.ChainID `json:"sourceChain"`
	SourceToken    asset.Project `json:"sourceToken"`
	TargetChain    asset.ChainID `json:"targetChain"`
	TargetToken    asset.Project `json:"targetToken"`
	InputAmount    string        `json:"inputAmount"`
	MaxFee         string        `json:"maxPropellerFee"`
	GasKickstart   bool          `json:"gasKickstart"`
	InputAtomic    string        `json:"inputAtomic,omitempty"`
	TransferAtomic string        `json:"transferAtomic,omitempty"`
	ConversionTxID string        `json:"conversionTxId,omitempty"`
	ApprovalTxID   string        `json:"approvalTxId,omitempty"`
	Sequence       *uint64       `json:"sequence,omitempty"`
	Records        TxRecords     `json:"txRecords"`
	FailedIn       State         `json:"failedIn,omitempty"`
	FailureReason  string        `json:"failureReason,omitempty"`
	Error          string        `json:"error,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	FinishedAt     *time.Time    `json:"finishedAt,omitempty"`
}

// Snapshot copies the execution's current view.
func (e *Execution) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Snapshot{
		ID:             e.ID,
		Route:          e.Route.Name,
		State:          e.state,
		Memo:           e.Memo.Hex(),
		SourceChain:    e.Request.SourceChain,
		SourceToken:    e.Request.SourceToken,
		TargetChain:    e.Request.TargetChain,
		TargetToken:    e.Request.TargetToken,
		InputAmount:    e.Request.InputAmount.String(),
		MaxFee:         e.Request.MaxFee.String(),
		GasKickstart:   e.Request.GasKickstart,
		ConversionTxID: e.conversionTxID,
		ApprovalTxID:   e.approvalTxID,
		Records:        append(TxRecords{}, e.records...),
		FailedIn:       e.failedIn,
		FailureReason:  FailureReason(e.failure),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.updatedAt,
	}
	if e.inputAtomic != nil {
		s.InputAtomic = e.inputAtomic.String()
	}
	if e.transferAtomic != nil {
		s.TransferAtomic = e.transferAtomic.String()
	}
	if e.sequence != nil {
		seq := *e.sequence
		s.Sequence = &seq
	}
	if e.failure != nil {
		s.Error = e.failure.Error()
	}
	if !e.finishedAt.IsZero() {
		finished := e.finishedAt
		s.FinishedAt = &finished
	}
	return s
}
