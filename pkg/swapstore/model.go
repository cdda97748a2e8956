package swapstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/swap"
)

// SwapDao maps to the 'swaps' table.
type SwapDao struct {
	bun.BaseModel  `bun:"table:swaps,alias:s"`
	ID             string         `bun:"id,pk,type:varchar(36)"`
	Route          string         `bun:"route,notnull,type:varchar(32)"`
	State          string         `bun:"state,notnull,type:varchar(32)"`
	Memo           string         `bun:"memo,notnull,type:varchar(32)"`
	SourceChain    int            `bun:"source_chain,notnull"`
	SourceToken    string         `bun:"source_token,notnull,type:varchar(32)"`
	TargetChain    int            `bun:"target_chain,notnull"`
	TargetToken    string         `bun:"target_token,notnull,type:varchar(32)"`
	InputAmount    string         `bun:"input_amount,notnull,type:numeric(38,18)"`
	MaxFee         string         `bun:"max_fee,notnull,type:numeric(38,18)"`
	GasKickstart   bool           `bun:"gas_kickstart,notnull,default:false"`
	InputAtomic    *string        `bun:"input_atomic,type:numeric(78,0)"`
	TransferAtomic *string        `bun:"transfer_atomic,type:numeric(78,0)"`
	ConversionTxID *string        `bun:"conversion_tx_id,type:varchar(128)"`
	ApprovalTxID   *string        `bun:"approval_tx_id,type:varchar(128)"`
	Sequence       *int64         `bun:"sequence"`
	TxRecords      swap.TxRecords `bun:"tx_records,type:jsonb"`
	FailedIn       *string        `bun:"failed_in,type:varchar(32)"`
	FailureReason  *string        `bun:"failure_reason,type:varchar(64)"`
	Error          *string        `bun:"error,type:text"`
	CreatedAt      time.Time      `bun:"created_at,notnull"`
	UpdatedAt      time.Time      `bun:"updated_at,notnull"`
	FinishedAt     *time.Time     `bun:"finished_at"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toSwapDao(s *swap.Snapshot) *SwapDao {
	dao := &SwapDao{
		ID:             s.ID,
		Route:          s.Route,
		State:          string(s.State),
		Memo:           s.Memo,
		SourceChain:    int(s.SourceChain),
		SourceToken:    string(s.SourceToken),
		TargetChain:    int(s.TargetChain),
		TargetToken:    string(s.TargetToken),
		InputAmount:    s.InputAmount,
		MaxFee:         s.MaxFee,
		GasKickstart:   s.GasKickstart,
		InputAtomic:    optional(s.InputAtomic),
		TransferAtomic: optional(s.TransferAtomic),
		ConversionTxID: optional(s.ConversionTxID),
		ApprovalTxID:   optional(s.ApprovalTxID),
		TxRecords:      s.Records,
		FailedIn:       optional(string(s.FailedIn)),
		FailureReason:  optional(s.FailureReason),
		Error:          optional(s.Error),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		FinishedAt:     s.FinishedAt,
	}
	if s.Sequence != nil {
		seq := int64(*s.Sequence)
		dao.Sequence = &seq
	}
	if dao.TxRecords == nil {
		dao.TxRecords = swap.TxRecords{}
	}
	return dao
}

func toSnapshot(dao *SwapDao) *swap.Snapshot {
	s := &swap.Snapshot{
		ID:             dao.ID,
		Route:          dao.Route,
		State:          swap.State(dao.State),
		Memo:           dao.Memo,
		SourceChain:    asset.ChainID(dao.SourceChain),
		SourceToken:    asset.Project(dao.SourceToken),
		TargetChain:    asset.ChainID(dao.TargetChain),
		TargetToken:    asset.Project(dao.TargetToken),
		InputAmount:    dao.InputAmount,
		MaxFee:         dao.MaxFee,
		GasKickstart:   dao.GasKickstart,
		InputAtomic:    deref(dao.InputAtomic),
		TransferAtomic: deref(dao.TransferAtomic),
		ConversionTxID: deref(dao.ConversionTxID),
		ApprovalTxID:   deref(dao.ApprovalTxID),
		Records:        dao.TxRecords,
		FailedIn:       swap.State(deref(dao.FailedIn)),
		FailureReason:  deref(dao.FailureReason),
		Error:          deref(dao.Error),
		CreatedAt:      dao.CreatedAt,
		UpdatedAt:      dao.UpdatedAt,
		FinishedAt:     dao.FinishedAt,
	}
	if dao.Sequence != nil {
		seq := uint64(*dao.Sequence)
		s.Sequence = &seq
	}
	if s.Records == nil {
		s.Records = swap.TxRecords{}
	}
	return s
}
