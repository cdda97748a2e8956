package swapstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/propellerswap/propeller/pkg/swap"
)

const defaultListLimit = 50

type pgStore struct {
	db *bun.DB
}

// NewStore creates a postgres implementation of the swap store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

// RecordSwap upserts the snapshot keyed by swap id.
func (s *pgStore) RecordSwap(ctx context.Context, snap swap.Snapshot) error {
	dao := toSwapDao(&snap)

	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (id) DO UPDATE").
		Set("state = EXCLUDED.state").
		Set("input_atomic = EXCLUDED.input_atomic").
		Set("transfer_atomic = EXCLUDED.transfer_atomic").
		Set("conversion_tx_id = EXCLUDED.conversion_tx_id").
		Set("approval_tx_id = EXCLUDED.approval_tx_id").
		Set("sequence = EXCLUDED.sequence").
		Set("tx_records = EXCLUDED.tx_records").
		Set("failed_in = EXCLUDED.failed_in").
		Set("failure_reason = EXCLUDED.failure_reason").
		Set("error = EXCLUDED.error").
		Set("updated_at = EXCLUDED.updated_at").
		Set("finished_at = EXCLUDED.finished_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record swap %s: %w", snap.ID, err)
	}
	return nil
}

func (s *pgStore) GetSwap(ctx context.Context, id string) (*swap.Snapshot, error) {
	dao := new(SwapDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSwapNotFound
		}
		return nil, fmt.Errorf("failed to get swap: %w", err)
	}
	return toSnapshot(dao), nil
}

func (s *pgStore) ListSwaps(ctx context.Context, opts ...QueryOption) ([]swap.Snapshot, error) {
	options := &QueryOptions{Limit: defaultListLimit}
	for _, opt := range opts {
		opt(options)
	}

	var daos []SwapDao
	query := s.db.NewSelect().
		Model(&daos).
		Order("created_at DESC").
		Limit(options.Limit)
	if options.State != nil {
		query = query.Where("state = ?", string(*options.State))
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list swaps: %w", err)
	}

	out := make([]swap.Snapshot, len(daos))
	for i := range daos {
		out[i] = *toSnapshot(&daos[i])
	}
	return out, nil
}
