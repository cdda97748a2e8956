// Package solana adapts the ledger chain's routing program to the swap
// orchestrator: account derivation, instruction encoding, transaction
// submission and log-based memo watching.
package solana

import (
	"errors"
	"fmt"
	"strings"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/propellerswap/propeller/pkg/config"
)

var (
	// ErrSequenceNotFound is returned when a transfer's logs carry no bridge sequence.
	ErrSequenceNotFound = errors.New("bridge sequence not found in logs")

	// ErrConfirmTimeout is returned when a transaction is not confirmed in time.
	ErrConfirmTimeout = errors.New("transaction confirmation timed out")

	// ErrPoolNotConfigured is returned when conversion is requested without pool accounts.
	ErrPoolNotConfigured = errors.New("liquidity pool not configured")
)

// Programs holds the parsed program and state addresses the adapter uses.
type Programs struct {
	Routing        solana.PublicKey
	RoutingState   solana.PublicKey
	TwoPool        solana.PublicKey
	PoolTokens     [2]solana.PublicKey
	GovernanceFee  solana.PublicKey
	WormholeBridge solana.PublicKey
	TokenBridge    solana.PublicKey
	poolConfigured bool
}

// ParsePrograms decodes the configured base58 addresses.
func ParsePrograms(cfg *config.SolanaConfig) (*Programs, error) {
	var (
		p   Programs
		err error
	)
	fields := []struct {
		name     string
		value    string
		dst      *solana.PublicKey
		required bool
	}{
		{"routing_program", cfg.RoutingProgram, &p.Routing, true},
		{"routing_state", cfg.RoutingState, &p.RoutingState, true},
		{"two_pool_program", cfg.TwoPoolProgram, &p.TwoPool, false},
		{"pool.governance_fee_account", cfg.Pool.GovernanceFeeAccount, &p.GovernanceFee, false},
		{"wormhole.bridge", cfg.Wormhole.Bridge, &p.WormholeBridge, true},
		{"wormhole.portal", cfg.Wormhole.Portal, &p.TokenBridge, true},
	}
	for _, f := range fields {
		if f.value == "" {
			if f.required {
				return nil, fmt.Errorf("solana.%s is required", f.name)
			}
			continue
		}
		if *f.dst, err = solana.PublicKeyFromBase58(f.value); err != nil {
			return nil, fmt.Errorf("solana.%s: %w", f.name, err)
		}
	}

	if len(cfg.Pool.TokenAccounts) == 2 {
		for i, s := range cfg.Pool.TokenAccounts {
			if p.PoolTokens[i], err = solana.PublicKeyFromBase58(s); err != nil {
				return nil, fmt.Errorf("solana.pool.token_accounts[%d]: %w", i, err)
			}
		}
		p.poolConfigured = !p.TwoPool.IsZero() && !p.GovernanceFee.IsZero()
	}
	return &p, nil
}

// PoolConfigured reports whether liquidity conversion is possible.
func (p *Programs) PoolConfigured() bool {
	return p.poolConfigured
}

// ParseCommitment maps a configured commitment name to the RPC type.
func ParseCommitment(s string) rpc.CommitmentType {
	switch strings.ToLower(s) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "processed":
		return rpc.CommitmentProcessed
	default:
		return rpc.CommitmentConfirmed
	}
}
