package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/config"
)

// RPC is the subset of the JSON-RPC client the adapter uses. *rpc.Client
// satisfies it.
type RPC interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
	Close() error
}

// Client signs and submits ledger transactions for one wallet.
type Client struct {
	rpc            RPC
	wallet         *solana.PrivateKey
	commitment     rpc.CommitmentType
	confirmTimeout time.Duration
	pollInterval   time.Duration
	logger         *zap.Logger
}

// NewClient creates a client. wallet may be nil for read-only use.
func NewClient(cfg *config.SolanaConfig, r RPC, wallet *solana.PrivateKey, logger *zap.Logger) *Client {
	c := &Client{
		rpc:            r,
		wallet:         wallet,
		commitment:     ParseCommitment(cfg.Commitment),
		confirmTimeout: cfg.ConfirmTimeout,
		pollInterval:   cfg.PollingInterval,
		logger:         logger,
	}
	fields := []zap.Field{zap.String("commitment", string(c.commitment))}
	if wallet != nil {
		fields = append(fields, zap.String("wallet_address", wallet.PublicKey().String()))
	}
	logger.Info("Connected to ledger chain", fields...)
	return c
}

// Dial creates a client over the configured JSON-RPC endpoint.
func Dial(cfg *config.SolanaConfig, wallet *solana.PrivateKey, logger *zap.Logger) *Client {
	return NewClient(cfg, rpc.New(cfg.RPCURL), wallet, logger)
}

// PublicKey returns the wallet's public key.
func (c *Client) PublicKey() (solana.PublicKey, error) {
	if c.wallet == nil {
		return solana.PublicKey{}, chain.ErrWalletNotConnected
	}
	return c.wallet.PublicKey(), nil
}

// Close closes the RPC client.
func (c *Client) Close() {
	if err := c.rpc.Close(); err != nil {
		c.logger.Debug("Failed to close ledger RPC client", zap.Error(err))
	}
}

// Lamports returns account's native balance.
func (c *Client) Lamports(ctx context.Context, account solana.PublicKey) (uint64, error) {
	res, err := c.rpc.GetBalance(ctx, account, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return res.Value, nil
}

// TokenAccount loads and decodes an SPL token account. It returns nil when
// the account does not exist.
func (c *Client) TokenAccount(ctx context.Context, account solana.PublicKey) (*token.Account, error) {
	info, err := c.rpc.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{Commitment: c.commitment})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token account %s: %w", account, err)
	}
	if info == nil || info.Value == nil {
		return nil, nil
	}

	var acc token.Account
	if err := bin.NewBinDecoder(info.Value.Data.GetBinary()).Decode(&acc); err != nil {
		return nil, fmt.Errorf("failed to decode token account %s: %w", account, err)
	}
	return &acc, nil
}

// Send signs instructions with the wallet plus extra signers, submits the
// transaction and waits for the configured commitment.
func (c *Client) Send(ctx context.Context, kind string, instructions []solana.Instruction, extra ...solana.PrivateKey) (solana.Signature, error) {
	payer, err := c.PublicKey()
	if err != nil {
		return solana.Signature{}, err
	}

	recent, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, recent.Value.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create %s transaction: %w", kind, err)
	}

	signers := append([]solana.PrivateKey{*c.wallet}, extra...)
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey().Equals(key) {
				return &signers[i]
			}
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign %s transaction: %w", kind, err)
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send %s transaction: %w", kind, err)
	}
	c.logger.Info("Ledger transaction sent", zap.String("kind", kind), zap.String("signature", sig.String()))

	if err := c.confirm(ctx, sig); err != nil {
		return sig, fmt.Errorf("%s transaction %s: %w", kind, sig, err)
	}
	return sig, nil
}

// confirm polls the signature status until it reaches the client commitment.
func (c *Client) confirm(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		res, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			c.logger.Warn("Failed to get signature status", zap.String("signature", sig.String()), zap.Error(err))
		} else if len(res.Value) > 0 && res.Value[0] != nil {
			status := res.Value[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %v", chain.ErrTransactionFailed, status.Err)
			}
			if reached(status.ConfirmationStatus, c.commitment) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrConfirmTimeout
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func reached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	switch want {
	case rpc.CommitmentFinalized:
		return status == rpc.ConfirmationStatusFinalized
	case rpc.CommitmentProcessed:
		return status != ""
	default:
		return status == rpc.ConfirmationStatusConfirmed || status == rpc.ConfirmationStatusFinalized
	}
}

// TransactionLogs fetches a confirmed transaction's program logs.
func (c *Client) TransactionLogs(ctx context.Context, sig solana.Signature) ([]string, error) {
	commitment := c.commitment
	if commitment == rpc.CommitmentProcessed {
		commitment = rpc.CommitmentConfirmed
	}
	version := uint64(0)
	tx, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment:                     commitment,
		MaxSupportedTransactionVersion: &version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", sig, err)
	}
	if tx == nil || tx.Meta == nil {
		return nil, fmt.Errorf("transaction %s has no metadata", sig)
	}
	return tx.Meta.LogMessages, nil
}
