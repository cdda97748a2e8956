// Package bootstrap assembles the swap runtime from configuration: signing
// keys, per-chain adapters, caches, the orchestrator and the optional journal.
package bootstrap

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/balance"
	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/config"
	"github.com/propellerswap/propeller/pkg/ethereum"
	"github.com/propellerswap/propeller/pkg/keys"
	"github.com/propellerswap/propeller/pkg/pgutil"
	"github.com/propellerswap/propeller/pkg/solana"
	"github.com/propellerswap/propeller/pkg/swap"
	"github.com/propellerswap/propeller/pkg/swapstore"
)

// Runtime holds the long lived components shared by commands.
type Runtime struct {
	Config       *config.Config
	Catalog      *asset.Catalog
	Adapters     *chain.Cache
	Balances     *balance.Cache
	Orchestrator *swap.Orchestrator
	// Store is nil when no database is configured.
	Store swapstore.Store

	db     *bun.DB
	logger *zap.Logger
}

// New builds the runtime. Adapters are created lazily on first use.
func New(cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	catalog, err := asset.LoadCatalog(cfg.Swap.AssetsFile)
	if err != nil {
		return nil, err
	}

	factory, err := NewAdapterFactory(cfg, catalog, logger)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Config:   cfg,
		Catalog:  catalog,
		Adapters: chain.NewCache(factory, logger),
		logger:   logger,
	}
	rt.Balances = balance.NewCache(rt.Adapters, catalog, cfg.Swap.BalanceTTL, logger)

	opts := []swap.Option{
		swap.WithOptions(swap.Options{
			TargetTimeout:      cfg.Swap.TargetTimeout,
			SourceEventTimeout: cfg.Swap.SourceEventTimeout,
		}),
	}
	if cfg.Database.Enabled() {
		rt.db, err = pgutil.ConnectDB(&cfg.Database)
		if err != nil {
			rt.Close()
			return nil, err
		}
		store := swapstore.NewStore(rt.db)
		rt.Store = store
		opts = append(opts, swap.WithJournal(store))
		logger.Info("Swap journal enabled",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Database))
	}

	rt.Orchestrator, err = swap.NewOrchestrator(rt.Adapters, catalog, rt.Balances, logger, opts...)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// Ready reports whether dependencies answer. Only the database is probed;
// chains are dialed on demand.
func (rt *Runtime) Ready(ctx context.Context) error {
	if rt.db == nil {
		return nil
	}
	return rt.db.PingContext(ctx)
}

// Close releases adapters and the database connection.
func (rt *Runtime) Close() {
	if rt.Adapters != nil {
		rt.Adapters.Close()
	}
	if rt.db != nil {
		_ = rt.db.Close()
	}
}

// NewAdapterFactory returns the chain.Factory for every chain in the catalog.
// The EVM key is loaded once and its wallet shared by all EVM adapters.
func NewAdapterFactory(cfg *config.Config, catalog *asset.Catalog, logger *zap.Logger) (chain.Factory, error) {
	evmWallet, err := loadEVMWallet(cfg.EVM.Key)
	if err != nil {
		return nil, err
	}
	ledgerKey, err := loadLedgerKey(cfg.Solana.Key)
	if err != nil {
		return nil, err
	}

	return func(_ context.Context, id asset.ChainID) (chain.Adapter, error) {
		info, err := catalog.Chain(id)
		if err != nil {
			return nil, err
		}
		chainLogger := logger.With(zap.String("chain", id.String()))

		switch info.Family {
		case asset.FamilyEVM:
			name, chainCfg, ok := cfg.EVM.EVMChainByWormholeID(uint16(id))
			if !ok {
				return nil, fmt.Errorf("%w: no evm chain configured for %s", asset.ErrUnknownChain, id)
			}
			client, err := ethereum.Dial(&chainCfg, evmWallet, chainLogger.With(zap.String("network", name)))
			if err != nil {
				return nil, err
			}
			return ethereum.NewAdapter(id, client, chainLogger), nil

		case asset.FamilyLedger:
			if cfg.Solana.RPCURL == "" || cfg.Solana.WormholeChainID != uint16(id) {
				return nil, fmt.Errorf("%w: no ledger chain configured for %s", asset.ErrUnknownChain, id)
			}
			programs, err := solana.ParsePrograms(&cfg.Solana)
			if err != nil {
				return nil, err
			}
			client := solana.Dial(&cfg.Solana, ledgerKey, chainLogger)
			dial := solana.WebsocketDialer(cfg.Solana.WSURL, solana.ParseCommitment(cfg.Solana.Commitment))
			return solana.NewAdapter(id, &cfg.Solana, client, programs, catalog, dial, chainLogger), nil

		default:
			return nil, fmt.Errorf("%w: unsupported family %q for %s", asset.ErrUnknownChain, info.Family, id)
		}
	}, nil
}

// A missing key leaves the wallet disconnected: reads work, swaps fail with
// chain.ErrWalletNotConnected.
func loadEVMWallet(cfg config.KeyConfig) (*ethereum.Wallet, error) {
	if !cfg.Configured() {
		return nil, nil
	}
	key, err := keys.LoadSecp256k1(cfg)
	if err != nil {
		return nil, fmt.Errorf("evm key: %w", err)
	}
	return ethereum.NewWallet(key), nil
}

func loadLedgerKey(cfg config.KeyConfig) (*solanago.PrivateKey, error) {
	if !cfg.Configured() {
		return nil, nil
	}
	key, err := solana.LoadWallet(cfg)
	if err != nil {
		return nil, fmt.Errorf("ledger key: %w", err)
	}
	return key, nil
}
