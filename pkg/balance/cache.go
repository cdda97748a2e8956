// Package balance caches wallet balances per chain and drops them when a
// swap reports that they went stale.
package balance

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/chain"
)

// Kind distinguishes the gas balance of a chain from a token balance.
type Kind string

const (
	KindGas   Kind = "gas"
	KindToken Kind = "token"
)

// Key identifies one cached balance. Project is empty for gas balances.
type Key struct {
	Chain   asset.ChainID
	Kind    Kind
	Project asset.Project
}

func (k Key) String() string {
	if k.Kind == KindGas {
		return fmt.Sprintf("%s:gas", k.Chain)
	}
	return fmt.Sprintf("%s:token:%s", k.Chain, k.Project)
}

// GasKey is the gas balance key of a chain.
func GasKey(chainID asset.ChainID) Key {
	return Key{Chain: chainID, Kind: KindGas}
}

// TokenKey is the balance key of a token on a chain.
func TokenKey(chainID asset.ChainID, project asset.Project) Key {
	return Key{Chain: chainID, Kind: KindToken, Project: project}
}

// AdapterSource resolves chain adapters.
type AdapterSource interface {
	Get(ctx context.Context, id asset.ChainID) (chain.Adapter, error)
}

// AssetSource resolves token deployments.
type AssetSource interface {
	Asset(chainID asset.ChainID, project asset.Project) (asset.ChainAsset, error)
}

// Entry is a cached balance reading.
type Entry struct {
	Amount    *big.Int
	FetchedAt time.Time
}

// Cache loads balances through chain adapters and keeps them until
// invalidated or older than the configured TTL. Each key carries a
// generation bumped by Invalidate; a load only fills the cache if the
// generation it started under is still current.
type Cache struct {
	adapters AdapterSource
	assets   AssetSource
	ttl      time.Duration
	logger   *zap.Logger
	group    singleflight.Group

	mu          sync.RWMutex
	entries     map[Key]Entry
	generations map[Key]uint64
	now         func() time.Time
}

// NewCache creates a balance cache. A zero ttl keeps entries until invalidated.
func NewCache(adapters AdapterSource, assets AssetSource, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		adapters:    adapters,
		assets:      assets,
		ttl:         ttl,
		logger:      logger,
		entries:     make(map[Key]Entry),
		generations: make(map[Key]uint64),
		now:         time.Now,
	}
}

// Get returns the balance for key, reading it from chain on a miss.
// Concurrent misses for the same key share one read.
func (c *Cache) Get(ctx context.Context, key Key) (*big.Int, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	gen := c.generations[key]
	c.mu.RUnlock()
	if ok && (c.ttl <= 0 || c.now().Sub(e.FetchedAt) < c.ttl) {
		return new(big.Int).Set(e.Amount), nil
	}

	v, err, _ := c.group.Do(fmt.Sprintf("%s@%d", key, gen), func() (any, error) {
		amount, err := c.load(ctx, key)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generations[key] == gen {
			c.entries[key] = Entry{Amount: amount, FetchedAt: c.now()}
		} else {
			c.logger.Debug("Discarding balance read overtaken by invalidation", zap.String("key", key.String()))
		}
		c.mu.Unlock()
		return amount, nil
	})
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(v.(*big.Int)), nil
}

func (c *Cache) load(ctx context.Context, key Key) (*big.Int, error) {
	adapter, err := c.adapters.Get(ctx, key.Chain)
	if err != nil {
		return nil, err
	}

	switch key.Kind {
	case KindGas:
		amount, err := adapter.GasBalance(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read gas balance on %s: %w", key.Chain, err)
		}
		return amount, nil
	case KindToken:
		a, err := c.assets.Asset(key.Chain, key.Project)
		if err != nil {
			return nil, err
		}
		amount, err := adapter.TokenBalance(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s balance: %w", a, err)
		}
		return amount, nil
	default:
		return nil, fmt.Errorf("unknown balance kind %q", key.Kind)
	}
}

// Invalidate drops the given keys so the next Get re-reads them.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
		c.generations[k]++
	}
	c.mu.Unlock()

	if len(keys) > 0 {
		fields := make([]string, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, k.String())
		}
		c.logger.Debug("Balances invalidated", zap.Strings("keys", fields))
	}
}

// Cached reports whether key currently has an entry.
func (c *Cache) Cached(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}
