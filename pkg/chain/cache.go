package chain

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/propellerswap/propeller/pkg/asset"
)

// Factory builds the adapter for a chain.
type Factory func(ctx context.Context, id asset.ChainID) (Adapter, error)

// Cache holds one adapter per chain, building it on first use. Concurrent
// misses for the same chain share a single factory call.
type Cache struct {
	factory Factory
	logger  *zap.Logger

	mu       sync.RWMutex
	adapters map[asset.ChainID]Adapter
	group    singleflight.Group
}

// NewCache creates an empty adapter cache.
func NewCache(factory Factory, logger *zap.Logger) *Cache {
	return &Cache{
		factory:  factory,
		logger:   logger,
		adapters: make(map[asset.ChainID]Adapter),
	}
}

// Get returns the cached adapter for id, populating the cache on a miss.
func (c *Cache) Get(ctx context.Context, id asset.ChainID) (Adapter, error) {
	c.mu.RLock()
	a, ok := c.adapters[id]
	c.mu.RUnlock()
	if ok {
		return a, nil
	}

	v, err, _ := c.group.Do(id.String(), func() (any, error) {
		c.mu.RLock()
		existing, ok := c.adapters[id]
		c.mu.RUnlock()
		if ok {
			return existing, nil
		}

		created, err := c.factory(ctx, id)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.adapters[id] = created
		c.mu.Unlock()

		c.logger.Info("Chain adapter created",
			zap.String("chain", id.String()),
			zap.String("family", string(created.Family())))
		return created, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create adapter for %s: %w", id, err)
	}
	return v.(Adapter), nil
}

// Close closes every cached adapter and empties the cache.
func (c *Cache) Close() {
	c.mu.Lock()
	adapters := c.adapters
	c.adapters = make(map[asset.ChainID]Adapter)
	c.mu.Unlock()

	for _, a := range adapters {
		a.Close()
	}
}
