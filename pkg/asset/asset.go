// Package asset describes the tokens a swap can move and converts amounts
// between human and atomic units.
package asset

import "fmt"

// Project is the token project identifier shared across chains (e.g. "usdc").
type Project string

// ChainAsset is a token as deployed on one chain. Values are immutable once
// loaded from the catalog.
type ChainAsset struct {
	Chain    ChainID
	Project  Project
	Address  string
	Decimals int32
	// TokenNumber is the routing protocol's numeric id for the token; nil when
	// the protocol does not assign one.
	TokenNumber *uint16
	// PoolIndex is the token's position in the chain's liquidity pool, if pooled.
	PoolIndex *int
	Canonical bool
}

func (a ChainAsset) String() string {
	return fmt.Sprintf("%s/%s", a.Chain, a.Project)
}

// HasTokenNumber reports whether the routing protocol assigns the asset an id.
func (a ChainAsset) HasTokenNumber() bool {
	return a.TokenNumber != nil
}
