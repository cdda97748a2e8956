package swap

import (
	"fmt"

	"github.com/propellerswap/propeller/pkg/asset"
)

// Route describes how a swap between two chain families is driven. One state
// machine executes every route; the flags decide which steps run.
type Route struct {
	Name         string
	SourceFamily asset.Family
	TargetFamily asset.Family
	// SupportsConversion enables the liquidity step for non-canonical sources.
	SupportsConversion bool
	// WatchSource installs a memo listener on the source chain.
	WatchSource bool
	// WatchTarget installs a memo listener on the target chain.
	WatchTarget bool
	// RequiresTargetWallet demands a connected signer on the target chain.
	RequiresTargetWallet bool
}

var (
	RouteEVMToEVM = Route{
		Name:         "evm-evm",
		SourceFamily: asset.FamilyEVM,
		TargetFamily: asset.FamilyEVM,
		WatchSource:  true,
		WatchTarget:  true,
	}
	RouteEVMToLedger = Route{
		Name:                 "evm-ledger",
		SourceFamily:         asset.FamilyEVM,
		TargetFamily:         asset.FamilyLedger,
		WatchSource:          true,
		WatchTarget:          true,
		RequiresTargetWallet: true,
	}
	RouteLedgerToEVM = Route{
		Name:                 "ledger-evm",
		SourceFamily:         asset.FamilyLedger,
		TargetFamily:         asset.FamilyEVM,
		SupportsConversion:   true,
		WatchTarget:          true,
		RequiresTargetWallet: true,
	}
)

var routes = []Route{RouteEVMToEVM, RouteEVMToLedger, RouteLedgerToEVM}

// ResolveRoute returns the route descriptor for a family pair.
func ResolveRoute(source, target asset.Family) (Route, error) {
	for _, r := range routes {
		if r.SourceFamily == source && r.TargetFamily == target {
			return r, nil
		}
	}
	return Route{}, fmt.Errorf("%w: %s to %s", ErrUnsupportedRoute, source, target)
}
