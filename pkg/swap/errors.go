package swap

import (
	"context"
	"errors"

	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/chain"
)

var (
	// ErrSwapInProgress is returned when a swap is requested while another is in flight.
	ErrSwapInProgress = errors.New("swap already in progress")

	// ErrInvalidToken is returned when an asset lacks the protocol token number the route needs.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnsupportedRoute is returned for chain pairs no route descriptor covers.
	ErrUnsupportedRoute = errors.New("unsupported route")

	// ErrTargetEventTimeout is returned when no target-side event arrives in time.
	ErrTargetEventTimeout = errors.New("timed out waiting for target chain event")

	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid swap request")
)

// Failure reason codes stored on failed executions.
const (
	ReasonInvalidRequest     = "invalid_request"
	ReasonInvalidToken       = "invalid_token"
	ReasonUnsupportedRoute   = "unsupported_route"
	ReasonWalletNotConnected = "wallet_not_connected"
	ReasonConversionUnparsed = "conversion_output_unparseable"
	ReasonTransactionFailed  = "transaction_failed"
	ReasonTargetEventTimeout = "target_event_timeout"
	ReasonCancelled          = "cancelled"
	ReasonInternal           = "internal"
)

// FailureReason maps an error to a stable reason code.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidToken):
		return ReasonInvalidToken
	case errors.Is(err, ErrUnsupportedRoute):
		return ReasonUnsupportedRoute
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, asset.ErrInvalidAmount),
		errors.Is(err, asset.ErrExcessPrecision),
		errors.Is(err, asset.ErrUnknownAsset),
		errors.Is(err, asset.ErrUnknownChain):
		return ReasonInvalidRequest
	case errors.Is(err, chain.ErrWalletNotConnected):
		return ReasonWalletNotConnected
	case errors.Is(err, chain.ErrConversionOutputUnparseable):
		return ReasonConversionUnparsed
	case errors.Is(err, chain.ErrTransactionFailed):
		return ReasonTransactionFailed
	case errors.Is(err, ErrTargetEventTimeout):
		return ReasonTargetEventTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCancelled
	default:
		return ReasonInternal
	}
}
