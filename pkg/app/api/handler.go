package api

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/propellerswap/propeller/pkg/app/errors"
	apphttp "github.com/propellerswap/propeller/pkg/app/http"
	"github.com/propellerswap/propeller/pkg/asset"
	"github.com/propellerswap/propeller/pkg/balance"
	"github.com/propellerswap/propeller/pkg/chain"
	"github.com/propellerswap/propeller/pkg/swap"
	"github.com/propellerswap/propeller/pkg/swapstore"
)

// Swapper starts swaps and exposes the one in flight.
type Swapper interface {
	Start(ctx context.Context, req swap.Request) (swap.Snapshot, error)
	Current() (swap.Snapshot, bool)
}

// SwapLookup reads journaled swaps.
type SwapLookup interface {
	GetSwap(ctx context.Context, id string) (*swap.Snapshot, error)
}

// BalanceReader reads cached balances.
type BalanceReader interface {
	Get(ctx context.Context, key balance.Key) (*big.Int, error)
}

// AssetLookup resolves chain and token metadata.
type AssetLookup interface {
	Chain(id asset.ChainID) (asset.ChainInfo, error)
	Asset(chainID asset.ChainID, project asset.Project) (asset.ChainAsset, error)
}

type handler struct {
	swaps    Swapper
	journal  SwapLookup
	balances BalanceReader
	assets   AssetLookup
	logger   *zap.Logger
}

// RegisterRoutes mounts the swap API under /api/v1. journal may be nil.
func RegisterRoutes(r chi.Router, swaps Swapper, journal SwapLookup, balances BalanceReader, assets AssetLookup, logger *zap.Logger) {
	h := &handler{swaps: swaps, journal: journal, balances: balances, assets: assets, logger: logger}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/swaps", apphttp.HandleError(logger, h.submit))
		r.Get("/swaps/current", apphttp.HandleError(logger, h.current))
		r.Get("/swaps/{id}", apphttp.HandleError(logger, h.get))
		r.Get("/balances/{chain}", apphttp.HandleError(logger, h.getBalances))
	})
}

type swapRequest struct {
	SourceChain  string           `json:"sourceChain"`
	SourceToken  string           `json:"sourceToken"`
	TargetChain  string           `json:"targetChain"`
	TargetToken  string           `json:"targetToken"`
	InputAmount  decimal.Decimal  `json:"inputAmount"`
	MaxFee       decimal.Decimal  `json:"maxPropellerFee"`
	GasKickstart bool             `json:"gasKickstart"`
	Overrides    *chain.Overrides `json:"overrides,omitempty"`
}

func (r swapRequest) toRequest() (swap.Request, error) {
	source, err := asset.ParseChainID(r.SourceChain)
	if err != nil {
		return swap.Request{}, apperrors.BadRequestError(err, "invalid sourceChain")
	}
	target, err := asset.ParseChainID(r.TargetChain)
	if err != nil {
		return swap.Request{}, apperrors.BadRequestError(err, "invalid targetChain")
	}
	return swap.Request{
		SourceChain:  source,
		SourceToken:  asset.Project(r.SourceToken),
		TargetChain:  target,
		TargetToken:  asset.Project(r.TargetToken),
		InputAmount:  r.InputAmount,
		MaxFee:       r.MaxFee,
		GasKickstart: r.GasKickstart,
		Overrides:    r.Overrides,
	}, nil
}

func (h *handler) submit(w http.ResponseWriter, r *http.Request) error {
	var body swapRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return apperrors.BadRequestError(err, "invalid request body")
	}
	req, err := body.toRequest()
	if err != nil {
		return err
	}

	snap, err := h.swaps.Start(r.Context(), req)
	if err != nil {
		return submitError(err)
	}

	h.logger.Info("Swap accepted", zap.String("swap_id", snap.ID), zap.String("route", snap.Route))
	apphttp.WriteJSON(w, http.StatusAccepted, snap)
	return nil
}

// submitError maps orchestrator rejections. Request and catalog problems are
// the caller's; chain failures during planning are not.
func submitError(err error) error {
	switch swap.FailureReason(err) {
	case swap.ReasonInvalidRequest, swap.ReasonInvalidToken, swap.ReasonUnsupportedRoute:
		return apperrors.BadRequestError(err, err.Error())
	}
	if errors.Is(err, swap.ErrSwapInProgress) {
		return apperrors.ConflictError(err, "a swap is already in progress")
	}
	return apperrors.GeneralError(err)
}

func (h *handler) current(w http.ResponseWriter, _ *http.Request) error {
	snap, ok := h.swaps.Current()
	if !ok {
		return apperrors.ResourceNotFoundError(nil, "no swap has been submitted")
	}
	apphttp.WriteJSON(w, http.StatusOK, snap)
	return nil
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")

	if snap, ok := h.swaps.Current(); ok && snap.ID == id {
		apphttp.WriteJSON(w, http.StatusOK, snap)
		return nil
	}
	if h.journal == nil {
		return apperrors.ResourceNotFoundError(nil, "swap not found")
	}

	snap, err := h.journal.GetSwap(r.Context(), id)
	if err != nil {
		if errors.Is(err, swapstore.ErrSwapNotFound) {
			return apperrors.ResourceNotFoundError(err, "swap not found")
		}
		return apperrors.DependencyError(err, "swap journal unavailable")
	}
	apphttp.WriteJSON(w, http.StatusOK, snap)
	return nil
}

type balanceResponse struct {
	Chain  string `json:"chain"`
	Gas    string `json:"gas"`
	Token  string `json:"token,omitempty"`
	Amount string `json:"amount,omitempty"`
}

func (h *handler) getBalances(w http.ResponseWriter, r *http.Request) error {
	chainID, err := asset.ParseChainID(chi.URLParam(r, "chain"))
	if err != nil {
		return apperrors.BadRequestError(err, "invalid chain")
	}
	info, err := h.assets.Chain(chainID)
	if err != nil {
		return apperrors.ResourceNotFoundError(err, "unknown chain")
	}

	gas, err := h.balances.Get(r.Context(), balance.GasKey(chainID))
	if err != nil {
		return balanceError(err)
	}
	resp := balanceResponse{Chain: info.Name, Gas: asset.FormatAtomic(gas, info.GasDecimals)}

	if token := r.URL.Query().Get("token"); token != "" {
		a, err := h.assets.Asset(chainID, asset.Project(token))
		if err != nil {
			return apperrors.ResourceNotFoundError(err, "unknown token")
		}
		amount, err := h.balances.Get(r.Context(), balance.TokenKey(chainID, a.Project))
		if err != nil {
			return balanceError(err)
		}
		resp.Token = string(a.Project)
		resp.Amount = asset.FormatAtomic(amount, a.Decimals)
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func balanceError(err error) error {
	if errors.Is(err, chain.ErrWalletNotConnected) {
		return apperrors.UnavailableError(err, "wallet not connected")
	}
	return apperrors.DependencyError(err, "failed to read balance")
}
