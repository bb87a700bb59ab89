package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/FateProtocol_Go/internal/admin"
	"github.com/osse101/FateProtocol_Go/internal/arena"
	"github.com/osse101/FateProtocol_Go/internal/council"
	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// AdminHandler serves protocol administration: config, pause, and the unstick paths
type AdminHandler struct {
	admin     admin.Service
	matches   arena.Service
	proposals council.Service
}

// NewAdminHandler creates an AdminHandler
func NewAdminHandler(adminSvc admin.Service, matches arena.Service, proposals council.Service) *AdminHandler {
	return &AdminHandler{admin: adminSvc, matches: matches, proposals: proposals}
}

// UpdateConfigRequest is the body of PUT /admin/config; omitted fields are unchanged
type UpdateConfigRequest struct {
	FeeBps            *uint16 `json:"fee_bps,omitempty" validate:"omitempty,lte=1000"`
	Treasury          *string `json:"treasury,omitempty" validate:"omitempty,participant"`
	ProposalStake     *uint64 `json:"proposal_stake,omitempty" validate:"omitempty,gt=0"`
	ProposerBonusBps  *uint16 `json:"proposer_bonus_bps,omitempty" validate:"omitempty,lte=10000"`
	MaxPriceImpactBps *uint16 `json:"max_price_impact_bps,omitempty" validate:"omitempty,lte=10000"`
}

// PauseRequest toggles the protocol pause flag
type PauseRequest struct {
	Paused *bool `json:"paused" validate:"required"`
}

// BalanceResponse reports one ledger account
type BalanceResponse struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

// HandleGetConfig returns the global config
// @Summary Get global config
// @Tags admin
// @Produce json
// @Success 200 {object} domain.GlobalConfig
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/admin/config [get]
func (h *AdminHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.admin.GetConfig(r.Context())
	if err != nil {
		respondServiceError(w, r, "Get config", err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// HandleUpdateConfig changes fee parameters or the treasury
// @Summary Update global config
// @Tags admin
// @Accept json
// @Produce json
// @Param request body UpdateConfigRequest true "Changes"
// @Success 200 {object} domain.GlobalConfig
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/admin/config [put]
func (h *AdminHandler) HandleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	handleAction(w, r, "Update config", http.StatusOK, func(ctx context.Context, req UpdateConfigRequest) (*domain.GlobalConfig, error) {
		return h.admin.UpdateConfig(ctx, domain.ConfigUpdate{
			FeeBps:            req.FeeBps,
			Treasury:          req.Treasury,
			ProposalStake:     req.ProposalStake,
			ProposerBonusBps:  req.ProposerBonusBps,
			MaxPriceImpactBps: req.MaxPriceImpactBps,
		})
	})
}

// HandlePause sets or clears the pause flag
// @Summary Pause or resume the protocol
// @Tags admin
// @Accept json
// @Produce json
// @Param request body PauseRequest true "Pause flag"
// @Success 200 {object} DataResponse
// @Router /api/v1/admin/pause [post]
func (h *AdminHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	var req PauseRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Pause"); err != nil {
		return
	}
	cfg, err := h.admin.SetPaused(r.Context(), *req.Paused)
	if err != nil {
		respondServiceError(w, r, "Pause", err)
		return
	}
	msg := MsgProtocolResumed
	if cfg.Paused {
		msg = MsgProtocolPaused
	}
	respondJSON(w, http.StatusOK, DataResponse{Message: msg, Data: cfg})
}

// HandleVoidMatch refunds a match stuck past its resolution deadline
// @Summary Void match
// @Tags admin
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} domain.Match
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/admin/matches/{id}/void [post]
func (h *AdminHandler) HandleVoidMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidMatchID)
	if !ok {
		return
	}
	m, err := h.matches.VoidMatch(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, "Void match", err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// HandleSweepMatch moves a settled match's residual dust to the treasury
// @Summary Sweep match residual
// @Tags admin
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} domain.ResidualResult
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/admin/matches/{id}/sweep [post]
func (h *AdminHandler) HandleSweepMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidMatchID)
	if !ok {
		return
	}
	res, err := h.matches.SweepResidual(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, "Sweep match", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// HandleSweepProposal moves a settled proposal's residual dust to the treasury
// @Summary Sweep proposal residual
// @Tags admin
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} domain.ResidualResult
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/admin/proposals/{id}/sweep [post]
func (h *AdminHandler) HandleSweepProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidProposalID)
	if !ok {
		return
	}
	res, err := h.proposals.SweepResidual(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, "Sweep proposal", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// HandleGetBalance reports a ledger account balance
// @Summary Get ledger balance
// @Tags admin
// @Produce json
// @Param account path string true "Ledger account"
// @Success 200 {object} BalanceResponse
// @Router /api/v1/admin/balances/{account} [get]
func (h *AdminHandler) HandleGetBalance(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	bal, err := h.admin.GetBalance(r.Context(), account)
	if err != nil {
		respondServiceError(w, r, "Get balance", err)
		return
	}
	respondJSON(w, http.StatusOK, BalanceResponse{Account: account, Balance: bal})
}

// HandleListTransfers pages through the escrow transfer log, newest first
// @Summary List escrow transfers
// @Tags admin
// @Produce json
// @Param account query string false "Only transfers touching this account"
// @Param limit query int false "Page size"
// @Success 200 {array} domain.EscrowTransfer
// @Router /api/v1/admin/transfers [get]
func (h *AdminHandler) HandleListTransfers(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	transfers, err := h.admin.ListTransfers(r.Context(), GetOptionalQueryParam(r, "account", ""), limit)
	if err != nil {
		respondServiceError(w, r, "List transfers", err)
		return
	}
	if transfers == nil {
		transfers = []domain.EscrowTransfer{}
	}
	respondJSON(w, http.StatusOK, transfers)
}
