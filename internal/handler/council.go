package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FateProtocol_Go/internal/council"
	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// ProposalHandler serves the futarchy council endpoints
type ProposalHandler struct {
	service council.Service
}

// NewProposalHandler creates a ProposalHandler
func NewProposalHandler(service council.Service) *ProposalHandler {
	return &ProposalHandler{service: service}
}

// CreateProposalRequest is the body of POST /proposals
type CreateProposalRequest struct {
	ProposerID          string `json:"proposer_id" validate:"required,participant"`
	MarketName          string `json:"market_name" validate:"required,max=64"`
	Description         string `json:"description" validate:"max=200"`
	FeedID              string `json:"feed_id,omitempty" validate:"omitempty,max=128"`
	VotingPeriodSeconds int64  `json:"voting_period_seconds,omitempty" validate:"gte=0"`
}

// TradeRequest is the body of POST /proposals/{id}/trade
type TradeRequest struct {
	VoterID string `json:"voter_id" validate:"required,participant"`
	Side    string `json:"side" validate:"required,outcome_side"`
	Amount  uint64 `json:"amount" validate:"required"`
}

// VoterRequest identifies the claiming voter
type VoterRequest struct {
	VoterID string `json:"voter_id" validate:"required,participant"`
}

// HandleCreateProposal opens a proposal market and escrows the bond
// @Summary Create proposal
// @Tags council
// @Accept json
// @Produce json
// @Param request body CreateProposalRequest true "Proposal"
// @Success 201 {object} domain.Proposal
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/proposals [post]
func (h *ProposalHandler) HandleCreateProposal(w http.ResponseWriter, r *http.Request) {
	handleAction(w, r, "Create proposal", http.StatusCreated, func(ctx context.Context, req CreateProposalRequest) (*domain.Proposal, error) {
		return h.service.CreateProposal(ctx, council.CreateProposalRequest{
			ProposerID:   req.ProposerID,
			MarketName:   req.MarketName,
			Description:  req.Description,
			FeedID:       req.FeedID,
			VotingPeriod: time.Duration(req.VotingPeriodSeconds) * time.Second,
		})
	})
}

// HandleTrade buys pass or fail exposure
// @Summary Trade outcome
// @Tags council
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param request body TradeRequest true "Trade"
// @Success 200 {object} domain.Proposal
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/proposals/{id}/trade [post]
func (h *ProposalHandler) HandleTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidProposalID)
	if !ok {
		return
	}
	handleAction(w, r, "Trade outcome", http.StatusOK, func(ctx context.Context, req TradeRequest) (*domain.Proposal, error) {
		return h.service.TradeOutcome(ctx, id, req.VoterID, domain.OutcomeSide(req.Side), req.Amount)
	})
}

// HandleResolveProposal closes voting
// @Summary Resolve proposal
// @Tags council
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} domain.Proposal
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/proposals/{id}/resolve [post]
func (h *ProposalHandler) HandleResolveProposal(w http.ResponseWriter, r *http.Request) {
	h.proposalAction(w, r, "Resolve proposal", h.service.ResolveProposal)
}

// HandleExecuteProposal executes a passed proposal and pays the proposer
// @Summary Execute proposal
// @Tags council
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} domain.Proposal
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/proposals/{id}/execute [post]
func (h *ProposalHandler) HandleExecuteProposal(w http.ResponseWriter, r *http.Request) {
	h.proposalAction(w, r, "Execute proposal", h.service.ExecuteProposal)
}

// HandleCancelProposal cancels an untraded proposal and refunds the bond
// @Summary Cancel proposal
// @Tags council
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param request body CallerRequest true "Proposer"
// @Success 200 {object} domain.Proposal
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/proposals/{id}/cancel [post]
func (h *ProposalHandler) HandleCancelProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidProposalID)
	if !ok {
		return
	}
	handleAction(w, r, "Cancel proposal", http.StatusOK, func(ctx context.Context, req CallerRequest) (*domain.Proposal, error) {
		return h.service.CancelProposal(ctx, id, req.CallerID)
	})
}

// HandleClaimVote pays a voter's winning side
// @Summary Claim vote
// @Tags council
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param request body VoterRequest true "Voter"
// @Success 200 {object} domain.PayoutResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/proposals/{id}/claim [post]
func (h *ProposalHandler) HandleClaimVote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidProposalID)
	if !ok {
		return
	}
	handleAction(w, r, "Claim vote", http.StatusOK, func(ctx context.Context, req VoterRequest) (*domain.PayoutResult, error) {
		return h.service.ClaimVote(ctx, id, req.VoterID)
	})
}

// HandleGetProposal returns one proposal
// @Summary Get proposal
// @Tags council
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} domain.Proposal
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/proposals/{id} [get]
func (h *ProposalHandler) HandleGetProposal(w http.ResponseWriter, r *http.Request) {
	h.proposalAction(w, r, "Get proposal", h.service.GetProposal)
}

// HandleListProposals lists proposals, optionally filtered by ?status
// @Summary List proposals
// @Tags council
// @Produce json
// @Param status query string false "Active, Passed, Rejected, Executed or Cancelled"
// @Param limit query int false "Page size"
// @Success 200 {array} domain.Proposal
// @Router /api/v1/proposals [get]
func (h *ProposalHandler) HandleListProposals(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	filter := domain.ProposalFilter{Limit: limit}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.ProposalStatus(raw)
		switch status {
		case domain.ProposalStatusActive, domain.ProposalStatusPassed, domain.ProposalStatusRejected,
			domain.ProposalStatusExecuted, domain.ProposalStatusCancelled:
			filter.Status = &status
		default:
			respondError(w, http.StatusBadRequest, ErrMsgInvalidStatus)
			return
		}
	}

	proposals, err := h.service.ListProposals(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, "List proposals", err)
		return
	}
	if proposals == nil {
		proposals = []domain.Proposal{}
	}
	respondJSON(w, http.StatusOK, proposals)
}

// HandleGetVotes lists every vote on a proposal
// @Summary List votes
// @Tags council
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {array} domain.Vote
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/proposals/{id}/votes [get]
func (h *ProposalHandler) HandleGetVotes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidProposalID)
	if !ok {
		return
	}
	votes, err := h.service.GetVotes(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, "Get votes", err)
		return
	}
	if votes == nil {
		votes = []domain.Vote{}
	}
	respondJSON(w, http.StatusOK, votes)
}

func (h *ProposalHandler) proposalAction(w http.ResponseWriter, r *http.Request, opName string, action func(context.Context, uuid.UUID) (*domain.Proposal, error)) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidProposalID)
	if !ok {
		return
	}
	p, err := action(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, opName, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
