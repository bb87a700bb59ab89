package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FateProtocol_Go/internal/arena"
	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// MatchHandler serves the prediction match endpoints
type MatchHandler struct {
	service arena.Service
}

// NewMatchHandler creates a MatchHandler
func NewMatchHandler(service arena.Service) *MatchHandler {
	return &MatchHandler{service: service}
}

// CreateMatchRequest is the body of POST /matches. Durations are in seconds; zero takes the default.
type CreateMatchRequest struct {
	CreatorID               string `json:"creator_id" validate:"required,participant"`
	MarketSymbol            string `json:"market_symbol" validate:"required,max=32"`
	MarketType              string `json:"market_type" validate:"required,market_type"`
	EntryFee                uint64 `json:"entry_fee" validate:"required"`
	MaxPlayers              int    `json:"max_players" validate:"required,gte=2,lte=10"`
	TargetPrice             uint64 `json:"target_price,omitempty"`
	RangeLow                uint64 `json:"range_low,omitempty"`
	RangeHigh               uint64 `json:"range_high,omitempty"`
	DurationSeconds         int64  `json:"duration_seconds,omitempty" validate:"gte=0"`
	PredictionWindowSeconds int64  `json:"prediction_window_seconds,omitempty" validate:"gte=0"`
}

// PlayerRequest identifies the acting player
type PlayerRequest struct {
	PlayerID string `json:"player_id" validate:"required,participant"`
}

// PredictRequest is the body of POST /matches/{id}/predict
type PredictRequest struct {
	PlayerID   string `json:"player_id" validate:"required,participant"`
	Prediction string `json:"prediction" validate:"required,prediction_side"`
}

// CallerRequest identifies the caller of a creator-only action
type CallerRequest struct {
	CallerID string `json:"caller_id" validate:"required,participant"`
}

// MatchDetail bundles a match with its per-side prediction counts
type MatchDetail struct {
	Match      *domain.Match      `json:"match"`
	SideCounts []domain.SideCount `json:"side_counts"`
}

// HandleCreateMatch opens a new match
// @Summary Create match
// @Tags arena
// @Accept json
// @Produce json
// @Param request body CreateMatchRequest true "Match terms"
// @Success 201 {object} domain.Match
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/matches [post]
func (h *MatchHandler) HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	handleAction(w, r, "Create match", http.StatusCreated, func(ctx context.Context, req CreateMatchRequest) (*domain.Match, error) {
		return h.service.CreateMatch(ctx, arena.CreateMatchRequest{
			CreatorID:        req.CreatorID,
			MarketSymbol:     req.MarketSymbol,
			MarketType:       domain.MarketType(req.MarketType),
			EntryFee:         req.EntryFee,
			MaxPlayers:       req.MaxPlayers,
			TargetPrice:      req.TargetPrice,
			RangeLow:         req.RangeLow,
			RangeHigh:        req.RangeHigh,
			Duration:         time.Duration(req.DurationSeconds) * time.Second,
			PredictionWindow: time.Duration(req.PredictionWindowSeconds) * time.Second,
		})
	})
}

// HandleJoinMatch escrows the entry fee for a player
// @Summary Join match
// @Tags arena
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body PlayerRequest true "Player"
// @Success 200 {object} domain.Match
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/matches/{id}/join [post]
func (h *MatchHandler) HandleJoinMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidMatchID)
	if !ok {
		return
	}
	handleAction(w, r, "Join match", http.StatusOK, func(ctx context.Context, req PlayerRequest) (*domain.Match, error) {
		return h.service.JoinMatch(ctx, id, req.PlayerID)
	})
}

// HandlePredict locks in a player's prediction
// @Summary Lock in prediction
// @Tags arena
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body PredictRequest true "Prediction"
// @Success 200 {object} domain.Entry
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/matches/{id}/predict [post]
func (h *MatchHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidMatchID)
	if !ok {
		return
	}
	handleAction(w, r, "Lock prediction", http.StatusOK, func(ctx context.Context, req PredictRequest) (*domain.Entry, error) {
		return h.service.LockInPrediction(ctx, id, req.PlayerID, domain.PredictionSide(req.Prediction))
	})
}

// HandleStartMatch freezes the entry price
// @Summary Start match
// @Tags arena
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} domain.Match
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/matches/{id}/start [post]
func (h *MatchHandler) HandleStartMatch(w http.ResponseWriter, r *http.Request) {
	h.poolAction(w, r, "Start match", h.service.StartMatch)
}

// HandleResolveMatch settles the match against the exit price
// @Summary Resolve match
// @Tags arena
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} domain.Match
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/matches/{id}/resolve [post]
func (h *MatchHandler) HandleResolveMatch(w http.ResponseWriter, r *http.Request) {
	h.poolAction(w, r, "Resolve match", h.service.ResolveMatch)
}

// HandleClaimWinnings pays a player's share once
// @Summary Claim winnings
// @Tags arena
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body PlayerRequest true "Player"
// @Success 200 {object} domain.PayoutResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/matches/{id}/claim [post]
func (h *MatchHandler) HandleClaimWinnings(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidMatchID)
	if !ok {
		return
	}
	handleAction(w, r, "Claim winnings", http.StatusOK, func(ctx context.Context, req PlayerRequest) (*domain.PayoutResult, error) {
		return h.service.ClaimWinnings(ctx, id, req.PlayerID)
	})
}

// HandleCancelMatch cancels an empty open match
// @Summary Cancel match
// @Tags arena
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body CallerRequest true "Creator"
// @Success 200 {object} domain.Match
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/matches/{id}/cancel [post]
func (h *MatchHandler) HandleCancelMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidMatchID)
	if !ok {
		return
	}
	handleAction(w, r, "Cancel match", http.StatusOK, func(ctx context.Context, req CallerRequest) (*domain.Match, error) {
		return h.service.CancelMatch(ctx, id, req.CallerID)
	})
}

// HandleGetMatch returns a match with its side counts
// @Summary Get match
// @Tags arena
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} MatchDetail
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/matches/{id} [get]
func (h *MatchHandler) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidMatchID)
	if !ok {
		return
	}
	m, err := h.service.GetMatch(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, "Get match", err)
		return
	}
	counts, err := h.service.GetSideCounts(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, "Get match", err)
		return
	}
	respondJSON(w, http.StatusOK, MatchDetail{Match: m, SideCounts: counts})
}

// HandleListMatches lists matches, optionally filtered by ?status
// @Summary List matches
// @Tags arena
// @Produce json
// @Param status query string false "Open, InProgress, Completed or Cancelled"
// @Param limit query int false "Page size"
// @Success 200 {array} domain.Match
// @Router /api/v1/matches [get]
func (h *MatchHandler) HandleListMatches(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	filter := domain.MatchFilter{Limit: limit}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.MatchStatus(raw)
		switch status {
		case domain.MatchStatusOpen, domain.MatchStatusInProgress, domain.MatchStatusCompleted, domain.MatchStatusCancelled:
			filter.Status = &status
		default:
			respondError(w, http.StatusBadRequest, ErrMsgInvalidStatus)
			return
		}
	}

	matches, err := h.service.ListMatches(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, "List matches", err)
		return
	}
	if matches == nil {
		matches = []domain.Match{}
	}
	respondJSON(w, http.StatusOK, matches)
}

// HandleGetEntries lists every position in a match
// @Summary List match entries
// @Tags arena
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {array} domain.Entry
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/matches/{id}/entries [get]
func (h *MatchHandler) HandleGetEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidMatchID)
	if !ok {
		return
	}
	entries, err := h.service.GetEntries(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, "Get entries", err)
		return
	}
	if entries == nil {
		entries = []domain.Entry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// poolAction runs a body-less action on the match in the {id} route parameter
func (h *MatchHandler) poolAction(w http.ResponseWriter, r *http.Request, opName string, action func(context.Context, uuid.UUID) (*domain.Match, error)) {
	id, ok := parseIDParam(w, r, "id", ErrMsgInvalidMatchID)
	if !ok {
		return
	}
	m, err := action(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, opName, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}
