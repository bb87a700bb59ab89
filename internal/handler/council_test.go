package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

func TestHandleCreateProposal(t *testing.T) {
	t.Run("Success escrows the bond", func(t *testing.T) {
		api := newTestAPI(t)
		p := api.createProposal(t)

		assert.Equal(t, domain.ProposalStatusActive, p.Status)
		assert.Equal(t, domain.DefaultProposalStake, p.Stake)
		assert.Equal(t, p.PassPrice, p.FailPrice)
		assert.Equal(t, domain.DefaultProposalStake, api.store.Balance(p.EscrowAccount()))
	})

	t.Run("Market name too long", func(t *testing.T) {
		api := newTestAPI(t)
		rec := api.do(t, http.MethodPost, "/api/v1/proposals", CreateProposalRequest{
			ProposerID: "alice",
			MarketName: strings.Repeat("x", 65),
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[ValidationErrorResponse](t, rec).Fields, "marketname")
	})

	t.Run("Blank market name", func(t *testing.T) {
		api := newTestAPI(t)
		rec := api.do(t, http.MethodPost, "/api/v1/proposals", CreateProposalRequest{
			ProposerID: "alice",
			MarketName: "   ",
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domain.ErrMsgInvalidMarketName, decode[ErrorResponse](t, rec).Error)
	})

	t.Run("Missing feed id", func(t *testing.T) {
		api := newTestAPI(t)
		rec := api.do(t, http.MethodPost, "/api/v1/proposals", CreateProposalRequest{
			ProposerID: "alice",
			MarketName: "DOGE/USD",
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domain.ErrMsgInvalidFeedID, decode[ErrorResponse](t, rec).Error)
	})

	t.Run("Market already tradable", func(t *testing.T) {
		api := newTestAPI(t)
		rec := api.do(t, http.MethodPost, "/api/v1/proposals", CreateProposalRequest{
			ProposerID: "alice",
			MarketName: testSymbol,
			FeedID:     testFeedID,
		})

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, domain.ErrMsgMarketAlreadyListed, decode[ErrorResponse](t, rec).Error)
	})

	t.Run("Voting period out of range", func(t *testing.T) {
		api := newTestAPI(t)
		rec := api.do(t, http.MethodPost, "/api/v1/proposals", CreateProposalRequest{
			ProposerID:          "alice",
			MarketName:          "DOGE/USD",
			FeedID:              testDogeFeed,
			VotingPeriodSeconds: 1,
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domain.ErrMsgInvalidVotingPeriod, decode[ErrorResponse](t, rec).Error)
	})
}

func TestHandleTrade(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProposal(t)
	base := "/api/v1/proposals/" + p.ID.String()

	t.Run("Buy pass", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, base+"/trade", TradeRequest{VoterID: "bob", Side: string(domain.OutcomePass), Amount: 10_000_000})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		updated := decode[domain.Proposal](t, rec)
		assert.Equal(t, uint64(10_000_000), updated.PassPool)
		assert.Zero(t, updated.FailPool)
		assert.Equal(t, 1, updated.PassVoters)
		assert.Greater(t, updated.PassPrice, updated.FailPrice)
	})

	t.Run("Unknown side", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, base+"/trade", TradeRequest{VoterID: "bob", Side: "Maybe", Amount: 10_000_000})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[ValidationErrorResponse](t, rec).Fields, "side")
	})

	t.Run("Amount below minimum", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, base+"/trade", TradeRequest{VoterID: "bob", Side: string(domain.OutcomeFail), Amount: domain.MinTradeAmount - 1})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domain.ErrMsgTradeAmountTooSmall, decode[ErrorResponse](t, rec).Error)
	})

	t.Run("Votes list the position", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, base+"/votes", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		votes := decode[[]domain.Vote](t, rec)
		require.Len(t, votes, 1)
		assert.Equal(t, "bob", votes[0].VoterID)
		assert.Equal(t, uint64(10_000_000), votes[0].PassAmount)
	})

	t.Run("Unknown proposal", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/v1/proposals/"+uuid.NewString()+"/trade", TradeRequest{VoterID: "bob", Side: string(domain.OutcomePass), Amount: 10_000_000})
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, domain.ErrMsgProposalNotFound, decode[ErrorResponse](t, rec).Error)
	})
}

func TestHandleProposalLifecycleConflicts(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProposal(t)
	base := "/api/v1/proposals/" + p.ID.String()

	t.Run("Resolve during voting", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, base+"/resolve", nil)
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, domain.ErrMsgVotingPeriodNotEnded, decode[ErrorResponse](t, rec).Error)
	})

	t.Run("Execute an active proposal", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, base+"/execute", nil)
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, domain.ErrMsgProposalNotResolved, decode[ErrorResponse](t, rec).Error)
	})

	t.Run("Claim before resolution", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, base+"/claim", VoterRequest{VoterID: "bob"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Cancel by stranger", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, base+"/cancel", CallerRequest{CallerID: "mallory"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Cancel after voting started", func(t *testing.T) {
		require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, base+"/trade", TradeRequest{VoterID: "bob", Side: string(domain.OutcomeFail), Amount: 5_000_000}).Code)

		rec := api.do(t, http.MethodPost, base+"/cancel", CallerRequest{CallerID: "alice"})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, domain.ErrMsgCannotCancelAfterVoting, decode[ErrorResponse](t, rec).Error)
	})

	t.Run("Cancel untraded proposal refunds the bond", func(t *testing.T) {
		other := api.createProposal(t)
		rec := api.do(t, http.MethodPost, "/api/v1/proposals/"+other.ID.String()+"/cancel", CallerRequest{CallerID: "alice"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.Equal(t, domain.ProposalStatusCancelled, decode[domain.Proposal](t, rec).Status)
		assert.Zero(t, api.store.Balance(other.EscrowAccount()))
	})
}

func TestHandleListProposals(t *testing.T) {
	api := newTestAPI(t)
	api.createProposal(t)
	cancelled := api.createProposal(t)
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/v1/proposals/"+cancelled.ID.String()+"/cancel", CallerRequest{CallerID: "alice"}).Code)

	rec := api.do(t, http.MethodGet, "/api/v1/proposals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Proposal](t, rec), 2)

	rec = api.do(t, http.MethodGet, "/api/v1/proposals?status=Cancelled", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]domain.Proposal](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, cancelled.ID, list[0].ID)

	rec = api.do(t, http.MethodGet, "/api/v1/proposals?status=Maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetProposal(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProposal(t)

	rec := api.do(t, http.MethodGet, "/api/v1/proposals/"+p.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, p.ID, decode[domain.Proposal](t, rec).ID)

	rec = api.do(t, http.MethodGet, "/api/v1/proposals/nope", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrMsgInvalidProposalID, decode[ErrorResponse](t, rec).Error)

	rec = api.do(t, http.MethodGet, "/api/v1/proposals/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
