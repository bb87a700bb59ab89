package council

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FateProtocol_Go/internal/arena"
	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/event"
	"github.com/osse101/FateProtocol_Go/internal/market"
	"github.com/osse101/FateProtocol_Go/internal/oracle"
	"github.com/osse101/FateProtocol_Go/internal/testing/memstore"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) PublishWithRetry(_ context.Context, evt event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) count(t event.Type) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

const (
	jupFeed = "0a0408d619e9380abad35060f9192039ed5042fa6f82301d0e48bb52be830996"
	solFeed = "ef0d8b6fda2ceba41da15d4095d1da392a0d2f8ed0c6c7bc0f4cfac8c280b56d"
)

type harness struct {
	t       *testing.T
	store   *memstore.Store
	markets market.Registry
	pub     *recordingPublisher
	svc     *service
	now     time.Time
}

func newHarness(t *testing.T, cfg domain.GlobalConfig) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		store: memstore.NewWithConfig(cfg),
		pub:   &recordingPublisher{},
		now:   time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
	markets, err := market.New([]domain.Market{{Symbol: "SOL/USD", FeedID: solFeed, Active: true}})
	require.NoError(t, err)
	h.markets = markets
	h.svc = newService(h.store, markets, h.pub)
	h.svc.now = func() time.Time { return h.now }
	return h
}

func (h *harness) propose() *domain.Proposal {
	h.t.Helper()
	p, err := h.svc.CreateProposal(context.Background(), CreateProposalRequest{
		ProposerID:   "proposer",
		MarketName:   "JUP/USD",
		Description:  "List a Jupiter price direction market",
		FeedID:       jupFeed,
		VotingPeriod: time.Hour,
	})
	require.NoError(h.t, err)
	return p
}

func (h *harness) trade(id uuid.UUID, voter string, side domain.OutcomeSide, amount uint64) *domain.Proposal {
	h.t.Helper()
	p, err := h.svc.TradeOutcome(context.Background(), id, voter, side, amount)
	require.NoError(h.t, err)
	return p
}

func (h *harness) resolve(id uuid.UUID) *domain.Proposal {
	h.t.Helper()
	h.now = h.now.Add(time.Hour)
	p, err := h.svc.ResolveProposal(context.Background(), id)
	require.NoError(h.t, err)
	return p
}

func TestCreateProposal_EscrowsBond(t *testing.T) {
	h := newHarness(t, memstore.DefaultConfig())

	p := h.propose()

	assert.Equal(t, domain.ProposalStatusActive, p.Status)
	assert.Equal(t, domain.DefaultProposalStake, p.Stake)
	assert.Equal(t, uint64(5000), p.PassPrice)
	assert.Equal(t, uint64(5000), p.FailPrice)
	assert.Equal(t, h.now.Add(time.Hour), p.VotingEndsAt)
	assert.Equal(t, domain.DefaultProposalStake, h.store.Balance(p.EscrowAccount()))

	cfg, err := h.store.GetConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cfg.TotalProposals)
	assert.Equal(t, 1, h.pub.count(event.ProposalCreated))
}

func TestCreateProposal_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateProposalRequest
		want error
	}{
		{"missing proposer", CreateProposalRequest{MarketName: "JUP/USD", FeedID: jupFeed}, domain.ErrInvalidParticipant},
		{"blank name", CreateProposalRequest{ProposerID: "p", MarketName: "   ", FeedID: jupFeed}, domain.ErrInvalidMarketName},
		{"long name", CreateProposalRequest{ProposerID: "p", MarketName: strings.Repeat("n", domain.MaxMarketNameLength+1), FeedID: jupFeed}, domain.ErrInvalidMarketName},
		{"not a pair", CreateProposalRequest{ProposerID: "p", MarketName: "Jupiter", FeedID: jupFeed}, domain.ErrInvalidMarketName},
		{"long description", CreateProposalRequest{ProposerID: "p", MarketName: "JUP/USD", FeedID: jupFeed, Description: strings.Repeat("d", domain.MaxDescriptionLength+1)}, domain.ErrInvalidMarketDescription},
		{"missing feed", CreateProposalRequest{ProposerID: "p", MarketName: "JUP/USD"}, domain.ErrInvalidFeedID},
		{"short feed", CreateProposalRequest{ProposerID: "p", MarketName: "JUP/USD", FeedID: jupFeed[:40]}, domain.ErrInvalidFeedID},
		{"short voting period", CreateProposalRequest{ProposerID: "p", MarketName: "JUP/USD", FeedID: jupFeed, VotingPeriod: time.Second}, domain.ErrInvalidVotingPeriod},
		{"long voting period", CreateProposalRequest{ProposerID: "p", MarketName: "JUP/USD", FeedID: jupFeed, VotingPeriod: 31 * 24 * time.Hour}, domain.ErrInvalidVotingPeriod},
		{"already tradable", CreateProposalRequest{ProposerID: "p", MarketName: "sol/usd", FeedID: solFeed}, domain.ErrMarketAlreadyListed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, memstore.DefaultConfig())
			_, err := h.svc.CreateProposal(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateProposal_DefaultVotingPeriod(t *testing.T) {
	h := newHarness(t, memstore.DefaultConfig())
	p, err := h.svc.CreateProposal(context.Background(), CreateProposalRequest{ProposerID: "p", MarketName: " jup/usd ", FeedID: "0x" + jupFeed})
	require.NoError(t, err)
	assert.Equal(t, h.now.Add(domain.DefaultVotingPeriod), p.VotingEndsAt)
	assert.Equal(t, "JUP/USD", p.MarketName)
}

func TestTradeOutcome_RepricesPool(t *testing.T) {
	h := newHarness(t, memstore.DefaultConfig())
	p := h.propose()

	h.trade(p.ID, "alice", domain.OutcomePass, 3_000_000)
	got := h.trade(p.ID, "bob", domain.OutcomeFail, 7_000_000)

	assert.Equal(t, uint64(7000), got.PassPrice)
	assert.Equal(t, uint64(3000), got.FailPrice)
	assert.Equal(t, 1, got.PassVoters)
	assert.Equal(t, 1, got.FailVoters)

	// a second trade on the same side does not count a new voter
	got = h.trade(p.ID, "alice", domain.OutcomePass, 1_000_000)
	assert.Equal(t, 1, got.PassVoters)
	assert.Equal(t, uint64(4_000_000), got.PassPool)

	vote, err := h.store.GetVote(context.Background(), p.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.Equal(t, uint64(4_000_000), vote.PassAmount)
	assert.Zero(t, vote.FailAmount)

	assert.Equal(t, domain.DefaultProposalStake+11_000_000, h.store.Balance(p.EscrowAccount()))
	assert.Equal(t, 3, h.pub.count(event.OutcomeTraded))
}

func TestTradeOutcome_Rejections(t *testing.T) {
	h := newHarness(t, memstore.DefaultConfig())
	p := h.propose()
	ctx := context.Background()

	_, err := h.svc.TradeOutcome(ctx, p.ID, "alice", domain.OutcomePass, domain.MinTradeAmount-1)
	assert.ErrorIs(t, err, domain.ErrTradeAmountTooSmall)

	_, err = h.svc.TradeOutcome(ctx, p.ID, "alice", domain.OutcomePass, domain.MaxTradeAmount+1)
	assert.ErrorIs(t, err, domain.ErrTradeAmountTooLarge)

	_, err = h.svc.TradeOutcome(ctx, p.ID, "alice", "Maybe", domain.MinTradeAmount)
	assert.ErrorIs(t, err, domain.ErrInvalidOutcomeSide)

	_, err = h.svc.TradeOutcome(ctx, uuid.New(), "alice", domain.OutcomePass, domain.MinTradeAmount)
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)

	h.now = p.VotingEndsAt
	_, err = h.svc.TradeOutcome(ctx, p.ID, "alice", domain.OutcomePass, domain.MinTradeAmount)
	assert.ErrorIs(t, err, domain.ErrVotingPeriodEnded)
}

func TestTradeOutcome_PriceImpactGuard(t *testing.T) {
	cfg := memstore.DefaultConfig()
	cfg.MaxPriceImpactBps = 1000
	h := newHarness(t, cfg)
	p := h.propose()

	_, err := h.svc.TradeOutcome(context.Background(), p.ID, "whale", domain.OutcomePass, 5_000_000)
	assert.ErrorIs(t, err, domain.ErrPriceImpactTooHigh)
	assert.Equal(t, domain.DefaultProposalStake, h.store.Balance(p.EscrowAccount()))
}

func TestTradeOutcome_Paused(t *testing.T) {
	cfg := memstore.DefaultConfig()
	h := newHarness(t, cfg)
	p := h.propose()

	ctx := context.Background()
	tx, err := h.store.BeginConfigTx(ctx)
	require.NoError(t, err)
	current, err := tx.GetConfigForUpdate(ctx)
	require.NoError(t, err)
	current.Paused = true
	require.NoError(t, tx.SaveConfig(ctx, current))
	require.NoError(t, tx.Commit(ctx))

	_, err = h.svc.TradeOutcome(ctx, p.ID, "alice", domain.OutcomePass, domain.MinTradeAmount)
	assert.ErrorIs(t, err, domain.ErrProtocolPaused)
}

func TestResolveProposal_Timing(t *testing.T) {
	h := newHarness(t, memstore.DefaultConfig())
	p := h.propose()
	ctx := context.Background()

	_, err := h.svc.ResolveProposal(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrVotingPeriodNotEnded)

	// an untraded market sits at 5000/5000 and does not pass
	resolved := h.resolve(p.ID)
	assert.Equal(t, domain.ProposalStatusRejected, resolved.Status)

	_, err = h.svc.ResolveProposal(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrProposalNotActive)
}

func TestProposalLifecycle_Passed(t *testing.T) {
	h := newHarness(t, memstore.DefaultConfig())
	ctx := context.Background()
	p := h.propose()

	h.trade(p.ID, "alice", domain.OutcomePass, 6_000_000)
	h.trade(p.ID, "carol", domain.OutcomePass, 3_000_000)
	h.trade(p.ID, "bob", domain.OutcomeFail, 2_000_000)

	resolved := h.resolve(p.ID)
	assert.Equal(t, domain.ProposalStatusPassed, resolved.Status)
	assert.Equal(t, uint64(1818), resolved.PassPrice)

	_, err := h.svc.SweepResidual(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrClaimsOutstanding)

	// bonus is 1% of 11_000_000 liquidity and the treasury is empty
	_, err = h.svc.ExecuteProposal(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientLiquidity)

	h.store.Fund(domain.DefaultTreasury, 1_000_000)
	executed, err := h.svc.ExecuteProposal(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusExecuted, executed.Status)
	require.NotNil(t, executed.ExecutedAt)
	assert.Equal(t, uint64(890_000), h.store.Balance(domain.DefaultTreasury))
	assert.Equal(t, uint64(11_000_000), h.store.Balance(p.EscrowAccount()))

	_, err = h.svc.ExecuteProposal(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrProposalAlreadyExecuted)

	alice, err := h.svc.ClaimVote(ctx, p.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(7_333_333), alice.Amount)

	_, err = h.svc.ClaimVote(ctx, p.ID, "alice")
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)

	_, err = h.svc.ClaimVote(ctx, p.ID, "bob")
	assert.ErrorIs(t, err, domain.ErrNoWinnings)

	_, err = h.svc.ClaimVote(ctx, p.ID, "nobody")
	assert.ErrorIs(t, err, domain.ErrNoPosition)

	carol, err := h.svc.ClaimVote(ctx, p.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, uint64(3_666_666), carol.Amount)

	residual, err := h.svc.SweepResidual(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), residual.Amount)
	assert.Zero(t, h.store.Balance(p.EscrowAccount()))
	assert.Equal(t, 2, h.pub.count(event.VoteClaimed))
	assert.Equal(t, 1, h.pub.count(event.ProposalExecuted))
	assert.Equal(t, 1, h.pub.count(event.MarketListed))
}

// passedProposal runs a proposal through a passing vote with a funded treasury
func (h *harness) passedProposal(req CreateProposalRequest) *domain.Proposal {
	h.t.Helper()
	p, err := h.svc.CreateProposal(context.Background(), req)
	require.NoError(h.t, err)
	h.trade(p.ID, "alice", domain.OutcomePass, 6_000_000)
	h.trade(p.ID, "bob", domain.OutcomeFail, 2_000_000)
	h.now = h.now.Add(req.VotingPeriod)
	resolved, err := h.svc.ResolveProposal(context.Background(), p.ID)
	require.NoError(h.t, err)
	require.Equal(h.t, domain.ProposalStatusPassed, resolved.Status)
	h.store.Fund(domain.DefaultTreasury, 1_000_000)
	return p
}

func TestExecuteProposal_ListsMarket(t *testing.T) {
	h := newHarness(t, memstore.DefaultConfig())
	ctx := context.Background()
	p := h.passedProposal(CreateProposalRequest{
		ProposerID:   "proposer",
		MarketName:   "JUP/USD",
		Description:  "Jupiter / US Dollar",
		FeedID:       jupFeed,
		VotingPeriod: time.Hour,
	})

	_, err := h.markets.Lookup("JUP/USD")
	require.ErrorIs(t, err, domain.ErrUnknownMarket)

	_, err = h.svc.ExecuteProposal(ctx, p.ID)
	require.NoError(t, err)

	m, err := h.markets.Lookup("JUP/USD")
	require.NoError(t, err)
	assert.Equal(t, jupFeed, m.FeedID)
	require.NotNil(t, m.ProposalID)
	assert.Equal(t, p.ID, *m.ProposalID)

	listed, err := h.store.ListListedMarkets(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "JUP/USD", listed[0].Symbol)
	assert.Equal(t, h.now, *listed[0].ListedAt)
	assert.Equal(t, 1, h.pub.count(event.MarketListed))
}

func TestExecuteProposal_SecondListingOfSymbolIsSkipped(t *testing.T) {
	h := newHarness(t, memstore.DefaultConfig())
	ctx := context.Background()
	req := CreateProposalRequest{ProposerID: "proposer", MarketName: "JUP/USD", FeedID: jupFeed, VotingPeriod: time.Hour}
	first, err := h.svc.CreateProposal(ctx, req)
	require.NoError(t, err)
	h.trade(first.ID, "alice", domain.OutcomePass, 6_000_000)
	h.trade(first.ID, "bob", domain.OutcomeFail, 2_000_000)
	second := h.passedProposal(req)
	h.now = h.now.Add(time.Hour)
	_, err = h.svc.ResolveProposal(ctx, first.ID)
	require.NoError(t, err)

	_, err = h.svc.ExecuteProposal(ctx, first.ID)
	require.NoError(t, err)
	executed, err := h.svc.ExecuteProposal(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusExecuted, executed.Status, "the bond is still returned")

	listed, err := h.store.ListListedMarkets(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, first.ID, *listed[0].ProposalID)
	assert.Equal(t, 1, h.pub.count(event.MarketListed))
}

func TestExecuteProposal_ListedMarketOpensArenaMatches(t *testing.T) {
	h := newHarness(t, memstore.DefaultConfig())
	ctx := context.Background()
	feed := oracle.NewStaticFeed()
	feed.Set(domain.RawQuote{FeedID: jupFeed, Price: 1_250_000, Exponent: -6, PublishTime: time.Now().UTC()})
	matches := arena.NewService(h.store, oracle.NewValidator(feed, oracle.DefaultPolicy()), h.markets, nil, time.Minute)
	create := arena.CreateMatchRequest{
		CreatorID:    "creator",
		MarketSymbol: "JUP/USD",
		MarketType:   domain.MarketTypePriceDirection,
		EntryFee:     domain.MinEntryFee,
		MaxPlayers:   2,
	}

	_, err := matches.CreateMatch(ctx, create)
	require.ErrorIs(t, err, domain.ErrUnknownMarket)

	p := h.passedProposal(CreateProposalRequest{ProposerID: "proposer", MarketName: "JUP/USD", FeedID: jupFeed, VotingPeriod: time.Hour})
	_, err = h.svc.ExecuteProposal(ctx, p.ID)
	require.NoError(t, err)

	m, err := matches.CreateMatch(ctx, create)
	require.NoError(t, err)
	assert.Equal(t, "JUP/USD", m.MarketSymbol)
	assert.Equal(t, jupFeed, m.FeedID)
}

func TestProposalLifecycle_RejectedForfeitsBond(t *testing.T) {
	h := newHarness(t, memstore.DefaultConfig())
	ctx := context.Background()
	p := h.propose()

	h.trade(p.ID, "alice", domain.OutcomePass, 3_000_000)
	h.trade(p.ID, "bob", domain.OutcomeFail, 7_000_000)

	resolved := h.resolve(p.ID)
	assert.Equal(t, domain.ProposalStatusRejected, resolved.Status)
	assert.Equal(t, domain.DefaultProposalStake, h.store.Balance(domain.DefaultTreasury))

	_, err := h.svc.ExecuteProposal(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrProposalDidNotPass)

	bob, err := h.svc.ClaimVote(ctx, p.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), bob.Amount)

	_, err = h.svc.ClaimVote(ctx, p.ID, "alice")
	assert.ErrorIs(t, err, domain.ErrNoWinnings)

	residual, err := h.svc.SweepResidual(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, residual.Amount)

	cfg, err := h.store.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), cfg.TotalVolume)
}

func TestClaimVote_BeforeResolution(t *testing.T) {
	h := newHarness(t, memstore.DefaultConfig())
	p := h.propose()
	h.trade(p.ID, "alice", domain.OutcomePass, 3_000_000)

	_, err := h.svc.ClaimVote(context.Background(), p.ID, "alice")
	assert.ErrorIs(t, err, domain.ErrProposalNotResolved)
}

func TestCancelProposal(t *testing.T) {
	h := newHarness(t, memstore.DefaultConfig())
	ctx := context.Background()

	p := h.propose()
	_, err := h.svc.CancelProposal(ctx, p.ID, "intruder")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	cancelled, err := h.svc.CancelProposal(ctx, p.ID, "proposer")
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusCancelled, cancelled.Status)
	assert.Zero(t, h.store.Balance(p.EscrowAccount()))
	assert.Equal(t, 1, h.pub.count(event.ProposalCancelled))

	_, err = h.svc.CancelProposal(ctx, p.ID, "proposer")
	assert.ErrorIs(t, err, domain.ErrProposalNotActive)

	traded := h.propose()
	h.trade(traded.ID, "alice", domain.OutcomeFail, domain.MinTradeAmount)
	_, err = h.svc.CancelProposal(ctx, traded.ID, "proposer")
	assert.ErrorIs(t, err, domain.ErrCannotCancelAfterVoting)
}

func TestGetVotes(t *testing.T) {
	h := newHarness(t, memstore.DefaultConfig())
	p := h.propose()
	h.trade(p.ID, "bob", domain.OutcomeFail, 2_000_000)
	h.trade(p.ID, "alice", domain.OutcomePass, 2_000_000)

	votes, err := h.svc.GetVotes(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.Equal(t, "alice", votes[0].VoterID)

	_, err = h.svc.GetVotes(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)
}
