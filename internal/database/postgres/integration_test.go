package postgres

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FateProtocol_Go/internal/council"
	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/repository"
)

func ensureConfig(t *testing.T, repo *ConfigRepository) {
	t.Helper()
	_, err := repo.InitConfig(context.Background(), &domain.GlobalConfig{
		FeeBps:           domain.DefaultPlatformFeeBps,
		Treasury:         domain.DefaultTreasury,
		ProposalStake:    domain.DefaultProposalStake,
		ProposerBonusBps: domain.DefaultProposerBonus,
		UpdatedAt:        time.Now().UTC(),
	})
	require.NoError(t, err)
}

func newTestMatch(now time.Time) *domain.Match {
	return &domain.Match{
		ID:               uuid.New(),
		CreatorID:        "creator",
		MarketSymbol:     "SOL/USD",
		FeedID:           "ef0d8b6fda2ceba41da15d4095d1da392a0d2f8ed0c6c7bc0f4cfac8c280b56d",
		MarketType:       domain.MarketTypePriceDirection,
		EntryFee:         1_000_000,
		FeeBps:           250,
		MaxPlayers:       3,
		Status:           domain.MatchStatusOpen,
		Outcome:          domain.PendingOutcome(),
		PredictionWindow: time.Minute,
		Duration:         5 * time.Minute,
		CreatedAt:        now,
		ResolutionTime:   now.Add(6 * time.Minute),
	}
}

func TestConfigRepository_InitOnce(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := NewConfigRepository(db)

	ensureConfig(t, repo)
	inserted, err := repo.InitConfig(ctx, &domain.GlobalConfig{FeeBps: 999, Treasury: "other", UpdatedAt: time.Now()})
	require.NoError(t, err)
	assert.False(t, inserted)

	cfg, err := repo.GetConfig(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.NotEqual(t, uint16(999), cfg.FeeBps)
}

func TestLedger_DepositWithdrawTransfer(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := NewConfigRepository(db)
	matches := NewMatchRepository(db)

	account := domain.MatchEscrowAccount(uuid.New())
	sink := "sink:" + uuid.NewString()

	tx, err := matches.BeginMatchTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, tx)

	require.NoError(t, tx.Deposit(ctx, account, "alice", domain.TransferDeposit, 1_000_000))
	require.NoError(t, tx.Deposit(ctx, account, "bob", domain.TransferDeposit, 1_000_000))
	err = tx.Withdraw(ctx, account, "alice", domain.TransferPayout, 3_000_000)
	assert.ErrorIs(t, err, domain.ErrInsufficientEscrow)
	require.NoError(t, tx.Withdraw(ctx, account, "alice", domain.TransferPayout, 1_500_000))
	require.NoError(t, tx.Transfer(ctx, account, sink, domain.TransferFeeSweep, 500_000))

	bal, err := tx.EscrowBalance(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bal)
	require.NoError(t, tx.Commit(ctx))

	sinkBal, err := repo.GetEscrowBalance(ctx, sink)
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000), sinkBal)

	transfers, err := repo.ListTransfers(ctx, account, 10)
	require.NoError(t, err)
	assert.Len(t, transfers, 4)
}

func TestMatchRepository_Lifecycle(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := NewMatchRepository(db)
	now := time.Now().UTC().Truncate(time.Microsecond)
	m := newTestMatch(now)

	tx, err := repo.BeginMatchTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, tx)

	require.NoError(t, tx.CreateMatch(ctx, m))
	entry := &domain.Entry{MatchID: m.ID, PlayerID: "alice", Stake: m.EntryFee, JoinedAt: now}
	require.NoError(t, tx.AddEntry(ctx, entry))
	require.NoError(t, tx.Commit(ctx))

	tx2, err := repo.BeginMatchTx(ctx)
	require.NoError(t, err)
	err = tx2.AddEntry(ctx, entry)
	assert.ErrorIs(t, err, domain.ErrPlayerAlreadyJoined)
	repository.SafeRollback(ctx, tx2)

	tx3, err := repo.BeginMatchTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, tx3)

	require.NoError(t, tx3.UpdateMatchPot(ctx, m.ID, 1, m.EntryFee))
	n, err := tx3.StartMatch(ctx, m.ID, 150_000_000, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = tx3.StartMatch(ctx, m.ID, 1, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "start is a compare-and-swap on Open")

	n, err = tx3.LockPrediction(ctx, m.ID, "alice", domain.SideHigher, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = tx3.LockPrediction(ctx, m.ID, "alice", domain.SideLower, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	require.NoError(t, tx3.IncrementSideCount(ctx, m.ID, domain.SideHigher))
	require.NoError(t, tx3.IncrementSideCount(ctx, m.ID, domain.SideHigher))
	count, err := tx3.GetSideCount(ctx, m.ID, domain.SideHigher)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	end := uint64(151_000_000)
	n, err = tx3.CompleteMatch(ctx, m.ID, domain.MatchStatusInProgress, domain.WinningOutcome(domain.SideHigher), &end, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = tx3.MarkEntryClaimed(ctx, m.ID, "alice", 975_000, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = tx3.MarkEntryClaimed(ctx, m.ID, "alice", 975_000, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	require.NoError(t, tx3.RecordMatchClaim(ctx, m.ID, true))
	require.NoError(t, tx3.Commit(ctx))

	got, err := repo.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.MatchStatusCompleted, got.Status)
	side, ok := got.Outcome.Winner()
	assert.True(t, ok)
	assert.Equal(t, domain.SideHigher, side)
	require.NotNil(t, got.EndPrice)
	assert.Equal(t, end, *got.EndPrice)
	assert.True(t, got.FeeSwept)
	assert.Equal(t, 1, got.ClaimedCount)
	assert.Equal(t, time.Minute, got.PredictionWindow)

	e, err := repo.GetEntry(ctx, m.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, e.Prediction)
	assert.Equal(t, domain.SideHigher, *e.Prediction)
	require.NotNil(t, e.Winnings)
	assert.Equal(t, uint64(975_000), *e.Winnings)

	missing, err := repo.GetMatch(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMatchRepository_RefundOutcomePersists(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := NewMatchRepository(db)
	m := newTestMatch(time.Now().UTC())

	tx, err := repo.BeginMatchTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, tx)
	require.NoError(t, tx.CreateMatch(ctx, m))
	n, err := tx.CompleteMatch(ctx, m.ID, domain.MatchStatusOpen, domain.RefundOutcome(domain.RefundReasonVoided), nil, time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.NoError(t, tx.Commit(ctx))

	got, err := repo.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.Outcome.IsRefund())
	assert.Equal(t, domain.RefundReasonVoided, got.Outcome.RefundReason())
	assert.Nil(t, got.EndPrice)
}

func TestMatchRepository_ConcurrentClaimOnlyOnce(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := NewMatchRepository(db)
	m := newTestMatch(time.Now().UTC())

	tx, err := repo.BeginMatchTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateMatch(ctx, m))
	require.NoError(t, tx.AddEntry(ctx, &domain.Entry{MatchID: m.ID, PlayerID: "alice", Stake: m.EntryFee, JoinedAt: time.Now()}))
	require.NoError(t, tx.Commit(ctx))

	var wg sync.WaitGroup
	var mu sync.Mutex
	total := int64(0)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := repo.BeginMatchTx(ctx)
			if err != nil {
				return
			}
			defer repository.SafeRollback(ctx, tx)
			if _, err := tx.GetMatchForUpdate(ctx, m.ID); err != nil {
				return
			}
			n, err := tx.MarkEntryClaimed(ctx, m.ID, "alice", 1, time.Now())
			if err != nil {
				return
			}
			if tx.Commit(ctx) == nil {
				mu.Lock()
				total += n
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), total)
}

func TestProposalRepository_Lifecycle(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := NewProposalRepository(db)
	now := time.Now().UTC()

	p := &domain.Proposal{
		ID:           uuid.New(),
		ProposerID:   "prop",
		MarketName:   "DOGE/USD",
		Description:  "list doge",
		Stake:        domain.DefaultProposalStake,
		PassPrice:    5000,
		FailPrice:    5000,
		Status:       domain.ProposalStatusActive,
		CreatedAt:    now,
		VotingEndsAt: now.Add(-time.Second),
	}

	tx, err := repo.BeginProposalTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, tx)
	require.NoError(t, tx.CreateProposal(ctx, p))

	vote := &domain.Vote{ProposalID: p.ID, VoterID: "v1", PassAmount: 7_000_000, CreatedAt: now}
	require.NoError(t, tx.UpsertVote(ctx, vote))
	vote.FailAmount = 1_000_000
	require.NoError(t, tx.UpsertVote(ctx, vote))

	p.PassPool, p.FailPool, p.PassPrice, p.FailPrice, p.PassVoters, p.FailVoters = 7_000_000, 1_000_000, 1250, 8750, 1, 1
	require.NoError(t, tx.UpdateProposalMarket(ctx, p))
	n, err := tx.CancelProposal(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "pools are not empty")
	require.NoError(t, tx.Commit(ctx))

	expired, err := repo.ListExpiredProposals(ctx, now, 100)
	require.NoError(t, err)
	var found bool
	for _, e := range expired {
		found = found || e.ID == p.ID
	}
	assert.True(t, found)

	tx2, err := repo.BeginProposalTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, tx2)
	n, err = tx2.ResolveProposal(ctx, p.ID, domain.ProposalStatusPassed, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = tx2.ExecuteProposal(ctx, p.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = tx2.ExecuteProposal(ctx, p.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	require.NoError(t, tx2.Commit(ctx))

	got, err := repo.GetVote(ctx, p.ID, "v1")
	require.NoError(t, err)
	assert.Equal(t, uint64(7_000_000), got.PassAmount)
	assert.Equal(t, uint64(1_000_000), got.FailAmount)

	stored, err := repo.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusExecuted, stored.Status)
	assert.NotNil(t, stored.ExecutedAt)
}

func TestMatchRepository_DueAndStaleQueries(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := NewMatchRepository(db)
	now := time.Now().UTC().Truncate(time.Microsecond)
	// far from other tests' rows so the windows below only see these matches
	base := now.Add(-240 * time.Hour)

	abandoned := newTestMatch(base)
	abandoned.ResolutionTime = base.Add(-time.Hour)
	missed := newTestMatch(base)
	missed.ResolutionTime = base.Add(-2 * time.Minute)
	due := newTestMatch(base)
	due.ResolutionTime = base.Add(-time.Second)

	tx, err := repo.BeginMatchTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, tx)
	for _, m := range []*domain.Match{abandoned, missed, due} {
		require.NoError(t, tx.CreateMatch(ctx, m))
	}
	for _, m := range []*domain.Match{missed, due} {
		n, err := tx.StartMatch(ctx, m.ID, 1, base)
		require.NoError(t, err)
		require.Equal(t, int64(1), n)
	}
	require.NoError(t, tx.Commit(ctx))

	cutoff := base.Add(-time.Minute)
	dueList, err := repo.ListDueMatches(ctx, cutoff, base, 10)
	require.NoError(t, err)
	require.Len(t, dueList, 1)
	assert.Equal(t, due.ID, dueList[0].ID)

	stale, err := repo.ListStaleMatches(ctx, cutoff, 100)
	require.NoError(t, err)
	ids := make(map[uuid.UUID]bool)
	for _, m := range stale {
		ids[m.ID] = true
	}
	assert.True(t, ids[abandoned.ID])
	assert.True(t, ids[missed.ID])
	assert.False(t, ids[due.ID])
}

func TestProposalService_TradeRacingResolveSettlesCleanly(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	ensureConfig(t, NewConfigRepository(db))
	repo := NewProposalRepository(db)
	svc := council.NewService(repo, nil, nil)

	p, err := svc.CreateProposal(ctx, council.CreateProposalRequest{
		ProposerID: "racer",
		MarketName: "BONK/USD",
		FeedID:     "72b021217ca3fe68922a19aaf990109cb9d84e9ad004b4d2025ad6f529314419",
	})
	require.NoError(t, err)
	_, err = db.Exec(ctx, `UPDATE proposals SET voting_ends_at = NOW() + INTERVAL '200 milliseconds' WHERE proposal_id = $1`, p.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			side := domain.OutcomePass
			if i%2 == 1 {
				side = domain.OutcomeFail
			}
			deadline := time.Now().Add(time.Second)
			for time.Now().Before(deadline) {
				if _, err := svc.TradeOutcome(ctx, p.ID, "trader-"+uuid.NewString()[:8], side, domain.MinTradeAmount); err != nil {
					errs <- err
					return
				}
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			_, err := svc.ResolveProposal(ctx, p.ID)
			if errors.Is(err, domain.ErrVotingPeriodNotEnded) {
				continue
			}
			if err != nil {
				errs <- err
			}
			return
		}
	}()
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.True(t, errors.Is(err, domain.ErrState) || errors.Is(err, domain.ErrValidation),
			"only a clean domain rejection is expected, got %v", err)
	}
	stored, err := repo.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEqual(t, domain.ProposalStatusActive, stored.Status)
}

func TestProposalRepository_ListMarketOncePerSymbol(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := NewProposalRepository(db)
	now := time.Now().UTC().Truncate(time.Microsecond)
	symbol := "L" + strings.ToUpper(uuid.NewString()[:8]) + "/USD"

	newPassed := func() *domain.Proposal {
		return &domain.Proposal{
			ID:           uuid.New(),
			ProposerID:   "prop",
			MarketName:   symbol,
			FeedID:       "0a0408d619e9380abad35060f9192039ed5042fa6f82301d0e48bb52be830996",
			Stake:        domain.DefaultProposalStake,
			PassPrice:    5000,
			FailPrice:    5000,
			Status:       domain.ProposalStatusPassed,
			CreatedAt:    now,
			VotingEndsAt: now,
		}
	}
	first, second := newPassed(), newPassed()

	tx, err := repo.BeginProposalTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, tx)
	require.NoError(t, tx.CreateProposal(ctx, first))
	require.NoError(t, tx.CreateProposal(ctx, second))

	listing := func(p *domain.Proposal) *domain.Market {
		return &domain.Market{Symbol: symbol, FeedID: p.FeedID, Description: "listed", Active: true, ProposalID: &p.ID, ListedAt: &now}
	}
	listed, err := tx.ListMarket(ctx, listing(first))
	require.NoError(t, err)
	assert.True(t, listed)
	listed, err = tx.ListMarket(ctx, listing(second))
	require.NoError(t, err)
	assert.False(t, listed)
	require.NoError(t, tx.Commit(ctx))

	markets, err := repo.ListListedMarkets(ctx)
	require.NoError(t, err)
	var found *domain.Market
	for i := range markets {
		if markets[i].Symbol == symbol {
			found = &markets[i]
		}
	}
	require.NotNil(t, found)
	assert.True(t, found.Active)
	assert.Equal(t, first.ID, *found.ProposalID)
	assert.True(t, now.Equal(*found.ListedAt))
}
