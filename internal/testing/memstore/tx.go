package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/payout"
)

// storeTx implements repository.MatchTx, repository.ProposalTx and repository.AdminTx
type storeTx struct {
	store *Store
	st    *state
	done  bool
}

func (t *storeTx) Commit(_ context.Context) error {
	if t.done {
		return ErrTxClosed
	}
	t.done = true
	t.store.dataMu.Lock()
	t.store.st = t.st
	t.store.dataMu.Unlock()
	t.store.txMu.Unlock()
	return nil
}

func (t *storeTx) Rollback(_ context.Context) error {
	if t.done {
		return ErrTxClosed
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

// ---- Ledger ----

func (t *storeTx) credit(account string, amount uint64) error {
	next, err := payout.Add(t.st.balances[account], amount)
	if err != nil {
		return err
	}
	t.st.balances[account] = next
	return nil
}

func (t *storeTx) debit(account string, amount uint64) error {
	if t.st.balances[account] < amount {
		return domain.ErrInsufficientEscrow
	}
	t.st.balances[account] -= amount
	return nil
}

func (t *storeTx) record(source, destination string, kind domain.TransferKind, amount uint64) {
	t.st.transfers = append(t.st.transfers, domain.EscrowTransfer{
		ID:          uuid.New(),
		Source:      source,
		Destination: destination,
		Kind:        kind,
		Amount:      amount,
		CreatedAt:   time.Now().UTC(),
	})
}

func (t *storeTx) Deposit(_ context.Context, account, source string, kind domain.TransferKind, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := t.credit(account, amount); err != nil {
		return err
	}
	t.record(source, account, kind, amount)
	return nil
}

func (t *storeTx) Withdraw(_ context.Context, account, destination string, kind domain.TransferKind, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := t.debit(account, amount); err != nil {
		return err
	}
	t.record(account, destination, kind, amount)
	return nil
}

func (t *storeTx) Transfer(_ context.Context, from, to string, kind domain.TransferKind, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := t.debit(from, amount); err != nil {
		return err
	}
	if err := t.credit(to, amount); err != nil {
		return err
	}
	t.record(from, to, kind, amount)
	return nil
}

func (t *storeTx) EscrowBalance(_ context.Context, account string) (uint64, error) {
	return t.st.balances[account], nil
}

func (t *storeTx) ReadConfig(ctx context.Context) (*domain.GlobalConfig, error) {
	return t.GetConfigForUpdate(ctx)
}

func (t *storeTx) GetConfigForUpdate(_ context.Context) (*domain.GlobalConfig, error) {
	if t.st.config == nil {
		return nil, nil
	}
	cfg := *t.st.config
	return &cfg, nil
}

func (t *storeTx) AddTotals(_ context.Context, delta domain.TotalsDelta) error {
	if t.st.config == nil {
		return nil
	}
	t.st.config.TotalVolume += delta.Volume
	t.st.config.TotalFees += delta.Fees
	t.st.config.TotalMatches += delta.Matches
	t.st.config.TotalProposals += delta.Proposals
	return nil
}

func (t *storeTx) SaveConfig(_ context.Context, cfg *domain.GlobalConfig) error {
	if t.st.config == nil {
		return nil
	}
	next := *t.st.config
	next.FeeBps = cfg.FeeBps
	next.Treasury = cfg.Treasury
	next.Paused = cfg.Paused
	next.ProposalStake = cfg.ProposalStake
	next.ProposerBonusBps = cfg.ProposerBonusBps
	next.MaxPriceImpactBps = cfg.MaxPriceImpactBps
	next.UpdatedAt = cfg.UpdatedAt
	t.st.config = &next
	return nil
}

// ---- Matches ----

func (t *storeTx) CreateMatch(_ context.Context, m *domain.Match) error {
	t.st.matches[m.ID] = *m
	return nil
}

func (t *storeTx) GetMatchForUpdate(_ context.Context, id uuid.UUID) (*domain.Match, error) {
	m, ok := t.st.matches[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (t *storeTx) UpdateMatchPot(_ context.Context, id uuid.UUID, players int, pot uint64) error {
	m := t.st.matches[id]
	m.CurrentPlayers = players
	m.TotalPot = pot
	t.st.matches[id] = m
	return nil
}

func (t *storeTx) StartMatch(_ context.Context, id uuid.UUID, startPrice uint64, startedAt time.Time) (int64, error) {
	m, ok := t.st.matches[id]
	if !ok || m.Status != domain.MatchStatusOpen {
		return 0, nil
	}
	m.Status = domain.MatchStatusInProgress
	m.StartPrice = &startPrice
	m.StartedAt = &startedAt
	t.st.matches[id] = m
	return 1, nil
}

func (t *storeTx) CompleteMatch(_ context.Context, id uuid.UUID, expected domain.MatchStatus, outcome domain.Outcome, endPrice *uint64, resolvedAt time.Time) (int64, error) {
	m, ok := t.st.matches[id]
	if !ok || m.Status != expected {
		return 0, nil
	}
	m.Status = domain.MatchStatusCompleted
	m.Outcome = outcome
	if endPrice != nil {
		p := *endPrice
		m.EndPrice = &p
	}
	m.ResolvedAt = &resolvedAt
	t.st.matches[id] = m
	return 1, nil
}

func (t *storeTx) CancelMatch(_ context.Context, id uuid.UUID) (int64, error) {
	m, ok := t.st.matches[id]
	if !ok || m.Status != domain.MatchStatusOpen || m.TotalPot != 0 {
		return 0, nil
	}
	m.Status = domain.MatchStatusCancelled
	t.st.matches[id] = m
	return 1, nil
}

func (t *storeTx) AddEntry(_ context.Context, e *domain.Entry) error {
	if t.st.entries[e.MatchID] == nil {
		t.st.entries[e.MatchID] = make(map[string]domain.Entry)
	}
	if _, exists := t.st.entries[e.MatchID][e.PlayerID]; exists {
		return domain.ErrPlayerAlreadyJoined
	}
	t.st.entries[e.MatchID][e.PlayerID] = *e
	return nil
}

func (t *storeTx) GetEntryForUpdate(_ context.Context, matchID uuid.UUID, playerID string) (*domain.Entry, error) {
	e, ok := t.st.entries[matchID][playerID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (t *storeTx) LockPrediction(_ context.Context, matchID uuid.UUID, playerID string, side domain.PredictionSide, at time.Time) (int64, error) {
	e, ok := t.st.entries[matchID][playerID]
	if !ok || e.Prediction != nil {
		return 0, nil
	}
	e.Prediction = &side
	e.PredictedAt = &at
	t.st.entries[matchID][playerID] = e
	return 1, nil
}

func (t *storeTx) IncrementSideCount(_ context.Context, matchID uuid.UUID, side domain.PredictionSide) error {
	if t.st.sideCounts[matchID] == nil {
		t.st.sideCounts[matchID] = make(map[domain.PredictionSide]int)
	}
	t.st.sideCounts[matchID][side]++
	return nil
}

func (t *storeTx) GetSideCount(_ context.Context, matchID uuid.UUID, side domain.PredictionSide) (int, error) {
	return t.st.sideCounts[matchID][side], nil
}

func (t *storeTx) MarkEntryClaimed(_ context.Context, matchID uuid.UUID, playerID string, winnings uint64, at time.Time) (int64, error) {
	e, ok := t.st.entries[matchID][playerID]
	if !ok || e.Claimed {
		return 0, nil
	}
	e.Claimed = true
	e.Winnings = &winnings
	e.ClaimedAt = &at
	t.st.entries[matchID][playerID] = e
	return 1, nil
}

func (t *storeTx) RecordMatchClaim(_ context.Context, matchID uuid.UUID, feeSwept bool) error {
	m := t.st.matches[matchID]
	m.ClaimedCount++
	m.FeeSwept = m.FeeSwept || feeSwept
	t.st.matches[matchID] = m
	return nil
}

func (t *storeTx) MarkMatchResidualSwept(_ context.Context, matchID uuid.UUID) error {
	m := t.st.matches[matchID]
	m.ResidualSwept = true
	t.st.matches[matchID] = m
	return nil
}

// ---- Proposals ----

func (t *storeTx) CreateProposal(_ context.Context, p *domain.Proposal) error {
	t.st.proposals[p.ID] = *p
	return nil
}

func (t *storeTx) GetProposalForUpdate(_ context.Context, id uuid.UUID) (*domain.Proposal, error) {
	p, ok := t.st.proposals[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (t *storeTx) UpdateProposalMarket(_ context.Context, p *domain.Proposal) error {
	cur := t.st.proposals[p.ID]
	cur.PassPool, cur.FailPool = p.PassPool, p.FailPool
	cur.PassPrice, cur.FailPrice = p.PassPrice, p.FailPrice
	cur.PassVoters, cur.FailVoters = p.PassVoters, p.FailVoters
	t.st.proposals[p.ID] = cur
	return nil
}

func (t *storeTx) ResolveProposal(_ context.Context, id uuid.UUID, status domain.ProposalStatus, resolvedAt time.Time) (int64, error) {
	p, ok := t.st.proposals[id]
	if !ok || p.Status != domain.ProposalStatusActive {
		return 0, nil
	}
	p.Status = status
	p.ResolvedAt = &resolvedAt
	t.st.proposals[id] = p
	return 1, nil
}

func (t *storeTx) ExecuteProposal(_ context.Context, id uuid.UUID, executedAt time.Time) (int64, error) {
	p, ok := t.st.proposals[id]
	if !ok || p.Status != domain.ProposalStatusPassed {
		return 0, nil
	}
	p.Status = domain.ProposalStatusExecuted
	p.ExecutedAt = &executedAt
	t.st.proposals[id] = p
	return 1, nil
}

func (t *storeTx) ListMarket(_ context.Context, m *domain.Market) (bool, error) {
	if _, ok := t.st.listings[m.Symbol]; ok {
		return false, nil
	}
	for _, l := range t.st.listings {
		if l.ProposalID != nil && m.ProposalID != nil && *l.ProposalID == *m.ProposalID {
			return false, nil
		}
	}
	t.st.listings[m.Symbol] = *m
	return true, nil
}

func (t *storeTx) CancelProposal(_ context.Context, id uuid.UUID) (int64, error) {
	p, ok := t.st.proposals[id]
	if !ok || p.Status != domain.ProposalStatusActive || p.PassPool != 0 || p.FailPool != 0 {
		return 0, nil
	}
	p.Status = domain.ProposalStatusCancelled
	t.st.proposals[id] = p
	return 1, nil
}

func (t *storeTx) GetVoteForUpdate(_ context.Context, proposalID uuid.UUID, voterID string) (*domain.Vote, error) {
	v, ok := t.st.votes[proposalID][voterID]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (t *storeTx) UpsertVote(_ context.Context, v *domain.Vote) error {
	if t.st.votes[v.ProposalID] == nil {
		t.st.votes[v.ProposalID] = make(map[string]domain.Vote)
	}
	cur, ok := t.st.votes[v.ProposalID][v.VoterID]
	if !ok {
		t.st.votes[v.ProposalID][v.VoterID] = *v
		return nil
	}
	cur.PassAmount, cur.FailAmount = v.PassAmount, v.FailAmount
	t.st.votes[v.ProposalID][v.VoterID] = cur
	return nil
}

func (t *storeTx) MarkVoteClaimed(_ context.Context, proposalID uuid.UUID, voterID string, winnings uint64, at time.Time) (int64, error) {
	v, ok := t.st.votes[proposalID][voterID]
	if !ok || v.Claimed {
		return 0, nil
	}
	v.Claimed = true
	v.Winnings = &winnings
	v.ClaimedAt = &at
	t.st.votes[proposalID][voterID] = v
	return 1, nil
}

func (t *storeTx) IncrementProposalClaims(_ context.Context, id uuid.UUID) error {
	p := t.st.proposals[id]
	p.ClaimedCount++
	t.st.proposals[id] = p
	return nil
}

func (t *storeTx) MarkProposalResidualSwept(_ context.Context, id uuid.UUID) error {
	p := t.st.proposals[id]
	p.ResidualSwept = true
	t.st.proposals[id] = p
	return nil
}
