// Package memstore is an in-memory implementation of the repository interfaces.
// Transactions are fully serialized and work on a deep copy of the state, so a
// rollback discards every write made through the transaction.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/repository"
)

// ErrTxClosed mirrors the driver's error for a finished transaction
var ErrTxClosed = errors.New(domain.ErrMsgTxClosed)

type state struct {
	config     *domain.GlobalConfig
	matches    map[uuid.UUID]domain.Match
	entries    map[uuid.UUID]map[string]domain.Entry
	sideCounts map[uuid.UUID]map[domain.PredictionSide]int
	proposals  map[uuid.UUID]domain.Proposal
	votes      map[uuid.UUID]map[string]domain.Vote
	listings   map[string]domain.Market
	balances   map[string]uint64
	transfers  []domain.EscrowTransfer
}

func newState() *state {
	return &state{
		matches:    make(map[uuid.UUID]domain.Match),
		entries:    make(map[uuid.UUID]map[string]domain.Entry),
		sideCounts: make(map[uuid.UUID]map[domain.PredictionSide]int),
		proposals:  make(map[uuid.UUID]domain.Proposal),
		votes:      make(map[uuid.UUID]map[string]domain.Vote),
		listings:   make(map[string]domain.Market),
		balances:   make(map[string]uint64),
	}
}

// clone copies maps and value structs. Pointer fields inside the structs are
// never mutated in place, so sharing them is safe.
func (s *state) clone() *state {
	c := newState()
	if s.config != nil {
		cfg := *s.config
		c.config = &cfg
	}
	for k, v := range s.matches {
		c.matches[k] = v
	}
	for k, m := range s.entries {
		inner := make(map[string]domain.Entry, len(m))
		for p, e := range m {
			inner[p] = e
		}
		c.entries[k] = inner
	}
	for k, m := range s.sideCounts {
		inner := make(map[domain.PredictionSide]int, len(m))
		for side, n := range m {
			inner[side] = n
		}
		c.sideCounts[k] = inner
	}
	for k, v := range s.proposals {
		c.proposals[k] = v
	}
	for k, m := range s.votes {
		inner := make(map[string]domain.Vote, len(m))
		for p, v := range m {
			inner[p] = v
		}
		c.votes[k] = inner
	}
	for k, v := range s.listings {
		c.listings[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	c.transfers = append([]domain.EscrowTransfer(nil), s.transfers...)
	return c
}

// Store implements repository.Match, repository.Proposal and repository.Config
type Store struct {
	txMu   sync.Mutex
	dataMu sync.RWMutex
	st     *state
}

// New returns an empty store
func New() *Store {
	return &Store{st: newState()}
}

// NewWithConfig returns a store with cfg already initialized
func NewWithConfig(cfg domain.GlobalConfig) *Store {
	s := New()
	s.st.config = &cfg
	return s
}

// DefaultConfig is the protocol configuration used by most tests
func DefaultConfig() domain.GlobalConfig {
	return domain.GlobalConfig{
		FeeBps:           domain.DefaultPlatformFeeBps,
		Treasury:         domain.DefaultTreasury,
		ProposalStake:    domain.DefaultProposalStake,
		ProposerBonusBps: domain.DefaultProposerBonus,
	}
}

func (s *Store) read() *state {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.st
}

// Balance returns an account balance outside any transaction
func (s *Store) Balance(account string) uint64 {
	return s.read().balances[account]
}

// Fund credits an account directly, for seeding the treasury in tests
func (s *Store) Fund(account string, amount uint64) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	next := s.st.clone()
	next.balances[account] += amount
	s.st = next
}

// SetMatch overwrites a stored match, for arranging edge cases in tests
func (s *Store) SetMatch(m domain.Match) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	next := s.st.clone()
	next.matches[m.ID] = m
	s.st = next
}

// SetProposal overwrites a stored proposal, for arranging edge cases in tests
func (s *Store) SetProposal(p domain.Proposal) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	next := s.st.clone()
	next.proposals[p.ID] = p
	s.st = next
}

func (s *Store) begin() *storeTx {
	s.txMu.Lock()
	return &storeTx{store: s, st: s.read().clone()}
}

// ---- Reads ----

func (s *Store) GetConfig(_ context.Context) (*domain.GlobalConfig, error) {
	st := s.read()
	if st.config == nil {
		return nil, nil
	}
	cfg := *st.config
	return &cfg, nil
}

func (s *Store) GetMatch(_ context.Context, id uuid.UUID) (*domain.Match, error) {
	m, ok := s.read().matches[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *Store) ListMatches(_ context.Context, filter domain.MatchFilter) ([]domain.Match, error) {
	var out []domain.Match
	for _, m := range s.read().matches {
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limit(out, filter.Limit), nil
}

func (s *Store) ListDueMatches(_ context.Context, from, to time.Time, n int) ([]domain.Match, error) {
	var out []domain.Match
	for _, m := range s.read().matches {
		if m.Status != domain.MatchStatusInProgress {
			continue
		}
		if m.ResolutionTime.Before(from) || m.ResolutionTime.After(to) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResolutionTime.Before(out[j].ResolutionTime) })
	return limit(out, n), nil
}

func (s *Store) ListStaleMatches(_ context.Context, cutoff time.Time, n int) ([]domain.Match, error) {
	var out []domain.Match
	for _, m := range s.read().matches {
		if m.Status.IsTerminal() || !m.ResolutionTime.Before(cutoff) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResolutionTime.Before(out[j].ResolutionTime) })
	return limit(out, n), nil
}

func (s *Store) GetEntry(_ context.Context, matchID uuid.UUID, playerID string) (*domain.Entry, error) {
	e, ok := s.read().entries[matchID][playerID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *Store) GetEntries(_ context.Context, matchID uuid.UUID) ([]domain.Entry, error) {
	var out []domain.Entry
	for _, e := range s.read().entries[matchID] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (s *Store) GetSideCounts(_ context.Context, matchID uuid.UUID) ([]domain.SideCount, error) {
	var out []domain.SideCount
	for side, n := range s.read().sideCounts[matchID] {
		out = append(out, domain.SideCount{MatchID: matchID, Side: side, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Side < out[j].Side })
	return out, nil
}

func (s *Store) GetProposal(_ context.Context, id uuid.UUID) (*domain.Proposal, error) {
	p, ok := s.read().proposals[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) ListProposals(_ context.Context, filter domain.ProposalFilter) ([]domain.Proposal, error) {
	var out []domain.Proposal
	for _, p := range s.read().proposals {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limit(out, filter.Limit), nil
}

func (s *Store) ListExpiredProposals(_ context.Context, now time.Time, n int) ([]domain.Proposal, error) {
	var out []domain.Proposal
	for _, p := range s.read().proposals {
		if p.Status == domain.ProposalStatusActive && !p.VotingEndsAt.After(now) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VotingEndsAt.Before(out[j].VotingEndsAt) })
	return limit(out, n), nil
}

func (s *Store) GetVote(_ context.Context, proposalID uuid.UUID, voterID string) (*domain.Vote, error) {
	v, ok := s.read().votes[proposalID][voterID]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *Store) GetVotes(_ context.Context, proposalID uuid.UUID) ([]domain.Vote, error) {
	var out []domain.Vote
	for _, v := range s.read().votes[proposalID] {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VoterID < out[j].VoterID })
	return out, nil
}

func (s *Store) ListListedMarkets(_ context.Context) ([]domain.Market, error) {
	var out []domain.Market
	for _, m := range s.read().listings {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *Store) InitConfig(_ context.Context, cfg *domain.GlobalConfig) (bool, error) {
	tx := s.begin()
	defer func() { _ = tx.Rollback(context.Background()) }()
	if tx.st.config != nil {
		return false, nil
	}
	c := *cfg
	tx.st.config = &c
	return true, tx.Commit(context.Background())
}

func (s *Store) GetEscrowBalance(_ context.Context, account string) (uint64, error) {
	return s.read().balances[account], nil
}

func (s *Store) ListTransfers(_ context.Context, account string, n int) ([]domain.EscrowTransfer, error) {
	var out []domain.EscrowTransfer
	transfers := s.read().transfers
	for i := len(transfers) - 1; i >= 0; i-- {
		t := transfers[i]
		if account == "" || t.Source == account || t.Destination == account {
			out = append(out, t)
		}
	}
	return limit(out, n), nil
}

func (s *Store) BeginMatchTx(_ context.Context) (repository.MatchTx, error) {
	return s.begin(), nil
}

func (s *Store) BeginProposalTx(_ context.Context) (repository.ProposalTx, error) {
	return s.begin(), nil
}

func (s *Store) BeginConfigTx(_ context.Context) (repository.AdminTx, error) {
	return s.begin(), nil
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

var (
	_ repository.Match    = (*Store)(nil)
	_ repository.Proposal = (*Store)(nil)
	_ repository.Config   = (*Store)(nil)
)
