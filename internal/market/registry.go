// Package market maps tradable symbols to oracle feeds.
package market

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// Registry resolves market symbols
type Registry interface {
	Lookup(symbol string) (domain.Market, error)
	List() []domain.Market
	// Register adds a market at runtime. Registering a symbol again with the same
	// feed is a no-op that reports false; a different feed fails with ErrDuplicateSymbol.
	Register(m domain.Market) (bool, error)
}

// Source lists markets persisted by executed proposals
type Source interface {
	ListListedMarkets(ctx context.Context) ([]domain.Market, error)
}

var (
	symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,15}/[A-Z0-9]{1,15}$`)
	feedIDPattern = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)
)

type fileFormat struct {
	Markets []domain.Market `yaml:"markets"`
}

type registry struct {
	mu      sync.RWMutex
	markets map[string]domain.Market
}

// Load reads a registry from a YAML file
func Load(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", ErrContextReadFile, path, err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML bytes
func Parse(data []byte) (Registry, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextParseFile, err)
	}
	return New(f.Markets)
}

// New builds a registry from a list of markets
func New(markets []domain.Market) (Registry, error) {
	r := &registry{markets: make(map[string]domain.Market, len(markets))}
	for _, m := range markets {
		m.Symbol = Canonical(m.Symbol)
		if m.Symbol == "" || len(m.Symbol) > domain.MaxMarketSymbolLen {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSymbol, m.Symbol)
		}
		if m.FeedID == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingFeedID, m.Symbol)
		}
		if _, dup := r.markets[m.Symbol]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSymbol, m.Symbol)
		}
		r.markets[m.Symbol] = m
	}
	return r, nil
}

// Register adds a listed market
func (r *registry) Register(m domain.Market) (bool, error) {
	m.Symbol = Canonical(m.Symbol)
	if !ValidSymbol(m.Symbol) {
		return false, fmt.Errorf("%w: %q", ErrInvalidSymbol, m.Symbol)
	}
	if !ValidFeedID(m.FeedID) {
		return false, fmt.Errorf("%w: %s", ErrInvalidFeedID, m.Symbol)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.markets[m.Symbol]; ok {
		if sameFeed(existing.FeedID, m.FeedID) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s", ErrDuplicateSymbol, m.Symbol)
	}
	r.markets[m.Symbol] = m
	return true, nil
}

// Lookup returns an active market by symbol
func (r *registry) Lookup(symbol string) (domain.Market, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.markets[Canonical(symbol)]
	if !ok || !m.Active {
		return domain.Market{}, fmt.Errorf("%w: %s", domain.ErrUnknownMarket, symbol)
	}
	return m, nil
}

// List returns every market sorted by symbol
func (r *registry) List() []domain.Market {
	r.mu.RLock()
	out := make([]domain.Market, 0, len(r.markets))
	for _, m := range r.markets {
		out = append(out, m)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Sync registers every market src has persisted and returns how many were new.
// A symbol already taken by a different feed is skipped and reported in the error.
func Sync(ctx context.Context, r Registry, src Source) (int, error) {
	listed, err := src.ListListedMarkets(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrContextListListed, err)
	}
	added := 0
	var conflicts []string
	for _, m := range listed {
		ok, err := r.Register(m)
		if err != nil {
			conflicts = append(conflicts, m.Symbol)
			continue
		}
		if ok {
			added++
		}
	}
	if len(conflicts) > 0 {
		return added, fmt.Errorf("%w: %s", ErrDuplicateSymbol, strings.Join(conflicts, ", "))
	}
	return added, nil
}

// Canonical normalizes a symbol for lookups
func Canonical(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidSymbol reports whether a canonical symbol has the BASE/QUOTE shape a
// proposal may list
func ValidSymbol(symbol string) bool {
	return len(symbol) <= domain.MaxMarketSymbolLen && symbolPattern.MatchString(symbol)
}

// ValidFeedID reports whether id is a 32-byte hex price feed id, with or without 0x
func ValidFeedID(id string) bool {
	return feedIDPattern.MatchString(id)
}

func sameFeed(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(a, "0x"), strings.TrimPrefix(b, "0x"))
}
