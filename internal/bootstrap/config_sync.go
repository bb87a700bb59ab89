package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/osse101/FateProtocol_Go/internal/admin"
	"github.com/osse101/FateProtocol_Go/internal/config"
	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/market"
	"github.com/osse101/FateProtocol_Go/internal/validation"
)

// SyncGlobalConfig seeds the stored protocol config from env defaults on first start.
// An existing config is left untouched; runtime changes go through the admin API.
func SyncGlobalConfig(ctx context.Context, svc admin.Service, cfg *config.Config) (*domain.GlobalConfig, error) {
	defaults := cfg.GlobalConfig()
	if err := admin.ValidateConfig(&defaults); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgInvalidGlobalConfig, err)
	}

	current, err := svc.InitConfig(ctx, defaults)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedInitConfig, err)
	}

	slog.Info(LogMsgGlobalConfigSeeded,
		"fee_bps", current.FeeBps,
		"treasury", current.Treasury,
		"paused", current.Paused)
	return current, nil
}

// SyncListedMarkets adds the markets executed proposals listed to a registry
// loaded from the file. A listing whose symbol the file maps to another feed
// is skipped with a warning; the file wins.
func SyncListedMarkets(ctx context.Context, registry market.Registry, listings market.Source) error {
	added, err := market.Sync(ctx, registry, listings)
	if errors.Is(err, market.ErrDuplicateSymbol) {
		slog.Warn(ErrMsgFailedSyncMarkets, "error", err)
	} else if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedSyncMarkets, err)
	}
	slog.Info(LogMsgListedMarketsAdded, "added", added)
	return nil
}

// LoadMarkets reads the market registry file named by the config and checks it
// against the registry schema before building the registry
func LoadMarkets(cfg *config.Config) (market.Registry, error) {
	data, err := os.ReadFile(cfg.MarketsFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadMarkets, err)
	}
	if err := validation.NewSchemaValidator().ValidateYAML(data, validation.SchemaMarkets); err != nil {
		return nil, fmt.Errorf("%s %s: %w", ErrMsgInvalidMarketsFile, cfg.MarketsFile, err)
	}
	registry, err := market.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadMarkets, err)
	}

	active := 0
	for _, m := range registry.List() {
		if m.Active {
			active++
		}
	}
	slog.Info(LogMsgMarketsLoaded, "path", cfg.MarketsFile, "markets", len(registry.List()), "active", active)
	return registry, nil
}
