// Package admin manages the protocol-wide configuration and exposes the escrow ledger.
package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/event"
	"github.com/osse101/FateProtocol_Go/internal/logger"
	"github.com/osse101/FateProtocol_Go/internal/repository"
)

// Service defines administrative operations
type Service interface {
	// InitConfig stores cfg when the protocol has no config yet and returns the effective config
	InitConfig(ctx context.Context, cfg domain.GlobalConfig) (*domain.GlobalConfig, error)
	GetConfig(ctx context.Context) (*domain.GlobalConfig, error)
	UpdateConfig(ctx context.Context, update domain.ConfigUpdate) (*domain.GlobalConfig, error)
	SetPaused(ctx context.Context, paused bool) (*domain.GlobalConfig, error)

	GetBalance(ctx context.Context, account string) (uint64, error)
	ListTransfers(ctx context.Context, account string, limit int) ([]domain.EscrowTransfer, error)
}

type service struct {
	repo      repository.Config
	publisher event.Publisher
	now       func() time.Time
}

// NewService creates a new admin service
func NewService(repo repository.Config, publisher event.Publisher) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) InitConfig(ctx context.Context, cfg domain.GlobalConfig) (*domain.GlobalConfig, error) {
	log := logger.FromContext(ctx)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	cfg.UpdatedAt = s.now()

	created, err := s.repo.InitConfig(ctx, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToInitConfig, err)
	}
	if created {
		log.Info(LogMsgConfigInitialized, "fee_bps", cfg.FeeBps, "treasury", cfg.Treasury)
	} else {
		log.Info(LogMsgConfigExists)
	}
	return s.GetConfig(ctx)
}

func (s *service) GetConfig(ctx context.Context) (*domain.GlobalConfig, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetConfig, err)
	}
	if cfg == nil {
		return nil, domain.ErrConfigNotInitialized
	}
	return cfg, nil
}

// UpdateConfig applies the non-nil fields of update under the config row lock
func (s *service) UpdateConfig(ctx context.Context, update domain.ConfigUpdate) (*domain.GlobalConfig, error) {
	tx, err := s.repo.BeginConfigTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	cfg, err := tx.GetConfigForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetConfig, err)
	}
	if cfg == nil {
		return nil, domain.ErrConfigNotInitialized
	}

	applyUpdate(cfg, update)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	cfg.UpdatedAt = s.now()

	if err := tx.SaveConfig(ctx, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToSaveConfig, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	logger.FromContext(ctx).Info(LogMsgConfigUpdated,
		"fee_bps", cfg.FeeBps,
		"treasury", cfg.Treasury,
		"paused", cfg.Paused,
		"max_price_impact_bps", cfg.MaxPriceImpactBps)

	if s.publisher != nil {
		s.publisher.PublishWithRetry(ctx, event.NewConfigUpdatedEvent(*cfg))
	}
	return cfg, nil
}

func (s *service) SetPaused(ctx context.Context, paused bool) (*domain.GlobalConfig, error) {
	cfg, err := s.UpdateConfig(ctx, domain.ConfigUpdate{Paused: &paused})
	if err != nil {
		return nil, err
	}
	if paused {
		logger.FromContext(ctx).Warn(LogMsgProtocolPaused)
	} else {
		logger.FromContext(ctx).Info(LogMsgProtocolResumed)
	}
	return cfg, nil
}

func (s *service) GetBalance(ctx context.Context, account string) (uint64, error) {
	bal, err := s.repo.GetEscrowBalance(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrContextFailedToGetBalance, err)
	}
	return bal, nil
}

func (s *service) ListTransfers(ctx context.Context, account string, limit int) ([]domain.EscrowTransfer, error) {
	if limit <= 0 {
		limit = DefaultTransferLimit
	}
	if limit > MaxTransferLimit {
		limit = MaxTransferLimit
	}
	transfers, err := s.repo.ListTransfers(ctx, account, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToListLedger, err)
	}
	return transfers, nil
}

func applyUpdate(cfg *domain.GlobalConfig, u domain.ConfigUpdate) {
	if u.FeeBps != nil {
		cfg.FeeBps = *u.FeeBps
	}
	if u.Treasury != nil {
		cfg.Treasury = strings.TrimSpace(*u.Treasury)
	}
	if u.Paused != nil {
		cfg.Paused = *u.Paused
	}
	if u.ProposalStake != nil {
		cfg.ProposalStake = *u.ProposalStake
	}
	if u.ProposerBonusBps != nil {
		cfg.ProposerBonusBps = *u.ProposerBonusBps
	}
	if u.MaxPriceImpactBps != nil {
		cfg.MaxPriceImpactBps = *u.MaxPriceImpactBps
	}
}

// ValidateConfig checks fee bounds and that the treasury is not an escrow account
func ValidateConfig(cfg *domain.GlobalConfig) error {
	if cfg.FeeBps > domain.MaxPlatformFeeBps {
		return domain.ErrInvalidFeeConfiguration
	}
	if cfg.ProposerBonusBps > domain.BasisPoints || cfg.MaxPriceImpactBps > domain.BasisPoints {
		return domain.ErrInvalidFeeConfiguration
	}
	if cfg.ProposalStake == 0 {
		return domain.ErrInvalidFeeConfiguration
	}
	return validateTreasury(cfg.Treasury)
}

func validateTreasury(account string) error {
	if account == "" || len(account) > domain.MaxParticipantIDLen {
		return domain.ErrInvalidTreasury
	}
	if strings.HasPrefix(account, domain.EscrowPrefixMatch) || strings.HasPrefix(account, domain.EscrowPrefixProposal) {
		return domain.ErrInvalidTreasury
	}
	return nil
}
