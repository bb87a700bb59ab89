package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/FateProtocol_Go/internal/config"
	"github.com/osse101/FateProtocol_Go/internal/discord"
	"github.com/osse101/FateProtocol_Go/internal/event"
	"github.com/osse101/FateProtocol_Go/internal/eventlog"
	"github.com/osse101/FateProtocol_Go/internal/metrics"
)

// EventHandlerDependencies holds the dependencies needed for event handler registration.
type EventHandlerDependencies struct {
	EventBus event.Bus
	Config   *config.Config
	Journal  eventlog.Service
	// Sender overrides the webhook sender built from Config, mainly for tests
	Sender discord.Sender
}

// RegisterEventHandlers sets up all event subscribers:
// - Metrics collector (business counters for every event type)
// - Event journal (every settlement event persisted, when Journal is set)
// - Discord announcer (settlement embeds, only when a webhook or Sender is configured)
func RegisterEventHandlers(deps EventHandlerDependencies) error {
	metricsCollector := metrics.NewEventMetricsCollector()
	if err := metricsCollector.Register(deps.EventBus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedRegisterMetrics, err)
	}
	slog.Info(LogMsgMetricsCollectorRegistered)

	if deps.Journal != nil {
		if err := deps.Journal.Subscribe(deps.EventBus); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedRegisterJournal, err)
		}
		slog.Info(LogMsgJournalRegistered)
	}

	sender := deps.Sender
	if sender == nil && deps.Config.DiscordWebhookURL != "" {
		webhook, err := discord.NewWebhookSender(deps.Config.DiscordWebhookURL)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedCreateWebhookSender, err)
		}
		sender = webhook
	}
	if sender == nil {
		slog.Info(LogMsgAnnouncerDisabled)
		return nil
	}

	discord.NewAnnouncer(sender).Register(deps.EventBus)
	slog.Info(LogMsgAnnouncerRegistered)
	return nil
}
