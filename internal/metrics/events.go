package metrics

import (
	"context"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/event"
	"github.com/osse101/FateProtocol_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	event.SubscribeAll(bus, e.HandleEvent)
	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.MatchCreated:
		m, err := event.DecodePayload[domain.Match](evt.Payload)
		if err != nil {
			log.Debug(LogMsgPayloadDecodeFailed, "type", evt.Type, "error", err)
			return nil
		}
		MatchesCreated.WithLabelValues(m.MarketSymbol).Inc()

	case event.MatchResolved:
		p, err := event.DecodePayload[domain.MatchResolvedPayload](evt.Payload)
		if err != nil {
			log.Debug(LogMsgPayloadDecodeFailed, "type", evt.Type, "error", err)
			return nil
		}
		MatchesResolved.WithLabelValues(p.MarketSymbol, string(p.Outcome.Kind())).Inc()
		SettledVolume.Add(float64(p.TotalPot))

	case event.WinningsClaimed, event.VoteClaimed:
		p, err := event.DecodePayload[domain.ClaimPayload](evt.Payload)
		if err != nil {
			log.Debug(LogMsgPayloadDecodeFailed, "type", evt.Type, "error", err)
			return nil
		}
		ClaimsTotal.WithLabelValues(p.PoolKind).Inc()
		PayoutAmount.WithLabelValues(p.PoolKind).Add(float64(p.Amount))
		if p.FeeSwept > 0 {
			FeesSwept.Add(float64(p.FeeSwept))
		}

	case event.OutcomeTraded:
		p, err := event.DecodePayload[domain.OutcomeTradedPayload](evt.Payload)
		if err != nil {
			log.Debug(LogMsgPayloadDecodeFailed, "type", evt.Type, "error", err)
			return nil
		}
		OutcomeTrades.WithLabelValues(string(p.Side)).Inc()

	case event.ProposalResolved:
		p, err := event.DecodePayload[domain.ProposalResolvedPayload](evt.Payload)
		if err != nil {
			log.Debug(LogMsgPayloadDecodeFailed, "type", evt.Type, "error", err)
			return nil
		}
		ProposalsResolved.WithLabelValues(string(p.Status)).Inc()
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
