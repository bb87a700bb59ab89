package eventlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/osse101/FateProtocol_Go/internal/event"
	"github.com/osse101/FateProtocol_Go/internal/logger"
)

// Service journals every settlement event for audit and replay
type Service interface {
	// Subscribe registers the journal on every settlement event type
	Subscribe(bus event.Bus) error

	// ListEvents returns journaled events, newest first
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)

	// CleanupOldEvents removes events older than the retention period
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

type service struct {
	repo Repository
}

// NewService creates a new event journal service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Subscribe(bus event.Bus) error {
	event.SubscribeAll(bus, s.handleEvent)
	return nil
}

func (s *service) handleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	payload, err := toObject(evt.Payload)
	if err != nil {
		return err
	}
	if payload == nil {
		log.Debug(LogMsgEventPayloadNotObject, "type", evt.Type)
		return nil
	}

	subjectID := subjectOf(payload)
	if err := s.repo.LogEvent(ctx, string(evt.Type), subjectID, payload, evt.Metadata); err != nil {
		log.Error(LogMsgFailedToLogEvent, "error", err, "type", evt.Type)
		return err
	}

	log.Debug(LogMsgEventLogged, "type", evt.Type, "subject_id", subjectID)
	return nil
}

func (s *service) ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultListLimit
	case filter.Limit > MaxListLimit:
		filter.Limit = MaxListLimit
	}
	events, err := s.repo.GetEvents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextListEvents, err)
	}
	return events, nil
}

func (s *service) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	return s.repo.CleanupOldEvents(ctx, retentionDays)
}

// toObject flattens a typed payload into its JSON object form. Payloads that
// are not JSON objects return nil.
func toObject(payload interface{}) (map[string]interface{}, error) {
	if m, ok := payload.(map[string]interface{}); ok {
		return m, nil
	}
	if payload == nil {
		return nil, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextEncodePayload, err)
	}
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}

	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextDecodePayload, err)
	}
	return out, nil
}

func subjectOf(payload map[string]interface{}) *string {
	for _, key := range subjectKeys {
		if id, ok := payload[key].(string); ok && id != "" {
			return &id
		}
	}
	return nil
}
