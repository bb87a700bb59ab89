package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/FateProtocol_Go/internal/eventlog"
)

// EventLogRepository implements eventlog.Repository on the event_log table
type EventLogRepository struct {
	db *pgxpool.Pool
}

// NewEventLogRepository creates a new EventLogRepository
func NewEventLogRepository(db *pgxpool.Pool) *EventLogRepository {
	return &EventLogRepository{db: db}
}

func (r *EventLogRepository) LogEvent(ctx context.Context, eventType string, subjectID *string, payload, metadata map[string]interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeEvent, err)
	}

	var metadataJSON []byte
	if len(metadata) > 0 {
		if metadataJSON, err = json.Marshal(metadata); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeEvent, err)
		}
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO event_log (event_type, subject_id, payload, metadata)
		VALUES ($1, $2, $3, $4)`,
		eventType, subjectID, payloadJSON, metadataJSON)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToLogEvent, err)
	}
	return nil
}

func (r *EventLogRepository) GetEvents(ctx context.Context, filter eventlog.EventFilter) ([]eventlog.Event, error) {
	var query strings.Builder
	query.WriteString(`
		SELECT id, event_type, subject_id, payload, metadata, created_at
		FROM event_log
		WHERE 1=1`)

	args := []interface{}{}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		fmt.Fprintf(&query, clause, len(args))
	}

	if filter.EventType != nil {
		add(" AND event_type = $%d", *filter.EventType)
	}
	if filter.SubjectID != nil {
		add(" AND subject_id = $%d", *filter.SubjectID)
	}
	if filter.Since != nil {
		add(" AND created_at >= $%d", *filter.Since)
	}
	if filter.Until != nil {
		add(" AND created_at <= $%d", *filter.Until)
	}

	query.WriteString(" ORDER BY created_at DESC, id DESC")
	if filter.Limit > 0 {
		add(" LIMIT $%d", filter.Limit)
	}

	rows, err := r.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryEvents, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventLogRepository) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM event_log
		WHERE created_at < NOW() - INTERVAL '1 day' * $1`, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToPruneJournal, err)
	}
	return tag.RowsAffected(), nil
}

func scanEvents(rows pgx.Rows) ([]eventlog.Event, error) {
	events := []eventlog.Event{}
	for rows.Next() {
		var (
			evt                       eventlog.Event
			payloadJSON, metadataJSON []byte
		)
		if err := rows.Scan(&evt.ID, &evt.EventType, &evt.SubjectID, &payloadJSON, &metadataJSON, &evt.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryEvents, err)
		}
		if err := json.Unmarshal(payloadJSON, &evt.Payload); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeEvent, err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &evt.Metadata); err != nil {
				return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeEvent, err)
			}
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryEvents, err)
	}
	return events, nil
}

var _ eventlog.Repository = (*EventLogRepository)(nil)
