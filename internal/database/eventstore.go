package database

import (
	"fmt"
	"time"

	"hyderabadinfra/server/internal/events"
)

// AppendEvent persists one domain event to the event store. Events are
// append-only; the envelope fields are broken out into columns so consumers
// can query by aggregate, actor or type without decoding payloads.
func (d *Database) AppendEvent(e events.Event) error {
	data, err := events.Encode(e)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", e.EventID(), err)
	}

	var version interface{}
	if v := e.Version(); v != nil {
		version = *v
	}

	_, err = d.db.Exec(`
		INSERT INTO event_store
		(event_id, aggregate_id, user_id, timestamp, event_type, version, event_data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		e.EventID(),
		e.AggregateID(),
		e.UserID(),
		e.OccurredAt().UTC().Format(time.RFC3339Nano),
		e.EventType(),
		version,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to append event %s: %w", e.EventID(), err)
	}
	return nil
}

// EventsByAggregate returns the stored events for one aggregate in
// occurrence order.
func (d *Database) EventsByAggregate(aggregateID string) ([]events.Event, error) {
	rows, err := d.db.Query(`
		SELECT event_data
		FROM event_store
		WHERE aggregate_id = ?
		ORDER BY timestamp ASC
	`, aggregateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var result []events.Event
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		e, err := events.Decode([]byte(data))
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
