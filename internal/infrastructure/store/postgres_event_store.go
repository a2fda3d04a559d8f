package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/printshop/internal/infrastructure/kafka"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const eventColumns = "id, aggregate_id, aggregate_type, event_type, data, version, created_at"

// PostgresEventStore is the durable event log. Each Append also publishes
// the event to Kafka so projectors pick it up asynchronously.
type PostgresEventStore struct {
	db       *sql.DB
	producer *kafka.Producer
}

func NewPostgresEventStore(db *sql.DB, producer *kafka.Producer) *PostgresEventStore {
	return &PostgresEventStore{db: db, producer: producer}
}

// Append writes the event at the next version for its aggregate. The
// version read and the insert run in one transaction under a per-aggregate
// advisory lock so concurrent appends cannot claim the same version.
func (es *PostgresEventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	tx, err := es.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Advisory lock rather than FOR UPDATE: the MAX read cannot carry a
	// locking clause, and a brand-new aggregate has no row to lock anyway.
	// Released automatically at commit or rollback.
	if _, err := tx.ExecContext(ctx,
		"SELECT pg_advisory_xact_lock(hashtext($1))", aggregateID,
	); err != nil {
		return nil, fmt.Errorf("failed to lock aggregate: %w", err)
	}

	var currentVersion int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = $1",
		aggregateID,
	).Scan(&currentVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to read current version: %w", err)
	}

	event := Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     time.Now(),
		Version:       currentVersion + 1,
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.AggregateID, event.AggregateType, event.EventType,
		event.Data, event.Version, event.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if es.producer != nil {
		if err := es.producer.Publish(ctx, aggregateID, event); err != nil {
			return nil, err
		}
	}

	return &event, nil
}

// GetEvents returns an aggregate's events in version order
func (es *PostgresEventStore) GetEvents(aggregateID string) []Event {
	return es.queryEvents(context.Background(),
		"SELECT "+eventColumns+" FROM events WHERE aggregate_id = $1 ORDER BY version ASC",
		aggregateID,
	)
}

// GetEventsFromVersion returns the events appended after the given version
func (es *PostgresEventStore) GetEventsFromVersion(ctx context.Context, aggregateID string, afterVersion int) []Event {
	return es.queryEvents(ctx,
		"SELECT "+eventColumns+" FROM events WHERE aggregate_id = $1 AND version > $2 ORDER BY version ASC",
		aggregateID, afterVersion,
	)
}

// GetAllEvents returns the whole log in insertion order, used for replay
func (es *PostgresEventStore) GetAllEvents() []Event {
	return es.queryEvents(context.Background(),
		"SELECT "+eventColumns+" FROM events ORDER BY created_at ASC",
	)
}

// GetEventsByType returns every event for one aggregate type
func (es *PostgresEventStore) GetEventsByType(aggregateType string) []Event {
	return es.queryEvents(context.Background(),
		"SELECT "+eventColumns+" FROM events WHERE aggregate_type = $1 ORDER BY created_at ASC",
		aggregateType,
	)
}

func (es *PostgresEventStore) queryEvents(ctx context.Context, query string, args ...any) []Event {
	rows, err := es.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Data, &e.Version, &e.Timestamp); err != nil {
			continue
		}
		events = append(events, e)
	}
	return events
}

// GetSnapshot returns the newest snapshot for an aggregate, nil when none exists
func (es *PostgresEventStore) GetSnapshot(ctx context.Context, aggregateID string) (*Snapshot, error) {
	var s Snapshot
	err := es.db.QueryRowContext(ctx,
		`SELECT aggregate_id, aggregate_type, version, state, created_at
		 FROM snapshots
		 WHERE aggregate_id = $1
		 ORDER BY version DESC
		 LIMIT 1`,
		aggregateID,
	).Scan(&s.AggregateID, &s.AggregateType, &s.Version, &s.State, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSnapshot stores a snapshot; a duplicate (aggregate, version) is a no-op
func (es *PostgresEventStore) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	_, err := es.db.ExecContext(ctx,
		`INSERT INTO snapshots (aggregate_id, aggregate_type, version, state, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (aggregate_id, version) DO NOTHING`,
		snapshot.AggregateID, snapshot.AggregateType, snapshot.Version,
		snapshot.State, snapshot.CreatedAt,
	)
	return err
}

// ConnectPostgres opens and verifies a PostgreSQL connection pool
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
