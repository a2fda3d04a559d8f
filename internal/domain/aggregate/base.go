package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/printshop/internal/infrastructure/store"
)

// Aggregate is implemented by every event-sourced root in the domain
type Aggregate interface {
	GetID() string
	GetVersion() int
	SetVersion(int)
	ApplyEvent(store.Event) error
}

// LoadAggregate rebuilds an aggregate from the event log. When a snapshot
// exists the replay starts from it instead of version zero. The bool
// reports whether any history was found for the ID.
func LoadAggregate[T Aggregate](
	ctx context.Context,
	eventStore store.EventStoreInterface,
	id string,
	newAggregate func() T,
) (T, bool, error) {
	var zero T
	agg := newAggregate()

	snapshot, err := eventStore.GetSnapshot(ctx, id)
	if err != nil {
		return zero, false, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var events []store.Event
	if snapshot == nil {
		events = eventStore.GetEvents(id)
	} else {
		if err := json.Unmarshal(snapshot.State, agg); err != nil {
			return zero, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		events = eventStore.GetEventsFromVersion(ctx, id, snapshot.Version)
	}

	for _, event := range events {
		if err := agg.ApplyEvent(event); err != nil {
			return zero, false, fmt.Errorf("failed to apply event: %w", err)
		}
	}

	found := snapshot != nil || len(events) > 0
	return agg, found, nil
}

// MaybeCreateSnapshot persists the aggregate state every
// store.SnapshotThreshold versions. Call after a successful append.
func MaybeCreateSnapshot(
	ctx context.Context,
	eventStore store.EventStoreInterface,
	agg Aggregate,
	aggregateType string,
) error {
	version := agg.GetVersion()
	if version == 0 || version%store.SnapshotThreshold != 0 {
		return nil
	}

	state, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("failed to marshal aggregate state: %w", err)
	}

	err = eventStore.SaveSnapshot(ctx, &store.Snapshot{
		AggregateID:   agg.GetID(),
		AggregateType: aggregateType,
		Version:       version,
		State:         state,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
