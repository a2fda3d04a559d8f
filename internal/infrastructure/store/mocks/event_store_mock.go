package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/google/uuid"
)

// MockEventStore is an in-memory EventStoreInterface for tests.
// AppendCalls records every Append in order; AddEvent seeds history
// without touching the call log.
type MockEventStore struct {
	mu        sync.RWMutex
	events    map[string][]store.Event
	snapshots map[string]*store.Snapshot

	AppendCalls []AppendCall
	AppendErr   error
}

// AppendCall captures one Append invocation
type AppendCall struct {
	AggregateID   string
	AggregateType string
	EventType     string
	Data          any
}

func NewMockEventStore() *MockEventStore {
	return &MockEventStore{
		events:    make(map[string][]store.Event),
		snapshots: make(map[string]*store.Snapshot),
	}
}

func (m *MockEventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*store.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AppendCalls = append(m.AppendCalls, AppendCall{
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          data,
	})

	if m.AppendErr != nil {
		return nil, m.AppendErr
	}
	return m.appendLocked(aggregateID, aggregateType, eventType, data)
}

// AddEvent seeds an event without recording an AppendCall
func (m *MockEventStore) AddEvent(aggregateID, aggregateType, eventType string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.appendLocked(aggregateID, aggregateType, eventType, data)
	return err
}

func (m *MockEventStore) appendLocked(aggregateID, aggregateType, eventType string, data any) (*store.Event, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	event := store.Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     time.Now(),
		Version:       len(m.events[aggregateID]) + 1,
	}
	m.events[aggregateID] = append(m.events[aggregateID], event)
	return &event, nil
}

func (m *MockEventStore) GetEvents(aggregateID string) []store.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.events[aggregateID]
}

func (m *MockEventStore) GetEventsFromVersion(ctx context.Context, aggregateID string, afterVersion int) []store.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []store.Event
	for _, e := range m.events[aggregateID] {
		if e.Version > afterVersion {
			result = append(result, e)
		}
	}
	return result
}

func (m *MockEventStore) GetAllEvents() []store.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []store.Event
	for _, events := range m.events {
		all = append(all, events...)
	}
	return all
}

func (m *MockEventStore) GetSnapshot(ctx context.Context, aggregateID string) (*store.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshots[aggregateID], nil
}

func (m *MockEventStore) SaveSnapshot(ctx context.Context, snapshot *store.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.AggregateID] = snapshot
	return nil
}
