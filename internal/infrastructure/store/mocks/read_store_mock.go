package mocks

import "sync"

// MockReadStore is an in-memory ReadStoreInterface for tests.
// SetData and GetData bypass the interface for seeding and asserting.
type MockReadStore struct {
	mu   sync.RWMutex
	data map[string]map[string]any // collection -> id -> model
}

func NewMockReadStore() *MockReadStore {
	return &MockReadStore{data: make(map[string]map[string]any)}
}

func (m *MockReadStore) collectionLocked(collection string) map[string]any {
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]any)
	}
	return m.data[collection]
}

func (m *MockReadStore) Set(collection, id string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectionLocked(collection)[id] = data
}

func (m *MockReadStore) Get(collection, id string) (any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[collection][id]
	return data, ok, nil
}

func (m *MockReadStore) GetAll(collection string) ([]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]any, 0, len(m.data[collection]))
	for _, item := range m.data[collection] {
		items = append(items, item)
	}
	return items, nil
}

func (m *MockReadStore) Delete(collection, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[collection], id)
}

func (m *MockReadStore) Update(collection, id string, updateFn func(current any) any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.data[collection][id]
	if !ok {
		return false
	}
	m.data[collection][id] = updateFn(current)
	return true
}

// SetData seeds a model directly
func (m *MockReadStore) SetData(collection, id string, data any) {
	m.Set(collection, id, data)
}

// GetData reads a model directly
func (m *MockReadStore) GetData(collection, id string) (any, bool) {
	data, ok, _ := m.Get(collection, id)
	return data, ok
}
