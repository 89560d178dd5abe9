package auth

import "sync"

// MockStore is an in-memory KeyStore with error injection for tests
type MockStore struct {
	mu   sync.RWMutex
	keys map[string]APIKey

	StoreError    error
	RetrieveError error
	DeleteError   error
}

func NewMockStore() *MockStore {
	return &MockStore{keys: make(map[string]APIKey)}
}

func (m *MockStore) Name() string { return "mock" }

func (m *MockStore) Store(key *APIKey) error {
	if m.StoreError != nil {
		return m.StoreError
	}
	if key == nil || key.Profile == "" {
		return ErrInvalidKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key.Profile] = *key
	return nil
}

func (m *MockStore) Retrieve(profile string) (*APIKey, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.keys[profile]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return &key, nil
}

func (m *MockStore) Delete(profile string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[profile]; !ok {
		return ErrKeyNotFound
	}
	delete(m.keys, profile)
	return nil
}

func (m *MockStore) Exists(profile string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.keys[profile]
	return ok
}

// Count is the number of stored keys
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// NewMockManager returns a Manager backed by a single MockStore
func NewMockManager() (*Manager, *MockStore) {
	store := NewMockStore()
	return NewManagerWithStores(store), store
}
