package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kamal-hamza/pxo/internal/core/domain"
)

// MockSnapshotStore is an in-memory SnapshotStore with failure injection
type MockSnapshotStore struct {
	mu   sync.Mutex
	data map[string][]byte

	// PutErr, GetErr and DeleteErr are returned by the matching call when set
	PutErr    error
	GetErr    error
	DeleteErr error

	// PutGate, when set, holds every Put until it is closed. PutEntered, if
	// also set, receives once per held Put before it waits.
	PutGate    chan struct{}
	PutEntered chan struct{}

	Puts    int
	Deletes int
}

// NewMockSnapshotStore creates an empty mock store
func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{
		data: make(map[string][]byte),
	}
}

func (m *MockSnapshotStore) Put(ctx context.Context, key string, data []byte) error {
	if m.PutGate != nil {
		if m.PutEntered != nil {
			m.PutEntered <- struct{}{}
		}
		<-m.PutGate
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Puts++
	if m.PutErr != nil {
		return m.PutErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[key] = cp
	return nil
}

func (m *MockSnapshotStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, key)
	}
	return data, nil
}

func (m *MockSnapshotStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Deletes++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.data, key)
	return nil
}

func (m *MockSnapshotStore) Keys(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Raw returns the stored bytes for key, for assertions
func (m *MockSnapshotStore) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	return data, ok
}

// Seed stores data under key without counting it as a Put
func (m *MockSnapshotStore) Seed(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
}

// PutCount returns how many Put calls were made
func (m *MockSnapshotStore) PutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Puts
}

// --- MockImageDecoder ---

// MockImageDecoder returns canned sizes per image reference
type MockImageDecoder struct {
	mu    sync.Mutex
	sizes map[string]domain.Size
	Calls int
}

// NewMockImageDecoder creates a decoder that knows no images yet
func NewMockImageDecoder() *MockImageDecoder {
	return &MockImageDecoder{
		sizes: make(map[string]domain.Size),
	}
}

// SetSize registers the size reported for imageRef
func (m *MockImageDecoder) SetSize(imageRef string, size domain.Size) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sizes[imageRef] = size
}

func (m *MockImageDecoder) DecodeSize(ctx context.Context, imageRef string) (domain.Size, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	size, ok := m.sizes[imageRef]
	if !ok {
		return domain.Size{}, domain.ErrImageDecode
	}
	return size, nil
}
