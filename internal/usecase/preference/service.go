package preference

import (
	"context"
	"fmt"
	"sync"

	"example.com/user-admin/internal/usecase/listing"
)

const (
	KeySortField     = "sortField"
	KeySortDirection = "sortDirection"
)

// Store is a durable string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Service remembers the sort field and direction between console sessions.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Load returns fallback with the stored sort preference applied. Both keys
// must be present and the direction must parse, otherwise fallback is kept.
func (s *Service) Load(ctx context.Context, fallback listing.ViewState) (listing.ViewState, error) {
	field, okField, err := s.store.Get(ctx, KeySortField)
	if err != nil {
		return fallback, fmt.Errorf("load %s: %w", KeySortField, err)
	}
	rawDir, okDir, err := s.store.Get(ctx, KeySortDirection)
	if err != nil {
		return fallback, fmt.Errorf("load %s: %w", KeySortDirection, err)
	}
	if !okField || !okDir || field == "" {
		return fallback, nil
	}
	dir, err := listing.ParseDirection(rawDir)
	if err != nil {
		return fallback, nil
	}
	fallback.SortField = field
	fallback.SortDirection = dir
	return fallback, nil
}

// Save overwrites both keys with the sort of v.
func (s *Service) Save(ctx context.Context, v listing.ViewState) error {
	if v.SortField == "" || v.SortDirection == "" {
		return nil
	}
	if err := s.store.Set(ctx, KeySortField, v.SortField); err != nil {
		return fmt.Errorf("save %s: %w", KeySortField, err)
	}
	if err := s.store.Set(ctx, KeySortDirection, string(v.SortDirection)); err != nil {
		return fmt.Errorf("save %s: %w", KeySortDirection, err)
	}
	return nil
}

// MemoryStore keeps preferences for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
