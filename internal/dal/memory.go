package dal

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rotodraft/draftroom/internal/models"
)

// MemoryStore implements ConfigStore using in-memory storage
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[string]SavedConfig
}

// NewMemoryStore creates a new in-memory config store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{configs: make(map[string]SavedConfig)}
}

func (m *MemoryStore) SaveConfig(cfg models.KeeperConfig) (*SavedConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := SavedConfig{ID: uuid.NewString(), Config: cfg}
	m.configs[saved.ID] = saved
	return &saved, nil
}

func (m *MemoryStore) GetConfig(id string) (*SavedConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	saved, ok := m.configs[id]
	if !ok {
		return nil, ErrConfigNotFound
	}
	return &saved, nil
}

func (m *MemoryStore) ListConfigs() ([]SavedConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]SavedConfig, 0, len(m.configs))
	for _, saved := range m.configs {
		out = append(out, saved)
	}
	// Most recent first
	sort.Slice(out, func(i, j int) bool {
		return out[i].Config.CreatedAt.After(out[j].Config.CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) DeleteConfig(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.configs[id]; !ok {
		return ErrConfigNotFound
	}
	delete(m.configs, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
