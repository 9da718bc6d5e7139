package dal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rotodraft/draftroom/internal/models"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// FileStore implements ConfigStore as one JSON file per config in a saves
// directory. The file stem doubles as the config id, so ids survive restarts
// and the directory is human-browsable.
type FileStore struct {
	dir string
}

// NewFileStore creates the saves directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create saves dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// sanitizeName reduces a display name to a filesystem-safe stem.
func sanitizeName(name string) string {
	s := unsafeChars.ReplaceAllString(strings.TrimSpace(name), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "unnamed"
	}
	return s
}

func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

func (f *FileStore) SaveConfig(cfg models.KeeperConfig) (*SavedConfig, error) {
	saved := SavedConfig{ID: sanitizeName(cfg.Name), Config: cfg}

	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(f.path(saved.ID), data, 0o644); err != nil {
		return nil, fmt.Errorf("write config %q: %w", saved.ID, err)
	}
	return &saved, nil
}

func (f *FileStore) GetConfig(id string) (*SavedConfig, error) {
	// Re-sanitize so a crafted id cannot escape the saves directory.
	data, err := os.ReadFile(f.path(sanitizeName(id)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	var saved SavedConfig
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("decode config %q: %w", id, err)
	}
	return &saved, nil
}

func (f *FileStore) ListConfigs() ([]SavedConfig, error) {
	paths, err := filepath.Glob(filepath.Join(f.dir, "*.json"))
	if err != nil {
		return nil, err
	}

	out := make([]SavedConfig, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var saved SavedConfig
		if err := json.Unmarshal(data, &saved); err != nil {
			// Skip files that aren't ours rather than failing the listing.
			continue
		}
		out = append(out, saved)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Config.CreatedAt.After(out[j].Config.CreatedAt)
	})
	return out, nil
}

func (f *FileStore) DeleteConfig(id string) error {
	err := os.Remove(f.path(sanitizeName(id)))
	if os.IsNotExist(err) {
		return ErrConfigNotFound
	}
	return err
}

func (f *FileStore) Close() error { return nil }
