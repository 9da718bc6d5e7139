package dal

import (
	"errors"

	"github.com/rotodraft/draftroom/internal/models"
)

// ErrConfigNotFound is returned when no saved config matches the given id.
var ErrConfigNotFound = errors.New("saved config not found")

// SavedConfig is a stored keeper configuration plus its storage identity.
type SavedConfig struct {
	ID     string              `json:"id"`
	Config models.KeeperConfig `json:"config"`
}

// ConfigStore defines the interface for keeper-config persistence
type ConfigStore interface {
	SaveConfig(cfg models.KeeperConfig) (*SavedConfig, error)
	GetConfig(id string) (*SavedConfig, error)
	ListConfigs() ([]SavedConfig, error)
	DeleteConfig(id string) error
	Close() error
}
