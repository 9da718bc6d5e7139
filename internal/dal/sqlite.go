package dal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rotodraft/draftroom/internal/models"
)

// SQLiteStore implements ConfigStore using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite config store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS keeper_configs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		team_names TEXT NOT NULL,
		keepers TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) SaveConfig(cfg models.KeeperConfig) (*SavedConfig, error) {
	keepersJSON, err := json.Marshal(cfg.Keepers)
	if err != nil {
		return nil, fmt.Errorf("marshal keepers: %w", err)
	}

	saved := SavedConfig{ID: uuid.NewString(), Config: cfg}
	_, err = s.db.Exec(`
		INSERT INTO keeper_configs (id, name, created_at, team_names, keepers)
		VALUES (?, ?, ?, ?, ?)
	`, saved.ID, cfg.Name, cfg.CreatedAt.UnixMilli(), strings.Join(cfg.TeamNames, ","), string(keepersJSON))
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *SQLiteStore) GetConfig(id string) (*SavedConfig, error) {
	row := s.db.QueryRow(`
		SELECT id, name, created_at, team_names, keepers
		FROM keeper_configs WHERE id = ?
	`, id)
	saved, err := scanConfig(row)
	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	return saved, err
}

func (s *SQLiteStore) ListConfigs() ([]SavedConfig, error) {
	rows, err := s.db.Query(`
		SELECT id, name, created_at, team_names, keepers
		FROM keeper_configs ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SavedConfig{}
	for rows.Next() {
		saved, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *saved)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteConfig(id string) error {
	res, err := s.db.Exec(`DELETE FROM keeper_configs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConfigNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (*SavedConfig, error) {
	var saved SavedConfig
	var createdAt int64
	var teamNames, keepersJSON string

	err := row.Scan(&saved.ID, &saved.Config.Name, &createdAt, &teamNames, &keepersJSON)
	if err != nil {
		return nil, err
	}

	saved.Config.CreatedAt = time.UnixMilli(createdAt).UTC()
	if teamNames != "" {
		saved.Config.TeamNames = strings.Split(teamNames, ",")
	}
	saved.Config.Keepers = make(map[string][]models.Keeper)
	if err := json.Unmarshal([]byte(keepersJSON), &saved.Config.Keepers); err != nil {
		return nil, fmt.Errorf("decode keepers: %w", err)
	}
	return &saved, nil
}
