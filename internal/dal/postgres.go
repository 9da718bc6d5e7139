package dal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/rotodraft/draftroom/internal/models"
)

// PostgresStore implements ConfigStore using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL config store optimized for CloudNativePG
func NewPostgresStore(connString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	// Pool settings sized for CloudNativePG clusters (max_connections 100).
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Retry the initial ping; Kubernetes DNS can lag behind pod startup.
	maxRetries := 5
	retryDelay := 5 * time.Second
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		err := db.PingContext(ctx)
		cancel()
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to ping postgres after %d retries: %w", maxRetries, lastErr)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (p *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS keeper_configs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		team_names TEXT NOT NULL,
		keepers JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_keeper_configs_created_at
		ON keeper_configs (created_at DESC);
	`
	_, err := p.db.Exec(schema)
	return err
}

func (p *PostgresStore) SaveConfig(cfg models.KeeperConfig) (*SavedConfig, error) {
	keepersJSON, err := json.Marshal(cfg.Keepers)
	if err != nil {
		return nil, fmt.Errorf("marshal keepers: %w", err)
	}

	saved := SavedConfig{ID: uuid.NewString(), Config: cfg}
	_, err = p.db.Exec(`
		INSERT INTO keeper_configs (id, name, created_at, team_names, keepers)
		VALUES ($1, $2, $3, $4, $5)
	`, saved.ID, cfg.Name, cfg.CreatedAt, strings.Join(cfg.TeamNames, ","), string(keepersJSON))
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (p *PostgresStore) GetConfig(id string) (*SavedConfig, error) {
	row := p.db.QueryRow(`
		SELECT id, name, created_at, team_names, keepers
		FROM keeper_configs WHERE id = $1
	`, id)
	saved, err := scanPGConfig(row)
	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	return saved, err
}

func (p *PostgresStore) ListConfigs() ([]SavedConfig, error) {
	rows, err := p.db.Query(`
		SELECT id, name, created_at, team_names, keepers
		FROM keeper_configs ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SavedConfig{}
	for rows.Next() {
		saved, err := scanPGConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *saved)
	}
	return out, rows.Err()
}

func (p *PostgresStore) DeleteConfig(id string) error {
	res, err := p.db.Exec(`DELETE FROM keeper_configs WHERE id = $1`, id)
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

func (p *PostgresStore) Close() error {
	return p.db.Close()
}

func scanPGConfig(row rowScanner) (*SavedConfig, error) {
	var saved SavedConfig
	var teamNames, keepersJSON string

	err := row.Scan(&saved.ID, &saved.Config.Name, &saved.Config.CreatedAt, &teamNames, &keepersJSON)
	if err != nil {
		return nil, err
	}

	if teamNames != "" {
		saved.Config.TeamNames = strings.Split(teamNames, ",")
	}
	saved.Config.Keepers = make(map[string][]models.Keeper)
	if err := json.Unmarshal([]byte(keepersJSON), &saved.Config.Keepers); err != nil {
		return nil, fmt.Errorf("decode keepers: %w", err)
	}
	return &saved, nil
}
