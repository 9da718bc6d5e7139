// Package analytics sinks pick events into ClickHouse and serves market
// queries (average draft position) derived from historical drafts.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// PickEvent is one recorded pick, simulated or human.
type PickEvent struct {
	DraftID    string
	PickNumber int
	TeamID     string
	PlayerID   string
	PlayerName string
	Position   string
	Pitcher    bool
	Dollars    float64
	Keeper     bool
	At         time.Time
}

// ADPEntry is one row of the average-draft-position report.
type ADPEntry struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	ADP        float64 `json:"adp"`
	AvgDollars float64 `json:"avg_dollars"`
	Samples    uint64  `json:"samples"`
}

// Recorder is the analytics surface the server depends on.
type Recorder interface {
	RecordPick(ctx context.Context, ev PickEvent) error
	ADP(ctx context.Context, limit int) ([]ADPEntry, error)
	Close() error
}

// Client provides ClickHouse-backed analytics
type Client struct {
	conn driver.Conn
}

// NewClient connects, pings and ensures the picks table exists.
func NewClient(addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	c := &Client{conn: conn}
	if err := c.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) initSchema() error {
	ddl := `
		CREATE TABLE IF NOT EXISTS draft_picks (
			draft_id    String,
			pick_number UInt32,
			team_id     String,
			player_id   String,
			player_name String,
			position    String,
			pitcher     UInt8,
			dollars     Float64,
			keeper      UInt8,
			picked_at   DateTime
		)
		ENGINE = MergeTree()
		ORDER BY (player_id, picked_at)
	`
	return c.conn.Exec(context.Background(), ddl)
}

// RecordPick inserts one pick event.
func (c *Client) RecordPick(ctx context.Context, ev PickEvent) error {
	query := `
		INSERT INTO draft_picks
			(draft_id, pick_number, team_id, player_id, player_name,
			 position, pitcher, dollars, keeper, picked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	return c.conn.Exec(ctx, query,
		ev.DraftID, uint32(ev.PickNumber), ev.TeamID, ev.PlayerID, ev.PlayerName,
		ev.Position, boolToUInt8(ev.Pitcher), ev.Dollars, boolToUInt8(ev.Keeper), ev.At)
}

// ADP returns average draft position over the last 90 days of drafts,
// keepers excluded since their slot is fixed, not chosen.
func (c *Client) ADP(ctx context.Context, limit int) ([]ADPEntry, error) {
	query := `
		SELECT
			player_id,
			any(player_name) AS player_name,
			avg(pick_number) AS adp,
			avg(dollars) AS avg_dollars,
			count() AS samples
		FROM draft_picks
		WHERE keeper = 0
		AND picked_at >= now() - INTERVAL 90 DAY
		GROUP BY player_id
		ORDER BY adp ASC
		LIMIT $1
	`
	rows, err := c.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []ADPEntry{}
	for rows.Next() {
		var e ADPEntry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.ADP, &e.AvgDollars, &e.Samples); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
