package models

import "time"

// Category separates the two broad player pools.
type Category string

const (
	CategoryBatter  Category = "batter"
	CategoryPitcher Category = "pitcher"
)

// SlotTag names a roster slot type.
type SlotTag string

const (
	SlotC    SlotTag = "C"
	Slot1B   SlotTag = "1B"
	Slot2B   SlotTag = "2B"
	Slot3B   SlotTag = "3B"
	SlotSS   SlotTag = "SS"
	SlotOF   SlotTag = "OF"
	SlotUtil SlotTag = "Util"
	SlotSP   SlotTag = "SP"
	SlotRP   SlotTag = "RP"
	SlotP    SlotTag = "P"
	SlotBN   SlotTag = "BN"
	SlotIL   SlotTag = "IL"
	SlotNA   SlotTag = "NA"
)

// OwnershipStatus tracks whether a player has been drafted.
type OwnershipStatus string

const (
	StatusAvailable OwnershipStatus = "Available"
	StatusDrafted   OwnershipStatus = "Drafted"
	StatusKeeper    OwnershipStatus = "Keeper"
)

// Player is a single catalog entry. The record itself is immutable for the
// session; ownership lives in the engine, not here.
type Player struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Positions []string           `json:"positions"` // eligibility in preference order, e.g. [C, 1B]
	MLBTeam   string             `json:"mlbTeam"`
	Dollars   float64            `json:"dollars"`
	Stats     map[string]float64 `json:"stats"`
	Pitcher   bool               `json:"pitcher"`
}

// Category returns the player's broad pool.
func (p Player) Category() Category {
	if p.Pitcher {
		return CategoryPitcher
	}
	return CategoryBatter
}

// RosterEntry is one slot on a team. PlayerID is empty while the slot is open.
type RosterEntry struct {
	Slot     SlotTag `json:"slot"`
	PlayerID string  `json:"playerId,omitempty"`
}

// Team is a fantasy team with a fixed slot layout.
type Team struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Slots      []RosterEntry `json:"slots"`
	KeeperCost float64       `json:"keeperCost"`
}

// PickRecord is one entry in the append-only draft audit log.
type PickRecord struct {
	Seq      int       `json:"seq"`
	TeamID   string    `json:"teamId"`
	PlayerID string    `json:"playerId"`
	Slot     SlotTag   `json:"slot"`
	At       time.Time `json:"at"`
	Keeper   bool      `json:"keeper"`
	Cost     float64   `json:"cost,omitempty"`
}

// Ownership is the mutable annotation layered over the read-only catalog.
type Ownership struct {
	Status OwnershipStatus `json:"status"`
	TeamID string          `json:"teamId,omitempty"`
	Keeper bool            `json:"keeper,omitempty"`
	Cost   float64         `json:"cost,omitempty"`
}

// Tendency biases a simulated team toward hitters or pitchers.
type Tendency string

const (
	TendencyHitting  Tendency = "hitting"
	TendencyPitching Tendency = "pitching"
	TendencyNeutral  Tendency = "neutral"
)

// DraftOrderEntry is one row of the simulator's pick order.
type DraftOrderEntry struct {
	TeamID     string   `json:"teamId"`
	PickNumber int      `json:"pickNumber"`
	Tendency   Tendency `json:"tendency"`
}

// Keeper is one keeper assignment inside a saved configuration.
type Keeper struct {
	PlayerID string  `json:"player_id"`
	Cost     float64 `json:"cost"`
}

// KeeperConfig is a named, persistable draft configuration: team names plus
// keeper assignments keyed by team id.
type KeeperConfig struct {
	Name      string              `json:"name"`
	CreatedAt time.Time           `json:"created_at"`
	TeamNames []string            `json:"team_names"`
	Keepers   map[string][]Keeper `json:"keepers"`
}

// PickLogEntry is a human-readable record of a simulated or user pick.
type PickLogEntry struct {
	PickNumber int     `json:"pickNumber"`
	TeamID     string  `json:"teamId"`
	TeamName   string  `json:"teamName"`
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Position   string  `json:"position"`
	Pitcher    bool    `json:"pitcher"`
	Dollars    float64 `json:"dollars"`
	Rationale  string  `json:"rationale"`
}

// TeamStanding is one row of the roto standings.
type TeamStanding struct {
	TeamID     string             `json:"teamId"`
	TeamName   string             `json:"teamName"`
	Totals     map[string]float64 `json:"totals"`
	Points     map[string]float64 `json:"points"`
	TotalScore float64            `json:"totalScore"`
}
