// Package engine is the authoritative draft state machine: teams, rosters,
// keepers, pick history and undo. It is single-writer by contract; callers
// serialize access.
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/rotodraft/draftroom/internal/catalog"
	"github.com/rotodraft/draftroom/internal/models"
	"github.com/rotodraft/draftroom/internal/roster"
)

// Phase is the lifecycle state of a draft.
type Phase string

const (
	PhaseConfiguring Phase = "configuring"
	PhaseInProgress  Phase = "in_progress"
	PhaseComplete    Phase = "complete"
)

// Engine owns the DraftState for one session. The catalog is shared and
// read-only; ownership annotations and rosters live here.
type Engine struct {
	catalog   *catalog.Catalog
	phase     Phase
	teams     map[string]*models.Team
	teamOrder []string
	picks     []models.PickRecord
	owners    map[string]models.Ownership
	nextSeq   int
}

// New creates a draft over the given catalog with one team per name. Team
// ids are "team-1".."team-N" in the order the names were given.
func New(cat *catalog.Catalog, teamNames []string) *Engine {
	e := &Engine{
		catalog: cat,
		phase:   PhaseConfiguring,
		teams:   make(map[string]*models.Team),
		owners:  make(map[string]models.Ownership),
		nextSeq: 1,
	}
	for i, name := range teamNames {
		id := fmt.Sprintf("team-%d", i+1)
		e.teams[id] = &models.Team{
			ID:    id,
			Name:  name,
			Slots: roster.NewSlots(),
		}
		e.teamOrder = append(e.teamOrder, id)
	}
	return e
}

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase { return e.phase }

// Start freezes the team and keeper configuration and opens the draft.
func (e *Engine) Start() error {
	if e.phase != PhaseConfiguring {
		return ErrConfigFrozen
	}
	e.phase = PhaseInProgress
	return nil
}

// End explicitly completes the draft. Further picks are rejected.
func (e *Engine) End() {
	e.phase = PhaseComplete
}

// Complete reports the completion policy: every team's non-reserve slots are
// full. It is a query, not an enforced block; picks keep landing in reserve
// slots until those run out too.
func (e *Engine) Complete() bool {
	if e.phase == PhaseComplete {
		return true
	}
	for _, t := range e.teams {
		for _, entry := range t.Slots {
			if !roster.Reserve(entry.Slot) && entry.PlayerID == "" {
				return false
			}
		}
	}
	return true
}

// MakePick drafts a player to a team. Atomic: on any error nothing changed.
func (e *Engine) MakePick(teamID, playerID string) (models.PickRecord, error) {
	if e.phase == PhaseComplete {
		return models.PickRecord{}, ErrDraftComplete
	}
	if e.phase != PhaseInProgress {
		return models.PickRecord{}, ErrDraftNotStarted
	}
	return e.commit(teamID, playerID, false, 0)
}

// AddKeeper pre-assigns a player to a team before the draft starts. Keepers
// are logged as PickRecords immediately, validated exactly like picks.
func (e *Engine) AddKeeper(teamID, playerID string, cost float64) (models.PickRecord, error) {
	if e.phase != PhaseConfiguring {
		return models.PickRecord{}, ErrConfigFrozen
	}
	rec, err := e.commit(teamID, playerID, true, cost)
	if err != nil {
		return models.PickRecord{}, err
	}
	e.teams[teamID].KeeperCost += cost
	return rec, nil
}

// commit validates then applies a pick. Slot availability is checked before
// any mutation so a failure leaves state untouched.
func (e *Engine) commit(teamID, playerID string, keeper bool, cost float64) (models.PickRecord, error) {
	team, ok := e.teams[teamID]
	if !ok {
		return models.PickRecord{}, fmt.Errorf("%w: %s", ErrUnknownTeam, teamID)
	}
	p, ok := e.catalog.Player(playerID)
	if !ok {
		return models.PickRecord{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if own, owned := e.owners[playerID]; owned {
		return models.PickRecord{}, fmt.Errorf("%w: %s by %s", ErrPlayerUnavailable, playerID, own.TeamID)
	}

	slot, err := roster.Assign(team, p)
	if err != nil {
		return models.PickRecord{}, err
	}
	roster.Place(team, slot, playerID)

	status := models.StatusDrafted
	if keeper {
		status = models.StatusKeeper
	}
	e.owners[playerID] = models.Ownership{
		Status: status,
		TeamID: teamID,
		Keeper: keeper,
		Cost:   cost,
	}

	rec := models.PickRecord{
		Seq:      e.nextSeq,
		TeamID:   teamID,
		PlayerID: playerID,
		Slot:     slot,
		At:       time.Now(),
		Keeper:   keeper,
		Cost:     cost,
	}
	e.nextSeq++
	e.picks = append(e.picks, rec)
	return rec, nil
}

// RemoveKeeper reverses AddKeeper: clears ownership, frees the slot, deletes
// the PickRecord. Only valid while configuring.
func (e *Engine) RemoveKeeper(playerID string) error {
	if e.phase != PhaseConfiguring {
		return ErrConfigFrozen
	}
	own, ok := e.owners[playerID]
	if !ok || !own.Keeper {
		return fmt.Errorf("%w: %s", ErrNotAKeeper, playerID)
	}
	e.teams[own.TeamID].KeeperCost -= own.Cost
	e.release(playerID, own.TeamID)
	return nil
}

// UndoPick reverses a non-keeper pick. Sequence numbers of later picks are
// not renumbered; the record is removed and a gap remains.
func (e *Engine) UndoPick(playerID string) error {
	own, ok := e.owners[playerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPlayerNotDrafted, playerID)
	}
	if own.Keeper {
		return fmt.Errorf("%w: %s", ErrCannotUndoKeeper, playerID)
	}
	e.release(playerID, own.TeamID)
	return nil
}

// release clears the player's ownership, roster slot and pick record.
func (e *Engine) release(playerID, teamID string) {
	delete(e.owners, playerID)
	roster.Remove(e.teams[teamID], playerID)
	for i := range e.picks {
		if e.picks[i].PlayerID == playerID {
			e.picks = append(e.picks[:i], e.picks[i+1:]...)
			break
		}
	}
	if e.phase == PhaseComplete {
		e.phase = PhaseInProgress
	}
}

// Ownership returns the ownership annotation for a player.
func (e *Engine) Ownership(playerID string) (models.Ownership, bool) {
	own, ok := e.owners[playerID]
	return own, ok
}

// CurrentRosters returns a read-only view of every team, keyed by id.
// Teams are deep-copied so callers cannot mutate engine state.
func (e *Engine) CurrentRosters() map[string]*models.Team {
	out := make(map[string]*models.Team, len(e.teams))
	for id, t := range e.teams {
		out[id] = copyTeam(t)
	}
	return out
}

// Team returns a copy of a single team.
func (e *Engine) Team(teamID string) (*models.Team, bool) {
	t, ok := e.teams[teamID]
	if !ok {
		return nil, false
	}
	return copyTeam(t), true
}

// TeamIDs returns team ids in creation order.
func (e *Engine) TeamIDs() []string {
	out := make([]string, len(e.teamOrder))
	copy(out, e.teamOrder)
	return out
}

// PickHistory returns the pick log in sequence order.
func (e *Engine) PickHistory() []models.PickRecord {
	out := make([]models.PickRecord, len(e.picks))
	copy(out, e.picks)
	return out
}

// Keepers returns the keeper subset of the pick history.
func (e *Engine) Keepers() []models.PickRecord {
	var out []models.PickRecord
	for _, rec := range e.picks {
		if rec.Keeper {
			out = append(out, rec)
		}
	}
	return out
}

// AvailablePlayers lists undrafted players of a category, sorted by
// descending auction value with ties broken by player id.
func (e *Engine) AvailablePlayers(cat models.Category) []models.Player {
	var out []models.Player
	for _, p := range e.catalog.Players() {
		if p.Category() != cat {
			continue
		}
		if _, owned := e.owners[p.ID]; owned {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dollars != out[j].Dollars {
			return out[i].Dollars > out[j].Dollars
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Catalog exposes the shared read-only player catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// ExportKeeperConfig serializes the current keeper assignments and team names.
func (e *Engine) ExportKeeperConfig(name string) models.KeeperConfig {
	cfg := models.KeeperConfig{
		Name:      name,
		CreatedAt: time.Now(),
		Keepers:   make(map[string][]models.Keeper),
	}
	for _, id := range e.teamOrder {
		cfg.TeamNames = append(cfg.TeamNames, e.teams[id].Name)
	}
	for _, rec := range e.Keepers() {
		cfg.Keepers[rec.TeamID] = append(cfg.Keepers[rec.TeamID], models.Keeper{
			PlayerID: rec.PlayerID,
			Cost:     rec.Cost,
		})
	}
	return cfg
}

// ImportKeeperConfig replays a saved configuration through AddKeeper. The
// engine must still be configuring. Team ids in the config must exist.
func (e *Engine) ImportKeeperConfig(cfg models.KeeperConfig) error {
	if e.phase != PhaseConfiguring {
		return ErrConfigFrozen
	}
	teamIDs := make([]string, 0, len(cfg.Keepers))
	for id := range cfg.Keepers {
		teamIDs = append(teamIDs, id)
	}
	sort.Strings(teamIDs)
	for _, teamID := range teamIDs {
		for _, k := range cfg.Keepers[teamID] {
			if _, err := e.AddKeeper(teamID, k.PlayerID, k.Cost); err != nil {
				return fmt.Errorf("replay keeper %s to %s: %w", k.PlayerID, teamID, err)
			}
		}
	}
	return nil
}

func copyTeam(t *models.Team) *models.Team {
	cp := *t
	cp.Slots = make([]models.RosterEntry, len(t.Slots))
	copy(cp.Slots, t.Slots)
	return &cp
}
