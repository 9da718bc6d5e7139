// Package catalog holds the immutable per-draft player pool and builds it
// from merged vendor projection CSVs.
package catalog

import (
	"sort"

	"github.com/rotodraft/draftroom/internal/models"
)

// Catalog is a read-only collection of player records. It never changes for
// the lifetime of a draft; ownership annotations live in the engine.
type Catalog struct {
	players []models.Player
	byID    map[string]models.Player
}

// New builds a catalog from player records. Players are kept in descending
// dollar order (ties by id) so listings are deterministic.
func New(players []models.Player) *Catalog {
	sorted := make([]models.Player, len(players))
	copy(sorted, players)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Dollars != sorted[j].Dollars {
			return sorted[i].Dollars > sorted[j].Dollars
		}
		return sorted[i].ID < sorted[j].ID
	})

	byID := make(map[string]models.Player, len(sorted))
	for _, p := range sorted {
		byID[p.ID] = p
	}
	return &Catalog{players: sorted, byID: byID}
}

// Player looks up a record by id.
func (c *Catalog) Player(id string) (models.Player, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Players returns all records in descending dollar order.
func (c *Catalog) Players() []models.Player {
	out := make([]models.Player, len(c.players))
	copy(out, c.players)
	return out
}

// Len is the number of players in the catalog.
func (c *Catalog) Len() int { return len(c.players) }
