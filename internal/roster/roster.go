// Package roster owns the slot taxonomy and the slot-assignment policy.
package roster

import (
	"errors"

	"github.com/rotodraft/draftroom/internal/models"
)

var ErrNoSlotAvailable = errors.New("no roster slot available")

// SlotLimits is the fixed per-tag capacity of every roster.
var SlotLimits = map[models.SlotTag]int{
	models.SlotC:    1,
	models.Slot1B:   1,
	models.Slot2B:   1,
	models.Slot3B:   1,
	models.SlotSS:   1,
	models.SlotOF:   3,
	models.SlotUtil: 2,
	models.SlotSP:   3,
	models.SlotRP:   2,
	models.SlotP:    1,
	models.SlotBN:   6,
	models.SlotIL:   5,
	models.SlotNA:   2,
}

// slotLayout is the order slots appear on a roster sheet.
var slotLayout = []models.SlotTag{
	models.SlotC, models.Slot1B, models.Slot2B, models.Slot3B, models.SlotSS,
	models.SlotOF, models.SlotUtil,
	models.SlotSP, models.SlotRP, models.SlotP,
	models.SlotBN, models.SlotIL, models.SlotNA,
}

// reserveOrder is the fixed priority for reserve assignment.
var reserveOrder = []models.SlotTag{models.SlotBN, models.SlotIL, models.SlotNA}

// primaryBatting are the position-specific batting slots.
var primaryBatting = map[models.SlotTag]bool{
	models.SlotC: true, models.Slot1B: true, models.Slot2B: true,
	models.Slot3B: true, models.SlotSS: true, models.SlotOF: true,
}

// primaryPitching are the position-specific pitching slots. P doubles as the
// pitching flex: it accepts either SP or RP.
var primaryPitching = map[models.SlotTag]bool{
	models.SlotSP: true, models.SlotRP: true, models.SlotP: true,
}

// NewSlots builds the fixed slot layout for a fresh team.
func NewSlots() []models.RosterEntry {
	var slots []models.RosterEntry
	for _, tag := range slotLayout {
		for i := 0; i < SlotLimits[tag]; i++ {
			slots = append(slots, models.RosterEntry{Slot: tag})
		}
	}
	return slots
}

// Assign recommends the single best open slot for a player, without mutating
// the team. Policy, in order: the player's eligible positions as listed, then
// the category flex (Util for batters, P for pitchers), then reserve slots
// BN, IL, NA. ErrNoSlotAvailable only when every applicable tag is full.
func Assign(team *models.Team, p models.Player) (models.SlotTag, error) {
	for _, pos := range p.Positions {
		tag := models.SlotTag(pos)
		if p.Pitcher && !primaryPitching[tag] {
			continue
		}
		if !p.Pitcher && !primaryBatting[tag] {
			continue
		}
		if hasOpen(team, tag) {
			return tag, nil
		}
	}

	flex := models.SlotUtil
	if p.Pitcher {
		flex = models.SlotP
	}
	if hasOpen(team, flex) {
		return flex, nil
	}

	for _, tag := range reserveOrder {
		if hasOpen(team, tag) {
			return tag, nil
		}
	}

	return "", ErrNoSlotAvailable
}

// HasOpenSlot reports whether Assign would succeed, without committing.
func HasOpenSlot(team *models.Team, p models.Player) bool {
	_, err := Assign(team, p)
	return err == nil
}

// Place fills the first open instance of the given tag with the player.
// Callers should only pass a tag obtained from Assign.
func Place(team *models.Team, tag models.SlotTag, playerID string) bool {
	for i := range team.Slots {
		if team.Slots[i].Slot == tag && team.Slots[i].PlayerID == "" {
			team.Slots[i].PlayerID = playerID
			return true
		}
	}
	return false
}

// Remove clears the slot occupied by the player and returns its tag.
func Remove(team *models.Team, playerID string) (models.SlotTag, bool) {
	for i := range team.Slots {
		if team.Slots[i].PlayerID == playerID {
			tag := team.Slots[i].Slot
			team.Slots[i].PlayerID = ""
			return tag, true
		}
	}
	return "", false
}

// Filled counts occupied instances of a tag.
func Filled(team *models.Team, tag models.SlotTag) int {
	n := 0
	for _, e := range team.Slots {
		if e.Slot == tag && e.PlayerID != "" {
			n++
		}
	}
	return n
}

// Open counts open instances of a tag.
func Open(team *models.Team, tag models.SlotTag) int {
	return SlotLimits[tag] - Filled(team, tag)
}

// Reserve reports whether a tag belongs to the reserve tier. Reserve slots
// are excluded from standings aggregation.
func Reserve(tag models.SlotTag) bool {
	return tag == models.SlotBN || tag == models.SlotIL || tag == models.SlotNA
}

// FlexOpen reports whether the team still has any value-chasing flex capacity
// (Util, P or BN). While it does, the simulator considers all players; once
// gone, candidates are restricted to unfilled specific positions.
func FlexOpen(team *models.Team) bool {
	for _, tag := range []models.SlotTag{models.SlotUtil, models.SlotP, models.SlotBN} {
		if hasOpen(team, tag) {
			return true
		}
	}
	return false
}

// NeededPositions returns the specific position tags that still have an open
// instance. Flex and reserve tags are never included.
func NeededPositions(team *models.Team) map[models.SlotTag]bool {
	needed := make(map[models.SlotTag]bool)
	for _, tag := range []models.SlotTag{
		models.SlotC, models.Slot1B, models.Slot2B, models.Slot3B,
		models.SlotSS, models.SlotOF, models.SlotSP, models.SlotRP,
	} {
		if hasOpen(team, tag) {
			needed[tag] = true
		}
	}
	return needed
}

func hasOpen(team *models.Team, tag models.SlotTag) bool {
	for _, e := range team.Slots {
		if e.Slot == tag && e.PlayerID == "" {
			return true
		}
	}
	return false
}
