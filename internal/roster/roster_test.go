package roster

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rotodraft/draftroom/internal/models"
)

func newTeam() *models.Team {
	return &models.Team{ID: "team-1", Name: "Test", Slots: NewSlots()}
}

func batter(id string, positions ...string) models.Player {
	return models.Player{ID: id, Name: id, Positions: positions}
}

func pitcher(id string, positions ...string) models.Player {
	return models.Player{ID: id, Name: id, Positions: positions, Pitcher: true}
}

func mustAssign(t *testing.T, team *models.Team, p models.Player) models.SlotTag {
	t.Helper()
	tag, err := Assign(team, p)
	if err != nil {
		t.Fatalf("Assign(%s) failed: %v", p.ID, err)
	}
	if !Place(team, tag, p.ID) {
		t.Fatalf("Place(%s, %s) failed", tag, p.ID)
	}
	return tag
}

func TestNewSlotsLayout(t *testing.T) {
	slots := NewSlots()

	total := 0
	for _, n := range SlotLimits {
		total += n
	}
	if len(slots) != total {
		t.Fatalf("expected %d slots, got %d", total, len(slots))
	}

	counts := map[models.SlotTag]int{}
	for _, e := range slots {
		counts[e.Slot]++
		if e.PlayerID != "" {
			t.Errorf("fresh slot %s should be empty", e.Slot)
		}
	}
	for tag, limit := range SlotLimits {
		if counts[tag] != limit {
			t.Errorf("tag %s: expected %d instances, got %d", tag, limit, counts[tag])
		}
	}
}

func TestAssignPrimaryPosition(t *testing.T) {
	team := newTeam()

	tag := mustAssign(t, team, batter("b1", "SS"))
	if tag != models.SlotSS {
		t.Errorf("expected SS, got %s", tag)
	}
}

func TestAssignEligibleOrder(t *testing.T) {
	// Positions are tried in listed order.
	team := newTeam()

	tag := mustAssign(t, team, batter("b1", "2B", "SS"))
	if tag != models.Slot2B {
		t.Errorf("expected 2B for first listed position, got %s", tag)
	}

	// 2B now full: the same shape of player falls to SS.
	tag = mustAssign(t, team, batter("b2", "2B", "SS"))
	if tag != models.SlotSS {
		t.Errorf("expected SS fallback, got %s", tag)
	}
}

func TestAssignBattingFlex(t *testing.T) {
	team := newTeam()

	mustAssign(t, team, batter("b1", "C"))
	tag := mustAssign(t, team, batter("b2", "C"))
	if tag != models.SlotUtil {
		t.Errorf("expected Util when C is full, got %s", tag)
	}
}

func TestAssignPitchingFlex(t *testing.T) {
	team := newTeam()

	for i := 0; i < SlotLimits[models.SlotSP]; i++ {
		tag := mustAssign(t, team, pitcher(fmt.Sprintf("sp%d", i), "SP"))
		if tag != models.SlotSP {
			t.Fatalf("expected SP, got %s", tag)
		}
	}

	tag := mustAssign(t, team, pitcher("sp-extra", "SP"))
	if tag != models.SlotP {
		t.Errorf("expected P flex when SP is full, got %s", tag)
	}
}

func TestPitcherNeverTakesUtil(t *testing.T) {
	team := newTeam()

	// Fill SP, RP and P so only batting flex and reserve remain.
	for i := 0; i < SlotLimits[models.SlotSP]; i++ {
		mustAssign(t, team, pitcher(fmt.Sprintf("sp%d", i), "SP"))
	}
	for i := 0; i < SlotLimits[models.SlotRP]; i++ {
		mustAssign(t, team, pitcher(fmt.Sprintf("rp%d", i), "RP"))
	}
	mustAssign(t, team, pitcher("pflex", "SP"))

	tag := mustAssign(t, team, pitcher("extra", "SP"))
	if tag != models.SlotBN {
		t.Errorf("pitcher overflow should land on BN, got %s", tag)
	}
	if Filled(team, models.SlotUtil) != 0 {
		t.Error("pitcher must never occupy Util")
	}
}

func TestReserveCascade(t *testing.T) {
	team := newTeam()

	// Saturate C and both Util slots, then the reserve tiers in order.
	fill := SlotLimits[models.SlotC] + SlotLimits[models.SlotUtil] +
		SlotLimits[models.SlotBN] + SlotLimits[models.SlotIL] + SlotLimits[models.SlotNA]

	var last models.SlotTag
	for i := 0; i < fill; i++ {
		last = mustAssign(t, team, batter(fmt.Sprintf("c%d", i), "C"))
	}
	if last != models.SlotNA {
		t.Errorf("final catcher should land on NA, got %s", last)
	}

	if Filled(team, models.SlotBN) != SlotLimits[models.SlotBN] {
		t.Error("BN should fill before IL")
	}
	if Filled(team, models.SlotIL) != SlotLimits[models.SlotIL] {
		t.Error("IL should fill before NA")
	}

	// Every applicable slot is now full.
	_, err := Assign(team, batter("overflow", "C"))
	if !errors.Is(err, ErrNoSlotAvailable) {
		t.Errorf("expected ErrNoSlotAvailable, got %v", err)
	}
}

func TestAssignDoesNotMutate(t *testing.T) {
	team := newTeam()

	if _, err := Assign(team, batter("b1", "SS")); err != nil {
		t.Fatal(err)
	}
	if Filled(team, models.SlotSS) != 0 {
		t.Error("Assign must not place the player")
	}
}

func TestRemove(t *testing.T) {
	team := newTeam()

	mustAssign(t, team, batter("b1", "SS"))
	tag, ok := Remove(team, "b1")
	if !ok || tag != models.SlotSS {
		t.Fatalf("Remove = (%s, %v), want (SS, true)", tag, ok)
	}
	if Filled(team, models.SlotSS) != 0 {
		t.Error("slot should be open after Remove")
	}

	if _, ok := Remove(team, "missing"); ok {
		t.Error("Remove of absent player should report false")
	}
}

func TestFlexOpen(t *testing.T) {
	team := newTeam()
	if !FlexOpen(team) {
		t.Fatal("fresh team should have flex capacity")
	}

	for i := 0; i < SlotLimits[models.SlotUtil]; i++ {
		mustAssign(t, team, batter(fmt.Sprintf("u%d", i), "Util"))
	}
	mustAssign(t, team, pitcher("p1", "P"))
	for i := 0; i < SlotLimits[models.SlotBN]; i++ {
		tag, err := Assign(team, batter(fmt.Sprintf("bn%d", i), "Util"))
		if err != nil {
			t.Fatal(err)
		}
		Place(team, tag, fmt.Sprintf("bn%d", i))
	}

	if FlexOpen(team) {
		t.Error("flex should be exhausted once Util, P and BN are full")
	}
}

func TestNeededPositions(t *testing.T) {
	team := newTeam()

	needed := NeededPositions(team)
	if !needed[models.SlotSS] || !needed[models.SlotSP] {
		t.Error("fresh team needs every specific position")
	}
	if needed[models.SlotUtil] || needed[models.SlotBN] || needed[models.SlotP] {
		t.Error("flex and reserve tags must never be needed positions")
	}

	mustAssign(t, team, batter("b1", "SS"))
	if NeededPositions(team)[models.SlotSS] {
		t.Error("SS should drop out once filled")
	}
}
