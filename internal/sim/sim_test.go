package sim

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rotodraft/draftroom/internal/catalog"
	"github.com/rotodraft/draftroom/internal/engine"
	"github.com/rotodraft/draftroom/internal/models"
)

func simCatalog() *catalog.Catalog {
	var players []models.Player
	for i := 0; i < 8; i++ {
		players = append(players, models.Player{
			ID:        fmt.Sprintf("b%d", i+1),
			Name:      fmt.Sprintf("Batter %d", i+1),
			Positions: []string{"OF"},
			MLBTeam:   "NYY",
			Dollars:   float64(30 - i*3),
			Stats:     map[string]float64{"HR": float64(30 - i), "R": 80, "OBP": 0.350, "AB": 500},
		})
	}
	for i := 0; i < 6; i++ {
		players = append(players, models.Player{
			ID:        fmt.Sprintf("p%d", i+1),
			Name:      fmt.Sprintf("Pitcher %d", i+1),
			Positions: []string{"SP"},
			MLBTeam:   "LAD",
			Dollars:   float64(25 - i*3),
			Stats:     map[string]float64{"SO": float64(200 - i*10), "ERA": 3.20, "WHIP": 1.05, "IP": 180},
		})
	}
	return catalog.New(players)
}

func startedEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(simCatalog(), []string{"Alpha", "Beta"})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	return e
}

func roundRobinOrder(picks int) []models.DraftOrderEntry {
	var order []models.DraftOrderEntry
	for i := 0; i < picks; i++ {
		team := "team-1"
		if i%2 == 1 {
			team = "team-2"
		}
		order = append(order, models.DraftOrderEntry{
			TeamID:     team,
			PickNumber: i + 1,
			Tendency:   models.TendencyNeutral,
		})
	}
	return order
}

func TestNewRequiresHumanInOrder(t *testing.T) {
	e := startedEngine(t)
	order := roundRobinOrder(4)

	if _, err := New(e, order, "team-9", DefaultWeights(), 1); !errors.Is(err, ErrHumanTeamMissing) {
		t.Errorf("expected ErrHumanTeamMissing, got %v", err)
	}
	if _, err := New(e, order, "team-2", DefaultWeights(), 1); err != nil {
		t.Errorf("valid human team rejected: %v", err)
	}
}

func TestRunUntilPausedStopsOnHumanTurn(t *testing.T) {
	e := startedEngine(t)
	s, err := New(e, roundRobinOrder(6), "team-2", DefaultWeights(), 42)
	if err != nil {
		t.Fatal(err)
	}

	made, err := s.RunUntilPaused()
	if err != nil {
		t.Fatal(err)
	}
	if len(made) != 1 {
		t.Fatalf("picks before pause = %d, want 1", len(made))
	}
	if made[0].TeamID != "team-1" || made[0].PickNumber != 1 {
		t.Errorf("first pick = %+v, want team-1 pick 1", made[0])
	}
	if !s.Paused() {
		t.Error("simulator should be paused on the human turn")
	}
	cur, ok := s.Current()
	if !ok || cur.TeamID != "team-2" {
		t.Errorf("cursor entry = %+v, want team-2", cur)
	}
}

func TestUserPickResumes(t *testing.T) {
	e := startedEngine(t)
	s, err := New(e, roundRobinOrder(4), "team-2", DefaultWeights(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RunUntilPaused(); err != nil {
		t.Fatal(err)
	}

	rec, err := s.UserPick("b2")
	if err != nil {
		t.Fatalf("UserPick: %v", err)
	}
	if rec.PlayerID != "b2" || rec.TeamID != "team-2" || rec.PickNumber != 2 {
		t.Errorf("user pick record = %+v", rec)
	}
	if s.Paused() {
		t.Error("simulator should resume after the user pick")
	}
	if s.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", s.Cursor())
	}
}

func TestUserPickRejectedOffTurn(t *testing.T) {
	e := startedEngine(t)
	s, err := New(e, roundRobinOrder(4), "team-2", DefaultWeights(), 42)
	if err != nil {
		t.Fatal(err)
	}

	// Cursor is on team-1, not the human team.
	if _, err := s.UserPick("b1"); !errors.Is(err, ErrNotHumanTurn) {
		t.Errorf("expected ErrNotHumanTurn, got %v", err)
	}
}

func TestUserPickFailureKeepsCursor(t *testing.T) {
	e := startedEngine(t)
	s, err := New(e, roundRobinOrder(4), "team-2", DefaultWeights(), 42)
	if err != nil {
		t.Fatal(err)
	}
	made, err := s.RunUntilPaused()
	if err != nil {
		t.Fatal(err)
	}

	// Picking the player the autonomous team just took fails without
	// advancing, so the human can retry.
	if _, err := s.UserPick(made[0].PlayerID); !errors.Is(err, engine.ErrPlayerUnavailable) {
		t.Fatalf("expected ErrPlayerUnavailable, got %v", err)
	}
	if !s.Paused() || s.Cursor() != 1 {
		t.Errorf("failed pick moved state: paused=%v cursor=%d", s.Paused(), s.Cursor())
	}
	if _, err := s.UserPick("b3"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestRunToCompletion(t *testing.T) {
	e := startedEngine(t)
	// Human picks first; everything after runs autonomously.
	order := []models.DraftOrderEntry{
		{TeamID: "team-2", PickNumber: 1, Tendency: models.TendencyNeutral},
	}
	for i := 1; i < 8; i++ {
		order = append(order, models.DraftOrderEntry{
			TeamID: "team-1", PickNumber: i + 1, Tendency: models.TendencyNeutral,
		})
	}
	s, err := New(e, order, "team-2", DefaultWeights(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RunUntilPaused(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UserPick("b1"); err != nil {
		t.Fatal(err)
	}
	made, err := s.RunUntilPaused()
	if err != nil {
		t.Fatal(err)
	}
	if len(made) != 7 {
		t.Fatalf("autonomous picks = %d, want 7", len(made))
	}
	if !s.Finished() {
		t.Error("simulator should be finished")
	}

	// No duplicates across the whole log, and every pick landed on a roster.
	seen := map[string]bool{}
	for _, rec := range s.PickLog() {
		if seen[rec.PlayerID] {
			t.Errorf("player %s drafted twice", rec.PlayerID)
		}
		seen[rec.PlayerID] = true
		if rec.Rationale == "" {
			t.Errorf("pick %d has no rationale", rec.PickNumber)
		}
	}
	if len(seen) != 8 {
		t.Errorf("distinct players drafted = %d, want 8", len(seen))
	}

	step, err := s.Advance()
	if err != nil || step.Kind != StepFinished {
		t.Errorf("Advance after exhaustion = %+v, %v, want StepFinished", step, err)
	}
}

func TestSeededRunsAreReproducible(t *testing.T) {
	run := func() []string {
		e := startedEngine(t)
		order := roundRobinOrder(8)
		// Human slot at the very end so the whole prefix is autonomous.
		order[7].TeamID = "team-2"
		for i := 0; i < 7; i++ {
			order[i].TeamID = "team-1"
		}
		s, err := New(e, order, "team-2", DefaultWeights(), 12345)
		if err != nil {
			t.Fatal(err)
		}
		made, err := s.RunUntilPaused()
		if err != nil {
			t.Fatal(err)
		}
		ids := make([]string, len(made))
		for i, rec := range made {
			ids[i] = rec.PlayerID
		}
		return ids
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("pick %d differs: %s vs %s", i+1, first[i], second[i])
		}
	}
}

func TestDifferentSeedsCanDiverge(t *testing.T) {
	run := func(seed int64) []string {
		e := startedEngine(t)
		order := roundRobinOrder(8)
		order[7].TeamID = "team-2"
		for i := 0; i < 7; i++ {
			order[i].TeamID = "team-1"
		}
		s, err := New(e, order, "team-2", DefaultWeights(), seed)
		if err != nil {
			t.Fatal(err)
		}
		made, err := s.RunUntilPaused()
		if err != nil {
			t.Fatal(err)
		}
		ids := make([]string, len(made))
		for i, rec := range made {
			ids[i] = rec.PlayerID
		}
		return ids
	}

	base := run(1)
	for seed := int64(2); seed <= 6; seed++ {
		other := run(seed)
		for i := range base {
			if other[i] != base[i] {
				return
			}
		}
	}
	t.Error("five different seeds all reproduced the seed-1 pick sequence")
}

func TestTendencyInfluencesRationale(t *testing.T) {
	e := startedEngine(t)
	order := []models.DraftOrderEntry{
		{TeamID: "team-1", PickNumber: 1, Tendency: models.TendencyPitching},
		{TeamID: "team-2", PickNumber: 2, Tendency: models.TendencyNeutral},
	}
	s, err := New(e, order, "team-2", DefaultWeights(), 3)
	if err != nil {
		t.Fatal(err)
	}
	made, err := s.RunUntilPaused()
	if err != nil {
		t.Fatal(err)
	}
	if len(made) != 1 {
		t.Fatalf("picks = %d, want 1", len(made))
	}
	if made[0].Pitcher {
		// A pitching tendency pick should say so.
		if made[0].Rationale == "" {
			t.Error("pitching pick missing rationale")
		}
	}
}
