package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rotodraft/draftroom/internal/analytics"
	"github.com/rotodraft/draftroom/internal/catalog"
	"github.com/rotodraft/draftroom/internal/dal"
	"github.com/rotodraft/draftroom/internal/engine"
	"github.com/rotodraft/draftroom/internal/mocks"
	"github.com/rotodraft/draftroom/internal/models"
	"github.com/rotodraft/draftroom/internal/pubsub"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]models.Player{
		{ID: "b1", Name: "Catcher One", Positions: []string{"C"}, MLBTeam: "NYY", Dollars: 30, Stats: map[string]float64{"HR": 25, "OBP": 0.360, "AB": 500}},
		{ID: "b2", Name: "Shortstop One", Positions: []string{"SS"}, MLBTeam: "BOS", Dollars: 25, Stats: map[string]float64{"HR": 20, "OBP": 0.340, "AB": 550}},
		{ID: "b3", Name: "Outfield One", Positions: []string{"OF"}, MLBTeam: "LAD", Dollars: 22, Stats: map[string]float64{"HR": 30, "OBP": 0.350, "AB": 520}},
		{ID: "b4", Name: "Outfield Two", Positions: []string{"OF"}, MLBTeam: "CHC", Dollars: 15, Stats: map[string]float64{"HR": 18, "OBP": 0.330, "AB": 480}},
		{ID: "p1", Name: "Starter One", Positions: []string{"SP"}, MLBTeam: "ATL", Dollars: 28, Pitcher: true, Stats: map[string]float64{"SO": 210, "ERA": 2.90, "WHIP": 1.00, "IP": 190}},
		{ID: "p2", Name: "Reliever One", Positions: []string{"RP"}, MLBTeam: "SEA", Dollars: 8, Pitcher: true, Stats: map[string]float64{"SO": 80, "SV": 30, "ERA": 3.10, "WHIP": 1.05, "IP": 65}},
	})
}

func newTestHandlers() *APIHandlers {
	eng := engine.New(testCatalog(), []string{"Alpha", "Beta"})
	return NewAPIHandlers(eng, dal.NewMemoryStore(), pubsub.New(), mocks.NewMockRecorder())
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
}

func startDraft(t *testing.T, h *APIHandlers) {
	t.Helper()
	if w := postJSON(t, h.StartDraft, ""); w.Code != http.StatusOK {
		t.Fatalf("StartDraft = %d: %s", w.Code, w.Body.String())
	}
}

func TestGetDraftState(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/draft/state", nil)
	w := httptest.NewRecorder()
	h.GetDraftState(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var state struct {
		DraftID string         `json:"draftId"`
		Phase   string         `json:"phase"`
		Teams   []*models.Team `json:"teams"`
	}
	decode(t, w, &state)
	if state.DraftID == "" {
		t.Error("draftId missing")
	}
	if state.Phase != "configuring" {
		t.Errorf("phase = %q, want configuring", state.Phase)
	}
	if len(state.Teams) != 2 || state.Teams[0].Name != "Alpha" {
		t.Errorf("teams = %+v", state.Teams)
	}
}

func TestStartRequiresPost(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/draft/start", nil)
	w := httptest.NewRecorder()
	h.StartDraft(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestDraftPickFlow(t *testing.T) {
	h := newTestHandlers()
	startDraft(t, h)

	w := postJSON(t, h.DraftPick, `{"teamId":"team-1","playerId":"b1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("pick status = %d: %s", w.Code, w.Body.String())
	}
	var rec models.PickRecord
	decode(t, w, &rec)
	if rec.Seq != 1 || rec.Slot != models.SlotC || rec.TeamID != "team-1" {
		t.Errorf("pick record = %+v", rec)
	}

	// Same player again conflicts.
	w = postJSON(t, h.DraftPick, `{"teamId":"team-2","playerId":"b1"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate pick status = %d, want 409", w.Code)
	}
	var errBody map[string]string
	decode(t, w, &errBody)
	if errBody["kind"] != "state_conflict" {
		t.Errorf("error kind = %q, want state_conflict", errBody["kind"])
	}

	// Unknown team is a validation error.
	w = postJSON(t, h.DraftPick, `{"teamId":"nope","playerId":"b2"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown team status = %d, want 400", w.Code)
	}
}

func TestUndoPick(t *testing.T) {
	h := newTestHandlers()
	startDraft(t, h)
	postJSON(t, h.DraftPick, `{"teamId":"team-1","playerId":"b1"}`)

	w := postJSON(t, h.UndoPick, `{"playerId":"b1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("undo status = %d: %s", w.Code, w.Body.String())
	}

	// Undoing an undrafted player conflicts with current state.
	w = postJSON(t, h.UndoPick, `{"playerId":"b2"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("undo undrafted status = %d, want 409", w.Code)
	}
}

func TestKeeperEndpoints(t *testing.T) {
	h := newTestHandlers()

	w := postJSON(t, h.AddKeeper, `{"teamId":"team-1","playerId":"b1","cost":14}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add keeper status = %d: %s", w.Code, w.Body.String())
	}
	var rec models.PickRecord
	decode(t, w, &rec)
	if !rec.Keeper {
		t.Error("record not flagged as keeper")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/keepers", nil)
	lw := httptest.NewRecorder()
	h.ListKeepers(lw, req)
	var keepers []models.PickRecord
	decode(t, lw, &keepers)
	if len(keepers) != 1 || keepers[0].PlayerID != "b1" {
		t.Errorf("keepers = %+v", keepers)
	}

	w = postJSON(t, h.RemoveKeeper, `{"playerId":"b1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("remove keeper status = %d", w.Code)
	}

	// Keepers freeze once the draft starts.
	startDraft(t, h)
	w = postJSON(t, h.AddKeeper, `{"teamId":"team-1","playerId":"b1","cost":14}`)
	if w.Code != http.StatusConflict {
		t.Errorf("keeper after start status = %d, want 409", w.Code)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	h := newTestHandlers()
	postJSON(t, h.AddKeeper, `{"teamId":"team-1","playerId":"b1","cost":14}`)

	w := postJSON(t, h.SaveConfig, `{"name":"My League"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", w.Code, w.Body.String())
	}
	var saved dal.SavedConfig
	decode(t, w, &saved)
	if saved.ID == "" || saved.Config.Name != "My League" {
		t.Fatalf("saved = %+v", saved)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/configs", nil)
	lw := httptest.NewRecorder()
	h.ListConfigs(lw, req)
	var list []dal.SavedConfig
	decode(t, lw, &list)
	if len(list) != 1 {
		t.Fatalf("list = %+v", list)
	}

	// Clear the keeper, then load the config back.
	postJSON(t, h.RemoveKeeper, `{"playerId":"b1"}`)
	w = postJSON(t, h.LoadConfig, `{"id":"`+saved.ID+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("load status = %d: %s", w.Code, w.Body.String())
	}
	kw := httptest.NewRecorder()
	h.ListKeepers(kw, httptest.NewRequest(http.MethodGet, "/api/keepers", nil))
	var keepers []models.PickRecord
	decode(t, kw, &keepers)
	if len(keepers) != 1 || keepers[0].PlayerID != "b1" {
		t.Errorf("keepers after load = %+v", keepers)
	}

	w = postJSON(t, h.DeleteConfig, `{"id":"`+saved.ID+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = postJSON(t, h.LoadConfig, `{"id":"`+saved.ID+`"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("load deleted status = %d, want 404", w.Code)
	}
}

func TestSaveConfigRequiresName(t *testing.T) {
	h := newTestHandlers()
	if w := postJSON(t, h.SaveConfig, `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetAvailable(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/draft/available", nil)
	w := httptest.NewRecorder()
	h.GetAvailable(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing category status = %d, want 400", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/draft/available?category=batter", nil)
	w = httptest.NewRecorder()
	h.GetAvailable(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var players []models.Player
	decode(t, w, &players)
	if len(players) != 4 {
		t.Fatalf("batters = %d, want 4", len(players))
	}
	for i := 1; i < len(players); i++ {
		if players[i].Dollars > players[i-1].Dollars {
			t.Errorf("players not sorted by value: %v then %v", players[i-1].Dollars, players[i].Dollars)
		}
	}
}

func TestGetStandings(t *testing.T) {
	h := newTestHandlers()
	startDraft(t, h)
	postJSON(t, h.DraftPick, `{"teamId":"team-1","playerId":"b3"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/draft/standings", nil)
	w := httptest.NewRecorder()
	h.GetStandings(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var table []models.TeamStanding
	decode(t, w, &table)
	if len(table) != 2 {
		t.Fatalf("standings rows = %d, want 2", len(table))
	}
	if table[0].TeamID != "team-1" {
		t.Errorf("leader = %s, want team-1 after its pick", table[0].TeamID)
	}
}

func TestGetADP(t *testing.T) {
	h := newTestHandlers()

	// Seed the recorder directly; the handler path records asynchronously.
	h.recorder.RecordPick(context.Background(), analytics.PickEvent{
		DraftID: "d1", PickNumber: 3, PlayerID: "b1", PlayerName: "Catcher One", Dollars: 30,
	})
	h.recorder.RecordPick(context.Background(), analytics.PickEvent{
		DraftID: "d2", PickNumber: 5, PlayerID: "b1", PlayerName: "Catcher One", Dollars: 28,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/market/adp", nil)
	w := httptest.NewRecorder()
	h.GetADP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var entries []analytics.ADPEntry
	decode(t, w, &entries)
	if len(entries) != 1 || entries[0].ADP != 4 {
		t.Errorf("entries = %+v, want one with ADP 4", entries)
	}
}

func TestGetADPWithoutRecorder(t *testing.T) {
	eng := engine.New(testCatalog(), []string{"Alpha", "Beta"})
	h := NewAPIHandlers(eng, dal.NewMemoryStore(), pubsub.New(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/market/adp", nil)
	w := httptest.NewRecorder()
	h.GetADP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestSimFlow(t *testing.T) {
	h := newTestHandlers()
	startDraft(t, h)

	// No simulator yet.
	if w := postJSON(t, h.RunSim, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("run without order status = %d, want 400", w.Code)
	}

	order := "team_id,pick_number\nteam-1,1\nteam-2,2\nteam-1,3\n"
	req := httptest.NewRequest(http.MethodPost, "/api/sim/order?humanTeamId=team-2&seed=7", strings.NewReader(order))
	uw := httptest.NewRecorder()
	h.UploadOrder(uw, req)
	if uw.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", uw.Code, uw.Body.String())
	}
	var uploaded struct {
		Picks int   `json:"picks"`
		Seed  int64 `json:"seed"`
	}
	decode(t, uw, &uploaded)
	if uploaded.Picks != 3 || uploaded.Seed != 7 {
		t.Errorf("upload response = %+v", uploaded)
	}

	w := postJSON(t, h.RunSim, "")
	if w.Code != http.StatusOK {
		t.Fatalf("run status = %d: %s", w.Code, w.Body.String())
	}
	var run struct {
		Picks    []models.PickLogEntry `json:"picks"`
		Paused   bool                  `json:"paused"`
		Finished bool                  `json:"finished"`
	}
	decode(t, w, &run)
	if len(run.Picks) != 1 || !run.Paused || run.Finished {
		t.Fatalf("run = %+v", run)
	}

	// Pick a player the bot didn't take.
	human := "b1"
	if run.Picks[0].PlayerID == "b1" {
		human = "b2"
	}
	w = postJSON(t, h.SimPick, `{"playerId":"`+human+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("sim pick status = %d: %s", w.Code, w.Body.String())
	}

	// Off-turn user pick conflicts.
	w = postJSON(t, h.SimPick, `{"playerId":"b4"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("off-turn pick status = %d, want 409", w.Code)
	}

	w = postJSON(t, h.RunSim, "")
	decode(t, w, &run)
	if !run.Finished {
		t.Errorf("run after final pick = %+v, want finished", run)
	}

	sw := httptest.NewRecorder()
	h.SimState(sw, httptest.NewRequest(http.MethodGet, "/api/sim/state", nil))
	var state map[string]interface{}
	decode(t, sw, &state)
	if state["configured"] != true || state["finished"] != true {
		t.Errorf("sim state = %+v", state)
	}
}

func TestUploadOrderValidation(t *testing.T) {
	h := newTestHandlers()

	// Missing humanTeamId.
	req := httptest.NewRequest(http.MethodPost, "/api/sim/order", strings.NewReader("team_id,pick_number\nteam-1,1\n"))
	w := httptest.NewRecorder()
	h.UploadOrder(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing humanTeamId status = %d, want 400", w.Code)
	}

	// Malformed CSV.
	req = httptest.NewRequest(http.MethodPost, "/api/sim/order?humanTeamId=team-1", strings.NewReader("nope\n"))
	w = httptest.NewRecorder()
	h.UploadOrder(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad csv status = %d, want 400", w.Code)
	}

	// Human team absent from the order.
	req = httptest.NewRequest(http.MethodPost, "/api/sim/order?humanTeamId=team-9", strings.NewReader("team_id,pick_number\nteam-1,1\n"))
	w = httptest.NewRecorder()
	h.UploadOrder(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("absent human status = %d, want 400", w.Code)
	}
}
