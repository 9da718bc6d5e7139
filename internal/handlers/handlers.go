package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rotodraft/draftroom/internal/analytics"
	"github.com/rotodraft/draftroom/internal/dal"
	"github.com/rotodraft/draftroom/internal/engine"
	"github.com/rotodraft/draftroom/internal/logger"
	"github.com/rotodraft/draftroom/internal/models"
	"github.com/rotodraft/draftroom/internal/pubsub"
	"github.com/rotodraft/draftroom/internal/sim"
	"github.com/rotodraft/draftroom/internal/standings"
)

// APIHandlers contains all API handler methods. A single mutex serializes
// draft mutations; the engine itself is not goroutine-safe.
type APIHandlers struct {
	mu        sync.Mutex
	eng       *engine.Engine
	simulator *sim.Simulator
	store     dal.ConfigStore
	pubsub    *pubsub.PubSub
	recorder  analytics.Recorder // nil when analytics is not configured
	draftID   string
	simSeed   int64
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(eng *engine.Engine, store dal.ConfigStore, ps *pubsub.PubSub, recorder analytics.Recorder) *APIHandlers {
	return &APIHandlers{
		eng:      eng,
		store:    store,
		pubsub:   ps,
		recorder: recorder,
		draftID:  uuid.NewString(),
	}
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps engine error kinds onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := "internal"
	switch engine.Classify(err) {
	case engine.KindValidation:
		status = http.StatusBadRequest
		kind = "validation"
	case engine.KindStateConflict:
		status = http.StatusConflict
		kind = "state_conflict"
	case engine.KindConfiguration:
		status = http.StatusUnprocessableEntity
		kind = "configuration"
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "kind": kind})
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// GetDraftState returns phase, rosters, ownership and pick history.
func (h *APIHandlers) GetDraftState(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	teams := []*models.Team{}
	rosters := h.eng.CurrentRosters()
	for _, id := range h.eng.TeamIDs() {
		teams = append(teams, rosters[id])
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"draftId": h.draftID,
		"phase":   h.eng.Phase(),
		"teams":   teams,
		"picks":   h.eng.PickHistory(),
	})
}

// StartDraft freezes configuration and begins the draft.
func (h *APIHandlers) StartDraft(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.eng.Start(); err != nil {
		writeError(w, err)
		return
	}

	logger.Info("draft started", "draft_id", h.draftID)
	h.pubsub.Publish(pubsub.Event{Type: pubsub.EventDraftStart, Payload: map[string]interface{}{
		"draftId": h.draftID,
	}})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DraftPick commits a manual pick for a team.
func (h *APIHandlers) DraftPick(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		TeamID   string `json:"teamId"`
		PlayerID string `json:"playerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("failed to decode pick request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	rec, err := h.eng.MakePick(req.TeamID, req.PlayerID)
	h.mu.Unlock()
	if err != nil {
		logger.Error("pick rejected", "error", err, "team_id", req.TeamID, "player_id", req.PlayerID)
		writeError(w, err)
		return
	}

	logger.Info("player picked", "team_id", req.TeamID, "player_id", req.PlayerID, "slot", rec.Slot)
	h.publishPick(pubsub.EventDraftPick, rec)
	h.recordPick(rec)
	writeJSON(w, http.StatusOK, rec)
}

// UndoPick reverses a non-keeper pick.
func (h *APIHandlers) UndoPick(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		PlayerID string `json:"playerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	err := h.eng.UndoPick(req.PlayerID)
	h.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Info("pick undone", "player_id", req.PlayerID)
	h.pubsub.Publish(pubsub.Event{Type: pubsub.EventDraftUndo, Payload: map[string]interface{}{
		"playerId": req.PlayerID,
	}})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// EndDraft marks the draft complete.
func (h *APIHandlers) EndDraft(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	h.mu.Lock()
	h.eng.End()
	h.mu.Unlock()

	logger.Info("draft ended", "draft_id", h.draftID)
	h.pubsub.Publish(pubsub.Event{Type: pubsub.EventDraftEnd, Payload: map[string]interface{}{
		"draftId": h.draftID,
	}})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GetStandings computes live roto standings.
func (h *APIHandlers) GetStandings(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	rosters := h.eng.CurrentRosters()
	teams := make([]*models.Team, 0, len(rosters))
	for _, id := range h.eng.TeamIDs() {
		teams = append(teams, rosters[id])
	}
	table := standings.Compute(teams, h.eng.Catalog())
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, table)
}

// GetAvailable lists undrafted players for one category, best value first.
func (h *APIHandlers) GetAvailable(w http.ResponseWriter, r *http.Request) {
	category := models.Category(r.URL.Query().Get("category"))
	if category != models.CategoryBatter && category != models.CategoryPitcher {
		http.Error(w, "category must be batter or pitcher", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	players := h.eng.AvailablePlayers(category)
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, players)
}

// ListKeepers returns the keeper subset of pick history.
func (h *APIHandlers) ListKeepers(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	keepers := h.eng.Keepers()
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, keepers)
}

// AddKeeper assigns a keeper before the draft starts.
func (h *APIHandlers) AddKeeper(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		TeamID   string  `json:"teamId"`
		PlayerID string  `json:"playerId"`
		Cost     float64 `json:"cost"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	rec, err := h.eng.AddKeeper(req.TeamID, req.PlayerID, req.Cost)
	h.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Info("keeper added", "team_id", req.TeamID, "player_id", req.PlayerID, "cost", req.Cost)
	h.publishPick(pubsub.EventKeeperAdded, rec)
	writeJSON(w, http.StatusOK, rec)
}

// RemoveKeeper releases a keeper before the draft starts.
func (h *APIHandlers) RemoveKeeper(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		PlayerID string `json:"playerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	err := h.eng.RemoveKeeper(req.PlayerID)
	h.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	h.pubsub.Publish(pubsub.Event{Type: pubsub.EventKeeperRemoved, Payload: map[string]interface{}{
		"playerId": req.PlayerID,
	}})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ListConfigs lists saved keeper configurations, most recent first.
func (h *APIHandlers) ListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.ListConfigs()
	if err != nil {
		logger.Error("failed to list configs", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

// SaveConfig snapshots current keepers under a name.
func (h *APIHandlers) SaveConfig(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	cfg := h.eng.ExportKeeperConfig(req.Name)
	h.mu.Unlock()

	saved, err := h.store.SaveConfig(cfg)
	if err != nil {
		logger.Error("failed to save config", "error", err, "name", req.Name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logger.Info("keeper config saved", "id", saved.ID, "name", req.Name)
	writeJSON(w, http.StatusOK, saved)
}

// LoadConfig replays a saved config's keepers into the engine.
func (h *APIHandlers) LoadConfig(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := h.store.GetConfig(req.ID)
	if err != nil {
		if errors.Is(err, dal.ErrConfigNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	err = h.eng.ImportKeeperConfig(saved.Config)
	h.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Info("keeper config loaded", "id", saved.ID, "name", saved.Config.Name)
	writeJSON(w, http.StatusOK, saved)
}

// DeleteConfig removes a saved config.
func (h *APIHandlers) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteConfig(req.ID); err != nil {
		if errors.Is(err, dal.ErrConfigNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GetADP serves historical average draft position from analytics.
func (h *APIHandlers) GetADP(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		http.Error(w, "analytics not configured", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	entries, err := h.recorder.ADP(ctx, 200)
	if err != nil {
		logger.Error("ADP query failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// EventsSSE provides Server-Sent Events for realtime updates
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)

	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	for {
		select {
		case event := <-eventChan:
			data, _ := json.Marshal(event)
			fmt.Fprintf(w, "data: %s\n\n", data)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		case <-time.After(30 * time.Second):
			// keepalive ping
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}

func (h *APIHandlers) publishPick(eventType string, rec models.PickRecord) {
	h.pubsub.Publish(pubsub.Event{Type: eventType, Payload: map[string]interface{}{
		"seq":      rec.Seq,
		"teamId":   rec.TeamID,
		"playerId": rec.PlayerID,
		"slot":     rec.Slot,
		"keeper":   rec.Keeper,
	}})
}

// recordPick sinks the pick into analytics without blocking the request.
func (h *APIHandlers) recordPick(rec models.PickRecord) {
	if h.recorder == nil {
		return
	}

	p, _ := h.eng.Catalog().Player(rec.PlayerID)
	ev := analytics.PickEvent{
		DraftID:    h.draftID,
		PickNumber: rec.Seq,
		TeamID:     rec.TeamID,
		PlayerID:   rec.PlayerID,
		PlayerName: p.Name,
		Position:   string(rec.Slot),
		Pitcher:    p.Pitcher,
		Dollars:    p.Dollars,
		Keeper:     rec.Keeper,
		At:         rec.At,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.recorder.RecordPick(ctx, ev); err != nil {
			logger.Error("failed to record pick", "error", err, "player_id", ev.PlayerID)
		}
	}()
}
