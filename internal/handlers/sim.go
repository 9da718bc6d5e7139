package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rotodraft/draftroom/internal/analytics"
	"github.com/rotodraft/draftroom/internal/logger"
	"github.com/rotodraft/draftroom/internal/models"
	"github.com/rotodraft/draftroom/internal/pubsub"
	"github.com/rotodraft/draftroom/internal/sim"
)

var errNoSimulator = errors.New("no simulator configured; upload a draft order first")

// UploadOrder accepts a draft-order CSV body and builds a fresh simulator.
// Query params: humanTeamId (required), seed (optional, defaults to clock).
func (h *APIHandlers) UploadOrder(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	humanTeamID := r.URL.Query().Get("humanTeamId")
	if humanTeamID == "" {
		http.Error(w, "humanTeamId is required", http.StatusBadRequest)
		return
	}

	seed := time.Now().UnixNano()
	if s := r.URL.Query().Get("seed"); s != "" {
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			http.Error(w, "seed must be an integer", http.StatusBadRequest)
			return
		}
		seed = parsed
	}

	order, err := sim.ParseOrder(r.Body)
	if err != nil {
		logger.Warn("draft order rejected", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	simulator, err := sim.New(h.eng, order, humanTeamID, sim.DefaultWeights(), seed)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.simulator = simulator
	h.simSeed = seed

	logger.Info("draft order loaded", "picks", len(order), "human_team", humanTeamID, "seed", seed)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"picks": len(order),
		"seed":  seed,
	})
}

// RunSim advances until the human team's turn or order exhaustion.
func (h *APIHandlers) RunSim(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	h.mu.Lock()
	if h.simulator == nil {
		h.mu.Unlock()
		http.Error(w, errNoSimulator.Error(), http.StatusBadRequest)
		return
	}
	made, err := h.simulator.RunUntilPaused()
	paused := h.simulator.Paused()
	finished := h.simulator.Finished()
	h.mu.Unlock()

	for i := range made {
		h.publishSimPick(made[i])
		h.recordSimPick(made[i])
	}
	if err != nil {
		writeError(w, err)
		return
	}

	if finished {
		h.pubsub.Publish(pubsub.Event{Type: pubsub.EventSimFinished})
	} else if paused {
		h.pubsub.Publish(pubsub.Event{Type: pubsub.EventSimPaused})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"picks":    made,
		"paused":   paused,
		"finished": finished,
	})
}

// AdvanceSim performs a single simulator step.
func (h *APIHandlers) AdvanceSim(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	h.mu.Lock()
	if h.simulator == nil {
		h.mu.Unlock()
		http.Error(w, errNoSimulator.Error(), http.StatusBadRequest)
		return
	}
	step, err := h.simulator.Advance()
	h.mu.Unlock()

	if err != nil {
		writeError(w, err)
		return
	}

	switch step.Kind {
	case sim.StepAdvanced:
		h.publishSimPick(*step.Pick)
		h.recordSimPick(*step.Pick)
	case sim.StepPaused:
		h.pubsub.Publish(pubsub.Event{Type: pubsub.EventSimPaused, Payload: map[string]interface{}{
			"teamId": step.TeamID,
		}})
	case sim.StepFinished:
		h.pubsub.Publish(pubsub.Event{Type: pubsub.EventSimFinished})
	}

	writeJSON(w, http.StatusOK, step)
}

// SimPick commits the human team's pick while the simulator is paused.
func (h *APIHandlers) SimPick(w http.ResponseWriter, r *http.Request) {
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
	if h.simulator == nil {
		h.mu.Unlock()
		http.Error(w, errNoSimulator.Error(), http.StatusBadRequest)
		return
	}
	entry, err := h.simulator.UserPick(req.PlayerID)
	h.mu.Unlock()

	if err != nil {
		if errors.Is(err, sim.ErrNotHumanTurn) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		writeError(w, err)
		return
	}

	logger.Info("human pick committed", "player_id", req.PlayerID, "pick_number", entry.PickNumber)
	h.publishSimPick(*entry)
	h.recordSimPick(*entry)
	writeJSON(w, http.StatusOK, entry)
}

// SimState reports the simulator cursor, pause state and pick log.
func (h *APIHandlers) SimState(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.simulator == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"configured": false})
		return
	}

	state := map[string]interface{}{
		"configured": true,
		"cursor":     h.simulator.Cursor(),
		"paused":     h.simulator.Paused(),
		"finished":   h.simulator.Finished(),
		"seed":       h.simSeed,
		"pickLog":    h.simulator.PickLog(),
	}
	if entry, ok := h.simulator.Current(); ok {
		state["currentTeamId"] = entry.TeamID
		state["currentPickNumber"] = entry.PickNumber
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *APIHandlers) publishSimPick(entry models.PickLogEntry) {
	h.pubsub.Publish(pubsub.Event{Type: pubsub.EventSimPick, Payload: map[string]interface{}{
		"pickNumber": entry.PickNumber,
		"teamId":     entry.TeamID,
		"playerId":   entry.PlayerID,
		"playerName": entry.PlayerName,
		"rationale":  entry.Rationale,
	}})
}

func (h *APIHandlers) recordSimPick(entry models.PickLogEntry) {
	if h.recorder == nil {
		return
	}

	ev := analytics.PickEvent{
		DraftID:    h.draftID,
		PickNumber: entry.PickNumber,
		TeamID:     entry.TeamID,
		PlayerID:   entry.PlayerID,
		PlayerName: entry.PlayerName,
		Position:   entry.Position,
		Pitcher:    entry.Pitcher,
		Dollars:    entry.Dollars,
		At:         time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.recorder.RecordPick(ctx, ev); err != nil {
			logger.Error("failed to record sim pick", "error", err, "player_id", ev.PlayerID)
		}
	}()
}
