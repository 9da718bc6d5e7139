package mocks

import (
	"context"
	"sync"

	"github.com/rotodraft/draftroom/internal/analytics"
	"github.com/rotodraft/draftroom/internal/logger"
)

// MockRecorder provides an in-memory analytics recorder for local development
// and tests. ADP is computed over whatever picks were recorded in-process.
type MockRecorder struct {
	mu    sync.Mutex
	Picks []analytics.PickEvent
}

// NewMockRecorder creates a mock analytics recorder
func NewMockRecorder() *MockRecorder {
	logger.Info("Using MOCK analytics recorder for local development")
	return &MockRecorder{}
}

func (m *MockRecorder) RecordPick(ctx context.Context, ev analytics.PickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Picks = append(m.Picks, ev)
	return nil
}

func (m *MockRecorder) ADP(ctx context.Context, limit int) ([]analytics.ADPEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type agg struct {
		name    string
		picks   float64
		dollars float64
		n       uint64
	}
	byPlayer := map[string]*agg{}
	order := []string{}
	for _, ev := range m.Picks {
		if ev.Keeper {
			continue
		}
		a, ok := byPlayer[ev.PlayerID]
		if !ok {
			a = &agg{name: ev.PlayerName}
			byPlayer[ev.PlayerID] = a
			order = append(order, ev.PlayerID)
		}
		a.picks += float64(ev.PickNumber)
		a.dollars += ev.Dollars
		a.n++
	}

	entries := []analytics.ADPEntry{}
	for _, id := range order {
		a := byPlayer[id]
		entries = append(entries, analytics.ADPEntry{
			PlayerID:   id,
			PlayerName: a.name,
			ADP:        a.picks / float64(a.n),
			AvgDollars: a.dollars / float64(a.n),
			Samples:    a.n,
		})
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries, nil
}

func (m *MockRecorder) Close() error { return nil }
