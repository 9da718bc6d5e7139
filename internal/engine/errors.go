package engine

import (
	"errors"

	"github.com/rotodraft/draftroom/internal/roster"
)

var (
	ErrUnknownTeam       = errors.New("unknown team")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrPlayerUnavailable = errors.New("player already owned")
	ErrPlayerNotDrafted  = errors.New("player not drafted")
	ErrNotAKeeper        = errors.New("player is not a keeper")
	ErrCannotUndoKeeper  = errors.New("keepers cannot be undone as picks")
	ErrDraftNotStarted   = errors.New("draft has not started")
	ErrDraftComplete     = errors.New("draft is complete")
	ErrConfigFrozen      = errors.New("draft configuration is frozen")
)

// Kind classifies errors for callers that need to map them onto a transport.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindStateConflict
	KindConfiguration
)

// Classify buckets an error into the draft error taxonomy. Validation errors
// mean the input never referenced real state; state conflicts mean the input
// was valid but the draft state refuses it.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, ErrUnknownTeam), errors.Is(err, ErrUnknownPlayer):
		return KindValidation
	case errors.Is(err, ErrPlayerUnavailable),
		errors.Is(err, ErrPlayerNotDrafted),
		errors.Is(err, ErrNotAKeeper),
		errors.Is(err, ErrCannotUndoKeeper),
		errors.Is(err, ErrDraftNotStarted),
		errors.Is(err, ErrDraftComplete),
		errors.Is(err, ErrConfigFrozen),
		errors.Is(err, roster.ErrNoSlotAvailable):
		return KindStateConflict
	default:
		return KindInternal
	}
}
