package sim

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rotodraft/draftroom/internal/models"
)

// ErrBadDraftOrder marks a malformed draft order. It is a configuration
// error: fatal for the upload, never silently recovered.
var ErrBadDraftOrder = errors.New("invalid draft order")

// ParseOrder reads a draft-order CSV with columns team_id, pick_number and
// tendency. Pick numbers must start at 1 and be strictly increasing with no
// duplicates; tendency must be hitting, pitching or neutral (blank reads as
// neutral).
func ParseOrder(r io.Reader) ([]models.DraftOrderEntry, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDraftOrder, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: no rows", ErrBadDraftOrder)
	}

	col := map[string]int{}
	for i, h := range records[0] {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	teamCol, ok := col["team_id"]
	if !ok {
		teamCol, ok = col["team_identifier"]
	}
	if !ok {
		return nil, fmt.Errorf("%w: missing team_id column", ErrBadDraftOrder)
	}
	pickCol, ok := col["pick_number"]
	if !ok {
		return nil, fmt.Errorf("%w: missing pick_number column", ErrBadDraftOrder)
	}
	tendCol, hasTend := col["tendency"]

	var order []models.DraftOrderEntry
	prev := 0
	for i, rec := range records[1:] {
		if teamCol >= len(rec) || pickCol >= len(rec) {
			return nil, fmt.Errorf("%w: short row %d", ErrBadDraftOrder, i+2)
		}
		pick, err := strconv.Atoi(strings.TrimSpace(rec[pickCol]))
		if err != nil {
			return nil, fmt.Errorf("%w: bad pick_number on row %d", ErrBadDraftOrder, i+2)
		}
		if prev == 0 && pick != 1 {
			return nil, fmt.Errorf("%w: pick numbers must start at 1", ErrBadDraftOrder)
		}
		if pick <= prev {
			return nil, fmt.Errorf("%w: pick numbers must be strictly increasing (row %d)", ErrBadDraftOrder, i+2)
		}
		prev = pick

		tendency := models.TendencyNeutral
		if hasTend && tendCol < len(rec) {
			switch t := models.Tendency(strings.TrimSpace(strings.ToLower(rec[tendCol]))); t {
			case models.TendencyHitting, models.TendencyPitching, models.TendencyNeutral:
				tendency = t
			case "":
				tendency = models.TendencyNeutral
			default:
				return nil, fmt.Errorf("%w: unknown tendency %q on row %d", ErrBadDraftOrder, rec[tendCol], i+2)
			}
		}

		order = append(order, models.DraftOrderEntry{
			TeamID:     strings.TrimSpace(rec[teamCol]),
			PickNumber: pick,
			Tendency:   tendency,
		})
	}
	return order, nil
}
