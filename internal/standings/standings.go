// Package standings computes 5x5 roto standings from team rosters. The
// calculator is a pure function of roster contents: no state, safe to rerun
// after every pick.
package standings

import (
	"sort"

	"github.com/rotodraft/draftroom/internal/catalog"
	"github.com/rotodraft/draftroom/internal/models"
	"github.com/rotodraft/draftroom/internal/roster"
)

// The ten scoring categories.
var (
	BattingCategories  = []string{"R", "HR", "RBI", "SB", "OBP"}
	PitchingCategories = []string{"K", "SV", "QS", "ERA", "WHIP"}
	Categories         = append(append([]string{}, BattingCategories...), PitchingCategories...)
)

// LowerIsBetter marks categories ranked ascending.
var LowerIsBetter = map[string]bool{"ERA": true, "WHIP": true}

// Compute returns one standing per team, ordered by descending total score
// with ties broken by team id. Only non-reserve slots count.
func Compute(teams []*models.Team, cat *catalog.Catalog) []models.TeamStanding {
	out := make([]models.TeamStanding, 0, len(teams))
	for _, t := range teams {
		out = append(out, models.TeamStanding{
			TeamID:   t.ID,
			TeamName: t.Name,
			Totals:   liveTotals(t, cat),
			Points:   make(map[string]float64, len(Categories)),
		})
	}

	for _, category := range Categories {
		assignPoints(out, category)
	}
	for i := range out {
		total := 0.0
		for _, pts := range out[i].Points {
			total += pts
		}
		out[i].TotalScore = total
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}

// liveTotals aggregates a team's ten category values. Counting stats sum;
// rate stats are component-weighted so a reliever's 20 innings cannot drag
// a staff ERA the way an unweighted mean would. When component stats are
// missing the rate falls back to an unweighted mean.
func liveTotals(t *models.Team, cat *catalog.Catalog) map[string]float64 {
	totals := map[string]float64{
		"R": 0, "HR": 0, "RBI": 0, "SB": 0, "OBP": 0,
		"K": 0, "SV": 0, "QS": 0, "ERA": 0, "WHIP": 0,
	}

	var (
		totalAB, totalOnBase       float64
		totalIP, totalER, totalWH  float64
		obpSum, eraSum, whipSum    float64
		obpCount, eraCount, wCount int
	)

	for _, entry := range t.Slots {
		if entry.PlayerID == "" || roster.Reserve(entry.Slot) {
			continue
		}
		p, ok := cat.Player(entry.PlayerID)
		if !ok {
			continue
		}
		s := p.Stats

		if !p.Pitcher {
			totals["R"] += s["R"]
			totals["HR"] += s["HR"]
			totals["RBI"] += s["RBI"]
			totals["SB"] += s["SB"]

			if obp, ok := s["OBP"]; ok {
				// Weight by AB when available; PA is rarely in the sheets.
				if ab := s["AB"]; ab > 0 {
					totalAB += ab
					totalOnBase += obp * ab
				} else {
					obpSum += obp
					obpCount++
				}
			}
		} else {
			totals["K"] += s["SO"]
			totals["SV"] += s["SV"]
			totals["QS"] += s["QS"]

			ip := s["IP"]
			if era, ok := s["ERA"]; ok {
				if ip > 0 {
					totalER += era * ip / 9
				} else {
					eraSum += era
					eraCount++
				}
			}
			if whip, ok := s["WHIP"]; ok {
				if ip > 0 {
					totalWH += whip * ip
				} else {
					whipSum += whip
					wCount++
				}
			}
			if ip > 0 {
				totalIP += ip
			}
		}
	}

	switch {
	case totalAB > 0:
		totals["OBP"] = totalOnBase / totalAB
	case obpCount > 0:
		totals["OBP"] = obpSum / float64(obpCount)
	}
	switch {
	case totalIP > 0:
		totals["ERA"] = totalER * 9 / totalIP
		totals["WHIP"] = totalWH / totalIP
	default:
		if eraCount > 0 {
			totals["ERA"] = eraSum / float64(eraCount)
		}
		if wCount > 0 {
			totals["WHIP"] = whipSum / float64(wCount)
		}
	}

	return totals
}

// assignPoints hands out roto points for one category: 1..N with the worst
// team on 1, ties splitting the average of their shared range.
func assignPoints(standings []models.TeamStanding, category string) {
	n := len(standings)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	asc := !LowerIsBetter[category] // worst first so position maps to points
	sort.Slice(idx, func(a, b int) bool {
		va := standings[idx[a]].Totals[category]
		vb := standings[idx[b]].Totals[category]
		if va != vb {
			if asc {
				return va < vb
			}
			return va > vb
		}
		return standings[idx[a]].TeamID < standings[idx[b]].TeamID
	})

	for i := 0; i < n; {
		j := i
		for j+1 < n && standings[idx[j+1]].Totals[category] == standings[idx[i]].Totals[category] {
			j++
		}
		// Positions i..j (0-based) share points (i+1)..(j+1); split evenly.
		pts := float64(i+1+j+1) / 2
		for k := i; k <= j; k++ {
			standings[idx[k]].Points[category] = pts
		}
		i = j + 1
	}
}
