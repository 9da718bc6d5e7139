// Package sim drives autonomous picks against the draft engine, pausing on
// the human team's turns. Selection is probabilistic but reproducible given
// the same seed, pick order and prior state.
package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/rotodraft/draftroom/internal/engine"
	"github.com/rotodraft/draftroom/internal/models"
	"github.com/rotodraft/draftroom/internal/roster"
	"github.com/rotodraft/draftroom/internal/standings"
)

var (
	ErrHumanTeamMissing = errors.New("human team not in draft order")
	ErrNotHumanTurn     = errors.New("not the human team's turn")
	ErrNoCandidates     = errors.New("no draftable candidates")
)

// Weights tunes the four scoring signals. They are configuration, not law;
// defaults mirror a value-dominant market where positional need is a distant
// second and category need and tendency are nudges.
type Weights struct {
	MarketValue    float64
	PositionalNeed float64
	CategoryNeed   float64
	Tendency       float64

	// ScoreExponent is a power law applied before converting scores to
	// probabilities; >1 concentrates selection on top-valued players.
	ScoreExponent float64
	// Epsilon keeps every candidate's probability nonzero.
	Epsilon float64
	// TopN caps the candidate pool per category, by dollar value.
	TopN int
}

// DefaultWeights returns the tuned defaults.
func DefaultWeights() Weights {
	return Weights{
		MarketValue:    20.0,
		PositionalNeed: 0.5,
		CategoryNeed:   0.1,
		Tendency:       0.1,
		ScoreExponent:  3.0,
		Epsilon:        0.01,
		TopN:           50,
	}
}

// positionPriority reflects real-world positional scarcity: scarce positions
// get drafted earlier when multiple slots are open.
var positionPriority = map[models.SlotTag]float64{
	models.Slot1B: 1.30,
	models.SlotOF: 1.25,
	models.SlotSS: 1.20,
	models.Slot3B: 1.15,
	models.Slot2B: 1.10,
	models.SlotC:  0.85,
	models.SlotSP: 1.35,
	models.SlotRP: 1.00,
}

// StepKind is the outcome of one Advance call.
type StepKind string

const (
	StepPaused   StepKind = "paused"   // cursor is on the human team
	StepAdvanced StepKind = "advanced" // one autonomous pick committed
	StepFinished StepKind = "finished" // pick order exhausted
)

// Step reports what a single Advance did.
type Step struct {
	Kind   StepKind
	TeamID string               // the team at the cursor, when relevant
	Pick   *models.PickLogEntry // set when Kind == StepAdvanced
}

// Simulator walks a pick order, committing autonomous picks through the
// engine one at a time.
type Simulator struct {
	eng       *engine.Engine
	order     []models.DraftOrderEntry
	humanTeam string
	weights   Weights
	rng       *rand.Rand

	cursor  int
	paused  bool
	pickLog []models.PickLogEntry
}

// New validates the pick order against the human team and seeds the RNG.
func New(eng *engine.Engine, order []models.DraftOrderEntry, humanTeamID string, weights Weights, seed int64) (*Simulator, error) {
	found := false
	for _, entry := range order {
		if entry.TeamID == humanTeamID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrHumanTeamMissing, humanTeamID)
	}
	return &Simulator{
		eng:       eng,
		order:     order,
		humanTeam: humanTeamID,
		weights:   weights,
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// Cursor returns the index of the next pick in the order.
func (s *Simulator) Cursor() int { return s.cursor }

// Paused reports whether the simulator is waiting on the human team.
func (s *Simulator) Paused() bool { return s.paused }

// Finished reports whether the pick order is exhausted.
func (s *Simulator) Finished() bool { return s.cursor >= len(s.order) }

// PickLog returns the log of all simulated and user picks so far.
func (s *Simulator) PickLog() []models.PickLogEntry {
	out := make([]models.PickLogEntry, len(s.pickLog))
	copy(out, s.pickLog)
	return out
}

// Current returns the pick-order entry at the cursor.
func (s *Simulator) Current() (models.DraftOrderEntry, bool) {
	if s.Finished() {
		return models.DraftOrderEntry{}, false
	}
	return s.order[s.cursor], true
}

// Advance performs exactly one step: commit one autonomous pick, pause on
// the human team, or report exhaustion. Each committed pick is atomic, so a
// run can be interrupted between steps without corrupting draft state.
func (s *Simulator) Advance() (Step, error) {
	if s.Finished() {
		return Step{Kind: StepFinished}, nil
	}
	entry := s.order[s.cursor]
	if entry.TeamID == s.humanTeam {
		s.paused = true
		return Step{Kind: StepPaused, TeamID: entry.TeamID}, nil
	}

	logEntry, err := s.autoPick(entry)
	if err != nil {
		return Step{}, err
	}
	s.cursor++
	return Step{Kind: StepAdvanced, TeamID: entry.TeamID, Pick: logEntry}, nil
}

// RunUntilPaused advances until the human turn or the end of the order,
// returning the picks made along the way.
func (s *Simulator) RunUntilPaused() ([]models.PickLogEntry, error) {
	var made []models.PickLogEntry
	for {
		step, err := s.Advance()
		if err != nil {
			return made, err
		}
		switch step.Kind {
		case StepAdvanced:
			made = append(made, *step.Pick)
		case StepPaused, StepFinished:
			return made, nil
		}
	}
}

// UserPick commits the human team's pick while paused and resumes past it.
func (s *Simulator) UserPick(playerID string) (*models.PickLogEntry, error) {
	entry, ok := s.Current()
	if !ok || entry.TeamID != s.humanTeam {
		return nil, ErrNotHumanTurn
	}
	rec, err := s.eng.MakePick(entry.TeamID, playerID)
	if err != nil {
		return nil, err
	}
	p, _ := s.eng.Catalog().Player(playerID)
	team, _ := s.eng.Team(entry.TeamID)
	logEntry := models.PickLogEntry{
		PickNumber: entry.PickNumber,
		TeamID:     entry.TeamID,
		TeamName:   team.Name,
		PlayerID:   rec.PlayerID,
		PlayerName: p.Name,
		Position:   joinPositions(p.Positions),
		Pitcher:    p.Pitcher,
		Dollars:    p.Dollars,
		Rationale:  "user selection",
	}
	s.pickLog = append(s.pickLog, logEntry)
	s.cursor++
	s.paused = false
	return &logEntry, nil
}

type candidate struct {
	player models.Player
	score  float64
	prob   float64
}

// autoPick selects and commits one pick for an autonomous team.
func (s *Simulator) autoPick(entry models.DraftOrderEntry) (*models.PickLogEntry, error) {
	team, ok := s.eng.Team(entry.TeamID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrUnknownTeam, entry.TeamID)
	}

	pool := s.candidatePool(team)
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoCandidates, entry.TeamID)
	}

	// One standings pass per pick; every candidate scores against it.
	rankings := s.categoryRankings(entry.TeamID)

	cands := make([]candidate, 0, len(pool))
	for _, p := range pool {
		cands = append(cands, candidate{
			player: p,
			score:  s.scorePlayer(p, team, entry.Tendency, rankings),
		})
	}

	// Power-law probabilities over epsilon-floored scores.
	sum := 0.0
	for i := range cands {
		cands[i].prob = math.Pow(cands[i].score+s.weights.Epsilon, s.weights.ScoreExponent)
		sum += cands[i].prob
	}
	for i := range cands {
		cands[i].prob /= sum
	}

	chosen := s.draw(cands)
	p := cands[chosen].player
	rec, err := s.eng.MakePick(entry.TeamID, p.ID)
	if err != nil {
		// Should not happen given the pool filter; fall back to the next
		// most probable candidate instead of aborting the run.
		failedID := p.ID
		sort.Slice(cands, func(i, j int) bool { return cands[i].prob > cands[j].prob })
		committed := false
		for _, c := range cands {
			if c.player.ID == failedID {
				continue
			}
			if rec, err = s.eng.MakePick(entry.TeamID, c.player.ID); err == nil {
				p = c.player
				committed = true
				break
			}
		}
		if !committed {
			return nil, fmt.Errorf("no candidate could be committed for %s: %w", entry.TeamID, err)
		}
	}
	logEntry := models.PickLogEntry{
		PickNumber: entry.PickNumber,
		TeamID:     entry.TeamID,
		TeamName:   team.Name,
		PlayerID:   rec.PlayerID,
		PlayerName: p.Name,
		Position:   joinPositions(p.Positions),
		Pitcher:    p.Pitcher,
		Dollars:    p.Dollars,
		Rationale:  s.rationale(p, team, entry.Tendency),
	}
	s.pickLog = append(s.pickLog, logEntry)
	return &logEntry, nil
}

// candidatePool restricts candidates to available players the team can slot.
// While flex capacity remains, every slottable player is considered so the
// pool can chase value; once flex is gone, candidates must fill an unfilled
// specific position (unless that would empty the pool entirely).
func (s *Simulator) candidatePool(team *models.Team) []models.Player {
	batters := s.eng.AvailablePlayers(models.CategoryBatter)
	pitchers := s.eng.AvailablePlayers(models.CategoryPitcher)

	filter := func(players []models.Player) []models.Player {
		var out []models.Player
		for _, p := range players {
			if p.Name == "" || p.MLBTeam == "" {
				continue
			}
			if !roster.HasOpenSlot(team, p) {
				continue
			}
			out = append(out, p)
			if len(out) == s.weights.TopN {
				break
			}
		}
		return out
	}

	if !roster.FlexOpen(team) {
		needed := roster.NeededPositions(team)
		if len(needed) > 0 {
			positional := func(players []models.Player) []models.Player {
				var out []models.Player
				for _, p := range players {
					if eligibleForAny(p, needed) {
						out = append(out, p)
					}
				}
				return out
			}
			fb, fp := positional(batters), positional(pitchers)
			if len(fb)+len(fp) > 0 {
				batters, pitchers = fb, fp
			}
		}
	}

	return append(filter(batters), filter(pitchers)...)
}

// categoryRankings maps each category to this team's need on a 0-100 scale:
// 100 means the team is last in the category.
func (s *Simulator) categoryRankings(teamID string) map[string]float64 {
	rosters := s.eng.CurrentRosters()
	teams := make([]*models.Team, 0, len(rosters))
	for _, id := range s.eng.TeamIDs() {
		teams = append(teams, rosters[id])
	}
	table := standings.Compute(teams, s.eng.Catalog())
	n := len(table)

	rankings := make(map[string]float64, len(standings.Categories))
	for _, category := range standings.Categories {
		// min-style rank: 1 = best in category
		var mine models.TeamStanding
		for _, row := range table {
			if row.TeamID == teamID {
				mine = row
				break
			}
		}
		rank := 1
		for _, row := range table {
			if row.TeamID == teamID {
				continue
			}
			if standings.LowerIsBetter[category] {
				if row.Totals[category] < mine.Totals[category] {
					rank++
				}
			} else if row.Totals[category] > mine.Totals[category] {
				rank++
			}
		}
		rankings[category] = float64(rank) / float64(n) * 100
	}
	return rankings
}

// scorePlayer combines the four signals: market value dominates, positional
// need is a distant second, category need and tendency are nudges.
func (s *Simulator) scorePlayer(p models.Player, team *models.Team, tendency models.Tendency, rankings map[string]float64) float64 {
	score := p.Dollars * s.weights.MarketValue
	score += s.positionalNeed(p, team) * s.weights.PositionalNeed
	score += categoryNeed(p, rankings) * s.weights.CategoryNeed
	score += tendencyScore(tendency, p.Pitcher) * s.weights.Tendency
	return math.Max(score, 0)
}

// positionalNeed scores 0-100 scaled by scarcity priority: an empty specific
// slot the player can fill scores highest, flex half of that, bench a token.
func (s *Simulator) positionalNeed(p models.Player, team *models.Team) float64 {
	need := 0.0
	for _, pos := range p.Positions {
		tag := models.SlotTag(pos)
		limit, known := roster.SlotLimits[tag]
		if !known || roster.Reserve(tag) {
			continue
		}
		open := roster.Open(team, tag)
		if open <= 0 {
			continue
		}
		v := 100.0 * float64(open) / float64(limit)
		if pr, ok := positionPriority[tag]; ok {
			v *= pr
		}
		need = math.Max(need, v)
	}

	if p.Pitcher {
		if need == 0 {
			if open := roster.Open(team, models.SlotP); open > 0 {
				need = 100.0 * float64(open) / float64(roster.SlotLimits[models.SlotP])
			}
		}
	} else if need < 50 {
		if open := roster.Open(team, models.SlotUtil); open > 0 {
			v := 50.0 * float64(open) / float64(roster.SlotLimits[models.SlotUtil])
			need = math.Max(need, v)
		}
	}

	if need == 0 && roster.Open(team, models.SlotBN) > 0 {
		need = 10.0
	}
	return need
}

// categoryNeed weighs the player's contribution toward the categories the
// team currently trails in.
func categoryNeed(p models.Player, rankings map[string]float64) float64 {
	score := 0.0
	if p.Pitcher {
		contribs := map[string]float64{
			"K":    math.Min(p.Stats["SO"]/10, 10),
			"SV":   math.Min(p.Stats["SV"]/10, 10),
			"QS":   math.Min(p.Stats["QS"]/10, 10),
			"ERA":  math.Max(0, (5.0-statOr(p, "ERA", 5.0))/5.0) * 10,
			"WHIP": math.Max(0, (1.5-statOr(p, "WHIP", 1.5))/1.5) * 10,
		}
		for cat, contribution := range contribs {
			score += rankings[cat] * contribution / 100
		}
	} else {
		contribs := map[string]float64{
			"R":   math.Min(p.Stats["R"]/10, 10),
			"HR":  math.Min(p.Stats["HR"]/10, 10),
			"RBI": math.Min(p.Stats["RBI"]/10, 10),
			"SB":  math.Min(p.Stats["SB"]/10, 10),
			"OBP": statOr(p, "OBP", 0.300) * 100,
		}
		for cat, contribution := range contribs {
			score += rankings[cat] * contribution / 100
		}
	}
	return score
}

func tendencyScore(tendency models.Tendency, pitcher bool) float64 {
	if (tendency == models.TendencyPitching && pitcher) ||
		(tendency == models.TendencyHitting && !pitcher) {
		return 50.0
	}
	return 0.0
}

// draw selects one candidate index from the normalized distribution using
// the seeded source.
func (s *Simulator) draw(cands []candidate) int {
	r := s.rng.Float64()
	acc := 0.0
	for i, c := range cands {
		acc += c.prob
		if r < acc {
			return i
		}
	}
	return len(cands) - 1 // guard against rounding drift
}

func (s *Simulator) rationale(p models.Player, team *models.Team, tendency models.Tendency) string {
	var reasons []string
	if s.positionalNeed(p, team) > 10 {
		reasons = append(reasons, "fills positional need")
	}
	if (tendency == models.TendencyPitching && p.Pitcher) || (tendency == models.TendencyHitting && !p.Pitcher) {
		reasons = append(reasons, fmt.Sprintf("matches %s preference", tendency))
	}
	if p.Dollars > 20 {
		reasons = append(reasons, fmt.Sprintf("high value ($%.0f)", p.Dollars))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "best available")
	}
	out := reasons[0]
	for _, r := range reasons[1:] {
		out += ", " + r
	}
	return out
}

func eligibleForAny(p models.Player, needed map[models.SlotTag]bool) bool {
	for _, pos := range p.Positions {
		if needed[models.SlotTag(pos)] {
			return true
		}
	}
	return false
}

func statOr(p models.Player, key string, fallback float64) float64 {
	if v, ok := p.Stats[key]; ok {
		return v
	}
	return fallback
}

func joinPositions(positions []string) string {
	out := ""
	for i, pos := range positions {
		if i > 0 {
			out += "/"
		}
		out += pos
	}
	return out
}
