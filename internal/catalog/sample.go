package catalog

import "github.com/rotodraft/draftroom/internal/models"

// Sample returns a small built-in catalog for development, so the service
// can run without a projection directory mounted.
func Sample() *Catalog {
	return New(samplePlayers())
}

func samplePlayers() []models.Player {
	bat := func(id, name, pos, team string, dollars, ab, r, hr, rbi, sb, obp float64) models.Player {
		return models.Player{
			ID: id, Name: name, MLBTeam: team, Dollars: dollars,
			Positions: splitPositions(pos),
			Stats: map[string]float64{
				"AB": ab, "R": r, "HR": hr, "RBI": rbi, "SB": sb, "OBP": obp, "Dollars": dollars,
			},
		}
	}
	arm := func(id, name, pos, team string, dollars, ip, so, era, whip, sv, qs float64) models.Player {
		return models.Player{
			ID: id, Name: name, MLBTeam: team, Dollars: dollars, Pitcher: true,
			Positions: splitPositions(pos),
			Stats: map[string]float64{
				"IP": ip, "SO": so, "ERA": era, "WHIP": whip, "SV": sv, "QS": qs, "Dollars": dollars,
			},
		}
	}

	return []models.Player{
		bat("b001", "Marcus Veldt", "OF", "ATL", 42, 590, 112, 38, 104, 22, 0.391),
		bat("b002", "Dario Quintana", "SS", "NYM", 39, 605, 105, 31, 92, 28, 0.362),
		bat("b003", "Theo Brannigan", "1B", "LAD", 36, 570, 96, 41, 110, 3, 0.378),
		bat("b004", "Silas Okafor", "OF", "SEA", 33, 580, 99, 29, 88, 31, 0.354),
		bat("b005", "Rene Calloway", "2B/SS", "HOU", 30, 595, 101, 24, 81, 19, 0.359),
		bat("b006", "Emmett Drexler", "3B", "PHI", 28, 560, 88, 33, 98, 8, 0.348),
		bat("b007", "Joaquin Ferreira", "C/1B", "BAL", 25, 510, 77, 27, 85, 2, 0.351),
		bat("b008", "Wendell Askew", "OF", "SD", 23, 555, 85, 22, 74, 26, 0.340),
		bat("b009", "Cole Marchetti", "1B/3B", "CHC", 21, 540, 80, 28, 89, 5, 0.344),
		bat("b010", "Ibrahim Sesay", "2B", "TOR", 19, 565, 87, 18, 67, 24, 0.336),
		bat("b011", "Anders Lindqvist", "C", "MIN", 16, 470, 62, 21, 70, 1, 0.329),
		bat("b012", "Rafael Bustos", "SS/3B", "ARI", 15, 545, 78, 19, 72, 16, 0.331),
		bat("b013", "Dmitri Kovac", "OF", "CLE", 13, 520, 74, 17, 63, 18, 0.327),
		bat("b014", "Harlan Pruitt", "1B", "TEX", 11, 505, 68, 24, 78, 2, 0.333),
		bat("b015", "Yusei Tanaka", "2B/OF", "SF", 10, 530, 72, 14, 58, 21, 0.330),
		bat("b016", "Blaine Ostrowski", "3B", "MIL", 8, 495, 64, 20, 69, 6, 0.322),
		bat("b017", "Clay Renfro", "C", "STL", 6, 440, 52, 15, 56, 1, 0.318),
		bat("b018", "Porter Nakashima", "OF", "TB", 5, 500, 66, 13, 54, 17, 0.324),
		bat("b019", "Gideon Treadwell", "SS", "KC", 4, 485, 61, 11, 49, 15, 0.317),
		bat("b020", "Abel Montrose", "1B/OF", "CIN", 3, 475, 58, 16, 61, 4, 0.315),
		bat("b021", "Finn Gallaher", "2B", "BOS", 2, 460, 55, 10, 44, 12, 0.312),
		bat("b022", "Royce Delacroix", "OF", "NYY", 2, 455, 53, 12, 48, 9, 0.310),
		bat("b023", "Santos Iglesias", "C", "DET", 1, 410, 45, 9, 41, 1, 0.305),
		bat("b024", "Mordecai Plume", "3B/SS", "WSH", 1, 430, 48, 8, 39, 7, 0.308),
		arm("p001", "Kellen Vanterpool", "SP", "NYY", 38, 198, 234, 2.84, 1.02, 0, 22),
		arm("p002", "Aurelio Zambrano", "SP", "LAD", 34, 188, 218, 3.01, 1.06, 0, 20),
		arm("p003", "Briggs Holloway", "SP", "ATL", 29, 180, 201, 3.18, 1.09, 0, 19),
		arm("p004", "Tobias Engelhart", "RP", "CLE", 24, 68, 92, 2.35, 0.98, 38, 0),
		arm("p005", "Ramiro Castellanos", "SP", "PHI", 22, 176, 189, 3.35, 1.13, 0, 17),
		arm("p006", "Declan Mwangi", "SP", "SEA", 19, 170, 182, 3.42, 1.15, 0, 16),
		arm("p007", "Hollis Brightwater", "RP", "HOU", 17, 65, 84, 2.61, 1.03, 33, 0),
		arm("p008", "Ezra Stoltzfus", "SP", "MIN", 14, 165, 171, 3.58, 1.18, 0, 15),
		arm("p009", "Nikolai Brandt", "SP/RP", "TB", 12, 140, 152, 3.44, 1.14, 4, 11),
		arm("p010", "Caius Wetherell", "RP", "SD", 10, 62, 78, 2.88, 1.08, 27, 0),
		arm("p011", "Jerome Falkner", "SP", "TOR", 8, 158, 160, 3.74, 1.21, 0, 14),
		arm("p012", "Obadiah Crane", "SP", "TEX", 6, 150, 148, 3.89, 1.24, 0, 12),
		arm("p013", "Lazlo Ferreyra", "RP", "CHC", 4, 60, 70, 3.12, 1.12, 19, 0),
		arm("p014", "Winslow Duarte", "SP", "MIA", 2, 145, 136, 4.05, 1.28, 0, 10),
	}
}

func splitPositions(pos string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(pos); i++ {
		if i == len(pos) || pos[i] == '/' {
			if i > start {
				out = append(out, pos[start:i])
			}
			start = i + 1
		}
	}
	return out
}
