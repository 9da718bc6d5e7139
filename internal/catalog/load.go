package catalog

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rotodraft/draftroom/internal/logger"
	"github.com/rotodraft/draftroom/internal/models"
)

// Columns carried through the merge, per pool.
var (
	battingColumns  = []string{"AB", "R", "HR", "RBI", "SB", "OBP", "wOBA", "WAR", "wRC+", "ADP", "PlayerId", "Name", "POS", "Team"}
	pitchingColumns = []string{"IP", "SO", "ERA", "WHIP", "WAR", "K/9", "SV", "QS", "ADP", "PlayerId", "Name", "POS", "Team"}
	auctionColumns  = []string{"Name", "POS", "PlayerId", "Team", "Dollars"}

	// Numeric columns collapsed by row-wise mean across vendor duplicates.
	battingAverages  = []string{"AB", "R", "HR", "RBI", "SB", "OBP", "wOBA", "WAR", "wRC+", "ADP", "Dollars"}
	pitchingAverages = []string{"IP", "SO", "ERA", "WHIP", "WAR", "K/9", "SV", "QS", "ADP", "Dollars"}
)

// Vendor exports disagree on header spellings; fold them to canonical names.
var headerRenames = map[string]string{
	"Pos":      "POS",
	"Position": "POS",
	"playerid": "PlayerId",
	"PlayerID": "PlayerId",
	"wRC.":     "wRC+",
	"Barrel.":  "Barrel%",
	"K.9":      "K/9",
}

// table is a loose column-oriented CSV: header names plus string rows.
type table struct {
	cols []string
	rows []map[string]string
}

// LoadDir builds a catalog by merging every vendor projection and auction CSV
// in dir. Batting files match *_bat.csv, pitching *_pitch.csv; auction value
// files carry an _auction_ infix. Files merge by PlayerId with per-vendor
// suffixes and duplicate numeric columns collapse to their row-wise mean.
func LoadDir(dir string) (*Catalog, error) {
	batTables, err := readGroup(dir, "*_bat.csv", "*_auction_bat.csv", battingColumns, auctionColumns)
	if err != nil {
		return nil, err
	}
	pitchTables, err := readGroup(dir, "*_pitch.csv", "*_auction_pitch.csv", pitchingColumns, auctionColumns)
	if err != nil {
		return nil, err
	}
	if len(batTables) == 0 && len(pitchTables) == 0 {
		return nil, fmt.Errorf("no projection CSVs found in %s", dir)
	}

	bat := averageColumns(mergeTables(batTables), battingAverages)
	pitch := averageColumns(mergeTables(pitchTables), pitchingAverages)

	players := append(buildPlayers(bat, false), buildPlayers(pitch, true)...)
	logger.Info("Loaded player catalog", "dir", dir, "players", len(players))
	return New(players), nil
}

// readGroup loads projection files (excluding auction files, which also match
// the projection glob) followed by auction files, in sorted name order so the
// merge is deterministic.
func readGroup(dir, projGlob, auctionGlob string, projCols, aucCols []string) ([]*table, error) {
	projPaths, err := filepath.Glob(filepath.Join(dir, projGlob))
	if err != nil {
		return nil, err
	}
	aucPaths, err := filepath.Glob(filepath.Join(dir, auctionGlob))
	if err != nil {
		return nil, err
	}
	auction := make(map[string]bool, len(aucPaths))
	for _, p := range aucPaths {
		auction[p] = true
	}
	sort.Strings(projPaths)
	sort.Strings(aucPaths)

	var tables []*table
	for _, path := range projPaths {
		if auction[path] {
			continue
		}
		t, err := readCSV(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		tables = append(tables, filterColumns(t, projCols))
	}
	for _, path := range aucPaths {
		t, err := readCSV(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		tables = append(tables, filterColumns(t, aucCols))
	}
	return tables, nil
}

func readCSV(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &table{}, nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	cols := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if canon, ok := headerRenames[h]; ok {
			h = canon
		}
		cols[i] = h
	}

	t := &table{cols: cols}
	for _, rec := range records[1:] {
		row := make(map[string]string, len(cols))
		for i, col := range cols {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			}
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// filterColumns keeps only the requested columns that exist in the table.
func filterColumns(t *table, keep []string) *table {
	present := make([]string, 0, len(keep))
	have := make(map[string]bool, len(t.cols))
	for _, c := range t.cols {
		have[c] = true
	}
	for _, c := range keep {
		if have[c] {
			present = append(present, c)
		}
	}

	out := &table{cols: present}
	for _, row := range t.rows {
		nr := make(map[string]string, len(present))
		for _, c := range present {
			nr[c] = row[c]
		}
		out.rows = append(out.rows, nr)
	}
	return out
}

// mergeTables outer-joins tables on PlayerId. Columns already present gain a
// deterministic ".sN" suffix keyed by merge index, mirroring how the vendor
// sheets are reconciled upstream.
func mergeTables(tables []*table) *table {
	var nonEmpty []*table
	for _, t := range tables {
		if t != nil && len(t.rows) > 0 {
			nonEmpty = append(nonEmpty, t)
		}
	}
	if len(nonEmpty) == 0 {
		return &table{}
	}

	result := nonEmpty[0]
	for idx, t := range nonEmpty[1:] {
		result = mergeTwo(result, t, fmt.Sprintf(".s%d", idx+1))
	}
	return result
}

func mergeTwo(left, right *table, suffix string) *table {
	leftCols := make(map[string]bool, len(left.cols))
	for _, c := range left.cols {
		leftCols[c] = true
	}

	// Suffix right-hand columns that collide (PlayerId joins, never suffixes).
	renamed := make(map[string]string, len(right.cols))
	out := &table{cols: append([]string{}, left.cols...)}
	for _, c := range right.cols {
		if c == "PlayerId" {
			renamed[c] = c
			continue
		}
		name := c
		if leftCols[c] {
			name = c + suffix
		}
		renamed[c] = name
		out.cols = append(out.cols, name)
	}

	rightByID := make(map[string]map[string]string, len(right.rows))
	for _, row := range right.rows {
		if id := row["PlayerId"]; id != "" {
			rightByID[id] = row
		}
	}

	seen := make(map[string]bool, len(left.rows))
	for _, lrow := range left.rows {
		id := lrow["PlayerId"]
		merged := make(map[string]string, len(out.cols))
		for k, v := range lrow {
			merged[k] = v
		}
		if rrow, ok := rightByID[id]; ok && id != "" {
			for k, v := range rrow {
				if k == "PlayerId" {
					continue
				}
				merged[renamed[k]] = v
			}
			seen[id] = true
		}
		out.rows = append(out.rows, merged)
	}

	// Right-only players still join the pool (outer merge).
	for _, rrow := range right.rows {
		id := rrow["PlayerId"]
		if id == "" || seen[id] {
			continue
		}
		merged := make(map[string]string, len(rrow))
		merged["PlayerId"] = id
		for k, v := range rrow {
			if k == "PlayerId" {
				continue
			}
			merged[renamed[k]] = v
		}
		out.rows = append(out.rows, merged)
	}
	return out
}

// averageColumns collapses each pattern's base + suffixed variants into a
// single column holding the row-wise mean, rounded to three digits.
func averageColumns(t *table, patterns []string) *table {
	for _, pattern := range patterns {
		re := regexp.MustCompile("^" + regexp.QuoteMeta(pattern) + `(\.s\d+)?$`)
		var matching []string
		for _, c := range t.cols {
			if re.MatchString(c) {
				matching = append(matching, c)
			}
		}
		if len(matching) == 0 {
			continue
		}
		for _, row := range t.rows {
			sum, n := 0.0, 0
			for _, c := range matching {
				if v, err := strconv.ParseFloat(row[c], 64); err == nil {
					sum += v
					n++
				}
			}
			if n > 0 {
				row[pattern] = strconv.FormatFloat(round3(sum/float64(n)), 'f', -1, 64)
			}
		}
		if !contains(t.cols, pattern) {
			t.cols = append(t.cols, pattern)
		}
	}
	return t
}

// buildPlayers converts merged rows into catalog records. Name and position
// fall back to the first non-empty suffixed variant when the base column is
// blank for a vendor.
func buildPlayers(t *table, pitcher bool) []models.Player {
	var players []models.Player
	for _, row := range t.rows {
		id := row["PlayerId"]
		if id == "" {
			continue
		}

		p := models.Player{
			ID:      id,
			Name:    firstValue(t, row, "Name"),
			MLBTeam: firstValue(t, row, "Team"),
			Pitcher: pitcher,
			Stats:   make(map[string]float64),
		}

		pos := firstValue(t, row, "POS")
		if pos == "" {
			if pitcher {
				pos = "P"
			} else {
				pos = "Util"
			}
		}
		for _, part := range strings.Split(pos, "/") {
			if part = strings.TrimSpace(part); part != "" {
				p.Positions = append(p.Positions, part)
			}
		}

		for col, raw := range row {
			if col == "PlayerId" || strings.Contains(col, ".s") {
				continue
			}
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				p.Stats[col] = v
			}
		}
		p.Dollars = p.Stats["Dollars"]

		players = append(players, p)
	}
	return players
}

// firstValue reads the base column then any suffixed variant in column order.
func firstValue(t *table, row map[string]string, base string) string {
	if v := row[base]; v != "" {
		return v
	}
	prefix := base + ".s"
	for _, c := range t.cols {
		if strings.HasPrefix(c, prefix) {
			if v := row[c]; v != "" {
				return v
			}
		}
	}
	return ""
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
