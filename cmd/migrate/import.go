package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hoopmetrics/shot-predictor/internal/court"
	"github.com/hoopmetrics/shot-predictor/internal/models"
	"github.com/hoopmetrics/shot-predictor/pkg/database"
)

const importBatchSize = 2000

var seasonFilePattern = regexp.MustCompile(`^NBA_(\d{4})_Shots\.csv$`)

// columnAliases maps the header variants seen across season exports onto
// canonical column names.
var columnAliases = map[string]string{
	"player_name":    "player_name",
	"player":         "player_name",
	"team_name":      "team_name",
	"team":           "team_name",
	"loc_x":          "loc_x",
	"locx":           "loc_x",
	"x":              "loc_x",
	"loc_y":          "loc_y",
	"locy":           "loc_y",
	"y":              "loc_y",
	"shot_made_flag": "shot_made",
	"shot_made":      "shot_made",
	"event_type":     "shot_made",
	"shot_distance":  "shot_distance",
	"distance":       "shot_distance",
	"shot_type":      "shot_type",
	"action_type":    "action_type",
	"year":           "year",
	"season":         "year",
}

// ImportSeasonFiles loads every NBA_YYYY_Shots.csv in dir, returning the
// total number of rows inserted.
func ImportSeasonFiles(db *database.DB, dir string, logger *logrus.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read import directory: %w", err)
	}

	total := 0
	matched := 0
	for _, entry := range entries {
		m := seasonFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		matched++
		year, _ := strconv.Atoi(m[1])

		n, err := importSeasonFile(db, filepath.Join(dir, entry.Name()), year)
		if err != nil {
			return total, fmt.Errorf("failed to import %s: %w", entry.Name(), err)
		}
		logger.Infof("Imported %d shots from %s", n, entry.Name())
		total += n
	}

	if matched == 0 {
		return 0, fmt.Errorf("no NBA_YYYY_Shots.csv files found in %s", dir)
	}
	return total, nil
}

func importSeasonFile(db *database.DB, path string, year int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return 0, err
	}

	shots, err := readShots(reader, cols, year)
	if err != nil {
		return 0, err
	}
	if len(shots) == 0 {
		return 0, nil
	}

	normalizeCoordinates(shots)

	if err := db.CreateInBatches(&shots, importBatchSize).Error; err != nil {
		return 0, fmt.Errorf("failed to insert shots: %w", err)
	}
	return len(shots), nil
}

// resolveColumns maps canonical column names to their index in the header.
func resolveColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		if canonical, ok := columnAliases[name]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}

	for _, required := range []string{"player_name", "loc_x", "loc_y", "shot_made"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %s", required)
		}
	}
	return cols, nil
}

func readShots(reader *csv.Reader, cols map[string]int, year int) ([]models.Shot, error) {
	var shots []models.Shot
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read error at line %d: %w", line+1, err)
		}
		line++

		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		locX, err1 := strconv.ParseFloat(get("loc_x"), 64)
		locY, err2 := strconv.ParseFloat(get("loc_y"), 64)
		if err1 != nil || err2 != nil {
			continue
		}

		shot := models.Shot{
			PlayerName:   get("player_name"),
			TeamName:     get("team_name"),
			LocX:         locX,
			LocY:         locY,
			ShotMadeFlag: parseMadeFlag(get("shot_made")),
			ShotType:     get("shot_type"),
			ActionType:   get("action_type"),
			Year:         year,
		}
		if shot.PlayerName == "" {
			continue
		}

		if y := get("year"); y != "" {
			if parsed, err := strconv.Atoi(y); err == nil {
				shot.Year = parsed
			}
		}
		if d := get("shot_distance"); d != "" {
			if parsed, err := strconv.ParseFloat(d, 64); err == nil {
				shot.ShotDistance = parsed
			}
		}

		shots = append(shots, shot)
	}
	return shots, nil
}

// parseMadeFlag accepts the numeric flag as well as the event-type text
// some exports carry.
func parseMadeFlag(s string) int {
	switch strings.ToLower(s) {
	case "1", "made", "made shot", "true":
		return 1
	default:
		return 0
	}
}

// tenthScaleThreshold separates the two coordinate units seen in season
// exports. Feet-unit files top out at the court bounds (a heave can reach
// the mid-forties), while tenth-of-foot files run to ±250. The threshold
// must be above anything a feet file can contain, so only genuine
// tenth-scale files cross it.
const tenthScaleThreshold = 100

// normalizeCoordinates converts tenth-of-foot units to feet when a file
// uses them, then backfills missing distances and shot types from the
// resulting geometry.
func normalizeCoordinates(shots []models.Shot) {
	maxCoord := 0.0
	for i := range shots {
		maxCoord = math.Max(maxCoord, math.Abs(shots[i].LocX))
		maxCoord = math.Max(maxCoord, math.Abs(shots[i].LocY))
	}
	tenthScale := maxCoord >= tenthScaleThreshold

	for i := range shots {
		s := &shots[i]
		if tenthScale {
			s.LocX /= 10
			s.LocY /= 10
			if s.ShotDistance >= 100 {
				s.ShotDistance /= 10
			}
		}
		if s.ShotDistance == 0 {
			s.ShotDistance = court.Distance(s.LocX, s.LocY)
		}
		if s.ShotType == "" {
			s.ShotType = court.ShotType(s.LocX, s.LocY)
		}
	}
}
