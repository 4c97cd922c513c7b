// Package store implements the shot repository: player search, season
// listing, aggregate stats, and shot logs over the shots table.
package store

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/hoopmetrics/shot-predictor/internal/court"
	"github.com/hoopmetrics/shot-predictor/internal/models"
	"github.com/hoopmetrics/shot-predictor/pkg/database"
)

var ErrPlayerNotFound = errors.New("player not found")

// MaxShotLimit caps shot-log responses; larger requests are clamped.
const MaxShotLimit = 50000

// DefaultActionBreakdowns limits the action-type split to the most common
// actions so rare variants don't dominate the payload.
const DefaultActionBreakdowns = 12

type Store struct {
	db         *database.DB
	isPostgres bool
}

func NewStore(db *database.DB) *Store {
	return &Store{
		db:         db,
		isPostgres: db.Dialector.Name() == "postgres",
	}
}

// byYears appends a season filter. Postgres gets an ANY() over a typed
// array; other dialects use a plain IN list.
func (s *Store) byYears(q *gorm.DB, years []int) *gorm.DB {
	if len(years) == 0 {
		return q
	}
	if s.isPostgres {
		return q.Where("year = ANY(?)", pq.Array(years))
	}
	return q.Where("year IN ?", years)
}

// SearchPlayers returns players matching the search term with at least
// minShots attempts, ordered by shot volume.
func (s *Store) SearchPlayers(ctx context.Context, search string, minShots, limit int) ([]models.PlayerSummary, error) {
	if minShots <= 0 {
		minShots = 100
	}
	if limit <= 0 {
		limit = 100
	}

	q := s.db.WithContext(ctx).Model(&models.Shot{}).
		Select("player_name AS name, COUNT(*) AS total_shots, AVG(shot_made_flag) AS fg_pct")
	if search != "" {
		q = q.Where("LOWER(player_name) LIKE LOWER(?)", "%"+search+"%")
	}

	players := []models.PlayerSummary{}
	err := q.Group("player_name").
		Having("COUNT(*) >= ?", minShots).
		Order("total_shots DESC").
		Limit(limit).
		Scan(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

// Years returns every season present in the dataset, ascending.
func (s *Store) Years(ctx context.Context) ([]int, error) {
	years := []int{}
	err := s.db.WithContext(ctx).Model(&models.Shot{}).
		Distinct("year").
		Order("year").
		Pluck("year", &years).Error
	if err != nil {
		return nil, err
	}
	return years, nil
}

// TopPlayers returns the highest-volume player names, used by the cache
// prefetcher.
func (s *Store) TopPlayers(ctx context.Context, n int) ([]string, error) {
	names := []string{}
	err := s.db.WithContext(ctx).Model(&models.Shot{}).
		Select("player_name").
		Group("player_name").
		Order("COUNT(*) DESC").
		Limit(n).
		Pluck("player_name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

type totalsRow struct {
	TotalShots  int64
	MadeShots   int64
	FGPct       float64
	AvgDistance float64
}

// PlayerStats aggregates a player's shots under an optional season filter.
// Returns ErrPlayerNotFound when no shots match.
func (s *Store) PlayerStats(ctx context.Context, name string, years []int) (*models.PlayerStats, error) {
	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Shot{}).Where("player_name = ?", name)
		return s.byYears(q, years)
	}

	var totals totalsRow
	err := base().
		Select("COUNT(*) AS total_shots," +
			" COALESCE(SUM(shot_made_flag), 0) AS made_shots," +
			" COALESCE(AVG(shot_made_flag), 0) AS fg_pct," +
			" COALESCE(AVG(shot_distance), 0) AS avg_distance").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	if totals.TotalShots == 0 {
		return nil, ErrPlayerNotFound
	}

	stats := &models.PlayerStats{
		PlayerName:  name,
		TotalShots:  totals.TotalShots,
		MadeShots:   totals.MadeShots,
		FGPct:       totals.FGPct,
		AvgDistance: totals.AvgDistance,
	}

	if err := base().Distinct("year").Order("year").Pluck("year", &stats.Years).Error; err != nil {
		return nil, err
	}

	breakdown := func(keyExpr, group, order string, limit int) ([]models.Breakdown, error) {
		rows := []models.Breakdown{}
		q := base().
			Select(keyExpr + " AS key, COUNT(*) AS attempts, SUM(shot_made_flag) AS made, AVG(shot_made_flag) AS fg_pct").
			Group(group).
			Order(order)
		if limit > 0 {
			q = q.Limit(limit)
		}
		if err := q.Scan(&rows).Error; err != nil {
			return nil, err
		}
		return rows, nil
	}

	if stats.ByShotType, err = breakdown("shot_type", "shot_type", "attempts DESC", 0); err != nil {
		return nil, err
	}
	if stats.BySeason, err = breakdown("CAST(year AS TEXT)", "year", "year", 0); err != nil {
		return nil, err
	}
	zoneCase := court.ZoneCaseSQL()
	if stats.ByZone, err = breakdown(zoneCase, zoneCase, "attempts DESC", 0); err != nil {
		return nil, err
	}
	if stats.ByAction, err = breakdown("action_type", "action_type", "attempts DESC", DefaultActionBreakdowns); err != nil {
		return nil, err
	}

	return stats, nil
}

// PlayerShots returns the shot log for a player, newest seasons first.
func (s *Store) PlayerShots(ctx context.Context, name string, years []int, limit int) ([]models.ShotRecord, error) {
	if limit <= 0 || limit > MaxShotLimit {
		limit = MaxShotLimit
	}

	q := s.db.WithContext(ctx).Model(&models.Shot{}).Where("player_name = ?", name)
	q = s.byYears(q, years)

	shots := []models.ShotRecord{}
	err := q.Select("loc_x, loc_y, shot_made_flag, shot_distance, shot_type, action_type, year").
		Order("year DESC").
		Limit(limit).
		Scan(&shots).Error
	if err != nil {
		return nil, err
	}
	return shots, nil
}
