package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hoopmetrics/shot-predictor/internal/models"
	"github.com/hoopmetrics/shot-predictor/internal/store"
)

// Cache TTLs carried over from the original service: the shot log is the
// largest payload so it expires soonest.
const (
	PlayersTTL = 5 * time.Minute
	YearsTTL   = time.Hour
	StatsTTL   = 5 * time.Minute
	ShotsTTL   = 3 * time.Minute
	CompareTTL = 5 * time.Minute
)

// StatsService is a cache-through layer over the shot store. A broken cache
// degrades to direct reads rather than failing requests.
type StatsService struct {
	store  *store.Store
	cache  CacheProvider
	logger *logrus.Logger
}

func NewStatsService(st *store.Store, cache CacheProvider, logger *logrus.Logger) *StatsService {
	return &StatsService{
		store:  st,
		cache:  cache,
		logger: logger,
	}
}

func (s *StatsService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warnf("Cache read failed for %s: %v", key, err)
	}
	return false
}

func (s *StatsService) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warnf("Cache write failed for %s: %v", key, err)
	}
}

func (s *StatsService) SearchPlayers(ctx context.Context, search string, minShots, limit int) ([]models.PlayerSummary, error) {
	key := PlayersCacheKey(search, minShots, limit)

	var players []models.PlayerSummary
	if s.cacheGet(ctx, key, &players) {
		return players, nil
	}

	players, err := s.store.SearchPlayers(ctx, search, minShots, limit)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, players, PlayersTTL)
	return players, nil
}

func (s *StatsService) Years(ctx context.Context) ([]int, error) {
	key := YearsCacheKey()

	var years []int
	if s.cacheGet(ctx, key, &years) {
		return years, nil
	}

	years, err := s.store.Years(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, years, YearsTTL)
	return years, nil
}

func (s *StatsService) PlayerStats(ctx context.Context, name string, years []int) (*models.PlayerStats, error) {
	key := PlayerCacheKey(name, years)

	var stats models.PlayerStats
	if s.cacheGet(ctx, key, &stats) {
		return &stats, nil
	}

	result, err := s.store.PlayerStats(ctx, name, years)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, result, StatsTTL)
	return result, nil
}

func (s *StatsService) PlayerShots(ctx context.Context, name string, years []int, limit int) ([]models.ShotRecord, error) {
	key := ShotsCacheKey(name, years, limit)

	var shots []models.ShotRecord
	if s.cacheGet(ctx, key, &shots) {
		return shots, nil
	}

	shots, err := s.store.PlayerShots(ctx, name, years, limit)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, shots, ShotsTTL)
	return shots, nil
}

// Compare fetches both players' stats and reports their overlapping
// seasons. An empty overlap is flagged explicitly rather than silently
// comparing mismatched season sets.
func (s *StatsService) Compare(ctx context.Context, player1, player2 string, years []int) (*models.CompareResult, error) {
	key := CompareCacheKey(player1, player2, years)

	var result models.CompareResult
	if s.cacheGet(ctx, key, &result) {
		return &result, nil
	}

	stats1, err := s.PlayerStats(ctx, player1, years)
	if err != nil {
		return nil, err
	}
	stats2, err := s.PlayerStats(ctx, player2, years)
	if err != nil {
		return nil, err
	}

	overlap := IntersectSeasons(stats1.Years, stats2.Years)
	out := &models.CompareResult{
		Player1:      stats1,
		Player2:      stats2,
		OverlapYears: overlap,
		NoOverlap:    len(overlap) == 0,
	}
	s.cacheSet(ctx, key, out, CompareTTL)
	return out, nil
}

// IntersectSeasons returns the seasons present in both lists, ascending.
func IntersectSeasons(a, b []int) []int {
	seen := make(map[int]struct{}, len(a))
	for _, y := range a {
		seen[y] = struct{}{}
	}

	out := []int{}
	added := make(map[int]struct{})
	for _, y := range b {
		if _, ok := seen[y]; !ok {
			continue
		}
		if _, dup := added[y]; dup {
			continue
		}
		added[y] = struct{}{}
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}
