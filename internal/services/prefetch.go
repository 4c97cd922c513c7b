package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PrefetchService periodically re-fetches the highest-volume players' stats
// so the cache stays warm for the names most users look at first.
type PrefetchService struct {
	stats      *StatsService
	logger     *logrus.Logger
	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	interval   time.Duration
	topPlayers int
}

func NewPrefetchService(stats *StatsService, logger *logrus.Logger, interval time.Duration, topPlayers int) *PrefetchService {
	return &PrefetchService{
		stats:      stats,
		logger:     logger,
		cron:       cron.New(),
		interval:   interval,
		topPlayers: topPlayers,
	}
}

// Start begins the scheduled cache warming.
func (s *PrefetchService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("prefetch service is already running")
	}

	schedule := fmt.Sprintf("@every %s", s.interval.String())
	_, err := s.cron.AddFunc(schedule, s.warmCache)
	if err != nil {
		return fmt.Errorf("failed to schedule prefetch: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	// Run initial warm-up
	go s.warmCache()

	s.logger.Info("Prefetch service started")
	return nil
}

// Stop halts the scheduled warming. In-flight fetches notice the stopped
// flag between players and bail out.
func (s *PrefetchService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Prefetch service stopped")
}

func (s *PrefetchService) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// warmCache fetches stats for the most popular players. Each fetch lands in
// the cache via the stats service; failures are logged and skipped.
func (s *PrefetchService) warmCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	names, err := s.stats.store.TopPlayers(ctx, s.topPlayers)
	if err != nil {
		s.logger.Errorf("Prefetch failed to list top players: %v", err)
		return
	}

	s.logger.Infof("Prefetching stats for %d players", len(names))

	warmed := 0
	for _, name := range names {
		if !s.running() {
			s.logger.Info("Prefetch interrupted by shutdown")
			return
		}
		if _, err := s.stats.PlayerStats(ctx, name, nil); err != nil {
			s.logger.Warnf("Prefetch failed for %s: %v", name, err)
			continue
		}
		warmed++
	}

	s.logger.Infof("Prefetch complete: %d/%d players warmed", warmed, len(names))
}
