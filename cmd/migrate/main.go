package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hoopmetrics/shot-predictor/internal/models"
	"github.com/hoopmetrics/shot-predictor/internal/services"
	"github.com/hoopmetrics/shot-predictor/pkg/config"
	"github.com/hoopmetrics/shot-predictor/pkg/database"
)

func main() {
	migrate := flag.Bool("migrate", false, "run schema migrations")
	drop := flag.Bool("drop", false, "drop all tables")
	importDir := flag.String("import", "", "import NBA_YYYY_Shots.csv season files from a directory")
	flag.Parse()

	if !*migrate && !*drop && *importDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: migrate [-migrate] [-drop] [-import dir]")
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if *drop {
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")
	}

	if *migrate {
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")
	}

	if *importDir != "" {
		total, err := ImportSeasonFiles(db, *importDir, logrus.StandardLogger())
		if err != nil {
			logrus.Fatalf("Import failed: %v", err)
		}
		logrus.Infof("Import complete: %d shots loaded", total)

		// New rows invalidate every cached aggregate.
		flushCache(cfg)
	}
}

// flushCache clears Redis after an import. Best effort; a cold or absent
// cache only costs the next requests a database read.
func flushCache(cfg *config.Config) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Warnf("Skipping cache flush, invalid Redis URL: %v", err)
		return
	}

	client := redis.NewClient(opt)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.Warnf("Skipping cache flush, Redis unreachable: %v", err)
		return
	}

	if err := services.NewCacheService(client).Flush(ctx); err != nil {
		logrus.Warnf("Cache flush failed: %v", err)
		return
	}
	logrus.Info("Cache flushed")
}

func runMigrations(db *database.DB) error {
	if err := db.AutoMigrate(
		&models.Shot{},
		&models.PredictionLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_shots_player_year ON shots(player_name, year)",
		"CREATE INDEX IF NOT EXISTS idx_shots_year ON shots(year)",
		"CREATE INDEX IF NOT EXISTS idx_prediction_logs_created ON prediction_logs(created_at)",
	}
	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	for _, table := range []string{"prediction_logs", "shots"} {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
