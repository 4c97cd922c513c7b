package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hoopmetrics/shot-predictor/internal/api/handlers"
	"github.com/hoopmetrics/shot-predictor/internal/inference"
	"github.com/hoopmetrics/shot-predictor/internal/services"
	"github.com/hoopmetrics/shot-predictor/pkg/config"
	"github.com/hoopmetrics/shot-predictor/pkg/database"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, db *database.DB, stats *services.StatsService, predictor *inference.Service, cfg *config.Config, logger *logrus.Logger) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	predictHandler := handlers.NewPredictHandler(predictor, db, logger, cfg.MaxGridPoints)
	playersHandler := handlers.NewPlayersHandler(stats, logger)
	compareHandler := handlers.NewCompareHandler(stats, logger)

	group.GET("/health", healthHandler.GetHealth)

	// Prediction endpoints
	group.POST("/predict_shot", predictHandler.PredictShot)
	group.POST("/predict_grid", predictHandler.PredictGrid)

	// Player endpoints
	group.GET("/players", playersHandler.GetPlayers)
	group.GET("/years", playersHandler.GetYears)
	group.GET("/player/:name", playersHandler.GetPlayer)
	group.GET("/player/:name/shots", playersHandler.GetPlayerShots)

	// Comparison endpoint
	group.POST("/compare", compareHandler.ComparePlayers)
}
