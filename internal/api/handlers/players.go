package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hoopmetrics/shot-predictor/internal/services"
	"github.com/hoopmetrics/shot-predictor/internal/store"
	"github.com/hoopmetrics/shot-predictor/pkg/utils"
)

type PlayersHandler struct {
	stats  *services.StatsService
	logger *logrus.Logger
}

func NewPlayersHandler(stats *services.StatsService, logger *logrus.Logger) *PlayersHandler {
	return &PlayersHandler{
		stats:  stats,
		logger: logger,
	}
}

// GetPlayers returns players matching a search term with shot statistics.
func (h *PlayersHandler) GetPlayers(c *gin.Context) {
	search := c.Query("search")
	minShots, err := strconv.Atoi(c.DefaultQuery("min_shots", "100"))
	if err != nil || minShots < 0 {
		utils.SendValidationError(c, "Invalid min_shots", "must be a non-negative integer")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 {
		utils.SendValidationError(c, "Invalid limit", "must be a positive integer")
		return
	}

	players, err := h.stats.SearchPlayers(c.Request.Context(), search, minShots, limit)
	if err != nil {
		h.logger.Errorf("Error fetching players: %v", err)
		utils.SendInternalError(c, "Unable to load players")
		return
	}

	c.JSON(http.StatusOK, gin.H{"players": players})
}

// GetYears returns all seasons present in the dataset.
func (h *PlayersHandler) GetYears(c *gin.Context) {
	years, err := h.stats.Years(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Error fetching years: %v", err)
		utils.SendInternalError(c, "Unable to load years")
		return
	}

	c.JSON(http.StatusOK, gin.H{"years": years})
}

// GetPlayer returns aggregate statistics for one player.
func (h *PlayersHandler) GetPlayer(c *gin.Context) {
	name := c.Param("name")
	years, ok := parseYears(c)
	if !ok {
		return
	}

	stats, err := h.stats.PlayerStats(c.Request.Context(), name, years)
	if err != nil {
		if errors.Is(err, store.ErrPlayerNotFound) {
			utils.SendNotFound(c, "Player '"+name+"' not found")
			return
		}
		h.logger.Errorf("Error fetching player stats: %v", err)
		utils.SendInternalError(c, "Unable to load player stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetPlayerShots returns a player's shot log.
func (h *PlayersHandler) GetPlayerShots(c *gin.Context) {
	name := c.Param("name")
	years, ok := parseYears(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50000"))
	if err != nil || limit < 1 {
		utils.SendValidationError(c, "Invalid limit", "must be a positive integer")
		return
	}

	shots, err := h.stats.PlayerShots(c.Request.Context(), name, years, limit)
	if err != nil {
		h.logger.Errorf("Error fetching shots: %v", err)
		utils.SendInternalError(c, "Unable to load shots")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shots": shots,
		"total": len(shots),
	})
}

// parseYears reads the optional comma-separated years query parameter.
// Replies with a validation error and returns false when malformed.
func parseYears(c *gin.Context) ([]int, bool) {
	raw := c.Query("years")
	if raw == "" {
		return nil, true
	}

	parts := strings.Split(raw, ",")
	years := make([]int, 0, len(parts))
	for _, part := range parts {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			utils.SendValidationError(c, "Invalid years", "expected comma-separated integers")
			return nil, false
		}
		years = append(years, y)
	}
	return years, true
}
