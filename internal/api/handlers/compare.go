package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hoopmetrics/shot-predictor/internal/models"
	"github.com/hoopmetrics/shot-predictor/internal/services"
	"github.com/hoopmetrics/shot-predictor/internal/store"
	"github.com/hoopmetrics/shot-predictor/pkg/utils"
)

type CompareHandler struct {
	stats  *services.StatsService
	logger *logrus.Logger
}

func NewCompareHandler(stats *services.StatsService, logger *logrus.Logger) *CompareHandler {
	return &CompareHandler{
		stats:  stats,
		logger: logger,
	}
}

// ComparePlayers returns two players' statistics restricted to the seasons
// they share.
func (h *CompareHandler) ComparePlayers(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid compare request", err.Error())
		return
	}

	result, err := h.stats.Compare(c.Request.Context(), req.Player1, req.Player2, req.Years)
	if err != nil {
		if errors.Is(err, store.ErrPlayerNotFound) {
			utils.SendNotFound(c, "One or both players not found")
			return
		}
		h.logger.Errorf("Error comparing players: %v", err)
		utils.SendInternalError(c, "Unable to compare players")
		return
	}

	c.JSON(http.StatusOK, result)
}
