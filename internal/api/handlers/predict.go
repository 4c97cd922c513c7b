package handlers

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/hoopmetrics/shot-predictor/internal/court"
	"github.com/hoopmetrics/shot-predictor/internal/inference"
	"github.com/hoopmetrics/shot-predictor/internal/models"
	"github.com/hoopmetrics/shot-predictor/pkg/database"
	"github.com/hoopmetrics/shot-predictor/pkg/utils"
)

type PredictHandler struct {
	inference     *inference.Service
	db            *database.DB
	logger        *logrus.Logger
	maxGridPoints int
}

func NewPredictHandler(inf *inference.Service, db *database.DB, logger *logrus.Logger, maxGridPoints int) *PredictHandler {
	return &PredictHandler{
		inference:     inf,
		db:            db,
		logger:        logger,
		maxGridPoints: maxGridPoints,
	}
}

// PredictShot scores a single hypothetical shot location.
func (h *PredictHandler) PredictShot(c *gin.Context) {
	var req models.ShotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	features := inference.ShotFeatures{
		LocX:       req.LocX,
		LocY:       req.LocY,
		Year:       req.Year,
		ShotType:   req.ShotType,
		ActionType: req.ActionType,
		PlayerName: req.PlayerName,
	}
	if req.ShotDistance != nil {
		features.ShotDistance = *req.ShotDistance
	}

	prob, source, err := h.inference.Predict(c.Request.Context(), features)
	if err != nil {
		h.logger.Errorf("Prediction failed: %v", err)
		utils.SendError(c, http.StatusBadGateway, utils.NewAppError(utils.ErrCodePrediction, "Prediction failed"))
		return
	}

	prob = round3(prob)
	go h.logPrediction(c.GetString("request_id"), req, prob, source)

	c.JSON(http.StatusOK, gin.H{"probability_make": prob})
}

// PredictGrid scores a lattice of locations for heatmap rendering.
func (h *PredictHandler) PredictGrid(c *gin.Context) {
	var req models.GridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if req.XSteps*req.YSteps > h.maxGridPoints {
		utils.SendValidationError(c, "Grid too large", "reduce x_steps or y_steps")
		return
	}

	// Clamp the bounding box to the playable half court.
	lo := court.Clamp(court.Point{X: req.XMin, Y: req.YMin})
	hi := court.Clamp(court.Point{X: req.XMax, Y: req.YMax})

	grid, probs, err := h.inference.PredictGrid(c.Request.Context(), inference.GridSpec{
		XMin: lo.X, XMax: hi.X,
		YMin: lo.Y, YMax: hi.Y,
		XSteps:     req.XSteps,
		YSteps:     req.YSteps,
		Year:       req.Year,
		ShotType:   req.ShotType,
		ActionType: req.ActionType,
		PlayerName: req.PlayerName,
	})
	if err != nil {
		utils.SendValidationError(c, "Invalid grid", err.Error())
		return
	}

	for i := range probs {
		probs[i] = round3(probs[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"grid":          grid,
		"probabilities": probs,
	})
}

// logPrediction records the request/response pair for analytics. Failures
// are logged, never surfaced.
func (h *PredictHandler) logPrediction(requestID string, req models.ShotRequest, prob float64, source string) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return
	}
	respJSON, _ := json.Marshal(gin.H{"probability_make": prob})

	entry := models.PredictionLog{
		RequestID:   requestID,
		Request:     datatypes.JSON(reqJSON),
		Response:    datatypes.JSON(respJSON),
		Probability: prob,
		Source:      source,
	}
	if err := h.db.Create(&entry).Error; err != nil {
		h.logger.Warnf("Failed to record prediction log: %v", err)
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
