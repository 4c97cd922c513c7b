package models

import (
	"time"

	"gorm.io/datatypes"
)

// PredictionLog stores one prediction request/response pair for analytics.
type PredictionLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	RequestID   string         `gorm:"size:36;index" json:"request_id"`
	Request     datatypes.JSON `json:"request"`
	Response    datatypes.JSON `json:"response"`
	Probability float64        `json:"probability"`
	Source      string         `gorm:"size:20" json:"source"` // local or remote
	CreatedAt   time.Time      `json:"created_at"`
}

// ShotRequest is the predict_shot request body. Field names follow the
// dataset's uppercase convention.
type ShotRequest struct {
	LocX         float64  `json:"LOC_X"`
	LocY         float64  `json:"LOC_Y"`
	ShotDistance *float64 `json:"SHOT_DISTANCE,omitempty"`
	Year         int      `json:"YEAR,omitempty"`
	ShotType     string   `json:"SHOT_TYPE,omitempty"`
	ActionType   string   `json:"ACTION_TYPE,omitempty"`
	PlayerName   string   `json:"player_name,omitempty"`
}

// GridRequest is the predict_grid request body: a bounding box with step
// counts plus the optional shot context shared by every grid point.
type GridRequest struct {
	XMin       float64 `json:"x_min"`
	XMax       float64 `json:"x_max"`
	YMin       float64 `json:"y_min"`
	YMax       float64 `json:"y_max"`
	XSteps     int     `json:"x_steps" binding:"required,min=2,max=120"`
	YSteps     int     `json:"y_steps" binding:"required,min=2,max=120"`
	Year       int     `json:"YEAR,omitempty"`
	ShotType   string  `json:"SHOT_TYPE,omitempty"`
	ActionType string  `json:"ACTION_TYPE,omitempty"`
	PlayerName string  `json:"player_name,omitempty"`
}

// CompareRequest is the compare endpoint body.
type CompareRequest struct {
	Player1 string `json:"player1" binding:"required"`
	Player2 string `json:"player2" binding:"required"`
	Years   []int  `json:"years,omitempty"`
}

// CompareResult pairs two players' stats with their overlapping seasons.
type CompareResult struct {
	Player1      *PlayerStats `json:"player1"`
	Player2      *PlayerStats `json:"player2"`
	OverlapYears []int        `json:"overlap_years"`
	NoOverlap    bool         `json:"no_overlap"`
}
