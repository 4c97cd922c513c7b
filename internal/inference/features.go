package inference

import (
	"github.com/hoopmetrics/shot-predictor/internal/court"
)

// Feature column names used by the exported model.
const (
	FeatLocX         = "LOC_X"
	FeatLocY         = "LOC_Y"
	FeatShotDistance = "SHOT_DISTANCE"
	FeatYear         = "YEAR"
	FeatShotType     = "SHOT_TYPE"
	FeatActionType   = "ACTION_TYPE"
	FeatPlayerName   = "player_name"
)

const (
	DefaultYear       = 2024
	DefaultActionType = "Jump Shot"
)

// ShotFeatures is one shot parameterization to score.
type ShotFeatures struct {
	LocX         float64
	LocY         float64
	ShotDistance float64
	Year         int
	ShotType     string
	ActionType   string
	PlayerName   string
}

// Normalize fills defaults the way the model was trained: distance falls
// back to the rim distance, shot type to the geometric classification, and
// year/action to the dataset defaults.
func (f ShotFeatures) Normalize() ShotFeatures {
	if f.ShotDistance <= 0 {
		f.ShotDistance = court.Distance(f.LocX, f.LocY)
	}
	if f.Year == 0 {
		f.Year = DefaultYear
	}
	if f.ShotType == "" {
		f.ShotType = court.ShotType(f.LocX, f.LocY)
	}
	if f.ActionType == "" {
		f.ActionType = DefaultActionType
	}
	return f
}

// vector expands the features into the model's column space: numeric
// columns carry their value, one-hot columns are 1 when the category
// matches. Unknown categories leave all their columns at zero.
func (f ShotFeatures) vector() map[string]float64 {
	v := map[string]float64{
		FeatLocX:         f.LocX,
		FeatLocY:         f.LocY,
		FeatShotDistance: f.ShotDistance,
		FeatYear:         float64(f.Year),
	}
	v[FeatShotType+"="+f.ShotType] = 1
	v[FeatActionType+"="+f.ActionType] = 1
	if f.PlayerName != "" {
		v[FeatPlayerName+"="+f.PlayerName] = 1
	}
	return v
}
