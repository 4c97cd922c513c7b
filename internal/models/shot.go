package models

// Shot is one attempted field goal. Rows are written once by the importer
// and never mutated.
type Shot struct {
	ID           uint    `gorm:"primaryKey" json:"-"`
	PlayerName   string  `gorm:"size:100;not null;index" json:"PLAYER_NAME"`
	TeamName     string  `gorm:"size:100" json:"TEAM_NAME"`
	LocX         float64 `gorm:"column:loc_x;not null" json:"LOC_X"`
	LocY         float64 `gorm:"column:loc_y;not null" json:"LOC_Y"`
	ShotMadeFlag int     `gorm:"not null" json:"SHOT_MADE_FLAG"`
	ShotDistance float64 `gorm:"not null" json:"SHOT_DISTANCE"`
	ShotType     string  `gorm:"size:30" json:"SHOT_TYPE"`
	ActionType   string  `gorm:"size:60" json:"ACTION_TYPE"`
	Year         int     `gorm:"not null;index" json:"YEAR"`
}

func (Shot) TableName() string {
	return "shots"
}

// ShotRecord is the wire form of a shot in shot-log responses. Field keys
// are uppercase for frontend compatibility.
type ShotRecord struct {
	LocX         float64 `json:"LOC_X"`
	LocY         float64 `json:"LOC_Y"`
	ShotMadeFlag int     `json:"SHOT_MADE_FLAG"`
	ShotDistance float64 `json:"SHOT_DISTANCE"`
	ShotType     string  `json:"SHOT_TYPE"`
	ActionType   string  `json:"ACTION_TYPE"`
	Year         int     `json:"YEAR"`
}

// PlayerSummary is the search-result projection of a player.
type PlayerSummary struct {
	Name       string  `json:"name"`
	TotalShots int64   `json:"total_shots"`
	FGPct      float64 `json:"fg_pct"`
}

// Breakdown is one row of an aggregate split (by shot type, season, zone,
// or action type).
type Breakdown struct {
	Key      string  `json:"key"`
	Attempts int64   `json:"attempts"`
	Made     int64   `json:"made"`
	FGPct    float64 `json:"fg_pct"`
}

// PlayerStats is the read-only aggregate snapshot for one player under an
// optional season filter.
type PlayerStats struct {
	PlayerName  string      `json:"player_name"`
	TotalShots  int64       `json:"total_shots"`
	MadeShots   int64       `json:"made_shots"`
	FGPct       float64     `json:"fg_pct"`
	AvgDistance float64     `json:"avg_distance"`
	Years       []int       `json:"years"`
	ByShotType  []Breakdown `json:"by_shot_type"`
	BySeason    []Breakdown `json:"by_season"`
	ByZone      []Breakdown `json:"by_zone"`
	ByAction    []Breakdown `json:"by_action"`
}
