// Package court holds the half-court geometry shared by the prediction
// handlers, the client, and the stats store. Server-side zone buckets are
// generated from the same constants as the classifier so the two can never
// disagree.
package court

import (
	"fmt"
	"math"
)

// All values are in feet with the rim at the origin.
const (
	// ArcRadius is the three-point arc distance from the rim.
	ArcRadius = 23.75
	// CornerX is the horizontal offset of the corner three line.
	CornerX = 22.0
	// CloseRange is the cutoff below which the layup/dunk action menu applies.
	CloseRange = 8.0

	// Court bounds. The baseline sits 5.25 ft behind the rim, the half-court
	// line 41.75 ft in front of it.
	XMin = -25.0
	XMax = 25.0
	YMin = -5.25
	YMax = 41.75
)

// CornerBreakY is where the arc meets the corner line: below this height the
// corner rule decides, above it the arc rule does.
var CornerBreakY = math.Sqrt(ArcRadius*ArcRadius - CornerX*CornerX)

// Zone labels for distance-based aggregate breakdowns.
const (
	ZonePaint    = "Paint"
	ZoneShortMid = "Short Mid"
	ZoneMid      = "Mid"
	ZoneLong2    = "Long 2"
	ZoneThree    = "3PT"
)

const (
	ShotType2PT = "2PT Field Goal"
	ShotType3PT = "3PT Field Goal"
)

// Action menus keyed off shot range. Close-range shots unlock the layup and
// dunk families; everything else is a jump-shot variant.
var (
	CloseActions = []string{
		"Layup Shot",
		"Driving Layup Shot",
		"Dunk Shot",
		"Hook Shot",
		"Tip Shot",
		"Jump Shot",
	}
	PerimeterActions = []string{
		"Jump Shot",
		"Pullup Jump shot",
		"Step Back Jump shot",
		"Fadeaway Jump Shot",
		"Turnaround Jump Shot",
	}
)

// Point is a court location in feet.
type Point struct {
	X float64 `json:"LOC_X"`
	Y float64 `json:"LOC_Y"`
}

// FromPixel converts a click position on a rendered court of the given pixel
// size to feet, clamped to court bounds. Pixel origin is top-left with the
// baseline at the bottom edge.
func FromPixel(px, py, width, height float64) Point {
	x := (px/width)*(XMax-XMin) + XMin
	y := (1-py/height)*(YMax-YMin) + YMin
	return Clamp(Point{X: x, Y: y})
}

// Clamp bounds a point to the playable half court.
func Clamp(p Point) Point {
	p.X = math.Min(math.Max(p.X, XMin), XMax)
	p.Y = math.Min(math.Max(p.Y, YMin), YMax)
	return p
}

// Distance returns the Euclidean distance from the rim.
func Distance(x, y float64) float64 {
	return math.Sqrt(x*x + y*y)
}

// IsThree classifies a location as a three-point attempt. Corner threes sit
// outside the 22 ft line below the corner break; everything else is decided
// by the 23.75 ft arc.
func IsThree(x, y float64) bool {
	if math.Abs(x) >= CornerX && y <= CornerBreakY {
		return true
	}
	return Distance(x, y) > ArcRadius
}

// ShotType returns the NBA shot type string for a location.
func ShotType(x, y float64) string {
	if IsThree(x, y) {
		return ShotType3PT
	}
	return ShotType2PT
}

// Zone buckets a location for aggregate breakdowns.
func Zone(x, y float64) string {
	if IsThree(x, y) {
		return ZoneThree
	}
	switch d := Distance(x, y); {
	case d <= CloseRange:
		return ZonePaint
	case d <= 16:
		return ZoneShortMid
	case d <= CornerX:
		return ZoneMid
	default:
		return ZoneLong2
	}
}

// ActionsFor returns the action-type menu appropriate for a location.
func ActionsFor(x, y float64) []string {
	if !IsThree(x, y) && Distance(x, y) <= CloseRange {
		return CloseActions
	}
	return PerimeterActions
}

// ZoneCaseSQL renders the zone bucketing as a SQL CASE expression over the
// loc_x/loc_y/shot_distance columns, using the exact classifier constants.
func ZoneCaseSQL() string {
	return fmt.Sprintf(
		"CASE"+
			" WHEN (ABS(loc_x) >= %g AND loc_y <= %.4f) OR (loc_x*loc_x + loc_y*loc_y) > %.4f THEN '%s'"+
			" WHEN shot_distance <= %g THEN '%s'"+
			" WHEN shot_distance <= 16 THEN '%s'"+
			" WHEN shot_distance <= %g THEN '%s'"+
			" ELSE '%s' END",
		CornerX, CornerBreakY, ArcRadius*ArcRadius, ZoneThree,
		CloseRange, ZonePaint,
		ZoneShortMid,
		CornerX, ZoneMid,
		ZoneLong2,
	)
}
