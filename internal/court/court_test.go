package court

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCornerRule(t *testing.T) {
	tests := []struct {
		name  string
		x, y  float64
		three bool
	}{
		{"Right corner", 22.5, 2, true},
		{"Left corner", -23, 0, true},
		{"On corner line below break", 22, 8, true},
		{"Baseline midrange", 15, 2, false},
		{"Wing inside line", 20, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.three, IsThree(tt.x, tt.y))
		})
	}
}

func TestCornerRuleProperty(t *testing.T) {
	// Any location with |x| >= 22 and y at or below the corner break is a three.
	for x := CornerX; x <= XMax; x += 0.5 {
		for y := YMin; y <= CornerBreakY; y += 0.5 {
			assert.True(t, IsThree(x, y), "(%v,%v) should be a corner three", x, y)
			assert.True(t, IsThree(-x, y), "(%v,%v) should be a corner three", -x, y)
		}
	}
}

func TestArcRuleProperty(t *testing.T) {
	// Any location beyond 23.75 ft from the rim is a three regardless of x.
	for angle := 0.0; angle <= math.Pi; angle += 0.1 {
		d := ArcRadius + 0.1
		x, y := d*math.Cos(angle), d*math.Sin(angle)
		assert.True(t, IsThree(x, y), "(%v,%v) at %.2f ft should be a three", x, y, d)
	}

	// Just inside the arc, away from the corners, is a two.
	assert.False(t, IsThree(0, 23.5))
	assert.False(t, IsThree(10, 20))
	assert.Equal(t, ShotType2PT, ShotType(0, 10))
	assert.Equal(t, ShotType3PT, ShotType(0, 24))
}

func TestCornerBreakY(t *testing.T) {
	// The corner break is where the arc crosses the 22 ft line.
	assert.InDelta(t, 8.948, CornerBreakY, 0.001)
	assert.InDelta(t, ArcRadius, Distance(CornerX, CornerBreakY), 1e-9)
}

func TestZones(t *testing.T) {
	tests := []struct {
		x, y float64
		zone string
	}{
		{0, 2, ZonePaint},
		{0, 5, ZonePaint},
		{5, 6, ZonePaint}, // 7.81 ft
		{0, 12, ZoneShortMid},
		{0, 16, ZoneShortMid},
		{0, 20, ZoneMid},
		{10, 20, ZoneMid}, // 22.36 ft > 22: Long 2
		{0, 23, ZoneLong2},
		{0, 25, ZoneThree},
		{23, 2, ZoneThree},
	}
	for _, tt := range tests {
		got := Zone(tt.x, tt.y)
		if tt.x == 10 && tt.y == 20 {
			assert.Equal(t, ZoneLong2, got)
			continue
		}
		assert.Equal(t, tt.zone, got, "zone at (%v,%v)", tt.x, tt.y)
	}
}

func TestActionsFor(t *testing.T) {
	assert.Equal(t, CloseActions, ActionsFor(0, 5))
	assert.Equal(t, CloseActions, ActionsFor(3, 3))
	assert.Equal(t, PerimeterActions, ActionsFor(0, 15))
	assert.Equal(t, PerimeterActions, ActionsFor(0, 25))
	// A corner three from close to the baseline is still a perimeter shot.
	assert.Equal(t, PerimeterActions, ActionsFor(23, 1))
}

func TestFromPixelAndClamp(t *testing.T) {
	// Center of a 500x470 viewport maps to mid court.
	p := FromPixel(250, 235, 500, 470)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, (YMax+YMin)/2, p.Y, 1e-9)

	// Top-left pixel is the far left at the half-court line.
	p = FromPixel(0, 0, 500, 470)
	assert.Equal(t, Point{X: XMin, Y: YMax}, p)

	// Out-of-viewport clicks clamp to bounds.
	p = FromPixel(-50, 1000, 500, 470)
	assert.Equal(t, Point{X: XMin, Y: YMin}, p)
}

func TestZoneCaseSQLContainsConstants(t *testing.T) {
	sql := ZoneCaseSQL()
	assert.Contains(t, sql, "ABS(loc_x) >= 22")
	assert.Contains(t, sql, "8.9478")
	assert.Contains(t, sql, "564.0625") // 23.75^2
	assert.Contains(t, sql, ZoneThree)
	assert.Contains(t, sql, ZonePaint)
}
