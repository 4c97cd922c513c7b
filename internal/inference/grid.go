package inference

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/hoopmetrics/shot-predictor/internal/court"
)

// GridSpec describes the bounding box and resolution of a probability grid.
type GridSpec struct {
	XMin, XMax float64
	YMin, YMax float64
	XSteps     int
	YSteps     int

	// Shot context applied to every grid point. Empty strings keep the
	// per-point geometric defaults.
	Year       int
	ShotType   string
	ActionType string
	PlayerName string
}

// PredictGrid scores a lattice of locations. The returned probability slice
// is flattened row-major over x: all y values for the first x, then the
// next x, matching the grid point order.
func (s *Service) PredictGrid(ctx context.Context, spec GridSpec) ([]court.Point, []float64, error) {
	if spec.XSteps < 2 || spec.YSteps < 2 {
		return nil, nil, fmt.Errorf("grid requires at least 2 steps per axis")
	}
	if spec.XMax <= spec.XMin || spec.YMax <= spec.YMin {
		return nil, nil, fmt.Errorf("grid bounding box is empty")
	}

	xs := floats.Span(make([]float64, spec.XSteps), spec.XMin, spec.XMax)
	ys := floats.Span(make([]float64, spec.YSteps), spec.YMin, spec.YMax)

	grid := make([]court.Point, 0, len(xs)*len(ys))
	probs := make([]float64, 0, len(xs)*len(ys))
	for _, x := range xs {
		for _, y := range ys {
			f := ShotFeatures{
				LocX:       x,
				LocY:       y,
				Year:       spec.Year,
				ShotType:   spec.ShotType,
				ActionType: spec.ActionType,
				PlayerName: spec.PlayerName,
			}
			prob, _, err := s.Predict(ctx, f)
			if err != nil {
				return nil, nil, err
			}
			grid = append(grid, court.Point{X: x, Y: y})
			probs = append(probs, prob)
		}
	}
	return grid, probs, nil
}
