package inference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopmetrics/shot-predictor/internal/court"
)

func newTestBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "test"})
}

// A two-tree ensemble: close shots gain margin, layups gain more.
const testModelJSON = `{
	"base_score": 0.5,
	"features": ["LOC_X", "LOC_Y", "SHOT_DISTANCE", "YEAR", "ACTION_TYPE=Layup Shot", "ACTION_TYPE=Jump Shot"],
	"trees": [
		{
			"nodeid": 0, "split": "SHOT_DISTANCE", "split_condition": 10, "yes": 1, "no": 2,
			"children": [
				{"nodeid": 1, "leaf": 0.8},
				{"nodeid": 2, "leaf": -0.5}
			]
		},
		{
			"nodeid": 0, "split": "ACTION_TYPE=Layup Shot", "split_condition": 0.5, "yes": 1, "no": 2,
			"children": [
				{"nodeid": 1, "leaf": -0.1},
				{"nodeid": 2, "leaf": 0.4}
			]
		}
	]
}`

func testModel(t *testing.T) *Model {
	t.Helper()
	m, err := ParseModel([]byte(testModelJSON))
	require.NoError(t, err)
	return m
}

func TestPredictLayupScenario(t *testing.T) {
	m := testModel(t)

	prob := m.Predict(ShotFeatures{
		LocX:       0,
		LocY:       5,
		Year:       2024,
		ActionType: "Layup Shot",
	})

	assert.GreaterOrEqual(t, prob, 0.0)
	assert.LessOrEqual(t, prob, 1.0)
	// margin = 0.8 (close) + 0.4 (layup) = 1.2
	assert.InDelta(t, sigmoid(1.2), prob, 1e-9)
}

func TestPredictOrdering(t *testing.T) {
	m := testModel(t)

	nearRim := m.Predict(ShotFeatures{LocX: 0, LocY: 5, ActionType: "Layup Shot"})
	deep := m.Predict(ShotFeatures{LocX: 0, LocY: 30, ActionType: "Jump Shot"})

	assert.Greater(t, nearRim, deep)
	assert.GreaterOrEqual(t, deep, 0.0)
	assert.LessOrEqual(t, nearRim, 1.0)
}

func TestParseModelRejectsEmpty(t *testing.T) {
	_, err := ParseModel([]byte(`{"base_score": 0.5, "trees": []}`))
	assert.Error(t, err)

	_, err = ParseModel([]byte(`not json`))
	assert.Error(t, err)
}

func TestNormalizeDefaults(t *testing.T) {
	f := ShotFeatures{LocX: 0, LocY: 5}.Normalize()
	assert.InDelta(t, 5, f.ShotDistance, 1e-9)
	assert.Equal(t, DefaultYear, f.Year)
	assert.Equal(t, court.ShotType2PT, f.ShotType)
	assert.Equal(t, DefaultActionType, f.ActionType)

	// Beyond the arc the derived shot type flips.
	f = ShotFeatures{LocX: 0, LocY: 25}.Normalize()
	assert.Equal(t, court.ShotType3PT, f.ShotType)

	// Explicit values survive.
	f = ShotFeatures{LocX: 1, LocY: 1, ShotDistance: 9, Year: 2021, ShotType: court.ShotType3PT, ActionType: "Dunk Shot"}.Normalize()
	assert.Equal(t, 9.0, f.ShotDistance)
	assert.Equal(t, 2021, f.Year)
	assert.Equal(t, court.ShotType3PT, f.ShotType)
	assert.Equal(t, "Dunk Shot", f.ActionType)
}

func newLocalService(t *testing.T) *Service {
	t.Helper()
	logger := logrus.New()
	return &Service{model: testModel(t), logger: logger}
}

func TestPredictGridRowMajor(t *testing.T) {
	s := newLocalService(t)

	grid, probs, err := s.PredictGrid(context.Background(), GridSpec{
		XMin: -10, XMax: 10, YMin: 0, YMax: 20,
		XSteps: 3, YSteps: 2,
	})
	require.NoError(t, err)
	require.Len(t, grid, 6)
	require.Len(t, probs, 6)

	// x outer, y inner: first two points share x = -10.
	assert.Equal(t, court.Point{X: -10, Y: 0}, grid[0])
	assert.Equal(t, court.Point{X: -10, Y: 20}, grid[1])
	assert.Equal(t, court.Point{X: 0, Y: 0}, grid[2])
	assert.Equal(t, court.Point{X: 10, Y: 20}, grid[5])

	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestPredictGridValidation(t *testing.T) {
	s := newLocalService(t)

	_, _, err := s.PredictGrid(context.Background(), GridSpec{XMin: 0, XMax: 10, YMin: 0, YMax: 10, XSteps: 1, YSteps: 2})
	assert.Error(t, err)

	_, _, err = s.PredictGrid(context.Background(), GridSpec{XMin: 10, XMax: 0, YMin: 0, YMax: 10, XSteps: 2, YSteps: 2})
	assert.Error(t, err)
}

func TestRemoteScorerPreferred(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"probability_make": 0.42}`))
	}))
	defer srv.Close()

	logger := logrus.New()
	s, err := NewService("", srv.URL, 2*time.Second, 5, logger)
	require.NoError(t, err)

	prob, source, err := s.Predict(context.Background(), ShotFeatures{LocX: 0, LocY: 5})
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, source)
	assert.InDelta(t, 0.42, prob, 1e-9)
}

func TestRemoteScorerFallsBackToLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := newLocalService(t)
	s.remote = &remoteScorer{
		url:        srv.URL,
		httpClient: &http.Client{Timeout: time.Second},
		breaker:    newTestBreaker(),
	}

	prob, source, err := s.Predict(context.Background(), ShotFeatures{LocX: 0, LocY: 5, ActionType: "Layup Shot"})
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, source)
	assert.InDelta(t, sigmoid(1.2), prob, 1e-9)
}
