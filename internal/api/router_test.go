package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopmetrics/shot-predictor/internal/court"
	"github.com/hoopmetrics/shot-predictor/internal/inference"
	"github.com/hoopmetrics/shot-predictor/internal/models"
	"github.com/hoopmetrics/shot-predictor/internal/services"
	"github.com/hoopmetrics/shot-predictor/internal/store"
	"github.com/hoopmetrics/shot-predictor/pkg/config"
	"github.com/hoopmetrics/shot-predictor/pkg/database"
)

const routerTestModel = `{
	"base_score": 0.5,
	"features": ["SHOT_DISTANCE"],
	"trees": [
		{
			"nodeid": 0, "split": "SHOT_DISTANCE", "split_condition": 10.0,
			"yes": 1, "no": 2, "missing": 1,
			"children": [
				{"nodeid": 1, "leaf": 0.8},
				{"nodeid": 2, "leaf": -0.5}
			]
		}
	]
}`

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.ErrorLevel)

	db, err := database.NewConnection("file::memory:?cache=shared", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.AutoMigrate(&models.Shot{}, &models.PredictionLog{}))
	require.NoError(t, db.Exec("DELETE FROM shots").Error)

	shots := []models.Shot{
		{PlayerName: "Stephen Curry", LocX: 0, LocY: 25, ShotMadeFlag: 1, ShotDistance: 25, ShotType: court.ShotType3PT, ActionType: "Jump Shot", Year: 2023},
		{PlayerName: "Stephen Curry", LocX: 0, LocY: 2, ShotMadeFlag: 1, ShotDistance: 2, ShotType: court.ShotType2PT, ActionType: "Layup Shot", Year: 2024},
		{PlayerName: "Nikola Jokic", LocX: 1, LocY: 3, ShotMadeFlag: 0, ShotDistance: 3.2, ShotType: court.ShotType2PT, ActionType: "Hook Shot", Year: 2024},
	}
	require.NoError(t, db.Create(&shots).Error)

	modelPath := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(routerTestModel), 0o644))

	predictor, err := inference.NewService(modelPath, "", time.Second, 5, logger)
	require.NoError(t, err)

	stats := services.NewStatsService(store.NewStore(db), services.NoopCache{}, logger)
	cfg := &config.Config{MaxGridPoints: 100}

	r := gin.New()
	SetupRoutes(r.Group("/api"), db, stats, predictor, cfg, logger)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func errorCode(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected error envelope, got %v", body)
	code, _ := errObj["code"].(string)
	return code
}

func TestPredictShotEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/predict_shot", map[string]interface{}{
		"LOC_X": 0.0,
		"LOC_Y": 5.0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	prob, ok := body["probability_make"].(float64)
	require.True(t, ok, "missing probability_make in %v", body)
	assert.Greater(t, prob, 0.0)
	assert.Less(t, prob, 1.0)
	// Five feet from the rim goes down the favorable branch.
	assert.Greater(t, prob, 0.5)
}

func TestPredictShotInvalidBody(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/predict_shot", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))
}

func TestPredictGridEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/predict_grid", map[string]interface{}{
		"x_min": -5.0, "x_max": 5.0, "y_min": 0.0, "y_max": 10.0,
		"x_steps": 3, "y_steps": 4,
	})
	require.Equal(t, http.StatusOK, w.Code)

	grid, ok := body["grid"].([]interface{})
	require.True(t, ok)
	probs, ok := body["probabilities"].([]interface{})
	require.True(t, ok)
	assert.Len(t, grid, 12)
	assert.Len(t, probs, 12)

	first, ok := grid[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, -5.0, first["LOC_X"])
	assert.Equal(t, 0.0, first["LOC_Y"])
}

func TestPredictGridTooLarge(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/predict_grid", map[string]interface{}{
		"x_min": -25.0, "x_max": 25.0, "y_min": 0.0, "y_max": 40.0,
		"x_steps": 50, "y_steps": 50,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))
}

func TestPlayersEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/players?search=curry&min_shots=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	players, ok := body["players"].([]interface{})
	require.True(t, ok)
	require.Len(t, players, 1)
	first := players[0].(map[string]interface{})
	assert.Equal(t, "Stephen Curry", first["name"])
}

func TestPlayersEndpointBadParams(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/players?min_shots=abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))
}

func TestYearsEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/years", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{2023.0, 2024.0}, body["years"])
}

func TestGetPlayerEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/player/Stephen%20Curry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Stephen Curry", body["player_name"])
	assert.Equal(t, 2.0, body["total_shots"])

	w, body = doJSON(t, r, http.MethodGet, "/api/player/Nobody", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestGetPlayerYearFilter(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/player/Stephen%20Curry?years=2023", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, body["total_shots"])

	w, body = doJSON(t, r, http.MethodGet, "/api/player/Stephen%20Curry?years=bogus", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))
}

func TestGetPlayerShotsEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/player/Stephen%20Curry/shots", nil)
	require.Equal(t, http.StatusOK, w.Code)

	shots, ok := body["shots"].([]interface{})
	require.True(t, ok)
	assert.Len(t, shots, 2)
	assert.Equal(t, 2.0, body["total"])

	first := shots[0].(map[string]interface{})
	assert.Contains(t, first, "LOC_X")
	assert.Contains(t, first, "SHOT_MADE_FLAG")
}

func TestCompareEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/compare", map[string]interface{}{
		"player1": "Stephen Curry",
		"player2": "Nikola Jokic",
	})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []interface{}{2024.0}, body["overlap_years"])
	p1, ok := body["player1"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Stephen Curry", p1["player_name"])

	w, body = doJSON(t, r, http.MethodPost, "/api/compare", map[string]interface{}{
		"player1": "Stephen Curry",
		"player2": "Nobody",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestHealthEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}
