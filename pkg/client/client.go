// Package client is a typed HTTP client for the shot predictor API with
// request memoization and debounced search helpers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 15 * time.Second

// Client talks to a shot predictor server. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	group singleflight.Group
	mu    sync.RWMutex
	memo  map[string]interface{}
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New builds a client for the API rooted at baseURL (for example
// "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		memo:       make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ShotRequest describes one hypothetical shot. Zero-valued optional fields
// take the server's defaults.
type ShotRequest struct {
	LocX         float64  `json:"LOC_X"`
	LocY         float64  `json:"LOC_Y"`
	ShotDistance *float64 `json:"SHOT_DISTANCE,omitempty"`
	Year         int      `json:"YEAR,omitempty"`
	ShotType     string   `json:"SHOT_TYPE,omitempty"`
	ActionType   string   `json:"ACTION_TYPE,omitempty"`
	PlayerName   string   `json:"player_name,omitempty"`
}

// GridRequest describes a probability lattice over a bounding box.
type GridRequest struct {
	XMin       float64 `json:"x_min"`
	XMax       float64 `json:"x_max"`
	YMin       float64 `json:"y_min"`
	YMax       float64 `json:"y_max"`
	XSteps     int     `json:"x_steps"`
	YSteps     int     `json:"y_steps"`
	Year       int     `json:"YEAR,omitempty"`
	ShotType   string  `json:"SHOT_TYPE,omitempty"`
	ActionType string  `json:"ACTION_TYPE,omitempty"`
	PlayerName string  `json:"player_name,omitempty"`
}

// GridPoint is one court location in a grid response.
type GridPoint struct {
	LocX float64 `json:"LOC_X"`
	LocY float64 `json:"LOC_Y"`
}

// GridResult pairs grid points with their make probabilities, flattened
// row-major over x.
type GridResult struct {
	Grid          []GridPoint `json:"grid"`
	Probabilities []float64   `json:"probabilities"`
}

// PlayerSummary is one player search result.
type PlayerSummary struct {
	Name       string  `json:"name"`
	TotalShots int64   `json:"total_shots"`
	FGPct      float64 `json:"fg_pct"`
}

// Breakdown is one bucket of a stats breakdown.
type Breakdown struct {
	Key      string  `json:"key"`
	Attempts int64   `json:"attempts"`
	Made     int64   `json:"made"`
	FGPct    float64 `json:"fg_pct"`
}

// PlayerStats is a player's aggregate shooting profile.
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

// ShotRecord is one attempted shot in a shot-log response.
type ShotRecord struct {
	LocX         float64 `json:"LOC_X"`
	LocY         float64 `json:"LOC_Y"`
	ShotMadeFlag int     `json:"SHOT_MADE_FLAG"`
	ShotDistance float64 `json:"SHOT_DISTANCE"`
	ShotType     string  `json:"SHOT_TYPE"`
	ActionType   string  `json:"ACTION_TYPE"`
	Year         int     `json:"YEAR"`
}

// CompareResult holds two players' stats plus their shared seasons.
type CompareResult struct {
	Player1      *PlayerStats `json:"player1"`
	Player2      *PlayerStats `json:"player2"`
	OverlapYears []int        `json:"overlap_years"`
	NoOverlap    bool         `json:"no_overlap"`
}

// PredictShot returns P(make) for one shot.
func (c *Client) PredictShot(ctx context.Context, req ShotRequest) (float64, error) {
	var out struct {
		ProbabilityMake float64 `json:"probability_make"`
	}
	if err := c.post(ctx, "/api/predict_shot", req, &out); err != nil {
		return 0, err
	}
	return out.ProbabilityMake, nil
}

// PredictGrid scores a lattice of locations.
func (c *Client) PredictGrid(ctx context.Context, req GridRequest) (*GridResult, error) {
	var out GridResult
	if err := c.post(ctx, "/api/predict_grid", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Players searches players by name. Results are memoized per parameter set.
func (c *Client) Players(ctx context.Context, search string, minShots, limit int) ([]PlayerSummary, error) {
	key := PlayersKey(search, minShots, limit)
	v, err := c.memoized(key, func() (interface{}, error) {
		q := url.Values{}
		if search != "" {
			q.Set("search", search)
		}
		q.Set("min_shots", strconv.Itoa(minShots))
		q.Set("limit", strconv.Itoa(limit))

		var out struct {
			Players []PlayerSummary `json:"players"`
		}
		if err := c.get(ctx, "/api/players", q, &out); err != nil {
			return nil, err
		}
		return out.Players, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]PlayerSummary), nil
}

// Years returns the seasons present in the dataset. Memoized.
func (c *Client) Years(ctx context.Context) ([]int, error) {
	v, err := c.memoized(YearsKey(), func() (interface{}, error) {
		var out struct {
			Years []int `json:"years"`
		}
		if err := c.get(ctx, "/api/years", nil, &out); err != nil {
			return nil, err
		}
		return out.Years, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]int), nil
}

// PlayerStats fetches one player's aggregate stats. Memoized.
func (c *Client) PlayerStats(ctx context.Context, name string, years []int) (*PlayerStats, error) {
	key := PlayerKey(name, years)
	v, err := c.memoized(key, func() (interface{}, error) {
		var out PlayerStats
		if err := c.get(ctx, "/api/player/"+url.PathEscape(name), yearsQuery(years), &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*PlayerStats), nil
}

// PlayerShots fetches one player's shot log. Memoized.
func (c *Client) PlayerShots(ctx context.Context, name string, years []int, limit int) ([]ShotRecord, error) {
	key := ShotsKey(name, years, limit)
	v, err := c.memoized(key, func() (interface{}, error) {
		q := yearsQuery(years)
		if q == nil {
			q = url.Values{}
		}
		if limit > 0 {
			q.Set("limit", strconv.Itoa(limit))
		}

		var out struct {
			Shots []ShotRecord `json:"shots"`
			Total int          `json:"total"`
		}
		if err := c.get(ctx, "/api/player/"+url.PathEscape(name)+"/shots", q, &out); err != nil {
			return nil, err
		}
		return out.Shots, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]ShotRecord), nil
}

// Compare fetches two players' stats and their season overlap. Memoized.
func (c *Client) Compare(ctx context.Context, player1, player2 string, years []int) (*CompareResult, error) {
	key := CompareKey(player1, player2, years)
	v, err := c.memoized(key, func() (interface{}, error) {
		body := map[string]interface{}{
			"player1": player1,
			"player2": player2,
		}
		if len(years) > 0 {
			body["years"] = years
		}

		var out CompareResult
		if err := c.post(ctx, "/api/compare", body, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*CompareResult), nil
}

func yearsQuery(years []int) url.Values {
	if len(years) == 0 {
		return nil
	}
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	q := url.Values{}
	q.Set("years", strings.Join(parts, ","))
	return q
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, dest)
}

func (c *Client) post(ctx context.Context, path string, body, dest interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dest)
}

// apiError mirrors the server's error envelope.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", req.URL.Path, err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope apiError
		if json.Unmarshal(data, &envelope) == nil && envelope.Error.Message != "" {
			return fmt.Errorf("%s returned %d: %s (%s)", req.URL.Path, resp.StatusCode, envelope.Error.Message, envelope.Error.Code)
		}
		return fmt.Errorf("%s returned status %d", req.URL.Path, resp.StatusCode)
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}
