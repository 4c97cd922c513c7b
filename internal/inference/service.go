package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Prediction sources reported alongside probabilities.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// Service scores shots against the local model artifact, optionally
// preferring a remote scorer service guarded by a circuit breaker.
type Service struct {
	model  *Model
	remote *remoteScorer
	logger *logrus.Logger
}

type remoteScorer struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewService builds a scoring service. modelURL is optional; when empty all
// predictions run against the local artifact at modelPath. When both are
// configured the remote scorer is preferred and the local model is the
// fallback.
func NewService(modelPath, modelURL string, timeout time.Duration, breakerThreshold int, logger *logrus.Logger) (*Service, error) {
	s := &Service{logger: logger}

	if modelPath != "" {
		model, err := LoadModel(modelPath)
		if err != nil {
			if modelURL == "" {
				return nil, err
			}
			logger.Warnf("Local model unavailable, relying on remote scorer: %v", err)
		} else {
			s.model = model
			logger.Infof("Loaded shot model with %d trees from %s", len(model.Trees), modelPath)
		}
	}

	if modelURL != "" {
		settings := gobreaker.Settings{
			Name:        "model-scorer",
			MaxRequests: uint32(breakerThreshold),
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.WithFields(logrus.Fields{
					"component": "circuit_breaker",
					"service":   name,
					"from":      from.String(),
					"to":        to.String(),
				}).Info("Circuit breaker state changed")
			},
		}
		s.remote = &remoteScorer{
			url:        modelURL,
			httpClient: &http.Client{Timeout: timeout},
			breaker:    gobreaker.NewCircuitBreaker(settings),
		}
	}

	if s.model == nil && s.remote == nil {
		return nil, fmt.Errorf("no model configured: set MODEL_PATH or MODEL_URL")
	}

	return s, nil
}

// Predict returns P(make) for one shot and the source that produced it.
func (s *Service) Predict(ctx context.Context, f ShotFeatures) (float64, string, error) {
	if s.remote != nil {
		prob, err := s.remote.predict(ctx, f.Normalize())
		if err == nil {
			return prob, SourceRemote, nil
		}
		if s.model == nil {
			return 0, "", fmt.Errorf("remote scorer failed: %w", err)
		}
		s.logger.Warnf("Remote scorer failed, falling back to local model: %v", err)
	}
	return s.model.Predict(f), SourceLocal, nil
}

type remoteRequest struct {
	LocX         float64 `json:"LOC_X"`
	LocY         float64 `json:"LOC_Y"`
	ShotDistance float64 `json:"SHOT_DISTANCE"`
	Year         int     `json:"YEAR"`
	ShotType     string  `json:"SHOT_TYPE"`
	ActionType   string  `json:"ACTION_TYPE"`
	PlayerName   string  `json:"player_name,omitempty"`
}

type remoteResponse struct {
	ProbabilityMake float64 `json:"probability_make"`
}

func (r *remoteScorer) predict(ctx context.Context, f ShotFeatures) (float64, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		body, err := json.Marshal(remoteRequest{
			LocX:         f.LocX,
			LocY:         f.LocY,
			ShotDistance: f.ShotDistance,
			Year:         f.Year,
			ShotType:     f.ShotType,
			ActionType:   f.ActionType,
			PlayerName:   f.PlayerName,
		})
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := r.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("scorer returned status %d", resp.StatusCode)
		}

		var out remoteResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("failed to decode scorer response: %w", err)
		}
		return out.ProbabilityMake, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(float64), nil
}
