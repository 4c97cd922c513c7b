package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRateLimiterRejectsAfterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Stop()
	r := limitedRouter(rl)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Equal(t, http.StatusOK, statuses[1])
	require.Equal(t, http.StatusTooManyRequests, statuses[2])
}

func TestRateLimiterErrorEnvelope(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	r := limitedRouter(rl)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		r.ServeHTTP(w, req)

		if i == 1 {
			require.Equal(t, http.StatusTooManyRequests, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errObj, ok := body["error"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, "RATE_LIMITED", errObj["code"])
		}
	}
}

func TestRateLimiterTracksClientsIndependently(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	r := limitedRouter(rl)

	// The first client exhausts its bucket; a second client still passes.
	for _, tc := range []struct {
		addr string
		want int
	}{
		{"10.0.0.3:1", http.StatusOK},
		{"10.0.0.3:1", http.StatusTooManyRequests},
		{"10.0.0.4:1", http.StatusOK},
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = tc.addr
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, "client %s", tc.addr)
	}
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	rl.Stop()
	rl.Stop()
}
