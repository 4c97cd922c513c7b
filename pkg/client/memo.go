package client

import (
	"fmt"
	"strconv"
	"strings"
)

// memoized returns the cached value for key, or runs fetch once even under
// concurrent callers. Successful results are retained for the client's
// lifetime; a failed fetch stores nothing, so the next call retries.
func (c *Client) memoized(key string, fetch func() (interface{}, error)) (interface{}, error) {
	c.mu.RLock()
	v, ok := c.memo[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have resolved the key while this one
		// waited on the flight group.
		c.mu.RLock()
		v, ok := c.memo[key]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}

		v, err := fetch()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.memo[key] = v
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Invalidate drops memoized results by key so the next call re-fetches.
// Keys come from the *Key helpers.
func (c *Client) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.memo, key)
	}
}

// Reset drops every memoized result.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memo = make(map[string]interface{})
}

// Memo key helpers. One key per parameter set, matching the method that
// populates it.

func PlayersKey(search string, minShots, limit int) string {
	return fmt.Sprintf("players|%s|%d|%d", search, minShots, limit)
}

func YearsKey() string {
	return "years"
}

func PlayerKey(name string, years []int) string {
	return fmt.Sprintf("player|%s|%s", name, yearsKeyPart(years))
}

func ShotsKey(name string, years []int, limit int) string {
	return fmt.Sprintf("shots|%s|%s|%d", name, yearsKeyPart(years), limit)
}

func CompareKey(player1, player2 string, years []int) string {
	return fmt.Sprintf("compare|%s|%s|%s", player1, player2, yearsKeyPart(years))
}

func yearsKeyPart(years []int) string {
	if len(years) == 0 {
		return "all"
	}
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ",")
}
