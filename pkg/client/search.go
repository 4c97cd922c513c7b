package client

import (
	"context"
	"sync/atomic"
	"time"
)

// Searcher runs debounced player searches. Each query bumps a generation
// counter; a response whose generation has been superseded is dropped, so
// out-of-order completions never overwrite newer results.
type Searcher struct {
	client    *Client
	debouncer *Debouncer

	minShots int
	limit    int

	generation uint64

	onResults func(query string, players []PlayerSummary)
	onError   func(query string, err error)
}

// SearcherConfig configures a Searcher.
type SearcherConfig struct {
	// Delay is the debounce settle window. Defaults to 300ms.
	Delay    time.Duration
	MinShots int
	Limit    int

	// OnResults receives the players for the latest non-superseded query.
	OnResults func(query string, players []PlayerSummary)
	// OnError receives failures for the latest non-superseded query.
	// Optional.
	OnError func(query string, err error)
}

// NewSearcher builds a debounced searcher over the client.
func NewSearcher(c *Client, cfg SearcherConfig) *Searcher {
	if cfg.Delay <= 0 {
		cfg.Delay = 300 * time.Millisecond
	}

	s := &Searcher{
		client:    c,
		minShots:  cfg.MinShots,
		limit:     cfg.Limit,
		onResults: cfg.OnResults,
		onError:   cfg.OnError,
	}
	s.debouncer = NewDebouncer(cfg.Delay, func(v interface{}) {
		q := v.(searchQuery)
		go s.run(q)
	})
	return s
}

type searchQuery struct {
	text string
	gen  uint64
}

// Query submits a search term. Rapid successive calls collapse into one
// request carrying the last term.
func (s *Searcher) Query(text string) {
	gen := atomic.AddUint64(&s.generation, 1)
	s.debouncer.Trigger(searchQuery{text: text, gen: gen})
}

// Stop cancels any pending search.
func (s *Searcher) Stop() {
	atomic.AddUint64(&s.generation, 1)
	s.debouncer.Stop()
}

func (s *Searcher) run(q searchQuery) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	players, err := s.client.Players(ctx, q.text, s.minShots, s.limit)

	// Another query arrived while this one was in flight.
	if atomic.LoadUint64(&s.generation) != q.gen {
		return
	}

	if err != nil {
		if s.onError != nil {
			s.onError(q.text, err)
		}
		return
	}
	if s.onResults != nil {
		s.onResults(q.text, players)
	}
}
