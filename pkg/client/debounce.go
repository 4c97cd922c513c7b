package client

import (
	"sync"
	"time"
)

// Debouncer delays delivering a value until its input settles for the
// configured interval. Each Trigger supersedes any pending value; only the
// last one in a burst reaches the callback.
type Debouncer struct {
	interval time.Duration
	fn       func(interface{})

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer builds a debouncer that invokes fn with the most recent
// value once triggers stop arriving for the given interval.
func NewDebouncer(interval time.Duration, fn func(interface{})) *Debouncer {
	return &Debouncer{
		interval: interval,
		fn:       fn,
	}
}

// Trigger submits a value, restarting the settle window.
func (d *Debouncer) Trigger(value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.fn(value)
	})
}

// Stop cancels any pending delivery.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
