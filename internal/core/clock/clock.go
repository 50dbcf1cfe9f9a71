// Package clock provides the one-second session ticker that drives the
// pomodoro countdown.
package clock

import (
	"sync"
	"time"
)

// DefaultInterval is the tick period used when none is configured.
const DefaultInterval = time.Second

// Ticker is the subset of *time.Ticker the clock needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

func newStdTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

// Option configures a Clock.
type Option func(*Clock)

// WithInterval sets the tick period.
func WithInterval(d time.Duration) Option {
	return func(c *Clock) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithTickerFunc replaces the ticker source.
func WithTickerFunc(fn TickerFunc) Option {
	return func(c *Clock) {
		if fn != nil {
			c.newTicker = fn
		}
	}
}

// Clock delivers periodic ticks while armed.
//
// Every arming gets a new generation number that is passed to the tick
// callback. Owners that serialise ticks with other commands under their own
// lock check Current(gen) under that lock and drop the tick when it is stale,
// so no tick from a previous arming is ever acted upon once Disarm returned.
type Clock struct {
	interval  time.Duration
	newTicker TickerFunc

	mu    sync.Mutex
	gen   uint64
	stop  chan struct{}
	armed bool
	wg    sync.WaitGroup
}

// New creates a disarmed clock.
func New(opts ...Option) *Clock {
	c := &Clock{
		interval:  DefaultInterval,
		newTicker: newStdTicker,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Interval returns the configured tick period.
func (c *Clock) Interval() time.Duration {
	return c.interval
}

// Arm starts ticking. fn runs on a clock goroutine once per interval with the
// generation of this arming. Arming an armed clock is a no-op.
func (c *Clock) Arm(fn func(gen uint64)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.armed {
		return
	}

	c.gen++
	c.armed = true
	c.stop = make(chan struct{})

	gen := c.gen
	stop := c.stop
	ticker := c.newTicker(c.interval)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				// Recheck so a tick racing with Disarm is not delivered late.
				select {
				case <-stop:
					return
				default:
				}
				fn(gen)
			}
		}
	}()
}

// Disarm stops ticking. It does not wait for an in-flight callback; use Wait
// for that. Disarming a disarmed clock is a no-op.
func (c *Clock) Disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.armed {
		return
	}

	c.armed = false
	close(c.stop)
	c.stop = nil
}

// Armed reports whether the clock is ticking.
func (c *Clock) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

// Current reports whether gen belongs to the live arming.
func (c *Clock) Current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed && c.gen == gen
}

// Wait blocks until every ticking goroutine has exited. It must not be called
// from inside a tick callback.
func (c *Clock) Wait() {
	c.wg.Wait()
}

// Close disarms the clock and waits for the ticking goroutine to exit.
func (c *Clock) Close() {
	c.Disarm()
	c.Wait()
}
