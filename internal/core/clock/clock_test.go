package clock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanTicker is a Ticker the test fires by hand.
type chanTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (t *chanTicker) C() <-chan time.Time { return t.ch }
func (t *chanTicker) Stop()               { t.stopped.Store(true) }

type tickerSource struct {
	mu      sync.Mutex
	tickers []*chanTicker
}

func (s *tickerSource) New(time.Duration) Ticker {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &chanTicker{ch: make(chan time.Time)}
	s.tickers = append(s.tickers, t)
	return t
}

func (s *tickerSource) last() *chanTicker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickers[len(s.tickers)-1]
}

func (s *tickerSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickers)
}

func TestClock_RealTicksWhileArmed(t *testing.T) {
	c := New(WithInterval(5 * time.Millisecond))
	defer c.Close()

	var ticks atomic.Int32
	c.Arm(func(uint64) { ticks.Add(1) })

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	c.Close()
	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "no ticks after Close returns")
	assert.False(t, c.Armed())
}

func TestClock_ArmIsIdempotent(t *testing.T) {
	src := &tickerSource{}
	c := New(WithTickerFunc(src.New))
	defer c.Close()

	c.Arm(func(uint64) {})
	c.Arm(func(uint64) {})

	assert.Equal(t, 1, src.count())
	assert.True(t, c.Armed())
}

func TestClock_DisarmIsIdempotent(t *testing.T) {
	c := New()
	c.Disarm()
	c.Arm(func(uint64) {})
	c.Disarm()
	c.Disarm()
	c.Wait()
	assert.False(t, c.Armed())
}

func TestClock_GenerationChangesPerArming(t *testing.T) {
	src := &tickerSource{}
	c := New(WithTickerFunc(src.New))
	defer c.Close()

	gens := make(chan uint64, 1)
	c.Arm(func(g uint64) { gens <- g })
	src.last().ch <- time.Now()
	first := <-gens
	assert.True(t, c.Current(first))

	c.Disarm()
	assert.False(t, c.Current(first), "a disarmed generation is never current")

	c.Arm(func(g uint64) { gens <- g })
	src.last().ch <- time.Now()
	second := <-gens

	assert.NotEqual(t, first, second)
	assert.True(t, c.Current(second))
	assert.False(t, c.Current(first))
}

func TestClock_CloseStopsTicker(t *testing.T) {
	src := &tickerSource{}
	c := New(WithTickerFunc(src.New))

	c.Arm(func(uint64) {})
	c.Close()

	assert.True(t, src.last().stopped.Load())
}

func TestClock_DisarmFromCallback(t *testing.T) {
	src := &tickerSource{}
	c := New(WithTickerFunc(src.New))

	done := make(chan struct{})
	c.Arm(func(uint64) {
		c.Disarm()
		close(done)
	})

	src.last().ch <- time.Now()
	<-done
	c.Wait()
	assert.False(t, c.Armed())
}

func TestClock_IntervalDefault(t *testing.T) {
	assert.Equal(t, DefaultInterval, New().Interval())
	assert.Equal(t, DefaultInterval, New(WithInterval(0)).Interval())
	assert.Equal(t, 2*time.Second, New(WithInterval(2*time.Second)).Interval())
}
