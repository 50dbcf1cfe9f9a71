package pomodoro

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/colonyops/tempo/internal/core/kv"
)

// manualClock fires ticks synchronously on Fire.
type manualClock struct {
	mu    sync.Mutex
	gen   uint64
	armed bool
	fn    func(uint64)
	arms  int
}

func (c *manualClock) Arm(fn func(uint64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.armed {
		return
	}
	c.gen++
	c.armed = true
	c.fn = fn
	c.arms++
}

func (c *manualClock) Disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armed = false
}

func (c *manualClock) Current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed && c.gen == gen
}

func (c *manualClock) Wait() {}

func (c *manualClock) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

func (c *manualClock) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Fire delivers n ticks, stopping early once the clock is disarmed.
func (c *manualClock) Fire(n int) {
	for range n {
		c.mu.Lock()
		if !c.armed {
			c.mu.Unlock()
			return
		}
		fn, gen := c.fn, c.gen
		c.mu.Unlock()
		fn(gen)
	}
}

// memKV is an in-memory kv.KV with failure injection.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
	fail error
}

var _ kv.KV = (*memKV)(nil)

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(_ context.Context, key string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	b, ok := m.data[key]
	if !ok {
		return fmt.Errorf("kv get %q: %w", key, sql.ErrNoRows)
	}
	return json.Unmarshal(b, dest)
}

func (m *memKV) Set(_ context.Context, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	delete(m.data, key)
	return nil
}

func (m *memKV) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, m.fail
}

func (m *memKV) ListKeys(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, m.fail
}

func (m *memKV) GetRaw(_ context.Context, key string) (kv.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return kv.Entry{}, sql.ErrNoRows
	}
	return kv.Entry{Key: key, Value: b}, nil
}

func (m *memKV) raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	return string(b), ok
}

func (m *memKV) setFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

type alert struct {
	id          string
	immediate   bool
	title, body string
}

type fakeScheduler struct {
	mu     sync.Mutex
	alerts []alert
}

func (f *fakeScheduler) ScheduleAt(_ context.Context, id string, when *time.Time, title, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, alert{id: id, immediate: when == nil, title: title, body: body})
	return id, nil
}

func (f *fakeScheduler) Cancel(context.Context, string) (bool, error) { return false, nil }
func (f *fakeScheduler) CancelAll(context.Context) (bool, error)      { return true, nil }

func (f *fakeScheduler) all() []alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]alert(nil), f.alerts...)
}

var errDiskFull = errors.New("disk full")
