package pomodoro

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/colonyops/tempo/internal/core/effects"
	"github.com/colonyops/tempo/internal/core/identity"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	engine *Engine
	clock  *manualClock
	kv     *memKV
	sched  *fakeScheduler
	fx     *effects.Queue
}

func newHarness(t *testing.T, settings Settings) *harness {
	t.Helper()

	h := &harness{
		clock: &manualClock{},
		kv:    newMemKV(),
		sched: &fakeScheduler{},
		fx:    effects.NewQueue(zerolog.Nop()),
	}
	store := NewStore(h.kv, DefaultSettings(), zerolog.Nop())
	h.engine = NewEngine(store, h.sched, h.clock, h.fx, DefaultSettings(), zerolog.Nop())

	h.engine.SetIdentity(context.Background(), identity.New("ann@example.com", "Ann"))
	require.NoError(t, h.engine.UpdateSettings(settings))
	h.fx.Flush()

	t.Cleanup(func() {
		h.engine.Close()
		h.fx.Close()
	})
	return h
}

func oneMinuteSettings() Settings {
	s := DefaultSettings()
	s.WorkMinutes = 1
	s.ShortBreakMinutes = 1
	s.LongBreakMinutes = 2
	return s
}

// completeSession starts the current session and ticks it to completion.
func (h *harness) completeSession(t *testing.T) {
	t.Helper()
	h.engine.Start()
	h.clock.Fire(h.engine.Snapshot().TimeLeftSeconds)
}

func TestEngine_InitialState(t *testing.T) {
	e := NewEngine(nil, nil, &manualClock{}, nil, DefaultSettings(), zerolog.Nop())

	assert.Equal(t, Snapshot{Session: Work, TimeLeftSeconds: 1500}, e.Snapshot())
	assert.Equal(t, DefaultSettings(), e.Settings())
	assert.True(t, e.Identity().IsZero())
}

func TestEngine_StartPauseIdempotent(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	h.engine.Start()
	h.engine.Start()
	assert.Equal(t, 1, h.clock.arms, "a second start does not arm a second ticker")
	assert.True(t, h.engine.Snapshot().Running)

	h.clock.Fire(10)
	assert.Equal(t, 1490, h.engine.Snapshot().TimeLeftSeconds)

	h.engine.Pause()
	once := h.engine.Snapshot()
	h.engine.Pause()
	assert.Equal(t, once, h.engine.Snapshot())
	assert.False(t, once.Running)
	assert.False(t, h.clock.Armed())

	h.clock.Fire(5)
	assert.Equal(t, 1490, h.engine.Snapshot().TimeLeftSeconds, "no ticks while paused")
}

func TestEngine_CompletionDeterminism(t *testing.T) {
	h := newHarness(t, oneMinuteSettings())

	h.engine.Start()
	h.clock.Fire(59)
	snap := h.engine.Snapshot()
	assert.Equal(t, Work, snap.Session)
	assert.Equal(t, 1, snap.TimeLeftSeconds)

	h.clock.Fire(1)
	snap = h.engine.Snapshot()
	assert.Equal(t, ShortBreak, snap.Session)
	assert.Equal(t, 1, snap.SessionsCompleted)
	assert.Equal(t, 60, snap.TimeLeftSeconds)
	assert.False(t, snap.Running)

	// Extra ticks after completion are not delivered to a disarmed clock.
	h.clock.Fire(30)
	assert.Equal(t, snap, h.engine.Snapshot())
}

func TestEngine_LongBreakCadence(t *testing.T) {
	h := newHarness(t, oneMinuteSettings())

	for i := 1; i <= 12; i++ {
		require.Equal(t, Work, h.engine.Snapshot().Session)
		h.completeSession(t)

		snap := h.engine.Snapshot()
		require.Equal(t, i, snap.SessionsCompleted)
		if i%4 == 0 {
			assert.Equal(t, LongBreak, snap.Session, "completion %d", i)
			assert.Equal(t, 120, snap.TimeLeftSeconds)
		} else {
			assert.Equal(t, ShortBreak, snap.Session, "completion %d", i)
		}

		h.completeSession(t)
		assert.Equal(t, i, h.engine.Snapshot().SessionsCompleted, "breaks are not counted")
	}
}

func TestEngine_BreakCompletionReturnsToWork(t *testing.T) {
	h := newHarness(t, oneMinuteSettings())

	require.NoError(t, h.engine.Skip(ShortBreak.Ptr()))
	h.completeSession(t)

	snap := h.engine.Snapshot()
	assert.Equal(t, Work, snap.Session)
	assert.Equal(t, 60, snap.TimeLeftSeconds)
	assert.Equal(t, 0, snap.SessionsCompleted)
}

func TestEngine_AutoStart(t *testing.T) {
	s := oneMinuteSettings()
	s.AutoStartBreaks = true
	h := newHarness(t, s)

	h.completeSession(t)
	snap := h.engine.Snapshot()
	assert.Equal(t, ShortBreak, snap.Session)
	assert.True(t, snap.Running, "break auto-starts")
	assert.True(t, h.clock.Armed())

	h.clock.Fire(60)
	snap = h.engine.Snapshot()
	assert.Equal(t, Work, snap.Session)
	assert.False(t, snap.Running, "work does not auto-start")

	s.AutoStartWork = true
	require.NoError(t, h.engine.UpdateSettings(s))
	require.NoError(t, h.engine.Skip(ShortBreak.Ptr()))
	h.completeSession(t)
	assert.True(t, h.engine.Snapshot().Running)
}

func TestEngine_CompletionAlerts(t *testing.T) {
	h := newHarness(t, oneMinuteSettings())

	h.completeSession(t)
	h.completeSession(t)
	h.fx.Flush()

	alerts := h.sched.all()
	require.Len(t, alerts, 2)
	assert.Equal(t, WorkDoneTitle, alerts[0].title)
	assert.Equal(t, WorkDoneBody, alerts[0].body)
	assert.Equal(t, BreakDoneTitle, alerts[1].title)
	for _, a := range alerts {
		assert.True(t, a.immediate)
		assert.True(t, strings.HasPrefix(a.id, "pomodoro-"))
	}
	assert.NotEqual(t, alerts[0].id, alerts[1].id)
}

func TestEngine_NoAlertsWhenDisabled(t *testing.T) {
	s := oneMinuteSettings()
	s.NotificationsEnabled = false
	h := newHarness(t, s)

	h.completeSession(t)
	h.fx.Flush()

	assert.Empty(t, h.sched.all())
	assert.Equal(t, 1, h.engine.Snapshot().SessionsCompleted)
}

func TestEngine_Skip(t *testing.T) {
	h := newHarness(t, oneMinuteSettings())

	h.engine.Start()
	h.clock.Fire(10)

	// Nothing is completed yet, so the cadence rule picks the long break.
	require.NoError(t, h.engine.Skip(nil))
	snap := h.engine.Snapshot()
	assert.Equal(t, LongBreak, snap.Session)
	assert.Equal(t, 120, snap.TimeLeftSeconds)
	assert.Equal(t, 0, snap.SessionsCompleted, "skip never counts")
	assert.False(t, snap.Running)
	assert.False(t, h.clock.Armed())

	require.NoError(t, h.engine.Skip(nil))
	assert.Equal(t, Work, h.engine.Snapshot().Session, "skip from a break returns to work")

	h.completeSession(t) // completed = 1
	require.NoError(t, h.engine.Skip(Work.Ptr()))
	require.NoError(t, h.engine.Skip(nil))
	assert.Equal(t, ShortBreak, h.engine.Snapshot().Session)

	require.NoError(t, h.engine.Skip(LongBreak.Ptr()))
	assert.Equal(t, LongBreak, h.engine.Snapshot().Session)

	h.fx.Flush()
	assert.Len(t, h.sched.all(), 1, "only the natural completion alerted")

	bad := SessionType("nap")
	assert.ErrorIs(t, h.engine.Skip(&bad), ErrInvalidSession)
	assert.Equal(t, LongBreak, h.engine.Snapshot().Session)
}

func TestEngine_ResetKeepsCount(t *testing.T) {
	h := newHarness(t, oneMinuteSettings())

	h.completeSession(t)
	h.engine.Start()
	h.clock.Fire(5)

	h.engine.Reset()
	snap := h.engine.Snapshot()
	assert.Equal(t, Snapshot{Session: Work, TimeLeftSeconds: 60, SessionsCompleted: 1}, snap)
	assert.False(t, h.clock.Armed())
}

func TestEngine_ResetAllClearsCount(t *testing.T) {
	h := newHarness(t, oneMinuteSettings())

	h.completeSession(t)
	h.fx.Flush()
	_, ok := h.kv.raw("pomodoro_sessions_ann@example.com")
	require.True(t, ok)

	h.engine.ResetAll()
	h.fx.Flush()

	assert.Equal(t, Snapshot{Session: Work, TimeLeftSeconds: 60}, h.engine.Snapshot())
	_, ok = h.kv.raw("pomodoro_sessions_ann@example.com")
	assert.False(t, ok)
}

func TestEngine_UpdateSettingsWhilePaused(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	require.Equal(t, 1500, h.engine.Snapshot().TimeLeftSeconds)

	s := DefaultSettings()
	s.WorkMinutes = 10
	require.NoError(t, h.engine.UpdateSettings(s))

	assert.Equal(t, 600, h.engine.Snapshot().TimeLeftSeconds)
	assert.Equal(t, 10, h.engine.Settings().WorkMinutes)

	h.fx.Flush()
	raw, ok := h.kv.raw("pomodoro_settings_ann@example.com")
	require.True(t, ok)
	assert.Contains(t, raw, `"workDuration":10`)
}

func TestEngine_UpdateSettingsWhileRunning(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	h.engine.Start()
	h.clock.Fire(700)
	require.Equal(t, 800, h.engine.Snapshot().TimeLeftSeconds)

	s := DefaultSettings()
	s.WorkMinutes = 30
	require.NoError(t, h.engine.UpdateSettings(s))
	assert.Equal(t, 800, h.engine.Snapshot().TimeLeftSeconds)
	assert.True(t, h.engine.Snapshot().Running)

	// Shrinking below the remaining time still leaves the countdown alone.
	s.WorkMinutes = 10
	require.NoError(t, h.engine.UpdateSettings(s))
	assert.Equal(t, 800, h.engine.Snapshot().TimeLeftSeconds)
	assert.Equal(t, 10, h.engine.Settings().WorkMinutes)

	// The new length applies once the session is left.
	h.engine.Pause()
	require.NoError(t, h.engine.Skip(nil))
	require.NoError(t, h.engine.Skip(Work.Ptr()))
	assert.Equal(t, 600, h.engine.Snapshot().TimeLeftSeconds)
}

func TestEngine_UpdateSettingsAfterClose(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.engine.Close()

	s := DefaultSettings()
	s.WorkMinutes = 10
	require.NoError(t, h.engine.UpdateSettings(s))
	h.fx.Flush()

	assert.Equal(t, DefaultSettings(), h.engine.Settings())
	assert.Equal(t, 1500, h.engine.Snapshot().TimeLeftSeconds)
	raw, ok := h.kv.raw("pomodoro_settings_ann@example.com")
	require.True(t, ok)
	assert.Contains(t, raw, `"workDuration":25`)
}

func TestEngine_ValidationRejection(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	before := h.engine.Snapshot()

	bad := DefaultSettings()
	bad.WorkMinutes = 0
	err := h.engine.UpdateSettings(bad)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, DefaultSettings(), h.engine.Settings())
	assert.Equal(t, before, h.engine.Snapshot())
}

func TestEngine_SetIdentityReloads(t *testing.T) {
	h := newHarness(t, oneMinuteSettings())
	ctx := context.Background()

	h.completeSession(t)
	h.completeSession(t)
	h.completeSession(t)
	h.fx.Flush()
	require.Equal(t, 2, h.engine.Snapshot().SessionsCompleted)

	h.engine.Start()
	h.engine.SetIdentity(ctx, identity.New("bo@example.com", ""))
	snap := h.engine.Snapshot()
	assert.Equal(t, Snapshot{Session: Work, TimeLeftSeconds: 1500}, snap, "new identity starts from defaults")
	assert.False(t, h.clock.Armed())

	h.engine.SetIdentity(ctx, identity.New("ann@example.com", ""))
	snap = h.engine.Snapshot()
	assert.Equal(t, 2, snap.SessionsCompleted)
	assert.Equal(t, 60, snap.TimeLeftSeconds)
	assert.Equal(t, oneMinuteSettings(), h.engine.Settings())
}

func TestEngine_NullIdentityPersistsNothing(t *testing.T) {
	clock := &manualClock{}
	mem := newMemKV()
	fx := effects.NewQueue(zerolog.Nop())
	defer fx.Close()

	e := NewEngine(NewStore(mem, DefaultSettings(), zerolog.Nop()), &fakeScheduler{}, clock, fx, DefaultSettings(), zerolog.Nop())
	defer e.Close()

	e.SetIdentity(context.Background(), identity.Identity{})

	s := oneMinuteSettings()
	require.NoError(t, e.UpdateSettings(s))
	e.Start()
	clock.Fire(60)
	e.ResetAll()
	fx.Flush()

	keys, err := mem.ListKeys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestEngine_PersistenceFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, oneMinuteSettings())
	h.kv.setFail(errDiskFull)

	h.completeSession(t)
	h.fx.Flush()
	assert.Equal(t, 1, h.engine.Snapshot().SessionsCompleted, "memory stays authoritative")

	h.engine.SetIdentity(context.Background(), identity.New("bo@example.com", ""))
	assert.Equal(t, DefaultSettings(), h.engine.Settings())
	assert.Equal(t, 0, h.engine.Snapshot().SessionsCompleted)
}

func TestEngine_StaleTickDropped(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	h.engine.Start()
	stale := h.clock.generation()
	h.engine.Pause()
	h.engine.Start()

	h.engine.onTick(stale)
	assert.Equal(t, 1500, h.engine.Snapshot().TimeLeftSeconds)

	h.engine.onTick(h.clock.generation())
	assert.Equal(t, 1499, h.engine.Snapshot().TimeLeftSeconds)
}

func TestEngine_Subscribe(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	ch := h.engine.Subscribe(1)
	first := <-ch
	assert.Equal(t, 1500, first.TimeLeftSeconds)

	h.engine.Start()
	h.clock.Fire(3)

	// Buffer of one keeps only the latest snapshot.
	latest := <-ch
	assert.Equal(t, 1497, latest.TimeLeftSeconds)
	assert.True(t, latest.Running)

	h.engine.Close()
	_, open := <-ch
	assert.False(t, open)

	closed := h.engine.Subscribe(4)
	_, open = <-closed
	assert.False(t, open)
}

func TestEngine_CloseDisarmsAndIgnoresCommands(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	h.engine.Start()
	h.engine.Close()
	assert.False(t, h.clock.Armed())

	h.engine.Start()
	assert.False(t, h.engine.Snapshot().Running)
	assert.False(t, h.clock.Armed())

	h.engine.Close()
}

func TestEngine_Invariants(t *testing.T) {
	h := newHarness(t, oneMinuteSettings())
	rng := rand.New(rand.NewPCG(1, 2))

	// A running countdown keeps its length across a settings change, so the
	// bound is the session length when the countdown was last derived.
	prev := h.engine.Snapshot()
	ceiling := h.engine.Settings().Seconds(prev.Session)
	for step := range 2000 {
		rederived := false
		switch op := rng.IntN(10); op {
		case 0:
			h.engine.Start()
		case 1:
			h.engine.Pause()
		case 2:
			h.engine.Reset()
			rederived = true
		case 3:
			if rng.IntN(3) == 0 {
				require.NoError(t, h.engine.Skip(nil))
			} else {
				target := SessionTypes()[rng.IntN(3)]
				require.NoError(t, h.engine.Skip(&target))
			}
			rederived = true
		case 4:
			s := oneMinuteSettings()
			s.WorkMinutes = 1 + rng.IntN(3)
			s.ShortBreakMinutes = 1 + rng.IntN(2)
			require.NoError(t, h.engine.UpdateSettings(s))
			rederived = !prev.Running
		default:
			h.clock.Fire(1 + rng.IntN(90))
		}

		snap := h.engine.Snapshot()
		if rederived || snap.Session != prev.Session {
			ceiling = h.engine.Settings().Seconds(snap.Session)
		}

		require.GreaterOrEqual(t, snap.TimeLeftSeconds, 0, "step %d", step)
		require.LessOrEqual(t, snap.TimeLeftSeconds, ceiling, "step %d", step)
		require.GreaterOrEqual(t, snap.SessionsCompleted, prev.SessionsCompleted, "step %d", step)
		require.Equal(t, snap.Running, h.clock.Armed(), "step %d", step)
		prev = snap
	}
}

// gatedStore holds SaveSessions until released.
type gatedStore struct {
	Persistence
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) SaveSessions(ctx context.Context, id string, n int) error {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.release
	return g.Persistence.SaveSessions(ctx, id, n)
}

func TestEngine_SetIdentityWaitsForPendingWrites(t *testing.T) {
	clock := &manualClock{}
	fx := effects.NewQueue(zerolog.Nop())
	defer fx.Close()

	store := &gatedStore{
		Persistence: NewStore(newMemKV(), DefaultSettings(), zerolog.Nop()),
		entered:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
	e := NewEngine(store, &fakeScheduler{}, clock, fx, DefaultSettings(), zerolog.Nop())
	defer e.Close()

	ctx := context.Background()
	ann := identity.New("ann@example.com", "Ann")
	e.SetIdentity(ctx, ann)
	require.NoError(t, e.UpdateSettings(oneMinuteSettings()))

	e.Start()
	clock.Fire(60)
	require.Equal(t, 1, e.Snapshot().SessionsCompleted)
	<-store.entered

	switched := make(chan struct{})
	go func() {
		e.SetIdentity(ctx, identity.Identity{})
		e.SetIdentity(ctx, ann)
		close(switched)
	}()

	select {
	case <-switched:
		t.Fatal("identity switched before the pending write finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.release)
	<-switched

	assert.Equal(t, 1, e.Snapshot().SessionsCompleted)
}
