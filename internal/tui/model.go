// Package tui implements the interactive pomodoro timer.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/colonyops/tempo/internal/core/config"
	"github.com/colonyops/tempo/internal/core/identity"
	"github.com/colonyops/tempo/internal/core/pomodoro"
	"github.com/colonyops/tempo/internal/core/styles"
	"github.com/colonyops/tempo/internal/notifier"
)

// Timer is the engine surface the TUI drives.
type Timer interface {
	Start()
	Pause()
	Reset()
	ResetAll()
	Skip(target *pomodoro.SessionType) error
	Snapshot() pomodoro.Snapshot
	Settings() pomodoro.Settings
	Subscribe(buffer int) <-chan pomodoro.Snapshot
}

// Notices exposes the delivery state shown in the status line.
type Notices interface {
	Badge() int64
	ClearBadge()
	Pending() []string
}

// Publisher delivers notifications to subscribers.
type Publisher interface {
	Subscribe(fn notifier.Subscriber)
}

// Deps are the collaborators of the timer model.
type Deps struct {
	Timer    Timer
	Notices  Notices
	Bus      Publisher
	Identity identity.Identity
	Config   config.TUIConfig
}

type snapshotMsg pomodoro.Snapshot

type snapshotsClosedMsg struct{}

// Model is the bubbletea model of the timer screen.
type Model struct {
	timer    Timer
	notices  Notices
	identity identity.Identity
	cfg      config.TUIConfig

	snapshots <-chan pomodoro.Snapshot
	buffer    *NotificationBuffer
	toasts    Toasts

	snap     pomodoro.Snapshot
	settings pomodoro.Settings
	err      error

	keys     keyMap
	help     help.Model
	progress progress.Model
	width    int
}

// New builds the timer model and subscribes it to the engine and the bus.
func New(deps Deps) Model {
	buffer := NewNotificationBuffer()
	if deps.Bus != nil {
		deps.Bus.Subscribe(buffer.Push)
	}

	bar := progress.New(
		progress.WithSolidFill(string(styles.ColorPrimary)),
		progress.WithoutPercentage(),
		progress.WithWidth(40),
	)

	return Model{
		timer:     deps.Timer,
		notices:   deps.Notices,
		identity:  deps.Identity,
		cfg:       deps.Config,
		snapshots: deps.Timer.Subscribe(4),
		buffer:    buffer,
		snap:      deps.Timer.Snapshot(),
		settings:  deps.Timer.Settings(),
		keys:      defaultKeyMap(),
		help:      help.New(),
		progress:  bar,
	}
}

func waitForSnapshot(ch <-chan pomodoro.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return snapshotsClosedMsg{}
		}
		return snapshotMsg(s)
	}
}

// Init starts listening for engine snapshots and notifications.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForSnapshot(m.snapshots),
		m.buffer.WaitForSignal(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-12, 10), 60)
		return m, nil

	case snapshotMsg:
		m.snap = pomodoro.Snapshot(msg)
		m.settings = m.timer.Settings()
		return m, waitForSnapshot(m.snapshots)

	case snapshotsClosedMsg:
		return m, tea.Quit

	case drainNotificationsMsg:
		for _, n := range m.buffer.Drain() {
			m.toasts.Push(n)
		}
		cmds := []tea.Cmd{m.buffer.WaitForSignal()}
		if m.toasts.Len() > 0 && !m.toasts.ticking {
			m.toasts.ticking = true
			cmds = append(cmds, scheduleToastTick())
		}
		return m, tea.Batch(cmds...)

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.Len() == 0 {
			m.toasts.ticking = false
			return m, nil
		}
		return m, scheduleToastTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		if m.snap.Running {
			m.timer.Pause()
		} else {
			m.timer.Start()
		}
	case key.Matches(msg, m.keys.Reset):
		m.timer.Reset()
	case key.Matches(msg, m.keys.ResetAll):
		m.timer.ResetAll()
	case key.Matches(msg, m.keys.Skip):
		m.err = m.timer.Skip(nil)
	case key.Matches(msg, m.keys.Work):
		m.err = m.timer.Skip(pomodoro.Work.Ptr())
	case key.Matches(msg, m.keys.ShortBreak):
		m.err = m.timer.Skip(pomodoro.ShortBreak.Ptr())
	case key.Matches(msg, m.keys.LongBreak):
		m.err = m.timer.Skip(pomodoro.LongBreak.Ptr())
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.Dismiss()
		if m.notices != nil {
			m.notices.ClearBadge()
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// elapsed returns the fraction of the current session already spent.
func (m Model) elapsed() float64 {
	total := m.settings.Seconds(m.snap.Session)
	if total <= 0 {
		return 0
	}
	done := float64(total-m.snap.TimeLeftSeconds) / float64(total)
	return min(max(done, 0), 1)
}

func formatClock(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
