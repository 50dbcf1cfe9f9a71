package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/colonyops/tempo/internal/core/pomodoro"
	"github.com/colonyops/tempo/internal/core/styles"
)

// View renders the timer screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")

	clock := formatClock(m.snap.TimeLeftSeconds)
	if m.snap.Running {
		clock = styles.TimerClockStyle.Render(clock)
	} else {
		clock = styles.TimerPausedStyle.Render(clock + "  paused")
	}
	b.WriteString(clock)

	if !m.cfg.Compact {
		b.WriteString("\n\n")
		b.WriteString(m.progress.ViewAs(m.elapsed()))
		b.WriteString("\n\n")
		b.WriteString(m.counter())
	}

	body := styles.TimerFrameStyle.Render(b.String())

	sections := []string{body}
	if status := m.status(); status != "" {
		sections = append(sections, status)
	}
	if m.err != nil {
		sections = append(sections, styles.ErrorStyle.Render(m.err.Error()))
	}
	if toasts := m.toasts.View(); toasts != "" {
		sections = append(sections, toasts)
	}
	if !m.cfg.HideHelp {
		sections = append(sections, m.help.View(m.keys))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) header() string {
	style := styles.SessionWorkStyle
	if m.snap.Session.IsBreak() {
		style = styles.SessionBreakStyle
	}
	return style.Render(strings.ToUpper(m.snap.Session.Label()))
}

func (m Model) counter() string {
	n := m.settings.SessionsBeforeLongBreak
	done := m.snap.SessionsCompleted

	var dots strings.Builder
	if n > 0 {
		filled := done % n
		if done > 0 && filled == 0 && m.snap.Session == pomodoro.LongBreak {
			filled = n
		}
		dots.WriteString(strings.Repeat("●", filled))
		dots.WriteString(strings.Repeat("○", n-filled))
	}

	return styles.SessionCounterStyle.Render(fmt.Sprintf("%s  %d completed", dots.String(), done))
}

func (m Model) status() string {
	var parts []string

	if m.identity.IsZero() {
		parts = append(parts, styles.MutedStyle.Render("signed out, settings are not saved"))
	} else {
		parts = append(parts, styles.MutedStyle.Render(m.identity.String()))
	}

	if m.notices != nil {
		if pending := len(m.notices.Pending()); pending > 0 {
			parts = append(parts, styles.MutedStyle.Render(fmt.Sprintf("%d reminder(s) scheduled", pending)))
		}
		if badge := m.notices.Badge(); badge > 0 {
			parts = append(parts, styles.BadgeStyle.Render(fmt.Sprintf("%d", badge)))
		}
	}

	return strings.Join(parts, "  ")
}
