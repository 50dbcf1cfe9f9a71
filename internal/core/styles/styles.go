// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported colors of the active palette.
var (
	ColorPrimary    lipgloss.Color
	ColorSecondary  lipgloss.Color
	ColorForeground lipgloss.Color
	ColorMuted      lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
	ColorSuccess    lipgloss.Color
	ColorWarning    lipgloss.Color
	ColorError      lipgloss.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	SuccessStyle       lipgloss.Style
	WarningStyle       lipgloss.Style
	ErrorStyle         lipgloss.Style
	MutedStyle         lipgloss.Style

	// Timer styles.
	TimerFrameStyle     lipgloss.Style
	TimerClockStyle     lipgloss.Style
	TimerPausedStyle    lipgloss.Style
	SessionWorkStyle    lipgloss.Style
	SessionBreakStyle   lipgloss.Style
	SessionCounterStyle lipgloss.Style
	BadgeStyle          lipgloss.Style
	ToastStyle          lipgloss.Style

	// Task styles.
	PriorityHighStyle   lipgloss.Style
	PriorityMediumStyle lipgloss.Style
	PriorityLowStyle    lipgloss.Style
	DoneStyle           lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = lipgloss.Color(p.Primary)
	ColorSecondary = lipgloss.Color(p.Secondary)
	ColorForeground = lipgloss.Color(p.Foreground)
	ColorMuted = lipgloss.Color(p.Muted)
	ColorBackground = lipgloss.Color(p.Background)
	ColorSurface = lipgloss.Color(p.Surface)
	ColorSuccess = lipgloss.Color(p.Success)
	ColorWarning = lipgloss.Color(p.Warning)
	ColorError = lipgloss.Color(p.Error)

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorError)
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	TimerFrameStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 4)
	TimerClockStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Bold(true)
	TimerPausedStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Bold(true)
	SessionWorkStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true)
	SessionBreakStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Bold(true)
	SessionCounterStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)
	BadgeStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorWarning).
		Foreground(ColorBackground).
		Bold(true)
	ToastStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(ColorWarning).
		PaddingLeft(1).
		Foreground(ColorForeground)

	PriorityHighStyle = lipgloss.NewStyle().Foreground(ColorError)
	PriorityMediumStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	PriorityLowStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	DoneStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Strikethrough(true)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
