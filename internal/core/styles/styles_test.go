package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeNames_Sorted(t *testing.T) {
	names := ThemeNames()
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, DefaultTheme)
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	p, ok := GetPalette("gruvbox")
	require.True(t, ok)

	SetTheme(p)
	assert.Equal(t, lipgloss.Color("#83a598"), ColorPrimary)
	assert.Equal(t, "#83a598", CurrentPalette.Primary)
}

func TestGlamourStyle_UsesPalette(t *testing.T) {
	cfg := GlamourStyle()
	require.NotNil(t, cfg.H2.Color)
	assert.Equal(t, CurrentPalette.Primary, *cfg.H2.Color)
}

func TestGetPalette_Unknown(t *testing.T) {
	_, ok := GetPalette("neon")
	assert.False(t, ok)
}
