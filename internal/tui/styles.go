package tui

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/sadopc/commitpaint/internal/grid"
	"github.com/sadopc/commitpaint/internal/store"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorSecondary = lipgloss.Color("#2EC4B6")
	colorAccent    = lipgloss.Color("#FF6B6B")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

// levelColors is the contribution calendar palette, darkest first.
var levelColors = [grid.Levels]colorful.Color{
	rgb(21, 27, 35),
	rgb(3, 58, 22),
	rgb(25, 108, 46),
	rgb(46, 160, 67),
	rgb(86, 211, 100),
}

// pendingFade is how far a cell that is not painted yet is pulled toward the
// empty color.
const pendingFade = 0.6

var (
	levelHex   = paletteHex(0)
	pendingHex = paletteHex(pendingFade)
)

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// paletteHex blends every level toward level 0 in Lab space.
func paletteHex(fade float64) [grid.Levels]string {
	var out [grid.Levels]string
	for i, c := range levelColors {
		if fade > 0 {
			c = c.BlendLab(levelColors[0], fade).Clamped()
		}
		out[i] = c.Hex()
	}
	return out
}

func clampLevel(level uint8) uint8 {
	if int(level) >= grid.Levels {
		return grid.Levels - 1
	}
	return level
}

// levelColor maps a quantized level to its preview color. Out of range levels
// clamp to the brightest entry.
func levelColor(level uint8) lipgloss.Color {
	return lipgloss.Color(levelHex[clampLevel(level)])
}

// pendingColor is levelColor for a day that has not been painted yet.
func pendingColor(level uint8) lipgloss.Color {
	return lipgloss.Color(pendingHex[clampLevel(level)])
}

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	accentStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)
)

// statusStyle colors a run status in the history list.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case store.StatusPublished, store.StatusPainted:
		return successStyle
	case store.StatusPainting, store.StatusInterrupted:
		return warningStyle
	case store.StatusFailed:
		return errorStyle
	}
	return mutedStyle
}
