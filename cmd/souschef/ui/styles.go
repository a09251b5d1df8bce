// Package ui provides the visual styling for the souschef terminal UI,
// with light and dark color schemes.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light mode colors (default)
	lightBackground = lipgloss.Color("#faf7f2") // warm off-white
	lightForeground = lipgloss.Color("#3a2e26") // dark roast
	lightPrimary    = lipgloss.Color("#b5541c") // paprika
	lightAccent     = lipgloss.Color("#5f8d4e") // herb green
	lightSecondary  = lipgloss.Color("#ece5da")
	lightMuted      = lipgloss.Color("#9a8c7e")
	lightBorder     = lipgloss.Color("#ddd2c4")
	lightCard       = lipgloss.Color("#ffffff")

	// Dark mode colors
	darkBackground = lipgloss.Color("#1e1a16")
	darkForeground = lipgloss.Color("#ede6dc")
	darkPrimary    = lipgloss.Color("#e8803f") // paprika, brightened
	darkAccent     = lipgloss.Color("#8fbc74")
	darkSecondary  = lipgloss.Color("#2c261f")
	darkMuted      = lipgloss.Color("#6f6458")
	darkBorder     = lipgloss.Color("#3a332b")
	darkCard       = lipgloss.Color("#28221c")

	// Semantic colors, same in both modes
	destructive = lipgloss.Color("#e53935")
	success     = lipgloss.Color("#5f8d4e")
	warning     = lipgloss.Color("#FFC107")
)

// Theme holds the current color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Background: lightBackground,
		Foreground: lightForeground,
		Primary:    lightPrimary,
		Accent:     lightAccent,
		Secondary:  lightSecondary,
		Muted:      lightMuted,
		Border:     lightBorder,
		Card:       lightCard,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Background: darkBackground,
		Foreground: darkForeground,
		Primary:    darkPrimary,
		Accent:     darkAccent,
		Secondary:  darkSecondary,
		Muted:      darkMuted,
		Border:     darkBorder,
		Card:       darkCard,
		IsDark:     true,
	}
}

// DetectTheme picks a theme from terminal hints, defaulting to light.
func DetectTheme() Theme {
	// COLORFGBG is "foreground;background"; low background indices mean
	// a dark terminal.
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}

	if os.Getenv("SOUSCHEF_DARK_MODE") == "1" {
		return DarkTheme()
	}

	return LightTheme()
}

// Styles holds all the styled components.
type Styles struct {
	Theme Theme

	// Layout
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	// Text
	Title lipgloss.Style
	Body  lipgloss.Style
	Muted lipgloss.Style
	Bold  lipgloss.Style

	// Interactive
	Prompt    lipgloss.Style
	UserInput lipgloss.Style
	Reply     lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style

	// Components
	Spinner lipgloss.Style
	Divider lipgloss.Style
	Badge   lipgloss.Style
}

// NewStyles creates a Styles instance with the given theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		UserInput: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Reply: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),

		Success: lipgloss.NewStyle().
			Foreground(success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(warning).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),
	}
}

// DefaultStyles returns styles with the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// StylesFor returns styles for a named theme, falling back to detection.
func StylesFor(theme string) Styles {
	switch theme {
	case "dark":
		return NewStyles(DarkTheme())
	case "light":
		return NewStyles(LightTheme())
	default:
		return DefaultStyles()
	}
}

// RenderDivider returns a horizontal divider.
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		width = 80
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
