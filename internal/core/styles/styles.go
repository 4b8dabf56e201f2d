// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

// themes holds the built-in named palettes.
var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    lipgloss.Color("#7aa2f7"),
		Secondary:  lipgloss.Color("#7dcfff"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#3b4261"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
	},
	"gruvbox": {
		Primary:    lipgloss.Color("#83a598"),
		Secondary:  lipgloss.Color("#8ec07c"),
		Foreground: lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#665c54"),
		Background: lipgloss.Color("#282828"),
		Surface:    lipgloss.Color("#3c3836"),
		Success:    lipgloss.Color("#b8bb26"),
		Warning:    lipgloss.Color("#fabd2f"),
		Error:      lipgloss.Color("#fb4934"),
	},
	"newsprint": {
		Primary:    lipgloss.Color("#1f1f1f"),
		Secondary:  lipgloss.Color("#326891"),
		Foreground: lipgloss.Color("#121212"),
		Muted:      lipgloss.Color("#727272"),
		Background: lipgloss.Color("#f7f7f5"),
		Surface:    lipgloss.Color("#e2e2e2"),
		Success:    lipgloss.Color("#2e7d32"),
		Warning:    lipgloss.Color("#b26a00"),
		Error:      lipgloss.Color("#c62828"),
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style

	// Header.
	MastheadStyle lipgloss.Style
	DateStyle     lipgloss.Style
	AccountStyle  lipgloss.Style
	LinkStyle     lipgloss.Style

	// Story list.
	HeadlineStyle         lipgloss.Style
	HeadlineSelectedStyle lipgloss.Style
	AbstractStyle         lipgloss.Style
	CursorStyle           lipgloss.Style

	// Comment panel.
	PanelStyle           lipgloss.Style
	CommentAuthorStyle   lipgloss.Style
	CommentTimeStyle     lipgloss.Style
	CommentTextStyle     lipgloss.Style
	CommentSelectedStyle lipgloss.Style
	DeleteHintStyle      lipgloss.Style

	// Status.
	MutedStyle   lipgloss.Style
	ErrorStyle   lipgloss.Style
	SpinnerStyle lipgloss.Style
	HelpStyle    lipgloss.Style

	// Toasts.
	ToastInfoStyle    lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style

	// Form.
	FormTitleStyle lipgloss.Style
)

// SetTheme switches the active palette by name and rebuilds all styles.
// Unknown names keep the current theme and return false.
func SetTheme(name string) bool {
	p, ok := themes[name]
	if !ok {
		return false
	}
	apply(p)
	return true
}

func apply(p Palette) {
	CurrentPalette = p

	CommandHeaderStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	DividerStyle = lipgloss.NewStyle().Foreground(p.Surface)

	MastheadStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)
	DateStyle = lipgloss.NewStyle().Foreground(p.Muted)
	AccountStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	LinkStyle = lipgloss.NewStyle().Foreground(p.Secondary).Underline(true)

	HeadlineStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)
	HeadlineSelectedStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	AbstractStyle = lipgloss.NewStyle().Foreground(p.Muted)
	CursorStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(p.Surface).
		PaddingLeft(1).
		MarginLeft(2)
	CommentAuthorStyle = lipgloss.NewStyle().Foreground(p.Secondary).Bold(true)
	CommentTimeStyle = lipgloss.NewStyle().Foreground(p.Muted)
	CommentTextStyle = lipgloss.NewStyle().Foreground(p.Foreground)
	CommentSelectedStyle = lipgloss.NewStyle().Foreground(p.Primary)
	DeleteHintStyle = lipgloss.NewStyle().Foreground(p.Error)

	MutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error)
	SpinnerStyle = lipgloss.NewStyle().Foreground(p.Primary)
	HelpStyle = lipgloss.NewStyle().Foreground(p.Muted)

	toast := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	ToastInfoStyle = toast.BorderForeground(p.Primary).Foreground(p.Foreground)
	ToastWarningStyle = toast.BorderForeground(p.Warning).Foreground(p.Warning)
	ToastErrorStyle = toast.BorderForeground(p.Error).Foreground(p.Error)

	FormTitleStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	apply(themes[DefaultTheme])
}
