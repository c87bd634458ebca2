package treeview

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorAccent    = lipgloss.Color("#F59E0B") // Amber
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#6B7280") // Gray

	ColorBgPanel    = lipgloss.Color("#1E293B") // Slate 800
	ColorBgSelected = lipgloss.Color("#3B0764") // Purple 950

	ColorText    = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextDim = lipgloss.Color("#64748B") // Slate 500
)

// Header styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	SubTitleStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim).
			Italic(true)

	TitlePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)
)

// Tree row styles
var (
	KindStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	FieldStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	TextStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	SpanStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	MarkerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	SelectedStyle = lipgloss.NewStyle().
			Background(ColorBgSelected).
			Foreground(ColorText)

	TreePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgPanel)
)

// Help bar styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)
)

// Markers in front of a node row
const (
	MarkerOpen   = "▾ "
	MarkerClosed = "▸ "
	MarkerLeaf   = "  "
)

// RenderKeyHint renders a key hint such as "q quit"
func RenderKeyHint(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}
