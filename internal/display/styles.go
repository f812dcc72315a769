package display

import "github.com/charmbracelet/lipgloss"

// Kitchen palette: lacquer red, jade and rice-paper greys.
var (
	// BannerStyle colours the startup banner.
	BannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)

	barStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#1c1917")).Foreground(lipgloss.Color("#a8a29e"))
	stateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d6d3d1"))
	sepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#57534e"))

	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#fca5a5"))
	echoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a8a29e"))

	voiceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#fde68a"))
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6ee7b7")).Bold(true)
	bodyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e7e5e4"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#78716c"))
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
)

// indented renders text two columns in, the margin every output line
// uses.
func indented(s lipgloss.Style, text string) string {
	return s.Render("  " + text)
}
