package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerArt string

const tagline = "guided Chinese home cooking"

// RenderBanner centres the banner art and tagline in the terminal.
func RenderBanner() string {
	return renderBanner(termWidth())
}

func renderBanner(width int) string {
	art := strings.TrimRight(bannerArt, "\n")
	if art == "" {
		return ""
	}
	block := lipgloss.JoinVertical(lipgloss.Center,
		BannerStyle.Render(art),
		dimStyle.Render(tagline),
	)
	if lipgloss.Width(block) >= width {
		return block + "\n"
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block) + "\n"
}

// termWidth is the stdout column count, 80 when it is not a terminal.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
