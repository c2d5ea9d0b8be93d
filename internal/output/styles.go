package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorCyan    = lipgloss.Color("14")
	ColorGreen   = lipgloss.Color("82")
	ColorYellow  = lipgloss.Color("220")
	ColorRed     = lipgloss.Color("196")
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles.
var (
	// StyleNoun styles card titles, pack names and paths.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleHeading styles section headings.
	StyleHeading = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome.
	StyleDim = lipgloss.NewStyle().Faint(true)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleMissing = lipgloss.NewStyle().Foreground(ColorRed)
)

// CompletionStyle picks a color for a completion percentage.
func CompletionStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= 100:
		return StyleSuccess
	case pct >= 50:
		return StyleWarning
	default:
		return StyleMissing
	}
}

// FormatPercentage renders a styled completion percentage.
func FormatPercentage(pct float64) string {
	return CompletionStyle(pct).Render(fmt.Sprintf("%.1f%%", pct))
}

// FormatSigned renders a difference with an explicit sign.
func FormatSigned(n int) string {
	switch {
	case n > 0:
		return StyleSuccess.Render(fmt.Sprintf("+%d", n))
	case n < 0:
		return StyleMissing.Render(fmt.Sprintf("%d", n))
	default:
		return "0"
	}
}

// ProgressBar renders a text progress bar of the given width.
func ProgressBar(owned, total, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if total > 0 {
		filled = owned * width / total
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := make([]rune, width)
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	return string(bar)
}
