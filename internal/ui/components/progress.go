package components

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingoquiz/internal/ui/theme"
)

// meter draws a bar of width cells with frac of them filled.
func meter(width int, frac float64, fill color.Color) string {
	width = max(width, 4)
	n := min(max(int(float64(width)*frac), 0), width)
	return lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", n)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", width-n))
}

// ProgressBar is a labelled score bar, e.g. one per skill on the summary.
type ProgressBar struct {
	Label       string
	Percent     float64 // 0..1
	ShowPercent bool
	Width       int
}

func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, ShowPercent: showPercent, Width: width}
}

func (p ProgressBar) View() string {
	var head, tail string
	if p.Label != "" {
		head = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	if p.ShowPercent {
		tail = theme.Hint.UnsetItalic().Render(fmt.Sprintf("  %3d%%", int(p.Percent*100)))
	}
	return head + meter(p.Width-lipgloss.Width(head)-lipgloss.Width(tail), p.Percent, theme.Secondary) + tail
}

// Countdown renders the time left in a session as a draining bar. It
// turns to the error color in the final fifth of the window.
func Countdown(remaining, total time.Duration, width int) string {
	remaining = max(remaining, 0)
	frac := 0.0
	if total > 0 {
		frac = float64(remaining) / float64(total)
	}

	label := fmt.Sprintf("%02d:%02d", int(remaining.Minutes()), int(remaining.Seconds())%60)
	fill := theme.Secondary
	if frac < 0.2 {
		fill = theme.Error
	}
	return meter(width-lipgloss.Width(label)-2, frac, fill) +
		"  " + lipgloss.NewStyle().Foreground(fill).Bold(true).Render(label)
}
