package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingoquiz/internal/ui/theme"
)

const bannerArt = `
 ██╗     ██╗███╗   ██╗ ██████╗  ██████╗  ██████╗ ██╗   ██╗██╗███████╗
 ██║     ██║████╗  ██║██╔════╝ ██╔═══██╗██╔═══██╗██║   ██║██║╚══███╔╝
 ██║     ██║██╔██╗ ██║██║  ███╗██║   ██║██║   ██║██║   ██║██║  ███╔╝
 ██║     ██║██║╚██╗██║██║   ██║██║   ██║██║▄▄ ██║██║   ██║██║ ███╔╝
 ███████╗██║██║ ╚████║╚██████╔╝╚██████╔╝╚██████╔╝╚██████╔╝██║███████╗
 ╚══════╝╚═╝╚═╝  ╚═══╝ ╚═════╝  ╚═════╝  ╚══▀▀═╝  ╚═════╝ ╚═╝╚══════╝`

const bannerCompact = "L I N G O Q U I Z"

// RenderBanner returns the banner in the primary color, or a compact
// fallback below 72 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 72 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
