package theme

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/linuxstory/internal/locale"
)

// RenderMarkup styles story text on top of base.
func RenderMarkup(s string, base lipgloss.Style) string {
	var b strings.Builder
	for _, sp := range locale.Parse(s) {
		style := base
		switch {
		case sp.Color != 0:
			style = style.Foreground(MarkupColor(sp.Color)).Bold(sp.Bold)
		case sp.Highlight:
			style = Command
		}
		b.WriteString(style.Render(sp.Text))
	}
	return b.String()
}
