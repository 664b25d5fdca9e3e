package theme

import (
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

func TestRenderMarkupKeepsText(t *testing.T) {
	got := ansi.Strip(RenderMarkup("{{wb:Edith:}} use {{mv ../dog .}} now", lipgloss.NewStyle()))
	if got != "Edith: use mv ../dog . now" {
		t.Errorf("rendered text = %q", got)
	}
}
