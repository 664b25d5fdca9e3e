package play

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/linuxstory/internal/session"
	"github.com/abhisek/linuxstory/internal/ui/components"
	"github.com/abhisek/linuxstory/internal/ui/layout"
	"github.com/abhisek/linuxstory/internal/ui/theme"
)

func (p *PlayScreen) View(width, height int) string {
	if p.fatal != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render("\n\nCould not start the story:\n" + p.fatal)
	}

	inner := max(width-4, 10)
	v := p.sess.View()

	bar := components.NewProgressBar("", v.Ordinal, v.Total, inner).View()
	if v.Finished {
		bar = components.NewProgressBar("", v.Total, v.Total, inner).View()
	}

	var bottom []string
	if p.opts.Debug {
		bottom = append(bottom, p.renderDebug(inner))
	}
	p.input.SetWidth(inner - lipgloss.Width(p.input.Model.Prompt) - 1)
	prompt := p.input.View()
	if p.busy {
		prompt = theme.Dim.Render("running...")
	}
	bottom = append(bottom, prompt)

	footer := strings.Join(bottom, "\n")
	avail := height - lipgloss.Height(footer) - 2
	body := p.renderTranscript(inner, avail)

	return lipgloss.NewStyle().Padding(0, 2).Render(
		bar + "\n" + body + "\n" + footer,
	)
}

// renderTranscript renders the tail of the transcript that fits in
// height lines, shifted up by the scroll offset.
func (p *PlayScreen) renderTranscript(width, height int) string {
	if height <= 0 {
		return ""
	}

	var lines []string
	for _, e := range p.transcript {
		rendered := renderEntry(e, width)
		lines = append(lines, strings.Split(rendered, "\n")...)
	}

	end := len(lines) - p.scroll
	if end < height {
		end = min(height, len(lines))
		p.scroll = len(lines) - end
	}
	start := max(end-height, 0)
	visible := lines[start:end]

	pad := height - len(visible)
	return strings.Repeat("\n", pad) + strings.Join(visible, "\n")
}

func renderEntry(e entry, width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	switch e.kind {
	case entryCommand:
		return theme.ShellPrompt.Render(e.prompt+" $ ") + theme.Body.Render(e.text)
	case entryOutput:
		return wrap.Render(theme.Output.Render(strings.TrimRight(e.text, "\n")))
	case entryError:
		return wrap.Render(theme.Warning.Render(e.text))
	}

	switch e.message {
	case session.MessageTitle:
		return "\n" + theme.Title.Render("── "+e.text+" ──")
	case session.MessageHint:
		return wrap.Render(theme.Hint.Render("Hint: ") + theme.RenderMarkup(e.text, theme.Hint))
	case session.MessageRetry:
		return wrap.Render(theme.Dim.Render(e.text))
	case session.MessageNotice, session.MessageWarning:
		return wrap.Render(theme.Warning.Render(e.text))
	case session.MessageDone:
		return "\n" + wrap.Render(theme.Done.Render(e.text))
	default:
		return wrap.Render(theme.RenderMarkup(e.text, theme.Body))
	}
}

func (p *PlayScreen) renderDebug(width int) string {
	v := p.sess.View()
	left := fmt.Sprintf("phase %s  last %s  cursor %s", v.Phase, v.Last, v.Cursor)
	right := fmt.Sprintf("exit %d  attempts %d  hints %d/%d  done %s",
		v.Observed.ExitStatus, v.Attempts, v.HintsShown, len(v.Step.HintKeys), strings.Join(v.Completed, ","))
	return theme.Debug.Width(width).Render(layout.SpreadLine(left, right, width-4))
}
