// Package welcome is the title card shown at launch. It types a command
// into a small terminal drawing, then shows the story title and where
// play will resume.
package welcome

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/linuxstory/internal/router"
	"github.com/abhisek/linuxstory/internal/screen"
	"github.com/abhisek/linuxstory/internal/ui/theme"
)

const (
	tickInterval = 60 * time.Millisecond
	typedCommand = "cd ~/story && ls"
	windowWidth  = 30
)

const bannerCompact = "L I N U X   S T O R Y"

type tickMsg time.Time

// Info is what the card says about the story.
type Info struct {
	Title string
	// Resume describes the saved position, or is empty for a new story.
	Resume string
}

// WelcomeScreen shows the title card before handing over to the play screen.
type WelcomeScreen struct {
	info         Info
	next         func() screen.Screen
	typed        int
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that replaces itself with the screen built
// by next.
func New(info Info, next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{info: info, next: next}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) done() bool {
	return w.typed >= len(typedCommand)
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		w.tickCount++
		if !w.done() {
			w.typed++
		}
		return w, tick()

	case tea.KeyPressMsg:
		// The first key finishes the typing; the next one starts the story.
		if !w.done() {
			w.typed = len(typedCommand)
			return w, nil
		}
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	next := w.next()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	sections := []string{w.renderWindow()}

	if w.done() {
		sections = append(sections,
			"",
			lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(bannerCompact),
			"",
			theme.Title.Render(w.info.Title),
		)

		status := "A new story begins."
		if w.info.Resume != "" {
			status = "Resuming: " + w.info.Resume
		}
		sections = append(sections,
			theme.Body.Render(status),
			"",
			theme.Dim.Italic(true).Render("press any key to continue"),
		)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, sections...))
}

// renderWindow draws a terminal with the command typed so far.
func (w *WelcomeScreen) renderWindow() string {
	cursor := " "
	if w.tickCount%8 < 4 {
		cursor = "█"
	}
	if w.done() {
		cursor = ""
	}

	dots := lipgloss.NewStyle().Foreground(theme.Error).Render("●") + " " +
		lipgloss.NewStyle().Foreground(theme.Accent).Render("●") + " " +
		lipgloss.NewStyle().Foreground(theme.Success).Render("●")
	line := theme.ShellPrompt.Render("$ ") + theme.Command.Render(typedCommand[:w.typed]) + cursor

	body := dots + "\n\n" + line
	if w.done() {
		body += "\n" + theme.Output.Render(fmt.Sprintf("%-12s%s", "home", "town"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1).
		Width(windowWidth).
		Render(strings.TrimRight(body, "\n"))
}
