package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/linuxstory/internal/engine"
	"github.com/abhisek/linuxstory/internal/router"
	"github.com/abhisek/linuxstory/internal/screen"
	"github.com/abhisek/linuxstory/internal/store"
	"github.com/abhisek/linuxstory/internal/ui/layout"
	"github.com/abhisek/linuxstory/internal/ui/theme"
)

// pageSize is how many events are loaded at once.
const pageSize = 200

// EventSource is the part of the event log the screen reads.
type EventSource interface {
	SessionID() string
	Query(ctx context.Context, opts store.QueryOpts) ([]store.Event, error)
}

type historyLoadedMsg struct {
	Events []store.Event
	Err    error
}

// HistoryScreen displays the progression log, newest last.
type HistoryScreen struct {
	source   EventSource
	events   []store.Event
	selected int
	offset   int
	allRuns  bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen showing the current run's events.
func New(source EventSource) *HistoryScreen {
	return &HistoryScreen{source: source}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	opts := store.QueryOpts{Limit: pageSize}
	if !s.allRuns {
		opts.SessionID = s.source.SessionID()
	}
	return func() tea.Msg {
		events, err := s.source.Query(context.Background(), opts)
		return historyLoadedMsg{Events: events, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	scope := "All runs"
	if s.allRuns {
		scope = "This run"
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "a", Description: scope},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.events = msg.Events
		s.selected = max(len(s.events)-1, 0)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
			return s, nil
		case "a":
			s.allRuns = !s.allRuns
			s.loaded = false
			return s, s.load()
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.events) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing recorded yet. Try a command!")
	}

	rows := max(height-1, 1)
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+rows {
		s.offset = s.selected - rows + 1
	}
	end := min(s.offset+rows, len(s.events))

	var b strings.Builder
	b.WriteString("\n")
	for i := s.offset; i < end; i++ {
		line := s.formatEvent(s.events[i])
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(kindColor(s.events[i].Kind))
		if i == s.selected {
			prefix = "> "
			style = style.Bold(true)
		}
		b.WriteString(style.Render(prefix + line))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) formatEvent(ev store.Event) string {
	line := fmt.Sprintf("%s  %-18s %s/%d",
		ev.Timestamp.Local().Format("Jan 02 15:04:05"), ev.Kind, ev.Challenge, ev.StepIndex)
	if ev.HintKey != "" {
		line += "  " + ev.HintKey
	}
	if ev.Detail != "" {
		line += "  " + ev.Detail
	}
	if s.allRuns && len(ev.SessionID) >= 8 {
		line += "  [" + ev.SessionID[:8] + "]"
	}
	return line
}

func kindColor(kind string) color.Color {
	switch kind {
	case engine.ChallengeAdvance.String(), engine.ChallengeComplete.String(), engine.StoryAllDone.String():
		return theme.Success
	case engine.HintOffered.String():
		return theme.Accent
	case engine.Warning.String():
		return theme.Error
	default:
		return theme.TextDim
	}
}
