// Package storymap lists the story's challenges and lets the learner jump
// to any unlocked one.
package storymap

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/linuxstory/internal/router"
	"github.com/abhisek/linuxstory/internal/screen"
	"github.com/abhisek/linuxstory/internal/screens/play"
	"github.com/abhisek/linuxstory/internal/session"
	"github.com/abhisek/linuxstory/internal/story"
	"github.com/abhisek/linuxstory/internal/ui/components"
	"github.com/abhisek/linuxstory/internal/ui/layout"
	"github.com/abhisek/linuxstory/internal/ui/theme"
)

// StoryMapScreen displays every challenge with its completion state.
type StoryMapScreen struct {
	challenges   []story.Challenge
	menu         components.Menu
	scrollOffset int
}

var _ screen.Screen = (*StoryMapScreen)(nil)
var _ screen.KeyHintProvider = (*StoryMapScreen)(nil)

// New builds the map from the session's current state.
func New(sess *session.Session) *StoryMapScreen {
	g := sess.Graph()
	v := sess.View()
	cat := sess.Catalog()

	completed := make(map[string]bool, len(v.Completed))
	for _, id := range v.Completed {
		completed[id] = true
	}

	challenges := g.Challenges()
	items := make([]components.MenuItem, 0, len(challenges))
	for _, c := range challenges {
		state := components.ItemOpen
		switch {
		case c.ID == v.Cursor.Challenge && !v.Finished:
			state = components.ItemCurrent
		case completed[c.ID]:
			state = components.ItemDone
		case !g.Unlocked(c.ID, completed):
			state = components.ItemLocked
		}

		label := c.ID
		if c.TitleKey != "" {
			label = cat.Resolve(c.TitleKey)
		}
		label += theme.Dim.Render(fmt.Sprintf("  %d %s", len(c.Steps), plural(len(c.Steps), "step")))

		items = append(items, components.MenuItem{
			Label:  label,
			State:  state,
			Action: jumpTo(c.ID),
		})
	}

	return &StoryMapScreen{
		challenges: challenges,
		menu:       components.NewMenu(items),
	}
}

func jumpTo(id string) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg {
			return router.PopScreenMsg{Result: play.JumpMsg{Challenge: id, Index: 0}}
		}
	}
}

func (s *StoryMapScreen) Init() tea.Cmd {
	return nil
}

func (s *StoryMapScreen) Title() string {
	return "Story Map"
}

// KeyHints returns the key binding hints for the footer.
func (s *StoryMapScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Go"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *StoryMapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "q" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *StoryMapScreen) View(width, height int) string {
	if len(s.challenges) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  This story has no challenges.")
	}

	lines := strings.Split(strings.TrimRight(s.menu.View(), "\n"), "\n")
	s.adjustScroll(height - 2)
	end := min(s.scrollOffset+height-2, len(lines))
	visible := lines[min(s.scrollOffset, end):end]

	return "\n" + strings.Join(visible, "\n") + "\n" +
		theme.Dim.Render(s.detail())
}

// detail describes the highlighted challenge.
func (s *StoryMapScreen) detail() string {
	item := s.menu.Items[s.menu.Selected]
	switch item.State {
	case components.ItemLocked:
		return "    locked until " + s.challenges[s.menu.Selected].Prerequisite + " is complete"
	case components.ItemDone:
		return "    complete; replaying starts from its first step"
	case components.ItemCurrent:
		return "    in progress; going here restarts it"
	}
	return "    not started"
}

// adjustScroll keeps the selected row within a window of height rows.
func (s *StoryMapScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	if s.menu.Selected < s.scrollOffset {
		s.scrollOffset = s.menu.Selected
	}
	if s.menu.Selected >= s.scrollOffset+height {
		s.scrollOffset = s.menu.Selected - height + 1
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
