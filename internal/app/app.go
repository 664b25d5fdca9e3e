package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/linuxstory/internal/router"
	"github.com/abhisek/linuxstory/internal/screen"
	"github.com/abhisek/linuxstory/internal/screens/history"
	"github.com/abhisek/linuxstory/internal/screens/play"
	"github.com/abhisek/linuxstory/internal/screens/storymap"
	"github.com/abhisek/linuxstory/internal/screens/welcome"
	"github.com/abhisek/linuxstory/internal/session"
	"github.com/abhisek/linuxstory/internal/ui/layout"
)

// Options configures the program.
type Options struct {
	// Events feeds the history screen. Nil hides it.
	Events history.EventSource
	Debug  bool
	// Intro shows the title card before play.
	Intro bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	sess   *session.Session
	width  int
	height int
}

// newAppModel creates a new AppModel with the play screen at the bottom
// of the stack.
func newAppModel(sess *session.Session, opts Options) AppModel {
	playOpts := play.Options{
		Debug: opts.Debug,
		Map:   func() screen.Screen { return storymap.New(sess) },
	}
	if opts.Events != nil {
		playOpts.History = func() screen.Screen { return history.New(opts.Events) }
	}
	newPlay := func() screen.Screen { return play.New(sess, playOpts) }

	root := newPlay()
	if opts.Intro {
		root = welcome.New(introInfo(sess), newPlay)
	}
	return AppModel{
		router: router.New(root),
		sess:   sess,
	}
}

func introInfo(sess *session.Session) welcome.Info {
	v := sess.View()
	info := welcome.Info{Title: sess.Catalog().Resolve(sess.Graph().Title())}
	switch {
	case v.Finished:
		info.Resume = "the story is complete"
	case v.Ordinal > 0:
		info.Resume = fmt.Sprintf("%s, step %d", sess.Title(), v.Cursor.Index+1)
	}
	return info
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render lays out header, active screen and footer for the current size.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	sv := m.sess.View()
	step := sv.Ordinal + 1
	if sv.Finished {
		step = sv.Total
	}
	header := layout.RenderHeader(title, step, sv.Total, m.width)

	footerHints := []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until the learner quits or
// ctx is cancelled.
func Run(ctx context.Context, sess *session.Session, opts Options) error {
	p := tea.NewProgram(newAppModel(sess, opts), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
