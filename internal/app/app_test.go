package app

import (
	"context"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/linuxstory/internal/condition"
	"github.com/abhisek/linuxstory/internal/engine"
	"github.com/abhisek/linuxstory/internal/locale"
	"github.com/abhisek/linuxstory/internal/progress"
	"github.com/abhisek/linuxstory/internal/router"
	"github.com/abhisek/linuxstory/internal/screens/welcome"
	"github.com/abhisek/linuxstory/internal/session"
	"github.com/abhisek/linuxstory/internal/shell"
	"github.com/abhisek/linuxstory/internal/story"
	"github.com/abhisek/linuxstory/internal/world"
)

func testModel(t *testing.T) AppModel {
	t.Helper()
	g, err := story.New("test", []story.Challenge{
		{ID: "intro", TitleKey: "intro.title", Steps: []story.Step{
			{PromptKey: "p", Condition: condition.CommandMatch{Pattern: "ls"}},
			{PromptKey: "p", Condition: condition.CommandMatch{Pattern: "ls"}},
		}},
	})
	require.NoError(t, err)

	sb, err := world.New(t.TempDir(), nil)
	require.NoError(t, err)
	tracker := progress.NewTracker(progress.NewFileStore(filepath.Join(t.TempDir(), "p.json")), progress.DefaultConfig(), nil)
	eng, err := engine.New(context.Background(), g, tracker, engine.Options{})
	require.NoError(t, err)

	sess := session.New(session.Deps{
		Engine:  eng,
		Shell:   shell.New(sb, nil, shell.DefaultConfig(), nil),
		Sandbox: sb,
		Catalog: locale.New(map[string]string{"intro.title": "Waking Up"}),
	})
	return newAppModel(sess, Options{})
}

func update(m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(AppModel), cmd
}

func TestViewBeforeSize(t *testing.T) {
	m := testModel(t)
	assert.Empty(t, m.render())
}

func TestHeaderShowsStepCounter(t *testing.T) {
	m := testModel(t)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	out := ansi.Strip(m.render())
	assert.Contains(t, out, "Linux Story")
	assert.Contains(t, out, "Waking Up")
	assert.Contains(t, out, "step 1/2")
	assert.Contains(t, out, "Story map")
	assert.NotContains(t, out, "History")
}

func TestTooSmall(t *testing.T) {
	m := testModel(t)
	m, _ = update(m, tea.WindowSizeMsg{Width: 20, Height: 5})
	assert.NotContains(t, ansi.Strip(m.render()), "Linux Story")
}

func TestEscOnlyPopsAboveRoot(t *testing.T) {
	m := testModel(t)

	_, cmd := update(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)

	m, _ = update(m, router.PushScreenMsg{Screen: m.router.Active()})
	require.Equal(t, 2, m.router.Depth())

	_, cmd = update(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}

func TestCtrlCQuits(t *testing.T) {
	m := testModel(t)
	_, cmd := update(m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestIntroComesFirst(t *testing.T) {
	m := testModel(t)
	m = newAppModel(m.sess, Options{Intro: true})

	_, ok := m.router.Active().(*welcome.WelcomeScreen)
	assert.True(t, ok, "expected the title card, got %T", m.router.Active())
}

func TestIntroInfo(t *testing.T) {
	m := testModel(t)
	info := introInfo(m.sess)
	assert.Equal(t, "test", info.Title)
	assert.Empty(t, info.Resume)
}
