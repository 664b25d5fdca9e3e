package play

import (
	"context"
	"path/filepath"
	"strings"
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
	"github.com/abhisek/linuxstory/internal/screen"
	"github.com/abhisek/linuxstory/internal/session"
	"github.com/abhisek/linuxstory/internal/shell"
	"github.com/abhisek/linuxstory/internal/story"
	"github.com/abhisek/linuxstory/internal/world"
)

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testSession(t *testing.T) *session.Session {
	t.Helper()
	g, err := story.New("test", []story.Challenge{
		{ID: "intro", TitleKey: "intro.title", Steps: []story.Step{
			{PromptKey: "intro.0", Condition: condition.CommandMatch{Pattern: "ls"}, HintKeys: []string{"intro.hint"}},
			{PromptKey: "intro.1", Condition: condition.ExitStatus{Expected: 0}},
		}},
	})
	require.NoError(t, err)

	sb, err := world.New(t.TempDir(), nil)
	require.NoError(t, err)
	tracker := progress.NewTracker(progress.NewFileStore(filepath.Join(t.TempDir(), "p.json")), progress.DefaultConfig(), nil)
	eng, err := engine.New(context.Background(), g, tracker, engine.Options{})
	require.NoError(t, err)

	return session.New(session.Deps{
		Engine:  eng,
		Shell:   shell.New(sb, nil, shell.DefaultConfig(), nil),
		Sandbox: sb,
		Catalog: locale.New(map[string]string{
			"intro.title": "Waking Up",
			"intro.0":     "Look around with {{ls}}.",
			"intro.1":     "Now anything works.",
			"intro.hint":  "Type ls.",
		}),
	})
}

func started(t *testing.T, opts Options) *PlayScreen {
	t.Helper()
	p := New(testSession(t), opts)
	p.Update(p.start()())
	require.False(t, p.busy)
	return p
}

// run submits line and feeds the result back like the program loop would.
func run(t *testing.T, p *PlayScreen, line string) {
	t.Helper()
	p.input.Model.SetValue(line)
	_, cmd := p.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	require.True(t, p.busy)
	p.Update(cmd())
}

func plainView(p *PlayScreen) string {
	return ansi.Strip(p.View(100, 40))
}

func TestStartShowsTitleAndPrompt(t *testing.T) {
	p := started(t, Options{})
	assert.Equal(t, "Waking Up", p.Title())

	out := plainView(p)
	assert.Contains(t, out, "Waking Up")
	assert.Contains(t, out, "Look around with ls.")
}

func TestSubmitShowsHintThenAdvances(t *testing.T) {
	p := started(t, Options{})

	run(t, p, "pwd")
	assert.Contains(t, plainView(p), "Hint: Type ls.")

	run(t, p, "ls")
	assert.Contains(t, plainView(p), "Now anything works.")
	assert.Equal(t, 1, p.sess.View().Cursor.Index)
}

func TestEmptyLineIsEchoedNotRun(t *testing.T) {
	p := started(t, Options{})

	_, cmd := p.Update(specialKey(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.False(t, p.busy)
	assert.Equal(t, 0, p.sess.View().Attempts)
}

func TestEnterIgnoredWhileBusy(t *testing.T) {
	p := started(t, Options{})
	p.busy = true
	p.input.Model.SetValue("ls")

	_, cmd := p.Update(specialKey(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, "ls", p.input.Value())
}

func TestJumpMsg(t *testing.T) {
	p := started(t, Options{})

	_, cmd := p.Update(JumpMsg{Challenge: "intro", Index: 1})
	p.Update(cmd())
	assert.Equal(t, 1, p.sess.View().Cursor.Index)

	_, cmd = p.Update(JumpMsg{Challenge: "nowhere", Index: 0})
	p.Update(cmd())
	assert.Contains(t, plainView(p), "Can't go there")
}

func TestDebugWidgetOnlyWhenEnabled(t *testing.T) {
	p := started(t, Options{})
	assert.NotContains(t, plainView(p), "phase awaiting-input")

	p = started(t, Options{Debug: true})
	assert.Contains(t, plainView(p), "phase awaiting-input")
	assert.Contains(t, plainView(p), "cursor intro/0")
}

type stubScreen struct{ screen.Screen }

func TestF2PushesMap(t *testing.T) {
	p := started(t, Options{Map: func() screen.Screen { return stubScreen{} }})
	assert.True(t, strings.Contains(ansi.Strip(keyHintsText(p)), "Story map"))

	_, cmd := p.Update(specialKey(tea.KeyF2))
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PushScreenMsg)
	assert.True(t, ok)

	// No history screen configured.
	_, cmd = p.Update(specialKey(tea.KeyF3))
	assert.Nil(t, cmd)
}

func keyHintsText(p *PlayScreen) string {
	var b strings.Builder
	for _, h := range p.KeyHints() {
		b.WriteString(h.Key + " " + h.Description + " ")
	}
	return b.String()
}
