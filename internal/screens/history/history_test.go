package history

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/linuxstory/internal/store"
)

type fakeSource struct {
	events []store.Event
	err    error
	opts   []store.QueryOpts
}

func (f *fakeSource) SessionID() string { return "0123456789ab" }

func (f *fakeSource) Query(_ context.Context, opts store.QueryOpts) ([]store.Event, error) {
	f.opts = append(f.opts, opts)
	return f.events, f.err
}

func loaded(t *testing.T, src *fakeSource) *HistoryScreen {
	t.Helper()
	s := New(src)
	cmd := s.Init()
	require.NotNil(t, cmd)
	s.Update(cmd())
	return s
}

func TestLoadsCurrentRun(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	src := &fakeSource{events: []store.Event{
		{Sequence: 1, SessionID: "0123456789ab", Timestamp: ts, EventData: store.EventData{Kind: "retry", Challenge: "intro"}},
		{Sequence: 2, SessionID: "0123456789ab", Timestamp: ts, EventData: store.EventData{Kind: "hint", Challenge: "intro", HintKey: "intro.hint"}},
	}}
	s := loaded(t, src)

	require.Len(t, src.opts, 1)
	assert.Equal(t, "0123456789ab", src.opts[0].SessionID)
	assert.Equal(t, pageSize, src.opts[0].Limit)
	assert.Equal(t, 1, s.selected)

	out := ansi.Strip(s.View(100, 20))
	assert.Contains(t, out, "intro/0")
	assert.Contains(t, out, "intro.hint")
	assert.Contains(t, out, "> ")
}

func TestToggleAllRuns(t *testing.T) {
	src := &fakeSource{}
	s := loaded(t, src)
	assert.Contains(t, ansi.Strip(s.View(80, 20)), "Nothing recorded yet")

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	require.NotNil(t, cmd)
	s.Update(cmd())

	require.Len(t, src.opts, 2)
	assert.Empty(t, src.opts[1].SessionID)
	assert.Equal(t, "This run", s.KeyHints()[1].Description)
}

func TestLoadError(t *testing.T) {
	s := loaded(t, &fakeSource{err: errors.New("disk gone")})
	assert.Contains(t, ansi.Strip(s.View(80, 20)), "Error: disk gone")
}

func TestNavigation(t *testing.T) {
	src := &fakeSource{events: make([]store.Event, 3)}
	s := loaded(t, src)
	require.Equal(t, 2, s.selected)

	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 0, s.selected)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, s.selected)
}
