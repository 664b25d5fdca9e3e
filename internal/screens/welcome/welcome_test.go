package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/linuxstory/internal/router"
	"github.com/abhisek/linuxstory/internal/screen"
)

// stubScreen is a minimal screen implementation for testing.
type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "play" }
func (s *stubScreen) Title() string                          { return "Play" }

func newTestWelcome(info Info) (*WelcomeScreen, *int) {
	callCount := 0
	factory := func() screen.Screen {
		callCount++
		return &stubScreen{}
	}
	return New(info, factory), &callCount
}

func sendTicks(w *WelcomeScreen, n int) {
	for i := 0; i < n; i++ {
		w.Update(tickMsg(time.Now()))
	}
}

func plain(w *WelcomeScreen) string {
	return ansi.Strip(w.View(80, 24))
}

func TestTypingThenTitle(t *testing.T) {
	w, _ := newTestWelcome(Info{Title: "Terminal Quest"})

	if strings.Contains(plain(w), "Terminal Quest") {
		t.Error("title should not be visible before the command is typed")
	}

	sendTicks(w, 3)
	if !strings.Contains(plain(w), "$ cd ") {
		t.Errorf("expected partially typed command, got:\n%s", plain(w))
	}

	sendTicks(w, len(typedCommand))
	view := plain(w)
	if !strings.Contains(view, typedCommand) {
		t.Error("full command should be visible")
	}
	if !strings.Contains(view, "Terminal Quest") {
		t.Error("title should be visible once typing finishes")
	}
	if !strings.Contains(view, "A new story begins.") {
		t.Error("expected new story status")
	}
}

func TestResumeLine(t *testing.T) {
	w, _ := newTestWelcome(Info{Title: "Terminal Quest", Resume: "Into Town, step 2"})
	sendTicks(w, len(typedCommand))

	if !strings.Contains(plain(w), "Resuming: Into Town, step 2") {
		t.Errorf("expected resume line, got:\n%s", plain(w))
	}
}

func TestKeypressDuringTypingSkipsAhead(t *testing.T) {
	w, callCount := newTestWelcome(Info{Title: "Terminal Quest"})
	sendTicks(w, 2)

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	if cmd != nil {
		t.Error("first keypress should only finish typing")
	}
	if !w.done() {
		t.Error("typing should be complete after a keypress")
	}
	if *callCount != 0 {
		t.Errorf("factory should not be called yet, got %d", *callCount)
	}
}

func TestKeypressAfterTypingEmitsReplace(t *testing.T) {
	w, callCount := newTestWelcome(Info{})
	sendTicks(w, len(typedCommand))

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	if cmd == nil {
		t.Fatal("expected a command from keypress after typing")
	}

	msg := cmd()
	replaceMsg, ok := msg.(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", msg)
	}
	if replaceMsg.Screen == nil {
		t.Error("replace screen should not be nil")
	}
	if *callCount != 1 {
		t.Errorf("factory should be called once, got %d", *callCount)
	}
}

func TestNoAutoTransition(t *testing.T) {
	w, callCount := newTestWelcome(Info{})

	sendTicks(w, 100)
	if *callCount != 0 {
		t.Errorf("factory should not be called without keypress, got %d", *callCount)
	}
	if w.typed != len(typedCommand) {
		t.Errorf("typed should stop at %d, got %d", len(typedCommand), w.typed)
	}
}

func TestFactoryCalledOnce(t *testing.T) {
	w, callCount := newTestWelcome(Info{})

	sendTicks(w, len(typedCommand))
	w.Update(tea.KeyPressMsg{Code: 'a'})

	_, cmd := w.Update(tea.KeyPressMsg{Code: 'b'})
	if cmd != nil {
		t.Error("second keypress should not produce a command")
	}
	if *callCount != 1 {
		t.Errorf("factory should be called exactly once, got %d", *callCount)
	}
}

func TestTitleEmpty(t *testing.T) {
	w, _ := newTestWelcome(Info{})
	if w.Title() != "" {
		t.Errorf("expected empty title, got %q", w.Title())
	}
}
