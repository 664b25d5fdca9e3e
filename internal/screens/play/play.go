// Package play is the main tutorial screen: story text above a shell
// prompt, with the learner's commands and their output in between.
package play

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/linuxstory/internal/router"
	"github.com/abhisek/linuxstory/internal/screen"
	"github.com/abhisek/linuxstory/internal/session"
	"github.com/abhisek/linuxstory/internal/story"
	"github.com/abhisek/linuxstory/internal/ui/components"
	"github.com/abhisek/linuxstory/internal/ui/layout"
)

// maxTranscript bounds the number of retained transcript entries.
const maxTranscript = 500

// Options configures the play screen.
type Options struct {
	// Debug shows the engine state widget. It affects rendering only.
	Debug bool
	// Map and History build the screens opened from play. Either may be nil.
	Map     func() screen.Screen
	History func() screen.Screen
}

type entryKind int

const (
	entryCommand entryKind = iota
	entryOutput
	entryMessage
	entryError
)

type entry struct {
	kind    entryKind
	prompt  string
	text    string
	message session.MessageKind
}

// PlayScreen implements screen.Screen for the tutorial.
type PlayScreen struct {
	sess       *session.Session
	opts       Options
	input      components.CommandInput
	transcript []entry
	scroll     int
	busy       bool
	fatal      string
}

var _ screen.Screen = (*PlayScreen)(nil)
var _ screen.KeyHintProvider = (*PlayScreen)(nil)

// New creates a play screen driving sess.
func New(sess *session.Session, opts Options) *PlayScreen {
	p := &PlayScreen{
		sess:  sess,
		opts:  opts,
		input: components.NewCommandInput("type a command"),
		busy:  true,
	}
	p.input.SetPrompt(sess.Prompt() + " $ ")
	return p
}

func (p *PlayScreen) Init() tea.Cmd {
	return tea.Batch(p.start(), p.input.Init())
}

func (p *PlayScreen) Title() string {
	return p.sess.Title()
}

func (p *PlayScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Run"}}
	if p.opts.Map != nil {
		hints = append(hints, layout.KeyHint{Key: "F2", Description: "Story map"})
	}
	if p.opts.History != nil {
		hints = append(hints, layout.KeyHint{Key: "F3", Description: "History"})
	}
	return append(hints,
		layout.KeyHint{Key: "PgUp/PgDn", Description: "Scroll"},
		layout.KeyHint{Key: "Ctrl+C", Description: "Quit"},
	)
}

func (p *PlayScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		p.busy = false
		if msg.Err != nil {
			p.fatal = msg.Err.Error()
			return p, nil
		}
		p.show(msg.Outcome)
		return p, nil

	case commandDoneMsg:
		p.busy = false
		if msg.Err != nil {
			p.appendEntry(entry{kind: entryError, text: msg.Err.Error()})
		}
		p.show(msg.Outcome)
		return p, nil

	case JumpMsg:
		p.busy = true
		return p, p.jump(msg)

	case jumpedMsg:
		p.busy = false
		if msg.Err != nil {
			p.appendEntry(entry{kind: entryError, text: jumpError(msg.Err)})
			return p, nil
		}
		p.show(msg.Outcome)
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *PlayScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if p.busy || p.fatal != "" {
			return p, nil
		}
		line := p.input.Take()
		p.appendEntry(entry{kind: entryCommand, prompt: p.sess.Prompt(), text: line})
		if line == "" {
			return p, nil
		}
		p.busy = true
		return p, p.submit(line)

	case "f2":
		if p.opts.Map != nil && !p.busy {
			return p, push(p.opts.Map())
		}
		return p, nil

	case "f3":
		if p.opts.History != nil && !p.busy {
			return p, push(p.opts.History())
		}
		return p, nil

	case "pgup":
		p.scroll += 5
		return p, nil

	case "pgdown":
		p.scroll = max(p.scroll-5, 0)
		return p, nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *PlayScreen) start() tea.Cmd {
	return func() tea.Msg {
		out, err := p.sess.Start(context.Background())
		return startedMsg{Outcome: out, Err: err}
	}
}

func (p *PlayScreen) submit(line string) tea.Cmd {
	return func() tea.Msg {
		out, err := p.sess.Submit(context.Background(), line)
		return commandDoneMsg{Line: line, Outcome: out, Err: err}
	}
}

func (p *PlayScreen) jump(msg JumpMsg) tea.Cmd {
	return func() tea.Msg {
		out, err := p.sess.Jump(context.Background(), msg.Challenge, msg.Index)
		return jumpedMsg{Outcome: out, Err: err}
	}
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

// show appends an outcome to the transcript and refreshes the prompt.
func (p *PlayScreen) show(out session.Outcome) {
	if out.Output != "" {
		p.appendEntry(entry{kind: entryOutput, text: out.Output})
	}
	for _, m := range out.Messages {
		p.appendEntry(entry{kind: entryMessage, message: m.Kind, text: m.Text})
	}
	p.input.SetPrompt(p.sess.Prompt() + " $ ")
	p.scroll = 0
}

func (p *PlayScreen) appendEntry(e entry) {
	p.transcript = append(p.transcript, e)
	if over := len(p.transcript) - maxTranscript; over > 0 {
		p.transcript = p.transcript[over:]
	}
}

func jumpError(err error) string {
	var nf *story.NotFoundError
	var oor *story.OutOfRangeError
	switch {
	case errors.As(err, &nf), errors.As(err, &oor):
		return "Can't go there: " + err.Error()
	default:
		return err.Error()
	}
}
