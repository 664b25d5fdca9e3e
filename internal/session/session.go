// Package session runs one play-through: it feeds learner commands through
// the shell to the engine, keeps the sandbox in step with the cursor, and
// turns engine events into story text.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/linuxstory/internal/engine"
	"github.com/abhisek/linuxstory/internal/locale"
	"github.com/abhisek/linuxstory/internal/shell"
	"github.com/abhisek/linuxstory/internal/story"
	"github.com/abhisek/linuxstory/internal/world"
)

// ChangeLog is the part of the filesystem watcher the session needs: a way
// to forget changes made by the story itself.
type ChangeLog interface {
	Discard()
}

// Deps are the collaborators of a Session. Changes is optional.
type Deps struct {
	Engine  *engine.Engine
	Shell   *shell.Session
	Sandbox *world.Sandbox
	Changes ChangeLog
	Catalog *locale.Catalog
	Logger  *zap.Logger
}

// Outcome is what happened in response to one learner action.
type Outcome struct {
	// Output is the command's combined stdout and stderr.
	Output string
	// Blocked is the pattern that refused the command, if any.
	Blocked  string
	Events   []engine.Event
	Messages []Message
}

// Session is not safe for concurrent use; the play screen serializes
// calls through its update loop.
type Session struct {
	engine  *engine.Engine
	shell   *shell.Session
	sandbox *world.Sandbox
	changes ChangeLog
	catalog *locale.Catalog
	logger  *zap.Logger
}

// New wires a session. Catalog entries missing for the built-in keys are
// filled with defaults.
func New(d Deps) *Session {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := d.Catalog
	if catalog == nil {
		catalog = locale.New(nil)
	}
	for k, v := range defaultStrings {
		if !catalog.Has(k) {
			catalog.Merge(map[string]string{k: v})
		}
	}
	return &Session{
		engine:  d.Engine,
		shell:   d.Shell,
		sandbox: d.Sandbox,
		changes: d.Changes,
		catalog: catalog,
		logger:  logger,
	}
}

// Start prepares the sandbox for the current step and returns the opening
// text: the challenge title and step prompt, or the closing line when the
// story is already complete.
func (s *Session) Start(ctx context.Context) (Outcome, error) {
	v := s.engine.View()
	if v.Finished {
		return Outcome{Messages: []Message{s.message(MessageDone, KeyDone)}}, nil
	}
	if err := s.prepare(v.Step); err != nil {
		return Outcome{}, err
	}
	return Outcome{Messages: s.introduce(v.Step)}, nil
}

// Submit runs one command line. A command blocked by the current step is
// not executed and costs no attempt.
func (s *Session) Submit(ctx context.Context, line string) (Outcome, error) {
	if ok, pattern := s.engine.Allows(line); !ok {
		s.logger.Info("command blocked", zap.String("command", line), zap.String("pattern", pattern))
		return Outcome{
			Blocked:  pattern,
			Messages: []Message{s.message(MessageNotice, KeyBlocked)},
		}, nil
	}

	before := s.engine.Current()
	res, err := s.shell.Run(ctx, line)
	if err != nil {
		return Outcome{}, err
	}

	events := s.engine.Observe(ctx, res.Snapshot)
	out := Outcome{Output: res.Output, Events: events}
	out.Messages, err = s.apply(before, events, false)
	return out, err
}

// Jump moves directly to a step. A rejected jump returns the story error
// and leaves everything as it was.
func (s *Session) Jump(ctx context.Context, challenge string, index int) (Outcome, error) {
	before := s.engine.Current()
	events, err := s.engine.JumpTo(ctx, challenge, index)
	if err != nil {
		return Outcome{}, err
	}
	msgs, err := s.apply(before, events, true)
	return Outcome{Events: events, Messages: msgs}, err
}

// View returns the engine's state for rendering.
func (s *Session) View() engine.View {
	return s.engine.View()
}

// Title returns the resolved title of the current challenge.
func (s *Session) Title() string {
	v := s.engine.View()
	c, err := s.engine.Graph().Get(v.Cursor.Challenge)
	if err != nil || c.TitleKey == "" {
		return v.Cursor.Challenge
	}
	return s.catalog.Resolve(c.TitleKey)
}

// Graph returns the story being played.
func (s *Session) Graph() *story.Graph {
	return s.engine.Graph()
}

// Prompt returns the shell prompt for the current directory.
func (s *Session) Prompt() string {
	return s.shell.Prompt()
}

// Catalog returns the strings used to resolve story text.
func (s *Session) Catalog() *locale.Catalog {
	return s.catalog
}

// apply turns events into messages and performs sandbox transitions. On a
// jump the shell is moved to the new step's start directory.
func (s *Session) apply(prev story.Step, events []engine.Event, jumped bool) ([]Message, error) {
	var (
		msgs []Message
		errs []error
	)
	for _, ev := range events {
		switch ev.Kind {
		case engine.RetrySignal:
			msgs = append(msgs, s.message(MessageRetry, KeyRetry))
		case engine.HintOffered:
			msgs = append(msgs, s.message(MessageHint, ev.HintKey))
		case engine.ChallengeComplete:
			// The advance or all-done that follows carries the text.
		case engine.ChallengeAdvance:
			step, err := s.engine.Graph().Step(ev.Step)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if jumped {
				err = s.prepare(step)
			} else {
				err = s.advance(prev, step)
			}
			if err != nil {
				errs = append(errs, err)
			}
			if ev.Step.Index == 0 || jumped {
				msgs = append(msgs, s.introduce(step)...)
			} else {
				msgs = append(msgs, s.message(MessagePrompt, step.PromptKey))
			}
			prev = step
		case engine.StoryAllDone:
			if err := s.sandbox.Apply(prev.Teardown); err != nil {
				errs = append(errs, fmt.Errorf("teardown %s: %w", prev.ID, err))
			}
			msgs = append(msgs, s.message(MessageDone, KeyDone))
		case engine.Warning:
			msgs = append(msgs, s.message(MessageWarning, KeyWarning))
		}
	}
	return msgs, errors.Join(errs...)
}

// advance tears down prev and sets up next, leaving the shell where the
// learner put it.
func (s *Session) advance(prev, next story.Step) error {
	if err := s.sandbox.Apply(prev.Teardown); err != nil {
		return fmt.Errorf("teardown %s: %w", prev.ID, err)
	}
	if err := s.sandbox.Apply(next.Setup); err != nil {
		return fmt.Errorf("setup %s: %w", next.ID, err)
	}
	s.discard()
	return nil
}

// prepare rebuilds the sandbox for arriving at step without having played
// the steps before it: every earlier step in story order, across all
// challenges, is set up and torn down, then step is set up and the shell
// moved to its start dir.
func (s *Session) prepare(step story.Step) error {
	g := s.engine.Graph()
	target := g.Ordinal(step.ID)
	if target < 0 {
		return fmt.Errorf("step %s not in story", step.ID)
	}
	for _, c := range g.Challenges() {
		for _, earlier := range c.Steps {
			if g.Ordinal(earlier.ID) >= target {
				break
			}
			if err := s.sandbox.Apply(earlier.Setup); err != nil {
				return fmt.Errorf("setup %s: %w", earlier.ID, err)
			}
			if err := s.sandbox.Apply(earlier.Teardown); err != nil {
				return fmt.Errorf("teardown %s: %w", earlier.ID, err)
			}
		}
	}
	if err := s.sandbox.Apply(step.Setup); err != nil {
		return fmt.Errorf("setup %s: %w", step.ID, err)
	}
	s.discard()

	if step.StartDir != "" {
		if err := s.shell.SetCwd(step.StartDir); err != nil {
			s.logger.Warn("start directory missing",
				zap.Stringer("step", step.ID),
				zap.String("dir", step.StartDir),
				zap.Error(err))
		}
	}
	return nil
}

func (s *Session) discard() {
	if s.changes != nil {
		s.changes.Discard()
	}
}

func (s *Session) introduce(step story.Step) []Message {
	var msgs []Message
	if c, err := s.engine.Graph().Get(step.ID.Challenge); err == nil && c.TitleKey != "" {
		msgs = append(msgs, s.message(MessageTitle, c.TitleKey))
	}
	return append(msgs, s.message(MessagePrompt, step.PromptKey))
}

func (s *Session) message(kind MessageKind, key string) Message {
	return Message{Kind: kind, Text: s.catalog.Resolve(key)}
}
