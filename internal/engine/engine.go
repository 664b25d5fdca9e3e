// Package engine implements the story progression state machine. It
// evaluates each environment snapshot against the current step, moves the
// cursor through the story graph, and reports what happened as events.
// Rendering is left to the caller: the engine passes string keys only.
package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/linuxstory/internal/condition"
	"github.com/abhisek/linuxstory/internal/env"
	"github.com/abhisek/linuxstory/internal/progress"
	"github.com/abhisek/linuxstory/internal/story"
)

// Recorder receives every event the engine emits, after the state it
// describes has been saved. Errors are logged and otherwise ignored.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Options configures optional engine collaborators.
type Options struct {
	Logger   *zap.Logger
	Recorder Recorder
}

// Engine is the single writer of progress. All methods are safe for
// concurrent use; each call runs one transition to completion.
type Engine struct {
	mu       sync.Mutex
	graph    *story.Graph
	tracker  *progress.Tracker
	logger   *zap.Logger
	recorder Recorder

	phase    Phase
	last     Phase
	observed env.Snapshot
}

// New restores progress through tracker and positions the engine at the
// saved cursor, or at the first step when nothing was saved. A saved
// cursor that no longer exists in graph is discarded with a warning.
func New(ctx context.Context, graph *story.Graph, tracker *progress.Tracker, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	st, err := tracker.Load(ctx, graph.First())
	if err != nil {
		return nil, err
	}
	if _, err := graph.Step(st.Cursor); err != nil {
		logger.Warn("saved cursor not in story, starting over",
			zap.Stringer("cursor", st.Cursor),
			zap.Error(err))
		tracker.Reset(graph.First())
		st = tracker.Snapshot()
	}

	e := &Engine{
		graph:    graph,
		tracker:  tracker,
		logger:   logger,
		recorder: opts.Recorder,
		phase:    PhaseAwaitingInput,
		last:     PhaseAwaitingInput,
	}
	if st.Finished {
		e.phase = PhaseStoryComplete
		e.last = PhaseStoryComplete
	}
	return e, nil
}

// Observe feeds one environment snapshot to the state machine and returns
// the resulting events. Once the story is complete it is a no-op.
//
// Progress is saved before Observe returns. A save that fails after the
// tracker's retries is reported as a trailing Warning event; the in-memory
// transition stands.
func (e *Engine) Observe(ctx context.Context, snap env.Snapshot) (events []Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase == PhaseStoryComplete {
		return nil
	}

	e.phase = PhaseEvaluating
	defer func() { events = e.flush(ctx, events) }()

	e.observed = snap.Clone()
	step := e.current()
	if !condition.Evaluate(step.Condition, snap) {
		return e.reject(step)
	}
	return e.advance(step.ID)
}

// JumpTo moves the cursor directly to a step, bypassing conditions. An
// unknown challenge yields *story.NotFoundError and a bad index
// *story.OutOfRangeError; in both cases progress is left untouched.
func (e *Engine) JumpTo(ctx context.Context, challenge string, index int) (events []Event, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	step, err := e.graph.Locate(challenge, index)
	if err != nil {
		return nil, err
	}
	defer func() { events = e.flush(ctx, events) }()

	e.tracker.AdvanceTo(step.ID)
	e.tracker.SetFinished(false)
	e.last = PhaseAdvancing
	e.logger.Info("jumped", zap.Stringer("cursor", step.ID))
	return []Event{{Kind: ChallengeAdvance, Step: step.ID}}, nil
}

// Current returns the step at the cursor.
func (e *Engine) Current() story.Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current()
}

// Graph returns the story the engine walks.
func (e *Engine) Graph() *story.Graph {
	return e.graph
}

// Allows reports whether the current step permits running command. When it
// does not, the blocking pattern is returned. A command matching one of the
// step's allowed patterns is never blocked. Blocked commands never reach
// Observe, so they cost no attempt.
func (e *Engine) Allows(command string) (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase == PhaseStoryComplete {
		return true, ""
	}
	step := e.current()
	for _, pattern := range step.AllowedCommands {
		if condition.MatchCommand(pattern, command) {
			return true, ""
		}
	}
	for _, pattern := range step.BlockedCommands {
		if condition.MatchCommand(pattern, command) {
			return false, pattern
		}
	}
	return true, ""
}

// current must be called with mu held. The cursor is kept valid by New,
// advance and JumpTo, so the lookup cannot fail.
func (e *Engine) current() story.Step {
	step, err := e.graph.Step(e.tracker.Cursor())
	if err != nil {
		panic("engine: cursor outside story: " + err.Error())
	}
	return step
}

func (e *Engine) reject(step story.Step) []Event {
	n := e.tracker.RecordAttempt(step.ID)
	if n >= step.MaxAttemptsBeforeHint {
		shown := e.tracker.HintsShown(step.ID)
		if shown < len(step.HintKeys) {
			e.tracker.MarkHintShown(step.ID)
			e.last = PhaseHintOffered
			return []Event{{Kind: HintOffered, Step: step.ID, HintKey: step.HintKeys[shown]}}
		}
	}
	e.last = PhaseRetrying
	return []Event{{Kind: RetrySignal, Step: step.ID}}
}

func (e *Engine) advance(cur story.StepID) []Event {
	e.last = PhaseAdvancing
	e.tracker.EndVisit(cur)
	if next, ok := e.graph.NextStep(cur); ok {
		e.tracker.AdvanceTo(next)
		return []Event{{Kind: ChallengeAdvance, Step: next}}
	}

	e.tracker.MarkChallengeComplete(cur.Challenge)
	events := []Event{{Kind: ChallengeComplete, Step: cur, Challenge: cur.Challenge}}

	if id, ok := e.graph.Next(cur.Challenge); ok {
		c, _ := e.graph.Get(id)
		next := c.FirstStep()
		e.tracker.AdvanceTo(next)
		return append(events, Event{Kind: ChallengeAdvance, Step: next})
	}

	e.tracker.SetFinished(true)
	e.last = PhaseStoryComplete
	return append(events, Event{Kind: StoryAllDone, Step: cur})
}

// flush persists the tracker and hands the events to the recorder. It runs
// on every exit path of a transition, including a panic during evaluation.
func (e *Engine) flush(ctx context.Context, events []Event) []Event {
	if e.tracker.Finished() {
		e.phase = PhaseStoryComplete
	} else {
		e.phase = PhaseAwaitingInput
	}

	if err := e.tracker.Save(ctx); err != nil {
		e.logger.Warn("progress not saved, continuing in memory", zap.Error(err))
		events = append(events, Event{Kind: Warning, Step: e.tracker.Cursor(), Err: err})
	}

	for _, ev := range events {
		e.logger.Debug("event", zap.Stringer("event", ev))
		if e.recorder == nil {
			continue
		}
		if err := e.recorder.Record(ctx, ev); err != nil {
			e.logger.Warn("record event failed", zap.Stringer("event", ev), zap.Error(err))
		}
	}
	return events
}
