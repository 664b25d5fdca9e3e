package engine

import (
	"fmt"

	"github.com/abhisek/linuxstory/internal/story"
)

// Phase is a state of the progression state machine.
type Phase int

const (
	PhaseAwaitingInput Phase = iota
	PhaseEvaluating
	PhaseAdvancing
	PhaseRetrying
	PhaseHintOffered
	PhaseStoryComplete
)

var phaseNames = [...]string{
	PhaseAwaitingInput: "awaiting-input",
	PhaseEvaluating:    "evaluating",
	PhaseAdvancing:     "advancing",
	PhaseRetrying:      "retrying",
	PhaseHintOffered:   "hint-offered",
	PhaseStoryComplete: "story-complete",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// EventKind identifies what an Event tells the rendering layer.
type EventKind int

const (
	// RetrySignal is a terse nudge after an unsuccessful attempt.
	RetrySignal EventKind = iota + 1
	// HintOffered carries the next unshown hint key for the current step.
	HintOffered
	// ChallengeAdvance reports a new cursor, by progression or by jump.
	ChallengeAdvance
	// ChallengeComplete reports that every step of a challenge was satisfied.
	ChallengeComplete
	// StoryAllDone is emitted once when the final step is satisfied.
	StoryAllDone
	// Warning reports a non-fatal failure, such as a save that gave up.
	Warning
)

var kindNames = map[EventKind]string{
	RetrySignal:       "retry",
	HintOffered:       "hint",
	ChallengeAdvance:  "advance",
	ChallengeComplete: "challenge-complete",
	StoryAllDone:      "all-done",
	Warning:           "warning",
}

func (k EventKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one notification emitted by a transition. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind EventKind

	// Step is the step the event concerns: the new cursor for
	// ChallengeAdvance, the evaluated step otherwise.
	Step story.StepID

	// Challenge is set for ChallengeComplete.
	Challenge string

	// HintKey is set for HintOffered.
	HintKey string

	// Err is set for Warning.
	Err error
}

func (e Event) String() string {
	switch e.Kind {
	case HintOffered:
		return fmt.Sprintf("%s(%s)", e.Kind, e.HintKey)
	case ChallengeAdvance:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Step)
	case ChallengeComplete:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Challenge)
	case Warning:
		return fmt.Sprintf("%s(%v)", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}
