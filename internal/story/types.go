package story

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/abhisek/linuxstory/internal/condition"
	"github.com/abhisek/linuxstory/internal/world"
)

// StepID addresses one step: the owning challenge and its zero-based index.
type StepID struct {
	Challenge string
	Index     int
}

func (id StepID) String() string {
	return fmt.Sprintf("%s/%d", id.Challenge, id.Index)
}

// MarshalText encodes the ID as "challenge/index" so it can key JSON maps.
func (id StepID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the "challenge/index" form.
func (id *StepID) UnmarshalText(b []byte) error {
	parsed, err := ParseStepID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseStepID parses "challenge/index". The challenge part may itself
// contain slashes; the index follows the last one.
func ParseStepID(s string) (StepID, error) {
	i := strings.LastIndex(s, "/")
	if i <= 0 || i == len(s)-1 {
		return StepID{}, fmt.Errorf("invalid step id %q", s)
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil || n < 0 {
		return StepID{}, fmt.Errorf("invalid step index in %q", s)
	}
	return StepID{Challenge: s[:i], Index: n}, nil
}

// Step is one immutable unit of progression.
type Step struct {
	ID                    StepID
	PromptKey             string
	Condition             condition.Spec
	HintKeys              []string
	MaxAttemptsBeforeHint int

	// StartDir is where the shell is placed when the step is entered by a jump.
	StartDir string

	// BlockedCommands are command patterns refused while this step is current.
	BlockedCommands []string

	// AllowedCommands are command patterns exempt from BlockedCommands.
	AllowedCommands []string

	Setup    []world.Action
	Teardown []world.Action
}

// Challenge is a titled, ordered sequence of steps.
type Challenge struct {
	ID           string
	TitleKey     string
	Prerequisite string // optional challenge ID
	Steps        []Step
}

// FirstStep returns the ID of the challenge's first step.
func (c Challenge) FirstStep() StepID {
	return StepID{Challenge: c.ID, Index: 0}
}

// clone returns a copy whose slices do not alias the graph's.
func (c Challenge) clone() Challenge {
	out := c
	out.Steps = make([]Step, len(c.Steps))
	for i, s := range c.Steps {
		s.HintKeys = slices.Clone(s.HintKeys)
		s.BlockedCommands = slices.Clone(s.BlockedCommands)
		s.AllowedCommands = slices.Clone(s.AllowedCommands)
		s.Setup = slices.Clone(s.Setup)
		s.Teardown = slices.Clone(s.Teardown)
		out.Steps[i] = s
	}
	return out
}
