// Package progress owns the mutable tutorial session state: the cursor,
// attempt and hint counters, and the completed challenges. It persists that
// state through a Store with an atomic write guarantee.
package progress

import (
	"maps"
	"slices"
	"time"

	"github.com/abhisek/linuxstory/internal/story"
)

// State is the persisted progress of one learner.
type State struct {
	Cursor     story.StepID         `json:"cursor"`
	Attempts   map[story.StepID]int `json:"attempts"`
	HintsShown map[story.StepID]int `json:"hints_shown"`
	Completed  map[string]bool      `json:"completed"`
	Finished   bool                 `json:"finished"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// NewState returns an empty state positioned at start.
func NewState(start story.StepID) State {
	return State{
		Cursor:     start,
		Attempts:   make(map[story.StepID]int),
		HintsShown: make(map[story.StepID]int),
		Completed:  make(map[string]bool),
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.Attempts = maps.Clone(s.Attempts)
	out.HintsShown = maps.Clone(s.HintsShown)
	out.Completed = maps.Clone(s.Completed)
	out.normalize()
	return out
}

// CompletedIDs returns the completed challenge IDs in sorted order.
func (s State) CompletedIDs() []string {
	ids := make([]string, 0, len(s.Completed))
	for id, done := range s.Completed {
		if done {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// normalize replaces nil maps left behind by decoding.
func (s *State) normalize() {
	if s.Attempts == nil {
		s.Attempts = make(map[story.StepID]int)
	}
	if s.HintsShown == nil {
		s.HintsShown = make(map[story.StepID]int)
	}
	if s.Completed == nil {
		s.Completed = make(map[string]bool)
	}
}
