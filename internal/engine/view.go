package engine

import (
	"github.com/abhisek/linuxstory/internal/env"
	"github.com/abhisek/linuxstory/internal/story"
)

// View is a read-only copy of the engine's state for rendering. Nothing in
// it aliases live state.
type View struct {
	Phase Phase
	// Last is the outcome of the most recent transition.
	Last       Phase
	Cursor     story.StepID
	Step       story.Step
	Attempts   int
	HintsShown int
	Completed  []string
	Finished   bool

	// Ordinal is the zero-based position of Cursor across the story and
	// Total the number of steps, for progress display.
	Ordinal int
	Total   int

	// Observed is the last snapshot passed to Observe.
	Observed env.Snapshot
}

// View returns a snapshot of the current state.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.tracker.Snapshot()
	return View{
		Phase:      e.phase,
		Last:       e.last,
		Cursor:     st.Cursor,
		Step:       e.current(),
		Attempts:   st.Attempts[st.Cursor],
		HintsShown: st.HintsShown[st.Cursor],
		Completed:  st.CompletedIDs(),
		Finished:   st.Finished,
		Ordinal:    e.graph.Ordinal(st.Cursor),
		Total:      e.graph.StepCount(),
		Observed:   e.observed.Clone(),
	}
}
