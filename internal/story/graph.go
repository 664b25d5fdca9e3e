// Package story models the tutorial as an ordered graph of challenges, each
// an ordered sequence of steps, and loads it from a YAML story file.
package story

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Graph is the read-only story: challenges in declared order.
type Graph struct {
	title      string
	challenges []Challenge
	byID       map[string]int
	strings    map[string]string
}

// New validates challenges and builds a graph from them. It is the
// programmatic counterpart of Load.
func New(title string, challenges []Challenge) (*Graph, error) {
	for _, c := range challenges {
		for si, st := range c.Steps {
			if st.Condition == nil {
				return nil, &ConfigurationError{
					Source: fmt.Sprintf("challenge %q step %d", c.ID, si),
					Detail: "missing condition",
				}
			}
		}
	}
	if err := validateChallenges(challenges); err != nil {
		return nil, err
	}
	return buildGraph(title, challenges, nil), nil
}

func buildGraph(title string, challenges []Challenge, strs map[string]string) *Graph {
	g := &Graph{
		title:      title,
		challenges: make([]Challenge, len(challenges)),
		byID:       make(map[string]int, len(challenges)),
		strings:    maps.Clone(strs),
	}
	for i, c := range challenges {
		g.challenges[i] = c.clone()
		for si := range g.challenges[i].Steps {
			g.challenges[i].Steps[si].ID = StepID{Challenge: c.ID, Index: si}
		}
		g.byID[c.ID] = i
	}
	if g.strings == nil {
		g.strings = make(map[string]string)
	}
	return g
}

// validateChallenges performs all structural checks on the challenge list.
// Returns a *GraphLoadError describing every problem found, or nil.
func validateChallenges(challenges []Challenge) error {
	var errs []string

	if len(challenges) == 0 {
		errs = append(errs, "story has no challenges")
	}

	idSet := make(map[string]bool, len(challenges))
	for _, c := range challenges {
		if c.ID == "" {
			errs = append(errs, "challenge with empty ID")
			continue
		}
		if idSet[c.ID] {
			errs = append(errs, fmt.Sprintf("duplicate challenge ID: %q", c.ID))
		}
		idSet[c.ID] = true
	}

	for _, c := range challenges {
		if len(c.Steps) == 0 {
			errs = append(errs, fmt.Sprintf("challenge %q has no steps", c.ID))
		}
		if c.Prerequisite != "" && !idSet[c.Prerequisite] {
			errs = append(errs, fmt.Sprintf("challenge %q references nonexistent prerequisite %q", c.ID, c.Prerequisite))
		}
	}

	// Check for cycles using Kahn's algorithm.
	inDegree := make(map[string]int, len(challenges))
	adjList := make(map[string][]string)
	for _, c := range challenges {
		if c.Prerequisite != "" && idSet[c.Prerequisite] {
			inDegree[c.ID]++
			adjList[c.Prerequisite] = append(adjList[c.Prerequisite], c.ID)
		}
	}

	var queue []string
	seen := make(map[string]bool, len(challenges))
	for _, c := range challenges {
		if !seen[c.ID] && inDegree[c.ID] == 0 {
			queue = append(queue, c.ID)
		}
		seen[c.ID] = true
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, depID := range adjList[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	if visited < len(idSet) {
		var cycleNodes []string
		for _, c := range challenges {
			if inDegree[c.ID] > 0 && !slices.Contains(cycleNodes, c.ID) {
				cycleNodes = append(cycleNodes, c.ID)
			}
		}
		errs = append(errs, fmt.Sprintf("prerequisite cycle detected involving challenges: %s", strings.Join(cycleNodes, ", ")))
	}

	if len(errs) > 0 {
		return &GraphLoadError{Problems: errs}
	}
	return nil
}

// Title returns the story's title key.
func (g *Graph) Title() string {
	return g.title
}

// Len returns the number of challenges.
func (g *Graph) Len() int {
	return len(g.challenges)
}

// Challenges returns every challenge in declared order.
func (g *Graph) Challenges() []Challenge {
	out := make([]Challenge, len(g.challenges))
	for i, c := range g.challenges {
		out[i] = c.clone()
	}
	return out
}

// Strings returns the story's bundled key to text catalog.
func (g *Graph) Strings() map[string]string {
	return maps.Clone(g.strings)
}

// First returns the first step of the first challenge.
func (g *Graph) First() StepID {
	return g.challenges[0].FirstStep()
}

// Get returns a challenge by ID, or *NotFoundError.
func (g *Graph) Get(id string) (Challenge, error) {
	i, ok := g.byID[id]
	if !ok {
		return Challenge{}, &NotFoundError{Challenge: id}
	}
	return g.challenges[i].clone(), nil
}

// Locate returns the step at index within challenge id. It fails with
// *NotFoundError for an unknown challenge and *OutOfRangeError for a bad index.
func (g *Graph) Locate(id string, index int) (Step, error) {
	i, ok := g.byID[id]
	if !ok {
		return Step{}, &NotFoundError{Challenge: id}
	}
	steps := g.challenges[i].Steps
	if index < 0 || index >= len(steps) {
		return Step{}, &OutOfRangeError{Challenge: id, Index: index, Len: len(steps)}
	}
	return g.challenges[i].clone().Steps[index], nil
}

// Step is Locate for a StepID.
func (g *Graph) Step(id StepID) (Step, error) {
	return g.Locate(id.Challenge, id.Index)
}

// NextStep returns the step after id within the same challenge.
func (g *Graph) NextStep(id StepID) (StepID, bool) {
	i, ok := g.byID[id.Challenge]
	if !ok || id.Index+1 >= len(g.challenges[i].Steps) {
		return StepID{}, false
	}
	return StepID{Challenge: id.Challenge, Index: id.Index + 1}, true
}

// Next returns the challenge declared after id.
func (g *Graph) Next(id string) (string, bool) {
	i, ok := g.byID[id]
	if !ok || i+1 >= len(g.challenges) {
		return "", false
	}
	return g.challenges[i+1].ID, true
}

// Unlocked reports whether id's prerequisite is in the completed set.
func (g *Graph) Unlocked(id string, completed map[string]bool) bool {
	i, ok := g.byID[id]
	if !ok {
		return false
	}
	pre := g.challenges[i].Prerequisite
	return pre == "" || completed[pre]
}

// StepCount returns the total number of steps across all challenges.
func (g *Graph) StepCount() int {
	n := 0
	for _, c := range g.challenges {
		n += len(c.Steps)
	}
	return n
}

// Ordinal returns the zero-based position of id across the whole story,
// used for progress display. It returns -1 for an unknown step.
func (g *Graph) Ordinal(id StepID) int {
	i, ok := g.byID[id.Challenge]
	if !ok || id.Index < 0 || id.Index >= len(g.challenges[i].Steps) {
		return -1
	}
	n := 0
	for _, c := range g.challenges[:i] {
		n += len(c.Steps)
	}
	return n + id.Index
}
