package story

import (
	"fmt"
	"strings"

	"github.com/abhisek/linuxstory/internal/condition"
)

// ConfigurationError reports a malformed story or condition definition.
type ConfigurationError = condition.ConfigurationError

// GraphLoadError lists every structural problem found in a story graph.
type GraphLoadError struct {
	Problems []string
}

func (e *GraphLoadError) Error() string {
	return fmt.Sprintf("story graph validation failed:\n  %s", strings.Join(e.Problems, "\n  "))
}

// NotFoundError reports an unknown challenge ID.
type NotFoundError struct {
	Challenge string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("challenge not found: %q", e.Challenge)
}

// OutOfRangeError reports a step index outside a challenge's steps.
type OutOfRangeError struct {
	Challenge string
	Index     int
	Len       int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("step %d out of range for challenge %q (has %d steps)", e.Index, e.Challenge, e.Len)
}
