package condition

import (
	"bytes"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/tidwall/match"

	"github.com/abhisek/linuxstory/internal/env"
)

// Evaluate reports whether spec holds for snap. It never touches the
// filesystem: file conditions look only at the snapshot's delta.
func Evaluate(spec Spec, snap env.Snapshot) bool {
	switch s := spec.(type) {
	case CommandMatch:
		return MatchCommand(s.Pattern, snap.Command)

	case ExitStatus:
		return snap.ExitStatus == s.Expected

	case FileExists:
		for _, c := range snap.Delta.Present() {
			if matchPath(s.Path, c.Path) {
				return true
			}
		}
		return false

	case FileContains:
		for _, c := range snap.Delta.Present() {
			if matchPath(s.Path, c.Path) && contentMatches(s.Pattern, c.Content) {
				return true
			}
		}
		return false

	case DirectoryChanged:
		return matchPath(s.To, snap.Cwd)

	case Composite:
		if s.Mode == AnyOf {
			for _, child := range s.Of {
				if Evaluate(child, snap) {
					return true
				}
			}
			return false
		}
		for _, child := range s.Of {
			if !Evaluate(child, snap) {
				return false
			}
		}
		return true
	}
	return false
}

// NormalizeCommand trims the command and collapses internal whitespace.
func NormalizeCommand(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// MatchCommand compares a command line against a pattern after normalising
// both. Patterns without wildcards must match exactly; '*' matches any run
// of characters, slashes included, and '?' exactly one. A backslash escapes
// the next character.
func MatchCommand(pattern, command string) bool {
	return match.Match(NormalizeCommand(command), NormalizeCommand(pattern))
}

func hasWildcard(p string) bool {
	return strings.ContainsAny(p, "*?\\")
}

// matchPath compares two sandbox-relative paths, treating want as a
// doublestar glob when it contains meta characters.
func matchPath(want, got string) bool {
	want, got = env.CleanPath(want), env.CleanPath(got)
	if !strings.ContainsAny(want, "*?[{") {
		return want == got
	}
	ok, err := doublestar.Match(want, got)
	return err == nil && ok
}

func contentMatches(pattern string, content []byte) bool {
	if !hasWildcard(pattern) {
		return bytes.Contains(content, []byte(pattern))
	}
	for _, line := range strings.Split(string(content), "\n") {
		if MatchCommand(pattern, line) {
			return true
		}
	}
	return false
}
