// Package env defines the immutable observation handed to the progression
// engine after every completed user command.
package env

import (
	"path"
	"slices"
)

// Op is the kind of change recorded for a path.
type Op string

const (
	OpCreated  Op = "created"
	OpModified Op = "modified"
	OpRemoved  Op = "removed"
)

// FileChange is one filesystem change observed while a command ran.
// Path is slash-separated and relative to the sandbox root.
type FileChange struct {
	Path    string
	Op      Op
	Content []byte // captured for created/modified regular files, may be truncated
}

// Delta is the ordered list of changes observed during one command.
type Delta []FileChange

// Snapshot is one observation of the user's terminal and filesystem state.
type Snapshot struct {
	Command    string
	ExitStatus int
	Cwd        string
	Delta      Delta
}

// Final collapses the delta to the last change per path, in first-seen order.
func (d Delta) Final() []FileChange {
	idx := make(map[string]int, len(d))
	var out []FileChange
	for _, c := range d {
		p := CleanPath(c.Path)
		c.Path = p
		if i, ok := idx[p]; ok {
			// A write after a create is still a create as far as presence goes,
			// but the newest content wins.
			if out[i].Op == OpCreated && c.Op == OpModified {
				c.Op = OpCreated
			}
			if c.Content == nil && c.Op != OpRemoved {
				c.Content = out[i].Content
			}
			out[i] = c
			continue
		}
		idx[p] = len(out)
		out = append(out, c)
	}
	return out
}

// Present returns the final changes whose path still exists after the command.
func (d Delta) Present() []FileChange {
	final := d.Final()
	return slices.DeleteFunc(final, func(c FileChange) bool { return c.Op == OpRemoved })
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Delta != nil {
		out.Delta = make(Delta, len(s.Delta))
		for i, c := range s.Delta {
			c.Content = slices.Clone(c.Content)
			out.Delta[i] = c
		}
	}
	return out
}

// CleanPath normalises a sandbox-relative path. The sandbox root is ".";
// "~" and leading slashes are treated as the root.
func CleanPath(p string) string {
	switch {
	case p == "" || p == "~":
		return "."
	case len(p) > 1 && p[0] == '~' && p[1] == '/':
		p = p[2:]
	}
	p = path.Clean("/" + p)
	if p == "/" {
		return "."
	}
	return p[1:]
}
