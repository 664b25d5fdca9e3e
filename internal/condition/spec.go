// Package condition holds the closed set of step completion conditions and
// the pure evaluator that checks them against an environment snapshot.
package condition

import (
	"fmt"
	"strings"
)

// Spec is a step completion condition. The set of implementations is closed:
// only the types in this package satisfy it.
type Spec interface {
	fmt.Stringer
	isSpec()
}

// CommandMatch holds when the normalised command text matches Pattern.
type CommandMatch struct {
	Pattern string
}

// ExitStatus holds when the command exited with Expected.
type ExitStatus struct {
	Expected int
}

// FileExists holds when a path matching Path is present in the filesystem delta.
type FileExists struct {
	Path string
}

// FileContains holds when a present path matching Path has content matching Pattern.
type FileContains struct {
	Path    string
	Pattern string
}

// DirectoryChanged holds when the working directory after the command is To.
type DirectoryChanged struct {
	To string
}

// Mode selects how a Composite combines its children.
type Mode int

const (
	AllOf Mode = iota
	AnyOf
)

func (m Mode) String() string {
	if m == AnyOf {
		return "any-of"
	}
	return "all-of"
}

// Composite combines child conditions with all-of or any-of semantics.
type Composite struct {
	Mode Mode
	Of   []Spec
}

func (CommandMatch) isSpec()     {}
func (ExitStatus) isSpec()       {}
func (FileExists) isSpec()       {}
func (FileContains) isSpec()     {}
func (DirectoryChanged) isSpec() {}
func (Composite) isSpec()        {}

func (c CommandMatch) String() string { return fmt.Sprintf("command(%q)", c.Pattern) }
func (c ExitStatus) String() string   { return fmt.Sprintf("exit-status(%d)", c.Expected) }
func (c FileExists) String() string   { return fmt.Sprintf("file-exists(%q)", c.Path) }
func (c FileContains) String() string {
	return fmt.Sprintf("file-contains(%q, %q)", c.Path, c.Pattern)
}
func (c DirectoryChanged) String() string { return fmt.Sprintf("directory(%q)", c.To) }

func (c Composite) String() string {
	parts := make([]string, len(c.Of))
	for i, s := range c.Of {
		parts[i] = s.String()
	}
	return c.Mode.String() + "[" + strings.Join(parts, ", ") + "]"
}

// Kind names accepted in story files.
const (
	KindCommand      = "command"
	KindExitStatus   = "exit-status"
	KindFileExists   = "file-exists"
	KindFileContains = "file-contains"
	KindDirectory    = "directory"
	KindAllOf        = "all-of"
	KindAnyOf        = "any-of"
)

// AllKinds returns every condition kind accepted by Compile.
func AllKinds() []string {
	return []string{
		KindCommand,
		KindExitStatus,
		KindFileExists,
		KindFileContains,
		KindDirectory,
		KindAllOf,
		KindAnyOf,
	}
}

// ConfigurationError reports a malformed condition or story definition.
// It is only ever produced while loading, never while evaluating.
type ConfigurationError struct {
	Source string // where the problem was found, e.g. `challenge "intro" step 0`
	Detail string
}

func (e *ConfigurationError) Error() string {
	if e.Source == "" {
		return "configuration error: " + e.Detail
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Source, e.Detail)
}
