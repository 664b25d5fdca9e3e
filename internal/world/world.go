// Package world manages the sandbox directory the user explores and the
// setup/teardown actions that stage it for each step.
package world

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/abhisek/linuxstory/internal/env"
)

// ActionKind names a sandbox mutation.
type ActionKind string

const (
	ActionMkdir  ActionKind = "mkdir"
	ActionWrite  ActionKind = "write"
	ActionRemove ActionKind = "remove"
)

// Action is one setup or teardown operation, with Path relative to the sandbox root.
type Action struct {
	Kind    ActionKind `yaml:"action" json:"action"`
	Path    string     `yaml:"path" json:"path"`
	Content string     `yaml:"content,omitempty" json:"content,omitempty"`
}

// ErrEscapesRoot is returned for paths that resolve to the sandbox root itself
// where a child path is required.
var ErrEscapesRoot = errors.New("path resolves to the sandbox root")

// Validate checks the action is well formed.
func (a Action) Validate() error {
	switch a.Kind {
	case ActionMkdir, ActionWrite, ActionRemove:
	default:
		return fmt.Errorf("unknown action %q", a.Kind)
	}
	if env.CleanPath(a.Path) == "." {
		return fmt.Errorf("%s %q: %w", a.Kind, a.Path, ErrEscapesRoot)
	}
	return nil
}

// Sandbox is the directory tree the tutorial runs in.
type Sandbox struct {
	root   string
	logger *zap.Logger
}

// New creates the sandbox root if needed.
func New(root string, logger *zap.Logger) (*Sandbox, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create sandbox root: %w", err)
	}
	return &Sandbox{root: abs, logger: logger}, nil
}

// DefaultRoot resolves the sandbox directory in priority order:
// 1. LINUXSTORY_WORLD environment variable
// 2. $XDG_DATA_HOME/linuxstory/world
// 3. ~/.local/share/linuxstory/world
func DefaultRoot() (string, error) {
	if p := os.Getenv("LINUXSTORY_WORLD"); p != "" {
		return p, nil
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "linuxstory", "world"), nil
}

// Root returns the absolute sandbox root.
func (s *Sandbox) Root() string {
	return s.root
}

// Resolve maps a sandbox-relative path to an absolute path inside the root.
// Parent references never climb above the root.
func (s *Sandbox) Resolve(rel string) string {
	clean := env.CleanPath(rel)
	if clean == "." {
		return s.root
	}
	return filepath.Join(s.root, filepath.FromSlash(clean))
}

// Apply runs actions in order, stopping at the first failure.
func (s *Sandbox) Apply(actions []Action) error {
	for _, a := range actions {
		if err := a.Validate(); err != nil {
			return err
		}
		p := s.Resolve(a.Path)
		switch a.Kind {
		case ActionMkdir:
			if err := os.MkdirAll(p, 0o755); err != nil {
				return fmt.Errorf("mkdir %s: %w", a.Path, err)
			}
		case ActionWrite:
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return fmt.Errorf("mkdir parent of %s: %w", a.Path, err)
			}
			if err := os.WriteFile(p, []byte(a.Content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", a.Path, err)
			}
		case ActionRemove:
			if err := os.RemoveAll(p); err != nil {
				return fmt.Errorf("remove %s: %w", a.Path, err)
			}
		}
		s.logger.Debug("applied sandbox action",
			zap.String("action", string(a.Kind)),
			zap.String("path", a.Path))
	}
	return nil
}

// Reset removes everything inside the sandbox root.
func (s *Sandbox) Reset() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("read sandbox: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", e.Name(), err)
		}
	}
	return nil
}
