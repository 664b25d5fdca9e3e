// Package shell runs learner commands inside the sandbox and turns each
// one into an environment snapshot.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/linuxstory/internal/env"
	"github.com/abhisek/linuxstory/internal/world"
)

// DeltaSource supplies the filesystem changes made since the last call.
type DeltaSource interface {
	Drain() env.Delta
}

// Config tunes command execution.
type Config struct {
	// Shell is the interpreter given the command line with -c.
	Shell string
	// Timeout bounds a single command. Zero means no limit.
	Timeout time.Duration
}

// DefaultConfig returns the settings used by the play screen.
func DefaultConfig() Config {
	return Config{Shell: "sh", Timeout: 30 * time.Second}
}

// Result is the outcome of one command line.
type Result struct {
	Snapshot env.Snapshot
	Output   string
}

// Session is a shell confined to the sandbox. It tracks its own working
// directory; "cd" is handled in-process since a child shell cannot change
// ours. Sessions are not safe for concurrent use.
type Session struct {
	sandbox *world.Sandbox
	deltas  DeltaSource
	cfg     Config
	logger  *zap.Logger
	cwd     string
}

// New returns a session positioned at the sandbox root. deltas may be nil,
// in which case snapshots carry no filesystem changes.
func New(sandbox *world.Sandbox, deltas DeltaSource, cfg Config, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Shell == "" {
		cfg.Shell = "sh"
	}
	return &Session{sandbox: sandbox, deltas: deltas, cfg: cfg, logger: logger, cwd: "."}
}

// Cwd returns the working directory relative to the sandbox root.
func (s *Session) Cwd() string {
	return s.cwd
}

// Prompt renders the working directory the way a login shell would.
func (s *Session) Prompt() string {
	if s.cwd == "." {
		return "~"
	}
	return "~/" + s.cwd
}

// SetCwd moves the session to dir. A directory that does not exist puts
// the session at the root instead and returns an error.
func (s *Session) SetCwd(dir string) error {
	target := env.CleanPath(dir)
	if err := s.checkDir(target); err != nil {
		s.cwd = "."
		return err
	}
	s.cwd = target
	return nil
}

// Run executes line and reports its outcome. Command failures are not
// errors; they show up as a non-zero exit status. An error means the
// command could not be started at all.
func (s *Session) Run(ctx context.Context, line string) (Result, error) {
	line = strings.TrimSpace(line)

	var (
		res Result
		err error
	)
	if args := strings.Fields(line); len(args) > 0 && args[0] == "cd" {
		res = s.cd(args[1:])
	} else {
		res, err = s.exec(ctx, line)
		if err != nil {
			return Result{}, err
		}
	}

	res.Snapshot.Command = line
	res.Snapshot.Cwd = s.cwd
	if s.deltas != nil {
		res.Snapshot.Delta = s.deltas.Drain()
	}
	s.logger.Debug("command finished",
		zap.String("command", line),
		zap.Int("exit", res.Snapshot.ExitStatus),
		zap.String("cwd", s.cwd),
		zap.Int("changes", len(res.Snapshot.Delta)))
	return res, nil
}

func (s *Session) cd(args []string) Result {
	if len(args) > 1 {
		return failed("cd: too many arguments")
	}

	target := "."
	if len(args) == 1 {
		arg := args[0]
		if strings.HasPrefix(arg, "/") || strings.HasPrefix(arg, "~") {
			target = env.CleanPath(arg)
		} else {
			target = env.CleanPath(path.Join(s.cwd, arg))
		}
	}

	if err := s.checkDir(target); err != nil {
		return failed(fmt.Sprintf("cd: %s: %v", args[0], err))
	}
	s.cwd = target
	return Result{}
}

func (s *Session) checkDir(rel string) error {
	info, err := os.Stat(s.sandbox.Resolve(rel))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errors.New("no such file or directory")
		}
		return err
	}
	if !info.IsDir() {
		return errors.New("not a directory")
	}
	return nil
}

func (s *Session) exec(ctx context.Context, line string) (Result, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, s.cfg.Shell, "-c", line)
	cmd.Dir = s.sandbox.Resolve(s.cwd)
	cmd.Env = append(os.Environ(), "HOME="+s.sandbox.Root())
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	res := Result{Output: out.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.Snapshot.ExitStatus = exitErr.ExitCode()
		if res.Snapshot.ExitStatus < 0 {
			// Killed by a signal, typically the timeout.
			res.Snapshot.ExitStatus = 128
		}
	default:
		return Result{}, fmt.Errorf("run %q: %w", line, err)
	}
	return res, nil
}

func failed(msg string) Result {
	return Result{Output: msg + "\n", Snapshot: env.Snapshot{ExitStatus: 1}}
}
